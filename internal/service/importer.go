package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/project-phoenix/internal/githubapi"
	"github.com/sakif/project-phoenix/internal/model"
	"github.com/sakif/project-phoenix/internal/repository"
	"github.com/sakif/project-phoenix/internal/scoring"
)

// RepoFetcher is the slice of the GitHub API client the importer needs.
// Satisfied by *githubapi.Client; mocked in tests.
type RepoFetcher interface {
	GetRepository(ctx context.Context, owner, name string) (*githubapi.RepoMetadata, error)
	GetLatestCommitDate(ctx context.Context, owner, name string) (*time.Time, error)
}

// ImportService brings GitHub repositories into the catalog and serves
// catalog reads.
type ImportService struct {
	repos      repository.RepoRepository
	activities repository.ActivityRepository
	github     RepoFetcher
	logger     *slog.Logger
	now        func() time.Time // swapped in tests
}

func NewImportService(repos repository.RepoRepository, activities repository.ActivityRepository, github RepoFetcher, logger *slog.Logger) *ImportService {
	return &ImportService{
		repos:      repos,
		activities: activities,
		github:     github,
		logger:     logger,
		now:        time.Now,
	}
}

// Import fetches owner/name from GitHub, scores its abandonment, and stores
// it. The commit-date lookup is allowed to fail (empty repositories have no
// commits); the repository is then scored as having no known commit, which
// lands it in the abandoned bucket.
func (s *ImportService) Import(ctx context.Context, fullName, userID string) (*model.Repository, error) {
	owner, name, err := githubapi.ParseFullName(fullName)
	if err != nil {
		return nil, err
	}

	meta, err := s.github.GetRepository(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	lastCommit, err := s.github.GetLatestCommitDate(ctx, owner, name)
	if err != nil {
		s.logger.Warn("could not determine last commit date",
			"repo", fullName, "error", err)
		lastCommit = nil
	}

	now := s.now()
	days := scoring.DaysSinceLastCommit(now, lastCommit)

	repo := &model.Repository{
		GitHubRepoID:      meta.GitHubRepoID,
		FullName:          meta.FullName,
		Name:              meta.Name,
		Description:       meta.Description,
		Language:          meta.Language,
		StarsCount:        meta.StarsCount,
		ForksCount:        meta.ForksCount,
		WatchersCount:     meta.WatchersCount,
		OpenIssuesCount:   meta.OpenIssuesCount,
		SizeKB:            meta.SizeKB,
		DefaultBranch:     meta.DefaultBranch,
		HomepageURL:       meta.HomepageURL,
		Topics:            meta.Topics,
		LicenseName:       meta.LicenseName,
		CreatedAtGitHub:   meta.CreatedAt,
		LastCommitAt:      lastCommit,
		LastPushAt:        meta.PushedAt,
		AbandonmentStatus: scoring.Status(days),
		MaintenanceScore:  scoring.MaintenanceScore(days, meta.OpenIssuesCount),
		IsAnalyzed:        true,
		LastAnalyzedAt:    &now,
	}

	if err := s.repos.CreateRepo(ctx, repo); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, &model.Activity{
		UserID:       userID,
		RepoID:       repo.ID,
		ActivityType: model.ActivityRepoAdded,
		Title:        fmt.Sprintf("Added %s to the catalog", repo.FullName),
		Metadata: map[string]string{
			"repo_name": repo.FullName,
			"stars":     fmt.Sprintf("%d", repo.StarsCount),
		},
		IsPublic: true,
	})

	return repo, nil
}

// List returns catalog repositories matching the filter, most-starred first.
func (s *ImportService) List(ctx context.Context, filter repository.RepoFilter) ([]model.Repository, error) {
	return s.repos.ListRepos(ctx, filter)
}

// Get returns one repository and counts the view. A failed counter bump is
// logged, never surfaced; reads must not fail because of engagement tracking.
func (s *ImportService) Get(ctx context.Context, id string) (*model.Repository, error) {
	repo, err := s.repos.GetRepoByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repos.IncrementViews(ctx, id); err != nil {
		s.logger.Warn("failed to increment view count", "repo_id", id, "error", err)
	} else {
		repo.ViewsCount++
	}

	return repo, nil
}

func (s *ImportService) recordActivity(ctx context.Context, activity *model.Activity) {
	if err := s.activities.CreateActivity(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity",
			"activity_type", activity.ActivityType, "error", err)
	}
}
