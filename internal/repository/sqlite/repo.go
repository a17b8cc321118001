package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/project-phoenix/internal/apperror"
	"github.com/sakif/project-phoenix/internal/model"
	"github.com/sakif/project-phoenix/internal/repository"
)

// compile-time check that *DB implements repository.RepoRepository
var _ repository.RepoRepository = (*DB)(nil)

const repoColumns = `id, github_repo_id, full_name, name, description, language,
	stars_count, forks_count, watchers_count, open_issues_count, size_kb,
	default_branch, homepage_url, topics, license_name, created_at_github,
	last_commit_at, last_push_at, abandonment_status, maintenance_score,
	is_analyzed, last_analyzed_at, views_count, interest_count, created_at, updated_at`

// CreateRepo inserts a new repository row.
//
// Both github_repo_id and full_name carry UNIQUE constraints; a violation of
// either means the repository was already imported, which callers receive as
// apperror.ErrConflict rather than a generic failure.
func (db *DB) CreateRepo(ctx context.Context, repo *model.Repository) error {
	repo.ID = xid.New().String()
	now := time.Now()
	repo.CreatedAt = now
	repo.UpdatedAt = now

	topics, err := json.Marshal(repo.Topics)
	if err != nil {
		return fmt.Errorf("sqlite: encoding topics for %s: %w", repo.FullName, err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO repositories (id, github_repo_id, full_name, name, description,
			language, stars_count, forks_count, watchers_count, open_issues_count,
			size_kb, default_branch, homepage_url, topics, license_name,
			created_at_github, last_commit_at, last_push_at, abandonment_status,
			maintenance_score, is_analyzed, last_analyzed_at, views_count,
			interest_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		repo.ID,
		repo.GitHubRepoID,
		repo.FullName,
		repo.Name,
		repo.Description,
		repo.Language,
		repo.StarsCount,
		repo.ForksCount,
		repo.WatchersCount,
		repo.OpenIssuesCount,
		repo.SizeKB,
		repo.DefaultBranch,
		repo.HomepageURL,
		string(topics),
		repo.LicenseName,
		repo.CreatedAtGitHub,
		repo.LastCommitAt,
		repo.LastPushAt,
		repo.AbandonmentStatus,
		repo.MaintenanceScore,
		repo.IsAnalyzed,
		repo.LastAnalyzedAt,
		repo.ViewsCount,
		repo.InterestCount,
		repo.CreatedAt,
		repo.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("repository already exists in the database")
		}
		return fmt.Errorf("sqlite: creating repository %s: %w", repo.FullName, err)
	}

	return nil
}

// GetRepoByID retrieves a repository by its internal ID.
func (db *DB) GetRepoByID(ctx context.Context, id string) (*model.Repository, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+repoColumns+` FROM repositories WHERE id = ?`, id)

	repo, err := scanRepo(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("repository", id)
		}
		return nil, fmt.Errorf("sqlite: getting repository %s: %w", id, err)
	}
	return repo, nil
}

// ListRepos returns repositories matching the filter, most-starred first.
func (db *DB) ListRepos(ctx context.Context, filter repository.RepoFilter) ([]model.Repository, error) {
	query := `SELECT ` + repoColumns + ` FROM repositories WHERE 1=1`
	var args []any

	if filter.Language != "" {
		query += ` AND language = ?`
		args = append(args, filter.Language)
	}
	if filter.Status != "" {
		query += ` AND abandonment_status = ?`
		args = append(args, filter.Status)
	}
	if filter.Query != "" {
		query += ` AND (name LIKE ? OR full_name LIKE ? OR description LIKE ?)`
		pattern := "%" + filter.Query + "%"
		args = append(args, pattern, pattern, pattern)
	}
	query += ` ORDER BY stars_count DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing repositories: %w", err)
	}
	defer rows.Close()

	repos := []model.Repository{}
	for rows.Next() {
		repo, err := scanRepo(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning repository row: %w", err)
		}
		repos = append(repos, *repo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating repositories: %w", err)
	}

	return repos, nil
}

// IncrementViews bumps views_count by one inside the database.
// A single UPDATE keeps concurrent detail views from losing increments the
// way a read-modify-write would.
func (db *DB) IncrementViews(ctx context.Context, id string) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE repositories SET views_count = views_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing views for %s: %w", id, err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRepo(s scanner) (*model.Repository, error) {
	var (
		repo   model.Repository
		topics string
	)
	err := s.Scan(
		&repo.ID,
		&repo.GitHubRepoID,
		&repo.FullName,
		&repo.Name,
		&repo.Description,
		&repo.Language,
		&repo.StarsCount,
		&repo.ForksCount,
		&repo.WatchersCount,
		&repo.OpenIssuesCount,
		&repo.SizeKB,
		&repo.DefaultBranch,
		&repo.HomepageURL,
		&topics,
		&repo.LicenseName,
		&repo.CreatedAtGitHub,
		&repo.LastCommitAt,
		&repo.LastPushAt,
		&repo.AbandonmentStatus,
		&repo.MaintenanceScore,
		&repo.IsAnalyzed,
		&repo.LastAnalyzedAt,
		&repo.ViewsCount,
		&repo.InterestCount,
		&repo.CreatedAt,
		&repo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(topics), &repo.Topics); err != nil {
		return nil, fmt.Errorf("decoding topics for %s: %w", repo.ID, err)
	}
	if repo.Topics == nil {
		repo.Topics = []string{}
	}
	return &repo, nil
}
