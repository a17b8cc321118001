package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/sakif/project-phoenix/internal/model"
	"github.com/sakif/project-phoenix/internal/repository"
)

// UserService serves the signed-in user's profile and dashboard aggregates.
// Dashboard data is derived from squad membership: a "project" belongs on the
// user's dashboard when they're a member of at least one of its squads.
type UserService struct {
	users  repository.UserRepository
	squads repository.SquadRepository
	repos  repository.RepoRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, squads repository.SquadRepository, repos repository.RepoRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		squads: squads,
		repos:  repos,
		logger: logger,
	}
}

// Me returns the user's full profile row.
func (s *UserService) Me(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// Projects returns the repositories the user participates in through squads,
// one entry per repository with the user's squad count on it, most recently
// joined first.
func (s *UserService) Projects(ctx context.Context, userID string) ([]model.UserProject, error) {
	memberships, err := s.squads.ListUserMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}

	byRepo := map[string]*model.UserProject{}
	var order []string
	for _, m := range memberships {
		squad, err := s.squads.GetSquadByID(ctx, m.SquadID)
		if err != nil {
			// A membership pointing at a vanished squad shouldn't break the
			// whole dashboard.
			s.logger.Warn("skipping membership with missing squad",
				"squad_id", m.SquadID, "error", err)
			continue
		}

		if p, ok := byRepo[squad.RepoID]; ok {
			p.SquadCount++
			if p.LastActivity == nil || m.JoinedAt.After(*p.LastActivity) {
				t := m.JoinedAt
				p.LastActivity = &t
			}
			continue
		}

		repo, err := s.repos.GetRepoByID(ctx, squad.RepoID)
		if err != nil {
			s.logger.Warn("skipping squad with missing repository",
				"repo_id", squad.RepoID, "error", err)
			continue
		}

		joined := m.JoinedAt
		byRepo[squad.RepoID] = &model.UserProject{
			ID:                repo.ID,
			Name:              repo.Name,
			FullName:          repo.FullName,
			Description:       repo.Description,
			Language:          repo.Language,
			StarsCount:        repo.StarsCount,
			AbandonmentStatus: repo.AbandonmentStatus,
			MaintenanceScore:  repo.MaintenanceScore,
			LastActivity:      &joined,
			SquadCount:        1,
		}
		order = append(order, squad.RepoID)
	}

	projects := make([]model.UserProject, 0, len(byRepo))
	for _, repoID := range order {
		projects = append(projects, *byRepo[repoID])
	}
	sort.SliceStable(projects, func(i, j int) bool {
		a, b := projects[i].LastActivity, projects[j].LastActivity
		if a == nil || b == nil {
			return b == nil
		}
		return a.After(*b)
	})
	return projects, nil
}

// Squads returns the user's squad memberships with each squad's member count
// and its repository summarized inline, most recently joined first.
func (s *UserService) Squads(ctx context.Context, userID string) ([]model.UserSquad, error) {
	memberships, err := s.squads.ListUserMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]model.UserSquad, 0, len(memberships))
	for _, m := range memberships {
		squad, err := s.squads.GetSquadByID(ctx, m.SquadID)
		if err != nil {
			s.logger.Warn("skipping membership with missing squad",
				"squad_id", m.SquadID, "error", err)
			continue
		}
		repo, err := s.repos.GetRepoByID(ctx, squad.RepoID)
		if err != nil {
			s.logger.Warn("skipping squad with missing repository",
				"repo_id", squad.RepoID, "error", err)
			continue
		}
		count, err := s.squads.CountMembers(ctx, squad.ID)
		if err != nil {
			return nil, err
		}

		out = append(out, model.UserSquad{
			ID:          squad.ID,
			Name:        squad.Name,
			Description: squad.Description,
			MemberCount: count,
			Role:        m.Role,
			JoinedAt:    m.JoinedAt,
			Project: model.UserProject{
				ID:                repo.ID,
				Name:              repo.Name,
				FullName:          repo.FullName,
				Language:          repo.Language,
				StarsCount:        repo.StarsCount,
				AbandonmentStatus: repo.AbandonmentStatus,
				MaintenanceScore:  repo.MaintenanceScore,
			},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].JoinedAt.After(out[j].JoinedAt)
	})
	return out, nil
}

// Stats aggregates the user's footprint: distinct projects reached through
// squads, total squad memberships, and the account age anchor.
func (s *UserService) Stats(ctx context.Context, userID string) (*model.UserStats, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	memberships, err := s.squads.ListUserMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}

	repoIDs := map[string]struct{}{}
	for _, m := range memberships {
		squad, err := s.squads.GetSquadByID(ctx, m.SquadID)
		if err != nil {
			continue
		}
		repoIDs[squad.RepoID] = struct{}{}
	}

	return &model.UserStats{
		TotalProjects:      len(repoIDs),
		TotalSquads:        len(memberships),
		TotalContributions: 0,
		AccountCreated:     user.CreatedAt,
	}, nil
}
