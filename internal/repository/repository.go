// Package repository defines the storage interfaces consumed by the service
// layer. The sqlite subpackage provides the concrete implementation; services
// only ever see these interfaces, which keeps them testable with in-memory
// mocks and the storage backend swappable.
package repository

import (
	"context"

	"github.com/sakif/project-phoenix/internal/model"
)

// RepoFilter narrows a repository listing. Zero values mean "no filter".
type RepoFilter struct {
	Language string // exact language match
	Status   string // abandonment status match
	Query    string // substring match on name, full_name, or description
}

// UserRepository persists user accounts.
type UserRepository interface {
	// UpsertByGitHubID inserts the user, or updates the mutable profile
	// fields of the existing row with the same github_id. Safe under two
	// racing callbacks for the same account: the unique constraint resolves
	// the race, it never surfaces as an error. On return user.ID holds the
	// canonical internal ID.
	UpsertByGitHubID(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// RepoRepository persists imported repositories.
type RepoRepository interface {
	// CreateRepo inserts a new repository. A duplicate github_repo_id or
	// full_name returns apperror.ErrConflict.
	CreateRepo(ctx context.Context, repo *model.Repository) error
	GetRepoByID(ctx context.Context, id string) (*model.Repository, error)
	ListRepos(ctx context.Context, filter RepoFilter) ([]model.Repository, error)
	// IncrementViews bumps views_count by one atomically in the database.
	IncrementViews(ctx context.Context, id string) error
}

// SquadRepository persists squads and their memberships.
type SquadRepository interface {
	// CreateSquad inserts the squad and its creator membership in one
	// transaction. Duplicate (repo_id, name) returns apperror.ErrConflict.
	CreateSquad(ctx context.Context, squad *model.Squad, creatorMember *model.SquadMember) error
	GetSquadByID(ctx context.Context, id string) (*model.Squad, error)
	ListSquadsByRepo(ctx context.Context, repoID string) ([]model.Squad, error)
	UpdateSquad(ctx context.Context, squad *model.Squad) error
	// DeleteSquad removes the squad; memberships go with it (FK cascade).
	DeleteSquad(ctx context.Context, id string) error

	AddMember(ctx context.Context, member *model.SquadMember) error
	GetMember(ctx context.Context, squadID, userID string) (*model.SquadMember, error)
	ListMembers(ctx context.Context, squadID string) ([]model.SquadMember, error)
	// RemoveMember deletes the membership row; removing a non-member is a
	// no-op, not an error.
	RemoveMember(ctx context.Context, squadID, userID string) error
	// MembershipsByUser returns the squad IDs and roles a user holds within
	// the given squads. Used to annotate listings for a signed-in viewer.
	MembershipsByUser(ctx context.Context, userID string, squadIDs []string) (map[string]string, error)
	// ListUserMemberships returns all of a user's membership rows.
	ListUserMemberships(ctx context.Context, userID string) ([]model.SquadMember, error)
	CountMembers(ctx context.Context, squadID string) (int, error)
}

// ActivityRepository persists the activity feed.
type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity *model.Activity) error
}
