package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/sakif/project-phoenix/internal/model"
)

// newTestDB returns a DB backed by an in-memory SQLite database.
// Each call gets a fresh, isolated database; it disappears on Close.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, githubID int64, username string) *model.User {
	t.Helper()
	user := &model.User{
		GitHubID:  githubID,
		Username:  username,
		Email:     username + "@example.com",
		AvatarURL: "https://avatars.githubusercontent.com/u/123",
	}
	if err := db.UpsertByGitHubID(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestRepo creates a repository and fails the test if it errors.
func createTestRepo(t *testing.T, db *DB, githubRepoID int64, fullName string) *model.Repository {
	t.Helper()
	last := time.Now().AddDate(0, 0, -40)
	repo := &model.Repository{
		GitHubRepoID:      githubRepoID,
		FullName:          fullName,
		Name:              fullName,
		Language:          "Go",
		StarsCount:        100,
		OpenIssuesCount:   10,
		Topics:            []string{"testing"},
		LastCommitAt:      &last,
		AbandonmentStatus: model.StatusActive,
		MaintenanceScore:  95,
		IsAnalyzed:        true,
	}
	if err := db.CreateRepo(context.Background(), repo); err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}
	return repo
}

// createTestSquad creates a squad with its creator membership.
func createTestSquad(t *testing.T, db *DB, repoID, creatorID, name string) *model.Squad {
	t.Helper()
	squad := &model.Squad{
		RepoID:    repoID,
		Name:      name,
		CreatedBy: creatorID,
		IsActive:  true,
	}
	member := &model.SquadMember{
		UserID: creatorID,
		Role:   model.RoleCreator,
	}
	if err := db.CreateSquad(context.Background(), squad, member); err != nil {
		t.Fatalf("failed to create test squad: %v", err)
	}
	return squad
}
