package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/project-phoenix/internal/apperror"
	"github.com/sakif/project-phoenix/internal/model"
	"github.com/sakif/project-phoenix/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// UpsertByGitHubID inserts the user or refreshes the mutable profile fields
// of the existing row keyed by github_id.
//
// A single INSERT ... ON CONFLICT DO UPDATE statement makes the operation
// safe under two racing OAuth callbacks for the same account (a double-click
// on "Sign in"): whichever insert loses the race turns into the update branch
// inside the database, it never bubbles up as a constraint error.
func (db *DB) UpsertByGitHubID(ctx context.Context, user *model.User) error {
	now := time.Now()
	newID := xid.New().String()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, github_id, username, email, avatar_url, bio,
		                    location, website_url, twitter_username, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(github_id) DO UPDATE SET
			username         = excluded.username,
			email            = excluded.email,
			avatar_url       = excluded.avatar_url,
			bio              = excluded.bio,
			location         = excluded.location,
			website_url      = excluded.website_url,
			twitter_username = excluded.twitter_username,
			updated_at       = excluded.updated_at`,
		newID,
		user.GitHubID,
		user.Username,
		user.Email,
		user.AvatarURL,
		user.Bio,
		user.Location,
		user.WebsiteURL,
		user.TwitterUsername,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting user (githubID=%d): %w", user.GitHubID, err)
	}

	// Read the canonical row back: on the update branch the internal ID and
	// created_at are the original ones, not the values we just generated.
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at FROM users WHERE github_id = ?`,
		user.GitHubID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: reading back user (githubID=%d): %w", user.GitHubID, err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, github_id, username, email, avatar_url, bio, location,
		        website_url, twitter_username, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID,
		&u.GitHubID,
		&u.Username,
		&u.Email,
		&u.AvatarURL,
		&u.Bio,
		&u.Location,
		&u.WebsiteURL,
		&u.TwitterUsername,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return &u, nil
}
