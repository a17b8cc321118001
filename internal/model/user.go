// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// GitHub OAuth is the only identity provider, so the primary external
// identifier is the GitHub user ID (an integer). We still generate our own
// internal string ID (xid) so our primary keys aren't tied to a third-party's
// numbering scheme. The UNIQUE constraint on github_id in the DB ensures one
// GitHub account maps to exactly one app account.
//
// Email and the other profile fields can be empty — GitHub users may hide
// their email or leave bio/location/links blank. We use empty strings as the
// zero value rather than nullable pointers.
type User struct {
	ID              string    `json:"id"               db:"id"`
	GitHubID        int64     `json:"github_id"        db:"github_id"` // GitHub's numeric user ID
	Username        string    `json:"username"         db:"username"`  // GitHub login, e.g. "octocat"
	Email           string    `json:"email"            db:"email"`
	AvatarURL       string    `json:"avatar_url"       db:"avatar_url"`
	Bio             string    `json:"bio"              db:"bio"`
	Location        string    `json:"location"         db:"location"`
	WebsiteURL      string    `json:"website_url"      db:"website_url"`
	TwitterUsername string    `json:"twitter_username" db:"twitter_username"`
	CreatedAt       time.Time `json:"created_at"       db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"       db:"updated_at"`
}
