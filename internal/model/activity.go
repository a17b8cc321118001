package model

import "time"

// Activity types recorded in the feed.
const (
	ActivityRepoAdded    = "repo_added"
	ActivitySquadCreated = "squad_created"
	ActivitySquadJoined  = "squad_joined"
)

// Activity is one entry in the public activity feed.
//
// Feed writes are best-effort: the primary operation (an import, a squad
// creation) must succeed or fail on its own, and a failed feed insert is only
// logged. Metadata is a small free-form bag serialized as JSON.
type Activity struct {
	ID           string            `json:"id"            db:"id"`
	UserID       string            `json:"user_id"       db:"user_id"`
	RepoID       string            `json:"repo_id"       db:"repo_id"`
	ActivityType string            `json:"activity_type" db:"activity_type"`
	Title        string            `json:"title"         db:"title"`
	Description  string            `json:"description"   db:"description"`
	Metadata     map[string]string `json:"metadata"      db:"metadata"` // stored as JSON
	IsPublic     bool              `json:"is_public"     db:"is_public"`
	CreatedAt    time.Time         `json:"created_at"    db:"created_at"`
}
