package model

import "time"

// Abandonment statuses computed by the scoring package.
//
// StatusReviving exists in the data model (a squad can be actively bringing a
// project back) but is never produced by the scoring logic itself.
const (
	StatusActive    = "active"
	StatusAtRisk    = "at-risk"
	StatusAbandoned = "abandoned"
	StatusReviving  = "reviving"
)

// Repository is a GitHub repository imported into the catalog.
//
// Metadata fields mirror what the GitHub REST API returns at import time.
// AbandonmentStatus and MaintenanceScore are computed locally from commit
// recency and open-issue count; ViewsCount and InterestCount are local
// engagement counters that GitHub knows nothing about.
//
// GitHubRepoID and FullName are each unique — an import of an already known
// repository is a conflict, never a silent duplicate.
type Repository struct {
	ID                string     `json:"id"                 db:"id"`
	GitHubRepoID      int64      `json:"github_repo_id"     db:"github_repo_id"`
	FullName          string     `json:"full_name"          db:"full_name"` // "owner/name"
	Name              string     `json:"name"               db:"name"`
	Description       string     `json:"description"        db:"description"`
	Language          string     `json:"language"           db:"language"`
	StarsCount        int        `json:"stars_count"        db:"stars_count"`
	ForksCount        int        `json:"forks_count"        db:"forks_count"`
	WatchersCount     int        `json:"watchers_count"     db:"watchers_count"`
	OpenIssuesCount   int        `json:"open_issues_count"  db:"open_issues_count"`
	SizeKB            int        `json:"size_kb"            db:"size_kb"`
	DefaultBranch     string     `json:"default_branch"     db:"default_branch"`
	HomepageURL       string     `json:"homepage_url"       db:"homepage_url"`
	Topics            []string   `json:"topics"             db:"topics"` // stored as JSON
	LicenseName       string     `json:"license_name"       db:"license_name"`
	CreatedAtGitHub   *time.Time `json:"created_at_github"  db:"created_at_github"`
	LastCommitAt      *time.Time `json:"last_commit_at"     db:"last_commit_at"`
	LastPushAt        *time.Time `json:"last_push_at"       db:"last_push_at"`
	AbandonmentStatus string     `json:"abandonment_status" db:"abandonment_status"`
	MaintenanceScore  int        `json:"maintenance_score"  db:"maintenance_score"`
	IsAnalyzed        bool       `json:"is_analyzed"        db:"is_analyzed"`
	LastAnalyzedAt    *time.Time `json:"last_analyzed_at"   db:"last_analyzed_at"`
	ViewsCount        int        `json:"views_count"        db:"views_count"`
	InterestCount     int        `json:"interest_count"     db:"interest_count"`
	CreatedAt         time.Time  `json:"created_at"         db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"         db:"updated_at"`
}
