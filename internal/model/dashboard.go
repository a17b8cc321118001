package model

import "time"

// UserProject is one repository on a user's dashboard, reached through squad
// membership. SquadCount is how many of the user's squads belong to it.
type UserProject struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	FullName          string     `json:"full_name"`
	Description       string     `json:"description"`
	Language          string     `json:"language"`
	StarsCount        int        `json:"stars_count"`
	AbandonmentStatus string     `json:"abandonment_status"`
	MaintenanceScore  int        `json:"maintenance_score"`
	LastActivity      *time.Time `json:"last_activity"`
	SquadCount        int        `json:"squad_count"`
}

// UserSquad is one squad membership on a user's dashboard, with the squad's
// repository summarized inline.
type UserSquad struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	MemberCount int         `json:"member_count"`
	Role        string      `json:"role"`
	JoinedAt    time.Time   `json:"joined_at"`
	Project     UserProject `json:"project"`
}

// UserStats aggregates a user's footprint on the platform.
// TotalContributions is always zero for now; actual contribution tracking
// needs commit attribution that the import pipeline doesn't collect yet.
type UserStats struct {
	TotalProjects      int       `json:"total_projects"`
	TotalSquads        int       `json:"total_squads"`
	TotalContributions int       `json:"total_contributions"`
	AccountCreated     time.Time `json:"account_created"`
}
