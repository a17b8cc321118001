package model

import "time"

// Squad member roles.
//
// RoleCreator is assigned exactly once, at squad creation, and can never be
// obtained through the join endpoint — a join request asking for creator or
// moderator is downgraded to member before it is stored.
const (
	RoleCreator   = "creator"
	RoleModerator = "moderator"
	RoleMember    = "member"
)

// Squad is a user-formed team attached to one repository.
//
// (RepoID, Name) is unique: two squads on the same repository can't share a
// name. IsActive soft-disables a squad (it stops accepting joins and drops
// out of listings); a hard delete by the creator cascades to members.
type Squad struct {
	ID          string    `json:"id"          db:"id"`
	RepoID      string    `json:"repo_id"     db:"repo_id"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedBy   string    `json:"created_by"  db:"created_by"`
	IsActive    bool      `json:"is_active"   db:"is_active"`
	CreatedAt   time.Time `json:"created_at"  db:"created_at"`

	// Creator is the joined user row, populated on detail/list reads.
	Creator *User `json:"creator,omitempty" db:"-"`
}

// SquadMember is one user's membership in one squad.
// (SquadID, UserID) is unique — at most one membership row per user per squad.
type SquadMember struct {
	ID       string    `json:"id"        db:"id"`
	SquadID  string    `json:"squad_id"  db:"squad_id"`
	UserID   string    `json:"user_id"   db:"user_id"`
	Role     string    `json:"role"      db:"role"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`

	User *User `json:"user,omitempty" db:"-"`
}

// SquadWithMembership annotates a squad with the viewing user's relationship
// to it. For anonymous viewers IsUserMember is false and UserRole empty.
type SquadWithMembership struct {
	Squad
	IsUserMember bool   `json:"is_user_member"`
	UserRole     string `json:"user_role,omitempty"`
}

// SquadDetail is the full squad view: members plus the viewer's membership.
type SquadDetail struct {
	Squad
	Members      []SquadMember `json:"members"`
	IsUserMember bool          `json:"is_user_member"`
	UserRole     string        `json:"user_role,omitempty"`
}
