package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/project-phoenix/internal/apperror"
	"github.com/sakif/project-phoenix/internal/model"
	"github.com/sakif/project-phoenix/internal/repository"
)

// compile-time check that *DB implements repository.SquadRepository
var _ repository.SquadRepository = (*DB)(nil)

// CreateSquad inserts the squad and its creator's membership in one
// transaction. The two rows are a single logical unit: if the membership
// insert fails, the squad insert rolls back instead of leaving a creatorless
// squad behind.
//
// Duplicate (repo_id, name) surfaces as apperror.ErrConflict.
func (db *DB) CreateSquad(ctx context.Context, squad *model.Squad, creatorMember *model.SquadMember) error {
	squad.ID = xid.New().String()
	squad.CreatedAt = time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning squad transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO squads (id, repo_id, name, description, created_by, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		squad.ID,
		squad.RepoID,
		squad.Name,
		squad.Description,
		squad.CreatedBy,
		squad.IsActive,
		squad.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("a squad with this name already exists for this project")
		}
		return fmt.Errorf("sqlite: creating squad %q: %w", squad.Name, err)
	}

	creatorMember.ID = xid.New().String()
	creatorMember.SquadID = squad.ID
	creatorMember.JoinedAt = squad.CreatedAt

	_, err = tx.ExecContext(ctx,
		`INSERT INTO squad_members (id, squad_id, user_id, role, joined_at)
		 VALUES (?, ?, ?, ?, ?)`,
		creatorMember.ID,
		creatorMember.SquadID,
		creatorMember.UserID,
		creatorMember.Role,
		creatorMember.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding creator membership for squad %s: %w", squad.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing squad %s: %w", squad.ID, err)
	}
	return nil
}

const squadColumns = `s.id, s.repo_id, s.name, s.description, s.created_by,
	s.is_active, s.created_at,
	u.id, u.username, u.avatar_url`

func scanSquad(s scanner) (*model.Squad, error) {
	var (
		squad   model.Squad
		creator model.User
	)
	err := s.Scan(
		&squad.ID,
		&squad.RepoID,
		&squad.Name,
		&squad.Description,
		&squad.CreatedBy,
		&squad.IsActive,
		&squad.CreatedAt,
		&creator.ID,
		&creator.Username,
		&creator.AvatarURL,
	)
	if err != nil {
		return nil, err
	}
	squad.Creator = &creator
	return &squad, nil
}

// GetSquadByID retrieves a squad with its creator joined in.
func (db *DB) GetSquadByID(ctx context.Context, id string) (*model.Squad, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+squadColumns+`
		 FROM squads s JOIN users u ON u.id = s.created_by
		 WHERE s.id = ?`, id)

	squad, err := scanSquad(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("squad", id)
		}
		return nil, fmt.Errorf("sqlite: getting squad %s: %w", id, err)
	}
	return squad, nil
}

// ListSquadsByRepo returns a repository's active squads, newest first.
func (db *DB) ListSquadsByRepo(ctx context.Context, repoID string) ([]model.Squad, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+squadColumns+`
		 FROM squads s JOIN users u ON u.id = s.created_by
		 WHERE s.repo_id = ? AND s.is_active = 1
		 ORDER BY s.created_at DESC`, repoID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing squads for repo %s: %w", repoID, err)
	}
	defer rows.Close()

	squads := []model.Squad{}
	for rows.Next() {
		squad, err := scanSquad(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning squad row: %w", err)
		}
		squads = append(squads, *squad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating squads: %w", err)
	}
	return squads, nil
}

// UpdateSquad writes the mutable squad fields (name, description, is_active).
func (db *DB) UpdateSquad(ctx context.Context, squad *model.Squad) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE squads SET name = ?, description = ?, is_active = ? WHERE id = ?`,
		squad.Name,
		squad.Description,
		squad.IsActive,
		squad.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("a squad with this name already exists for this project")
		}
		return fmt.Errorf("sqlite: updating squad %s: %w", squad.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("squad", squad.ID)
	}
	return nil
}

// DeleteSquad removes a squad; the squad_members FK cascade removes its
// memberships in the same statement.
func (db *DB) DeleteSquad(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM squads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting squad %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("squad", id)
	}
	return nil
}

// AddMember inserts a membership row. A duplicate (squad_id, user_id) means
// the user already belongs to the squad and surfaces as ErrConflict.
func (db *DB) AddMember(ctx context.Context, member *model.SquadMember) error {
	member.ID = xid.New().String()
	member.JoinedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO squad_members (id, squad_id, user_id, role, joined_at)
		 VALUES (?, ?, ?, ?, ?)`,
		member.ID,
		member.SquadID,
		member.UserID,
		member.Role,
		member.JoinedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("you are already a member of this squad")
		}
		return fmt.Errorf("sqlite: adding member to squad %s: %w", member.SquadID, err)
	}
	return nil
}

// GetMember returns one user's membership in one squad, or ErrNotFound.
func (db *DB) GetMember(ctx context.Context, squadID, userID string) (*model.SquadMember, error) {
	var m model.SquadMember
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, squad_id, user_id, role, joined_at
		 FROM squad_members WHERE squad_id = ? AND user_id = ?`,
		squadID, userID,
	).Scan(&m.ID, &m.SquadID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("membership", squadID+"/"+userID)
		}
		return nil, fmt.Errorf("sqlite: getting membership %s/%s: %w", squadID, userID, err)
	}
	return &m, nil
}

// ListMembers returns a squad's members with user info, oldest first.
func (db *DB) ListMembers(ctx context.Context, squadID string) ([]model.SquadMember, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT m.id, m.squad_id, m.user_id, m.role, m.joined_at,
		        u.id, u.github_id, u.username, u.avatar_url, u.bio
		 FROM squad_members m JOIN users u ON u.id = m.user_id
		 WHERE m.squad_id = ?
		 ORDER BY m.joined_at ASC`, squadID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing members of squad %s: %w", squadID, err)
	}
	defer rows.Close()

	members := []model.SquadMember{}
	for rows.Next() {
		var (
			m model.SquadMember
			u model.User
		)
		err := rows.Scan(
			&m.ID, &m.SquadID, &m.UserID, &m.Role, &m.JoinedAt,
			&u.ID, &u.GitHubID, &u.Username, &u.AvatarURL, &u.Bio,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning member row: %w", err)
		}
		m.User = &u
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating members: %w", err)
	}
	return members, nil
}

// RemoveMember deletes the membership row. Deleting a non-existent membership
// affects zero rows, which is fine — leave is idempotent.
func (db *DB) RemoveMember(ctx context.Context, squadID, userID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM squad_members WHERE squad_id = ? AND user_id = ?`,
		squadID, userID)
	if err != nil {
		return fmt.Errorf("sqlite: removing member %s from squad %s: %w", userID, squadID, err)
	}
	return nil
}

// MembershipsByUser returns squadID → role for the user's memberships within
// the given squads.
func (db *DB) MembershipsByUser(ctx context.Context, userID string, squadIDs []string) (map[string]string, error) {
	result := make(map[string]string)
	if len(squadIDs) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(squadIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(squadIDs)+1)
	args = append(args, userID)
	for _, id := range squadIDs {
		args = append(args, id)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT squad_id, role FROM squad_members
		 WHERE user_id = ? AND squad_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing memberships for user %s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var squadID, role string
		if err := rows.Scan(&squadID, &role); err != nil {
			return nil, fmt.Errorf("sqlite: scanning membership row: %w", err)
		}
		result[squadID] = role
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating memberships: %w", err)
	}
	return result, nil
}

// ListUserMemberships returns all membership rows for a user, newest first.
func (db *DB) ListUserMemberships(ctx context.Context, userID string) ([]model.SquadMember, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, squad_id, user_id, role, joined_at
		 FROM squad_members WHERE user_id = ?
		 ORDER BY joined_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing memberships for user %s: %w", userID, err)
	}
	defer rows.Close()

	members := []model.SquadMember{}
	for rows.Next() {
		var m model.SquadMember
		if err := rows.Scan(&m.ID, &m.SquadID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning membership row: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating memberships: %w", err)
	}
	return members, nil
}

// CountMembers returns how many members a squad has.
func (db *DB) CountMembers(ctx context.Context, squadID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM squad_members WHERE squad_id = ?`, squadID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting members of squad %s: %w", squadID, err)
	}
	return count, nil
}
