package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/project-phoenix/internal/apperror"
	"github.com/sakif/project-phoenix/internal/model"
	"github.com/sakif/project-phoenix/internal/repository"
)

// SquadService manages squads and their memberships.
type SquadService struct {
	squads     repository.SquadRepository
	repos      repository.RepoRepository
	activities repository.ActivityRepository
	logger     *slog.Logger
}

func NewSquadService(squads repository.SquadRepository, repos repository.RepoRepository, activities repository.ActivityRepository, logger *slog.Logger) *SquadService {
	return &SquadService{
		squads:     squads,
		repos:      repos,
		activities: activities,
		logger:     logger,
	}
}

// CreateSquadInput carries the fields a user supplies when forming a squad.
type CreateSquadInput struct {
	RepoID      string `json:"repo_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListByRepo returns the repository's active squads. For a signed-in viewer
// each squad is annotated with whether they belong to it and in what role;
// viewerID may be empty for anonymous viewers.
func (s *SquadService) ListByRepo(ctx context.Context, repoID, viewerID string) ([]model.SquadWithMembership, error) {
	squads, err := s.squads.ListSquadsByRepo(ctx, repoID)
	if err != nil {
		return nil, err
	}

	memberships := map[string]string{}
	if viewerID != "" && len(squads) > 0 {
		ids := make([]string, len(squads))
		for i, sq := range squads {
			ids[i] = sq.ID
		}
		memberships, err = s.squads.MembershipsByUser(ctx, viewerID, ids)
		if err != nil {
			return nil, err
		}
	}

	out := make([]model.SquadWithMembership, len(squads))
	for i, sq := range squads {
		role, isMember := memberships[sq.ID]
		out[i] = model.SquadWithMembership{
			Squad:        sq,
			IsUserMember: isMember,
			UserRole:     role,
		}
	}
	return out, nil
}

// Create forms a new squad on a repository. The creator automatically becomes
// its first member with the creator role; squad and membership are stored
// together, so a squad can never exist without its creator in it.
func (s *SquadService) Create(ctx context.Context, in CreateSquadInput, userID string) (*model.Squad, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperror.ValidationFailed("name", "squad name is required")
	}
	if in.RepoID == "" {
		return nil, apperror.ValidationFailed("repo_id", "repository is required")
	}

	// Surface a 404 for an unknown repository instead of a bare FK failure.
	if _, err := s.repos.GetRepoByID(ctx, in.RepoID); err != nil {
		return nil, err
	}

	squad := &model.Squad{
		RepoID:      in.RepoID,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   userID,
		IsActive:    true,
	}
	creator := &model.SquadMember{
		UserID: userID,
		Role:   model.RoleCreator,
	}
	if err := s.squads.CreateSquad(ctx, squad, creator); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, &model.Activity{
		UserID:       userID,
		RepoID:       squad.RepoID,
		ActivityType: model.ActivitySquadCreated,
		Title:        fmt.Sprintf("Formed squad %q", squad.Name),
		Metadata:     map[string]string{"squad_name": squad.Name},
		IsPublic:     true,
	})

	return squad, nil
}

// Get returns the full squad view: its members and the viewer's relationship
// to it. viewerID may be empty.
func (s *SquadService) Get(ctx context.Context, squadID, viewerID string) (*model.SquadDetail, error) {
	squad, err := s.squads.GetSquadByID(ctx, squadID)
	if err != nil {
		return nil, err
	}

	members, err := s.squads.ListMembers(ctx, squadID)
	if err != nil {
		return nil, err
	}

	detail := &model.SquadDetail{
		Squad:   *squad,
		Members: members,
	}
	if viewerID != "" {
		for _, m := range members {
			if m.UserID == viewerID {
				detail.IsUserMember = true
				detail.UserRole = m.Role
				break
			}
		}
	}
	return detail, nil
}

// UpdateSquadInput carries the mutable squad fields. Nil means "leave as is".
type UpdateSquadInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// Update edits a squad. Only the creator may do this.
func (s *SquadService) Update(ctx context.Context, squadID, userID string, in UpdateSquadInput) (*model.Squad, error) {
	squad, err := s.squads.GetSquadByID(ctx, squadID)
	if err != nil {
		return nil, err
	}
	if squad.CreatedBy != userID {
		return nil, apperror.Forbidden("only the squad creator can update this squad")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.ValidationFailed("name", "squad name is required")
		}
		squad.Name = name
	}
	if in.Description != nil {
		squad.Description = strings.TrimSpace(*in.Description)
	}
	if in.IsActive != nil {
		squad.IsActive = *in.IsActive
	}

	if err := s.squads.UpdateSquad(ctx, squad); err != nil {
		return nil, err
	}
	return squad, nil
}

// Delete removes a squad and, through the cascade, all its memberships.
// Only the creator may do this.
func (s *SquadService) Delete(ctx context.Context, squadID, userID string) error {
	squad, err := s.squads.GetSquadByID(ctx, squadID)
	if err != nil {
		return err
	}
	if squad.CreatedBy != userID {
		return apperror.Forbidden("only the squad creator can delete this squad")
	}
	return s.squads.DeleteSquad(ctx, squadID)
}

// Join adds the user to a squad. Requested privileged roles are quietly
// downgraded to member — creator can only be earned at squad creation and
// moderator only by promotion. Any other unknown role is rejected outright.
func (s *SquadService) Join(ctx context.Context, squadID, userID, role string) (*model.SquadMember, error) {
	squad, err := s.squads.GetSquadByID(ctx, squadID)
	if err != nil {
		return nil, err
	}
	if !squad.IsActive {
		return nil, apperror.ValidationFailed("squad_id", "this squad is no longer active")
	}

	switch role {
	case "":
		role = model.RoleMember
	case model.RoleCreator, model.RoleModerator:
		role = model.RoleMember
	case model.RoleMember:
	default:
		return nil, apperror.ValidationFailed("role", "unknown squad role")
	}

	member := &model.SquadMember{
		SquadID: squadID,
		UserID:  userID,
		Role:    role,
	}
	if err := s.squads.AddMember(ctx, member); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, &model.Activity{
		UserID:       userID,
		RepoID:       squad.RepoID,
		ActivityType: model.ActivitySquadJoined,
		Title:        fmt.Sprintf("Joined squad %q", squad.Name),
		Metadata:     map[string]string{"squad_name": squad.Name},
		IsPublic:     true,
	})

	return member, nil
}

// Leave removes the user from a squad. Leaving a squad you're not in is a
// no-op; so is leaving one that doesn't exist.
func (s *SquadService) Leave(ctx context.Context, squadID, userID string) error {
	return s.squads.RemoveMember(ctx, squadID, userID)
}

// Members lists a squad's members, earliest-joined first.
func (s *SquadService) Members(ctx context.Context, squadID string) ([]model.SquadMember, error) {
	if _, err := s.squads.GetSquadByID(ctx, squadID); err != nil {
		return nil, err
	}
	return s.squads.ListMembers(ctx, squadID)
}

func (s *SquadService) recordActivity(ctx context.Context, activity *model.Activity) {
	if err := s.activities.CreateActivity(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity",
			"activity_type", activity.ActivityType, "error", err)
	}
}
