package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/project-phoenix/internal/apperror"
	"github.com/sakif/project-phoenix/internal/model"
)

func TestCreateSquad_WithCreatorMembership(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, 1, "creator")
	repo := createTestRepo(t, db, 1, "octocat/revival")

	squad := createTestSquad(t, db, repo.ID, user.ID, "core team")

	members, err := db.ListMembers(context.Background(), squad.ID)
	if err != nil {
		t.Fatalf("ListMembers() error = %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("got %d members, want 1 (the creator)", len(members))
	}
	if members[0].Role != model.RoleCreator {
		t.Errorf("creator role = %q, want %q", members[0].Role, model.RoleCreator)
	}
	if members[0].UserID != user.ID {
		t.Errorf("creator member user = %q, want %q", members[0].UserID, user.ID)
	}
}

func TestCreateSquad_DuplicateNamePerRepo(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, 1, "creator")
	repo := createTestRepo(t, db, 1, "octocat/revival")
	otherRepo := createTestRepo(t, db, 2, "octocat/other")

	createTestSquad(t, db, repo.ID, user.ID, "core team")

	dup := &model.Squad{RepoID: repo.ID, Name: "core team", CreatedBy: user.ID, IsActive: true}
	err := db.CreateSquad(context.Background(), dup,
		&model.SquadMember{UserID: user.ID, Role: model.RoleCreator})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate (repo, name) error = %v, want ErrConflict", err)
	}

	// Same name on a different repository is fine.
	createTestSquad(t, db, otherRepo.ID, user.ID, "core team")
}

func TestCreateSquad_RollsBackOnMembershipFailure(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, 1, "creator")
	repo := createTestRepo(t, db, 1, "octocat/revival")

	// A creator membership referencing a user that doesn't exist violates
	// the FK, so the whole transaction must roll back.
	squad := &model.Squad{RepoID: repo.ID, Name: "ghost squad", CreatedBy: user.ID, IsActive: true}
	err := db.CreateSquad(context.Background(), squad,
		&model.SquadMember{UserID: "no-such-user", Role: model.RoleCreator})
	if err == nil {
		t.Fatal("CreateSquad() should fail when the membership insert fails")
	}

	squads, err := db.ListSquadsByRepo(context.Background(), repo.ID)
	if err != nil {
		t.Fatalf("ListSquadsByRepo() error = %v", err)
	}
	if len(squads) != 0 {
		t.Errorf("squad insert should have rolled back, found %d squads", len(squads))
	}
}

func TestAddMember_Duplicate(t *testing.T) {
	db := newTestDB(t)
	creator := createTestUser(t, db, 1, "creator")
	joiner := createTestUser(t, db, 2, "joiner")
	repo := createTestRepo(t, db, 1, "octocat/revival")
	squad := createTestSquad(t, db, repo.ID, creator.ID, "core team")

	member := &model.SquadMember{SquadID: squad.ID, UserID: joiner.ID, Role: model.RoleMember}
	if err := db.AddMember(context.Background(), member); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	again := &model.SquadMember{SquadID: squad.ID, UserID: joiner.ID, Role: model.RoleMember}
	err := db.AddMember(context.Background(), again)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second AddMember() error = %v, want ErrConflict", err)
	}
}

func TestRemoveMember_IdempotentAndRejoin(t *testing.T) {
	db := newTestDB(t)
	creator := createTestUser(t, db, 1, "creator")
	joiner := createTestUser(t, db, 2, "joiner")
	repo := createTestRepo(t, db, 1, "octocat/revival")
	squad := createTestSquad(t, db, repo.ID, creator.ID, "core team")

	// Leaving without being a member is not an error.
	if err := db.RemoveMember(context.Background(), squad.ID, joiner.ID); err != nil {
		t.Fatalf("RemoveMember() on non-member error = %v", err)
	}

	m := &model.SquadMember{SquadID: squad.ID, UserID: joiner.ID, Role: model.RoleMember}
	if err := db.AddMember(context.Background(), m); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if err := db.RemoveMember(context.Background(), squad.ID, joiner.ID); err != nil {
		t.Fatalf("RemoveMember() error = %v", err)
	}

	// Leave then re-join succeeds.
	rejoin := &model.SquadMember{SquadID: squad.ID, UserID: joiner.ID, Role: model.RoleMember}
	if err := db.AddMember(context.Background(), rejoin); err != nil {
		t.Errorf("re-join after leave error = %v", err)
	}
}

func TestDeleteSquad_CascadesToMembers(t *testing.T) {
	db := newTestDB(t)
	creator := createTestUser(t, db, 1, "creator")
	joiner := createTestUser(t, db, 2, "joiner")
	repo := createTestRepo(t, db, 1, "octocat/revival")
	squad := createTestSquad(t, db, repo.ID, creator.ID, "core team")

	if err := db.AddMember(context.Background(),
		&model.SquadMember{SquadID: squad.ID, UserID: joiner.ID, Role: model.RoleMember}); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	if err := db.DeleteSquad(context.Background(), squad.ID); err != nil {
		t.Fatalf("DeleteSquad() error = %v", err)
	}

	count, err := db.CountMembers(context.Background(), squad.ID)
	if err != nil {
		t.Fatalf("CountMembers() error = %v", err)
	}
	if count != 0 {
		t.Errorf("members remaining after squad delete = %d, want 0", count)
	}
}

func TestListSquadsByRepo_SkipsInactive(t *testing.T) {
	db := newTestDB(t)
	creator := createTestUser(t, db, 1, "creator")
	repo := createTestRepo(t, db, 1, "octocat/revival")
	active := createTestSquad(t, db, repo.ID, creator.ID, "active squad")
	retired := createTestSquad(t, db, repo.ID, creator.ID, "retired squad")

	retired.IsActive = false
	if err := db.UpdateSquad(context.Background(), retired); err != nil {
		t.Fatalf("UpdateSquad() error = %v", err)
	}

	squads, err := db.ListSquadsByRepo(context.Background(), repo.ID)
	if err != nil {
		t.Fatalf("ListSquadsByRepo() error = %v", err)
	}
	if len(squads) != 1 || squads[0].ID != active.ID {
		t.Errorf("got %d squads, want only the active one", len(squads))
	}
	if squads[0].Creator == nil || squads[0].Creator.Username != "creator" {
		t.Error("listing should join creator info")
	}
}

func TestMembershipsByUser(t *testing.T) {
	db := newTestDB(t)
	creator := createTestUser(t, db, 1, "creator")
	viewer := createTestUser(t, db, 2, "viewer")
	repo := createTestRepo(t, db, 1, "octocat/revival")
	inSquad := createTestSquad(t, db, repo.ID, creator.ID, "joined")
	outSquad := createTestSquad(t, db, repo.ID, creator.ID, "not joined")

	if err := db.AddMember(context.Background(),
		&model.SquadMember{SquadID: inSquad.ID, UserID: viewer.ID, Role: model.RoleMember}); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	roles, err := db.MembershipsByUser(context.Background(), viewer.ID,
		[]string{inSquad.ID, outSquad.ID})
	if err != nil {
		t.Fatalf("MembershipsByUser() error = %v", err)
	}
	if roles[inSquad.ID] != model.RoleMember {
		t.Errorf("role for joined squad = %q, want member", roles[inSquad.ID])
	}
	if _, ok := roles[outSquad.ID]; ok {
		t.Error("unexpected membership for squad the user never joined")
	}
}
