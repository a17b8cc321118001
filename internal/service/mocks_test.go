package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/project-phoenix/internal/apperror"
	"github.com/sakif/project-phoenix/internal/githubapi"
	"github.com/sakif/project-phoenix/internal/model"
	"github.com/sakif/project-phoenix/internal/repository"
)

// In-memory fakes for the repository interfaces. They implement just enough
// of the storage contract (conflicts, not-found, orderings relevant to the
// services) for service behavior to be observable without a database.

type fakeUserRepo struct {
	users map[string]*model.User // keyed by ID
	next  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (f *fakeUserRepo) UpsertByGitHubID(ctx context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.GitHubID == user.GitHubID {
			user.ID = u.ID
			user.CreatedAt = u.CreatedAt
			cp := *user
			f.users[u.ID] = &cp
			return nil
		}
	}
	f.next++
	user.ID = fmt.Sprintf("usr_%d", f.next)
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

type fakeRepoRepo struct {
	repos map[string]*model.Repository
	next  int
}

func newFakeRepoRepo() *fakeRepoRepo {
	return &fakeRepoRepo{repos: map[string]*model.Repository{}}
}

func (f *fakeRepoRepo) CreateRepo(ctx context.Context, repo *model.Repository) error {
	for _, r := range f.repos {
		if r.GitHubRepoID == repo.GitHubRepoID || r.FullName == repo.FullName {
			return apperror.Conflict("repository already exists in the database")
		}
	}
	f.next++
	repo.ID = fmt.Sprintf("repo_%d", f.next)
	repo.CreatedAt = time.Now()
	cp := *repo
	f.repos[repo.ID] = &cp
	return nil
}

func (f *fakeRepoRepo) GetRepoByID(ctx context.Context, id string) (*model.Repository, error) {
	r, ok := f.repos[id]
	if !ok {
		return nil, apperror.NotFound("repository", id)
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepoRepo) ListRepos(ctx context.Context, filter repository.RepoFilter) ([]model.Repository, error) {
	var out []model.Repository
	for _, r := range f.repos {
		if filter.Language != "" && r.Language != filter.Language {
			continue
		}
		if filter.Status != "" && r.AbandonmentStatus != filter.Status {
			continue
		}
		if filter.Query != "" && !strings.Contains(r.FullName, filter.Query) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRepoRepo) IncrementViews(ctx context.Context, id string) error {
	r, ok := f.repos[id]
	if !ok {
		return apperror.NotFound("repository", id)
	}
	r.ViewsCount++
	return nil
}

type fakeSquadRepo struct {
	squads  map[string]*model.Squad
	members map[string]*model.SquadMember // keyed by squadID+"/"+userID
	next    int
}

func newFakeSquadRepo() *fakeSquadRepo {
	return &fakeSquadRepo{
		squads:  map[string]*model.Squad{},
		members: map[string]*model.SquadMember{},
	}
}

func (f *fakeSquadRepo) CreateSquad(ctx context.Context, squad *model.Squad, creator *model.SquadMember) error {
	for _, sq := range f.squads {
		if sq.RepoID == squad.RepoID && sq.Name == squad.Name {
			return apperror.Conflict("a squad with this name already exists for this project")
		}
	}
	f.next++
	squad.ID = fmt.Sprintf("sqd_%d", f.next)
	squad.CreatedAt = time.Now()
	cp := *squad
	f.squads[squad.ID] = &cp

	creator.SquadID = squad.ID
	creator.JoinedAt = time.Now()
	mc := *creator
	f.members[squad.ID+"/"+creator.UserID] = &mc
	return nil
}

func (f *fakeSquadRepo) GetSquadByID(ctx context.Context, id string) (*model.Squad, error) {
	sq, ok := f.squads[id]
	if !ok {
		return nil, apperror.NotFound("squad", id)
	}
	cp := *sq
	return &cp, nil
}

func (f *fakeSquadRepo) ListSquadsByRepo(ctx context.Context, repoID string) ([]model.Squad, error) {
	var out []model.Squad
	for _, sq := range f.squads {
		if sq.RepoID == repoID && sq.IsActive {
			out = append(out, *sq)
		}
	}
	return out, nil
}

func (f *fakeSquadRepo) UpdateSquad(ctx context.Context, squad *model.Squad) error {
	if _, ok := f.squads[squad.ID]; !ok {
		return apperror.NotFound("squad", squad.ID)
	}
	cp := *squad
	f.squads[squad.ID] = &cp
	return nil
}

func (f *fakeSquadRepo) DeleteSquad(ctx context.Context, id string) error {
	delete(f.squads, id)
	for k := range f.members {
		if strings.HasPrefix(k, id+"/") {
			delete(f.members, k)
		}
	}
	return nil
}

func (f *fakeSquadRepo) AddMember(ctx context.Context, member *model.SquadMember) error {
	key := member.SquadID + "/" + member.UserID
	if _, ok := f.members[key]; ok {
		return apperror.Conflict("you are already a member of this squad")
	}
	f.next++
	member.ID = fmt.Sprintf("mem_%d", f.next)
	member.JoinedAt = time.Now()
	cp := *member
	f.members[key] = &cp
	return nil
}

func (f *fakeSquadRepo) GetMember(ctx context.Context, squadID, userID string) (*model.SquadMember, error) {
	m, ok := f.members[squadID+"/"+userID]
	if !ok {
		return nil, apperror.NotFoundMsg("membership not found")
	}
	cp := *m
	return &cp, nil
}

func (f *fakeSquadRepo) ListMembers(ctx context.Context, squadID string) ([]model.SquadMember, error) {
	var out []model.SquadMember
	for _, m := range f.members {
		if m.SquadID == squadID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeSquadRepo) RemoveMember(ctx context.Context, squadID, userID string) error {
	delete(f.members, squadID+"/"+userID)
	return nil
}

func (f *fakeSquadRepo) MembershipsByUser(ctx context.Context, userID string, squadIDs []string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range squadIDs {
		if m, ok := f.members[id+"/"+userID]; ok {
			out[id] = m.Role
		}
	}
	return out, nil
}

func (f *fakeSquadRepo) ListUserMemberships(ctx context.Context, userID string) ([]model.SquadMember, error) {
	var out []model.SquadMember
	for _, m := range f.members {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeSquadRepo) CountMembers(ctx context.Context, squadID string) (int, error) {
	n := 0
	for _, m := range f.members {
		if m.SquadID == squadID {
			n++
		}
	}
	return n, nil
}

type fakeActivityRepo struct {
	activities []model.Activity
	failWith   error
}

func (f *fakeActivityRepo) CreateActivity(ctx context.Context, activity *model.Activity) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.activities = append(f.activities, *activity)
	return nil
}

type fakeFetcher struct {
	meta       *githubapi.RepoMetadata
	metaErr    error
	lastCommit *time.Time
	commitErr  error
}

func (f *fakeFetcher) GetRepository(ctx context.Context, owner, name string) (*githubapi.RepoMetadata, error) {
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	return f.meta, nil
}

func (f *fakeFetcher) GetLatestCommitDate(ctx context.Context, owner, name string) (*time.Time, error) {
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	return f.lastCommit, nil
}
