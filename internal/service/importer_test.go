package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/project-phoenix/internal/apperror"
	"github.com/sakif/project-phoenix/internal/githubapi"
	"github.com/sakif/project-phoenix/internal/model"
	"github.com/sakif/project-phoenix/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetadata() *githubapi.RepoMetadata {
	created := time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC)
	return &githubapi.RepoMetadata{
		GitHubRepoID:    44838949,
		FullName:        "apache/incubator-retired-slider",
		Name:            "incubator-retired-slider",
		Description:     "Apache Slider",
		Language:        "Java",
		StarsCount:      78,
		ForksCount:      60,
		OpenIssuesCount: 10,
		DefaultBranch:   "develop",
		Topics:          []string{"yarn", "hadoop"},
		LicenseName:     "Apache License 2.0",
		CreatedAt:       &created,
	}
}

func newTestImporter(fetcher *fakeFetcher) (*ImportService, *fakeRepoRepo, *fakeActivityRepo) {
	repos := newFakeRepoRepo()
	activities := &fakeActivityRepo{}
	svc := NewImportService(repos, activities, fetcher, discardLogger())
	return svc, repos, activities
}

func TestImport(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	lastCommit := now.AddDate(0, 0, -40) // 40 days ago

	svc, repos, activities := newTestImporter(&fakeFetcher{
		meta:       testMetadata(),
		lastCommit: &lastCommit,
	})
	svc.now = func() time.Time { return now }

	repo, err := svc.Import(context.Background(), "apache/incubator-retired-slider", "usr_1")
	require.NoError(t, err)

	assert.NotEmpty(t, repo.ID)
	assert.Equal(t, "apache/incubator-retired-slider", repo.FullName)
	assert.Equal(t, model.StatusActive, repo.AbandonmentStatus)
	assert.Equal(t, 95, repo.MaintenanceScore) // 100 - 40/10 - 10/10
	assert.True(t, repo.IsAnalyzed)
	require.NotNil(t, repo.LastAnalyzedAt)
	assert.Equal(t, now, *repo.LastAnalyzedAt)
	require.NotNil(t, repo.LastCommitAt)
	assert.Len(t, repos.repos, 1)

	require.Len(t, activities.activities, 1)
	act := activities.activities[0]
	assert.Equal(t, model.ActivityRepoAdded, act.ActivityType)
	assert.Equal(t, "usr_1", act.UserID)
	assert.Equal(t, repo.ID, act.RepoID)
	assert.Equal(t, "apache/incubator-retired-slider", act.Metadata["repo_name"])
	assert.Equal(t, "78", act.Metadata["stars"])
}

func TestImport_InvalidFullName(t *testing.T) {
	svc, _, _ := newTestImporter(&fakeFetcher{meta: testMetadata()})

	for _, name := range []string{"", "noslash", "owner/", "/repo", "a/b/c"} {
		_, err := svc.Import(context.Background(), name, "usr_1")
		assert.ErrorIs(t, err, apperror.ErrValidation, "full name %q", name)
	}
}

func TestImport_NotFoundOnGitHub(t *testing.T) {
	svc, _, _ := newTestImporter(&fakeFetcher{
		metaErr: apperror.NotFoundMsg("repository not found on GitHub"),
	})

	_, err := svc.Import(context.Background(), "ghost/ghost", "usr_1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestImport_Duplicate(t *testing.T) {
	svc, _, _ := newTestImporter(&fakeFetcher{meta: testMetadata()})

	_, err := svc.Import(context.Background(), "apache/incubator-retired-slider", "usr_1")
	require.NoError(t, err)

	_, err = svc.Import(context.Background(), "apache/incubator-retired-slider", "usr_2")
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestImport_NoCommits(t *testing.T) {
	svc, _, _ := newTestImporter(&fakeFetcher{meta: testMetadata()})

	repo, err := svc.Import(context.Background(), "apache/incubator-retired-slider", "usr_1")
	require.NoError(t, err)

	assert.Nil(t, repo.LastCommitAt)
	assert.Equal(t, model.StatusAbandoned, repo.AbandonmentStatus)
	assert.Equal(t, 0, repo.MaintenanceScore)
}

func TestImport_CommitLookupFailureTolerated(t *testing.T) {
	svc, _, _ := newTestImporter(&fakeFetcher{
		meta:      testMetadata(),
		commitErr: errors.New("rate limited"),
	})

	repo, err := svc.Import(context.Background(), "apache/incubator-retired-slider", "usr_1")
	require.NoError(t, err)
	assert.Nil(t, repo.LastCommitAt)
	assert.Equal(t, model.StatusAbandoned, repo.AbandonmentStatus)
}

func TestImport_ActivityFailureTolerated(t *testing.T) {
	lastCommit := time.Now().AddDate(0, 0, -5)
	repos := newFakeRepoRepo()
	activities := &fakeActivityRepo{failWith: errors.New("feed down")}
	svc := NewImportService(repos, activities, &fakeFetcher{
		meta:       testMetadata(),
		lastCommit: &lastCommit,
	}, discardLogger())

	repo, err := svc.Import(context.Background(), "apache/incubator-retired-slider", "usr_1")
	require.NoError(t, err)
	assert.NotEmpty(t, repo.ID)
}

func TestGet_CountsView(t *testing.T) {
	lastCommit := time.Now().AddDate(0, 0, -5)
	svc, _, _ := newTestImporter(&fakeFetcher{meta: testMetadata(), lastCommit: &lastCommit})

	imported, err := svc.Import(context.Background(), "apache/incubator-retired-slider", "usr_1")
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), imported.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ViewsCount)

	got, err = svc.Get(context.Background(), imported.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ViewsCount)
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _ := newTestImporter(&fakeFetcher{})

	_, err := svc.Get(context.Background(), "repo_missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestList_PassesFilter(t *testing.T) {
	lastCommit := time.Now().AddDate(0, 0, -5)
	svc, _, _ := newTestImporter(&fakeFetcher{meta: testMetadata(), lastCommit: &lastCommit})

	_, err := svc.Import(context.Background(), "apache/incubator-retired-slider", "usr_1")
	require.NoError(t, err)

	repos, err := svc.List(context.Background(), repository.RepoFilter{Language: "Java"})
	require.NoError(t, err)
	assert.Len(t, repos, 1)

	repos, err = svc.List(context.Background(), repository.RepoFilter{Language: "Rust"})
	require.NoError(t, err)
	assert.Empty(t, repos)
}
