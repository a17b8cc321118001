package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestGitHubProvider_AuthURL(t *testing.T) {
	p := NewGitHubProvider("client-id", "client-secret", "http://localhost:8080/api/auth/callback/github")

	url := p.AuthURL("random-state")
	assert.Contains(t, url, "github.com/login/oauth/authorize")
	assert.Contains(t, url, "state=random-state")
	assert.Contains(t, url, "client_id=client-id")
}

func TestGitHubProvider_Configured(t *testing.T) {
	assert.True(t, NewGitHubProvider("id", "secret", "cb").Configured())
	assert.False(t, NewGitHubProvider("", "", "cb").Configured())
}

func TestGitHubProvider_FetchUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "Bearer gho_testtoken", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 583231,
			"login": "octocat",
			"email": "octo@example.com",
			"avatar_url": "https://avatars.example.com/u/583231",
			"bio": "There once was...",
			"location": "San Francisco",
			"blog": "https://github.blog",
			"twitter_username": "github"
		}`))
	}))
	defer srv.Close()

	p := NewGitHubProvider("id", "secret", "cb")
	p.baseURL = srv.URL

	user, err := p.FetchUser(context.Background(), &oauth2.Token{AccessToken: "gho_testtoken"})
	require.NoError(t, err)
	assert.Equal(t, int64(583231), user.ID)
	assert.Equal(t, "octocat", user.Login)
	assert.Equal(t, "octo@example.com", user.Email)
	assert.Equal(t, "San Francisco", user.Location)
	assert.Equal(t, "github", user.TwitterUsername)
}

func TestGitHubProvider_FetchUser_InvalidID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"login": "ghost"}`))
	}))
	defer srv.Close()

	p := NewGitHubProvider("id", "secret", "cb")
	p.baseURL = srv.URL

	_, err := p.FetchUser(context.Background(), &oauth2.Token{AccessToken: "tok"})
	assert.Error(t, err)
}

func TestGitHubProvider_FetchUser_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewGitHubProvider("id", "secret", "cb")
	p.baseURL = srv.URL

	_, err := p.FetchUser(context.Background(), &oauth2.Token{AccessToken: "tok"})
	assert.Error(t, err)
}

func TestGitHubProvider_FetchPrimaryEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/emails", r.URL.Path)
		w.Write([]byte(`[
			{"email": "secondary@example.com", "primary": false},
			{"email": "primary@example.com", "primary": true}
		]`))
	}))
	defer srv.Close()

	p := NewGitHubProvider("id", "secret", "cb")
	p.baseURL = srv.URL

	email, err := p.FetchPrimaryEmail(context.Background(), &oauth2.Token{AccessToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "primary@example.com", email)
}

func TestGitHubProvider_FetchPrimaryEmail_NonePrimary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"email": "hidden@example.com", "primary": false}]`))
	}))
	defer srv.Close()

	p := NewGitHubProvider("id", "secret", "cb")
	p.baseURL = srv.URL

	email, err := p.FetchPrimaryEmail(context.Background(), &oauth2.Token{AccessToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "", email)
}

func TestGitHubProvider_FetchPrimaryEmail_ScopeDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewGitHubProvider("id", "secret", "cb")
	p.baseURL = srv.URL

	// A missing email scope degrades to "no email", not a login failure.
	email, err := p.FetchPrimaryEmail(context.Background(), &oauth2.Token{AccessToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "", email)
}
