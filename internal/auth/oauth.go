package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubUser is the portion of the GitHub /user API response we care about.
// GitHub returns a much larger object — we only unmarshal the fields we need.
type GitHubUser struct {
	ID              int64  `json:"id"`    // GitHub's numeric user ID — stable, never changes
	Login           string `json:"login"` // GitHub username
	Email           string `json:"email"` // primary public email (empty if hidden)
	AvatarURL       string `json:"avatar_url"`
	Bio             string `json:"bio"`
	Location        string `json:"location"`
	Blog            string `json:"blog"`
	TwitterUsername string `json:"twitter_username"`
}

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub Authorization Code
// flow: the server redirects to GitHub's authorize page, GitHub calls back
// with a short-lived code, and the server exchanges it for an access token it
// then uses to read the user's profile. The client secret and access token
// never touch the browser.
type GitHubProvider struct {
	config  *oauth2.Config
	baseURL string // API base; overridable for tests
}

// NewGitHubProvider creates a GitHubProvider with the given OAuth App
// credentials. callbackURL must exactly match the callback registered with
// GitHub. Scopes: read:user for the profile, user:email for the email list.
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		baseURL: "https://api.github.com",
	}
}

// Configured reports whether OAuth credentials were provided. Without them
// the login routes answer with a configuration error instead of redirecting
// to a broken authorize URL.
func (p *GitHubProvider) Configured() bool {
	return p.config.ClientID != "" && p.config.ClientSecret != ""
}

// AuthURL returns the GitHub authorization URL carrying the CSRF state.
// The caller stores the same state in a short-lived cookie and compares the
// two on callback.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for an access token.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}
	return token, nil
}

// FetchUser reads the authenticated user's profile with the access token.
//
// If the profile has no public email, the caller should follow up with
// FetchPrimaryEmail — a hidden email is common and not an error here; only a
// missing ID invalidates the response.
func (p *GitHubProvider) FetchUser(ctx context.Context, token *oauth2.Token) (*GitHubUser, error) {
	client := p.config.Client(ctx, token)

	resp, err := client.Get(p.baseURL + "/user")
	if err != nil {
		return nil, fmt.Errorf("auth: calling GitHub /user API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: GitHub /user API returned status %d", resp.StatusCode)
	}

	var ghUser GitHubUser
	if err := json.NewDecoder(resp.Body).Decode(&ghUser); err != nil {
		return nil, fmt.Errorf("auth: decoding GitHub /user response: %w", err)
	}

	if ghUser.ID == 0 {
		return nil, fmt.Errorf("auth: GitHub returned an invalid user (ID = 0)")
	}

	return &ghUser, nil
}

// FetchPrimaryEmail lists the user's email addresses and returns the one
// flagged primary. Returns "" (not an error) when no primary email exists or
// the call fails with a non-OK status — a user without a resolvable email can
// still sign in.
func (p *GitHubProvider) FetchPrimaryEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	client := p.config.Client(ctx, token)

	resp, err := client.Get(p.baseURL + "/user/emails")
	if err != nil {
		return "", fmt.Errorf("auth: calling GitHub /user/emails API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	var emails []struct {
		Email   string `json:"email"`
		Primary bool   `json:"primary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", fmt.Errorf("auth: decoding GitHub /user/emails response: %w", err)
	}

	for _, e := range emails {
		if e.Primary {
			return e.Email, nil
		}
	}
	return "", nil
}
