package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/project-phoenix/internal/auth"
	"github.com/sakif/project-phoenix/internal/service"
)

const (
	stateCookieName = "oauth_state"
	stateCookieTTL  = 600 // seconds; the hop to GitHub and back is quick
)

// AuthHandler drives the GitHub OAuth flow and session endpoints.
//
// The callback redirects instead of writing JSON: the browser arrives here
// straight from GitHub, so errors land on the frontend login page as an
// ?error= query tag and success lands on the dashboard.
type AuthHandler struct {
	provider      *auth.GitHubProvider
	sessions      *auth.SessionManager
	authService   *service.AuthService
	userService   *service.UserService
	frontendBase  string
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthHandler(provider *auth.GitHubProvider, sessions *auth.SessionManager, authService *service.AuthService, userService *service.UserService, frontendBase string, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		provider:      provider,
		sessions:      sessions,
		authService:   authService,
		userService:   userService,
		frontendBase:  frontendBase,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// Login starts the OAuth flow: generate a CSRF state, pin it in a short-lived
// cookie, and send the browser to GitHub's authorize page.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.provider.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "GitHub OAuth is not configured"})
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   stateCookieTTL,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback finishes the OAuth flow. Every failure redirects back to the
// frontend login page with an error tag; only a full success issues a
// session and lands on the dashboard.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stateCookie, err := r.Cookie(stateCookieName)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" ||
		subtle.ConstantTimeCompare([]byte(stateCookie.Value), []byte(state)) != 1 {
		h.redirectError(w, r, "invalid_state")
		return
	}
	h.clearStateCookie(w)

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectError(w, r, "oauth_failed")
		return
	}

	token, err := h.provider.Exchange(ctx, code)
	if err != nil {
		h.logger.Error("OAuth code exchange failed", "error", err)
		h.redirectError(w, r, "oauth_failed")
		return
	}

	ghUser, err := h.provider.FetchUser(ctx, token)
	if err != nil {
		h.logger.Error("GitHub user fetch failed", "error", err)
		h.redirectError(w, r, "user_fetch_failed")
		return
	}

	email := ghUser.Email
	if email == "" {
		email, err = h.provider.FetchPrimaryEmail(ctx, token)
		if err != nil {
			h.logger.Warn("GitHub email fetch failed", "error", err)
			email = ""
		}
	}

	user, err := h.authService.SignIn(ctx, ghUser, email)
	if err != nil {
		h.logger.Error("user upsert failed", "github_id", ghUser.ID, "error", err)
		h.redirectError(w, r, "db_error")
		return
	}

	session := auth.Session{
		UserID:    user.ID,
		GitHubID:  user.GitHubID,
		Username:  user.Username,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	}
	if err := h.sessions.Issue(w, session); err != nil {
		h.logger.Error("session issue failed", "user_id", user.ID, "error", err)
		h.redirectError(w, r, "unexpected_error")
		return
	}

	http.Redirect(w, r, h.frontendBase+"/dashboard", http.StatusTemporaryRedirect)
}

// Logout clears the session cookie. Always succeeds, session or not.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the signed-in user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	user, err := h.userService.Me(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) redirectError(w http.ResponseWriter, r *http.Request, tag string) {
	http.Redirect(w, r, h.frontendBase+"/auth/login?error="+tag, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
