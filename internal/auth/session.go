// Package auth provides session management and the GitHub OAuth login flow.
//
// A session is a self-contained token carried in an HttpOnly cookie: it holds
// the user's identity and issue time, nothing is stored server-side. Sessions
// expire 30 days after issue; an expired or malformed token is treated as
// "not signed in", never as an error to surface.
package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookieName is the cookie carrying the session token.
	SessionCookieName = "phoenix_session"

	// SessionLifetime is how long an issued session stays valid.
	SessionLifetime = 30 * 24 * time.Hour
)

// Session is the identity encoded in a session token. Everything the UI needs
// to render the signed-in state travels with the token, so most requests never
// touch the users table.
type Session struct {
	UserID    string `json:"userId"`
	GitHubID  int64  `json:"githubId"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// TokenCodec converts a Session to and from its wire encoding. The session
// manager only sees this interface, so the encoding can be swapped (signed
// JWT today, encrypted blob tomorrow) without touching any caller.
type TokenCodec interface {
	// Encode serializes the session with the current time as issue time.
	Encode(s Session) (string, error)
	// Decode parses and validates a token. Any failure — malformed input,
	// bad signature, expired — returns an error; callers collapse all of
	// them to "no session".
	Decode(token string) (Session, error)
}

// jwtCodec encodes sessions as HS256-signed JWTs.
type jwtCodec struct {
	secret []byte
}

// NewJWTCodec returns a TokenCodec backed by golang-jwt.
// The secret should be at least 32 bytes of random data in production.
func NewJWTCodec(secret string) (TokenCodec, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &jwtCodec{secret: []byte(secret)}, nil
}

// sessionClaims is the JWT payload: registered claims for subject/expiry plus
// the identity fields the session carries.
type sessionClaims struct {
	jwt.RegisteredClaims
	GitHubID  int64  `json:"ghid"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar,omitempty"`
}

func (c *jwtCodec) Encode(s Session) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionLifetime)),
			Issuer:    "project-phoenix",
		},
		GitHubID:  s.GitHubID,
		Username:  s.Username,
		Email:     s.Email,
		AvatarURL: s.AvatarURL,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

func (c *jwtCodec) Decode(tokenStr string) (Session, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			// Reject anything not signed with HMAC — prevents algorithm
			// confusion attacks.
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("auth: unexpected signing method")
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer("project-phoenix"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Session{}, err
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return Session{}, errors.New("auth: invalid token claims")
	}

	return Session{
		UserID:    claims.Subject,
		GitHubID:  claims.GitHubID,
		Username:  claims.Username,
		Email:     claims.Email,
		AvatarURL: claims.AvatarURL,
	}, nil
}

// SessionManager issues, verifies, and revokes the session cookie.
// All of its side effects are confined to that one cookie.
type SessionManager struct {
	codec  TokenCodec
	secure bool // Secure cookie flag; true in production (HTTPS)
}

// NewSessionManager creates a SessionManager. secure controls the cookie's
// Secure flag and should be true whenever the app is served over HTTPS.
func NewSessionManager(codec TokenCodec, secure bool) *SessionManager {
	return &SessionManager{codec: codec, secure: secure}
}

// Issue encodes the session and sets it as the session cookie.
func (m *SessionManager) Issue(w http.ResponseWriter, s Session) error {
	token, err := m.codec.Encode(s)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionLifetime.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Verify reads and validates the session cookie.
//
// Returns (session, true) for a valid cookie and (zero, false) for anything
// else: no cookie, garbage token, bad signature, or a token older than 30
// days. A failed verification is the normal anonymous case, not an error.
func (m *SessionManager) Verify(r *http.Request) (Session, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return Session{}, false
	}

	s, err := m.codec.Decode(cookie.Value)
	if err != nil {
		return Session{}, false
	}
	return s, true
}

// Clear tells the browser to delete the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
