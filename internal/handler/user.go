package handler

import (
	"net/http"

	"github.com/sakif/project-phoenix/internal/auth"
	"github.com/sakif/project-phoenix/internal/service"
)

// UserHandler serves the signed-in user's dashboard.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Projects lists the repositories the user works on through squads.
func (h *UserHandler) Projects(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	projects, err := h.users.Projects(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// Squads lists the user's squad memberships.
func (h *UserHandler) Squads(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	squads, err := h.users.Squads(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"squads": squads})
}

// Stats returns the user's aggregate platform footprint.
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	stats, err := h.users.Stats(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}
