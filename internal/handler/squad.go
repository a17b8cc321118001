package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/project-phoenix/internal/apperror"
	"github.com/sakif/project-phoenix/internal/auth"
	"github.com/sakif/project-phoenix/internal/service"
)

// SquadHandler serves squad formation and membership.
type SquadHandler struct {
	squads *service.SquadService
}

func NewSquadHandler(squads *service.SquadService) *SquadHandler {
	return &SquadHandler{squads: squads}
}

// List returns the active squads on a repository (?repo_id= is required),
// annotated for the viewer when signed in.
func (h *SquadHandler) List(w http.ResponseWriter, r *http.Request) {
	repoID := r.URL.Query().Get("repo_id")
	if repoID == "" {
		writeError(w, apperror.ValidationFailed("repo_id", "repo_id query parameter is required"))
		return
	}

	var viewerID string
	if session, ok := auth.SessionFromContext(r.Context()); ok {
		viewerID = session.UserID
	}

	squads, err := h.squads.ListByRepo(r.Context(), repoID, viewerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"squads": squads})
}

// Create forms a new squad with the caller as creator.
func (h *SquadHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	var in service.CreateSquadInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	squad, err := h.squads.Create(r.Context(), in, session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"squad": squad})
}

// Get returns the squad with its members and the viewer's membership.
func (h *SquadHandler) Get(w http.ResponseWriter, r *http.Request) {
	var viewerID string
	if session, ok := auth.SessionFromContext(r.Context()); ok {
		viewerID = session.UserID
	}

	detail, err := h.squads.Get(r.Context(), chi.URLParam(r, "squadId"), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"squad": detail})
}

// Update edits squad fields. Creator only.
func (h *SquadHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	var in service.UpdateSquadInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	squad, err := h.squads.Update(r.Context(), chi.URLParam(r, "squadId"), session.UserID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"squad": squad})
}

// Delete removes a squad and its memberships. Creator only.
func (h *SquadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	if err := h.squads.Delete(r.Context(), chi.URLParam(r, "squadId"), session.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "squad deleted"})
}

type joinRequest struct {
	Role string `json:"role"`
}

// Join adds the caller to the squad.
func (h *SquadHandler) Join(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	var req joinRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	member, err := h.squads.Join(r.Context(), chi.URLParam(r, "squadId"), session.UserID, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"member": member})
}

// Leave removes the caller from the squad.
func (h *SquadHandler) Leave(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	if err := h.squads.Leave(r.Context(), chi.URLParam(r, "squadId"), session.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "left squad"})
}

// Members lists the squad's members, earliest-joined first.
func (h *SquadHandler) Members(w http.ResponseWriter, r *http.Request) {
	members, err := h.squads.Members(r.Context(), chi.URLParam(r, "squadId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}
