package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/project-phoenix/internal/auth"
	"github.com/sakif/project-phoenix/internal/repository"
	"github.com/sakif/project-phoenix/internal/service"
)

// RepoHandler serves the repository catalog.
type RepoHandler struct {
	importer *service.ImportService
	squads   *service.SquadService
}

func NewRepoHandler(importer *service.ImportService, squads *service.SquadService) *RepoHandler {
	return &RepoHandler{importer: importer, squads: squads}
}

type importRequest struct {
	FullName string `json:"repoFullName"`
}

// Import brings a GitHub repository into the catalog. Anyone can import; a
// signed-in importer gets attributed on the activity feed.
func (h *RepoHandler) Import(w http.ResponseWriter, r *http.Request) {
	var importerID string
	if session, ok := auth.SessionFromContext(r.Context()); ok {
		importerID = session.UserID
	}

	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	repo, err := h.importer.Import(r.Context(), req.FullName, importerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"repository": repo})
}

// List returns catalog repositories, optionally filtered by ?language=,
// ?status=, and ?query=.
func (h *RepoHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.RepoFilter{
		Language: r.URL.Query().Get("language"),
		Status:   r.URL.Query().Get("status"),
		Query:    r.URL.Query().Get("query"),
	}

	repos, err := h.importer.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"repositories": repos})
}

// Get returns one repository. Each successful read counts as a view.
func (h *RepoHandler) Get(w http.ResponseWriter, r *http.Request) {
	repo, err := h.importer.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"repository": repo})
}

// Squads lists the repository's active squads, annotated for the viewer when
// signed in.
func (h *RepoHandler) Squads(w http.ResponseWriter, r *http.Request) {
	var viewerID string
	if session, ok := auth.SessionFromContext(r.Context()); ok {
		viewerID = session.UserID
	}

	squads, err := h.squads.ListByRepo(r.Context(), chi.URLParam(r, "id"), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"squads": squads})
}
