package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Priyank911/mapping/internal/validation"
)

// ListSessions handles GET /api/v1/sessions.
func (h *APIHandler) ListSessions(w http.ResponseWriter, _ *http.Request) {
	sessions, err := h.sessions.List()
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, sessions)
}

// CreateSession handles POST /api/v1/sessions. The new session becomes
// active immediately.
func (h *APIHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := validation.SessionName(req.Name); err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_NAME", err.Error())
		return
	}

	session, err := h.sessions.Create(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, session)
}

// GetSession handles GET /api/v1/sessions/{id}.
func (h *APIHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, session)
}

// GetActiveSession handles GET /api/v1/sessions/active. No active session is
// a null payload, not an error.
func (h *APIHandler) GetActiveSession(w http.ResponseWriter, _ *http.Request) {
	session, err := h.sessions.GetActive()
	if err != nil {
		writeError(w, err)
		return
	}
	if session == nil {
		jsonResponse(w, http.StatusOK, json.RawMessage("null"))
		return
	}
	jsonResponse(w, http.StatusOK, session)
}

// ActivateSession handles POST /api/v1/sessions/{id}/activate. Unknown ids
// are rejected.
func (h *APIHandler) ActivateSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.SetActive(id); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"active_session": id})
}

// GetSessionContext handles GET /api/v1/sessions/{id}/context.
func (h *APIHandler) GetSessionContext(w http.ResponseWriter, r *http.Request) {
	ctx, err := h.sessions.Context(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, ctx)
}

// DeleteSession handles DELETE /api/v1/sessions/{id}.
func (h *APIHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"deleted": true})
}
