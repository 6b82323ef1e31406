package handlers

import (
	"net/http"

	"github.com/Priyank911/mapping/internal/logging"
	"github.com/Priyank911/mapping/internal/secrets"
	"github.com/Priyank911/mapping/internal/validation"
)

// Setup handles POST /api/v1/setup: stores the user profile and optional
// integration secrets, then marks onboarding complete.
func (h *APIHandler) Setup(w http.ResponseWriter, r *http.Request) {
	log := logging.Logger(r.Context())

	var req struct {
		Password    string `json:"password"`
		Name        string `json:"name"`
		Email       string `json:"email"`
		GroqAPIKey  string `json:"groq_api_key"`
		NotionToken string `json:"notion_token"`
		DatabaseID  string `json:"notion_database_id"`
	}
	if !decode(w, r, &req) {
		return
	}

	if err := validation.Password(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_PASSWORD", err.Error())
		return
	}

	if err := h.secrets.Setup(req.Password, req.Name, req.Email); err != nil {
		log.Error("setup failed", "error", err)
		writeError(w, err)
		return
	}

	if req.GroqAPIKey != "" {
		if err := h.secrets.SetSecret(secrets.NameGroqAPIKey, req.GroqAPIKey); err != nil {
			log.Error("store AI key failed", "error", err)
			writeError(w, err)
			return
		}
	}
	if req.NotionToken != "" {
		if err := h.secrets.SetSecret(secrets.NameNotionCredentials, &secrets.NotionCredentials{
			Token:      req.NotionToken,
			DatabaseID: req.DatabaseID,
		}); err != nil {
			log.Error("store storage credentials failed", "error", err)
			writeError(w, err)
			return
		}
	}

	jsonResponse(w, http.StatusCreated, map[string]bool{"setup_complete": true})
}

// Unlock handles POST /api/v1/unlock.
func (h *APIHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	if err := h.secrets.Unlock(req.Password); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"locked": false})
}

// Lock handles POST /api/v1/lock.
func (h *APIHandler) Lock(w http.ResponseWriter, r *http.Request) {
	if err := h.secrets.Lock(); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"locked": true})
}

// Reset handles POST /api/v1/reset: the forgot-password path. Everything is
// wiped, including the master key export, so prior ciphertexts are
// permanently unreadable.
func (h *APIHandler) Reset(w http.ResponseWriter, r *http.Request) {
	log := logging.Logger(r.Context())

	if err := h.secrets.ClearAll(); err != nil {
		log.Error("reset failed", "error", err)
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"reset": true})
}

// Status handles GET /api/v1/status.
func (h *APIHandler) Status(w http.ResponseWriter, r *http.Request) {
	setup, err := h.secrets.IsSetup()
	if err != nil {
		writeError(w, err)
		return
	}
	locked, err := h.secrets.IsLocked()
	if err != nil {
		writeError(w, err)
		return
	}
	captures, err := h.sessions.LifetimeCaptures()
	if err != nil {
		writeError(w, err)
		return
	}

	status := map[string]any{
		"setup_complete":    setup,
		"locked":            locked,
		"lifetime_captures": captures,
	}
	if active, err := h.sessions.GetActive(); err == nil && active != nil {
		status["active_session"] = map[string]any{
			"id":            active.ID,
			"name":          active.Name,
			"content_count": active.ContentCount,
		}
	}

	jsonResponse(w, http.StatusOK, status)
}
