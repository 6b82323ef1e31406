package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Priyank911/mapping/internal/validation"
)

// SetSecret handles PUT /api/v1/secrets/{name}. The body's "value" field is
// stored encrypted as-is, so integrations can persist structured credentials.
func (h *APIHandler) SetSecret(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := validation.SecretName(name); err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_NAME", err.Error())
		return
	}

	var req struct {
		Value json.RawMessage `json:"value"`
	}
	if !decode(w, r, &req) {
		return
	}
	if len(req.Value) == 0 {
		jsonError(w, http.StatusBadRequest, "INVALID_BODY", "A value field is required")
		return
	}

	if err := h.secrets.SetSecret(name, req.Value); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"name": name})
}

// GetSecret handles GET /api/v1/secrets/{name}. An absent secret is a 404;
// a present secret that cannot be decrypted is an error, never "not found".
func (h *APIHandler) GetSecret(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var value json.RawMessage
	found, err := h.secrets.GetSecret(name, &value)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		jsonError(w, http.StatusNotFound, "SECRET_NOT_FOUND", "No secret stored under that name")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"name": name, "value": value})
}
