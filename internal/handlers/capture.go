package handlers

import (
	"net/http"

	"github.com/Priyank911/mapping/internal/capture"
	"github.com/Priyank911/mapping/internal/logging"
	"github.com/Priyank911/mapping/internal/validation"
)

// Capture handles POST /api/v1/capture: one selected-text capture through
// the full pipeline.
func (h *APIHandler) Capture(w http.ResponseWriter, r *http.Request) {
	log := logging.Logger(r.Context())

	var req struct {
		Text      string `json:"text"`
		SourceURL string `json:"source_url"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := validation.CaptureText(req.Text); err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_TEXT", err.Error())
		return
	}

	result, err := h.pipeline.Capture(r.Context(), capture.Request{
		Text:      req.Text,
		SourceURL: req.SourceURL,
	})
	if err != nil {
		log.Warn("capture rejected", "error", err)
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, result)
}
