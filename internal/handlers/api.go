package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Priyank911/mapping/internal/capture"
	"github.com/Priyank911/mapping/internal/crypto"
	"github.com/Priyank911/mapping/internal/keys"
	"github.com/Priyank911/mapping/internal/secrets"
	"github.com/Priyank911/mapping/internal/session"
)

// APIHandler handles the extension-facing REST endpoints.
type APIHandler struct {
	secrets  *secrets.Service
	sessions *session.Service
	pipeline *capture.Pipeline
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(sec *secrets.Service, sess *session.Service, pipeline *capture.Pipeline) *APIHandler {
	return &APIHandler{
		secrets:  sec,
		sessions: sess,
		pipeline: pipeline,
	}
}

// Response helpers

type apiResponse struct {
	Data any `json:"data,omitempty"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Data: data})
}

func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := apiError{}
	resp.Error.Code = code
	resp.Error.Message = message
	json.NewEncoder(w).Encode(resp)
}

func decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(out); err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return false
	}
	return true
}

// writeError maps core errors onto HTTP responses.
func writeError(w http.ResponseWriter, err error) {
	var precondition *capture.PreconditionError
	var storage *capture.StorageError

	switch {
	case errors.As(err, &precondition):
		jsonError(w, http.StatusPreconditionFailed, "PRECONDITION_FAILED", precondition.Reason)
	case errors.As(err, &storage):
		jsonError(w, http.StatusBadGateway, "STORAGE_ERROR", storage.Error())
	case errors.Is(err, session.ErrNotFound):
		jsonError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found")
	case errors.Is(err, secrets.ErrWrongPassword):
		jsonError(w, http.StatusUnauthorized, "WRONG_PASSWORD", "Wrong password")
	case errors.Is(err, secrets.ErrNotSetup):
		jsonError(w, http.StatusConflict, "NOT_SETUP", "Setup has not completed")
	case errors.Is(err, crypto.ErrDecryptionFailed), errors.Is(err, crypto.ErrMalformedBlob):
		jsonError(w, http.StatusInternalServerError, "DECRYPTION_ERROR", "Stored data could not be decrypted")
	case errors.Is(err, keys.ErrKeyUnavailable):
		jsonError(w, http.StatusConflict, "LOCKED", "Cannot unlock or initialize the encryption key")
	default:
		jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

// Health handles GET /health.
func (h *APIHandler) Health(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
