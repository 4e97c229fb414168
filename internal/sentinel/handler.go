package sentinel

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

const maxRequestBody = 16 << 10

// Handler exposes the validator and the security block over HTTP for
// callers in other processes.
type Handler struct {
	validator         Validator
	instructionsToken string
}

// NewHandler creates a validation handler.
func NewHandler(v Validator) *Handler {
	return &Handler{validator: v}
}

// WithInstructionsToken enables the security-instructions route behind a
// static bearer token. The block names internal categories and trigger
// terms, so it is never served anonymously.
func (h *Handler) WithInstructionsToken(token string) *Handler {
	h.instructionsToken = strings.TrimSpace(token)
	return h
}

// RegisterRoutes mounts the validation endpoints on mux. The instructions
// route is mounted only when a token is configured.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/validate", h.HandleValidate)
	if h.instructionsToken != "" {
		mux.HandleFunc("GET /api/v1/security-instructions", h.HandleSecurityInstructions)
	}
}

// HandleValidate answers every well-formed request with 200 and a
// verdict, accepted or not.
// POST /api/v1/validate {"destination": "...", "notes": "...", "userId": "..."}
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req Request
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.UserID == nil {
		if id := r.Header.Get("X-User-ID"); id != "" {
			req.UserID = &id
		}
	}

	writeJSON(w, http.StatusOK, h.validator.ValidateUserInput(r.Context(), req))
}

// HandleSecurityInstructions returns the prompt-hardening block as plain text.
// GET /api/v1/security-instructions
func (h *Handler) HandleSecurityInstructions(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = io.WriteString(w, BuildSecurityInstructions())
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.instructionsToken == "" {
		return false
	}
	got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(got), []byte(h.instructionsToken)) == 1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
