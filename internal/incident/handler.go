package incident

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Lister reads incidents back for review.
type Lister interface {
	List(ctx context.Context, p ListParams) ([]Record, error)
}

// Handler serves the admin incident listing.
type Handler struct {
	store Lister
	token string
}

// NewHandler creates an incident query handler guarded by a static bearer token.
func NewHandler(store Lister, adminToken string) *Handler {
	return &Handler{store: store, token: adminToken}
}

type recordJSON struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Category    string    `json:"category"`
	Severity    string    `json:"severity"`
	Outcome     string    `json:"outcome"`
	InputDigest string    `json:"input_digest"`
	Excerpt     string    `json:"excerpt,omitempty"`
	UserID      *string   `json:"user_id"`
	Confidence  int       `json:"confidence"`
	Detail      string    `json:"detail,omitempty"`
}

// HandleList returns incidents matching the query filters.
// GET /api/v1/incidents?limit=50&after=<RFC3339>&category=sexual_content
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeIncidentJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	q := r.URL.Query()
	params := ListParams{Limit: 50}

	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			params.Limit = n
		}
	}
	for name, dst := range map[string]**time.Time{"after": &params.After, "before": &params.Before} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeIncidentJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name + " timestamp"})
			return
		}
		*dst = &t
	}
	if v := q.Get("category"); v != "" {
		params.Category = &v
	}
	if v := q.Get("severity"); v != "" {
		if v != SeveritySoftWarn && v != SeverityHardBlock {
			writeIncidentJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid severity"})
			return
		}
		params.Severity = &v
	}
	if v := q.Get("user_id"); v != "" {
		params.UserID = &v
	}

	records, err := h.store.List(r.Context(), params)
	if err != nil {
		writeIncidentJSON(w, http.StatusInternalServerError, map[string]string{"error": "query failed"})
		return
	}

	out := make([]recordJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, recordJSON{
			ID:          rec.ID.String(),
			Timestamp:   rec.Timestamp,
			Category:    rec.Category,
			Severity:    rec.Severity,
			Outcome:     rec.Outcome,
			InputDigest: rec.InputDigest,
			Excerpt:     rec.Excerpt,
			UserID:      rec.UserID,
			Confidence:  rec.Confidence,
			Detail:      rec.Detail,
		})
	}

	writeIncidentJSON(w, http.StatusOK, map[string]any{"incidents": out, "count": len(out)})
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) == 1
}

func writeIncidentJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
