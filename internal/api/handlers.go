package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/cfim/fandomap/internal/fandom"
)

type fandomHandler struct {
	engine *fandom.Engine
}

// ListResponse is returned by GET /api/fandoms.
type ListResponse struct {
	Total   int             `json:"total"`
	Fandoms []fandom.Record `json:"fandoms"`
}

// ResolveResponse is returned by GET /api/resolve.
type ResolveResponse struct {
	Query   string         `json:"query"`
	Matched bool           `json:"matched"`
	Stage   string         `json:"stage"`
	Fandom  *fandom.Record `json:"fandom,omitempty"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Fandoms int    `json:"fandoms"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// list returns every record, optionally filtered by a case-insensitive
// substring of the display name.
func (h *fandomHandler) list(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	recs := h.engine.Records()
	out := make([]fandom.Record, 0, len(recs))
	for _, rec := range recs {
		if q != "" && !strings.Contains(strings.ToLower(rec.DisplayName), q) {
			continue
		}
		out = append(out, rec)
	}

	writeJSON(w, http.StatusOK, ListResponse{Total: len(out), Fandoms: out})
}

func (h *fandomHandler) get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, err := h.engine.Get(id)
	if errors.Is(err, fandom.ErrNotFound) {
		http.Error(w, "Fandom not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// resolve runs a read-only lookup; typos are never recorded.
func (h *fandomHandler) resolve(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("q")
	q := strings.ToLower(strings.TrimSpace(raw))
	if q == "" {
		http.Error(w, "Missing q parameter", http.StatusBadRequest)
		return
	}

	resp := ResolveResponse{Query: raw, Stage: fandom.StageNone.String()}
	if rec, stage, ok := h.engine.Lookup(q); ok {
		resp.Matched = true
		resp.Stage = stage.String()
		resp.Fandom = &rec
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *fandomHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Fandoms: h.engine.Len()})
}
