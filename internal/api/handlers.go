package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/FocuswithJustin/pedigree/core/errors"
	"github.com/FocuswithJustin/pedigree/core/gedcom"
	"github.com/FocuswithJustin/pedigree/internal/logging"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	Source      string `json:"source"`
	SHA256      string `json:"sha256,omitempty"`
	BLAKE3      string `json:"blake3,omitempty"`
	Records     int    `json:"records"`
	Individuals int    `json:"individuals"`
	Families    int    `json:"families"`
	Dangling    int    `json:"dangling"`
	Cached      int    `json:"cached"`
	Clients     int    `json:"websocket_clients"`
}

// IndividualInfo describes one individual and its immediate links.
type IndividualInfo struct {
	Xref           string      `json:"xref"`
	Names          []string    `json:"names,omitempty"`
	Sex            string      `json:"sex,omitempty"`
	BirthYear      *int        `json:"birth_year,omitempty"`
	DeathYear      *int        `json:"death_year,omitempty"`
	Alive          bool        `json:"alive"`
	Parents        []PersonRef `json:"parents,omitempty"`
	Children       []PersonRef `json:"children,omitempty"`
	Siblings       []PersonRef `json:"siblings,omitempty"`
	ParentFamilies []string    `json:"parent_families,omitempty"`
	Families       []string    `json:"families,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{
		"name":    "pedigree kinship API",
		"version": s.cfg.Version,
		"endpoints": []string{
			"GET /health",
			"GET /individuals",
			"GET /individuals/{xref}",
			"GET /individuals/{xref}/ancestors",
			"GET /kinship/common?a=&b=",
			"GET /kinship/path?a=&b=&compact=",
			"GET /kinship/distance?a=&b=",
			"GET /kinship/relative?a=&b=",
			"GET /ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, HealthInfo{
		Status:      "healthy",
		Version:     s.cfg.Version,
		Uptime:      time.Since(s.started).Round(time.Second).String(),
		Source:      s.source,
		SHA256:      s.hash.SHA256,
		BLAKE3:      s.hash.BLAKE3,
		Records:     len(s.tree.Records()),
		Individuals: len(s.tree.Individuals()),
		Families:    len(s.tree.Families()),
		Dangling:    len(s.tree.Dangling()),
		Cached:      s.memo.Len(),
		Clients:     s.hub.ClientCount(),
	})
}

// handleIndividuals lists individuals in file order. ?surname= filters
// case-insensitively; ?offset= and ?limit= page the result.
func (s *Server) handleIndividuals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil {
		respondErr(w, err)
		return
	}
	limit, err := intParam(q.Get("limit"), 100)
	if err != nil {
		respondErr(w, err)
		return
	}
	surname := strings.ToLower(q.Get("surname"))

	var matched []PersonRef
	for _, ind := range s.tree.Individuals() {
		if surname != "" && !hasSurname(ind, surname) {
			continue
		}
		matched = append(matched, personRef(ind))
	}

	total := len(matched)
	page := []PersonRef{}
	if offset < total {
		end := total
		if limit < total-offset {
			end = offset + limit
		}
		page = matched[offset:end]
	}
	respondList(w, page, total)
}

func (s *Server) handleIndividual(w http.ResponseWriter, r *http.Request) {
	ind, err := s.individual(r.PathValue("xref"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, describe(ind))
}

func (s *Server) handleAncestors(w http.ResponseWriter, r *http.Request) {
	res, err := s.Query(r.Context(), QueryRequest{Op: OpAncestors, A: r.PathValue("xref")})
	if err != nil {
		respondErr(w, err)
		return
	}
	fams := res.([]FamilyRef)
	respondList(w, fams, len(fams))
}

func (s *Server) handleKinship(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		compact, _ := strconv.ParseBool(q.Get("compact"))
		res, err := s.Query(r.Context(), QueryRequest{Op: op, A: q.Get("a"), B: q.Get("b"), Compact: compact})
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, res)
	}
}

func describe(ind *gedcom.Individual) IndividualInfo {
	info := IndividualInfo{Xref: ind.Xref(), Alive: ind.Alive()}
	for _, n := range ind.Names() {
		info.Names = append(info.Names, n.String())
	}
	if sex, err := ind.Sex(); err == nil {
		info.Sex = sex
	}
	if y, err := ind.BirthYear(); err == nil && y != gedcom.NoYear {
		info.BirthYear = &y
	}
	if y, err := ind.DeathYear(); err == nil && y != gedcom.NoYear {
		info.DeathYear = &y
	}
	for _, p := range ind.Parents() {
		info.Parents = append(info.Parents, personRef(p))
	}
	for _, c := range ind.Children() {
		info.Children = append(info.Children, personRef(c))
	}
	for _, sib := range ind.Siblings() {
		info.Siblings = append(info.Siblings, personRef(sib))
	}
	for _, f := range ind.ParentFamilies() {
		info.ParentFamilies = append(info.ParentFamilies, f.Xref())
	}
	for _, f := range ind.Families() {
		info.Families = append(info.Families, f.Xref())
	}
	return info
}

func hasSurname(ind *gedcom.Individual, lower string) bool {
	for _, n := range ind.Names() {
		if strings.ToLower(n.Surname) == lower {
			return true
		}
	}
	return false
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.Wrapf(errors.ErrInvalidInput, "bad integer parameter %q", v)
	}
	return n, nil
}

// errorStatus maps typed errors onto HTTP status and code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, errors.ErrUnsupported):
		return http.StatusBadRequest, "UNSUPPORTED"
	case errors.Is(err, errors.ErrAmbiguous):
		return http.StatusConflict, "AMBIGUOUS"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

func respondErr(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		logging.Error("request failed", "error", err)
	}
	respondError(w, status, code, err.Error())
}

func respond(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func respondList(w http.ResponseWriter, data any, total int) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Total: total, Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to encode response", "error", err)
	}
}
