package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/koustreak/dbinfo/internal/errs"
	"github.com/koustreak/dbinfo/internal/logger"
	"github.com/koustreak/dbinfo/internal/schema"
)

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
	Vendor string `json:"vendor"`
}

type schemaResponse struct {
	Schema string `json:"schema"`
}

type tablesResponse struct {
	Schema string   `json:"schema"`
	Tables []string `json:"tables"`
}

type columnsResponse struct {
	Table   string              `json:"table"`
	Columns *schema.TableSchema `json:"columns"`
}

type sequenceResponse struct {
	Table    string  `json:"table"`
	Sequence *string `json:"sequence"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Vendor: s.inspector.Vendor()})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	name, err := s.inspector.FetchCurrentSchema(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schemaResponse{Schema: name})
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	schemaName := r.URL.Query().Get("schema")
	if schemaName == "" {
		var err error
		if schemaName, err = s.inspector.FetchCurrentSchema(r.Context()); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	tables, err := s.inspector.FetchTableNames(r.Context(), schemaName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tablesResponse{Schema: schemaName, Tables: tables})
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	cols, err := s.inspector.FetchColumns(r.Context(), table)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, columnsResponse{Table: table, Columns: cols})
}

func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	seq, err := s.inspector.FetchAutoincSequence(r.Context(), table)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := sequenceResponse{Table: table}
	if seq != "" {
		resp.Sequence = &seq
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.inspector.InspectSchema(r.Context(), r.URL.Query().Get("schema"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// statusFor maps an error kind to the HTTP status it is reported with.
func statusFor(kind errs.ErrKind) int {
	switch kind {
	case errs.ErrKindInvalidInput:
		return http.StatusBadRequest
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrKindUnsupportedVendor:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errs.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorWith("request failed", err, map[string]any{"path": r.URL.Path})
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Kind: kind.String(), Message: err.Error()}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
