package httpadapter

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
	"github.com/couchcryptid/wildlife-health-watch/internal/observability"
	"github.com/couchcryptid/wildlife-health-watch/internal/pipeline"
	"github.com/couchcryptid/wildlife-health-watch/internal/store"
)

const exportFilename = "wildlife_health_data.csv"

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboards.Dashboard(r.Context(), r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, d)
}

func (s *Server) handleCases(w http.ResponseWriter, r *http.Request) {
	records, err := s.dashboards.Cases(r.Context(), r.URL.Query(), observability.ViewCases)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []domain.CaseRecord{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, records)
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := s.dashboards.Options(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, opts)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	records, err := s.dashboards.Cases(r.Context(), r.URL.Query(), observability.ViewExport)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := store.WriteCSV(&buf, records); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // client went away
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.dashboards.Page(r.Context(), r.URL.Query())
	if err != nil {
		status := statusFor(err)
		s.logRequestError(r, status, err)
		http.Error(w, err.Error(), status)
		return
	}

	var buf bytes.Buffer
	if err := s.pages.Render(&buf, page); err != nil {
		s.logRequestError(r, http.StatusInternalServerError, err)
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // client went away
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMalformedFilterSpec):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrSnapshotUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	s.logRequestError(r, status, err)
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) logRequestError(r *http.Request, status int, err error) {
	attrs := []any{"error", err, "path", r.URL.Path, "status", status, "request_id", r.Header.Get(requestIDHeader)}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", attrs...)
		return
	}
	s.logger.Warn("request rejected", attrs...)
}
