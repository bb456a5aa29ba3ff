package httpadapter

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/wildlife-health-watch/internal/aggregate"
	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
	"github.com/couchcryptid/wildlife-health-watch/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dashboards answers filter-and-aggregate queries. *pipeline.Pipeline
// implements it.
type Dashboards interface {
	sharedobs.ReadinessChecker
	Dashboard(ctx context.Context, values url.Values) (aggregate.Dashboard, error)
	Cases(ctx context.Context, values url.Values, view string) ([]domain.CaseRecord, error)
	Options(ctx context.Context) (aggregate.FilterOptions, error)
	Page(ctx context.Context, values url.Values) (pipeline.Page, error)
}

// PageRenderer writes the HTML dashboard.
type PageRenderer interface {
	Render(w io.Writer, page pipeline.Page) error
}

// Server exposes the dashboard API and page alongside health, readiness and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	dashboards Dashboards
	pages      PageRenderer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with every route registered.
func NewServer(addr string, dashboards Dashboards, pages PageRenderer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dashboards: dashboards,
		pages:      pages,
		logger:     logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(dashboards))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/v1/cases", s.handleCases)
	mux.HandleFunc("GET /api/v1/filters", s.handleFilters)
	mux.HandleFunc("GET /api/v1/export.csv", s.handleExport)
	mux.HandleFunc("GET /{$}", s.handlePage)

	s.httpServer.Handler = requestID(s.accessLog(s.recovery(mux)))
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
