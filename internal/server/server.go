// Package server exposes an Inspector as a small read-only JSON API.
//
//	GET /healthz
//	GET /schema
//	GET /tables?schema=
//	GET /tables/{table}/columns
//	GET /tables/{table}/sequence
//	GET /snapshot?schema=
//
// {table} may be qualified as schema.table.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/koustreak/dbinfo/internal/config"
	"github.com/koustreak/dbinfo/internal/logger"
	"github.com/koustreak/dbinfo/internal/schema"
)

// Inspector is the part of *schema.Inspector the API serves.
type Inspector interface {
	Vendor() string
	FetchCurrentSchema(ctx context.Context) (string, error)
	FetchTableNames(ctx context.Context, schemaName string) ([]string, error)
	FetchColumns(ctx context.Context, table string) (*schema.TableSchema, error)
	FetchAutoincSequence(ctx context.Context, table string) (string, error)
	InspectSchema(ctx context.Context, schemaName string) (*schema.Snapshot, error)
}

// Server routes HTTP requests to an Inspector.
type Server struct {
	inspector Inspector
	log       *logger.Logger
	router    chi.Router
}

// New builds the router. log may be nil.
func New(inspector Inspector, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{inspector: inspector, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/schema", s.handleSchema)
	r.Get("/snapshot", s.handleSnapshot)
	r.Route("/tables", func(r chi.Router) {
		r.Get("/", s.handleTables)
		r.Get("/{table}/columns", s.handleColumns)
		r.Get("/{table}/sequence", s.handleSequence)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: errorDetail{Kind: "not_found", Message: "no route for " + r.URL.Path}})
	})

	s.router = r
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: cfg.ReadTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.With().Str("addr", cfg.Addr).Str("vendor", s.inspector.Vendor()).Logger().Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger attaches the logger to the request context, so inspector
// debug output carries the request id, and logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := middleware.GetReqID(r.Context())
		reqLog := s.log.With().Str("request_id", reqID).Logger()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(reqLog.WithContext(r.Context())))

		reqLog.HTTPEvent().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
