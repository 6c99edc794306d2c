// Package server exposes introspection and DDL generation over HTTP.
//
// Routes:
//
//	GET /healthz
//	GET /dialects
//	GET /tables                     ?schema= &pattern= &type=
//	GET /tables/{table}             ?schema= &format=json|yaml
//	GET /tables/{table}/columns     ?schema=
//	GET /tables/{table}/ddl         ?schema= &dialect=
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/koustreak/ddlgen/internal/database"
	"github.com/koustreak/ddlgen/internal/dialect"
	"github.com/koustreak/ddlgen/internal/logger"
	"github.com/koustreak/ddlgen/internal/schema"
)

// Options configures a Server. Zero values fall back to the defaults noted
// on each field.
type Options struct {
	// Filter supplies the catalog and schema used when a request names none.
	Filter database.Filter

	// Types lists the table types served by /tables (default TABLE).
	Types []string

	// Dialect is used when /ddl is called without ?dialect= (default mysql).
	Dialect dialect.Type

	// QueryTimeout bounds every catalog operation; 0 means no limit.
	QueryTimeout time.Duration

	// Ping backs /healthz; nil reports healthy without a check.
	Ping func(ctx context.Context) error

	// Logger receives access logs and is attached to request contexts
	// (default: the global logger).
	Logger *logger.Logger
}

// Server is an http.Handler serving catalog metadata and DDL.
type Server struct {
	in     *schema.Introspector
	opts   Options
	log    *logger.Logger
	router chi.Router
}

// New returns a Server reading metadata from src.
func New(src database.Source, opts Options) *Server {
	if opts.Dialect == "" {
		opts.Dialect = dialect.MySQL
	}
	log := opts.Logger
	if log == nil {
		log = logger.FromContext(context.Background())
	}

	s := &Server{
		in:   schema.New(src),
		opts: opts,
		log:  log,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/dialects", s.handleDialects)

	r.Route("/tables", func(r chi.Router) {
		r.Use(s.withTimeout)
		r.Get("/", s.handleListTables)
		r.Route("/{table}", func(r chi.Router) {
			r.Get("/", s.handleTable)
			r.Get("/columns", s.handleColumns)
			r.Get("/ddl", s.handleDDL)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoWith("http server listening", map[string]any{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// requestLogger attaches a request-scoped logger to the context and writes
// one access log line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLog := s.log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(reqLog.WithContext(r.Context())))

		reqLog.Request().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// withTimeout applies QueryTimeout to catalog routes.
func (s *Server) withTimeout(next http.Handler) http.Handler {
	if s.opts.QueryTimeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.opts.QueryTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
