// Package server serves rendered documents over HTTP.
package server

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcncl/jsonviewer/internal/config"
	"github.com/mcncl/jsonviewer/internal/errors"
	"github.com/mcncl/jsonviewer/internal/formatter"
	"github.com/mcncl/jsonviewer/internal/generator"
	"github.com/mcncl/jsonviewer/internal/logging"
	"github.com/mcncl/jsonviewer/internal/parser"
	"github.com/mcncl/jsonviewer/internal/viewer"
)

// NodesHeader carries the number of rendered nodes on /render responses.
const NodesHeader = "X-Json-Nodes"

// Source produces the document served at the root path. It is called once
// per request.
type Source func(ctx context.Context) (any, error)

// Server routes requests to the render handlers.
type Server struct {
	cfg       *config.Config
	logger    *log.Logger
	source    Source
	generator *generator.Generator
	formatter *formatter.Formatter
	router    chi.Router
}

// New builds the router. source may be nil, in which case the root path
// answers 404.
func New(cfg *config.Config, logger *log.Logger, source Source) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		source:    source,
		generator: generator.NewGeneratorWithConfig(cfg),
		formatter: formatter.NewFormatter(),
	}

	r := chi.NewRouter()
	r.Use(assignRequestID)
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleDocument)
	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on cfg.Server.Addr until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return errors.NewServerError(fmt.Sprintf("failed to listen on %s", s.cfg.Server.Addr), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	var handler http.Handler = s
	if s.cfg.Server.H2C {
		handler = h2c.NewHandler(s, &http2.Server{})
	}
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("Serving", "addr", ln.Addr().String(), "h2c", s.cfg.Server.H2C)

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.NewServerError("server stopped", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	s.logger.Info("Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.NewServerError("graceful shutdown failed", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		logger := s.logger.With("id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(logging.WithLogger(r.Context(), logger)))
		logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start).Round(time.Microsecond),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		http.NotFound(w, r)
		return
	}
	value, err := s.source(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	res, err := s.generator.Page(value)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, errors.NewRenderError("failed to render document", err))
		return
	}
	out, err := s.formatter.Format(res.HTML)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, errors.NewRenderError("failed to format document", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(NodesHeader, strconv.Itoa(res.Stats.Nodes))
	_, _ = w.Write([]byte(out))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(s.cfg.ViewerOptions(), r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	body := r.Body
	if s.cfg.Server.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.fail(w, r, http.StatusRequestEntityTooLarge, errors.NewInputError(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), err))
			return
		}
		s.fail(w, r, http.StatusBadRequest, errors.NewInputError("failed to read request body", err))
		return
	}

	pc := s.cfg.Parser
	if raw := r.URL.Query().Get("canonical"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, fmt.Errorf("query parameter canonical=%q: %w", raw, errors.ErrInvalidOption))
			return
		}
		pc.Canonical = v
	}
	canonical := pc.Canonical
	ir, err := parser.Parse(bytes.NewReader(data), pc.Options()...)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	etag := documentTag(data, opts, canonical)
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	res, err := s.generator.Fragment(ir.Root, opts)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, errors.NewRenderError("failed to render document", err))
		return
	}

	logging.FromContext(r.Context()).Debug("Rendered", "nodes", res.Stats.Nodes, "toggles", res.Stats.Toggles)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(NodesHeader, strconv.Itoa(res.Stats.Nodes))
	_, _ = w.Write([]byte(res.HTML))
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	logger := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "status", status, "err", err)
	} else {
		logger.Debug("Request rejected", "status", status, "err", err)
	}
	http.Error(w, errors.UserFriendlyError(err), status)
}

// optionsFromQuery applies the render options given as query parameters.
func optionsFromQuery(opts viewer.Options, r *http.Request) (viewer.Options, error) {
	q := r.URL.Query()

	bools := []struct {
		name string
		dst  *bool
	}{
		{"collapsed", &opts.Collapsed},
		{"rootCollapsable", &opts.RootCollapsable},
		{"withQuotes", &opts.WithQuotes},
		{"withLinks", &opts.WithLinks},
		{"bigNumbers", &opts.BigNumbers},
	}
	for _, b := range bools {
		raw := q.Get(b.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("query parameter %s=%q: %w", b.name, raw, errors.ErrInvalidOption)
		}
		*b.dst = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"stringLengthThreshold", &opts.StringLengthThreshold},
		{"maxDepth", &opts.MaxDepth},
	}
	for _, i := range ints {
		raw := q.Get(i.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return opts, fmt.Errorf("query parameter %s=%q: %w", i.name, raw, errors.ErrInvalidOption)
		}
		*i.dst = v
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// assignRequestID gives requests without an X-Request-Id header a random
// one and echoes the id back to the client.
func assignRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(middleware.RequestIDHeader, id)
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
