package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/graph"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/observability"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/observability/prom"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/report"
)

const (
	requestTimeout  = 2 * time.Minute
	shutdownTimeout = 5 * time.Second
)

// serveCommand creates the HTTP query service command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags sourceFlags
		addr  string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dependency reports over HTTP",
		Long: `Serve tree, list and find queries over HTTP, with Prometheus metrics.

  GET /tree?root=<coordinate>[&include=<pattern>...][&exclude=<pattern>...][&depth=n][&format=gav|kv_f_gav][&scopes=a,b]
  GET /list?root=<coordinate>...     same parameters as /tree
  GET /find?root=<coordinate>&pattern=<pattern>[&unique=true]
  GET /metrics
  GET /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			if addr == "" {
				addr = c.Config.Serve.Addr
			}

			e, err := c.newEngine(ctx, flags)
			if err != nil {
				return err
			}
			defer e.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			prom.New(reg).Install()
			defer observability.Reset()

			srv := &http.Server{
				Addr:              addr,
				Handler:           newServer(e, logger).routes(reg),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errc := make(chan error, 1)
			go func() {
				logger.Info("Listening", "addr", addr)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !stderrors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
				logger.Info("Shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

// server answers report queries from one shared engine. Each request
// builds its own graph and session.
type server struct {
	engine *engine
	logger *log.Logger
}

func newServer(e *engine, logger *log.Logger) *server {
	return &server{engine: e, logger: logger}
}

func (s *server) routes(metrics prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics, promhttp.HandlerOpts{}))
	r.Get("/tree", s.handleReport(report.WriteTree))
	r.Get("/list", s.handleReport(report.WriteFlat))
	r.Get("/find", s.handleFind)
	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

func (s *server) handleReport(print printer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseGraphQuery(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		opts, err := parseReportQuery(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		g, err := s.graph(r, req)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		var buf bytes.Buffer
		if err := print(&buf, g, nil, opts); err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write(buf.Bytes())
	}
}

func (s *server) handleFind(w http.ResponseWriter, r *http.Request) {
	req, err := parseGraphQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	pattern := q.Get("pattern")
	if pattern == "" {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidPattern, "pattern parameter is required"))
		return
	}
	if err := errors.ValidatePatternInput(pattern); err != nil {
		s.fail(w, r, err)
		return
	}
	unique, _ := strconv.ParseBool(q.Get("unique"))

	g, err := s.graph(r, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var nodes []*graph.Node
	if unique {
		n, err := g.FindUnique(pattern)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		nodes = []*graph.Node{n}
	} else if nodes, err = g.Find(pattern); err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, n := range nodes {
		fmt.Fprintln(w, n.ID)
	}
}

func (s *server) graph(r *http.Request, req graphRequest) (*graph.Graph, error) {
	logger := s.logger.With("request", middleware.GetReqID(r.Context()))
	return s.engine.build(r.Context(), logger, req)
}

// parseGraphQuery reads root, include, exclude and depth. Roots are
// always coordinates; local files are never read on behalf of a client.
func parseGraphQuery(r *http.Request) (graphRequest, error) {
	q := r.URL.Query()
	req := graphRequest{
		root:     q.Get("root"),
		includes: q["include"],
		excludes: q["exclude"],
		depth:    -1,
	}
	if err := errors.ValidateCoordinateInput(req.root); err != nil {
		return req, err
	}
	for _, list := range [][]string{req.includes, req.excludes} {
		for _, p := range list {
			if err := errors.ValidatePatternInput(p); err != nil {
				return req, err
			}
		}
	}
	if d := q.Get("depth"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil {
			return req, errors.New(errors.ErrCodeInvalidInput, "depth %q is not an integer", d)
		}
		req.depth = n
	}
	return req, nil
}

func parseReportQuery(r *http.Request) (report.Options, error) {
	q := r.URL.Query()
	var opts report.Options
	if f := q.Get("format"); f != "" {
		format, err := report.ParseFormat(f)
		if err != nil {
			return opts, err
		}
		opts.Format = format
	}
	if sc := q.Get("scopes"); sc != "" {
		for _, s := range strings.Split(sc, ",") {
			if s = strings.TrimSpace(s); s != "" {
				opts.Scopes = append(opts.Scopes, s)
			}
		}
	}
	return opts, nil
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", middleware.GetReqID(r.Context()), "err", err)
	}
	http.Error(w, errors.UserMessage(err), status)
}

// statusFor maps an error chain to an HTTP status. Causes are checked so
// a resolution failure caused by a missing artifact is a 404.
func statusFor(err error) int {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errors.ErrCodeInvalidInput),
		errors.Is(err, errors.ErrCodeInvalidCoordinate),
		errors.Is(err, errors.ErrCodeInvalidPattern),
		errors.Is(err, errors.ErrCodeInvalidFormat),
		errors.Is(err, errors.ErrCodeInvalidVersion),
		errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeAmbiguous):
		return http.StatusConflict
	case errors.Is(err, errors.ErrCodeInvalidManifest),
		errors.Is(err, errors.ErrCodeNetwork),
		errors.Is(err, errors.ErrCodeResolution):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
