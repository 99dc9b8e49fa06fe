// Package web serves the Evently pages.
//
// Each page handler starts the queries its page needs, waits a bounded
// time for them, and renders whatever branch the results call for:
// loading, error, or the populated view. Queries still in flight keep
// running in the shared cache, and the loading page refreshes itself to
// pick them up.
package web

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/evently-app/evently/internal/query"
	"github.com/evently-app/evently/internal/view"
	"github.com/evently-app/evently/pkg/analytics"
)

// Options configures a Server.
type Options struct {
	// APIURL is the analytics API root, quoted in network error hints.
	APIURL string
	// RenderWait bounds how long a page waits for its queries.
	RenderWait time.Duration
	// CORSOrigins may fetch the globe marker feed.
	CORSOrigins []string
}

// Server holds the page handlers and their dependencies.
type Server struct {
	queries  *query.Queries
	client   analytics.Client
	sessions *Sessions
	content  *view.Content
	render   *renderer
	opts     Options
}

// NewServer creates a server reading through queries.
func NewServer(queries *query.Queries, opts Options) (*Server, error) {
	rd, err := newRenderer()
	if err != nil {
		return nil, err
	}
	content, err := view.LoadContent()
	if err != nil {
		return nil, eris.Wrap(err, "web: load content")
	}
	if opts.RenderWait <= 0 {
		opts.RenderWait = 1500 * time.Millisecond
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	return &Server{
		queries:  queries,
		client:   queries.Client(),
		sessions: NewSessions(),
		content:  content,
		render:   rd,
		opts:     opts,
	}, nil
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/", s.handleLanding)
	r.Get("/dashboard", s.handleDashboard)
	r.Route("/events", func(r chi.Router) {
		r.Get("/", s.handleEvents)
		r.Get("/{id}", s.handleEvent)
		r.Post("/{id}/recalculate", s.handleRecalculate)
	})
	r.Get("/compare", s.handleCompare)
	r.Get("/simulator", s.handleSimulator)
	r.Get("/predict", s.handlePredict)
	r.Post("/predict", s.handlePredictSubmit)
	r.Get("/about", s.handleAbout)
	r.Get("/methodology", s.handleMethodology)
	r.Get("/case-studies", s.handleCaseStudies)

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			MaxAge:         300,
		}))
		r.Get("/api/globe/markers", s.handleMarkers)
	})

	r.Get("/debug/cache", s.handleCacheStats)

	r.NotFound(s.handleNotFound)
	return r
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("web: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
