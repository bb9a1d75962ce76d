package viewer

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matsen/bizgraph/internal/logger"
)

// DefaultRefresh is how often the viewer page reloads the frame.
const DefaultRefresh = 500 * time.Millisecond

// ServerOptions configures the HTTP viewer.
type ServerOptions struct {
	DataURL        string        // Shown on the empty page
	FullURL        string        // Target of /full; 404 when empty
	Refresh        time.Duration // Page refresh period; DefaultRefresh when zero
	AllowedOrigins []string      // CORS origins for the JSON endpoints; "*" when empty
}

// Server serves a Session's published state.
type Server struct {
	session *Session
	opts    ServerOptions
}

// NewServer creates a viewer for session.
func NewServer(session *Session, opts ServerOptions) *Server {
	if opts.Refresh <= 0 {
		opts.Refresh = DefaultRefresh
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{session: session, opts: opts}
}

// Handler returns the router for all viewer endpoints.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/", s.page)
	router.Get("/frame.svg", s.frame)
	router.Get("/scene.json", s.scene)
	router.Get("/legend.json", s.legend)
	router.Get("/stats.json", s.stats)
	router.Get("/full", s.full)
	router.Get("/health", s.health)

	return router
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()
	empty := snap == nil || snap.Stats.Nodes == 0
	body, err := renderPage(s.session.SVG(), int(s.opts.Refresh/time.Millisecond), empty, s.opts.DataURL)
	if err != nil {
		logger.Error("rendering page", "err", err)
		http.Error(w, "rendering page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}

func (s *Server) frame(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(s.session.SVG())
}

func (s *Server) scene(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot().Scene)
}

func (s *Server) legend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot().Legend)
}

// StatsResponse is the body of /stats.json.
type StatsResponse struct {
	Nodes     int            `json:"nodes"`
	Links     int            `json:"links"`
	NodeTypes map[string]int `json:"node_types"`
	LinkTypes map[string]int `json:"link_types"`
	Version   int            `json:"version"`
	State     string         `json:"state"`
	Alpha     float64        `json:"alpha"`
	Ticks     int            `json:"ticks"`
	Turns     int            `json:"turns"`
	Pending   int            `json:"pending"`
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()
	writeJSON(w, http.StatusOK, StatsResponse{
		Nodes:     snap.Stats.Nodes,
		Links:     snap.Stats.Links,
		NodeTypes: snap.Stats.NodeTypes,
		LinkTypes: snap.Stats.LinkTypes,
		Version:   snap.Stats.Version,
		State:     snap.State,
		Alpha:     snap.Alpha,
		Ticks:     snap.Ticks,
		Turns:     snap.Turns,
		Pending:   s.session.Pending(),
	})
}

func (s *Server) full(w http.ResponseWriter, r *http.Request) {
	if s.opts.FullURL == "" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, s.opts.FullURL, http.StatusFound)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("writing response", "err", err)
	}
}

// requestLogger logs each request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(r.Context()))
	})
}
