package server

import (
	"net/http"

	"github.com/agentstation/platemap/internal/server/handlers"
	"github.com/agentstation/platemap/internal/server/middleware"
	"github.com/agentstation/platemap/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(s.app, s.platemap, s.logger, s.config.MaxUploadBytes, s.startTime)
	routes := s.registerRoutes(mux, h)

	return s.applyMiddleware(mux, routes)
}

// registerRoutes registers all HTTP routes and returns their paths.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) map[string]struct{} {
	prefix := s.config.PathPrefix
	routes := make(map[string]struct{})
	handle := func(path string, method string, fn http.HandlerFunc) {
		routes[path] = struct{}{}
		mux.HandleFunc(path, allow(method, fn))
	}

	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	handle("/health", http.MethodGet, h.HandleHealth)
	if prefix != "" {
		handle(prefix+"/health", http.MethodGet, h.HandleHealth)
	}
	handle(prefix+"/ready", http.MethodGet, h.HandleReady)

	handle(prefix+"/agencies", http.MethodGet, h.HandleAgencies)
	handle(prefix+"/query", http.MethodPost, h.HandleQuery)
	handle(prefix+"/query/upload", http.MethodPost, h.HandleUpload)

	if s.metrics != nil {
		routes["/metrics"] = struct{}{}
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return routes
}

// applyMiddleware wraps handler with the middleware chain. Request IDs are
// assigned first so recovery and logging can report them.
func (s *Server) applyMiddleware(handler http.Handler, routes map[string]struct{}) http.Handler {
	cfg := s.config

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		} else {
			corsConfig.AllowAll = true
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	chain := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
	}
	if s.metrics != nil {
		chain = append(chain, middleware.Metrics(s.metrics, routeLabel(routes)))
	}
	return middleware.Chain(chain...)(handler)
}

// routeLabel keeps the metrics path label bounded to registered routes.
func routeLabel(routes map[string]struct{}) func(*http.Request) string {
	return func(r *http.Request) string {
		if _, ok := routes[r.URL.Path]; ok {
			return r.URL.Path
		}
		return "unmatched"
	}
}

// allow rejects methods other than method (and HEAD for GET routes).
func allow(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
			next(w, r)
			return
		}
		w.Header().Set("Allow", method)
		response.MethodNotAllowed(w, r.Method)
	}
}
