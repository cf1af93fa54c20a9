package http

import (
	"net/http"
	"strings"
	"time"

	"jobboard/internal/http/handlers"
	"jobboard/internal/http/metrics"
	httpmw "jobboard/internal/http/middleware"
)

type RouterDependencies struct {
	AuthHandler        *handlers.AuthHandler
	JobHandler         *handlers.JobHandler
	ApplicationHandler *handlers.ApplicationHandler
	MetricsHandler     *metrics.Handler
	AuthMiddleware     *httpmw.AuthMiddleware
	Metrics            *metrics.Collector
	Limiter            httpmw.Limiter
	AuthRateLimit      int
	AuthRateWindow     time.Duration
	RequestTimeout     time.Duration
}

type Router struct {
	deps    RouterDependencies
	handler http.Handler
	public  http.Handler
	auth    http.Handler
}

const maxBodyBytes = 1 << 20

func NewRouter(deps RouterDependencies) http.Handler {
	r := &Router{deps: deps}
	r.handler = httpmw.Chain(http.HandlerFunc(r.route),
		httpmw.RequestID,
		httpmw.Logging,
		httpmw.Metrics(deps.Metrics),
		httpmw.BodyLimit(maxBodyBytes),
		httpmw.Recover,
		httpmw.Timeout(deps.RequestTimeout),
	)
	r.public = deps.AuthMiddleware.Optional(http.HandlerFunc(r.handlePublic))
	r.auth = deps.AuthMiddleware.Authenticate(http.HandlerFunc(r.handleProtected))
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) route(w http.ResponseWriter, req *http.Request) {
	path := cleanPath(req.URL.Path)

	switch {
	case req.Method == http.MethodGet && path == "/health":
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
		return
	case req.Method == http.MethodGet && path == "/metrics":
		r.deps.MetricsHandler.ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && path == "/api/auth/register":
		r.limitAuth(r.deps.AuthHandler.Register).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && path == "/api/auth/login":
		r.limitAuth(r.deps.AuthHandler.Login).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && (path == "/api/jobs" || strings.HasPrefix(path, "/api/jobs/")):
		r.public.ServeHTTP(w, req)
		return
	}

	if path == "/api/auth/me" || path == "/api/auth/profile" || strings.HasPrefix(path, "/api/jobs") || strings.HasPrefix(path, "/api/applications") {
		r.auth.ServeHTTP(w, req)
		return
	}

	http.NotFound(w, req)
}

func (r *Router) handlePublic(w http.ResponseWriter, req *http.Request) {
	parts := segments(req.URL.Path)

	switch {
	case len(parts) == 2:
		r.deps.JobHandler.List(w, req)
		return
	case len(parts) == 3:
		r.deps.JobHandler.Get(w, req)
		return
	}

	http.NotFound(w, req)
}

func (r *Router) handleProtected(w http.ResponseWriter, req *http.Request) {
	path := cleanPath(req.URL.Path)
	parts := segments(path)

	switch {
	case req.Method == http.MethodGet && (path == "/api/auth/me" || path == "/api/auth/profile"):
		r.deps.AuthHandler.Me(w, req)
		return
	case req.Method == http.MethodPost && path == "/api/jobs":
		r.deps.JobHandler.Create(w, req)
		return
	case req.Method == http.MethodPut && len(parts) == 3 && parts[1] == "jobs":
		r.deps.JobHandler.Update(w, req)
		return
	case req.Method == http.MethodDelete && len(parts) == 3 && parts[1] == "jobs":
		r.deps.JobHandler.Delete(w, req)
		return
	case req.Method == http.MethodPost && path == "/api/applications/send":
		r.deps.ApplicationHandler.Submit(w, req)
		return
	case req.Method == http.MethodGet && path == "/api/applications":
		r.deps.ApplicationHandler.List(w, req)
		return
	case req.Method == http.MethodGet && len(parts) == 4 && parts[1] == "applications" && parts[2] == "job":
		r.deps.ApplicationHandler.ListByJob(w, req)
		return
	case req.Method == http.MethodPatch && len(parts) == 4 && parts[1] == "applications" && parts[3] == "status":
		r.deps.ApplicationHandler.UpdateStatus(w, req)
		return
	case req.Method == http.MethodGet && len(parts) == 3 && parts[1] == "applications":
		r.deps.ApplicationHandler.Get(w, req)
		return
	case req.Method == http.MethodDelete && len(parts) == 3 && parts[1] == "applications":
		r.deps.ApplicationHandler.Delete(w, req)
		return
	}

	http.NotFound(w, req)
}

func (r *Router) limitAuth(h http.HandlerFunc) http.Handler {
	if r.deps.AuthRateLimit <= 0 {
		return h
	}
	key := func(req *http.Request) string {
		return "auth:" + httpmw.ClientIP(req)
	}
	return httpmw.RateLimit(r.deps.Limiter, key, r.deps.AuthRateLimit, r.deps.AuthRateWindow)(h)
}

func cleanPath(path string) string {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

func segments(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}
