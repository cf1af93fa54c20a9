package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

// Collector keeps process-wide request counters.
type Collector struct {
	requests    atomic.Uint64
	errors      atomic.Uint64
	clientErrs  atomic.Uint64
	rateLimited atomic.Uint64
	submissions atomic.Uint64
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) IncRequests() {
	c.requests.Add(1)
}

// ObserveStatus counts a finished response by status class.
func (c *Collector) ObserveStatus(status int) {
	switch {
	case status >= http.StatusInternalServerError:
		c.errors.Add(1)
	case status == http.StatusTooManyRequests:
		c.rateLimited.Add(1)
		c.clientErrs.Add(1)
	case status >= http.StatusBadRequest:
		c.clientErrs.Add(1)
	}
}

func (c *Collector) IncSubmissions() {
	c.submissions.Add(1)
}

type Snapshot struct {
	Requests     uint64
	Errors       uint64
	ClientErrors uint64
	RateLimited  uint64
	Submissions  uint64
}

func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Requests:     c.requests.Load(),
		Errors:       c.errors.Load(),
		ClientErrors: c.clientErrs.Load(),
		RateLimited:  c.rateLimited.Load(),
		Submissions:  c.submissions.Load(),
	}
}

// Handler renders the counters in the Prometheus text format.
type Handler struct {
	collector *Collector
}

func NewHandler(collector *Collector) *Handler {
	return &Handler{collector: collector}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	var snap Snapshot
	if h.collector != nil {
		snap = h.collector.Snapshot()
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	writeCounter(w, "jobboard_http_requests_total", "Total number of HTTP requests.", snap.Requests)
	writeCounter(w, "jobboard_http_errors_total", "Total number of 5xx HTTP responses.", snap.Errors)
	writeCounter(w, "jobboard_http_client_errors_total", "Total number of 4xx HTTP responses.", snap.ClientErrors)
	writeCounter(w, "jobboard_http_rate_limited_total", "Total number of requests rejected by rate limiting.", snap.RateLimited)
	writeCounter(w, "jobboard_applications_submitted_total", "Total number of accepted application submissions.", snap.Submissions)
}

func writeCounter(w http.ResponseWriter, name, help string, value uint64) {
	_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	_, _ = fmt.Fprintf(w, "# TYPE %s counter\n", name)
	_, _ = fmt.Fprintf(w, "%s %d\n", name, value)
}
