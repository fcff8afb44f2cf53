package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	RequestsSubmitted prometheus.Counter
	RequestsApproved  prometheus.Counter
	RequestsRejected  prometheus.Counter
	BooksReturned     prometheus.Counter

	HTTPDuration *prometheus.HistogramVec
}

// New creates and registers the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RequestsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "library_requests_submitted_total",
			Help: "Borrow requests submitted by readers.",
		}),
		RequestsApproved: factory.NewCounter(prometheus.CounterOpts{
			Name: "library_requests_approved_total",
			Help: "Borrow requests approved by librarians.",
		}),
		RequestsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "library_requests_rejected_total",
			Help: "Borrow requests rejected by librarians.",
		}),
		BooksReturned: factory.NewCounter(prometheus.CounterOpts{
			Name: "library_books_returned_total",
			Help: "Loans closed by a book return.",
		}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "library_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

// Handler serves the /metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
