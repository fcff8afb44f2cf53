// Package httpapi maps the REST surface onto the ledger, catalog and auth
// components. Role checks happen here, in one guard per route group, before
// any ledger operation runs.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Pam-anne/Reader-Aee/internal/auth"
	"github.com/Pam-anne/Reader-Aee/internal/catalog"
	"github.com/Pam-anne/Reader-Aee/internal/db"
	"github.com/Pam-anne/Reader-Aee/internal/ledger"
	"github.com/Pam-anne/Reader-Aee/internal/metrics"
)

// EventPublisher is the slice of the events publisher the API uses. A nil
// publisher disables event emission (broker unavailable).
type EventPublisher interface {
	PublishRequestSubmitted(ctx context.Context, requestID, readerID, bookID uint) error
	PublishRequestApproved(ctx context.Context, requestID, readerID, bookID uint, dueDate time.Time) error
	PublishRequestRejected(ctx context.Context, requestID, readerID, bookID uint, reason string) error
	PublishBookReturned(ctx context.Context, requestID, readerID, bookID uint) error
	IsHealthy() bool
}

// Server holds the wired components behind the REST routes.
type Server struct {
	ledger  *ledger.Ledger
	catalog *catalog.Catalog
	auth    *auth.Service
	events  EventPublisher
	metrics *metrics.Metrics
	db      *db.DB
	log     *zap.Logger
}

// NewServer creates the API server. events may be nil.
func NewServer(l *ledger.Ledger, c *catalog.Catalog, a *auth.Service, events EventPublisher, m *metrics.Metrics, database *db.DB, log *zap.Logger) *Server {
	return &Server{
		ledger:  l,
		catalog: c,
		auth:    a,
		events:  events,
		metrics: m,
		db:      database,
		log:     log,
	}
}

// Router builds the route table with the auth guards per role group.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.instrument, jsonMiddleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	authed := r.PathPrefix("/").Subrouter()
	authed.Use(s.authenticate)
	authed.HandleFunc("/books", s.handleListBooks).Methods(http.MethodGet)

	reader := authed.PathPrefix("/").Subrouter()
	reader.Use(s.requireRole(db.RoleReader))
	reader.HandleFunc("/requests", s.handleSubmitRequest).Methods(http.MethodPost)
	reader.HandleFunc("/my-requests", s.handleMyRequests).Methods(http.MethodGet)

	librarian := authed.PathPrefix("/librarian").Subrouter()
	librarian.Use(s.requireRole(db.RoleLibrarian))
	librarian.HandleFunc("/books", s.handleCreateBook).Methods(http.MethodPost)
	librarian.HandleFunc("/books/{id:[0-9]+}", s.handleUpdateBook).Methods(http.MethodPut)
	librarian.HandleFunc("/books/{id:[0-9]+}", s.handleDeleteBook).Methods(http.MethodDelete)
	librarian.HandleFunc("/requests/pending", s.handlePendingRequests).Methods(http.MethodGet)
	librarian.HandleFunc("/requests", s.handleAllRequests).Methods(http.MethodGet)
	librarian.HandleFunc("/requests/{id:[0-9]+}/approve", s.handleApproveRequest).Methods(http.MethodPost)
	librarian.HandleFunc("/requests/{id:[0-9]+}/reject", s.handleRejectRequest).Methods(http.MethodPost)
	librarian.HandleFunc("/requests/{id:[0-9]+}/return", s.handleReturnRequest).Methods(http.MethodPost)
	librarian.HandleFunc("/inventory", s.handleInventory).Methods(http.MethodGet)

	admin := authed.PathPrefix("/admin").Subrouter()
	admin.Use(s.requireRole(db.RoleAdmin))
	admin.HandleFunc("/stats", s.handleAdminStats).Methods(http.MethodGet)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Error("Database health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "unhealthy: database connection failed", nil)
		return
	}
	if s.events != nil && !s.events.IsHealthy() {
		writeError(w, http.StatusServiceUnavailable, "unhealthy: event broker connection failed", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
