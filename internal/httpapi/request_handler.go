package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Pam-anne/Reader-Aee/internal/auth"
	"github.com/Pam-anne/Reader-Aee/internal/ledger"
)

type submitRequestBody struct {
	BookID uint   `json:"book_id"`
	Notes  string `json:"notes"`

	// Advisory only; the due date is fixed at approval time.
	BorrowedAt string `json:"borrowed_at"`
	DueDate    string `json:"due_date"`
}

func (s *Server) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	var body submitRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if body.BookID == 0 {
		writeError(w, http.StatusBadRequest, "book_id is required", nil)
		return
	}
	if err := ledger.ValidateRequestDates(body.BorrowedAt, body.DueDate); err != nil {
		s.writeLedgerError(w, err)
		return
	}

	request, err := s.ledger.SubmitRequest(r.Context(), identity.UserID, body.BookID, body.Notes)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	s.metrics.RequestsSubmitted.Inc()
	if s.events != nil {
		if err := s.events.PublishRequestSubmitted(r.Context(), request.ID, request.UserID, request.BookID); err != nil {
			s.log.Warn("Failed to publish request.submitted", zap.Uint("request_id", request.ID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Request submitted successfully",
		"request": request,
	})
}

func (s *Server) handleMyRequests(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	requests, err := s.ledger.ListForReader(r.Context(), identity.UserID)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"count":    len(requests),
	})
}
