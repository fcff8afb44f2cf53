package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Pam-anne/Reader-Aee/internal/auth"
)

func (s *Server) handlePendingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.ledger.ListPending(r.Context())
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Pending requests retrieved successfully",
		"requests": requests,
		"count":    len(requests),
	})
}

func (s *Server) handleAllRequests(w http.ResponseWriter, r *http.Request) {
	requests, summary, err := s.ledger.ListAll(r.Context())
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "All requests retrieved successfully",
		"requests": requests,
		"summary":  summary,
	})
}

type decisionBody struct {
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

func (s *Server) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request id", nil)
		return
	}

	var body decisionBody
	json.NewDecoder(r.Body).Decode(&body) // notes are optional, an empty body is fine

	request, err := s.ledger.Approve(r.Context(), identity.UserID, id, body.Notes)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	s.metrics.RequestsApproved.Inc()
	if s.events != nil {
		if err := s.events.PublishRequestApproved(r.Context(), request.ID, request.UserID, request.BookID, *request.DueDate); err != nil {
			s.log.Warn("Failed to publish request.approved", zap.Uint("request_id", request.ID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Book request approved successfully",
		"request": request,
		"book_inventory": map[string]interface{}{
			"title":              request.Book.Title,
			"available_quantity": request.Book.AvailableCopies,
			"total_quantity":     request.Book.TotalCopies,
		},
	})
}

func (s *Server) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request id", nil)
		return
	}

	var body decisionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	request, err := s.ledger.Reject(r.Context(), identity.UserID, id, body.Reason)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	s.metrics.RequestsRejected.Inc()
	if s.events != nil {
		if err := s.events.PublishRequestRejected(r.Context(), request.ID, request.UserID, request.BookID, body.Reason); err != nil {
			s.log.Warn("Failed to publish request.rejected", zap.Uint("request_id", request.ID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Book request rejected successfully",
		"request": request,
	})
}

func (s *Server) handleReturnRequest(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request id", nil)
		return
	}

	var body decisionBody
	json.NewDecoder(r.Body).Decode(&body) // notes are optional

	request, err := s.ledger.Return(r.Context(), identity.UserID, id, body.Notes)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	s.metrics.BooksReturned.Inc()
	if s.events != nil {
		if err := s.events.PublishBookReturned(r.Context(), request.ID, request.UserID, request.BookID); err != nil {
			s.log.Warn("Failed to publish book.returned", zap.Uint("request_id", request.ID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Book returned successfully",
		"request": request,
		"book_inventory": map[string]interface{}{
			"title":              request.Book.Title,
			"available_quantity": request.Book.AvailableCopies,
			"total_quantity":     request.Book.TotalCopies,
		},
	})
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	books, summary, err := s.ledger.Inventory(r.Context())
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Inventory retrieved successfully",
		"summary": summary,
		"books":   books,
	})
}
