package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Pam-anne/Reader-Aee/internal/ledger"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes {"message": ..., <fields>...}; fields carry the failure
// context (current_status, limit, ...) the original API reported.
func writeError(w http.ResponseWriter, status int, message string, fields map[string]interface{}) {
	body := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["message"] = message
	writeJSON(w, status, body)
}

// writeLedgerError translates a ledger failure kind into an HTTP status.
func (s *Server) writeLedgerError(w http.ResponseWriter, err error) {
	var le *ledger.Error
	if !errors.As(err, &le) {
		writeError(w, http.StatusInternalServerError, "unexpected error", nil)
		return
	}

	status := http.StatusInternalServerError
	switch le.Kind {
	case ledger.KindNotFound:
		status = http.StatusNotFound
	case ledger.KindBorrowLimitExceeded,
		ledger.KindDuplicateRequest,
		ledger.KindBookUnavailable,
		ledger.KindAlreadyProcessed,
		ledger.KindValidationFailed:
		status = http.StatusBadRequest
	case ledger.KindPersistenceFailure:
		s.log.Error("Ledger persistence failure: " + le.Error())
		writeError(w, http.StatusInternalServerError, "internal error", nil)
		return
	}

	writeError(w, status, le.Message, le.Fields)
}
