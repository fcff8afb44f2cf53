// Package ledger owns the borrow-request lifecycle and book inventory counts.
// All state transitions (pending -> approved/rejected, approved -> returned)
// and every mutation of Book.AvailableCopies happen inside the atomic
// transactions defined here; no other component writes these fields.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Pam-anne/Reader-Aee/internal/db"
)

const (
	defaultMaxActiveRequests = 3
	defaultMaxOpenLoans      = 5
	defaultLoanPeriod        = 14 * 24 * time.Hour

	maxReasonLength = 500

	defaultApprovalNote = "Request approved by librarian"
	defaultReturnNote   = "Book returned"
)

// Config holds the borrowing policy.
type Config struct {
	MaxActiveRequests int           // cap on pending+approved requests per reader at submission
	MaxOpenLoans      int           // cap on approved, not yet returned loans per reader at approval
	LoanPeriod        time.Duration // due date offset applied at approval
}

// Ledger enforces the borrowing invariants over the relational store.
type Ledger struct {
	db  *db.DB
	cfg Config
	log *zap.Logger
}

// New creates a ledger with the given policy; zero config fields fall back
// to the defaults (3 active requests, 5 open loans, 2 weeks).
func New(database *db.DB, cfg Config, log *zap.Logger) *Ledger {
	if cfg.MaxActiveRequests <= 0 {
		cfg.MaxActiveRequests = defaultMaxActiveRequests
	}
	if cfg.MaxOpenLoans <= 0 {
		cfg.MaxOpenLoans = defaultMaxOpenLoans
	}
	if cfg.LoanPeriod <= 0 {
		cfg.LoanPeriod = defaultLoanPeriod
	}
	return &Ledger{db: database, cfg: cfg, log: log}
}

// ValidateRequestDates checks the advisory borrowed_at/due_date pair a reader
// may attach to a submission. The pair never binds the ledger: the actual due
// date is fixed at approval time. Either field may be empty; when both are
// set, due_date must fall after borrowed_at.
func ValidateRequestDates(borrowedAt, dueDate string) error {
	from, err := parseRequestDate(borrowedAt)
	if err != nil {
		return newError(KindValidationFailed, "borrowed_at is not a valid date").
			with("borrowed_at", borrowedAt)
	}
	until, err := parseRequestDate(dueDate)
	if err != nil {
		return newError(KindValidationFailed, "due_date is not a valid date").
			with("due_date", dueDate)
	}
	if !from.IsZero() && !until.IsZero() && !until.After(from) {
		return newError(KindValidationFailed, "due_date must be after borrowed_at")
	}
	return nil
}

func parseRequestDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", value)
}

// SubmitRequest creates a pending borrow request for the reader. Inventory is
// not touched here; the decrement happens at approval time. Checks run in
// order: borrowing limit, duplicate request, availability.
func (l *Ledger) SubmitRequest(ctx context.Context, readerID, bookID uint, notes string) (*db.BorrowRequest, error) {
	var request db.BorrowRequest

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&db.BorrowRequest{}).
			Where("user_id = ? AND status IN ?", readerID, []string{db.StatusPending, db.StatusApproved}).
			Count(&active).Error; err != nil {
			return persistence(err)
		}
		if active >= int64(l.cfg.MaxActiveRequests) {
			return newError(KindBorrowLimitExceeded,
				fmt.Sprintf("you have reached the maximum borrowing limit of %d books", l.cfg.MaxActiveRequests)).
				with("current_requests", active).
				with("limit", l.cfg.MaxActiveRequests)
		}

		var duplicates int64
		if err := tx.Model(&db.BorrowRequest{}).
			Where("user_id = ? AND book_id = ? AND status = ?", readerID, bookID, db.StatusPending).
			Count(&duplicates).Error; err != nil {
			return persistence(err)
		}
		if duplicates > 0 {
			return newError(KindDuplicateRequest, "you already have a pending request for this book")
		}

		var book db.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(KindNotFound, "book not found")
			}
			return persistence(err)
		}
		if book.AvailableCopies <= 0 {
			return newError(KindBookUnavailable, "this book is currently not available").
				with("available_quantity", book.AvailableCopies)
		}

		request = db.BorrowRequest{
			UserID: readerID,
			BookID: bookID,
			Status: db.StatusPending,
			Notes:  notes,
		}
		if err := tx.Create(&request).Error; err != nil {
			// The partial unique index on (user_id, book_id) where
			// status='pending' closes the check-then-insert race.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return newError(KindDuplicateRequest, "you already have a pending request for this book")
			}
			return persistence(err)
		}

		if err := tx.Preload("Book").First(&request, request.ID).Error; err != nil {
			return persistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("Borrow request submitted",
		zap.Uint("request_id", request.ID),
		zap.Uint("reader_id", readerID),
		zap.Uint("book_id", bookID),
	)
	return &request, nil
}

// Approve transitions a pending request to approved, decrements the book's
// availability and appends a 'borrowed' log entry, all-or-nothing. The due
// date is fixed at approval time plus the configured loan period.
func (l *Ledger) Approve(ctx context.Context, librarianID, requestID uint, notes string) (*db.BorrowRequest, error) {
	if notes == "" {
		notes = defaultApprovalNote
	}
	now := time.Now()

	var approved db.BorrowRequest
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request db.BorrowRequest
		if err := tx.Preload("Book").First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(KindNotFound, "borrow request not found")
			}
			return persistence(err)
		}

		if request.Status != db.StatusPending {
			return newError(KindAlreadyProcessed, "request has already been processed").
				with("current_status", request.Status)
		}

		if request.Book.AvailableCopies <= 0 {
			return newError(KindBookUnavailable, "book is not available for borrowing").
				with("available_quantity", request.Book.AvailableCopies)
		}

		var openLoans int64
		if err := tx.Model(&db.BorrowRequest{}).
			Where("user_id = ? AND status = ? AND return_date IS NULL", request.UserID, db.StatusApproved).
			Count(&openLoans).Error; err != nil {
			return persistence(err)
		}
		if openLoans >= int64(l.cfg.MaxOpenLoans) {
			return newError(KindBorrowLimitExceeded, "user has reached maximum borrowing limit").
				with("current_borrows", openLoans).
				with("limit", l.cfg.MaxOpenLoans)
		}

		dueDate := now.Add(l.cfg.LoanPeriod)

		// Compare-and-set on status: of two concurrent approvals only one
		// finds the row still pending.
		res := tx.Model(&db.BorrowRequest{}).
			Where("id = ? AND status = ?", requestID, db.StatusPending).
			Updates(map[string]interface{}{
				"status":          db.StatusApproved,
				"approved_by":     librarianID,
				"approved_at":     now,
				"due_date":        dueDate,
				"librarian_notes": notes,
				"updated_at":      now,
			})
		if res.Error != nil {
			return persistence(res.Error)
		}
		if res.RowsAffected == 0 {
			return newError(KindAlreadyProcessed, "request has already been processed").
				with("current_status", currentStatus(tx, requestID))
		}

		// Guarded decrement: cannot take availability below zero no matter
		// how the concurrent approvals interleave.
		dec := tx.Model(&db.Book{}).
			Where("id = ? AND available_copies > 0", request.BookID).
			UpdateColumn("available_copies", gorm.Expr("available_copies - 1"))
		if dec.Error != nil {
			return persistence(dec.Error)
		}
		if dec.RowsAffected == 0 {
			return newError(KindBookUnavailable, "book is not available for borrowing").
				with("available_quantity", 0)
		}

		entry := db.BookLog{
			Action:          db.ActionBorrowed,
			BookID:          request.BookID,
			UserID:          request.UserID,
			LibrarianID:     &librarianID,
			BorrowRequestID: &request.ID,
			Notes:           "Book approved and borrowed",
			ActionDate:      now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return persistence(err)
		}

		if err := tx.Preload("Book").Preload("User").First(&approved, requestID).Error; err != nil {
			return persistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("Borrow request approved",
		zap.Uint("request_id", approved.ID),
		zap.Uint("librarian_id", librarianID),
		zap.Uint("book_id", approved.BookID),
		zap.Timep("due_date", approved.DueDate),
	)
	return &approved, nil
}

// Reject transitions a pending request to rejected and appends a
// 'request_rejected' log entry. Inventory is untouched.
func (l *Ledger) Reject(ctx context.Context, librarianID, requestID uint, reason string) (*db.BorrowRequest, error) {
	if reason == "" {
		return nil, newError(KindValidationFailed, "rejection reason is required")
	}
	if utf8.RuneCountInString(reason) > maxReasonLength {
		return nil, newError(KindValidationFailed, "rejection reason is too long").
			with("max_length", maxReasonLength)
	}
	now := time.Now()

	var rejected db.BorrowRequest
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request db.BorrowRequest
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(KindNotFound, "borrow request not found")
			}
			return persistence(err)
		}

		if request.Status != db.StatusPending {
			return newError(KindAlreadyProcessed, "request has already been processed").
				with("current_status", request.Status)
		}

		res := tx.Model(&db.BorrowRequest{}).
			Where("id = ? AND status = ?", requestID, db.StatusPending).
			Updates(map[string]interface{}{
				"status":          db.StatusRejected,
				"rejected_by":     librarianID,
				"rejected_at":     now,
				"librarian_notes": reason,
				"updated_at":      now,
			})
		if res.Error != nil {
			return persistence(res.Error)
		}
		if res.RowsAffected == 0 {
			return newError(KindAlreadyProcessed, "request has already been processed").
				with("current_status", currentStatus(tx, requestID))
		}

		entry := db.BookLog{
			Action:          db.ActionRequestRejected,
			BookID:          request.BookID,
			UserID:          request.UserID,
			LibrarianID:     &librarianID,
			BorrowRequestID: &request.ID,
			Notes:           "Request rejected: " + reason,
			ActionDate:      now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return persistence(err)
		}

		if err := tx.Preload("Book").Preload("User").First(&rejected, requestID).Error; err != nil {
			return persistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("Borrow request rejected",
		zap.Uint("request_id", rejected.ID),
		zap.Uint("librarian_id", librarianID),
		zap.String("reason", reason),
	)
	return &rejected, nil
}

// Return transitions an approved request to returned, restores the book's
// availability and appends a 'returned' log entry, all-or-nothing.
func (l *Ledger) Return(ctx context.Context, librarianID, requestID uint, notes string) (*db.BorrowRequest, error) {
	if notes == "" {
		notes = defaultReturnNote
	}
	now := time.Now()

	var returned db.BorrowRequest
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request db.BorrowRequest
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(KindNotFound, "borrow request not found")
			}
			return persistence(err)
		}

		if request.Status != db.StatusApproved {
			return newError(KindAlreadyProcessed, "request is not an open loan").
				with("current_status", request.Status)
		}

		res := tx.Model(&db.BorrowRequest{}).
			Where("id = ? AND status = ?", requestID, db.StatusApproved).
			Updates(map[string]interface{}{
				"status":      db.StatusReturned,
				"return_date": now,
				"updated_at":  now,
			})
		if res.Error != nil {
			return persistence(res.Error)
		}
		if res.RowsAffected == 0 {
			return newError(KindAlreadyProcessed, "request is not an open loan").
				with("current_status", currentStatus(tx, requestID))
		}

		// Guarded increment: availability never exceeds total copies.
		inc := tx.Model(&db.Book{}).
			Where("id = ? AND available_copies < total_copies", request.BookID).
			UpdateColumn("available_copies", gorm.Expr("available_copies + 1"))
		if inc.Error != nil {
			return persistence(inc.Error)
		}
		if inc.RowsAffected == 0 {
			return persistence(fmt.Errorf("inventory already at total copies for book %d", request.BookID))
		}

		entry := db.BookLog{
			Action:          db.ActionReturned,
			BookID:          request.BookID,
			UserID:          request.UserID,
			LibrarianID:     &librarianID,
			BorrowRequestID: &request.ID,
			Notes:           notes,
			ActionDate:      now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return persistence(err)
		}

		if err := tx.Preload("Book").Preload("User").First(&returned, requestID).Error; err != nil {
			return persistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("Book returned",
		zap.Uint("request_id", returned.ID),
		zap.Uint("librarian_id", librarianID),
		zap.Uint("book_id", returned.BookID),
	)
	return &returned, nil
}

func currentStatus(tx *gorm.DB, requestID uint) string {
	var request db.BorrowRequest
	if err := tx.Select("status").First(&request, requestID).Error; err != nil {
		return ""
	}
	return request.Status
}
