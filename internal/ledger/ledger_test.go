package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Pam-anne/Reader-Aee/internal/db"
	"github.com/Pam-anne/Reader-Aee/pkg/logger"
)

func setupTestDB(t *testing.T) *db.DB {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	database := &db.DB{DB: gormDB}
	require.NoError(t, db.RunMigrations(database))
	return database
}

func setupLedger(t *testing.T) (*Ledger, *db.DB) {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "error")
	return New(database, Config{}, log), database
}

func createUser(t *testing.T, database *db.DB, name, role string) *db.User {
	user := &db.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, database.Create(user).Error)
	return user
}

func createBook(t *testing.T, database *db.DB, title, isbn string, total, available int) *db.Book {
	book := &db.Book{
		Title:           title,
		Author:          "Some Author",
		ISBN:            isbn,
		TotalCopies:     total,
		AvailableCopies: available,
	}
	require.NoError(t, database.Create(book).Error)
	return book
}

func countLogs(t *testing.T, database *db.DB, action string) int64 {
	var n int64
	require.NoError(t, database.Model(&db.BookLog{}).Where("action = ?", action).Count(&n).Error)
	return n
}

func bookAvailability(t *testing.T, database *db.DB, bookID uint) int {
	var book db.Book
	require.NoError(t, database.First(&book, bookID).Error)
	return book.AvailableCopies
}

func TestSubmitRequest(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	reader := createUser(t, database, "reader", db.RoleReader)
	book := createBook(t, database, "The Hobbit", "9780547928227", 5, 2)

	request, err := l.SubmitRequest(ctx, reader.ID, book.ID, "")
	require.NoError(t, err)

	assert.Equal(t, db.StatusPending, request.Status)
	assert.Equal(t, reader.ID, request.UserID)
	assert.Equal(t, book.ID, request.BookID)
	assert.Nil(t, request.DueDate)

	// Submission must not touch inventory or the audit log.
	assert.Equal(t, 2, bookAvailability(t, database, book.ID))
	assert.Equal(t, int64(0), countLogs(t, database, db.ActionBorrowed))
}

func TestSubmitRequestBookUnavailable(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	reader := createUser(t, database, "reader", db.RoleReader)
	book := createBook(t, database, "Out of Stock", "9780000000001", 5, 0)

	_, err := l.SubmitRequest(ctx, reader.ID, book.ID, "")
	require.Error(t, err)
	assert.Equal(t, KindBookUnavailable, KindOf(err))
}

func TestSubmitRequestDuplicate(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	reader := createUser(t, database, "reader", db.RoleReader)
	book := createBook(t, database, "Popular", "9780000000002", 5, 2)

	_, err := l.SubmitRequest(ctx, reader.ID, book.ID, "")
	require.NoError(t, err)

	_, err = l.SubmitRequest(ctx, reader.ID, book.ID, "")
	require.Error(t, err)
	assert.Equal(t, KindDuplicateRequest, KindOf(err))
}

func TestSubmitRequestBorrowLimit(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	reader := createUser(t, database, "reader", db.RoleReader)
	librarian := createUser(t, database, "librarian", db.RoleLibrarian)

	// Three active requests: two pending, one approved.
	for i, isbn := range []string{"9780000000010", "9780000000011", "9780000000012"} {
		book := createBook(t, database, "Book", isbn, 3, 3)
		request, err := l.SubmitRequest(ctx, reader.ID, book.ID, "")
		require.NoError(t, err)
		if i == 0 {
			_, err = l.Approve(ctx, librarian.ID, request.ID, "")
			require.NoError(t, err)
		}
	}

	fourth := createBook(t, database, "One Too Many", "9780000000013", 3, 3)
	_, err := l.SubmitRequest(ctx, reader.ID, fourth.ID, "")
	require.Error(t, err)
	assert.Equal(t, KindBorrowLimitExceeded, KindOf(err))

	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 3, le.Fields["limit"])
}

func TestValidateRequestDates(t *testing.T) {
	assert.NoError(t, ValidateRequestDates("", ""))
	assert.NoError(t, ValidateRequestDates("2026-09-01", ""))
	assert.NoError(t, ValidateRequestDates("", "2026-09-15"))
	assert.NoError(t, ValidateRequestDates("2026-09-01", "2026-09-15"))
	assert.NoError(t, ValidateRequestDates("2026-09-01T10:00:00Z", "2026-09-15T10:00:00Z"))

	err := ValidateRequestDates("not-a-date", "")
	require.Error(t, err)
	assert.Equal(t, KindValidationFailed, KindOf(err))

	err = ValidateRequestDates("", "15/09/2026")
	require.Error(t, err)
	assert.Equal(t, KindValidationFailed, KindOf(err))

	// due_date must fall strictly after borrowed_at.
	err = ValidateRequestDates("2026-09-15", "2026-09-01")
	require.Error(t, err)
	assert.Equal(t, KindValidationFailed, KindOf(err))
	err = ValidateRequestDates("2026-09-15", "2026-09-15")
	require.Error(t, err)
	assert.Equal(t, KindValidationFailed, KindOf(err))
}

func TestSubmitRequestBookNotFound(t *testing.T) {
	l, database := setupLedger(t)
	reader := createUser(t, database, "reader", db.RoleReader)

	_, err := l.SubmitRequest(context.Background(), reader.ID, 9999, "")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestApprove(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	reader := createUser(t, database, "reader", db.RoleReader)
	librarian := createUser(t, database, "librarian", db.RoleLibrarian)
	book := createBook(t, database, "The Great Gatsby", "9780743273565", 5, 2)

	request, err := l.SubmitRequest(ctx, reader.ID, book.ID, "")
	require.NoError(t, err)

	approved, err := l.Approve(ctx, librarian.ID, request.ID, "")
	require.NoError(t, err)

	assert.Equal(t, db.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, librarian.ID, *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)
	assert.Nil(t, approved.RejectedBy)
	assert.Equal(t, defaultApprovalNote, approved.LibrarianNotes)

	require.NotNil(t, approved.DueDate)
	assert.WithinDuration(t, time.Now().Add(14*24*time.Hour), *approved.DueDate, time.Minute)

	assert.Equal(t, 1, bookAvailability(t, database, book.ID))
	assert.Equal(t, int64(1), countLogs(t, database, db.ActionBorrowed))
}

func TestApproveTwiceDoesNotDoubleDecrement(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	reader := createUser(t, database, "reader", db.RoleReader)
	librarian := createUser(t, database, "librarian", db.RoleLibrarian)
	book := createBook(t, database, "1984", "9780451524935", 5, 2)

	request, err := l.SubmitRequest(ctx, reader.ID, book.ID, "")
	require.NoError(t, err)

	_, err = l.Approve(ctx, librarian.ID, request.ID, "")
	require.NoError(t, err)

	_, err = l.Approve(ctx, librarian.ID, request.ID, "")
	require.Error(t, err)
	assert.Equal(t, KindAlreadyProcessed, KindOf(err))

	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, db.StatusApproved, le.Fields["current_status"])

	assert.Equal(t, 1, bookAvailability(t, database, book.ID))
	assert.Equal(t, int64(1), countLogs(t, database, db.ActionBorrowed))
}

func TestApproveBookUnavailable(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	reader := createUser(t, database, "reader", db.RoleReader)
	librarian := createUser(t, database, "librarian", db.RoleLibrarian)
	book := createBook(t, database, "Scarce", "9780000000020", 1, 1)

	request, err := l.SubmitRequest(ctx, reader.ID, book.ID, "")
	require.NoError(t, err)

	// The last copy goes out between submission and the decision.
	require.NoError(t, database.Model(&db.Book{}).Where("id = ?", book.ID).
		UpdateColumn("available_copies", 0).Error)

	_, err = l.Approve(ctx, librarian.ID, request.ID, "")
	require.Error(t, err)
	assert.Equal(t, KindBookUnavailable, KindOf(err))

	// Nothing may have changed.
	var fresh db.BorrowRequest
	require.NoError(t, database.First(&fresh, request.ID).Error)
	assert.Equal(t, db.StatusPending, fresh.Status)
	assert.Equal(t, int64(0), countLogs(t, database, db.ActionBorrowed))
}

func TestApproveRollsBackOnLogFailure(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	reader := createUser(t, database, "reader", db.RoleReader)
	librarian := createUser(t, database, "librarian", db.RoleLibrarian)
	book := createBook(t, database, "Fragile", "9780000000021", 5, 2)

	request, err := l.SubmitRequest(ctx, reader.ID, book.ID, "")
	require.NoError(t, err)

	// Fail the audit-log insert after the status flip and the decrement have
	// already run inside the transaction.
	require.NoError(t, database.Callback().Create().Before("gorm:create").
		Register("fail_book_logs", func(tx *gorm.DB) {
			if _, ok := tx.Statement.Dest.(*db.BookLog); ok {
				tx.AddError(errors.New("log write failed"))
			}
		}))
	defer database.Callback().Create().Remove("fail_book_logs")

	_, err = l.Approve(ctx, librarian.ID, request.ID, "")
	require.Error(t, err)
	assert.Equal(t, KindPersistenceFailure, KindOf(err))

	// Everything the transaction touched must be rolled back.
	var fresh db.BorrowRequest
	require.NoError(t, database.First(&fresh, request.ID).Error)
	assert.Equal(t, db.StatusPending, fresh.Status)
	assert.Nil(t, fresh.DueDate)
	assert.Equal(t, 2, bookAvailability(t, database, book.ID))
	assert.Equal(t, int64(0), countLogs(t, database, db.ActionBorrowed))
}

func TestApproveLosesRaceToConcurrentDecision(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	reader := createUser(t, database, "reader", db.RoleReader)
	librarian := createUser(t, database, "librarian", db.RoleLibrarian)
	rival := createUser(t, database, "rival", db.RoleLibrarian)
	book := createBook(t, database, "Contested", "9780000000022", 5, 2)

	request, err := l.SubmitRequest(ctx, reader.ID, book.ID, "")
	require.NoError(t, err)

	// A rival decision lands between this caller's pending check and its
	// status update, so the compare-and-set sees a non-pending row.
	fired := false
	require.NoError(t, database.Callback().Update().Before("gorm:update").
		Register("rival_decision", func(tx *gorm.DB) {
			if fired {
				return
			}
			if _, ok := tx.Statement.Model.(*db.BorrowRequest); !ok {
				return
			}
			fired = true
			tx.Session(&gorm.Session{NewDB: true}).
				Exec("UPDATE borrow_requests SET status = ?, approved_by = ? WHERE id = ?",
					db.StatusApproved, rival.ID, request.ID)
		}))
	defer database.Callback().Update().Remove("rival_decision")

	_, err = l.Approve(ctx, librarian.ID, request.ID, "")
	require.Error(t, err)
	assert.Equal(t, KindAlreadyProcessed, KindOf(err))

	// The losing caller must not have decremented or logged anything.
	assert.Equal(t, 2, bookAvailability(t, database, book.ID))
	assert.Equal(t, int64(0), countLogs(t, database, db.ActionBorrowed))
}

func TestApproveOpenLoanCap(t *testing.T) {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "error")
	// Submission cap raised so the approval-time cap is what trips.
	l := New(database, Config{MaxActiveRequests: 10}, log)
	ctx := context.Background()

	reader := createUser(t, database, "reader", db.RoleReader)
	librarian := createUser(t, database, "librarian", db.RoleLibrarian)

	isbns := []string{"9780000000030", "9780000000031", "9780000000032", "9780000000033", "9780000000034", "9780000000035"}
	var lastRequest *db.BorrowRequest
	for i, isbn := range isbns {
		book := createBook(t, database, "Loaned", isbn, 2, 2)
		request, err := l.SubmitRequest(ctx, reader.ID, book.ID, "")
		require.NoError(t, err)
		lastRequest = request
		if i < 5 {
			_, err = l.Approve(ctx, librarian.ID, request.ID, "")
			require.NoError(t, err)
		}
	}

	_, err := l.Approve(ctx, librarian.ID, lastRequest.ID, "")
	require.Error(t, err)
	assert.Equal(t, KindBorrowLimitExceeded, KindOf(err))

	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 5, le.Fields["limit"])
}

func TestApproveNotFound(t *testing.T) {
	l, database := setupLedger(t)
	librarian := createUser(t, database, "librarian", db.RoleLibrarian)

	_, err := l.Approve(context.Background(), librarian.ID, 9999, "")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestReject(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	reader := createUser(t, database, "reader", db.RoleReader)
	librarian := createUser(t, database, "librarian", db.RoleLibrarian)
	book := createBook(t, database, "Damaged Goods", "9780000000040", 5, 2)

	request, err := l.SubmitRequest(ctx, reader.ID, book.ID, "")
	require.NoError(t, err)

	rejected, err := l.Reject(ctx, librarian.ID, request.ID, "Book damaged")
	require.NoError(t, err)

	assert.Equal(t, db.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectedBy)
	assert.Equal(t, librarian.ID, *rejected.RejectedBy)
	assert.NotNil(t, rejected.RejectedAt)
	assert.Nil(t, rejected.ApprovedBy)
	assert.Equal(t, "Book damaged", rejected.LibrarianNotes)

	// Rejection never touches inventory.
	assert.Equal(t, 2, bookAvailability(t, database, book.ID))
	assert.Equal(t, int64(1), countLogs(t, database, db.ActionRequestRejected))

	var entry db.BookLog
	require.NoError(t, database.Where("action = ?", db.ActionRequestRejected).First(&entry).Error)
	assert.Equal(t, "Request rejected: Book damaged", entry.Notes)
}

func TestRejectValidation(t *testing.T) {
	l, database := setupLedger(t)
	librarian := createUser(t, database, "librarian", db.RoleLibrarian)

	_, err := l.Reject(context.Background(), librarian.ID, 1, "")
	require.Error(t, err)
	assert.Equal(t, KindValidationFailed, KindOf(err))

	long := make([]byte, maxReasonLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = l.Reject(context.Background(), librarian.ID, 1, string(long))
	require.Error(t, err)
	assert.Equal(t, KindValidationFailed, KindOf(err))
}

func TestRejectReasonCountsCharacters(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	reader := createUser(t, database, "reader", db.RoleReader)
	librarian := createUser(t, database, "librarian", db.RoleLibrarian)
	book := createBook(t, database, "Multibyte", "9780000000042", 5, 2)

	request, err := l.SubmitRequest(ctx, reader.ID, book.ID, "")
	require.NoError(t, err)

	// 400 characters but 800 bytes; the cap counts characters.
	reason := strings.Repeat("ñ", 400)
	rejected, err := l.Reject(ctx, librarian.ID, request.ID, reason)
	require.NoError(t, err)
	assert.Equal(t, reason, rejected.LibrarianNotes)

	_, err = l.Reject(ctx, librarian.ID, request.ID, strings.Repeat("ñ", maxReasonLength+1))
	require.Error(t, err)
	assert.Equal(t, KindValidationFailed, KindOf(err))
}

func TestRejectAlreadyProcessed(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	reader := createUser(t, database, "reader", db.RoleReader)
	librarian := createUser(t, database, "librarian", db.RoleLibrarian)
	book := createBook(t, database, "Decided", "9780000000041", 5, 2)

	request, err := l.SubmitRequest(ctx, reader.ID, book.ID, "")
	require.NoError(t, err)
	_, err = l.Reject(ctx, librarian.ID, request.ID, "No longer offered")
	require.NoError(t, err)

	_, err = l.Reject(ctx, librarian.ID, request.ID, "Again")
	require.Error(t, err)
	assert.Equal(t, KindAlreadyProcessed, KindOf(err))
	assert.Equal(t, int64(1), countLogs(t, database, db.ActionRequestRejected))
}

func TestReturn(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	reader := createUser(t, database, "reader", db.RoleReader)
	librarian := createUser(t, database, "librarian", db.RoleLibrarian)
	book := createBook(t, database, "Round Trip", "9780000000050", 5, 2)

	request, err := l.SubmitRequest(ctx, reader.ID, book.ID, "")
	require.NoError(t, err)
	_, err = l.Approve(ctx, librarian.ID, request.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, bookAvailability(t, database, book.ID))

	returned, err := l.Return(ctx, librarian.ID, request.ID, "")
	require.NoError(t, err)

	assert.Equal(t, db.StatusReturned, returned.Status)
	assert.NotNil(t, returned.ReturnDate)
	assert.Equal(t, 2, bookAvailability(t, database, book.ID))
	assert.Equal(t, int64(1), countLogs(t, database, db.ActionReturned))
}

func TestReturnNotAnOpenLoan(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	reader := createUser(t, database, "reader", db.RoleReader)
	librarian := createUser(t, database, "librarian", db.RoleLibrarian)
	book := createBook(t, database, "Still Pending", "9780000000051", 5, 2)

	request, err := l.SubmitRequest(ctx, reader.ID, book.ID, "")
	require.NoError(t, err)

	_, err = l.Return(ctx, librarian.ID, request.ID, "")
	require.Error(t, err)
	assert.Equal(t, KindAlreadyProcessed, KindOf(err))
	assert.Equal(t, 2, bookAvailability(t, database, book.ID))
}

func TestAvailabilityStaysWithinBounds(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	librarian := createUser(t, database, "librarian", db.RoleLibrarian)
	book := createBook(t, database, "Single Copy", "9780000000060", 1, 1)

	readerA := createUser(t, database, "reader-a", db.RoleReader)
	readerB := createUser(t, database, "reader-b", db.RoleReader)

	requestA, err := l.SubmitRequest(ctx, readerA.ID, book.ID, "")
	require.NoError(t, err)
	requestB, err := l.SubmitRequest(ctx, readerB.ID, book.ID, "")
	require.NoError(t, err)

	_, err = l.Approve(ctx, librarian.ID, requestA.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, bookAvailability(t, database, book.ID))

	// Second approval against the same single copy must fail, not go negative.
	_, err = l.Approve(ctx, librarian.ID, requestB.ID, "")
	require.Error(t, err)
	assert.Equal(t, KindBookUnavailable, KindOf(err))
	assert.Equal(t, 0, bookAvailability(t, database, book.ID))

	// Returning restores exactly one copy, never more than total.
	_, err = l.Return(ctx, librarian.ID, requestA.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, bookAvailability(t, database, book.ID))
}

func TestListPendingOldestFirst(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	book := createBook(t, database, "Queue", "9780000000070", 5, 5)
	first := createUser(t, database, "first", db.RoleReader)
	second := createUser(t, database, "second", db.RoleReader)

	// Distinct creation timestamps so the ordering is observable.
	r1 := db.BorrowRequest{UserID: first.ID, BookID: book.ID, Status: db.StatusPending, CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, database.Create(&r1).Error)
	r2 := db.BorrowRequest{UserID: second.ID, BookID: book.ID, Status: db.StatusPending, CreatedAt: time.Now()}
	require.NoError(t, database.Create(&r2).Error)

	pending, err := l.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, r1.ID, pending[0].ID)
	assert.Equal(t, r2.ID, pending[1].ID)
	assert.Equal(t, "Queue", pending[0].Book.Title)
	assert.Equal(t, "first", pending[0].User.Name)
}

func TestListForReaderMostRecentFirst(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	reader := createUser(t, database, "reader", db.RoleReader)
	other := createUser(t, database, "other", db.RoleReader)
	book := createBook(t, database, "History", "9780000000071", 5, 5)

	older := db.BorrowRequest{UserID: reader.ID, BookID: book.ID, Status: db.StatusRejected, CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, database.Create(&older).Error)
	newer := db.BorrowRequest{UserID: reader.ID, BookID: book.ID, Status: db.StatusPending, CreatedAt: time.Now()}
	require.NoError(t, database.Create(&newer).Error)
	foreign := db.BorrowRequest{UserID: other.ID, BookID: book.ID, Status: db.StatusPending, CreatedAt: time.Now()}
	require.NoError(t, database.Create(&foreign).Error)

	requests, err := l.ListForReader(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, newer.ID, requests[0].ID)
	assert.Equal(t, older.ID, requests[1].ID)
}

func TestInventoryProjection(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	createBook(t, database, "Available", "9780000000080", 5, 3)
	createBook(t, database, "Gone", "9780000000081", 2, 0)

	books, summary, err := l.Inventory(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, "Available", books[0].Title)
	assert.Equal(t, 2, books[0].BorrowedQuantity)
	assert.Equal(t, db.BookAvailable, books[0].Status)
	assert.Equal(t, db.BookOutOfStock, books[1].Status)

	assert.Equal(t, 2, summary.TotalBooks)
	assert.Equal(t, 1, summary.AvailableBooks)
	assert.Equal(t, 1, summary.OutOfStockBooks)
	assert.Equal(t, 7, summary.TotalCopies)
	assert.Equal(t, 3, summary.AvailableCopies)
	assert.Equal(t, 4, summary.BorrowedCopies)
}

func TestStats(t *testing.T) {
	l, database := setupLedger(t)
	ctx := context.Background()

	reader := createUser(t, database, "reader", db.RoleReader)
	librarian := createUser(t, database, "librarian", db.RoleLibrarian)
	bookA := createBook(t, database, "A", "9780000000090", 3, 3)
	bookB := createBook(t, database, "B", "9780000000091", 3, 3)

	requestA, err := l.SubmitRequest(ctx, reader.ID, bookA.ID, "")
	require.NoError(t, err)
	_, err = l.Approve(ctx, librarian.ID, requestA.ID, "")
	require.NoError(t, err)

	requestB, err := l.SubmitRequest(ctx, reader.ID, bookB.ID, "")
	require.NoError(t, err)
	_, err = l.Reject(ctx, librarian.ID, requestB.ID, "Not this time")
	require.NoError(t, err)

	stats, err := l.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Requests.Total)
	assert.Equal(t, int64(1), stats.Requests.Approved)
	assert.Equal(t, int64(1), stats.Requests.Rejected)
	assert.Equal(t, int64(1), stats.LogActions[db.ActionBorrowed])
	assert.Equal(t, int64(1), stats.LogActions[db.ActionRequestRejected])
	assert.Equal(t, int64(1), stats.Readers)
}
