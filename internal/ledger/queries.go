package ledger

import (
	"context"

	"github.com/Pam-anne/Reader-Aee/internal/db"
)

// RequestSummary tallies borrow requests by status.
type RequestSummary struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Returned int64 `json:"returned"`
}

// BookInventory is the per-title inventory projection.
type BookInventory struct {
	ID                uint   `json:"id"`
	Title             string `json:"title"`
	Author            string `json:"author"`
	ISBN              string `json:"isbn"`
	Genre             string `json:"genre,omitempty"`
	Publisher         string `json:"publisher,omitempty"`
	TotalQuantity     int    `json:"total_quantity"`
	AvailableQuantity int    `json:"available_quantity"`
	BorrowedQuantity  int    `json:"borrowed_quantity"`
	Status            string `json:"status"`
}

// InventorySummary aggregates the catalog-wide stock counts.
type InventorySummary struct {
	TotalBooks      int `json:"total_books"`
	AvailableBooks  int `json:"available_books"`
	OutOfStockBooks int `json:"out_of_stock_books"`
	TotalCopies     int `json:"total_copies"`
	AvailableCopies int `json:"available_copies"`
	BorrowedCopies  int `json:"borrowed_copies"`
}

// Stats is the aggregate view served to administrators.
type Stats struct {
	Requests   RequestSummary   `json:"requests"`
	Inventory  InventorySummary `json:"inventory"`
	LogActions map[string]int64 `json:"log_actions"`
	Readers    int64            `json:"readers"`
}

// ListPending returns pending requests oldest first, so librarians review
// them in submission order.
func (l *Ledger) ListPending(ctx context.Context) ([]db.BorrowRequest, error) {
	var requests []db.BorrowRequest
	err := l.db.WithContext(ctx).
		Preload("User").Preload("Book").
		Where("status = ?", db.StatusPending).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, persistence(err)
	}
	return requests, nil
}

// ListAll returns every request, most recent first, with a status summary.
func (l *Ledger) ListAll(ctx context.Context) ([]db.BorrowRequest, RequestSummary, error) {
	var requests []db.BorrowRequest
	err := l.db.WithContext(ctx).
		Preload("User").Preload("Book").
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, RequestSummary{}, persistence(err)
	}

	summary, err := l.requestSummary(ctx)
	if err != nil {
		return nil, RequestSummary{}, err
	}
	return requests, summary, nil
}

// ListForReader returns the reader's own requests, most recent first.
func (l *Ledger) ListForReader(ctx context.Context, readerID uint) ([]db.BorrowRequest, error) {
	var requests []db.BorrowRequest
	err := l.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", readerID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, persistence(err)
	}
	return requests, nil
}

// Inventory returns the per-title stock projection ordered by title, plus
// catalog-wide totals.
func (l *Ledger) Inventory(ctx context.Context) ([]BookInventory, InventorySummary, error) {
	var books []db.Book
	err := l.db.WithContext(ctx).Order("title ASC").Find(&books).Error
	if err != nil {
		return nil, InventorySummary{}, persistence(err)
	}

	items := make([]BookInventory, len(books))
	var summary InventorySummary
	for i, book := range books {
		items[i] = BookInventory{
			ID:                book.ID,
			Title:             book.Title,
			Author:            book.Author,
			ISBN:              book.ISBN,
			Genre:             book.Genre,
			Publisher:         book.Publisher,
			TotalQuantity:     book.TotalCopies,
			AvailableQuantity: book.AvailableCopies,
			BorrowedQuantity:  book.TotalCopies - book.AvailableCopies,
			Status:            book.Status(),
		}

		summary.TotalBooks++
		if book.AvailableCopies > 0 {
			summary.AvailableBooks++
		} else {
			summary.OutOfStockBooks++
		}
		summary.TotalCopies += book.TotalCopies
		summary.AvailableCopies += book.AvailableCopies
		summary.BorrowedCopies += book.TotalCopies - book.AvailableCopies
	}

	return items, summary, nil
}

// Stats returns the aggregate counters for the admin dashboard.
func (l *Ledger) Stats(ctx context.Context) (*Stats, error) {
	requests, err := l.requestSummary(ctx)
	if err != nil {
		return nil, err
	}

	_, inventory, err := l.Inventory(ctx)
	if err != nil {
		return nil, err
	}

	type actionCount struct {
		Action string
		Count  int64
	}
	var actions []actionCount
	err = l.db.WithContext(ctx).Model(&db.BookLog{}).
		Select("action, count(*) as count").
		Group("action").
		Scan(&actions).Error
	if err != nil {
		return nil, persistence(err)
	}
	logActions := make(map[string]int64, len(actions))
	for _, a := range actions {
		logActions[a.Action] = a.Count
	}

	var readers int64
	err = l.db.WithContext(ctx).Model(&db.User{}).
		Where("role = ?", db.RoleReader).
		Count(&readers).Error
	if err != nil {
		return nil, persistence(err)
	}

	return &Stats{
		Requests:   requests,
		Inventory:  inventory,
		LogActions: logActions,
		Readers:    readers,
	}, nil
}

func (l *Ledger) requestSummary(ctx context.Context) (RequestSummary, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	err := l.db.WithContext(ctx).Model(&db.BorrowRequest{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return RequestSummary{}, persistence(err)
	}

	var summary RequestSummary
	for _, c := range counts {
		summary.Total += c.Count
		switch c.Status {
		case db.StatusPending:
			summary.Pending = c.Count
		case db.StatusApproved:
			summary.Approved = c.Count
		case db.StatusRejected:
			summary.Rejected = c.Count
		case db.StatusReturned:
			summary.Returned = c.Count
		}
	}
	return summary, nil
}
