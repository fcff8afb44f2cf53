package db

import (
	"time"
)

// User roles.
const (
	RoleReader    = "reader"
	RoleLibrarian = "librarian"
	RoleAdmin     = "admin"
)

// BorrowRequest statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusReturned = "returned"
)

// BookLog actions.
const (
	ActionBorrowed        = "borrowed"
	ActionReturned        = "returned"
	ActionRequestRejected = "request_rejected"
	ActionOverdue         = "overdue"
	ActionLost            = "lost"
	ActionDamaged         = "damaged"
)

// Book statuses derived from availability.
const (
	BookAvailable  = "available"
	BookOutOfStock = "out_of_stock"
)

// User represents a library member or staff account.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         string    `gorm:"type:varchar(20);not null;index" json:"role"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// Book represents one title in the catalog. AvailableCopies is mutated only
// by the ledger's approve/return transactions.
type Book struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"type:varchar(255);not null;index:idx_books_title" json:"title"`
	Author          string    `gorm:"type:varchar(255);not null;index:idx_books_author" json:"author"`
	ISBN            string    `gorm:"type:varchar(20);not null;uniqueIndex" json:"isbn"`
	Publisher       string    `gorm:"type:varchar(255)" json:"publisher,omitempty"`
	PublishedYear   int       `json:"published_year,omitempty"`
	Genre           string    `gorm:"type:varchar(100);index:idx_books_genre" json:"genre,omitempty"`
	CoverImageURL   string    `gorm:"type:varchar(500)" json:"cover_image_url,omitempty"`
	Pages           int       `json:"pages,omitempty"`
	Summary         string    `gorm:"type:text" json:"summary,omitempty"`
	TotalCopies     int       `gorm:"not null;default:1" json:"total_copies"`
	AvailableCopies int       `gorm:"not null;default:1" json:"available_copies"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for Book model
func (Book) TableName() string {
	return "books"
}

// Status derives the catalog status from the availability counter.
func (b *Book) Status() string {
	if b.AvailableCopies > 0 {
		return BookAvailable
	}
	return BookOutOfStock
}

// BorrowRequest represents one reader's request to borrow one book.
// Exactly one of ApprovedBy/RejectedBy is set once status leaves pending.
type BorrowRequest struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index:idx_requests_user_status" json:"user_id"`
	User           User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BookID         uint       `gorm:"not null;index:idx_requests_book_status" json:"book_id"`
	Book           Book       `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Status         string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Notes          string     `gorm:"type:text" json:"notes,omitempty"`
	LibrarianNotes string     `gorm:"type:text" json:"librarian_notes,omitempty"`
	ApprovedBy     *uint      `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	RejectedBy     *uint      `json:"rejected_by,omitempty"`
	RejectedAt     *time.Time `json:"rejected_at,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	ReturnDate     *time.Time `json:"return_date,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for BorrowRequest model
func (BorrowRequest) TableName() string {
	return "borrow_requests"
}

// Active reports whether the request still counts against the reader's
// borrowing limit.
func (r *BorrowRequest) Active() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

// BookLog is an append-only audit record of an inventory-affecting event.
type BookLog struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Action          string    `gorm:"type:varchar(30);not null;index" json:"action"`
	BookID          uint      `gorm:"not null;index:idx_logs_book_date" json:"book_id"`
	UserID          uint      `gorm:"not null;index:idx_logs_user_date" json:"user_id"`
	LibrarianID     *uint     `json:"librarian_id,omitempty"`
	BorrowRequestID *uint     `json:"borrow_request_id,omitempty"`
	Notes           string    `gorm:"type:text" json:"notes,omitempty"`
	ActionDate      time.Time `gorm:"not null;index:idx_logs_book_date;index:idx_logs_user_date" json:"action_date"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for BookLog model
func (BookLog) TableName() string {
	return "book_logs"
}
