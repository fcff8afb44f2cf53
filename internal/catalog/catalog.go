package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Pam-anne/Reader-Aee/internal/db"
)

var (
	// ErrBookNotFound is returned when a book is not found
	ErrBookNotFound = errors.New("book not found")

	// ErrISBNConflict is returned when another book already carries the ISBN
	ErrISBNConflict = errors.New("a book with this ISBN already exists")

	// ErrBookInUse is returned when deleting a book that active requests reference
	ErrBookInUse = errors.New("book has active borrow requests")

	// ErrInvalidCopies is returned when copy counts would violate 0 <= available <= total
	ErrInvalidCopies = errors.New("invalid copy counts")
)

// Catalog handles book catalog management. It never touches
// Book.AvailableCopies except to keep it consistent with TotalCopies edits;
// the borrow flow itself belongs to the ledger.
type Catalog struct {
	db  *db.DB
	log *zap.Logger
}

// New creates a new catalog over the given database.
func New(database *db.DB, log *zap.Logger) *Catalog {
	return &Catalog{db: database, log: log}
}

// ListBooks returns a paginated list of books with optional filters.
// Title, author and genre match as substrings; status filters on the
// derived availability status.
func (c *Catalog) ListBooks(ctx context.Context, page, pageSize int, title, author, genre, status string) ([]db.Book, int64, error) {
	query := c.db.WithContext(ctx).Model(&db.Book{})

	if title != "" {
		query = query.Where("title LIKE ?", "%"+title+"%")
	}
	if author != "" {
		query = query.Where("author LIKE ?", "%"+author+"%")
	}
	if genre != "" {
		query = query.Where("genre LIKE ?", "%"+genre+"%")
	}
	switch status {
	case db.BookAvailable:
		query = query.Where("available_copies > 0")
	case db.BookOutOfStock:
		query = query.Where("available_copies = 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.log.Error("Failed to count books", zap.Error(err))
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	var books []db.Book
	if err := query.Offset(offset).Limit(pageSize).Order("title ASC").Find(&books).Error; err != nil {
		c.log.Error("Failed to list books", zap.Error(err))
		return nil, 0, err
	}

	return books, total, nil
}

// GetBook retrieves a book by ID.
func (c *Catalog) GetBook(ctx context.Context, id uint) (*db.Book, error) {
	var book db.Book
	err := c.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		c.log.Error("Failed to get book", zap.Uint("book_id", id), zap.Error(err))
		return nil, err
	}
	return &book, nil
}

// CreateBook adds a new title to the catalog. A zero TotalCopies defaults to
// one; AvailableCopies starts equal to TotalCopies.
func (c *Catalog) CreateBook(ctx context.Context, book *db.Book) error {
	if book.TotalCopies <= 0 {
		book.TotalCopies = 1
	}
	book.AvailableCopies = book.TotalCopies

	if err := c.db.WithContext(ctx).Create(book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrISBNConflict
		}
		c.log.Error("Failed to create book", zap.String("isbn", book.ISBN), zap.Error(err))
		return err
	}

	c.log.Info("Book created", zap.Uint("book_id", book.ID), zap.String("title", book.Title))
	return nil
}

// UpdateBook applies the given field updates to a book. Changing
// total_copies shifts available_copies by the same delta so the borrowed
// count is preserved; an edit that would push availability negative fails.
func (c *Catalog) UpdateBook(ctx context.Context, id uint, updates map[string]interface{}) (*db.Book, error) {
	var updated db.Book
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book db.Book
		if err := tx.First(&book, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		if raw, ok := updates["total_copies"]; ok {
			total, ok := raw.(int)
			if !ok || total <= 0 {
				return ErrInvalidCopies
			}
			delta := total - book.TotalCopies
			if book.AvailableCopies+delta < 0 {
				return ErrInvalidCopies
			}
			updates["available_copies"] = book.AvailableCopies + delta
		}

		if err := tx.Model(&db.Book{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrISBNConflict
			}
			return err
		}

		return tx.First(&updated, id).Error
	})
	if err != nil {
		if !errors.Is(err, ErrBookNotFound) && !errors.Is(err, ErrInvalidCopies) && !errors.Is(err, ErrISBNConflict) {
			c.log.Error("Failed to update book", zap.Uint("book_id", id), zap.Error(err))
		}
		return nil, err
	}

	c.log.Info("Book updated", zap.Uint("book_id", id))
	return &updated, nil
}

// DeleteBook removes a title from the catalog. Deletion is refused while
// pending or approved requests still reference the book.
func (c *Catalog) DeleteBook(ctx context.Context, id uint) error {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&db.BorrowRequest{}).
			Where("book_id = ? AND status IN ?", id, []string{db.StatusPending, db.StatusApproved}).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrBookInUse
		}

		res := tx.Delete(&db.Book{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBookNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrBookNotFound) && !errors.Is(err, ErrBookInUse) {
			c.log.Error("Failed to delete book", zap.Uint("book_id", id), zap.Error(err))
		}
		return err
	}

	c.log.Info("Book deleted", zap.Uint("book_id", id))
	return nil
}
