package db

import (
	"gorm.io/gorm"
)

// RunMigrations runs all database migrations
func RunMigrations(db *DB) error {
	if err := db.AutoMigrate(&User{}, &Book{}, &BorrowRequest{}, &BookLog{}); err != nil {
		return err
	}

	return createIndexes(db.DB)
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// A reader may hold at most one pending request per book. The
		// application check remains as a fast path; this index closes the
		// check-then-insert race.
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_pending_request
			ON borrow_requests(user_id, book_id) WHERE status = 'pending'`,

		// Librarian review queue scans pending requests oldest-first.
		`CREATE INDEX IF NOT EXISTS idx_requests_status_created
			ON borrow_requests(status, created_at)`,
	}

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			return err
		}
	}

	return nil
}
