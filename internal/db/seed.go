package db

import (
	"golang.org/x/crypto/bcrypt"
)

// SeedDemoData loads the demo accounts and a starter catalog. It is a no-op
// when users already exist.
func SeedDemoData(db *DB) error {
	var users int64
	if err := db.Model(&User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	accounts := []User{
		{Name: "Aee Reader", Email: "aee@gmail.com", PasswordHash: string(hash), Role: RoleReader},
		{Name: "Bee Librarian", Email: "bee@gmail.com", PasswordHash: string(hash), Role: RoleLibrarian},
		{Name: "Cee Administrator", Email: "cee@gmail.com", PasswordHash: string(hash), Role: RoleAdmin},
	}
	if err := db.Create(&accounts).Error; err != nil {
		return err
	}

	books := []Book{
		{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", ISBN: "9780743273565", Publisher: "Scribner", PublishedYear: 1925, Genre: "Fiction", Pages: 180, Summary: "A classic American novel about the Jazz Age.", TotalCopies: 5, AvailableCopies: 5},
		{Title: "To Kill a Mockingbird", Author: "Harper Lee", ISBN: "9780061120084", Publisher: "J.B. Lippincott & Co.", PublishedYear: 1960, Genre: "Fiction", Pages: 376, Summary: "A story of racial injustice and childhood innocence.", TotalCopies: 5, AvailableCopies: 5},
		{Title: "1984", Author: "George Orwell", ISBN: "9780451524935", Publisher: "Secker & Warburg", PublishedYear: 1949, Genre: "Dystopian Fiction", Pages: 328, Summary: "A dystopian social science fiction novel.", TotalCopies: 5, AvailableCopies: 5},
		{Title: "Pride and Prejudice", Author: "Jane Austen", ISBN: "9780141439518", Publisher: "T. Egerton", PublishedYear: 1923, Genre: "Romance", Pages: 432, Summary: "A romantic novel of manners.", TotalCopies: 5, AvailableCopies: 5},
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", ISBN: "9780547928227", Publisher: "George Allen & Unwin", PublishedYear: 1937, Genre: "Fantasy", Pages: 310, Summary: "A fantasy adventure about a hobbit named Bilbo.", TotalCopies: 5, AvailableCopies: 5},
		{Title: "Fahrenheit 451", Author: "Ray Bradbury", ISBN: "9781451673319", Publisher: "Ballantine Books", PublishedYear: 1953, Genre: "Science Fiction", Pages: 256, Summary: "A dystopian novel about censorship.", TotalCopies: 5, AvailableCopies: 5},
		{Title: "The Alchemist", Author: "Paulo Coelho", ISBN: "9780062315007", Publisher: "HarperOne", PublishedYear: 1988, Genre: "Adventure Fiction", Pages: 163, Summary: "A philosophical story about following your dreams.", TotalCopies: 5, AvailableCopies: 5},
		{Title: "The Book Thief", Author: "Markus Zusak", ISBN: "9780375842207", Publisher: "Knopf Books", PublishedYear: 2005, Genre: "Historical Fiction", Pages: 552, Summary: "A story narrated by Death during WWII.", TotalCopies: 5, AvailableCopies: 5},
	}
	return db.Create(&books).Error
}
