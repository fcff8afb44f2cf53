package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Pam-anne/Reader-Aee/internal/catalog"
	"github.com/Pam-anne/Reader-Aee/internal/db"
)

type bookView struct {
	db.Book
	Status string `json:"status"`
}

func toBookView(book db.Book) bookView {
	return bookView{Book: book, Status: book.Status()}
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	books, total, err := s.catalog.ListBooks(r.Context(), page, pageSize,
		q.Get("title"), q.Get("author"), q.Get("genre"), q.Get("status"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list books", nil)
		return
	}

	views := make([]bookView, len(books))
	for i, book := range books {
		views[i] = toBookView(book)
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"books":       views,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": totalPages,
	})
}

type createBookRequest struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn"`
	Publisher     string `json:"publisher"`
	PublishedYear int    `json:"published_year"`
	Genre         string `json:"genre"`
	CoverImageURL string `json:"cover_image_url"`
	Pages         int    `json:"pages"`
	Summary       string `json:"summary"`
	TotalCopies   int    `json:"total_copies"`
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if req.Title == "" || req.Author == "" || req.ISBN == "" {
		writeError(w, http.StatusBadRequest, "Title, author and ISBN are required", nil)
		return
	}

	book := db.Book{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		Publisher:     req.Publisher,
		PublishedYear: req.PublishedYear,
		Genre:         req.Genre,
		CoverImageURL: req.CoverImageURL,
		Pages:         req.Pages,
		Summary:       req.Summary,
		TotalCopies:   req.TotalCopies,
	}
	if err := s.catalog.CreateBook(r.Context(), &book); err != nil {
		if errors.Is(err, catalog.ErrISBNConflict) {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create book", nil)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Book created successfully",
		"book":    toBookView(book),
	})
}

// bookUpdateFields whitelists the JSON keys librarians may edit.
var bookUpdateFields = map[string]bool{
	"title":           true,
	"author":          true,
	"isbn":            true,
	"publisher":       true,
	"published_year":  true,
	"genre":           true,
	"cover_image_url": true,
	"pages":           true,
	"summary":         true,
	"total_copies":    true,
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book id", nil)
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	updates := make(map[string]interface{})
	for key, value := range payload {
		if !bookUpdateFields[key] {
			continue
		}
		// JSON numbers decode as float64; the integer columns need ints.
		if f, ok := value.(float64); ok && (key == "published_year" || key == "pages" || key == "total_copies") {
			value = int(f)
		}
		updates[key] = value
	}
	if len(updates) == 0 {
		writeError(w, http.StatusBadRequest, "No update fields provided", nil)
		return
	}

	book, err := s.catalog.UpdateBook(r.Context(), id, updates)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrBookNotFound):
			writeError(w, http.StatusNotFound, err.Error(), nil)
		case errors.Is(err, catalog.ErrInvalidCopies), errors.Is(err, catalog.ErrISBNConflict):
			writeError(w, http.StatusBadRequest, err.Error(), nil)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update book", nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Book updated successfully",
		"book":    toBookView(*book),
	})
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book id", nil)
		return
	}

	if err := s.catalog.DeleteBook(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, catalog.ErrBookNotFound):
			writeError(w, http.StatusNotFound, err.Error(), nil)
		case errors.Is(err, catalog.ErrBookInUse):
			writeError(w, http.StatusBadRequest, err.Error(), nil)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to delete book", nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Book deleted successfully"})
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	return uint(id), err
}
