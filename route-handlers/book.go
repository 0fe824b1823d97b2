package routehandlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreybb/locallibrary/models"
	"github.com/coreybb/locallibrary/validator"
	"github.com/coreybb/locallibrary/webutil"
)

type BookStore interface {
	GetBooks(ctx context.Context, filter models.BookFilter, page models.Page) ([]models.Book, int, error)
	GetBookByID(ctx context.Context, bookID int64) (*models.Book, error)
	CreateBook(ctx context.Context, book *models.Book, authorIDs, genreIDs []int64) error
	UpdateBook(ctx context.Context, book *models.Book, authorIDs, genreIDs []int64) error
	DeleteBook(ctx context.Context, bookID int64) error
}

// BookCopyLister lists the copies of a book.
type BookCopyLister interface {
	GetCopiesByBookID(ctx context.Context, bookID int64) ([]models.BookCopy, error)
}

type BookHandler struct {
	Repo   BookStore
	Copies BookCopyLister
}

func NewBookHandler(repo BookStore, copies BookCopyLister) *BookHandler {
	return &BookHandler{Repo: repo, Copies: copies}
}

type bookRequest struct {
	Title      string  `json:"title"`
	Summary    string  `json:"summary"`
	ISBN       string  `json:"isbn"`
	LanguageID *int64  `json:"language_id"`
	AuthorIDs  []int64 `json:"author_ids"`
	GenreIDs   []int64 `json:"genre_ids"`
}

func (req bookRequest) toModel() (models.Book, error) {
	book := models.Book{
		Title:      strings.TrimSpace(req.Title),
		Summary:    strings.TrimSpace(req.Summary),
		ISBN:       strings.TrimSpace(req.ISBN),
		LanguageID: req.LanguageID,
	}

	v := validator.New()
	v.Check(validator.NotBlank(book.Title), "title", "must be provided")
	v.Check(validator.MaxChars(book.Title, maxTitleChars), "title", fmt.Sprintf("must not be more than %d characters", maxTitleChars))
	v.Check(validator.NotBlank(book.Summary), "summary", "must be provided")
	v.Check(validator.MaxChars(book.Summary, maxSummaryChars), "summary", fmt.Sprintf("must not be more than %d characters", maxSummaryChars))
	v.Check(validator.ExactChars(book.ISBN, isbnChars), "isbn", fmt.Sprintf("must be exactly %d characters", isbnChars))
	v.Check(validator.Unique(req.AuthorIDs), "author_ids", "must not contain duplicates")
	v.Check(validator.Unique(req.GenreIDs), "genre_ids", "must not contain duplicates")
	return book, v.Err()
}

type bookResponse struct {
	models.Book
	DisplayAuthor string `json:"display_author"`
	DisplayGenre  string `json:"display_genre"`
	AllAuthors    string `json:"all_authors"`
}

type bookDetailResponse struct {
	bookResponse
	Copies []models.BookCopy `json:"copies"`
}

func newBookResponse(b models.Book) bookResponse {
	return bookResponse{
		Book:          b,
		DisplayAuthor: b.DisplayAuthor(),
		DisplayGenre:  b.DisplayGenre(),
		AllAuthors:    b.AllAuthors(),
	}
}

func newBookResponses(books []models.Book) []bookResponse {
	out := make([]bookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, newBookResponse(b))
	}
	return out
}

// HandleGetBooks lists books, optionally filtered by ?genre= and ?title=.
func (h *BookHandler) HandleGetBooks(w http.ResponseWriter, r *http.Request) error {
	page := webutil.ReadPage(r)
	filter := models.BookFilter{
		Genre: r.URL.Query().Get("genre"),
		Title: r.URL.Query().Get("title"),
	}

	books, total, err := h.Repo.GetBooks(r.Context(), filter, page)
	if err != nil {
		return fmt.Errorf("failed to retrieve books: %w", err)
	}
	webutil.RespondWithList(w, newBookResponses(books), models.CalculateMetadata(total, page))
	return nil
}

// HandleGetBook returns the book with every copy of it.
func (h *BookHandler) HandleGetBook(w http.ResponseWriter, r *http.Request) error {
	bookID, err := webutil.ParseInt64Param(r, paramID)
	if err != nil {
		return err
	}

	book, err := h.Repo.GetBookByID(r.Context(), bookID)
	if err != nil {
		return fmt.Errorf("failed to retrieve book %d: %w", bookID, err)
	}
	copies, err := h.Copies.GetCopiesByBookID(r.Context(), bookID)
	if err != nil {
		return fmt.Errorf("failed to retrieve copies of book %d: %w", bookID, err)
	}
	if copies == nil {
		copies = []models.BookCopy{}
	}

	webutil.RespondWithJSON(w, http.StatusOK, bookDetailResponse{
		bookResponse: newBookResponse(*book),
		Copies:       copies,
	})
	return nil
}

func (h *BookHandler) HandleCreateBook(w http.ResponseWriter, r *http.Request) error {
	var req bookRequest
	if err := webutil.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	book, err := req.toModel()
	if err != nil {
		return err
	}

	if err := h.Repo.CreateBook(r.Context(), &book, req.AuthorIDs, req.GenreIDs); err != nil {
		return fmt.Errorf("failed to create book %q: %w", book.Title, err)
	}
	webutil.RespondWithJSON(w, http.StatusCreated, newBookResponse(book))
	return nil
}

func (h *BookHandler) HandleUpdateBook(w http.ResponseWriter, r *http.Request) error {
	bookID, err := webutil.ParseInt64Param(r, paramID)
	if err != nil {
		return err
	}

	var req bookRequest
	if err := webutil.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	book, err := req.toModel()
	if err != nil {
		return err
	}
	book.ID = bookID

	if err := h.Repo.UpdateBook(r.Context(), &book, req.AuthorIDs, req.GenreIDs); err != nil {
		return fmt.Errorf("failed to update book %d: %w", bookID, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, newBookResponse(book))
	return nil
}

// HandleDeleteBook removes the book. Its copies remain with no book.
func (h *BookHandler) HandleDeleteBook(w http.ResponseWriter, r *http.Request) error {
	bookID, err := webutil.ParseInt64Param(r, paramID)
	if err != nil {
		return err
	}
	if err := h.Repo.DeleteBook(r.Context(), bookID); err != nil {
		return fmt.Errorf("failed to delete book %d: %w", bookID, err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
