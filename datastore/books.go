package datastore

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/coreybb/locallibrary/models"
)

type BookRepository struct {
	db *sqlx.DB
}

func NewBookRepository(db *sqlx.DB) *BookRepository {
	return &BookRepository{db: db}
}

type bookRow struct {
	models.Book
	TotalRecords int `db:"total_records"`
}

type bookAuthorLink struct {
	BookID int64 `db:"book_id"`
	models.Author
}

type bookGenreLink struct {
	BookID int64 `db:"book_id"`
	models.Genre
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const genreExistsClause = `EXISTS (
	SELECT 1 FROM book_genres bg
	JOIN genres g ON g.id = bg.genre_id
	WHERE bg.book_id = "b"."id" AND LOWER(g.name) = LOWER(?)
)`

func buildBooksQuery(filter models.BookFilter, page models.Page) (string, []any, error) {
	return dialect.From(goqu.T("books").As("b")).
		Select(
			goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.summary"), goqu.I("b.isbn"), goqu.I("b.language_id"),
			goqu.L("COUNT(*) OVER()").As("total_records"),
		).
		Where(bookFilterConditions(filter)...).
		Order(goqu.I("b.title").Asc(), goqu.I("b.id").Asc()).
		Limit(page.Limit()).
		Offset(page.Offset()).
		Prepared(true).
		ToSQL()
}

func buildBooksCountQuery(filter models.BookFilter) (string, []any, error) {
	return dialect.From(goqu.T("books").As("b")).
		Select(goqu.COUNT(goqu.Star())).
		Where(bookFilterConditions(filter)...).
		Prepared(true).
		ToSQL()
}

func bookFilterConditions(filter models.BookFilter) []exp.Expression {
	var conds []exp.Expression
	if genre := strings.TrimSpace(filter.Genre); genre != "" {
		conds = append(conds, goqu.L(genreExistsClause, genre))
	}
	if title := strings.TrimSpace(filter.Title); title != "" {
		conds = append(conds, goqu.I("b.title").ILike("%"+likeEscaper.Replace(title)+"%"))
	}
	return conds
}

// GetBooks returns one page of books matching filter, with authors and
// genres attached, plus the total number of matches.
func (r *BookRepository) GetBooks(ctx context.Context, filter models.BookFilter, page models.Page) ([]models.Book, int, error) {
	query, args, err := buildBooksQuery(filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build books query: %w", err)
	}

	var rows []bookRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to query books: %w", err)
	}

	books := make([]models.Book, 0, len(rows))
	total := 0
	for _, row := range rows {
		books = append(books, row.Book)
		total = row.TotalRecords
	}
	if pastLastPage(len(rows), page) {
		query, args, err := buildBooksCountQuery(filter)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to build books count query: %w", err)
		}
		if total, err = count(ctx, r.db, query, args...); err != nil {
			return nil, 0, err
		}
	}
	if err := r.attachRelations(ctx, books); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *BookRepository) GetBookByID(ctx context.Context, bookID int64) (*models.Book, error) {
	var book models.Book
	query := `SELECT id, title, summary, isbn, language_id FROM books WHERE id = $1`
	if err := r.db.GetContext(ctx, &book, query, bookID); err != nil {
		return nil, fmt.Errorf("failed to get book %d: %w", bookID, translateError(err))
	}

	books := []models.Book{book}
	if err := r.attachRelations(ctx, books); err != nil {
		return nil, err
	}
	return &books[0], nil
}

// GetBooksByAuthorID lists every book the author is linked to, by title.
func (r *BookRepository) GetBooksByAuthorID(ctx context.Context, authorID int64) ([]models.Book, error) {
	query := `
		SELECT b.id, b.title, b.summary, b.isbn, b.language_id
		FROM books b
		JOIN book_authors ba ON ba.book_id = b.id
		WHERE ba.author_id = $1
		ORDER BY b.title, b.id
	`
	books := []models.Book{}
	if err := r.db.SelectContext(ctx, &books, query, authorID); err != nil {
		return nil, fmt.Errorf("failed to query books for author %d: %w", authorID, err)
	}
	if err := r.attachRelations(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *BookRepository) attachRelations(ctx context.Context, books []models.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]int64, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}

	var authorLinks []bookAuthorLink
	authorQuery := `
		SELECT ba.book_id, a.id, a.first_name, a.last_name, a.date_of_birth, a.date_of_death
		FROM book_authors ba
		JOIN authors a ON a.id = ba.author_id
		WHERE ba.book_id = ANY($1)
		ORDER BY a.last_name, a.first_name, a.id
	`
	if err := r.db.SelectContext(ctx, &authorLinks, authorQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to query book authors: %w", err)
	}

	var genreLinks []bookGenreLink
	genreQuery := `
		SELECT bg.book_id, g.id, g.name
		FROM book_genres bg
		JOIN genres g ON g.id = bg.genre_id
		WHERE bg.book_id = ANY($1)
		ORDER BY g.name, g.id
	`
	if err := r.db.SelectContext(ctx, &genreLinks, genreQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to query book genres: %w", err)
	}

	authorsByBook := make(map[int64][]models.Author)
	for _, link := range authorLinks {
		authorsByBook[link.BookID] = append(authorsByBook[link.BookID], link.Author)
	}
	genresByBook := make(map[int64][]models.Genre)
	for _, link := range genreLinks {
		genresByBook[link.BookID] = append(genresByBook[link.BookID], link.Genre)
	}

	for i := range books {
		books[i].Authors = authorsByBook[books[i].ID]
		if books[i].Authors == nil {
			books[i].Authors = []models.Author{}
		}
		books[i].Genres = genresByBook[books[i].ID]
		if books[i].Genres == nil {
			books[i].Genres = []models.Genre{}
		}
	}
	return nil
}

// CreateBook inserts the book with its author and genre links in one
// transaction, then reloads it so the relations are populated.
func (r *BookRepository) CreateBook(ctx context.Context, book *models.Book, authorIDs, genreIDs []int64) error {
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO books (title, summary, isbn, language_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		if err := tx.QueryRowxContext(ctx, query,
			book.Title, book.Summary, book.ISBN, book.LanguageID,
		).Scan(&book.ID); err != nil {
			return fmt.Errorf("failed to insert book: %w", translateError(err))
		}
		return linkBook(ctx, tx, book.ID, authorIDs, genreIDs)
	})
	if err != nil {
		return err
	}
	return r.reload(ctx, book)
}

// UpdateBook replaces the book's fields and its author and genre links.
func (r *BookRepository) UpdateBook(ctx context.Context, book *models.Book, authorIDs, genreIDs []int64) error {
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE books
			SET title = $1, summary = $2, isbn = $3, language_id = $4
			WHERE id = $5
		`
		result, err := tx.ExecContext(ctx, query,
			book.Title, book.Summary, book.ISBN, book.LanguageID, book.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update book %d: %w", book.ID, translateError(err))
		}
		if err := expectAffected(result, fmt.Sprintf("book %d", book.ID)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM book_authors WHERE book_id = $1`, book.ID); err != nil {
			return fmt.Errorf("failed to clear authors of book %d: %w", book.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM book_genres WHERE book_id = $1`, book.ID); err != nil {
			return fmt.Errorf("failed to clear genres of book %d: %w", book.ID, err)
		}
		return linkBook(ctx, tx, book.ID, authorIDs, genreIDs)
	})
	if err != nil {
		return err
	}
	return r.reload(ctx, book)
}

func (r *BookRepository) reload(ctx context.Context, book *models.Book) error {
	loaded, err := r.GetBookByID(ctx, book.ID)
	if err != nil {
		return err
	}
	*book = *loaded
	return nil
}

func linkBook(ctx context.Context, tx *sqlx.Tx, bookID int64, authorIDs, genreIDs []int64) error {
	if len(authorIDs) > 0 {
		query := `INSERT INTO book_authors (book_id, author_id) SELECT $1, UNNEST($2::BIGINT[])`
		if _, err := tx.ExecContext(ctx, query, bookID, pq.Array(authorIDs)); err != nil {
			return fmt.Errorf("failed to link authors to book %d: %w", bookID, translateError(err))
		}
	}
	if len(genreIDs) > 0 {
		query := `INSERT INTO book_genres (book_id, genre_id) SELECT $1, UNNEST($2::BIGINT[])`
		if _, err := tx.ExecContext(ctx, query, bookID, pq.Array(genreIDs)); err != nil {
			return fmt.Errorf("failed to link genres to book %d: %w", bookID, translateError(err))
		}
	}
	return nil
}

// DeleteBook removes the book. Its copies stay in the catalog with no book.
func (r *BookRepository) DeleteBook(ctx context.Context, bookID int64) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE book_copies SET book_id = NULL WHERE book_id = $1`, bookID); err != nil {
			return fmt.Errorf("failed to detach copies from book %d: %w", bookID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM book_authors WHERE book_id = $1`, bookID); err != nil {
			return fmt.Errorf("failed to unlink authors from book %d: %w", bookID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM book_genres WHERE book_id = $1`, bookID); err != nil {
			return fmt.Errorf("failed to unlink genres from book %d: %w", bookID, err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, bookID)
		if err != nil {
			return fmt.Errorf("failed to delete book %d: %w", bookID, err)
		}
		return expectAffected(result, fmt.Sprintf("book %d", bookID))
	})
}

func (r *BookRepository) CountBooks(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM books`)
}

// CountBooksByGenreName counts books linked to a genre with exactly this name.
func (r *BookRepository) CountBooksByGenreName(ctx context.Context, name string) (int, error) {
	query := `
		SELECT COUNT(DISTINCT bg.book_id)
		FROM book_genres bg
		JOIN genres g ON g.id = bg.genre_id
		WHERE g.name = $1
	`
	return count(ctx, r.db, query, name)
}
