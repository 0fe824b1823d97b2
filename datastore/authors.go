package datastore

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/coreybb/locallibrary/models"
)

type AuthorRepository struct {
	db *sqlx.DB
}

func NewAuthorRepository(db *sqlx.DB) *AuthorRepository {
	return &AuthorRepository{db: db}
}

type authorRow struct {
	models.Author
	TotalRecords int `db:"total_records"`
}

const authorColumns = `id, first_name, last_name, date_of_birth, date_of_death`

func buildAuthorsQuery(page models.Page) (string, []any, error) {
	return dialect.From("authors").
		Select("id", "first_name", "last_name", "date_of_birth", "date_of_death",
			goqu.L("COUNT(*) OVER()").As("total_records")).
		Order(goqu.C("last_name").Asc(), goqu.C("first_name").Asc(), goqu.C("id").Asc()).
		Limit(page.Limit()).
		Offset(page.Offset()).
		Prepared(true).
		ToSQL()
}

// GetAuthors returns one page of authors ordered by last then first name,
// plus the total number of authors.
func (r *AuthorRepository) GetAuthors(ctx context.Context, page models.Page) ([]models.Author, int, error) {
	query, args, err := buildAuthorsQuery(page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build authors query: %w", err)
	}

	var rows []authorRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to query authors: %w", err)
	}

	authors := make([]models.Author, 0, len(rows))
	total := 0
	for _, row := range rows {
		authors = append(authors, row.Author)
		total = row.TotalRecords
	}
	if pastLastPage(len(rows), page) {
		if total, err = r.CountAuthors(ctx); err != nil {
			return nil, 0, err
		}
	}
	return authors, total, nil
}

func (r *AuthorRepository) GetAuthorByID(ctx context.Context, authorID int64) (*models.Author, error) {
	var author models.Author
	query := `SELECT ` + authorColumns + ` FROM authors WHERE id = $1`
	if err := r.db.GetContext(ctx, &author, query, authorID); err != nil {
		return nil, fmt.Errorf("failed to get author %d: %w", authorID, translateError(err))
	}
	return &author, nil
}

func (r *AuthorRepository) CreateAuthor(ctx context.Context, author *models.Author) error {
	query := `
		INSERT INTO authors (first_name, last_name, date_of_birth, date_of_death)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query,
		author.FirstName, author.LastName, author.DateOfBirth, author.DateOfDeath,
	).Scan(&author.ID)
	if err != nil {
		return fmt.Errorf("failed to insert author: %w", translateError(err))
	}
	return nil
}

func (r *AuthorRepository) UpdateAuthor(ctx context.Context, author *models.Author) error {
	query := `
		UPDATE authors
		SET first_name = $1,
		    last_name = $2,
		    date_of_birth = $3,
		    date_of_death = $4
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		author.FirstName, author.LastName, author.DateOfBirth, author.DateOfDeath, author.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update author %d: %w", author.ID, translateError(err))
	}
	return expectAffected(result, fmt.Sprintf("author %d", author.ID))
}

// DeleteAuthor removes the author and its book links. The books stay in the
// catalog without that author.
func (r *AuthorRepository) DeleteAuthor(ctx context.Context, authorID int64) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM book_authors WHERE author_id = $1`, authorID); err != nil {
			return fmt.Errorf("failed to unlink author %d from books: %w", authorID, err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM authors WHERE id = $1`, authorID)
		if err != nil {
			return fmt.Errorf("failed to delete author %d: %w", authorID, err)
		}
		return expectAffected(result, fmt.Sprintf("author %d", authorID))
	})
}

func (r *AuthorRepository) CountAuthors(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM authors`)
}
