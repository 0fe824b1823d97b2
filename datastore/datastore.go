// Package datastore is the Postgres-backed catalog store.
package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the postgres dialect
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/coreybb/locallibrary/models"
)

var dialect = goqu.Dialect("postgres")

// constraintFields maps Postgres constraint names to the request field a
// violation should be reported against.
var constraintFields = map[string]string{
	"books_language_id_fkey":       "language_id",
	"book_authors_author_id_fkey":  "authors",
	"book_genres_genre_id_fkey":    "genres",
	"book_copies_book_id_fkey":     "book_id",
	"book_copies_borrower_id_fkey": "borrower_id",
	"users_username_key":           "username",
}

// translateError converts driver errors into domain errors. Anything it does
// not recognise is returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", models.ErrNotFound, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		field, ok := constraintFields[pqErr.Constraint]
		if !ok {
			field = pqErr.Column
		}
		switch pqErr.Code.Name() {
		case "foreign_key_violation":
			return models.NewValidationError(field, "references a record that does not exist")
		case "unique_violation":
			return models.NewValidationError(field, "is already taken")
		}
	}
	return err
}

// withTx runs fn inside a transaction, committing only if fn succeeds.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// expectAffected returns models.ErrNotFound when result touched no rows.
func expectAffected(result sql.Result, what string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for %s: %w", what, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return nil
}

// pastLastPage reports whether an empty result came from a page beyond the
// end, where the windowed total is unavailable and must be counted.
func pastLastPage(rows int, page models.Page) bool {
	return rows == 0 && page.Number > 1
}

func count(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}
