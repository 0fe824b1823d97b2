package datastore

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coreybb/locallibrary/models"
)

type BookCopyRepository struct {
	db *sqlx.DB
}

func NewBookCopyRepository(db *sqlx.DB) *BookCopyRepository {
	return &BookCopyRepository{db: db}
}

type bookCopyRow struct {
	models.BookCopy
	TotalRecords int `db:"total_records"`
}

const bookCopySelect = `
	SELECT c.id, c.book_id, b.title AS book_title, c.imprint, c.due_back, c.borrower_id, c.status
	FROM book_copies c
	LEFT JOIN books b ON b.id = c.book_id
`

func copiesDataset() *goqu.SelectDataset {
	return dialect.From(goqu.T("book_copies").As("c")).
		LeftJoin(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("c.book_id")))).
		Select(
			goqu.I("c.id"), goqu.I("c.book_id"), goqu.I("b.title").As("book_title"), goqu.I("c.imprint"),
			goqu.I("c.due_back"), goqu.I("c.borrower_id"), goqu.I("c.status"),
		)
}

// buildOnLoanQuery selects on-loan copies, optionally for one borrower,
// soonest due first. Copies without a due date sort last.
func buildOnLoanQuery(borrowerID *string, page models.Page) (string, []any, error) {
	return copiesDataset().
		SelectAppend(goqu.L("COUNT(*) OVER()").As("total_records")).
		Where(onLoanConditions(borrowerID)...).
		Order(goqu.I("c.due_back").Asc().NullsLast(), goqu.I("c.id").Asc()).
		Limit(page.Limit()).
		Offset(page.Offset()).
		Prepared(true).
		ToSQL()
}

func buildOnLoanCountQuery(borrowerID *string) (string, []any, error) {
	return dialect.From(goqu.T("book_copies").As("c")).
		Select(goqu.COUNT(goqu.Star())).
		Where(onLoanConditions(borrowerID)...).
		Prepared(true).
		ToSQL()
}

func onLoanConditions(borrowerID *string) []exp.Expression {
	conds := []exp.Expression{goqu.I("c.status").Eq(string(models.CopyStatusOnLoan))}
	if borrowerID != nil {
		conds = append(conds, goqu.I("c.borrower_id").Eq(*borrowerID))
	}
	return conds
}

func buildOverdueQuery(today models.Date) (string, []any, error) {
	return copiesDataset().
		Where(
			goqu.I("c.status").Eq(string(models.CopyStatusOnLoan)),
			goqu.I("c.due_back").Lt(today.String()),
			goqu.I("c.borrower_id").IsNotNull(),
		).
		Order(goqu.I("c.borrower_id").Asc(), goqu.I("c.due_back").Asc(), goqu.I("c.id").Asc()).
		Prepared(true).
		ToSQL()
}

// CreateBookCopy assigns a fresh id and persists the copy. A copy without a
// status starts in maintenance.
func (r *BookCopyRepository) CreateBookCopy(ctx context.Context, c *models.BookCopy) error {
	c.ID = uuid.NewString()
	if c.Status == "" {
		c.Status = models.DefaultCopyStatus
	}

	query := `
		INSERT INTO book_copies (id, book_id, imprint, due_back, borrower_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.BookID, c.Imprint, c.DueBack, c.BorrowerID, string(c.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to insert book copy: %w", translateError(err))
	}
	return nil
}

// GetBookCopyByID returns models.ErrNotFound for unknown and malformed ids.
func (r *BookCopyRepository) GetBookCopyByID(ctx context.Context, copyID string) (*models.BookCopy, error) {
	if _, err := uuid.Parse(copyID); err != nil {
		return nil, fmt.Errorf("book copy %q: %w", copyID, models.ErrNotFound)
	}

	var c models.BookCopy
	if err := r.db.GetContext(ctx, &c, bookCopySelect+` WHERE c.id = $1`, copyID); err != nil {
		return nil, fmt.Errorf("failed to get book copy %s: %w", copyID, translateError(err))
	}
	return &c, nil
}

// GetCopiesByBookID lists every copy of a book regardless of status.
func (r *BookCopyRepository) GetCopiesByBookID(ctx context.Context, bookID int64) ([]models.BookCopy, error) {
	copies := []models.BookCopy{}
	query := bookCopySelect + ` WHERE c.book_id = $1 ORDER BY c.due_back NULLS LAST, c.id`
	if err := r.db.SelectContext(ctx, &copies, query, bookID); err != nil {
		return nil, fmt.Errorf("failed to query copies of book %d: %w", bookID, err)
	}
	return copies, nil
}

// ListOnLoanCopies returns one page of on-loan copies and the total count.
// A nil borrowerID lists loans of every borrower.
func (r *BookCopyRepository) ListOnLoanCopies(ctx context.Context, borrowerID *string, page models.Page) ([]models.BookCopy, int, error) {
	if borrowerID != nil {
		if _, err := uuid.Parse(*borrowerID); err != nil {
			return []models.BookCopy{}, 0, nil
		}
	}

	query, args, err := buildOnLoanQuery(borrowerID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build on-loan query: %w", err)
	}

	var rows []bookCopyRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to query on-loan copies: %w", err)
	}

	copies := make([]models.BookCopy, 0, len(rows))
	total := 0
	for _, row := range rows {
		copies = append(copies, row.BookCopy)
		total = row.TotalRecords
	}
	if pastLastPage(len(rows), page) {
		query, args, err := buildOnLoanCountQuery(borrowerID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to build on-loan count query: %w", err)
		}
		if total, err = count(ctx, r.db, query, args...); err != nil {
			return nil, 0, err
		}
	}
	return copies, total, nil
}

// GetOverdueCopies lists on-loan copies due strictly before today, grouped
// by borrower.
func (r *BookCopyRepository) GetOverdueCopies(ctx context.Context, today models.Date) ([]models.BookCopy, error) {
	query, args, err := buildOverdueQuery(today)
	if err != nil {
		return nil, fmt.Errorf("failed to build overdue query: %w", err)
	}

	copies := []models.BookCopy{}
	if err := r.db.SelectContext(ctx, &copies, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query overdue copies: %w", err)
	}
	return copies, nil
}

func (r *BookCopyRepository) UpdateBookCopyDueBack(ctx context.Context, copyID string, dueBack models.Date) error {
	result, err := r.db.ExecContext(ctx, `UPDATE book_copies SET due_back = $1 WHERE id = $2`, dueBack, copyID)
	if err != nil {
		return fmt.Errorf("failed to update due date of book copy %s: %w", copyID, err)
	}
	return expectAffected(result, fmt.Sprintf("book copy %s", copyID))
}

// UpdateBookCopyLoanState writes status, borrower, and due date together.
func (r *BookCopyRepository) UpdateBookCopyLoanState(ctx context.Context, c *models.BookCopy) error {
	query := `
		UPDATE book_copies
		SET status = $1, borrower_id = $2, due_back = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, string(c.Status), c.BorrowerID, c.DueBack, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update loan state of book copy %s: %w", c.ID, translateError(err))
	}
	return expectAffected(result, fmt.Sprintf("book copy %s", c.ID))
}

func (r *BookCopyRepository) DeleteBookCopy(ctx context.Context, copyID string) error {
	if _, err := uuid.Parse(copyID); err != nil {
		return fmt.Errorf("book copy %q: %w", copyID, models.ErrNotFound)
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM book_copies WHERE id = $1`, copyID)
	if err != nil {
		return fmt.Errorf("failed to delete book copy %s: %w", copyID, err)
	}
	return expectAffected(result, fmt.Sprintf("book copy %s", copyID))
}

func (r *BookCopyRepository) CountBookCopies(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM book_copies`)
}

func (r *BookCopyRepository) CountBookCopiesByStatus(ctx context.Context, status models.CopyStatus) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM book_copies WHERE status = $1`, string(status))
}
