package datastore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/coreybb/locallibrary/models"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userRow struct {
	ID           string         `db:"id"`
	CreatedAt    time.Time      `db:"created_at"`
	Username     string         `db:"username"`
	Email        *string        `db:"email"`
	PasswordHash string         `db:"password_hash"`
	Capabilities pq.StringArray `db:"capabilities"`
}

func (u userRow) toModel() models.User {
	caps := []string(u.Capabilities)
	if caps == nil {
		caps = []string{}
	}
	return models.User{
		ID:           u.ID,
		CreatedAt:    u.CreatedAt,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Capabilities: caps,
	}
}

const userColumns = `id, created_at, username, email, password_hash, capabilities`

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = uuid.NewString()
	if user.Capabilities == nil {
		user.Capabilities = []string{}
	}

	query := `
		INSERT INTO users (id, username, email, password_hash, capabilities)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, pq.Array(user.Capabilities),
	).Scan(&user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", translateError(err))
	}
	return nil
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	if err := r.db.GetContext(ctx, &row, query, username); err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, translateError(err))
	}
	user := row.toModel()
	return &user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("user %q: %w", userID, models.ErrNotFound)
	}
	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, translateError(err))
	}
	user := row.toModel()
	return &user, nil
}

// GetUsersByIDs returns the users that exist among ids, keyed by id.
func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	users := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var rows []userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1::UUID[])`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	for _, row := range rows {
		users[row.ID] = row.toModel()
	}
	return users, nil
}

// GrantCapability adds capability to the user unless it is already held.
func (r *UserRepository) GrantCapability(ctx context.Context, userID, capability string) error {
	query := `
		UPDATE users
		SET capabilities = array_append(capabilities, $1)
		WHERE id = $2 AND NOT ($1 = ANY(capabilities))
	`
	if _, err := r.db.ExecContext(ctx, query, capability, userID); err != nil {
		return fmt.Errorf("failed to grant %s to user %s: %w", capability, userID, err)
	}
	return nil
}

// DeleteUser removes the user. Copies they hold keep their status but lose
// the borrower reference.
func (r *UserRepository) DeleteUser(ctx context.Context, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return fmt.Errorf("user %q: %w", userID, models.ErrNotFound)
	}
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE book_copies SET borrower_id = NULL WHERE borrower_id = $1`, userID); err != nil {
			return fmt.Errorf("failed to detach copies from user %s: %w", userID, err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			return fmt.Errorf("failed to delete user %s: %w", userID, err)
		}
		return expectAffected(result, fmt.Sprintf("user %s", userID))
	})
}
