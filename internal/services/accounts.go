package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AnshRaj112/inkwell-backend/internal/models"
	"github.com/lib/pq"
)

// AccountStore holds credentials. Profiles live in the document store under the same id.
type AccountStore interface {
	Create(ctx context.Context, id, email, passwordHash string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	Delete(ctx context.Context, id string) error
}

// PostgresAccountStore is the AccountStore on the accounts table.
type PostgresAccountStore struct {
	db *sql.DB
}

func NewPostgresAccountStore(db *sql.DB) *PostgresAccountStore {
	return &PostgresAccountStore{db: db}
}

const uniqueViolation = "23505"

func (s *PostgresAccountStore) Create(ctx context.Context, id, email, passwordHash string) (*models.Account, error) {
	a := &models.Account{ID: id, Email: email, PasswordHash: passwordHash}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at, is_active
	`, id, email, passwordHash).Scan(&a.CreatedAt, &a.IsActive)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return a, nil
}

func (s *PostgresAccountStore) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at, is_active
		FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`, email))
}

func (s *PostgresAccountStore) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at, is_active
		FROM accounts
		WHERE id = $1
	`, id))
}

func (s *PostgresAccountStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	return err
}

func (s *PostgresAccountStore) scanOne(row *sql.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
