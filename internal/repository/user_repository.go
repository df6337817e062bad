package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"testboard/internal/domain"
	"testboard/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		CreatedAt:    m.CreatedAt,
	}
}

func fromDomainUser(u *domain.User) *models.User {
	if u == nil {
		return nil
	}
	return &models.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
}

// sqlxUserRepository implements domain.UserRepository using sqlx.
type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

// CreateUser inserts a new user. The unique index on email backs the
// duplicate-registration check.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, email, password_hash, role, created_at)
	          VALUES (:id, :email, :password_hash, :role, :created_at)`

	_, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, fromDomainUser(user))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email.
func (r *sqlxUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m models.User
	query := `SELECT id, email, password_hash, role, created_at FROM users WHERE email = $1`

	err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return toDomainUser(&m), nil
}

// GetUserByID retrieves a user by their internal ID.
func (r *sqlxUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var m models.User
	query := `SELECT id, email, password_hash, role, created_at FROM users WHERE id = $1`

	err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return toDomainUser(&m), nil
}
