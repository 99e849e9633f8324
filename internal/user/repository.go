package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"foodcourt-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateProfile(ctx context.Context, p UpdateProfileParams) (*User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	Verify(ctx context.Context, token string) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = `id, name, email, password_hash, role, phone, is_verified, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// uniqueViolation is the postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

func (r *repository) Create(ctx context.Context, u *User) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("email", u.Email),
	)

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, phone, is_verified, verification_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING created_at, updated_at
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Phone, u.IsVerified, u.VerificationToken).Scan(&u.CreatedAt, &u.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		log.Info("email already registered")
		return ErrEmailExists
	}
	if err != nil {
		log.Error("db: failed to insert user", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrFailedCreateUser, err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query user",
			zap.String("layer", "repository"),
			zap.String("user_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadUser, err)
	}
	return u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadUser, err)
	}
	return u, nil
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		log.Error("failed to query users", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadUser, err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			log.Error("failed to scan user", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrFailedLoadUser, err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadUser, err)
	}
	return users, nil
}

// UpdateProfile keeps existing values for nil fields.
func (r *repository) UpdateProfile(ctx context.Context, p UpdateProfileParams) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateProfile"),
		zap.String("user_id", p.UserID),
	)

	u, err := scanUser(r.db.QueryRowContext(ctx, `
		UPDATE users
		SET name = COALESCE($2, name),
			phone = COALESCE($3, phone),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		p.UserID, p.Name, p.Phone,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		log.Error("failed to update profile", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedUpdateUser, err)
	}

	log.Info("profile updated successfully")
	return u, nil
}

func (r *repository) UpdatePassword(ctx context.Context, id, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedUpdateUser, err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Verify consumes a verification token. A token can be used once.
func (r *repository) Verify(ctx context.Context, token string) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Verify"),
	)

	u, err := scanUser(r.db.QueryRowContext(ctx, `
		UPDATE users
		SET is_verified = TRUE,
			verification_token = NULL,
			updated_at = NOW()
		WHERE verification_token = $1
		RETURNING `+userColumns,
		token,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidVerificationToken
	}
	if err != nil {
		log.Error("failed to verify user", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedUpdateUser, err)
	}

	log.Info("email verified", zap.String("user_id", u.ID))
	return u, nil
}
