package stall

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"foodcourt-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	ListActive(ctx context.Context) ([]Stall, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Stall, error)
	OwnedIDs(ctx context.Context, ownerID string) ([]string, error)
	GetByID(ctx context.Context, id string) (*Stall, error)
	Create(ctx context.Context, s *Stall) error
	Update(ctx context.Context, s *Stall) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const stallColumns = `
	id, name, description, owner_id, category, rent,
	is_active, average_rating, total_ratings, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanStall(row scanner) (*Stall, error) {
	var s Stall
	err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.OwnerID, &s.Category, &s.Rent,
		&s.IsActive, &s.AverageRating, &s.TotalRatings, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) list(ctx context.Context, method, query string, args ...any) ([]Stall, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", method),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query stalls", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	stalls := []Stall{}
	for rows.Next() {
		s, err := scanStall(rows)
		if err != nil {
			log.Error("failed to scan stall row", zap.Error(err))
			return nil, err
		}
		stalls = append(stalls, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stalls, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Stall, error) {
	return r.list(ctx, "ListActive",
		`SELECT`+stallColumns+` FROM stalls WHERE is_active = TRUE ORDER BY name`)
}

func (r *repository) ListByOwner(ctx context.Context, ownerID string) ([]Stall, error) {
	return r.list(ctx, "ListByOwner",
		`SELECT`+stallColumns+` FROM stalls WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
}

func (r *repository) OwnedIDs(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM stalls WHERE owner_id = $1`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id string) (*Stall, error) {
	s, err := scanStall(r.db.QueryRowContext(ctx,
		`SELECT`+stallColumns+` FROM stalls WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStallNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get stall: %w", err)
	}
	return s, nil
}

func (r *repository) Create(ctx context.Context, s *Stall) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO stalls (id, name, description, owner_id, category, rent, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, s.ID, s.Name, s.Description, s.OwnerID, s.Category, s.Rent, s.IsActive,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert stall",
			zap.String("layer", "repository"),
			zap.String("stall_id", s.ID),
			zap.Error(err),
		)
		return fmt.Errorf("create stall: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, s *Stall) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE stalls
		SET name = $1, description = $2, category = $3, rent = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`, s.Name, s.Description, s.Category, s.Rent, s.IsActive, s.ID,
	).Scan(&s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrStallNotFound
	}
	if err != nil {
		return fmt.Errorf("update stall: %w", err)
	}
	return nil
}

// Delete removes the stall; menu items and ratings go with it via ON DELETE CASCADE.
func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stalls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stall: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStallNotFound
	}
	return nil
}
