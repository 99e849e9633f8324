package menu

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"foodcourt-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	ListByStall(ctx context.Context, stallID string) ([]Item, error)
	ListByCategory(ctx context.Context, category string) ([]Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	Create(ctx context.Context, it *Item) error
	Update(ctx context.Context, it *Item) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const itemColumns = `
	id, stall_id, name, description, price, category, stock, is_active, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*Item, error) {
	var it Item
	if err := row.Scan(
		&it.ID, &it.StallID, &it.Name, &it.Description, &it.Price,
		&it.Category, &it.Stock, &it.IsActive, &it.CreatedAt, &it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *repository) list(ctx context.Context, method, query string, args ...any) ([]Item, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", method),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query menu items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			log.Error("failed to scan menu item row", zap.Error(err))
			return nil, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	log.Debug("menu items loaded", zap.Int("count", len(items)))
	return items, nil
}

func (r *repository) ListByStall(ctx context.Context, stallID string) ([]Item, error) {
	return r.list(ctx, "ListByStall", `
		SELECT`+itemColumns+`
		FROM menu_items
		WHERE stall_id = $1 AND is_active = TRUE
		ORDER BY category, name
	`, stallID)
}

func (r *repository) ListByCategory(ctx context.Context, category string) ([]Item, error) {
	return r.list(ctx, "ListByCategory", `
		SELECT`+itemColumns+`
		FROM menu_items
		WHERE category = $1 AND is_active = TRUE
		ORDER BY name
	`, category)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Item, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx,
		`SELECT`+itemColumns+` FROM menu_items WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	return it, nil
}

func (r *repository) Create(ctx context.Context, it *Item) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO menu_items (id, stall_id, name, description, price, category, stock, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, it.ID, it.StallID, it.Name, it.Description, it.Price, it.Category, it.Stock, it.IsActive,
	).Scan(&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create menu item: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, it *Item) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE menu_items
		SET name = $1, description = $2, price = $3, category = $4,
		    stock = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`, it.Name, it.Description, it.Price, it.Category, it.Stock, it.IsActive, it.ID,
	).Scan(&it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}
