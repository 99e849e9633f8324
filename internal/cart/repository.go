package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"foodcourt-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	// GetByUser returns the user's cart, or a new unsaved cart if none exists.
	GetByUser(ctx context.Context, userID string) (*Cart, error)
	// Save replaces the stored lines and total in a single transaction.
	Save(ctx context.Context, c *Cart) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByUser(ctx context.Context, userID string) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetByUser"),
		zap.String("user_id", userID),
	)

	c := New(userID)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, total_amount, updated_at
		FROM carts
		WHERE user_id = $1
	`, userID).Scan(&c.ID, &c.TotalAmount, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no cart yet, returning empty cart")
		return c, nil
	}
	if err != nil {
		log.Error("failed to query cart", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadCart, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, menu_item_id, quantity, unit_price
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY position
	`, c.ID)
	if err != nil {
		log.Error("failed to query cart lines", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadCart, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.MenuItemID, &l.Quantity, &l.UnitPrice); err != nil {
			log.Error("failed to scan cart line", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrFailedLoadCart, err)
		}
		c.Lines = append(c.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadCart, err)
	}

	return c, nil
}

func (r *repository) Save(ctx context.Context, c *Cart) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Save"),
		zap.String("user_id", c.OwnerID),
		zap.Int("lines", len(c.Lines)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrFailedSaveCart, err)
	}
	defer tx.Rollback()

	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}

	// one cart per user; a concurrent first write keeps the existing row id
	err = tx.QueryRowContext(ctx, `
		INSERT INTO carts (id, user_id, total_amount, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET total_amount = EXCLUDED.total_amount, updated_at = NOW()
		RETURNING id, updated_at
	`, id, c.OwnerID, c.TotalAmount).Scan(&id, &c.UpdatedAt)
	if err != nil {
		log.Error("failed to upsert cart", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrFailedSaveCart, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, id); err != nil {
		log.Error("failed to clear cart lines", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrFailedSaveCart, err)
	}

	for i, l := range c.Lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cart_lines (id, cart_id, menu_item_id, quantity, unit_price, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, l.ID, id, l.MenuItemID, l.Quantity, l.UnitPrice, i)
		if err != nil {
			log.Error("failed to insert cart line", zap.String("line_id", l.ID), zap.Error(err))
			return fmt.Errorf("%w: %w", ErrFailedSaveCart, err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit cart", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrFailedSaveCart, err)
	}

	c.ID = id
	return nil
}
