package rating

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"foodcourt-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	// Upsert stores the user's rating for a stall and refreshes the stall's
	// average and count in the same transaction.
	Upsert(ctx context.Context, r *Rating) (Summary, error)
	ListByStall(ctx context.Context, stallID string) ([]Rating, error)
	Find(ctx context.Context, userID, stallID string) (*Rating, error)
	StallExists(ctx context.Context, stallID string) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, rt *Rating) (Summary, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Upsert"),
		zap.String("stall_id", rt.StallID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrFailedSaveRating, err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM stalls WHERE id = $1 FOR UPDATE`, rt.StallID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, ErrStallNotFound
	}
	if err != nil {
		log.Error("failed to lock stall", zap.Error(err))
		return Summary{}, fmt.Errorf("%w: %w", ErrFailedSaveRating, err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO ratings (id, user_id, stall_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, stall_id)
		DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, rt.ID, rt.UserID, rt.StallID, rt.Score, rt.Comment).Scan(&rt.ID, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		log.Error("failed to upsert rating", zap.Error(err))
		return Summary{}, fmt.Errorf("%w: %w", ErrFailedSaveRating, err)
	}

	var sum Summary
	err = tx.QueryRowContext(ctx, `
		UPDATE stalls
		SET average_rating = agg.avg, total_ratings = agg.cnt, updated_at = NOW()
		FROM (
			SELECT COALESCE(ROUND(AVG(rating), 2), 0) AS avg, COUNT(*) AS cnt
			FROM ratings WHERE stall_id = $1
		) agg
		WHERE stalls.id = $1
		RETURNING stalls.average_rating, stalls.total_ratings
	`, rt.StallID).Scan(&sum.AverageRating, &sum.TotalRatings)
	if err != nil {
		log.Error("failed to refresh stall rating", zap.Error(err))
		return Summary{}, fmt.Errorf("%w: %w", ErrFailedSaveRating, err)
	}

	if err := tx.Commit(); err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrFailedSaveRating, err)
	}

	log.Info("rating saved",
		zap.Int("score", rt.Score),
		zap.String("average", sum.AverageRating.String()),
		zap.Int("total", sum.TotalRatings),
	)
	return sum, nil
}

func (r *repository) ListByStall(ctx context.Context, stallID string) ([]Rating, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.user_id, u.name, r.stall_id, r.rating, r.comment, r.created_at, r.updated_at
		FROM ratings r
		JOIN users u ON u.id = r.user_id
		WHERE r.stall_id = $1
		ORDER BY r.created_at DESC
	`, stallID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadRating, err)
	}
	defer rows.Close()

	out := []Rating{}
	for rows.Next() {
		var rt Rating
		if err := rows.Scan(&rt.ID, &rt.UserID, &rt.UserName, &rt.StallID, &rt.Score, &rt.Comment, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailedLoadRating, err)
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadRating, err)
	}
	return out, nil
}

// Find returns nil without error when the user has not rated the stall.
func (r *repository) Find(ctx context.Context, userID, stallID string) (*Rating, error) {
	var rt Rating
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, stall_id, rating, comment, created_at, updated_at
		FROM ratings
		WHERE user_id = $1 AND stall_id = $2
	`, userID, stallID).Scan(&rt.ID, &rt.UserID, &rt.StallID, &rt.Score, &rt.Comment, &rt.CreatedAt, &rt.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadRating, err)
	}
	return &rt, nil
}

func (r *repository) StallExists(ctx context.Context, stallID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM stalls WHERE id = $1)`, stallID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrFailedLoadRating, err)
	}
	return exists, nil
}
