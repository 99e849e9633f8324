package menu

import (
	"context"
	"errors"
	"strings"

	"foodcourt-be/internal/auth"
	"foodcourt-be/internal/logger"
	"foodcourt-be/internal/stall"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// StallAuthorizer resolves whether an actor may manage a stall.
type StallAuthorizer interface {
	Authorize(ctx context.Context, actor auth.Actor, stallID string) (*stall.Stall, error)
}

type Service interface {
	ListByStall(ctx context.Context, stallID string) ([]Item, error)
	ListByCategory(ctx context.Context, category string) ([]Item, error)
	Get(ctx context.Context, id string) (*Item, error)
	Create(ctx context.Context, actor auth.Actor, in CreateInput) (*Item, error)
	Update(ctx context.Context, actor auth.Actor, id string, in UpdateInput) (*Item, error)
	Delete(ctx context.Context, actor auth.Actor, id string) error
}

type service struct {
	repo   Repository
	cache  Cache
	stalls StallAuthorizer
	sfg    singleflight.Group
}

func NewService(repo Repository, cache Cache, stalls StallAuthorizer) Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &service{repo: repo, cache: cache, stalls: stalls}
}

func (s *service) ListByStall(ctx context.Context, stallID string) ([]Item, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListByStall"),
		zap.String("stall_id", stallID),
	)

	items, err := s.cache.Get(ctx, stallID)
	if err == nil {
		return items, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		log.Warn("menu cache read failed", zap.Error(err))
	}

	// collapse concurrent misses for the same stall into one query
	v, err, _ := s.sfg.Do(stallID, func() (interface{}, error) {
		items, err := s.repo.ListByStall(ctx, stallID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, stallID, items); err != nil {
			log.Warn("menu cache write failed", zap.Error(err))
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Item), nil
}

func (s *service) ListByCategory(ctx context.Context, category string) ([]Item, error) {
	return s.repo.ListByCategory(ctx, category)
}

func (s *service) Get(ctx context.Context, id string) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

func validate(in UpdateInput) error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return ErrInvalidName
	}
	if in.Price != nil && in.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if in.Stock != nil && *in.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if err := validate(UpdateInput{Price: &in.Price, Stock: &in.Stock}); err != nil {
		return nil, err
	}
	if _, err := s.stalls.Authorize(ctx, actor, in.StallID); err != nil {
		return nil, err
	}

	it := &Item{
		ID:          uuid.NewString(),
		StallID:     in.StallID,
		Name:        name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Stock:       in.Stock,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}

	s.invalidate(ctx, it.StallID)
	return it, nil
}

func (s *service) Update(ctx context.Context, actor auth.Actor, id string, in UpdateInput) (*Item, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.stalls.Authorize(ctx, actor, it.StallID); err != nil {
		return nil, err
	}

	in.apply(it)
	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}

	s.invalidate(ctx, it.StallID)
	return it, nil
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id string) error {
	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.stalls.Authorize(ctx, actor, it.StallID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, it.StallID)
	return nil
}

func (s *service) invalidate(ctx context.Context, stallID string) {
	if err := s.cache.Delete(ctx, stallID); err != nil {
		logger.FromCtx(ctx).Warn("menu cache invalidation failed",
			zap.String("stall_id", stallID),
			zap.Error(err),
		)
	}
}
