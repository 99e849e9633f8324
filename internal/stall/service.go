package stall

import (
	"context"
	"strings"

	"foodcourt-be/internal/auth"
	"foodcourt-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context) ([]Stall, error)
	Get(ctx context.Context, id string) (*Stall, error)
	Mine(ctx context.Context, actor auth.Actor) ([]Stall, error)
	Create(ctx context.Context, actor auth.Actor, in CreateInput) (*Stall, error)
	Update(ctx context.Context, actor auth.Actor, id string, in UpdateInput) (*Stall, error)
	Delete(ctx context.Context, actor auth.Actor, id string) error

	// OwnedStallIDs lists the stalls owned by a user, used for order visibility.
	OwnedStallIDs(ctx context.Context, ownerID string) ([]string, error)
	// Authorize returns the stall if the actor may manage it.
	Authorize(ctx context.Context, actor auth.Actor, stallID string) (*Stall, error)
}

// MenuCache drops the cached menu of a removed stall.
type MenuCache interface {
	Delete(ctx context.Context, stallID string) error
}

type service struct {
	repo  Repository
	menus MenuCache
}

// NewService accepts a nil menus when no menu cache is configured.
func NewService(repo Repository, menus MenuCache) Service {
	return &service{repo: repo, menus: menus}
}

func (s *service) List(ctx context.Context) ([]Stall, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) Get(ctx context.Context, id string) (*Stall, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Mine(ctx context.Context, actor auth.Actor) ([]Stall, error) {
	return s.repo.ListByOwner(ctx, actor.UserID)
}

func (s *service) OwnedStallIDs(ctx context.Context, ownerID string) ([]string, error) {
	return s.repo.OwnedIDs(ctx, ownerID)
}

func (s *service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*Stall, error) {
	if actor.Role != auth.RoleStallOwner && !actor.IsAdmin() {
		return nil, ErrNotStaff
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrInvalidName
	}
	if in.Rent.IsNegative() {
		return nil, ErrInvalidRent
	}

	st := &Stall{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		OwnerID:     actor.UserID,
		Category:    in.Category,
		Rent:        in.Rent,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("stall created", zap.String("stall_id", st.ID))
	return st, nil
}

func (s *service) Authorize(ctx context.Context, actor auth.Actor, stallID string) (*Stall, error) {
	st, err := s.repo.GetByID(ctx, stallID)
	if err != nil {
		return nil, err
	}
	if st.OwnerID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrNotOwner
	}
	return st, nil
}

func (s *service) Update(ctx context.Context, actor auth.Actor, id string, in UpdateInput) (*Stall, error) {
	st, err := s.Authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, ErrInvalidName
	}
	if in.Rent != nil && in.Rent.IsNegative() {
		return nil, ErrInvalidRent
	}

	in.apply(st)
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id string) error {
	if _, err := s.Authorize(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	log := logger.FromCtx(ctx).With(zap.String("stall_id", id))
	// menu items went with the stall
	if s.menus != nil {
		if err := s.menus.Delete(ctx, id); err != nil {
			log.Warn("menu cache invalidation failed", zap.Error(err))
		}
	}
	log.Info("stall deleted")
	return nil
}
