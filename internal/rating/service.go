package rating

import (
	"context"
	"strings"

	"foodcourt-be/internal/auth"

	"github.com/google/uuid"
)

type Service interface {
	Rate(ctx context.Context, actor auth.Actor, stallID string, score int, comment string) (*Rating, Summary, error)
	ListByStall(ctx context.Context, stallID string) ([]Rating, error)
	Mine(ctx context.Context, actor auth.Actor, stallID string) (*Rating, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Rate(ctx context.Context, actor auth.Actor, stallID string, score int, comment string) (*Rating, Summary, error) {
	if score < 1 || score > 5 {
		return nil, Summary{}, ErrInvalidScore
	}

	rt := &Rating{
		ID:      uuid.NewString(),
		UserID:  actor.UserID,
		StallID: stallID,
		Score:   score,
		Comment: strings.TrimSpace(comment),
	}
	sum, err := s.repo.Upsert(ctx, rt)
	if err != nil {
		return nil, Summary{}, err
	}
	return rt, sum, nil
}

func (s *service) ListByStall(ctx context.Context, stallID string) ([]Rating, error) {
	ok, err := s.repo.StallExists(ctx, stallID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStallNotFound
	}
	return s.repo.ListByStall(ctx, stallID)
}

func (s *service) Mine(ctx context.Context, actor auth.Actor, stallID string) (*Rating, error) {
	return s.repo.Find(ctx, actor.UserID, stallID)
}
