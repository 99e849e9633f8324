package payment

import (
	"context"
	"strings"

	"foodcourt-be/internal/auth"
	"foodcourt-be/internal/order"

	"github.com/google/uuid"
)

type Service interface {
	Process(ctx context.Context, actor auth.Actor, in ProcessInput) (*Payment, error)
	GetByOrder(ctx context.Context, actor auth.Actor, orderID string) (*Payment, error)
	GetByID(ctx context.Context, actor auth.Actor, id string) (*Payment, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Process(ctx context.Context, actor auth.Actor, in ProcessInput) (*Payment, error) {
	if strings.TrimSpace(in.OrderID) == "" {
		return nil, ErrMissingOrderID
	}
	if !in.Method.Valid() {
		return nil, ErrInvalidMethod
	}

	return s.repo.Record(ctx, in.OrderID, func(o OrderSnapshot) (*Payment, error) {
		if o.CustomerID != actor.UserID {
			return nil, ErrNotOrderOwner
		}
		if o.PaymentStatus == order.PaymentPaid {
			return nil, ErrAlreadyPaid
		}

		status, _ := Settle(in.Method)
		txn := strings.TrimSpace(in.TransactionID)
		if txn == "" {
			txn = uuid.NewString()
		}
		return &Payment{
			ID:            uuid.NewString(),
			OrderID:       o.ID,
			UserID:        actor.UserID,
			Amount:        o.TotalAmount,
			Method:        in.Method,
			Status:        status,
			TransactionID: txn,
		}, nil
	})
}

func (s *service) GetByOrder(ctx context.Context, actor auth.Actor, orderID string) (*Payment, error) {
	p, err := s.repo.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return authorizeView(p, actor)
}

func (s *service) GetByID(ctx context.Context, actor auth.Actor, id string) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return authorizeView(p, actor)
}

func authorizeView(p *Payment, actor auth.Actor) (*Payment, error) {
	if p.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrNotPayer
	}
	return p, nil
}
