package order

import (
	"context"
	"time"

	"foodcourt-be/internal/auth"
	"foodcourt-be/internal/cart"
	"foodcourt-be/internal/logger"

	"go.uber.org/zap"
)

// Notifier pushes order events to connected clients.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, o *Order)
	NotifyOrderPlaced(ctx context.Context, o *Order)
}

// MenuCache drops a stall's cached menu once its stock changed.
type MenuCache interface {
	Delete(ctx context.Context, stallID string) error
}

// Confirmer sends the order confirmation email.
type Confirmer interface {
	SendOrderConfirmation(ctx context.Context, email string, o *Order) error
}

// StallDirectory resolves which stalls a user owns.
type StallDirectory interface {
	OwnedStallIDs(ctx context.Context, ownerID string) ([]string, error)
}

// EmailLookup resolves a user's email when the token did not carry one.
type EmailLookup interface {
	EmailOf(ctx context.Context, userID string) (string, error)
}

type Service interface {
	CreateOrder(ctx context.Context, actor auth.Actor, in CreateInput) (*Order, error)
	UpdateStatus(ctx context.Context, actor auth.Actor, orderID string, to Status) (*Order, error)
	GetOrder(ctx context.Context, actor auth.Actor, orderID string) (*Order, error)
	ListOrders(ctx context.Context, actor auth.Actor, f Filter) ([]Order, error)
}

type Options struct {
	Notifier  Notifier
	Confirmer Confirmer
	Emails    EmailLookup
	Menus     MenuCache
	// SideEffectTimeout bounds notification and email delivery.
	SideEffectTimeout time.Duration
}

type service struct {
	repo     Repository
	stalls   StallDirectory
	notifier Notifier
	mail     Confirmer
	emails   EmailLookup
	menus    MenuCache
	timeout  time.Duration
	spawn    func(func())
}

func NewService(repo Repository, stalls StallDirectory, opts Options) Service {
	timeout := opts.SideEffectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &service{
		repo:     repo,
		stalls:   stalls,
		notifier: opts.Notifier,
		mail:     opts.Confirmer,
		emails:   opts.Emails,
		menus:    opts.Menus,
		timeout:  timeout,
		spawn:    func(fn func()) { go fn() },
	}
}

func (s *service) CreateOrder(ctx context.Context, actor auth.Actor, in CreateInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
	)

	if !in.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	o, err := s.repo.PlaceOrder(ctx, actor.UserID, func(lines []cart.Line, items map[string]StockItem) (*Order, error) {
		return BuildOrder(actor.UserID, lines, items, in)
	})
	if err != nil {
		log.Info("create order failed", zap.Error(err))
		return nil, err
	}

	// stock is part of the cached menu, so drop it before the caller reads again
	s.invalidateMenus(ctx, o)

	s.afterCommit(ctx, func(ctx context.Context) {
		if s.notifier != nil {
			s.notifier.NotifyOrderPlaced(ctx, o)
		}
		s.sendConfirmation(ctx, actor, o)
	})

	return o, nil
}

func (s *service) invalidateMenus(ctx context.Context, o *Order) {
	if s.menus == nil {
		return
	}
	seen := make(map[string]bool, len(o.Lines))
	for _, l := range o.Lines {
		if seen[l.StallID] {
			continue
		}
		seen[l.StallID] = true
		if err := s.menus.Delete(ctx, l.StallID); err != nil {
			logger.FromCtx(ctx).Warn("menu cache invalidation failed",
				zap.String("order_id", o.ID),
				zap.String("stall_id", l.StallID),
				zap.Error(err),
			)
		}
	}
}

func (s *service) sendConfirmation(ctx context.Context, actor auth.Actor, o *Order) {
	if s.mail == nil {
		return
	}
	log := logger.FromCtx(ctx).With(zap.String("order_id", o.ID))

	email := actor.Email
	if email == "" && s.emails != nil {
		var err error
		if email, err = s.emails.EmailOf(ctx, actor.UserID); err != nil {
			log.Warn("could not resolve customer email", zap.Error(err))
			return
		}
	}
	if email == "" {
		return
	}

	if err := s.mail.SendOrderConfirmation(ctx, email, o); err != nil {
		log.Warn("order confirmation email failed", zap.Error(err))
	}
}

func (s *service) UpdateStatus(ctx context.Context, actor auth.Actor, orderID string, to Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", orderID),
		zap.String("requested", string(to)),
	)

	if !to.Valid() {
		return nil, ErrInvalidStatus
	}

	owned, err := s.ownedStalls(ctx, actor)
	if err != nil {
		return nil, err
	}

	o, err := s.repo.UpdateStatus(ctx, orderID, func(current *Order) (Status, error) {
		if err := CheckTransition(current, to, actor, owned); err != nil {
			return "", err
		}
		return to, nil
	})
	if err != nil {
		log.Info("status update rejected", zap.Error(err))
		return nil, err
	}

	if s.notifier != nil {
		s.afterCommit(ctx, func(ctx context.Context) {
			s.notifier.NotifyStatusChange(ctx, o)
		})
	}

	return o, nil
}

func (s *service) GetOrder(ctx context.Context, actor auth.Actor, orderID string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	owned, err := s.ownedStalls(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !CanView(o, actor, owned) {
		return nil, ErrUnauthorized
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context, actor auth.Actor, f Filter) ([]Order, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if f.CreatedFrom != nil && f.CreatedTo != nil && f.CreatedFrom.After(*f.CreatedTo) {
		return nil, ErrInvalidFilter
	}
	if f.MinAmount != nil && f.MaxAmount != nil && f.MinAmount.GreaterThan(*f.MaxAmount) {
		return nil, ErrInvalidFilter
	}

	var scope Scope
	switch actor.Role {
	case auth.RoleFoodCourtOwner:
	case auth.RoleStallOwner:
		scope.StallOwnerID = actor.UserID
	default:
		scope.CustomerID = actor.UserID
	}

	return s.repo.List(ctx, scope, f)
}

func (s *service) ownedStalls(ctx context.Context, actor auth.Actor) ([]string, error) {
	if actor.Role != auth.RoleStallOwner || s.stalls == nil {
		return nil, nil
	}
	return s.stalls.OwnedStallIDs(ctx, actor.UserID)
}

// afterCommit runs best-effort side effects outside the request lifetime.
func (s *service) afterCommit(ctx context.Context, fn func(ctx context.Context)) {
	detached := context.WithoutCancel(ctx)
	s.spawn(func() {
		ctx, cancel := context.WithTimeout(detached, s.timeout)
		defer cancel()
		fn(ctx)
	})
}
