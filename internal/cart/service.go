package cart

import (
	"context"
	"strings"

	"foodcourt-be/internal/auth"
	"foodcourt-be/internal/logger"
	"foodcourt-be/internal/menu"

	"go.uber.org/zap"
)

// MenuReader returns the current price, stock and availability of an item.
type MenuReader interface {
	Get(ctx context.Context, id string) (*menu.Item, error)
}

type Service interface {
	Get(ctx context.Context, actor auth.Actor) (*Cart, error)
	AddItem(ctx context.Context, actor auth.Actor, menuItemID string, quantity int) (*Cart, error)
	UpdateQuantity(ctx context.Context, actor auth.Actor, lineID string, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, actor auth.Actor, lineID string) (*Cart, error)
	Clear(ctx context.Context, actor auth.Actor) (*Cart, error)
}

type service struct {
	repo Repository
	menu MenuReader
}

func NewService(repo Repository, menu MenuReader) Service {
	return &service{repo: repo, menu: menu}
}

func (s *service) Get(ctx context.Context, actor auth.Actor) (*Cart, error) {
	return s.repo.GetByUser(ctx, actor.UserID)
}

func (s *service) availableItem(ctx context.Context, menuItemID string) (*menu.Item, error) {
	item, err := s.menu.Get(ctx, menuItemID)
	if err != nil {
		return nil, err
	}
	if !item.IsActive {
		return nil, ErrMenuItemUnavailable
	}
	return item, nil
}

func (s *service) AddItem(ctx context.Context, actor auth.Actor, menuItemID string, quantity int) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddItem"),
		zap.String("menu_item_id", menuItemID),
		zap.Int("quantity", quantity),
	)

	if strings.TrimSpace(menuItemID) == "" {
		return nil, ErrMissingItemID
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.availableItem(ctx, menuItemID)
	if err != nil {
		log.Warn("menu item rejected", zap.Error(err))
		return nil, err
	}

	c, err := s.repo.GetByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := AddItem(c, item.ID, quantity, item.Stock, item.Price); err != nil {
		log.Info("add to cart rejected", zap.Int("stock", item.Stock), zap.Error(err))
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	log.Info("item added to cart", zap.String("total", c.TotalAmount.StringFixed(2)))
	return c, nil
}

func (s *service) UpdateQuantity(ctx context.Context, actor auth.Actor, lineID string, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.repo.GetByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	line, ok := c.Line(lineID)
	if !ok {
		return nil, ErrLineNotFound
	}

	item, err := s.menu.Get(ctx, line.MenuItemID)
	if err != nil {
		return nil, err
	}
	if err := UpdateQuantity(c, lineID, quantity, item.Stock); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) RemoveItem(ctx context.Context, actor auth.Actor, lineID string) (*Cart, error) {
	c, err := s.repo.GetByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := RemoveItem(c, lineID); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Clear(ctx context.Context, actor auth.Actor) (*Cart, error) {
	c, err := s.repo.GetByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	Clear(c)
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
