package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"foodcourt-be/internal/auth"
	"foodcourt-be/internal/logger"
	"foodcourt-be/internal/metrics"
	"foodcourt-be/internal/order"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Sales(ctx context.Context, actor auth.Actor, p Params) (*Report, error)
	Performance(ctx context.Context, actor auth.Actor, p Params) (*Report, error)
	StallRanking(ctx context.Context, actor auth.Actor, p Params) (*Report, error)
	List(ctx context.Context, actor auth.Actor) ([]Report, error)
	Get(ctx context.Context, actor auth.Actor, id string) (*Report, error)
	Export(ctx context.Context, actor auth.Actor, id string, w io.Writer) (*Report, error)
}

type service struct {
	source Source
	store  Store
	now    func() time.Time
}

func NewService(source Source, store Store) Service {
	return &service{source: source, store: store, now: time.Now}
}

func (s *service) Sales(ctx context.Context, actor auth.Actor, p Params) (*Report, error) {
	return s.generate(ctx, actor, p, TypeSales, func(ctx context.Context, r *Report) error {
		completed := order.StatusCompleted
		orders, err := s.source.Orders(ctx, &completed, p.From, p.To)
		if err != nil {
			return err
		}
		if p.StallID != "" {
			kept := orders[:0]
			for _, o := range orders {
				if containsStall(o, p.StallID) {
					kept = append(kept, o)
				}
			}
			orders = kept
			r.StallID = p.StallID
		}
		r.Title = "Sales Report " + rangeLabel(p)
		r.Description = "Sales performance report with revenue by stall and date"
		r.Sales = summarizeSales(orders)
		return nil
	})
}

func (s *service) Performance(ctx context.Context, actor auth.Actor, p Params) (*Report, error) {
	return s.generate(ctx, actor, p, TypePerformance, func(ctx context.Context, r *Report) error {
		orders, err := s.source.Orders(ctx, nil, p.From, p.To)
		if err != nil {
			return err
		}
		r.Title = "Performance Report " + rangeLabel(p)
		r.Description = "Order performance report with status distribution and revenue"
		r.Performance = summarizePerformance(orders)
		return nil
	})
}

func (s *service) StallRanking(ctx context.Context, actor auth.Actor, p Params) (*Report, error) {
	return s.generate(ctx, actor, p, TypeStallRanking, func(ctx context.Context, r *Report) error {
		completed := order.StatusCompleted
		orders, err := s.source.Orders(ctx, &completed, p.From, p.To)
		if err != nil {
			return err
		}
		r.Title = "Stall Ranking Report " + rangeLabel(p)
		r.Description = "Stall performance ranking based on revenue, orders, and items sold"
		r.Ranking = rankStalls(orders)
		return nil
	})
}

func (s *service) generate(ctx context.Context, actor auth.Actor, p Params, typ Type, fill func(context.Context, *Report) error) (*Report, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "generate"),
		zap.String("type", string(typ)),
	)

	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if p.From != nil && p.To != nil && p.From.After(*p.To) {
		return nil, ErrInvalidRange
	}

	timer := metrics.StartTimer()
	r := &Report{
		ID:          uuid.NewString(),
		Type:        typ,
		GeneratedBy: actor.UserID,
		Range:       DateRange{From: p.From, To: p.To},
		CreatedAt:   s.now().UTC(),
	}
	if err := fill(ctx, r); err != nil {
		log.Error("failed to compute report", zap.Error(err))
		return nil, err
	}
	if err := s.store.Insert(ctx, r); err != nil {
		log.Error("failed to archive report", zap.Error(err))
		return nil, err
	}

	log.Info("report generated",
		zap.String("report_id", r.ID),
		zap.Int64("duration_ms", timer.Milliseconds()),
	)
	return r, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor) ([]Report, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	return s.store.ListByOwner(ctx, actor.UserID)
}

// Get returns a report only to the owner who generated it.
func (s *service) Get(ctx context.Context, actor auth.Actor, id string) (*Report, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.GeneratedBy != actor.UserID {
		return nil, ErrNotReportOwner
	}
	return r, nil
}

func (s *service) Export(ctx context.Context, actor auth.Actor, id string, w io.Writer) (*Report, error) {
	r, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := WriteXLSX(r, w); err != nil {
		logger.FromCtx(ctx).Error("failed to render report workbook",
			zap.String("report_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedExport, err)
	}
	return r, nil
}

func rangeLabel(p Params) string {
	if p.From == nil && p.To == nil {
		return "(All Time)"
	}
	from, to := "start", "now"
	if p.From != nil {
		from = p.From.UTC().Format(time.DateOnly)
	}
	if p.To != nil {
		to = p.To.UTC().Format(time.DateOnly)
	}
	return fmt.Sprintf("(%s to %s)", from, to)
}
