package analytics

import (
	"context"
	"sort"
	"strings"
	"time"

	"foodcourt-be/internal/auth"
	"foodcourt-be/internal/metrics"

	"github.com/shopspring/decimal"
)

const (
	recentOrdersLimit = 10
	topStallsLimit    = 5
	defaultTrendDays  = 7
	maxTrendDays      = 90
)

// LiveSource exposes the realtime hub's state.
type LiveSource interface {
	ClientCount() int
	Stats() metrics.DeliverySnapshot
}

type Service interface {
	Dashboard(ctx context.Context, actor auth.Actor) (DashboardStats, error)
	RecentOrders(ctx context.Context, actor auth.Actor) ([]RecentOrder, error)
	TopStalls(ctx context.Context, actor auth.Actor) ([]StallRevenue, error)
	SalesTrends(ctx context.Context, actor auth.Actor, days int) ([]DailySales, error)
	Realtime(ctx context.Context, actor auth.Actor) (RealtimeStats, error)
}

type service struct {
	repo Repository
	live LiveSource
	now  func() time.Time
}

func NewService(repo Repository, live LiveSource) Service {
	return &service{repo: repo, live: live, now: time.Now}
}

func (s *service) Dashboard(ctx context.Context, actor auth.Actor) (DashboardStats, error) {
	if !actor.IsAdmin() {
		return DashboardStats{}, ErrAdminOnly
	}
	return s.repo.Dashboard(ctx)
}

func (s *service) RecentOrders(ctx context.Context, actor auth.Actor) ([]RecentOrder, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	return s.repo.RecentOrders(ctx, recentOrdersLimit)
}

func (s *service) TopStalls(ctx context.Context, actor auth.Actor) ([]StallRevenue, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	return s.repo.TopStalls(ctx, topStallsLimit)
}

// SalesTrends sums completed orders per UTC day over the last days days.
// Days without sales are omitted.
func (s *service) SalesTrends(ctx context.Context, actor auth.Actor, days int) ([]DailySales, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if days <= 0 {
		days = defaultTrendDays
	}
	if days > maxTrendDays {
		days = maxTrendDays
	}

	sales, err := s.repo.CompletedSince(ctx, s.now().UTC().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}
	return groupByDay(sales), nil
}

func groupByDay(sales []Sale) []DailySales {
	byDay := map[string]*DailySales{}
	for _, sale := range sales {
		day := sale.CreatedAt.UTC().Format(time.DateOnly)
		d, ok := byDay[day]
		if !ok {
			d = &DailySales{Date: day, Revenue: decimal.Zero}
			byDay[day] = d
		}
		d.Revenue = d.Revenue.Add(sale.TotalAmount)
		d.Orders++
	}

	out := make([]DailySales, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (s *service) Realtime(ctx context.Context, actor auth.Actor) (RealtimeStats, error) {
	if !actor.IsAdmin() {
		return RealtimeStats{}, ErrAdminOnly
	}
	if s.live == nil {
		return RealtimeStats{}, nil
	}
	return RealtimeStats{Connections: s.live.ClientCount(), Delivery: s.live.Stats()}, nil
}

// orderNumber is the short display reference shown on dashboards.
func orderNumber(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	if len(compact) > 6 {
		compact = compact[len(compact)-6:]
	}
	return "ORD-" + strings.ToUpper(compact)
}
