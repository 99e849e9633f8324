package report

import (
	"sort"
	"time"

	"foodcourt-be/internal/order"

	"github.com/shopspring/decimal"
)

const unknownStall = "Unknown Stall"

func stallLabel(l LineFacts) string {
	if l.StallName == "" {
		return unknownStall
	}
	return l.StallName
}

// summarizeSales totals orders and splits revenue by stall and by UTC date.
func summarizeSales(orders []OrderFacts) *SalesData {
	data := &SalesData{TotalSales: decimal.Zero, AverageOrderValue: decimal.Zero}
	byStall := map[string]*Amount{}
	byDate := map[string]decimal.Decimal{}

	for _, o := range orders {
		data.TotalSales = data.TotalSales.Add(o.TotalAmount)
		for _, l := range o.Lines {
			a, ok := byStall[l.StallID]
			if !ok {
				a = &Amount{Key: l.StallID, Label: stallLabel(l), Amount: decimal.Zero}
				byStall[l.StallID] = a
			}
			a.Amount = a.Amount.Add(l.Subtotal())
		}
		day := o.CreatedAt.UTC().Format(time.DateOnly)
		byDate[day] = byDate[day].Add(o.TotalAmount)
	}

	data.TotalOrders = len(orders)
	if data.TotalOrders > 0 {
		data.AverageOrderValue = data.TotalSales.
			Div(decimal.NewFromInt(int64(data.TotalOrders))).
			Round(2)
	}
	data.ByStall = make([]Amount, 0, len(byStall))
	for _, a := range byStall {
		data.ByStall = append(data.ByStall, *a)
	}
	sort.Slice(data.ByStall, func(i, j int) bool {
		if data.ByStall[i].Label != data.ByStall[j].Label {
			return data.ByStall[i].Label < data.ByStall[j].Label
		}
		return data.ByStall[i].Key < data.ByStall[j].Key
	})
	data.ByDate = sortedAmounts(byDate)
	return data
}

func sortedAmounts(m map[string]decimal.Decimal) []Amount {
	out := make([]Amount, 0, len(m))
	for k, v := range m {
		out = append(out, Amount{Key: k, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

var statusOrder = []order.Status{
	order.StatusPending,
	order.StatusPreparing,
	order.StatusReadyForPickup,
	order.StatusCompleted,
	order.StatusCancelled,
}

// summarizePerformance counts orders and revenue per lifecycle status.
// Statuses with no orders are omitted.
func summarizePerformance(orders []OrderFacts) *PerformanceData {
	buckets := map[order.Status]*StatusBucket{}
	for _, o := range orders {
		b, ok := buckets[o.Status]
		if !ok {
			b = &StatusBucket{Status: o.Status, Revenue: decimal.Zero}
			buckets[o.Status] = b
		}
		b.Count++
		b.Revenue = b.Revenue.Add(o.TotalAmount)
	}

	data := &PerformanceData{TotalOrders: len(orders), ByStatus: []StatusBucket{}}
	for _, s := range statusOrder {
		if b, ok := buckets[s]; ok {
			data.ByStatus = append(data.ByStatus, *b)
		}
	}
	return data
}

// rankStalls orders stalls by revenue from their own lines. An order with
// several lines at one stall counts once towards that stall's orders.
func rankStalls(orders []OrderFacts) *RankingData {
	stalls := map[string]*RankedStall{}
	for _, o := range orders {
		seen := map[string]bool{}
		for _, l := range o.Lines {
			r, ok := stalls[l.StallID]
			if !ok {
				r = &RankedStall{StallID: l.StallID, Name: stallLabel(l), TotalRevenue: decimal.Zero}
				stalls[l.StallID] = r
			}
			r.TotalRevenue = r.TotalRevenue.Add(l.Subtotal())
			r.ItemsSold += l.Quantity
			if !seen[l.StallID] {
				seen[l.StallID] = true
				r.TotalOrders++
			}
		}
	}

	ranked := make([]RankedStall, 0, len(stalls))
	for _, r := range stalls {
		ranked = append(ranked, *r)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].TotalRevenue.Cmp(ranked[j].TotalRevenue); c != 0 {
			return c > 0
		}
		return ranked[i].Name < ranked[j].Name
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return &RankingData{Stalls: ranked, TotalStalls: len(ranked)}
}

func containsStall(o OrderFacts, stallID string) bool {
	for _, l := range o.Lines {
		if l.StallID == stallID {
			return true
		}
	}
	return false
}
