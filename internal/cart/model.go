package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

type Line struct {
	ID         string          `json:"id"`
	MenuItemID string          `json:"menuItemId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the per-user staging area before checkout. An empty ID means the
// cart has not been persisted yet.
type Cart struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"ownerId"`
	Lines       []Line          `json:"lines"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func New(ownerID string) *Cart {
	return &Cart{OwnerID: ownerID, Lines: []Line{}, TotalAmount: decimal.Zero}
}

func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }

func (c *Cart) lineIndex(lineID string) int {
	for i, l := range c.Lines {
		if l.ID == lineID {
			return i
		}
	}
	return -1
}

func (c *Cart) itemIndex(menuItemID string) int {
	for i, l := range c.Lines {
		if l.MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}

// Line returns a copy of the line with the given id.
func (c *Cart) Line(lineID string) (Line, bool) {
	if i := c.lineIndex(lineID); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

func (c *Cart) recompute() {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	c.TotalAmount = total
}
