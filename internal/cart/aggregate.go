package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var newLineID = uuid.NewString

// AddItem merges quantity into the existing line for the item, keeping the
// price captured when it was first added, or appends a line at currentPrice.
func AddItem(c *Cart, menuItemID string, quantity, currentStock int, currentPrice decimal.Decimal) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if quantity > currentStock {
		return ErrOutOfStock
	}

	if i := c.itemIndex(menuItemID); i >= 0 {
		c.Lines[i].Quantity += quantity
	} else {
		c.Lines = append(c.Lines, Line{
			ID:         newLineID(),
			MenuItemID: menuItemID,
			Quantity:   quantity,
			UnitPrice:  currentPrice,
		})
	}

	c.recompute()
	return nil
}

func UpdateQuantity(c *Cart, lineID string, newQuantity, currentStock int) error {
	if newQuantity < 1 {
		return ErrInvalidQuantity
	}
	i := c.lineIndex(lineID)
	if i < 0 {
		return ErrLineNotFound
	}
	if newQuantity > currentStock {
		return ErrOutOfStock
	}

	c.Lines[i].Quantity = newQuantity
	c.recompute()
	return nil
}

func RemoveItem(c *Cart, lineID string) error {
	i := c.lineIndex(lineID)
	if i < 0 {
		return ErrLineNotFound
	}

	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	c.recompute()
	return nil
}

func Clear(c *Cart) {
	c.Lines = []Line{}
	c.TotalAmount = decimal.Zero
}
