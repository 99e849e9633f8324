package menu

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID          string          `json:"id"`
	StallID     string          `json:"stallId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type CreateInput struct {
	StallID     string
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Stock       int
}

type UpdateInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	Stock       *int
	IsActive    *bool
}

func (in UpdateInput) apply(it *Item) {
	if in.Name != nil {
		it.Name = *in.Name
	}
	if in.Description != nil {
		it.Description = *in.Description
	}
	if in.Price != nil {
		it.Price = *in.Price
	}
	if in.Category != nil {
		it.Category = *in.Category
	}
	if in.Stock != nil {
		it.Stock = *in.Stock
	}
	if in.IsActive != nil {
		it.IsActive = *in.IsActive
	}
}
