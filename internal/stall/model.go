package stall

import (
	"time"

	"github.com/shopspring/decimal"
)

type Stall struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	OwnerID       string          `json:"ownerId"`
	Category      string          `json:"category"`
	Rent          decimal.Decimal `json:"rent"`
	IsActive      bool            `json:"isActive"`
	AverageRating decimal.Decimal `json:"averageRating"`
	TotalRatings  int             `json:"totalRatings"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type CreateInput struct {
	Name        string
	Description string
	Category    string
	Rent        decimal.Decimal
}

// UpdateInput carries only the fields being changed.
type UpdateInput struct {
	Name        *string
	Description *string
	Category    *string
	Rent        *decimal.Decimal
	IsActive    *bool
}

func (in UpdateInput) apply(s *Stall) {
	if in.Name != nil {
		s.Name = *in.Name
	}
	if in.Description != nil {
		s.Description = *in.Description
	}
	if in.Category != nil {
		s.Category = *in.Category
	}
	if in.Rent != nil {
		s.Rent = *in.Rent
	}
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
}
