package rating

import (
	"time"

	"github.com/shopspring/decimal"
)

type Rating struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	StallID   string    `json:"stallId"`
	Score     int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary is the stall aggregate recomputed after every rating.
type Summary struct {
	AverageRating decimal.Decimal `json:"averageRating"`
	TotalRatings  int             `json:"totalRatings"`
}
