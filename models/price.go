package models

import (
	"time"
)

// PriceQuote is the fiat value of one Pi. It lives in memory only.
type PriceQuote struct {
	PHP        float64   `json:"php"`
	USD        float64   `json:"usd"`
	ObservedAt time.Time `json:"observed_at"`
}
