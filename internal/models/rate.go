package models

import "time"

// RateQuote es la última cotización de USDT contra BRL y ARS
type RateQuote struct {
	UsdtBrl   float64   `json:"usdtBrl"`
	UsdtArs   float64   `json:"usdtArs"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetchedAt"`
}
