package models

import "github.com/shopspring/decimal"

// Product is a catalog entry. Values are never mutated after the catalog fetch.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

// Player is a registered account. Balance is not part of it.
type Player struct {
	ID           int
	Username     string
	PasswordHash string
}
