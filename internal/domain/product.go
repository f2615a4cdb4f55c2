package domain

import "time"

type Product struct {
	ID          string    `json:"id"`
	CategoryID  *string   `json:"categoryId,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency"`
	Image       string    `json:"image,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}
