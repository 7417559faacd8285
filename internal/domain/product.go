package domain

import (
	"time"
)

// Product is a catalog product referenced by reviews. Products are owned by
// catalog management; this service reads them for validation and analytics
// joins but never mutates them.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}
