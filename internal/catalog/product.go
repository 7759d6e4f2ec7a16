package catalog

import (
	"time"

	"github.com/freshcart/storefront/pkg/db/models"
	"github.com/shopspring/decimal"
)

// Product is the read-only catalog view of a sellable item. Cart lines and
// wishlist entries hold copies of it.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Available   bool            `json:"available"`
	Quantity    int             `json:"quantity"`
	Rating      *Rating         `json:"rating,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Rating aggregates customer reviews. Average is within [0, 5].
type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// RatingAverage returns the average rating, or 0 for unrated products.
func (p Product) RatingAverage() float64 {
	if p.Rating == nil {
		return 0
	}
	return p.Rating.Average
}

// InStock reports whether the product can currently be ordered.
func (p Product) InStock() bool {
	return p.Available && p.Quantity > 0
}

// Clone returns a copy that shares no pointers with p.
func (p Product) Clone() Product {
	if p.Rating != nil {
		r := *p.Rating
		p.Rating = &r
	}
	return p
}

// FromModel maps a products row to its catalog view.
func FromModel(m models.Product) Product {
	p := Product{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Category:    m.Category,
		Brand:       m.Brand,
		Available:   m.Available,
		Quantity:    m.Quantity,
		CreatedAt:   m.CreatedAt,
	}
	if m.RatingAverage != nil {
		p.Rating = &Rating{Average: *m.RatingAverage, Count: m.RatingCount}
	}
	if m.ImageURL != nil {
		p.ImageURL = *m.ImageURL
	}
	return p
}

// ToModel maps a catalog product back to its row shape.
func ToModel(p Product) models.Product {
	m := models.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Brand:       p.Brand,
		Available:   p.Available,
		Quantity:    p.Quantity,
		CreatedAt:   p.CreatedAt,
	}
	if p.Rating != nil {
		avg := p.Rating.Average
		m.RatingAverage = &avg
		m.RatingCount = p.Rating.Count
	}
	if p.ImageURL != "" {
		url := p.ImageURL
		m.ImageURL = &url
	}
	return m
}
