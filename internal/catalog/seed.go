package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	pkgerrors "github.com/freshcart/storefront/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type seedRecord struct {
	ID          string          `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"required"`
	Brand       string          `json:"brand" validate:"required"`
	Available   *bool           `json:"available"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Rating      *seedRating     `json:"rating"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
	CreatedAt   time.Time       `json:"created_at"`
}

type seedRating struct {
	Average float64 `json:"average" validate:"gte=0,lte=5"`
	Count   int     `json:"count" validate:"gte=0"`
}

var seedValidator = validator.New(validator.WithRequiredStructEnabled())

// DecodeSeed reads a JSON array of products. Records missing availability
// default to available and records missing a creation time get now.
func DecodeSeed(r io.Reader, now time.Time) ([]Product, error) {
	var records []seedRecord
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode seed file")
	}

	seen := make(map[string]struct{}, len(records))
	out := make([]Product, 0, len(records))
	for i, rec := range records {
		if err := seedValidator.Struct(rec); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("seed record %d", i))
		}
		if rec.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("seed record %d: price must be non-negative", i))
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("seed record %d: duplicate id %q", i, rec.ID))
		}
		seen[rec.ID] = struct{}{}

		p := Product{
			ID:          rec.ID,
			Name:        rec.Name,
			Description: rec.Description,
			Price:       rec.Price,
			Category:    rec.Category,
			Brand:       rec.Brand,
			Available:   rec.Available == nil || *rec.Available,
			Quantity:    rec.Quantity,
			ImageURL:    rec.ImageURL,
			CreatedAt:   rec.CreatedAt,
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now.UTC()
		}
		if rec.Rating != nil {
			p.Rating = &Rating{Average: rec.Rating.Average, Count: rec.Rating.Count}
		}
		out = append(out, p)
	}
	return out, nil
}
