package catalog

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var baseTime = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func product(id, category, brand string, price int64, rating *Rating, age int) Product {
	return Product{
		ID:        id,
		Name:      fmt.Sprintf("%s %s", brand, id),
		Category:  category,
		Brand:     brand,
		Price:     decimal.NewFromInt(price),
		Available: true,
		Quantity:  10,
		Rating:    rating,
		CreatedAt: baseTime.Add(-time.Duration(age) * time.Hour),
	}
}

func rated(avg float64) *Rating {
	return &Rating{Average: avg, Count: 3}
}

// tenProducts has three milk items priced 50, 120 and 80 and two unrated items.
func tenProducts() []Product {
	out := []Product{
		product("p1", "milk", "Amul", 50, rated(4.5), 1),
		product("p2", "milk", "Nandini", 120, rated(4.0), 2),
		product("p3", "milk", "Amul", 80, rated(3.5), 3),
		product("p4", "curd", "Amul", 40, nil, 4),
		product("p5", "curd", "Mother Dairy", 45, rated(4.8), 5),
		product("p6", "paneer", "Amul", 90, rated(2.0), 6),
		product("p7", "paneer", "Nandini", 110, nil, 7),
		product("p8", "ghee", "Amul", 600, rated(4.2), 8),
		product("p9", "butter", "Amul", 55, rated(3.9), 9),
		product("p10", "cheese", "Britannia", 150, rated(5.0), 10),
	}
	out[6].Description = "Fresh malai paneer"
	out[8].Available = false
	out[9].Quantity = 0
	return out
}

func ids(products []Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func intPtr(v int) *int {
	return &v
}
