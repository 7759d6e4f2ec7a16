package enums

import (
	"fmt"
	"strings"
)

// SortKey orders catalog query results.
type SortKey string

const (
	SortNewest     SortKey = "newest"
	SortPriceAsc   SortKey = "price_asc"
	SortPriceDesc  SortKey = "price_desc"
	SortRatingDesc SortKey = "rating_desc"
)

var validSortKeys = []SortKey{
	SortNewest,
	SortPriceAsc,
	SortPriceDesc,
	SortRatingDesc,
}

// String implements fmt.Stringer.
func (k SortKey) String() string {
	return string(k)
}

// IsValid reports whether the value is a known SortKey.
func (k SortKey) IsValid() bool {
	for _, candidate := range validSortKeys {
		if candidate == k {
			return true
		}
	}
	return false
}

// OrDefault returns k when valid and SortNewest otherwise.
func (k SortKey) OrDefault() SortKey {
	if k.IsValid() {
		return k
	}
	return SortNewest
}

// ParseSortKey converts raw input into a SortKey. Blank input maps to SortNewest.
func ParseSortKey(value string) (SortKey, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return SortNewest, nil
	}
	for _, candidate := range validSortKeys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort key %q", value)
}

// SortKeys lists the supported keys in display order.
func SortKeys() []SortKey {
	out := make([]SortKey, len(validSortKeys))
	copy(out, validSortKeys)
	return out
}
