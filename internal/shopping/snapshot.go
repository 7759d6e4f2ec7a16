package shopping

import (
	"bytes"
	"encoding/json"
	"errors"
)

// envelope is the persisted form of a collection. Revision increases by one
// on every commit from any engine sharing the key.
type envelope[T any] struct {
	Revision int64 `json:"revision"`
	Items    []T   `json:"items"`
}

var errEmptyPayload = errors.New("empty payload")

func encodeCollection[T any](revision int64, items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(envelope[T]{Revision: revision, Items: items})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// decodeCollection accepts the envelope or a bare JSON list, which carries
// revision 0.
func decodeCollection[T any](raw string) ([]T, int64, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 {
		return nil, 0, errEmptyPayload
	}

	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, 0, err
		}
		return items, 0, nil
	}

	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, 0, err
	}
	if env.Revision < 0 {
		return nil, 0, errors.New("negative revision")
	}
	return env.Items, env.Revision, nil
}

// peekRevision reads only the revision of a stored payload.
func peekRevision(raw string) (int64, bool) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 {
		return 0, false
	}
	if data[0] == '[' {
		return 0, true
	}
	var head struct {
		Revision int64 `json:"revision"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0, false
	}
	return head.Revision, true
}

// sanitizeCart drops lines without a product id or with quantity below 1 and
// merges duplicate ids into the first occurrence.
func sanitizeCart(lines []CartLine) ([]CartLine, bool) {
	out := make([]CartLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	changed := false
	for _, line := range lines {
		if line.Product.ID == "" || line.Quantity < 1 {
			changed = true
			continue
		}
		if i, ok := index[line.Product.ID]; ok {
			out[i].Quantity += line.Quantity
			changed = true
			continue
		}
		index[line.Product.ID] = len(out)
		out = append(out, line)
	}
	return out, changed
}

// sanitizeWishlist drops entries without a product id and keeps the first of
// any duplicate ids.
func sanitizeWishlist(entries []WishlistEntry) ([]WishlistEntry, bool) {
	out := make([]WishlistEntry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	changed := false
	for _, entry := range entries {
		if entry.Product.ID == "" {
			changed = true
			continue
		}
		if _, dup := seen[entry.Product.ID]; dup {
			changed = true
			continue
		}
		seen[entry.Product.ID] = struct{}{}
		out = append(out, entry)
	}
	return out, changed
}
