package pagination

import (
	"context"
	"errors"
)

// ErrInvalidLimit is returned when a caller requests a non-positive page size.
var ErrInvalidLimit = errors.New("limit must be a positive integer")

// Page is one cursor page of items, newest first. NextCursor is the ordering
// key of the last item and is nil on an empty page.
type Page[T any, K any] struct {
	Items      []T  `json:"items"`
	NextCursor *K   `json:"next_cursor,omitempty"`
	HasNext    bool `json:"has_next"`
	Size       int  `json:"size"`
}

// FetchFunc loads up to limit items in descending key order. A nil cursor
// means the newest items; otherwise only items with key strictly less than
// the cursor are returned.
type FetchFunc[T any, K any] func(ctx context.Context, cursor *K, limit int) ([]T, error)

// KeyFunc extracts the ordering key of an item.
type KeyFunc[T any, K any] func(item T) K

// Paginate fetches one page using keyset pagination. It requests limit+1
// items so HasNext is known without a second query, then truncates.
//
// Repeatedly calling with the returned NextCursor walks the full set, with
// no duplicates and no gaps as long as keys are unique. When the key is a
// timestamp, two items sharing the exact value across a page boundary may be
// omitted or duplicated; feeds avoid this by using the integer id as key.
func Paginate[T any, K any](ctx context.Context, cursor *K, limit int, fetch FetchFunc[T, K], key KeyFunc[T, K]) (Page[T, K], error) {
	if limit < 1 {
		return Page[T, K]{}, ErrInvalidLimit
	}

	items, err := fetch(ctx, cursor, limit+1)
	if err != nil {
		return Page[T, K]{}, err
	}

	hasNext := len(items) > limit
	if hasNext {
		items = items[:limit]
	}

	var next *K
	if len(items) > 0 {
		last := key(items[len(items)-1])
		next = &last
	}

	if items == nil {
		items = []T{}
	}
	return Page[T, K]{Items: items, NextCursor: next, HasNext: hasNext, Size: len(items)}, nil
}
