package pagination

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id int
}

// fetchFromIDs simulates a store holding the given ids in descending order.
func fetchFromIDs(ids []int) FetchFunc[item, int] {
	return func(_ context.Context, cursor *int, limit int) ([]item, error) {
		var out []item
		for _, id := range ids {
			if cursor != nil && id >= *cursor {
				continue
			}
			out = append(out, item{id: id})
			if len(out) == limit {
				break
			}
		}
		return out, nil
	}
}

func itemKey(i item) int { return i.id }

func TestPaginateRejectsNonPositiveLimit(t *testing.T) {
	_, err := Paginate(context.Background(), nil, 0, fetchFromIDs(nil), itemKey)
	require.ErrorIs(t, err, ErrInvalidLimit)

	_, err = Paginate(context.Background(), nil, -3, fetchFromIDs(nil), itemKey)
	require.ErrorIs(t, err, ErrInvalidLimit)
}

func TestPaginateEmptySet(t *testing.T) {
	page, err := Paginate(context.Background(), nil, 10, fetchFromIDs(nil), itemKey)
	require.NoError(t, err)

	assert.Empty(t, page.Items)
	assert.Nil(t, page.NextCursor)
	assert.False(t, page.HasNext)
	assert.Equal(t, 0, page.Size)
}

func TestPaginateSinglePartialPage(t *testing.T) {
	page, err := Paginate(context.Background(), nil, 10, fetchFromIDs([]int{3, 2, 1}), itemKey)
	require.NoError(t, err)

	assert.Len(t, page.Items, 3)
	assert.False(t, page.HasNext)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, 1, *page.NextCursor)
}

func TestPaginateThreePagesOf25(t *testing.T) {
	ids := make([]int, 0, 25)
	for id := 25; id >= 1; id-- {
		ids = append(ids, id)
	}
	fetch := fetchFromIDs(ids)

	first, err := Paginate(context.Background(), nil, 10, fetch, itemKey)
	require.NoError(t, err)
	assert.Equal(t, 10, first.Size)
	assert.True(t, first.HasNext)
	require.NotNil(t, first.NextCursor)
	assert.Equal(t, 16, *first.NextCursor)

	second, err := Paginate(context.Background(), first.NextCursor, 10, fetch, itemKey)
	require.NoError(t, err)
	assert.Equal(t, 10, second.Size)
	assert.True(t, second.HasNext)

	third, err := Paginate(context.Background(), second.NextCursor, 10, fetch, itemKey)
	require.NoError(t, err)
	assert.Equal(t, 5, third.Size)
	assert.False(t, third.HasNext)
}

func TestPaginateWalkReproducesFullSetForAnyLimit(t *testing.T) {
	ids := make([]int, 0, 57)
	for id := 57; id >= 1; id-- {
		ids = append(ids, id)
	}
	fetch := fetchFromIDs(ids)

	for limit := 1; limit <= 12; limit++ {
		var seen []int
		var cursor *int
		for {
			page, err := Paginate(context.Background(), cursor, limit, fetch, itemKey)
			require.NoError(t, err)
			for _, it := range page.Items {
				seen = append(seen, it.id)
			}
			if !page.HasNext {
				break
			}
			cursor = page.NextCursor
		}
		require.Equal(t, ids, seen, "limit=%d", limit)
	}
}

// Timestamp keys are not unique, so a page boundary falling between two items
// with the same timestamp drops the second one: the next page resumes with a
// strict less-than comparison. This documents the behavior rather than
// asserting it away.
func TestPaginateTimestampTieAtBoundaryDropsDuplicateKey(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	type msg struct {
		id int
		at time.Time
	}
	msgs := []msg{
		{id: 4, at: base.Add(3 * time.Second)},
		{id: 3, at: base.Add(time.Second)},
		{id: 2, at: base.Add(time.Second)}, // same timestamp as id 3
		{id: 1, at: base},
	}
	fetch := func(_ context.Context, cursor *time.Time, limit int) ([]msg, error) {
		var out []msg
		for _, m := range msgs {
			if cursor != nil && !m.at.Before(*cursor) {
				continue
			}
			out = append(out, m)
			if len(out) == limit {
				break
			}
		}
		return out, nil
	}
	key := func(m msg) time.Time { return m.at }

	first, err := Paginate(context.Background(), nil, 2, fetch, key)
	require.NoError(t, err)
	require.Equal(t, []int{4, 3}, []int{first.Items[0].id, first.Items[1].id})
	require.True(t, first.HasNext)

	second, err := Paginate(context.Background(), first.NextCursor, 2, fetch, key)
	require.NoError(t, err)

	// id 2 shares its timestamp with the boundary item and is skipped.
	require.Len(t, second.Items, 1)
	assert.Equal(t, 1, second.Items[0].id)
}
