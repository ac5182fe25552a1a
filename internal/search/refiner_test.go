package search

import (
	"context"
	"errors"
	"testing"

	"shelfapi/internal/book"
	"shelfapi/internal/platform/bigbook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefiner_NoFilters(t *testing.T) {
	candidates := []book.Summary{
		summary("a", "A", 0.5),
		summary("b", "B"),
		summary("c", "C", 0.9),
		summary("d", "D", 0.5),
		summary("e", "E", 0.7),
	}
	r := NewRefiner(&fakeCatalog{}, 1)

	t.Run("ranks by rating, stable, unknown as zero", func(t *testing.T) {
		got, err := r.Refine(context.Background(), candidates, RefineParams{Cap: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "e", "a", "d", "b"}, ids(got))
	})

	t.Run("result is a prefix of the ranking", func(t *testing.T) {
		got, err := r.Refine(context.Background(), candidates, RefineParams{Cap: 3})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "e", "a"}, ids(got))
	})

	t.Run("does not reorder the caller's slice", func(t *testing.T) {
		_, err := r.Refine(context.Background(), candidates, RefineParams{Cap: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(candidates))
	})
}

func TestRefiner_RatingFilter(t *testing.T) {
	candidates := []book.Summary{
		summary("high", "High", 0.9),
		summary("low", "Low", 0.5),
		summary("unknown", "Unknown"),
		summary("edge", "Edge", 0.8),
	}

	got, err := NewRefiner(&fakeCatalog{}, 1).Refine(context.Background(), candidates, RefineParams{
		MinStars: ptr(4.0),
		Cap:      10,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"high", "edge", "unknown"}, ids(got))
}

func TestRefiner_LengthFilter(t *testing.T) {
	candidates := []book.Summary{
		summary("1", "One", 0.6),
		summary("2", "Two", 0.7),
		summary("3", "Three", 0.8),
		summary("4", "Four", 0.9),
		summary("5", "Five", 0.5),
	}
	newCatalog := func() *fakeCatalog {
		return &fakeCatalog{
			details: map[string]*book.Detail{
				"1": detail("1", 120),
				"2": detail("2", 300),
				"4": detail("4", 250),
				"5": detail("5", 900),
			},
			detailErrs: map[string]error{
				"3": &bigbook.UpstreamError{Op: "detail", StatusCode: 500, Err: errors.New("boom")},
			},
		}
	}

	for _, concurrency := range []int{1, 2, 5} {
		t.Run("one failed detail is dropped", func(t *testing.T) {
			catalog := newCatalog()
			r := NewRefiner(catalog, concurrency)

			short, err := r.Refine(context.Background(), candidates, RefineParams{Length: LengthShort, Cap: 10})
			require.NoError(t, err)
			assert.Equal(t, []string{"4", "1"}, ids(short))

			medium, err := r.Refine(context.Background(), candidates, RefineParams{Length: LengthMedium, Cap: 10})
			require.NoError(t, err)
			assert.Equal(t, []string{"2"}, ids(medium))

			long, err := r.Refine(context.Background(), candidates, RefineParams{Length: LengthLong, Cap: 10})
			require.NoError(t, err)
			assert.Equal(t, []string{"5"}, ids(long))
		})
	}

	t.Run("stops fetching once cap matches are found", func(t *testing.T) {
		catalog := &fakeCatalog{details: map[string]*book.Detail{
			"1": detail("1", 100),
			"2": detail("2", 110),
			"3": detail("3", 120),
			"4": detail("4", 130),
			"5": detail("5", 140),
		}}

		got, err := NewRefiner(catalog, 1).Refine(context.Background(), candidates, RefineParams{Length: LengthShort, Cap: 2})
		require.NoError(t, err)

		assert.Equal(t, []string{"2", "1"}, ids(got))
		assert.Equal(t, []string{"1", "2"}, catalog.detailCalls)
	})

	t.Run("batches overshoot by at most one batch", func(t *testing.T) {
		catalog := &fakeCatalog{details: map[string]*book.Detail{
			"1": detail("1", 100),
			"2": detail("2", 110),
			"3": detail("3", 120),
			"4": detail("4", 130),
			"5": detail("5", 140),
		}}

		got, err := NewRefiner(catalog, 2).Refine(context.Background(), candidates, RefineParams{Length: LengthShort, Cap: 3})
		require.NoError(t, err)

		assert.Equal(t, []string{"3", "2", "1"}, ids(got))
		assert.Len(t, catalog.detailCalls, 4)
	})

	t.Run("missing page count is skipped", func(t *testing.T) {
		catalog := &fakeCatalog{details: map[string]*book.Detail{
			"1": detail("1", 0),
			"2": detail("2", 200),
		}}

		got, err := NewRefiner(catalog, 1).Refine(context.Background(), candidates[:2], RefineParams{Length: LengthShort, Cap: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"2"}, ids(got))
	})

	t.Run("rating filter runs before any detail fetch", func(t *testing.T) {
		catalog := newCatalog()

		got, err := NewRefiner(catalog, 1).Refine(context.Background(), candidates, RefineParams{
			MinStars: ptr(4.5),
			Length:   LengthShort,
			Cap:      10,
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"4"}, ids(got))
		assert.Equal(t, []string{"4"}, catalog.detailCalls)
	})

	t.Run("negative cap returns nothing and fetches nothing", func(t *testing.T) {
		catalog := newCatalog()

		got, err := NewRefiner(catalog, 2).Refine(context.Background(), candidates, RefineParams{Length: LengthShort, Cap: -1})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Empty(t, catalog.detailCalls)
	})

	t.Run("canceled context fails the refinement", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewRefiner(newCatalog(), 2).Refine(ctx, candidates, RefineParams{Length: LengthShort, Cap: 10})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLength_Contains(t *testing.T) {
	assert.True(t, LengthShort.Contains(0))
	assert.True(t, LengthShort.Contains(250))
	assert.False(t, LengthShort.Contains(251))
	assert.True(t, LengthMedium.Contains(251))
	assert.True(t, LengthMedium.Contains(400))
	assert.False(t, LengthMedium.Contains(401))
	assert.True(t, LengthLong.Contains(401))
	assert.True(t, LengthLong.Contains(5000))
	assert.True(t, LengthAny.Contains(1))
}
