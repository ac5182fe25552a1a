package search

import (
	"cmp"
	"context"
	"slices"

	"shelfapi/internal/book"
	"shelfapi/internal/logger"
	"shelfapi/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// RefineParams holds the optional filters and the output cap. A Cap of zero
// or less yields an empty result.
type RefineParams struct {
	// MinStars is a star count in [0,5]; nil disables the rating filter.
	MinStars *float64
	Length   Length
	Cap      int
}

// Refiner filters, ranks and caps collected candidates.
type Refiner struct {
	details DetailSource
	// batch is how many detail fetches may be in flight at once.
	batch int
}

func NewRefiner(details DetailSource, concurrency int) *Refiner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Refiner{details: details, batch: concurrency}
}

// Refine never fails on a detail fetch: a candidate whose detail cannot be
// fetched is dropped. It only returns an error when ctx is done.
func (r *Refiner) Refine(ctx context.Context, candidates []book.Summary, p RefineParams) ([]book.Summary, error) {
	limit := max(0, p.Cap)
	kept := filterByRating(candidates, p.MinStars)

	if p.Length != LengthAny {
		var err error
		kept, err = r.filterByLength(ctx, kept, p.Length, limit)
		if err != nil {
			return nil, err
		}
	}

	rank(kept)

	if len(kept) > limit {
		kept = kept[:limit]
	}
	return kept, nil
}

// filterByRating keeps candidates whose rating is unknown or at least
// minStars/5 on the upstream 0..1 scale.
func filterByRating(candidates []book.Summary, minStars *float64) []book.Summary {
	out := make([]book.Summary, 0, len(candidates))
	for _, c := range candidates {
		if minStars == nil || c.AverageRating == nil || *c.AverageRating >= *minStars/5 {
			out = append(out, c)
		}
	}
	return out
}

// filterByLength fetches details in input order, in batches of r.batch, and
// stops issuing fetches once limit matches have been found.
func (r *Refiner) filterByLength(ctx context.Context, candidates []book.Summary, length Length, limit int) ([]book.Summary, error) {
	out := make([]book.Summary, 0, min(limit, len(candidates)))

	for start := 0; start < len(candidates) && len(out) < limit; start += r.batch {
		end := min(start+r.batch, len(candidates))
		batch := candidates[start:end]
		results := make([]fetchResult[*book.Detail], len(batch))

		g, gctx := errgroup.WithContext(ctx)
		for i, c := range batch {
			g.Go(func() error {
				d, err := r.details.Detail(gctx, c.ExternalID)
				results[i] = fetched(d, err, dropOnFailure)
				return nil
			})
		}
		_ = g.Wait()

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for i, res := range results {
			if res.dropped() {
				metrics.DetailFetchFailures.Inc()
				logger.For(ctx).WithError(res.err).
					WithField("external_id", batch[i].ExternalID).
					Warn("dropping candidate: detail fetch failed")
				continue
			}
			if res.value == nil || res.value.NumberOfPages == nil {
				continue
			}
			if length.Contains(*res.value.NumberOfPages) {
				out = append(out, batch[i])
				if len(out) >= limit {
					break
				}
			}
		}
	}
	return out, nil
}

// rank orders by average rating, highest first, treating unknown as 0.
// Equal ratings keep their input order.
func rank(books []book.Summary) {
	slices.SortStableFunc(books, func(a, b book.Summary) int {
		return cmp.Compare(b.RatingOrZero(), a.RatingOrZero())
	})
}
