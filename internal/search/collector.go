package search

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"shelfapi/internal/book"
	"shelfapi/internal/platform/bigbook"
)

// CollectParams bounds one collection pass.
type CollectParams struct {
	Query       string
	Genre       string
	Seed        string
	TargetCount int
	PageSize    int
	// MaxRequests counts every page call, the sizing call included.
	MaxRequests int
	// MaxOffset is the highest offset the upstream accepts.
	MaxOffset int
}

// Collection is the outcome of Collect. Books keep upstream arrival order.
type Collection struct {
	Books       []book.Summary
	Available   int
	StartOffset int
	Requests    int
}

// Collector pages through upstream search results, dropping duplicate editions.
type Collector struct {
	catalog Catalog
}

func NewCollector(catalog Catalog) *Collector {
	return &Collector{catalog: catalog}
}

// Collect returns at most p.TargetCount books with pairwise distinct
// normalized titles. Any page failure aborts the pass.
func (c *Collector) Collect(ctx context.Context, p CollectParams) (Collection, error) {
	var col Collection

	sizing := c.fetchPage(ctx, p, 0)
	col.Requests++
	if sizing.aborts() {
		return Collection{}, fmt.Errorf("sizing page: %w", sizing.err)
	}
	col.Available = sizing.value.Available
	col.StartOffset = StartOffset(p.Seed, col.Available, p.PageSize, p.MaxOffset)

	seen := titleSet{}
	books := make([]book.Summary, 0, max(0, p.TargetCount))

	offset := col.StartOffset
	var page *bigbook.SearchResult
	if offset == 0 {
		page = sizing.value
	}

	for len(books) < p.TargetCount {
		if page == nil {
			if col.Requests >= p.MaxRequests || offset > p.MaxOffset {
				break
			}
			res := c.fetchPage(ctx, p, offset)
			col.Requests++
			if res.aborts() {
				return Collection{}, fmt.Errorf("page at offset %d: %w", offset, res.err)
			}
			page = res.value
		}
		if page.Empty() {
			break
		}

		for _, b := range page.Books {
			if strings.TrimSpace(b.Title) == "" || !seen.admit(b.Title) {
				continue
			}
			books = append(books, b)
			if len(books) >= p.TargetCount {
				break
			}
		}

		offset += p.PageSize
		page = nil
	}

	col.Books = books
	return col, nil
}

func (c *Collector) fetchPage(ctx context.Context, p CollectParams, offset int) fetchResult[*bigbook.SearchResult] {
	res, err := c.catalog.SearchPage(ctx, bigbook.SearchQuery{
		Query:  p.Query,
		Genre:  p.Genre,
		Number: p.PageSize,
		Offset: offset,
	})
	if err == nil && res == nil {
		res = &bigbook.SearchResult{}
	}
	return fetched(res, err, abortOnFailure)
}

// StartOffset derives a page-aligned starting offset from seed. The same
// seed and available count always give the same offset in
// [0, min(maxOffset, available-pageSize)]. Without a seed, or when everything
// fits in one page, it is 0.
func StartOffset(seed string, available, pageSize, maxOffset int) int {
	if seed == "" || pageSize <= 0 || available <= pageSize {
		return 0
	}

	ceiling := min(maxOffset, max(0, available-pageSize))
	if ceiling <= 0 {
		return 0
	}

	offset := int(seedNumber(seed) % uint64(ceiling+1))
	return offset / pageSize * pageSize
}

// seedNumber reads the last six characters of seed as a number, hashing
// seeds that are not numeric.
func seedNumber(seed string) uint64 {
	tail := seed
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	if n, err := strconv.ParseUint(tail, 10, 64); err == nil {
		return n
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return h.Sum64()
}
