package search

import (
	"context"
	"fmt"
	"sync"

	"shelfapi/internal/book"
	"shelfapi/internal/platform/bigbook"

	"github.com/stretchr/testify/mock"
)

// fakeCatalog serves pages from a function and details from maps.
type fakeCatalog struct {
	mu          sync.Mutex
	pages       func(q bigbook.SearchQuery) (*bigbook.SearchResult, error)
	details     map[string]*book.Detail
	detailErrs  map[string]error
	searchCalls []bigbook.SearchQuery
	detailCalls []string
}

func (f *fakeCatalog) SearchPage(ctx context.Context, q bigbook.SearchQuery) (*bigbook.SearchResult, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, q)
	f.mu.Unlock()
	return f.pages(q)
}

func (f *fakeCatalog) GetDetail(ctx context.Context, id string) (*book.Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls = append(f.detailCalls, id)
	if err, ok := f.detailErrs[id]; ok {
		return nil, err
	}
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return nil, &bigbook.UpstreamError{Op: "detail", StatusCode: 404, Err: fmt.Errorf("no book %s", id)}
}

func (f *fakeCatalog) Detail(ctx context.Context, id string) (*book.Detail, error) {
	return f.GetDetail(ctx, id)
}

func (f *fakeCatalog) offsets() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.searchCalls))
	for i, q := range f.searchCalls {
		out[i] = q.Offset
	}
	return out
}

// pagedCatalog serves fixed pages keyed by offset; missing offsets are empty.
func pagedCatalog(available int, pages map[int][]book.Summary) *fakeCatalog {
	return &fakeCatalog{
		pages: func(q bigbook.SearchQuery) (*bigbook.SearchResult, error) {
			return &bigbook.SearchResult{Available: available, Books: pages[q.Offset]}, nil
		},
	}
}

func summary(id, title string, rating ...float64) book.Summary {
	s := book.Summary{ExternalID: id, Title: title, Authors: []string{}}
	if len(rating) > 0 {
		r := rating[0]
		s.AverageRating = &r
	}
	return s
}

func detail(id string, pages int) *book.Detail {
	d := &book.Detail{Summary: summary(id, "Book "+id)}
	if pages > 0 {
		d.NumberOfPages = &pages
	}
	return d
}

func ids(books []book.Summary) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ExternalID
	}
	return out
}

func ptr[T any](v T) *T { return &v }

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) SearchPage(ctx context.Context, q bigbook.SearchQuery) (*bigbook.SearchResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bigbook.SearchResult), args.Error(1)
}

func (m *mockCatalog) GetDetail(ctx context.Context, id string) (*book.Detail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*book.Detail), args.Error(1)
}
