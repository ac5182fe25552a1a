package search

import (
	"context"
	"errors"
	"strings"

	"shelfapi/internal/book"
	"shelfapi/internal/platform/bigbook"
)

// ErrInvalidRequest is returned before any upstream call is made.
var ErrInvalidRequest = errors.New("invalid search request")

// Catalog is the upstream catalog as seen by the search pipeline.
type Catalog interface {
	SearchPage(ctx context.Context, q bigbook.SearchQuery) (*bigbook.SearchResult, error)
	GetDetail(ctx context.Context, id string) (*book.Detail, error)
}

// DetailSource resolves a single book detail, possibly from cache.
type DetailSource interface {
	Detail(ctx context.Context, externalID string) (*book.Detail, error)
}

var allowedGenres = map[string]bool{
	"fantasy":  true,
	"romance":  true,
	"classics": true,
	"dystopia": true,
}

// NormalizeGenre returns the genre when it is on the allow-list and "" otherwise.
func NormalizeGenre(genre string) string {
	g := strings.ToLower(strings.TrimSpace(genre))
	if allowedGenres[g] {
		return g
	}
	return ""
}

// Length is a page-count bucket.
type Length string

const (
	LengthAny    Length = ""
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Contains reports whether pages falls inside the bucket.
func (l Length) Contains(pages int) bool {
	switch l {
	case LengthShort:
		return pages >= 0 && pages <= 250
	case LengthMedium:
		return pages >= 251 && pages <= 400
	case LengthLong:
		return pages >= 401
	default:
		return true
	}
}

// Request is the input of Service.Search.
type Request struct {
	Query string
	Genre string
	// Rating is a minimum star count in [0,5]; nil disables the filter.
	Rating *float64 `validate:"omitempty,gte=0,lte=5"`
	Length Length   `validate:"omitempty,oneof=short medium long"`
	// Seed makes the starting offset repeatable across calls.
	Seed string `validate:"max=128"`
}
