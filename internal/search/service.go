package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shelfapi/internal/book"
	"shelfapi/internal/logger"
	"shelfapi/internal/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Config holds the operational bounds of a search.
type Config struct {
	TargetCount       int
	PageSize          int
	MaxRequests       int
	MaxOffset         int
	ResultCap         int
	DetailConcurrency int
	// FallbackQuery replaces a blank query when set; otherwise a blank
	// query is rejected.
	FallbackQuery string
}

func DefaultConfig() Config {
	return Config{
		TargetCount:       12,
		PageSize:          20,
		MaxRequests:       6,
		MaxOffset:         1000,
		ResultCap:         12,
		DetailConcurrency: 4,
	}
}

var validate = validator.New()

// Service runs the collect then refine pipeline. It keeps no state between
// calls.
type Service struct {
	collector *Collector
	refiner   *Refiner
	cfg       Config
}

// withDefaults replaces non-positive bounds with their defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	for _, f := range []struct{ v, def *int }{
		{&c.TargetCount, &d.TargetCount},
		{&c.PageSize, &d.PageSize},
		{&c.MaxRequests, &d.MaxRequests},
		{&c.MaxOffset, &d.MaxOffset},
		{&c.ResultCap, &d.ResultCap},
		{&c.DetailConcurrency, &d.DetailConcurrency},
	} {
		if *f.v <= 0 {
			*f.v = *f.def
		}
	}
	return c
}

func NewService(catalog Catalog, details DetailSource, cfg Config) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		collector: NewCollector(catalog),
		refiner:   NewRefiner(details, cfg.DetailConcurrency),
		cfg:       cfg,
	}
}

// Search returns ranked, deduplicated books. Errors wrap ErrInvalidRequest
// or the upstream error that aborted the collection.
func (s *Service) Search(ctx context.Context, req Request) ([]book.Summary, error) {
	defer logger.Track(ctx, "search")()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = s.cfg.FallbackQuery
	}
	if query == "" {
		metrics.SearchesTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: query is required", ErrInvalidRequest)
	}
	if err := validate.Struct(req); err != nil {
		metrics.SearchesTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, describe(err))
	}
	genre := NormalizeGenre(req.Genre)

	col, err := s.collector.Collect(ctx, CollectParams{
		Query:       query,
		Genre:       genre,
		Seed:        req.Seed,
		TargetCount: s.cfg.TargetCount,
		PageSize:    s.cfg.PageSize,
		MaxRequests: s.cfg.MaxRequests,
		MaxOffset:   s.cfg.MaxOffset,
	})
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("upstream_error").Inc()
		return nil, err
	}
	metrics.SearchPagesFetched.Observe(float64(col.Requests))

	books, err := s.refiner.Refine(ctx, col.Books, RefineParams{
		MinStars: req.Rating,
		Length:   req.Length,
		Cap:      s.cfg.ResultCap,
	})
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("canceled").Inc()
		return nil, err
	}

	logger.For(ctx).WithFields(logrus.Fields{
		"query":        query,
		"genre":        genre,
		"seed":         req.Seed,
		"available":    col.Available,
		"start_offset": col.StartOffset,
		"pages":        col.Requests,
		"candidates":   len(col.Books),
		"results":      len(books),
	}).Info("search completed")
	metrics.SearchesTotal.WithLabelValues("ok").Inc()

	return books, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "Rating":
			msgs = append(msgs, "rating must be between 0 and 5")
		case "Length":
			msgs = append(msgs, "length must be one of short, medium, long")
		default:
			msgs = append(msgs, strings.ToLower(fe.Field())+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
