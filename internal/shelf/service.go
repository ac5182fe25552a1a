package shelf

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shelfapi/internal/logger"

	"github.com/google/uuid"
)

// Service provides shelf business logic.
type Service struct {
	repo    Repository
	details DetailSource
}

// NewService creates a new shelf service.
func NewService(repo Repository, details DetailSource) *Service {
	return &Service{repo: repo, details: details}
}

// List returns books on the given shelf, or every book when status is "".
func (s *Service) List(ctx context.Context, status string) ([]Book, error) {
	if status != "" {
		var err error
		if status, err = NormalizeStatus(status); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, status)
}

// Add shelves a catalog book. A book that is already shelved only changes
// status; otherwise its details are fetched from the catalog first. The
// returned flag reports whether a new record was created.
func (s *Service) Add(ctx context.Context, externalID, status string) (Book, bool, error) {
	status, err := NormalizeStatus(status)
	if err != nil {
		return Book{}, false, err
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return Book{}, false, ErrInvalidExternalID
	}

	existing, err := s.repo.GetByExternalID(ctx, externalID)
	switch {
	case err == nil:
		updated, err := s.repo.Update(ctx, existing.ID, Patch{Status: &status})
		if err != nil {
			return Book{}, false, err
		}
		logger.For(ctx).WithField("title", updated.Title).WithField("status", status).Info("moved shelved book")
		return updated, false, nil
	case !errors.Is(err, ErrNotFound):
		return Book{}, false, err
	}

	d, err := s.details.Detail(ctx, externalID)
	if err != nil {
		return Book{}, false, fmt.Errorf("fetch catalog book %s: %w", externalID, err)
	}
	if strings.TrimSpace(d.Title) == "" {
		return Book{}, false, fmt.Errorf("%w: %s", ErrIncompleteBook, externalID)
	}

	b := &Book{
		ExternalID:    externalID,
		Title:         d.Title,
		Authors:       d.Authors,
		CoverImageURL: d.CoverImageURL,
		AverageRating: d.AverageRating,
		Status:        status,
	}
	if b.Authors == nil {
		b.Authors = []string{}
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return Book{}, false, err
	}
	logger.For(ctx).WithField("title", b.Title).WithField("status", status).Info("shelved new book")
	return *b, true, nil
}

// Update applies a partial update to a shelved book.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Book, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Book{}, ErrNotFound
	}
	if p.Status != nil {
		status, err := NormalizeStatus(*p.Status)
		if err != nil {
			return Book{}, err
		}
		p.Status = &status
	}
	return s.repo.Update(ctx, id, p)
}

// Delete removes a book from the shelves.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
