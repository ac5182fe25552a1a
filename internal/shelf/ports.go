package shelf

import (
	"context"

	"shelfapi/internal/book"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=shelf

// Repository defines the contract for shelf storage.
type Repository interface {
	// List returns shelved books newest first; an empty status lists all.
	List(ctx context.Context, status string) ([]Book, error)
	GetByExternalID(ctx context.Context, externalID string) (Book, error)
	// Create inserts b, or only moves it to b.Status when the external ID
	// is already shelved. It fills in ID and timestamps.
	Create(ctx context.Context, b *Book) error
	Update(ctx context.Context, id string, p Patch) (Book, error)
	Delete(ctx context.Context, id string) error
}

// DetailSource looks up catalog details for a book being shelved.
type DetailSource interface {
	Detail(ctx context.Context, externalID string) (*book.Detail, error)
}
