package shelf

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no shelved book has the given ID.
	ErrNotFound = errors.New("book not found")
	// ErrInvalidStatus is returned for a status outside TBR, READ, DNF.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidExternalID is returned for a blank catalog ID.
	ErrInvalidExternalID = errors.New("external id is required")
	// ErrIncompleteBook is returned when the catalog detail lacks a title.
	ErrIncompleteBook = errors.New("catalog book has no title")
)

const (
	StatusTBR  = "TBR"
	StatusRead = "READ"
	StatusDNF  = "DNF"
)

// NormalizeStatus upper-cases status and checks it against the shelves.
func NormalizeStatus(status string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(status))
	switch s {
	case StatusTBR, StatusRead, StatusDNF:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
}

// Book is a catalog book saved on one of the user's shelves.
type Book struct {
	ID            string     `json:"id"`
	ExternalID    string     `json:"externalId"`
	Title         string     `json:"title"`
	Authors       []string   `json:"authors"`
	CoverImageURL *string    `json:"coverImageUrl,omitempty"`
	AverageRating *float64   `json:"averageRating,omitempty"`
	Status        string     `json:"status"`
	UserRating    *int       `json:"userRating,omitempty"`
	UserReview    *string    `json:"userReview,omitempty"`
	StartedDate   *time.Time `json:"startedDate,omitempty"`
	FinishedDate  *time.Time `json:"finishedDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Status       *string
	UserRating   *int
	UserReview   *string
	StartedDate  *time.Time
	FinishedDate *time.Time
}

func (p Patch) IsEmpty() bool {
	return p.Status == nil && p.UserRating == nil && p.UserReview == nil &&
		p.StartedDate == nil && p.FinishedDate == nil
}
