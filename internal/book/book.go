package book

// Summary is the catalogue view of a book returned by search.
type Summary struct {
	ExternalID    string   `json:"externalId"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	CoverImageURL *string  `json:"coverImageUrl,omitempty"`
	// AverageRating is on the upstream 0..1 scale; nil when unknown.
	AverageRating *float64 `json:"averageRating,omitempty"`
}

// Detail is a Summary plus the fields only the detail endpoint returns.
type Detail struct {
	Summary
	NumberOfPages *int    `json:"numberOfPages"`
	Description   *string `json:"description,omitempty"`
}

// RatingOrZero returns the average rating, treating unknown as 0.
func (s Summary) RatingOrZero() float64 {
	if s.AverageRating == nil {
		return 0
	}
	return *s.AverageRating
}
