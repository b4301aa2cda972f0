package domain

import (
	"time"
)

// Book is a catalog entry. Books are imported once and never modified.
type Book struct {
	ID        string    `json:"id"`
	ISBN      string    `json:"isbn"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Year      int       `json:"year"`
	CreatedAt time.Time `json:"created_at"`
}

// User is the part of an account this service reads: its id and display name.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ExternalRating is a snapshot of the third-party rating for a book. It is
// fetched per request and never stored.
type ExternalRating struct {
	ISBN          string  `json:"isbn"`
	ReviewCount   int     `json:"review_count"`
	AverageRating float64 `json:"average_rating"`
}

// BookView is everything shown on a book's detail page.
type BookView struct {
	Book          Book            `json:"book"`
	Reviews       []BookReview    `json:"reviews"`
	ReviewCount   int             `json:"review_count"`
	AverageRating *float64        `json:"average_rating"`
	External      *ExternalRating `json:"external_rating"`
	HasReviewed   bool            `json:"has_reviewed"`
}
