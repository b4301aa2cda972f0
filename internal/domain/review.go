package domain

import (
	"time"
)

// Rating bounds, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a single user's rating and text for a book. A user has at most
// one review per ISBN.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	ISBN      string    `json:"isbn"`
	Text      string    `json:"review"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// BookReview is a review joined with its author's username.
type BookReview struct {
	UserID    string    `json:"-"`
	Username  string    `json:"username"`
	Text      string    `json:"review"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}
