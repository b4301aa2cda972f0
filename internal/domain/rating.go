package domain

// RatingStats are the raw review totals for one book, read in a single query.
type RatingStats struct {
	Book        Book
	ReviewCount int
	RatingSum   int
}

// RatingSummary is a review count with its mean rating. AverageRating is nil
// when there are no reviews.
type RatingSummary struct {
	ReviewCount   int
	AverageRating *float64
}

// AggregateRating is the public JSON summary of a book and its local reviews.
type AggregateRating struct {
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Year          int      `json:"year"`
	ISBN          string   `json:"isbn"`
	ReviewCount   int      `json:"review_count"`
	AverageRating *float64 `json:"average_rating"`
}

// NewRatingSummary computes the mean of count ratings totalling sum, rounded
// half away from zero to two decimals.
func NewRatingSummary(count, sum int) RatingSummary {
	if count <= 0 {
		return RatingSummary{}
	}
	avg := roundMean(sum, count)
	return RatingSummary{ReviewCount: count, AverageRating: &avg}
}

// SummarizeReviews applies NewRatingSummary to a list of reviews.
func SummarizeReviews(reviews []BookReview) RatingSummary {
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return NewRatingSummary(len(reviews), sum)
}

// NewAggregateRating builds the public summary from raw totals.
func NewAggregateRating(stats *RatingStats) *AggregateRating {
	summary := NewRatingSummary(stats.ReviewCount, stats.RatingSum)
	return &AggregateRating{
		Title:         stats.Book.Title,
		Author:        stats.Book.Author,
		Year:          stats.Book.Year,
		ISBN:          stats.Book.ISBN,
		ReviewCount:   summary.ReviewCount,
		AverageRating: summary.AverageRating,
	}
}

// roundMean rounds sum/count to hundredths in integer arithmetic, so 107/40
// gives 2.68.
func roundMean(sum, count int) float64 {
	neg := sum < 0
	if neg {
		sum = -sum
	}
	hundredths := (sum*200 + count) / (2 * count)
	if neg {
		hundredths = -hundredths
	}
	return float64(hundredths) / 100
}
