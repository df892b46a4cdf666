// Package domain contains the core entities of the social book catalog.
package domain

import "math"

// Book is a catalog entry. Books are created by any authenticated user and are
// never edited or deleted.
type Book struct {
	Record
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedBy   string `json:"created_by"`
}

// RatingStats is the derived rating aggregate of a book.
// AverageRating is nil when ReviewCount is zero.
type RatingStats struct {
	ReviewCount   int      `json:"review_count"`
	AverageRating *float64 `json:"average_rating"`
}

// NewRatingStats builds stats from a review count and a raw mean.
func NewRatingStats(count int, mean float64) RatingStats {
	if count == 0 {
		return RatingStats{}
	}
	avg := RoundRating(mean)
	return RatingStats{ReviewCount: count, AverageRating: &avg}
}

// RoundRating rounds an average rating to one decimal place.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// BookSummary is a book with its creator's handle and rating aggregate.
type BookSummary struct {
	Book
	CreatorUsername string `json:"creator_username,omitempty"`
	RatingStats
}

// RatingDistribution counts reviews per star value, keyed 1..5.
type RatingDistribution map[int]int

// NewRatingDistribution returns a distribution with every star value present.
func NewRatingDistribution() RatingDistribution {
	d := make(RatingDistribution, MaxRating-MinRating+1)
	for stars := MinRating; stars <= MaxRating; stars++ {
		d[stars] = 0
	}
	return d
}

// BookDetail is a book with its aggregate, reviews and the viewer's shelf state.
type BookDetail struct {
	BookSummary
	Distribution RatingDistribution `json:"rating_distribution"`
	Reviews      []ReviewView       `json:"reviews"`
	ViewerStatus *ReadingStatus     `json:"viewer_status,omitempty"`
}
