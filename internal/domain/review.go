package domain

import "time"

// Review constraints.
const (
	MinRating           = 1
	MaxRating           = 5
	MinReviewBodyLength = 10
)

// Owned is implemented by resources that belong to a single user.
type Owned interface {
	OwnerID() string
}

// Review is a rating with body text. A user has at most one review per book.
type Review struct {
	Record
	BookID string `json:"book_id"`
	UserID string `json:"user_id"`
	Rating int    `json:"rating"`
	Body   string `json:"body"`
}

// OwnerID implements Owned.
func (r *Review) OwnerID() string { return r.UserID }

// ReviewView is a review as shown on a book page.
type ReviewView struct {
	Review
	Username       string `json:"username"`
	DisplayName    string `json:"display_name,omitempty"`
	LikeCount      int    `json:"like_count"`
	CommentCount   int    `json:"comment_count"`
	ViewerHasLiked bool   `json:"viewer_has_liked"`
}

// RecentReview is a review as listed on its author's profile.
type RecentReview struct {
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	BookTitle  string    `json:"book_title"`
	BookAuthor string    `json:"book_author,omitempty"`
	Rating     int       `json:"rating"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}
