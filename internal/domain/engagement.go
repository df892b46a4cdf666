package domain

import "time"

// MaxCommentLength is the comment limit in characters, after trimming.
const MaxCommentLength = 500

// Like marks that a user liked a review. Unique per (user, review).
type Like struct {
	UserID    string    `json:"user_id"`
	ReviewID  string    `json:"review_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeStatus is the like count of a review and whether the viewer liked it.
type LikeStatus struct {
	LikeCount      int  `json:"like_count"`
	ViewerHasLiked bool `json:"viewer_has_liked"`
}

// Comment is free text attached to a review by its author.
type Comment struct {
	Record
	ReviewID string `json:"review_id"`
	UserID   string `json:"user_id"`
	Text     string `json:"text"`
}

// OwnerID implements Owned.
func (c *Comment) OwnerID() string { return c.UserID }

// CommentView is a comment annotated for the viewer.
type CommentView struct {
	Comment
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	IsMine      bool   `json:"is_mine"`
}
