package domain

import "time"

// Follow is a directed edge from follower to followed user. No self-loops.
type Follow struct {
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// FollowUser is a user listed as a follower or followee.
type FollowUser struct {
	UserSummary
	FollowedAt time.Time `json:"followed_at"`
}

// Profile is the assembled public profile of a user.
type Profile struct {
	User           UserSummary    `json:"user"`
	MemberSince    time.Time      `json:"member_since"`
	FollowersCount int            `json:"followers_count"`
	FollowingCount int            `json:"following_count"`
	IsFollowing    bool           `json:"is_following"`
	IsSelf         bool           `json:"is_self"`
	RecentReviews  []RecentReview `json:"recent_reviews"`
}
