package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

const (
	recentReviewLimit = 5

	minSearchQuery     = 2
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

// ProfileService assembles public profiles and searches users.
type ProfileService struct {
	store  store.Store
	logger *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(store store.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: store, logger: logger}
}

// GetProfile returns a user's profile as seen by viewer. A failure loading
// recent reviews is logged and leaves the list empty.
func (s *ProfileService) GetProfile(ctx context.Context, userID string, viewer domain.Identity) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, translate(err, "user not found")
	}

	followers, following, err := s.store.CountFollows(ctx, userID)
	if err != nil {
		return nil, translate(err, "user not found")
	}

	totalReviews, err := s.store.CountUserReviews(ctx, userID)
	if err != nil {
		return nil, translate(err, "user not found")
	}

	isFollowing := false
	if viewer.IsAuthenticated() && !viewer.Is(userID) {
		isFollowing, err = s.store.IsFollowing(ctx, viewer.UserID(), userID)
		if err != nil {
			return nil, translate(err, "user not found")
		}
	}

	recent, err := s.store.ListRecentReviewsByUser(ctx, userID, recentReviewLimit)
	if err != nil {
		s.logger.Warn("failed to load recent reviews",
			"user_id", userID,
			"error", err,
		)
		recent = []domain.RecentReview{}
	}

	return &domain.Profile{
		User: domain.UserSummary{
			ID:           user.ID,
			Username:     user.Username,
			DisplayName:  user.DisplayName,
			TotalReviews: totalReviews,
			IsFollowing:  isFollowing,
		},
		MemberSince:    user.CreatedAt,
		FollowersCount: followers,
		FollowingCount: following,
		IsFollowing:    isFollowing,
		IsSelf:         viewer.Is(userID),
		RecentReviews:  recent,
	}, nil
}

// SearchUsers matches usernames and display names. Queries shorter than two
// characters return no results rather than an error.
func (s *ProfileService) SearchUsers(ctx context.Context, query string, limit int) ([]domain.UserSummary, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchQuery {
		return []domain.UserSummary{}, nil
	}

	switch {
	case limit <= 0:
		limit = defaultSearchLimit
	case limit > maxSearchLimit:
		limit = maxSearchLimit
	}

	users, err := s.store.SearchUsers(ctx, query, limit)
	if err != nil {
		return nil, translate(err, "user not found")
	}
	return users, nil
}
