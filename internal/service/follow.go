package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	domainerrors "github.com/shelfsocial/shelfsocial-server/internal/errors"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

// FollowService manages the directed follow graph between users.
type FollowService struct {
	store  store.Store
	logger *slog.Logger
}

// NewFollowService creates a new follow service.
func NewFollowService(store store.Store, logger *slog.Logger) *FollowService {
	return &FollowService{store: store, logger: logger}
}

// Follow makes the caller follow targetID. Following again is a no-op.
func (s *FollowService) Follow(ctx context.Context, identity domain.Identity, targetID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	user, err := requireUser(identity)
	if err != nil {
		return err
	}
	if user.ID == targetID {
		return domainerrors.ErrSelfFollow
	}

	if _, err := s.store.GetUser(ctx, targetID); err != nil {
		return translate(err, "user not found")
	}

	if err := s.store.CreateFollow(ctx, user.ID, targetID, time.Now().UTC()); err != nil {
		return translate(err, "user not found")
	}

	s.logger.Info("user followed", "follower_id", user.ID, "following_id", targetID)
	return nil
}

// Unfollow removes the edge if present.
func (s *FollowService) Unfollow(ctx context.Context, identity domain.Identity, targetID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	user, err := requireUser(identity)
	if err != nil {
		return err
	}

	if err := s.store.DeleteFollow(ctx, user.ID, targetID); err != nil {
		return translate(err, "user not found")
	}

	s.logger.Info("user unfollowed", "follower_id", user.ID, "following_id", targetID)
	return nil
}

// Followers lists who follows userID, newest follow first.
func (s *FollowService) Followers(ctx context.Context, userID string, viewer domain.Identity) ([]domain.FollowUser, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, translate(err, "user not found")
	}
	users, err := s.store.ListFollowers(ctx, userID, viewer.UserID())
	if err != nil {
		return nil, translate(err, "user not found")
	}
	return users, nil
}

// Following lists whom userID follows, newest follow first.
func (s *FollowService) Following(ctx context.Context, userID string, viewer domain.Identity) ([]domain.FollowUser, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, translate(err, "user not found")
	}
	users, err := s.store.ListFollowing(ctx, userID, viewer.UserID())
	if err != nil {
		return nil, translate(err, "user not found")
	}
	return users, nil
}
