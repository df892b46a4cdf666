package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	domainerrors "github.com/shelfsocial/shelfsocial-server/internal/errors"
	"github.com/shelfsocial/shelfsocial-server/internal/id"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

// CommentRequest is the body of a comment create or edit.
type CommentRequest struct {
	Text string `json:"text"`
}

// EngagementService handles likes and comments on reviews.
type EngagementService struct {
	store  store.Store
	logger *slog.Logger
}

// NewEngagementService creates a new engagement service.
func NewEngagementService(store store.Store, logger *slog.Logger) *EngagementService {
	return &EngagementService{store: store, logger: logger}
}

// Like records the caller's like and returns the recomputed status.
func (s *EngagementService) Like(ctx context.Context, identity domain.Identity, reviewID string) (domain.LikeStatus, error) {
	if err := ctx.Err(); err != nil {
		return domain.LikeStatus{}, err
	}
	user, err := requireUser(identity)
	if err != nil {
		return domain.LikeStatus{}, err
	}

	if _, err := s.store.GetReview(ctx, reviewID); err != nil {
		return domain.LikeStatus{}, translate(err, "review not found")
	}

	like := &domain.Like{UserID: user.ID, ReviewID: reviewID, CreatedAt: time.Now().UTC()}
	if err := s.store.CreateLike(ctx, like); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.LikeStatus{}, domainerrors.ErrAlreadyLiked
		}
		return domain.LikeStatus{}, translate(err, "review not found")
	}

	s.logger.Info("review liked", "review_id", reviewID, "user_id", user.ID)
	return s.status(ctx, reviewID, user.ID)
}

// Unlike removes the caller's like and returns the recomputed status.
func (s *EngagementService) Unlike(ctx context.Context, identity domain.Identity, reviewID string) (domain.LikeStatus, error) {
	if err := ctx.Err(); err != nil {
		return domain.LikeStatus{}, err
	}
	user, err := requireUser(identity)
	if err != nil {
		return domain.LikeStatus{}, err
	}

	removed, err := s.store.DeleteLike(ctx, user.ID, reviewID)
	if err != nil {
		return domain.LikeStatus{}, translate(err, "review not found")
	}
	if !removed {
		return domain.LikeStatus{}, domainerrors.ErrNotLiked
	}

	s.logger.Info("review unliked", "review_id", reviewID, "user_id", user.ID)
	return s.status(ctx, reviewID, user.ID)
}

// LikeStatus returns the like count and whether the viewer liked the review.
func (s *EngagementService) LikeStatus(ctx context.Context, reviewID string, viewer domain.Identity) (domain.LikeStatus, error) {
	if _, err := s.store.GetReview(ctx, reviewID); err != nil {
		return domain.LikeStatus{}, translate(err, "review not found")
	}
	return s.status(ctx, reviewID, viewer.UserID())
}

func (s *EngagementService) status(ctx context.Context, reviewID, viewerID string) (domain.LikeStatus, error) {
	st, err := s.store.GetLikeStatus(ctx, reviewID, viewerID)
	if err != nil {
		return domain.LikeStatus{}, translate(err, "review not found")
	}
	return st, nil
}

// ListComments returns a review's comments oldest first.
func (s *EngagementService) ListComments(ctx context.Context, reviewID string, viewer domain.Identity) ([]domain.CommentView, error) {
	if _, err := s.store.GetReview(ctx, reviewID); err != nil {
		return nil, translate(err, "review not found")
	}
	comments, err := s.store.ListComments(ctx, reviewID, viewer.UserID())
	if err != nil {
		return nil, translate(err, "review not found")
	}
	return comments, nil
}

// CreateComment adds the caller's comment to a review.
func (s *EngagementService) CreateComment(ctx context.Context, identity domain.Identity, reviewID string, req CommentRequest) (*domain.CommentView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	user, err := requireUser(identity)
	if err != nil {
		return nil, err
	}

	text, err := commentText(req.Text)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetReview(ctx, reviewID); err != nil {
		return nil, translate(err, "review not found")
	}

	commentID, err := id.Generate(id.PrefixComment)
	if err != nil {
		return nil, fmt.Errorf("generate comment ID: %w", err)
	}

	comment := &domain.Comment{
		Record:   domain.Record{ID: commentID},
		ReviewID: reviewID,
		UserID:   user.ID,
		Text:     text,
	}
	comment.InitTimestamps()

	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, translate(err, "review not found")
	}

	s.logger.Info("comment created", "comment_id", comment.ID, "review_id", reviewID, "user_id", user.ID)
	return commentView(comment, user), nil
}

// UpdateComment edits the caller's own comment.
func (s *EngagementService) UpdateComment(ctx context.Context, identity domain.Identity, commentID string, req CommentRequest) (*domain.CommentView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	comment, err := loadOwned(ctx, s.store.GetComment, commentID, identity, "comment")
	if err != nil {
		return nil, err
	}

	text, err := commentText(req.Text)
	if err != nil {
		return nil, err
	}

	comment.Text = text
	comment.Touch()
	if err := s.store.UpdateComment(ctx, comment); err != nil {
		return nil, translate(err, "comment not found")
	}

	s.logger.Info("comment updated", "comment_id", comment.ID)
	user, _ := identity.User()
	return commentView(comment, user), nil
}

// DeleteComment removes the caller's own comment.
func (s *EngagementService) DeleteComment(ctx context.Context, identity domain.Identity, commentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	comment, err := loadOwned(ctx, s.store.GetComment, commentID, identity, "comment")
	if err != nil {
		return err
	}

	if err := s.store.DeleteComment(ctx, comment.ID); err != nil {
		return translate(err, "comment not found")
	}

	s.logger.Info("comment deleted", "comment_id", comment.ID, "review_id", comment.ReviewID)
	return nil
}

// commentText trims and bounds comment text by code points.
func commentText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(text)
	if n == 0 || n > domain.MaxCommentLength {
		return "", domainerrors.ValidationWithDetails("invalid comment", map[string]string{
			"text": fmt.Sprintf("must be between 1 and %d characters", domain.MaxCommentLength),
		})
	}
	return text, nil
}

func commentView(c *domain.Comment, author *domain.User) *domain.CommentView {
	return &domain.CommentView{
		Comment:     *c,
		Username:    author.Username,
		DisplayName: author.DisplayName,
		IsMine:      true,
	}
}
