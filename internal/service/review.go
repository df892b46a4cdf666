package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	domainerrors "github.com/shelfsocial/shelfsocial-server/internal/errors"
	"github.com/shelfsocial/shelfsocial-server/internal/id"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

// ReviewRequest is the body of a review create or update.
type ReviewRequest struct {
	Rating int    `json:"rating" validate:"gte=1,lte=5"`
	Body   string `json:"body" validate:"required,min=10,max=10000"`
}

// ReviewService manages reviews. Only a review's author may change it.
type ReviewService struct {
	store  store.Store
	logger *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(store store.Store, logger *slog.Logger) *ReviewService {
	return &ReviewService{store: store, logger: logger}
}

// CreateReview adds the caller's review of a book. Each user reviews a book
// at most once; a second attempt fails with ReviewExists naming the first.
func (s *ReviewService) CreateReview(ctx context.Context, identity domain.Identity, bookID string, req ReviewRequest) (*domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	user, err := requireUser(identity)
	if err != nil {
		return nil, err
	}

	req.Body = strings.TrimSpace(req.Body)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		return nil, translate(err, "book not found")
	}

	reviewID, err := id.Generate(id.PrefixReview)
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		Record: domain.Record{ID: reviewID},
		BookID: bookID,
		UserID: user.ID,
		Rating: req.Rating,
		Body:   req.Body,
	}
	review.InitTimestamps()

	if err := s.store.CreateReview(ctx, review); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, s.reviewExists(ctx, user.ID, bookID)
		}
		return nil, translate(err, "book not found")
	}

	s.logger.Info("review created",
		"review_id", review.ID,
		"book_id", bookID,
		"user_id", user.ID,
		"rating", review.Rating,
	)
	return review, nil
}

func (s *ReviewService) reviewExists(ctx context.Context, userID, bookID string) error {
	existing, err := s.store.FindReviewByUserAndBook(ctx, userID, bookID)
	if err != nil {
		return domainerrors.ErrReviewExists
	}
	return domainerrors.ErrReviewExists.WithDetails(map[string]string{"review_id": existing.ID})
}

// UpdateReview replaces rating and body. Ownership is checked before the
// input, so a non-author always gets Forbidden.
func (s *ReviewService) UpdateReview(ctx context.Context, identity domain.Identity, bookID, reviewID string, req ReviewRequest) (*domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	review, err := loadOwned(ctx, s.bookReviewLoader(bookID), reviewID, identity, "review")
	if err != nil {
		return nil, err
	}

	req.Body = strings.TrimSpace(req.Body)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	review.Rating = req.Rating
	review.Body = req.Body
	review.Touch()
	if err := s.store.UpdateReview(ctx, review); err != nil {
		return nil, translate(err, "review not found")
	}

	s.logger.Info("review updated", "review_id", review.ID, "book_id", bookID, "rating", review.Rating)
	return review, nil
}

// DeleteReview removes the caller's review with its likes and comments.
func (s *ReviewService) DeleteReview(ctx context.Context, identity domain.Identity, bookID, reviewID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	review, err := loadOwned(ctx, s.bookReviewLoader(bookID), reviewID, identity, "review")
	if err != nil {
		return err
	}

	if err := s.store.DeleteReview(ctx, review.ID); err != nil {
		return translate(err, "review not found")
	}

	s.logger.Info("review deleted", "review_id", review.ID, "book_id", bookID, "user_id", review.UserID)
	return nil
}

// bookReviewLoader loads a review only if it belongs to bookID.
func (s *ReviewService) bookReviewLoader(bookID string) func(context.Context, string) (*domain.Review, error) {
	return func(ctx context.Context, reviewID string) (*domain.Review, error) {
		review, err := s.store.GetReview(ctx, reviewID)
		if err != nil {
			return nil, err
		}
		if review.BookID != bookID {
			return nil, store.ErrNotFound
		}
		return review, nil
	}
}
