package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	"github.com/shelfsocial/shelfsocial-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createReview",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/reviews",
		Summary:       "Create review",
		Description:   "Adds the caller's review of a book. One review per user and book.",
		Tags:          []string{"Reviews"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateReview",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}/reviews/{reviewId}",
		Summary:     "Update review",
		Description: "Replaces the rating and body of the caller's own review",
		Tags:        []string{"Reviews"},
		Security:    bearerAuth,
	}, s.handleUpdateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReview",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}/reviews/{reviewId}",
		Summary:     "Delete review",
		Description: "Deletes the caller's own review with its likes and comments",
		Tags:        []string{"Reviews"},
		Security:    bearerAuth,
	}, s.handleDeleteReview)
}

// === DTOs ===

// ReviewRequest is the request body for creating or updating a review.
type ReviewRequest struct {
	Rating int    `json:"rating" doc:"Stars, 1 to 5"`
	Body   string `json:"body" doc:"Review text, at least 10 characters"`
}

// CreateReviewInput contains the book ID and review body.
type CreateReviewInput struct {
	BookID string `path:"id" doc:"Book ID"`
	Body   ReviewRequest
}

// UpdateReviewInput contains the book and review IDs and the new review.
type UpdateReviewInput struct {
	BookID   string `path:"id" doc:"Book ID"`
	ReviewID string `path:"reviewId" doc:"Review ID"`
	Body     ReviewRequest
}

// DeleteReviewInput contains the book and review IDs.
type DeleteReviewInput struct {
	BookID   string `path:"id" doc:"Book ID"`
	ReviewID string `path:"reviewId" doc:"Review ID"`
}

// ReviewOutput wraps a review for Huma.
type ReviewOutput struct {
	Body *domain.Review
}

// === Handlers ===

func (s *Server) handleCreateReview(ctx context.Context, input *CreateReviewInput) (*ReviewOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.CreateReview(ctx, identity, input.BookID, service.ReviewRequest{
		Rating: input.Body.Rating,
		Body:   input.Body.Body,
	})
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleUpdateReview(ctx context.Context, input *UpdateReviewInput) (*ReviewOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.UpdateReview(ctx, identity, input.BookID, input.ReviewID, service.ReviewRequest{
		Rating: input.Body.Rating,
		Body:   input.Body.Body,
	})
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *DeleteReviewInput) (*MessageOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Review.DeleteReview(ctx, identity, input.BookID, input.ReviewID); err != nil {
		return nil, err
	}

	return message("Review deleted"), nil
}
