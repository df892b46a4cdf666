package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	"github.com/shelfsocial/shelfsocial-server/internal/service"
)

func (s *Server) registerEngagementRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "likeReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/reviews/{reviewId}/like",
		Summary:     "Like review",
		Description: "Likes a review and returns the new like status",
		Tags:        []string{"Engagement"},
		Security:    bearerAuth,
	}, s.handleLikeReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "unlikeReview",
		Method:      http.MethodDelete,
		Path:        "/api/v1/reviews/{reviewId}/like",
		Summary:     "Unlike review",
		Description: "Removes the caller's like and returns the new like status",
		Tags:        []string{"Engagement"},
		Security:    bearerAuth,
	}, s.handleUnlikeReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLikeStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews/{reviewId}/likes",
		Summary:     "Like status",
		Description: "Returns the like count and whether the caller liked the review",
		Tags:        []string{"Engagement"},
	}, s.handleGetLikeStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "listComments",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews/{reviewId}/comments",
		Summary:     "List comments",
		Description: "Returns a review's comments, oldest first",
		Tags:        []string{"Engagement"},
	}, s.handleListComments)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createComment",
		Method:        http.MethodPost,
		Path:          "/api/v1/reviews/{reviewId}/comments",
		Summary:       "Create comment",
		Description:   "Adds a comment of 1 to 500 characters to a review",
		Tags:          []string{"Engagement"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateComment",
		Method:      http.MethodPut,
		Path:        "/api/v1/comments/{commentId}",
		Summary:     "Update comment",
		Description: "Edits the caller's own comment",
		Tags:        []string{"Engagement"},
		Security:    bearerAuth,
	}, s.handleUpdateComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteComment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/comments/{commentId}",
		Summary:     "Delete comment",
		Description: "Deletes the caller's own comment",
		Tags:        []string{"Engagement"},
		Security:    bearerAuth,
	}, s.handleDeleteComment)
}

// === DTOs ===

// ReviewIDInput contains the review path parameter.
type ReviewIDInput struct {
	ReviewID string `path:"reviewId" doc:"Review ID"`
}

// LikeStatusOutput wraps a like status for Huma.
type LikeStatusOutput struct {
	Body domain.LikeStatus
}

// CommentRequest is the request body for creating or editing a comment.
type CommentRequest struct {
	Text string `json:"text" doc:"Comment text, 1 to 500 characters after trimming"`
}

// CreateCommentInput contains the review ID and comment body.
type CreateCommentInput struct {
	ReviewID string `path:"reviewId" doc:"Review ID"`
	Body     CommentRequest
}

// UpdateCommentInput contains the comment ID and new text.
type UpdateCommentInput struct {
	CommentID string `path:"commentId" doc:"Comment ID"`
	Body      CommentRequest
}

// CommentIDInput contains the comment path parameter.
type CommentIDInput struct {
	CommentID string `path:"commentId" doc:"Comment ID"`
}

// CommentOutput wraps a comment for Huma.
type CommentOutput struct {
	Body *domain.CommentView
}

// CommentsOutput wraps a comment list for Huma.
type CommentsOutput struct {
	Body []domain.CommentView
}

// === Handlers ===

func (s *Server) handleLikeReview(ctx context.Context, input *ReviewIDInput) (*LikeStatusOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	status, err := s.services.Engagement.Like(ctx, identity, input.ReviewID)
	if err != nil {
		return nil, err
	}

	return &LikeStatusOutput{Body: status}, nil
}

func (s *Server) handleUnlikeReview(ctx context.Context, input *ReviewIDInput) (*LikeStatusOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	status, err := s.services.Engagement.Unlike(ctx, identity, input.ReviewID)
	if err != nil {
		return nil, err
	}

	return &LikeStatusOutput{Body: status}, nil
}

func (s *Server) handleGetLikeStatus(ctx context.Context, input *ReviewIDInput) (*LikeStatusOutput, error) {
	status, err := s.services.Engagement.LikeStatus(ctx, input.ReviewID, identityFrom(ctx))
	if err != nil {
		return nil, err
	}

	return &LikeStatusOutput{Body: status}, nil
}

func (s *Server) handleListComments(ctx context.Context, input *ReviewIDInput) (*CommentsOutput, error) {
	comments, err := s.services.Engagement.ListComments(ctx, input.ReviewID, identityFrom(ctx))
	if err != nil {
		return nil, err
	}

	return &CommentsOutput{Body: comments}, nil
}

func (s *Server) handleCreateComment(ctx context.Context, input *CreateCommentInput) (*CommentOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Engagement.CreateComment(ctx, identity, input.ReviewID, service.CommentRequest{Text: input.Body.Text})
	if err != nil {
		return nil, err
	}

	return &CommentOutput{Body: comment}, nil
}

func (s *Server) handleUpdateComment(ctx context.Context, input *UpdateCommentInput) (*CommentOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Engagement.UpdateComment(ctx, identity, input.CommentID, service.CommentRequest{Text: input.Body.Text})
	if err != nil {
		return nil, err
	}

	return &CommentOutput{Body: comment}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *CommentIDInput) (*MessageOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Engagement.DeleteComment(ctx, identity, input.CommentID); err != nil {
		return nil, err
	}

	return message("Comment deleted"), nil
}
