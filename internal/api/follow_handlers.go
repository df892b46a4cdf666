package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
)

func (s *Server) registerFollowRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "followUser",
		Method:      http.MethodPost,
		Path:        "/api/v1/follows/{userId}",
		Summary:     "Follow user",
		Description: "Makes the caller follow a user. Following twice is a no-op.",
		Tags:        []string{"Follows"},
		Security:    bearerAuth,
	}, s.handleFollow)

	huma.Register(s.api, huma.Operation{
		OperationID: "unfollowUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/follows/{userId}",
		Summary:     "Unfollow user",
		Description: "Removes the follow edge if present",
		Tags:        []string{"Follows"},
		Security:    bearerAuth,
	}, s.handleUnfollow)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFollowers",
		Method:      http.MethodGet,
		Path:        "/api/v1/follows/{userId}/followers",
		Summary:     "List followers",
		Description: "Users following the given user, newest first",
		Tags:        []string{"Follows"},
		Security:    bearerAuth,
	}, s.handleListFollowers)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFollowing",
		Method:      http.MethodGet,
		Path:        "/api/v1/follows/{userId}/following",
		Summary:     "List following",
		Description: "Users the given user follows, newest first",
		Tags:        []string{"Follows"},
		Security:    bearerAuth,
	}, s.handleListFollowing)
}

// UserIDInput contains the user path parameter.
type UserIDInput struct {
	UserID string `path:"userId" doc:"User ID"`
}

// FollowUsersOutput wraps a follow list for Huma.
type FollowUsersOutput struct {
	Body []domain.FollowUser
}

func (s *Server) handleFollow(ctx context.Context, input *UserIDInput) (*MessageOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Follow.Follow(ctx, identity, input.UserID); err != nil {
		return nil, err
	}

	return message("Followed"), nil
}

func (s *Server) handleUnfollow(ctx context.Context, input *UserIDInput) (*MessageOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Follow.Unfollow(ctx, identity, input.UserID); err != nil {
		return nil, err
	}

	return message("Unfollowed"), nil
}

func (s *Server) handleListFollowers(ctx context.Context, input *UserIDInput) (*FollowUsersOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.services.Follow.Followers(ctx, input.UserID, identity)
	if err != nil {
		return nil, err
	}

	return &FollowUsersOutput{Body: users}, nil
}

func (s *Server) handleListFollowing(ctx context.Context, input *UserIDInput) (*FollowUsersOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.services.Follow.Following(ctx, input.UserID, identity)
	if err != nil {
		return nil, err
	}

	return &FollowUsersOutput{Body: users}, nil
}
