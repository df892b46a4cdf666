package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	"github.com/shelfsocial/shelfsocial-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/search",
		Summary:     "Search users",
		Description: "Matches usernames and display names. Queries under two characters return nothing.",
		Tags:        []string{"Users"},
	}, s.handleSearchUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/profile",
		Summary:     "Update profile",
		Description: "Changes the caller's display name",
		Tags:        []string{"Users"},
		Security:    bearerAuth,
	}, s.handleUpdateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/profile",
		Summary:     "Get profile",
		Description: "Returns a user's public profile with counts and recent reviews",
		Tags:        []string{"Users"},
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserFollowers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/followers",
		Summary:     "Get user followers",
		Description: "Users following the given user, newest first. Anyone may view.",
		Tags:        []string{"Users"},
	}, s.handleGetUserFollowers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserFollowing",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/following",
		Summary:     "Get user following",
		Description: "Users the given user follows, newest first. Anyone may view.",
		Tags:        []string{"Users"},
	}, s.handleGetUserFollowing)
}

// === DTOs ===

// SearchUsersInput contains the search query parameters.
type SearchUsersInput struct {
	Query string `query:"q" doc:"Search text"`
	Limit int    `query:"limit" minimum:"0" doc:"Max results (default 20, max 50)"`
}

// UserSummariesOutput wraps a user list for Huma.
type UserSummariesOutput struct {
	Body []domain.UserSummary
}

// UpdateProfileRequest is the request body for a profile update.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" doc:"New display name"`
}

// UpdateProfileInput wraps the profile update for Huma.
type UpdateProfileInput struct {
	Body UpdateProfileRequest
}

// GetProfileInput contains the user path parameter.
type GetProfileInput struct {
	ID string `path:"id" doc:"User ID"`
}

// ProfileOutput wraps a profile for Huma.
type ProfileOutput struct {
	Body *domain.Profile
}

// === Handlers ===

func (s *Server) handleSearchUsers(ctx context.Context, input *SearchUsersInput) (*UserSummariesOutput, error) {
	users, err := s.services.Profile.SearchUsers(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}

	return &UserSummariesOutput{Body: users}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.UpdateProfile(ctx, identity, service.UpdateProfileRequest{
		DisplayName: input.Body.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleGetProfile(ctx context.Context, input *GetProfileInput) (*ProfileOutput, error) {
	profile, err := s.services.Profile.GetProfile(ctx, input.ID, identityFrom(ctx))
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: profile}, nil
}

func (s *Server) handleGetUserFollowers(ctx context.Context, input *GetProfileInput) (*FollowUsersOutput, error) {
	users, err := s.services.Follow.Followers(ctx, input.ID, identityFrom(ctx))
	if err != nil {
		return nil, err
	}

	return &FollowUsersOutput{Body: users}, nil
}

func (s *Server) handleGetUserFollowing(ctx context.Context, input *GetProfileInput) (*FollowUsersOutput, error) {
	users, err := s.services.Follow.Following(ctx, input.ID, identityFrom(ctx))
	if err != nil {
		return nil, err
	}

	return &FollowUsersOutput{Body: users}, nil
}
