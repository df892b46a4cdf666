package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
)

func TestFollowHandlers(t *testing.T) {
	ts := setupTestServer(t, Options{})
	alice, aliceID := ts.register(t, "alice")
	bob, bobID := ts.register(t, "bob")

	resp := ts.api.Post("/api/v1/follows/"+aliceID, alice)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "SELF_FOLLOW", decode[any](t, resp.Body.Bytes()).Code)

	resp = ts.api.Post("/api/v1/follows/nobody", bob)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	for range 2 {
		resp = ts.api.Post("/api/v1/follows/"+aliceID, bob)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp = ts.api.Get("/api/v1/follows/"+aliceID+"/followers", alice)
	require.Equal(t, http.StatusOK, resp.Code)
	followers := decode[[]domain.FollowUser](t, resp.Body.Bytes()).Data
	require.Len(t, followers, 1)
	assert.Equal(t, bobID, followers[0].ID)
	assert.False(t, followers[0].IsFollowing)

	resp = ts.api.Get("/api/v1/follows/"+bobID+"/following", bob)
	following := decode[[]domain.FollowUser](t, resp.Body.Bytes()).Data
	require.Len(t, following, 1)
	assert.Equal(t, aliceID, following[0].ID)
	assert.True(t, following[0].IsFollowing)

	resp = ts.api.Get("/api/v1/follows/" + aliceID + "/followers")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	for range 2 {
		resp = ts.api.Delete("/api/v1/follows/"+aliceID, bob)
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp = ts.api.Get("/api/v1/follows/"+aliceID+"/followers", alice)
	assert.Empty(t, decode[[]domain.FollowUser](t, resp.Body.Bytes()).Data)
}

func TestUserFollowLists_Public(t *testing.T) {
	ts := setupTestServer(t, Options{})
	alice, aliceID := ts.register(t, "alice")
	bob, bobID := ts.register(t, "bob")

	require.Equal(t, http.StatusOK, ts.api.Post("/api/v1/follows/"+aliceID, bob).Code)
	require.Equal(t, http.StatusOK, ts.api.Post("/api/v1/follows/"+bobID, alice).Code)

	resp := ts.api.Get("/api/v1/users/" + aliceID + "/followers")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	followers := decode[[]domain.FollowUser](t, resp.Body.Bytes()).Data
	require.Len(t, followers, 1)
	assert.Equal(t, bobID, followers[0].ID)
	assert.False(t, followers[0].IsFollowing)

	// A signed-in viewer gets their own follow flags.
	resp = ts.api.Get("/api/v1/users/"+aliceID+"/followers", alice)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, decode[[]domain.FollowUser](t, resp.Body.Bytes()).Data[0].IsFollowing)

	resp = ts.api.Get("/api/v1/users/" + bobID + "/following")
	require.Equal(t, http.StatusOK, resp.Code)
	following := decode[[]domain.FollowUser](t, resp.Body.Bytes()).Data
	require.Len(t, following, 1)
	assert.Equal(t, aliceID, following[0].ID)

	resp = ts.api.Get("/api/v1/users/nobody/following")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decode[any](t, resp.Body.Bytes()).Code)
}

func TestLikeHandlers(t *testing.T) {
	ts := setupTestServer(t, Options{})
	alice, _ := ts.register(t, "alice")
	bob, _ := ts.register(t, "bob")
	book := ts.createBook(t, alice, map[string]any{"title": "Beloved", "author": "Toni Morrison"})
	review := ts.createReview(t, alice, book.ID, 4)
	path := "/api/v1/reviews/" + review.ID + "/like"

	resp := ts.api.Post(path)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Delete(path, bob)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "NOT_LIKED", decode[any](t, resp.Body.Bytes()).Code)

	resp = ts.api.Post(path, bob)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post(path, bob)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "ALREADY_LIKED", decode[any](t, resp.Body.Bytes()).Code)

	resp = ts.api.Get("/api/v1/reviews/" + review.ID + "/likes")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, domain.LikeStatus{LikeCount: 1}, decode[domain.LikeStatus](t, resp.Body.Bytes()).Data)

	resp = ts.api.Delete(path, bob)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, domain.LikeStatus{}, decode[domain.LikeStatus](t, resp.Body.Bytes()).Data)

	resp = ts.api.Post("/api/v1/reviews/missing/like", bob)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCommentHandlers(t *testing.T) {
	ts := setupTestServer(t, Options{})
	alice, _ := ts.register(t, "alice")
	bob, _ := ts.register(t, "bob")
	book := ts.createBook(t, alice, map[string]any{"title": "Persuasion", "author": "Jane Austen"})
	review := ts.createReview(t, alice, book.ID, 5)
	commentsPath := "/api/v1/reviews/" + review.ID + "/comments"

	resp := ts.api.Post(commentsPath, bob, map[string]any{"text": "  Agreed!  "})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	comment := decode[domain.CommentView](t, resp.Body.Bytes()).Data
	assert.Equal(t, "Agreed!", comment.Text)
	assert.Equal(t, "bob", comment.Username)

	resp = ts.api.Post(commentsPath, bob, map[string]any{"text": strings.Repeat("x", 501)})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decode[any](t, resp.Body.Bytes()).Code)

	resp = ts.api.Put("/api/v1/comments/"+comment.ID, alice, map[string]any{"text": "hijack"})
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "FORBIDDEN", decode[any](t, resp.Body.Bytes()).Code)

	resp = ts.api.Put("/api/v1/comments/"+comment.ID, bob, map[string]any{"text": "Strongly agreed!"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Strongly agreed!", decode[domain.CommentView](t, resp.Body.Bytes()).Data.Text)

	resp = ts.api.Delete("/api/v1/comments/"+comment.ID, alice)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/api/v1/comments/"+comment.ID, bob)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get(commentsPath)
	assert.Empty(t, decode[[]domain.CommentView](t, resp.Body.Bytes()).Data)
}

func TestReviewHandlers(t *testing.T) {
	ts := setupTestServer(t, Options{})
	alice, _ := ts.register(t, "alice")
	bob, _ := ts.register(t, "bob")
	book := ts.createBook(t, alice, map[string]any{"title": "Emma", "author": "Jane Austen"})
	review := ts.createReview(t, alice, book.ID, 3)
	path := "/api/v1/books/" + book.ID + "/reviews/" + review.ID

	resp := ts.api.Post("/api/v1/books/"+book.ID+"/reviews", alice, map[string]any{"rating": 4, "body": "Changed my mind entirely."})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	env := decode[any](t, resp.Body.Bytes())
	assert.Equal(t, "REVIEW_EXISTS", env.Code)
	assert.Equal(t, review.ID, env.Details["review_id"])

	resp = ts.api.Post("/api/v1/books/"+book.ID+"/reviews", bob, map[string]any{"rating": 9, "body": "Out of range rating."})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Put(path, bob, map[string]any{"rating": 1, "body": "Not my review at all."})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Put(path, alice, map[string]any{"rating": 4, "body": "Better on a second read."})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, 4, decode[domain.Review](t, resp.Body.Bytes()).Data.Rating)

	resp = ts.api.Delete(path, alice)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete(path, alice)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUserHandlers(t *testing.T) {
	ts := setupTestServer(t, Options{})
	alice, aliceID := ts.register(t, "alice")
	ts.register(t, "alfred")

	resp := ts.api.Get("/api/v1/users/search?q=al")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Len(t, decode[[]domain.UserSummary](t, resp.Body.Bytes()).Data, 2)

	resp = ts.api.Get("/api/v1/users/search?q=a")
	assert.Empty(t, decode[[]domain.UserSummary](t, resp.Body.Bytes()).Data)

	resp = ts.api.Put("/api/v1/users/profile", alice, map[string]any{"display_name": "Alice L."})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Alice L.", decode[UserResponse](t, resp.Body.Bytes()).Data.DisplayName)

	resp = ts.api.Put("/api/v1/users/profile", map[string]any{"display_name": "Nobody"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/users/"+aliceID+"/profile", alice)
	require.Equal(t, http.StatusOK, resp.Code)
	profile := decode[domain.Profile](t, resp.Body.Bytes()).Data
	assert.True(t, profile.IsSelf)
	assert.Equal(t, "Alice L.", profile.User.DisplayName)
	assert.Empty(t, profile.RecentReviews)

	resp = ts.api.Get("/api/v1/users/nobody/profile")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
