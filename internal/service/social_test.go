package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	domainerrors "github.com/shelfsocial/shelfsocial-server/internal/errors"
)

func TestFollow(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	require.NoError(t, env.follows.Follow(ctx, alice, bob.UserID()))
	require.NoError(t, env.follows.Follow(ctx, alice, bob.UserID()), "re-follow is a no-op")

	followers, err := env.follows.Followers(ctx, bob.UserID(), bob)
	require.NoError(t, err)
	require.Len(t, followers, 1, "one edge")
	assert.Equal(t, alice.UserID(), followers[0].ID)
	assert.False(t, followers[0].IsFollowing, "bob does not follow alice back")

	following, err := env.follows.Following(ctx, alice.UserID(), alice)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.True(t, following[0].IsFollowing)

	err = env.follows.Follow(ctx, alice, alice.UserID())
	requireCode(t, err, domainerrors.CodeSelfFollow)

	err = env.follows.Follow(ctx, alice, "user-missing")
	requireCode(t, err, domainerrors.CodeNotFound)

	_, err = env.follows.Followers(ctx, "user-missing", alice)
	requireCode(t, err, domainerrors.CodeNotFound)

	require.NoError(t, env.follows.Unfollow(ctx, alice, bob.UserID()))
	require.NoError(t, env.follows.Unfollow(ctx, alice, bob.UserID()), "unfollow is idempotent")
	followers, err = env.follows.Followers(ctx, bob.UserID(), domain.Anonymous())
	require.NoError(t, err)
	assert.Empty(t, followers)
}

func TestLikes(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")
	book := env.book(t, alice, "Dune", "Frank Herbert", "")
	r := env.review(t, alice, book.ID, 5)

	st, err := env.engagement.Like(ctx, bob, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LikeStatus{LikeCount: 1, ViewerHasLiked: true}, st)

	_, err = env.engagement.Like(ctx, bob, r.ID)
	requireCode(t, err, domainerrors.CodeAlreadyLiked)

	st, err = env.engagement.Like(ctx, carol, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, st.LikeCount)

	st, err = env.engagement.LikeStatus(ctx, r.ID, domain.Anonymous())
	require.NoError(t, err)
	assert.Equal(t, domain.LikeStatus{LikeCount: 2, ViewerHasLiked: false}, st)

	st, err = env.engagement.Unlike(ctx, bob, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LikeStatus{LikeCount: 1, ViewerHasLiked: false}, st)

	_, err = env.engagement.Unlike(ctx, bob, r.ID)
	requireCode(t, err, domainerrors.CodeNotLiked)

	_, err = env.engagement.Like(ctx, bob, "rev-missing")
	requireCode(t, err, domainerrors.CodeNotFound)
	_, err = env.engagement.LikeStatus(ctx, "rev-missing", bob)
	requireCode(t, err, domainerrors.CodeNotFound)
}

func TestComments(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	book := env.book(t, alice, "Dune", "Frank Herbert", "")
	r := env.review(t, alice, book.ID, 5)

	first, err := env.engagement.CreateComment(ctx, bob, r.ID, CommentRequest{Text: "  Great take.  "})
	require.NoError(t, err)
	assert.Equal(t, "Great take.", first.Text)
	assert.True(t, first.IsMine)

	_, err = env.engagement.CreateComment(ctx, alice, r.ID, CommentRequest{Text: "Thanks!"})
	require.NoError(t, err)

	// Exactly the limit in multi-byte runes is accepted.
	_, err = env.engagement.CreateComment(ctx, alice, r.ID, CommentRequest{Text: strings.Repeat("é", domain.MaxCommentLength)})
	require.NoError(t, err)

	for _, bad := range []string{"", "    ", strings.Repeat("a", domain.MaxCommentLength+1)} {
		_, err = env.engagement.CreateComment(ctx, bob, r.ID, CommentRequest{Text: bad})
		requireCode(t, err, domainerrors.CodeValidation)
	}

	_, err = env.engagement.CreateComment(ctx, bob, "rev-missing", CommentRequest{Text: "hello"})
	requireCode(t, err, domainerrors.CodeNotFound)

	list, err := env.engagement.ListComments(ctx, r.ID, bob)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, first.ID, list[0].ID, "oldest first")
	assert.True(t, list[0].IsMine)
	assert.False(t, list[1].IsMine)
	assert.Equal(t, "alice", list[1].Username)

	_, err = env.engagement.UpdateComment(ctx, alice, first.ID, CommentRequest{Text: "hijacked"})
	requireCode(t, err, domainerrors.CodeForbidden)
	err = env.engagement.DeleteComment(ctx, alice, first.ID)
	requireCode(t, err, domainerrors.CodeForbidden)

	edited, err := env.engagement.UpdateComment(ctx, bob, first.ID, CommentRequest{Text: "Great take, really."})
	require.NoError(t, err)
	assert.Equal(t, "Great take, really.", edited.Text)

	require.NoError(t, env.engagement.DeleteComment(ctx, bob, first.ID))
	err = env.engagement.DeleteComment(ctx, bob, first.ID)
	requireCode(t, err, domainerrors.CodeNotFound)

	_, err = env.engagement.ListComments(ctx, "rev-missing", bob)
	requireCode(t, err, domainerrors.CodeNotFound)
}

func TestProfile(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	for i, title := range []string{"One", "Two", "Three", "Four", "Five", "Six"} {
		b := env.book(t, alice, title, "Anon", "")
		env.review(t, alice, b.ID, 1+i%5)
	}
	require.NoError(t, env.follows.Follow(ctx, bob, alice.UserID()))

	p, err := env.profiles.GetProfile(ctx, alice.UserID(), bob)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.User.Username)
	assert.Equal(t, 6, p.User.TotalReviews)
	assert.Equal(t, 1, p.FollowersCount)
	assert.Equal(t, 0, p.FollowingCount)
	assert.True(t, p.IsFollowing)
	assert.False(t, p.IsSelf)
	assert.Len(t, p.RecentReviews, 5)
	assert.Equal(t, "Six", p.RecentReviews[0].BookTitle)

	self, err := env.profiles.GetProfile(ctx, alice.UserID(), alice)
	require.NoError(t, err)
	assert.True(t, self.IsSelf)
	assert.False(t, self.IsFollowing)

	_, err = env.profiles.GetProfile(ctx, "user-missing", domain.Anonymous())
	requireCode(t, err, domainerrors.CodeNotFound)
}

func TestSearchUsers(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.register(t, "bookworm")
	prolific := env.register(t, "bookish")
	env.register(t, "reader")
	b := env.book(t, prolific, "Dune", "Frank Herbert", "")
	env.review(t, prolific, b.ID, 4)

	short, err := env.profiles.SearchUsers(ctx, " b ", 10)
	require.NoError(t, err)
	assert.Empty(t, short)

	found, err := env.profiles.SearchUsers(ctx, "  BOOK ", 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "bookish", found[0].Username)
	assert.Equal(t, 1, found[0].TotalReviews)

	limited, err := env.profiles.SearchUsers(ctx, "book", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
