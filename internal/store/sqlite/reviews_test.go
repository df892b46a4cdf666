package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

func TestReviews_OnePerUserAndBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "u1", "alice")
	mustCreateBook(t, s, "b1", "Dune", "Frank Herbert", "", "u1", 1)
	mustCreateReview(t, s, "r1", "b1", "u1", 4, 2)

	again := &domain.Review{
		Record: domain.Record{ID: "r2", CreatedAt: at(3), UpdatedAt: at(3)},
		BookID: "b1",
		UserID: "u1",
		Rating: 2,
		Body:   "Changed my mind entirely.",
	}
	if err := s.CreateReview(ctx, again); !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	existing, err := s.FindReviewByUserAndBook(ctx, "u1", "b1")
	if err != nil {
		t.Fatalf("FindReviewByUserAndBook: %v", err)
	}
	if existing.ID != "r1" {
		t.Errorf("got %s, want r1", existing.ID)
	}
}

func TestReviews_UnknownBook(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, "u1", "alice")

	r := &domain.Review{
		Record: domain.Record{ID: "r1", CreatedAt: at(1), UpdatedAt: at(1)},
		BookID: "ghost",
		UserID: "u1",
		Rating: 3,
		Body:   "Reviewing nothing at all.",
	}
	if err := s.CreateReview(context.Background(), r); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReviews_UpdateAndDeleteCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "u1", "alice")
	mustCreateUser(t, s, "u2", "bob")
	mustCreateBook(t, s, "b1", "Dune", "Frank Herbert", "", "u1", 1)
	r := mustCreateReview(t, s, "r1", "b1", "u1", 4, 2)

	r.Rating = 5
	r.Body = "Even better the second time."
	r.UpdatedAt = at(9)
	if err := s.UpdateReview(ctx, r); err != nil {
		t.Fatalf("UpdateReview: %v", err)
	}
	got, _ := s.GetReview(ctx, "r1")
	if got.Rating != 5 || got.Body != r.Body || !got.UpdatedAt.Equal(at(9)) {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := s.CreateLike(ctx, &domain.Like{UserID: "u2", ReviewID: "r1", CreatedAt: at(3)}); err != nil {
		t.Fatalf("CreateLike: %v", err)
	}
	c := &domain.Comment{Record: domain.Record{ID: "c1", CreatedAt: at(4), UpdatedAt: at(4)}, ReviewID: "r1", UserID: "u2", Text: "Agreed"}
	if err := s.CreateComment(ctx, c); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	if err := s.DeleteReview(ctx, "r1"); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}
	if _, err := s.GetReview(ctx, "r1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("review still present: %v", err)
	}
	if _, err := s.GetComment(ctx, "c1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("comment survived review deletion: %v", err)
	}
	var likes int
	s.db.QueryRow(`SELECT COUNT(*) FROM review_likes`).Scan(&likes)
	if likes != 0 {
		t.Errorf("likes survived review deletion: %d", likes)
	}

	if err := s.DeleteReview(ctx, "r1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestListBookReviews(t *testing.T) {
	s := newTestStore(t)
	seedCatalog(t, s)
	ctx := context.Background()

	if err := s.CreateLike(ctx, &domain.Like{UserID: "u3", ReviewID: "r1", CreatedAt: at(20)}); err != nil {
		t.Fatalf("CreateLike: %v", err)
	}

	views, err := s.ListBookReviews(ctx, "b1", "u3")
	if err != nil {
		t.Fatalf("ListBookReviews: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d reviews, want 2", len(views))
	}
	// Newest first.
	if views[0].ID != "r2" || views[1].ID != "r1" {
		t.Errorf("order: %s, %s", views[0].ID, views[1].ID)
	}
	if views[1].Username != "alice" || views[1].LikeCount != 1 || !views[1].ViewerHasLiked {
		t.Errorf("r1 view: %+v", views[1])
	}
	if views[0].ViewerHasLiked {
		t.Error("viewer did not like r2")
	}

	anon, err := s.ListBookReviews(ctx, "b1", "")
	if err != nil {
		t.Fatalf("ListBookReviews anonymous: %v", err)
	}
	for _, v := range anon {
		if v.ViewerHasLiked {
			t.Errorf("anonymous viewer marked as liking %s", v.ID)
		}
	}
}

func TestListRecentReviewsByUser(t *testing.T) {
	s := newTestStore(t)
	seedCatalog(t, s)

	recent, err := s.ListRecentReviewsByUser(context.Background(), "u1", 2)
	if err != nil {
		t.Fatalf("ListRecentReviewsByUser: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d, want 2", len(recent))
	}
	if recent[0].ID != "r4" || recent[0].BookTitle != "Sharp Objects" || recent[0].BookAuthor != "Gillian Flynn" {
		t.Errorf("first: %+v", recent[0])
	}
	if recent[1].ID != "r3" {
		t.Errorf("second: %s", recent[1].ID)
	}

	n, err := s.CountUserReviews(context.Background(), "u1")
	if err != nil || n != 3 {
		t.Errorf("CountUserReviews: %d %v", n, err)
	}
}
