package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

func strPtr(s string) *string { return &s }

func TestUpsertReadingStatus_SingleRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "u1", "alice")
	mustCreateBook(t, s, "b1", "Dune", "Frank Herbert", "", "u1", 1)

	first := &domain.ReadingStatus{
		Record:      domain.Record{ID: "rs-1", CreatedAt: at(1), UpdatedAt: at(1)},
		UserID:      "u1",
		BookID:      "b1",
		Status:      domain.CurrentlyReading,
		StartedDate: strPtr("2024-03-01"),
	}
	if err := s.UpsertReadingStatus(ctx, first); err != nil {
		t.Fatalf("UpsertReadingStatus: %v", err)
	}

	second := &domain.ReadingStatus{
		Record:       domain.Record{ID: "rs-2", CreatedAt: at(5), UpdatedAt: at(5)},
		UserID:       "u1",
		BookID:       "b1",
		Status:       domain.Finished,
		StartedDate:  strPtr("2024-03-01"),
		FinishedDate: strPtr("2024-03-09"),
	}
	if err := s.UpsertReadingStatus(ctx, second); err != nil {
		t.Fatalf("UpsertReadingStatus: %v", err)
	}

	// Reloaded from the existing row.
	if second.ID != "rs-1" || !second.CreatedAt.Equal(at(1)) || !second.UpdatedAt.Equal(at(5)) {
		t.Errorf("unexpected row identity: %+v", second)
	}

	var n int
	s.db.QueryRow(`SELECT COUNT(*) FROM reading_status WHERE user_id = 'u1' AND book_id = 'b1'`).Scan(&n)
	if n != 1 {
		t.Fatalf("got %d rows, want 1", n)
	}

	got, err := s.GetReadingStatus(ctx, "u1", "b1")
	if err != nil {
		t.Fatalf("GetReadingStatus: %v", err)
	}
	if got.Status != domain.Finished || *got.FinishedDate != "2024-03-09" {
		t.Errorf("unexpected status: %+v", got)
	}
}

func TestUpsertReadingStatus_UnknownBook(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, "u1", "alice")

	rs := &domain.ReadingStatus{
		Record: domain.Record{ID: "rs-1", CreatedAt: at(1), UpdatedAt: at(1)},
		UserID: "u1",
		BookID: "ghost",
		Status: domain.WantToRead,
	}
	if err := s.UpsertReadingStatus(context.Background(), rs); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListLibrary(t *testing.T) {
	s := newTestStore(t)
	seedCatalog(t, s)
	ctx := context.Background()

	set := func(id, bookID string, state domain.ReadingState, minute int) {
		rs := &domain.ReadingStatus{
			Record: domain.Record{ID: id, CreatedAt: at(minute), UpdatedAt: at(minute)},
			UserID: "u2",
			BookID: bookID,
			Status: state,
		}
		if err := s.UpsertReadingStatus(ctx, rs); err != nil {
			t.Fatalf("UpsertReadingStatus(%s): %v", id, err)
		}
	}
	set("rs-1", "b1", domain.Finished, 30)
	set("rs-2", "b3", domain.WantToRead, 31)
	set("rs-3", "b4", domain.WantToRead, 32)

	all, err := s.ListLibrary(ctx, "u2", "")
	if err != nil {
		t.Fatalf("ListLibrary: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d entries, want 3", len(all))
	}
	if all[0].BookID != "b4" || all[0].Book.Title != "Sharp Objects" || all[0].Book.CreatorUsername != "carol" {
		t.Errorf("first entry: %+v", all[0])
	}
	if all[0].Book.ReviewCount != 3 || *all[0].Book.AverageRating != 4.7 {
		t.Errorf("first entry stats: %+v", all[0].Book.RatingStats)
	}

	want, err := s.ListLibrary(ctx, "u2", domain.WantToRead)
	if err != nil {
		t.Fatalf("ListLibrary(want_to_read): %v", err)
	}
	if len(want) != 2 {
		t.Errorf("got %d want_to_read entries, want 2", len(want))
	}

	empty, err := s.ListLibrary(ctx, "u3", "")
	if err != nil || len(empty) != 0 {
		t.Errorf("empty library: %v %v", empty, err)
	}

	if err := s.DeleteReadingStatus(ctx, "u2", "b1"); err != nil {
		t.Fatalf("DeleteReadingStatus: %v", err)
	}
	if _, err := s.GetReadingStatus(ctx, "u2", "b1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteReadingStatus(ctx, "u2", "b1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}
