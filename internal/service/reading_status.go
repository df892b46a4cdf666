package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	domainerrors "github.com/shelfsocial/shelfsocial-server/internal/errors"
	"github.com/shelfsocial/shelfsocial-server/internal/id"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

// SetStatusRequest moves a book to a reading state. Dates are YYYY-MM-DD;
// omitted dates keep their stored values and an empty string clears one.
type SetStatusRequest struct {
	BookID       string              `json:"book_id"`
	Status       domain.ReadingState `json:"status"`
	StartedDate  *string             `json:"started_date,omitempty"`
	FinishedDate *string             `json:"finished_date,omitempty"`
}

// ReadingStatusService tracks each user's per-book reading state.
type ReadingStatusService struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewReadingStatusService creates a new reading status service.
func NewReadingStatusService(store store.Store, logger *slog.Logger) *ReadingStatusService {
	return &ReadingStatusService{store: store, logger: logger, now: time.Now}
}

// SetStatus upserts the caller's status for a book. Entering
// currently_reading stamps a missing start date with today (UTC); entering
// finished from another state stamps the finish date with today and
// backfills a missing start date.
func (s *ReadingStatusService) SetStatus(ctx context.Context, identity domain.Identity, req SetStatusRequest) (*domain.ReadingStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	user, err := requireUser(identity)
	if err != nil {
		return nil, err
	}

	problems := make(map[string]string)
	req.BookID = strings.TrimSpace(req.BookID)
	if req.BookID == "" {
		problems["book_id"] = "is required"
	}
	if !req.Status.Valid() {
		problems["status"] = "must be one of: " + readingStatesList()
	}
	started, ok := normalizeDate(req.StartedDate)
	if !ok {
		problems["started_date"] = "must be a date formatted as YYYY-MM-DD"
	}
	finished, ok := normalizeDate(req.FinishedDate)
	if !ok {
		problems["finished_date"] = "must be a date formatted as YYYY-MM-DD"
	}
	if len(problems) > 0 {
		return nil, domainerrors.ValidationWithDetails("invalid reading status", problems)
	}

	if _, err := s.store.GetBook(ctx, req.BookID); err != nil {
		return nil, translate(err, "book not found")
	}

	status, err := s.store.GetReadingStatus(ctx, user.ID, req.BookID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		statusID, err := id.Generate(id.PrefixStatus)
		if err != nil {
			return nil, fmt.Errorf("generate reading status ID: %w", err)
		}
		status = &domain.ReadingStatus{
			Record: domain.Record{ID: statusID},
			UserID: user.ID,
			BookID: req.BookID,
		}
		status.InitTimestamps()
	case err != nil:
		return nil, translate(err, "reading status not found")
	default:
		status.Touch()
	}

	from := status.Status
	status.Transition(req.Status, started, finished, s.now().UTC().Format(domain.DateLayout))

	if status.StartedDate != nil && status.FinishedDate != nil && *status.FinishedDate < *status.StartedDate {
		return nil, domainerrors.ValidationWithDetails("invalid reading status", map[string]string{
			"finished_date": "must not be before started_date",
		})
	}

	if err := s.store.UpsertReadingStatus(ctx, status); err != nil {
		return nil, translate(err, "book not found")
	}

	s.logger.Info("reading status set",
		"user_id", user.ID,
		"book_id", req.BookID,
		"from", from,
		"to", status.Status,
	)
	return status, nil
}

// GetStatus returns the caller's status for a book, or nil if there is none.
func (s *ReadingStatusService) GetStatus(ctx context.Context, identity domain.Identity, bookID string) (*domain.ReadingStatus, error) {
	user, err := requireUser(identity)
	if err != nil {
		return nil, err
	}

	status, err := s.store.GetReadingStatus(ctx, user.ID, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "reading status not found")
	}
	return status, nil
}

// Library groups the caller's statuses by state.
func (s *ReadingStatusService) Library(ctx context.Context, identity domain.Identity) (*domain.Library, error) {
	user, err := requireUser(identity)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.ListLibrary(ctx, user.ID, "")
	if err != nil {
		return nil, translate(err, "library not found")
	}
	return domain.NewLibrary(entries), nil
}

// ListByStatus returns the caller's entries in one state.
func (s *ReadingStatusService) ListByStatus(ctx context.Context, identity domain.Identity, state domain.ReadingState) ([]domain.LibraryEntry, error) {
	user, err := requireUser(identity)
	if err != nil {
		return nil, err
	}
	if !state.Valid() {
		return nil, domainerrors.ValidationWithDetails("invalid reading status", map[string]string{
			"status": "must be one of: " + readingStatesList(),
		})
	}

	entries, err := s.store.ListLibrary(ctx, user.ID, state)
	if err != nil {
		return nil, translate(err, "library not found")
	}
	return entries, nil
}

// Remove deletes the caller's status for a book. Removing a missing status
// succeeds.
func (s *ReadingStatusService) Remove(ctx context.Context, identity domain.Identity, bookID string) error {
	user, err := requireUser(identity)
	if err != nil {
		return err
	}

	err = s.store.DeleteReadingStatus(ctx, user.ID, bookID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return translate(err, "reading status not found")
	}
	if err == nil {
		s.logger.Info("reading status removed", "user_id", user.ID, "book_id", bookID)
	}
	return nil
}

// normalizeDate treats nil and blank as omitted and rejects anything that is
// not a real calendar date.
// normalizeDate reads an optional date: nil keeps the stored value, a blank
// string clears it.
func normalizeDate(v *string) (domain.DateChange, bool) {
	if v == nil {
		return domain.DateChange{}, true
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return domain.ClearDate(), true
	}
	if _, err := time.Parse(domain.DateLayout, trimmed); err != nil {
		return domain.DateChange{}, false
	}
	return domain.SetDate(trimmed), true
}

func readingStatesList() string {
	names := make([]string, len(domain.ReadingStates))
	for i, st := range domain.ReadingStates {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}
