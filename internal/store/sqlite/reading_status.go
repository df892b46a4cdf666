package sqlite

import (
	"context"
	"database/sql"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

// statusColumns must match the scan order in scanReadingStatus.
const statusColumns = `s.id, s.user_id, s.book_id, s.status, s.started_date, s.finished_date, s.created_at, s.updated_at`

func scanReadingStatus(row scanner, extra ...any) (*domain.ReadingStatus, error) {
	var (
		rs        domain.ReadingStatus
		status    string
		started   sql.NullString
		finished  sql.NullString
		createdAt string
		updatedAt string
	)

	dest := append([]any{&rs.ID, &rs.UserID, &rs.BookID, &status, &started, &finished, &createdAt, &updatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if rs.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if rs.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	rs.Status = domain.ReadingState(status)
	rs.StartedDate = stringPtr(started)
	rs.FinishedDate = stringPtr(finished)
	return &rs, nil
}

// UpsertReadingStatus creates or replaces the user's status for a book.
// There is at most one row per (user, book); on conflict the existing row
// keeps its ID and created_at, and status is reloaded from the database.
func (s *Store) UpsertReadingStatus(ctx context.Context, status *domain.ReadingStatus) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reading_status (id, user_id, book_id, status, started_date, finished_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, book_id) DO UPDATE SET
			status = excluded.status,
			started_date = excluded.started_date,
			finished_date = excluded.finished_date,
			updated_at = excluded.updated_at`,
		status.ID,
		status.UserID,
		status.BookID,
		string(status.Status),
		nullableString(status.StartedDate),
		nullableString(status.FinishedDate),
		formatTime(status.CreatedAt),
		formatTime(status.UpdatedAt),
	)
	if isForeignKeyViolation(err) {
		return store.ErrNotFound.WithMessage("book not found")
	}
	if err != nil {
		return s.wrap("upsert reading status", err)
	}

	saved, err := scanReadingStatus(s.db.QueryRowContext(ctx,
		`SELECT `+statusColumns+` FROM reading_status s WHERE s.user_id = ? AND s.book_id = ?`,
		status.UserID, status.BookID))
	if err != nil {
		return s.wrap("reload reading status", err)
	}
	*status = *saved
	return nil
}

// GetReadingStatus returns the user's status for a book.
func (s *Store) GetReadingStatus(ctx context.Context, userID, bookID string) (*domain.ReadingStatus, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	rs, err := scanReadingStatus(s.db.QueryRowContext(ctx,
		`SELECT `+statusColumns+` FROM reading_status s WHERE s.user_id = ? AND s.book_id = ?`, userID, bookID))
	if isNoRows(err) {
		return nil, store.ErrNotFound.WithMessage("reading status not found")
	}
	if err != nil {
		return nil, s.wrap("get reading status", err)
	}
	return rs, nil
}

// ListLibrary returns the user's statuses with book summaries, most recently
// updated first. An empty state returns every status.
func (s *Store) ListLibrary(ctx context.Context, userID string, state domain.ReadingState) ([]domain.LibraryEntry, error) {
	entries, err := s.listLibraryRows(ctx, userID, state)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}

	ids := make([]string, len(entries))
	for i := range entries {
		ids[i] = entries[i].BookID
	}
	stats, err := s.GetRatingStatsForBooks(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Book.RatingStats = stats[entries[i].BookID]
	}
	return entries, nil
}

func (s *Store) listLibraryRows(ctx context.Context, userID string, state domain.ReadingState) ([]domain.LibraryEntry, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	query := `
		SELECT ` + statusColumns + `,
			b.title, b.author, b.genre, b.description, b.created_by, b.created_at, b.updated_at,
			u.username
		FROM reading_status s
		JOIN books b ON b.id = s.book_id
		LEFT JOIN users u ON u.id = b.created_by
		WHERE s.user_id = ?`
	args := []any{userID}
	if state != "" {
		query += ` AND s.status = ?`
		args = append(args, string(state))
	}
	query += ` ORDER BY s.updated_at DESC, s.id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.wrap("list library", err)
	}
	defer rows.Close()

	entries := []domain.LibraryEntry{}
	for rows.Next() {
		var (
			e             domain.LibraryEntry
			author        sql.NullString
			genre         sql.NullString
			description   sql.NullString
			bookCreatedAt string
			bookUpdatedAt string
			creator       sql.NullString
		)
		rs, err := scanReadingStatus(rows,
			&e.Book.Title, &author, &genre, &description, &e.Book.CreatedBy,
			&bookCreatedAt, &bookUpdatedAt, &creator)
		if err != nil {
			return nil, s.wrap("scan library entry", err)
		}
		e.ReadingStatus = *rs
		e.Book.ID = rs.BookID
		e.Book.Author = author.String
		e.Book.Genre = genre.String
		e.Book.Description = description.String
		e.Book.CreatorUsername = creator.String
		if e.Book.CreatedAt, err = parseTime(bookCreatedAt); err != nil {
			return nil, err
		}
		if e.Book.UpdatedAt, err = parseTime(bookUpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, s.wrap("list library", rows.Err())
}

// DeleteReadingStatus removes the user's status for a book.
func (s *Store) DeleteReadingStatus(ctx context.Context, userID, bookID string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM reading_status WHERE user_id = ? AND book_id = ?`, userID, bookID)
	if err != nil {
		return s.wrap("delete reading status", err)
	}
	return s.requireAffected(res, "reading status not found")
}
