package sqlite

import (
	"context"
	"database/sql"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

// reviewColumns must match the scan order in scanReview.
const reviewColumns = `r.id, r.book_id, r.user_id, r.rating, r.body, r.created_at, r.updated_at`

func scanReview(row scanner, extra ...any) (*domain.Review, error) {
	var (
		r         domain.Review
		createdAt string
		updatedAt string
	)

	dest := append([]any{&r.ID, &r.BookID, &r.UserID, &r.Rating, &r.Body, &createdAt, &updatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReview inserts a review. A second review by the same user for the
// same book returns ErrAlreadyExists.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, book_id, user_id, rating, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		review.ID,
		review.BookID,
		review.UserID,
		review.Rating,
		review.Body,
		formatTime(review.CreatedAt),
		formatTime(review.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("review already exists")
	}
	if isForeignKeyViolation(err) {
		return store.ErrNotFound.WithMessage("book not found")
	}
	return s.wrap("create review", err)
}

// GetReview retrieves a review by ID.
func (s *Store) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	r, err := scanReview(s.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews r WHERE r.id = ?`, id))
	if isNoRows(err) {
		return nil, store.ErrNotFound.WithMessage("review not found")
	}
	if err != nil {
		return nil, s.wrap("get review", err)
	}
	return r, nil
}

// FindReviewByUserAndBook returns the user's review of a book.
func (s *Store) FindReviewByUserAndBook(ctx context.Context, userID, bookID string) (*domain.Review, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	r, err := scanReview(s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews r WHERE r.user_id = ? AND r.book_id = ?`, userID, bookID))
	if isNoRows(err) {
		return nil, store.ErrNotFound.WithMessage("review not found")
	}
	if err != nil {
		return nil, s.wrap("find review", err)
	}
	return r, nil
}

// UpdateReview persists rating and body.
func (s *Store) UpdateReview(ctx context.Context, review *domain.Review) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `UPDATE reviews SET rating = ?, body = ?, updated_at = ? WHERE id = ?`,
		review.Rating, review.Body, formatTime(review.UpdatedAt), review.ID)
	if err != nil {
		return s.wrap("update review", err)
	}
	return s.requireAffected(res, "review not found")
}

// DeleteReview removes a review. Its likes and comments cascade.
func (s *Store) DeleteReview(ctx context.Context, id string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return s.wrap("delete review", err)
	}
	return s.requireAffected(res, "review not found")
}

// ListBookReviews returns a book's reviews newest first, with author,
// engagement counts and whether viewerID liked each one. viewerID may be empty.
func (s *Store) ListBookReviews(ctx context.Context, bookID, viewerID string) ([]domain.ReviewView, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reviewColumns+`,
			u.username,
			u.display_name,
			(SELECT COUNT(*) FROM review_likes l WHERE l.review_id = r.id),
			(SELECT COUNT(*) FROM review_comments c WHERE c.review_id = r.id),
			EXISTS (SELECT 1 FROM review_likes l WHERE l.review_id = r.id AND l.user_id = ?)
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.book_id = ?
		ORDER BY r.created_at DESC, r.id DESC`, viewerID, bookID)
	if err != nil {
		return nil, s.wrap("list book reviews", err)
	}
	defer rows.Close()

	views := []domain.ReviewView{}
	for rows.Next() {
		var (
			v           domain.ReviewView
			displayName sql.NullString
		)
		r, err := scanReview(rows, &v.Username, &displayName, &v.LikeCount, &v.CommentCount, &v.ViewerHasLiked)
		if err != nil {
			return nil, s.wrap("scan review", err)
		}
		v.Review = *r
		v.DisplayName = displayName.String
		views = append(views, v)
	}
	return views, s.wrap("list book reviews", rows.Err())
}

// ListRecentReviewsByUser returns up to limit of a user's latest reviews with
// the reviewed book's title and author.
func (s *Store) ListRecentReviewsByUser(ctx context.Context, userID string, limit int) ([]domain.RecentReview, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.book_id, b.title, b.author, r.rating, r.body, r.created_at
		FROM reviews r
		JOIN books b ON b.id = r.book_id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, s.wrap("list recent reviews", err)
	}
	defer rows.Close()

	recent := []domain.RecentReview{}
	for rows.Next() {
		var (
			rr        domain.RecentReview
			author    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&rr.ID, &rr.BookID, &rr.BookTitle, &author, &rr.Rating, &rr.Body, &createdAt); err != nil {
			return nil, s.wrap("scan recent review", err)
		}
		if rr.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		rr.BookAuthor = author.String
		recent = append(recent, rr)
	}
	return recent, s.wrap("list recent reviews", rows.Err())
}

// requireAffected turns a zero-row write into ErrNotFound.
func (s *Store) requireAffected(res sql.Result, notFound string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return s.wrap("rows affected", err)
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage(notFound)
	}
	return nil
}
