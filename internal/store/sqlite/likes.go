package sqlite

import (
	"context"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

// CreateLike records a like. A repeat like returns ErrAlreadyExists and a
// missing review returns ErrNotFound.
func (s *Store) CreateLike(ctx context.Context, like *domain.Like) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `INSERT INTO review_likes (user_id, review_id, created_at) VALUES (?, ?, ?)`,
		like.UserID, like.ReviewID, formatTime(like.CreatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("review already liked")
	}
	if isForeignKeyViolation(err) {
		return store.ErrNotFound.WithMessage("review not found")
	}
	return s.wrap("create like", err)
}

// DeleteLike removes a like and reports whether one existed.
func (s *Store) DeleteLike(ctx context.Context, userID, reviewID string) (bool, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM review_likes WHERE user_id = ? AND review_id = ?`, userID, reviewID)
	if err != nil {
		return false, s.wrap("delete like", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, s.wrap("delete like", err)
	}
	return n > 0, nil
}

// GetLikeStatus counts a review's likes and checks whether viewerID is among them.
func (s *Store) GetLikeStatus(ctx context.Context, reviewID, viewerID string) (domain.LikeStatus, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var st domain.LikeStatus
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(user_id = ?), 0) > 0
		FROM review_likes WHERE review_id = ?`, viewerID, reviewID).Scan(&st.LikeCount, &st.ViewerHasLiked)
	if err != nil {
		return domain.LikeStatus{}, s.wrap("like status", err)
	}
	return st, nil
}
