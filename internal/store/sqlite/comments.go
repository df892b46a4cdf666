package sqlite

import (
	"context"
	"database/sql"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

// commentColumns must match the scan order in scanComment.
const commentColumns = `c.id, c.review_id, c.user_id, c.text, c.created_at, c.updated_at`

func scanComment(row scanner, extra ...any) (*domain.Comment, error) {
	var (
		c         domain.Comment
		createdAt string
		updatedAt string
	)

	dest := append([]any{&c.ID, &c.ReviewID, &c.UserID, &c.Text, &createdAt, &updatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateComment inserts a comment on a review.
func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_comments (id, review_id, user_id, text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.ReviewID,
		comment.UserID,
		comment.Text,
		formatTime(comment.CreatedAt),
		formatTime(comment.UpdatedAt),
	)
	if isForeignKeyViolation(err) {
		return store.ErrNotFound.WithMessage("review not found")
	}
	return s.wrap("create comment", err)
}

// GetComment retrieves a comment by ID.
func (s *Store) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	c, err := scanComment(s.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM review_comments c WHERE c.id = ?`, id))
	if isNoRows(err) {
		return nil, store.ErrNotFound.WithMessage("comment not found")
	}
	if err != nil {
		return nil, s.wrap("get comment", err)
	}
	return c, nil
}

// UpdateComment persists the comment text.
func (s *Store) UpdateComment(ctx context.Context, comment *domain.Comment) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `UPDATE review_comments SET text = ?, updated_at = ? WHERE id = ?`,
		comment.Text, formatTime(comment.UpdatedAt), comment.ID)
	if err != nil {
		return s.wrap("update comment", err)
	}
	return s.requireAffected(res, "comment not found")
}

// DeleteComment removes a comment.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM review_comments WHERE id = ?`, id)
	if err != nil {
		return s.wrap("delete comment", err)
	}
	return s.requireAffected(res, "comment not found")
}

// ListComments returns a review's comments oldest first.
func (s *Store) ListComments(ctx context.Context, reviewID, viewerID string) ([]domain.CommentView, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commentColumns+`, u.username, u.display_name
		FROM review_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.review_id = ?
		ORDER BY c.created_at ASC, c.id ASC`, reviewID)
	if err != nil {
		return nil, s.wrap("list comments", err)
	}
	defer rows.Close()

	views := []domain.CommentView{}
	for rows.Next() {
		var (
			v           domain.CommentView
			displayName sql.NullString
		)
		c, err := scanComment(rows, &v.Username, &displayName)
		if err != nil {
			return nil, s.wrap("scan comment", err)
		}
		v.Comment = *c
		v.DisplayName = displayName.String
		v.IsMine = viewerID != "" && c.UserID == viewerID
		views = append(views, v)
	}
	return views, s.wrap("list comments", rows.Err())
}
