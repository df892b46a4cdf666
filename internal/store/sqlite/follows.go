package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

// CreateFollow records that followerID follows followingID. Following twice
// is a no-op.
func (s *Store) CreateFollow(ctx context.Context, followerID, followingID string, at time.Time) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (follower_id, following_id) DO NOTHING`,
		followerID, followingID, formatTime(at))
	if isForeignKeyViolation(err) {
		return store.ErrNotFound.WithMessage("user not found")
	}
	return s.wrap("create follow", err)
}

// DeleteFollow removes a follow edge if present.
func (s *Store) DeleteFollow(ctx context.Context, followerID, followingID string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `DELETE FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID)
	return s.wrap("delete follow", err)
}

// IsFollowing reports whether followerID follows followingID.
func (s *Store) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == "" || followingID == "" {
		return false, nil
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = ? AND following_id = ?)`,
		followerID, followingID).Scan(&exists)
	if err != nil {
		return false, s.wrap("is following", err)
	}
	return exists, nil
}

// CountFollows returns how many users follow userID and how many userID follows.
func (s *Store) CountFollows(ctx context.Context, userID string) (followers, following int, err error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE following_id = ?),
			(SELECT COUNT(*) FROM follows WHERE follower_id = ?)`,
		userID, userID).Scan(&followers, &following)
	if err != nil {
		return 0, 0, s.wrap("count follows", err)
	}
	return followers, following, nil
}

// ListFollowers returns the users following userID, most recent first.
func (s *Store) ListFollowers(ctx context.Context, userID, viewerID string) ([]domain.FollowUser, error) {
	return s.listFollowEdges(ctx, "f.follower_id", "f.following_id", userID, viewerID)
}

// ListFollowing returns the users userID follows, most recent first.
func (s *Store) ListFollowing(ctx context.Context, userID, viewerID string) ([]domain.FollowUser, error) {
	return s.listFollowEdges(ctx, "f.following_id", "f.follower_id", userID, viewerID)
}

// listFollowEdges joins users on joinCol for edges where matchCol = userID.
// Both column names are constants from the callers above.
func (s *Store) listFollowEdges(ctx context.Context, joinCol, matchCol, userID, viewerID string) ([]domain.FollowUser, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.display_name,
			(SELECT COUNT(*) FROM reviews r WHERE r.user_id = u.id),
			EXISTS (SELECT 1 FROM follows v WHERE v.follower_id = ? AND v.following_id = u.id),
			f.created_at
		FROM follows f
		JOIN users u ON u.id = `+joinCol+`
		WHERE `+matchCol+` = ?
		ORDER BY f.created_at DESC, u.id`, viewerID, userID)
	if err != nil {
		return nil, s.wrap("list follows", err)
	}
	defer rows.Close()

	users := []domain.FollowUser{}
	for rows.Next() {
		var (
			fu          domain.FollowUser
			displayName sql.NullString
			followedAt  string
		)
		err := rows.Scan(&fu.ID, &fu.Username, &displayName, &fu.TotalReviews, &fu.IsFollowing, &followedAt)
		if err != nil {
			return nil, s.wrap("scan follow", err)
		}
		if fu.FollowedAt, err = parseTime(followedAt); err != nil {
			return nil, err
		}
		fu.DisplayName = displayName.String
		users = append(users, fu)
	}
	return users, s.wrap("list follows", rows.Err())
}
