package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shelfsocial/shelfsocial-server/internal/catalog"
	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

// userColumns must match the scan order in scanUser.
const userColumns = `id, username, email, password_hash, display_name, created_at, updated_at`

func scanUser(row scanner) (*domain.User, error) {
	var (
		u           domain.User
		displayName sql.NullString
		createdAt   string
		updatedAt   string
	)

	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &displayName, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	u.DisplayName = displayName.String
	return &u, nil
}

// CreateUser inserts a new user. Username and email are unique regardless of case.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`, search_key) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		nullString(user.DisplayName),
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		catalog.UserSearchText(user.Username, user.DisplayName),
	)
	if isUniqueViolation(err) {
		if strings.Contains(err.Error(), "users.email") {
			return store.ErrAlreadyExists.WithMessage("email already registered")
		}
		return store.ErrAlreadyExists.WithMessage("username already taken")
	}
	return s.wrap("create user", err)
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if isNoRows(err) {
		return nil, store.ErrNotFound.WithMessage("user not found")
	}
	if err != nil {
		return nil, s.wrap("get user", err)
	}
	return u, nil
}

// GetUserByLogin resolves a username or an email address. Both columns are
// NOCASE so the lookup ignores case.
func (s *Store) GetUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	login = strings.TrimSpace(login)
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? OR email = ? LIMIT 1`, login, login))
	if isNoRows(err) {
		return nil, store.ErrNotFound.WithMessage("user not found")
	}
	if err != nil {
		return nil, s.wrap("get user by login", err)
	}
	return u, nil
}

// UpdateUser persists the mutable profile fields.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `UPDATE users SET display_name = ?, updated_at = ?, search_key = ? WHERE id = ?`,
		nullString(user.DisplayName), formatTime(user.UpdatedAt),
		catalog.UserSearchText(user.Username, user.DisplayName), user.ID)
	if err != nil {
		return s.wrap("update user", err)
	}
	return s.requireAffected(res, "user not found")
}

// SearchUsers matches query against usernames and display names, most
// prolific reviewers first. Both sides are folded with catalog.Fold.
func (s *Store) SearchUsers(ctx context.Context, query string, limit int) ([]domain.UserSummary, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	q := catalog.Fold(query)
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.display_name, COUNT(r.id) AS total_reviews
		FROM users u
		LEFT JOIN reviews r ON r.user_id = u.id
		WHERE instr(u.search_key, ?) > 0
		GROUP BY u.id
		ORDER BY total_reviews DESC, u.username ASC
		LIMIT ?`, q, limit)
	if err != nil {
		return nil, s.wrap("search users", err)
	}
	defer rows.Close()

	results := []domain.UserSummary{}
	for rows.Next() {
		var (
			us          domain.UserSummary
			displayName sql.NullString
		)
		if err := rows.Scan(&us.ID, &us.Username, &displayName, &us.TotalReviews); err != nil {
			return nil, s.wrap("scan user summary", err)
		}
		us.DisplayName = displayName.String
		results = append(results, us)
	}
	return results, s.wrap("search users", rows.Err())
}

// CountUserReviews returns how many reviews a user has written.
func (s *Store) CountUserReviews(ctx context.Context, userID string) (int, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, s.wrap("count user reviews", err)
	}
	return n, nil
}
