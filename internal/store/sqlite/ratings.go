package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
)

// GetRatingStats returns the review count and rounded average for a book.
func (s *Store) GetRatingStats(ctx context.Context, bookID string) (domain.RatingStats, error) {
	stats, err := s.GetRatingStatsForBooks(ctx, []string{bookID})
	if err != nil {
		return domain.RatingStats{}, err
	}
	return stats[bookID], nil
}

// GetRatingStatsForBooks computes rating aggregates for many books in one
// query. Books without reviews map to the zero RatingStats.
func (s *Store) GetRatingStatsForBooks(ctx context.Context, bookIDs []string) (map[string]domain.RatingStats, error) {
	result := make(map[string]domain.RatingStats, len(bookIDs))
	if len(bookIDs) == 0 {
		return result, nil
	}
	for _, id := range bookIDs {
		result[id] = domain.RatingStats{}
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	query, args, err := s.dialect.
		From(goqu.T("reviews").As("r")).
		Select(goqu.I("r.book_id"), goqu.COUNT(goqu.I("r.id")), averageRating()).
		Where(goqu.I("r.book_id").In(bookIDs)).
		GroupBy(goqu.I("r.book_id")).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build rating stats query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.wrap("rating stats", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookID string
			count  int
			avg    sql.NullFloat64
		)
		if err := rows.Scan(&bookID, &count, &avg); err != nil {
			return nil, s.wrap("scan rating stats", err)
		}
		result[bookID] = domain.NewRatingStats(count, avg.Float64)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("rating stats", err)
	}
	return result, nil
}

// GetRatingDistribution counts reviews per star value. Every value from
// MinRating to MaxRating is present.
func (s *Store) GetRatingDistribution(ctx context.Context, bookID string) (domain.RatingDistribution, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT rating, COUNT(*) FROM reviews WHERE book_id = ? GROUP BY rating`, bookID)
	if err != nil {
		return nil, s.wrap("rating distribution", err)
	}
	defer rows.Close()

	dist := domain.NewRatingDistribution()
	for rows.Next() {
		var stars, n int
		if err := rows.Scan(&stars, &n); err != nil {
			return nil, s.wrap("scan rating distribution", err)
		}
		dist[stars] = n
	}
	return dist, s.wrap("rating distribution", rows.Err())
}
