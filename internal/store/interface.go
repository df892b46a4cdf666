// Package store defines the persistence contract of the catalog service.
package store

import (
	"context"
	"time"

	"github.com/shelfsocial/shelfsocial-server/internal/catalog"
	"github.com/shelfsocial/shelfsocial-server/internal/domain"
)

// Store is implemented by store/sqlite. Every method is bounded by the store's
// per-operation timeout; timeouts and lock contention return ErrTransient.
type Store interface {
	Ping(ctx context.Context) error
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByLogin(ctx context.Context, login string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	SearchUsers(ctx context.Context, query string, limit int) ([]domain.UserSummary, error)
	CountUserReviews(ctx context.Context, userID string) (int, error)

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	FindBookByTitleAuthor(ctx context.Context, title, author string) (*domain.Book, error)
	GetBookSummary(ctx context.Context, id string) (*domain.BookSummary, error)
	ListBooks(ctx context.Context, plan catalog.Plan) (*Page[domain.BookSummary], error)
	ListGenres(ctx context.Context) ([]string, error)

	// Rating aggregates
	GetRatingStats(ctx context.Context, bookID string) (domain.RatingStats, error)
	GetRatingStatsForBooks(ctx context.Context, bookIDs []string) (map[string]domain.RatingStats, error)
	GetRatingDistribution(ctx context.Context, bookID string) (domain.RatingDistribution, error)

	// Reviews
	CreateReview(ctx context.Context, review *domain.Review) error
	GetReview(ctx context.Context, id string) (*domain.Review, error)
	FindReviewByUserAndBook(ctx context.Context, userID, bookID string) (*domain.Review, error)
	UpdateReview(ctx context.Context, review *domain.Review) error
	DeleteReview(ctx context.Context, id string) error
	ListBookReviews(ctx context.Context, bookID, viewerID string) ([]domain.ReviewView, error)
	ListRecentReviewsByUser(ctx context.Context, userID string, limit int) ([]domain.RecentReview, error)

	// Reading status
	UpsertReadingStatus(ctx context.Context, status *domain.ReadingStatus) error
	GetReadingStatus(ctx context.Context, userID, bookID string) (*domain.ReadingStatus, error)
	ListLibrary(ctx context.Context, userID string, state domain.ReadingState) ([]domain.LibraryEntry, error)
	DeleteReadingStatus(ctx context.Context, userID, bookID string) error

	// Follows
	CreateFollow(ctx context.Context, followerID, followingID string, at time.Time) error
	DeleteFollow(ctx context.Context, followerID, followingID string) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	CountFollows(ctx context.Context, userID string) (followers, following int, err error)
	ListFollowers(ctx context.Context, userID, viewerID string) ([]domain.FollowUser, error)
	ListFollowing(ctx context.Context, userID, viewerID string) ([]domain.FollowUser, error)

	// Likes
	CreateLike(ctx context.Context, like *domain.Like) error
	DeleteLike(ctx context.Context, userID, reviewID string) (bool, error)
	GetLikeStatus(ctx context.Context, reviewID, viewerID string) (domain.LikeStatus, error)

	// Comments
	CreateComment(ctx context.Context, comment *domain.Comment) error
	GetComment(ctx context.Context, id string) (*domain.Comment, error)
	UpdateComment(ctx context.Context, comment *domain.Comment) error
	DeleteComment(ctx context.Context, id string) error
	ListComments(ctx context.Context, reviewID, viewerID string) ([]domain.CommentView, error)
}
