package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shelfsocial/shelfsocial-server/internal/catalog"
	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	domainerrors "github.com/shelfsocial/shelfsocial-server/internal/errors"
	"github.com/shelfsocial/shelfsocial-server/internal/id"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

// CreateBookRequest contains the fields for registering a book.
type CreateBookRequest struct {
	Title       string `json:"title" validate:"required,notblank,max=500"`
	Author      string `json:"author" validate:"max=300"`
	Genre       string `json:"genre" validate:"max=100"`
	Description string `json:"description" validate:"max=5000"`
}

// BookListing is one page of the catalog plus every known genre.
type BookListing struct {
	Items   []domain.BookSummary `json:"items"`
	Total   int                  `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
	HasMore bool                 `json:"has_more"`
	Genres  []string             `json:"genres"`
}

// CatalogService registers books and serves catalog listings.
type CatalogService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store store.Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, logger: logger}
}

// CreateBook registers a book. A book with the same title and author,
// ignoring case, fails with DuplicateBook carrying the existing book's ID.
func (s *CatalogService) CreateBook(ctx context.Context, identity domain.Identity, req CreateBookRequest) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	user, err := requireUser(identity)
	if err != nil {
		return nil, err
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.Genre = strings.TrimSpace(req.Genre)
	req.Description = strings.TrimSpace(req.Description)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	existing, err := s.store.FindBookByTitleAuthor(ctx, req.Title, req.Author)
	switch {
	case err == nil:
		return nil, duplicateBook(existing.ID)
	case !errors.Is(err, store.ErrNotFound):
		return nil, translate(err, "book not found")
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Record:      domain.Record{ID: bookID},
		Title:       req.Title,
		Author:      req.Author,
		Genre:       req.Genre,
		Description: req.Description,
		CreatedBy:   user.ID,
	}
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a concurrent insert of the same book.
			winner, findErr := s.store.FindBookByTitleAuthor(ctx, req.Title, req.Author)
			if findErr != nil {
				return nil, domainerrors.ErrDuplicateBook
			}
			return nil, duplicateBook(winner.ID)
		}
		return nil, translate(err, "book not found")
	}

	s.logger.Info("book created",
		"book_id", book.ID,
		"user_id", user.ID,
		"title", book.Title,
	)
	return book, nil
}

func duplicateBook(existingID string) error {
	return domainerrors.ErrDuplicateBook.WithDetails(map[string]string{"book_id": existingID})
}

// GetBook retrieves a book by ID.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, translate(err, "book not found")
	}
	return book, nil
}

// GetBookDetail assembles a book with its stats, rating distribution, reviews
// and, for an authenticated viewer, the viewer's reading status.
func (s *CatalogService) GetBookDetail(ctx context.Context, bookID string, viewer domain.Identity) (*domain.BookDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary, err := s.store.GetBookSummary(ctx, bookID)
	if err != nil {
		return nil, translate(err, "book not found")
	}

	dist, err := s.store.GetRatingDistribution(ctx, bookID)
	if err != nil {
		return nil, translate(err, "book not found")
	}

	reviews, err := s.store.ListBookReviews(ctx, bookID, viewer.UserID())
	if err != nil {
		return nil, translate(err, "book not found")
	}

	detail := &domain.BookDetail{
		BookSummary:  *summary,
		Distribution: dist,
		Reviews:      reviews,
	}

	if viewer.IsAuthenticated() {
		status, err := s.store.GetReadingStatus(ctx, viewer.UserID(), bookID)
		switch {
		case err == nil:
			detail.ViewerStatus = status
		case !errors.Is(err, store.ErrNotFound):
			return nil, translate(err, "reading status not found")
		}
	}

	return detail, nil
}

// ListBooks validates the filter, runs the plan and attaches the genre list.
func (s *CatalogService) ListBooks(ctx context.Context, filter catalog.Filter) (*BookListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plan, err := catalog.Build(filter)
	if err != nil {
		return nil, err
	}

	page, err := s.store.ListBooks(ctx, plan)
	if err != nil {
		return nil, translate(err, "book not found")
	}

	genres, err := s.store.ListGenres(ctx)
	if err != nil {
		return nil, translate(err, "genre not found")
	}

	return &BookListing{
		Items:   page.Items,
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore(),
		Genres:  genres,
	}, nil
}
