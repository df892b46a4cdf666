package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfsocial/shelfsocial-server/internal/catalog"
	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	domainerrors "github.com/shelfsocial/shelfsocial-server/internal/errors"
	"github.com/shelfsocial/shelfsocial-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Description:   "Registers a book. Title and author are unique ignoring case.",
		Tags:          []string{"Books"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Searches, filters, sorts and pages the catalog",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book with its rating aggregate, distribution and reviews",
		Tags:        []string{"Books"},
	}, s.handleGetBook)
}

// === DTOs ===

// CreateBookRequest is the request body for creating a book.
type CreateBookRequest struct {
	Title       string `json:"title" doc:"Book title"`
	Author      string `json:"author,omitempty" doc:"Author name"`
	Genre       string `json:"genre,omitempty" doc:"Genre"`
	Description string `json:"description,omitempty" doc:"Description"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// BookOutput wraps a book for Huma.
type BookOutput struct {
	Body *domain.Book
}

// ListBooksInput contains the listing query parameters.
type ListBooksInput struct {
	Search    string `query:"search" doc:"Case-insensitive substring of title, author or description"`
	Genre     string `query:"genre" doc:"Genre, ignoring case"`
	MinRating string `query:"minRating" doc:"Minimum average rating (0-5); unrated books are excluded"`
	MaxRating string `query:"maxRating" doc:"Maximum average rating (0-5); unrated books are excluded"`
	SortBy    string `query:"sortBy" enum:"newest,oldest,title,author,rating,popular" default:"newest" doc:"Sort order"`
	Limit     int    `query:"limit" minimum:"0" maximum:"100" doc:"Page size (default 20, max 100)"`
	Offset    int    `query:"offset" minimum:"0" doc:"Rows to skip"`
}

// BookListOutput wraps a catalog page for Huma.
type BookListOutput struct {
	Body *service.BookListing
}

// GetBookInput contains the book path parameter.
type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookDetailOutput wraps a book detail for Huma.
type BookDetailOutput struct {
	Body *domain.BookDetail
}

// === Handlers ===

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.CreateBook(ctx, identity, service.CreateBookRequest{
		Title:       input.Body.Title,
		Author:      input.Body.Author,
		Genre:       input.Body.Genre,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	filter := catalog.Filter{
		Search: input.Search,
		Genre:  input.Genre,
		SortBy: catalog.SortKey(input.SortBy),
		Limit:  input.Limit,
		Offset: input.Offset,
	}

	problems := make(map[string]string)
	filter.MinRating = parseRating(input.MinRating, "minRating", problems)
	filter.MaxRating = parseRating(input.MaxRating, "maxRating", problems)
	if len(problems) > 0 {
		return nil, domainerrors.ValidationWithDetails("invalid filter", problems)
	}

	listing, err := s.services.Catalog.ListBooks(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &BookListOutput{Body: listing}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookDetailOutput, error) {
	detail, err := s.services.Catalog.GetBookDetail(ctx, input.ID, identityFrom(ctx))
	if err != nil {
		return nil, err
	}

	return &BookDetailOutput{Body: detail}, nil
}

// parseRating reads an optional numeric query parameter. Range checks are
// left to the catalog plan.
func parseRating(raw, name string, problems map[string]string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		problems[name] = "must be a number"
		return nil
	}
	return &v
}
