package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	"github.com/shelfsocial/shelfsocial-server/internal/service"
)

func (s *Server) registerReadingStatusRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "setReadingStatus",
		Method:      http.MethodPost,
		Path:        "/api/v1/reading-status",
		Summary:     "Set reading status",
		Description: "Creates or replaces the caller's status for a book",
		Tags:        []string{"Reading Status"},
		Security:    bearerAuth,
	}, s.handleSetReadingStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/reading-status",
		Summary:     "Get library",
		Description: "Returns the caller's statuses grouped by state, with counts",
		Tags:        []string{"Reading Status"},
		Security:    bearerAuth,
	}, s.handleGetLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookReadingStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/reading-status/book/{bookId}",
		Summary:     "Get status for a book",
		Description: "Returns the caller's status for one book; status is null when unset",
		Tags:        []string{"Reading Status"},
		Security:    bearerAuth,
	}, s.handleGetBookReadingStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "listByReadingStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/reading-status/status/{status}",
		Summary:     "List by status",
		Description: "Returns the caller's entries in one state",
		Tags:        []string{"Reading Status"},
		Security:    bearerAuth,
	}, s.handleListByReadingStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeReadingStatus",
		Method:      http.MethodDelete,
		Path:        "/api/v1/reading-status/{bookId}",
		Summary:     "Remove from library",
		Description: "Deletes the caller's status for a book. Succeeds when none exists.",
		Tags:        []string{"Reading Status"},
		Security:    bearerAuth,
	}, s.handleRemoveReadingStatus)
}

// === DTOs ===

// SetReadingStatusRequest is the request body for setting a status.
type SetReadingStatusRequest struct {
	BookID       string  `json:"book_id" doc:"Book ID"`
	Status       string  `json:"status" doc:"want_to_read, currently_reading, finished or did_not_finish"`
	StartedDate  *string `json:"started_date,omitempty" doc:"Start date (YYYY-MM-DD); an empty string clears it"`
	FinishedDate *string `json:"finished_date,omitempty" doc:"Finish date (YYYY-MM-DD); an empty string clears it"`
}

// SetReadingStatusInput wraps the set status request for Huma.
type SetReadingStatusInput struct {
	Body SetReadingStatusRequest
}

// ReadingStatusOutput wraps a reading status for Huma.
type ReadingStatusOutput struct {
	Body *domain.ReadingStatus
}

// LibraryOutput wraps a grouped library for Huma.
type LibraryOutput struct {
	Body *domain.Library
}

// BookStatusInput contains the book path parameter.
type BookStatusInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
}

// BookStatusResponse holds the caller's status for a book, null when unset.
type BookStatusResponse struct {
	Status *domain.ReadingStatus `json:"status" doc:"Reading status, or null"`
}

// BookStatusOutput wraps the book status response for Huma.
type BookStatusOutput struct {
	Body BookStatusResponse
}

// ListByStatusInput contains the state path parameter.
type ListByStatusInput struct {
	Status string `path:"status" doc:"Reading state"`
}

// LibraryEntriesOutput wraps library entries for Huma.
type LibraryEntriesOutput struct {
	Body []domain.LibraryEntry
}

// === Handlers ===

func (s *Server) handleSetReadingStatus(ctx context.Context, input *SetReadingStatusInput) (*ReadingStatusOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	status, err := s.services.ReadingStatus.SetStatus(ctx, identity, service.SetStatusRequest{
		BookID:       input.Body.BookID,
		Status:       domain.ReadingState(input.Body.Status),
		StartedDate:  input.Body.StartedDate,
		FinishedDate: input.Body.FinishedDate,
	})
	if err != nil {
		return nil, err
	}

	return &ReadingStatusOutput{Body: status}, nil
}

func (s *Server) handleGetLibrary(ctx context.Context, _ *struct{}) (*LibraryOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	lib, err := s.services.ReadingStatus.Library(ctx, identity)
	if err != nil {
		return nil, err
	}

	return &LibraryOutput{Body: lib}, nil
}

func (s *Server) handleGetBookReadingStatus(ctx context.Context, input *BookStatusInput) (*BookStatusOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	status, err := s.services.ReadingStatus.GetStatus(ctx, identity, input.BookID)
	if err != nil {
		return nil, err
	}

	return &BookStatusOutput{Body: BookStatusResponse{Status: status}}, nil
}

func (s *Server) handleListByReadingStatus(ctx context.Context, input *ListByStatusInput) (*LibraryEntriesOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.services.ReadingStatus.ListByStatus(ctx, identity, domain.ReadingState(input.Status))
	if err != nil {
		return nil, err
	}

	return &LibraryEntriesOutput{Body: entries}, nil
}

func (s *Server) handleRemoveReadingStatus(ctx context.Context, input *BookStatusInput) (*MessageOutput, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.ReadingStatus.Remove(ctx, identity, input.BookID); err != nil {
		return nil, err
	}

	return message("Removed from library"), nil
}
