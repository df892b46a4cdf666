package api

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/shelfsocial/shelfsocial-server/internal/errors"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

func TestErrorHandler_Mapping(t *testing.T) {
	RegisterErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"domain not found", domainerrors.NotFound("book not found"), http.StatusNotFound, "NOT_FOUND", "book not found"},
		{"self follow", domainerrors.ErrSelfFollow, http.StatusBadRequest, "SELF_FOLLOW", "you cannot follow yourself"},
		{"forbidden", domainerrors.Forbidden("not yours"), http.StatusForbidden, "FORBIDDEN", "not yours"},
		{"transient", domainerrors.Transient(store.ErrTransient), http.StatusServiceUnavailable, "TRANSIENT", "storage temporarily unavailable"},
		{"internal hides message", domainerrors.Internal("secret detail"), http.StatusInternalServerError, "INTERNAL", "internal server error"},
		{"store not found", store.ErrNotFound, http.StatusNotFound, "NOT_FOUND", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := huma.NewError(http.StatusInternalServerError, "fallback", tt.err)

			apiErr, ok := got.(*APIError)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.GetStatus())
			assert.Equal(t, tt.code, apiErr.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, apiErr.Message)
			}
		})
	}
}

func TestErrorHandler_HumaValidation(t *testing.T) {
	RegisterErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	got := huma.NewError(http.StatusUnprocessableEntity, "validation failed",
		&huma.ErrorDetail{Location: "body.title", Message: "expected required property title to be present"},
		&huma.ErrorDetail{Location: "query.limit", Message: "expected number <= 100"},
	)

	apiErr := got.(*APIError)
	assert.Equal(t, http.StatusBadRequest, apiErr.GetStatus())
	assert.Equal(t, "VALIDATION", apiErr.Code)
	assert.Equal(t, map[string]string{
		"title":       "expected required property title to be present",
		"query.limit": "expected number <= 100",
	}, apiErr.Details)
}

func TestErrorHandler_UnknownStatus(t *testing.T) {
	RegisterErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	got := huma.NewError(http.StatusTooManyRequests, "slow down").(*APIError)
	assert.Equal(t, "RATE_LIMITED", got.Code)
	assert.Equal(t, "slow down", got.Message)

	got = huma.NewError(http.StatusBadGateway, "upstream exploded").(*APIError)
	assert.Equal(t, "INTERNAL", got.Code)
	assert.Equal(t, "internal server error", got.Message)
}
