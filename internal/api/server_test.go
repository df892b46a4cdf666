package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/shelfsocial/shelfsocial-server/internal/auth"
	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	"github.com/shelfsocial/shelfsocial-server/internal/service"
	"github.com/shelfsocial/shelfsocial-server/internal/store/sqlite"
)

// testEnvelope decodes an APIEnvelope with typed data.
type testEnvelope[T any] struct {
	Version int            `json:"v"`
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

type testServer struct {
	*Server
	api   humatest.TestAPI
	store *sqlite.Store
}

func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger, sqlite.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	tokens, err := auth.NewTokenService(bytes.Repeat([]byte{7}, 32), time.Hour)
	require.NoError(t, err)
	hasher := &auth.PasswordHasher{Params: auth.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}}

	services := &Services{
		Auth:          service.NewAuthService(st, tokens, hasher, logger),
		Catalog:       service.NewCatalogService(st, logger),
		Review:        service.NewReviewService(st, logger),
		ReadingStatus: service.NewReadingStatusService(st, logger),
		Follow:        service.NewFollowService(st, logger),
		Engagement:    service.NewEngagementService(st, logger),
		Profile:       service.NewProfileService(st, logger),
	}

	s := NewServer(st, services, opts, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		store:  st,
	}
}

// decode unmarshals a response body into an envelope.
func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

// register creates an account and returns its bearer header and user ID.
func (ts *testServer) register(t *testing.T, username string) (string, string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.Code, "register failed: %s", resp.Body.String())

	env := decode[AuthResponse](t, resp.Body.Bytes())
	return "Authorization: Bearer " + env.Data.AccessToken, env.Data.User.ID
}

func (ts *testServer) createBook(t *testing.T, authz string, body map[string]any) domain.Book {
	t.Helper()

	resp := ts.api.Post("/api/v1/books", authz, body)
	require.Equal(t, http.StatusCreated, resp.Code, "create book failed: %s", resp.Body.String())
	return decode[domain.Book](t, resp.Body.Bytes()).Data
}

func (ts *testServer) createReview(t *testing.T, authz, bookID string, rating int) domain.Review {
	t.Helper()

	resp := ts.api.Post("/api/v1/books/"+bookID+"/reviews", authz, map[string]any{
		"rating": rating,
		"body":   "Absolutely essential reading, ten chars+",
	})
	require.Equal(t, http.StatusCreated, resp.Code, "create review failed: %s", resp.Body.String())
	return decode[domain.Review](t, resp.Body.Bytes()).Data
}
