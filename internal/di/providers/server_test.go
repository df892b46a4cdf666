package providers

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsocial/shelfsocial-server/internal/api"
)

func TestHTTPServerHandle_Shutdown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := api.NewServer(nil, &api.Services{}, api.Options{AuthRateLimitPerMinute: 5}, logger)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &http.Server{Handler: handler}
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	h := &HTTPServerHandle{Server: srv, api: handler}
	require.NoError(t, h.Shutdown())

	select {
	case err := <-served:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(drainTimeout):
		t.Fatal("server did not stop")
	}
}
