package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/shelfsocial/shelfsocial-server/internal/api"
	"github.com/shelfsocial/shelfsocial-server/internal/config"
	"github.com/shelfsocial/shelfsocial-server/internal/logger"
	"github.com/shelfsocial/shelfsocial-server/internal/service"
)

// drainTimeout bounds how long in-flight requests get to finish on shutdown.
const drainTimeout = 30 * time.Second

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:          do.MustInvoke[*service.AuthService](i),
		Catalog:       do.MustInvoke[*service.CatalogService](i),
		Review:        do.MustInvoke[*service.ReviewService](i),
		ReadingStatus: do.MustInvoke[*service.ReadingStatusService](i),
		Follow:        do.MustInvoke[*service.FollowService](i),
		Engagement:    do.MustInvoke[*service.EngagementService](i),
		Profile:       do.MustInvoke[*service.ProfileService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, api.Options{
		AllowedOrigins:         cfg.Server.AllowedOrigins,
		RateLimitPerMinute:     cfg.Server.RateLimitPerMinute,
		AuthRateLimitPerMinute: cfg.Server.AuthRateLimitPerMinute,
	}, log.Component("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
