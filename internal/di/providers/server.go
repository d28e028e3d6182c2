package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/bookly/bookly-server/internal/api"
	"github.com/bookly/bookly-server/internal/config"
	"github.com/bookly/bookly-server/internal/logger"
	"github.com/bookly/bookly-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable. In-flight requests get shutdownTimeout to finish.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)

	services := &api.Services{
		Auth:   do.MustInvoke[*service.AuthService](i),
		User:   do.MustInvoke[*service.UserService](i),
		Book:   do.MustInvoke[*service.BookService](i),
		Review: do.MustInvoke[*service.ReviewService](i),
		Tag:    do.MustInvoke[*service.TagService](i),
		Search: indexHandle.SearchIndex,
	}

	handler := api.NewServer(services, storeHandle.Store, api.Options{
		CORSOrigins:   cfg.Server.CORSOrigins,
		AuthRateLimit: cfg.Server.AuthRateLimit,
	}, log.Logger)

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

	log.Info("Server running",
		"addr", srv.Addr,
		"docs", "http://"+cfg.App.Domain+"/docs",
	)

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
