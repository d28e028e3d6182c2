// Package di provides dependency injection configuration for the Bookly server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bookly/bookly-server/internal/auth"
	"github.com/bookly/bookly-server/internal/config"
	"github.com/bookly/bookly-server/internal/di/providers"
	"github.com/bookly/bookly-server/internal/logger"
	"github.com/bookly/bookly-server/internal/mail"
	"github.com/bookly/bookly-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideRedis)
	do.Provide(injector, providers.ProvideBlocklist)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Mail
	do.Provide(injector, providers.ProvideMailSender)
	do.Provide(injector, providers.ProvideMailRenderer)
	do.Provide(injector, providers.ProvideMailQueue)

	// Auth layer
	do.Provide(injector, providers.ProvideURLTokenKey)
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideURLTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideReviewService)
	do.Provide(injector, providers.ProvideTagService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.RedisHandle](injector)
	_ = do.MustInvoke[*providers.BlocklistHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[mail.Sender](injector)
	_ = do.MustInvoke[*providers.MailQueueHandle](injector)
	_ = do.MustInvoke[providers.URLTokenKey](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*auth.URLTokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.ReviewService](injector)
	_ = do.MustInvoke[*service.TagService](injector)

	// Bring the index in line with the database before serving
	providers.ReindexSearch(injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}

// Shutdown stops components in order: HTTP server, mail queue, blocklist,
// search index, then the database. Anything left (the Redis client) is
// released by the container afterwards.
func Shutdown(injector *do.RootScope) {
	log := do.MustInvoke[*logger.Logger](injector)

	steps := []struct {
		name string
		fn   func() error
	}{
		{"HTTP server", func() error { return do.Shutdown[*providers.HTTPServerHandle](injector) }},
		{"mail queue", func() error { return do.Shutdown[*providers.MailQueueHandle](injector) }},
		{"token blocklist", func() error { return do.Shutdown[*providers.BlocklistHandle](injector) }},
		{"search index", func() error { return do.Shutdown[*providers.SearchIndexHandle](injector) }},
		{"database", func() error { return do.Shutdown[*providers.StoreHandle](injector) }},
	}

	for _, step := range steps {
		log.Info("Stopping " + step.name + "...")
		if err := step.fn(); err != nil {
			log.Error("Failed to stop "+step.name, "error", err)
		}
	}

	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}
}
