package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookly/bookly-server/internal/auth"
	"github.com/bookly/bookly-server/internal/config"
	"github.com/bookly/bookly-server/internal/logger"
	"github.com/bookly/bookly-server/internal/mail"
	"github.com/bookly/bookly-server/internal/service"
)

// ProvideAuthService provides the account and token service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	urlTokens := do.MustInvoke[*auth.URLTokenService](i)
	blocklistHandle := do.MustInvoke[*BlocklistHandle](i)
	queueHandle := do.MustInvoke[*MailQueueHandle](i)
	templates := do.MustInvoke[*mail.Renderer](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(
		storeHandle.Store,
		tokens,
		urlTokens,
		blocklistHandle.Blocklist,
		queueHandle.Queue,
		templates,
		cfg.App.Domain,
		log.Logger,
	), nil
}

// ProvideUserService provides the user service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, log.Logger), nil
}

// ProvideBookService provides the book service, wired to the search index.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, indexHandle.SearchIndex, log.Logger), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReviewService(storeHandle.Store, log.Logger), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	books := do.MustInvoke[*service.BookService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, books, log.Logger), nil
}
