package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookly/bookly-server/internal/auth"
	"github.com/bookly/bookly-server/internal/blocklist"
	"github.com/bookly/bookly-server/internal/config"
	"github.com/bookly/bookly-server/internal/logger"
)

// URLTokenKey wraps the PASETO key used for emailed link tokens.
type URLTokenKey []byte

// ProvideURLTokenKey loads or generates the URL token key under the data path.
func ProvideURLTokenKey(i do.Injector) (URLTokenKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.App.DataPath)
	if err != nil {
		return nil, err
	}

	cfg.Auth.URLTokenKey = key

	log.Info("Authentication keys loaded",
		"jwt_algorithm", cfg.Auth.JWTAlgorithm,
		"access_token_duration", cfg.Auth.AccessTokenDuration,
		"refresh_token_duration", cfg.Auth.RefreshTokenDuration,
		"url_token_duration", cfg.Auth.URLTokenDuration,
	)

	return URLTokenKey(key), nil
}

// ProvideTokenService provides the JWT access and refresh token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return auth.NewTokenService(
		cfg.Auth.JWTSecret,
		cfg.Auth.JWTAlgorithm,
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
	)
}

// ProvideURLTokenService provides the PASETO service for verification and reset links.
func ProvideURLTokenService(i do.Injector) (*auth.URLTokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[URLTokenKey](i)

	return auth.NewURLTokenService([]byte(key), cfg.Auth.URLTokenDuration)
}

// BlocklistHandle wraps the token blocklist with shutdown capability.
type BlocklistHandle struct {
	blocklist.Blocklist
}

// Shutdown implements do.Shutdownable.
func (h *BlocklistHandle) Shutdown() error {
	return h.Close()
}

// ProvideBlocklist provides the revoked token store.
func ProvideBlocklist(i do.Injector) (*BlocklistHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	redisHandle := do.MustInvoke[*RedisHandle](i)

	bl, err := blocklist.New(blocklist.Options{
		Backend:  cfg.Blocklist.Backend,
		DataPath: cfg.App.DataPath,
		Redis:    redisHandle.Client,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Token blocklist ready", "backend", cfg.Blocklist.Backend)

	return &BlocklistHandle{Blocklist: bl}, nil
}
