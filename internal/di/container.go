// Package di provides dependency injection configuration for the Grimoire server.
package di

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/grimoireapp/grimoire-server/internal/api"
	"github.com/grimoireapp/grimoire-server/internal/auth"
	"github.com/grimoireapp/grimoire-server/internal/config"
	"github.com/grimoireapp/grimoire-server/internal/di/providers"
	"github.com/grimoireapp/grimoire-server/internal/logger"
	"github.com/grimoireapp/grimoire-server/internal/metrics"
	"github.com/grimoireapp/grimoire-server/internal/service"
	"github.com/grimoireapp/grimoire-server/internal/validation"
)

// NewContainer creates the DI container for cfg with all providers registered.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideMetrics)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideDayService)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes every service and starts the HTTP server.
func Bootstrap(injector do.Injector) (*providers.HTTPServerHandle, error) {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*metrics.Metrics](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*validation.Validator](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return nil, err
	}

	// Business services
	if _, err := do.Invoke[*service.AuthService](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*service.TagService](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*service.DayService](injector); err != nil {
		return nil, err
	}

	// Expired sessions are otherwise only purged at login.
	sessions, err := do.Invoke[*service.SessionService](injector)
	if err != nil {
		return nil, err
	}
	sessions.PurgeExpired(context.Background())

	// Server
	if _, err := do.Invoke[*api.Server](injector); err != nil {
		return nil, err
	}
	return do.Invoke[*providers.HTTPServerHandle](injector)
}
