// Package di provides dependency injection configuration for the Coverdash server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/coverdash/coverdash-server/internal/catalog/itunes"
	"github.com/coverdash/coverdash-server/internal/catalog/spotify"
	"github.com/coverdash/coverdash-server/internal/config"
	"github.com/coverdash/coverdash-server/internal/di/providers"
	"github.com/coverdash/coverdash-server/internal/export"
	"github.com/coverdash/coverdash-server/internal/logger"
	"github.com/coverdash/coverdash-server/internal/media/covers"
	"github.com/coverdash/coverdash-server/internal/service"
	"github.com/coverdash/coverdash-server/internal/session"
	"github.com/coverdash/coverdash-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideCache)

	// Catalog layer
	do.Provide(injector, providers.ProvideSpotifyClient)
	do.Provide(injector, providers.ProvideITunesClient)
	do.Provide(injector, providers.ProvideCoverFetcher)

	// Session and export layer
	do.Provide(injector, providers.ProvideSessionRegistry)
	do.Provide(injector, providers.ProvideExportBuilder)

	// Business services
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideExportService)

	// Server
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.CacheHandle](injector)
	_ = do.MustInvoke[*spotify.Client](injector)
	_ = do.MustInvoke[*itunes.Client](injector)
	_ = do.MustInvoke[*covers.Fetcher](injector)
	_ = do.MustInvoke[*session.Registry](injector)
	_ = do.MustInvoke[*export.Builder](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.ExportService](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
