package providers

import (
	"github.com/samber/do/v2"

	"github.com/coverdash/coverdash-server/internal/catalog/itunes"
	"github.com/coverdash/coverdash-server/internal/catalog/spotify"
	"github.com/coverdash/coverdash-server/internal/config"
	"github.com/coverdash/coverdash-server/internal/export"
	"github.com/coverdash/coverdash-server/internal/logger"
	"github.com/coverdash/coverdash-server/internal/media/covers"
	"github.com/coverdash/coverdash-server/internal/service"
	"github.com/coverdash/coverdash-server/internal/session"
)

// ProvideSessionRegistry provides the in-memory search session registry.
func ProvideSessionRegistry(i do.Injector) (*session.Registry, error) {
	return session.NewRegistry(0), nil
}

// ProvideExportBuilder provides the ZIP archive builder.
func ProvideExportBuilder(i do.Injector) (*export.Builder, error) {
	log := do.MustInvoke[*logger.Logger](i)
	fetcher := do.MustInvoke[*covers.Fetcher](i)

	return export.NewBuilder(fetcher, log.Logger), nil
}

// ProvideSearchService provides the batch artwork search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sp := do.MustInvoke[*spotify.Client](i)
	it := do.MustInvoke[*itunes.Client](i)
	registry := do.MustInvoke[*session.Registry](i)

	creds := spotify.Credentials{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
	}

	return service.NewSearchService(sp, it, registry, creds, log.Logger), nil
}

// ProvideExportService provides the selection and archive service.
func ProvideExportService(i do.Injector) (*service.ExportService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	registry := do.MustInvoke[*session.Registry](i)
	builder := do.MustInvoke[*export.Builder](i)
	fetcher := do.MustInvoke[*covers.Fetcher](i)

	return service.NewExportService(registry, builder, fetcher, log.Logger), nil
}
