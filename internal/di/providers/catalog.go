package providers

import (
	"github.com/samber/do/v2"

	"github.com/coverdash/coverdash-server/internal/catalog/itunes"
	"github.com/coverdash/coverdash-server/internal/catalog/spotify"
	"github.com/coverdash/coverdash-server/internal/config"
	"github.com/coverdash/coverdash-server/internal/logger"
	"github.com/coverdash/coverdash-server/internal/media/covers"
)

// ProvideSpotifyClient provides the Spotify catalog client.
func ProvideSpotifyClient(i do.Injector) (*spotify.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	memo := do.MustInvoke[*CacheHandle](i)

	client := spotify.New(log.Logger, memo.Cache, cfg.Catalog.Timeout, cfg.Catalog.ResultLimit)
	log.Info("Spotify client initialized", "result_limit", cfg.Catalog.ResultLimit)

	return client, nil
}

// ProvideITunesClient provides the iTunes catalog client.
func ProvideITunesClient(i do.Injector) (*itunes.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	memo := do.MustInvoke[*CacheHandle](i)

	client := itunes.NewClient(log.Logger, memo.Cache, cfg.Catalog.Timeout, cfg.Catalog.ResultLimit, cfg.Catalog.ProbeDimensions)
	log.Info("iTunes client initialized",
		"result_limit", cfg.Catalog.ResultLimit,
		"probe_dimensions", cfg.Catalog.ProbeDimensions,
	)

	return client, nil
}

// ProvideCoverFetcher provides the artwork download client.
func ProvideCoverFetcher(i do.Injector) (*covers.Fetcher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	memo := do.MustInvoke[*CacheHandle](i)

	return covers.NewFetcher(memo.Cache, log.Logger, cfg.Catalog.Timeout), nil
}
