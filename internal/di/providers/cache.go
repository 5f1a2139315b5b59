package providers

import (
	"github.com/samber/do/v2"

	"github.com/coverdash/coverdash-server/internal/cache"
	"github.com/coverdash/coverdash-server/internal/config"
	"github.com/coverdash/coverdash-server/internal/logger"
)

// CacheHandle wraps the memoization cache with shutdown capability.
type CacheHandle struct {
	*cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Cache.Close()
}

// ProvideCache provides the in-memory memoization cache shared by the
// catalog clients and the image fetcher.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	memo, err := cache.New(log.Logger, cfg.Cache.TTL)
	if err != nil {
		return nil, err
	}
	log.Info("Memoization cache initialized", "ttl", cfg.Cache.TTL)

	return &CacheHandle{Cache: memo}, nil
}
