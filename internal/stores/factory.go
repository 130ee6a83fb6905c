package stores

import (
	"sjsage522/freegameworker/config"
	"sjsage522/freegameworker/logger"
	"sjsage522/freegameworker/services/cache"
	"sjsage522/freegameworker/services/metrics"
)

// CreateStores builds the configured adapters in cfg.Stores order
func CreateStores(cfg *config.Config, cacheSvc cache.CacheService, m *metrics.Metrics) []Storefront {
	base := Options{
		Cache:     cacheSvc,
		BlockTime: cfg.RateLimitBlock,
		Metrics:   m,
	}

	var stores []Storefront
	for _, name := range cfg.Stores {
		opts := base
		switch name {
		case "steam":
			opts.Pace = SleepPacer(cfg.SteamDetailDelay)
			stores = append(stores, NewSteamStore(cfg.SteamURL, opts))
		case "epicgames":
			stores = append(stores, NewEpicStore(cfg.EpicURL, opts))
		case "gog":
			opts.Pace = SleepPacer(cfg.GogItemDelay)
			stores = append(stores, NewGogStore(cfg.GogURL, opts))
		default:
			logger.Warn("Ignoring unknown store %q", name)
		}
	}

	for i, s := range stores {
		logger.Debug("Store %d: %s", i, s.GetName())
	}
	return stores
}
