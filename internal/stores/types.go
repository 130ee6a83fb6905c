package stores

import (
	"context"
	"net/http"
	"time"

	"sjsage522/freegameworker/internal/game"
	"sjsage522/freegameworker/services/cache"
	"sjsage522/freegameworker/services/catalog"
	"sjsage522/freegameworker/services/metrics"
)

// Storefront produces the currently free offers of one store
type Storefront interface {
	// GetGames returns new free offers. Failures are logged and yield a
	// shorter (possibly empty) list; they never abort the caller.
	GetGames(ctx context.Context, fetcher Fetcher, checker catalog.ExistenceChecker) []game.Game

	// GetName returns the adapter name used in logs, metrics and config
	GetName() string

	// GetStore returns the store the adapter emits records for
	GetStore() game.Store
}

// Fetcher is the outbound HTTP capability adapters rely on
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers http.Header) ([]byte, error)
	FetchJSON(ctx context.Context, url string, headers http.Header, v any) error
}

// Pacer is called between per-item network calls to keep request rates
// storefront friendly
type Pacer func(ctx context.Context)

// SleepPacer waits d or until ctx is done
func SleepPacer(d time.Duration) Pacer {
	return func(ctx context.Context) {
		if d <= 0 {
			return
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
	}
}

// NoPace does not wait at all
func NoPace(context.Context) {}

// Options carries the collaborators shared by every adapter
type Options struct {
	// Cache holds rate limit blocks; nil disables blocking
	Cache cache.CacheService
	// BlockTime is how long a store is left alone after it rate limits us
	BlockTime time.Duration
	// Pace is called between per-item requests; nil means NoPace
	Pace Pacer
	// Now is the clock used for year inference; nil means time.Now
	Now func() time.Time
	// Metrics may be nil
	Metrics *metrics.Metrics
}
