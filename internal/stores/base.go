package stores

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"sjsage522/freegameworker/internal/game"
	"sjsage522/freegameworker/logger"
	apperrors "sjsage522/freegameworker/pkg/errors"
	"sjsage522/freegameworker/services/cache"
	"sjsage522/freegameworker/services/catalog"
)

// Skip reasons reported to logs and metrics
const (
	reasonIneligible = "ineligible"
	reasonExists     = "exists"
	reasonNoURL      = "no_url"
	reasonNoDate     = "no_date"
	reasonDetail     = "detail_fetch"
	reasonParse      = "parse"
)

// BaseStore provides common functionality for all storefront adapters
type BaseStore struct {
	Name      string
	Store     game.Store
	CacheSvc  cache.CacheService
	BlockTime time.Duration
	pace      Pacer
	now       func() time.Time
	opts      Options
	log       *logger.Logger
}

func newBaseStore(name string, store game.Store, opts Options) BaseStore {
	b := BaseStore{
		Name:      name,
		Store:     store,
		CacheSvc:  opts.Cache,
		BlockTime: opts.BlockTime,
		pace:      opts.Pace,
		now:       opts.Now,
		opts:      opts,
		log:       logger.ForStore(name),
	}
	if b.pace == nil {
		b.pace = NoPace
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// GetName returns the adapter name
func (b *BaseStore) GetName() string {
	return b.Name
}

// GetStore returns the store the adapter emits records for
func (b *BaseStore) GetStore() game.Store {
	return b.Store
}

func (b *BaseStore) rateLimitKey() string {
	return cache.Key(b.Name, "rate_limited")
}

// isBlocked reports whether a previous rate limit still blocks this store
func (b *BaseStore) isBlocked() bool {
	if b.CacheSvc == nil {
		return false
	}
	_, err := b.CacheSvc.Get(b.rateLimitKey())
	return err == nil
}

// noteFetchError blocks the store for BlockTime when err is a rate limit
func (b *BaseStore) noteFetchError(err error) {
	if b.CacheSvc == nil || b.BlockTime <= 0 || !apperrors.IsRateLimit(err) {
		return
	}
	value := []byte(fmt.Sprintf("%d", int(b.BlockTime/time.Second)))
	if cacheErr := b.CacheSvc.Set(b.rateLimitKey(), value, b.BlockTime); cacheErr != nil {
		b.log.Warn().Err(cacheErr).Msg("Failed to store rate limit block")
		return
	}
	b.log.Warn().Dur("block_time", b.BlockTime).Msg("Rate limited, pausing store")
}

// fetchListing fetches the listing document, honouring rate limit blocks
func (b *BaseStore) fetchListing(ctx context.Context, fetcher Fetcher, url string) ([]byte, error) {
	if b.isBlocked() {
		return nil, apperrors.NewRateLimit(b.Name, b.BlockTime.String())
	}
	body, err := fetcher.Fetch(ctx, url, nil)
	if err != nil {
		b.noteFetchError(err)
		return nil, err
	}
	return body, nil
}

// fetchListingJSON is fetchListing for JSON APIs
func (b *BaseStore) fetchListingJSON(ctx context.Context, fetcher Fetcher, url string, v any) error {
	if b.isBlocked() {
		return apperrors.NewRateLimit(b.Name, b.BlockTime.String())
	}
	if err := fetcher.FetchJSON(ctx, url, nil, v); err != nil {
		b.noteFetchError(err)
		return err
	}
	return nil
}

// fetchDetail fetches a per-candidate page with the given cookie
func (b *BaseStore) fetchDetail(ctx context.Context, fetcher Fetcher, url, cookie string) ([]byte, error) {
	headers := http.Header{}
	if cookie != "" {
		headers.Set("Cookie", cookie)
	}
	body, err := fetcher.Fetch(ctx, url, headers)
	if err != nil {
		b.noteFetchError(err)
		return nil, err
	}
	return body, nil
}

// isKnown asks the catalog whether key is already recorded. A failed check
// counts as known so a flaky catalog cannot cause duplicate emissions.
func (b *BaseStore) isKnown(ctx context.Context, checker catalog.ExistenceChecker, key game.PartialGame) bool {
	exists, err := checker.Exists(ctx, key)
	if err != nil {
		b.log.Warn().Err(err).Str("id", key.ID).Msg("Existence check failed, treating game as known")
		return true
	}
	if exists {
		b.log.Debug().Str("id", key.ID).Msg("Game already exists, skipping")
		return true
	}
	b.log.Debug().Str("id", key.ID).Msg("Game does not exist")
	return false
}

// skip records a dropped candidate
func (b *BaseStore) skip(id, reason string, err error) {
	b.opts.Metrics.CandidateSkipped(b.Name, reason)

	event := b.log.Debug()
	if err != nil && reason != reasonExists && reason != reasonIneligible {
		event = b.log.Warn().Err(err)
	}
	event.Str("id", id).Str("reason", reason).Msg("Skipping candidate")
}

// listingFailed records a store level failure; the adapter returns nothing
func (b *BaseStore) listingFailed(err error) []game.Game {
	b.opts.Metrics.StoreFailed(b.Name)
	b.log.Error().Err(err).Msg("Failed to read store listing")
	return nil
}

// emit records a new offer
func (b *BaseStore) emit(games []game.Game, g game.Game) []game.Game {
	b.opts.Metrics.OfferEmitted(b.Name)
	b.log.Info().Str("id", g.ID).Str("title", g.Title).Str("offer_until", g.OfferUntil.String()).Msg("Found free game")
	return append(games, g)
}

// today returns the current calendar date in UTC
func (b *BaseStore) today() game.Date {
	return game.DateOf(b.now().UTC())
}
