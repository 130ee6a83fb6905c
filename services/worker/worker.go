package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sjsage522/freegameworker/internal/game"
	"sjsage522/freegameworker/internal/stores"
	"sjsage522/freegameworker/logger"
	apperrors "sjsage522/freegameworker/pkg/errors"
	"sjsage522/freegameworker/services/catalog"
	"sjsage522/freegameworker/services/metrics"
	"sjsage522/freegameworker/services/publisher"
)

// Config holds the poll loop timings
type Config struct {
	// Interval is the pause between two poll cycles
	Interval time.Duration
	// WaitRetries bounds the startup catalog probes
	WaitRetries int
	// WaitDelay is the pause between two startup probes
	WaitDelay time.Duration
	// SubmitDelay is the pause after each catalog submission
	SubmitDelay time.Duration
}

// Worker polls every storefront in order and forwards new offers to the
// catalog service
type Worker struct {
	stores    []stores.Storefront
	fetcher   stores.Fetcher
	catalog   catalog.Catalog
	publisher publisher.Publisher
	metrics   *metrics.Metrics
	cfg       Config
	log       *logger.Logger

	sleep func(ctx context.Context, d time.Duration) bool
	now   func() time.Time
}

// NewWorker creates a new worker. pub and m may be nil.
func NewWorker(
	storefronts []stores.Storefront,
	fetcher stores.Fetcher,
	cat catalog.Catalog,
	pub publisher.Publisher,
	m *metrics.Metrics,
	cfg Config,
) *Worker {
	return &Worker{
		stores:    storefronts,
		fetcher:   fetcher,
		catalog:   cat,
		publisher: pub,
		metrics:   m,
		cfg:       cfg,
		log:       logger.ForWorker(),
		sleep:     sleepCtx,
		now:       time.Now,
	}
}

// sleepCtx waits d and reports false if ctx ended first
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Start waits for the catalog and then polls until ctx is cancelled. It only
// returns an error when the catalog never became reachable.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.WaitForCatalog(ctx); err != nil {
		return err
	}

	for {
		w.RunOnce(ctx)
		if !w.sleep(ctx, w.cfg.Interval) {
			w.log.Info().Msg("Worker stopped")
			return nil
		}
	}
}

// WaitForCatalog probes the catalog with a list call until it answers or the
// retry budget is spent
func (w *Worker) WaitForCatalog(ctx context.Context) error {
	retries := w.cfg.WaitRetries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		games, err := w.catalog.ListAll(ctx)
		if err == nil {
			w.log.Info().Int("games", len(games)).Int("attempt", attempt).Msg("Catalog is reachable")
			return nil
		}
		lastErr = err

		var storeErr *apperrors.StoreError
		if errors.As(err, &storeErr) && !storeErr.IsRetryable() {
			w.log.WithError(err).Error().Int("attempt", attempt).Msg("Catalog refused the worker")
			return apperrors.NewCatalog("catalog refused the worker", err)
		}
		w.log.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", retries).Msg("Catalog not reachable yet")

		if attempt < retries && !w.sleep(ctx, w.cfg.WaitDelay) {
			return ctx.Err()
		}
	}
	return apperrors.NewCatalog(fmt.Sprintf("catalog unreachable after %d attempts", retries), lastErr)
}

// RunOnce polls every storefront once, in order, and returns how many offers
// the catalog accepted
func (w *Worker) RunOnce(ctx context.Context) int {
	start := w.now()
	submitted := 0

	for _, s := range w.stores {
		if ctx.Err() != nil {
			break
		}
		submitted += w.pollStore(ctx, s)
	}

	if w.publisher != nil {
		if err := w.publisher.TrimStreams(ctx); err != nil {
			logger.LogError("StreamTrimming", err, "failed to trim announcement stream")
		}
	}

	end := w.now()
	w.metrics.CycleFinished(end.Sub(start), end)
	w.log.Info().Int("submitted", submitted).Dur("elapsed", end.Sub(start)).Msg("Poll cycle finished")
	return submitted
}

// pollStore runs one adapter and forwards its offers one by one
func (w *Worker) pollStore(ctx context.Context, s stores.Storefront) int {
	games := s.GetGames(ctx, w.fetcher, w.catalog)
	w.log.Debug().Str("store", s.GetName()).Int("games", len(games)).Msg("Store polled")

	submitted := 0
	for _, g := range games {
		if w.submit(ctx, s.GetName(), g) {
			submitted++
		}
		if !w.sleep(ctx, w.cfg.SubmitDelay) {
			break
		}
	}
	return submitted
}

func (w *Worker) submit(ctx context.Context, storeName string, g game.Game) bool {
	if err := w.catalog.Submit(ctx, g); err != nil {
		w.metrics.SubmitFailed(storeName)
		w.log.Error().Err(err).Str("store", storeName).Str("id", g.ID).Msg("Failed to submit game")
		return false
	}
	w.log.Info().Str("store", storeName).Str("id", g.ID).Str("title", g.Title).Msg("Submitted game")

	if w.publisher != nil {
		if err := w.publisher.Publish(ctx, g); err != nil {
			w.log.Error().Err(err).Str("id", g.ID).Msg("Failed to publish announcement")
		}
	}
	return true
}
