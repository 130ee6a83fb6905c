package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/freegameworker/config"
	"sjsage522/freegameworker/helpers"
	"sjsage522/freegameworker/internal/game"
	"sjsage522/freegameworker/internal/stores"
	"sjsage522/freegameworker/services/catalog"
	"sjsage522/freegameworker/services/metrics"
	"sjsage522/freegameworker/services/worker"
)

const epicPayload = `{"data":{"Catalog":{"searchStore":{"elements":[
  {
    "title": "The Game",
    "id": "abc123",
    "offerType": "BASE_GAME",
    "status": "ACTIVE",
    "customAttributes": [],
    "catalogNs": {"mappings": [{"pageSlug": "the-game", "pageType": "productHome"}]},
    "price": {"totalPrice": {"discountPrice": 0, "originalPrice": 1999, "fmtPrice": {"originalPrice": "$19.99"}}},
    "promotions": {"promotionalOffers": [{"promotionalOffers": [
      {"endDate": "2025-06-15T23:59:59.000Z", "discountSetting": {"discountPercentage": 0}}
    ]}]}
  },
  {
    "title": "Always Free",
    "id": "f2p",
    "offerType": "BASE_GAME",
    "status": "ACTIVE",
    "customAttributes": [],
    "catalogNs": {"mappings": null},
    "price": {"totalPrice": {"discountPrice": 0, "originalPrice": 0, "fmtPrice": {"originalPrice": "0"}}},
    "promotions": null
  }
]}}}}`

// memoryCatalog is an in-memory stand-in for the catalog REST service
type memoryCatalog struct {
	mu    sync.Mutex
	token string
	games map[game.PartialGame]game.Game
	order []game.PartialGame
}

func (c *memoryCatalog) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(catalog.TokenHeader) != c.token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case r.URL.Path == "/" && r.Method == http.MethodGet:
		list := make([]game.Game, 0, len(c.order))
		for _, key := range c.order {
			list = append(list, c.games[key])
		}
		json.NewEncoder(w).Encode(list)
	case r.URL.Path == "/game" && r.Method == http.MethodGet:
		var key game.PartialGame
		if err := json.NewDecoder(r.Body).Decode(&key); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, ok := c.games[key]
		fmt.Fprint(w, ok)
	case r.URL.Path == "/game" && r.Method == http.MethodPost:
		var g game.Game
		if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if _, ok := c.games[g.Key()]; ok {
			http.Error(w, "duplicate", http.StatusConflict)
			return
		}
		c.games[g.Key()] = g
		c.order = append(c.order, g.Key())
	default:
		http.NotFound(w, r)
	}
}

func TestPollCycleEndToEnd(t *testing.T) {
	epic := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		fmt.Fprint(w, epicPayload)
	}))
	defer epic.Close()

	store := &memoryCatalog{token: "secret", games: map[game.PartialGame]game.Game{}}
	catalogSrv := httptest.NewServer(store)
	defer catalogSrv.Close()

	cfg := &config.Config{
		Stores:         []string{"epicgames"},
		EpicURL:        epic.URL,
		RateLimitBlock: time.Minute,
	}
	m := metrics.New()
	client := catalog.NewClient(catalogSrv.URL, "secret", 5*time.Second)

	w := worker.NewWorker(
		stores.CreateStores(cfg, nil, m),
		helpers.NewFetcher(helpers.NewHTTPClient(5*time.Second)),
		client,
		nil,
		m,
		worker.Config{Interval: time.Minute, WaitRetries: 1},
	)

	ctx := context.Background()
	require.NoError(t, w.WaitForCatalog(ctx))

	assert.Equal(t, 1, w.RunOnce(ctx))
	// The second cycle finds the offer already recorded
	assert.Equal(t, 0, w.RunOnce(ctx))

	games, err := client.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)

	got := games[0]
	assert.Equal(t, "abc123", got.ID)
	assert.Equal(t, game.StoreEpicGames, got.Store)
	assert.Equal(t, "The_Game", got.Identifier)
	assert.Equal(t, game.TypeGame, got.GameType)
	assert.Equal(t, "2025-06-15", got.OfferUntil.String())
	assert.Equal(t, "https://store.epicgames.com/en-US/p/the-game", got.URL)
}

func TestWaitForCatalogFailsWithWrongToken(t *testing.T) {
	store := &memoryCatalog{token: "secret", games: map[game.PartialGame]game.Game{}}
	catalogSrv := httptest.NewServer(store)
	defer catalogSrv.Close()

	w := worker.NewWorker(
		nil,
		helpers.NewFetcher(nil),
		catalog.NewClient(catalogSrv.URL, "wrong", 5*time.Second),
		nil,
		nil,
		worker.Config{WaitRetries: 5},
	)

	// A refused token ends the wait on the first attempt
	assert.Error(t, w.WaitForCatalog(context.Background()))
}

func TestInitializeServicesWithoutOptionalBackends(t *testing.T) {
	cfg := &config.Config{
		CatalogURL:   "http://127.0.0.1:1",
		CatalogToken: "secret",
		HTTPTimeout:  time.Second,
	}

	services := initializeServices(context.Background(), cfg)
	defer services.Cleanup()

	assert.Nil(t, services.Cache)
	assert.Nil(t, services.Publisher)
	assert.NotNil(t, services.Metrics)
	assert.IsType(t, &catalog.Client{}, services.Catalog)
}
