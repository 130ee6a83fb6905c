package stores

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/freegameworker/internal/game"
	"sjsage522/freegameworker/services/metrics"
)

var dateComparer = cmp.Comparer(func(a, b game.Date) bool { return a.Equal(b) })

type epicFixture struct {
	ID            string
	Title         string
	OfferType     string
	Status        string
	DiscountPrice int
	OriginalPrice int
	Percentage    int
	EndDate       string
	Mapping       string
	SlugAttr      string
	NoPromotions  bool
}

func (f epicFixture) json() string {
	mappings := "null"
	if f.Mapping != "" {
		mappings = fmt.Sprintf(`[{"pageSlug":"ignored","pageType":"offer"},{"pageSlug":%q,"pageType":"productHome"}]`, f.Mapping)
	}
	attrs := `[{"key":"com.epicgames.app.blacklist","value":"[]"}]`
	if f.SlugAttr != "" {
		attrs = fmt.Sprintf(`[{"key":"com.epicgames.app.productSlug","value":%q}]`, f.SlugAttr)
	}
	promotions := fmt.Sprintf(`{"promotionalOffers":[{"promotionalOffers":[{"startDate":"2025-06-08T15:00:00.000Z","endDate":%q,"discountSetting":{"discountType":"PERCENTAGE","discountPercentage":%d}}]}],"upcomingPromotionalOffers":[]}`, f.EndDate, f.Percentage)
	if f.NoPromotions {
		promotions = "null"
	}
	return fmt.Sprintf(`{
		"title": %q, "id": %q, "offerType": %q, "status": %q,
		"customAttributes": %s,
		"catalogNs": {"mappings": %s},
		"price": {"totalPrice": {"discountPrice": %d, "originalPrice": %d, "fmtPrice": {"originalPrice": "$19.99", "discountPrice": "0"}}},
		"promotions": %s
	}`, f.Title, f.ID, f.OfferType, f.Status, attrs, mappings, f.DiscountPrice, f.OriginalPrice, promotions)
}

func freeEpicFixture(id, title string) epicFixture {
	return epicFixture{
		ID:            id,
		Title:         title,
		OfferType:     "BASE_GAME",
		Status:        "ACTIVE",
		OriginalPrice: 1999,
		EndDate:       "2025-06-15T23:59:59.000Z",
		Mapping:       strings.ToLower(strings.ReplaceAll(title, " ", "-")),
	}
}

func newEpicServer(t *testing.T, fixtures ...epicFixture) *httptest.Server {
	elements := make([]string, 0, len(fixtures))
	for _, f := range fixtures {
		elements = append(elements, f.json())
	}
	payload := fmt.Sprintf(`{"data":{"Catalog":{"searchStore":{"elements":[%s]}}},"extensions":{}}`, strings.Join(elements, ","))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		fmt.Fprint(w, payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEpicStoreGetGames(t *testing.T) {
	srv := newEpicServer(t, freeEpicFixture("abc123", "The Game"))
	store := NewEpicStore(srv.URL, Options{})

	games := store.GetGames(context.Background(), newTestFetcher(), newMockChecker())

	want := []game.Game{{
		ID:            "abc123",
		Store:         game.StoreEpicGames,
		Title:         "The Game",
		Identifier:    "The_Game",
		URL:           "https://store.epicgames.com/en-US/p/the-game",
		OriginalPrice: "$19.99",
		OfferUntil:    game.MustDate(2025, 6, 15),
		GameType:      game.TypeGame,
	}}
	if diff := cmp.Diff(want, games, dateComparer); diff != "" {
		t.Errorf("GetGames() mismatch (-want +got):\n%s", diff)
	}
}

func TestEpicStoreFiltersCandidates(t *testing.T) {
	paid := freeEpicFixture("paid", "Paid Game")
	paid.DiscountPrice = 999

	alwaysFree := freeEpicFixture("f2p", "Free To Play")
	alwaysFree.OriginalPrice = 0

	expired := freeEpicFixture("expired", "Expired")
	expired.Status = "INACTIVE"

	odd := freeEpicFixture("odd", "Odd Discount")
	odd.Percentage = 100

	noPromo := freeEpicFixture("nopromo", "No Promotion")
	noPromo.NoPromotions = true

	noSlug := freeEpicFixture("noslug", "No Slug")
	noSlug.Mapping = ""

	badDate := freeEpicFixture("baddate", "Bad Date")
	badDate.EndDate = "soon"

	fallback := freeEpicFixture("fallback", "Mystery Box")
	fallback.Mapping = ""
	fallback.SlugAttr = "mystery-box"
	fallback.OfferType = "BUNDLE"

	srv := newEpicServer(t, paid, alwaysFree, expired, odd, noPromo, noSlug, badDate, fallback)
	m := metrics.New()
	store := NewEpicStore(srv.URL, Options{Metrics: m})
	checker := newMockChecker()

	games := store.GetGames(context.Background(), newTestFetcher(), checker)

	require.Len(t, games, 1)
	assert.Equal(t, "fallback", games[0].ID)
	assert.Equal(t, "https://store.epicgames.com/en-US/p/mystery-box", games[0].URL)
	assert.Equal(t, game.TypeBundle, games[0].GameType)

	// Only candidates passing eligibility reach the catalog
	assert.ElementsMatch(t, []game.PartialGame{
		{ID: "noslug", Store: game.StoreEpicGames},
		{ID: "baddate", Store: game.StoreEpicGames},
		{ID: "fallback", Store: game.StoreEpicGames},
	}, checker.calls)

	assert.Equal(t, 1.0, counterValue(t, m, "offers_emitted_total", "store", "epicgames"))
	assert.Equal(t, 4.0, counterValue(t, m, "candidates_skipped_total", "store", "epicgames", "reason", "ineligible"))
}

func TestEpicStoreDropsIncompletePrices(t *testing.T) {
	elements := []string{
		// discountPrice and discountSetting absent
		`{"title":"Paid Game","id":"paid","offerType":"BASE_GAME","status":"ACTIVE","customAttributes":[],
		  "catalogNs":{"mappings":[{"pageSlug":"paid-game","pageType":"productHome"}]},
		  "price":{"totalPrice":{"originalPrice":1999,"fmtPrice":{"originalPrice":"$19.99"}}},
		  "promotions":{"promotionalOffers":[{"promotionalOffers":[{"endDate":"2025-06-15T23:59:59.000Z"}]}]}}`,
		// originalPrice absent
		`{"title":"No Original","id":"noorig","offerType":"BASE_GAME","status":"ACTIVE","customAttributes":[],
		  "catalogNs":{"mappings":[{"pageSlug":"no-original","pageType":"productHome"}]},
		  "price":{"totalPrice":{"discountPrice":0,"fmtPrice":{"originalPrice":"$9.99"}}},
		  "promotions":{"promotionalOffers":[{"promotionalOffers":[{"endDate":"2025-06-15T23:59:59.000Z","discountSetting":{"discountPercentage":0}}]}]}}`,
		// price object absent
		`{"title":"No Price","id":"noprice","offerType":"BASE_GAME","status":"ACTIVE","customAttributes":[],
		  "catalogNs":{"mappings":[{"pageSlug":"no-price","pageType":"productHome"}]},
		  "promotions":{"promotionalOffers":[{"promotionalOffers":[{"endDate":"2025-06-15T23:59:59.000Z","discountSetting":{"discountPercentage":0}}]}]}}`,
	}
	payload := fmt.Sprintf(`{"data":{"Catalog":{"searchStore":{"elements":[%s]}}}}`, strings.Join(elements, ","))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	m := metrics.New()
	store := NewEpicStore(srv.URL, Options{Metrics: m})
	checker := newMockChecker()

	games := store.GetGames(context.Background(), newTestFetcher(), checker)

	assert.Empty(t, games)
	assert.Empty(t, checker.calls)
	assert.Equal(t, 3.0, counterValue(t, m, "candidates_skipped_total", "store", "epicgames", "reason", "parse"))
}

func TestEpicStoreSkipsKnownGames(t *testing.T) {
	srv := newEpicServer(t, freeEpicFixture("old", "Old News"), freeEpicFixture("new", "Fresh"))
	store := NewEpicStore(srv.URL, Options{})
	checker := newMockChecker(game.PartialGame{ID: "old", Store: game.StoreEpicGames})

	games := store.GetGames(context.Background(), newTestFetcher(), checker)

	require.Len(t, games, 1)
	assert.Equal(t, "new", games[0].ID)
}

func TestEpicStoreTreatsCheckFailureAsKnown(t *testing.T) {
	srv := newEpicServer(t, freeEpicFixture("abc", "Anything"))
	store := NewEpicStore(srv.URL, Options{})
	checker := newMockChecker()
	checker.err = errors.New("catalog down")

	games := store.GetGames(context.Background(), newTestFetcher(), checker)
	assert.Empty(t, games)
}

func TestEpicStoreListingFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": "not what we expected"}`)
	}))
	defer srv.Close()

	m := metrics.New()
	store := NewEpicStore(srv.URL, Options{Metrics: m})
	games := store.GetGames(context.Background(), newTestFetcher(), newMockChecker())

	assert.Empty(t, games)
	assert.Equal(t, 1.0, counterValue(t, m, "store_failures_total", "store", "epicgames"))
}

func TestEpicGameType(t *testing.T) {
	assert.Equal(t, game.TypeGame, epicGameType("BASE_GAME"))
	assert.Equal(t, game.TypeGame, epicGameType("OTHERS"))
	assert.Equal(t, game.TypeDlc, epicGameType("ADD_ON"))
	assert.Equal(t, game.TypeBundle, epicGameType("BUNDLE"))
	assert.Equal(t, game.TypeEdition, epicGameType("EDITION"))
	assert.Equal(t, game.TypeUnknown, epicGameType("DEMO"))
}
