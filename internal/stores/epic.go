package stores

import (
	"context"
	"fmt"
	"strings"

	"sjsage522/freegameworker/internal/game"
	apperrors "sjsage522/freegameworker/pkg/errors"
	"sjsage522/freegameworker/services/catalog"
)

const (
	// DefaultEpicURL is the public free games promotions endpoint
	DefaultEpicURL = "https://store-site-backend-static-ipv4.ak.epicgames.com/freeGamesPromotions"

	epicProductURL   = "https://store.epicgames.com/en-US/p/"
	epicSlugKey      = "com.epicgames.app.productSlug"
	epicProductHome  = "productHome"
	epicActiveStatus = "ACTIVE"
)

// EpicStore reads the Epic Games free promotions API
type EpicStore struct {
	BaseStore
	APIURL string
}

// NewEpicStore creates an Epic Games adapter
func NewEpicStore(apiURL string, opts Options) *EpicStore {
	if apiURL == "" {
		apiURL = DefaultEpicURL
	}
	return &EpicStore{
		BaseStore: newBaseStore("epicgames", game.StoreEpicGames, opts),
		APIURL:    apiURL,
	}
}

// GetGames implements Storefront
func (e *EpicStore) GetGames(ctx context.Context, fetcher Fetcher, checker catalog.ExistenceChecker) []game.Game {
	var resp epicResponse
	if err := e.fetchListingJSON(ctx, fetcher, e.APIURL, &resp); err != nil {
		return e.listingFailed(err)
	}

	elements := resp.Data.Catalog.SearchStore.Elements
	e.log.Debug().Int("elements", len(elements)).Msg("Fetched promotions")

	var games []game.Game
	for _, el := range elements {
		if ctx.Err() != nil {
			break
		}

		offer, ok := el.currentOffer()
		if !ok {
			continue
		}
		price, err := el.pricing(offer)
		if err != nil {
			e.skip(el.ID, reasonParse, apperrors.NewParsing(e.Name, "incomplete price data", err))
			continue
		}
		if !EpicEligible(price.discountPrice, price.originalPrice, el.Status, price.discountPercentage) {
			e.skip(el.ID, reasonIneligible, nil)
			continue
		}

		if e.isKnown(ctx, checker, game.PartialGame{ID: el.ID, Store: game.StoreEpicGames}) {
			e.skip(el.ID, reasonExists, nil)
			continue
		}

		g, reason, err := e.buildGame(el, offer)
		if err != nil {
			e.skip(el.ID, reason, err)
			continue
		}
		games = e.emit(games, g)
	}
	return games
}

func (e *EpicStore) buildGame(el epicElement, offer epicOffer) (game.Game, string, error) {
	url, ok := epicProductPage(el)
	if !ok {
		return game.Game{}, reasonNoURL, apperrors.NewValidation(e.Name, "no product slug")
	}

	until, err := ParseOfferEnd(offer.EndDate)
	if err != nil {
		return game.Game{}, reasonNoDate, apperrors.NewParsing(e.Name, fmt.Sprintf("bad end date %q", offer.EndDate), err)
	}

	return game.Game{
		ID:            el.ID,
		Store:         game.StoreEpicGames,
		Title:         el.Title,
		Identifier:    game.MakeIdentifier(el.Title),
		URL:           url,
		OriginalPrice: el.Price.TotalPrice.FmtPrice.OriginalPrice,
		OfferUntil:    until,
		GameType:      epicGameType(el.OfferType),
	}, "", nil
}

// EpicEligible reports whether a promotion is a real, timed free offer
func EpicEligible(discountPrice, originalPrice int, status string, discountPercentage int) bool {
	switch {
	case discountPrice > 0:
		return false
	case originalPrice == 0:
		return false
	case status != epicActiveStatus:
		return false
	case discountPercentage != 0:
		return false
	}
	return true
}

// epicProductPage prefers the productHome mapping and falls back to the
// product slug attribute
func epicProductPage(el epicElement) (string, bool) {
	for _, m := range el.CatalogNs.Mappings {
		if m.PageType == epicProductHome && m.PageSlug != "" {
			return epicProductURL + m.PageSlug, true
		}
	}
	for _, attr := range el.CustomAttributes {
		if attr.Key == epicSlugKey && strings.TrimSpace(attr.Value) != "" {
			return epicProductURL + attr.Value, true
		}
	}
	return "", false
}

func epicGameType(offerType string) game.GameType {
	switch offerType {
	case "BASE_GAME", "OTHERS":
		return game.TypeGame
	case "ADD_ON":
		return game.TypeDlc
	case "BUNDLE":
		return game.TypeBundle
	case "EDITION":
		return game.TypeEdition
	default:
		return game.TypeUnknown
	}
}
