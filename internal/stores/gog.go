package stores

import (
	"context"
	"fmt"
	"net/url"

	"sjsage522/freegameworker/internal/game"
	apperrors "sjsage522/freegameworker/pkg/errors"
	"sjsage522/freegameworker/services/catalog"
)

const (
	// DefaultGogURL is the catalog query for discounted zero-price products
	DefaultGogURL = "https://catalog.gog.com/v1/catalog?limit=48&price=between:0,0&order=desc:trending&discounted=eq:true&productType=in:game,pack,dlc,extras&page=1&countryCode=US&locale=en-US&currencyCode=USD"

	gogCookies = "gog_wantsmaturecontent=18;"
)

// GogStore reads the GOG catalog API and each product page for the promo end
type GogStore struct {
	BaseStore
	APIURL string
}

// NewGogStore creates a GOG adapter
func NewGogStore(apiURL string, opts Options) *GogStore {
	if apiURL == "" {
		apiURL = DefaultGogURL
	}
	return &GogStore{
		BaseStore: newBaseStore("gog", game.StoreGog, opts),
		APIURL:    apiURL,
	}
}

// GetGames implements Storefront
func (g *GogStore) GetGames(ctx context.Context, fetcher Fetcher, checker catalog.ExistenceChecker) []game.Game {
	var resp gogResponse
	if err := g.fetchListingJSON(ctx, fetcher, g.APIURL, &resp); err != nil {
		return g.listingFailed(err)
	}
	g.log.Debug().Int("products", len(resp.Products)).Msg("Fetched catalog")

	var games []game.Game
	for _, p := range resp.Products {
		g.pace(ctx)
		if ctx.Err() != nil {
			break
		}

		if !GogEligible(p.Price.Discount, p.Price.Final) {
			g.skip(p.ID, reasonIneligible, nil)
			continue
		}

		if g.isKnown(ctx, checker, game.PartialGame{ID: p.ID, Store: game.StoreGog}) {
			g.skip(p.ID, reasonExists, nil)
			continue
		}

		if _, err := url.ParseRequestURI(p.StoreLink); p.StoreLink == "" || err != nil {
			g.skip(p.ID, reasonNoURL, fmt.Errorf("invalid store link %q", p.StoreLink))
			continue
		}

		body, err := g.fetchDetail(ctx, fetcher, p.StoreLink, gogCookies)
		if err != nil {
			g.skip(p.ID, reasonDetail, err)
			if apperrors.IsRateLimit(err) {
				break
			}
			continue
		}

		until, err := ExtractPromoEnd(string(body))
		if err != nil {
			g.skip(p.ID, reasonNoDate, apperrors.NewParsing(g.Name, "offer end missing on "+p.StoreLink, err))
			continue
		}

		games = g.emit(games, game.Game{
			ID:            p.ID,
			Store:         game.StoreGog,
			Title:         p.Title,
			Identifier:    game.MakeIdentifier(p.Title),
			URL:           p.StoreLink,
			OriginalPrice: p.Price.Base,
			OfferUntil:    until,
			GameType:      gogGameType(p.ProductType),
		})
	}
	return games
}

// GogEligible requires both a full discount and a zero final price
func GogEligible(discount, final string) bool {
	return discount == FullDiscount && final == ZeroPrice
}

func gogGameType(productType string) game.GameType {
	switch productType {
	case "game":
		return game.TypeGame
	case "dlc":
		return game.TypeDlc
	case "pack":
		return game.TypeEdition
	default:
		return game.TypeUnknown
	}
}
