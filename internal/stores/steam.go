package stores

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/freegameworker/helpers"
	"sjsage522/freegameworker/internal/game"
	apperrors "sjsage522/freegameworker/pkg/errors"
	"sjsage522/freegameworker/services/catalog"
)

const (
	// DefaultSteamURL is the Steam store root
	DefaultSteamURL = "https://store.steampowered.com"

	steamSearchPath = "/search/?cc=us&maxprice=free&specials=1"
	steamRegion     = "cc=us"
	// Lets the detail page through the age gate for mature titles
	steamCookies = "birthtime=788914801;lastagecheckage=1-January-1995;wants_mature_content=1;"
)

// SteamSelectors locate the fields on the search and app pages
type SteamSelectors struct {
	Rows          string
	Discount      string
	Title         string
	Description   string
	OriginalPrice string
	OfferBanner   string
}

// DefaultSteamSelectors matches the current Steam markup
var DefaultSteamSelectors = SteamSelectors{
	Rows:          "div#search_resultsRows a",
	Discount:      "div.discount_pct",
	Title:         "div#appHubAppName",
	Description:   "div#game_area_description h2",
	OriginalPrice: "div.discount_original_price",
	OfferBanner:   "p.game_purchase_discount_quantity",
}

// SteamStore scrapes the Steam search results for 100% discounts
type SteamStore struct {
	BaseStore
	BaseURL   string
	Selectors SteamSelectors
	appRegex  *regexp.Regexp
}

// NewSteamStore creates a Steam adapter rooted at baseURL
func NewSteamStore(baseURL string, opts Options) *SteamStore {
	if baseURL == "" {
		baseURL = DefaultSteamURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &SteamStore{
		BaseStore: newBaseStore("steam", game.StoreSteam, opts),
		BaseURL:   baseURL,
		Selectors: DefaultSteamSelectors,
		appRegex:  regexp.MustCompile(regexp.QuoteMeta(baseURL) + `/app/(\d+)/[^/?#\s]+/`),
	}
}

// GetGames implements Storefront
func (s *SteamStore) GetGames(ctx context.Context, fetcher Fetcher, checker catalog.ExistenceChecker) []game.Game {
	links, err := s.listCandidates(ctx, fetcher)
	if err != nil {
		return s.listingFailed(err)
	}

	var games []game.Game
	fetched := 0
	for _, link := range links {
		if ctx.Err() != nil {
			break
		}

		match := s.appRegex.FindStringSubmatch(link)
		if match == nil {
			s.skip(link, reasonNoURL, fmt.Errorf("link %q is not an app page", link))
			continue
		}
		canonical, id := match[0], match[1]

		if s.isKnown(ctx, checker, game.PartialGame{ID: id, Store: game.StoreSteam}) {
			s.skip(id, reasonExists, nil)
			continue
		}

		if fetched > 0 {
			s.pace(ctx)
		}
		fetched++

		body, err := s.fetchDetail(ctx, fetcher, link, steamCookies)
		if err != nil {
			s.skip(id, reasonDetail, err)
			if apperrors.IsRateLimit(err) {
				break
			}
			continue
		}

		g, err := s.parseAppPage(body, id, canonical)
		if err != nil {
			s.skip(id, reasonParse, err)
			continue
		}
		games = s.emit(games, g)
	}
	return games
}

// listCandidates returns the region tagged links of rows with a full discount
func (s *SteamStore) listCandidates(ctx context.Context, fetcher Fetcher) ([]string, error) {
	body, err := s.fetchListing(ctx, fetcher, s.BaseURL+steamSearchPath)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewParsing(s.Name, "failed to parse search page", err)
	}

	var links []string
	doc.Find(s.Selectors.Rows).Each(func(_ int, row *goquery.Selection) {
		badge := row.Find(s.Selectors.Discount).First()
		if badge.Length() == 0 || !IsFullDiscount(badge.Text()) {
			return
		}
		href, ok := row.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		links = append(links, helpers.AppendQueryParam(strings.TrimSpace(href), steamRegion))
	})

	s.log.Debug().Int("candidates", len(links)).Msg("Parsed search results")
	return links, nil
}

func (s *SteamStore) parseAppPage(body []byte, id, canonical string) (game.Game, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return game.Game{}, apperrors.NewParsing(s.Name, "failed to parse app page", err)
	}

	title, err := firstText(doc, s.Selectors.Title)
	if err != nil {
		return game.Game{}, err
	}
	heading, err := firstText(doc, s.Selectors.Description)
	if err != nil {
		return game.Game{}, err
	}
	price, err := firstText(doc, s.Selectors.OriginalPrice)
	if err != nil {
		return game.Game{}, err
	}
	banner, err := firstText(doc, s.Selectors.OfferBanner)
	if err != nil {
		return game.Game{}, err
	}

	month, day, err := ExtractMonthDay(banner)
	if err != nil {
		return game.Game{}, apperrors.NewParsing(s.Name, "no offer end in banner", err)
	}
	until, err := ResolveYear(month, day, s.today())
	if err != nil {
		return game.Game{}, apperrors.NewParsing(s.Name, "invalid offer end", err)
	}

	return game.Game{
		ID:            id,
		Store:         game.StoreSteam,
		Title:         title,
		Identifier:    game.MakeIdentifier(title),
		URL:           canonical,
		OriginalPrice: price,
		OfferUntil:    until,
		GameType:      steamGameType(heading),
	}, nil
}

// steamGameType classifies by the last word of the "About This ..." heading
func steamGameType(heading string) game.GameType {
	words := strings.Fields(heading)
	if len(words) == 0 {
		return game.TypeUnknown
	}
	switch strings.ToLower(words[len(words)-1]) {
	case "game":
		return game.TypeGame
	case "content":
		return game.TypeDlc
	case "software":
		return game.TypeSoftware
	case "bundle":
		return game.TypeBundle
	default:
		return game.TypeUnknown
	}
}

func firstText(doc *goquery.Document, selector string) (string, error) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("selector %q not found", selector)
	}
	return strings.TrimSpace(sel.Text()), nil
}
