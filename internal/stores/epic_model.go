package stores

import "errors"

// epicResponse mirrors the freeGamesPromotions payload; only the fields the
// adapter reads are declared
type epicResponse struct {
	Data struct {
		Catalog struct {
			SearchStore struct {
				Elements []epicElement `json:"elements"`
			} `json:"searchStore"`
		} `json:"Catalog"`
	} `json:"data"`
}

type epicElement struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	OfferType        string          `json:"offerType"`
	Status           string          `json:"status"`
	CustomAttributes []epicAttribute `json:"customAttributes"`
	CatalogNs        struct {
		Mappings []epicMapping `json:"mappings"`
	} `json:"catalogNs"`
	Price      *epicPrice      `json:"price"`
	Promotions *epicPromotions `json:"promotions"`
}

type epicAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type epicMapping struct {
	PageSlug string `json:"pageSlug"`
	PageType string `json:"pageType"`
}

type epicPrice struct {
	TotalPrice struct {
		DiscountPrice *int `json:"discountPrice"`
		OriginalPrice *int `json:"originalPrice"`
		FmtPrice      struct {
			OriginalPrice string `json:"originalPrice"`
		} `json:"fmtPrice"`
	} `json:"totalPrice"`
}

type epicPromotions struct {
	PromotionalOffers []struct {
		PromotionalOffers []epicOffer `json:"promotionalOffers"`
	} `json:"promotionalOffers"`
}

type epicOffer struct {
	EndDate         string `json:"endDate"`
	DiscountSetting *struct {
		DiscountPercentage *int `json:"discountPercentage"`
	} `json:"discountSetting"`
}

// epicPricing holds the price fields the eligibility check needs
type epicPricing struct {
	discountPrice      int
	originalPrice      int
	discountPercentage int
}

// pricing returns the price and discount of an offer, failing when any of
// them is absent from the payload
func (e epicElement) pricing(offer epicOffer) (epicPricing, error) {
	if e.Price == nil {
		return epicPricing{}, errors.New("price missing")
	}
	total := e.Price.TotalPrice
	if total.DiscountPrice == nil {
		return epicPricing{}, errors.New("discountPrice missing")
	}
	if total.OriginalPrice == nil {
		return epicPricing{}, errors.New("originalPrice missing")
	}
	if offer.DiscountSetting == nil || offer.DiscountSetting.DiscountPercentage == nil {
		return epicPricing{}, errors.New("discountPercentage missing")
	}
	return epicPricing{
		discountPrice:      *total.DiscountPrice,
		originalPrice:      *total.OriginalPrice,
		discountPercentage: *offer.DiscountSetting.DiscountPercentage,
	}, nil
}

// currentOffer returns the first offer of the first promotion group
func (e epicElement) currentOffer() (epicOffer, bool) {
	if e.Promotions == nil || len(e.Promotions.PromotionalOffers) == 0 {
		return epicOffer{}, false
	}
	offers := e.Promotions.PromotionalOffers[0].PromotionalOffers
	if len(offers) == 0 {
		return epicOffer{}, false
	}
	return offers[0], true
}
