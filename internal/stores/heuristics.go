package stores

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"sjsage522/freegameworker/helpers"
	"sjsage522/freegameworker/internal/game"
)

const (
	// FullDiscount is the badge text of a 100% discount
	FullDiscount = "-100%"
	// ZeroPrice is the final price string of a free GOG product
	ZeroPrice = "$0.00"
)

var (
	monthDayRegex = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+(\d{1,2})\b`)
	gogPromoRegex = regexp.MustCompile(`cardProductPromoEndDate\s*=\s*\{\s*"date"\s*:\s*"(\d{4}-\d{2}-\d{2})`)
)

// ExtractMonthDay finds the first "<month> <day>" pair in text
func ExtractMonthDay(text string) (time.Month, int, error) {
	match := monthDayRegex.FindStringSubmatch(text)
	if match == nil {
		return 0, 0, fmt.Errorf("no month/day in %q", text)
	}

	// time.Parse matches month names case-insensitively
	parsed, err := time.Parse("Jan 2", fmt.Sprintf("%s %s", match[1][:3], match[2]))
	if err != nil {
		return 0, 0, fmt.Errorf("parse %q: %w", match[0], err)
	}
	return parsed.Month(), parsed.Day(), nil
}

// ResolveYear places month/day in the current year, rolling over to the next
// year when that date is already behind today
func ResolveYear(month time.Month, day int, today game.Date) (game.Date, error) {
	candidate, err := game.NewDate(today.Year(), month, day)
	if err != nil {
		return game.Date{}, err
	}
	if candidate.Before(today) {
		return game.NewDate(today.Year()+1, month, day)
	}
	return candidate, nil
}

// ParseOfferEnd reads the YYYY-MM-DD prefix of a longer timestamp
func ParseOfferEnd(timestamp string) (game.Date, error) {
	prefix, err := helpers.Prefix(timestamp, len(game.DateLayout))
	if err != nil {
		return game.Date{}, fmt.Errorf("timestamp %q too short: %w", timestamp, err)
	}
	return game.ParseDate(prefix)
}

// ExtractPromoEnd finds the embedded promotion end date on a GOG product page
func ExtractPromoEnd(page string) (game.Date, error) {
	match := gogPromoRegex.FindStringSubmatch(page)
	if match == nil {
		return game.Date{}, fmt.Errorf("promotion end date not found")
	}
	return game.ParseDate(match[1])
}

// IsFullDiscount reports whether a discount badge reads exactly -100%
func IsFullDiscount(badge string) bool {
	return strings.TrimSpace(badge) == FullDiscount
}
