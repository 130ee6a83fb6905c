package game

import (
	"fmt"
	"strings"
)

// AnnouncementText renders the social post for an offer
func AnnouncementText(g Game) string {
	hashtags := []string{"#FreeGames", "#" + g.Identifier}
	if g.Store == StoreSteam {
		hashtags = append(hashtags, "#SteamDeals")
	}

	return fmt.Sprintf(
		"[ %s ] \"%s\" is currently free on #%s until %s.\n\n%s\n\n%s",
		g.GameType.Display(),
		g.Title,
		g.Store,
		g.OfferUntil,
		g.URL,
		strings.Join(hashtags, " "),
	)
}
