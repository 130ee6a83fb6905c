package game

import (
	"encoding/json"
	"strings"
)

// Store identifies the storefront an offer was found on
type Store int

const (
	StoreUnknown Store = iota
	StoreSteam
	StoreEpicGames
	StoreGog
)

var storeNames = map[Store]string{
	StoreSteam:     "Steam",
	StoreEpicGames: "EpicGames",
	StoreGog:       "GOG",
	StoreUnknown:   "Unknown",
}

// String returns the wire name of the store
func (s Store) String() string {
	if name, ok := storeNames[s]; ok {
		return name
	}
	return storeNames[StoreUnknown]
}

// ParseStore maps a store name to a Store, case-insensitively. Unrecognised
// names become StoreUnknown.
func ParseStore(s string) Store {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "steam":
		return StoreSteam
	case "epicgames":
		return StoreEpicGames
	case "gog":
		return StoreGog
	default:
		return StoreUnknown
	}
}

// MarshalJSON encodes the store by its wire name
func (s Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a store wire name
func (s *Store) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*s = ParseStore(name)
	return nil
}

// GameType is the coarse classification of an offer
type GameType int

const (
	TypeUnknown GameType = iota
	TypeGame
	TypeDlc
	TypeSoftware
	TypeBundle
	TypeEdition
)

var gameTypeNames = map[GameType]string{
	TypeGame:     "Game",
	TypeDlc:      "Dlc",
	TypeSoftware: "Software",
	TypeBundle:   "Bundle",
	TypeEdition:  "Edition",
	TypeUnknown:  "Unknown",
}

// String returns the wire name of the type
func (t GameType) String() string {
	if name, ok := gameTypeNames[t]; ok {
		return name
	}
	return gameTypeNames[TypeUnknown]
}

// Display returns the human facing label used in announcements
func (t GameType) Display() string {
	if t == TypeDlc {
		return "DLC"
	}
	return t.String()
}

// ParseGameType maps a type name to a GameType, case-insensitively
func ParseGameType(s string) GameType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "game":
		return TypeGame
	case "dlc":
		return TypeDlc
	case "software":
		return TypeSoftware
	case "bundle":
		return TypeBundle
	case "edition":
		return TypeEdition
	default:
		return TypeUnknown
	}
}

// MarshalJSON encodes the type by its wire name
func (t GameType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a type wire name
func (t *GameType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*t = ParseGameType(name)
	return nil
}

// Game is the canonical record of a time-limited free offer
type Game struct {
	ID            string   `json:"id"`
	Store         Store    `json:"store"`
	Title         string   `json:"title"`
	Identifier    string   `json:"identifier"`
	URL           string   `json:"url"`
	OriginalPrice string   `json:"original_price"`
	OfferUntil    Date     `json:"offer_until"`
	GameType      GameType `json:"game_type"`
}

// Key returns the partial key identifying the offer
func (g Game) Key() PartialGame {
	return PartialGame{ID: g.ID, Store: g.Store}
}

// PartialGame is the (id, store) natural key of an offer
type PartialGame struct {
	ID    string `json:"id"`
	Store Store  `json:"store"`
}

// String renders the key as store:id
func (p PartialGame) String() string {
	return p.Store.String() + ":" + p.ID
}

// PostedPlatform marks an offer as announced on a social platform
type PostedPlatform struct {
	Platform  string `json:"platform"`
	GameID    string `json:"game_id"`
	GameStore Store  `json:"game_store"`
}
