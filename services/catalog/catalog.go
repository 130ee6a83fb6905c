package catalog

import (
	"context"

	"sjsage522/freegameworker/internal/game"
)

// ExistenceChecker answers whether an offer is already recorded
type ExistenceChecker interface {
	Exists(ctx context.Context, key game.PartialGame) (bool, error)
}

// Catalog is the part of the catalog service the poll worker depends on
type Catalog interface {
	ExistenceChecker

	// Submit stores a newly discovered offer
	Submit(ctx context.Context, g game.Game) error

	// ListAll returns every recorded offer; the worker uses it as a liveness probe
	ListAll(ctx context.Context) ([]game.Game, error)
}
