package publisher

import (
	"context"

	"sjsage522/freegameworker/internal/game"
)

// Publisher announces newly recorded offers to downstream consumers
type Publisher interface {
	// Publish appends an announcement for g to the stream
	Publish(ctx context.Context, g game.Game) error

	// TrimStreams trims the stream to the configured maximum length
	TrimStreams(ctx context.Context) error

	// Close closes the publisher connection
	Close() error
}
