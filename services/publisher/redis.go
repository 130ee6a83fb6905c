package publisher

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"sjsage522/freegameworker/internal/game"
	"sjsage522/freegameworker/logger"
	apperrors "sjsage522/freegameworker/pkg/errors"
)

// Stream entry fields
const (
	FieldStore   = "store"
	FieldID      = "id"
	FieldText    = "text"
	FieldPayload = "b64_game"
)

// RedisPublisher implements Publisher on a Redis stream
type RedisPublisher struct {
	client          *redis.Client
	stream          string
	streamMaxLength int64
	log             *logger.Logger
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(addr string, db int, stream string, streamMaxLength int64) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	log := logger.ForPublisher().WithFields(logger.Fields{
		"addr":   addr,
		"stream": stream,
	})

	return &RedisPublisher{
		client:          client,
		stream:          stream,
		streamMaxLength: streamMaxLength,
		log:             log,
	}
}

// Ping checks the Redis connection
func (p *RedisPublisher) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		p.log.WithError(err).Warn().Msg("Redis ping failed")
		return apperrors.NewPublisher("redis", "ping failed", err)
	}
	return nil
}

// Publish adds the announcement text and the base64 encoded JSON record of g
// to the stream
func (p *RedisPublisher) Publish(ctx context.Context, g game.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return apperrors.NewPublisher("redis", "failed to encode game", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			FieldStore:   g.Store.String(),
			FieldID:      g.ID,
			FieldText:    game.AnnouncementText(g),
			FieldPayload: base64.StdEncoding.EncodeToString(data),
		},
	}).Err()
	if err != nil {
		return apperrors.NewPublisher("redis", "failed to publish "+g.Key().String(), err)
	}
	p.log.Debug().Str("key", g.Key().String()).Msg("Published announcement")
	return nil
}

// TrimStreams trims the stream to the configured maximum length
func (p *RedisPublisher) TrimStreams(ctx context.Context) error {
	if p.streamMaxLength <= 0 {
		return nil
	}
	if err := p.client.XTrimMaxLen(ctx, p.stream, p.streamMaxLength).Err(); err != nil {
		return apperrors.NewPublisher("redis", "failed to trim "+p.stream, err)
	}
	p.log.Debug().Int64("max_length", p.streamMaxLength).Msg("Trimmed stream")
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
