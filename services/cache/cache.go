package cache

import (
	"strings"
	"time"
)

// MaxExpiration is the longest relative expiration memcache accepts. Larger
// values are read as absolute Unix timestamps.
const MaxExpiration = 30 * 24 * time.Hour

// CacheService represents a generic cache service
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}

// Key joins parts into a memcache-safe key. Memcache keys may not contain
// whitespace or control characters and are limited to 250 bytes.
func Key(parts ...string) string {
	key := strings.Join(parts, ":")
	key = strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return '_'
		}
		return r
	}, key)
	if len(key) > 250 {
		key = key[:250]
	}
	return key
}
