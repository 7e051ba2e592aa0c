package cache

import "time"

type Option func(c *Cache)

// WithClock specifies the time source for entry expiry
func WithClock(clock Clock) Option {
	return func(c *Cache) {
		c.clock = clock
	}
}

// WithSymbolsTTL specifies the TTL for the symbols listing
func WithSymbolsTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.symbolsTTL = ttl
	}
}

// WithLatestTTL specifies the TTL for latest rate snapshots
func WithLatestTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.latestTTL = ttl
	}
}

// WithSeriesTTL specifies the TTL for historical series ranges
func WithSeriesTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.seriesTTL = ttl
	}
}
