package pricing

import (
	"context"
	"sync"
	"time"

	"pledgebook/models"
	"pledgebook/observability"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a quote is served without asking the feed again
const DefaultTTL = 60 * time.Second

// Fetcher retrieves a live quote from a remote feed
type Fetcher interface {
	Fetch(ctx context.Context) (models.PriceQuote, error)
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// Cache serves the last good quote for up to ttl and falls back to it when
// a refresh fails. The zero quote is returned until a fetch succeeds.
type Cache struct {
	fetcher Fetcher
	clock   Clock
	ttl     time.Duration

	mu        sync.Mutex
	quote     models.PriceQuote
	fetchedAt time.Time

	group singleflight.Group
}

// NewCache creates a price cache in front of fetcher
func NewCache(fetcher Fetcher, clock Clock, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		fetcher: fetcher,
		clock:   clock,
		ttl:     ttl,
	}
}

// GetPrice never fails. A stale or zero quote is returned when the feed
// cannot be reached.
func (c *Cache) GetPrice(ctx context.Context) models.PriceQuote {
	if quote, ok := c.fresh(); ok {
		observability.PriceCacheHits.Inc()
		return quote
	}

	// Callers arriving during a refresh share its result, so the fetch must
	// not end when the caller that started it goes away. The fetcher's own
	// timeout still bounds it.
	shared := context.WithoutCancel(ctx)
	v, _, _ := c.group.Do("quote", func() (interface{}, error) {
		return c.refresh(shared), nil
	})
	return v.(models.PriceQuote)
}

func (c *Cache) fresh() (models.PriceQuote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.quote.PHP > 0 && c.clock.Now().Sub(c.fetchedAt) < c.ttl {
		return c.quote, true
	}
	return c.quote, false
}

func (c *Cache) refresh(ctx context.Context) models.PriceQuote {
	quote, err := c.fetcher.Fetch(ctx)
	if err != nil {
		observability.PriceFetches.WithLabelValues("error").Inc()

		c.mu.Lock()
		last := c.quote
		c.mu.Unlock()

		log.WithError(err).WithFields(log.Fields{
			"lastPHP":        last.PHP,
			"lastObservedAt": last.ObservedAt,
		}).Warn("Price refresh failed, serving last known quote")
		return last
	}
	observability.PriceFetches.WithLabelValues("ok").Inc()

	now := c.clock.Now()
	quote.ObservedAt = now

	c.mu.Lock()
	c.quote = quote
	c.fetchedAt = now
	c.mu.Unlock()

	log.WithFields(log.Fields{
		"php": quote.PHP,
		"usd": quote.USD,
	}).Debug("Price quote refreshed")
	return quote
}
