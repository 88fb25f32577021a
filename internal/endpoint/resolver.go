package endpoint

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pauljones0/price-tracker-bot/internal/models"
)

// RecordSource reads the current EndpointRecord. It is owned by an external
// heartbeat process; the resolver only reads it and judges freshness.
type RecordSource interface {
	GetEndpointRecord(ctx context.Context) (*models.EndpointRecord, error)
}

// Resolver decides which upstream scraping endpoint is currently live.
// It never fails: stale or missing records degrade to the static fallback,
// lookup errors degrade to the last cached value, then the fallback.
type Resolver struct {
	source    RecordSource
	fallback  string
	freshness time.Duration
	now       func() time.Time

	mu       sync.Mutex
	cached   string
	cachedAt time.Time

	group singleflight.Group
}

func NewResolver(source RecordSource, fallbackURL string, freshness time.Duration) *Resolver {
	return &Resolver{
		source:    source,
		fallback:  fallbackURL,
		freshness: freshness,
		now:       time.Now,
	}
}

// Resolve returns the endpoint to use right now. A cached value younger than
// the freshness window is trusted without a lookup. Only genuinely fresh
// records populate the cache; the fallback is never cached, so a tunnel
// coming back online is picked up on the next expiry.
func (r *Resolver) Resolve(ctx context.Context) string {
	r.mu.Lock()
	if r.cached != "" && r.now().Sub(r.cachedAt) < r.freshness {
		url := r.cached
		r.mu.Unlock()
		return url
	}
	r.mu.Unlock()

	// Collapse concurrent lookups into one; everyone gets the same answer.
	url, _, _ := r.group.Do("resolve", func() (interface{}, error) {
		return r.lookup(ctx), nil
	})
	return url.(string)
}

func (r *Resolver) lookup(ctx context.Context) string {
	record, err := r.source.GetEndpointRecord(ctx)
	if err != nil {
		slog.Warn("Endpoint lookup failed", "error", err)
		r.mu.Lock()
		cached := r.cached
		r.mu.Unlock()
		if cached != "" {
			return cached
		}
		return r.fallback
	}

	if record == nil || record.URL == "" || record.Status != models.EndpointActive {
		return r.fallback
	}
	if r.now().Sub(record.LastUpdated) >= r.freshness {
		slog.Info("Endpoint record is stale, using fallback", "age", r.now().Sub(record.LastUpdated))
		return r.fallback
	}

	r.mu.Lock()
	r.cached = record.URL
	r.cachedAt = r.now()
	r.mu.Unlock()
	return record.URL
}
