package scraper

import (
	"context"

	"github.com/pauljones0/price-tracker-bot/internal/config"
	"github.com/pauljones0/price-tracker-bot/internal/models"
)

// Backend is one interchangeable scraping strategy. All three implementations
// honor the same output contract: a best-effort snapshot, with an error only
// for transport-level failures (the snapshot itself never lies about Success).
type Backend interface {
	Name() string
	Check(ctx context.Context, productURL string) (models.ProductSnapshot, error)
}

// EndpointResolver supplies the currently live scraping endpoint for the
// tunnel backend. Resolution never fails; it degrades to a static fallback.
type EndpointResolver interface {
	Resolve(ctx context.Context) string
}

// NewBackend selects the strategy configured by SCRAPER_BACKEND.
func NewBackend(cfg *config.Config, extractor *Extractor, resolver EndpointResolver) Backend {
	switch cfg.ScraperBackend {
	case "delegate":
		return NewDelegateBackend("delegate", StaticEndpoint(cfg.DelegateURL))
	case "tunnel":
		return NewDelegateBackend("tunnel", resolver.Resolve)
	default:
		return NewInlineBackend(extractor)
	}
}

// StaticEndpoint adapts a fixed URL to the endpoint-func shape used by
// DelegateBackend.
func StaticEndpoint(url string) func(context.Context) string {
	return func(context.Context) string { return url }
}
