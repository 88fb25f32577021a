package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pauljones0/price-tracker-bot/internal/models"
	"github.com/pauljones0/price-tracker-bot/internal/util"
)

const (
	inlineUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// maxPageBytes caps how much of a product page we read; titles and prices
	// live well within the first couple of megabytes.
	maxPageBytes = 4 << 20
)

// InlineBackend fetches the product page itself and runs local extraction.
// Outbound requests are rate limited so a sweep never hammers the storefront.
type InlineBackend struct {
	extractor  *Extractor
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewInlineBackend(extractor *Extractor) *InlineBackend {
	return &InlineBackend{
		extractor:  extractor,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 2),
	}
}

func (b *InlineBackend) Name() string { return "inline" }

func (b *InlineBackend) Check(ctx context.Context, productURL string) (models.ProductSnapshot, error) {
	platform := util.DetectPlatform(productURL)
	if platform == models.PlatformUnknown {
		return models.ProductSnapshot{}, fmt.Errorf("unsupported product URL: %s", productURL)
	}

	if err := b.limiter.Wait(ctx); err != nil {
		return models.ProductSnapshot{}, err
	}

	html, err := b.fetchPage(ctx, productURL)
	if err != nil {
		return models.ProductSnapshot{}, err
	}

	return b.extractor.Extract(platform, html, productURL), nil
}

func (b *InlineBackend) fetchPage(ctx context.Context, urlStr string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for URL %s: %w", urlStr, err)
	}
	req.Header.Set("User-Agent", inlineUserAgent)
	req.Header.Set("Accept-Language", "en-IN,en;q=0.9")

	res, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL %s: %w", urlStr, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL %s: status code %d", urlStr, res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read page body for %s: %w", urlStr, err)
	}
	return string(body), nil
}
