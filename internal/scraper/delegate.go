package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pauljones0/price-tracker-bot/internal/models"
	"github.com/pauljones0/price-tracker-bot/internal/price"
	"github.com/pauljones0/price-tracker-bot/internal/util"
)

type delegateRequest struct {
	Action string `json:"action"`
	URL    string `json:"url"`
}

// delegateResponse is the wire contract shared by every remote scraping
// service this bot has delegated to. All fields except success are optional.
type delegateResponse struct {
	Success bool    `json:"success"`
	Price   *string `json:"price"`
	Title   *string `json:"title"`
	Error   *string `json:"error"`
	Version string  `json:"version"`
}

// DelegateBackend forwards the scrape to a remote service and folds the
// pre-parsed result into a snapshot. The "delegate" and "tunnel" strategies
// differ only in where the endpoint URL comes from.
type DelegateBackend struct {
	name       string
	endpoint   func(ctx context.Context) string
	httpClient *http.Client
}

func NewDelegateBackend(name string, endpoint func(ctx context.Context) string) *DelegateBackend {
	return &DelegateBackend{
		name:       name,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 45 * time.Second},
	}
}

func (b *DelegateBackend) Name() string { return b.name }

func (b *DelegateBackend) Check(ctx context.Context, productURL string) (models.ProductSnapshot, error) {
	endpoint := b.endpoint(ctx)
	if endpoint == "" {
		return models.ProductSnapshot{}, fmt.Errorf("no %s endpoint available", b.name)
	}

	resp, err := b.call(ctx, endpoint, productURL)
	if err != nil {
		return models.ProductSnapshot{}, err
	}

	platform := util.DetectPlatform(productURL)
	snap := models.ProductSnapshot{
		SourceURL:  productURL,
		Platform:   platform,
		CapturedAt: time.Now(),
	}

	if resp.Price != nil {
		snap.Price = price.Normalize(*resp.Price)
	}

	title := ""
	if resp.Title != nil {
		title = strings.Join(strings.Fields(*resp.Title), " ")
	}
	titleFound := title != "" && !strings.EqualFold(title, FallbackTitle(platform))
	// The delegate services rarely return a title; the URL slug usually does
	// better than a bare placeholder.
	if !titleFound {
		if slug := util.TitleFromSlug(productURL); slug != "" {
			title = slug
			titleFound = true
		} else {
			title = FallbackTitle(platform)
		}
	}
	snap.Title = title
	snap.Success = titleFound || snap.PriceKnown()

	if !resp.Success && resp.Error != nil {
		slog.Warn("Delegate reported extraction failure", "backend", b.name, "url", productURL, "error", *resp.Error)
	}
	return snap, nil
}

func (b *DelegateBackend) call(ctx context.Context, endpoint, productURL string) (*delegateResponse, error) {
	payload, err := json.Marshal(delegateRequest{Action: "check_price", URL: productURL})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", b.name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", b.name, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", b.name, res.StatusCode)
	}

	var out delegateResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", b.name, err)
	}
	return &out, nil
}
