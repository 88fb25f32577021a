package processor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pauljones0/price-tracker-bot/internal/config"
	"github.com/pauljones0/price-tracker-bot/internal/models"
	"github.com/pauljones0/price-tracker-bot/internal/scraper"
	"github.com/pauljones0/price-tracker-bot/internal/util"
	"github.com/pauljones0/price-tracker-bot/internal/validator"
)

// TrackOutcome classifies the result of a single-shot tracking request.
type TrackOutcome int

const (
	// OutcomeTracked: a new tracking record was created.
	OutcomeTracked TrackOutcome = iota
	// OutcomeDuplicate: an active record already exists for (user, URL).
	// Not an error; the existing record is returned.
	OutcomeDuplicate
	// OutcomeExtractionFailed: no usable title or price was recovered.
	OutcomeExtractionFailed
	// OutcomePartialNoPrice: a title was recovered but no price, and the
	// partial-tracking policy rejects priceless records.
	OutcomePartialNoPrice
)

// TrackResult is what the single-shot flow hands back to the transport layer.
type TrackResult struct {
	Outcome  TrackOutcome
	Tracking *models.TrackedProduct
	Snapshot models.ProductSnapshot
}

// Reconciler owns the tracking-record state machine: creation with duplicate
// detection, observed-price application, and deactivation.
type Reconciler struct {
	store    TrackingStore
	notifier ChangeNotifier
	backend  scraper.Backend
	cfg      *config.Config
	validate *validator.Validator
	now      func() time.Time
}

func New(store TrackingStore, n ChangeNotifier, backend scraper.Backend, cfg *config.Config) *Reconciler {
	return &Reconciler{
		store:    store,
		notifier: n,
		backend:  backend,
		cfg:      cfg,
		validate: validator.New(),
		now:      time.Now,
	}
}

// generateTrackingID creates a unique document ID for a new record. Only
// uniqueness matters; the timestamp component keeps re-tracks of a stopped
// product from colliding with the old soft-deleted record.
func generateTrackingID(userID int64, productURL string, at time.Time) string {
	hash := sha256.Sum256(fmt.Appendf(nil, "%d|%s|%s", userID, productURL, at.Format(time.RFC3339Nano)))
	return hex.EncodeToString(hash[:])[:24]
}

// Track is the single-shot flow: dedupe, extract, and persist a new tracking
// record. Extraction problems come back as outcomes, never as errors; an
// error return means persistence failed and the caller must report failure
// rather than claim success.
func (r *Reconciler) Track(ctx context.Context, userID, chatID int64, rawURL string) (*TrackResult, error) {
	productURL, err := util.NormalizeProductURL(rawURL)
	if err != nil {
		productURL = rawURL
	}

	existing, err := r.store.FindActiveTracking(ctx, userID, productURL)
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}
	if existing != nil {
		slog.Info("Duplicate tracking request", "trackingID", existing.TrackingID, "userID", userID)
		return &TrackResult{Outcome: OutcomeDuplicate, Tracking: existing}, nil
	}

	snap, err := r.backend.Check(ctx, productURL)
	if err != nil {
		// Backend transport failure is user-visible as an extraction failure.
		slog.Warn("Extraction failed", "backend", r.backend.Name(), "url", productURL, "error", err)
		return &TrackResult{Outcome: OutcomeExtractionFailed, Snapshot: snap}, nil
	}
	if !snap.Success {
		return &TrackResult{Outcome: OutcomeExtractionFailed, Snapshot: snap}, nil
	}
	if !snap.PriceKnown() && !r.cfg.AllowPartialTracking {
		// "No estimates, no fake prices": show the user what was recovered,
		// but persist nothing.
		return &TrackResult{Outcome: OutcomePartialNoPrice, Snapshot: snap}, nil
	}

	now := r.now()
	tracking := models.TrackedProduct{
		TrackingID:   generateTrackingID(userID, productURL, now),
		UserID:       userID,
		ChatID:       chatID,
		ProductURL:   productURL,
		Title:        snap.Title,
		Platform:     snap.Platform,
		CurrentPrice: snap.Price,
		LastPrice:    snap.Price,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.validate.ValidateStruct(tracking); err != nil {
		return nil, fmt.Errorf("tracking record invalid: %w", err)
	}

	if err := r.store.CreateTracking(ctx, tracking); err != nil {
		if errors.Is(err, models.ErrTrackingExists) {
			// Lost the race to a concurrent request for the same pair.
			existing, getErr := r.store.FindActiveTracking(ctx, userID, productURL)
			if getErr == nil && existing != nil {
				return &TrackResult{Outcome: OutcomeDuplicate, Tracking: existing}, nil
			}
		}
		return nil, fmt.Errorf("failed to create tracking: %w", err)
	}

	slog.Info("New tracking created", "trackingID", tracking.TrackingID, "title", tracking.Title, "price", tracking.CurrentPrice)
	return &TrackResult{Outcome: OutcomeTracked, Tracking: &tracking, Snapshot: snap}, nil
}

// ApplyObservedPrice is the single authoritative definition of "price change":
// exact value inequality against the current price, with the unknown sentinel
// never counting as a change. On a change, the record mutation and a history
// entry are persisted.
func (r *Reconciler) ApplyObservedPrice(ctx context.Context, record *models.TrackedProduct, newPrice int) (models.ChangeOutcome, error) {
	if newPrice == models.PriceUnknown || newPrice == record.CurrentPrice {
		return models.Unchanged, nil
	}

	oldPrice := record.CurrentPrice
	record.LastPrice = oldPrice
	record.CurrentPrice = newPrice
	record.UpdatedAt = r.now()

	if err := r.store.UpdateTrackingPrice(ctx, *record); err != nil {
		record.CurrentPrice = oldPrice
		record.LastPrice = oldPrice
		return models.Unchanged, fmt.Errorf("failed to persist price change: %w", err)
	}

	entry := models.PriceHistoryEntry{
		TrackingID: record.TrackingID,
		Price:      newPrice,
		RecordedAt: record.UpdatedAt,
	}
	if err := r.store.AppendPriceHistory(ctx, entry); err != nil {
		// The price update is already committed; a lost history entry is not
		// worth reversing it over.
		slog.Warn("Failed to append price history", "trackingID", record.TrackingID, "error", err)
	}

	return models.ChangeOutcome{Changed: true, OldPrice: oldPrice, NewPrice: newPrice}, nil
}

// RefreshTracking re-checks a single record on demand (the "Refresh Price"
// button) through the same path the sweep uses.
func (r *Reconciler) RefreshTracking(ctx context.Context, trackingID string) (*models.TrackedProduct, models.ChangeOutcome, error) {
	record, err := r.store.GetTracking(ctx, trackingID)
	if err != nil {
		return nil, models.Unchanged, err
	}
	if record == nil || !record.Active {
		return nil, models.Unchanged, fmt.Errorf("no active tracking %s", trackingID)
	}

	snap, err := r.backend.Check(ctx, record.ProductURL)
	if err != nil {
		return record, models.Unchanged, fmt.Errorf("price check failed: %w", err)
	}
	outcome, err := r.ApplyObservedPrice(ctx, record, snap.Price)
	return record, outcome, err
}

// StopTracking soft-deletes a record. Stopping twice is a no-op, not an error.
func (r *Reconciler) StopTracking(ctx context.Context, trackingID string) error {
	return r.store.DeactivateTracking(ctx, trackingID)
}

// UserTrackings lists a user's active records.
func (r *Reconciler) UserTrackings(ctx context.Context, userID int64) ([]models.TrackedProduct, error) {
	return r.store.ListUserTrackings(ctx, userID)
}

// History returns the bounded, newest-first price history for display.
func (r *Reconciler) History(ctx context.Context, trackingID string) ([]models.PriceHistoryEntry, error) {
	return r.store.PriceHistory(ctx, trackingID, r.cfg.HistoryDisplayLimit)
}

// Stats returns bot-wide counters.
func (r *Reconciler) Stats(ctx context.Context) (activeTrackings, historyEntries int64, err error) {
	return r.store.Stats(ctx)
}
