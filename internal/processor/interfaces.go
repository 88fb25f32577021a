package processor

import (
	"context"

	"github.com/pauljones0/price-tracker-bot/internal/models"
)

// TrackingStore abstracts the persistence layer for tracking records and
// price history.
type TrackingStore interface {
	FindActiveTracking(ctx context.Context, userID int64, productURL string) (*models.TrackedProduct, error)
	GetTracking(ctx context.Context, trackingID string) (*models.TrackedProduct, error)
	CreateTracking(ctx context.Context, tracking models.TrackedProduct) error
	UpdateTrackingPrice(ctx context.Context, tracking models.TrackedProduct) error
	DeactivateTracking(ctx context.Context, trackingID string) error
	ListActiveTrackings(ctx context.Context) ([]models.TrackedProduct, error)
	ListUserTrackings(ctx context.Context, userID int64) ([]models.TrackedProduct, error)
	AppendPriceHistory(ctx context.Context, entry models.PriceHistoryEntry) error
	PriceHistory(ctx context.Context, trackingID string, limit int) ([]models.PriceHistoryEntry, error)
	Stats(ctx context.Context) (activeTrackings, historyEntries int64, err error)
}

// ChangeNotifier delivers price-change alerts. Delivery is best-effort; the
// reconciler never retries or reverses state because a send failed.
type ChangeNotifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}
