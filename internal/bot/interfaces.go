package bot

import (
	"context"

	"github.com/pauljones0/price-tracker-bot/internal/models"
	"github.com/pauljones0/price-tracker-bot/internal/notifier"
	"github.com/pauljones0/price-tracker-bot/internal/processor"
)

// Tracker is the slice of the reconciler the webhook surface drives.
type Tracker interface {
	Track(ctx context.Context, userID, chatID int64, rawURL string) (*processor.TrackResult, error)
	StopTracking(ctx context.Context, trackingID string) error
	RefreshTracking(ctx context.Context, trackingID string) (*models.TrackedProduct, models.ChangeOutcome, error)
	UserTrackings(ctx context.Context, userID int64) ([]models.TrackedProduct, error)
	History(ctx context.Context, trackingID string) ([]models.PriceHistoryEntry, error)
	Stats(ctx context.Context) (int64, int64, error)
}

// Messenger sends replies back through the Telegram API.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) error
	SendWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *notifier.InlineKeyboard) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
