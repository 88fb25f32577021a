package notifier

import (
	"fmt"

	"github.com/pauljones0/price-tracker-bot/internal/models"
	"github.com/pauljones0/price-tracker-bot/internal/price"
)

// Direction of a confirmed price change.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

// PriceChange is the semantic content of a notification. Delivery is a
// separate concern; this is pure data.
type PriceChange struct {
	Direction Direction
	Delta     int
}

// DescribeChange characterizes an old/new price pair. Callers only invoke it
// for confirmed changes, so old != new.
func DescribeChange(oldPrice, newPrice int) PriceChange {
	delta := newPrice - oldPrice
	direction := DirectionIncrease
	if delta < 0 {
		direction = DirectionDecrease
		delta = -delta
	}
	return PriceChange{Direction: direction, Delta: delta}
}

// FormatChangeMessage renders the Markdown alert sent when a tracked product's
// price moves.
func FormatChangeMessage(record *models.TrackedProduct, change PriceChange) string {
	arrow := "📈 *Price Increased*"
	if change.Direction == DirectionDecrease {
		arrow = "📉 *Price Dropped!*"
	}
	return fmt.Sprintf(`%s

📱 *Product:* %s
💰 *Old Price:* %s
💸 *New Price:* %s
🔀 *Difference:* %s

🔗 [View Product](%s)
🆔 Tracking ID: `+"`%s`",
		arrow,
		record.Title,
		price.FormatINR(record.LastPrice),
		price.FormatINR(record.CurrentPrice),
		price.FormatINR(change.Delta),
		record.ProductURL,
		record.TrackingID,
	)
}
