package bot

import (
	"fmt"
	"strings"

	"github.com/pauljones0/price-tracker-bot/internal/models"
	"github.com/pauljones0/price-tracker-bot/internal/notifier"
	"github.com/pauljones0/price-tracker-bot/internal/price"
)

const welcomeMessage = `👋 *Welcome to Price Tracker Bot!*

Send me an Amazon India or Flipkart product link and I'll watch its price for you.

*Commands:*
/list - Show your tracked products
/stats - Bot statistics

Just paste a product link to start tracking.`

const helpMessage = `I didn't catch that. Send me an Amazon India or Flipkart product link, or use /list to see what you're already tracking.`

const extractionFailedMessage = `❌ *Couldn't read that product page.*

The page didn't give up a title or a price. This usually means the link is not a product page, or the site is blocking lookups right now. Try again in a bit.`

const partialNoPriceMessage = `⚠️ *Found the product but not its price.*

I only track real observed prices, so I won't start tracking with a guess. Try again later when the price is visible.`

func trackedMessage(t *models.TrackedProduct) string {
	var b strings.Builder
	b.WriteString("✅ *Now tracking:*\n\n")
	fmt.Fprintf(&b, "📦 %s\n", t.Title)
	fmt.Fprintf(&b, "💰 Current price: %s\n", price.FormatINR(t.CurrentPrice))
	if t.Platform != "" && t.Platform != models.PlatformUnknown {
		fmt.Fprintf(&b, "🏪 %s\n", t.Platform)
	}
	b.WriteString("\nI'll message you when the price changes.")
	return b.String()
}

func duplicateMessage(t *models.TrackedProduct) string {
	return fmt.Sprintf("ℹ️ You're already tracking *%s* at %s.", t.Title, price.FormatINR(t.CurrentPrice))
}

func listMessage(trackings []models.TrackedProduct) string {
	if len(trackings) == 0 {
		return "You're not tracking anything yet. Send me a product link to start."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Your tracked products (%d):*\n", len(trackings))
	for i, t := range trackings {
		fmt.Fprintf(&b, "\n%d. [%s](%s)\n   💰 %s\n", i+1, t.Title, t.ProductURL, price.FormatINR(t.CurrentPrice))
	}
	return b.String()
}

func statsMessage(activeTrackings, historyEntries int64) string {
	return fmt.Sprintf("📊 *Bot statistics*\n\n🔎 Active trackings: %d\n🗂 Price points recorded: %d", activeTrackings, historyEntries)
}

func historyMessage(entries []models.PriceHistoryEntry) string {
	if len(entries) == 0 {
		return "No price changes recorded yet. History starts once the price moves."
	}
	var b strings.Builder
	b.WriteString("📈 *Price history* (newest first):\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "\n%s  -  %s", e.RecordedAt.Format("02 Jan 2006 15:04"), price.FormatINR(e.Price))
	}
	return b.String()
}

func refreshMessage(t *models.TrackedProduct, outcome models.ChangeOutcome) string {
	if !outcome.Changed {
		return fmt.Sprintf("🔄 *%s*\n\nStill %s. No change.", t.Title, price.FormatINR(t.CurrentPrice))
	}
	change := notifier.DescribeChange(outcome.OldPrice, outcome.NewPrice)
	return notifier.FormatChangeMessage(t, change)
}

// trackingKeyboard builds the inline actions attached to a tracked product.
func trackingKeyboard(t *models.TrackedProduct) *notifier.InlineKeyboard {
	return &notifier.InlineKeyboard{
		InlineKeyboard: [][]notifier.InlineButton{
			{{Text: "🛒 Buy Now", URL: t.ProductURL}},
			{
				{Text: "🛑 Stop Tracking", CallbackData: callbackStopPrefix + t.TrackingID},
				{Text: "📈 Price History", CallbackData: callbackHistoryPrefix + t.TrackingID},
			},
			{{Text: "🔄 Refresh Price", CallbackData: callbackRefreshPrefix + t.TrackingID}},
		},
	}
}
