package bot

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pauljones0/price-tracker-bot/internal/notifier"
	"github.com/pauljones0/price-tracker-bot/internal/processor"
	"github.com/pauljones0/price-tracker-bot/internal/util"
)

const (
	callbackStopPrefix    = "stop_tracking_"
	callbackHistoryPrefix = "price_history_"
	callbackRefreshPrefix = "refresh_price_"
)

// Handler routes Telegram webhook updates to the reconciler and replies in
// Markdown.
type Handler struct {
	tracker   Tracker
	messenger Messenger
}

func NewHandler(tracker Tracker, messenger Messenger) *Handler {
	return &Handler{tracker: tracker, messenger: messenger}
}

// ServeHTTP is the webhook endpoint. Telegram retries non-200 responses, so
// handler failures are logged and acknowledged rather than surfaced; a retry
// of a failed update would just fail the same way.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		slog.Warn("Undecodable webhook payload", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx := r.Context()
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleMessage(ctx context.Context, msg *Message) {
	if msg.Chat == nil || msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch {
	case strings.HasPrefix(text, "/start"):
		h.reply(ctx, chatID, welcomeMessage)
	case strings.HasPrefix(text, "/list"):
		h.handleList(ctx, msg.From.ID, chatID)
	case strings.HasPrefix(text, "/stats"):
		h.handleStats(ctx, chatID)
	case util.IsProductURL(text):
		h.handleTrack(ctx, msg.From.ID, chatID, util.ExtractProductURL(text))
	default:
		h.reply(ctx, chatID, helpMessage)
	}
}

func (h *Handler) handleTrack(ctx context.Context, userID, chatID int64, productURL string) {
	res, err := h.tracker.Track(ctx, userID, chatID, productURL)
	if err != nil {
		slog.Error("Track request failed", "userID", userID, "error", err)
		h.reply(ctx, chatID, "😵 Something went wrong saving that. Please try again.")
		return
	}

	switch res.Outcome {
	case processor.OutcomeTracked:
		h.replyWithKeyboard(ctx, chatID, trackedMessage(res.Tracking), trackingKeyboard(res.Tracking))
	case processor.OutcomeDuplicate:
		h.replyWithKeyboard(ctx, chatID, duplicateMessage(res.Tracking), trackingKeyboard(res.Tracking))
	case processor.OutcomePartialNoPrice:
		h.reply(ctx, chatID, partialNoPriceMessage)
	default:
		h.reply(ctx, chatID, extractionFailedMessage)
	}
}

func (h *Handler) handleList(ctx context.Context, userID, chatID int64) {
	trackings, err := h.tracker.UserTrackings(ctx, userID)
	if err != nil {
		slog.Error("List request failed", "userID", userID, "error", err)
		h.reply(ctx, chatID, "😵 Couldn't load your trackings right now.")
		return
	}
	h.reply(ctx, chatID, listMessage(trackings))
}

func (h *Handler) handleStats(ctx context.Context, chatID int64) {
	active, history, err := h.tracker.Stats(ctx)
	if err != nil {
		slog.Error("Stats request failed", "error", err)
		h.reply(ctx, chatID, "😵 Couldn't load statistics right now.")
		return
	}
	h.reply(ctx, chatID, statsMessage(active, history))
}

func (h *Handler) handleCallback(ctx context.Context, cb *CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		h.ack(ctx, cb.ID, "")
		return
	}
	chatID := cb.Message.Chat.ID

	switch {
	case strings.HasPrefix(cb.Data, callbackStopPrefix):
		trackingID := strings.TrimPrefix(cb.Data, callbackStopPrefix)
		if err := h.tracker.StopTracking(ctx, trackingID); err != nil {
			slog.Error("Stop tracking failed", "trackingID", trackingID, "error", err)
			h.ack(ctx, cb.ID, "Couldn't stop tracking, try again")
			return
		}
		h.ack(ctx, cb.ID, "Tracking stopped")
		h.reply(ctx, chatID, "🛑 Tracking stopped. Send another link any time.")

	case strings.HasPrefix(cb.Data, callbackHistoryPrefix):
		trackingID := strings.TrimPrefix(cb.Data, callbackHistoryPrefix)
		entries, err := h.tracker.History(ctx, trackingID)
		if err != nil {
			slog.Error("History lookup failed", "trackingID", trackingID, "error", err)
			h.ack(ctx, cb.ID, "Couldn't load history")
			return
		}
		h.ack(ctx, cb.ID, "")
		h.reply(ctx, chatID, historyMessage(entries))

	case strings.HasPrefix(cb.Data, callbackRefreshPrefix):
		trackingID := strings.TrimPrefix(cb.Data, callbackRefreshPrefix)
		record, outcome, err := h.tracker.RefreshTracking(ctx, trackingID)
		if err != nil {
			slog.Error("Refresh failed", "trackingID", trackingID, "error", err)
			h.ack(ctx, cb.ID, "Couldn't refresh the price")
			return
		}
		h.ack(ctx, cb.ID, "Price checked")
		h.reply(ctx, chatID, refreshMessage(record, outcome))

	default:
		h.ack(ctx, cb.ID, "")
	}
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.messenger.Send(ctx, chatID, text); err != nil {
		slog.Warn("Failed to send reply", "chatID", chatID, "error", err)
	}
}

func (h *Handler) replyWithKeyboard(ctx context.Context, chatID int64, text string, kb *notifier.InlineKeyboard) {
	if err := h.messenger.SendWithKeyboard(ctx, chatID, text, kb); err != nil {
		slog.Warn("Failed to send reply", "chatID", chatID, "error", err)
	}
}

func (h *Handler) ack(ctx context.Context, callbackID, text string) {
	if err := h.messenger.AnswerCallback(ctx, callbackID, text); err != nil {
		slog.Warn("Failed to answer callback", "callbackID", callbackID, "error", err)
	}
}
