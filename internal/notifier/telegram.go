package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

// Client sends messages through the Telegram Bot API. Delivery is best-effort
// and fire-and-forget from the core's perspective: callers log failures and
// move on, they never retry or roll back state because a message was lost.
type Client struct {
	token   string
	apiBase string
	client  *http.Client
}

func New(token string) *Client {
	return newWithBase(token, telegramAPIBase)
}

func newWithBase(token, apiBase string) *Client {
	return &Client{
		token:   token,
		apiBase: apiBase,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// InlineKeyboard mirrors Telegram's reply_markup structure.
type InlineKeyboard struct {
	InlineKeyboard [][]InlineButton `json:"inline_keyboard"`
}

type InlineButton struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

type sendMessagePayload struct {
	ChatID      int64           `json:"chat_id"`
	Text        string          `json:"text"`
	ParseMode   string          `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboard `json:"reply_markup,omitempty"`
}

type answerCallbackPayload struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
}

// Send delivers a Markdown message to a chat.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	return c.SendWithKeyboard(ctx, chatID, text, nil)
}

// SendWithKeyboard delivers a Markdown message with an optional inline keyboard.
func (c *Client) SendWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *InlineKeyboard) error {
	if c.token == "" {
		return nil // token unset: replies are skipped, not errors
	}
	payload := sendMessagePayload{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   "Markdown",
		ReplyMarkup: keyboard,
	}
	return c.post(ctx, "sendMessage", payload)
}

// AnswerCallback acknowledges an inline-keyboard button press.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if c.token == "" {
		return nil
	}
	return c.post(ctx, "answerCallbackQuery", answerCallbackPayload{
		CallbackQueryID: callbackID,
		Text:            text,
	})
}

func (c *Client) post(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	respBody, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("telegram %s failed: %s, body: %s", method, resp.Status, string(respBody))
}
