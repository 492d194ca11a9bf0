// Package telegram is a minimal Telegram Bot API client covering the
// calls this bot needs: polling, sending, message edits, callbacks and
// file downloads.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// APIError is a non-ok response from the Bot API.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s failed: %s (code %d)", e.Method, e.Description, e.Code)
}

// Client talks to the Telegram Bot API.
type Client struct {
	http    *resty.Client
	apiBase string
	fileURL string
}

// New creates a client for the given bot token. apiURL is the API host
// (normally https://api.telegram.org).
func New(apiURL, token string) *Client {
	return &Client{
		// Long polls block server-side for up to the poll timeout, so
		// the HTTP timeout must sit above it.
		http:    resty.New().SetTimeout(90 * time.Second),
		apiBase: fmt.Sprintf("%s/bot%s", apiURL, token),
		fileURL: fmt.Sprintf("%s/file/bot%s", apiURL, token),
	}
}

// call performs one Bot API method call and decodes the result into out
// (which may be nil when the result is irrelevant).
func (c *Client) call(ctx context.Context, method string, body any, out any) error {
	var envelope apiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&envelope).
		SetError(&envelope).
		Post(c.apiBase + "/" + method)
	if err != nil {
		return fmt.Errorf("telegram %s request failed: %w", method, err)
	}

	if !envelope.OK {
		return &APIError{
			Method:      method,
			Code:        firstNonZero(envelope.ErrorCode, resp.StatusCode()),
			Description: envelope.Description,
		}
	}

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("telegram %s: decode result: %w", method, err)
		}
	}
	return nil
}

// GetMe verifies the token and returns the bot's own user.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var me User
	if err := c.call(ctx, "getMe", map[string]any{}, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// GetUpdates long-polls for new updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", map[string]any{
		"offset":  offset,
		"timeout": timeout,
	}, &updates)
	if err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage sends a text message and returns the sent message.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	var msg Message
	if err := c.call(ctx, "sendMessage", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EditMessageText replaces the text (and keyboard) of a sent message.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup *InlineKeyboardMarkup) error {
	body := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}
	if markup != nil {
		body["reply_markup"] = markup
	}
	return c.call(ctx, "editMessageText", body, nil)
}

// EditMessageReplyMarkup replaces just the keyboard of a sent message.
// A nil markup removes it.
func (c *Client) EditMessageReplyMarkup(ctx context.Context, chatID, messageID int64, markup *InlineKeyboardMarkup) error {
	body := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	}
	if markup != nil {
		body["reply_markup"] = markup
	} else {
		body["reply_markup"] = InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{}}
	}
	return c.call(ctx, "editMessageReplyMarkup", body, nil)
}

// DeleteMessage deletes a sent message.
func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return c.call(ctx, "deleteMessage", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	}, nil)
}

// AnswerCallbackQuery acknowledges an inline-button press.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
	}, nil)
}

// SendChatAction shows a transient status like "typing".
func (c *Client) SendChatAction(ctx context.Context, chatID int64, action string) error {
	return c.call(ctx, "sendChatAction", map[string]any{
		"chat_id": chatID,
		"action":  action,
	}, nil)
}

// GetFile resolves a file ID to a downloadable path.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	var f File
	if err := c.call(ctx, "getFile", map[string]any{"file_id": fileID}, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// DownloadFile fetches the bytes of a file previously resolved with
// GetFile.
func (c *Client) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(c.fileURL + "/" + filePath)
	if err != nil {
		return nil, fmt.Errorf("telegram file download failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("telegram file download returned HTTP %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// SetWebhook registers the webhook URL with an optional secret token.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	body := map[string]any{"url": url}
	if secret != "" {
		body["secret_token"] = secret
	}
	return c.call(ctx, "setWebhook", body, nil)
}

// DeleteWebhook removes any registered webhook so polling can take over.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", map[string]any{}, nil)
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
