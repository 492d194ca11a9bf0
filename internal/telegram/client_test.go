package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func botServer(t *testing.T, handler func(method string, body map[string]any) (any, bool)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// URL shape: /bot<token>/<method>
		method := r.URL.Path[len("/bottest-token/"):]

		var body map[string]any
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&body)
		}

		result, ok := handler(method, body)
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"ok":          false,
				"error_code":  400,
				"description": "Bad Request: something is off",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
	}))
}

func TestSendMessage(t *testing.T) {
	var gotMethod string
	var gotBody map[string]any
	srv := botServer(t, func(method string, body map[string]any) (any, bool) {
		gotMethod = method
		gotBody = body
		return map[string]any{"message_id": 42, "chat": map[string]any{"id": 10}, "text": "hi"}, true
	})
	defer srv.Close()

	c := New(srv.URL, "test-token")
	msg, err := c.SendMessage(context.Background(), SendMessageRequest{
		ChatID:    10,
		Text:      "hi",
		ParseMode: "Markdown",
	})
	require.NoError(t, err)

	assert.Equal(t, "sendMessage", gotMethod)
	assert.Equal(t, float64(10), gotBody["chat_id"])
	assert.Equal(t, "Markdown", gotBody["parse_mode"])
	assert.Equal(t, int64(42), msg.MessageID)
	assert.Equal(t, int64(10), msg.Chat.ID)
}

func TestSendMessageOmitsEmptyOptionals(t *testing.T) {
	var gotBody map[string]any
	srv := botServer(t, func(method string, body map[string]any) (any, bool) {
		gotBody = body
		return map[string]any{"message_id": 1, "chat": map[string]any{"id": 10}}, true
	})
	defer srv.Close()

	c := New(srv.URL, "test-token")
	_, err := c.SendMessage(context.Background(), SendMessageRequest{ChatID: 10, Text: "plain"})
	require.NoError(t, err)

	_, hasParseMode := gotBody["parse_mode"]
	assert.False(t, hasParseMode)
	_, hasMarkup := gotBody["reply_markup"]
	assert.False(t, hasMarkup)
}

func TestAPIErrorSurfacesDescription(t *testing.T) {
	srv := botServer(t, func(method string, body map[string]any) (any, bool) {
		return nil, false
	})
	defer srv.Close()

	c := New(srv.URL, "test-token")
	_, err := c.SendMessage(context.Background(), SendMessageRequest{ChatID: 10, Text: "x"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Code)
	assert.Contains(t, apiErr.Description, "something is off")
	assert.Contains(t, apiErr.Error(), "sendMessage")
}

func TestGetUpdates(t *testing.T) {
	var gotBody map[string]any
	srv := botServer(t, func(method string, body map[string]any) (any, bool) {
		gotBody = body
		return []any{
			map[string]any{
				"update_id": 7,
				"message": map[string]any{
					"message_id": 1,
					"from":       map[string]any{"id": 5, "first_name": "A"},
					"chat":       map[string]any{"id": 5},
					"text":       "hello",
				},
			},
		}, true
	})
	defer srv.Close()

	c := New(srv.URL, "test-token")
	updates, err := c.GetUpdates(context.Background(), 7, 30)
	require.NoError(t, err)

	assert.Equal(t, float64(7), gotBody["offset"])
	assert.Equal(t, float64(30), gotBody["timeout"])
	require.Len(t, updates, 1)
	assert.Equal(t, int64(7), updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	assert.Equal(t, "hello", updates[0].Message.Text)
	assert.Equal(t, int64(5), updates[0].Message.From.ID)
}

func TestEditMessageReplyMarkupRemovesKeyboard(t *testing.T) {
	var gotBody map[string]any
	srv := botServer(t, func(method string, body map[string]any) (any, bool) {
		gotBody = body
		return true, true
	})
	defer srv.Close()

	c := New(srv.URL, "test-token")
	require.NoError(t, c.EditMessageReplyMarkup(context.Background(), 10, 42, nil))

	// nil markup is sent as an explicit empty keyboard
	markup, ok := gotBody["reply_markup"].(map[string]any)
	require.True(t, ok)
	keyboard, ok := markup["inline_keyboard"].([]any)
	require.True(t, ok)
	assert.Empty(t, keyboard)
}

func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/file/bottest-token/voice/note.oga", r.URL.Path)
		w.Write([]byte("binary-audio"))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-token")
	data, err := c.DownloadFile(context.Background(), "voice/note.oga")
	require.NoError(t, err)
	assert.Equal(t, []byte("binary-audio"), data)
}
