package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinoai/medassist-bot/internal/telegram"
	"github.com/sinoai/medassist-bot/pkg/logger"
)

type recordingRouter struct {
	mu      sync.Mutex
	handled []telegram.Update
	done    chan struct{}
}

func (r *recordingRouter) HandleUpdate(ctx context.Context, upd telegram.Update) {
	r.mu.Lock()
	r.handled = append(r.handled, upd)
	r.mu.Unlock()
	close(r.done)
}

func TestWebhookReceive(t *testing.T) {
	router := &recordingRouter{done: make(chan struct{})}
	h := NewWebhookHandler(router, logger.NewNop())

	body := `{"update_id": 9, "message": {"message_id": 1, "from": {"id": 5}, "chat": {"id": 5}, "text": "hi"}}`
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	select {
	case <-router.done:
	case <-time.After(time.Second):
		t.Fatal("update was not dispatched")
	}
	router.mu.Lock()
	defer router.mu.Unlock()
	require.Len(t, router.handled, 1)
	assert.Equal(t, int64(9), router.handled[0].UpdateID)
	assert.Equal(t, "hi", router.handled[0].Message.Text)
}

func TestWebhookReceiveRejectsGarbage(t *testing.T) {
	router := &recordingRouter{done: make(chan struct{})}
	h := NewWebhookHandler(router, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	router.mu.Lock()
	defer router.mu.Unlock()
	assert.Empty(t, router.handled)
}
