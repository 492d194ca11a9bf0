// Package bot routes Telegram updates to the conversation pipeline:
// commands, language and suggestion callbacks, and the text, voice and
// photo flows.
package bot

import (
	"context"
	"encoding/base64"
	"strings"

	"go.uber.org/zap"

	"github.com/sinoai/medassist-bot/internal/i18n"
	"github.com/sinoai/medassist-bot/internal/model"
	"github.com/sinoai/medassist-bot/internal/service"
	"github.com/sinoai/medassist-bot/internal/telegram"
	"github.com/sinoai/medassist-bot/pkg/logger"
	"github.com/sinoai/medassist-bot/pkg/metrics"
)

// maxErrorDetail caps the error detail echoed back to the user.
const maxErrorDetail = 200

// API is the slice of the Telegram client the router uses.
type API interface {
	SendMessage(ctx context.Context, req telegram.SendMessageRequest) (*telegram.Message, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup *telegram.InlineKeyboardMarkup) error
	EditMessageReplyMarkup(ctx context.Context, chatID, messageID int64, markup *telegram.InlineKeyboardMarkup) error
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
	SendChatAction(ctx context.Context, chatID int64, action string) error
	GetFile(ctx context.Context, fileID string) (*telegram.File, error)
	DownloadFile(ctx context.Context, filePath string) ([]byte, error)
}

// Responder runs one unit of conversational work.
type Responder interface {
	Respond(ctx context.Context, req *service.ChatRequest) (*service.ChatResult, error)
}

// Transcriber converts a voice note to text, degrading to empty.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType, languageHint string) (string, error)
}

// Store is the slice of the persistent store the router needs.
type Store interface {
	UserLanguage(ctx context.Context, userID int64) (string, bool, error)
	SetUserLanguage(ctx context.Context, userID int64, language, firstName, username string) error
	ClearHistory(ctx context.Context, userID int64) error
	Suggestion(ctx context.Context, id string) (string, bool, error)
}

// Router dispatches inbound updates.
type Router struct {
	tg          API
	store       Store
	chat        Responder
	transcriber Transcriber
	logger      *logger.Logger
	region      string
}

// NewRouter wires the router. region appears in /stats output.
func NewRouter(tg API, store Store, chat Responder, transcriber Transcriber, region string, log *logger.Logger) *Router {
	return &Router{
		tg:          tg,
		store:       store,
		chat:        chat,
		transcriber: transcriber,
		logger:      log,
		region:      region,
	}
}

// HandleUpdate dispatches one update. It never returns an error: every
// failure is rendered to the user or logged, so a bad update cannot
// wedge the intake loop.
func (r *Router) HandleUpdate(ctx context.Context, upd telegram.Update) {
	switch {
	case upd.CallbackQuery != nil:
		metrics.UpdatesTotal.WithLabelValues("callback").Inc()
		r.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message == nil || upd.Message.From == nil:
		metrics.UpdatesTotal.WithLabelValues("ignored").Inc()
	case strings.HasPrefix(upd.Message.Text, "/"):
		metrics.UpdatesTotal.WithLabelValues("command").Inc()
		r.handleCommand(ctx, upd.Message)
	case upd.Message.Voice != nil:
		metrics.UpdatesTotal.WithLabelValues("voice").Inc()
		r.handleVoice(ctx, upd.Message)
	case len(upd.Message.Photo) > 0:
		metrics.UpdatesTotal.WithLabelValues("photo").Inc()
		r.handlePhoto(ctx, upd.Message)
	case upd.Message.Text != "":
		metrics.UpdatesTotal.WithLabelValues("text").Inc()
		r.handleText(ctx, upd.Message)
	default:
		metrics.UpdatesTotal.WithLabelValues("ignored").Inc()
	}
}

func (r *Router) handleCommand(ctx context.Context, msg *telegram.Message) {
	command := strings.Fields(msg.Text)[0]
	if i := strings.IndexByte(command, '@'); i >= 0 {
		command = command[:i]
	}

	switch command {
	case "/start":
		r.handleStart(ctx, msg)
	case "/language":
		r.sendPlainMarkup(ctx, msg.Chat.ID, i18n.ChooseLanguage, languageKeyboard())
	case "/help":
		if lang, ok := r.requireLanguage(ctx, msg.Chat.ID, msg.From.ID); ok {
			r.sendMarkdown(ctx, msg.Chat.ID, i18n.T(lang, i18n.KeyHelp), nil)
		}
	case "/stats":
		if lang, ok := r.requireLanguage(ctx, msg.Chat.ID, msg.From.ID); ok {
			r.sendMarkdown(ctx, msg.Chat.ID, i18n.Tf(lang, i18n.KeyStats, r.region), nil)
		}
	case "/clear":
		r.handleClear(ctx, msg)
	default:
		r.logger.Debug("unknown command", zap.String("command", command))
	}
}

func (r *Router) handleStart(ctx context.Context, msg *telegram.Message) {
	lang, ok, err := r.store.UserLanguage(ctx, msg.From.ID)
	if err != nil {
		r.logger.Error("failed to load user language", zap.Int64("user_id", msg.From.ID), zap.Error(err))
	}
	if !ok {
		r.sendPlainMarkup(ctx, msg.Chat.ID, i18n.ChooseLanguage, languageKeyboard())
		return
	}
	r.sendMarkdown(ctx, msg.Chat.ID, i18n.T(lang, i18n.KeyWelcome), nil)
}

func (r *Router) handleClear(ctx context.Context, msg *telegram.Message) {
	lang, ok := r.requireLanguage(ctx, msg.Chat.ID, msg.From.ID)
	if !ok {
		return
	}
	if err := r.store.ClearHistory(ctx, msg.From.ID); err != nil {
		r.logger.Error("failed to clear history", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		r.sendError(ctx, msg.Chat.ID, lang, err)
		return
	}
	r.sendPlain(ctx, msg.Chat.ID, i18n.T(lang, i18n.KeyHistoryCleared))
}

func (r *Router) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	// Acknowledge first so the client stops its spinner even if the
	// rest of the handling fails.
	if err := r.tg.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		r.logger.Warn("failed to answer callback", zap.Error(err))
	}
	if cb.Message == nil {
		return
	}

	switch {
	case strings.HasPrefix(cb.Data, callbackLangPrefix):
		r.handleLanguageChoice(ctx, cb)
	case strings.HasPrefix(cb.Data, callbackSuggestPrefix):
		r.handleSuggestion(ctx, cb)
	}
}

func (r *Router) handleLanguageChoice(ctx context.Context, cb *telegram.CallbackQuery) {
	lang := strings.TrimPrefix(cb.Data, callbackLangPrefix)
	if !model.KnownLanguage(lang) {
		return
	}

	if err := r.store.SetUserLanguage(ctx, cb.From.ID, lang, cb.From.FirstName, cb.From.Username); err != nil {
		r.logger.Error("failed to set user language", zap.Int64("user_id", cb.From.ID), zap.Error(err))
		return
	}

	chatID := cb.Message.Chat.ID
	if err := r.tg.EditMessageText(ctx, chatID, cb.Message.MessageID, i18n.T(lang, i18n.KeyLanguageSet), nil); err != nil {
		r.logger.Warn("failed to edit language prompt", zap.Error(err))
	}
	r.sendMarkdown(ctx, chatID, i18n.T(lang, i18n.KeyWelcome), nil)
}

// handleSuggestion replays a cached suggestion through the normal
// conversation pipeline. A missing (expired or unknown) suggestion is
// dropped silently after the acknowledgement.
func (r *Router) handleSuggestion(ctx context.Context, cb *telegram.CallbackQuery) {
	id := strings.TrimPrefix(cb.Data, callbackSuggestPrefix)
	text, ok, err := r.store.Suggestion(ctx, id)
	if err != nil {
		r.logger.Error("failed to load suggestion", zap.String("suggestion_id", id), zap.Error(err))
		return
	}
	if !ok {
		metrics.SuggestionClicksTotal.WithLabelValues("miss").Inc()
		r.logger.Warn("suggestion not found", zap.String("suggestion_id", id))
		return
	}
	metrics.SuggestionClicksTotal.WithLabelValues("hit").Inc()

	lang, ok := r.requireLanguage(ctx, cb.Message.Chat.ID, cb.From.ID)
	if !ok {
		return
	}

	// Record the picked question on the original message; if the edit is
	// rejected (e.g. message too old), at least drop the keyboard so the
	// button cannot be pressed twice.
	chatID := cb.Message.Chat.ID
	edited := cb.Message.Text + "\n\n➡️ " + text
	if err := r.tg.EditMessageText(ctx, chatID, cb.Message.MessageID, edited, nil); err != nil {
		r.logger.Warn("failed to edit suggestion source", zap.Error(err))
		if err := r.tg.EditMessageReplyMarkup(ctx, chatID, cb.Message.MessageID, nil); err != nil {
			r.logger.Warn("failed to remove suggestion keyboard", zap.Error(err))
		}
	}

	r.runFlow(ctx, chatID, lang, &service.ChatRequest{
		UserID:   cb.From.ID,
		Language: lang,
		Kind:     "suggestion",
		Text:     text,
	})
}

func (r *Router) handleText(ctx context.Context, msg *telegram.Message) {
	lang, ok := r.requireLanguage(ctx, msg.Chat.ID, msg.From.ID)
	if !ok {
		return
	}
	r.runFlow(ctx, msg.Chat.ID, lang, &service.ChatRequest{
		UserID:   msg.From.ID,
		Language: lang,
		Kind:     "text",
		Text:     msg.Text,
	})
}

func (r *Router) handleVoice(ctx context.Context, msg *telegram.Message) {
	lang, ok := r.requireLanguage(ctx, msg.Chat.ID, msg.From.ID)
	if !ok {
		return
	}

	r.typing(ctx, msg.Chat.ID)
	status := r.sendPlain(ctx, msg.Chat.ID, i18n.T(lang, i18n.KeyTranscribing))
	defer r.deleteQuietly(ctx, msg.Chat.ID, status)

	audio, err := r.download(ctx, msg.Voice.FileID)
	if err != nil {
		r.logger.Error("failed to download voice note", zap.Error(err))
		r.sendError(ctx, msg.Chat.ID, lang, err)
		return
	}

	transcript, err := r.transcriber.Transcribe(ctx, audio, msg.Voice.MimeType, lang)
	if err != nil {
		r.logger.Error("transcription failed", zap.Error(err))
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		metrics.TranscriptionsTotal.WithLabelValues("empty").Inc()
		r.sendPlain(ctx, msg.Chat.ID, i18n.T(lang, i18n.KeyNoTranscript))
		return
	}
	metrics.TranscriptionsTotal.WithLabelValues("success").Inc()

	if status != nil {
		if err := r.tg.EditMessageText(ctx, msg.Chat.ID, status.MessageID, i18n.T(lang, i18n.KeyThinking), nil); err != nil {
			r.logger.Warn("failed to update status message", zap.Error(err))
		}
	}

	r.respondAndDeliver(ctx, msg.Chat.ID, lang, &service.ChatRequest{
		UserID:   msg.From.ID,
		Language: lang,
		Kind:     "voice",
		Text:     transcript,
	})
}

func (r *Router) handlePhoto(ctx context.Context, msg *telegram.Message) {
	lang, ok := r.requireLanguage(ctx, msg.Chat.ID, msg.From.ID)
	if !ok {
		return
	}

	r.typing(ctx, msg.Chat.ID)
	thinking := r.sendPlain(ctx, msg.Chat.ID, i18n.T(lang, i18n.KeyThinking))
	defer r.deleteQuietly(ctx, msg.Chat.ID, thinking)

	// Sizes arrive smallest first; take the largest rendition.
	largest := msg.Photo[len(msg.Photo)-1]
	image, err := r.download(ctx, largest.FileID)
	if err != nil {
		r.logger.Error("failed to download photo", zap.Error(err))
		r.sendError(ctx, msg.Chat.ID, lang, err)
		return
	}

	stored := msg.Caption
	if stored == "" {
		stored = i18n.T(lang, i18n.KeyAnalyzeImage)
	}

	r.respondAndDeliver(ctx, msg.Chat.ID, lang, &service.ChatRequest{
		UserID:      msg.From.ID,
		Language:    lang,
		Kind:        "image",
		Text:        msg.Caption,
		StoredText:  "[Image] " + stored,
		ImageBase64: base64.StdEncoding.EncodeToString(image),
	})
}

// runFlow wraps respondAndDeliver with the transient thinking message
// used by the text and suggestion flows.
func (r *Router) runFlow(ctx context.Context, chatID int64, lang string, req *service.ChatRequest) {
	r.typing(ctx, chatID)
	thinking := r.sendPlain(ctx, chatID, i18n.T(lang, i18n.KeyThinking))
	defer r.deleteQuietly(ctx, chatID, thinking)

	r.respondAndDeliver(ctx, chatID, lang, req)
}

func (r *Router) respondAndDeliver(ctx context.Context, chatID int64, lang string, req *service.ChatRequest) {
	res, err := r.chat.Respond(ctx, req)
	if err != nil {
		r.sendError(ctx, chatID, lang, err)
		return
	}

	chunks := chunkText(res.Text, maxMessageLen)
	markup := suggestionKeyboard(res.Suggestions)
	for i, chunk := range chunks {
		if i == len(chunks)-1 {
			r.sendMarkdown(ctx, chatID, chunk, markup)
		} else {
			r.sendMarkdown(ctx, chatID, chunk, nil)
		}
	}
}

// requireLanguage resolves the user's language, prompting for one when
// none is on file.
func (r *Router) requireLanguage(ctx context.Context, chatID, userID int64) (string, bool) {
	lang, ok, err := r.store.UserLanguage(ctx, userID)
	if err != nil {
		r.logger.Error("failed to load user language", zap.Int64("user_id", userID), zap.Error(err))
		return "", false
	}
	if !ok {
		r.sendPlainMarkup(ctx, chatID, i18n.SelectLanguageFirst, languageKeyboard())
		return "", false
	}
	return lang, true
}

func (r *Router) download(ctx context.Context, fileID string) ([]byte, error) {
	file, err := r.tg.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	return r.tg.DownloadFile(ctx, file.FilePath)
}

// sendMarkdown sends with Markdown formatting, falling back to plain
// text when the API rejects the entities.
func (r *Router) sendMarkdown(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) {
	_, err := r.tg.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   "Markdown",
		ReplyMarkup: markup,
	})
	if err == nil {
		return
	}
	r.logger.Warn("markdown send rejected, retrying plain", zap.Error(err))
	if _, err := r.tg.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	}); err != nil {
		r.logger.Error("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (r *Router) sendPlain(ctx context.Context, chatID int64, text string) *telegram.Message {
	return r.sendPlainMarkup(ctx, chatID, text, nil)
}

func (r *Router) sendPlainMarkup(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) *telegram.Message {
	msg, err := r.tg.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		r.logger.Error("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
		return nil
	}
	return msg
}

func (r *Router) sendError(ctx context.Context, chatID int64, lang string, cause error) {
	detail := truncateRunes(cause.Error(), maxErrorDetail)
	r.sendPlain(ctx, chatID, i18n.Tf(lang, i18n.KeyError, detail))
}

func (r *Router) deleteQuietly(ctx context.Context, chatID int64, msg *telegram.Message) {
	if msg == nil {
		return
	}
	if err := r.tg.DeleteMessage(ctx, chatID, msg.MessageID); err != nil {
		r.logger.Debug("failed to delete transient message", zap.Error(err))
	}
}

func (r *Router) typing(ctx context.Context, chatID int64) {
	if err := r.tg.SendChatAction(ctx, chatID, "typing"); err != nil {
		r.logger.Debug("failed to send chat action", zap.Error(err))
	}
}
