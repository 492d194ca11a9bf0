package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinoai/medassist-bot/internal/i18n"
	"github.com/sinoai/medassist-bot/internal/model"
	"github.com/sinoai/medassist-bot/internal/service"
	"github.com/sinoai/medassist-bot/internal/telegram"
	"github.com/sinoai/medassist-bot/pkg/logger"
)

type fakeAPI struct {
	mu           sync.Mutex
	sent         []telegram.SendMessageRequest
	deleted      []int64
	edits        []string
	answered     []string
	failMarkdown bool
	nextID       int64
}

func (f *fakeAPI) SendMessage(ctx context.Context, req telegram.SendMessageRequest) (*telegram.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMarkdown && req.ParseMode == "Markdown" {
		return nil, &telegram.APIError{Method: "sendMessage", Code: 400, Description: "can't parse entities"}
	}
	f.nextID++
	f.sent = append(f.sent, req)
	return &telegram.Message{MessageID: f.nextID, Chat: telegram.Chat{ID: req.ChatID}, Text: req.Text}, nil
}

func (f *fakeAPI) EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup *telegram.InlineKeyboardMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, text)
	return nil
}

func (f *fakeAPI) EditMessageReplyMarkup(ctx context.Context, chatID, messageID int64, markup *telegram.InlineKeyboardMarkup) error {
	return nil
}

func (f *fakeAPI) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeAPI) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, callbackID)
	return nil
}

func (f *fakeAPI) SendChatAction(ctx context.Context, chatID int64, action string) error {
	return nil
}

func (f *fakeAPI) GetFile(ctx context.Context, fileID string) (*telegram.File, error) {
	return &telegram.File{FileID: fileID, FilePath: "voice/note.oga"}, nil
}

func (f *fakeAPI) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	return []byte("audio-bytes"), nil
}

type fakeStore struct {
	langs       map[int64]string
	suggestions map[string]string
	cleared     []int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		langs:       make(map[int64]string),
		suggestions: make(map[string]string),
	}
}

func (f *fakeStore) UserLanguage(ctx context.Context, userID int64) (string, bool, error) {
	lang, ok := f.langs[userID]
	return lang, ok, nil
}

func (f *fakeStore) SetUserLanguage(ctx context.Context, userID int64, language, firstName, username string) error {
	f.langs[userID] = language
	return nil
}

func (f *fakeStore) ClearHistory(ctx context.Context, userID int64) error {
	f.cleared = append(f.cleared, userID)
	return nil
}

func (f *fakeStore) Suggestion(ctx context.Context, id string) (string, bool, error) {
	text, ok := f.suggestions[id]
	return text, ok, nil
}

type fakeResponder struct {
	got *service.ChatRequest
	res *service.ChatResult
	err error
}

func (f *fakeResponder) Respond(ctx context.Context, req *service.ChatRequest) (*service.ChatResult, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType, languageHint string) (string, error) {
	return f.text, f.err
}

func textUpdate(userID, chatID int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			MessageID: 100,
			From:      &telegram.User{ID: userID, FirstName: "Test"},
			Chat:      telegram.Chat{ID: chatID},
			Text:      text,
		},
	}
}

func TestTextWithoutLanguagePromptsForOne(t *testing.T) {
	api := &fakeAPI{}
	responder := &fakeResponder{}
	r := NewRouter(api, newFakeStore(), responder, &fakeTranscriber{}, "test", logger.NewNop())

	r.HandleUpdate(context.Background(), textUpdate(1, 10, "hello"))

	require.Len(t, api.sent, 1)
	assert.Equal(t, i18n.SelectLanguageFirst, api.sent[0].Text)
	assert.NotNil(t, api.sent[0].ReplyMarkup)
	assert.Nil(t, responder.got)
}

func TestTextFlowDelivered(t *testing.T) {
	api := &fakeAPI{}
	store := newFakeStore()
	store.langs[1] = model.LangEnglish
	responder := &fakeResponder{res: &service.ChatResult{
		Text: "drink fluids",
		Suggestions: []model.Suggestion{
			{ID: "abc123def456", Text: "How long does flu last?"},
		},
	}}
	r := NewRouter(api, store, responder, &fakeTranscriber{}, "test", logger.NewNop())

	r.HandleUpdate(context.Background(), textUpdate(1, 10, "I have the flu"))

	require.NotNil(t, responder.got)
	assert.Equal(t, "text", responder.got.Kind)
	assert.Equal(t, "I have the flu", responder.got.Text)
	assert.Equal(t, model.LangEnglish, responder.got.Language)

	// thinking + answer
	require.Len(t, api.sent, 2)
	assert.Equal(t, i18n.T(model.LangEnglish, i18n.KeyThinking), api.sent[0].Text)
	assert.Equal(t, "drink fluids", api.sent[1].Text)
	require.NotNil(t, api.sent[1].ReplyMarkup)
	assert.Equal(t, "suggest_abc123def456", api.sent[1].ReplyMarkup.InlineKeyboard[0][0].CallbackData)

	// thinking message deleted
	assert.Equal(t, []int64{1}, api.deleted)
}

func TestLongResponseChunked(t *testing.T) {
	api := &fakeAPI{}
	store := newFakeStore()
	store.langs[1] = model.LangEnglish
	long := strings.Repeat("z", 9000)
	responder := &fakeResponder{res: &service.ChatResult{
		Text:        long,
		Suggestions: []model.Suggestion{{ID: "cafe00000000", Text: "More?"}},
	}}
	r := NewRouter(api, store, responder, &fakeTranscriber{}, "test", logger.NewNop())

	r.HandleUpdate(context.Background(), textUpdate(1, 10, "tell me everything"))

	// thinking + 3 chunks
	require.Len(t, api.sent, 4)
	var rebuilt strings.Builder
	for i, sent := range api.sent[1:] {
		rebuilt.WriteString(sent.Text)
		if i < 2 {
			assert.Nil(t, sent.ReplyMarkup)
		} else {
			assert.NotNil(t, sent.ReplyMarkup)
		}
	}
	assert.Equal(t, long, rebuilt.String())
}

func TestInferenceErrorRendered(t *testing.T) {
	api := &fakeAPI{}
	store := newFakeStore()
	store.langs[1] = model.LangRussian
	responder := &fakeResponder{err: errors.New("endpoint exploded: " + strings.Repeat("x", 300))}
	r := NewRouter(api, store, responder, &fakeTranscriber{}, "test", logger.NewNop())

	r.HandleUpdate(context.Background(), textUpdate(1, 10, "вопрос"))

	// thinking + error
	require.Len(t, api.sent, 2)
	assert.Contains(t, api.sent[1].Text, "произошла ошибка")
	// detail is truncated
	assert.NotContains(t, api.sent[1].Text, strings.Repeat("x", 201))
	// thinking message still deleted
	assert.Len(t, api.deleted, 1)
}

func TestMarkdownFallsBackToPlain(t *testing.T) {
	api := &fakeAPI{failMarkdown: true}
	store := newFakeStore()
	store.langs[1] = model.LangEnglish
	responder := &fakeResponder{res: &service.ChatResult{Text: "**broken* markdown"}}
	r := NewRouter(api, store, responder, &fakeTranscriber{}, "test", logger.NewNop())

	r.HandleUpdate(context.Background(), textUpdate(1, 10, "hi"))

	require.Len(t, api.sent, 2)
	assert.Equal(t, "**broken* markdown", api.sent[1].Text)
	assert.Empty(t, api.sent[1].ParseMode)
}

func TestLanguageChoiceCallback(t *testing.T) {
	api := &fakeAPI{}
	store := newFakeStore()
	r := NewRouter(api, store, &fakeResponder{}, &fakeTranscriber{}, "test", logger.NewNop())

	r.HandleUpdate(context.Background(), telegram.Update{
		UpdateID: 2,
		CallbackQuery: &telegram.CallbackQuery{
			ID:   "cb1",
			From: telegram.User{ID: 1, FirstName: "Test"},
			Message: &telegram.Message{
				MessageID: 50,
				Chat:      telegram.Chat{ID: 10},
				Text:      i18n.ChooseLanguage,
			},
			Data: "lang_ru",
		},
	})

	assert.Equal(t, []string{"cb1"}, api.answered)
	assert.Equal(t, model.LangRussian, store.langs[1])
	require.Len(t, api.edits, 1)
	assert.Equal(t, i18n.T(model.LangRussian, i18n.KeyLanguageSet), api.edits[0])
	// welcome message follows
	require.Len(t, api.sent, 1)
	assert.Contains(t, api.sent[0].Text, "Медицинский")
}

func TestSuggestionCallbackRunsFlow(t *testing.T) {
	api := &fakeAPI{}
	store := newFakeStore()
	store.langs[1] = model.LangEnglish
	store.suggestions["abc123def456"] = "How long does flu last?"
	responder := &fakeResponder{res: &service.ChatResult{Text: "about a week"}}
	r := NewRouter(api, store, responder, &fakeTranscriber{}, "test", logger.NewNop())

	r.HandleUpdate(context.Background(), telegram.Update{
		UpdateID: 3,
		CallbackQuery: &telegram.CallbackQuery{
			ID:      "cb2",
			From:    telegram.User{ID: 1},
			Message: &telegram.Message{MessageID: 60, Chat: telegram.Chat{ID: 10}, Text: "drink fluids"},
			Data:    "suggest_abc123def456",
		},
	})

	require.NotNil(t, responder.got)
	assert.Equal(t, "suggestion", responder.got.Kind)
	assert.Equal(t, "How long does flu last?", responder.got.Text)

	// original message annotated with the picked question
	require.Len(t, api.edits, 1)
	assert.Contains(t, api.edits[0], "drink fluids")
	assert.Contains(t, api.edits[0], "➡️ How long does flu last?")
}

func TestExpiredSuggestionDroppedSilently(t *testing.T) {
	api := &fakeAPI{}
	store := newFakeStore()
	store.langs[1] = model.LangEnglish
	responder := &fakeResponder{}
	r := NewRouter(api, store, responder, &fakeTranscriber{}, "test", logger.NewNop())

	r.HandleUpdate(context.Background(), telegram.Update{
		UpdateID: 4,
		CallbackQuery: &telegram.CallbackQuery{
			ID:      "cb3",
			From:    telegram.User{ID: 1},
			Message: &telegram.Message{MessageID: 61, Chat: telegram.Chat{ID: 10}, Text: "old answer"},
			Data:    "suggest_000000000000",
		},
	})

	// acknowledged but nothing sent, nothing run
	assert.Equal(t, []string{"cb3"}, api.answered)
	assert.Empty(t, api.sent)
	assert.Nil(t, responder.got)
}

func TestVoiceFlow(t *testing.T) {
	api := &fakeAPI{}
	store := newFakeStore()
	store.langs[1] = model.LangUzbek
	responder := &fakeResponder{res: &service.ChatResult{Text: "javob"}}
	transcriber := &fakeTranscriber{text: "mening savolim"}
	r := NewRouter(api, store, responder, transcriber, "test", logger.NewNop())

	r.HandleUpdate(context.Background(), telegram.Update{
		UpdateID: 5,
		Message: &telegram.Message{
			MessageID: 70,
			From:      &telegram.User{ID: 1},
			Chat:      telegram.Chat{ID: 10},
			Voice:     &telegram.Voice{FileID: "voice1", MimeType: "audio/ogg"},
		},
	})

	require.NotNil(t, responder.got)
	assert.Equal(t, "voice", responder.got.Kind)
	assert.Equal(t, "mening savolim", responder.got.Text)

	// transcribing status, then answer; status edited to thinking and deleted
	require.Len(t, api.sent, 2)
	assert.Equal(t, i18n.T(model.LangUzbek, i18n.KeyTranscribing), api.sent[0].Text)
	assert.Equal(t, "javob", api.sent[1].Text)
	require.Len(t, api.edits, 1)
	assert.Equal(t, i18n.T(model.LangUzbek, i18n.KeyThinking), api.edits[0])
	assert.Len(t, api.deleted, 1)
}

func TestVoiceEmptyTranscript(t *testing.T) {
	api := &fakeAPI{}
	store := newFakeStore()
	store.langs[1] = model.LangEnglish
	responder := &fakeResponder{}
	r := NewRouter(api, store, responder, &fakeTranscriber{text: "  "}, "test", logger.NewNop())

	r.HandleUpdate(context.Background(), telegram.Update{
		UpdateID: 6,
		Message: &telegram.Message{
			MessageID: 71,
			From:      &telegram.User{ID: 1},
			Chat:      telegram.Chat{ID: 10},
			Voice:     &telegram.Voice{FileID: "voice2"},
		},
	})

	assert.Nil(t, responder.got)
	require.Len(t, api.sent, 2)
	assert.Equal(t, i18n.T(model.LangEnglish, i18n.KeyNoTranscript), api.sent[1].Text)
}

func TestPhotoFlow(t *testing.T) {
	api := &fakeAPI{}
	store := newFakeStore()
	store.langs[1] = model.LangEnglish
	responder := &fakeResponder{res: &service.ChatResult{Text: "looks like a rash"}}
	r := NewRouter(api, store, responder, &fakeTranscriber{}, "test", logger.NewNop())

	r.HandleUpdate(context.Background(), telegram.Update{
		UpdateID: 7,
		Message: &telegram.Message{
			MessageID: 80,
			From:      &telegram.User{ID: 1},
			Chat:      telegram.Chat{ID: 10},
			Caption:   "what is this?",
			Photo: []telegram.PhotoSize{
				{FileID: "small", Width: 90},
				{FileID: "large", Width: 800},
			},
		},
	})

	require.NotNil(t, responder.got)
	assert.Equal(t, "image", responder.got.Kind)
	assert.Equal(t, "what is this?", responder.got.Text)
	assert.Equal(t, "[Image] what is this?", responder.got.StoredText)
	assert.NotEmpty(t, responder.got.ImageBase64)
}

func TestPhotoWithoutCaption(t *testing.T) {
	api := &fakeAPI{}
	store := newFakeStore()
	store.langs[1] = model.LangUzbek
	responder := &fakeResponder{res: &service.ChatResult{Text: "tahlil"}}
	r := NewRouter(api, store, responder, &fakeTranscriber{}, "test", logger.NewNop())

	r.HandleUpdate(context.Background(), telegram.Update{
		UpdateID: 8,
		Message: &telegram.Message{
			MessageID: 81,
			From:      &telegram.User{ID: 1},
			Chat:      telegram.Chat{ID: 10},
			Photo:     []telegram.PhotoSize{{FileID: "only", Width: 90}},
		},
	})

	require.NotNil(t, responder.got)
	assert.Empty(t, responder.got.Text)
	assert.Equal(t, "[Image] "+i18n.T(model.LangUzbek, i18n.KeyAnalyzeImage), responder.got.StoredText)
}

func TestStartAndClearCommands(t *testing.T) {
	api := &fakeAPI{}
	store := newFakeStore()
	store.langs[1] = model.LangEnglish
	r := NewRouter(api, store, &fakeResponder{}, &fakeTranscriber{}, "test", logger.NewNop())

	r.HandleUpdate(context.Background(), textUpdate(1, 10, "/start"))
	require.Len(t, api.sent, 1)
	assert.Contains(t, api.sent[0].Text, "Medical Assistant")

	r.HandleUpdate(context.Background(), textUpdate(1, 10, "/clear"))
	assert.Equal(t, []int64{1}, store.cleared)
	require.Len(t, api.sent, 2)
	assert.Equal(t, i18n.T(model.LangEnglish, i18n.KeyHistoryCleared), api.sent[1].Text)
}

func TestStartWithoutLanguageShowsPicker(t *testing.T) {
	api := &fakeAPI{}
	r := NewRouter(api, newFakeStore(), &fakeResponder{}, &fakeTranscriber{}, "test", logger.NewNop())

	r.HandleUpdate(context.Background(), textUpdate(2, 20, "/start"))

	require.Len(t, api.sent, 1)
	assert.Equal(t, i18n.ChooseLanguage, api.sent[0].Text)
	require.NotNil(t, api.sent[0].ReplyMarkup)
	assert.Len(t, api.sent[0].ReplyMarkup.InlineKeyboard, 3)
}
