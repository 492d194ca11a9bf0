package service

import (
	"context"
	"encoding/hex"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinoai/medassist-bot/internal/i18n"
	"github.com/sinoai/medassist-bot/internal/llm"
	"github.com/sinoai/medassist-bot/internal/model"
	"github.com/sinoai/medassist-bot/internal/store"
	"github.com/sinoai/medassist-bot/pkg/logger"
)

type fakeLLM struct {
	got  *llm.CompletionRequest
	resp *llm.CompletionResponse
	err  error
}

func (f *fakeLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeLLM) Name() string { return "fake" }

type translation struct {
	text, from, to string
}

type fakeTranslator struct {
	calls []translation
	out   map[string]string
}

func (f *fakeTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	f.calls = append(f.calls, translation{text, from, to})
	if translated, ok := f.out[text]; ok {
		return translated, nil
	}
	return text, nil
}

type fakeSuggester struct {
	texts []string
	err   error
}

func (f *fakeSuggester) Suggest(ctx context.Context, userMsg, assistantMsg, language string) ([]string, error) {
	return f.texts, f.err
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRespondEnglish(t *testing.T) {
	db := testStore(t)
	model1 := &fakeLLM{resp: &llm.CompletionResponse{Content: "rest and drink fluids"}}
	translator := &fakeTranslator{}
	suggester := &fakeSuggester{texts: []string{"How long does flu last?", "When to see a doctor?"}}
	svc := NewChatService(db, model1, translator, suggester, nil, logger.NewNop())

	res, err := svc.Respond(context.Background(), &ChatRequest{
		UserID:   1,
		Language: model.LangEnglish,
		Kind:     "text",
		Text:     "I have the flu",
	})
	require.NoError(t, err)

	assert.Equal(t, "rest and drink fluids", res.Text)
	assert.Equal(t, "fake", res.Provider)
	assert.NotEmpty(t, res.CorrelationID)

	// English never touches the translator
	assert.Empty(t, translator.calls)
	assert.Equal(t, "I have the flu", model1.got.UserText)

	// exchange persisted, user turn first
	history, err := db.History(context.Background(), 1, model.MaxWindow)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, "I have the flu", history[0].Content)
	assert.Equal(t, model.RoleAssistant, history[1].Role)

	// suggestions cached and addressable
	require.Len(t, res.Suggestions, 2)
	for _, s := range res.Suggestions {
		cached, ok, err := db.Suggestion(context.Background(), s.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, s.Text, cached)
	}
}

func TestRespondUzbekBridgesThroughEnglish(t *testing.T) {
	db := testStore(t)
	model1 := &fakeLLM{resp: &llm.CompletionResponse{Content: "rest well"}}
	translator := &fakeTranslator{out: map[string]string{
		"menda gripp bor": "I have the flu",
		"rest well":       "yaxshi dam oling",
	}}
	svc := NewChatService(db, model1, translator, &fakeSuggester{}, nil, logger.NewNop())

	res, err := svc.Respond(context.Background(), &ChatRequest{
		UserID:   2,
		Language: model.LangUzbek,
		Kind:     "text",
		Text:     "menda gripp bor",
	})
	require.NoError(t, err)

	// inference sees the bridged text and working-language instructions
	assert.Equal(t, "I have the flu", model1.got.UserText)
	assert.Contains(t, model1.got.System, "English")

	// both directions of the bridge were exercised
	require.Len(t, translator.calls, 2)
	assert.Equal(t, translation{"menda gripp bor", model.LangUzbek, model.LangEnglish}, translator.calls[0])
	assert.Equal(t, translation{"rest well", model.LangEnglish, model.LangUzbek}, translator.calls[1])

	// user sees, and history stores, the original language
	assert.Equal(t, "yaxshi dam oling", res.Text)
	history, err := db.History(context.Background(), 2, model.MaxWindow)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "menda gripp bor", history[0].Content)
	assert.Equal(t, "yaxshi dam oling", history[1].Content)
}

func TestRespondInferenceFailure(t *testing.T) {
	db := testStore(t)
	model1 := &fakeLLM{err: errors.New("endpoint down")}
	svc := NewChatService(db, model1, &fakeTranslator{}, &fakeSuggester{}, nil, logger.NewNop())

	_, err := svc.Respond(context.Background(), &ChatRequest{
		UserID:   3,
		Language: model.LangEnglish,
		Kind:     "text",
		Text:     "hello",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint down")

	// nothing persisted for a failed exchange
	count, err := db.MessageCount(context.Background(), 3)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRespondSuggestionFailureDegrades(t *testing.T) {
	db := testStore(t)
	model1 := &fakeLLM{resp: &llm.CompletionResponse{Content: "answer"}}
	svc := NewChatService(db, model1, &fakeTranslator{}, &fakeSuggester{err: errors.New("quota")}, nil, logger.NewNop())

	res, err := svc.Respond(context.Background(), &ChatRequest{
		UserID:   4,
		Language: model.LangEnglish,
		Kind:     "text",
		Text:     "question",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Suggestions)

	// the exchange itself still landed
	count, err := db.MessageCount(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRespondImageWithoutCaption(t *testing.T) {
	db := testStore(t)
	model1 := &fakeLLM{resp: &llm.CompletionResponse{Content: "a hand x-ray"}}
	svc := NewChatService(db, model1, &fakeTranslator{}, &fakeSuggester{}, nil, logger.NewNop())

	stored := "[Image] " + i18n.T(model.LangEnglish, i18n.KeyAnalyzeImage)
	_, err := svc.Respond(context.Background(), &ChatRequest{
		UserID:      5,
		Language:    model.LangEnglish,
		Kind:        "image",
		Text:        "",
		StoredText:  stored,
		ImageBase64: "aW1hZ2U=",
	})
	require.NoError(t, err)

	// a captionless image gets the default analysis instruction
	assert.Equal(t, i18n.T(model.LangEnglish, i18n.KeyAnalyzeImage), model1.got.UserText)
	assert.Equal(t, "aW1hZ2U=", model1.got.ImageBase64)

	history, err := db.History(context.Background(), 5, model.MaxWindow)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, stored, history[0].Content)
}

func TestRespondSendsBoundedHistory(t *testing.T) {
	db := testStore(t)
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		require.NoError(t, db.AddMessage(ctx, 6, model.RoleUser, "q"))
		require.NoError(t, db.AddMessage(ctx, 6, model.RoleAssistant, "a"))
	}

	model1 := &fakeLLM{resp: &llm.CompletionResponse{Content: "ok"}}
	svc := NewChatService(db, model1, &fakeTranslator{}, &fakeSuggester{}, nil, logger.NewNop())

	_, err := svc.Respond(ctx, &ChatRequest{
		UserID:   6,
		Language: model.LangEnglish,
		Kind:     "text",
		Text:     "latest",
	})
	require.NoError(t, err)
	assert.Len(t, model1.got.History, model.MaxWindow)
}

func TestSuggestionID(t *testing.T) {
	id := SuggestionID(12345, 0, "How long does flu last?")

	assert.Len(t, id, 12)
	_, err := hex.DecodeString(id)
	assert.NoError(t, err)

	// deterministic, and sensitive to every input
	assert.Equal(t, id, SuggestionID(12345, 0, "How long does flu last?"))
	assert.NotEqual(t, id, SuggestionID(12345, 1, "How long does flu last?"))
	assert.NotEqual(t, id, SuggestionID(12346, 0, "How long does flu last?"))
	assert.NotEqual(t, id, SuggestionID(12345, 0, "other"))
}
