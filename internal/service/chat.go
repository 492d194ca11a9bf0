// Package service provides the conversation orchestrator: it sequences
// translation, inference, persistence and suggestion generation for
// each inbound unit of work, independent of transport and provider.
package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sinoai/medassist-bot/internal/events"
	"github.com/sinoai/medassist-bot/internal/i18n"
	"github.com/sinoai/medassist-bot/internal/llm"
	"github.com/sinoai/medassist-bot/internal/model"
	"github.com/sinoai/medassist-bot/internal/prompts"
	"github.com/sinoai/medassist-bot/pkg/logger"
	"github.com/sinoai/medassist-bot/pkg/metrics"
)

// Store is the slice of the persistent store the orchestrator needs.
type Store interface {
	History(ctx context.Context, userID int64, limit int) ([]model.Message, error)
	AddMessage(ctx context.Context, userID int64, role model.Role, content string) error
	PutSuggestion(ctx context.Context, id, text string) error
}

// Translator bridges text between languages; implementations degrade to
// passthrough and never hard-fail.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// Suggester proposes follow-up questions for a completed exchange.
type Suggester interface {
	Suggest(ctx context.Context, userMsg, assistantMsg, language string) ([]string, error)
}

// ChatRequest is one inbound unit of work with identity and language
// already resolved by the caller.
type ChatRequest struct {
	UserID   int64
	Language string

	// Kind labels the flow for events and traces: text, voice, image
	// or suggestion.
	Kind string

	// Text is the original-language input: the question, transcript or
	// image caption (possibly empty for captionless images).
	Text string

	// StoredText, when set, is persisted as the user turn instead of
	// Text (e.g. "[Image] <caption>"). History always reflects what the
	// user saw, never the bridged intermediate language.
	StoredText string

	// ImageBase64 is an inline JPEG accompanying the input.
	ImageBase64 string
}

// ChatResult is the outcome of a completed flow.
type ChatResult struct {
	Text          string
	Suggestions   []model.Suggestion
	Provider      string
	CorrelationID string
}

// ChatService runs the translate → infer → translate → persist →
// suggest pipeline. It holds no per-user state across units of work.
type ChatService struct {
	store      Store
	llm        llm.Client
	translator Translator
	suggester  Suggester
	events     *events.Publisher
	logger     *logger.Logger
	tracer     trace.Tracer
}

// NewChatService creates the orchestrator. publisher may be nil when
// event publishing is disabled.
func NewChatService(
	store Store,
	llmClient llm.Client,
	translator Translator,
	suggester Suggester,
	publisher *events.Publisher,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		store:      store,
		llm:        llmClient,
		translator: translator,
		suggester:  suggester,
		events:     publisher,
		logger:     log,
		tracer:     otel.Tracer("medassist-bot/service"),
	}
}

// Respond runs one unit of work to completion. Inference failures are
// returned as errors for the caller to render; translation and
// suggestion failures degrade inside.
func (s *ChatService) Respond(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	correlationID := uuid.New().String()
	log := s.logger.WithFlow(correlationID, req.UserID)
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "chat.respond",
		trace.WithAttributes(
			attribute.String("flow.kind", req.Kind),
			attribute.String("flow.language", req.Language),
		),
	)
	defer span.End()

	metrics.FlowStarted()
	defer metrics.FlowFinished()

	// Bridged languages pivot through the model's working language.
	policy := policyFor(req.Language)
	working := req.Language
	input := req.Text
	if policy.PreTranslate {
		working = policy.Pivot
		if input != "" {
			input, _ = s.translator.Translate(ctx, input, req.Language, policy.Pivot)
		}
	}
	if input == "" && req.ImageBase64 != "" {
		input = i18n.T(working, i18n.KeyAnalyzeImage)
	}

	history, err := s.store.History(ctx, req.UserID, model.MaxWindow)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	chatHistory := make([]llm.ChatMessage, len(history))
	for i, m := range history {
		chatHistory[i] = llm.ChatMessage{Role: string(m.Role), Content: m.Content}
	}

	log.Info("calling inference endpoint",
		zap.String("provider", s.llm.Name()),
		zap.String("working_language", working),
		zap.Int("history", len(chatHistory)),
	)

	resp, err := s.llm.Complete(ctx, &llm.CompletionRequest{
		System:      prompts.System(working),
		History:     chatHistory,
		UserText:    input,
		ImageBase64: req.ImageBase64,
	})
	if err != nil {
		metrics.RecordLLMRequest(s.llm.Name(), "error", time.Since(start).Seconds())
		span.RecordError(err)
		s.publish(req, correlationID, model.ExchangeFailed, err.Error(), start)
		log.Error("inference failed", zap.Error(err))
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	metrics.RecordLLMRequest(s.llm.Name(), "success", time.Since(start).Seconds())

	output := resp.Content
	if policy.PostTranslate {
		output, _ = s.translator.Translate(ctx, output, policy.Pivot, req.Language)
	}

	// Persist the exchange in the user's own language, user turn first.
	stored := req.StoredText
	if stored == "" {
		stored = req.Text
	}
	if err := s.store.AddMessage(ctx, req.UserID, model.RoleUser, stored); err != nil {
		return nil, fmt.Errorf("persist user turn: %w", err)
	}
	if err := s.store.AddMessage(ctx, req.UserID, model.RoleAssistant, output); err != nil {
		return nil, fmt.Errorf("persist assistant turn: %w", err)
	}
	metrics.MessagesTotal.WithLabelValues(string(model.RoleUser)).Inc()
	metrics.MessagesTotal.WithLabelValues(string(model.RoleAssistant)).Inc()

	suggestions := s.followUps(ctx, req.UserID, stored, output, req.Language, log)

	s.publish(req, correlationID, model.ExchangeCompleted, "", start)
	log.Info("flow completed",
		zap.Int("response_chars", len(output)),
		zap.Int("suggestions", len(suggestions)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &ChatResult{
		Text:          output,
		Suggestions:   suggestions,
		Provider:      s.llm.Name(),
		CorrelationID: correlationID,
	}, nil
}

// followUps generates and caches follow-up suggestions. Every failure
// here degrades to "no suggestions"; it never aborts the flow.
func (s *ChatService) followUps(ctx context.Context, userID int64, userMsg, assistantMsg, language string, log *logger.Logger) []model.Suggestion {
	texts, err := s.suggester.Suggest(ctx, userMsg, assistantMsg, language)
	if err != nil || len(texts) == 0 {
		if err != nil {
			log.Warn("suggestion generation failed", zap.Error(err))
		}
		return nil
	}

	suggestions := make([]model.Suggestion, 0, len(texts))
	for i, text := range texts {
		id := SuggestionID(userID, i, text)
		if err := s.store.PutSuggestion(ctx, id, text); err != nil {
			log.Warn("failed to cache suggestion", zap.String("suggestion_id", id), zap.Error(err))
			continue
		}
		suggestions = append(suggestions, model.Suggestion{ID: id, Text: text})
	}
	return suggestions
}

func (s *ChatService) publish(req *ChatRequest, correlationID string, status model.ExchangeStatus, reason string, start time.Time) {
	s.events.PublishExchange(&model.ExchangeEvent{
		CorrelationID: correlationID,
		UserID:        req.UserID,
		Language:      req.Language,
		Kind:          req.Kind,
		Provider:      s.llm.Name(),
		Status:        status,
		Reason:        reason,
		LatencyMs:     time.Since(start).Milliseconds(),
		CreatedAt:     time.Now(),
	})
}

// SuggestionID derives the short opaque identifier for a cached
// suggestion from user, position and content. Twelve hex characters
// keep the callback payload well under the transport's 64-byte limit;
// collisions resolve last-write-wins in the cache.
func SuggestionID(userID int64, position int, text string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%d_%d_%s", userID, position, text)))
	return hex.EncodeToString(sum[:])[:12]
}
