package gemini

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sinoai/medassist-bot/internal/prompts"
	"github.com/sinoai/medassist-bot/pkg/metrics"
)

const (
	maxSuggestions   = 2
	maxSuggestionLen = 50
	maxUserExcerpt   = 500
	maxAssistExcerpt = 1500
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// Suggest generates up to two follow-up questions in the user's
// language from the just-completed exchange. Any failure (missing key,
// transport error, malformed model output) yields an empty list with a
// nil error; suggestions must never abort a flow.
func (c *Client) Suggest(ctx context.Context, userMsg, assistantMsg, language string) ([]string, error) {
	if c.cfg.APIKey == "" {
		c.logger.Warn("suggestions skipped, no API key configured")
		return nil, nil
	}

	prompt := prompts.SuggestionPrompt(language,
		truncateRunes(userMsg, maxUserExcerpt),
		truncateRunes(assistantMsg, maxAssistExcerpt),
	)

	texts, err := c.generate(ctx, []part{{Text: prompt}}, genConfig{
		Temperature:     0.7,
		MaxOutputTokens: 1024,
		ThinkingConfig:  thinkingConfig{ThinkingBudget: 0},
	}, c.cfg.SuggestTimeout)
	if err != nil {
		c.logger.Error("suggestion generation failed", zap.Error(err))
		return nil, nil
	}

	suggestions := extractSuggestions(strings.Join(texts, "\n"))
	if len(suggestions) > 0 {
		metrics.SuggestionsGeneratedTotal.Add(float64(len(suggestions)))
	}
	return suggestions, nil
}

// extractSuggestions pulls the suggestions array out of possibly fenced
// or prefixed model output. Malformed output yields an empty list.
func extractSuggestions(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "{") {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start == -1 || end == -1 || end < start {
			return nil
		}
		text = text[start : end+1]
	}

	var parsed struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil
	}

	out := make([]string, 0, maxSuggestions)
	for _, s := range parsed.Suggestions {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, truncateRunes(s, maxSuggestionLen))
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
