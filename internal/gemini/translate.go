package gemini

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sinoai/medassist-bot/pkg/metrics"
)

// Translate converts text between languages for pipeline bridging. On
// any failure (missing key, transport error, empty output) the original
// text is returned with a nil error: translation degrades to
// passthrough, it never fails a flow.
func (c *Client) Translate(ctx context.Context, text, from, to string) (string, error) {
	direction := from + "-" + to

	if c.cfg.APIKey == "" {
		c.logger.Warn("translation skipped, no API key configured")
		metrics.RecordTranslation(direction, "skipped")
		return text, nil
	}

	prompt := translationPrompt(text, from, to)

	texts, err := c.generate(ctx, []part{{Text: prompt}}, genConfig{
		Temperature:     0.3,
		MaxOutputTokens: 2000,
		ThinkingConfig:  thinkingConfig{ThinkingBudget: 0},
	}, c.cfg.TranslateTimeout)
	if err != nil {
		c.logger.Error("translation failed, passing original text through",
			zap.String("direction", direction),
			zap.Error(err),
		)
		metrics.RecordTranslation(direction, "error")
		return text, nil
	}

	translated := ""
	if len(texts) > 0 {
		translated = strings.TrimSpace(texts[len(texts)-1])
	}
	if translated == "" {
		metrics.RecordTranslation(direction, "empty")
		return text, nil
	}

	metrics.RecordTranslation(direction, "ok")
	return translated, nil
}

func translationPrompt(text, from, to string) string {
	switch {
	case from == "uz" && to == "en":
		return fmt.Sprintf(`Translate the following Uzbek medical text to English.
Keep medical terminology accurate. Return ONLY the translated text, nothing else.

Uzbek text:
%s`, text)
	case from == "en" && to == "uz":
		return fmt.Sprintf(`Translate the following English medical text to Uzbek (Latin script).
Keep medical terminology accurate. Keep the same formatting (emojis, line breaks, sections).
Return ONLY the translated text, nothing else.

English text:
%s`, text)
	default:
		return fmt.Sprintf(`Translate the following medical text from %s to %s.
Keep medical terminology accurate. Return ONLY the translated text, nothing else.

Text:
%s`, languageName(from), languageName(to), text)
	}
}

func languageName(code string) string {
	switch code {
	case "en":
		return "English"
	case "ru":
		return "Russian"
	case "uz":
		return "Uzbek"
	default:
		return code
	}
}
