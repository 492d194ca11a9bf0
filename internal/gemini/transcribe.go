package gemini

import (
	"context"
	"encoding/base64"
	"strings"

	"go.uber.org/zap"

	"github.com/sinoai/medassist-bot/pkg/metrics"
)

// Transcribe converts a voice message to text. Failures return an empty
// transcript with a nil error; the caller treats that as "nothing to
// work with" and halts the flow with a localized notice.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType, languageHint string) (string, error) {
	if c.cfg.APIKey == "" {
		c.logger.Warn("transcription skipped, no API key configured")
		metrics.TranscriptionsTotal.WithLabelValues("skipped").Inc()
		return "", nil
	}
	if mimeType == "" {
		mimeType = "audio/ogg"
	}

	prompt := "Transcribe the following medical voice message. " +
		"Return ONLY the transcript text, nothing else. " +
		"Keep medical terminology accurate."
	if languageHint != "" {
		prompt += " Language hint: " + languageHint + "."
	}

	parts := []part{
		{Text: prompt},
		{InlineData: &inlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(audio),
		}},
	}

	texts, err := c.generate(ctx, parts, genConfig{
		Temperature:     0.2,
		MaxOutputTokens: 1024,
		ThinkingConfig:  thinkingConfig{ThinkingBudget: 0},
	}, c.cfg.TranscribeTimeout)
	if err != nil {
		c.logger.Error("transcription failed", zap.Error(err))
		metrics.TranscriptionsTotal.WithLabelValues("error").Inc()
		return "", nil
	}

	transcript := strings.TrimSpace(strings.Join(texts, "\n"))
	if transcript == "" {
		metrics.TranscriptionsTotal.WithLabelValues("empty").Inc()
		return "", nil
	}

	metrics.TranscriptionsTotal.WithLabelValues("ok").Inc()
	return transcript, nil
}
