// Package gemini provides the Gemini-backed collaborators: translation
// bridging, voice transcription, and follow-up suggestion generation.
// All three degrade gracefully; none of them ever fails a flow.
package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sinoai/medassist-bot/pkg/logger"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Config holds Gemini API settings.
type Config struct {
	APIKey string
	Model  string

	TranslateTimeout  time.Duration
	TranscribeTimeout time.Duration
	SuggestTimeout    time.Duration

	// BaseURL overrides the API host. Used in tests.
	BaseURL string
}

// Client calls the generateContent API.
type Client struct {
	http   *resty.Client
	cfg    Config
	logger *logger.Logger
}

// New creates a Gemini client. An empty API key is allowed; every
// capability then degrades to its no-op behavior.
func New(cfg Config, log *logger.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TranslateTimeout == 0 {
		cfg.TranslateTimeout = 60 * time.Second
	}
	if cfg.TranscribeTimeout == 0 {
		cfg.TranscribeTimeout = 60 * time.Second
	}
	if cfg.SuggestTimeout == 0 {
		cfg.SuggestTimeout = 60 * time.Second
	}

	return &Client{
		http:   resty.New(),
		cfg:    cfg,
		logger: log,
	}
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type genRequest struct {
	Contents         []genContent `json:"contents"`
	GenerationConfig genConfig    `json:"generationConfig"`
}

type genContent struct {
	Parts []part `json:"parts"`
}

type genConfig struct {
	Temperature     float64        `json:"temperature"`
	MaxOutputTokens int            `json:"maxOutputTokens"`
	ThinkingConfig  thinkingConfig `json:"thinkingConfig"`
}

type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type genResponse struct {
	Candidates []struct {
		Content struct {
			Parts []respPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type respPart struct {
	Text    string `json:"text"`
	Thought bool   `json:"thought"`
}

// generate performs one generateContent call and returns the non-thought
// text parts of the first candidate.
func (c *Client) generate(ctx context.Context, parts []part, cfg genConfig, timeout time.Duration) ([]string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var out genResponse
	resp, err := c.http.R().
		SetContext(callCtx).
		SetQueryParam("key", c.cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(genRequest{
			Contents:         []genContent{{Parts: parts}},
			GenerationConfig: cfg,
		}).
		SetResult(&out).
		Post(url)
	if err != nil {
		return nil, fmt.Errorf("generateContent request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("generateContent returned HTTP %d", resp.StatusCode())
	}
	if len(out.Candidates) == 0 {
		return nil, fmt.Errorf("generateContent returned no candidates")
	}

	var texts []string
	for _, p := range out.Candidates[0].Content.Parts {
		if p.Thought {
			continue
		}
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return texts, nil
}
