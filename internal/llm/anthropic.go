package llm

import (
	"context"
	"errors"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient is an alternate inference provider behind the shared
// Client interface.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates a new Anthropic-backed client.
func NewAnthropicClient(apiKey, model string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}

	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Name returns the provider name.
func (c *AnthropicClient) Name() string {
	return string(ProviderAnthropic)
}

// Complete sends a completion request.
func (c *AnthropicClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	messages := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, m := range req.History {
		messages = append(messages, anthropic.MessageParam{
			Role: anthropic.F(anthropic.MessageParamRole(m.Role)),
			Content: anthropic.F([]anthropic.ContentBlockParamUnion{
				anthropic.TextBlockParam{
					Type: anthropic.F(anthropic.TextBlockParamTypeText),
					Text: anthropic.F(m.Content),
				},
			}),
		})
	}
	messages = append(messages, c.userMessage(req))

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(c.model),
		MaxTokens: anthropic.F(int64(4096)),
		System: anthropic.F([]anthropic.TextBlockParam{{
			Type: anthropic.F(anthropic.TextBlockParamTypeText),
			Text: anthropic.F(req.System),
		}}),
		Messages: anthropic.F(messages),
	})
	if err != nil {
		return nil, err
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			content += block.Text
		}
	}

	return &CompletionResponse{
		Content:   content,
		Model:     resp.Model,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (c *AnthropicClient) userMessage(req *CompletionRequest) anthropic.MessageParam {
	blocks := []anthropic.ContentBlockParamUnion{}
	if req.ImageBase64 != "" {
		blocks = append(blocks, anthropic.ImageBlockParam{
			Type: anthropic.F(anthropic.ImageBlockParamTypeImage),
			Source: anthropic.F(anthropic.ImageBlockParamSource{
				Type:      anthropic.F(anthropic.ImageBlockParamSourceTypeBase64),
				MediaType: anthropic.F(anthropic.ImageBlockParamSourceMediaTypeImageJPEG),
				Data:      anthropic.F(req.ImageBase64),
			}),
		})
	}
	blocks = append(blocks, anthropic.TextBlockParam{
		Type: anthropic.F(anthropic.TextBlockParamTypeText),
		Text: anthropic.F(req.UserText),
	})

	return anthropic.MessageParam{
		Role:    anthropic.F(anthropic.MessageParamRoleUser),
		Content: anthropic.F(blocks),
	}
}
