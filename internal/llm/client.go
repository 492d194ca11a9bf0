// Package llm provides inference client interfaces and implementations.
package llm

import (
	"context"
	"fmt"
)

// ChatMessage represents one role-tagged turn of prompt context.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest represents one inference request. ImageBase64, when
// set, is attached to the user turn as an inline JPEG.
type CompletionRequest struct {
	System      string
	History     []ChatMessage
	UserText    string
	ImageBase64 string
}

// CompletionResponse represents an inference response.
type CompletionResponse struct {
	Content   string
	Model     string
	LatencyMs int64
}

// Client is the interface for inference providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string
}

// RequestError is a typed failure from the inference endpoint. The body
// excerpt is capped so it can be interpolated into a user-visible error
// message without flooding the chat.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("inference endpoint returned HTTP %d: %s", e.Status, e.Body)
}

// Provider is the type of inference provider.
type Provider string

const (
	ProviderVertex    Provider = "vertex"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)
