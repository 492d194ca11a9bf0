package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sinoai/medassist-bot/pkg/logger"
)

// noResponseText is returned when the endpoint answers 200 but the
// payload carries no usable prediction.
const noResponseText = "Sorry, I couldn't generate a response."

// thinkingMarker separates the model's internal reasoning from the
// answer; everything before it is discarded.
const thinkingMarker = "<unused95>"

// maxErrorBody caps how much of an upstream error body is kept on the
// typed error.
const maxErrorBody = 200

// VertexConfig holds settings for the dedicated Vertex AI endpoint.
type VertexConfig struct {
	ProjectID   string
	Location    string
	EndpointID  string
	EndpointDNS string

	// AccessToken is a static bearer token; TokenFile, when set, is
	// re-read on every request so a sidecar can rotate it.
	AccessToken string
	TokenFile   string

	Timeout time.Duration

	// BaseURL overrides the derived predict URL. Used in tests.
	BaseURL string
}

// VertexClient calls a dedicated Vertex AI endpoint using the
// chat-completions request format.
type VertexClient struct {
	http   *resty.Client
	url    string
	cfg    VertexConfig
	logger *logger.Logger
}

// NewVertexClient creates a client for the dedicated endpoint.
func NewVertexClient(cfg VertexConfig, log *logger.Logger) *VertexClient {
	url := cfg.BaseURL
	if url == "" {
		url = fmt.Sprintf("https://%s/v1/projects/%s/locations/%s/endpoints/%s:predict",
			cfg.EndpointDNS, cfg.ProjectID, cfg.Location, cfg.EndpointID)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &VertexClient{
		http:   resty.New().SetTimeout(timeout),
		url:    url,
		cfg:    cfg,
		logger: log,
	}
}

// Name returns the provider name.
func (c *VertexClient) Name() string {
	return string(ProviderVertex)
}

type vertexPayload struct {
	Instances []vertexInstance `json:"instances"`
}

type vertexInstance struct {
	RequestFormat string          `json:"@requestFormat"`
	Messages      []vertexMessage `json:"messages"`
}

type vertexMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// Complete sends a completion request to the predict endpoint.
func (c *VertexClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	token, err := c.accessToken()
	if err != nil {
		return nil, fmt.Errorf("resolve access token: %w", err)
	}

	messages := make([]vertexMessage, 0, len(req.History)+2)
	messages = append(messages, vertexMessage{Role: "system", Content: req.System})
	for _, m := range req.History {
		messages = append(messages, vertexMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, vertexMessage{Role: "user", Content: userContent(req)})

	payload := vertexPayload{
		Instances: []vertexInstance{{
			RequestFormat: "chatCompletions",
			Messages:      messages,
		}},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(c.url)
	if err != nil {
		return nil, fmt.Errorf("predict request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		return nil, &RequestError{
			Status: resp.StatusCode(),
			Body:   truncate(string(resp.Body()), maxErrorBody),
		}
	}

	content := parsePrediction(resp.Body())

	return &CompletionResponse{
		Content:   content,
		Model:     c.cfg.EndpointID,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

// userContent builds the final user turn: plain text, or an image part
// plus a text part when an image accompanies the request.
func userContent(req *CompletionRequest) any {
	if req.ImageBase64 == "" {
		return req.UserText
	}
	return []map[string]any{
		{
			"type": "image_url",
			"image_url": map[string]string{
				"url": "data:image/jpeg;base64," + req.ImageBase64,
			},
		},
		{
			"type": "text",
			"text": req.UserText,
		},
	}
}

// parsePrediction extracts the answer text from a predict response.
// Resolution order: predictions as a dict, or the first list element;
// then choices[0].message.content, then content, then text, then the
// stringified prediction.
func parsePrediction(body []byte) string {
	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return noResponseText
	}

	var prediction any
	switch preds := result["predictions"].(type) {
	case map[string]any:
		prediction = preds
	case []any:
		if len(preds) == 0 {
			return noResponseText
		}
		prediction = preds[0]
	default:
		return noResponseText
	}

	content, found := "", false
	if pm, ok := prediction.(map[string]any); ok {
		if v, ok := choicesContent(pm); ok {
			content, found = v, true
		}
		if !found {
			if v, ok := pm["content"].(string); ok {
				content, found = v, true
			}
		}
		if !found {
			if v, ok := pm["text"].(string); ok {
				content, found = v, true
			}
		}
	}
	if !found {
		content = fmt.Sprintf("%v", prediction)
	}

	if idx := strings.Index(content, thinkingMarker); idx >= 0 {
		content = strings.TrimSpace(content[idx+len(thinkingMarker):])
	}
	return content
}

func choicesContent(prediction map[string]any) (string, bool) {
	choices, ok := prediction["choices"].([]any)
	if !ok || len(choices) == 0 {
		return "", false
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return "", false
	}
	message, ok := choice["message"].(map[string]any)
	if !ok {
		return "", false
	}
	content, ok := message["content"].(string)
	return content, ok
}

func (c *VertexClient) accessToken() (string, error) {
	if c.cfg.TokenFile != "" {
		data, err := os.ReadFile(c.cfg.TokenFile)
		if err != nil {
			return "", fmt.Errorf("read token file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return c.cfg.AccessToken, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
