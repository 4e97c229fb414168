package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AnthropicConfig configures the Anthropic Messages API provider.
type AnthropicConfig struct {
	BaseURL string // e.g. "https://api.anthropic.com" or mock URL
	APIKey  string
	Model   string // default: "claude-haiku-4-5-20251001"
	Timeout time.Duration
}

// Anthropic calls the Messages API directly over HTTP.
type Anthropic struct {
	cfg    AnthropicConfig
	client *http.Client
}

// NewAnthropic creates an Anthropic provider.
func NewAnthropic(cfg AnthropicConfig) *Anthropic {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-haiku-4-5-20251001"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Anthropic{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// toAnthropicMessages converts chat turns. The Messages API has no JSON
// mode, so JSONObject is honored by priming the assistant turn with "{".
func toAnthropicMessages(req ChatRequest) ([]anthropicMessage, bool) {
	msgs := make([]anthropicMessage, 0, len(req.Messages)+1)
	for _, m := range req.Messages {
		role := string(RoleUser)
		if m.Role == RoleAssistant {
			role = string(RoleAssistant)
		}
		msgs = append(msgs, anthropicMessage{Role: role, Content: m.Content})
	}
	primed := false
	if req.JSONObject && (len(msgs) == 0 || msgs[len(msgs)-1].Role != string(RoleAssistant)) {
		msgs = append(msgs, anthropicMessage{Role: string(RoleAssistant), Content: "{"})
		primed = true
	}
	return msgs, primed
}

func (a *Anthropic) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = a.cfg.Model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}
	msgs, primed := toAnthropicMessages(req)

	reqBody, err := json.Marshal(anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		System:      req.System,
		Messages:    msgs,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling anthropic request: %w", err)
	}

	url := a.cfg.BaseURL + "/v1/messages"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("building anthropic request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anthropic returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading anthropic response: %w", err)
	}

	var envelope anthropicResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parsing anthropic response: %w", err)
	}

	var text strings.Builder
	for _, block := range envelope.Content {
		if block.Type == "" || block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	content := text.String()
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyCompletion
	}
	if primed && !strings.HasPrefix(strings.TrimSpace(content), "{") {
		content = "{" + content
	}

	return &ChatResponse{
		Content:      content,
		Model:        envelope.Model,
		FinishReason: envelope.StopReason,
	}, nil
}
