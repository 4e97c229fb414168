package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatCompletionBody(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "openai/gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	}
}

func TestOpenRouter_SendsJSONModeRequest(t *testing.T) {
	var got map[string]any
	mockAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer or-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletionBody(`{"isValid":true}`))
	}))
	defer mockAPI.Close()

	p, err := NewOpenRouter(OpenRouterConfig{BaseURL: mockAPI.URL, APIKey: "or-key", Model: "openai/gpt-4o-mini"})
	require.NoError(t, err)

	resp, err := p.ChatCompletion(context.Background(), ChatRequest{
		System:      "rubric",
		Messages:    []Message{{Role: RoleUser, Content: "input"}},
		Temperature: 0.1,
		MaxTokens:   300,
		JSONObject:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"isValid":true}`, resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)

	assert.Equal(t, "openai/gpt-4o-mini", got["model"])
	assert.Equal(t, 0.1, got["temperature"])
	assert.Equal(t, float64(300), got["max_tokens"])
	format, ok := got["response_format"].(map[string]any)
	require.True(t, ok, "response_format missing")
	assert.Equal(t, "json_object", format["type"])

	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestOpenRouter_EmptyChoices(t *testing.T) {
	mockAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletionBody("   "))
	}))
	defer mockAPI.Close()

	p, err := NewOpenRouter(OpenRouterConfig{BaseURL: mockAPI.URL, APIKey: "or-key"})
	require.NoError(t, err)

	_, err = p.ChatCompletion(context.Background(), ChatRequest{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestOpenRouter_ServerErrorIsError(t *testing.T) {
	mockAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer mockAPI.Close()

	p, err := NewOpenRouter(OpenRouterConfig{BaseURL: mockAPI.URL, APIKey: "or-key", MaxRetries: 0})
	require.NoError(t, err)

	_, err = p.ChatCompletion(context.Background(), ChatRequest{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	require.Error(t, err)
}

func TestNewOpenRouter_RequiresKey(t *testing.T) {
	_, err := NewOpenRouter(OpenRouterConfig{})
	require.Error(t, err)
}
