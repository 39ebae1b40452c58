package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLM_Validation(t *testing.T) {
	_, err := NewLLM(LLMOptions{Provider: "openai"})
	require.Error(t, err)

	_, err = NewLLM(LLMOptions{Provider: "gemini", APIKey: "k"})
	require.ErrorIs(t, err, ErrUnknownProvider)

	l, err := NewLLM(LLMOptions{Provider: "Anthropic", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &claude{}, l)
}

func TestOpenAIComplete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "gpt-4o",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "  {\"brandColor\":\"#000000\"}\n"}}]
		}`))
	}))
	defer srv.Close()

	l, err := NewLLM(LLMOptions{Provider: ProviderOpenAI, APIKey: "sk-test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	out, err := l.Complete(context.Background(), Prompt{System: "sys", User: "usr", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"brandColor":"#000000"}`, out)

	assert.Equal(t, "gpt-4o", body["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestAnthropicComplete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak-test", r.Header.Get("X-Api-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-sonnet-4-0",
			"content": [{"type": "text", "text": "\n<html>ok</html>\n"}],
			"stop_reason": "end_turn", "usage": {"input_tokens": 3, "output_tokens": 2}
		}`))
	}))
	defer srv.Close()

	l, err := NewLLM(LLMOptions{Provider: ProviderAnthropic, APIKey: "ak-test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	out, err := l.Complete(context.Background(), Prompt{System: "sys", User: "usr", MaxTokens: 4096})
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", out)

	assert.Equal(t, DefaultAnthropicModel, body["model"])
	assert.EqualValues(t, 4096, body["max_tokens"])
	system := body["system"].([]any)
	assert.Equal(t, "sys", system[0].(map[string]any)["text"])
}
