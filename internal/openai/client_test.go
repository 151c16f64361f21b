package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteWithoutKey(t *testing.T) {
	t.Parallel()

	client := New("", "", 0)
	_, err := client.Complete(context.Background(), "system", "remind me")
	assert.ErrorIs(t, err, ErrClientNotInitialised)
	assert.Equal(t, "openai", client.Name())
}

func TestCompleteRejectsEmptyContent(t *testing.T) {
	t.Parallel()

	client := New("sk-test", "", 0)
	_, err := client.Complete(context.Background(), "system", "   ")
	assert.Error(t, err)
}

func TestCompleteReturnsMessageContent(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "  {\"intent\":\"unknown\"}  "}
			}]
		}`))
	}))
	t.Cleanup(server.Close)

	client := New("sk-test", "gpt-4o-mini", 150, option.WithBaseURL(server.URL), option.WithMaxRetries(0))
	content, err := client.Complete(context.Background(), "be terse", "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"intent":"unknown"}`, content)

	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestCompleteSurfacesAPIErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
	}))
	t.Cleanup(server.Close)

	client := New("sk-test", "", 0, option.WithBaseURL(server.URL), option.WithMaxRetries(0))
	_, err := client.Complete(context.Background(), "system", "hello")
	assert.Error(t, err)
}
