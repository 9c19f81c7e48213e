package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/100xA/deviceagent/llm"
	_ "github.com/100xA/deviceagent/llm/providers"
)

// completionBody builds an OpenAI-compatible completion response.
func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"model": "test-model",
		"choices": []map[string]any{
			{
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	})
	require.NoError(t, err)
	return body
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *llm.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return llm.NewClient(
		llm.Endpoint{Provider: "ollama", URL: srv.URL, Model: "test-model"},
		llm.WithRetryConfig(llm.RetryConfig{
			MaxAttempts:       2,
			BackoffBase:       time.Millisecond,
			BackoffMultiplier: 2.0,
			MaxBackoff:        5 * time.Millisecond,
		}),
	)
}

func userRequest(content string) llm.Request {
	return llm.Request{Messages: []llm.Message{{Role: "user", Content: content}}}
}

func TestCompleteSuccess(t *testing.T) {
	var requests atomic.Int64
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Write(completionBody(t, "hello"))
	})

	resp, err := client.Complete(context.Background(), userRequest("hi"))
	require.NoError(t, err)

	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, "test-model", resp.Model)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, int64(1), requests.Load())
}

func TestCompleteRetriesServerError(t *testing.T) {
	var requests atomic.Int64
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if requests.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusInternalServerError)
			return
		}
		w.Write(completionBody(t, "recovered"))
	})

	resp, err := client.Complete(context.Background(), userRequest("hi"))
	require.NoError(t, err)

	assert.Equal(t, "recovered", resp.Content)
	assert.Equal(t, int64(2), requests.Load())
}

func TestCompleteRetriesRateLimit(t *testing.T) {
	var requests atomic.Int64
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if requests.Add(1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write(completionBody(t, "ok"))
	})

	_, err := client.Complete(context.Background(), userRequest("hi"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), requests.Load())
}

func TestCompleteDoesNotRetryBadRequest(t *testing.T) {
	var requests atomic.Int64
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	_, err := client.Complete(context.Background(), userRequest("hi"))
	require.Error(t, err)

	assert.True(t, llm.IsFatal(err))
	assert.Equal(t, int64(1), requests.Load())
}

func TestCompleteExhaustsRetries(t *testing.T) {
	var requests atomic.Int64
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	_, err := client.Complete(context.Background(), userRequest("hi"))
	require.Error(t, err)

	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, int64(2), requests.Load())
}

func TestCompleteRequiresMessages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write(completionBody(t, "unused"))
	})

	_, err := client.Complete(context.Background(), llm.Request{})
	assert.Error(t, err)
}

func TestCompleteUnknownProvider(t *testing.T) {
	client := llm.NewClient(llm.Endpoint{Provider: "does-not-exist", URL: "http://localhost:1", Model: "m"})

	_, err := client.Complete(context.Background(), userRequest("hi"))
	require.Error(t, err)
	assert.True(t, llm.IsFatal(err))
}

func TestGenerateText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write(completionBody(t, "A short haiku"))
	})

	out, err := client.GenerateText(context.Background(), "write a haiku", 256)
	require.NoError(t, err)
	assert.Equal(t, "A short haiku", out)
}

func TestErrorClassification(t *testing.T) {
	transient := llm.NewTransientError(assert.AnError)
	fatal := llm.NewFatalError(assert.AnError)

	assert.True(t, llm.IsTransient(transient))
	assert.False(t, llm.IsFatal(transient))
	assert.True(t, llm.IsFatal(fatal))
	assert.False(t, llm.IsTransient(fatal))
}
