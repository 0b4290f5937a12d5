package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"support-chat/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiCompleter_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Contents, 1)
		require.Len(t, body.Contents[0].Parts, 1)
		assert.Equal(t, "what are the hours?", body.Contents[0].Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"parts": [{"text": "We are open 9 to 5.\n"}], "role": "model"}}],
			"usageMetadata": {"promptTokenCount": 20, "candidatesTokenCount": 6, "totalTokenCount": 26}
		}`))
	}))
	defer server.Close()

	completer := llm.NewGeminiCompleter("test-key", "", server.URL)

	completion, err := completer.Complete(context.Background(), "what are the hours?")
	require.NoError(t, err)
	assert.Equal(t, llm.Completion{Text: "We are open 9 to 5.\n", TokensUsed: 26}, completion)
}

func TestGeminiCompleter_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "API key not valid"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	completer := llm.NewGeminiCompleter("bad-key", "gemini-2.5-flash", server.URL)

	_, err := completer.Complete(context.Background(), "p")
	assert.Error(t, err)
}

func TestGeminiCompleter_MissingCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [], "promptFeedback": {"blockReason": "SAFETY"}}`))
	}))
	defer server.Close()

	completer := llm.NewGeminiCompleter("k", "gemini-2.5-flash", server.URL)

	_, err := completer.Complete(context.Background(), "p")
	assert.True(t, errors.Is(err, llm.ErrMalformedResponse))
}

func TestGeminiCompleter_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	completer := llm.NewGeminiCompleter("k", "gemini-2.5-flash", server.URL)

	_, err := completer.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, llm.ErrMalformedResponse)
}

func TestGeminiThroughGateway_ServerDownUsesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	gateway := llm.NewGateway(llm.NewGeminiCompleter("k", "", url), 0, fallback)

	reply, err := gateway.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, llm.Reply{Text: fallback, Fallback: true}, reply)
}
