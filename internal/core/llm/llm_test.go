package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
)

func newChatServer(t *testing.T, handle func(req openai.ChatCompletionRequest) (int, string)) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "http://localhost:3000", r.Header.Get(headerReferer))
		assert.Equal(t, "SentimentScope", r.Header.Get(headerTitle))

		var req openai.ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		status, content := handle(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)

		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"upstream failure","type":"server_error"}}`))
			return
		}

		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
		})
	}))
}

func newTestClient(url string) *Client {
	return New(Config{
		APIKey:       "test-key",
		BaseURL:      url,
		Referer:      "http://localhost:3000",
		AppTitle:     "SentimentScope",
		RateLimitRPS: 100,
		Timeout:      time.Second,
	}, nil)
}

func TestClient_Summarize(t *testing.T) {
	server := newChatServer(t, func(req openai.ChatCompletionRequest) (int, string) {
		if !assert.Len(t, req.Messages, 2) {
			return http.StatusOK, "x"
		}

		assert.Equal(t, DefaultModel, req.Model)
		assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
		assert.Contains(t, req.Messages[0].Content, "4-5 line summary")
		assert.True(t, strings.HasPrefix(req.Messages[1].Content, "Title: Trailer\nDescription: New film\n\nComments/Reviews:\n"))

		return http.StatusOK, "People love it. Overall sentiment: Positive."
	})
	defer server.Close()

	got, err := newTestClient(server.URL).Summarize(context.Background(), "Trailer", "New film", []string{"great", "loved it"})
	require.NoError(t, err)
	assert.Equal(t, "People love it. Overall sentiment: Positive.", got)
}

func TestBuildSummaryContent_LimitsTexts(t *testing.T) {
	texts := make([]string, 30)
	for i := range texts {
		texts[i] = "c"
	}

	got := buildSummaryContent("T", "D", texts)
	body := strings.TrimPrefix(got, "Title: T\nDescription: D\n\nComments/Reviews:\n")
	assert.Len(t, strings.Split(body, "\n"), maxSummaryTexts)
}

func TestClient_TranslateText(t *testing.T) {
	server := newChatServer(t, func(req openai.ChatCompletionRequest) (int, string) {
		if !assert.Len(t, req.Messages, 2) {
			return http.StatusOK, "x"
		}

		assert.Contains(t, req.Messages[0].Content, "to en")
		assert.Equal(t, "bonjour", req.Messages[1].Content)

		return http.StatusOK, "  hello \n"
	})
	defer server.Close()

	got, err := newTestClient(server.URL).TranslateText(context.Background(), "bonjour", "en")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestClient_EmptyResponse(t *testing.T) {
	server := newChatServer(t, func(openai.ChatCompletionRequest) (int, string) {
		return http.StatusOK, "   "
	})
	defer server.Close()

	_, err := newTestClient(server.URL).Summarize(context.Background(), "", "", nil)
	require.ErrorIs(t, err, apperrors.ErrEmptyResponse)
}

func TestClient_CircuitOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32

	server := newChatServer(t, func(openai.ChatCompletionRequest) (int, string) {
		hits.Add(1)
		return http.StatusBadRequest, ""
	})
	defer server.Close()

	client := newTestClient(server.URL)

	for i := 0; i < 5; i++ {
		_, err := client.TranslateText(context.Background(), "x", "en")
		require.Error(t, err)
	}

	_, err := client.TranslateText(context.Background(), "x", "en")
	require.ErrorIs(t, err, apperrors.ErrCircuitBreakerOpen)
	assert.Equal(t, int32(5), hits.Load())
}

func TestEmbedder_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)

		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultEmbeddingModel, req["model"])
		assert.InDelta(t, 3, req["dimensions"], 0)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}],"model":"text-embedding-3-small"}`))
	}))
	defer server.Close()

	embedder := NewEmbedder(EmbedderConfig{APIKey: "k", BaseURL: server.URL, Timeout: time.Second, Dimensions: 3}, nil)

	got, err := embedder.Embed(context.Background(), "great product")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got)
}

func TestEmbedder_RejectsWrongDimensions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotContains(t, req, "dimensions")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3,0.4]}],"model":"ada"}`))
	}))
	defer server.Close()

	embedder := NewEmbedder(EmbedderConfig{APIKey: "k", BaseURL: server.URL, Model: "text-embedding-ada-002", Timeout: time.Second}, nil)

	_, err := embedder.Embed(context.Background(), "great product")
	require.ErrorIs(t, err, apperrors.ErrUnexpectedShape)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel..."},
		{"привет", 2, "пр..."},
		{"", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.input, tt.max))
		})
	}
}
