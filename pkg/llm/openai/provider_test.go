package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"doc-qna-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, body *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
}

func TestChatSendsZeroTemperature(t *testing.T) {
	var body map[string]interface{}
	srv := chatServer(t, &body)
	defer srv.Close()

	p := NewOpenAIProvider("test-key", "gpt-4o")
	p.BaseURL = srv.URL

	answer, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, llm.WithTemperature(0))
	require.NoError(t, err)
	assert.Equal(t, "ok", answer)

	temp, present := body["temperature"]
	require.True(t, present, "temperature zero asks for determinism and must reach the API")
	assert.Equal(t, float64(0), temp)
}

func TestChatDefaultTemperature(t *testing.T) {
	var body map[string]interface{}
	srv := chatServer(t, &body)
	defer srv.Close()

	p := NewOpenAIProvider("test-key", "gpt-4o")
	p.BaseURL = srv.URL

	_, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, 0.7, body["temperature"])
}

func TestChatNormalizesRoleTags(t *testing.T) {
	var body map[string]interface{}
	srv := chatServer(t, &body)
	defer srv.Close()

	p := NewOpenAIProvider("test-key", "gpt-4o")
	p.BaseURL = srv.URL

	_, err := p.Chat(context.Background(), []llm.Message{
		{Role: "human", Content: "q"},
		{Role: "ai", Content: "a"},
	})
	require.NoError(t, err)

	msgs, ok := body["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].(map[string]interface{})["role"])
	assert.Equal(t, "assistant", msgs[1].(map[string]interface{})["role"])
}
