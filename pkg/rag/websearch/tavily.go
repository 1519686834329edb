package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"doc-qna-be/pkg/rag"
)

const defaultEndpoint = "https://api.tavily.com/search"

// TavilyClient fetches web results when the vector index comes up
// short. Unlike retrieval, failures here propagate: web search is the
// last fallback, so a broken call must fail the request loudly.
type TavilyClient struct {
	Endpoint   string
	APIKey     string
	MaxResults int
	Client     *http.Client
	logger     *log.Logger
}

func NewTavilyClient(apiKey string, maxResults int, logger *log.Logger) *TavilyClient {
	if maxResults < 1 {
		maxResults = 2
	}
	return &TavilyClient{
		Endpoint:   defaultEndpoint,
		APIKey:     apiKey,
		MaxResults: maxResults,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search returns web results as documents with the source URL in
// metadata. A blank query is a caller bug and raises ErrInvalidQuery;
// results missing a URL or content are silently dropped.
func (c *TavilyClient) Search(ctx context.Context, query string) ([]rag.Document, error) {
	if strings.TrimSpace(query) == "" {
		return nil, rag.ErrInvalidQuery
	}

	payloadBytes, err := json.Marshal(tavilyRequest{
		APIKey:     c.APIKey,
		Query:      query,
		MaxResults: c.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", rag.ErrWebSearchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.Endpoint, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", rag.ErrWebSearchFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rag.ErrWebSearchFailed, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", rag.ErrWebSearchFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d, body: %s", rag.ErrWebSearchFailed, resp.StatusCode, string(bodyBytes))
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", rag.ErrWebSearchFailed, err)
	}

	docs := make([]rag.Document, 0, len(parsed.Results))
	for _, result := range parsed.Results {
		if result.URL == "" || result.Content == "" {
			continue
		}
		docs = append(docs, rag.Document{
			Content: result.Content,
			Metadata: map[string]interface{}{
				"url":   result.URL,
				"title": result.Title,
			},
		})
	}

	c.logger.Printf("[WEBSEARCH] query=%q -> %d documents", query, len(docs))
	return docs, nil
}
