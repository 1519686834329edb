package retrieval

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"doc-qna-be/pkg/embedding"
	"doc-qna-be/pkg/rag"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2}},
	}, nil
}

type fakeIndex struct {
	docs          []rag.ScoredDocument
	err           error
	gotNamespace  string
	gotTopK       int
}

func (f *fakeIndex) SimilaritySearch(ctx context.Context, vector []float32, namespace string, topK int) ([]rag.ScoredDocument, error) {
	f.gotNamespace = namespace
	f.gotTopK = topK
	return f.docs, f.err
}

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRetrieveReturnsScoredDocuments(t *testing.T) {
	index := &fakeIndex{docs: []rag.ScoredDocument{
		{Document: rag.Document{Content: "a"}, Score: 0.9},
		{Document: rag.Document{Content: "b"}, Score: 0.2},
	}}
	r := NewRetriever(&fakeEmbedder{}, index, 10, "default_dev", discard())

	docs := r.Retrieve(context.Background(), "query", "tenant-a")

	// Raw top-K comes back unfiltered; score filtering is the caller's job.
	assert.Len(t, docs, 2)
	assert.Equal(t, "tenant-a", index.gotNamespace)
	assert.Equal(t, 10, index.gotTopK)
}

func TestRetrieveSubstitutesDefaultNamespace(t *testing.T) {
	index := &fakeIndex{}
	r := NewRetriever(&fakeEmbedder{}, index, 5, "default_dev", discard())

	r.Retrieve(context.Background(), "query", "")

	assert.Equal(t, "default_dev", index.gotNamespace)
}

func TestRetrieveNeverRaises(t *testing.T) {
	t.Run("index failure", func(t *testing.T) {
		index := &fakeIndex{err: errors.New("index unavailable")}
		r := NewRetriever(&fakeEmbedder{}, index, 10, "default_dev", discard())

		docs := r.Retrieve(context.Background(), "query", "any")

		assert.Empty(t, docs)
	})

	t.Run("embedding failure", func(t *testing.T) {
		r := NewRetriever(&fakeEmbedder{err: errors.New("embed down")}, &fakeIndex{}, 10, "default_dev", discard())

		docs := r.Retrieve(context.Background(), "query", "any")

		assert.Empty(t, docs)
	})
}
