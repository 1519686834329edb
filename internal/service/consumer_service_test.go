package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"doc-qna-be/internal/config"
	"doc-qna-be/internal/dto"
	"doc-qna-be/internal/entity"
	"doc-qna-be/internal/model"
	"doc-qna-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbeddingProvider struct {
	calls int
	err   error
}

func (p *fakeEmbeddingProvider) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{
			Values: []float32{0.1, 0.2, 0.3},
		},
	}, nil
}

func consumerConfig() *config.Config {
	cfg := testConfig()
	cfg.Ingest.ChunkSize = 1000
	cfg.Ingest.ChunkOverlap = 200
	return cfg
}

func embedMessage(t *testing.T, documentId uuid.UUID) *message.Message {
	t.Helper()
	payload, err := json.Marshal(dto.PublishEmbedDocumentMessage{DocumentId: documentId})
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func isAcked(msg *message.Message) bool {
	select {
	case <-msg.Acked():
		return true
	default:
		return false
	}
}

func isNacked(msg *message.Message) bool {
	select {
	case <-msg.Nacked():
		return true
	default:
		return false
	}
}

func TestProcessMessageEmbedsAndStoresChunks(t *testing.T) {
	store := newFakeStore()
	docId := uuid.New()
	store.documents[docId] = &entity.Document{
		Id:        docId,
		FileName:  "handbook.md",
		Content:   "employees get 25 vacation days",
		Namespace: "default_dev",
		Status:    model.DocumentStatusPending,
	}
	provider := &fakeEmbeddingProvider{}

	cs := &consumerService{
		cfg:               consumerConfig(),
		uowFactory:        &fakeUowFactory{store: store},
		embeddingProvider: provider,
	}

	msg := embedMessage(t, docId)
	cs.processMessage(context.Background(), msg)

	assert.True(t, isAcked(msg))
	assert.Equal(t, model.DocumentStatusReady, store.documents[docId].Status)

	require.NotEmpty(t, store.chunks)
	assert.Equal(t, len(store.chunks), provider.calls)
	assert.Equal(t, len(store.chunks), store.documents[docId].ChunkCount)
	for _, chunk := range store.chunks {
		assert.Equal(t, docId, chunk.DocumentId)
		assert.Equal(t, "default_dev", chunk.Namespace)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, chunk.EmbeddingValue)
	}
}

func TestProcessMessageReplacesOldChunks(t *testing.T) {
	store := newFakeStore()
	docId := uuid.New()
	store.documents[docId] = &entity.Document{
		Id:        docId,
		FileName:  "handbook.md",
		Content:   "fresh content",
		Namespace: "default_dev",
	}
	staleId := uuid.New()
	store.chunks[staleId] = &entity.DocumentChunk{Id: staleId, DocumentId: docId, Content: "stale"}

	cs := &consumerService{
		cfg:               consumerConfig(),
		uowFactory:        &fakeUowFactory{store: store},
		embeddingProvider: &fakeEmbeddingProvider{},
	}

	msg := embedMessage(t, docId)
	cs.processMessage(context.Background(), msg)

	assert.True(t, isAcked(msg))
	_, found := store.chunks[staleId]
	assert.False(t, found, "re-ingest replaces chunks wholesale")
}

func TestProcessMessageEmbeddingFailureMarksFailed(t *testing.T) {
	store := newFakeStore()
	docId := uuid.New()
	store.documents[docId] = &entity.Document{
		Id:       docId,
		FileName: "broken.md",
		Content:  "body",
	}
	provider := &fakeEmbeddingProvider{err: errors.New("provider down")}

	cs := &consumerService{
		cfg:               consumerConfig(),
		uowFactory:        &fakeUowFactory{store: store},
		embeddingProvider: provider,
	}

	msg := embedMessage(t, docId)
	cs.processMessage(context.Background(), msg)

	assert.True(t, isNacked(msg))
	assert.Equal(t, model.DocumentStatusFailed, store.documents[docId].Status)
	assert.Empty(t, store.chunks)
	assert.Equal(t, 3, provider.calls, "embedding is retried before giving up")
}

func TestProcessMessageInvalidPayloadIsAcked(t *testing.T) {
	cs := &consumerService{
		cfg:        consumerConfig(),
		uowFactory: &fakeUowFactory{store: newFakeStore()},
	}

	msg := message.NewMessage(watermill.NewUUID(), []byte("not json"))
	cs.processMessage(context.Background(), msg)

	assert.True(t, isAcked(msg), "malformed messages are not redelivered")
}

func TestProcessMessageMissingDocumentIsAcked(t *testing.T) {
	cs := &consumerService{
		cfg:        consumerConfig(),
		uowFactory: &fakeUowFactory{store: newFakeStore()},
	}

	msg := embedMessage(t, uuid.New())
	cs.processMessage(context.Background(), msg)

	assert.True(t, isAcked(msg), "deleted documents are dropped, not retried")
}
