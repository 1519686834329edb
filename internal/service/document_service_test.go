package service

import (
	"context"
	"encoding/json"
	"testing"

	"doc-qna-be/internal/config"
	"doc-qna-be/internal/dto"
	"doc-qna-be/internal/entity"
	"doc-qna-be/internal/model"
	"doc-qna-be/internal/repository/contract"
	"doc-qna-be/internal/repository/specification"
	"doc-qna-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory unit of work; both repositories share the store so delete
// flows can be asserted across them.

type fakeStore struct {
	documents map[uuid.UUID]*entity.Document
	chunks    map[uuid.UUID]*entity.DocumentChunk
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		documents: make(map[uuid.UUID]*entity.Document),
		chunks:    make(map[uuid.UUID]*entity.DocumentChunk),
	}
}

type fakeUowFactory struct {
	store *fakeStore
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeUow struct {
	store *fakeStore
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) DocumentRepository() contract.DocumentRepository {
	return &fakeDocumentRepo{store: u.store}
}

func (u *fakeUow) DocumentChunkRepository() contract.DocumentChunkRepository {
	return &fakeChunkRepo{store: u.store}
}

type fakeDocumentRepo struct {
	store *fakeStore
}

func (r *fakeDocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	r.store.documents[d.Id] = d
	return nil
}

func (r *fakeDocumentRepo) Update(ctx context.Context, d *entity.Document) error {
	r.store.documents[d.Id] = d
	return nil
}

func (r *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.store.documents, id)
	return nil
}

func (r *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			if d, found := r.store.documents[byID.ID]; found {
				return d, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	var namespace string
	for _, spec := range specs {
		if byNs, ok := spec.(specification.ByNamespace); ok {
			namespace = byNs.Namespace
		}
	}
	var out []*entity.Document
	for _, d := range r.store.documents {
		if namespace == "" || d.Namespace == namespace {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	docs, _ := r.FindAll(ctx, specs...)
	return int64(len(docs)), nil
}

func (r *fakeDocumentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, chunkCount int) error {
	if d, found := r.store.documents[id]; found {
		d.Status = status
		if chunkCount > 0 {
			d.ChunkCount = chunkCount
		}
	}
	return nil
}

type fakeChunkRepo struct {
	store *fakeStore
}

func (r *fakeChunkRepo) Create(ctx context.Context, c *entity.DocumentChunk) error {
	r.store.chunks[c.Id] = c
	return nil
}

func (r *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	for _, c := range chunks {
		r.store.chunks[c.Id] = c
	}
	return nil
}

func (r *fakeChunkRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.store.chunks, id)
	return nil
}

func (r *fakeChunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	for id, c := range r.store.chunks {
		if c.DocumentId == documentId {
			delete(r.store.chunks, id)
		}
	}
	return nil
}

func (r *fakeChunkRepo) DeleteByNamespaceUnscoped(ctx context.Context, namespace string) error {
	for id, c := range r.store.chunks {
		if c.Namespace == namespace {
			delete(r.store.chunks, id)
		}
	}
	return nil
}

func (r *fakeChunkRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error) {
	return nil, nil
}

func (r *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	var out []*entity.DocumentChunk
	for _, c := range r.store.chunks {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.store.chunks)), nil
}

func (r *fakeChunkRepo) SearchSimilar(ctx context.Context, embedding []float32, namespace string, limit int) ([]*contract.ScoredDocumentChunk, error) {
	return nil, nil
}

type fakePublisher struct {
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Rag: config.RagConfig{
			DefaultNamespace: "default_dev",
		},
	}
}

func TestIngestPersistsAndQueues(t *testing.T) {
	store := newFakeStore()
	publisher := &fakePublisher{}
	svc := NewDocumentService(testConfig(), &fakeUowFactory{store: store}, publisher, nil)

	res, err := svc.Ingest(context.Background(), &dto.IngestDocumentRequest{
		FileName: "handbook.md",
		Content:  "employees get 25 vacation days",
	})
	require.NoError(t, err)

	assert.Equal(t, model.DocumentStatusPending, res.Status)
	assert.Equal(t, "default_dev", res.Namespace)

	stored, found := store.documents[res.Id]
	require.True(t, found)
	assert.Equal(t, "employees get 25 vacation days", stored.Content)

	require.Len(t, publisher.payloads, 1)
	var msg dto.PublishEmbedDocumentMessage
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &msg))
	assert.Equal(t, res.Id, msg.DocumentId)
}

func TestIngestKeepsExplicitNamespace(t *testing.T) {
	store := newFakeStore()
	svc := NewDocumentService(testConfig(), &fakeUowFactory{store: store}, &fakePublisher{}, nil)

	res, err := svc.Ingest(context.Background(), &dto.IngestDocumentRequest{
		FileName:  "a.md",
		Content:   "body",
		Namespace: "team_a",
	})
	require.NoError(t, err)
	assert.Equal(t, "team_a", res.Namespace)
}

func TestStatusOfUnknownDocument(t *testing.T) {
	svc := NewDocumentService(testConfig(), &fakeUowFactory{store: newFakeStore()}, &fakePublisher{}, nil)

	res, err := svc.Status(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestDeleteRemovesDocumentAndChunks(t *testing.T) {
	store := newFakeStore()
	docId := uuid.New()
	store.documents[docId] = &entity.Document{Id: docId, Namespace: "default_dev"}
	chunkId := uuid.New()
	store.chunks[chunkId] = &entity.DocumentChunk{Id: chunkId, DocumentId: docId, Namespace: "default_dev"}
	otherChunk := uuid.New()
	store.chunks[otherChunk] = &entity.DocumentChunk{Id: otherChunk, DocumentId: uuid.New(), Namespace: "default_dev"}

	svc := NewDocumentService(testConfig(), &fakeUowFactory{store: store}, &fakePublisher{}, nil)

	require.NoError(t, svc.Delete(context.Background(), docId))

	_, found := store.documents[docId]
	assert.False(t, found)
	_, found = store.chunks[chunkId]
	assert.False(t, found)
	_, found = store.chunks[otherChunk]
	assert.True(t, found, "chunks of other documents stay")
}

func TestPurgeNamespaceDropsPartition(t *testing.T) {
	store := newFakeStore()
	docA := uuid.New()
	store.documents[docA] = &entity.Document{Id: docA, Namespace: "team_a"}
	docB := uuid.New()
	store.documents[docB] = &entity.Document{Id: docB, Namespace: "team_b"}
	chunkA := uuid.New()
	store.chunks[chunkA] = &entity.DocumentChunk{Id: chunkA, DocumentId: docA, Namespace: "team_a"}

	svc := NewDocumentService(testConfig(), &fakeUowFactory{store: store}, &fakePublisher{}, nil)

	require.NoError(t, svc.PurgeNamespace(context.Background(), "team_a"))

	assert.NotContains(t, store.documents, docA)
	assert.Contains(t, store.documents, docB)
	assert.Empty(t, store.chunks)
}
