package mapper

import (
	"testing"
	"time"

	"doc-qna-be/internal/entity"
	"doc-qna-be/internal/model"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestDocumentMapperSoftDelete(t *testing.T) {
	m := NewDocumentMapper()
	deletedAt := time.Now()

	e := m.ToEntity(&model.Document{
		Id:        uuid.New(),
		FileName:  "report.pdf",
		Content:   "quarterly numbers",
		Namespace: "default_dev",
		Status:    model.DocumentStatusReady,
		Metadata:  datatypes.JSONMap{"source": "upload"},
		CreatedAt: time.Now(),
		DeletedAt: gorm.DeletedAt{Time: deletedAt, Valid: true},
	})

	require.NotNil(t, e)
	assert.True(t, e.IsDeleted)
	require.NotNil(t, e.DeletedAt)
	assert.Equal(t, deletedAt, *e.DeletedAt)
	assert.Equal(t, "upload", e.Metadata["source"])

	back := m.ToModel(e)
	assert.True(t, back.DeletedAt.Valid)
	assert.Equal(t, "report.pdf", back.FileName)
	assert.Equal(t, "quarterly numbers", back.Content)
}

func TestDocumentMapperNilSafe(t *testing.T) {
	m := NewDocumentMapper()
	assert.Nil(t, m.ToEntity(nil))
	assert.Nil(t, m.ToModel(nil))
}

func TestDocumentChunkMapperVectorConversion(t *testing.T) {
	m := NewDocumentChunkMapper()
	docId := uuid.New()

	e := &entity.DocumentChunk{
		Id:             uuid.New(),
		Content:        "chunk body",
		EmbeddingValue: []float32{0.1, 0.2, 0.3},
		DocumentId:     docId,
		Namespace:      "default_dev",
		ChunkIndex:     2,
		CreatedAt:      time.Now(),
	}

	row := m.ToModel(e)
	assert.Equal(t, pgvector.NewVector([]float32{0.1, 0.2, 0.3}), row.EmbeddingValue)
	assert.Equal(t, docId, row.DocumentId)

	round := m.ToEntity(row)
	assert.Equal(t, e.EmbeddingValue, round.EmbeddingValue)
	assert.Equal(t, 2, round.ChunkIndex)
}

func TestDocumentChunkMapperBulk(t *testing.T) {
	m := NewDocumentChunkMapper()

	entities := []*entity.DocumentChunk{
		{Id: uuid.New(), Content: "a", EmbeddingValue: []float32{1}, ChunkIndex: 0},
		{Id: uuid.New(), Content: "b", EmbeddingValue: []float32{2}, ChunkIndex: 1},
	}

	rows := m.ToModels(entities)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[1].Content)

	back := m.ToEntities(rows)
	require.Len(t, back, 2)
	assert.Equal(t, entities[0].Id, back[0].Id)
}
