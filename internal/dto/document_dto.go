package dto

import (
	"time"

	"github.com/google/uuid"
)

type IngestDocumentRequest struct {
	FileName  string                 `json:"file_name" validate:"required"`
	Content   string                 `json:"content" validate:"required"`
	Namespace string                 `json:"namespace"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type IngestDocumentResponse struct {
	Id        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	Namespace string    `json:"namespace"`
}

type DocumentStatusResponse struct {
	Id         uuid.UUID  `json:"id"`
	FileName   string     `json:"file_name"`
	Namespace  string     `json:"namespace"`
	Status     string     `json:"status"`
	ChunkCount int        `json:"chunk_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

// PublishEmbedDocumentMessage is the payload handed to the embedding consumer.
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}

type ListDocumentsResponse struct {
	Documents []DocumentStatusResponse `json:"documents"`
	Total     int64                    `json:"total"`
}
