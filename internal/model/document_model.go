package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document ingestion statuses.
const (
	DocumentStatusPending   = "PENDING"
	DocumentStatusEmbedding = "EMBEDDING"
	DocumentStatusReady     = "READY"
	DocumentStatusFailed    = "FAILED"
)

type Document struct {
	Id         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FileName   string            `gorm:"type:varchar(512)"`
	Content    string            `gorm:"type:text"`
	Namespace  string            `gorm:"type:varchar(255);not null;index"`
	Status     string            `gorm:"type:varchar(32);not null;default:'PENDING'"`
	ChunkCount int               `gorm:"default:0"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt    `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
