package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"doc-qna-be/internal/config"
	"doc-qna-be/internal/dto"
	"doc-qna-be/internal/entity"
	"doc-qna-be/internal/model"
	"doc-qna-be/internal/repository/specification"
	"doc-qna-be/internal/repository/unitofwork"
	"doc-qna-be/pkg/events"
	pktNats "doc-qna-be/pkg/nats"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
	Status(ctx context.Context, id uuid.UUID) (*dto.DocumentStatusResponse, error)
	List(ctx context.Context, namespace string) (*dto.ListDocumentsResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	PurgeNamespace(ctx context.Context, namespace string) error
}

type documentService struct {
	cfg              *config.Config
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
}

func NewDocumentService(
	cfg *config.Config,
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
) IDocumentService {
	return &documentService{
		cfg:              cfg,
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
	}
}

// Ingest persists the raw document and queues it for chunking and embedding.
// The response carries the PENDING status; embedding happens asynchronously.
func (s *documentService) Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	namespace := req.Namespace
	if namespace == "" {
		namespace = s.cfg.Rag.DefaultNamespace
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	document := entity.Document{
		Id:        uuid.New(),
		FileName:  req.FileName,
		Content:   req.Content,
		Namespace: namespace,
		Status:    model.DocumentStatusPending,
		Metadata:  req.Metadata,
		CreatedAt: time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}

	msgPayload := dto.PublishEmbedDocumentMessage{
		DocumentId: document.Id,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}

	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	// Notify watchers; ingestion itself already succeeded so a publish
	// failure here is logged, not surfaced.
	if s.eventPublisher != nil {
		evt := events.NewDocumentStatusEvent(
			events.EventDocumentIngested,
			document.Id.String(),
			namespace,
			map[string]interface{}{"file_name": document.FileName},
		)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish DOCUMENT_INGESTED event: %v\n", err)
		}
	}

	return &dto.IngestDocumentResponse{
		Id:        document.Id,
		Status:    document.Status,
		Namespace: namespace,
	}, nil
}

func (s *documentService) Status(ctx context.Context, id uuid.UUID) (*dto.DocumentStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, nil // Not found
	}

	return toDocumentStatusResponse(document), nil
}

func (s *documentService) List(ctx context.Context, namespace string) (*dto.ListDocumentsResponse, error) {
	if namespace == "" {
		namespace = s.cfg.Rag.DefaultNamespace
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	documents, err := uow.DocumentRepository().FindAll(ctx, specification.ByNamespace{Namespace: namespace})
	if err != nil {
		return nil, err
	}

	res := dto.ListDocumentsResponse{
		Documents: make([]dto.DocumentStatusResponse, 0, len(documents)),
		Total:     int64(len(documents)),
	}
	for _, document := range documents {
		res.Documents = append(res.Documents, *toDocumentStatusResponse(document))
	}
	return &res, nil
}

// Delete removes a document and all of its chunks in one transaction so the
// vector index never serves chunks of a deleted document.
func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if document == nil {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}

// PurgeNamespace drops an entire index partition. Chunks are removed
// permanently so the vectors do not linger behind soft deletes.
func (s *documentService) PurgeNamespace(ctx context.Context, namespace string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByNamespaceUnscoped(ctx, namespace); err != nil {
		return err
	}

	documents, err := uow.DocumentRepository().FindAll(ctx, specification.ByNamespace{Namespace: namespace})
	if err != nil {
		return err
	}
	for _, document := range documents {
		if err := uow.DocumentRepository().Delete(ctx, document.Id); err != nil {
			return err
		}
	}

	return uow.Commit()
}

func toDocumentStatusResponse(document *entity.Document) *dto.DocumentStatusResponse {
	return &dto.DocumentStatusResponse{
		Id:         document.Id,
		FileName:   document.FileName,
		Namespace:  document.Namespace,
		Status:     document.Status,
		ChunkCount: document.ChunkCount,
		CreatedAt:  document.CreatedAt,
		UpdatedAt:  document.UpdatedAt,
	}
}
