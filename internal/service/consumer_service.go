package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"doc-qna-be/internal/config"
	"doc-qna-be/internal/dto"
	"doc-qna-be/internal/entity"
	"doc-qna-be/internal/model"
	"doc-qna-be/internal/repository/specification"
	"doc-qna-be/internal/repository/unitofwork"
	"doc-qna-be/pkg/embedding"
	"doc-qna-be/pkg/events"
	pktNats "doc-qna-be/pkg/nats"
	"doc-qna-be/pkg/retry"
	"doc-qna-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	cfg               *config.Config
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	cfg *config.Config,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		cfg:               cfg,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing embedding for DocumentId: %s", payload.DocumentId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		log.Printf("[ERROR] Failed to get document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if document == nil {
		log.Printf("[ERROR] Document not found: %s", payload.DocumentId)
		msg.Ack() // Document deleted meanwhile? Ack.
		return
	}

	if err := uow.DocumentRepository().UpdateStatus(ctx, document.Id, model.DocumentStatusEmbedding, 0); err != nil {
		log.Printf("[ERROR] Failed to mark document %s as embedding: %v", document.Id, err)
		msg.Nack()
		return
	}

	content := fmt.Sprintf("File: %s\n\n%s", document.FileName, document.Content)
	chunks := utils.SplitText(content, cs.cfg.Ingest.ChunkSize, cs.cfg.Ingest.ChunkOverlap)
	log.Printf("[INFO] Document %s split into %d chunks", document.Id, len(chunks))

	var newChunks []*entity.DocumentChunk
	for i, chunk := range chunks {
		var res *embedding.EmbeddingResponse
		err := retry.Default.Do(ctx, func() error {
			var genErr error
			res, genErr = cs.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
			return genErr
		})
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %d of document %s: %v", i, document.Id, err)
			cs.markFailed(ctx, uow, document, err)
			msg.Nack()
			return
		}

		newChunks = append(newChunks, &entity.DocumentChunk{
			Id:             uuid.New(),
			Content:        chunk,
			EmbeddingValue: res.Embedding.Values,
			DocumentId:     document.Id,
			Namespace:      document.Namespace,
			ChunkIndex:     i,
			Metadata:       document.Metadata,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	// Re-ingesting the same document replaces its chunks wholesale.
	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old chunks: %v", err)
		msg.Nack()
		return
	}

	if len(newChunks) > 0 {
		if err := uow.DocumentChunkRepository().CreateBulk(ctx, newChunks); err != nil {
			log.Printf("[ERROR] Failed to create bulk chunks: %v", err)
			msg.Nack()
			return
		}
	}

	if err := uow.DocumentRepository().UpdateStatus(ctx, document.Id, model.DocumentStatusReady, len(newChunks)); err != nil {
		log.Printf("[ERROR] Failed to mark document %s as ready: %v", document.Id, err)
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	cs.publishStatus(ctx, events.EventDocumentEmbedded, document, map[string]interface{}{
		"chunk_count": len(newChunks),
	})

	log.Printf("[SUCCESS] Document processed: %d chunks for DocumentId: %s", len(newChunks), document.Id)
	msg.Ack()
}

func (cs *consumerService) markFailed(ctx context.Context, uow unitofwork.UnitOfWork, document *entity.Document, cause error) {
	if err := uow.DocumentRepository().UpdateStatus(ctx, document.Id, model.DocumentStatusFailed, 0); err != nil {
		log.Printf("[ERROR] Failed to mark document %s as failed: %v", document.Id, err)
	}
	cs.publishStatus(ctx, events.EventDocumentFailed, document, map[string]interface{}{
		"reason": cause.Error(),
	})
}

func (cs *consumerService) publishStatus(ctx context.Context, eventType string, document *entity.Document, detail map[string]interface{}) {
	if cs.eventPublisher == nil {
		return
	}
	evt := events.NewDocumentStatusEvent(eventType, document.Id.String(), document.Namespace, detail)
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		log.Printf("[WARN] Failed to publish %s event: %v", eventType, err)
	}
}
