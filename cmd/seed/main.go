package main

import (
	"log"
	"time"

	"doc-qna-be/internal/config"
	"doc-qna-be/internal/model"
	"doc-qna-be/pkg/database"
	"doc-qna-be/pkg/embedding"
	"doc-qna-be/pkg/utils"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Seeds a handful of sample documents and embeds them synchronously,
// so a fresh environment can answer questions without going through
// the ingest API first.
func main() {
	cfg := config.Load()

	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel)
	}

	color.Cyan("Seeding sample documents into namespace '%s'\n", cfg.Rag.DefaultNamespace)

	samples := []struct {
		FileName string
		Content  string
	}{
		{
			FileName: "getting-started.md",
			Content: "Getting Started\n\nUpload documents through the ingest endpoint. " +
				"Each document is split into chunks which are embedded and stored in the vector index. " +
				"Once a document reaches the READY status it participates in retrieval.",
		},
		{
			FileName: "faq.md",
			Content: "Frequently Asked Questions\n\nQ: How are answers grounded?\n" +
				"A: The pipeline retrieves the most similar chunks for a question and the model answers from that context only.\n\n" +
				"Q: What happens when nothing relevant is found?\n" +
				"A: A web search supplements the context, and if that also comes up empty the service says so instead of guessing.",
		},
	}

	for _, sample := range samples {
		var existing model.Document
		if err := db.Where("file_name = ? AND namespace = ?", sample.FileName, cfg.Rag.DefaultNamespace).
			First(&existing).Error; err == nil {
			color.Yellow("Document '%s' already exists, skipping...", sample.FileName)
			continue
		}

		document := model.Document{
			Id:        uuid.New(),
			FileName:  sample.FileName,
			Content:   sample.Content,
			Namespace: cfg.Rag.DefaultNamespace,
			Status:    model.DocumentStatusEmbedding,
			Metadata:  datatypes.JSONMap{"source": "seed"},
			CreatedAt: time.Now(),
		}
		if err := db.Create(&document).Error; err != nil {
			color.Red("Failed to create document '%s': %v", sample.FileName, err)
			continue
		}

		chunks := utils.SplitText(sample.Content, cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
		ok := true
		for i, chunk := range chunks {
			res, err := embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
			if err != nil {
				color.Red("Failed to embed chunk %d of '%s': %v", i, sample.FileName, err)
				ok = false
				break
			}
			chunkRow := model.DocumentChunk{
				Id:             uuid.New(),
				Content:        chunk,
				EmbeddingValue: pgvector.NewVector(res.Embedding.Values),
				DocumentId:     document.Id,
				Namespace:      document.Namespace,
				ChunkIndex:     i,
				CreatedAt:      time.Now(),
			}
			if err := db.Create(&chunkRow).Error; err != nil {
				color.Red("Failed to store chunk %d of '%s': %v", i, sample.FileName, err)
				ok = false
				break
			}
		}

		status := model.DocumentStatusReady
		if !ok {
			status = model.DocumentStatusFailed
		}
		if err := db.Model(&model.Document{}).Where("id = ?", document.Id).
			Updates(map[string]interface{}{"status": status, "chunk_count": len(chunks)}).Error; err != nil {
			color.Red("Failed to update status for '%s': %v", sample.FileName, err)
			continue
		}

		color.Green("Seeded document: %s (%d chunks, %s)", sample.FileName, len(chunks), status)
	}

	color.Cyan("\nDocument seeding completed!")
}
