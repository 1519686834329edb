package bootstrap

import (
	"context"
	"log"

	"doc-qna-be/internal/config"
	"doc-qna-be/internal/controller"
	"doc-qna-be/internal/handler"
	"doc-qna-be/internal/pkg/logger"
	"doc-qna-be/internal/repository/memory"
	"doc-qna-be/internal/repository/unitofwork"
	"doc-qna-be/internal/service"
	"doc-qna-be/internal/websocket"
	"doc-qna-be/pkg/embedding"
	"doc-qna-be/pkg/llm/factory"

	pktNats "doc-qna-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	QueryController    controller.IQueryController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.ChatModel,
		cfg.Keys.OpenAI,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.ChatModel)

	// In-memory session storage for conversation windows
	sessionRepo := memory.NewSessionRepository(cfg.Rag.MemoryWindow, cfg.Rag.HumanRoleTag, cfg.Rag.AiRoleTag)

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Ingest.EmbedTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Ingest.EmbedTopic,
		cfg,
		uowFactory,
		embeddingProvider,
		natsPub,
	)

	documentService := service.NewDocumentService(cfg, uowFactory, publisherService, natsPub)

	queryService, err := service.NewQueryService(
		cfg,
		uowFactory,
		embeddingProvider,
		llmProvider,
		sessionRepo,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to assemble query pipeline: %v", err)
	}

	// 4.5 Notification System
	notifService := service.NewNotificationService(natsSub, wsHub, wsLogger) // Hub implements StatusDelivery

	// Start Service (Worker)
	if natsSub != nil {
		go notifService.Start()
	}

	// Handler
	notifHandler := handler.NewNotificationHandler(notifService, natsPub, wsHub, cfg, wsLogger)

	// 5. Controllers
	sysLogger.Info("Bootstrap", "Container assembled", map[string]interface{}{
		"llm_provider":       cfg.Ai.LLMProvider,
		"embedding_provider": cfg.Ai.EmbeddingProvider,
	})

	return &Container{
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
		QueryController:     controller.NewQueryController(queryService),
		DocumentController:  controller.NewDocumentController(documentService),

		ConsumerService: consumerService,
	}
}
