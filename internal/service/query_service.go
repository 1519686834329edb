package service

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"doc-qna-be/internal/config"
	"doc-qna-be/internal/dto"
	"doc-qna-be/internal/repository/memory"
	"doc-qna-be/internal/repository/unitofwork"
	"doc-qna-be/pkg/embedding"
	"doc-qna-be/pkg/llm"
	"doc-qna-be/pkg/rag"
	"doc-qna-be/pkg/rag/generate"
	ragmemory "doc-qna-be/pkg/rag/memory"
	"doc-qna-be/pkg/rag/orchestrate"
	"doc-qna-be/pkg/rag/retrieval"
	"doc-qna-be/pkg/rag/rewrite"
	"doc-qna-be/pkg/rag/stream"
	"doc-qna-be/pkg/rag/summarize"
	"doc-qna-be/pkg/rag/tokens"
	"doc-qna-be/pkg/rag/websearch"
)

// IQueryService answers questions and produces summaries over the
// ingested document set.
type IQueryService interface {
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error)
	AskStream(ctx context.Context, req *dto.AskRequest, emitter *stream.Emitter) error
	Summarize(ctx context.Context, req *dto.SummarizeRequest) (*dto.SummarizeResponse, error)
}

type queryService struct {
	cfg          *config.Config
	sessionRepo  *memory.SessionRepository
	orchestrator *orchestrate.Orchestrator
	ragLogger    *log.Logger
}

// NewQueryService assembles the full pipeline once; every request
// reuses the same collaborators.
func NewQueryService(
	cfg *config.Config,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.StreamingProvider,
	sessionRepo *memory.SessionRepository,
) (IQueryService, error) {

	ragLogger := initRagLogger(cfg.App.RagLogFilePath)

	index := &chunkIndex{uowFactory: uowFactory}

	rewriter := rewrite.NewRewriter(llmProvider, cfg.Ai.RewriteModel, ragLogger)
	retriever := retrieval.NewRetriever(embeddingProvider, index, cfg.Rag.TopK, cfg.Rag.DefaultNamespace, ragLogger)
	webSearcher := websearch.NewTavilyClient(cfg.Keys.Tavily, cfg.Rag.WebSearchResults, ragLogger)

	counter := tokens.NewTiktokenCounter(cfg.Ai.ChatModel)
	summarizer := summarize.NewSummarizer(llmProvider, counter, cfg.Rag.MaxTokenLimit, cfg.Rag.MaxSteps, ragLogger)

	generator, err := generate.NewGenerator(llmProvider, nil, cfg.Rag.FallbackMessage, ragLogger)
	if err != nil {
		return nil, err
	}

	orchestrator := orchestrate.NewOrchestrator(
		rewriter,
		retriever,
		webSearcher,
		summarizer,
		generator,
		cfg.Rag.MinimumScore,
		cfg.Rag.SufficientDocs,
		cfg.Rag.MaxSteps,
		ragLogger,
	)

	return &queryService{
		cfg:          cfg,
		sessionRepo:  sessionRepo,
		orchestrator: orchestrator,
		ragLogger:    ragLogger,
	}, nil
}

func initRagLogger(logPath string) *log.Logger {
	if logPath == "" {
		logPath = filepath.Join(".", "logs", "rag_pipeline.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

func (s *queryService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	request := s.buildRequest(req, nil)

	result, err := s.orchestrator.Run(ctx, request)
	if err != nil {
		return nil, err
	}

	s.remember(req.SessionId, request.Window, req.Question, result.Answer)

	return &dto.AskResponse{
		Answer:    result.Answer,
		Namespace: request.Namespace,
		SessionId: req.SessionId,
	}, nil
}

// AskStream runs the same pipeline but pushes the answer token by
// token over the live connection. The orchestrator reports failures on
// the emitter itself, so the caller only logs the returned error.
func (s *queryService) AskStream(ctx context.Context, req *dto.AskRequest, emitter *stream.Emitter) error {
	request := s.buildRequest(req, emitter)

	result, err := s.orchestrator.Run(ctx, request)
	if err != nil {
		return err
	}

	s.remember(req.SessionId, request.Window, req.Question, result.Answer)
	return nil
}

func (s *queryService) Summarize(ctx context.Context, req *dto.SummarizeRequest) (*dto.SummarizeResponse, error) {
	namespace := req.Namespace
	if namespace == "" {
		namespace = s.cfg.Rag.DefaultNamespace
	}

	result, err := s.orchestrator.Run(ctx, orchestrate.Request{
		Question:  req.Question,
		Namespace: namespace,
		Language:  s.cfg.Rag.DefaultLanguage,
		Mode:      orchestrate.ModeSummarize,
		Window:    ragmemory.NewWindow(s.cfg.Rag.MemoryWindow, s.cfg.Rag.HumanRoleTag, s.cfg.Rag.AiRoleTag),
	})
	if err != nil {
		return nil, err
	}

	return &dto.SummarizeResponse{
		Summary:   result.Answer,
		Namespace: namespace,
		DocCount:  len(result.State.Documents),
	}, nil
}

func (s *queryService) buildRequest(req *dto.AskRequest, emitter *stream.Emitter) orchestrate.Request {
	namespace := req.Namespace
	if namespace == "" {
		namespace = s.cfg.Rag.DefaultNamespace
	}
	language := req.Language
	if language == "" {
		language = s.cfg.Rag.DefaultLanguage
	}

	return orchestrate.Request{
		Question:  req.Question,
		Namespace: namespace,
		Language:  language,
		Mode:      orchestrate.ModeAsk,
		Window:    s.windowFor(req),
		Emitter:   emitter,
	}
}

// windowFor resolves the conversation window: a server-side session
// when the client sends a session id, otherwise a throwaway window
// seeded from the chat context it sent inline.
func (s *queryService) windowFor(req *dto.AskRequest) *ragmemory.Window {
	if req.SessionId != "" {
		return s.sessionRepo.GetOrCreate(req.SessionId)
	}

	window := ragmemory.NewWindow(s.cfg.Rag.MemoryWindow, s.cfg.Rag.HumanRoleTag, s.cfg.Rag.AiRoleTag)
	if len(req.ChatContext) > 0 {
		msgs := make([]ragmemory.Message, 0, len(req.ChatContext))
		for _, m := range req.ChatContext {
			msgs = append(msgs, ragmemory.Message{Role: m.Role, Content: m.Content})
		}
		window.Load(msgs)
	}
	return window
}

func (s *queryService) remember(sessionId string, window *ragmemory.Window, question, answer string) {
	if sessionId == "" || window == nil {
		return
	}
	window.AddExchange(question, answer)
	s.sessionRepo.Save(sessionId, window)
}

// chunkIndex adapts the pgvector-backed chunk repository to the
// retriever's index contract.
type chunkIndex struct {
	uowFactory unitofwork.RepositoryFactory
}

func (idx *chunkIndex) SimilaritySearch(ctx context.Context, vector []float32, namespace string, topK int) ([]rag.ScoredDocument, error) {
	uow := idx.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentChunkRepository().SearchSimilar(ctx, vector, namespace, topK)
	if err != nil {
		return nil, err
	}

	docs := make([]rag.ScoredDocument, 0, len(scored))
	for _, sc := range scored {
		metadata := map[string]interface{}{
			"document_id": sc.Chunk.DocumentId.String(),
			"chunk_index": sc.Chunk.ChunkIndex,
		}
		for k, v := range sc.Chunk.Metadata {
			metadata[k] = v
		}
		docs = append(docs, rag.ScoredDocument{
			Document: rag.Document{
				Content:  sc.Chunk.Content,
				Metadata: metadata,
			},
			Score: sc.Similarity,
		})
	}
	return docs, nil
}
