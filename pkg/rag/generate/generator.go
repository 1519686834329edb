package generate

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"doc-qna-be/pkg/llm"
	"doc-qna-be/pkg/rag"
	"doc-qna-be/pkg/rag/memory"
	"doc-qna-be/pkg/rag/prompt"
	"doc-qna-be/pkg/rag/stream"
)

// requiredFields are the placeholders the answer template must carry.
// A template missing one is a deployment mistake, caught when the
// generator is constructed rather than on the first live request.
var requiredFields = []string{"doc_count", "context", "language", "chat_history", "question"}

// Generator produces the final grounded answer from the retrieved
// context, the conversation window, and the question. It can stream
// tokens over a live connection as they arrive.
type Generator struct {
	llmProvider llm.StreamingProvider
	template    *prompt.Template
	fallback    string
	logger      *log.Logger
}

// NewGenerator validates the answer template at construction. A nil
// template falls back to the canonical QnA template.
func NewGenerator(
	llmProvider llm.StreamingProvider,
	template *prompt.Template,
	fallback string,
	logger *log.Logger,
) (*Generator, error) {
	if template == nil {
		template = prompt.QnA
	}
	for _, field := range requiredFields {
		if !strings.Contains(template.Text(), "{"+field+"}") {
			return nil, fmt.Errorf("%w: missing placeholder {%s}", rag.ErrTemplateInvalid, field)
		}
	}
	return &Generator{
		llmProvider: llmProvider,
		template:    template,
		fallback:    fallback,
		logger:      logger,
	}, nil
}

// Generate returns the complete answer in one piece.
func (g *Generator) Generate(
	ctx context.Context,
	question string,
	docs []rag.Document,
	window *memory.Window,
	language string,
) (string, error) {
	if len(docs) == 0 {
		g.logger.Printf("[GENERATE] no context documents, returning fallback")
		return g.fallback, nil
	}

	rendered := g.render(question, docs, window, language)
	answer, err := g.llmProvider.Generate(ctx, rendered)
	if err != nil {
		return "", fmt.Errorf("answer generation: %w", err)
	}
	return answer, nil
}

// GenerateStream produces the answer while pushing every token over
// the emitter in generation order. The generation side writes tokens
// into a channel; this side drains it and forwards each one, so a
// failed push cancels the in-flight model call instead of computing
// tokens nobody will receive.
func (g *Generator) GenerateStream(
	ctx context.Context,
	question string,
	docs []rag.Document,
	window *memory.Window,
	language string,
	emitter *stream.Emitter,
) (string, error) {
	if err := emitter.Start(); err != nil {
		return "", err
	}

	if len(docs) == 0 {
		g.logger.Printf("[GENERATE] no context documents, streaming fallback")
		if err := emitter.Chunk(g.fallback); err != nil {
			return "", err
		}
		if err := emitter.End(); err != nil {
			return "", err
		}
		return g.fallback, nil
	}

	rendered := g.render(question, docs, window, language)

	genCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	tokensCh := make(chan string)
	resultCh := make(chan streamResult, 1)

	go func() {
		full, err := g.llmProvider.ChatStream(genCtx,
			[]llm.Message{{Role: "user", Content: rendered}},
			func(token string) error {
				select {
				case tokensCh <- token:
					return nil
				case <-genCtx.Done():
					return genCtx.Err()
				}
			},
		)
		close(tokensCh)
		resultCh <- streamResult{answer: full, err: err}
	}()

	for token := range tokensCh {
		if err := emitter.Chunk(token); err != nil {
			cancel()
			for range tokensCh {
			}
			<-resultCh
			return "", err
		}
	}

	result := <-resultCh
	if result.err != nil {
		return "", fmt.Errorf("answer generation: %w", result.err)
	}

	if err := emitter.End(); err != nil {
		return "", err
	}
	return result.answer, nil
}

type streamResult struct {
	answer string
	err    error
}

func (g *Generator) render(question string, docs []rag.Document, window *memory.Window, language string) string {
	contents := make([]string, len(docs))
	for i, doc := range docs {
		contents[i] = doc.Content
	}

	history := ""
	if window != nil {
		history = window.Render()
	}

	return g.template.Render(map[string]string{
		"doc_count":    strconv.Itoa(len(docs)),
		"context":      strings.Join(contents, "\n\n"),
		"language":     language,
		"chat_history": history,
		"question":     question,
	})
}
