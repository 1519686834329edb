package rewrite

import (
	"context"
	"log"
	"strings"

	"doc-qna-be/pkg/llm"
	"doc-qna-be/pkg/rag/prompt"
)

// Sentinel is the literal marker the model returns when the input is
// small talk and retrieval should be skipped. It is a string value,
// not an absent result.
const Sentinel = "None"

// Rewriter turns a conversational question into a compact retrieval
// query. Rewriting is best-effort: a model failure degrades to "skip
// retrieval" rather than failing the request.
type Rewriter struct {
	llmProvider llm.LLMProvider
	model       string
	logger      *log.Logger
}

func NewRewriter(llmProvider llm.LLMProvider, model string, logger *log.Logger) *Rewriter {
	return &Rewriter{
		llmProvider: llmProvider,
		model:       model,
		logger:      logger,
	}
}

// Rewrite returns the retrieval query and true, or ("", false) when
// retrieval should be skipped: small talk, an empty rewrite, or a
// model failure.
func (r *Rewriter) Rewrite(ctx context.Context, question string) (string, bool) {
	rendered := prompt.Rewrite.Render(map[string]string{"question": question})

	opts := []llm.Option{llm.WithTemperature(0)}
	if r.model != "" {
		opts = append(opts, llm.WithModel(r.model))
	}

	answer, err := r.llmProvider.Generate(ctx, rendered, opts...)
	if err != nil {
		r.logger.Printf("[REWRITE] model call failed, skipping retrieval: %v", err)
		return "", false
	}

	query := strings.Trim(strings.TrimSpace(answer), `"`)
	if query == "" || strings.EqualFold(query, Sentinel) {
		r.logger.Printf("[REWRITE] small talk detected, skipping retrieval")
		return "", false
	}

	r.logger.Printf("[REWRITE] %q -> %q", question, query)
	return query, true
}
