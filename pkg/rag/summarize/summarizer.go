package summarize

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"doc-qna-be/pkg/llm"
	"doc-qna-be/pkg/rag"
	"doc-qna-be/pkg/rag/prompt"
	"doc-qna-be/pkg/rag/tokens"
)

// State names for the map-reduce graph.
type State string

const (
	StateMap      State = "MAP"
	StateCollect  State = "COLLECT"
	StateCollapse State = "COLLAPSE"
	StateReduce   State = "REDUCE"
	StateDone     State = "DONE"
)

// Summarizer collapses a document set into one bounded summary.
// Per-document summaries are produced concurrently (MAP), gathered
// (COLLECT), then repeatedly distilled in token-bounded chunks
// (COLLAPSE) until the set fits under the ceiling, and finally
// reduced to a single text (REDUCE).
type Summarizer struct {
	llmProvider  llm.LLMProvider
	counter      tokens.Counter
	tokenCeiling int
	maxSteps     int
	logger       *log.Logger
}

func NewSummarizer(
	llmProvider llm.LLMProvider,
	counter tokens.Counter,
	tokenCeiling int,
	maxSteps int,
	logger *log.Logger,
) *Summarizer {
	if tokenCeiling < 1 {
		tokenCeiling = 1500
	}
	if maxSteps < 1 {
		maxSteps = 10
	}
	return &Summarizer{
		llmProvider:  llmProvider,
		counter:      counter,
		tokenCeiling: tokenCeiling,
		maxSteps:     maxSteps,
		logger:       logger,
	}
}

// next is the pure transition function of the graph: current state
// plus the latest token count decide the following state.
func next(state State, tokenCount, ceiling int) State {
	switch state {
	case StateMap:
		return StateCollect
	case StateCollect, StateCollapse:
		if tokenCount > ceiling {
			return StateCollapse
		}
		return StateReduce
	case StateReduce:
		return StateDone
	default:
		return StateDone
	}
}

// Run executes the graph against the pipeline state, setting
// FinalSummary on success. Every state execution counts as one step;
// exceeding the step bound fails with ErrSummarizationIncomplete.
func (s *Summarizer) Run(ctx context.Context, state *rag.PipelineState) error {
	if len(state.Documents) == 0 {
		return fmt.Errorf("%w: no documents to summarize", rag.ErrSummarizationFailed)
	}

	current := StateMap
	for step := 0; step < s.maxSteps; step++ {
		s.logger.Printf("[SUMMARIZE] step=%d state=%s", step, current)

		switch current {
		case StateMap:
			if err := s.mapDocuments(ctx, state); err != nil {
				return err
			}
		case StateCollect:
			s.collect(state)
		case StateCollapse:
			if err := s.collapse(ctx, state); err != nil {
				return err
			}
		case StateReduce:
			if err := s.reduce(ctx, state); err != nil {
				return err
			}
		case StateDone:
			return nil
		}

		tokenCount := s.countDocs(state.CollapsedSummaries)
		current = next(current, tokenCount, s.tokenCeiling)
	}

	if current == StateDone {
		return nil
	}
	return rag.ErrSummarizationIncomplete
}

// Summarize is the convenience entrypoint for a bare document set.
func (s *Summarizer) Summarize(ctx context.Context, docs []rag.Document) (string, error) {
	state := &rag.PipelineState{Documents: docs}
	if err := s.Run(ctx, state); err != nil {
		return "", err
	}
	return state.FinalSummary, nil
}

// mapDocuments fans out one structuring call per document. Siblings
// run concurrently; any single failure aborts the whole run, since a
// summary is only correct when it covers every document.
func (s *Summarizer) mapDocuments(ctx context.Context, state *rag.PipelineState) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, doc := range state.Documents {
		content := doc.Content
		g.Go(func() error {
			rendered := prompt.DocParser.Render(map[string]string{"context": content})
			summary, err := s.llmProvider.Generate(gctx, rendered, llm.WithTemperature(0))
			if err != nil {
				return fmt.Errorf("%w: %v", rag.ErrSummarizationFailed, err)
			}
			state.AppendSummary(summary)
			return nil
		})
	}
	return g.Wait()
}

// collect gathers the fan-out results into the collapsed set. Order is
// whatever the joins produced; the reduce prompt is order-insensitive.
func (s *Summarizer) collect(state *rag.PipelineState) {
	summaries := state.Summaries()
	state.CollapsedSummaries = make([]rag.Document, 0, len(summaries))
	for _, summary := range summaries {
		state.CollapsedSummaries = append(state.CollapsedSummaries, rag.Document{Content: summary})
	}
}

// collapse partitions the current set into token-bounded chunks and
// replaces each chunk with one distilled document.
func (s *Summarizer) collapse(ctx context.Context, state *rag.PipelineState) error {
	chunks := s.partition(state.CollapsedSummaries)

	collapsed := make([]rag.Document, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			distilled, err := s.distill(gctx, chunk)
			if err != nil {
				return err
			}
			collapsed[i] = rag.Document{Content: distilled}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	state.CollapsedSummaries = collapsed
	return nil
}

// partition greedily packs documents into chunks under the ceiling.
// A single document over the ceiling becomes its own oversized chunk
// rather than being dropped.
func (s *Summarizer) partition(docs []rag.Document) [][]rag.Document {
	var chunks [][]rag.Document
	var current []rag.Document
	currentTokens := 0

	for _, doc := range docs {
		docTokens := s.counter.Count(doc.Content)
		if len(current) > 0 && currentTokens+docTokens > s.tokenCeiling {
			chunks = append(chunks, current)
			current = nil
			currentTokens = 0
		}
		current = append(current, doc)
		currentTokens += docTokens
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

// reduce distills the final small set into the single summary text.
func (s *Summarizer) reduce(ctx context.Context, state *rag.PipelineState) error {
	final, err := s.distill(ctx, state.CollapsedSummaries)
	if err != nil {
		return err
	}
	state.FinalSummary = final
	return nil
}

func (s *Summarizer) distill(ctx context.Context, docs []rag.Document) (string, error) {
	contents := make([]string, len(docs))
	for i, doc := range docs {
		contents[i] = doc.Content
	}
	rendered := prompt.DistillSummary.Render(map[string]string{
		"docs": strings.Join(contents, "\n\n"),
	})

	distilled, err := s.llmProvider.Generate(ctx, rendered, llm.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("%w: %v", rag.ErrSummarizationFailed, err)
	}
	return distilled, nil
}

func (s *Summarizer) countDocs(docs []rag.Document) int {
	total := 0
	for _, doc := range docs {
		total += s.counter.Count(doc.Content)
	}
	return total
}
