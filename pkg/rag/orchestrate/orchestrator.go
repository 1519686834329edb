package orchestrate

import (
	"context"
	"fmt"
	"log"

	"doc-qna-be/pkg/rag"
	"doc-qna-be/pkg/rag/memory"
	"doc-qna-be/pkg/rag/stream"
)

// Mode selects the terminal production step.
type Mode string

const (
	// ModeAsk answers a question grounded in the document set.
	ModeAsk Mode = "ask"
	// ModeSummarize distills the document set into one summary.
	ModeSummarize Mode = "summarize"
)

// State names for the orchestration graph.
type State string

const (
	StateStart       State = "START"
	StateRetrieve    State = "RETRIEVE"
	StateRoute       State = "ROUTE"
	StateWebFallback State = "WEB_FALLBACK"
	StateProduce     State = "PRODUCE"
	StateEnd         State = "END"
)

// Collaborator contracts. Concrete implementations live in their own
// packages; tests substitute fakes.

type QueryRewriter interface {
	Rewrite(ctx context.Context, question string) (string, bool)
}

type Retriever interface {
	Retrieve(ctx context.Context, query, namespace string) []rag.ScoredDocument
}

type WebSearcher interface {
	Search(ctx context.Context, query string) ([]rag.Document, error)
}

type Summarizer interface {
	Run(ctx context.Context, state *rag.PipelineState) error
}

type Generator interface {
	Generate(ctx context.Context, question string, docs []rag.Document, window *memory.Window, language string) (string, error)
	GenerateStream(ctx context.Context, question string, docs []rag.Document, window *memory.Window, language string, emitter *stream.Emitter) (string, error)
}

// Request is one orchestration run's input.
type Request struct {
	Question  string
	Namespace string
	Language  string
	Mode      Mode
	Window    *memory.Window
	// Emitter streams the answer when set; nil returns it in one piece.
	Emitter *stream.Emitter
}

// Result is the run's terminal output together with its final state.
type Result struct {
	Answer string
	State  *rag.PipelineState
}

// Orchestrator sequences rewrite, retrieval, conditional web fallback,
// and the terminal generate/summarize step. Best-effort stages degrade
// in place; everything downstream of routing fails the whole run.
type Orchestrator struct {
	rewriter       QueryRewriter
	retriever      Retriever
	webSearcher    WebSearcher
	summarizer     Summarizer
	generator      Generator
	minimumScore   float64
	sufficientDocs int
	maxSteps       int
	logger         *log.Logger
}

func NewOrchestrator(
	rewriter QueryRewriter,
	retriever Retriever,
	webSearcher WebSearcher,
	summarizer Summarizer,
	generator Generator,
	minimumScore float64,
	sufficientDocs int,
	maxSteps int,
	logger *log.Logger,
) *Orchestrator {
	if sufficientDocs < 1 {
		sufficientDocs = 5
	}
	if maxSteps < 1 {
		maxSteps = 10
	}
	return &Orchestrator{
		rewriter:       rewriter,
		retriever:      retriever,
		webSearcher:    webSearcher,
		summarizer:     summarizer,
		generator:      generator,
		minimumScore:   minimumScore,
		sufficientDocs: sufficientDocs,
		maxSteps:       maxSteps,
		logger:         logger,
	}
}

// next is the pure transition function: current state plus the latest
// document count decide the following state.
func (o *Orchestrator) next(state State, docCount int, retrievalSkipped bool) State {
	switch state {
	case StateStart:
		return StateRetrieve
	case StateRetrieve:
		return StateRoute
	case StateRoute:
		if retrievalSkipped || docCount >= o.sufficientDocs {
			return StateProduce
		}
		return StateWebFallback
	case StateWebFallback:
		return StateProduce
	case StateProduce:
		return StateEnd
	default:
		return StateEnd
	}
}

// Run executes one orchestration to completion. Exceeding the step
// bound without reaching END fails with ErrOrchestrationIncomplete.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	state := &rag.PipelineState{
		Query:     req.Question,
		Namespace: req.Namespace,
	}

	var (
		answer           string
		retrievalSkipped bool
	)

	current := StateStart
	for step := 0; step < o.maxSteps; step++ {
		o.logger.Printf("[ORCHESTRATE] step=%d state=%s docs=%d", step, current, len(state.Documents))

		switch current {
		case StateStart:
			// Rewriting is best-effort: a failed or small-talk rewrite
			// skips retrieval entirely instead of failing the request.
			query, ok := o.rewriter.Rewrite(ctx, req.Question)
			if !ok {
				retrievalSkipped = true
			} else {
				state.Query = query
			}

		case StateRetrieve:
			if !retrievalSkipped {
				scored := o.retriever.Retrieve(ctx, state.Query, state.Namespace)
				for _, sd := range scored {
					if sd.Score > o.minimumScore {
						state.Documents = append(state.Documents, sd.Document)
					}
				}
			}

		case StateRoute:
			// Decision only; next() picks the branch.

		case StateWebFallback:
			webDocs, err := o.webSearcher.Search(ctx, state.Query)
			if err != nil {
				return nil, o.fail(req, fmt.Errorf("web fallback: %w", err))
			}
			// Append, never replace: retrieved documents stay.
			state.Documents = append(state.Documents, webDocs...)

		case StateProduce:
			var err error
			answer, err = o.produce(ctx, req, state)
			if err != nil {
				return nil, o.fail(req, err)
			}

		case StateEnd:
			return &Result{Answer: answer, State: state}, nil
		}

		current = o.next(current, len(state.Documents), retrievalSkipped)
	}

	if current == StateEnd {
		return &Result{Answer: answer, State: state}, nil
	}
	return nil, o.fail(req, rag.ErrOrchestrationIncomplete)
}

func (o *Orchestrator) produce(ctx context.Context, req Request, state *rag.PipelineState) (string, error) {
	switch req.Mode {
	case ModeSummarize:
		if err := o.summarizer.Run(ctx, state); err != nil {
			return "", err
		}
		if req.Emitter != nil {
			if err := req.Emitter.Blob(state.FinalSummary, "text/plain"); err != nil {
				return "", err
			}
		}
		return state.FinalSummary, nil

	default:
		if req.Emitter != nil {
			return o.generator.GenerateStream(ctx, req.Question, state.Documents, req.Window, req.Language, req.Emitter)
		}
		return o.generator.Generate(ctx, req.Question, state.Documents, req.Window, req.Language)
	}
}

// fail logs the terminal error with run context and pushes an error
// frame to a live connection before re-raising.
func (o *Orchestrator) fail(req Request, err error) error {
	o.logger.Printf("[ORCHESTRATE] run failed for question %q: %v", req.Question, err)
	if req.Emitter != nil {
		_ = req.Emitter.Error(err.Error())
	}
	return err
}
