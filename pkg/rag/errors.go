package rag

import "errors"

// Failure taxonomy for the pipeline. Best-effort stages (rewrite,
// retrieval) never surface these; stages with no further fallback wrap
// them with stage context and abort the whole request.
var (
	// ErrInvalidQuery reports a blank web-search query. A missing web
	// query is a caller bug, not an environment fault, so it is raised
	// synchronously instead of being swallowed.
	ErrInvalidQuery = errors.New("web search query is empty")

	// ErrWebSearchFailed wraps failures of the underlying search API.
	// Web search has no further fallback, so this propagates.
	ErrWebSearchFailed = errors.New("web search failed")

	// ErrSummarizationFailed reports a failed per-document summarization.
	// Summarization requires completeness, so one failure aborts the run.
	ErrSummarizationFailed = errors.New("summarization failed")

	// ErrSummarizationIncomplete reports that the collapse loop exceeded
	// its step bound without getting under the token ceiling.
	ErrSummarizationIncomplete = errors.New("summarization incomplete: step bound exceeded")

	// ErrOrchestrationIncomplete reports that the orchestrator exhausted
	// its step bound without reaching a terminal state.
	ErrOrchestrationIncomplete = errors.New("orchestration incomplete: step bound exceeded")

	// ErrStreamDelivery reports a failed push to the live connection.
	// Remaining generation work is abandoned; nobody is listening.
	ErrStreamDelivery = errors.New("stream delivery failed")

	// ErrTemplateInvalid reports a generation template missing a required
	// field. This is a configuration error detected at startup.
	ErrTemplateInvalid = errors.New("generation template invalid")
)
