package rag

import "sync"

// Document is the unit of context flowing through the pipeline.
// Immutable once produced by a retrieval or parsing step; metadata carries
// provenance (source URL, file name, page).
type Document struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
}

// ScoredDocument pairs a document with its similarity score in [0,1].
// Produced only by the retrieval client; ordering is descending by score
// as returned by the index.
type ScoredDocument struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// PipelineState is the working record threaded through one orchestration
// run. It is exclusively owned by that run for its full lifetime, so no
// field needs locking except the summary accumulator, which is appended to
// concurrently by the summarizer's fan-out branches.
type PipelineState struct {
	Query     string
	Namespace string

	// Documents only grows: retrieval first, then web fallback appends.
	Documents []Document

	CollapsedSummaries []Document

	// FinalSummary is set at most once, by the terminal reduce step.
	FinalSummary string

	mu        sync.Mutex
	summaries []string
}

// AppendSummary records one map-phase summary. Safe for concurrent use.
func (s *PipelineState) AppendSummary(summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, summary)
}

// Summaries returns a copy of the accumulated map-phase summaries.
func (s *PipelineState) Summaries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.summaries))
	copy(out, s.summaries)
	return out
}
