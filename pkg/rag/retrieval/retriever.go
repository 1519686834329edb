package retrieval

import (
	"context"
	"log"

	"doc-qna-be/pkg/embedding"
	"doc-qna-be/pkg/rag"
)

// Index is the namespaced similarity search the retriever queries.
// The pgvector-backed repository satisfies it; tests use fakes.
type Index interface {
	SimilaritySearch(ctx context.Context, vector []float32, namespace string, topK int) ([]rag.ScoredDocument, error)
}

// Retriever queries the vector index for the top-K scored documents.
// Retrieval is best-effort: every collaborator failure degrades to an
// empty result set so the orchestrator can always fall back. Score
// filtering is the caller's job; the retriever returns the raw top-K.
type Retriever struct {
	embeddingProvider embedding.EmbeddingProvider
	index             Index
	topK              int
	defaultNamespace  string
	logger            *log.Logger
}

func NewRetriever(
	embeddingProvider embedding.EmbeddingProvider,
	index Index,
	topK int,
	defaultNamespace string,
	logger *log.Logger,
) *Retriever {
	if topK < 1 {
		topK = 10
	}
	return &Retriever{
		embeddingProvider: embeddingProvider,
		index:             index,
		topK:              topK,
		defaultNamespace:  defaultNamespace,
		logger:            logger,
	}
}

// Retrieve returns the top-K scored documents for the query. It never
// returns an error: embedding or index failures are logged and
// surfaced as an empty slice.
func (r *Retriever) Retrieve(ctx context.Context, query, namespace string) []rag.ScoredDocument {
	if namespace == "" {
		namespace = r.defaultNamespace
	}

	embedResp, err := r.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		r.logger.Printf("[RETRIEVE] embedding failed for namespace %s: %v", namespace, err)
		return nil
	}

	docs, err := r.index.SimilaritySearch(ctx, embedResp.Embedding.Values, namespace, r.topK)
	if err != nil {
		r.logger.Printf("[RETRIEVE] index search failed for namespace %s: %v", namespace, err)
		return nil
	}

	r.logger.Printf("[RETRIEVE] namespace=%s query=%q -> %d documents", namespace, query, len(docs))
	return docs
}
