// Package retrieval provides Retriever implementations for the knowledge
// agent. The chromem backend keeps the knowledge base fully in-process, which
// suits demos and tests; swap in a remote vector store behind the same
// interface for production corpora.
package retrieval

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"

	"github.com/hupe1980/agentrouter/agent"
)

// ChromemRetriever adapts a chromem-go collection to the agent.Retriever
// interface.
type ChromemRetriever struct {
	collection *chromem.Collection
}

var _ agent.Retriever = (*ChromemRetriever)(nil)

// NewChromemRetriever wraps an existing collection.
func NewChromemRetriever(collection *chromem.Collection) *ChromemRetriever {
	return &ChromemRetriever{collection: collection}
}

// Add indexes a document with optional metadata.
func (r *ChromemRetriever) Add(ctx context.Context, id, content string, metadata map[string]string) error {
	return r.collection.AddDocument(ctx, chromem.Document{
		ID:       id,
		Content:  content,
		Metadata: metadata,
	})
}

// Retrieve implements agent.Retriever. topK is capped at the collection size
// since chromem rejects oversized result requests.
func (r *ChromemRetriever) Retrieve(ctx context.Context, query string, topK int) ([]agent.Document, error) {
	count := r.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := r.collection.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	docs := make([]agent.Document, len(results))
	for i, res := range results {
		docs[i] = agent.Document{
			ID:       res.ID,
			Content:  res.Content,
			Score:    float64(res.Similarity),
			Metadata: res.Metadata,
		}
	}
	return docs, nil
}
