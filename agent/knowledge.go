package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentrouter/backend"
	"github.com/hupe1980/agentrouter/core"
)

// Document is a retrieved knowledge base entry.
type Document struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Retriever is the opaque retrieval capability the knowledge agent consults.
// Indexing and storage are entirely the implementation's concern.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]Document, error)
}

// KnowledgeAgent answers questions grounded in a knowledge base: it retrieves
// the top matching documents for the input and hands them to the model as
// context. Retrieval failures degrade to a plain completion.
type KnowledgeAgent struct {
	*ModelAgent
	retriever Retriever
	topK      int
}

var _ core.Agent = (*KnowledgeAgent)(nil)

// NewKnowledgeAgent creates the knowledge specialist over the given retriever.
func NewKnowledgeAgent(b backend.Backend, retriever Retriever, optFns ...func(o *ModelAgentOptions)) *KnowledgeAgent {
	fns := append([]func(o *ModelAgentOptions){func(o *ModelAgentOptions) {
		o.Description = "Answers questions from the knowledge base (policies, documentation, data products)."
		o.Instruction = `You are a knowledge-enhanced assistant with access to a banking and finance knowledge base. Your role is to:

1. Answer questions using the retrieved context supplied with the request
2. Provide accurate information on banking policies, investment strategies and compliance regulations
3. Synthesize information from multiple sources when needed
4. Clearly indicate when information comes from the knowledge base versus your general knowledge`
	}}, optFns...)

	return &KnowledgeAgent{
		ModelAgent: NewModelAgent("Knowledge Agent", b, fns...),
		retriever:  retriever,
		topK:       3,
	}
}

// Respond implements core.Agent with retrieval augmentation.
func (a *KnowledgeAgent) Respond(ctx context.Context, req core.Request) (*core.Response, error) {
	var docs []Document
	if a.retriever != nil {
		var err error
		docs, err = a.retriever.Retrieve(ctx, req.Input, a.topK)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: agent %s: %w", core.ErrAgentExecution, a.Name(), ctx.Err())
			}
			docs = nil
		}
	}

	resp, err := a.complete(ctx, req, buildContextBlock(docs))
	if err != nil {
		return nil, err
	}
	out := a.buildResponse(resp)
	if len(docs) > 0 {
		ids := make([]string, len(docs))
		for i, d := range docs {
			ids[i] = d.ID
		}
		out.Metadata["sources"] = ids
	}
	return out, nil
}

// buildContextBlock renders retrieved documents into the prompt prefix.
func buildContextBlock(docs []Document) string {
	if len(docs) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Retrieved context:\n")
	for _, d := range docs {
		fmt.Fprintf(&sb, "[%s] %s\n", d.ID, d.Content)
	}
	return sb.String()
}
