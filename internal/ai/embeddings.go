package ai

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// EmbedDocuments returns one embedding vector per input text, in order.
// Queries and documents must go through the same embedding model for the
// similarity space to line up; both methods here share c.embedModel.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.embed_documents")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", c.embedModel),
		attribute.Int("gemini.batch_size", len(texts)),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		em := c.genai.EmbeddingModel(c.embedModel)
		batch := em.NewBatch()
		for _, text := range texts {
			batch.AddContent(genai.Text(text))
		}
		return em.BatchEmbedContents(ctx, batch)
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return nil, fmt.Errorf("gemini embed batch: %w", err)
	}

	resp := result.(*genai.BatchEmbedContentsResponse)
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil {
			return nil, fmt.Errorf("no embedding returned for batch item %d", i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// EmbedQuery embeds a single query string.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.embed_query")
	defer span.End()

	span.SetAttributes(attribute.String("gemini.model", c.embedModel))

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		em := c.genai.EmbeddingModel(c.embedModel)
		return em.EmbedContent(ctx, genai.Text(text))
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return nil, fmt.Errorf("gemini embed query: %w", err)
	}

	resp := result.(*genai.EmbedContentResponse)
	if resp.Embedding == nil {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Embedding.Values, nil
}
