package services

import (
	"context"
	"fmt"
	"strings"

	"rag-compliance-assistant/internal/vectorstore/pinecone"

	"github.com/google/uuid"
)

// Embedder produces embedding vectors for document chunks and queries.
// Both must come from the same model or retrieval silently degrades.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is a namespaced vector store partition.
type VectorIndex interface {
	Upsert(ctx context.Context, vectors []pinecone.Vector, namespace string) error
	Query(ctx context.Context, vector []float32, topK int, namespace string) ([]pinecone.Match, error)
}

// RAGService indexes document chunks into the vector store and retrieves
// question context from it.
type RAGService struct {
	embedder  Embedder
	index     VectorIndex
	batchSize int
	topK      int
}

func NewRAGService(embedder Embedder, index VectorIndex, batchSize, topK int) *RAGService {
	if batchSize <= 0 {
		batchSize = 20
	}
	if topK <= 0 {
		topK = 7
	}
	return &RAGService{
		embedder:  embedder,
		index:     index,
		batchSize: batchSize,
		topK:      topK,
	}
}

// IndexDocument embeds chunks in batches and upserts them under namespace
// with fresh random ids. Callers must never re-index the same document into
// an existing namespace; the fresh ids would only add duplicates.
func (s *RAGService) IndexDocument(ctx context.Context, chunks []string, metadatas []map[string]any, namespace string) error {
	if len(metadatas) != len(chunks) {
		return fmt.Errorf("metadata count %d does not match chunk count %d", len(metadatas), len(chunks))
	}

	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		embeddings, err := s.embedder.EmbedDocuments(ctx, batch)
		if err != nil {
			return fmt.Errorf("embed batch at %d: %w", start, err)
		}

		vectors := make([]pinecone.Vector, len(batch))
		for i := range batch {
			vectors[i] = pinecone.Vector{
				ID:       uuid.NewString(),
				Values:   embeddings[i],
				Metadata: metadatas[start+i],
			}
		}
		if err := s.index.Upsert(ctx, vectors, namespace); err != nil {
			return fmt.Errorf("upsert batch at %d: %w", start, err)
		}
	}
	return nil
}

// RetrieveContext embeds the query, fetches the nearest chunks within the
// namespace and joins their text metadata in returned order. An empty string
// means "no information", not an error.
func (s *RAGService) RetrieveContext(ctx context.Context, query, namespace string) (string, error) {
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.index.Query(ctx, vector, s.topK, namespace)
	if err != nil {
		return "", fmt.Errorf("query index: %w", err)
	}

	texts := make([]string, 0, len(matches))
	for _, match := range matches {
		if text, ok := match.Metadata["text"].(string); ok {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n"), nil
}
