package services

import (
	"context"
	"fmt"
	"testing"

	"rag-compliance-assistant/internal/vectorstore/pinecone"
)

type fakeEmbedder struct {
	batchSizes []int
	queries    []string
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.batchSizes = append(f.batchSizes, len(texts))
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(i)}
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.queries = append(f.queries, text)
	return []float32{1}, nil
}

type fakeIndex struct {
	upserts    map[string][]pinecone.Vector
	queried    []string
	matches    []pinecone.Match
	topK       int
	upsertErr  error
	queryErr   error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{upserts: make(map[string][]pinecone.Vector)}
}

func (f *fakeIndex) Upsert(_ context.Context, vectors []pinecone.Vector, namespace string) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts[namespace] = append(f.upserts[namespace], vectors...)
	return nil
}

func (f *fakeIndex) Query(_ context.Context, _ []float32, topK int, namespace string) ([]pinecone.Match, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	f.queried = append(f.queried, namespace)
	f.topK = topK
	return f.matches, nil
}

func makeChunks(n int) ([]string, []map[string]any) {
	chunks := make([]string, n)
	metadatas := make([]map[string]any, n)
	for i := range chunks {
		chunks[i] = fmt.Sprintf("chunk %d", i)
		metadatas[i] = map[string]any{"text": chunks[i]}
	}
	return chunks, metadatas
}

func TestIndexDocumentBatches(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := newFakeIndex()
	svc := NewRAGService(embedder, index, 20, 7)

	chunks, metadatas := makeChunks(45)
	if err := svc.IndexDocument(context.Background(), chunks, metadatas, "upload_a"); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}

	wantBatches := []int{20, 20, 5}
	if len(embedder.batchSizes) != len(wantBatches) {
		t.Fatalf("batch count = %d, want %d", len(embedder.batchSizes), len(wantBatches))
	}
	for i, size := range wantBatches {
		if embedder.batchSizes[i] != size {
			t.Errorf("batch %d size = %d, want %d", i, embedder.batchSizes[i], size)
		}
	}

	vectors := index.upserts["upload_a"]
	if len(vectors) != 45 {
		t.Fatalf("upserted %d vectors, want 45", len(vectors))
	}

	seen := make(map[string]bool)
	for i, v := range vectors {
		if v.ID == "" || seen[v.ID] {
			t.Errorf("vector %d id %q is empty or duplicated", i, v.ID)
		}
		seen[v.ID] = true
		if v.Metadata["text"] != chunks[i] {
			t.Errorf("vector %d metadata = %v, want text %q", i, v.Metadata, chunks[i])
		}
	}
}

func TestIndexDocumentMetadataMismatch(t *testing.T) {
	svc := NewRAGService(&fakeEmbedder{}, newFakeIndex(), 20, 7)
	chunks, _ := makeChunks(3)
	if err := svc.IndexDocument(context.Background(), chunks, nil, "ns"); err == nil {
		t.Error("expected error for metadata/chunk count mismatch")
	}
}

func TestRetrieveContextJoinsMatchText(t *testing.T) {
	index := newFakeIndex()
	index.matches = []pinecone.Match{
		{ID: "1", Score: 0.9, Metadata: map[string]any{"text": "first chunk"}},
		{ID: "2", Score: 0.8, Metadata: map[string]any{"other": "ignored"}},
		{ID: "3", Score: 0.7, Metadata: map[string]any{"text": "second chunk"}},
	}
	svc := NewRAGService(&fakeEmbedder{}, index, 20, 7)

	got, err := svc.RetrieveContext(context.Background(), "limit?", "upload_a")
	if err != nil {
		t.Fatalf("RetrieveContext: %v", err)
	}
	if got != "first chunk\nsecond chunk" {
		t.Errorf("context = %q", got)
	}
	if index.topK != 7 {
		t.Errorf("topK = %d, want 7", index.topK)
	}
}

func TestRetrieveContextEmptyMatches(t *testing.T) {
	svc := NewRAGService(&fakeEmbedder{}, newFakeIndex(), 20, 7)
	got, err := svc.RetrieveContext(context.Background(), "anything", "upload_a")
	if err != nil {
		t.Fatalf("RetrieveContext: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty context, got %q", got)
	}
}

func TestRetrieveContextQueriesNamespace(t *testing.T) {
	index := newFakeIndex()
	svc := NewRAGService(&fakeEmbedder{}, index, 20, 7)
	if _, err := svc.RetrieveContext(context.Background(), "q", "upload_b"); err != nil {
		t.Fatalf("RetrieveContext: %v", err)
	}
	if len(index.queried) != 1 || index.queried[0] != "upload_b" {
		t.Errorf("queried namespaces = %v, want [upload_b]", index.queried)
	}
}
