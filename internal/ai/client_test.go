package ai

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(context.Background(), "", "gemini-2.0-flash", "text-embedding-004", 60); err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestResponseTextConcatenatesParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Hello "), genai.Text("world")}}},
			{Content: nil},
		},
	}
	if got := responseText(resp); got != "Hello world" {
		t.Errorf("responseText = %q", got)
	}
}

func TestResponseTextEmpty(t *testing.T) {
	if got := responseText(&genai.GenerateContentResponse{}); got != "" {
		t.Errorf("responseText = %q, want empty", got)
	}
}

// Integration test against the live API. Runs only when GEMINI_API_KEY is set.
func TestGenerateTextIntegration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewClient(ctx, apiKey, "gemini-2.0-flash", "text-embedding-004", 60)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	reply, err := client.GenerateText(ctx, "Reply with the single word OK.", GenerateOptions{Temperature: 0, MaxOutputTokens: 10})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if !strings.Contains(strings.ToUpper(reply), "OK") {
		t.Errorf("unexpected reply: %q", reply)
	}

	vector, err := client.EmbedQuery(ctx, "hospitalization coverage limit")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	if len(vector) == 0 {
		t.Error("empty embedding vector")
	}
}
