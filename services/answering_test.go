package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestAnswerBuildsPromptAndTrims(t *testing.T) {
	llm := &fakeLLM{reply: "\n The policy provides hospitalization coverage up to $50,000. \n"}
	svc := NewAnswerService(llm)

	got, err := svc.Answer(context.Background(), "What is the hospitalization limit?", "The policy covers hospitalization up to $50,000.")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got != "The policy provides hospitalization coverage up to $50,000." {
		t.Errorf("got %q, want trimmed model output", got)
	}

	if len(llm.prompts) != 1 {
		t.Fatalf("model called %d times, want 1", len(llm.prompts))
	}
	prompt := llm.prompts[0]
	for _, want := range []string{
		"The policy covers hospitalization up to $50,000.",
		"What is the hospitalization limit?",
		"No relevant policy information found.",
		"30–40 words",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestAnswerEmptyContextStillAsksModel(t *testing.T) {
	llm := &fakeLLM{reply: "No relevant policy information found."}
	svc := NewAnswerService(llm)

	got, err := svc.Answer(context.Background(), "What is covered?", "")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got != "No relevant policy information found." {
		t.Errorf("got %q", got)
	}
}

func TestAnswerPropagatesCallFailure(t *testing.T) {
	svc := NewAnswerService(&fakeLLM{err: errors.New("model down")})
	if _, err := svc.Answer(context.Background(), "q", "ctx"); err == nil {
		t.Error("expected error when the model call fails")
	}
}
