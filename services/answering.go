package services

import (
	"context"
	"fmt"
	"strings"

	"rag-compliance-assistant/internal/ai"
)

var answerOpts = ai.GenerateOptions{Temperature: 0.2, MaxOutputTokens: 180}

const answerPrompt = `
You are an expert assistant specialized in extracting answers from insurance policy documents.

STRICT RULES:
- Answer ONLY in English
- Use ONLY the information from CONTEXT
- Write 30–40 words
- Use formal policy language
- If context does not contain the answer, respond exactly:
  No relevant policy information found.

CONTEXT:
%s

QUESTION:
%s
`

// AnswerService asks the model for a constrained-format answer grounded in
// the retrieved context.
type AnswerService struct {
	llm TextGenerator
}

func NewAnswerService(llm TextGenerator) *AnswerService {
	return &AnswerService{llm: llm}
}

// Answer returns the raw trimmed model output. Word count and the literal
// no-information fallback are the model's responsibility; nothing is
// post-validated here.
func (s *AnswerService) Answer(ctx context.Context, question, contextText string) (string, error) {
	reply, err := s.llm.GenerateText(ctx, fmt.Sprintf(answerPrompt, contextText, question), answerOpts)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}
