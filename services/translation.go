package services

import (
	"context"
	"fmt"
	"strings"

	"rag-compliance-assistant/internal/ai"
)

// Languages the service detects and answers in.
const (
	LangEnglish = "English"
	LangHindi   = "Hindi"
	LangMarathi = "Marathi"
)

// TextGenerator is a single prompt-in, text-out model call.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error)
}

var translationOpts = ai.GenerateOptions{Temperature: 0.1, MaxOutputTokens: 180}

const detectLanguagePrompt = `Detect the language of this text.
Respond with one word only:
English, Hindi, or Marathi.

TEXT:
%s`

// TranslationService detects question language and translates questions and
// answers between English and the supported languages.
type TranslationService struct {
	llm TextGenerator
}

func NewTranslationService(llm TextGenerator) *TranslationService {
	return &TranslationService{llm: llm}
}

// DetectLanguage classifies text as English, Hindi or Marathi. Ambiguous or
// malformed model replies fall back to English; only the model call itself
// failing is an error.
func (s *TranslationService) DetectLanguage(ctx context.Context, text string) (string, error) {
	reply, err := s.llm.GenerateText(ctx, fmt.Sprintf(detectLanguagePrompt, text), translationOpts)
	if err != nil {
		return "", err
	}
	return parseDetectedLanguage(reply), nil
}

func parseDetectedLanguage(reply string) string {
	reply = strings.ToLower(reply)
	if strings.Contains(reply, "hindi") {
		return LangHindi
	}
	if strings.Contains(reply, "marathi") {
		return LangMarathi
	}
	return LangEnglish
}

// TranslateToEnglish translates text with a one-shot prompt.
func (s *TranslationService) TranslateToEnglish(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf("Translate the following text into English only:\n%s", text)
	reply, err := s.llm.GenerateText(ctx, prompt, translationOpts)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// TranslateAnswer returns english unchanged for English targets; otherwise it
// produces a bilingual block with the target-language translation first.
func (s *TranslationService) TranslateAnswer(ctx context.Context, english, targetLanguage string) (string, error) {
	if targetLanguage == LangEnglish {
		return english, nil
	}

	prompt := fmt.Sprintf("Translate the following English text into %s:\n%s", targetLanguage, english)
	reply, err := s.llm.GenerateText(ctx, prompt, translationOpts)
	if err != nil {
		return "", err
	}
	translated := strings.TrimSpace(reply)

	return fmt.Sprintf("🌐 **%s Translation:**\n%s\n\n🇬🇧 **English Version:**\n%s",
		targetLanguage, translated, english), nil
}
