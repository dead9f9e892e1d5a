package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// GenerateOptions control a single text generation call.
type GenerateOptions struct {
	Temperature     float32
	MaxOutputTokens int32
}

// Client wraps the Gemini SDK with a circuit breaker and a client-side rate
// limiter shared by generation and embedding calls. It is safe for concurrent
// use and meant to be constructed once at startup.
type Client struct {
	genai      *genai.Client
	model      string
	embedModel string
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
}

func NewClient(ctx context.Context, apiKey, model, embedModel string, rpm int) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing Gemini API key")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})

	if rpm <= 0 {
		rpm = 60
	}
	// RPM limit with some buffer
	limiter := rate.NewLimiter(rate.Limit(float64(rpm)*0.9/60.0), rpm/10+1)

	return &Client{
		genai:      client,
		model:      model,
		embedModel: embedModel,
		breaker:    breaker,
		limiter:    limiter,
	}, nil
}

// GenerateText sends a single prompt and returns the concatenated text parts
// of the reply. An empty reply is returned as-is, not as an error.
func (c *Client) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.generate_text")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", c.model),
		attribute.Int("gemini.prompt_chars", len(prompt)),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		model := c.genai.GenerativeModel(c.model)
		model.SetTemperature(opts.Temperature)
		if opts.MaxOutputTokens > 0 {
			model.SetMaxOutputTokens(opts.MaxOutputTokens)
		}
		return model.GenerateContent(ctx, genai.Text(prompt))
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := responseText(result.(*genai.GenerateContentResponse))
	span.SetAttributes(attribute.Int("gemini.response_chars", len(text)))
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}

// Close releases the underlying SDK client.
func (c *Client) Close() error {
	if c.genai != nil {
		return c.genai.Close()
	}
	return nil
}
