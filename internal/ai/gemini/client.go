package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const (
	defaultModel = "gemini-2.5-flash"
	// defaultRatePerMin is the generation-call ceiling per rolling minute.
	// Calls beyond the ceiling block until the window frees up.
	defaultRatePerMin = 60
)

// Generator wraps the Google GenAI client to provide simple prompt-based
// interactions with a blocking per-minute rate ceiling.
type Generator struct {
	client    *genai.Client
	modelName string
	limiter   *rate.Limiter
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
// ratePerMin <= 0 selects the default ceiling.
func NewGenerator(ctx context.Context, apiKey, model string, ratePerMin int) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if ratePerMin <= 0 {
		ratePerMin = defaultRatePerMin
	}

	return &Generator{
		client:    client,
		modelName: model,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMin)), ratePerMin),
	}, nil
}

// Generate sends the prompt to Gemini and returns the first textual
// response. It blocks while the rate ceiling is exhausted.
func (g *Generator) Generate(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = maxTokens
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
