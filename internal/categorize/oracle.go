package categorize

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const (
	// DefaultModelName is the default Gemini model used for classification.
	DefaultModelName = "gemini-2.5-flash"

	// oracleTimeout bounds a single classification call so a stuck model
	// can never hang the handler.
	oracleTimeout = 60 * time.Second
)

// Oracle is a pluggable text-completion service: one prompt in, the whole
// message content out. The categorization service treats it as a black box
// with the contract defined by buildPrompt/parseAssignments.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GeminiOracle is the Oracle implementation backed by the Gemini API.
// Credentials come from the environment (GEMINI_API_KEY or ADC).
type GeminiOracle struct {
	model string
}

// NewGeminiOracle creates a Gemini-backed oracle. An empty model name falls
// back to DefaultModelName.
func NewGeminiOracle(model string) *GeminiOracle {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiOracle{model: model}
}

// Complete sends the prompt as a single user turn and returns the raw text
// of the response.
func (o *GeminiOracle) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, oracleTimeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("Complete: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, o.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Complete: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("Complete: empty response from model")
	}
	return text, nil
}
