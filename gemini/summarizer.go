// Package gemini summarizes READMEs with Google Gemini.
package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/devharvest"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure Summarizer implements devharvest.Summarizer at compile time.
var _ devharvest.Summarizer = (*Summarizer)(nil)

// Summarizer implements devharvest.Summarizer using Google Gemini.
type Summarizer struct {
	client *genai.Client
	model  string
}

// NewSummarizer creates a new Summarizer. An empty model selects DefaultModel.
func NewSummarizer(client *genai.Client, model string) *Summarizer {
	if model == "" {
		model = DefaultModel
	}
	return &Summarizer{client: client, model: model}
}

// Model returns the configured model name.
func (s *Summarizer) Model() string {
	return s.model
}

// Summarize returns a short summary of readme.
func (s *Summarizer) Summarize(ctx context.Context, readme string) (string, error) {
	if strings.TrimSpace(readme) == "" {
		return "", devharvest.Errorf(devharvest.EINVALID, "readme required")
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: devharvest.SummaryPrompt(readme)}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", devharvest.Errorf(devharvest.EINTERNAL, "gemini returned nil result")
	}

	return strings.TrimSpace(result.Text()), nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.4)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You summarize software project READMEs for people browsing hackathon submissions. Reply with the summary only.",
			}},
		},
		Temperature: &temp,
	}
}
