package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiMatcher implements DescriptionMatcher using Google's Gemini models.
type GeminiMatcher struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiMatcher initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiMatcher(ctx context.Context, apiKey string) (*GeminiMatcher, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Flash keeps the per-report cost negligible.
	model := client.GenerativeModel("gemini-2.0-flash")

	// Force JSON response for structured parsing.
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.1)

	return &GeminiMatcher{client: client, model: model}, nil
}

// Close cleans up the Gemini client resources.
func (m *GeminiMatcher) Close() {
	m.client.Close()
}

type rankResult struct {
	Matches []int `json:"matches"`
}

// RankMatches asks the model which candidate descriptions plausibly describe
// the same physical item as the query.
func (m *GeminiMatcher) RankMatches(ctx context.Context, query string, candidates []string) ([]int, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString(`Role: you match lost-item reports from bus passengers against items handed in by conductors.

Respond with JSON only: {"matches": [<candidate indices, best match first, plausible matches only>]}.
An empty list is the correct answer when nothing matches.

Lost item report:
`)
	sb.WriteString(query)
	sb.WriteString("\n\nHanded-in items:\n")
	for i, c := range candidates {
		fmt.Fprintf(&sb, "%d: %s\n", i, c)
	}

	resp, err := m.model.GenerateContent(ctx, genai.Text(sb.String()))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	cleanJSON := cleanJSONString(responseText.String())
	var result rankResult
	if err := json.Unmarshal([]byte(cleanJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}

	// drop out-of-range indices the model may hallucinate
	var matches []int
	for _, i := range result.Matches {
		if i >= 0 && i < len(candidates) {
			matches = append(matches, i)
		}
	}
	return matches, nil
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
