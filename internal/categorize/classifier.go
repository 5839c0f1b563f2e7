// Package categorize assigns spending categories to normalized merchants
// using a layered strategy: exact cache lookup, then ordered keyword rules,
// then an optional AI fallback.
package categorize

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Classifier resolves a merchant key to one of the given category labels.
// Implementations may call external services; the engine wraps every call in
// a timeout and a concurrency bound.
type Classifier interface {
	Classify(ctx context.Context, merchantKey string, labels []string) (string, error)
}

// GeminiClassifier asks Gemini to pick one label for a merchant. Responses
// outside the label set are handled by the engine, not here.
type GeminiClassifier struct {
	client *genai.Client
	model  string
}

// NewGeminiClassifier creates the client using ambient credentials
// (GEMINI_API_KEY or application default credentials).
func NewGeminiClassifier(ctx context.Context, model string) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("categorize: create genai client: %w", err)
	}
	return &GeminiClassifier{client: client, model: model}, nil
}

// Classify sends a single-label classification prompt for one merchant.
func (g *GeminiClassifier) Classify(ctx context.Context, merchantKey string, labels []string) (string, error) {
	prompt := "You are a spending category classifier for bank and wallet SMS transactions.\n\n" +
		"Task:\n" +
		"- Classify the merchant below into exactly one of the allowed categories.\n" +
		"- The merchant name may be English, Arabic, or a mix, and may contain bank noise.\n\n" +
		"Allowed categories:\n- " + strings.Join(labels, "\n- ") + "\n\n" +
		"Merchant: " + merchantKey + "\n\n" +
		"Return ONLY the category name, exactly as listed.\n" +
		"Do NOT wrap the response in code fences.\n" +
		"Do NOT add explanations or punctuation.\n"

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("categorize: generate content: %w", err)
	}
	raw := resp.Text()
	if raw == "" {
		return "", fmt.Errorf("categorize: empty response from model")
	}
	return cleanModelLabel(raw), nil
}

// cleanModelLabel strips Markdown fences, quotes and surrounding chatter the
// model sometimes adds despite instructions, keeping the first non-empty line.
func cleanModelLabel(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, "\"'`")
		line = strings.TrimSuffix(line, ".")
		if line != "" {
			return line
		}
	}
	return ""
}
