package naming

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/logger"
	"google.golang.org/genai"

	"funhub/internal/metrics"
)

// DefaultModel is the Gemini model asked for group names.
const DefaultModel = "gemini-3-flash-preview"

// contentGenerator is the part of *genai.Models the namer uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiNamer asks Gemini for creative group names.
type GeminiNamer struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

// NewGeminiNamer connects to the Gemini API with apiKey.
func NewGeminiNamer(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiNamer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGeminiNamer(client.Models, model, timeout), nil
}

func newGeminiNamer(m contentGenerator, model string, timeout time.Duration) *GeminiNamer {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiNamer{models: m, model: model, timeout: timeout}
}

// GroupNames returns up to count names for theme. Failures are logged and
// answered with placeholder names.
func (g *GeminiNamer) GroupNames(ctx context.Context, count int, theme string) []string {
	if count <= 0 {
		return []string{}
	}
	theme = ResolveTheme(theme)

	names, err := g.generate(ctx, count, theme)
	if err != nil {
		logger.Warningf("naming: gemini failed for %d names (theme %s), using placeholders: %v", count, theme, err)
		metrics.IncNamingFallback()
		return Placeholders(count)
	}
	if len(names) > count {
		names = names[:count]
	}
	return names
}

func (g *GeminiNamer) generate(ctx context.Context, count int, theme string) ([]string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	prompt := fmt.Sprintf("Generate %d creative group names based on the theme: %s. Return them as a JSON array of strings.", count, theme)
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, errors.New("empty response")
	}
	var names []string
	if err := json.Unmarshal([]byte(text), &names); err != nil {
		return nil, fmt.Errorf("decode names: %w", err)
	}
	return names, nil
}
