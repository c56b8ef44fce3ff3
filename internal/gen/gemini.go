package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/punchamoorthee/deckops/internal/models"
)

const defaultModel = "gemini-2.0-flash"

const promptTemplate = `Write the content of a %d-slide presentation about "%s" by %s.
Respond with a JSON array only, one object per slide, in presentation order:
[{"title": "...", "content": "..."}]
The first slide introduces the topic and the last one concludes it.
Keep each content under 400 characters, plain text, newline-separated points.`

// Gemini generates slide content through the Google GenAI API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, topic, author string, count int) ([]models.Slide, error) {
	prompt := fmt.Sprintf(promptTemplate, count, topic, author)

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	slides, err := parseSlides(resp.Text())
	if err != nil {
		return nil, err
	}
	if len(slides) > count {
		slides = slides[:count]
	}
	return slides, nil
}

// parseSlides reads the model response as a JSON slide array, tolerating a
// fenced code block and a {"slides": [...]} wrapper.
func parseSlides(text string) ([]models.Slide, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var slides []models.Slide
	if err := json.Unmarshal([]byte(text), &slides); err != nil {
		var wrapper struct {
			Slides []models.Slide `json:"slides"`
		}
		if err := json.Unmarshal([]byte(text), &wrapper); err != nil {
			return nil, fmt.Errorf("%w: unparseable response", ErrGeneration)
		}
		slides = wrapper.Slides
	}

	out := slides[:0]
	for _, s := range slides {
		if strings.TrimSpace(s.Title) == "" {
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrGeneration)
	}
	return out, nil
}
