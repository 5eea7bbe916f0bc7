package genimage

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// DefaultModelName is the image-capable Gemini model used unless overridden
// via the GEMINI_MODEL environment variable.
const DefaultModelName = "gemini-2.5-flash-image"

// GetModelName returns the Gemini model to use, resolved from:
// 1. GEMINI_MODEL environment variable (if set)
// 2. Default: gemini-2.5-flash-image
func GetModelName() string {
	if env := os.Getenv("GEMINI_MODEL"); env != "" {
		return env
	}
	return DefaultModelName
}

// NewClient creates a Gemini API client for the given key.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return client, nil
}

// GeminiGenerator calls the Gemini API for real image generation.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator on an existing client. An empty
// model resolves via GetModelName.
func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	if model == "" {
		model = GetModelName()
	}
	return &GeminiGenerator{client: client, model: model}
}

// GenerateOne issues a single generateContent call with an image-output
// directive carrying the aspect ratio, and extracts the first image-bearing
// part of the response. A response with no such part yields ErrNoImage.
func (g *GeminiGenerator) GenerateOne(ctx context.Context, call Call) (*Image, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
		ImageConfig:        &genai.ImageConfig{AspectRatio: call.AspectRatio},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(call.Prompt), config)
	if err != nil {
		return nil, fmt.Errorf("generateContent: %w", err)
	}

	img := firstImagePart(resp)
	if img == nil {
		log.Warn().
			Str("model", g.model).
			Int("variation", call.Index+1).
			Msg("Response carried no image part")
		return nil, ErrNoImage
	}
	return img, nil
}

// firstImagePart scans the first candidate for inline image data. The model
// may interleave text parts (safety notes, captions) before the image, so the
// whole part list is walked. A missing mime type defaults to image/png.
func firstImagePart(resp *genai.GenerateContentResponse) *Image {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mime := part.InlineData.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		return &Image{MIMEType: mime, Data: part.InlineData.Data}
	}
	return nil
}
