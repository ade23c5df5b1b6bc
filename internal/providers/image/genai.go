package image

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GenAIGenerator calls the provider through the official SDK. Unlike the relay
// path, the credential lives in the calling process, so this generator is only
// wired into tooling that already holds the key.
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

func NewGenAIGenerator(client *genai.Client, model string) *GenAIGenerator {
	return &GenAIGenerator{client: client, model: model}
}

func (g *GenAIGenerator) Generate(ctx context.Context, req GenerateRequest) ([]Asset, error) {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	config := &genai.GenerateImagesConfig{
		NumberOfImages: int32(quantity),
		AspectRatio:    string(req.AspectRatio),
		OutputMIMEType: "image/png",
	}

	resp, err := g.client.Models.GenerateImages(ctx, g.model, req.Prompt, config)
	if err != nil {
		return nil, fmt.Errorf("generate images: %w", err)
	}

	out := make([]Asset, 0, len(resp.GeneratedImages))
	for _, generated := range resp.GeneratedImages {
		if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			continue
		}
		mime := generated.Image.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		out = append(out, Asset{MIME: mime, Data: generated.Image.ImageBytes})
	}
	return out, nil
}

var _ Generator = (*GenAIGenerator)(nil)
