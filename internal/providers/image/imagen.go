package image

import (
	"context"

	"imagerelay/internal/providers/imagen"
)

// ImagenClient is the subset of the Imagen HTTP client used by the generator.
type ImagenClient interface {
	GenerateImage(ctx context.Context, req imagen.ImageRequest) (*imagen.ImageAsset, error)
}

// ImagenGenerator adapts the raw predict client to the Generator contract.
type ImagenGenerator struct {
	client ImagenClient
}

func NewImagenGenerator(client ImagenClient) *ImagenGenerator {
	return &ImagenGenerator{client: client}
}

func (g *ImagenGenerator) Generate(ctx context.Context, req GenerateRequest) ([]Asset, error) {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	asset, err := g.client.GenerateImage(ctx, imagen.ImageRequest{
		Prompt:      req.Prompt,
		AspectRatio: string(req.AspectRatio),
		SampleCount: quantity,
		RequestID:   req.RequestID,
	})
	if err != nil {
		return nil, err
	}
	return []Asset{{MIME: asset.MIME, Data: asset.Data}}, nil
}

var _ Generator = (*ImagenGenerator)(nil)
