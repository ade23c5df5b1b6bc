package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"imagerelay/internal/providers/image"
	"imagerelay/pkg/dataurl"
)

// HTTPRelay talks to the relay server's /generate endpoint. The relay folds
// failures into the response payload and always answers 200, so the body's
// error field is inspected rather than the transport status.
type HTTPRelay struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPRelay(baseURL string, httpClient *http.Client) *HTTPRelay {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &HTTPRelay{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

type relayRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
}

type relayResponse struct {
	Image string `json:"image"`
	Error string `json:"error"`
}

func (r *HTTPRelay) Generate(ctx context.Context, prompt string, aspect image.AspectRatio) (string, error) {
	body, err := json.Marshal(relayRequest{Prompt: prompt, AspectRatio: string(aspect)})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call relay: %w", err)
	}
	defer resp.Body.Close()

	var out relayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode relay response: %w", err)
	}
	if out.Error != "" {
		return "", errors.New(out.Error)
	}
	if out.Image == "" {
		return "", errors.New("relay returned no image")
	}
	return out.Image, nil
}

var _ Relay = (*HTTPRelay)(nil)

// GeneratorRelay adapts an image.Generator to the Relay contract so the
// controller can drive a provider directly, bypassing the relay server. In
// this mode the provider credential is available to the calling process, a
// materially different trust boundary than the HTTP relay.
type GeneratorRelay struct {
	generator image.Generator
}

func NewGeneratorRelay(generator image.Generator) *GeneratorRelay {
	return &GeneratorRelay{generator: generator}
}

func (g *GeneratorRelay) Generate(ctx context.Context, prompt string, aspect image.AspectRatio) (string, error) {
	assets, err := g.generator.Generate(ctx, image.GenerateRequest{
		Prompt:      prompt,
		AspectRatio: aspect,
		Quantity:    1,
	})
	if err != nil {
		return "", err
	}
	if len(assets) == 0 || len(assets[0].Data) == 0 {
		return "", errors.New("API returned no image")
	}
	mime := assets[0].MIME
	if mime == "" {
		mime = "image/png"
	}
	return dataurl.Encode(mime, assets[0].Data), nil
}

var _ Relay = (*GeneratorRelay)(nil)
