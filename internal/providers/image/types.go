package image

import (
	"context"
	"fmt"
	"strings"
)

// AspectRatio enumerates the shapes a generated image may take.
type AspectRatio string

const (
	AspectWide   AspectRatio = "16:9"
	AspectTall   AspectRatio = "9:16"
	AspectSquare AspectRatio = "1:1"
)

// DefaultAspectRatio is used when a caller does not select a shape.
const DefaultAspectRatio = AspectSquare

// ParseAspectRatio sanitizes free-form input into a supported ratio. Both the
// named forms (wide, tall, square) and the literal ratios are accepted; the
// empty string maps to the default.
func ParseAspectRatio(value string) (AspectRatio, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "square", "1:1":
		return AspectSquare, nil
	case "wide", "16:9":
		return AspectWide, nil
	case "tall", "9:16":
		return AspectTall, nil
	default:
		return "", fmt.Errorf("unsupported aspect ratio %q", value)
	}
}

// FileToken returns the ratio in a form safe for filenames, e.g. "16x9".
func (a AspectRatio) FileToken() string {
	return strings.ReplaceAll(string(a), ":", "x")
}

// GenerateRequest describes a normalized request passed to any image provider.
type GenerateRequest struct {
	Prompt      string
	AspectRatio AspectRatio
	Quantity    int
	RequestID   string
}

// Asset represents a generated image. Data holds decoded bytes.
type Asset struct {
	MIME string
	Data []byte
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]Asset, error)
}
