package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"imagerelay/internal/middleware"
	"imagerelay/internal/providers/image"
	"imagerelay/pkg/dataurl"
)

type generateRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
}

type generateResponse struct {
	Image string `json:"image,omitempty"`
	Error string `json:"error,omitempty"`
}

// Generate relays a prompt to the image provider and answers with a data URI.
// Failures are folded into the payload's error field and the transport status
// stays 200, so callers must inspect the body rather than the status code.
// The aspect ratio is threaded through to the provider instead of being fixed
// server-side; an absent value falls back to square.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.json(w, http.StatusOK, generateResponse{Error: "invalid payload"})
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		a.json(w, http.StatusOK, generateResponse{Error: "prompt is required"})
		return
	}

	aspect, err := image.ParseAspectRatio(req.AspectRatio)
	if err != nil {
		a.json(w, http.StatusOK, generateResponse{Error: err.Error()})
		return
	}

	requestID := middleware.RequestIDFromContext(r.Context())
	assets, err := a.Generator.Generate(r.Context(), image.GenerateRequest{
		Prompt:      prompt,
		AspectRatio: aspect,
		Quantity:    1,
		RequestID:   requestID,
	})
	if err != nil {
		a.Logger.Warn().
			Err(err).
			Str("request_id", requestID).
			Msg("generation failed")
		a.json(w, http.StatusOK, generateResponse{Error: err.Error()})
		return
	}
	if len(assets) == 0 || len(assets[0].Data) == 0 {
		a.json(w, http.StatusOK, generateResponse{Error: "API returned no image"})
		return
	}

	mime := assets[0].MIME
	if mime == "" {
		mime = "image/png"
	}
	a.json(w, http.StatusOK, generateResponse{Image: dataurl.Encode(mime, assets[0].Data)})
}
