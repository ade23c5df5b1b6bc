package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"imagerelay/internal/infra"
	"imagerelay/internal/providers/image"
	"imagerelay/pkg/dataurl"
)

type stubGenerator struct {
	assets  []image.Asset
	err     error
	calls   int
	lastReq image.GenerateRequest
}

func (s *stubGenerator) Generate(ctx context.Context, req image.GenerateRequest) ([]image.Asset, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.assets, nil
}

func newTestApp(gen image.Generator) *App {
	discard := zerolog.New(io.Discard)
	logger := infra.Logger(discard)
	return NewApp(&infra.Config{}, &logger, gen)
}

func postGenerate(t *testing.T, app *App, body string) (*httptest.ResponseRecorder, generateResponse) {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	app.Generate(w, r)

	var resp generateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return w, resp
}

func TestGenerateSuccessReturnsDataURI(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	gen := &stubGenerator{assets: []image.Asset{{MIME: "image/png", Data: payload}}}
	app := newTestApp(gen)

	w, resp := postGenerate(t, app, `{"prompt":"a red fox in snow","aspect_ratio":"1:1"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if resp.Error != "" {
		t.Fatalf("unexpected error: %q", resp.Error)
	}
	if !strings.HasPrefix(resp.Image, "data:image/png;base64,") {
		t.Fatalf("image is not a png data uri: %q", resp.Image)
	}
	mime, data, err := dataurl.Decode(resp.Image)
	if err != nil {
		t.Fatalf("decode data uri: %v", err)
	}
	if mime != "image/png" || !bytes.Equal(data, payload) {
		t.Fatalf("data uri round trip mismatch: %q %v", mime, data)
	}
	if gen.lastReq.Prompt != "a red fox in snow" {
		t.Fatalf("prompt not forwarded: %q", gen.lastReq.Prompt)
	}
	if gen.lastReq.Quantity != 1 {
		t.Fatalf("quantity = %d, want 1", gen.lastReq.Quantity)
	}
}

func TestGenerateThreadsAspectRatio(t *testing.T) {
	gen := &stubGenerator{assets: []image.Asset{{MIME: "image/png", Data: []byte{1}}}}
	app := newTestApp(gen)

	postGenerate(t, app, `{"prompt":"city at night","aspect_ratio":"wide"}`)

	if gen.lastReq.AspectRatio != image.AspectWide {
		t.Fatalf("aspect ratio = %q, want %q", gen.lastReq.AspectRatio, image.AspectWide)
	}
}

func TestGenerateDefaultsAspectRatioToSquare(t *testing.T) {
	gen := &stubGenerator{assets: []image.Asset{{MIME: "image/png", Data: []byte{1}}}}
	app := newTestApp(gen)

	postGenerate(t, app, `{"prompt":"city at night"}`)

	if gen.lastReq.AspectRatio != image.AspectSquare {
		t.Fatalf("aspect ratio = %q, want %q", gen.lastReq.AspectRatio, image.AspectSquare)
	}
}

func TestGenerateEmptyPromptSkipsProvider(t *testing.T) {
	gen := &stubGenerator{}
	app := newTestApp(gen)

	w, resp := postGenerate(t, app, `{"prompt":"   "}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even on failure", w.Code)
	}
	if resp.Error != "prompt is required" {
		t.Fatalf("error = %q", resp.Error)
	}
	if gen.calls != 0 {
		t.Fatalf("provider should not be called, got %d calls", gen.calls)
	}
}

func TestGenerateInvalidPayload(t *testing.T) {
	gen := &stubGenerator{}
	app := newTestApp(gen)

	w, resp := postGenerate(t, app, `{not json`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if resp.Error != "invalid payload" {
		t.Fatalf("error = %q", resp.Error)
	}
	if gen.calls != 0 {
		t.Fatalf("provider should not be called, got %d calls", gen.calls)
	}
}

func TestGenerateUnsupportedAspectRatio(t *testing.T) {
	gen := &stubGenerator{}
	app := newTestApp(gen)

	_, resp := postGenerate(t, app, `{"prompt":"ok","aspect_ratio":"4:3"}`)

	if !strings.Contains(resp.Error, "unsupported aspect ratio") {
		t.Fatalf("error = %q", resp.Error)
	}
	if gen.calls != 0 {
		t.Fatalf("provider should not be called, got %d calls", gen.calls)
	}
}

func TestGenerateNoImageFromProvider(t *testing.T) {
	gen := &stubGenerator{assets: nil}
	app := newTestApp(gen)

	w, resp := postGenerate(t, app, `{"prompt":"anything"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even on failure", w.Code)
	}
	if resp.Error != "API returned no image" {
		t.Fatalf("error = %q", resp.Error)
	}
	if resp.Image != "" {
		t.Fatalf("unexpected image: %q", resp.Image)
	}
}

func TestGenerateProviderFailureFoldedIntoPayload(t *testing.T) {
	gen := &stubGenerator{err: errors.New("imagen status 500: boom")}
	app := newTestApp(gen)

	w, resp := postGenerate(t, app, `{"prompt":"anything"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even on failure", w.Code)
	}
	if resp.Error != "imagen status 500: boom" {
		t.Fatalf("error = %q", resp.Error)
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(&stubGenerator{})
	w := httptest.NewRecorder()
	app.Health(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("body = %q", w.Body.String())
	}
}
