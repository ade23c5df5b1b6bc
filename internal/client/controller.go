// Package client implements the form-facing controller: it owns the mutable
// per-session state behind the generation form, validates input locally,
// dispatches requests to a relay, and saves download artifacts.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"imagerelay/internal/providers/image"
	"imagerelay/internal/storage"
	"imagerelay/pkg/dataurl"
)

// Validation and decode failures surfaced by the controller.
var (
	ErrEmptyPrompt      = errors.New("prompt is empty")
	ErrInvalidImageType = errors.New("reference file is not an image")
	ErrImageTooLarge    = errors.New("reference image exceeds 5 MiB")
	ErrDecodeFailure    = errors.New("image payload could not be decoded")
)

// MaxReferenceImageBytes caps the size of the advisory reference image.
const MaxReferenceImageBytes = 5 << 20

// errorDisplayLimit bounds how much failure text is surfaced to the user.
const errorDisplayLimit = 150

const artifactPrefix = "generated"

// Phase tracks where the current submission sits in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseFailed
)

// Relay dispatches a generation request and returns the resulting data URI.
type Relay interface {
	Generate(ctx context.Context, prompt string, aspect image.AspectRatio) (string, error)
}

// ReferenceImage is a locally attached file shown alongside the form. It is
// never part of the relayed request.
type ReferenceImage struct {
	Name string
	MIME string
	Size int64
}

// Controller owns the session state. State lives for one session only;
// nothing is persisted across sessions.
type Controller struct {
	relay Relay
	store *storage.FileStore
	now   func() time.Time

	mu        sync.Mutex
	prompt    string
	aspect    image.AspectRatio
	reference *ReferenceImage
	phase     Phase
	loading   bool
	lastError string
	result    string // data URI of the last successful generation
	seq       uint64
}

func NewController(relay Relay, store *storage.FileStore) *Controller {
	return &Controller{
		relay:  relay,
		store:  store,
		aspect: image.DefaultAspectRatio,
		now:    time.Now,
	}
}

// UpdatePrompt replaces the prompt text. Validation happens in Submit, not
// here.
func (c *Controller) UpdatePrompt(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompt = text
	c.phase = PhaseIdle
}

// SelectAspectRatio replaces the selected shape. Only the enumerated ratios
// are accepted.
func (c *Controller) SelectAspectRatio(value string) error {
	aspect, err := image.ParseAspectRatio(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.phase = PhaseIdle
	return nil
}

// AttachReferenceImage validates and stores a local file for advisory display.
// A rejected file leaves any previously stored reference untouched.
func (c *Controller) AttachReferenceImage(ref ReferenceImage) error {
	if !strings.HasPrefix(ref.MIME, "image/") {
		return ErrInvalidImageType
	}
	if ref.Size > MaxReferenceImageBytes {
		return ErrImageTooLarge
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := ref
	c.reference = &stored
	return nil
}

// Submit dispatches the current prompt and aspect ratio to the relay. A blank
// prompt fails fast without any network activity. Each dispatch is tagged with
// a sequence number; the response only lands if no newer submission started in
// the meantime, so an overlapping submission cannot be overwritten by a stale
// response.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	prompt := strings.TrimSpace(c.prompt)
	if prompt == "" {
		c.mu.Unlock()
		return ErrEmptyPrompt
	}
	c.seq++
	id := c.seq
	c.loading = true
	c.phase = PhaseLoading
	c.lastError = ""
	c.result = ""
	aspect := c.aspect
	c.mu.Unlock()

	uri, err := c.relay.Generate(ctx, prompt, aspect)

	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.seq {
		// Superseded by a newer submission; drop this response.
		return err
	}
	c.loading = false
	if err != nil {
		c.lastError = truncateError(err.Error())
		c.phase = PhaseFailed
		return err
	}
	c.result = uri
	c.phase = PhaseSuccess
	return nil
}

// Download decodes the held result and writes it to the artifact store,
// returning the written path. Without a prior successful result it does
// nothing and reports no error.
func (c *Controller) Download(ctx context.Context) (string, error) {
	c.mu.Lock()
	uri := c.result
	aspect := c.aspect
	c.mu.Unlock()

	if uri == "" {
		return "", nil
	}
	_, data, err := dataurl.Decode(uri)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	name := fmt.Sprintf("%s-%s-%s.png", artifactPrefix, aspect.FileToken(), c.now().Format("20060102-150405"))
	return c.store.Write(ctx, name, data)
}

// Loading reports whether a submission is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// State returns the current lifecycle phase.
func (c *Controller) State() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// LastError returns the truncated message of the last failed submission.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// Result returns the data URI of the last successful generation, or "".
func (c *Controller) Result() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Reference returns the currently attached reference image, if any.
func (c *Controller) Reference() *ReferenceImage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reference
}

func truncateError(msg string) string {
	runes := []rune(msg)
	if len(runes) <= errorDisplayLimit {
		return msg
	}
	return string(runes[:errorDisplayLimit]) + "…"
}
