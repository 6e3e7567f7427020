// Package caption generates roast captions for a template and a target name.
// Remote generators are optional; every failure degrades to a local caption.
package caption

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"meme-creator/internal/logging"
)

// ErrCaptionFailure wraps every generator failure.
var ErrCaptionFailure = errors.New("caption: generation failed")

// ErrNoTarget is returned by Request.Validate when the target name is blank.
var ErrNoTarget = errors.New("caption: target name is required")

// Intensity is how hard the roast hits.
type Intensity string

const (
	Mild   Intensity = "mild"
	Medium Intensity = "medium"
	Savage Intensity = "savage"
)

// Intensities lists the intensities in display order.
var Intensities = []Intensity{Mild, Medium, Savage}

// Valid reports whether i is a known intensity.
func (i Intensity) Valid() bool {
	return i == Mild || i == Medium || i == Savage
}

// Temperature is the sampling temperature used for remote generation.
func (i Intensity) Temperature() float64 {
	switch i {
	case Savage:
		return 0.9
	case Medium:
		return 0.7
	}
	return 0.5
}

// Style is the tone of the roast.
type Style string

const (
	Funny     Style = "funny"
	Sarcastic Style = "sarcastic"
	Clever    Style = "clever"
)

// Styles lists the styles in display order.
var Styles = []Style{Funny, Sarcastic, Clever}

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	return s == Funny || s == Sarcastic || s == Clever
}

// Request describes the caption to generate.
type Request struct {
	Template  string
	Target    string
	Intensity Intensity
	Style     Style
}

// Normalized trims names and replaces unknown options with medium/funny.
func (r Request) Normalized() Request {
	r.Template = strings.TrimSpace(r.Template)
	r.Target = strings.TrimSpace(r.Target)
	if !r.Intensity.Valid() {
		r.Intensity = Medium
	}
	if !r.Style.Valid() {
		r.Style = Funny
	}
	return r
}

// Validate reports a missing target name.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Target) == "" {
		return ErrNoTarget
	}
	return nil
}

// Generator produces a caption or fails.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Provider always answers with a caption: the generator's when it succeeds,
// the fallback's otherwise.
type Provider struct {
	gen      Generator
	fallback *Fallback
}

// NewProvider returns a provider that tries gen first. A nil gen means local
// captions only.
func NewProvider(gen Generator, fallback *Fallback) *Provider {
	if fallback == nil {
		fallback = NewFallback(nil)
	}
	return &Provider{gen: gen, fallback: fallback}
}

// Caption implements the caption boundary. It never fails.
func (p *Provider) Caption(ctx context.Context, req Request) string {
	req = req.Normalized()
	if p.gen != nil {
		text, err := p.gen.Generate(ctx, req)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		if err == nil {
			err = fmt.Errorf("%w: empty caption", ErrCaptionFailure)
		}
		logging.Logger().Warn("caption: using fallback",
			slog.String("template", req.Template), slog.Any("err", err))
	}
	return p.fallback.Caption(req)
}

func prompt(req Request) string {
	return fmt.Sprintf("Create a %s %s roast caption for the %q meme about a person named %s.",
		req.Style, req.Intensity, req.Template, req.Target)
}
