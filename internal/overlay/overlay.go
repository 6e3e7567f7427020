// Package overlay defines text overlays and the ordered overlay store of an editor session.
package overlay

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"meme-creator/pkg/colorutil"
	"meme-creator/pkg/geometry"
)

// Font size bounds in pixels.
const (
	MinFontSize     = 12
	MaxFontSize     = 72
	DefaultFontSize = 32
)

// DuplicateOffset is the intrinsic-pixel offset applied to a duplicated overlay.
var DuplicateOffset = geometry.Point2D{X: 20, Y: 20}

// FontFamily names one of the supported font styles.
type FontFamily string

const (
	FontImpact        FontFamily = "Impact"
	FontArial         FontFamily = "Arial"
	FontComicSans     FontFamily = "Comic Sans MS"
	FontHelvetica     FontFamily = "Helvetica"
	FontTimesNewRoman FontFamily = "Times New Roman"
)

// FontFamilies lists the supported font styles in display order.
var FontFamilies = []FontFamily{
	FontImpact,
	FontArial,
	FontComicSans,
	FontHelvetica,
	FontTimesNewRoman,
}

// Valid reports whether f is one of FontFamilies.
func (f FontFamily) Valid() bool {
	for _, known := range FontFamilies {
		if f == known {
			return true
		}
	}
	return false
}

func (f FontFamily) String() string { return string(f) }

// Validation errors.
var (
	ErrEmptyText  = errors.New("overlay: text is empty")
	ErrFontSize   = errors.New("overlay: font size out of range")
	ErrFontFamily = errors.New("overlay: unknown font family")
)

// ClampFontSize bounds size to [MinFontSize, MaxFontSize].
func ClampFontSize(size int) int {
	if size < MinFontSize {
		return MinFontSize
	}
	if size > MaxFontSize {
		return MaxFontSize
	}
	return size
}

// TextOverlay is one positioned, styled text element drawn atop the base image.
// Position is in intrinsic pixels: X is the horizontal center, Y the baseline.
type TextOverlay struct {
	Text         string
	Position     geometry.Point2D
	FillColor    color.NRGBA
	OutlineColor color.NRGBA
	FontSizePx   int
	FontFamily   FontFamily
}

// Validate checks the overlay's invariants.
func (o TextOverlay) Validate() error {
	if strings.TrimSpace(o.Text) == "" {
		return ErrEmptyText
	}
	if o.FontSizePx < MinFontSize || o.FontSizePx > MaxFontSize {
		return fmt.Errorf("%w: %d", ErrFontSize, o.FontSizePx)
	}
	if !o.FontFamily.Valid() {
		return fmt.Errorf("%w: %q", ErrFontFamily, o.FontFamily)
	}
	return nil
}

// StrokeWidth returns the outline stroke width used when painting the overlay.
func (o TextOverlay) StrokeWidth() float64 {
	return float64(o.FontSizePx) / 15
}

// Draft holds the in-progress text and style values pending application
// to a new overlay or to the selected one.
type Draft struct {
	Text         string
	FillColor    color.NRGBA
	OutlineColor color.NRGBA
	FontSizePx   int
	FontFamily   FontFamily
}

// DefaultDraft returns white Impact text with a black outline at the default size.
func DefaultDraft() Draft {
	return Draft{
		FillColor:    colorutil.White,
		OutlineColor: colorutil.Black,
		FontSizePx:   DefaultFontSize,
		FontFamily:   FontImpact,
	}
}

// DraftFrom loads an overlay's text and style into a draft.
func DraftFrom(o TextOverlay) Draft {
	return Draft{
		Text:         o.Text,
		FillColor:    o.FillColor,
		OutlineColor: o.OutlineColor,
		FontSizePx:   o.FontSizePx,
		FontFamily:   o.FontFamily,
	}
}

// HasText reports whether the draft text is non-blank.
func (d Draft) HasText() bool {
	return strings.TrimSpace(d.Text) != ""
}

// Normalized returns the draft with the font size clamped and an unknown family
// replaced by Impact.
func (d Draft) Normalized() Draft {
	d.FontSizePx = ClampFontSize(d.FontSizePx)
	if !d.FontFamily.Valid() {
		d.FontFamily = FontImpact
	}
	return d
}

// At returns a new overlay with the draft's text and style placed at p.
func (d Draft) At(p geometry.Point2D) TextOverlay {
	d = d.Normalized()
	return TextOverlay{
		Text:         d.Text,
		Position:     p,
		FillColor:    d.FillColor,
		OutlineColor: d.OutlineColor,
		FontSizePx:   d.FontSizePx,
		FontFamily:   d.FontFamily,
	}
}

// Patch describes a partial update of an overlay. Nil fields are left unchanged.
type Patch struct {
	Text         *string
	Position     *geometry.Point2D
	FillColor    *color.NRGBA
	OutlineColor *color.NRGBA
	FontSizePx   *int
	FontFamily   *FontFamily
}

// StylePatch returns a patch that overwrites text and style from the draft
// and leaves the position untouched.
func StylePatch(d Draft) Patch {
	d = d.Normalized()
	return Patch{
		Text:         &d.Text,
		FillColor:    &d.FillColor,
		OutlineColor: &d.OutlineColor,
		FontSizePx:   &d.FontSizePx,
		FontFamily:   &d.FontFamily,
	}
}

// MovePatch returns a patch that only changes the position.
func MovePatch(p geometry.Point2D) Patch {
	return Patch{Position: &p}
}

// Apply returns o with the patch's non-nil fields applied.
func (p Patch) Apply(o TextOverlay) TextOverlay {
	if p.Text != nil {
		o.Text = *p.Text
	}
	if p.Position != nil {
		o.Position = *p.Position
	}
	if p.FillColor != nil {
		o.FillColor = *p.FillColor
	}
	if p.OutlineColor != nil {
		o.OutlineColor = *p.OutlineColor
	}
	if p.FontSizePx != nil {
		o.FontSizePx = *p.FontSizePx
	}
	if p.FontFamily != nil {
		o.FontFamily = *p.FontFamily
	}
	return o
}
