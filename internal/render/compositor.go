package render

import (
	"errors"
	"log/slog"
	"math"

	"meme-creator/internal/logging"
	"meme-creator/internal/overlay"
	"meme-creator/pkg/colorutil"

	"github.com/gogpu/gg"
)

// ErrImageNotReady is returned when reading a surface that has never been painted.
var ErrImageNotReady = errors.New("render: surface not ready")

const (
	selectionLineWidth = 2
	outlineSteps       = 16
)

var selectionDash = []float64{5, 3}

// Frame is everything the compositor needs to paint one picture.
type Frame struct {
	Base     *BaseImage
	Overlays []overlay.TextOverlay
	Selected int // -1 for none
	Dragging bool
}

// Compositor paints frames using a shared font book.
type Compositor struct {
	fonts *FontBook
}

// NewCompositor returns a compositor that paints and measures with fonts.
func NewCompositor(fonts *FontBook) *Compositor {
	return &Compositor{fonts: fonts}
}

// Fonts returns the font book, which is also the compositor's Measurer.
func (c *Compositor) Fonts() *FontBook {
	return c.fonts
}

// Draw repaints the surface from scratch: base image at native size, overlays in
// order, then the selection rectangle unless a drag is in progress. It returns
// false and leaves the surface untouched when no base image is loaded.
func (c *Compositor) Draw(s *Surface, f Frame) bool {
	if f.Base == nil {
		return false
	}
	size := f.Base.Size()
	w, h := int(size.Width), int(size.Height)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.prepare(w, h); err != nil {
		logging.Logger().Warn("render: prepare surface", slog.Int("w", w), slog.Int("h", h), slog.Any("err", err))
		return false
	}
	dc := s.dc

	dc.DrawImageEx(f.Base.buf, gg.DrawImageOptions{
		DstWidth:      size.Width,
		DstHeight:     size.Height,
		Interpolation: gg.InterpBilinear,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})

	for _, o := range f.Overlays {
		c.paintOverlay(dc, o)
	}

	if !f.Dragging && f.Selected >= 0 && f.Selected < len(f.Overlays) {
		r := SelectionRect(f.Overlays[f.Selected], c.fonts)
		dc.SetColor(colorutil.Selection)
		dc.SetLineWidth(selectionLineWidth)
		dc.SetDash(selectionDash...)
		dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		if err := dc.Stroke(); err != nil {
			logging.Logger().Warn("render: stroke selection", slog.Any("err", err))
		}
		dc.ClearDash()
	}

	s.ready = true
	return true
}

// paintOverlay draws the outline first and the fill on top. The outline is a ring
// of offset copies whose radius is half the stroke width.
func (c *Compositor) paintOverlay(dc *gg.Context, o overlay.TextOverlay) {
	if o.Text == "" {
		return
	}
	dc.SetFont(c.fonts.Face(o.FontFamily, o.FontSizePx))
	x := o.Position.X - c.fonts.TextWidth(o.Text, o.FontFamily, o.FontSizePx)/2
	y := o.Position.Y

	radius := o.StrokeWidth() / 2
	if radius > 0 {
		dc.SetColor(o.OutlineColor)
		for i := range outlineSteps {
			a := 2 * math.Pi * float64(i) / outlineSteps
			dc.DrawString(o.Text, x+radius*math.Cos(a), y+radius*math.Sin(a))
		}
	}
	dc.SetColor(o.FillColor)
	dc.DrawString(o.Text, x, y)
}
