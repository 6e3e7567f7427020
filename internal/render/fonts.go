// Package render paints overlays onto the editor surface and measures text with
// the same font faces it paints with.
package render

import (
	"fmt"
	"sync"

	"meme-creator/internal/overlay"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomonobold"
)

// familyFonts maps each font style to an embedded Go font. The editor never reads
// system fonts, so rendering is identical on every machine.
var familyFonts = map[overlay.FontFamily][]byte{
	overlay.FontImpact:        gobold.TTF,
	overlay.FontArial:         gomedium.TTF,
	overlay.FontComicSans:     gomediumitalic.TTF,
	overlay.FontHelvetica:     gomonobold.TTF,
	overlay.FontTimesNewRoman: gobolditalic.TTF,
}

// Measurer reports the advance width of text set in a family at a pixel size.
type Measurer interface {
	TextWidth(s string, family overlay.FontFamily, sizePx int) float64
}

type faceKey struct {
	family overlay.FontFamily
	size   int
}

// FontBook owns one font source per family and caches faces per size.
// It is safe for concurrent use.
type FontBook struct {
	sources map[overlay.FontFamily]*text.FontSource

	mu    sync.Mutex
	faces map[faceKey]text.Face
}

// NewFontBook parses the embedded font for every supported family.
func NewFontBook() (*FontBook, error) {
	fb := &FontBook{
		sources: make(map[overlay.FontFamily]*text.FontSource, len(familyFonts)),
		faces:   make(map[faceKey]text.Face),
	}
	for family, data := range familyFonts {
		src, err := text.NewFontSource(data)
		if err != nil {
			return nil, fmt.Errorf("render: load font %q: %w", family, err)
		}
		fb.sources[family] = src
	}
	return fb, nil
}

// Face returns the face for family at sizePx. Unknown families fall back to Impact
// and sizes are clamped to the overlay bounds.
func (fb *FontBook) Face(family overlay.FontFamily, sizePx int) text.Face {
	if !family.Valid() {
		family = overlay.FontImpact
	}
	key := faceKey{family: family, size: overlay.ClampFontSize(sizePx)}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	if f, ok := fb.faces[key]; ok {
		return f
	}
	// Faces are created at 72 DPI, so points equal pixels.
	f := fb.sources[key.family].Face(float64(key.size))
	fb.faces[key] = f
	return f
}

// TextWidth implements Measurer.
func (fb *FontBook) TextWidth(s string, family overlay.FontFamily, sizePx int) float64 {
	if s == "" {
		return 0
	}
	return fb.Face(family, sizePx).Advance(s)
}
