package render

import (
	"image"
	"io"
	"sync"

	"meme-creator/pkg/geometry"

	"github.com/gogpu/gg"
)

// BaseImage is a decoded template image ready to be drawn at its native size.
type BaseImage struct {
	buf  *gg.ImageBuf
	size geometry.Size
}

// NewBaseImage converts a decoded image into a drawable base. It returns nil for
// a nil or empty image.
func NewBaseImage(img image.Image) *BaseImage {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil
	}
	return &BaseImage{
		buf:  gg.ImageBufFromImage(img),
		size: geometry.NewSize(float64(b.Dx()), float64(b.Dy())),
	}
}

// Size returns the intrinsic pixel size of the base image.
func (b *BaseImage) Size() geometry.Size {
	if b == nil {
		return geometry.Size{}
	}
	return b.size
}

// Surface is the raster the compositor paints into. Its pixel grid always
// matches the intrinsic size of the last base image painted.
type Surface struct {
	mu    sync.Mutex
	dc    *gg.Context
	ready bool
}

// NewSurface returns an empty surface. It has no pixels until the first Draw.
func NewSurface() *Surface {
	return &Surface{}
}

// Ready reports whether a frame has been painted.
func (s *Surface) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Size returns the surface size in pixels.
func (s *Surface) Size() geometry.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dc == nil {
		return geometry.Size{}
	}
	return geometry.NewSize(float64(s.dc.Width()), float64(s.dc.Height()))
}

// Image returns a snapshot of the surface pixels, or nil before the first frame.
func (s *Surface) Image() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	return s.dc.Image()
}

// EncodePNG writes the current surface as PNG at intrinsic resolution.
func (s *Surface) EncodePNG(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrImageNotReady
	}
	return s.dc.EncodePNG(w)
}

// Close releases the underlying context.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = false
	if s.dc == nil {
		return nil
	}
	err := s.dc.Close()
	s.dc = nil
	return err
}

// prepare sizes the context for a frame and clears it. The caller holds mu.
func (s *Surface) prepare(w, h int) error {
	if s.dc == nil {
		s.dc = gg.NewContext(w, h)
	} else if err := s.dc.Resize(w, h); err != nil {
		return err
	}
	s.dc.ClearDash()
	s.dc.Clear()
	return nil
}
