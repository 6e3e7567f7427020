// Package image loads template images from disk or the network and makes
// thumbnails for the template browser.
package image

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"meme-creator/internal/version"
	"meme-creator/pkg/geometry"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxImageBytes caps how much of a remote image is read.
const MaxImageBytes = 32 << 20

// ErrEmptyImage is returned for images without pixels.
var ErrEmptyImage = errors.New("image: no pixels")

// Picture is a decoded template image.
type Picture struct {
	Origin string      // file path or URL it was loaded from
	Format string      // decoder name: png, jpeg, gif, webp, tiff, bmp
	Image  image.Image // decoded pixels
}

// Width returns the image width in pixels.
func (p *Picture) Width() int {
	if p == nil || p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (p *Picture) Height() int {
	if p == nil || p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dy()
}

// Size returns the natural image size.
func (p *Picture) Size() geometry.Size {
	return geometry.NewSize(float64(p.Width()), float64(p.Height()))
}

// Decode reads an image in any registered format.
func Decode(r io.Reader, origin string) (*Picture, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", origin, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyImage, origin)
	}
	return &Picture{Origin: origin, Format: format, Image: img}, nil
}

// Load reads an image file.
func Load(path string) (*Picture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()
	return Decode(file, path)
}

// Fetch downloads and decodes the image at rawURL.
func Fetch(ctx context.Context, client *http.Client, rawURL string) (*Picture, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image %s: %s", rawURL, resp.Status)
	}
	return Decode(io.LimitReader(resp.Body, MaxImageBytes), rawURL)
}

// Open loads ref, which is either an http(s) URL, a file:// URL or a local path.
func Open(ctx context.Context, client *http.Client, ref string) (*Picture, error) {
	u, err := url.Parse(ref)
	if err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return Fetch(ctx, client, ref)
		case "file":
			return Load(u.Path)
		}
	}
	return Load(ref)
}

// Thumbnail scales img to fit inside maxW x maxH, preserving aspect ratio.
// Images already small enough are copied unscaled.
func Thumbnail(img image.Image, maxW, maxH int) *image.RGBA {
	b := img.Bounds()
	src := geometry.NewSize(float64(b.Dx()), float64(b.Dy()))
	fit := src.FitInside(geometry.NewSize(float64(maxW), float64(maxH)))
	w, h := int(fit.Width+0.5), int(fit.Height+0.5)
	if b.Dx() <= maxW && b.Dy() <= maxH {
		w, h = b.Dx(), b.Dy()
	}
	w, h = max(w, 1), max(h, 1)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
