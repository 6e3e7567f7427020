// Package colorutil provides shared color utilities for the meme editor.
package colorutil

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Common colors used throughout the application.
var (
	Black     = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White     = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Selection = color.NRGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 255} // selection outline blue
)

// ErrBadHex is returned when a string is not a #rgb or #rrggbb color.
var ErrBadHex = errors.New("colorutil: invalid hex color")

// ParseHex parses "#rrggbb", "rrggbb", "#rgb" or "rgb" into an opaque NRGBA color.
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadHex, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadHex, s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// MustParseHex is like ParseHex but panics on error. Intended for package-level constants.
func MustParseHex(s string) color.NRGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats a color as lowercase "#rrggbb", dropping alpha.
func Hex(c color.Color) string {
	n := ToNRGBA(c)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// ToNRGBA converts any color to non-premultiplied 8-bit RGBA.
func ToNRGBA(c color.Color) color.NRGBA {
	if c == nil {
		return color.NRGBA{}
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}
