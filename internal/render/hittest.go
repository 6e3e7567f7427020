package render

import (
	"meme-creator/internal/overlay"
	"meme-creator/pkg/geometry"
)

// SelectionPadding is the gap between a selected overlay's text box and its
// dashed selection rectangle.
const SelectionPadding = 5

// TextBounds returns the approximate box of an overlay in intrinsic pixels.
// Text is centered on Position.X and sits on the baseline Position.Y; the box
// extends one font size above the baseline, standing in for the ascent.
func TextBounds(o overlay.TextOverlay, m Measurer) geometry.Rect {
	w := m.TextWidth(o.Text, o.FontFamily, o.FontSizePx)
	h := float64(o.FontSizePx)
	return geometry.Rect{
		X:      o.Position.X - w/2,
		Y:      o.Position.Y - h,
		Width:  w,
		Height: h,
	}
}

// SelectionRect returns the dashed rectangle drawn around a selected overlay.
func SelectionRect(o overlay.TextOverlay, m Measurer) geometry.Rect {
	return TextBounds(o, m).Pad(SelectionPadding, SelectionPadding)
}

// HitTest returns the index of the topmost overlay whose text box contains p.
// Later overlays paint on top, so the search runs from the end.
func HitTest(p geometry.Point2D, overlays []overlay.TextOverlay, m Measurer) (int, bool) {
	for i := len(overlays) - 1; i >= 0; i-- {
		if TextBounds(overlays[i], m).Contains(p) {
			return i, true
		}
	}
	return -1, false
}
