// Package canvas provides the editor canvas widget: it shows the composited
// surface fitted into the available space and turns taps and drags into
// editor controller calls.
package canvas

import (
	"image/color"
	"log/slog"

	"meme-creator/internal/coords"
	"meme-creator/internal/editor"
	"meme-creator/internal/logging"
	"meme-creator/internal/overlay"
	"meme-creator/internal/render"
	"meme-creator/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// EditorCanvas displays an editor session.
type EditorCanvas struct {
	widget.BaseWidget

	ctrl *editor.Controller

	image *fynecanvas.Image
	live  *fynecanvas.Text // moves with the pointer while dragging
	hint  *fynecanvas.Text

	// Drag gesture state
	dragActive  bool
	dragIgnored bool
	dragOffset  geometry.Point2D

	onError func(error)
}

// NewEditorCanvas creates a canvas bound to ctrl.
func NewEditorCanvas(ctrl *editor.Controller) *EditorCanvas {
	ec := &EditorCanvas{ctrl: ctrl}

	ec.image = &fynecanvas.Image{
		FillMode:  fynecanvas.ImageFillStretch,
		ScaleMode: fynecanvas.ImageScaleSmooth,
	}
	ec.live = fynecanvas.NewText("", color.White)
	ec.live.TextStyle = fyne.TextStyle{Bold: true}
	ec.live.Hide()
	ec.hint = fynecanvas.NewText("Loading image...", color.Gray{Y: 0x80})
	ec.hint.Alignment = fyne.TextAlignCenter

	ctrl.On(editor.EventRedrawn, func(interface{}) {
		fyne.Do(ec.refreshSurface)
	})
	ctrl.On(editor.EventLoaded, func(interface{}) {
		fyne.Do(func() {
			ec.hint.Hide()
			ec.Refresh()
		})
	})

	ec.ExtendBaseWidget(ec)
	return ec
}

// SetOnError sets the callback for errors raised by pointer actions.
func (ec *EditorCanvas) SetOnError(fn func(error)) {
	ec.onError = fn
}

// DisplayBox returns the on-screen rectangle the surface is drawn into, in
// widget coordinates. It is recomputed from the current widget size.
func (ec *EditorCanvas) DisplayBox() geometry.Rect {
	size := ec.ctrl.Snapshot().Size
	w := ec.Size()
	return size.FitInside(geometry.NewSize(float64(w.Width), float64(w.Height)))
}

func (ec *EditorCanvas) refreshSurface() {
	if img := ec.ctrl.Surface().Image(); img != nil {
		ec.image.Image = img
		ec.hint.Hide()
	}
	ec.image.Refresh()
}

func (ec *EditorCanvas) report(err error) {
	if err == nil {
		return
	}
	logging.Logger().Debug("canvas: action rejected", slog.Any("err", err))
	if ec.onError != nil {
		ec.onError(err)
	}
}

func toPoint(p fyne.Position) geometry.Point2D {
	return geometry.NewPoint2D(float64(p.X), float64(p.Y))
}

// Tapped selects the overlay under the pointer or places the draft text there.
func (ec *EditorCanvas) Tapped(ev *fyne.PointEvent) {
	box := ec.DisplayBox()
	if box.Empty() || !box.Contains(toPoint(ev.Position)) {
		return
	}
	ec.report(ec.ctrl.PointerDown(toPoint(ev.Position), box))
}

// hitAt returns the overlay under a widget-space point.
func (ec *EditorCanvas) hitAt(p geometry.Point2D, box geometry.Rect) (int, bool) {
	s := ec.ctrl.Snapshot()
	ip, err := coords.ToIntrinsic(p, box, s.Size)
	if err != nil {
		return -1, false
	}
	return render.HitTest(ip, s.Store.Overlays(), ec.ctrl.Measurer())
}

// Dragged moves an overlay. The first event picks the overlay under the press
// point; later events only move the live visual.
func (ec *EditorCanvas) Dragged(ev *fyne.DragEvent) {
	if ec.dragIgnored {
		return
	}
	delta := geometry.NewPoint2D(float64(ev.Dragged.DX), float64(ev.Dragged.DY))
	if !ec.dragActive {
		box := ec.DisplayBox()
		if box.Empty() {
			ec.dragIgnored = true
			return
		}
		// Drivers differ on whether the first event carries the press point or
		// the current pointer position, so try both.
		pos := toPoint(ev.Position)
		i, ok := ec.hitAt(pos.Sub(delta), box)
		if !ok {
			i, ok = ec.hitAt(pos, box)
		}
		if !ok {
			ec.dragIgnored = true
			return
		}
		if err := ec.ctrl.BeginDrag(i); err != nil {
			ec.dragIgnored = true
			ec.report(err)
			return
		}
		ec.dragActive = true
		ec.dragOffset = geometry.Point2D{}
		ec.showLive(i, box)
	}

	ec.dragOffset = ec.dragOffset.Add(delta)
	ec.report(ec.ctrl.MoveDrag(ec.dragOffset))
	ec.moveLive(ec.DisplayBox())
}

// DragEnd commits the drag against the current display box.
func (ec *EditorCanvas) DragEnd() {
	active := ec.dragActive
	ec.dragActive = false
	ec.dragIgnored = false
	ec.live.Hide()
	if !active {
		return
	}
	ec.report(ec.ctrl.EndDrag(ec.dragOffset, ec.DisplayBox()))
	ec.dragOffset = geometry.Point2D{}
}

// CancelDrag aborts an active drag without moving the overlay.
func (ec *EditorCanvas) CancelDrag() {
	if !ec.dragActive {
		return
	}
	ec.dragActive = false
	ec.dragOffset = geometry.Point2D{}
	ec.live.Hide()
	ec.ctrl.CancelDrag()
}

// showLive styles the live visual after the overlay being dragged.
func (ec *EditorCanvas) showLive(i int, box geometry.Rect) {
	s := ec.ctrl.Snapshot()
	o, err := s.Store.At(i)
	if err != nil {
		return
	}
	ec.live.Text = o.Text
	ec.live.Color = o.FillColor
	ec.live.TextStyle = liveStyle(o.FontFamily)
	if size, err := coords.DisplaySize(geometry.NewSize(0, float64(o.FontSizePx)), box, s.Size); err == nil {
		ec.live.TextSize = float32(size.Height)
	}
	ec.live.Show()
	ec.moveLive(box)
}

func (ec *EditorCanvas) moveLive(box geometry.Rect) {
	anchor, ok := ec.ctrl.LivePosition(box)
	if !ok {
		return
	}
	// The anchor is the horizontal center on the baseline; fyne places text by
	// its top-left corner.
	sz := fyne.MeasureText(ec.live.Text, ec.live.TextSize, ec.live.TextStyle)
	ec.live.Move(fyne.NewPos(float32(anchor.X)-sz.Width/2, float32(anchor.Y)-sz.Height))
	ec.live.Resize(sz)
	ec.live.Refresh()
}

func liveStyle(f overlay.FontFamily) fyne.TextStyle {
	switch f {
	case overlay.FontComicSans:
		return fyne.TextStyle{Italic: true}
	case overlay.FontTimesNewRoman:
		return fyne.TextStyle{Bold: true, Italic: true}
	case overlay.FontHelvetica:
		return fyne.TextStyle{Bold: true, Monospace: true}
	case overlay.FontArial:
		return fyne.TextStyle{}
	}
	return fyne.TextStyle{Bold: true}
}

// MinSize keeps the canvas usable in small windows.
func (ec *EditorCanvas) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

func (ec *EditorCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &editorCanvasRenderer{canvas: ec}
}

type editorCanvasRenderer struct {
	canvas *EditorCanvas
}

func (r *editorCanvasRenderer) Layout(size fyne.Size) {
	box := r.canvas.DisplayBox()
	r.canvas.image.Move(fyne.NewPos(float32(box.X), float32(box.Y)))
	r.canvas.image.Resize(fyne.NewSize(float32(box.Width), float32(box.Height)))
	r.canvas.hint.Move(fyne.NewPos(0, size.Height/2))
	r.canvas.hint.Resize(fyne.NewSize(size.Width, r.canvas.hint.MinSize().Height))
	if r.canvas.dragActive {
		r.canvas.moveLive(box)
	}
}

func (r *editorCanvasRenderer) MinSize() fyne.Size {
	return r.canvas.MinSize()
}

func (r *editorCanvasRenderer) Refresh() {
	r.Layout(r.canvas.Size())
	r.canvas.image.Refresh()
}

func (r *editorCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.image, r.canvas.live, r.canvas.hint}
}

func (r *editorCanvasRenderer) Destroy() {}
