package editor

import (
	"errors"
	"testing"

	"meme-creator/pkg/geometry"
)

func TestController_DragCommit(t *testing.T) {
	tests := []struct {
		name   string
		box    geometry.Rect
		offset geometry.Point2D
		want   geometry.Point2D // expected position delta
	}{
		{"identity", geometry.NewRect(0, 0, 400, 300), geometry.NewPoint2D(30, -40), geometry.NewPoint2D(30, -40)},
		{"half size", geometry.NewRect(10, 20, 200, 150), geometry.NewPoint2D(30, -40), geometry.NewPoint2D(60, -80)},
		{"non-uniform", geometry.NewRect(5, 5, 200, 600), geometry.NewPoint2D(-12, 18), geometry.NewPoint2D(-24, 9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newLoaded(t, 400, 300)
			c.SetDraftText("DRAG")
			if err := c.AddAtCenter(); err != nil {
				t.Fatal(err)
			}
			before := mustAt(t, c.Snapshot(), 0).Position

			if err := c.BeginDrag(0); err != nil {
				t.Fatal(err)
			}
			if err := c.MoveDrag(geometry.NewPoint2D(1, 1)); err != nil {
				t.Fatal(err)
			}
			if err := c.EndDrag(tt.offset, tt.box); err != nil {
				t.Fatal(err)
			}
			s := c.Snapshot()
			if s.Mode != Idle {
				t.Errorf("mode %v after drag", s.Mode)
			}
			got := mustAt(t, s, 0).Position
			if !almost(got, before.Add(tt.want)) {
				t.Errorf("position %v, want %v", got, before.Add(tt.want))
			}
		})
	}
}

func TestController_DragMoveDoesNotTouchStore(t *testing.T) {
	c := newLoaded(t, 400, 300)
	c.SetDraftText("LIVE")
	if err := c.AddAtCenter(); err != nil {
		t.Fatal(err)
	}
	var redraws, moves int
	c.On(EventRedrawn, func(interface{}) { redraws++ })
	c.On(EventDragMoved, func(interface{}) { moves++ })

	if err := c.BeginDrag(0); err != nil {
		t.Fatal(err)
	}
	before := c.Snapshot()
	if before.Mode != Dragging || before.DragIndex != 0 || before.Store.SelectedIndex() != 0 {
		t.Fatalf("after BeginDrag: %+v", before)
	}
	for i := 1; i <= 5; i++ {
		if err := c.MoveDrag(geometry.NewPoint2D(float64(i), float64(2*i))); err != nil {
			t.Fatal(err)
		}
	}
	s := c.Snapshot()
	if mustAt(t, s, 0) != mustAt(t, before, 0) {
		t.Error("store changed during drag")
	}
	if s.DragOffset != geometry.NewPoint2D(5, 10) {
		t.Errorf("drag offset %v", s.DragOffset)
	}
	if redraws != 1 || moves != 5 {
		t.Errorf("redraws %d moves %d, want 1 and 5", redraws, moves)
	}

	box := identity(c)
	live, ok := c.LivePosition(box)
	if !ok || !almost(live, geometry.NewPoint2D(205, 160)) {
		t.Errorf("LivePosition = %v, %v", live, ok)
	}
	if err := c.PointerDown(geometry.NewPoint2D(1, 1), box); !errors.Is(err, ErrBusy) {
		t.Errorf("PointerDown during drag err = %v", err)
	}
}

func TestController_CancelDrag(t *testing.T) {
	c := newLoaded(t, 400, 300)
	c.SetDraftText("STAY")
	if err := c.AddAtCenter(); err != nil {
		t.Fatal(err)
	}
	if err := c.BeginDrag(0); err != nil {
		t.Fatal(err)
	}
	_ = c.MoveDrag(geometry.NewPoint2D(50, 50))
	c.CancelDrag()
	s := c.Snapshot()
	if s.Mode != Idle || s.DragOffset != (geometry.Point2D{}) {
		t.Errorf("after cancel: %+v", s)
	}
	if p := mustAt(t, s, 0).Position; p != geometry.NewPoint2D(200, 150) {
		t.Errorf("position %v after cancel", p)
	}
	if _, ok := c.LivePosition(identity(c)); ok {
		t.Error("LivePosition reported while idle")
	}
	if err := c.EndDrag(geometry.Point2D{}, identity(c)); !errors.Is(err, ErrNotDragging) {
		t.Errorf("EndDrag while idle err = %v", err)
	}
	if err := c.MoveDrag(geometry.Point2D{}); !errors.Is(err, ErrNotDragging) {
		t.Errorf("MoveDrag while idle err = %v", err)
	}
}

// Dragging by an offset and back again returns to the start position, even when
// the layout changed between the two drags.
func TestController_DragRoundTrip(t *testing.T) {
	c := newLoaded(t, 1200, 675)
	c.SetDraftText("BACK")
	if err := c.AddAtCenter(); err != nil {
		t.Fatal(err)
	}
	start := mustAt(t, c.Snapshot(), 0).Position

	boxA := geometry.NewRect(13, 7, 321, 180.5)
	boxB := geometry.NewRect(0, 0, 642, 361)
	d := geometry.NewPoint2D(37.25, -19.5)

	if err := c.BeginDrag(0); err != nil {
		t.Fatal(err)
	}
	if err := c.EndDrag(d, boxA); err != nil {
		t.Fatal(err)
	}
	// The same gesture expressed in boxB's display units.
	back := geometry.NewPoint2D(-d.X*boxB.Width/boxA.Width, -d.Y*boxB.Height/boxA.Height)
	if err := c.BeginDrag(0); err != nil {
		t.Fatal(err)
	}
	if err := c.EndDrag(back, boxB); err != nil {
		t.Fatal(err)
	}
	got := mustAt(t, c.Snapshot(), 0).Position
	if d := got.Sub(start); d.X*d.X+d.Y*d.Y > 1e-12 {
		t.Errorf("round trip drifted to %v from %v", got, start)
	}
}

// While a drag is live the store keeps its indices, so the commit lands on the
// overlay the drag started on.
func TestController_SelectionLockedDuringDrag(t *testing.T) {
	c := newLoaded(t, 400, 300)
	for _, text := range []string{"A", "B"} {
		c.SetDraftText(text)
		if err := c.AddAtCenter(); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.BeginDrag(0); err != nil {
		t.Fatal(err)
	}
	c.SetDraftText("CHANGED")

	ops := map[string]func() error{
		"RemoveSelected":    c.RemoveSelected,
		"DuplicateSelected": c.DuplicateSelected,
		"UpdateSelected":    c.UpdateSelected,
		"Select":            func() error { return c.Select(1) },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, ErrBusy) {
			t.Errorf("%s during drag err = %v, want ErrBusy", name, err)
		}
	}
	s := c.Snapshot()
	if s.Store.Len() != 2 || s.DragIndex != 0 {
		t.Fatalf("len %d dragIndex %d after rejected ops", s.Store.Len(), s.DragIndex)
	}
	if i, ok := s.Store.Selected(); !ok || i != 0 {
		t.Errorf("Selected() = %d, %v", i, ok)
	}

	if err := c.EndDrag(geometry.NewPoint2D(50, 50), identity(c)); err != nil {
		t.Fatal(err)
	}
	s = c.Snapshot()
	a, b := mustAt(t, s, 0), mustAt(t, s, 1)
	if a.Text != "A" || !almost(a.Position, geometry.NewPoint2D(250, 200)) {
		t.Errorf("dragged overlay %q at %v", a.Text, a.Position)
	}
	if b.Text != "B" || b.Position != geometry.NewPoint2D(200, 150) {
		t.Errorf("other overlay %q moved to %v", b.Text, b.Position)
	}

	if err := c.RemoveSelected(); err != nil {
		t.Errorf("RemoveSelected after drag err = %v", err)
	}
}
