package editor

import (
	"log/slog"

	"meme-creator/internal/coords"
	"meme-creator/internal/logging"
	"meme-creator/internal/overlay"
	"meme-creator/pkg/geometry"
)

// BeginDrag selects overlay i, whether or not it was selected before, loads its
// style into the draft and enters the Dragging state. The surface is repainted once without the selection indicator;
// from here on only the live visual moves.
func (c *Controller) BeginDrag(i int) error {
	return c.mutate(true, func(s Snapshot, ev *pending) (Snapshot, error) {
		if s.Mode == Dragging {
			return s, ErrBusy
		}
		s, err := selectIndex(s, i)
		if err != nil {
			return s, err
		}
		s.Mode = Dragging
		s.DragIndex = i
		s.DragOffset = geometry.Point2D{}
		ev.add(EventDragStarted, i)
		return s, nil
	})
}

// MoveDrag records the total display-space offset of the current drag. The
// overlay store and the surface are not touched.
func (c *Controller) MoveDrag(offset geometry.Point2D) error {
	return c.mutate(false, func(s Snapshot, ev *pending) (Snapshot, error) {
		if s.Mode != Dragging {
			return s, ErrNotDragging
		}
		s.DragOffset = offset
		ev.add(EventDragMoved, offset)
		return s, nil
	})
}

// EndDrag commits a drag. The total display offset is mapped to an intrinsic
// delta against box and added to the overlay's stored position.
func (c *Controller) EndDrag(offset geometry.Point2D, box geometry.Rect) error {
	return c.mutate(true, func(s Snapshot, ev *pending) (Snapshot, error) {
		if s.Mode != Dragging {
			return s, ErrNotDragging
		}
		i := s.DragIndex
		s.Mode = Idle
		s.DragIndex = -1
		s.DragOffset = geometry.Point2D{}
		ev.add(EventDragEnded, i)

		d, err := coords.IntrinsicDelta(offset, box, s.Size)
		if err != nil {
			// The drag is over either way; the overlay keeps its position.
			logging.Logger().Warn("editor: drag not committed", slog.Any("err", err))
			return s, nil
		}
		o, err := s.Store.At(i)
		if err != nil {
			return s, err
		}
		store, err := s.Store.Update(i, overlay.MovePatch(o.Position.Add(d)))
		if err != nil {
			return s, err
		}
		s.Store = store
		return s, nil
	})
}

// CancelDrag aborts a drag, discarding the live offset.
func (c *Controller) CancelDrag() {
	_ = c.mutate(true, func(s Snapshot, ev *pending) (Snapshot, error) {
		if s.Mode != Dragging {
			return s, nil
		}
		ev.add(EventDragEnded, s.DragIndex)
		s.Mode = Idle
		s.DragIndex = -1
		s.DragOffset = geometry.Point2D{}
		return s, nil
	})
}

// LivePosition returns the display-space anchor of the overlay being dragged:
// its committed position mapped into box plus the live drag offset.
func (c *Controller) LivePosition(box geometry.Rect) (geometry.Point2D, bool) {
	s := c.Snapshot()
	if s.Mode != Dragging {
		return geometry.Point2D{}, false
	}
	o, err := s.Store.At(s.DragIndex)
	if err != nil {
		return geometry.Point2D{}, false
	}
	p, err := coords.ToDisplay(o.Position, box, s.Size)
	if err != nil {
		return geometry.Point2D{}, false
	}
	return p.Add(s.DragOffset), true
}
