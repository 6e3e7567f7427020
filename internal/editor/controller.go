// Package editor implements the interaction controller of the meme editor: it
// turns pointer, drag and style-editor actions into new overlay store snapshots
// and repaints the surface after every change that affects the picture.
package editor

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"meme-creator/internal/coords"
	"meme-creator/internal/logging"
	"meme-creator/internal/overlay"
	"meme-creator/internal/render"
	"meme-creator/pkg/geometry"
)

// Controller errors.
var (
	ErrNoSelection = errors.New("editor: no overlay selected")
	ErrEmptyDraft  = errors.New("editor: draft text is empty")
	ErrBusy        = errors.New("editor: drag in progress")
	ErrNotDragging = errors.New("editor: no drag in progress")
	ErrNoImage     = errors.New("editor: image has no pixels")
)

// Mode is the controller state.
type Mode int

const (
	Idle Mode = iota
	Dragging
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Snapshot is an immutable view of the editor session.
type Snapshot struct {
	Template   string
	Size       geometry.Size // intrinsic size; zero until an image is loaded
	Store      overlay.Store
	Draft      overlay.Draft
	Mode       Mode
	DragIndex  int              // valid while Mode == Dragging
	DragOffset geometry.Point2D // live display offset of the current drag
	Exporting  bool
}

// Loaded reports whether a base image has been loaded.
func (s Snapshot) Loaded() bool {
	return !s.Size.Empty()
}

// Controller is the editor state machine. It owns the surface and is the only
// caller of the compositor. It is safe for concurrent use; operations are
// serialized and listeners run after the operation has completed.
type Controller struct {
	op sync.Mutex // serializes mutate + redraw

	mu        sync.RWMutex
	snap      Snapshot
	base      *render.BaseImage
	listeners map[EventType][]EventListener

	comp    *render.Compositor
	surface *render.Surface
}

// NewController returns an idle controller with an empty store and the default draft.
func NewController(comp *render.Compositor) *Controller {
	return &Controller{
		snap: Snapshot{
			Store:     overlay.NewStore(),
			Draft:     overlay.DefaultDraft(),
			DragIndex: -1,
		},
		listeners: make(map[EventType][]EventListener),
		comp:      comp,
		surface:   render.NewSurface(),
	}
}

// Surface returns the surface the controller paints into.
func (c *Controller) Surface() *render.Surface {
	return c.surface
}

// Measurer returns the text measurer shared by hit testing and painting.
func (c *Controller) Measurer() render.Measurer {
	return c.comp.Fonts()
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// pending collects the events an operation emits once it has finished.
type pending struct {
	events []EventType
	data   []interface{}
}

func (p *pending) add(e EventType, data interface{}) {
	p.events = append(p.events, e)
	p.data = append(p.data, data)
}

// mutate runs fn against the current snapshot under the operation lock. When fn
// returns a new snapshot it is stored and, if redraw is set, the surface is
// repainted before the lock is released. Events are emitted afterwards.
func (c *Controller) mutate(redraw bool, fn func(s Snapshot, ev *pending) (Snapshot, error)) error {
	c.op.Lock()

	c.mu.RLock()
	old := c.snap
	c.mu.RUnlock()

	var ev pending
	next, err := fn(old, &ev)
	if err != nil {
		c.op.Unlock()
		return err
	}

	c.mu.Lock()
	c.snap = next
	base := c.base
	c.mu.Unlock()

	if old.Store.SelectedIndex() != next.Store.SelectedIndex() {
		ev.add(EventSelectionChanged, next.Store.SelectedIndex())
	}
	if old.Draft != next.Draft {
		ev.add(EventDraftChanged, next.Draft)
	}
	if redraw && c.paint(base, next) {
		ev.add(EventRedrawn, next)
	}
	c.op.Unlock()

	for i, e := range ev.events {
		c.Emit(e, ev.data[i])
	}
	return nil
}

func (c *Controller) paint(base *render.BaseImage, s Snapshot) bool {
	return c.comp.Draw(c.surface, render.Frame{
		Base:     base,
		Overlays: s.Store.Overlays(),
		Selected: s.Store.SelectedIndex(),
		Dragging: s.Mode == Dragging,
	})
}

// Load starts a new session on img. The intrinsic size is fixed to the image's
// natural size and all overlays, selection and draft text are reset.
func (c *Controller) Load(template string, img image.Image) error {
	base := render.NewBaseImage(img)
	if base == nil {
		return ErrNoImage
	}
	c.op.Lock()
	c.mu.Lock()
	c.base = base
	c.snap = Snapshot{
		Template:  template,
		Size:      base.Size(),
		Store:     overlay.NewStore(),
		Draft:     overlay.DefaultDraft(),
		DragIndex: -1,
	}
	snap := c.snap
	c.mu.Unlock()
	painted := c.paint(base, snap)
	c.op.Unlock()

	logging.Logger().Debug("editor: image loaded",
		slog.String("template", template),
		slog.Float64("w", snap.Size.Width), slog.Float64("h", snap.Size.Height))
	c.Emit(EventLoaded, snap.Size)
	c.Emit(EventSelectionChanged, -1)
	c.Emit(EventDraftChanged, snap.Draft)
	if painted {
		c.Emit(EventRedrawn, snap)
	}
	return nil
}

// Restore replaces the session's overlays with list, in paint order, and drops
// the selection. Every overlay must be valid.
func (c *Controller) Restore(list []overlay.TextOverlay) error {
	for i, o := range list {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("editor: restore overlay %d: %w", i, err)
		}
	}
	return c.mutate(true, func(s Snapshot, _ *pending) (Snapshot, error) {
		if !s.Loaded() {
			return s, render.ErrImageNotReady
		}
		if s.Mode == Dragging {
			return s, ErrBusy
		}
		store := overlay.NewStore()
		for _, o := range list {
			store, _ = store.Append(o)
		}
		s.Store = store
		return s, nil
	})
}

// Redraw repaints the surface from the current snapshot.
func (c *Controller) Redraw() {
	_ = c.mutate(true, func(s Snapshot, _ *pending) (Snapshot, error) { return s, nil })
}

// PointerDown handles a press at a display-space point inside box. A press on an
// overlay selects it and loads its style into the draft. A press on empty space
// places the draft text there, if there is any. Presses during a drag are ignored.
func (c *Controller) PointerDown(p geometry.Point2D, box geometry.Rect) error {
	return c.mutate(true, func(s Snapshot, _ *pending) (Snapshot, error) {
		if s.Mode == Dragging {
			return s, ErrBusy
		}
		if !s.Loaded() {
			return s, render.ErrImageNotReady
		}
		ip, err := coords.ToIntrinsic(p, box, s.Size)
		if err != nil {
			return s, err
		}
		if i, ok := render.HitTest(ip, s.Store.Overlays(), c.comp.Fonts()); ok {
			return selectIndex(s, i)
		}
		if !s.Draft.HasText() {
			return s, nil
		}
		s.Store, _ = s.Store.Append(s.Draft.At(ip))
		s.Store = s.Store.ClearSelection()
		s.Draft.Text = ""
		return s, nil
	})
}

func selectIndex(s Snapshot, i int) (Snapshot, error) {
	store, err := s.Store.Select(i)
	if err != nil {
		return s, err
	}
	o, _ := store.At(i)
	s.Store = store
	s.Draft = overlay.DraftFrom(o)
	return s, nil
}

// Select selects overlay i and loads its style into the draft. It fails with
// ErrBusy during a drag, as do the other operations that touch the selection.
func (c *Controller) Select(i int) error {
	return c.mutate(true, func(s Snapshot, _ *pending) (Snapshot, error) {
		if s.Mode == Dragging {
			return s, ErrBusy
		}
		return selectIndex(s, i)
	})
}

// ClearSelection drops the selection.
func (c *Controller) ClearSelection() {
	_ = c.mutate(true, func(s Snapshot, _ *pending) (Snapshot, error) {
		s.Store = s.Store.ClearSelection()
		return s, nil
	})
}

// SetDraft replaces the style draft.
func (c *Controller) SetDraft(d overlay.Draft) {
	_ = c.mutate(false, func(s Snapshot, _ *pending) (Snapshot, error) {
		s.Draft = d.Normalized()
		return s, nil
	})
}

// SetDraftText replaces only the draft text.
func (c *Controller) SetDraftText(text string) {
	_ = c.mutate(false, func(s Snapshot, _ *pending) (Snapshot, error) {
		s.Draft.Text = text
		return s, nil
	})
}

// AddAtCenter places the draft text at the center of the surface.
func (c *Controller) AddAtCenter() error {
	return c.mutate(true, func(s Snapshot, _ *pending) (Snapshot, error) {
		if !s.Loaded() {
			return s, render.ErrImageNotReady
		}
		if !s.Draft.HasText() {
			return s, ErrEmptyDraft
		}
		s.Store, _ = s.Store.Append(s.Draft.At(s.Size.Center()))
		s.Draft.Text = ""
		return s, nil
	})
}

// UpdateSelected overwrites the selected overlay's text and style from the draft,
// keeping its position. The selection and draft text are cleared afterwards.
func (c *Controller) UpdateSelected() error {
	return c.mutate(true, func(s Snapshot, _ *pending) (Snapshot, error) {
		if s.Mode == Dragging {
			return s, ErrBusy
		}
		i, ok := s.Store.Selected()
		if !ok {
			return s, ErrNoSelection
		}
		if !s.Draft.HasText() {
			return s, ErrEmptyDraft
		}
		store, err := s.Store.Update(i, overlay.StylePatch(s.Draft))
		if err != nil {
			return s, err
		}
		s.Store = store.ClearSelection()
		s.Draft.Text = ""
		return s, nil
	})
}

// RemoveSelected deletes the selected overlay and clears the draft text.
func (c *Controller) RemoveSelected() error {
	return c.mutate(true, func(s Snapshot, _ *pending) (Snapshot, error) {
		if s.Mode == Dragging {
			return s, ErrBusy
		}
		i, ok := s.Store.Selected()
		if !ok {
			return s, ErrNoSelection
		}
		store, err := s.Store.Remove(i)
		if err != nil {
			return s, err
		}
		s.Store = store.ClearSelection()
		s.Draft.Text = ""
		return s, nil
	})
}

// DuplicateSelected appends a copy of the selected overlay shifted by
// overlay.DuplicateOffset and selects the copy.
func (c *Controller) DuplicateSelected() error {
	return c.mutate(true, func(s Snapshot, _ *pending) (Snapshot, error) {
		if s.Mode == Dragging {
			return s, ErrBusy
		}
		i, ok := s.Store.Selected()
		if !ok {
			return s, ErrNoSelection
		}
		o, err := s.Store.At(i)
		if err != nil {
			return s, err
		}
		o.Position = o.Position.Add(overlay.DuplicateOffset)
		store, n := s.Store.Append(o)
		if s.Store, err = store.Select(n - 1); err != nil {
			return s, err
		}
		return s, nil
	})
}
