package editor

import "meme-creator/internal/render"

// BeginExport clears the selection, repaints synchronously so no selection
// indicator is baked into the output, and marks the session as exporting.
// The selection is not restored afterwards.
func (c *Controller) BeginExport() (*render.Surface, error) {
	err := c.mutate(true, func(s Snapshot, _ *pending) (Snapshot, error) {
		if !s.Loaded() {
			return s, render.ErrImageNotReady
		}
		if s.Mode == Dragging {
			return s, ErrBusy
		}
		s.Store = s.Store.ClearSelection()
		s.Exporting = true
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return c.surface, nil
}

// EndExport clears the exporting flag.
func (c *Controller) EndExport() {
	_ = c.mutate(false, func(s Snapshot, _ *pending) (Snapshot, error) {
		s.Exporting = false
		return s, nil
	})
}
