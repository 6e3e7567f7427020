package editor

// EventType identifies controller events.
type EventType int

const (
	// EventLoaded fires after a base image is loaded. Data: geometry.Size.
	EventLoaded EventType = iota
	// EventRedrawn fires after the surface has been repainted. Data: Snapshot.
	EventRedrawn
	// EventSelectionChanged fires when the selected index changes. Data: int (-1 for none).
	EventSelectionChanged
	// EventDraftChanged fires when the draft is replaced. Data: overlay.Draft.
	EventDraftChanged
	// EventDragStarted fires when an overlay starts moving. Data: int index.
	EventDragStarted
	// EventDragMoved fires on every drag step. Data: geometry.Point2D display offset.
	EventDragMoved
	// EventDragEnded fires after a drag is committed or cancelled. Data: int index.
	EventDragEnded
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// On registers a listener for the given event type.
func (c *Controller) On(event EventType, listener EventListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners[event] = append(c.listeners[event], listener)
}

// Emit calls every listener registered for event.
func (c *Controller) Emit(event EventType, data interface{}) {
	c.mu.RLock()
	listeners := c.listeners[event]
	c.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}
