// Package app holds the application state around the editor: the template
// catalog, search, the chosen template, roast captions, banners and theme.
package app

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"

	"meme-creator/internal/caption"
	"meme-creator/internal/logging"
	"meme-creator/internal/templates"
)

// User-visible messages.
const (
	MsgFetchFailed = "Failed to load meme templates. Please try again later."
	MsgNoTemplates = "No meme templates found."
	MsgNoMatches   = "No templates match your search."
)

// EventType identifies different application events.
type EventType int

const (
	EventLoadingChanged EventType = iota
	EventTemplatesLoaded
	EventFilterChanged
	EventTemplateSelected
	EventCaptionChanged
	EventBannerChanged
	EventThemeChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Ticket identifies one asynchronous operation. A completion carrying a ticket
// older than the latest one issued for the same operation is stale.
type Ticket uint64

// State holds everything outside the editor session.
type State struct {
	mu sync.RWMutex

	// Catalog
	templates []templates.Template
	query     string
	loading   bool
	fetched   bool
	fetchTick Ticket

	// Selection
	selected  *templates.Template
	imageTick Ticket

	// Roast caption
	caption        string
	captionLoading bool
	captionTick    Ticket

	banner string
	theme  string

	// Event listeners
	listeners map[EventType][]EventListener
}

// NewState creates a new application state.
func NewState(theme string) *State {
	if theme != ThemeDark {
		theme = ThemeLight
	}
	return &State{
		theme:     theme,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// BeginFetch marks the catalog as loading and returns the ticket the result
// must be delivered with.
func (s *State) BeginFetch() Ticket {
	s.mu.Lock()
	s.fetchTick++
	t := s.fetchTick
	s.loading = true
	s.mu.Unlock()
	s.Emit(EventLoadingChanged, true)
	return t
}

// FinishFetch applies a catalog result. A failure leaves an empty catalog and a
// banner. Stale results are dropped and reported as false.
func (s *State) FinishFetch(t Ticket, items []templates.Template, err error) bool {
	s.mu.Lock()
	if t != s.fetchTick {
		s.mu.Unlock()
		logging.Logger().Debug("app: dropped stale template fetch", slog.Uint64("ticket", uint64(t)))
		return false
	}
	s.loading = false
	s.fetched = true
	banner := s.banner
	if err != nil {
		logging.Logger().Warn("app: template fetch failed", slog.Any("err", err))
		s.templates = nil
		s.banner = MsgFetchFailed
	} else {
		s.templates = items
	}
	changed := banner != s.banner
	count := len(s.templates)
	s.mu.Unlock()

	s.Emit(EventLoadingChanged, false)
	s.Emit(EventTemplatesLoaded, count)
	if changed {
		s.Emit(EventBannerChanged, s.Banner())
	}
	return true
}

// LoadTemplates fetches the catalog from p and applies it. It never fails; the
// outcome is visible through Templates, Banner and EmptyMessage.
func (s *State) LoadTemplates(ctx context.Context, p templates.Provider) {
	t := s.BeginFetch()
	items, err := p.FetchTemplates(ctx)
	s.FinishFetch(t, items, err)
}

// Loading reports whether a catalog fetch is in flight.
func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Templates returns the whole catalog.
func (s *State) Templates() []templates.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.templates
}

// SetQuery sets the search text.
func (s *State) SetQuery(q string) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
	s.Emit(EventFilterChanged, q)
}

// Query returns the search text.
func (s *State) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Visible returns the templates matching the search text.
func (s *State) Visible() []templates.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return templates.Filter(s.templates, s.query)
}

// EmptyMessage returns the message shown instead of template cards, or "" when
// there are cards to show or the catalog is still loading.
func (s *State) EmptyMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loading || !s.fetched {
		return ""
	}
	if len(s.templates) == 0 {
		return MsgNoTemplates
	}
	if len(templates.Filter(s.templates, s.query)) == 0 {
		return MsgNoMatches
	}
	return ""
}

// SelectTemplate makes t the current template and resets the caption. It
// returns the ticket its image load must be delivered with.
func (s *State) SelectTemplate(t templates.Template) Ticket {
	s.mu.Lock()
	s.selected = &t
	s.imageTick++
	tick := s.imageTick
	s.caption = ""
	s.captionLoading = false
	s.captionTick++
	s.mu.Unlock()
	s.Emit(EventTemplateSelected, t)
	s.Emit(EventCaptionChanged, "")
	return tick
}

// RandomTemplate selects a random template from the visible ones.
func (s *State) RandomTemplate(r *rand.Rand) (templates.Template, Ticket, bool) {
	t, ok := templates.RandomPick(s.Visible(), r)
	if !ok {
		return templates.Template{}, 0, false
	}
	return t, s.SelectTemplate(t), true
}

// ClearTemplate returns to the browser.
func (s *State) ClearTemplate() {
	s.mu.Lock()
	s.selected = nil
	s.imageTick++
	s.captionTick++
	s.captionLoading = false
	s.mu.Unlock()
	s.Emit(EventTemplateSelected, nil)
}

// Selected returns the current template.
func (s *State) Selected() (templates.Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return templates.Template{}, false
	}
	return *s.selected, true
}

// ImageCurrent reports whether an image load started with t is still wanted.
func (s *State) ImageCurrent(t Ticket) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected != nil && t == s.imageTick
}

// BeginCaption marks a caption request in flight.
func (s *State) BeginCaption() Ticket {
	s.mu.Lock()
	s.captionTick++
	t := s.captionTick
	s.captionLoading = true
	s.mu.Unlock()
	s.Emit(EventLoadingChanged, true)
	return t
}

// FinishCaption applies a generated caption unless a newer request or a
// template change superseded it.
func (s *State) FinishCaption(t Ticket, text string) bool {
	s.mu.Lock()
	if t != s.captionTick {
		s.mu.Unlock()
		return false
	}
	s.caption = text
	s.captionLoading = false
	s.mu.Unlock()
	s.Emit(EventLoadingChanged, false)
	s.Emit(EventCaptionChanged, text)
	return true
}

// GenerateCaption asks p for a roast caption for the current template. The
// request is rejected only when the target name is missing.
func (s *State) GenerateCaption(ctx context.Context, p *caption.Provider, req caption.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if t, ok := s.Selected(); ok {
		req.Template = t.Name
	}
	tick := s.BeginCaption()
	text := p.Caption(ctx, req)
	s.FinishCaption(tick, text)
	return text, nil
}

// Caption returns the last generated caption.
func (s *State) Caption() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caption
}

// CaptionLoading reports whether a caption request is in flight.
func (s *State) CaptionLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.captionLoading
}

// SetBanner shows a dismissible error message.
func (s *State) SetBanner(msg string) {
	s.mu.Lock()
	s.banner = msg
	s.mu.Unlock()
	s.Emit(EventBannerChanged, msg)
}

// DismissBanner hides the error message.
func (s *State) DismissBanner() {
	s.SetBanner("")
}

// Banner returns the current error message.
func (s *State) Banner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.banner
}

// Theme returns "light" or "dark".
func (s *State) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// ToggleTheme switches between light and dark and returns the new theme.
func (s *State) ToggleTheme() string {
	s.mu.Lock()
	if s.theme == ThemeDark {
		s.theme = ThemeLight
	} else {
		s.theme = ThemeDark
	}
	t := s.theme
	s.mu.Unlock()
	s.Emit(EventThemeChanged, t)
	return t
}
