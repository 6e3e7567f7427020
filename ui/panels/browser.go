// Package panels provides the side and page panels of the meme editor window.
package panels

import (
	"context"
	"image"
	"log/slog"
	"net/http"
	"sync"

	"meme-creator/internal/app"
	memeimage "meme-creator/internal/image"
	"meme-creator/internal/logging"
	"meme-creator/internal/templates"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Thumbnail bounds in pixels.
const (
	thumbWidth  = 320
	thumbHeight = 240

	thumbWorkers = 4
)

// ImageLoader loads an image from a URL or local path.
type ImageLoader func(ctx context.Context, ref string) (image.Image, error)

// HTTPImageLoader returns an ImageLoader backed by client.
func HTTPImageLoader(client *http.Client) ImageLoader {
	return func(ctx context.Context, ref string) (image.Image, error) {
		pic, err := memeimage.Open(ctx, client, ref)
		if err != nil {
			return nil, err
		}
		return pic.Image, nil
	}
}

// SelectFunc is called when the user picks a template. The ticket guards the
// image load that follows.
type SelectFunc func(t templates.Template, tick app.Ticket)

// TemplateBrowser lists the template catalog with search and random pick.
type TemplateBrowser struct {
	state     *app.State
	provider  templates.Provider
	loader    ImageLoader
	container fyne.CanvasObject

	searchEntry  *widget.Entry
	clearButton  *widget.Button
	randomButton *widget.Button
	retryButton  *widget.Button
	progress     *widget.ProgressBarInfinite
	emptyLabel   *widget.Label
	grid         *fyne.Container

	cardsMu sync.Mutex
	cards   map[string]*templateCard

	ctx    context.Context
	cancel context.CancelFunc
	sem    chan struct{}

	onSelect SelectFunc
}

// NewTemplateBrowser creates a browser over state's catalog. loader may be nil,
// in which case cards show no thumbnails.
func NewTemplateBrowser(state *app.State, provider templates.Provider, loader ImageLoader) *TemplateBrowser {
	ctx, cancel := context.WithCancel(context.Background())
	tb := &TemplateBrowser{
		state:    state,
		provider: provider,
		loader:   loader,
		cards:    make(map[string]*templateCard),
		ctx:      ctx,
		cancel:   cancel,
		sem:      make(chan struct{}, thumbWorkers),
	}

	tb.searchEntry = widget.NewEntry()
	tb.searchEntry.SetPlaceHolder("Search templates...")
	tb.searchEntry.OnChanged = func(q string) {
		tb.state.SetQuery(q)
	}
	tb.clearButton = widget.NewButtonWithIcon("", theme.ContentClearIcon(), tb.ClearSearch)
	tb.randomButton = widget.NewButtonWithIcon("Random", theme.ViewRefreshIcon(), tb.PickRandom)
	tb.retryButton = widget.NewButton("Retry", func() { tb.Reload() })
	tb.retryButton.Hide()

	tb.progress = widget.NewProgressBarInfinite()
	tb.progress.Hide()
	tb.emptyLabel = widget.NewLabel("")
	tb.emptyLabel.Alignment = fyne.TextAlignCenter
	tb.emptyLabel.Hide()

	tb.grid = container.NewGridWrap(fyne.NewSize(180, 170))

	toolbar := container.NewBorder(nil, nil, nil,
		container.NewHBox(tb.clearButton, tb.randomButton),
		tb.searchEntry)
	status := container.NewVBox(tb.progress, tb.emptyLabel, container.NewCenter(tb.retryButton))
	tb.container = container.NewBorder(
		container.NewVBox(toolbar, status), nil, nil, nil,
		container.NewVScroll(tb.grid),
	)

	for _, ev := range []app.EventType{app.EventLoadingChanged, app.EventTemplatesLoaded, app.EventFilterChanged} {
		state.On(ev, func(interface{}) {
			fyne.Do(tb.Refresh)
		})
	}

	tb.Refresh()
	return tb
}

// Container returns the panel container.
func (tb *TemplateBrowser) Container() fyne.CanvasObject {
	return tb.container
}

// SetOnSelect sets the callback for template picks.
func (tb *TemplateBrowser) SetOnSelect(fn SelectFunc) {
	tb.onSelect = fn
}

// Reload fetches the catalog in the background.
func (tb *TemplateBrowser) Reload() {
	go tb.state.LoadTemplates(tb.ctx, tb.provider)
}

// Close cancels outstanding fetches.
func (tb *TemplateBrowser) Close() {
	tb.cancel()
}

// ClearSearch empties the search box.
func (tb *TemplateBrowser) ClearSearch() {
	tb.searchEntry.SetText("")
	tb.state.SetQuery("")
}

// PickRandom selects a random template among the visible ones.
func (tb *TemplateBrowser) PickRandom() {
	t, tick, ok := tb.state.RandomTemplate(nil)
	if !ok {
		return
	}
	logging.Logger().Debug("browser: random template", slog.String("id", t.ID))
	if tb.onSelect != nil {
		tb.onSelect(t, tick)
	}
}

// Pick selects t.
func (tb *TemplateBrowser) Pick(t templates.Template) {
	tick := tb.state.SelectTemplate(t)
	if tb.onSelect != nil {
		tb.onSelect(t, tick)
	}
}

// Refresh rebuilds the grid from the visible templates.
func (tb *TemplateBrowser) Refresh() {
	loading := tb.state.Loading()
	if loading {
		tb.progress.Show()
		tb.progress.Start()
	} else {
		tb.progress.Stop()
		tb.progress.Hide()
	}

	if msg := tb.state.EmptyMessage(); msg != "" {
		tb.emptyLabel.SetText(msg)
		tb.emptyLabel.Show()
	} else {
		tb.emptyLabel.Hide()
	}
	if !loading && len(tb.state.Templates()) == 0 && tb.state.EmptyMessage() != "" {
		tb.retryButton.Show()
	} else {
		tb.retryButton.Hide()
	}

	visible := tb.state.Visible()
	tb.randomButton.Disable()
	if len(visible) > 0 {
		tb.randomButton.Enable()
	}

	objects := make([]fyne.CanvasObject, 0, len(visible))
	for _, t := range visible {
		objects = append(objects, tb.card(t))
	}
	tb.grid.Objects = objects
	tb.grid.Refresh()
}

// CardCount returns the number of cards in the grid.
func (tb *TemplateBrowser) CardCount() int {
	return len(tb.grid.Objects)
}

func (tb *TemplateBrowser) card(t templates.Template) *templateCard {
	tb.cardsMu.Lock()
	defer tb.cardsMu.Unlock()
	if c, ok := tb.cards[t.ID]; ok {
		return c
	}
	c := newTemplateCard(t, tb.Pick)
	tb.cards[t.ID] = c
	if tb.loader != nil && t.ImageURL != "" {
		go tb.loadThumb(c)
	}
	return c
}

func (tb *TemplateBrowser) loadThumb(c *templateCard) {
	select {
	case tb.sem <- struct{}{}:
	case <-tb.ctx.Done():
		return
	}
	defer func() { <-tb.sem }()

	img, err := tb.loader(tb.ctx, c.tmpl.ImageURL)
	if err != nil {
		logging.Logger().Debug("browser: thumbnail failed",
			slog.String("id", c.tmpl.ID), slog.Any("err", err))
		return
	}
	thumb := memeimage.Thumbnail(img, thumbWidth, thumbHeight)
	fyne.Do(func() {
		c.setThumb(thumb)
	})
}

// templateCard shows one template's thumbnail and name.
type templateCard struct {
	widget.BaseWidget

	tmpl  templates.Template
	thumb *fynecanvas.Image
	label *widget.Label
	onTap func(templates.Template)
}

func newTemplateCard(t templates.Template, onTap func(templates.Template)) *templateCard {
	c := &templateCard{tmpl: t, onTap: onTap}
	c.thumb = &fynecanvas.Image{
		FillMode:  fynecanvas.ImageFillContain,
		ScaleMode: fynecanvas.ImageScaleSmooth,
	}
	c.label = widget.NewLabel(t.Name)
	c.label.Alignment = fyne.TextAlignCenter
	c.label.Truncation = fyne.TextTruncateEllipsis
	c.ExtendBaseWidget(c)
	return c
}

func (c *templateCard) setThumb(img image.Image) {
	c.thumb.Image = img
	c.thumb.Refresh()
}

// Tapped implements fyne.Tappable.
func (c *templateCard) Tapped(*fyne.PointEvent) {
	if c.onTap != nil {
		c.onTap(c.tmpl)
	}
}

func (c *templateCard) CreateRenderer() fyne.WidgetRenderer {
	bg := fynecanvas.NewRectangle(theme.Color(theme.ColorNameInputBackground))
	bg.CornerRadius = theme.InputRadiusSize()
	return widget.NewSimpleRenderer(container.NewStack(
		bg,
		container.NewBorder(nil, c.label, nil, nil, c.thumb),
	))
}
