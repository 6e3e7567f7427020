// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"meme-creator/internal/app"
	"meme-creator/internal/caption"
	"meme-creator/internal/editor"
	"meme-creator/internal/export"
	"meme-creator/internal/logging"
	"meme-creator/internal/overlay"
	"meme-creator/internal/project"
	"meme-creator/internal/templates"
	"meme-creator/internal/version"
	"meme-creator/ui/canvas"
	"meme-creator/ui/panels"
	"meme-creator/ui/prefs"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// MsgImageFailed is shown when a template image cannot be loaded.
const MsgImageFailed = "Failed to load the template image."

var errNoTemplate = errors.New("no template selected")

// Page is one of the window's views.
type Page int

const (
	PageBrowse Page = iota
	PageDetail
	PageEditor
)

func (p Page) String() string {
	switch p {
	case PageDetail:
		return "detail"
	case PageEditor:
		return "editor"
	}
	return "browse"
}

// Deps are the services the window drives.
type Deps struct {
	Config     app.Config
	State      *app.State
	Controller *editor.Controller
	Templates  templates.Provider
	Captions   *caption.Provider
	Exporter   *export.Exporter
	Prefs      *prefs.Prefs
	Loader     panels.ImageLoader
}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app      fyne.App
	cfg      app.Config
	state    *app.State
	ctrl     *editor.Controller
	exporter *export.Exporter
	prefs    *prefs.Prefs
	loader   panels.ImageLoader

	browser *panels.TemplateBrowser
	roast   *panels.RoastForm
	style   *panels.StylePanel
	canvas  *canvas.EditorCanvas

	bannerLabel *widget.Label
	bannerBox   *fyne.Container
	statusBar   *widget.Label
	themeButton *widget.Button

	detailTitle *widget.Label
	detailImage *fynecanvas.Image
	editButton  *widget.Button
	editorTitle *widget.Label

	pages   map[Page]fyne.CanvasObject
	current Page

	// pendingText is a caption chosen before the template image finished
	// loading; it becomes the draft text once the session starts.
	pendingText string

	loadMu sync.Mutex
	loads  sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new main window.
func New(fyneApp fyne.App, deps Deps) *MainWindow {
	win := fyneApp.NewWindow(version.AppName)
	ctx, cancel := context.WithCancel(context.Background())

	mw := &MainWindow{
		Window:   win,
		app:      fyneApp,
		cfg:      deps.Config,
		state:    deps.State,
		ctrl:     deps.Controller,
		exporter: deps.Exporter,
		prefs:    deps.Prefs,
		loader:   deps.Loader,
		ctx:      ctx,
		cancel:   cancel,
	}

	mw.browser = panels.NewTemplateBrowser(mw.state, deps.Templates, deps.Loader)
	mw.roast = panels.NewRoastForm(mw.state, deps.Captions, mw.ctrl)
	mw.style = panels.NewStylePanel(mw.ctrl)
	mw.canvas = canvas.NewEditorCanvas(mw.ctrl)

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.applyTheme(mw.state.Theme())

	win.Resize(fyne.NewSize(mw.cfg.WindowWidth, mw.cfg.WindowHeight))
	win.SetOnClosed(mw.onClosed)
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	title := widget.NewLabelWithStyle(version.AppName, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	subtitle := widget.NewLabelWithStyle("Create, Edit, and Share your favorite memes!",
		fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	mw.themeButton = widget.NewButtonWithIcon("", theme.ColorPaletteIcon(), mw.onToggleTheme)
	header := container.NewBorder(nil, nil, nil, mw.themeButton, container.NewVBox(title, subtitle))

	mw.bannerLabel = widget.NewLabel("")
	mw.bannerLabel.Importance = widget.DangerImportance
	mw.bannerLabel.Wrapping = fyne.TextWrapWord
	dismiss := widget.NewButtonWithIcon("", theme.CancelIcon(), mw.state.DismissBanner)
	mw.bannerBox = container.NewBorder(nil, nil, nil, dismiss, mw.bannerLabel)
	mw.bannerBox.Hide()

	mw.statusBar = widget.NewLabel("Ready")

	mw.browser.SetOnSelect(mw.onTemplateSelected)
	mw.roast.SetOnUse(mw.onUseCaption)
	mw.style.SetWindow(mw.Window)
	mw.style.SetOnError(mw.showError)
	mw.style.SetOnExport(mw.onDownload, mw.onShare)
	mw.style.SetOnStyleChanged(func(d overlay.Draft) {
		if mw.prefs != nil {
			mw.prefs.RememberDraft(d)
		}
	})
	mw.canvas.SetOnError(mw.showError)

	mw.pages = map[Page]fyne.CanvasObject{
		PageBrowse: mw.browser.Container(),
		PageDetail: mw.createDetailPage(),
		PageEditor: mw.createEditorPage(),
	}
	stack := container.NewStack()
	for _, p := range []Page{PageBrowse, PageDetail, PageEditor} {
		stack.Add(mw.pages[p])
	}
	mw.showPage(PageBrowse)

	content := container.NewBorder(
		container.NewVBox(header, mw.bannerBox), // top
		container.NewPadded(mw.statusBar),       // bottom
		nil,                                     // left
		nil,                                     // right
		stack,                                   // center
	)
	mw.SetContent(content)
}

func (mw *MainWindow) createDetailPage() fyne.CanvasObject {
	mw.detailTitle = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	back := widget.NewButtonWithIcon("Back", theme.NavigateBackIcon(), mw.onBack)
	mw.detailImage = &fynecanvas.Image{
		FillMode:  fynecanvas.ImageFillContain,
		ScaleMode: fynecanvas.ImageScaleSmooth,
	}
	mw.detailImage.SetMinSize(fyne.NewSize(320, 240))
	mw.editButton = widget.NewButtonWithIcon("Edit Meme", theme.DocumentCreateIcon(), mw.onEdit)
	mw.editButton.Importance = widget.HighImportance
	mw.editButton.Disable()

	side := container.NewVScroll(container.NewVBox(mw.editButton, widget.NewSeparator(), mw.roast.Container()))
	split := container.NewHSplit(mw.detailImage, side)
	split.SetOffset(0.6)
	return container.NewBorder(container.NewHBox(back, mw.detailTitle), nil, nil, nil, split)
}

func (mw *MainWindow) createEditorPage() fyne.CanvasObject {
	mw.editorTitle = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	back := widget.NewButtonWithIcon("Back", theme.NavigateBackIcon(), mw.onBack)
	hint := widget.NewLabel("Tap the image to place text, tap text to select it, drag to move it.")
	hint.Wrapping = fyne.TextWrapWord

	side := container.NewVScroll(container.NewVBox(mw.style.Container(), hint))
	split := container.NewHSplit(mw.canvas, side)
	split.SetOffset(0.7)
	return container.NewBorder(container.NewHBox(back, mw.editorTitle), nil, nil, nil, split)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItem("Save Project As...", mw.onSaveProject),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reload Templates", mw.browser.Reload),
		fyne.NewMenuItem("Random Template", mw.browser.PickRandom),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Download Meme...", mw.onDownload),
		fyne.NewMenuItem("Share Meme", mw.onShare),
	)
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Toggle Dark Mode", mw.onToggleTheme),
	)
	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)
	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for application and editor events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventBannerChanged, func(interface{}) {
		fyne.Do(mw.refreshBanner)
	})
	mw.state.On(app.EventThemeChanged, func(data interface{}) {
		if t, ok := data.(string); ok {
			fyne.Do(func() { mw.applyTheme(t) })
		}
	})
	mw.ctrl.On(editor.EventLoaded, func(interface{}) {
		fyne.Do(func() { mw.editButton.Enable() })
	})
}

// Start shows the window and fetches the template catalog.
func (mw *MainWindow) Start() {
	mw.browser.Reload()
	mw.Show()
}

// Open starts on t directly, as if it had been picked in the browser. It is
// used for images given on the command line.
func (mw *MainWindow) Open(t templates.Template) {
	mw.browser.Pick(t)
}

// Page returns the view currently shown.
func (mw *MainWindow) Page() Page {
	return mw.current
}

func (mw *MainWindow) showPage(p Page) {
	for page, obj := range mw.pages {
		if page == p {
			obj.Show()
		} else {
			obj.Hide()
		}
	}
	mw.current = p
	logging.Logger().Debug("window: page", slog.String("page", p.String()))
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) refreshBanner() {
	msg := mw.state.Banner()
	mw.bannerLabel.SetText(msg)
	if msg == "" {
		mw.bannerBox.Hide()
	} else {
		mw.bannerBox.Show()
	}
}

func (mw *MainWindow) applyTheme(variant string) {
	mw.app.Settings().SetTheme(app.NewTheme(variant))
}

// showError reports a failed action in a dialog.
func (mw *MainWindow) showError(err error) {
	if err == nil {
		return
	}
	logging.Logger().Warn("window: action failed", slog.Any("err", err))
	switch {
	case errors.Is(err, export.ErrNoShareTarget):
		dialog.ShowInformation("Share", "Sharing is not available on this system. Use Download instead.", mw.Window)
	case errors.Is(err, context.Canceled):
	default:
		dialog.ShowError(err, mw.Window)
	}
}

// Navigation

func (mw *MainWindow) onTemplateSelected(t templates.Template, tick app.Ticket) {
	mw.startSession(t, tick, nil)
}

// startSession shows t's detail page and loads its image in the background.
// Overlays, if any, are placed once the image is in.
func (mw *MainWindow) startSession(t templates.Template, tick app.Ticket, overlays []overlay.TextOverlay) {
	mw.detailTitle.SetText(t.Name)
	mw.editorTitle.SetText(t.Name)
	mw.detailImage.Image = nil
	mw.detailImage.Refresh()
	mw.editButton.Disable()
	mw.pendingText = ""
	mw.roast.Reset()
	mw.showPage(PageDetail)
	mw.updateStatus("Loading " + t.Name + "...")

	mw.loads.Add(1)
	go func() {
		defer mw.loads.Done()
		mw.loadTemplateImage(t, tick, overlays)
	}()
}

// loadTemplateImage fetches t's image and starts an editor session on it unless
// another template was chosen in the meantime.
func (mw *MainWindow) loadTemplateImage(t templates.Template, tick app.Ticket, overlays []overlay.TextOverlay) {
	img, err := mw.loader(mw.ctx, t.ImageURL)

	mw.loadMu.Lock()
	defer mw.loadMu.Unlock()
	if !mw.state.ImageCurrent(tick) {
		logging.Logger().Debug("window: dropped stale image", slog.String("id", t.ID))
		return
	}
	if err == nil {
		err = mw.ctrl.Load(t.Name, img)
	}
	if err == nil && len(overlays) > 0 {
		err = mw.ctrl.Restore(overlays)
	}
	if err != nil {
		logging.Logger().Warn("window: template image failed",
			slog.String("id", t.ID), slog.Any("err", err))
		mw.state.SetBanner(MsgImageFailed)
		fyne.Do(func() { mw.updateStatus(MsgImageFailed) })
		return
	}

	fyne.Do(func() {
		if !mw.state.ImageCurrent(tick) {
			return
		}
		mw.detailImage.Image = img
		mw.detailImage.Refresh()
		d := mw.cfg.Draft
		d.Text = mw.pendingText
		mw.pendingText = ""
		mw.ctrl.SetDraft(d)
		mw.updateStatus(fmt.Sprintf("%s (%dx%d)", t.Name, img.Bounds().Dx(), img.Bounds().Dy()))
	})
}

func (mw *MainWindow) onBack() {
	switch mw.current {
	case PageEditor:
		mw.canvas.CancelDrag()
		mw.showPage(PageDetail)
	case PageDetail:
		mw.state.ClearTemplate()
		mw.showPage(PageBrowse)
		mw.updateStatus("Ready")
	}
}

func (mw *MainWindow) onEdit() {
	if !mw.ctrl.Snapshot().Loaded() {
		return
	}
	mw.showPage(PageEditor)
}

func (mw *MainWindow) onUseCaption(text string) {
	if !mw.ctrl.Snapshot().Loaded() {
		mw.pendingText = text
	}
	mw.showPage(PageEditor)
}

func (mw *MainWindow) onToggleTheme() {
	t := mw.state.ToggleTheme()
	if mw.prefs == nil {
		return
	}
	mw.prefs.SetString(app.PrefTheme, t)
	if err := mw.prefs.Save(); err != nil {
		logging.Logger().Warn("window: save preferences", slog.Any("err", err))
	}
}

// Projects

func (mw *MainWindow) onOpenProject() {
	fd := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			mw.showError(err)
			return
		}
		if r == nil {
			return
		}
		r.Close()
		if err := mw.openProject(r.URI().Path()); err != nil {
			mw.showError(err)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{project.Extension}))
	fd.Show()
}

// openProject loads a project file and starts a session on its template with
// its overlays.
func (mw *MainWindow) openProject(path string) error {
	p, err := project.Load(path)
	if err != nil {
		return err
	}
	overlays, err := p.TextOverlays()
	if err != nil {
		return err
	}
	t := p.TemplateFor(path)
	tick := mw.state.SelectTemplate(t)
	mw.startSession(t, tick, overlays)
	return nil
}

func (mw *MainWindow) onSaveProject() {
	if !mw.ctrl.Snapshot().Loaded() {
		return
	}
	fd := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			mw.showError(err)
			return
		}
		if w == nil {
			return
		}
		w.Close()
		if err := mw.saveProject(w.URI().Path()); err != nil {
			mw.showError(err)
		}
	}, mw.Window)
	fd.SetFileName(strings.TrimSuffix(export.Filename(mw.templateName()), ".png") + project.Extension)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{project.Extension}))
	fd.Show()
}

// saveProject writes the current template and overlays to path.
func (mw *MainWindow) saveProject(path string) error {
	t, ok := mw.state.Selected()
	if !ok {
		return errNoTemplate
	}
	if filepath.Ext(path) != project.Extension {
		path += project.Extension
	}
	p := project.New(t)
	p.SetOverlays(mw.ctrl.Snapshot().Store.Overlays())
	if err := p.Save(path); err != nil {
		return err
	}
	mw.updateStatus("Saved project " + filepath.Base(path))
	return nil
}

// Export

func (mw *MainWindow) templateName() string {
	t, _ := mw.state.Selected()
	return t.Name
}

func (mw *MainWindow) onDownload() {
	if !mw.ctrl.Snapshot().Loaded() {
		return
	}
	fd := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			mw.showError(err)
			return
		}
		if w == nil {
			return
		}
		go mw.saveTo(w)
	}, mw.Window)
	fd.SetFileName(export.Filename(mw.templateName()))
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	fd.Show()
}

// saveTo writes the exported PNG to w and closes it.
func (mw *MainWindow) saveTo(w io.WriteCloser) error {
	name, err := mw.exporter.Download(mw.ctx, mw.templateName(), w)
	if cerr := w.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: %w", export.ErrExport, cerr)
	}
	fyne.Do(func() {
		if err != nil {
			mw.showError(err)
			return
		}
		mw.updateStatus("Saved " + name)
	})
	return err
}

func (mw *MainWindow) onShare() {
	if !mw.ctrl.Snapshot().Loaded() {
		return
	}
	go mw.share()
}

func (mw *MainWindow) share() (export.ShareResult, error) {
	res, err := mw.exporter.Share(mw.ctx, mw.templateName())
	fyne.Do(func() {
		switch {
		case err != nil:
			mw.showError(err)
		case res.Native:
			mw.updateStatus("Shared")
		default:
			mw.updateStatus("Opened share page for " + res.ObjectURL.String())
		}
	})
	return res, err
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+version.AppName,
		fmt.Sprintf("%s v%s\n\n"+
			"Pick a meme template, roast someone, add text and share it.\n\n"+
			"Templates courtesy of imgflip.com. All memes belong to their respective owners.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.AppName, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

func (mw *MainWindow) onClosed() {
	mw.cancel()
	mw.browser.Close()
	if mw.prefs == nil {
		return
	}
	size := mw.Canvas().Size()
	mw.prefs.RememberWindow(size.Width, size.Height)
	if err := mw.prefs.Save(); err != nil {
		logging.Logger().Warn("window: save preferences", slog.Any("err", err))
	}
}

// URLOpener returns an opener that calls a.OpenURL on the UI goroutine.
func URLOpener(a fyne.App) export.URLOpener {
	return appOpener{app: a}
}

type appOpener struct {
	app fyne.App
}

func (o appOpener) OpenURL(u *url.URL) error {
	var err error
	fyne.DoAndWait(func() {
		err = o.app.OpenURL(u)
	})
	return err
}
