package panels

import (
	"errors"
	"fmt"
	"image/color"

	"meme-creator/internal/editor"
	"meme-creator/internal/overlay"
	"meme-creator/internal/render"
	"meme-creator/pkg/colorutil"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// StylePanel edits the draft text and style and runs the overlay and export
// actions of an editor session.
type StylePanel struct {
	ctrl      *editor.Controller
	window    fyne.Window
	container fyne.CanvasObject

	textEntry     *widget.Entry
	fillSwatch    *fynecanvas.Rectangle
	outlineSwatch *fynecanvas.Rectangle
	fillButton    *widget.Button
	outlineButton *widget.Button
	sizeSlider    *widget.Slider
	sizeLabel     *widget.Label
	fontSelect    *widget.Select

	addButton       *widget.Button
	updateButton    *widget.Button
	removeButton    *widget.Button
	duplicateButton *widget.Button
	downloadButton  *widget.Button
	shareButton     *widget.Button

	// syncing is set while widgets are updated from the draft so their change
	// callbacks do not write back.
	syncing bool

	onError    func(error)
	onDownload func()
	onShare    func()
	onStyle    func(overlay.Draft)
}

// NewStylePanel creates a style panel bound to ctrl.
func NewStylePanel(ctrl *editor.Controller) *StylePanel {
	sp := &StylePanel{ctrl: ctrl}

	sp.textEntry = widget.NewMultiLineEntry()
	sp.textEntry.SetPlaceHolder("Enter meme text...")
	sp.textEntry.SetMinRowsVisible(2)
	sp.textEntry.OnChanged = func(s string) {
		if sp.syncing {
			return
		}
		sp.ctrl.SetDraftText(s)
	}

	sp.fillSwatch = fynecanvas.NewRectangle(colorutil.White)
	sp.fillSwatch.SetMinSize(fyne.NewSize(24, 24))
	sp.fillSwatch.StrokeColor = color.Gray{Y: 0x80}
	sp.fillSwatch.StrokeWidth = 1
	sp.outlineSwatch = fynecanvas.NewRectangle(colorutil.Black)
	sp.outlineSwatch.SetMinSize(fyne.NewSize(24, 24))
	sp.outlineSwatch.StrokeColor = color.Gray{Y: 0x80}
	sp.outlineSwatch.StrokeWidth = 1
	sp.fillButton = widget.NewButton("Text color", func() {
		sp.pickColor("Text color", func(d *overlay.Draft, c color.NRGBA) { d.FillColor = c })
	})
	sp.outlineButton = widget.NewButton("Outline color", func() {
		sp.pickColor("Outline color", func(d *overlay.Draft, c color.NRGBA) { d.OutlineColor = c })
	})

	sp.sizeSlider = widget.NewSlider(overlay.MinFontSize, overlay.MaxFontSize)
	sp.sizeSlider.Step = 1
	sp.sizeLabel = widget.NewLabel("")
	sp.sizeSlider.OnChanged = func(v float64) {
		sp.sizeLabel.SetText(fmt.Sprintf("%dpx", int(v)))
		if sp.syncing {
			return
		}
		sp.updateDraft(func(d *overlay.Draft) { d.FontSizePx = int(v) })
	}

	fonts := make([]string, len(overlay.FontFamilies))
	for i, f := range overlay.FontFamilies {
		fonts[i] = string(f)
	}
	sp.fontSelect = widget.NewSelect(fonts, func(s string) {
		if sp.syncing {
			return
		}
		sp.updateDraft(func(d *overlay.Draft) { d.FontFamily = overlay.FontFamily(s) })
	})

	sp.addButton = widget.NewButtonWithIcon("Add Text", theme.ContentAddIcon(), func() {
		sp.report(sp.ctrl.AddAtCenter())
	})
	sp.addButton.Importance = widget.HighImportance
	sp.updateButton = widget.NewButtonWithIcon("Update", theme.DocumentSaveIcon(), func() {
		sp.report(sp.ctrl.UpdateSelected())
	})
	sp.removeButton = widget.NewButtonWithIcon("Remove", theme.DeleteIcon(), func() {
		sp.report(sp.ctrl.RemoveSelected())
	})
	sp.removeButton.Importance = widget.DangerImportance
	sp.duplicateButton = widget.NewButtonWithIcon("Duplicate", theme.ContentCopyIcon(), func() {
		sp.report(sp.ctrl.DuplicateSelected())
	})
	sp.downloadButton = widget.NewButtonWithIcon("Download", theme.DownloadIcon(), func() {
		if sp.onDownload != nil {
			sp.onDownload()
		}
	})
	sp.shareButton = widget.NewButtonWithIcon("Share", theme.MailSendIcon(), func() {
		if sp.onShare != nil {
			sp.onShare()
		}
	})

	form := widget.NewForm(
		widget.NewFormItem("Text", sp.textEntry),
		widget.NewFormItem("Font", sp.fontSelect),
		widget.NewFormItem("Size", container.NewBorder(nil, nil, nil, sp.sizeLabel, sp.sizeSlider)),
	)
	colors := container.NewGridWithColumns(2,
		container.NewBorder(nil, nil, sp.fillSwatch, nil, sp.fillButton),
		container.NewBorder(nil, nil, sp.outlineSwatch, nil, sp.outlineButton),
	)
	actions := container.NewGridWithColumns(2,
		sp.addButton, sp.updateButton,
		sp.removeButton, sp.duplicateButton,
	)
	exports := container.NewGridWithColumns(2, sp.downloadButton, sp.shareButton)

	sp.container = container.NewVBox(
		widget.NewLabelWithStyle("Text Style", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		form,
		colors,
		widget.NewSeparator(),
		actions,
		widget.NewSeparator(),
		exports,
	)

	ctrl.On(editor.EventDraftChanged, func(interface{}) {
		fyne.Do(sp.Refresh)
	})
	ctrl.On(editor.EventSelectionChanged, func(interface{}) {
		fyne.Do(sp.Refresh)
	})
	ctrl.On(editor.EventLoaded, func(interface{}) {
		fyne.Do(sp.Refresh)
	})

	sp.Refresh()
	return sp
}

// Container returns the panel container.
func (sp *StylePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *StylePanel) SetWindow(w fyne.Window) {
	sp.window = w
}

// SetOnError sets the callback for failed actions.
func (sp *StylePanel) SetOnError(fn func(error)) {
	sp.onError = fn
}

// SetOnExport sets the Download and Share callbacks.
func (sp *StylePanel) SetOnExport(download, share func()) {
	sp.onDownload = download
	sp.onShare = share
}

// SetOnStyleChanged sets a callback run after the user changes a style value.
func (sp *StylePanel) SetOnStyleChanged(fn func(overlay.Draft)) {
	sp.onStyle = fn
}

// Refresh syncs widgets from the controller's draft and selection.
func (sp *StylePanel) Refresh() {
	s := sp.ctrl.Snapshot()
	d := s.Draft.Normalized()

	sp.syncing = true
	if sp.textEntry.Text != d.Text {
		sp.textEntry.SetText(d.Text)
	}
	sp.fontSelect.SetSelected(string(d.FontFamily))
	sp.sizeSlider.SetValue(float64(d.FontSizePx))
	sp.sizeLabel.SetText(fmt.Sprintf("%dpx", d.FontSizePx))
	sp.syncing = false

	sp.fillSwatch.FillColor = d.FillColor
	sp.fillSwatch.Refresh()
	sp.outlineSwatch.FillColor = d.OutlineColor
	sp.outlineSwatch.Refresh()

	_, selected := s.Store.Selected()
	setEnabled(sp.addButton, s.Loaded())
	setEnabled(sp.updateButton, selected)
	setEnabled(sp.removeButton, selected)
	setEnabled(sp.duplicateButton, selected)
	setEnabled(sp.downloadButton, s.Loaded() && !s.Exporting)
	setEnabled(sp.shareButton, s.Loaded() && !s.Exporting)
}

func (sp *StylePanel) updateDraft(fn func(d *overlay.Draft)) {
	d := sp.ctrl.Snapshot().Draft
	fn(&d)
	sp.ctrl.SetDraft(d)
	if sp.onStyle != nil {
		sp.onStyle(sp.ctrl.Snapshot().Draft)
	}
}

func (sp *StylePanel) pickColor(title string, set func(d *overlay.Draft, c color.NRGBA)) {
	if sp.window == nil {
		return
	}
	picker := dialog.NewColorPicker(title, "", func(c color.Color) {
		sp.updateDraft(func(d *overlay.Draft) { set(d, colorutil.ToNRGBA(c)) })
	}, sp.window)
	picker.Advanced = true
	picker.Show()
}

func (sp *StylePanel) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, editor.ErrEmptyDraft),
		errors.Is(err, editor.ErrNoSelection),
		errors.Is(err, editor.ErrBusy),
		errors.Is(err, render.ErrImageNotReady):
		// no-op
	default:
		if sp.onError != nil {
			sp.onError(err)
		}
	}
}

func setEnabled(w fyne.Disableable, on bool) {
	if on {
		w.Enable()
	} else {
		w.Disable()
	}
}
