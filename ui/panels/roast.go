package panels

import (
	"context"
	"errors"
	"strings"
	"sync"

	"meme-creator/internal/app"
	"meme-creator/internal/caption"
	"meme-creator/internal/editor"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// RoastForm asks for a target name and generates a roast caption for the
// current template. A generated caption can be sent to the editor draft.
type RoastForm struct {
	state     *app.State
	provider  *caption.Provider
	ctrl      *editor.Controller
	container fyne.CanvasObject

	targetEntry    *widget.Entry
	intensityRadio *widget.RadioGroup
	styleSelect    *widget.Select
	generateButton *widget.Button
	useButton      *widget.Button
	errorLabel     *widget.Label
	captionLabel   *widget.Label
	progress       *widget.ProgressBarInfinite

	ctx     context.Context
	running sync.WaitGroup

	onUse func(text string)
}

// NewRoastForm creates the roast form.
func NewRoastForm(state *app.State, provider *caption.Provider, ctrl *editor.Controller) *RoastForm {
	rf := &RoastForm{
		state:    state,
		provider: provider,
		ctrl:     ctrl,
		ctx:      context.Background(),
	}

	rf.targetEntry = widget.NewEntry()
	rf.targetEntry.SetPlaceHolder("Who are we roasting?")
	rf.targetEntry.OnSubmitted = func(string) { rf.Generate() }

	intensities := make([]string, len(caption.Intensities))
	for i, v := range caption.Intensities {
		intensities[i] = string(v)
	}
	rf.intensityRadio = widget.NewRadioGroup(intensities, nil)
	rf.intensityRadio.Horizontal = true
	rf.intensityRadio.Required = true
	rf.intensityRadio.SetSelected(string(caption.Medium))

	styles := make([]string, len(caption.Styles))
	for i, v := range caption.Styles {
		styles[i] = string(v)
	}
	rf.styleSelect = widget.NewSelect(styles, nil)
	rf.styleSelect.SetSelected(string(caption.Funny))

	rf.generateButton = widget.NewButtonWithIcon("Generate Roast", theme.MediaPlayIcon(), rf.Generate)
	rf.generateButton.Importance = widget.HighImportance
	rf.useButton = widget.NewButton("Use caption", rf.UseCaption)
	rf.useButton.Disable()

	rf.errorLabel = widget.NewLabel("")
	rf.errorLabel.Importance = widget.DangerImportance
	rf.errorLabel.Hide()
	rf.captionLabel = widget.NewLabel("")
	rf.captionLabel.Wrapping = fyne.TextWrapWord
	rf.captionLabel.TextStyle = fyne.TextStyle{Italic: true}
	rf.progress = widget.NewProgressBarInfinite()
	rf.progress.Hide()

	form := widget.NewForm(
		widget.NewFormItem("Target", rf.targetEntry),
		widget.NewFormItem("Intensity", rf.intensityRadio),
		widget.NewFormItem("Style", rf.styleSelect),
	)
	rf.container = container.NewVBox(
		widget.NewLabelWithStyle("Roast Generator", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		form,
		rf.errorLabel,
		rf.generateButton,
		rf.progress,
		rf.captionLabel,
		rf.useButton,
	)

	state.On(app.EventCaptionChanged, func(interface{}) {
		fyne.Do(rf.Refresh)
	})
	state.On(app.EventLoadingChanged, func(interface{}) {
		fyne.Do(rf.Refresh)
	})
	return rf
}

// Container returns the panel container.
func (rf *RoastForm) Container() fyne.CanvasObject {
	return rf.container
}

// Request returns the caption request described by the form.
func (rf *RoastForm) Request() caption.Request {
	req := caption.Request{
		Target:    rf.targetEntry.Text,
		Intensity: caption.Intensity(rf.intensityRadio.Selected),
		Style:     caption.Style(rf.styleSelect.Selected),
	}
	if t, ok := rf.state.Selected(); ok {
		req.Template = t.Name
	}
	return req
}

// Generate starts caption generation. A missing target name is reported on the
// form and nothing is requested.
func (rf *RoastForm) Generate() {
	req := rf.Request()
	if err := req.Validate(); err != nil {
		rf.showError(err)
		return
	}
	rf.showError(nil)

	rf.running.Add(1)
	go func() {
		defer rf.running.Done()
		if _, err := rf.state.GenerateCaption(rf.ctx, rf.provider, req); err != nil {
			fyne.Do(func() { rf.showError(err) })
		}
	}()
	rf.Refresh()
}

// Wait blocks until in-flight generations have finished.
func (rf *RoastForm) Wait() {
	rf.running.Wait()
}

// SetOnUse sets a callback run after a caption was sent to the draft.
func (rf *RoastForm) SetOnUse(fn func(text string)) {
	rf.onUse = fn
}

// UseCaption copies the generated caption into the editor draft.
func (rf *RoastForm) UseCaption() {
	text := rf.state.Caption()
	if text == "" {
		return
	}
	rf.ctrl.SetDraftText(text)
	if rf.onUse != nil {
		rf.onUse(text)
	}
}

// Reset clears the target and message, keeping the chosen options.
func (rf *RoastForm) Reset() {
	rf.targetEntry.SetText("")
	rf.showError(nil)
	rf.Refresh()
}

// Refresh syncs the caption and loading state from the application state.
func (rf *RoastForm) Refresh() {
	loading := rf.state.CaptionLoading()
	if loading {
		rf.progress.Show()
		rf.progress.Start()
		rf.generateButton.Disable()
	} else {
		rf.progress.Stop()
		rf.progress.Hide()
		rf.generateButton.Enable()
	}

	text := rf.state.Caption()
	rf.captionLabel.SetText(text)
	if text == "" || loading {
		rf.useButton.Disable()
	} else {
		rf.useButton.Enable()
	}
}

func (rf *RoastForm) showError(err error) {
	if err == nil {
		rf.errorLabel.Hide()
		return
	}
	msg := err.Error()
	if errors.Is(err, caption.ErrNoTarget) {
		msg = "Enter a name to roast."
	}
	rf.errorLabel.SetText(strings.TrimSpace(msg))
	rf.errorLabel.Show()
}
