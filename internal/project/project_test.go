package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"meme-creator/internal/overlay"
	"meme-creator/internal/templates"
	"meme-creator/pkg/colorutil"
	"meme-creator/pkg/geometry"
)

func sampleOverlays() []overlay.TextOverlay {
	top := overlay.DefaultDraft()
	top.Text = "ONE DOES NOT SIMPLY"
	bottom := overlay.DefaultDraft()
	bottom.Text = "write tests after"
	bottom.FontFamily = overlay.FontComicSans
	bottom.FontSizePx = 48
	bottom.FillColor = colorutil.MustParseHex("#ffcc00")
	return []overlay.TextOverlay{
		top.At(geometry.NewPoint2D(250, 60)),
		bottom.At(geometry.NewPoint2D(250.5, 380)),
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boromir"+Extension)

	tmpl := templates.Template{ID: "61579", Name: "One Does Not Simply", ImageURL: "https://i.imgflip.com/1bij.jpg", Width: 568, Height: 335}
	p := New(tmpl)
	want := sampleOverlays()
	p.SetOverlays(want)
	if err := p.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.TemplateFor(path) != tmpl {
		t.Errorf("TemplateFor() = %+v, want %+v", got.TemplateFor(path), tmpl)
	}
	overlays, err := got.TextOverlays()
	if err != nil {
		t.Fatalf("TextOverlays() error = %v", err)
	}
	if len(overlays) != len(want) {
		t.Fatalf("len = %d, want %d", len(overlays), len(want))
	}
	for i := range want {
		if overlays[i] != want[i] {
			t.Errorf("overlay %d = %+v, want %+v", i, overlays[i], want[i])
		}
	}
}

func TestLocalImageStoredRelative(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "images", "cat.png")
	path := filepath.Join(dir, "cat"+Extension)

	p := New(templates.Template{ID: "local", Name: "cat", ImageURL: img})
	if err := p.Save(path); err != nil {
		t.Fatal(err)
	}
	if p.Template.Image != filepath.Join("images", "cat.png") {
		t.Errorf("stored image = %q, want relative", p.Template.Image)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if tmpl := got.TemplateFor(path); tmpl.ImageURL != img {
		t.Errorf("resolved image = %q, want %q", tmpl.ImageURL, img)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	if _, err := Load(filepath.Join(dir, "missing"+Extension)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v", err)
	}
	if _, err := Load(write("bad.memeproj", "{")); err == nil {
		t.Error("corrupt file: no error")
	}
	if _, err := Load(write("future.memeproj", `{"version": 99}`)); !errors.Is(err, ErrVersion) {
		t.Errorf("future version: err = %v", err)
	}
}

func TestTextOverlaysRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		rec  Overlay
		want error
	}{
		{"empty text", Overlay{Text: " ", Fill: "#fff", Outline: "#000", Size: 32, Font: "Impact"}, overlay.ErrEmptyText},
		{"size", Overlay{Text: "a", Fill: "#fff", Outline: "#000", Size: 200, Font: "Impact"}, overlay.ErrFontSize},
		{"font", Overlay{Text: "a", Fill: "#fff", Outline: "#000", Size: 32, Font: "Papyrus"}, overlay.ErrFontFamily},
		{"color", Overlay{Text: "a", Fill: "white", Outline: "#000", Size: 32, Font: "Impact"}, colorutil.ErrBadHex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &File{Version: FileVersion, Overlays: []Overlay{tt.rec}}
			if _, err := p.TextOverlays(); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
