// Package project provides meme project files: a template reference plus the
// text overlays placed on it, so an editing session can be saved and reopened.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"meme-creator/internal/overlay"
	"meme-creator/internal/templates"
	"meme-creator/pkg/colorutil"
	"meme-creator/pkg/geometry"
)

const (
	// FileVersion is the format version written by Save.
	FileVersion = 1
	// Extension is the project file extension.
	Extension = ".memeproj"
)

// ErrVersion is returned for project files written by a newer release.
var ErrVersion = errors.New("project: unsupported file version")

// File represents a meme project file (.memeproj).
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	Template TemplateRef `json:"template"`
	Overlays []Overlay   `json:"overlays"`
}

// TemplateRef identifies the base image. Image is a URL or a path relative to
// the project file.
type TemplateRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Overlay is the stored form of one text overlay. Position is in intrinsic
// image pixels.
type Overlay struct {
	Text    string  `json:"text"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Fill    string  `json:"fill"`
	Outline string  `json:"outline"`
	Size    int     `json:"size"`
	Font    string  `json:"font"`
}

// New creates a project for template t.
func New(t templates.Template) *File {
	now := time.Now()
	return &File{
		Version:  FileVersion,
		Name:     t.Name,
		Created:  now,
		Modified: now,
		Template: TemplateRef{
			ID:     t.ID,
			Name:   t.Name,
			Image:  t.ImageURL,
			Width:  t.Width,
			Height: t.Height,
		},
	}
}

// Load loads a project from a .memeproj file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("project: parse %s: %w", filepath.Base(path), err)
	}
	if proj.Version < 1 || proj.Version > FileVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, proj.Version)
	}
	return &proj, nil
}

// Save saves the project to a file. A local template image is stored relative
// to the project file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()
	p.Version = FileVersion
	if isLocal(p.Template.Image) && filepath.IsAbs(p.Template.Image) {
		if rel, err := filepath.Rel(filepath.Dir(path), p.Template.Image); err == nil {
			p.Template.Image = rel
		}
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// SetOverlays replaces the stored overlays.
func (p *File) SetOverlays(list []overlay.TextOverlay) {
	p.Overlays = make([]Overlay, len(list))
	for i, o := range list {
		p.Overlays[i] = Overlay{
			Text:    o.Text,
			X:       o.Position.X,
			Y:       o.Position.Y,
			Fill:    colorutil.Hex(o.FillColor),
			Outline: colorutil.Hex(o.OutlineColor),
			Size:    o.FontSizePx,
			Font:    string(o.FontFamily),
		}
	}
	p.Modified = time.Now()
}

// TextOverlays returns the stored overlays in paint order.
func (p *File) TextOverlays() ([]overlay.TextOverlay, error) {
	out := make([]overlay.TextOverlay, 0, len(p.Overlays))
	for i, rec := range p.Overlays {
		fill, err := colorutil.ParseHex(rec.Fill)
		if err != nil {
			return nil, fmt.Errorf("project: overlay %d: %w", i, err)
		}
		outline, err := colorutil.ParseHex(rec.Outline)
		if err != nil {
			return nil, fmt.Errorf("project: overlay %d: %w", i, err)
		}
		o := overlay.TextOverlay{
			Text:         rec.Text,
			Position:     geometry.NewPoint2D(rec.X, rec.Y),
			FillColor:    fill,
			OutlineColor: outline,
			FontSizePx:   rec.Size,
			FontFamily:   overlay.FontFamily(rec.Font),
		}
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("project: overlay %d: %w", i, err)
		}
		out = append(out, o)
	}
	return out, nil
}

// TemplateFor returns the template with its image resolved against the
// project file's directory.
func (p *File) TemplateFor(projectPath string) templates.Template {
	img := p.Template.Image
	if isLocal(img) && !filepath.IsAbs(img) {
		img = filepath.Join(filepath.Dir(projectPath), img)
	}
	return templates.Template{
		ID:       p.Template.ID,
		Name:     p.Template.Name,
		ImageURL: img,
		Width:    p.Template.Width,
		Height:   p.Template.Height,
	}
}

// isLocal reports whether ref is a file path rather than a URL.
func isLocal(ref string) bool {
	if ref == "" {
		return false
	}
	u, err := url.Parse(ref)
	// Windows drive letters parse as one-letter schemes.
	return err != nil || u.Scheme == "" || len(u.Scheme) == 1
}
