package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// MemeTheme is the application theme. It pins the light or dark variant chosen
// by the user regardless of the system setting.
type MemeTheme struct {
	Variant string // ThemeLight or ThemeDark
}

var _ fyne.Theme = (*MemeTheme)(nil)

// NewTheme returns the theme for a variant name.
func NewTheme(variant string) *MemeTheme {
	return &MemeTheme{Variant: variant}
}

func (t *MemeTheme) variant() fyne.ThemeVariant {
	if t.Variant == ThemeDark {
		return theme.VariantDark
	}
	return theme.VariantLight
}

func (t *MemeTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	v := t.variant()
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0x7C, G: 0x3A, B: 0xED, A: 0xFF} // purple
	case theme.ColorNameError:
		return color.NRGBA{R: 0xDC, G: 0x26, B: 0x26, A: 0xFF}
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0x3B, G: 0x82, B: 0xF6, A: 0x60}
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, v)
	}
}

func (t *MemeTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *MemeTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *MemeTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}
