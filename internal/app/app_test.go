package app

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"meme-creator/internal/caption"
	"meme-creator/internal/overlay"
	"meme-creator/internal/templates"
	"meme-creator/pkg/colorutil"

	"fyne.io/fyne/v2/theme"
)

var catalog = []templates.Template{
	{ID: "1", Name: "Drake Hotline Bling", Width: 1200, Height: 1200},
	{ID: "2", Name: "Distracted Boyfriend", Width: 1200, Height: 800},
}

func staticProvider(items []templates.Template, err error) templates.Provider {
	return templates.ProviderFunc(func(context.Context) ([]templates.Template, error) {
		return items, err
	})
}

func TestState_EmptyCatalog(t *testing.T) {
	s := NewState(ThemeLight)
	var loaded []int
	s.On(EventTemplatesLoaded, func(data interface{}) { loaded = append(loaded, data.(int)) })

	s.LoadTemplates(context.Background(), staticProvider([]templates.Template{}, nil))
	if n := len(s.Visible()); n != 0 {
		t.Errorf("visible = %d, want 0", n)
	}
	if s.Loading() {
		t.Error("still loading")
	}
	if msg := s.EmptyMessage(); msg != MsgNoTemplates {
		t.Errorf("EmptyMessage = %q", msg)
	}
	if len(loaded) != 1 || loaded[0] != 0 {
		t.Errorf("loaded events = %v", loaded)
	}
}

func TestState_FetchFailure(t *testing.T) {
	s := NewState(ThemeLight)
	var banners []string
	s.On(EventBannerChanged, func(data interface{}) { banners = append(banners, data.(string)) })

	s.LoadTemplates(context.Background(), staticProvider(nil, templates.ErrFetchFailure))
	if s.Banner() != MsgFetchFailed {
		t.Errorf("banner = %q", s.Banner())
	}
	if len(s.Templates()) != 0 || s.EmptyMessage() != MsgNoTemplates {
		t.Errorf("templates %d, empty message %q", len(s.Templates()), s.EmptyMessage())
	}
	if len(banners) != 1 {
		t.Errorf("banner events = %v", banners)
	}
	s.DismissBanner()
	if s.Banner() != "" {
		t.Error("banner not dismissed")
	}
}

func TestState_StaleFetchDropped(t *testing.T) {
	s := NewState(ThemeLight)
	first := s.BeginFetch()
	second := s.BeginFetch()
	if !s.FinishFetch(second, catalog, nil) {
		t.Fatal("current fetch rejected")
	}
	if s.FinishFetch(first, nil, errors.New("late failure")) {
		t.Error("stale fetch applied")
	}
	if len(s.Templates()) != 2 || s.Banner() != "" {
		t.Errorf("stale result leaked: %d templates, banner %q", len(s.Templates()), s.Banner())
	}
}

func TestState_SearchAndEmptyMatches(t *testing.T) {
	s := NewState(ThemeLight)
	if s.EmptyMessage() != "" {
		t.Error("empty message before first fetch")
	}
	s.LoadTemplates(context.Background(), staticProvider(catalog, nil))
	s.SetQuery("boyfriend")
	if v := s.Visible(); len(v) != 1 || v[0].ID != "2" {
		t.Errorf("Visible = %v", v)
	}
	s.SetQuery("cat")
	if s.EmptyMessage() != MsgNoMatches {
		t.Errorf("EmptyMessage = %q", s.EmptyMessage())
	}
	s.SetQuery("")
	if len(s.Visible()) != 2 {
		t.Error("clearing the query did not restore all templates")
	}
}

func TestState_RandomTemplate(t *testing.T) {
	s := NewState(ThemeLight)
	if _, _, ok := s.RandomTemplate(nil); ok {
		t.Error("random pick from empty catalog")
	}
	s.LoadTemplates(context.Background(), staticProvider(catalog, nil))
	tpl, tick, ok := s.RandomTemplate(rand.New(rand.NewPCG(3, 4)))
	if !ok {
		t.Fatal("no pick")
	}
	if sel, _ := s.Selected(); sel.ID != tpl.ID || !s.ImageCurrent(tick) {
		t.Errorf("selected %v, current %v", sel, s.ImageCurrent(tick))
	}
}

func TestState_ImageTicket(t *testing.T) {
	s := NewState(ThemeLight)
	a := s.SelectTemplate(catalog[0])
	b := s.SelectTemplate(catalog[1])
	if s.ImageCurrent(a) || !s.ImageCurrent(b) {
		t.Errorf("ImageCurrent a=%v b=%v", s.ImageCurrent(a), s.ImageCurrent(b))
	}
	s.ClearTemplate()
	if s.ImageCurrent(b) {
		t.Error("image still current after returning to the browser")
	}
}

func TestState_Caption(t *testing.T) {
	s := NewState(ThemeLight)
	s.SelectTemplate(catalog[0])
	p := caption.NewProvider(nil, caption.NewFallback(rand.New(rand.NewPCG(5, 6))))

	if _, err := s.GenerateCaption(context.Background(), p, caption.Request{}); !errors.Is(err, caption.ErrNoTarget) {
		t.Errorf("missing target err = %v", err)
	}
	text, err := s.GenerateCaption(context.Background(), p, caption.Request{Target: "Jo", Intensity: caption.Mild, Style: caption.Clever})
	if err != nil {
		t.Fatal(err)
	}
	if text == "" || s.Caption() != text || s.CaptionLoading() {
		t.Errorf("caption %q state %q loading %v", text, s.Caption(), s.CaptionLoading())
	}

	// A caption requested for the previous template is dropped.
	tick := s.BeginCaption()
	s.SelectTemplate(catalog[1])
	if s.FinishCaption(tick, "late") {
		t.Error("stale caption applied")
	}
	if s.Caption() != "" {
		t.Errorf("caption = %q after template change", s.Caption())
	}
}

func TestState_ToggleTheme(t *testing.T) {
	s := NewState("")
	if s.Theme() != ThemeLight {
		t.Errorf("default theme %q", s.Theme())
	}
	if got := s.ToggleTheme(); got != ThemeDark {
		t.Errorf("toggle = %q", got)
	}
	if got := s.ToggleTheme(); got != ThemeLight {
		t.Errorf("toggle = %q", got)
	}
}

func TestMemeTheme_Variant(t *testing.T) {
	dark := NewTheme(ThemeDark)
	light := NewTheme(ThemeLight)
	if dark.Color(theme.ColorNameBackground, theme.VariantLight) == light.Color(theme.ColorNameBackground, theme.VariantLight) {
		t.Error("dark and light themes share a background")
	}
}

func TestConfigFromEnv(t *testing.T) {
	env := map[string]string{
		"MEME_OPENAI_KEY":   "sk-test",
		"MEME_HTTP_TIMEOUT": "3s",
		"MEME_LOG_LEVEL":    "debug",
	}
	cfg, err := configFromEnv(func(k string) string { return env[k] })
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPTimeout != 3*time.Second || cfg.OpenAIKey != "sk-test" || cfg.ImgflipURL != templates.DefaultImgflipURL {
		t.Errorf("cfg = %+v", cfg)
	}
	if _, ok := cfg.CaptionGenerator().(*caption.OpenAI); !ok {
		t.Errorf("auto backend with OpenAI key = %T", cfg.CaptionGenerator())
	}

	for key, val := range map[string]string{
		"MEME_HTTP_TIMEOUT":    "soon",
		"MEME_LOG_LEVEL":       "chatty",
		"MEME_CAPTION_BACKEND": "gpt9",
	} {
		if _, err := configFromEnv(func(k string) string {
			if k == key {
				return val
			}
			return ""
		}); err == nil {
			t.Errorf("%s=%s accepted", key, val)
		}
	}

	local, _ := configFromEnv(func(k string) string {
		if k == "MEME_CAPTION_BACKEND" {
			return "local"
		}
		return ""
	})
	if local.CaptionGenerator() != nil {
		t.Error("local backend built a remote generator")
	}
}

type mapPrefs map[string]interface{}

func (m mapPrefs) String(key string) string {
	s, _ := m[key].(string)
	return s
}

func (m mapPrefs) FloatWithFallback(key string, fallback float64) float64 {
	if f, ok := m[key].(float64); ok {
		return f
	}
	return fallback
}

func TestConfig_ApplyPrefs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyPrefs(mapPrefs{
		PrefTheme:        ThemeDark,
		PrefFont:         string(overlay.FontArial),
		PrefFontSize:     99.0,
		PrefFillColor:    "#ffcc00",
		PrefOutlineColor: "not a color",
		PrefWindowWidth:  50.0,
	})
	if cfg.Theme != ThemeDark || cfg.Draft.FontFamily != overlay.FontArial || cfg.Draft.FontSizePx != overlay.MaxFontSize {
		t.Errorf("cfg = %+v", cfg)
	}
	if colorutil.Hex(cfg.Draft.FillColor) != "#ffcc00" || cfg.Draft.OutlineColor != colorutil.Black {
		t.Errorf("colors fill %v outline %v", cfg.Draft.FillColor, cfg.Draft.OutlineColor)
	}
	if cfg.WindowWidth != 1100 {
		t.Errorf("window width %v, tiny value should be ignored", cfg.WindowWidth)
	}
}
