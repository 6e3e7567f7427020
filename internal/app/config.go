package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"meme-creator/internal/caption"
	"meme-creator/internal/logging"
	"meme-creator/internal/overlay"
	"meme-creator/internal/templates"
	"meme-creator/pkg/colorutil"
)

// Caption backends.
const (
	BackendAuto        = "auto"
	BackendOpenAI      = "openai"
	BackendHuggingFace = "huggingface"
	BackendLocal       = "local"
)

// Preference keys shared with the preferences store.
const (
	PrefTheme        = "theme"
	PrefFont         = "draft.font"
	PrefFontSize     = "draft.size"
	PrefFillColor    = "draft.fill"
	PrefOutlineColor = "draft.outline"
	PrefWindowWidth  = "window.width"
	PrefWindowHeight = "window.height"
)

// Theme variants.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Preferences is the read side of the user preferences store.
type Preferences interface {
	String(key string) string
	FloatWithFallback(key string, fallback float64) float64
}

// Config holds runtime settings.
type Config struct {
	ImgflipURL     string
	OpenAIKey      string
	OpenAIURL      string
	OpenAIModel    string
	HuggingFaceKey string
	HuggingFaceURL string
	CaptionBackend string
	HTTPTimeout    time.Duration
	ShareAddr      string // loopback address of the blob server
	LogLevel       slog.Level

	Theme        string
	Draft        overlay.Draft
	WindowWidth  float32
	WindowHeight float32
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		ImgflipURL:     templates.DefaultImgflipURL,
		OpenAIURL:      caption.DefaultOpenAIURL,
		OpenAIModel:    caption.DefaultOpenAIModel,
		HuggingFaceURL: caption.DefaultHuggingFaceURL,
		CaptionBackend: BackendAuto,
		HTTPTimeout:    15 * time.Second,
		ShareAddr:      "127.0.0.1:0",
		LogLevel:       slog.LevelInfo,
		Theme:          ThemeLight,
		Draft:          overlay.DefaultDraft(),
		WindowWidth:    1100,
		WindowHeight:   760,
	}
}

// LoadConfig reads MEME_* environment variables over the defaults.
func LoadConfig() (Config, error) {
	return configFromEnv(os.Getenv)
}

func configFromEnv(getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.ImgflipURL, "MEME_IMGFLIP_URL")
	set(&cfg.OpenAIKey, "MEME_OPENAI_KEY")
	set(&cfg.OpenAIURL, "MEME_OPENAI_URL")
	set(&cfg.OpenAIModel, "MEME_OPENAI_MODEL")
	set(&cfg.HuggingFaceKey, "MEME_HF_KEY")
	set(&cfg.HuggingFaceURL, "MEME_HF_URL")
	set(&cfg.CaptionBackend, "MEME_CAPTION_BACKEND")
	set(&cfg.ShareAddr, "MEME_SHARE_ADDR")

	cfg.CaptionBackend = strings.ToLower(cfg.CaptionBackend)
	switch cfg.CaptionBackend {
	case BackendAuto, BackendOpenAI, BackendHuggingFace, BackendLocal:
	default:
		return cfg, fmt.Errorf("config: MEME_CAPTION_BACKEND: unknown backend %q", cfg.CaptionBackend)
	}
	if v := strings.TrimSpace(getenv("MEME_HTTP_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("config: MEME_HTTP_TIMEOUT: invalid duration %q", v)
		}
		cfg.HTTPTimeout = d
	}
	if v := getenv("MEME_LOG_LEVEL"); v != "" {
		level, err := logging.ParseLevel(v)
		if err != nil {
			return cfg, fmt.Errorf("config: MEME_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}
	return cfg, nil
}

// ApplyPrefs overlays saved user preferences. Invalid values are ignored.
func (c *Config) ApplyPrefs(p Preferences) {
	if p == nil {
		return
	}
	if t := p.String(PrefTheme); t == ThemeLight || t == ThemeDark {
		c.Theme = t
	}
	if f := overlay.FontFamily(p.String(PrefFont)); f.Valid() {
		c.Draft.FontFamily = f
	}
	if size := p.FloatWithFallback(PrefFontSize, 0); size > 0 {
		c.Draft.FontSizePx = overlay.ClampFontSize(int(size))
	}
	if col, err := colorutil.ParseHex(p.String(PrefFillColor)); err == nil {
		c.Draft.FillColor = col
	}
	if col, err := colorutil.ParseHex(p.String(PrefOutlineColor)); err == nil {
		c.Draft.OutlineColor = col
	}
	if w := p.FloatWithFallback(PrefWindowWidth, 0); w >= 400 {
		c.WindowWidth = float32(w)
	}
	if h := p.FloatWithFallback(PrefWindowHeight, 0); h >= 300 {
		c.WindowHeight = float32(h)
	}
}

// CaptionGenerator builds the remote generator for the configured backend, or
// nil when only local captions are available.
func (c Config) CaptionGenerator() caption.Generator {
	switch c.CaptionBackend {
	case BackendLocal:
		return nil
	case BackendOpenAI:
		return caption.NewOpenAI(c.OpenAIURL, c.OpenAIKey, c.OpenAIModel, c.HTTPTimeout)
	case BackendHuggingFace:
		return caption.NewHuggingFace(c.HuggingFaceURL, c.HuggingFaceKey, c.HTTPTimeout)
	}
	switch {
	case c.OpenAIKey != "":
		return caption.NewOpenAI(c.OpenAIURL, c.OpenAIKey, c.OpenAIModel, c.HTTPTimeout)
	case c.HuggingFaceKey != "":
		return caption.NewHuggingFace(c.HuggingFaceURL, c.HuggingFaceKey, c.HTTPTimeout)
	}
	return nil
}
