// Package main provides the entry point for the Meme Creator application.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"meme-creator/internal/app"
	"meme-creator/internal/blobstore"
	"meme-creator/internal/caption"
	"meme-creator/internal/editor"
	"meme-creator/internal/export"
	"meme-creator/internal/logging"
	"meme-creator/internal/render"
	"meme-creator/internal/templates"
	"meme-creator/internal/version"
	"meme-creator/ui/mainwindow"
	"meme-creator/ui/panels"
	"meme-creator/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "meme-creator: %v\n", err)
		os.Exit(2)
	}
	logger := logging.NewText(os.Stderr, cfg.LogLevel)
	logging.SetLogger(logger)
	logger.Info("starting", slog.String("version", version.String()))

	appPrefs := prefs.Load()
	cfg.ApplyPrefs(appPrefs)

	fonts, err := render.NewFontBook()
	if err != nil {
		logger.Error("load fonts", slog.Any("err", err))
		os.Exit(1)
	}
	ctrl := editor.NewController(render.NewCompositor(fonts))
	state := app.NewState(cfg.Theme)

	a := fyneapp.NewWithID(version.AppID)

	blobs := blobstore.New(blobstore.DefaultMaxBlobs)
	var exportOpts []export.Option
	if err := blobs.Start(cfg.ShareAddr); err != nil {
		logger.Warn("share fallback disabled", slog.Any("err", err))
	} else {
		exportOpts = append(exportOpts, export.WithFallback(blobs, mainwindow.URLOpener(a)))
	}

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	catalog := templates.NewCachedProvider(
		templates.NewImgflipClient(cfg.ImgflipURL, cfg.HTTPTimeout),
		templates.NewCache(),
	)
	captions := caption.NewProvider(cfg.CaptionGenerator(), caption.NewFallback(nil))

	win := mainwindow.New(a, mainwindow.Deps{
		Config:     cfg,
		State:      state,
		Controller: ctrl,
		Templates:  catalog,
		Captions:   captions,
		Exporter:   export.New(ctrl, exportOpts...),
		Prefs:      appPrefs,
		Loader:     panels.HTTPImageLoader(client),
	})

	// An image given on the command line opens straight away.
	if len(os.Args) > 1 {
		path := os.Args[1]
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		win.Open(templates.Template{ID: "local:" + path, Name: name, ImageURL: path})
	}

	win.Start()
	a.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := blobs.Close(ctx); err != nil {
		logger.Warn("blobstore close", slog.Any("err", err))
	}
}
