package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/url"
	"testing"

	"meme-creator/internal/editor"
	"meme-creator/internal/overlay"
	"meme-creator/internal/render"
)

func TestFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Distracted Boyfriend", "distracted-boyfriend-meme.png"},
		{"Drake Hotline Bling", "drake-hotline-bling-meme.png"},
		{"  Change   My\tMind ", "change-my-mind-meme.png"},
		{"UNO", "uno-meme.png"},
		{"", "meme.png"},
	}
	for _, tt := range tests {
		if got := Filename(tt.in); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func newSession(t *testing.T, w, h int) *editor.Controller {
	t.Helper()
	fb, err := render.NewFontBook()
	if err != nil {
		t.Fatal(err)
	}
	c := editor.NewController(render.NewCompositor(fb))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	if err := c.Load("Distracted Boyfriend", img); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestExporter_BlobClearsSelection(t *testing.T) {
	c := newSession(t, 240, 160)
	c.SetDraftText("TOP TEXT")
	if err := c.AddAtCenter(); err != nil {
		t.Fatal(err)
	}
	if err := c.Select(0); err != nil {
		t.Fatal(err)
	}

	data, err := New(c).Blob(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 240 || b.Dy() != 160 {
		t.Errorf("exported %v, want 240x160", b)
	}
	s := c.Snapshot()
	if _, ok := s.Store.Selected(); ok || s.Exporting {
		t.Errorf("after export: selected=%v exporting=%v", ok, s.Exporting)
	}

	// No selection blue may appear in the output.
	r := render.SelectionRect(mustOverlay(t, c), c.Measurer())
	px, py := int(r.X)+2, int(r.Y)
	got := color.NRGBAModel.Convert(img.At(px, py)).(color.NRGBA)
	if got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("pixel (%d,%d) = %v, want white", px, py, got)
	}
}

func mustOverlay(t *testing.T, c *editor.Controller) overlay.TextOverlay {
	t.Helper()
	o, err := c.Snapshot().Store.At(0)
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func TestExporter_NotReady(t *testing.T) {
	fb, err := render.NewFontBook()
	if err != nil {
		t.Fatal(err)
	}
	c := editor.NewController(render.NewCompositor(fb))
	_, err = New(c).Blob(context.Background())
	if !errors.Is(err, ErrExport) || !errors.Is(err, render.ErrImageNotReady) {
		t.Errorf("err = %v, want ErrExport wrapping ErrImageNotReady", err)
	}
}

func TestExporter_Download(t *testing.T) {
	c := newSession(t, 64, 64)
	var buf bytes.Buffer
	name, err := New(c).Download(context.Background(), "Distracted Boyfriend", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if name != "distracted-boyfriend-meme.png" {
		t.Errorf("name = %q", name)
	}
	if _, err := png.DecodeConfig(&buf); err != nil {
		t.Errorf("not a png: %v", err)
	}
}

type fakeSharer struct {
	filename, contentType string
	n                     int
	err                   error
}

func (f *fakeSharer) Share(_ context.Context, _, filename, contentType string, data []byte) error {
	f.filename, f.contentType, f.n = filename, contentType, len(data)
	return f.err
}

type fakeStore struct {
	data []byte
	err  error
}

func (f *fakeStore) Put(_ context.Context, filename, _ string, data []byte) (*url.URL, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.data = data
	return &url.URL{Scheme: "http", Host: "127.0.0.1:9999", Path: "/blobs/1/" + filename}, nil
}

type fakeOpener struct{ opened *url.URL }

func (f *fakeOpener) OpenURL(u *url.URL) error {
	f.opened = u
	return nil
}

func TestExporter_ShareNative(t *testing.T) {
	c := newSession(t, 32, 32)
	sh := &fakeSharer{}
	store := &fakeStore{}
	res, err := New(c, WithNativeSharer(sh), WithFallback(store, &fakeOpener{})).Share(context.Background(), "Change My Mind")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Native || sh.filename != "change-my-mind-meme.png" || sh.contentType != ContentType || sh.n == 0 {
		t.Errorf("native share = %+v, sharer %+v", res, sh)
	}
	if store.data != nil {
		t.Error("fallback used despite native sharer")
	}

	sh.err = errors.New("cancelled")
	if _, err := New(c, WithNativeSharer(sh)).Share(context.Background(), "x"); !errors.Is(err, ErrExport) {
		t.Errorf("failed native share err = %v", err)
	}
}

func TestExporter_ShareFallback(t *testing.T) {
	c := newSession(t, 32, 32)
	store := &fakeStore{}
	op := &fakeOpener{}
	res, err := New(c, WithFallback(store, op)).Share(context.Background(), "Change My Mind")
	if err != nil {
		t.Fatal(err)
	}
	if res.Native || op.opened == nil || op.opened != res.IntentURL {
		t.Fatalf("fallback result %+v, opened %v", res, op.opened)
	}
	if op.opened.Host != "twitter.com" || op.opened.Path != "/intent/tweet" {
		t.Errorf("intent url %v", op.opened)
	}
	q := op.opened.Query()
	if q.Get("text") != ShareText || q.Get("url") != res.ObjectURL.String() {
		t.Errorf("intent query %v", q)
	}
	if len(store.data) == 0 {
		t.Error("blob not stored")
	}
}

func TestExporter_ShareErrors(t *testing.T) {
	c := newSession(t, 32, 32)
	if _, err := New(c).Share(context.Background(), "x"); !errors.Is(err, ErrNoShareTarget) {
		t.Errorf("no target err = %v", err)
	}
	store := &fakeStore{err: errors.New("disk full")}
	op := &fakeOpener{}
	_, err := New(c, WithFallback(store, op)).Share(context.Background(), "x")
	if !errors.Is(err, ErrExport) || op.opened != nil {
		t.Errorf("store failure err = %v opened %v", err, op.opened)
	}
	// Editor state survives a failed share.
	if c.Snapshot().Exporting {
		t.Error("Exporting left set after failure")
	}
}

func TestExporter_CancelledContext(t *testing.T) {
	c := newSession(t, 8, 8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(c).Blob(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}
