// Package export turns the editor surface into a PNG and hands it to a file,
// a native share target or a social-share URL.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"meme-creator/internal/logging"
	"meme-creator/internal/render"
)

// ErrExport wraps every failure to serialize or hand off an exported image.
var ErrExport = errors.New("export failed")

// ErrNoShareTarget is returned when neither a native sharer nor an upload
// fallback is configured.
var ErrNoShareTarget = errors.New("no share target available")

const (
	// ContentType of every exported blob.
	ContentType = "image/png"
	// FilenameSuffix is appended to the template slug.
	FilenameSuffix = "-meme.png"
	// ShareText is the message attached to the social-share fallback.
	ShareText = "Check out this meme I created!"
	// IntentURL is the social-share endpoint used when no native share exists.
	IntentURL = "https://twitter.com/intent/tweet"
)

// Session is the editor side of an export.
type Session interface {
	// BeginExport hides the selection indicator, repaints and returns the surface.
	BeginExport() (*render.Surface, error)
	EndExport()
}

// NativeSharer hands a file to the platform share sheet.
type NativeSharer interface {
	Share(ctx context.Context, title, filename, contentType string, data []byte) error
}

// ObjectStore keeps a blob and returns a URL it can be fetched from.
type ObjectStore interface {
	Put(ctx context.Context, filename, contentType string, data []byte) (*url.URL, error)
}

// URLOpener opens a URL in the user's browser. fyne.App satisfies it.
type URLOpener interface {
	OpenURL(u *url.URL) error
}

// Exporter produces PNG blobs from an editor session.
type Exporter struct {
	session Session
	sharer  NativeSharer
	store   ObjectStore
	opener  URLOpener
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithNativeSharer sets the native share target.
func WithNativeSharer(s NativeSharer) Option {
	return func(e *Exporter) { e.sharer = s }
}

// WithFallback sets the object store and URL opener used when native sharing is
// unavailable.
func WithFallback(store ObjectStore, opener URLOpener) Option {
	return func(e *Exporter) {
		e.store = store
		e.opener = opener
	}
}

// New returns an exporter for session.
func New(session Session, opts ...Option) *Exporter {
	e := &Exporter{session: session}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var whitespace = regexp.MustCompile(`\s+`)

// Filename derives the download name from a template name: whitespace runs
// become hyphens, letters are lowercased and "-meme.png" is appended.
func Filename(templateName string) string {
	slug := strings.ToLower(whitespace.ReplaceAllString(strings.TrimSpace(templateName), "-"))
	if slug == "" {
		return strings.TrimPrefix(FilenameSuffix, "-")
	}
	return slug + FilenameSuffix
}

// Blob renders the session without a selection indicator and encodes it as PNG
// at the surface's intrinsic resolution.
func (e *Exporter) Blob(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExport, err)
	}
	surface, err := e.session.BeginExport()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExport, err)
	}
	defer e.session.EndExport()

	var buf bytes.Buffer
	if err := surface.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("%w: encode png: %w", ErrExport, err)
	}
	return buf.Bytes(), nil
}

// Download writes the PNG to w and returns the filename it should be saved as.
func (e *Exporter) Download(ctx context.Context, templateName string, w io.Writer) (string, error) {
	data, err := e.Blob(ctx)
	if err != nil {
		return "", err
	}
	name := Filename(templateName)
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("%w: write %s: %w", ErrExport, name, err)
	}
	logging.Logger().Info("export: downloaded", slog.String("file", name), slog.Int("bytes", len(data)))
	return name, nil
}

// ShareResult describes how a share was carried out.
type ShareResult struct {
	Native    bool
	IntentURL *url.URL // set for the fallback path
	ObjectURL *url.URL // where the blob can be fetched, fallback path only
}

// Share hands the PNG to the native share target when one is configured.
// Otherwise the blob is published to the object store and the social-share
// intent URL referencing it is opened.
func (e *Exporter) Share(ctx context.Context, templateName string) (ShareResult, error) {
	data, err := e.Blob(ctx)
	if err != nil {
		return ShareResult{}, err
	}
	name := Filename(templateName)

	if e.sharer != nil {
		if err := e.sharer.Share(ctx, templateName+" Meme", name, ContentType, data); err != nil {
			return ShareResult{}, fmt.Errorf("%w: native share: %w", ErrExport, err)
		}
		return ShareResult{Native: true}, nil
	}
	if e.store == nil || e.opener == nil {
		return ShareResult{}, fmt.Errorf("%w: %w", ErrExport, ErrNoShareTarget)
	}

	obj, err := e.store.Put(ctx, name, ContentType, data)
	if err != nil {
		return ShareResult{}, fmt.Errorf("%w: create object url: %w", ErrExport, err)
	}
	intent := ShareIntent(obj)
	if err := e.opener.OpenURL(intent); err != nil {
		return ShareResult{}, fmt.Errorf("%w: open share url: %w", ErrExport, err)
	}
	logging.Logger().Info("export: shared via intent", slog.String("object", obj.String()))
	return ShareResult{IntentURL: intent, ObjectURL: obj}, nil
}

// ShareIntent builds the social-share URL for an object URL.
func ShareIntent(object *url.URL) *url.URL {
	u, _ := url.Parse(IntentURL)
	q := url.Values{}
	q.Set("text", ShareText)
	q.Set("url", object.String())
	u.RawQuery = q.Encode()
	return u
}
