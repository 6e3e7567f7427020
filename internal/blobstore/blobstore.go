// Package blobstore keeps exported images in memory and serves them from a
// loopback HTTP server, so other applications can reach them by object URL.
package blobstore

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"meme-creator/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

var (
	ErrNotStarted = errors.New("blobstore: server not started")
	ErrStarted    = errors.New("blobstore: server already started")
	ErrEmptyBlob  = errors.New("blobstore: empty blob")
)

// DefaultMaxBlobs bounds how many blobs are kept before the oldest is evicted.
const DefaultMaxBlobs = 32

type blob struct {
	name        string
	contentType string
	data        []byte
	created     time.Time
}

// Store is an in-memory blob registry with an HTTP front end.
type Store struct {
	mu      sync.RWMutex
	blobs   map[string]blob
	order   []string // insertion order, oldest first
	max     int
	baseURL *url.URL

	server *http.Server
	router chi.Router
}

// New returns a store that keeps at most maxBlobs blobs (DefaultMaxBlobs if <= 0).
func New(maxBlobs int) *Store {
	if maxBlobs <= 0 {
		maxBlobs = DefaultMaxBlobs
	}
	s := &Store{
		blobs: make(map[string]blob),
		max:   maxBlobs,
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	s.RegisterRoutes(r)
	s.router = r
	return s
}

// RegisterRoutes mounts the blob endpoints on r.
func (s *Store) RegisterRoutes(r chi.Router) {
	r.Route("/blobs/{id}", func(r chi.Router) {
		r.Get("/{name}", s.serveBlob)
		r.Head("/{name}", s.serveBlob)
	})
}

// Handler returns the HTTP handler serving blobs.
func (s *Store) Handler() http.Handler {
	return s.router
}

// Start listens on addr (a loopback address such as "127.0.0.1:0") and serves
// in the background. Object URLs are rooted at the bound address.
func (s *Store) Start(addr string) error {
	s.mu.Lock()
	if s.server != nil {
		s.mu.Unlock()
		return ErrStarted
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("blobstore: listen %s: %w", addr, err)
	}
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.baseURL = &url.URL{Scheme: "http", Host: ln.Addr().String()}
	srv := s.server
	s.mu.Unlock()

	logging.Logger().Info("blobstore: listening", slog.String("addr", ln.Addr().String()))
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger().Error("blobstore: serve", slog.Any("err", err))
		}
	}()
	return nil
}

// SetBaseURL roots object URLs at base without starting a server, for when the
// handler is mounted elsewhere.
func (s *Store) SetBaseURL(base *url.URL) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = base
}

// Close shuts the server down and drops every blob.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.baseURL = nil
	s.blobs = make(map[string]blob)
	s.order = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Put stores data and returns its object URL.
func (s *Store) Put(ctx context.Context, filename, contentType string, data []byte) (*url.URL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyBlob
	}
	name := path.Base("/" + strings.TrimSpace(filename))
	if name == "/" || name == "." {
		name = "blob"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.baseURL == nil {
		return nil, ErrNotStarted
	}
	id := newID()
	s.blobs[id] = blob{
		name:        name,
		contentType: contentType,
		data:        append([]byte(nil), data...),
		created:     time.Now(),
	}
	s.order = append(s.order, id)
	for len(s.order) > s.max {
		delete(s.blobs, s.order[0])
		s.order = s.order[1:]
	}
	return s.baseURL.JoinPath("blobs", id, name), nil
}

// Revoke forgets the blob behind an object URL. Unknown URLs are ignored.
func (s *Store) Revoke(u *url.URL) {
	id := idFromPath(u.Path)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[id]; !ok {
		return
	}
	delete(s.blobs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of stored blobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

func (s *Store) serveBlob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.RLock()
	b, ok := s.blobs[id]
	s.mu.RUnlock()
	if !ok || chi.URLParam(r, "name") != b.name {
		http.NotFound(w, r)
		return
	}
	if b.contentType != "" {
		w.Header().Set("Content-Type", b.contentType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(b.data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", b.name))
	w.Header().Set("Last-Modified", b.created.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(b.data)
}

// idFromPath extracts the id from /blobs/{id}/{name}.
func idFromPath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	if len(parts) < 2 || parts[0] != "blobs" {
		return ""
	}
	return parts[1]
}

func newID() string {
	// 10 bytes -> 16 chars of base32, short and url-safe.
	buf := make([]byte, 10)
	_, _ = rand.Read(buf)
	encoder := base32.StdEncoding.WithPadding(base32.NoPadding)
	return strings.ToLower(encoder.EncodeToString(buf))
}
