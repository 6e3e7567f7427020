package blobstore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func newTestStore(t *testing.T, maxBlobs int) (*Store, *httptest.Server) {
	t.Helper()
	s := New(maxBlobs)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	base, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	s.SetBaseURL(base)
	return s, ts
}

func get(t *testing.T, u string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(u)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func TestStore_PutServe(t *testing.T) {
	s, _ := newTestStore(t, 0)
	u, err := s.Put(context.Background(), "drake-meme.png", "image/png", []byte("PNGDATA"))
	if err != nil {
		t.Fatal(err)
	}
	resp, body := get(t, u.String())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if string(body) != "PNGDATA" {
		t.Errorf("body %q", body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type %q", ct)
	}
}

func TestStore_NotFound(t *testing.T) {
	s, ts := newTestStore(t, 0)
	u, err := s.Put(context.Background(), "a.png", "image/png", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{"/blobs/nope/a.png", "/blobs/" + idFromPath(u.Path) + "/other.png", "/"} {
		if resp, _ := get(t, ts.URL+p); resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", p, resp.StatusCode)
		}
	}
}

func TestStore_Revoke(t *testing.T) {
	s, _ := newTestStore(t, 0)
	u, err := s.Put(context.Background(), "a.png", "image/png", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	s.Revoke(u)
	if s.Len() != 0 {
		t.Errorf("len %d after revoke", s.Len())
	}
	if resp, _ := get(t, u.String()); resp.StatusCode != http.StatusNotFound {
		t.Errorf("revoked blob status %d", resp.StatusCode)
	}
	s.Revoke(&url.URL{Path: "/elsewhere"})
}

func TestStore_Evicts(t *testing.T) {
	s, _ := newTestStore(t, 2)
	var urls []*url.URL
	for range 3 {
		u, err := s.Put(context.Background(), "m.png", "image/png", []byte("x"))
		if err != nil {
			t.Fatal(err)
		}
		urls = append(urls, u)
	}
	if s.Len() != 2 {
		t.Errorf("len %d, want 2", s.Len())
	}
	if resp, _ := get(t, urls[0].String()); resp.StatusCode != http.StatusNotFound {
		t.Errorf("oldest blob still served: %d", resp.StatusCode)
	}
	if resp, _ := get(t, urls[2].String()); resp.StatusCode != http.StatusOK {
		t.Errorf("newest blob status %d", resp.StatusCode)
	}
}

func TestStore_PutErrors(t *testing.T) {
	s := New(0)
	if _, err := s.Put(context.Background(), "a.png", "image/png", []byte("x")); !errors.Is(err, ErrNotStarted) {
		t.Errorf("err = %v, want ErrNotStarted", err)
	}
	s2, _ := newTestStore(t, 0)
	if _, err := s2.Put(context.Background(), "a.png", "image/png", nil); !errors.Is(err, ErrEmptyBlob) {
		t.Errorf("err = %v, want ErrEmptyBlob", err)
	}
}

func TestStore_StartClose(t *testing.T) {
	s := New(0)
	if err := s.Start("127.0.0.1:0"); err != nil {
		t.Fatal(err)
	}
	if err := s.Start("127.0.0.1:0"); !errors.Is(err, ErrStarted) {
		t.Errorf("second Start err = %v", err)
	}
	u, err := s.Put(context.Background(), "../../etc/x.png", "image/png", []byte("abc"))
	if err != nil {
		t.Fatal(err)
	}
	if resp, body := get(t, u.String()); resp.StatusCode != http.StatusOK || string(body) != "abc" {
		t.Errorf("GET %s = %d %q", u, resp.StatusCode, body)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put(context.Background(), "a.png", "", []byte("x")); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Put after Close err = %v", err)
	}
}
