package overlay

import (
	"errors"
	"testing"

	"meme-creator/pkg/geometry"
)

func textAt(text string, x, y float64) TextOverlay {
	d := DefaultDraft()
	d.Text = text
	return d.At(geometry.NewPoint2D(x, y))
}

func TestNewStore(t *testing.T) {
	s := NewStore()
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
	if _, ok := s.Selected(); ok {
		t.Error("new store should have no selection")
	}
}

func TestStore_AppendReturnsLength(t *testing.T) {
	s := NewStore()
	s, n := s.Append(textAt("A", 1, 1))
	if n != 1 {
		t.Errorf("Append returned %d, want 1", n)
	}
	s, n = s.Append(textAt("B", 2, 2))
	if n != 2 {
		t.Errorf("Append returned %d, want 2", n)
	}
	got := s.Overlays()
	if got[0].Text != "A" || got[1].Text != "B" {
		t.Errorf("order = [%q %q], want [A B]", got[0].Text, got[1].Text)
	}
}

func TestStore_IsPure(t *testing.T) {
	s0 := NewStore()
	s1, _ := s0.Append(textAt("A", 1, 1))
	s2, err := s1.Update(0, Patch{Text: ptr("Z")})
	if err != nil {
		t.Fatal(err)
	}
	s3, err := s2.Remove(0)
	if err != nil {
		t.Fatal(err)
	}

	if s0.Len() != 0 {
		t.Errorf("s0 mutated: len %d", s0.Len())
	}
	if o, _ := s1.At(0); o.Text != "A" {
		t.Errorf("s1 mutated: text %q", o.Text)
	}
	if o, _ := s2.At(0); o.Text != "Z" {
		t.Errorf("s2 text %q, want Z", o.Text)
	}
	if s3.Len() != 0 {
		t.Errorf("s3 len %d, want 0", s3.Len())
	}

	// Mutating the returned copy must not leak into the store.
	items := s1.Overlays()
	items[0].Text = "leak"
	if o, _ := s1.At(0); o.Text != "A" {
		t.Errorf("Overlays aliased store data: %q", o.Text)
	}
}

func TestStore_IndexOutOfRange(t *testing.T) {
	s, _ := NewStore().Append(textAt("A", 1, 1))
	for _, i := range []int{-1, 1, 5} {
		if _, err := s.Update(i, Patch{}); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Update(%d) error = %v, want ErrIndexOutOfRange", i, err)
		}
		if _, err := s.Remove(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Remove(%d) error = %v, want ErrIndexOutOfRange", i, err)
		}
		if _, err := s.Select(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Select(%d) error = %v, want ErrIndexOutOfRange", i, err)
		}
		if _, err := s.At(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("At(%d) error = %v, want ErrIndexOutOfRange", i, err)
		}
	}
}

func TestStore_RemoveRemapsSelection(t *testing.T) {
	base := NewStore()
	for _, txt := range []string{"A", "B", "C", "D"} {
		base, _ = base.Append(textAt(txt, 0, 0))
	}

	tests := []struct {
		name     string
		selected int
		remove   int
		want     int
		wantOK   bool
	}{
		{"remove below selection", 2, 0, 1, true},
		{"remove selected", 2, 2, -1, false},
		{"remove above selection", 1, 3, 1, true},
		{"remove last while last selected", 3, 3, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := base.Select(tt.selected)
			if err != nil {
				t.Fatal(err)
			}
			s, err = s.Remove(tt.remove)
			if err != nil {
				t.Fatal(err)
			}
			got, ok := s.Selected()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Selected() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
			if ok && got >= s.Len() {
				t.Errorf("selection %d points past end (len %d)", got, s.Len())
			}
		})
	}
}

func TestStore_SelectionNeverPastEnd(t *testing.T) {
	s := NewStore()
	for i := 0; i < 5; i++ {
		s, _ = s.Append(textAt("x", 0, 0))
	}
	s, _ = s.Select(4)
	for s.Len() > 0 {
		var err error
		s, err = s.Remove(0)
		if err != nil {
			t.Fatal(err)
		}
		if i, ok := s.Selected(); ok && i >= s.Len() {
			t.Fatalf("selection %d past end %d", i, s.Len())
		}
	}
}

func TestStore_UpdateKeepsOtherFields(t *testing.T) {
	s, _ := NewStore().Append(textAt("HELLO", 100, 100))
	s, err := s.Update(0, Patch{Text: ptr("WORLD")})
	if err != nil {
		t.Fatal(err)
	}
	o, _ := s.At(0)
	if o.Text != "WORLD" {
		t.Errorf("text %q, want WORLD", o.Text)
	}
	if o.Position != geometry.NewPoint2D(100, 100) {
		t.Errorf("position %v changed", o.Position)
	}
	if o.FontSizePx != DefaultFontSize || o.FontFamily != FontImpact {
		t.Errorf("style changed: %d %s", o.FontSizePx, o.FontFamily)
	}
}

func TestZeroStoreHasNoSelection(t *testing.T) {
	var s Store
	s, _ = s.Append(textAt("A", 0, 0))
	if _, ok := s.Selected(); ok {
		t.Error("zero-value store gained a selection after Append")
	}
}

func ptr[T any](v T) *T { return &v }
