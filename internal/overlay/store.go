package overlay

import (
	"errors"
	"fmt"
	"slices"
)

// ErrIndexOutOfRange is returned when a store operation references an index
// that is not in the current sequence.
var ErrIndexOutOfRange = errors.New("overlay: index out of range")

// noSelection marks an empty selection.
const noSelection = -1

// Store is the ordered overlay sequence plus the selected index.
// Append order is paint order. Store is a value: every mutating method returns
// a new Store and leaves the receiver untouched, so snapshots can be shared
// between readers without copying.
type Store struct {
	items    []TextOverlay
	selected int
}

// NewStore returns an empty store with no selection.
func NewStore() Store {
	return Store{selected: noSelection}
}

// Len returns the number of overlays.
func (s Store) Len() int {
	return len(s.items)
}

// At returns the overlay at index i.
func (s Store) At(i int) (TextOverlay, error) {
	if err := s.check(i); err != nil {
		return TextOverlay{}, err
	}
	return s.items[i], nil
}

// Overlays returns a copy of the overlays in paint order.
func (s Store) Overlays() []TextOverlay {
	return slices.Clone(s.items)
}

// Selected returns the selected index, if any.
func (s Store) Selected() (int, bool) {
	if s.selected < 0 || s.selected >= len(s.items) {
		return noSelection, false
	}
	return s.selected, true
}

// SelectedIndex returns the selected index or -1.
func (s Store) SelectedIndex() int {
	i, _ := s.Selected()
	return i
}

// Append adds o at the end of the sequence and returns the new store and its length.
// The selection is unchanged.
func (s Store) Append(o TextOverlay) (Store, int) {
	items := make([]TextOverlay, len(s.items), len(s.items)+1)
	copy(items, s.items)
	items = append(items, o)
	return Store{items: items, selected: s.selectedOrNone()}, len(items)
}

// Update replaces the overlay at index i with the patched record.
func (s Store) Update(i int, p Patch) (Store, error) {
	if err := s.check(i); err != nil {
		return s, err
	}
	items := slices.Clone(s.items)
	items[i] = p.Apply(items[i])
	return Store{items: items, selected: s.selectedOrNone()}, nil
}

// Remove deletes the overlay at index i. A selection at i is cleared and a
// selection above i shifts down by one.
func (s Store) Remove(i int) (Store, error) {
	if err := s.check(i); err != nil {
		return s, err
	}
	items := make([]TextOverlay, 0, len(s.items)-1)
	items = append(items, s.items[:i]...)
	items = append(items, s.items[i+1:]...)

	sel := s.selectedOrNone()
	switch {
	case sel == i:
		sel = noSelection
	case sel > i:
		sel--
	}
	return Store{items: items, selected: sel}, nil
}

// Select marks index i as selected.
func (s Store) Select(i int) (Store, error) {
	if err := s.check(i); err != nil {
		return s, err
	}
	return Store{items: s.items, selected: i}, nil
}

// ClearSelection returns the store with no selection.
func (s Store) ClearSelection() Store {
	return Store{items: s.items, selected: noSelection}
}

func (s Store) selectedOrNone() int {
	i, ok := s.Selected()
	if !ok {
		return noSelection
	}
	return i
}

func (s Store) check(i int) error {
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(s.items))
	}
	return nil
}
