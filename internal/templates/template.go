// Package templates fetches the meme template catalog and offers search and
// random selection over it.
package templates

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
)

// ErrFetchFailure is returned when the catalog could not be fetched.
var ErrFetchFailure = errors.New("templates: fetch failed")

// Template is one catalog entry.
type Template struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BoxCount int    `json:"box_count,omitempty"`
}

// Provider returns the template catalog. An empty slice is a valid answer.
type Provider interface {
	FetchTemplates(ctx context.Context) ([]Template, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) ([]Template, error)

// FetchTemplates implements Provider.
func (f ProviderFunc) FetchTemplates(ctx context.Context) ([]Template, error) {
	return f(ctx)
}

// Filter returns the templates whose name contains query, case-insensitively.
// An empty query returns all templates.
func Filter(all []Template, query string) []Template {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}
	var out []Template
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Name), q) {
			out = append(out, t)
		}
	}
	return out
}

// RandomPick returns a uniformly chosen template, or false for an empty list.
func RandomPick(all []Template, r *rand.Rand) (Template, bool) {
	if len(all) == 0 {
		return Template{}, false
	}
	if r == nil {
		return all[rand.IntN(len(all))], true
	}
	return all[r.IntN(len(all))], true
}

// ByID returns the template with the given id.
func ByID(all []Template, id string) (Template, bool) {
	for _, t := range all {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}
