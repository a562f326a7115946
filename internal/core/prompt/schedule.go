// Package prompt contains the pure business logic for the daily prompt loop.
// This is part of the Functional Core - no I/O, only pure functions.
package prompt

import (
	"time"

	"github.com/example/vintagevoice/internal/core/delay"
)

// Interval is the minimum spacing between prompts for a user and the lifetime of an issued prompt.
const Interval = 24 * time.Hour

// Category tags a prompt's theme.
type Category string

const (
	CategoryMemory      Category = "memory"
	CategoryGratitude   Category = "gratitude"
	CategoryObservation Category = "observation"
	CategoryDream       Category = "dream"
	CategoryHumor       Category = "humor"
	CategoryLove        Category = "love"
)

// Template is a catalog entry from which prompts are issued.
type Template struct {
	Key          string
	Text         string
	Category     Category
	DefaultDelay delay.Preset
	Season       string
}

// Prompt is an issued daily prompt.
type Prompt struct {
	ID           string
	TemplateKey  string
	Text         string
	Category     Category
	DefaultDelay delay.Preset
	Season       string
	IssuedAt     time.Time
	ExpiresAt    *time.Time
}

// IsExpired reports whether now is past the prompt's expiry. Prompts without expiry never expire.
func (p Prompt) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// Issue stamps a template into a prompt that expires Interval after now.
func Issue(id string, tmpl Template, now time.Time) Prompt {
	expiresAt := now.Add(Interval)
	return Prompt{
		ID:           id,
		TemplateKey:  tmpl.Key,
		Text:         tmpl.Text,
		Category:     tmpl.Category,
		DefaultDelay: tmpl.DefaultDelay,
		Season:       tmpl.Season,
		IssuedAt:     now,
		ExpiresAt:    &expiresAt,
	}
}

// NextTemplate picks the catalog entry to issue after last.
// It walks the catalog in order starting after last's template and prefers the first
// entry whose category differs from last's. With no history it returns the first entry.
// The catalog must be non-empty.
func NextTemplate(catalog []Template, last *Prompt) Template {
	if last == nil {
		return catalog[0]
	}

	start := 0
	for i, t := range catalog {
		if t.Key == last.TemplateKey {
			start = i + 1
			break
		}
	}

	for i := 0; i < len(catalog); i++ {
		t := catalog[(start+i)%len(catalog)]
		if t.Category != last.Category {
			return t
		}
	}
	return catalog[start%len(catalog)]
}
