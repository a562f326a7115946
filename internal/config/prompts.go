package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/example/vintagevoice/internal/core/delay"
	"github.com/example/vintagevoice/internal/core/prompt"
)

// PromptCatalogFile is the YAML layout of a prompt catalog.
type PromptCatalogFile struct {
	Prompts []PromptEntry `yaml:"prompts"`
}

// PromptEntry is one catalog entry.
type PromptEntry struct {
	Key          string `yaml:"key"`
	Text         string `yaml:"text"`
	Category     string `yaml:"category"`
	DefaultDelay string `yaml:"default_delay"`
	Season       string `yaml:"season,omitempty"`
}

// DefaultPromptCatalog returns the built-in prompts.
func DefaultPromptCatalog() []prompt.Template {
	return []prompt.Template{
		{Key: "best-smell", Text: "Tell them about the best smell you smelled today", Category: prompt.CategoryObservation, DefaultDelay: delay.OneDay},
		{Key: "smile-memory", Text: "Share a memory that made you smile this week", Category: prompt.CategoryMemory, DefaultDelay: delay.ThreeDays},
		{Key: "small-gratitude", Text: "Describe something small you're grateful for", Category: prompt.CategoryGratitude, DefaultDelay: delay.OneDay},
		{Key: "recent-dream", Text: "What's a dream you had recently?", Category: prompt.CategoryDream, DefaultDelay: delay.ThreeDays},
		{Key: "funny-today", Text: "Tell them something funny that happened today", Category: prompt.CategoryHumor, DefaultDelay: delay.OneDay},
	}
}

// LoadPromptCatalog reads a YAML catalog from path.
// An empty path returns the built-in catalog.
func LoadPromptCatalog(path string) ([]prompt.Template, error) {
	if path == "" {
		return DefaultPromptCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt catalog: %w", err)
	}

	return ParsePromptCatalog(data)
}

// ParsePromptCatalog decodes and validates a YAML catalog.
func ParsePromptCatalog(data []byte) ([]prompt.Template, error) {
	var file PromptCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse prompt catalog: %w", err)
	}
	if len(file.Prompts) == 0 {
		return nil, fmt.Errorf("prompt catalog is empty")
	}

	seen := make(map[string]bool, len(file.Prompts))
	templates := make([]prompt.Template, 0, len(file.Prompts))
	for i, entry := range file.Prompts {
		if entry.Key == "" || entry.Text == "" {
			return nil, fmt.Errorf("prompt %d: key and text are required", i)
		}
		if seen[entry.Key] {
			return nil, fmt.Errorf("prompt %d: duplicate key %q", i, entry.Key)
		}
		seen[entry.Key] = true

		preset := delay.OneDay
		if entry.DefaultDelay != "" {
			p, err := delay.Parse(entry.DefaultDelay)
			if err != nil {
				return nil, fmt.Errorf("prompt %q: %w", entry.Key, err)
			}
			preset = p
		}

		templates = append(templates, prompt.Template{
			Key:          entry.Key,
			Text:         entry.Text,
			Category:     prompt.Category(entry.Category),
			DefaultDelay: preset,
			Season:       entry.Season,
		})
	}

	return templates, nil
}
