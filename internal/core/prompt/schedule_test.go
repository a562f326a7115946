package prompt

import (
	"testing"
	"time"

	"github.com/example/vintagevoice/internal/core/delay"
)

var catalog = []Template{
	{Key: "smell", Text: "Tell them about the best smell you smelled today", Category: CategoryObservation, DefaultDelay: delay.OneDay},
	{Key: "sky", Text: "Describe the sky right now", Category: CategoryObservation, DefaultDelay: delay.OneDay},
	{Key: "smile", Text: "Share a memory that made you smile this week", Category: CategoryMemory, DefaultDelay: delay.ThreeDays},
	{Key: "small", Text: "Describe something small you're grateful for", Category: CategoryGratitude, DefaultDelay: delay.OneDay},
}

func TestIssue(t *testing.T) {
	now := time.Date(2026, 2, 1, 19, 0, 0, 0, time.UTC)
	p := Issue("p-1", catalog[2], now)

	if p.ID != "p-1" || p.TemplateKey != "smile" || p.Category != CategoryMemory {
		t.Errorf("unexpected prompt %+v", p)
	}
	if p.ExpiresAt == nil || !p.ExpiresAt.Equal(now.Add(24*time.Hour)) {
		t.Fatalf("ExpiresAt = %v, want now+24h", p.ExpiresAt)
	}
	if p.IsExpired(now.Add(24 * time.Hour)) {
		t.Error("prompt should not be expired exactly at expiresAt")
	}
	if !p.IsExpired(now.Add(24*time.Hour + time.Nanosecond)) {
		t.Error("prompt should be expired after expiresAt")
	}
}

func TestIsExpired_NoExpiry(t *testing.T) {
	p := Prompt{ID: "p"}
	if p.IsExpired(time.Now().Add(1000 * time.Hour)) {
		t.Error("prompt without expiry never expires")
	}
}

func TestNextTemplate(t *testing.T) {
	tests := []struct {
		name    string
		last    *Prompt
		wantKey string
	}{
		{
			name:    "first issue takes the first entry",
			last:    nil,
			wantKey: "smell",
		},
		{
			name:    "skips an entry with the same category",
			last:    &Prompt{TemplateKey: "smell", Category: CategoryObservation},
			wantKey: "smile",
		},
		{
			name:    "advances to the next entry",
			last:    &Prompt{TemplateKey: "smile", Category: CategoryMemory},
			wantKey: "small",
		},
		{
			name:    "wraps around the catalog",
			last:    &Prompt{TemplateKey: "small", Category: CategoryGratitude},
			wantKey: "smell",
		},
		{
			name:    "unknown last template starts from the top",
			last:    &Prompt{TemplateKey: "gone", Category: CategoryDream},
			wantKey: "smell",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextTemplate(catalog, tt.last); got.Key != tt.wantKey {
				t.Errorf("NextTemplate = %q, want %q", got.Key, tt.wantKey)
			}
		})
	}
}

func TestNextTemplate_SingleCategoryCatalog(t *testing.T) {
	same := []Template{
		{Key: "a", Category: CategoryHumor},
		{Key: "b", Category: CategoryHumor},
	}
	got := NextTemplate(same, &Prompt{TemplateKey: "a", Category: CategoryHumor})
	if got.Key != "b" {
		t.Errorf("NextTemplate = %q, want b", got.Key)
	}
}
