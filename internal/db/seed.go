package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with a paired couple and letters in every
// lifecycle state, relative to now. Points and stamps are consistent with what
// the services would have credited.
func SeedFixtures(database *sql.DB, now time.Time) error {
	ns := func(t time.Time) int64 { return t.UTC().UnixNano() }
	hour := time.Hour
	day := 24 * hour

	tx, err := database.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Profiles
	profiles := []struct {
		id, partner, tz string
		points, streak  int
		lastPrompt      any
	}{
		{"alice", "bob", "Europe/Paris", 6, 0, nil},
		{"bob", "alice", "UTC", 5, 1, ns(now.Add(-2 * day))},
	}
	for _, p := range profiles {
		if _, err := tx.Exec(
			`INSERT INTO profiles (user_id, partner_id, timezone, streak_count, postage_points, last_prompt_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.id, p.partner, p.tz, p.streak, p.points, p.lastPrompt, ns(now.Add(-30*day)),
		); err != nil {
			return fmt.Errorf("seed profiles: %w", err)
		}
	}

	// Prompt answered by bob
	if _, err := tx.Exec(
		`INSERT INTO prompts (id, template_key, text, category, default_delay, issued_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"PR-SEED", "best-smell", "What's the best thing you smelled today?", "observation", "1d",
		ns(now.Add(-2*day-hour)), ns(now.Add(-day-hour)),
	); err != nil {
		return fmt.Errorf("seed prompts: %w", err)
	}

	// Letters: one waiting in bob's mailbox, one in transit, one heard and purged.
	letters := []struct {
		id, sender, recipient, audio, transcript, preset, status, prompt string
		created, deliver                                                 time.Time
		opened                                                           any
		progress                                                         float64
	}{
		{"LTR-SEED-1", "alice", "bob", "seed-1", "", "1h", "delivered", "",
			now.Add(-3 * hour), now.Add(-2 * hour), nil, 0},
		{"LTR-SEED-2", "alice", "bob", "seed-2", "", "1w", "sent", "",
			now.Add(-day), now.Add(6 * day), nil, 0},
		{"LTR-SEED-3", "bob", "alice", "", "the bakery on the corner", "1d", "purged", "PR-SEED",
			now.Add(-2 * day), now.Add(-day), ns(now.Add(-day + hour)), 1},
	}
	for _, l := range letters {
		if _, err := tx.Exec(
			`INSERT INTO letters (id, sender_id, recipient_id, audio_ref, transcript, delay_preset, created_at, deliver_at,
				prompt_id, status, opened_at, playback_progress)
			VALUES (?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?, NULLIF(?, ''), ?, ?, ?)`,
			l.id, l.sender, l.recipient, l.audio, l.transcript, l.preset, ns(l.created), ns(l.deliver),
			l.prompt, l.status, l.opened, l.progress,
		); err != nil {
			return fmt.Errorf("seed letters: %w", err)
		}
	}

	// Stamps
	stamps := []struct {
		id, user, tier, preset, letter, prompt string
		earned                                 time.Time
	}{
		{"STP-SEED-1", "alice", "bronze", "1h", "LTR-SEED-1", "", now.Add(-3 * hour)},
		{"STP-SEED-2", "alice", "gold", "1w", "LTR-SEED-2", "", now.Add(-day)},
		{"STP-SEED-3", "bob", "silver", "1d", "LTR-SEED-3", "", now.Add(-2 * day)},
		{"STP-SEED-4", "bob", "spark", "", "LTR-SEED-3", "PR-SEED", now.Add(-2 * day)},
	}
	for _, s := range stamps {
		if _, err := tx.Exec(
			`INSERT INTO stamps (id, user_id, tier, earned_at, prompt_id, delay_preset, letter_id)
			VALUES (?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?)`,
			s.id, s.user, s.tier, ns(s.earned), s.prompt, s.preset, s.letter,
		); err != nil {
			return fmt.Errorf("seed stamps: %w", err)
		}
	}

	return tx.Commit()
}
