package letter

import "time"

// State is the mutable portion of a letter that transitions act on.
// Transitions take a State by value and return a new one; the input is never modified.
type State struct {
	Status           Status
	DeliverAt        time.Time
	OpenedAt         *time.Time
	PlaybackProgress float64
	AudioRef         string
	PromptID         string
}

// InitialStatus returns the status for a newly created letter.
func InitialStatus() Status {
	return StatusSent
}

// Deliver moves a due letter from sent to delivered.
func Deliver(s State, now time.Time) (State, error) {
	if err := CanDeliver(s, now).Error(); err != nil {
		return s, err
	}
	s.Status = StatusDelivered
	return s, nil
}

// MarkOpened moves a delivered letter to opened and stamps OpenedAt.
// changed is false when the letter was already opened or purged.
func MarkOpened(s State, now time.Time) (next State, changed bool, err error) {
	result := CanMarkOpened(s)
	if result.NoOp {
		return s, false, nil
	}
	if err := result.Error(); err != nil {
		return s, false, err
	}
	openedAt := now
	s.Status = StatusOpened
	s.OpenedAt = &openedAt
	return s, true, nil
}

// UpdateProgress records a clamped playback position.
func UpdateProgress(s State, progress float64) (State, error) {
	if err := CanUpdateProgress(s, progress).Error(); err != nil {
		return s, err
	}
	s.PlaybackProgress = Clamp(progress)
	return s, nil
}

// Purge clears the audio reference of a fully played letter.
// changed is false when the letter was already purged.
// Transcript is not part of State and always survives.
func Purge(s State) (next State, changed bool, err error) {
	result := CanPurge(s)
	if result.NoOp {
		return s, false, nil
	}
	if err := result.Error(); err != nil {
		return s, false, err
	}
	s.Status = StatusPurged
	s.AudioRef = ""
	return s, true, nil
}

// NeedsSparkOnPurge reports whether purging this letter triggers the prompt award path.
func NeedsSparkOnPurge(s State) bool {
	return s.PromptID != ""
}
