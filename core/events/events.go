// Package events defines the payloads published on the internal event bus.
// Consumers include the metrics sinks and the MQTT notifier.
package events

import "time"

// MutationEvent is emitted after a mutation lands, whether staged in the
// overlay or committed directly.
type MutationEvent struct {
	Scope  string
	Op     string
	TaskID string
	Mode   string
	Time   time.Time
}

// ModeEvent is emitted when the workspace switches between direct and
// what-if editing.
type ModeEvent struct {
	Scope string
	Mode  string
	Time  time.Time
}

// ApplyEvent is emitted when an overlay replay finishes, successfully or
// not. On failure the counts reflect what remains staged.
type ApplyEvent struct {
	Scope   string
	Updates int
	Creates int
	Deletes int
	Failed  bool
	Error   string
	Time    time.Time
}

// RefreshEvent is emitted after the baseline is reloaded from the backend.
type RefreshEvent struct {
	Scope string
	Count int
	Time  time.Time
}
