// Package screens holds the per-screen view state of mailpilot. Every screen
// owns its state privately; nothing is shared between screens. List screens
// follow Idle -> Loading -> {Ready, Failed}; a new activation restarts at
// Loading and responses belonging to an older activation are dropped.
package screens

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrBusy is returned when the same action is already in flight
	ErrBusy = errors.New("operation already in progress")

	// ErrStale is returned when a response arrived for a superseded activation
	ErrStale = errors.New("screen deactivated or reactivated; response discarded")

	// ErrNotReady is returned for actions that need a loaded screen
	ErrNotReady = errors.New("screen is not ready")

	// ErrNotEmpty is returned when seeding prompts while some already exist
	ErrNotEmpty = errors.New("prompts already exist")

	// ErrUnknownID is returned when an action names an id not in local state
	ErrUnknownID = errors.New("unknown id")
)

// Phase is the load state of a list-valued screen
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// lifecycle is embedded by every list screen. Callers hold the screen lock.
type lifecycle struct {
	token string
	phase Phase
	err   error
}

func (l *lifecycle) begin() string {
	l.token = uuid.NewString()
	l.phase = PhaseLoading
	l.err = nil
	return l.token
}

func (l *lifecycle) current(token string) bool {
	return token != "" && token == l.token
}

func (l *lifecycle) ready() {
	l.phase = PhaseReady
	l.err = nil
}

func (l *lifecycle) fail(err error) {
	l.phase = PhaseFailed
	l.err = err
}

func (l *lifecycle) reset() {
	l.token = ""
	l.phase = PhaseIdle
	l.err = nil
}
