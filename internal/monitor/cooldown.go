package monitor

import (
	"time"

	"github.com/rewired-gh/oiwatch/internal/models"
)

// Gate suppresses a repeat of the last emitted signal type within a window.
// It is owned by a single loop; give every symbol its own Gate.
type Gate struct {
	state  models.CooldownState
	window time.Duration
}

// NewGate returns a Gate in the initial NONE state.
func NewGate(window time.Duration) *Gate {
	return &Gate{
		state:  models.CooldownState{LastType: models.SignalNone},
		window: window,
	}
}

// Allow reports whether a signal of type t may be emitted at now.
func (g *Gate) Allow(t models.SignalType, now time.Time) bool {
	if g.state.LastType != t {
		return true
	}
	return now.Sub(g.state.LastTime) >= g.window
}

// Record marks t as emitted at now. Call it only after a send attempt.
func (g *Gate) Record(t models.SignalType, now time.Time) {
	g.state = models.CooldownState{LastType: t, LastTime: now}
}

// State returns a copy of the current cooldown state.
func (g *Gate) State() models.CooldownState {
	return g.state
}

// Window returns the suppression window.
func (g *Gate) Window() time.Duration {
	return g.window
}
