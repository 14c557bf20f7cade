package monitor

import (
	"sync"
	"time"

	"github.com/rewired-gh/oiwatch/internal/models"
)

// Status is a point-in-time view of the loop for reporting.
type Status struct {
	Symbol              string               `json:"symbol"`
	StartedAt           time.Time            `json:"started_at"`
	Cycles              int                  `json:"cycles"`
	ConsecutiveFailures int                  `json:"consecutive_failures"`
	AlertsSent          int                  `json:"alerts_sent"`
	Suppressed          int                  `json:"suppressed"`
	LastCycleAt         time.Time            `json:"last_cycle_at"`
	LastOutcome         Outcome              `json:"last_outcome"`
	LastError           string               `json:"last_error,omitempty"`
	LastSignal          *models.Signal       `json:"last_signal,omitempty"`
	Cooldown            models.CooldownState `json:"cooldown"`
	CooldownWindow      string               `json:"cooldown_window"`
}

// StatusBoard holds the latest Status. The loop publishes, readers snapshot.
type StatusBoard struct {
	mu     sync.RWMutex
	status Status
}

// NewStatusBoard returns an empty board for symbol.
func NewStatusBoard(symbol string, startedAt time.Time) *StatusBoard {
	return &StatusBoard{
		status: Status{
			Symbol:    symbol,
			StartedAt: startedAt,
			Cooldown:  models.CooldownState{LastType: models.SignalNone},
		},
	}
}

// Publish folds one cycle result and the gate's state into the board.
func (b *StatusBoard) Publish(res CycleResult, at time.Time, gate *Gate) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.status.Cycles++
	b.status.LastCycleAt = at
	b.status.LastOutcome = res.Outcome
	b.status.Cooldown = gate.State()
	b.status.CooldownWindow = gate.Window().String()

	if res.Err != nil {
		b.status.LastError = res.Err.Error()
	} else {
		b.status.LastError = ""
	}

	if res.Outcome == OutcomeFailed {
		b.status.ConsecutiveFailures++
	} else {
		b.status.ConsecutiveFailures = 0
	}

	switch res.Outcome {
	case OutcomeNoSignal, OutcomeSuppressed, OutcomeAlerted:
		sig := res.Signal
		b.status.LastSignal = &sig
	}

	switch res.Outcome {
	case OutcomeAlerted:
		b.status.AlertsSent++
	case OutcomeSuppressed:
		b.status.Suppressed++
	}
}

// Snapshot returns a copy of the current status.
func (b *StatusBoard) Snapshot() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := b.status
	if s.LastSignal != nil {
		sig := *s.LastSignal
		s.LastSignal = &sig
	}
	return s
}
