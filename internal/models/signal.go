// Package models defines the core domain entities: sample windows, signals, and alerts.
package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// SignalType classifies market activity for one cycle.
type SignalType string

const (
	SignalNone SignalType = "NONE"
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
)

// Direction returns +1 for BUY, -1 for SELL and 0 otherwise.
func (t SignalType) Direction() int {
	switch t {
	case SignalBuy:
		return 1
	case SignalSell:
		return -1
	default:
		return 0
	}
}

// SampleWindow holds the recent series for one symbol, newest last.
type SampleWindow struct {
	Volumes      []float64
	Closes       []float64
	OpenInterest []float64
}

// Missing returns the name of the first empty series, or "" when all are populated.
func (w SampleWindow) Missing() string {
	switch {
	case len(w.Volumes) == 0:
		return "volumes"
	case len(w.Closes) == 0:
		return "closes"
	case len(w.OpenInterest) == 0:
		return "open_interest"
	}
	return ""
}

// Signal is the evaluator output together with the ratios that produced it.
type Signal struct {
	Type          SignalType `json:"type"`
	VolRatio      float64    `json:"vol_ratio"`
	OIPct         float64    `json:"oi_pct"`
	Price         float64    `json:"price"`
	CurrentVolume float64    `json:"current_volume"`
	AvgVolume     float64    `json:"avg_volume"`
	CurrentOI     float64    `json:"current_oi"`
	AvgOI         float64    `json:"avg_oi"`
}

// Triggered reports whether the signal is BUY or SELL.
func (s Signal) Triggered() bool {
	return s.Type == SignalBuy || s.Type == SignalSell
}

// CooldownState is the last emitted signal type and when it was emitted.
// The zero value (NONE at the zero time) matches no real signal.
type CooldownState struct {
	LastType SignalType `json:"last_type"`
	LastTime time.Time  `json:"last_time"`
}

// LevelPoints are fixed price offsets for stop-loss and take-profit targets.
type LevelPoints struct {
	StopLoss float64
	TP1      float64
	TP2      float64
	TP3      float64
}

// Validate checks that every offset is non-negative.
func (p LevelPoints) Validate() error {
	if p.StopLoss < 0 || p.TP1 < 0 || p.TP2 < 0 || p.TP3 < 0 {
		return errors.New("level points must not be negative")
	}
	return nil
}

// AlertLevels are the entry, stop-loss and take-profit prices of an alert.
type AlertLevels struct {
	Entry    decimal.Decimal `json:"entry"`
	StopLoss decimal.Decimal `json:"stop_loss"`
	TP1      decimal.Decimal `json:"tp1"`
	TP2      decimal.Decimal `json:"tp2"`
	TP3      decimal.Decimal `json:"tp3"`
}

// Alert is a classified signal ready to be rendered and sent.
type Alert struct {
	ID          string      `json:"id"`
	Symbol      string      `json:"symbol"`
	Signal      Signal      `json:"signal"`
	Confidence  int         `json:"confidence"`
	Levels      AlertLevels `json:"levels"`
	GeneratedAt time.Time   `json:"generated_at"`
	Notified    bool        `json:"notified"`
}

// VolumePct is the volume surge over baseline in percent.
func (a Alert) VolumePct() float64 {
	return (a.Signal.VolRatio - 1) * 100
}

// Validate checks alert field constraints.
func (a *Alert) Validate() error {
	if a.ID == "" {
		return errors.New("alert ID must not be empty")
	}
	if a.Symbol == "" {
		return errors.New("alert symbol must not be empty")
	}
	if !a.Signal.Triggered() {
		return errors.New("alert signal must be BUY or SELL")
	}
	if a.Confidence < 0 || a.Confidence > 100 {
		return errors.New("confidence must be between 0 and 100")
	}
	if a.GeneratedAt.IsZero() {
		return errors.New("generated at must be set")
	}
	return nil
}
