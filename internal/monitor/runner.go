// Package monitor turns sampled market series into rate-limited trading alerts.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rewired-gh/oiwatch/internal/logger"
	"github.com/rewired-gh/oiwatch/internal/models"
)

// MarketDataSource supplies the recent series for a symbol.
type MarketDataSource interface {
	FetchVolumeAndPrice(ctx context.Context, symbol, interval string, limit int) (volumes, closes []float64, err error)
	FetchOpenInterest(ctx context.Context, symbol, period string, limit int) ([]float64, error)
}

// Notifier delivers pre-formatted text.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Formatter renders alerts and the startup announcement.
type Formatter interface {
	FormatAlert(alert models.Alert) string
	FormatStartup(symbol string) string
}

// Journal records emitted alerts.
type Journal interface {
	RecordAlert(alert *models.Alert) error
}

// DataFetchError wraps a failed market data request or a malformed payload.
type DataFetchError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *DataFetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Op, e.Err)
}

func (e *DataFetchError) Unwrap() error {
	return e.Err
}

// Outcome classifies how a cycle ended.
type Outcome string

const (
	OutcomeFailed     Outcome = "failed"
	OutcomeNoData     Outcome = "no_data"
	OutcomeNoSignal   Outcome = "no_signal"
	OutcomeSuppressed Outcome = "suppressed"
	OutcomeAlerted    Outcome = "alerted"
)

// CycleResult is the typed result of one RunCycle.
type CycleResult struct {
	Outcome Outcome
	Signal  models.Signal
	Alert   *models.Alert
	Err     error
}

// Config holds the per-symbol fetch, threshold and pacing settings.
type Config struct {
	Symbol           string
	KlineInterval    string
	KlineLimit       int
	OIPeriod         string
	OILimit          int
	PollInterval     time.Duration
	EmptyDataBackoff time.Duration
	Thresholds       Thresholds
	Levels           models.LevelPoints
	MinRepeat        time.Duration
}

// DefaultConfig returns the BTCUSDT defaults used by deployments.
func DefaultConfig() Config {
	return Config{
		Symbol:           "BTCUSDT",
		KlineInterval:    "5m",
		KlineLimit:       50,
		OIPeriod:         "5m",
		OILimit:          12,
		PollInterval:     300 * time.Second,
		EmptyDataBackoff: 10 * time.Second,
		Thresholds:       DefaultThresholds(),
		Levels:           models.LevelPoints{StopLoss: 100, TP1: 170, TP2: 250, TP3: 300},
		MinRepeat:        30 * time.Minute,
	}
}

// Runner owns the poll loop and the cooldown gate for one symbol.
type Runner struct {
	source    MarketDataSource
	notifier  Notifier
	formatter Formatter
	journal   Journal
	scheduler Scheduler
	gate      *Gate
	board     *StatusBoard
	now       func() time.Time
	config    Config
}

// Option configures a Runner.
type Option func(r *Runner)

// WithJournal records every emitted alert in j.
func WithJournal(j Journal) Option {
	return func(r *Runner) {
		r.journal = j
	}
}

// WithScheduler replaces the real-time sleep between cycles.
func WithScheduler(s Scheduler) Option {
	return func(r *Runner) {
		r.scheduler = s
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithStatusBoard publishes cycle results to b instead of a private board.
func WithStatusBoard(b *StatusBoard) Option {
	return func(r *Runner) {
		r.board = b
	}
}

// New returns a Runner with a fresh cooldown gate for config.Symbol.
func New(source MarketDataSource, notifier Notifier, formatter Formatter, config Config, opts ...Option) *Runner {
	r := &Runner{
		source:    source,
		notifier:  notifier,
		formatter: formatter,
		scheduler: TimerScheduler{},
		gate:      NewGate(config.MinRepeat),
		now:       time.Now,
		config:    config,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.board == nil {
		r.board = NewStatusBoard(config.Symbol, r.now())
	}
	return r
}

// Status returns the board the runner publishes to.
func (r *Runner) Status() *StatusBoard {
	return r.board
}

// Gate returns the runner's cooldown gate.
func (r *Runner) Gate() *Gate {
	return r.gate
}

// Run sends the startup announcement and polls until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	logger.Info("Starting monitor for %s (interval: %v, oi_percent_min: %.2f, vol_ratio_min: %.2f, min_repeat: %v)",
		r.config.Symbol, r.config.PollInterval, r.config.Thresholds.OIPercentMin, r.config.Thresholds.VolRatioMin, r.config.MinRepeat)

	if err := r.notifier.Send(ctx, r.formatter.FormatStartup(r.config.Symbol)); err != nil {
		logger.Error("Failed to send startup notification: %v", err)
	}

	for {
		now := r.now()
		res := r.safeCycle(ctx, now)
		r.handleCycleResult(res, now)

		wait := r.config.PollInterval
		if res.Outcome == OutcomeNoData {
			wait = r.config.EmptyDataBackoff
		}
		if err := r.scheduler.Sleep(ctx, wait); err != nil {
			logger.Info("Monitor stopped")
			return err
		}
	}
}

func (r *Runner) safeCycle(ctx context.Context, now time.Time) (res CycleResult) {
	defer func() {
		if p := recover(); p != nil {
			res = CycleResult{Outcome: OutcomeFailed, Err: fmt.Errorf("cycle panicked: %v", p)}
		}
	}()
	return r.RunCycle(ctx, now)
}

func (r *Runner) handleCycleResult(res CycleResult, now time.Time) {
	r.board.Publish(res, now, r.gate)

	switch res.Outcome {
	case OutcomeFailed:
		logger.Error("Monitoring cycle failed (%d consecutive): %v", r.board.Snapshot().ConsecutiveFailures, res.Err)
	case OutcomeNoData:
		logger.Warn("No data, retrying in %v: %v", r.config.EmptyDataBackoff, res.Err)
	case OutcomeNoSignal:
		logger.Info("No strong signal")
	case OutcomeSuppressed:
		logger.Info("Duplicate %s signal within cool-down, skipping", res.Signal.Type)
	case OutcomeAlerted:
		logger.Info("Sent %s alert %s (confidence %d%%, notified: %t)",
			res.Signal.Type, res.Alert.ID, res.Alert.Confidence, res.Alert.Notified)
	}
}

// RunCycle performs one fetch, evaluate, gate and notify pass. Failures are
// reported in the result and never returned to the caller's control flow.
func (r *Runner) RunCycle(ctx context.Context, now time.Time) CycleResult {
	volumes, closes, err := r.source.FetchVolumeAndPrice(ctx, r.config.Symbol, r.config.KlineInterval, r.config.KlineLimit)
	if err != nil {
		return CycleResult{Outcome: OutcomeFailed, Err: &DataFetchError{Op: "klines", Err: err}}
	}
	oi, err := r.source.FetchOpenInterest(ctx, r.config.Symbol, r.config.OIPeriod, r.config.OILimit)
	if err != nil {
		return CycleResult{Outcome: OutcomeFailed, Err: &DataFetchError{Op: "open interest", Err: err}}
	}

	window := models.SampleWindow{Volumes: volumes, Closes: closes, OpenInterest: oi}
	sig, err := Evaluate(window, r.config.Thresholds)
	if err != nil {
		if errors.Is(err, ErrEmptySeries) {
			return CycleResult{Outcome: OutcomeNoData, Signal: sig, Err: err}
		}
		return CycleResult{Outcome: OutcomeFailed, Signal: sig, Err: err}
	}

	logger.Info("[%s] Close=%.2f | Vol=%g (Avg=%.0f) | OI=%.0f", now.UTC().Format(time.RFC3339),
		sig.Price, sig.CurrentVolume, sig.AvgVolume, sig.CurrentOI)
	logger.Info("VolRatio=%.2f | OI%%=%.2f", sig.VolRatio, sig.OIPct)

	if !sig.Triggered() {
		return CycleResult{Outcome: OutcomeNoSignal, Signal: sig}
	}
	if !r.gate.Allow(sig.Type, now) {
		return CycleResult{Outcome: OutcomeSuppressed, Signal: sig}
	}

	alert := &models.Alert{
		ID:          uuid.New().String(),
		Symbol:      r.config.Symbol,
		Signal:      sig,
		Confidence:  Confidence(sig.OIPct, sig.VolRatio),
		Levels:      ComputeLevels(sig.Type, sig.Price, r.config.Levels),
		GeneratedAt: now.UTC(),
	}

	if err := r.notifier.Send(ctx, r.formatter.FormatAlert(*alert)); err != nil {
		logger.Error("Failed to send %s alert: %v", sig.Type, err)
	} else {
		alert.Notified = true
	}
	// A send attempt counts as emitted; there is no delivery confirmation.
	r.gate.Record(sig.Type, now)

	if r.journal != nil {
		if err := r.journal.RecordAlert(alert); err != nil {
			logger.Warn("Failed to record alert %s: %v", alert.ID, err)
		}
	}

	return CycleResult{Outcome: OutcomeAlerted, Signal: sig, Alert: alert}
}
