// Package storage provides a SQLite-backed journal of emitted alerts.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rewired-gh/oiwatch/internal/models"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// MemoryPath keeps the journal for the lifetime of the process only.
const MemoryPath = ":memory:"

// Storage wraps a SQLite database holding the alert journal.
type Storage struct {
	db        *sql.DB
	maxAlerts int
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath uses an in-memory database.
func New(maxAlerts int, dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = MemoryPath
	}
	if !strings.HasPrefix(dbPath, ":memory:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; an in-memory database lives on this one connection
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if maxAlerts < 1 {
		maxAlerts = 1000
	}
	s := &Storage{db: db, maxAlerts: maxAlerts}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id              TEXT PRIMARY KEY,
			symbol          TEXT NOT NULL,
			signal_type     TEXT NOT NULL,
			price           REAL NOT NULL,
			vol_ratio       REAL NOT NULL,
			oi_pct          REAL NOT NULL,
			current_volume  REAL NOT NULL,
			avg_volume      REAL NOT NULL,
			current_oi      REAL NOT NULL,
			avg_oi          REAL NOT NULL,
			confidence      INTEGER NOT NULL,
			entry           TEXT NOT NULL,
			stop_loss       TEXT NOT NULL,
			tp1             TEXT NOT NULL,
			tp2             TEXT NOT NULL,
			tp3             TEXT NOT NULL,
			generated_at    INTEGER NOT NULL,
			notified        INTEGER DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_generated_at ON alerts(generated_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordAlert inserts an alert and trims the journal to maxAlerts newest rows.
func (s *Storage) RecordAlert(alert *models.Alert) error {
	if err := alert.Validate(); err != nil {
		return fmt.Errorf("invalid alert: %w", err)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	sig := alert.Signal
	_, err = tx.Exec(`
		INSERT INTO alerts
			(id, symbol, signal_type, price, vol_ratio, oi_pct,
			 current_volume, avg_volume, current_oi, avg_oi, confidence,
			 entry, stop_loss, tp1, tp2, tp3, generated_at, notified)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		alert.ID, alert.Symbol, string(sig.Type), sig.Price, sig.VolRatio, sig.OIPct,
		sig.CurrentVolume, sig.AvgVolume, sig.CurrentOI, sig.AvgOI, alert.Confidence,
		alert.Levels.Entry.String(), alert.Levels.StopLoss.String(),
		alert.Levels.TP1.String(), alert.Levels.TP2.String(), alert.Levels.TP3.String(),
		alert.GeneratedAt.UnixNano(), boolToInt(alert.Notified),
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	if _, err = tx.Exec(`
		DELETE FROM alerts WHERE id NOT IN (
			SELECT id FROM alerts ORDER BY generated_at DESC LIMIT ?
		)`, s.maxAlerts); err != nil {
		return fmt.Errorf("failed to enforce alert cap: %w", err)
	}

	return tx.Commit()
}

// RecentAlerts returns up to limit alerts, newest first.
func (s *Storage) RecentAlerts(limit int) ([]models.Alert, error) {
	rows, err := s.db.Query(`SELECT `+alertCols+` FROM alerts ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		a, err := scanAlert(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

// CountAlerts returns the number of journaled alerts per signal type.
func (s *Storage) CountAlerts() (map[models.SignalType]int, error) {
	rows, err := s.db.Query(`SELECT signal_type, COUNT(*) FROM alerts GROUP BY signal_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count alerts: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.SignalType]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("failed to scan alert count: %w", err)
		}
		counts[models.SignalType(typ)] = n
	}
	return counts, rows.Err()
}

const alertCols = `id, symbol, signal_type, price, vol_ratio, oi_pct,
	current_volume, avg_volume, current_oi, avg_oi, confidence,
	entry, stop_loss, tp1, tp2, tp3, generated_at, notified`

func scanAlert(scan func(...any) error) (*models.Alert, error) {
	var a models.Alert
	var typ, entry, stopLoss, tp1, tp2, tp3 string
	var generatedAtNano int64
	var notified int
	err := scan(
		&a.ID, &a.Symbol, &typ, &a.Signal.Price, &a.Signal.VolRatio, &a.Signal.OIPct,
		&a.Signal.CurrentVolume, &a.Signal.AvgVolume, &a.Signal.CurrentOI, &a.Signal.AvgOI, &a.Confidence,
		&entry, &stopLoss, &tp1, &tp2, &tp3, &generatedAtNano, &notified,
	)
	if err != nil {
		return nil, err
	}
	a.Signal.Type = models.SignalType(typ)

	levels := []struct {
		raw string
		dst *decimal.Decimal
	}{
		{entry, &a.Levels.Entry},
		{stopLoss, &a.Levels.StopLoss},
		{tp1, &a.Levels.TP1},
		{tp2, &a.Levels.TP2},
		{tp3, &a.Levels.TP3},
	}
	for _, l := range levels {
		d, err := decimal.NewFromString(l.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid level %q: %w", l.raw, err)
		}
		*l.dst = d
	}

	a.GeneratedAt = time.Unix(0, generatedAtNano).UTC()
	a.Notified = notified != 0
	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
