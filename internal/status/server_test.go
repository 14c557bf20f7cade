package status

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rewired-gh/oiwatch/internal/models"
	"github.com/rewired-gh/oiwatch/internal/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	alerts    []models.Alert
	counts    map[models.SignalType]int
	err       error
	countErr  error
	lastLimit int
}

func (l *stubLister) RecentAlerts(limit int) ([]models.Alert, error) {
	l.lastLimit = limit
	return l.alerts, l.err
}

func (l *stubLister) CountAlerts() (map[models.SignalType]int, error) {
	return l.counts, l.countErr
}

var started = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "failed to parse response")
	return w, body
}

func TestHealthEndpoint(t *testing.T) {
	board := monitor.NewStatusBoard("BTCUSDT", started)
	s := NewServer(":0", board, nil)

	w, body := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "BTCUSDT", body["symbol"])

	board.Publish(monitor.CycleResult{Outcome: monitor.OutcomeFailed, Err: errors.New("timeout")}, started, monitor.NewGate(time.Minute))
	_, body = get(t, s, "/health")
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, float64(1), body["consecutive_failures"])
}

func TestStatusEndpoint(t *testing.T) {
	board := monitor.NewStatusBoard("BTCUSDT", started)
	gate := monitor.NewGate(30 * time.Minute)
	gate.Record(models.SignalBuy, started)
	board.Publish(monitor.CycleResult{
		Outcome: monitor.OutcomeAlerted,
		Signal:  models.Signal{Type: models.SignalBuy, VolRatio: 1.5, OIPct: 10},
	}, started, gate)

	w, body := get(t, NewServer(":0", board, nil), "/status")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alerted", body["last_outcome"])
	assert.Equal(t, float64(1), body["alerts_sent"])

	cooldown, ok := body["cooldown"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "BUY", cooldown["last_type"])
	assert.Equal(t, "30m0s", body["cooldown_window"])

	lastSignal, ok := body["last_signal"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1.5, lastSignal["vol_ratio"])
}

func TestAlertsEndpoint(t *testing.T) {
	lister := &stubLister{
		alerts: []models.Alert{{ID: "a-1", Symbol: "BTCUSDT", Confidence: 80}},
		counts: map[models.SignalType]int{models.SignalBuy: 3, models.SignalSell: 1},
	}
	s := NewServer(":0", monitor.NewStatusBoard("BTCUSDT", started), lister)

	w, body := get(t, s, "/alerts?limit=5")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, lister.lastLimit)
	alerts, ok := body["alerts"].([]any)
	require.True(t, ok)
	assert.Len(t, alerts, 1)
	assert.Equal(t, map[string]any{"BUY": float64(3), "SELL": float64(1)}, body["counts"])

	_, _ = get(t, s, "/alerts")
	assert.Equal(t, 20, lister.lastLimit)
}

func TestAlertsEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name   string
		lister *stubLister
		path   string
		code   int
	}{
		{"bad limit", &stubLister{}, "/alerts?limit=abc", http.StatusBadRequest},
		{"limit too large", &stubLister{}, "/alerts?limit=1000", http.StatusBadRequest},
		{"journal failure", &stubLister{err: errors.New("db closed")}, "/alerts", http.StatusInternalServerError},
		{"count failure", &stubLister{countErr: errors.New("db closed")}, "/alerts", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(":0", monitor.NewStatusBoard("BTCUSDT", started), tt.lister)
			w, body := get(t, s, tt.path)
			assert.Equal(t, tt.code, w.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAlertsEndpoint_DisabledWithoutJournal(t *testing.T) {
	s := NewServer(":0", monitor.NewStatusBoard("BTCUSDT", started), nil)
	req := httptest.NewRequest(http.MethodGet, "/alerts", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
