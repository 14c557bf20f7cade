package telegram

import (
	"context"
	"testing"
	"time"

	"github.com/rewired-gh/oiwatch/internal/models"
	"github.com/rewired-gh/oiwatch/internal/monitor"
	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "Hello World"},
		{"Hello_World", "Hello\\_World"},
		{"Test*bold*", "Test\\*bold\\*"},
		{"Price: $100.50", "Price: $100\\.50"},
		{"[link](url)", "\\[link\\]\\(url\\)"},
		{"~strikethrough~", "\\~strikethrough\\~"},
		{"`code`", "\\`code\\`"},
		{">blockquote", "\\>blockquote"},
		{"#header", "\\#header"},
		{"+plus-minus", "\\+plus\\-minus"},
		{"=equal|pipe", "\\=equal\\|pipe"},
		{"{brace}", "\\{brace\\}"},
		{"end!", "end\\!"},
		{"", ""},
		{"_*[]()~`>#+-=|{}.!", "\\_\\*\\[\\]\\(\\)\\~\\`\\>\\#\\+\\-\\=\\|\\{\\}\\.\\!"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := escapeMarkdownV2(tt.input)
			if result != tt.expected {
				t.Errorf("escapeMarkdownV2(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNewClient_InvalidChatID(t *testing.T) {
	// The chat ID is parsed before any call to the Bot API.
	_, err := NewClient("", "not-a-number", time.Second, 1, time.Second)
	if err == nil {
		t.Error("Expected error for invalid chat ID, got nil")
	}
}

func TestLogNotifier_NeverFails(t *testing.T) {
	assert.NoError(t, LogNotifier{}.Send(context.Background(), "anything"))
}

func testAlert(typ models.SignalType, oiPct float64) models.Alert {
	price := 64000.0
	return models.Alert{
		ID:     "a-1",
		Symbol: "BTCUSDT",
		Signal: models.Signal{
			Type:     typ,
			VolRatio: 1.5,
			OIPct:    oiPct,
			Price:    price,
		},
		Confidence:  80,
		Levels:      monitor.ComputeLevels(typ, price, models.LevelPoints{StopLoss: 100, TP1: 170, TP2: 250, TP3: 300}),
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC),
	}
}

func TestFormatAlert_Buy(t *testing.T) {
	want := `📈 *STRONG BUY*

*Pair:* BTCUSDT
*Price:* 64000\.00
*OI Δ:* 10\.00%   \|  *Vol %:* 50\.0%
*Confidence:* 80%

*Entry:* 64000\.00
*SL:* 63900\.00
*TP1:* 64170\.00  \|  *TP2:* 64250\.00  \|  *TP3:* 64300\.00

_Signal generated at 2026\-03\-01 12:00 UTC_`

	assert.Equal(t, want, Formatter{}.FormatAlert(testAlert(models.SignalBuy, 10)))
}

func TestFormatAlert_Sell(t *testing.T) {
	want := `📉 *STRONG SELL*

*Pair:* BTCUSDT
*Price:* 64000\.00
*OI Δ:* \-10\.00%   \|  *Vol %:* 50\.0%
*Confidence:* 80%

*Entry:* 64000\.00
*SL:* 64100\.00
*TP1:* 63830\.00  \|  *TP2:* 63750\.00  \|  *TP3:* 63700\.00

_Signal generated at 2026\-03\-01 12:00 UTC_`

	assert.Equal(t, want, Formatter{}.FormatAlert(testAlert(models.SignalSell, -10)))
}

func TestFormatAlert_PriceMatchesEntryAtTie(t *testing.T) {
	a := testAlert(models.SignalBuy, 10)
	a.Signal.Price = 100.125
	a.Levels = monitor.ComputeLevels(models.SignalBuy, 100.125, models.LevelPoints{StopLoss: 100, TP1: 170, TP2: 250, TP3: 300})

	got := Formatter{}.FormatAlert(a)
	assert.Contains(t, got, `*Price:* 100\.12`)
	assert.Contains(t, got, `*Entry:* 100\.12`)
	assert.Contains(t, got, `*SL:* 0\.12`)
}

func TestFormatAlert_TimestampIsUTC(t *testing.T) {
	a := testAlert(models.SignalBuy, 10)
	a.GeneratedAt = time.Date(2026, 3, 1, 14, 5, 0, 0, time.FixedZone("EET", 2*3600))
	assert.Contains(t, Formatter{}.FormatAlert(a), `2026\-03\-01 12:05 UTC`)
}

func TestFormatStartup(t *testing.T) {
	assert.Equal(t, "🚀 *Monitor started* for BTCUSDT\\. Only STRONG BUY/SELL will be sent ✅", Formatter{}.FormatStartup("BTCUSDT"))
}

func TestFormatStatus(t *testing.T) {
	s := monitor.Status{
		Symbol:      "BTCUSDT",
		Cycles:      12,
		AlertsSent:  2,
		Suppressed:  1,
		LastOutcome: monitor.OutcomeNoSignal,
		LastSignal:  &models.Signal{Type: models.SignalNone, VolRatio: 0.97, OIPct: 1.25},
		Cooldown: models.CooldownState{
			LastType: models.SignalBuy,
			LastTime: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		CooldownWindow: "30m0s",
	}

	got := Formatter{}.FormatStatus(s)
	assert.Contains(t, got, "📊 *Status* BTCUSDT")
	assert.Contains(t, got, `Cycles: 12 \(alerts: 2, suppressed: 1\)`)
	assert.Contains(t, got, `Last outcome: no\_signal`)
	assert.Contains(t, got, `Last signal: NONE \(VolRatio\=0\.97, OI%\=1\.25\)`)
	assert.Contains(t, got, `Last emitted: BUY at 2026\-03\-01T12:00:00Z`)
	assert.Contains(t, got, "Cooldown window: 30m0s")
	assert.NotContains(t, got, "Failing")

	s.ConsecutiveFailures = 3
	s.LastError = "failed to fetch klines: timeout"
	assert.Contains(t, Formatter{}.FormatStatus(s), "Failing for 3 cycles")
}
