package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/rewired-gh/oiwatch/internal/models"
	"github.com/rewired-gh/oiwatch/internal/monitor"
)

// Formatter renders messages in Telegram MarkdownV2.
type Formatter struct{}

// FormatStartup returns the announcement sent once before polling starts.
func (Formatter) FormatStartup(symbol string) string {
	return fmt.Sprintf("🚀 *Monitor started* for %s\\. Only STRONG BUY/SELL will be sent ✅", escapeMarkdownV2(symbol))
}

// FormatAlert formats an alert into a Telegram MarkdownV2 message.
func (Formatter) FormatAlert(a models.Alert) string {
	direction := "📈 *STRONG BUY*"
	if a.Signal.Type == models.SignalSell {
		direction = "📉 *STRONG SELL*"
	}

	esc := func(format string, args ...any) string {
		return escapeMarkdownV2(fmt.Sprintf(format, args...))
	}

	var b strings.Builder
	b.WriteString(direction + "\n\n")
	b.WriteString(fmt.Sprintf("*Pair:* %s\n", escapeMarkdownV2(a.Symbol)))
	b.WriteString(fmt.Sprintf("*Price:* %s\n", escapeMarkdownV2(a.Levels.Entry.StringFixed(2))))
	b.WriteString(fmt.Sprintf("*OI Δ:* %s   \\|  *Vol %%:* %s\n", esc("%.2f%%", a.Signal.OIPct), esc("%.1f%%", a.VolumePct())))
	b.WriteString(fmt.Sprintf("*Confidence:* %d%%\n\n", a.Confidence))
	b.WriteString(fmt.Sprintf("*Entry:* %s\n", escapeMarkdownV2(a.Levels.Entry.StringFixed(2))))
	b.WriteString(fmt.Sprintf("*SL:* %s\n", escapeMarkdownV2(a.Levels.StopLoss.StringFixed(2))))
	b.WriteString(fmt.Sprintf("*TP1:* %s  \\|  *TP2:* %s  \\|  *TP3:* %s\n\n",
		escapeMarkdownV2(a.Levels.TP1.StringFixed(2)),
		escapeMarkdownV2(a.Levels.TP2.StringFixed(2)),
		escapeMarkdownV2(a.Levels.TP3.StringFixed(2))))
	b.WriteString(fmt.Sprintf("_Signal generated at %s_", esc("%s UTC", a.GeneratedAt.UTC().Format("2006-01-02 15:04"))))

	return b.String()
}

// FormatStatus renders a status snapshot for the /status command.
func (Formatter) FormatStatus(s monitor.Status) string {
	lastSignal := "none yet"
	if s.LastSignal != nil {
		lastSignal = fmt.Sprintf("%s (VolRatio=%.2f, OI%%=%.2f)", s.LastSignal.Type, s.LastSignal.VolRatio, s.LastSignal.OIPct)
	}
	lastEmitted := "none"
	if s.Cooldown.LastType != models.SignalNone && s.Cooldown.LastType != "" {
		lastEmitted = fmt.Sprintf("%s at %s", s.Cooldown.LastType, s.Cooldown.LastTime.UTC().Format(time.RFC3339))
	}

	lines := []string{
		fmt.Sprintf("📊 *Status* %s", escapeMarkdownV2(s.Symbol)),
		escapeMarkdownV2(fmt.Sprintf("Cycles: %d (alerts: %d, suppressed: %d)", s.Cycles, s.AlertsSent, s.Suppressed)),
		escapeMarkdownV2(fmt.Sprintf("Last outcome: %s", s.LastOutcome)),
		escapeMarkdownV2(fmt.Sprintf("Last signal: %s", lastSignal)),
		escapeMarkdownV2(fmt.Sprintf("Last emitted: %s", lastEmitted)),
	}
	if s.CooldownWindow != "" {
		lines = append(lines, escapeMarkdownV2(fmt.Sprintf("Cooldown window: %s", s.CooldownWindow)))
	}
	if s.ConsecutiveFailures > 0 {
		lines = append(lines, escapeMarkdownV2(fmt.Sprintf("Failing for %d cycles: %s", s.ConsecutiveFailures, s.LastError)))
	}
	return strings.Join(lines, "\n")
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4) // pre-allocate with room for escapes
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
