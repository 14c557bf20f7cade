package main

import (
	"testing"
	"time"

	"github.com/rewired-gh/oiwatch/internal/config"
	"github.com/rewired-gh/oiwatch/internal/telegram"
	"github.com/stretchr/testify/assert"
)

func TestNewNotifier_FallsBackToLog(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TelegramConfig
	}{
		{"no credentials", config.TelegramConfig{Timeout: time.Second}},
		{"token only", config.TelegramConfig{BotToken: "123:abc", Timeout: time.Second}},
		{"chat id only", config.TelegramConfig{ChatID: "-100123", Timeout: time.Second}},
		// The chat ID is parsed before the Bot API is contacted.
		{"non-numeric chat id", config.TelegramConfig{BotToken: "123:abc", ChatID: "channel", Timeout: time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier, client := newNotifier(tt.cfg)
			assert.IsType(t, telegram.LogNotifier{}, notifier)
			assert.Nil(t, client)
		})
	}
}
