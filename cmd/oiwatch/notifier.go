package main

import (
	"github.com/rewired-gh/oiwatch/internal/config"
	"github.com/rewired-gh/oiwatch/internal/logger"
	"github.com/rewired-gh/oiwatch/internal/monitor"
	"github.com/rewired-gh/oiwatch/internal/telegram"
)

// newNotifier returns the Telegram client when it can be built and falls
// back to log-only delivery otherwise. The client is nil on fallback.
func newNotifier(cfg config.TelegramConfig) (monitor.Notifier, *telegram.Client) {
	if !cfg.Enabled() {
		if cfg.BotToken != "" || cfg.ChatID != "" {
			logger.Warn("Only one of telegram.bot_token and telegram.chat_id is set, alerts will only be logged")
		} else {
			logger.Warn("Telegram credentials not set, alerts will only be logged")
		}
		return telegram.LogNotifier{}, nil
	}

	client, err := telegram.NewClient(cfg.BotToken, cfg.ChatID, cfg.Timeout, cfg.MaxRetries, cfg.RetryDelayBase)
	if err != nil {
		logger.Warn("Failed to initialize Telegram client, alerts will only be logged: %v", err)
		return telegram.LogNotifier{}, nil
	}
	logger.Info("Telegram client initialized successfully")
	return client, client
}
