package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rewired-gh/oiwatch/internal/binance"
	"github.com/rewired-gh/oiwatch/internal/config"
	"github.com/rewired-gh/oiwatch/internal/logger"
	"github.com/rewired-gh/oiwatch/internal/monitor"
	"github.com/rewired-gh/oiwatch/internal/status"
	"github.com/rewired-gh/oiwatch/internal/storage"
	"github.com/rewired-gh/oiwatch/internal/telegram"
	flag "github.com/spf13/pflag"
)

var (
	configPath = flag.StringP("config", "c", "", "Path to configuration file (optional)")
	envFile    = flag.String("env-file", ".env", "Path to a .env file loaded before reading the environment")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load %s: %v", *envFile, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if *configPath != "" {
		logger.Info("Configuration loaded from %s", *configPath)
	}

	store, err := storage.New(cfg.Storage.MaxAlerts, cfg.Storage.DBPath)
	if err != nil {
		logger.Fatal("Failed to initialize alert journal: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close alert journal: %v", err)
		}
	}()

	source := binance.NewClient(cfg.Binance.SpotAPIURL, cfg.Binance.FuturesAPIURL, cfg.Binance.Timeout)

	notifier, telegramClient := newNotifier(cfg.Telegram)

	board := monitor.NewStatusBoard(cfg.Monitor.Symbol, time.Now())
	runner := monitor.New(source, notifier, telegram.Formatter{}, monitorConfig(cfg),
		monitor.WithJournal(store),
		monitor.WithStatusBoard(board),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	if telegramClient != nil && cfg.Telegram.ListenCommands {
		telegramClient.ListenForCommands(ctx, board)
	}

	var statusServer *status.Server
	if cfg.Status.Enabled {
		statusServer = status.NewServer(cfg.Status.ListenAddr, board, store)
		statusServer.Start()
	}

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Monitor exited: %v", err)
	}

	if statusServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := statusServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to stop status server: %v", err)
		}
	}
	logger.Info("Service stopped")
}

func monitorConfig(cfg *config.Config) monitor.Config {
	return monitor.Config{
		Symbol:           cfg.Monitor.Symbol,
		KlineInterval:    cfg.Binance.KlineInterval,
		KlineLimit:       cfg.Binance.KlineLimit,
		OIPeriod:         cfg.Binance.OIPeriod,
		OILimit:          cfg.Binance.OILimit,
		PollInterval:     cfg.Monitor.PollInterval(),
		EmptyDataBackoff: cfg.Monitor.EmptyDataBackoff(),
		Thresholds: monitor.Thresholds{
			OIPercentMin: cfg.Monitor.OIPercentMin,
			VolRatioMin:  cfg.Monitor.VolRatioMin,
		},
		Levels:    cfg.Monitor.LevelPoints(),
		MinRepeat: cfg.Monitor.MinRepeat(),
	}
}
