package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/edgescan/config"
	"github.com/alejandrodnm/edgescan/internal/adapters/notify"
	"github.com/alejandrodnm/edgescan/internal/adapters/polymarket"
	"github.com/alejandrodnm/edgescan/internal/adapters/storage"
	"github.com/alejandrodnm/edgescan/internal/api"
	"github.com/alejandrodnm/edgescan/internal/ports"
	"github.com/alejandrodnm/edgescan/internal/scanner"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one scan cycle and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full alert table (default: compact 1-line)")
	noAPI := flag.Bool("no-api", false, "disable the HTTP read API")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("edgescan starting",
		"config", *configPath,
		"interval", cfg.ScanInterval(),
		"min_ev", cfg.Scanner.MinEV,
		"once", *once,
	)

	client := polymarket.NewClient(cfg.API.GammaBase)

	store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	notifiers := []ports.Notifier{notify.NewConsole(*table)}
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			slog.Error("failed to init telegram notifier", "err", err)
			os.Exit(1)
		}
		notifiers = append(notifiers, tg)
		slog.Info("telegram notifier enabled")
	}

	scanCfg := scanner.DefaultConfig()
	scanCfg.ScanInterval = cfg.ScanInterval()
	scanCfg.CycleTimeout = cfg.CycleTimeout()
	scanCfg.MinEV = cfg.Scanner.MinEV
	scanCfg.DryRun = *once
	scanCfg.Filter = scanner.FilterConfig{
		MaxExpiryWindow: cfg.MaxExpiryWindow(),
		MinLiquidity:    cfg.Scanner.MinLiquidity,
	}

	s := scanner.New(scanCfg, client, store, notify.NewMulti(notifiers...))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !*noAPI && !*once {
		srv := api.New(store)
		go func() {
			if err := srv.Run(ctx, cfg.HTTP.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("api server error", "err", err)
			}
		}()
	}

	if err := s.Run(ctx); err != nil {
		slog.Error("scanner exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("edgescan stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
