package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoomsdayProd/ccshop-panel/internal/bot"
	"github.com/DoomsdayProd/ccshop-panel/internal/config"
	"github.com/DoomsdayProd/ccshop-panel/internal/lifecycle"
	"github.com/DoomsdayProd/ccshop-panel/internal/logger"
	"github.com/DoomsdayProd/ccshop-panel/internal/notifier"
	"github.com/DoomsdayProd/ccshop-panel/internal/server"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage/inmemory"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage/pgstorage"
	"github.com/DoomsdayProd/ccshop-panel/internal/telegram"
)

type Application struct {
	log     *slog.Logger
	server  *server.Server
	storage storage.Storage
}

func New() (*Application, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("config.NewConfig: %w", err)
	}

	logLevel, err := logger.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger.ParseLogLevel: %w", err)
	}

	logg := logger.NewLogger(
		logger.WithLevel(logLevel),
		logger.WithFormat(logger.LogFormatJSON),
		logger.WithAddSource(false),
	)

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	var (
		tgClient   *telegram.Client
		dispatcher lifecycle.Notifier
	)

	if cfg.BotToken != "" {
		tgClient = telegram.New(cfg.BotToken, telegram.WithLogger(logg))

		dispatcher = notifier.New(tgClient,
			notifier.WithLogger(logg),
			notifier.WithAdminChatID(cfg.AdminChatID),
			notifier.WithEnabled(cfg.NotificationsEnabled),
		)
	}

	controllerOpts := []lifecycle.Option{lifecycle.WithLogger(logg)}
	if dispatcher != nil {
		controllerOpts = append(controllerOpts, lifecycle.WithNotifier(dispatcher))
	}

	controller := lifecycle.NewController(store, controllerOpts...)

	srvOpts := []server.Option{
		server.WithServerAddr(cfg.ServerAddr),
		server.WithJWTSecretKey([]byte(cfg.JWTSecretKey)),
		server.WithLogger(logg),
		server.WithAdminPasswordHash(cfg.AdminPasswordHash),
		server.WithWebhookURL(cfg.WebhookURL),
	}

	if tgClient != nil {
		dispatch := bot.NewBot(tgClient, store,
			bot.WithLogger(logg),
			bot.WithAppURL(cfg.AppURL),
			bot.WithAdminChatID(cfg.AdminChatID),
			bot.WithWelcomeMessage(cfg.WelcomeMessage),
			bot.WithHelpMessage(cfg.HelpMessage),
			bot.WithMaintenanceMode(cfg.MaintenanceMode),
			bot.WithMaintenanceMessage(cfg.MaintenanceMessage),
		)

		srvOpts = append(srvOpts, server.WithBot(dispatch), server.WithBotAPI(tgClient))
	}

	srv, err := server.NewServer(store, controller, srvOpts...)
	if err != nil {
		return nil, fmt.Errorf("server.NewServer: %w", err)
	}

	return &Application{
		log:     logg,
		server:  srv,
		storage: store,
	}, nil
}

// newStorage picks the backend: postgres when a connection string is
// configured, in-memory otherwise.
func newStorage(cfg config.Config) (storage.Storage, error) {
	if cfg.DatabaseURI == "" {
		return storage.NewStorage(inmemory.NewStorage()), nil
	}

	pgstore, err := pgstorage.NewStorage(cfg.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("pgstorage.NewStorage: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := pgstore.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("pgstorage.Bootstrap: %w", err)
	}

	return storage.NewStorage(pgstore), nil
}

func (a *Application) Run() error {
	errChan := make(chan error, 1)

	go func() {
		if err := a.server.Start(); err != nil {
			errChan <- fmt.Errorf("server.Start: %w", err)
		}
	}()

	// Graceful shutdown handler
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err

	case <-quit:
		a.log.Info("Gracefully shutting down application...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.log.Error("server.Shutdown", slog.Any("error", err))
	}

	if err := a.storage.Close(); err != nil {
		a.log.Error("storage.Close", slog.Any("error", err))
	}

	return nil
}
