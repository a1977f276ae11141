package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/DoomsdayProd/ccshop-panel/internal/lifecycle"
	"github.com/DoomsdayProd/ccshop-panel/internal/server/handlers"
	"github.com/DoomsdayProd/ccshop-panel/internal/server/router"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
)

type Server struct {
	srv *http.Server
	log *slog.Logger
}

type config struct {
	serverAddr        string
	jwtSecretKey      []byte
	log               *slog.Logger
	bot               handlers.UpdateHandler
	botAPI            handlers.BotManager
	adminPasswordHash string
	webhookURL        string
}

type Option func(c *config)

func WithServerAddr(addr string) Option {
	return func(c *config) {
		c.serverAddr = addr
	}
}

func WithJWTSecretKey(secret []byte) Option {
	return func(c *config) {
		c.jwtSecretKey = secret
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

func WithBot(bot handlers.UpdateHandler) Option {
	return func(c *config) {
		c.bot = bot
	}
}

func WithBotAPI(api handlers.BotManager) Option {
	return func(c *config) {
		c.botAPI = api
	}
}

func WithAdminPasswordHash(hash string) Option {
	return func(c *config) {
		c.adminPasswordHash = hash
	}
}

func WithWebhookURL(url string) Option {
	return func(c *config) {
		c.webhookURL = url
	}
}

func NewServer(store storage.Storage, controller *lifecycle.Controller, opts ...Option) (*Server, error) {
	cfg := config{
		serverAddr: "0.0.0.0:8080",
		log:        slog.Default(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	r := router.NewRouter(store, controller,
		router.WithLogger(cfg.log),
		router.WithSecret(cfg.jwtSecretKey),
		router.WithBot(cfg.bot),
		router.WithBotAPI(cfg.botAPI),
		router.WithAdminPasswordHash(cfg.adminPasswordHash),
		router.WithWebhookURL(cfg.webhookURL),
	)

	srv := &http.Server{
		Addr:              cfg.serverAddr,
		Handler:           r,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return &Server{
		srv: srv,
		log: cfg.log,
	}, nil
}

func (s *Server) Start() error {
	s.log.Info(fmt.Sprintf("Starting server on %s", s.srv.Addr))

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}

	return nil
}
