package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env"
)

type Config struct {
	ServerAddr           string `env:"RUN_ADDRESS"`
	LogLevel             string `env:"LOG_LEVEL"`
	DatabaseURI          string `env:"DATABASE_URI"`
	BotToken             string `env:"BOT_TOKEN"`
	AdminChatID          int64  `env:"ADMIN_CHAT_ID"`
	WebhookURL           string `env:"WEBHOOK_URL"`
	AppURL               string `env:"APP_URL"`
	WelcomeMessage       string `env:"WELCOME_MESSAGE"`
	HelpMessage          string `env:"HELP_MESSAGE"`
	MaintenanceMode      bool   `env:"MAINTENANCE_MODE"`
	MaintenanceMessage   string `env:"MAINTENANCE_MESSAGE"`
	NotificationsEnabled bool   `env:"NOTIFICATIONS_ENABLED"`
	JWTSecretKey         string `env:"JWT_SECRET_KEY"`
	AdminPasswordHash    string `env:"ADMIN_PASSWORD_HASH"`
}

func NewConfig() (Config, error) {
	cfg := Config{}

	flag.StringVar(&cfg.ServerAddr, "a", "0.0.0.0:8080", "server listening address [env:RUN_ADDRESS]")
	flag.StringVar(&cfg.LogLevel, "l", "info", "log output level [env:LOG_LEVEL]")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database connection string [env:DATABASE_URI]")
	flag.StringVar(&cfg.BotToken, "t", "", "telegram bot token [env:BOT_TOKEN]")
	flag.Int64Var(&cfg.AdminChatID, "c", 0, "telegram chat id for admin notifications [env:ADMIN_CHAT_ID]")
	flag.StringVar(&cfg.WebhookURL, "w", "", "public URL for the telegram webhook [env:WEBHOOK_URL]")
	flag.StringVar(&cfg.AppURL, "u", "", "mini app URL opened from the bot [env:APP_URL]")
	flag.StringVar(&cfg.WelcomeMessage, "welcome", defaultWelcomeMessage, "bot /start reply [env:WELCOME_MESSAGE]")
	flag.StringVar(&cfg.HelpMessage, "help", defaultHelpMessage, "bot /help reply [env:HELP_MESSAGE]")
	flag.BoolVar(&cfg.MaintenanceMode, "m", false, "reject bot commands with a maintenance notice [env:MAINTENANCE_MODE]")
	flag.StringVar(&cfg.MaintenanceMessage, "maintenance-msg", defaultMaintenanceMessage,
		"notice shown while maintenance mode is on [env:MAINTENANCE_MESSAGE]")
	flag.BoolVar(&cfg.NotificationsEnabled, "n", true, "send telegram order notifications [env:NOTIFICATIONS_ENABLED]")
	flag.StringVar(&cfg.JWTSecretKey, "s", "secretkey", "JWT secret to sign tokens [env:JWT_SECRET_KEY]")
	flag.StringVar(&cfg.AdminPasswordHash, "p", "", "bcrypt hash of the admin panel password [env:ADMIN_PASSWORD_HASH]")
	flag.Parse()

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("env.Parse: %w", err)
	}

	return cfg, nil
}

const (
	defaultWelcomeMessage = "👋 Welcome! Tap the button below to open the shop."

	defaultHelpMessage = "Available commands:\n" +
		"/start - open the shop\n" +
		"/shop - browse available entries\n" +
		"/orders - show your recent orders\n" +
		"/status - bot status\n" +
		"/help - this message"

	defaultMaintenanceMessage = "🔧 The shop is under maintenance. Please try again later."
)
