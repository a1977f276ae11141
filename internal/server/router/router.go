package router

import (
	"log/slog"

	"github.com/DoomsdayProd/ccshop-panel/internal/auth"
	"github.com/DoomsdayProd/ccshop-panel/internal/lifecycle"
	"github.com/DoomsdayProd/ccshop-panel/internal/server/handlers"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type Options struct {
	log               *slog.Logger
	secret            []byte
	bot               handlers.UpdateHandler
	botAPI            handlers.BotManager
	adminPasswordHash string
	webhookURL        string
}

func NewRouter(store storage.Storage, controller *lifecycle.Controller, opts ...Option) chi.Router {
	r := chi.NewRouter()

	rOpts := Options{
		log:    slog.New(&slog.JSONHandler{}),
		secret: []byte(""),
	}

	for _, opt := range opts {
		opt(&rOpts)
	}

	tokenAuth := jwtauth.New("HS256", rOpts.secret, nil)

	r.Use(
		middleware.Recoverer,
		middleware.StripSlashes,
		middleware.Logger,
	)

	h := handlers.NewHandlers(store, controller,
		handlers.WithLogger(rOpts.log),
		handlers.WithAuth(auth.NewJWTAuth(rOpts.secret)),
		handlers.WithBot(rOpts.bot),
		handlers.WithBotAPI(rOpts.botAPI),
		handlers.WithAdminPasswordHash(rOpts.adminPasswordHash),
		handlers.WithWebhookURL(rOpts.webhookURL),
	)

	r.Get("/ping", h.Ping)

	r.Group(func(r chi.Router) {
		r.Post("/api/bot/webhook", h.BotWebhook)
		r.Post("/api/admin/login", h.AdminLogin)
		r.Post("/api/agreement/accept", h.AcceptAgreement)
		r.Get("/api/agreement/check/{telegramID}", h.CheckAgreement)
		r.Get("/api/entries", h.GetEntries)
		r.Get("/api/orders", h.GetOrders)
		r.Post("/api/orders", h.CreateOrder)
	})

	r.Group(func(r chi.Router) {
		r.Use(
			jwtauth.Verifier(tokenAuth),
			jwtauth.Authenticator(tokenAuth),
		)

		r.Get("/api/admin/entries", h.GetAdminEntries)
		r.Post("/api/entries", h.CreateEntries)
		r.Put("/api/entries/{entryID}", h.UpdateEntry)
		r.Delete("/api/entries/{entryID}", h.DeleteEntry)

		r.Put("/api/orders/{orderID}", h.UpdateOrder)

		r.Get("/api/users", h.GetUsers)
		r.Post("/api/users", h.CreateUser)
		r.Put("/api/users/{userID}", h.UpdateUser)

		r.Get("/api/wallet-transactions", h.GetWalletTransactions)
		r.Post("/api/wallet-transactions", h.CreateWalletTransaction)

		r.Get("/api/admin/stats/sales", h.GetSalesStats)
		r.Get("/api/admin/stats/stock", h.GetStockStats)
		r.Get("/api/admin/stats/users", h.GetUserStats)

		r.Post("/api/bot/setup", h.SetupBot)
	})

	return r
}

type Option func(r *Options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.log = logger
	}
}

func WithSecret(secret []byte) Option {
	return func(o *Options) {
		o.secret = secret
	}
}

func WithBot(bot handlers.UpdateHandler) Option {
	return func(o *Options) {
		o.bot = bot
	}
}

func WithBotAPI(api handlers.BotManager) Option {
	return func(o *Options) {
		o.botAPI = api
	}
}

func WithAdminPasswordHash(hash string) Option {
	return func(o *Options) {
		o.adminPasswordHash = hash
	}
}

func WithWebhookURL(url string) Option {
	return func(o *Options) {
		o.webhookURL = url
	}
}
