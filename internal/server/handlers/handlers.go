package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/DoomsdayProd/ccshop-panel/internal/auth"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/users"
	"github.com/DoomsdayProd/ccshop-panel/internal/errmsg"
	"github.com/DoomsdayProd/ccshop-panel/internal/lifecycle"
	"github.com/DoomsdayProd/ccshop-panel/internal/server/models"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
	"github.com/DoomsdayProd/ccshop-panel/internal/telegram"
	"github.com/go-chi/chi/v5"
)

// UpdateHandler consumes webhook updates from Telegram.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update telegram.Update) error
}

// BotManager covers the Telegram API calls used by the setup endpoint.
type BotManager interface {
	GetMe(ctx context.Context) (*telegram.BotUser, error)
	SetWebhook(ctx context.Context, url string) error
}

type Handlers struct {
	storage   storage.Storage
	lifecycle *lifecycle.Controller
	bot       UpdateHandler
	botAPI    BotManager
	log       *slog.Logger
	auth      *auth.JWTAuth

	adminPasswordHash string
	webhookURL        string
}

// NewHandlers returns a new Handlers instance.
func NewHandlers(store storage.Storage, controller *lifecycle.Controller, opts ...Option) *Handlers {
	handlers := &Handlers{
		storage:   store,
		lifecycle: controller,
		log:       slog.New(&slog.JSONHandler{}),
		auth:      auth.NewJWTAuth([]byte("")),
	}

	for _, opt := range opts {
		opt(handlers)
	}

	return handlers
}

// Option is a functional option for Handlers.
type Option func(h *Handlers)

// WithLogger is a option for Handlers that sets logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handlers) {
		h.log = logger
	}
}

func WithAuth(auth *auth.JWTAuth) Option {
	return func(h *Handlers) {
		h.auth = auth
	}
}

func WithBot(bot UpdateHandler) Option {
	return func(h *Handlers) {
		h.bot = bot
	}
}

func WithBotAPI(api BotManager) Option {
	return func(h *Handlers) {
		h.botAPI = api
	}
}

func WithAdminPasswordHash(hash string) Option {
	return func(h *Handlers) {
		h.adminPasswordHash = hash
	}
}

func WithWebhookURL(url string) Option {
	return func(h *Handlers) {
		h.webhookURL = url
	}
}

type JSONResponse struct {
	Message any `json:"message,omitempty"`
	Error   any `json:"error,omitempty"`
}

func handleJSONResponse(w http.ResponseWriter, status int, resp any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func handleError(w http.ResponseWriter, err errmsg.HTTPError) {
	resp := &JSONResponse{
		Error: err.Error(),
	}

	w.Header().Set("content-type", "application/json")
	w.WriteHeader(err.Code)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// decodeJSONBody reads a request payload and reports empty and malformed
// bodies as client errors.
func (h *Handlers) decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))
			handleError(w, errmsg.ErrRequestPayloadEmpty)

			return false
		}

		h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))
		handleError(w, errmsg.ErrRequestPayloadInvalid)

		return false
	}

	defer r.Body.Close()

	return true
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, err
	}

	return id, nil
}

func parseQueryID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
}

func parseListParams(r *http.Request) (limit, offset int) {
	query := r.URL.Query()

	limit, _ = strconv.Atoi(query.Get("limit"))
	offset, _ = strconv.Atoi(query.Get("offset"))

	if limit <= 0 {
		limit = 50
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

func (h *Handlers) Ping(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Ping(r.Context()); err != nil {
		h.log.Error("storage.Ping", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, &JSONResponse{Message: "ok"})
}

func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var payload models.AdminLoginRequest

	if !h.decodeJSONBody(w, r, &payload) {
		return
	}

	if h.adminPasswordHash == "" || !auth.VerifyPassword(h.adminPasswordHash, payload.Password) {
		handleError(w, errmsg.ErrAdminCredentialsInvalid)

		return
	}

	token, err := h.auth.CreateJWTString("admin")
	if err != nil {
		h.log.Error("auth.CreateJWTString()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	handleJSONResponse(w, http.StatusOK, models.TokenResponse{Token: token})
}

func (h *Handlers) AcceptAgreement(w http.ResponseWriter, r *http.Request) {
	var payload models.AgreementAcceptRequest

	if !h.decodeJSONBody(w, r, &payload) {
		return
	}

	if payload.TelegramID <= 0 {
		handleError(w, errmsg.ErrRequestPayloadInvalid)

		return
	}

	profile := users.Profile{
		Username:  payload.Username,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	}

	usr, err := h.storage.AcceptUserAgreement(r.Context(), payload.TelegramID, profile, time.Now())
	if err != nil {
		h.log.Error("storage.AcceptUserAgreement()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, models.NewUserResponse(usr))
}

func (h *Handlers) CheckAgreement(w http.ResponseWriter, r *http.Request) {
	telegramID, err := parseIDParam(r, "telegramID")
	if err != nil {
		handleError(w, errmsg.ErrRequestPayloadInvalid)

		return
	}

	usr, err := h.storage.GetUserByTelegramID(r.Context(), telegramID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			handleJSONResponse(w, http.StatusOK, models.AgreementCheckResponse{Agreed: false})

			return
		}

		h.log.Error("storage.GetUserByTelegramID()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	resp := models.AgreementCheckResponse{Agreed: usr.AgreedToTerms()}
	if usr.AgreedToTerms() && !usr.AgreedAt().IsZero() {
		resp.AgreedAt = usr.AgreedAt().Format(time.RFC3339)
	}

	handleJSONResponse(w, http.StatusOK, resp)
}

// BotWebhook accepts a Telegram update. It always acknowledges: Telegram
// retries on non-2xx, and a retry storm does not help a broken handler.
func (h *Handlers) BotWebhook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var update telegram.Update

	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))
		handleJSONResponse(w, http.StatusOK, &JSONResponse{Message: "ok"})

		return
	}

	if h.bot != nil {
		if err := h.bot.HandleUpdate(r.Context(), update); err != nil {
			h.log.Error("bot.HandleUpdate()", slog.Any("error", err))
		}
	}

	handleJSONResponse(w, http.StatusOK, &JSONResponse{Message: "ok"})
}

func (h *Handlers) SetupBot(w http.ResponseWriter, r *http.Request) {
	if h.botAPI == nil {
		handleError(w, errmsg.NewHTTPError(http.StatusServiceUnavailable, telegram.ErrBotNotConfigured))

		return
	}

	botUser, err := h.botAPI.GetMe(r.Context())
	if err != nil {
		h.log.Error("botAPI.GetMe()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusBadGateway, err))

		return
	}

	if err := h.botAPI.SetWebhook(r.Context(), h.webhookURL); err != nil {
		h.log.Error("botAPI.SetWebhook()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusBadGateway, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, models.BotSetupResponse{
		BotUsername: botUser.Username,
		WebhookURL:  h.webhookURL,
	})
}
