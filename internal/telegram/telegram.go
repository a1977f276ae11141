package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DoomsdayProd/ccshop-panel/internal/httpclient"
	"github.com/go-resty/resty/v2"
)

const apiBaseURL = "https://api.telegram.org/bot"

var (
	ErrBotNotConfigured = errors.New("bot token is not configured")
	ErrAPIRequestFailed = errors.New("telegram api request failed")
)

// Client is a thin wrapper over the Telegram Bot HTTP API.
type Client struct {
	log    *slog.Logger
	client *resty.Client
	token  string
}

func New(token string, opts ...Option) *Client {
	tgClient := &Client{
		log:    slog.New(&slog.JSONHandler{}),
		client: httpclient.New(httpclient.WithBaseURL(apiBaseURL + token)),
		token:  token,
	}

	for _, opt := range opts {
		opt(tgClient)
	}

	return tgClient
}

type Option func(c *Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.log = logger
	}
}

func WithClient(client *resty.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (c *Client) call(ctx context.Context, method string, body any) error {
	if c.token == "" {
		return ErrBotNotConfigured
	}

	result := new(apiResponse)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		SetError(result).
		Post("/" + method)
	if err != nil {
		return fmt.Errorf("client.R: %w", err)
	}

	if resp.IsError() || !result.OK {
		return fmt.Errorf("%w: %s: status %d: %s",
			ErrAPIRequestFailed, method, resp.StatusCode(), result.Description)
	}

	return nil
}

func (c *Client) SendMessage(ctx context.Context, msg OutgoingMessage) error {
	if msg.ParseMode == "" {
		msg.ParseMode = ParseModeMarkdown
	}

	return c.call(ctx, "sendMessage", msg)
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]string{
		"callback_query_id": callbackQueryID,
		"text":              text,
	})
}

func (c *Client) SetWebhook(ctx context.Context, webhookURL string) error {
	return c.call(ctx, "setWebhook", map[string]string{
		"url": webhookURL,
	})
}

func (c *Client) GetMe(ctx context.Context) (*BotUser, error) {
	if c.token == "" {
		return nil, ErrBotNotConfigured
	}

	result := new(getMeResponse)

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(result).
		SetError(result).
		Get("/getMe")
	if err != nil {
		return nil, fmt.Errorf("client.R: %w", err)
	}

	if resp.IsError() || !result.OK {
		return nil, fmt.Errorf("%w: getMe: status %d: %s",
			ErrAPIRequestFailed, resp.StatusCode(), result.Description)
	}

	return result.Result, nil
}

type getMeResponse struct {
	OK          bool     `json:"ok"`
	Description string   `json:"description"`
	Result      *BotUser `json:"result"`
}
