package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New("test-token", WithClient(resty.New().SetBaseURL(srv.URL)))
}

func TestSendMessage(t *testing.T) {
	var got OutgoingMessage

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sendMessage", r.URL.Path)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"ok":true}`)) //nolint:errcheck
	})

	err := client.SendMessage(context.Background(), OutgoingMessage{ChatID: 42, Text: "hello"})
	require.NoError(t, err)

	assert.Equal(t, int64(42), got.ChatID)
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, ParseModeMarkdown, got.ParseMode)
}

func TestSendMessage_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("content-type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`)) //nolint:errcheck
	})

	err := client.SendMessage(context.Background(), OutgoingMessage{ChatID: 42, Text: "hello"})
	require.ErrorIs(t, err, ErrAPIRequestFailed)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendMessage_NoToken(t *testing.T) {
	client := New("")

	err := client.SendMessage(context.Background(), OutgoingMessage{ChatID: 42, Text: "hello"})
	assert.ErrorIs(t, err, ErrBotNotConfigured)
}

func TestAnswerCallbackQuery(t *testing.T) {
	var got map[string]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/answerCallbackQuery", r.URL.Path)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"ok":true}`)) //nolint:errcheck
	})

	err := client.AnswerCallbackQuery(context.Background(), "cb-1", "done")
	require.NoError(t, err)

	assert.Equal(t, "cb-1", got["callback_query_id"])
	assert.Equal(t, "done", got["text"])
}

func TestSetWebhook(t *testing.T) {
	var got map[string]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/setWebhook", r.URL.Path)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"ok":true}`)) //nolint:errcheck
	})

	err := client.SetWebhook(context.Background(), "https://shop.example.com/api/bot/webhook")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/api/bot/webhook", got["url"])
}

func TestGetMe(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/getMe", r.URL.Path)

		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"id":7,"is_bot":true,"username":"shop_bot"}}`)) //nolint:errcheck
	})

	botUser, err := client.GetMe(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(7), botUser.ID)
	assert.True(t, botUser.IsBot)
	assert.Equal(t, "shop_bot", botUser.Username)
}
