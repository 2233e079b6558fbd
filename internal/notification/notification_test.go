package notification

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordNotificationPostsEmbed(t *testing.T) {
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()
	t.Setenv("DISCORD_SUCCESS_NOTIFICATION_URL", server.URL)

	require.NoError(t, SendDiscordSuccessNotification("started 12 exports"))

	var msg DiscordMessage
	require.NoError(t, json.Unmarshal(body, &msg))
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, colorGreen, msg.Embeds[0].Color)
	assert.Contains(t, msg.Embeds[0].Description, "started 12 exports")
}

func TestDiscordNotificationIsNoopWhenUnset(t *testing.T) {
	t.Setenv("DISCORD_ERROR_NOTIFICATION_URL", "")
	require.NoError(t, SendDiscordErrorNotification("boom"))
}

func TestDiscordNotificationRejectsBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()
	t.Setenv("DISCORD_WARN_NOTIFICATION_URL", server.URL)

	err := SendDiscordWarnNotification("careful")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestTelegramNotification(t *testing.T) {
	var body []byte
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	old := telegramBaseURL
	telegramBaseURL = server.URL
	defer func() { telegramBaseURL = old }()

	t.Setenv("TELEGRAM_BOT_TOKEN", "tok123")
	t.Setenv("TELEGRAM_CHAT_ID", "chat456")

	require.NoError(t, SendTelegramNotification("run finished!"))
	assert.Equal(t, "/bottok123/sendMessage", path)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "chat456", payload["chat_id"])
	assert.Equal(t, `run finished\!`, payload["text"])
}

func TestTelegramNotificationIsNoopWithoutCredentials(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	require.NoError(t, SendTelegramNotification("ignored"))
}
