package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/croplapse/croplapse-export-poc/internal/properties"
)

// telegramBaseURL is a package variable so tests can point it at a local
// server.
var telegramBaseURL = "https://api.telegram.org"

// SendTelegramNotification posts a MarkdownV2 message to the configured
// chat. Unset credentials make it a no-op, like the Discord path.
func SendTelegramNotification(message string) error {
	token := properties.TelegramBotToken()
	chatID := properties.TelegramChatID()
	if token == "" || chatID == "" {
		return nil
	}

	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       escapeMarkdown(message),
		"parse_mode": "MarkdownV2",
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", telegramBaseURL, token)
	resp, err := http.Post(url, "application/json", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Telegram notification, status code: %d", resp.StatusCode)
	}
	return nil
}

// escapeMarkdown escapes the characters MarkdownV2 treats as syntax.
func escapeMarkdown(message string) string {
	replacer := strings.NewReplacer(
		"!", "\\!",
		".", "\\.",
		"-", "\\-",
		"(", "\\(",
		")", "\\)",
	)
	return replacer.Replace(message)
}
