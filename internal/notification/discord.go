package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/croplapse/croplapse-export-poc/internal/properties"
)

// Discord webhooks carry run summaries so a bulk export left running
// overnight reports back without anyone tailing logs.

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

const (
	colorRed    = 16711680
	colorGreen  = 65280
	colorYellow = 16776960
)

func SendDiscordErrorNotification(errorMessage string) error {
	return sendDiscordWebhook(properties.DiscordErrorNotificationUrl(), DiscordEmbed{
		Title:       "🚨 Export Run Failed",
		Description: fmt.Sprintf("So weird… must be the satellite's problem.\n\nAn error occurred: %s", errorMessage),
		Color:       colorRed,
	})
}

func SendDiscordSuccessNotification(successMessage string) error {
	return sendDiscordWebhook(properties.DiscordSuccessNotificationUrl(), DiscordEmbed{
		Title:       "✅ Export Run Finished",
		Description: fmt.Sprintf("Not sure how, but it worked...\n\n%s", successMessage),
		Color:       colorGreen,
	})
}

func SendDiscordWarnNotification(warnMessage string) error {
	return sendDiscordWebhook(properties.DiscordWarnNotificationUrl(), DiscordEmbed{
		Title:       "⚠️ Export Run Finished With Errors",
		Description: warnMessage,
		Color:       colorYellow,
	})
}

// sendDiscordWebhook posts one embed. An unset webhook URL is a no-op so the
// tool runs fine without Discord wired up.
func sendDiscordWebhook(url string, embed DiscordEmbed) error {
	if url == "" {
		return nil
	}

	payload, err := json.Marshal(DiscordMessage{Embeds: []DiscordEmbed{embed}})
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}
	return nil
}
