package properties

import "os"

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

// ExportRoot is the locally synced copy of the Drive folder the platform
// renders videos into. Finished exports are detected by checking paths
// under it before new tasks are submitted.
func ExportRoot() string {
	if v := os.Getenv("EXPORT_ROOT"); v != "" {
		return v
	}
	return "/content/drive/MyDrive"
}

func EarthEngineProject() string {
	return os.Getenv("EE_PROJECT")
}

func EarthEngineCredentialsFile() string {
	return os.Getenv("EE_SERVICE_ACCOUNT_FILE")
}

// EarthEngineEndpoint overrides the API base URL, mainly for tests.
func EarthEngineEndpoint() string {
	return os.Getenv("EE_ENDPOINT")
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}
func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}
func DiscordWarnNotificationUrl() string {
	return os.Getenv("DISCORD_WARN_NOTIFICATION_URL")
}

func TelegramBotToken() string {
	return os.Getenv("TELEGRAM_BOT_TOKEN")
}
func TelegramChatID() string {
	return os.Getenv("TELEGRAM_CHAT_ID")
}
