package notification

import (
	"github.com/croplapse/croplapse-export-poc/internal/logger"
)

// Run-level notifications fan out to every configured channel. Delivery
// failures are logged and swallowed: a dead webhook must not fail an export
// run that already did its work.

func NotifyRunSuccess(message string) {
	if err := SendDiscordSuccessNotification(message); err != nil {
		logger.Log.Warnf("discord notification failed: %v", err)
	}
	if err := SendTelegramNotification("✅ " + message); err != nil {
		logger.Log.Warnf("telegram notification failed: %v", err)
	}
}

func NotifyRunWarning(message string) {
	if err := SendDiscordWarnNotification(message); err != nil {
		logger.Log.Warnf("discord notification failed: %v", err)
	}
	if err := SendTelegramNotification("⚠️ " + message); err != nil {
		logger.Log.Warnf("telegram notification failed: %v", err)
	}
}

func NotifyRunFailure(message string) {
	if err := SendDiscordErrorNotification(message); err != nil {
		logger.Log.Warnf("discord notification failed: %v", err)
	}
	if err := SendTelegramNotification("🚨 " + message); err != nil {
		logger.Log.Warnf("telegram notification failed: %v", err)
	}
}
