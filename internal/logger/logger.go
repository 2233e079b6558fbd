package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log = newLogger()

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:      true,
		DisableTimestamp: true,
	})

	if os.Getenv("DEBUG") == "1" {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

// WithTask scopes log lines to one export task so bulk runs stay readable.
func WithTask(name string) *logrus.Entry {
	return Log.WithField("task", name)
}

// WithLocation scopes log lines to one location id.
func WithLocation(id string) *logrus.Entry {
	return Log.WithField("loc", id)
}
