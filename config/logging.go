package config

import (
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// InitLogging configures the global logrus logger and, when a DSN is set, Sentry.
// The returned func flushes buffered Sentry events and should be deferred by main.
func InitLogging() (func(), error) {
	logrus.SetOutput(os.Stdout)
	if AppConfig.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logrus.SetLevel(logrus.DebugLevel)
	}

	if AppConfig.SentryDSN == "" {
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              AppConfig.SentryDSN,
		Environment:      AppConfig.Environment,
		AttachStacktrace: true,
	}); err != nil {
		return func() {}, err
	}

	return func() { sentry.Flush(2 * time.Second) }, nil
}
