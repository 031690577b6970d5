package handlers

import (
	"time"

	"candor-backend/internal/config"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

// SetupSentry wires Sentry error reporting into the echo app. Reporting is
// skipped entirely when no DSN is configured.
func SetupSentry(e *echo.Echo, cfg *config.Config) {
	if cfg.Sentry.DSN == "" {
		e.Logger.Info("SENTRY_DSN not configured, error reporting disabled")
		return
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		TracesSampleRate: 0.2,
	}); err != nil {
		e.Logger.Warnf("Sentry initialization failed: %v", err)
		return
	}

	e.Use(sentryecho.New(sentryecho.Options{
		Repanic: true,
		Timeout: 3 * time.Second,
	}))
}

// CaptureError forwards an error to Sentry. Safe to call when Sentry was
// never initialized.
func CaptureError(err error) {
	if err == nil {
		return
	}
	if sentry.CurrentHub().Client() == nil {
		return
	}
	sentry.CaptureException(err)
}
