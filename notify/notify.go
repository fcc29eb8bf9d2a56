// Package notify is the boundary to platform notification capabilities.
// Deliveries are fire-and-forget: they never block and never fail the
// calling operation, and the capability may simply be absent.
package notify

import log "github.com/sirupsen/logrus"

// Notifier delivers a short user-facing notice.
type Notifier interface {
	Notify(title, body string)
}

// Noop discards all notifications. Used when no notification capability is
// configured.
type Noop struct{}

func (Noop) Notify(string, string) {}

// Logger writes notifications to the application log.
type Logger struct {
	Log *log.Logger
}

func (l Logger) Notify(title, body string) {
	logger := l.Log
	if logger == nil {
		logger = log.StandardLogger()
	}
	logger.WithFields(log.Fields{"title": title, "body": body}).Info("notification")
}
