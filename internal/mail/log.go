package mail

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// LogMailer logs outbound mail instead of sending it. Used for development
// and tests, selected explicitly by configuration.
type LogMailer struct{}

// NewLogMailer constructs a LogMailer.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// Send implements Notifier.
func (m *LogMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	log.WithFields(log.Fields{
		"to":      to,
		"subject": subject,
	}).Infof("dev mail: %s", htmlBody)
	return nil
}
