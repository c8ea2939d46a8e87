package mailer

import (
	"context"
	"log/slog"
)

// LogSender records outgoing messages to the log instead of delivering them.
// Used in development and wherever SMTP is not configured.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{log: logger}
}

// Send implements Sender. It always succeeds.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.Info("mail delivery skipped, logging only",
		"to", msg.To,
		"subject", msg.Subject,
		"attachments", len(msg.Attachments),
	)
	return nil
}
