// Package mailer provides Mailer implementations.
package mailer

import (
	"context"
	"log/slog"

	"github.com/kunalsingh7053/VyaparX/modules/notifications/domain"
)

// LogMailer logs messages instead of delivering them.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg domain.Message) error {
	m.logger.InfoContext(ctx, "email",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("body_bytes", len(msg.HTML)))
	return nil
}

var _ domain.Mailer = (*LogMailer)(nil)
