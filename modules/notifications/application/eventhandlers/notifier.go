package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kunalsingh7053/VyaparX/modules/notifications/application/templates"
	"github.com/kunalsingh7053/VyaparX/modules/notifications/domain"
)

// notifier renders a template and hands the result to the mailer.
//
// Handlers run on a broker consumer, never inside a database transaction.
// A mailer error is returned so the delivery is retried; duplicates are
// filtered by the dedup subscriber before reaching here.
type notifier struct {
	mailer   domain.Mailer
	renderer *templates.Renderer
	logger   *slog.Logger
}

func (n notifier) send(ctx context.Context, to, subject, template string, data any) error {
	body, err := n.renderer.Render(template, data)
	if err != nil {
		return err
	}
	if err := n.mailer.Send(ctx, domain.Message{To: to, Subject: subject, HTML: body}); err != nil {
		return fmt.Errorf("sending %q to %s: %w", subject, to, err)
	}
	return nil
}
