package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kunalsingh7053/VyaparX/modules/notifications/application/templates"
	"github.com/kunalsingh7053/VyaparX/modules/notifications/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events/contracts"
)

// UserCreatedHandler sends the welcome email.
type UserCreatedHandler struct {
	notifier
}

func NewUserCreatedHandler(mailer domain.Mailer, renderer *templates.Renderer, logger *slog.Logger) *UserCreatedHandler {
	return &UserCreatedHandler{notifier{mailer: mailer, renderer: renderer, logger: logger}}
}

func (h *UserCreatedHandler) Handle(ctx context.Context, event events.Event) error {
	userCreated, ok := event.(contracts.UserCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %T", event)
	}
	if userCreated.Email == "" {
		h.logger.Warn("user created without email, skipping welcome",
			slog.String("event_id", event.EventID()),
			slog.String("user_id", userCreated.UserID))
		return nil
	}

	name := strings.TrimSpace(userCreated.FirstName + " " + userCreated.LastName)
	if name == "" {
		name = userCreated.Email
	}

	h.logger.Info("sending welcome email",
		slog.String("event_id", event.EventID()),
		slog.String("user_id", userCreated.UserID))

	return h.send(ctx, userCreated.Email, "Welcome to VyaparX!", templates.Welcome, map[string]string{
		"Name": name,
	})
}
