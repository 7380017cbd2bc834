// Package domain holds the notification module's delivery port.
package domain

import "context"

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers rendered messages. Delivery itself is owned by an
// external provider; implementations only hand the message over.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
