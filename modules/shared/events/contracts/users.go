// Package contracts defines public event contracts for inter-module communication.
// Modules should import event types from here, NOT from other module's domain packages.
package contracts

import "github.com/kunalsingh7053/VyaparX/modules/shared/events"

// Produced by the auth service; consumed by notification and seller dashboard.
const (
	UserCreatedEventType events.EventType = "USER_CREATED"
)

// UserCreatedEvent is the public contract for user registration events.
type UserCreatedEvent struct {
	events.BaseEvent
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}
