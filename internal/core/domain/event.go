package domain

import "time"

// User event types published to the message bus.
const (
	EventUserCreated = "USER_CREATED"
	EventUserUpdated = "USER_UPDATED"
	EventUserDeleted = "USER_DELETED"
)

// UserEvent is the payload published for identity lifecycle changes.
// Publication is best-effort: an unavailable bus must never fail the
// operation that produced the event.
type UserEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email,omitempty"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Role        UserRole  `json:"role,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// EmailMessage is a templated notification handed to the external notifier.
// Delivery is fire-and-forget.
type EmailMessage struct {
	To           string         `json:"to"`
	TemplateCode string         `json:"template_code"`
	Payload      map[string]any `json:"payload,omitempty"`
}

// Notification template codes understood by the notification service.
const (
	TemplateWelcome        = "WELCOME"
	TemplateForgotPassword = "FORGOT_PASSWORD"
	TemplateTwoFactorCode  = "TWO_FACTOR_CODE"
)
