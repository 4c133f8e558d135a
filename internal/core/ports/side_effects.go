package ports

import (
	"context"
	"time"

	"github.com/tcon/auth-user-service/internal/core/domain"
)

// CodeCache is the volatile store for out-of-band 2FA codes, keyed by email
// with a short TTL enforced by the cache itself.
type CodeCache interface {
	Store(ctx context.Context, email, code string, ttl time.Duration) error
	// Consume reports whether code matches the cached value and deletes it
	// on match — the code is single-use. A missing key is not an error.
	Consume(ctx context.Context, email, code string) (bool, error)
}

// Notifier sends templated notifications through the external notification
// service. Callers treat it as fire-and-forget: errors are logged, never
// propagated into the primary operation.
type Notifier interface {
	SendEmail(ctx context.Context, msg domain.EmailMessage) error
}

// EventPublisher publishes domain events to the message bus. An absent bus
// degrades to a no-op, not a failure.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event domain.UserEvent) error
}

// SideEffect is one best-effort unit of work dispatched off the request
// path: exactly one of Event or Email is set.
type SideEffect struct {
	UserID string
	Event  *domain.UserEvent
	Email  *domain.EmailMessage
}

// SideEffectDispatcher accepts side effects without blocking the caller and
// without ever surfacing failures to it.
type SideEffectDispatcher interface {
	Enqueue(effect SideEffect)
}
