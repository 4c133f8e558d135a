package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/tcon/auth-user-service/internal/api/metrics"
	"github.com/tcon/auth-user-service/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes side effects (event publications, notification emails)
// to a fixed set of workers using consistent hashing on the user id,
// guaranteeing per-account ordering. Delivery is best-effort: failures are
// logged and counted, never surfaced to the operation that produced them.
type Dispatcher struct {
	workers   []chan ports.SideEffect
	publisher ports.EventPublisher
	notifier  ports.Notifier
	topic     string
	log       zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher ports.EventPublisher, notifier ports.Notifier, topic string, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan ports.SideEffect, numWorkers),
		publisher: publisher,
		notifier:  notifier,
		topic:     topic,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.SideEffect, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a side effect to the worker responsible for its user id.
// When the shard's buffer is full the effect is dropped and counted instead
// of blocking the operation that produced it.
func (d *Dispatcher) Enqueue(effect ports.SideEffect) {
	select {
	case d.workers[d.shardIndex(effect.UserID)] <- effect:
	default:
		metrics.SideEffectsTotal.WithLabelValues("enqueue", "dropped").Inc()
		d.log.Warn().Str("user_id", effect.UserID).Msg("side-effect queue full, effect dropped")
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.SideEffect) {
	for {
		select {
		case <-ctx.Done():
			return
		case effect, ok := <-ch:
			if !ok {
				return
			}
			d.process(ctx, id, effect)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, workerID int, effect ports.SideEffect) {
	if effect.Event != nil {
		if err := d.publisher.Publish(ctx, d.topic, effect.UserID, *effect.Event); err != nil {
			metrics.SideEffectsTotal.WithLabelValues("event", "error").Inc()
			d.log.Error().Err(err).
				Str("user_id", effect.UserID).
				Str("event_type", effect.Event.EventType).
				Int("worker_id", workerID).
				Msg("event publication failed")
		} else {
			metrics.SideEffectsTotal.WithLabelValues("event", "ok").Inc()
		}
	}

	if effect.Email != nil {
		if err := d.notifier.SendEmail(ctx, *effect.Email); err != nil {
			metrics.SideEffectsTotal.WithLabelValues("email", "error").Inc()
			d.log.Error().Err(err).
				Str("user_id", effect.UserID).
				Str("template", effect.Email.TemplateCode).
				Int("worker_id", workerID).
				Msg("notification delivery failed")
		} else {
			metrics.SideEffectsTotal.WithLabelValues("email", "ok").Inc()
		}
	}
}
