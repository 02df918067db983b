package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
)

// Event is the wire envelope for every published engine event.
type Event struct {
	ID        string                 `json:"id"`
	Kind      notification.EventKind `json:"kind"`
	EmittedAt time.Time              `json:"emitted_at"`
	Payload   any                    `json:"payload"`
}

// Sink publishes engine events to a topic exchange behind a circuit
// breaker so a sick broker cannot stall the scan loops. Failed emits are
// reported to the caller, which leaves its dedup key unmarked and retries
// on a later tick.
type Sink struct {
	channel  *amqp.Channel
	exchange string
	cb       *gobreaker.CircuitBreaker
}

func NewSink(conn *Conn, exchange string) (*Sink, error) {
	if err := conn.DeclareExchange(exchange); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	settings := gobreaker.Settings{
		Name:        "notification-sink",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip after at least 10 requests with a >=50% failure rate.
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
	}

	return &Sink{
		channel:  conn.Channel(),
		exchange: exchange,
		cb:       gobreaker.NewCircuitBreaker(settings),
	}, nil
}

func (s *Sink) Emit(ctx context.Context, kind notification.EventKind, payload any) error {
	event := Event{
		ID:        uuid.New().String(),
		Kind:      kind,
		EmittedAt: time.Now().UTC(),
		Payload:   payload,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", kind, err)
	}

	_, err = s.cb.Execute(func() (interface{}, error) {
		return nil, s.channel.PublishWithContext(ctx,
			s.exchange,   // exchange
			string(kind), // routing key
			false,        // mandatory
			false,        // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    event.ID,
				Body:         body,
			},
		)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("Messaging: circuit open, publish skipped", "kind", kind)
		}
		return fmt.Errorf("failed to publish %s event: %w", kind, err)
	}

	slog.Debug("Messaging: event published", "kind", kind, "event_id", event.ID)
	return nil
}
