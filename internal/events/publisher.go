package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	exchangeName = "library.events"
	exchangeType = "topic"

	// Event types
	EventTypeRequestSubmitted = "request.submitted"
	EventTypeRequestApproved  = "request.approved"
	EventTypeRequestRejected  = "request.rejected"
	EventTypeBookReturned     = "book.returned"

	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
	confirmTimeout = 5 * time.Second
)

// Publisher emits ledger events to a RabbitMQ topic exchange with publisher
// confirms. Publishing happens after the database transaction commits and is
// best-effort: consumers get notifications, the ledger is the record.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *zap.Logger
}

// Event is the wire envelope for a ledger event.
type Event struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	Timestamp string                 `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}

// NewPublisher connects to RabbitMQ and declares the library.events exchange.
func NewPublisher(url string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		exchangeName,
		exchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	if err := channel.Confirm(false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	log.Info("Connected to RabbitMQ", zap.String("exchange", exchangeName))

	return &Publisher{conn: conn, channel: channel, log: log}, nil
}

// PublishRequestSubmitted emits a request.submitted event.
func (p *Publisher) PublishRequestSubmitted(ctx context.Context, requestID, readerID, bookID uint) error {
	return p.publish(ctx, EventTypeRequestSubmitted, map[string]interface{}{
		"request_id": requestID,
		"reader_id":  readerID,
		"book_id":    bookID,
	})
}

// PublishRequestApproved emits a request.approved event.
func (p *Publisher) PublishRequestApproved(ctx context.Context, requestID, readerID, bookID uint, dueDate time.Time) error {
	return p.publish(ctx, EventTypeRequestApproved, map[string]interface{}{
		"request_id": requestID,
		"reader_id":  readerID,
		"book_id":    bookID,
		"due_date":   dueDate.UTC().Format(time.RFC3339),
	})
}

// PublishRequestRejected emits a request.rejected event.
func (p *Publisher) PublishRequestRejected(ctx context.Context, requestID, readerID, bookID uint, reason string) error {
	return p.publish(ctx, EventTypeRequestRejected, map[string]interface{}{
		"request_id": requestID,
		"reader_id":  readerID,
		"book_id":    bookID,
		"reason":     reason,
	})
}

// PublishBookReturned emits a book.returned event.
func (p *Publisher) PublishBookReturned(ctx context.Context, requestID, readerID, bookID uint) error {
	return p.publish(ctx, EventTypeBookReturned, map[string]interface{}{
		"request_id": requestID,
		"reader_id":  readerID,
		"book_id":    bookID,
	})
}

// publish sends one event with confirms and a capped retry loop. The routing
// key is the event type.
func (p *Publisher) publish(ctx context.Context, eventType string, payload map[string]interface{}) error {
	event := Event{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	backoff := initialBackoff
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		confirms := p.channel.NotifyPublish(make(chan amqp.Confirmation, 1))

		err := p.channel.PublishWithContext(
			ctx,
			exchangeName,
			eventType,
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Timestamp:    time.Now(),
				MessageId:    event.EventID,
				Body:         body,
			},
		)
		if err != nil {
			lastErr = err
			p.log.Warn("Failed to publish event, retrying",
				zap.String("event_type", eventType),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		select {
		case confirm := <-confirms:
			if confirm.Ack {
				p.log.Info("Event published",
					zap.String("event_id", event.EventID),
					zap.String("event_type", eventType),
				)
				return nil
			}
			lastErr = fmt.Errorf("event not acknowledged")
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(confirmTimeout):
			lastErr = fmt.Errorf("confirmation timeout")
		}
	}

	p.log.Error("Failed to publish event after retries",
		zap.String("event_type", eventType),
		zap.Int("attempts", maxRetries),
		zap.Error(lastErr),
	)
	return fmt.Errorf("failed to publish event after %d attempts: %w", maxRetries, lastErr)
}

// IsHealthy checks if the publisher connection is healthy
func (p *Publisher) IsHealthy() bool {
	return p.conn != nil && !p.conn.IsClosed()
}

// Close closes the publisher connection
func (p *Publisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Error("Failed to close channel", zap.Error(err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return err
		}
	}
	return nil
}
