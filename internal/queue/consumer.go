package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/chills-dance/camp-api/internal/model"
	pkglog "github.com/chills-dance/camp-api/pkg/log"
)

// AuditStore is where consumed events end up.
type AuditStore interface {
	Append(ctx context.Context, e model.AuditLogEntry) error
}

// Consumer drains the audit queue into the audit_log table. It runs a
// reconnect loop with exponential backoff and keeps going until the context
// is cancelled; processing failures nack without requeue so a poison message
// cannot wedge the queue.
type Consumer struct {
	url   string
	store AuditStore
	log   pkglog.Logger
}

func NewConsumer(url string, store AuditStore, log pkglog.Logger) *Consumer {
	return &Consumer{url: url, store: store, log: log}
}

// Start blocks until ctx is cancelled. Run it in its own goroutine.
func (c *Consumer) Start(ctx context.Context) {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("audit consumer: broker dial failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumeLoop(ctx, conn); err != nil && ctx.Err() == nil {
			c.log.Warn().Err(err).Msg("audit consumer: consume loop ended, reconnecting")
		}
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		time.Sleep(2 * time.Second)
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("audit consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(auditQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(auditQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(ctx, d.Body); err != nil {
				c.log.Error().Err(err).Msg("audit consumer: handle message failed")
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var ev AuditEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.store.Append(writeCtx, ev.toModel()); err != nil {
		return fmt.Errorf("append audit row: %w", err)
	}
	return nil
}
