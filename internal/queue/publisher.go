package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/chills-dance/camp-api/internal/model"
	pkglog "github.com/chills-dance/camp-api/pkg/log"
)

// Publisher sends audit events to the broker. It satisfies the session
// manager's AuditRecorder contract: failures are logged and swallowed so an
// unavailable broker never fails a login.
type Publisher struct {
	url string
	log pkglog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher creates a lazy-connecting publisher. The first Record call
// dials the broker and declares the durable queue.
func NewPublisher(url string, log pkglog.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// Record publishes one audit event. Fire-and-forget.
func (p *Publisher) Record(ctx context.Context, e model.AuditLogEntry) {
	body, err := json.Marshal(fromModel(e))
	if err != nil {
		p.log.Error().Err(err).Str("action", e.Action).Msg("audit event marshal failed")
		return
	}
	ch, err := p.channel()
	if err != nil {
		p.log.Warn().Err(err).Str("action", e.Action).Msg("audit publish skipped: broker unavailable")
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	err = ch.PublishWithContext(pubCtx, "", auditQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		p.reset()
		p.log.Warn().Err(err).Str("action", e.Action).Msg("audit publish failed")
	}
}

// Close releases the broker connection.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(auditQueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
