package broker

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-admin/internal/domain/entity"
)

// Consumer reads notifications back off the queue.
type Consumer struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	Queue    string
	Prefetch int
	Logger   *logrus.Logger
}

func NewConsumer(url, queue string, prefetch int, logger *logrus.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	// prefetch for fair dispatch
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if err := declare(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Consumer{conn: conn, ch: ch, Queue: queue, Prefetch: prefetch, Logger: logger}, nil
}

func (c *Consumer) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Consume hands each notification to fn until ctx is cancelled or the channel
// closes. Undecodable messages are dropped; fn errors requeue the message.
func (c *Consumer) Consume(ctx context.Context, fn func(context.Context, entity.Notification) error) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			process(ctx, delivery{acker: msg, body: msg.Body}, fn, c.Logger)
		}
	}
}

type acker interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type delivery struct {
	acker
	body []byte
}

func process(ctx context.Context, d delivery, fn func(context.Context, entity.Notification) error, logger *logrus.Logger) {
	var n entity.Notification
	if err := json.Unmarshal(d.body, &n); err != nil {
		logger.WithError(err).Warn("bad notification message")
		_ = d.Nack(false, false)
		return
	}
	if err := fn(ctx, n); err != nil {
		logger.WithError(err).WithField("notification_id", n.ID).Warn("notification handler failed, requeueing")
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}
