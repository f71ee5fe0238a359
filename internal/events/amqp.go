package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var (
	ErrClosed = errors.New("rabbitmq connection is closed")
	ErrNack   = errors.New("publish NACK from broker")
)

// Client owns one connection and one confirm-mode channel.
type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *zap.Logger

	publish func(ctx context.Context, key string, msg amqp.Publishing) (confirmation, error)
	mu      sync.Mutex // serializes publishes on the channel
}

// confirmation is the broker's answer to one publish.
// *amqp.DeferredConfirmation implements it.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// Dial connects, enables publisher confirms and declares the topic exchange.
func Dial(url string, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	c := &Client{conn: conn, ch: ch, log: log}
	c.publish = func(ctx context.Context, key string, msg amqp.Publishing) (confirmation, error) {
		dc, err := ch.PublishWithDeferredConfirmWithContext(ctx, Exchange, key, false, false, msg)
		if err != nil {
			return nil, err
		}
		return dc, nil
	}
	return c, nil
}

func (c *Client) Close() {
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

func (c *Client) Ping() error {
	if c.conn == nil || c.conn.IsClosed() {
		return ErrClosed
	}
	return nil
}

// Publish sends payload as persistent JSON and waits for the broker ack of
// this message. A confirmation abandoned because ctx ended does not affect
// later publishes.
func (c *Client) Publish(ctx context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	conf, err := c.publish(ctx, key, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	c.mu.Unlock()
	if err != nil {
		return err
	}

	ack, err := conf.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !ack {
		return ErrNack
	}
	return nil
}

// Consume binds an exclusive auto-delete queue to pattern and calls h for
// each delivery until ctx is done or the channel closes. Handler errors are
// logged and the message is dropped; a terminal only needs the latest state.
func (c *Client) Consume(ctx context.Context, pattern string, h Handler) error {
	q, err := c.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return err
	}
	if err := c.ch.QueueBind(q.Name, pattern, Exchange, false, nil); err != nil {
		return err
	}
	msgs, err := c.ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-msgs:
			if !ok {
				return ErrClosed
			}
			if err := h(ctx, Delivery{Key: m.RoutingKey, Body: m.Body}); err != nil {
				c.log.Warn("event handler failed", zap.String("key", m.RoutingKey), zap.Error(err))
			}
		}
	}
}
