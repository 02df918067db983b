// Package messaging delivers engine events to RabbitMQ. Overtime
// reminders and daily reports are published to a topic exchange;
// downstream renderers (email, dashboards) consume them.
package messaging

import (
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Conn wraps an AMQP connection plus its publishing channel.
type Conn struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.RWMutex
}

func Connect(url string) (*Conn, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	slog.Info("Connected to RabbitMQ")
	return &Conn{conn: conn, channel: channel}, nil
}

// DeclareExchange declares a durable topic exchange.
func (c *Conn) DeclareExchange(name string) error {
	return c.channel.ExchangeDeclare(
		name,    // name
		"topic", // type
		true,    // durable
		false,   // auto-deleted
		false,   // internal
		false,   // no-wait
		nil,     // arguments
	)
}

func (c *Conn) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			slog.Warn("Failed to close RabbitMQ channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}

	slog.Info("RabbitMQ connection closed")
	return nil
}

// IsUp reports whether the underlying connection is still open.
func (c *Conn) IsUp() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil && !c.conn.IsClosed()
}
