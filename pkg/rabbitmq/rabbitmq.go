package rabbitmq

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
)

// Topology names.
const (
	UserExchange       = "user"
	UserEventsQueue    = "user_events"
	UserEventsBinding  = "user.#"
	UserPresenceQueue  = "user_presence"
	presenceConsumerID = "socialize-presence"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *slog.Logger
	mu      sync.Mutex // amqp.Channel is not safe for concurrent publishes
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the topology:
// a durable topic exchange for user events, a queue bound to it, and the
// queue presence signals arrive on.
func NewClient(cfg Config, log *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close() // Close connection if channel creation fails
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info("RabbitMQ client connected", "exchange", UserExchange, "queues", []string{UserEventsQueue, UserPresenceQueue})

	return &Client{
		conn:    conn,
		channel: ch,
		log:     log,
	}, nil
}

func declareTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		UserExchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", UserExchange, err)
	}

	for _, name := range []string{UserEventsQueue, UserPresenceQueue} {
		_, err = ch.QueueDeclare(
			name,  // name
			true,  // durable (persists messages across broker restarts)
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to declare %s: %w", name, err)
		}
	}

	if err := ch.QueueBind(UserEventsQueue, UserEventsBinding, UserExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s: %w", UserEventsQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a persistent JSON message to exchange under routingKey.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.log.Debug("published message", "exchange", exchange, "routing_key", routingKey)
	return nil
}

// ConsumePresenceEvents delivers every valid presence message to handle.
// Messages that do not parse are rejected without requeue. A handler error
// requeues the message once; redelivered failures are dropped.
func (c *Client) ConsumePresenceEvents(handle func(PresenceMessage) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		UserPresenceQueue,  // queue
		presenceConsumerID, // consumer tag
		false,              // auto-ack
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,                // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info("waiting for presence events", "queue", UserPresenceQueue)

	go func() {
		for msg := range msgs {
			c.handlePresenceDelivery(msg, handle)
		}
		c.log.Info("presence consumer stopped")
	}()
	return nil
}

func (c *Client) handlePresenceDelivery(msg amqp.Delivery, handle func(PresenceMessage) error) {
	presence, err := ParsePresenceMessage(msg.Body)
	if err != nil {
		c.log.Warn("rejecting malformed presence message", "delivery_tag", msg.DeliveryTag, "error", err)
		if rejectErr := msg.Reject(false); rejectErr != nil {
			c.log.Error("failed to reject message", "delivery_tag", msg.DeliveryTag, "error", rejectErr)
		}
		return
	}

	if err := handle(presence); err != nil {
		c.log.Warn("failed to apply presence message", "user_id", presence.UserID, "redelivered", msg.Redelivered, "error", err)
		if nackErr := msg.Nack(false, !msg.Redelivered); nackErr != nil {
			c.log.Error("failed to nack message", "delivery_tag", msg.DeliveryTag, "error", nackErr)
		}
		return
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		c.log.Error("failed to ack message", "delivery_tag", msg.DeliveryTag, "error", ackErr)
	}
}
