package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// Publisher hands reservation events to the broker.
type Publisher interface {
	Publish(ctx context.Context, ev ReservationEvent) error
}

// NoopPublisher drops every event. It is used when EVENTS_ENABLED is off.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ReservationEvent) error { return nil }

// AMQPPublisher dials the broker per publish. Event volume is one message
// per write request, so no connection is held open between requests.
type AMQPPublisher struct {
	url    string
	logger *log.Entry
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string, logger *log.Entry) *AMQPPublisher {
	return &AMQPPublisher{url: url, logger: logger}
}

// Publish sends ev to QueueName as a persistent JSON message. Errors are
// logged and returned so the caller can choose to ignore them.
func (p *AMQPPublisher) Publish(ctx context.Context, ev ReservationEvent) error {
	logger := p.logger.WithFields(log.Fields{"event_id": ev.ID, "type": ev.Type})

	conn, err := amqp.Dial(p.url)
	if err != nil {
		logger.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := declareQueue(ch); err != nil {
		logger.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	pub, err := encodeEvent(ev)
	if err != nil {
		logger.WithError(err).Warn("rabbitmq: marshal event failed")
		return err
	}

	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		QueueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		logger.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	logger.Debug("rabbitmq: event published")
	return nil
}

func declareQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		QueueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	return err
}

func encodeEvent(ev ReservationEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         string(ev.Type),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}
