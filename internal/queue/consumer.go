package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// AuditConsumer reads reservation events and appends one line per event
// to an audit log file.
type AuditConsumer struct {
	url     string
	logPath string
	logger  *log.Entry
}

// NewAuditConsumer returns a consumer for the broker at url writing to
// logPath.
func NewAuditConsumer(url, logPath string, logger *log.Entry) *AuditConsumer {
	return &AuditConsumer{url: url, logPath: logPath, logger: logger}
}

// Run connects to RabbitMQ, declares the queue and consumes until ctx is
// cancelled, reconnecting with exponential backoff when the broker goes
// away. Malformed messages are rejected without requeue.
func (a *AuditConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(a.url)
		if err != nil {
			a.logger.WithError(err).WithField("retry_in", backoff).Warn("audit-consumer: failed to dial broker")
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = a.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.WithError(err).Warn("audit-consumer: consume loop ended, reconnecting")
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (a *AuditConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		a.logger.WithError(err).Warn("audit-consumer: set QoS failed")
	}
	if err := declareQueue(ch); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(QueueName, "", false, false, false, false, nil)
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
			if err := a.handle(d.Body); err != nil {
				a.logger.WithError(err).Warn("audit-consumer: handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (a *AuditConsumer) handle(body []byte) error {
	if err := os.MkdirAll(filepath.Dir(a.logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir audit dir: %w", err)
	}
	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()
	return writeAuditLine(f, body)
}

// writeAuditLine decodes one event and writes it as a single line.
func writeAuditLine(w io.Writer, body []byte) error {
	var ev ReservationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.ReservationID == 0 {
		return fmt.Errorf("incomplete event %q", ev.ID)
	}
	line := fmt.Sprintf("[%s] %s | event_id=%s | reservation_id=%d",
		ev.OccurredAt.Format(time.RFC3339), ev.Type, ev.ID, ev.ReservationID)
	if ev.TableID != 0 {
		line += fmt.Sprintf(" | table_id=%d", ev.TableID)
	}
	if ev.PreviousStatus != "" {
		line += fmt.Sprintf(" | status=%s->%s", ev.PreviousStatus, ev.Status)
	} else {
		line += fmt.Sprintf(" | status=%s", ev.Status)
	}
	if ev.ReservationDate != "" {
		line += fmt.Sprintf(" | at=%s %s | people=%d", ev.ReservationDate, ev.ReservationTime, ev.People)
	}
	if _, err := io.WriteString(w, line+"\n"); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
