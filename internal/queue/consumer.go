package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"
)

// Consumer appends every TicketPurchasedEvent to a log file, one line per
// ticket.
type Consumer struct {
    url     string
    logPath string
    log     logrus.FieldLogger

    mu sync.Mutex // serialises file appends
}

func NewConsumer(url, logPath string, log logrus.FieldLogger) *Consumer {
    return &Consumer{url: url, logPath: logPath, log: log.WithField("component", "ticket-consumer")}
}

// Run consumes until ctx is cancelled, reconnecting with exponential
// backoff (1s doubling to 30s) whenever the broker connection drops.  It
// returns nil on cancellation.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := dial(ctx, c.url)
        if err != nil {
            c.log.WithError(err).Warnf("dial failed; retrying in %s", backoff)
            if !sleep(ctx, backoff) {
                return nil
            }
            backoff = nextBackoff(backoff)
            continue
        }
        backoff = time.Second

        err = c.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return nil
        }
        c.log.WithError(err).Warn("consume loop ended; reconnecting")
        if !sleep(ctx, 2*time.Second) {
            return nil
        }
    }
}

const maxBackoff = 30 * time.Second

func nextBackoff(d time.Duration) time.Duration {
    return min(2*d, maxBackoff)
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.WithError(err).Warn("set QoS failed")
    }
    if _, err := ch.QueueDeclare(TicketQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.ConsumeWithContext(ctx, TicketQueueName, "", false, false, false, false, nil)
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
            if err := c.HandleMessage(d.Body); err != nil {
                c.log.WithError(err).Error("handle message failed")
                _ = d.Nack(false, false) // no requeue; a bad payload would loop forever
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// HandleMessage decodes one event and appends its line to the log file.
func (c *Consumer) HandleMessage(body []byte) error {
    var ev TicketPurchasedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.TicketID == "" {
        return errors.New("event without ticket_id")
    }

    c.mu.Lock()
    defer c.mu.Unlock()

    if dir := filepath.Dir(c.logPath); dir != "" {
        if err := os.MkdirAll(dir, 0o755); err != nil {
            return fmt.Errorf("mkdir %s: %w", dir, err)
        }
    }
    f, err := os.OpenFile(c.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders the single log line written for ev.
func FormatLine(ev TicketPurchasedEvent) string {
    return fmt.Sprintf("[%s] Ticket purchased | ticket_id=%s | customer=%s | airline=%q | flight=%s | departure=%s | card=%s %s\n",
        ev.PurchasedAt, ev.TicketID, ev.CustomerEmail, ev.Airline, ev.FlightNumber, ev.Departure, ev.CardType, ev.CardNumber)
}
