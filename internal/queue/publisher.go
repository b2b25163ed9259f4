package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "net"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"
)

// Publisher sends TicketPurchasedEvent messages over a connection opened
// per message.
type Publisher struct {
    url string
    log logrus.FieldLogger
}

func NewPublisher(url string, log logrus.FieldLogger) *Publisher {
    return &Publisher{url: url, log: log.WithField("component", "ticket-publisher")}
}

// PublishTicketPurchased declares the durable queue and publishes ev as a
// persistent JSON message on the default exchange.
func (p *Publisher) PublishTicketPurchased(ctx context.Context, ev TicketPurchasedEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    conn, err := dial(ctx, p.url)
    if err != nil {
        p.log.WithError(err).Warn("dial failed")
        return fmt.Errorf("dial broker: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("open channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(TicketQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("declare queue: %w", err)
    }

    err = ch.PublishWithContext(ctx, "", TicketQueueName, false, false, amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.TicketID,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    })
    if err != nil {
        return fmt.Errorf("publish: %w", err)
    }
    return nil
}

// dial opens a broker connection whose TCP connect and AMQP handshake are
// both bounded by ctx.
func dial(ctx context.Context, url string) (*amqp.Connection, error) {
    return amqp.DialConfig(url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial: func(network, addr string) (net.Conn, error) {
            conn, err := (&net.Dialer{}).DialContext(ctx, network, addr)
            if err != nil {
                return nil, err
            }
            // cleared by the library once the handshake completes
            if dl, ok := ctx.Deadline(); ok {
                _ = conn.SetDeadline(dl)
            }
            return conn, nil
        },
    })
}
