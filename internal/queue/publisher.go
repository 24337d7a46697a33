package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "net"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// dialTimeout bounds a dial made with a context that carries no deadline.
const dialTimeout = 30 * time.Second

// Publisher sends BookingEvents to QueueName.  The connection is opened
// on first use and kept; a failed publish drops it so that the next
// call dials again.  Publisher is safe for concurrent use; callers wait
// for each other no longer than their own context allows.
type Publisher struct {
    url string
    log *zap.Logger

    sem  chan struct{} // holds the connection state
    conn *amqp.Connection
    ch   *amqp.Channel
}

// NewPublisher returns a Publisher for the broker at url.  No connection
// is made until the first Publish.
func NewPublisher(url string, logger *zap.Logger) *Publisher {
    if logger == nil {
        logger = zap.NewNop()
    }
    return &Publisher{url: url, log: logger.Named("publisher"), sem: make(chan struct{}, 1)}
}

func (p *Publisher) lock(ctx context.Context) error {
    select {
    case p.sem <- struct{}{}:
        return nil
    case <-ctx.Done():
        return ctx.Err()
    }
}

func (p *Publisher) unlock() { <-p.sem }

// Publish marshals ev and publishes it as a persistent message on the
// default exchange.  Errors are logged and returned so callers can
// decide to ignore them.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    if err := p.lock(ctx); err != nil {
        return fmt.Errorf("publisher busy: %w", err)
    }
    defer p.unlock()

    ch, err := p.channel(ctx)
    if err != nil {
        p.log.Warn("rabbitmq connect failed", zap.Error(err))
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        MessageId:    ev.ID,
        Type:         ev.Type,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",        // default exchange
        QueueName, // routing key = queue name
        false,     // mandatory
        false,     // immediate
        pub,
    ); err != nil {
        p.log.Warn("rabbitmq publish failed", zap.String("type", ev.Type), zap.Error(err))
        p.reset()
        return err
    }
    return nil
}

// channel returns the open channel, dialing and declaring the queue when
// needed.  The lock must be held.  The dial and the AMQP handshake both
// end when ctx does.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
        return p.ch, nil
    }
    p.reset()
    conn, err := amqp.DialConfig(p.url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      contextDialer(ctx),
    })
    if err != nil {
        return nil, fmt.Errorf("dial: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, fmt.Errorf("channel open: %w", err)
    }
    if err := declareQueue(ch); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, err
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

// contextDialer opens the TCP connection under ctx and sets a deadline
// that covers the handshake.  amqp091 clears the deadline once the
// connection is open.
func contextDialer(ctx context.Context) func(network, addr string) (net.Conn, error) {
    return func(network, addr string) (net.Conn, error) {
        var d net.Dialer
        conn, err := d.DialContext(ctx, network, addr)
        if err != nil {
            return nil, err
        }
        deadline, ok := ctx.Deadline()
        if !ok {
            deadline = time.Now().Add(dialTimeout)
        }
        if err := conn.SetDeadline(deadline); err != nil {
            _ = conn.Close()
            return nil, err
        }
        return conn, nil
    }
}

func (p *Publisher) reset() {
    if p.ch != nil {
        _ = p.ch.Close()
    }
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.ch, p.conn = nil, nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
    p.sem <- struct{}{}
    defer p.unlock()
    p.reset()
    return nil
}

// declareQueue makes sure QueueName exists (idempotent).  Durable so
// messages survive broker restarts.
func declareQueue(ch *amqp.Channel) error {
    if _, err := ch.QueueDeclare(
        QueueName, // name
        true,      // durable
        false,     // autoDelete
        false,     // exclusive
        false,     // noWait
        nil,       // args
    ); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    return nil
}
