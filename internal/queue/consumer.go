package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// Consumer reads QueueName and appends one line per event to a log
// file (logs/booking.log by default).
type Consumer struct {
    url     string
    logPath string
    log     *zap.Logger
}

// NewConsumer returns a Consumer; an empty logPath means logs/booking.log.
func NewConsumer(url, logPath string, logger *zap.Logger) *Consumer {
    if logPath == "" {
        logPath = filepath.Join("logs", "booking.log")
    }
    if logger == nil {
        logger = zap.NewNop()
    }
    return &Consumer{url: url, logPath: logPath, log: logger.Named("booking-consumer")}
}

// Run connects to the broker and consumes until ctx is cancelled.  Lost
// connections are retried with exponential backoff capped at 30s.  A
// message that cannot be handled is rejected without requeue so one bad
// payload cannot cause a tight loop.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.url)
        if err != nil {
            c.log.Warn("dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.log.Warn("consume loop ended; reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.Warn("set QoS failed", zap.Error(err))
    }
    if err := declareQueue(ch); err != nil {
        return err
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
            if err := c.Handle(d.Body); err != nil {
                c.log.Error("handle message failed", zap.Error(err))
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// Handle decodes one message body and appends its line to the log file.
func (c *Consumer) Handle(body []byte) error {
    var ev BookingEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" {
        return errors.New("event without type")
    }
    if err := os.MkdirAll(filepath.Dir(c.logPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
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

// FormatLine renders ev as a single human-friendly log line.
func FormatLine(ev BookingEvent) string {
    var b strings.Builder
    fmt.Fprintf(&b, "[%s] %s | event_id=%s | booking_id=%d | user_id=%d | restaurant_id=%d",
        ev.OccurredAt, describe(ev.Type), ev.ID, ev.BookingID, ev.UserID, ev.RestaurantID)
    if ev.RestaurantName != "" {
        fmt.Fprintf(&b, " | restaurant=%q", ev.RestaurantName)
    }
    switch ev.Type {
    case EventBookingConfirmed:
        fmt.Fprintf(&b, " | window=%s..%s | guests=%d | tables=%s", ev.StartsAt, ev.EndsAt, ev.Guests, joinInts(ev.TableNos))
    case EventBookingCancelled:
        fmt.Fprintf(&b, " | freed=%s", joinInts(ev.ReservationIDs))
    case EventFeedbackSubmitted:
        fmt.Fprintf(&b, " | stars=%d", ev.Stars)
    }
    b.WriteByte('\n')
    return b.String()
}

func describe(typ string) string {
    switch typ {
    case EventBookingConfirmed:
        return "Booking confirmed"
    case EventBookingCancelled:
        return "Booking cancelled"
    case EventFeedbackSubmitted:
        return "Feedback submitted"
    }
    return typ
}

func joinInts[T int | uint64](xs []T) string {
    parts := make([]string, len(xs))
    for i, x := range xs {
        parts[i] = fmt.Sprint(x)
    }
    return "[" + strings.Join(parts, ",") + "]"
}

// sleep waits for d or until ctx is done; it reports whether d elapsed.
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
