package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shopfront/store-api/internal/core/domain"
)

var (
	errNacked     = errors.New("broker rejected the confirmation")
	errUnroutable = errors.New("no queue is bound for the confirmation")
)

// AMQPNotifier publishes confirmations to a topic exchange for a mail worker
// to deliver. Notify returns only after the broker has confirmed the message.
type AMQPNotifier struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	exchange   string
	routingKey string
	returns    <-chan amqp.Return
	now        func() time.Time

	// publishes on one channel are serialised so confirms match their message
	mu sync.Mutex
}

// orderConfirmation is the message body consumed by the mail worker.
type orderConfirmation struct {
	OrderRef string    `json:"orderRef"`
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	Total    string    `json:"total"`
	SentAt   time.Time `json:"sentAt"`
}

func NewAMQPNotifier(url, exchange, routingKey string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}
	return &AMQPNotifier{
		conn:       conn,
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
		returns:    ch.NotifyReturn(make(chan amqp.Return, 16)),
		now:        time.Now,
	}, nil
}

// Notify publishes msg as mandatory and waits for the broker confirm. A
// message the broker could not route to any queue is reported as a failure.
func (n *AMQPNotifier) Notify(ctx context.Context, msg domain.Notification) error {
	publishing, err := encodeConfirmation(msg, n.now())
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	// returns left over from earlier, already failed publishes
	drainReturns(n.returns)

	dc, err := n.ch.PublishWithDeferredConfirmWithContext(ctx, n.exchange, n.routingKey, true, false, publishing)
	if err != nil {
		return fmt.Errorf("publish confirmation: %w", err)
	}
	acked, err := dc.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("await broker confirm: %w", err)
	}
	if !acked {
		return errNacked
	}
	// The broker sends basic.return before the ack of the same message, and
	// the client hands it to the returns channel before resolving the confirm.
	if returned(n.returns, publishing.MessageId) {
		return fmt.Errorf("%w: exchange %s, routing key %s", errUnroutable, n.exchange, n.routingKey)
	}
	return nil
}

// returned reports whether a return for messageID is waiting on returns.
// Other returns are discarded.
func returned(returns <-chan amqp.Return, messageID string) bool {
	for {
		select {
		case r, ok := <-returns:
			if !ok {
				return false
			}
			if r.MessageId == messageID {
				return true
			}
		default:
			return false
		}
	}
}

func drainReturns(returns <-chan amqp.Return) {
	for {
		select {
		case _, ok := <-returns:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (n *AMQPNotifier) Close() error {
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}

func encodeConfirmation(msg domain.Notification, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(orderConfirmation{
		OrderRef: msg.OrderRef,
		To:       msg.To,
		Subject:  msg.Subject,
		Body:     msg.Body,
		Total:    msg.Total.StringFixed(2),
		SentAt:   now.UTC(),
	})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode confirmation: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.OrderRef,
		Timestamp:    now.UTC(),
		Type:         "order.confirmation",
		Body:         body,
	}, nil
}
