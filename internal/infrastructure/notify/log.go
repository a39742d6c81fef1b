// Package notify delivers order confirmations to buyers.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/shopfront/store-api/internal/core/domain"
)

// LogNotifier writes confirmations to the log instead of sending them.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, msg domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("order_ref", msg.OrderRef).
		Str("total", msg.Total.StringFixed(2)).
		Msg(msg.Body)
	return nil
}
