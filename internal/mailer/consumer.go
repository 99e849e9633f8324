package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"foodcourt-be/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Sender delivers a rendered mail.
type Sender interface {
	Send(ctx context.Context, m Mail) error
}

type Consumer struct {
	sender Sender
}

func NewConsumer(sender Sender) *Consumer {
	return &Consumer{sender: sender}
}

// Run handles deliveries until ctx is done or the channel closes.
// Undecodable or unknown messages are dropped. A failed send is requeued once.
func (c *Consumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	log := logger.FromCtx(ctx).With(zap.String("component", "mailer"))

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Info("delivery channel closed")
				return
			}
			c.handle(ctx, log, d)
		}
	}
}

var errMalformed = errors.New("malformed message")

// compose decodes a delivery by its type and renders the mail it asks for.
func compose(d amqp.Delivery) (Mail, []zap.Field, error) {
	switch d.Type {
	case KindVerification:
		var v Verification
		if err := json.Unmarshal(d.Body, &v); err != nil {
			return Mail{}, nil, fmt.Errorf("%w: %w", errMalformed, err)
		}
		if v.Email == "" || v.Link == "" {
			return Mail{}, nil, errMalformed
		}
		mail, err := RenderVerification(v)
		return mail, []zap.Field{zap.String("kind", KindVerification)}, err

	case KindConfirmation, "":
		var conf Confirmation
		if err := json.Unmarshal(d.Body, &conf); err != nil {
			return Mail{}, nil, fmt.Errorf("%w: %w", errMalformed, err)
		}
		if conf.Email == "" {
			return Mail{}, nil, errMalformed
		}
		mail, err := Render(conf)
		return mail, []zap.Field{zap.String("kind", KindConfirmation), zap.String("order_id", conf.OrderID)}, err
	}
	return Mail{}, nil, fmt.Errorf("%w: unknown type %q", errMalformed, d.Type)
}

func (c *Consumer) handle(ctx context.Context, log *zap.Logger, d amqp.Delivery) {
	mail, fields, err := compose(d)
	if errors.Is(err, errMalformed) {
		log.Warn("dropping malformed message", zap.String("message_id", d.MessageId), zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	log = log.With(fields...)
	if err != nil {
		log.Error("failed to render mail", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	if err := c.sender.Send(ctx, mail); err != nil {
		log.Warn("failed to send mail",
			zap.Bool("redelivered", d.Redelivered),
			zap.Error(err),
		)
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	_ = d.Ack(false)
	log.Info("mail sent")
}
