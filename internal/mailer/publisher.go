package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"foodcourt-be/internal/logger"
	"foodcourt-be/internal/order"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publishing is the subset of *amqp.Channel the publisher needs.
type Publishing interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher queues order confirmations and verification links for the
// mailer worker.
type Publisher struct {
	ch          Publishing
	queue       string
	frontendURL string
}

// NewPublisher builds verification links against frontendURL.
func NewPublisher(ch Publishing, queue, frontendURL string) *Publisher {
	return &Publisher{ch: ch, queue: queue, frontendURL: frontendURL}
}

func (p *Publisher) SendOrderConfirmation(ctx context.Context, email string, o *order.Order) error {
	if err := p.publish(ctx, KindConfirmation, o.ID, NewConfirmation(email, o)); err != nil {
		return err
	}
	logger.FromCtx(ctx).Debug("order confirmation queued",
		zap.String("order_id", o.ID),
		zap.String("queue", p.queue),
	)
	return nil
}

func (p *Publisher) SendVerification(ctx context.Context, email, token string) error {
	msg := Verification{Email: email, Link: VerificationLink(p.frontendURL, token)}
	if err := p.publish(ctx, KindVerification, uuid.NewString(), msg); err != nil {
		return err
	}
	logger.FromCtx(ctx).Debug("verification email queued", zap.String("queue", p.queue))
	return nil
}

func (p *Publisher) publish(ctx context.Context, kind, messageID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Type:         kind,
		MessageId:    messageID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", kind, err)
	}
	return nil
}
