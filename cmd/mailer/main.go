package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"foodcourt-be/internal/config"
	"foodcourt-be/internal/logger"
	"foodcourt-be/internal/mailer"

	"go.uber.org/zap"
)

const prefetch = 10

var dialFunc = mailer.Dial

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(logger.Options{Env: cfg.AppEnv, Service: "mailer", Level: cfg.LogLevel})
	defer logger.Sync()

	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL not set in environment")
	}
	if cfg.SMTPHost == "" {
		return errors.New("SMTP_HOST not set in environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := dialFunc(cfg.AMQPURL)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeclareQueue(cfg.MailQueue); err != nil {
		return err
	}
	deliveries, err := client.Consume(cfg.MailQueue, "mailer", prefetch)
	if err != nil {
		return err
	}

	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.MailFrom,
	})

	logger.L().Info("mailer consuming", zap.String("queue", cfg.MailQueue))
	mailer.NewConsumer(sender).Run(ctx, deliveries)
	logger.L().Info("mailer stopped")
	return nil
}
