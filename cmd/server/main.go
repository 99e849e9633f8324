package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodcourt-be/internal/analytics"
	"foodcourt-be/internal/auth"
	"foodcourt-be/internal/cart"
	"foodcourt-be/internal/config"
	"foodcourt-be/internal/db"
	"foodcourt-be/internal/logger"
	"foodcourt-be/internal/mailer"
	"foodcourt-be/internal/menu"
	"foodcourt-be/internal/middleware"
	"foodcourt-be/internal/notify"
	"foodcourt-be/internal/order"
	"foodcourt-be/internal/payment"
	"foodcourt-be/internal/rating"
	"foodcourt-be/internal/realtime"
	"foodcourt-be/internal/report"
	"foodcourt-be/internal/rest"
	"foodcourt-be/internal/stall"
	"foodcourt-be/internal/user"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(logger.Options{Env: cfg.AppEnv, Service: "server", Level: cfg.LogLevel})
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database := initDBFunc(cfg)
	defer database.Close()

	handler, cleanup := newServer(ctx, cfg, database)
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("server starting", zap.String("addr", srv.Addr))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServer wires every service. Redis, MongoDB and RabbitMQ are optional;
// without them the realtime hub runs single-instance, reports are disabled
// and confirmation emails are skipped.
func newServer(ctx context.Context, cfg *config.Config, database *sql.DB) (http.Handler, func()) {
	log := logger.L()
	var closers []func()

	rdb := connectRedis(ctx, cfg)
	if rdb != nil {
		closers = append(closers, func() { _ = rdb.Close() })
	}

	// realtime
	var (
		directory notify.Directory = realtime.NewMemoryDirectory()
		menuCache menu.Cache       = menu.NopCache{}
	)
	if rdb != nil {
		directory = realtime.NewRedisDirectory(rdb)
		menuCache = menu.NewRedisCache(rdb)
	}
	hub := realtime.NewHub(directory)
	go hub.Run(ctx)
	closers = append(closers, hub.Stop)

	var transport notify.Transport = hub
	if rdb != nil {
		relay := realtime.NewRedisRelay(rdb, hub)
		go func() {
			if err := relay.Subscribe(ctx, nil); err != nil {
				log.Error("realtime relay stopped", zap.Error(err))
			}
		}()
		transport = relay
	}

	// mail queue
	var confirmer order.Confirmer
	var verifier user.VerificationSender
	if cfg.AMQPURL != "" {
		mq, err := mailer.Dial(cfg.AMQPURL)
		if err == nil {
			err = mq.DeclareQueue(cfg.MailQueue)
		}
		if err != nil {
			log.Warn("mail queue unavailable, confirmations disabled", zap.Error(err))
			mq.Close()
		} else {
			publisher := mailer.NewPublisher(mq.Channel(), cfg.MailQueue, cfg.FrontendURL)
			confirmer, verifier = publisher, publisher
			closers = append(closers, mq.Close)
		}
	}

	userSvc := user.NewService(user.NewRepository(database), verifier)
	stallSvc := stall.NewService(stall.NewRepository(database), menuCache)
	menuSvc := menu.NewService(menu.NewRepository(database), menuCache, stallSvc)

	svcs := rest.Services{
		Users:  userSvc,
		Stalls: stallSvc,
		Menu:   menuSvc,
		Carts:  cart.NewService(cart.NewRepository(database), menuSvc),
		Orders: order.NewService(order.NewRepository(database), stallSvc, order.Options{
			Notifier:          notify.NewFanout(transport, directory),
			Confirmer:         confirmer,
			Emails:            userSvc,
			Menus:             menuCache,
			SideEffectTimeout: cfg.OperationTimeout,
		}),
		Payments:  payment.NewService(payment.NewRepository(database)),
		Ratings:   rating.NewService(rating.NewRepository(database)),
		Analytics: analytics.NewService(analytics.NewRepository(database), hub),
	}

	// report archive
	if cfg.MongoURI != "" {
		mdb, store, err := connectMongo(ctx, cfg)
		if err != nil {
			log.Warn("report store unavailable, reports disabled", zap.Error(err))
		} else {
			svcs.Reports = report.NewService(report.NewSource(database), store)
			closers = append(closers, func() {
				disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = mdb.Client().Disconnect(disconnectCtx)
			})
		}
	}

	handler := rest.NewRouter(svcs, rest.Options{
		Tokens:     auth.NewVerifier(cfg.JWTSecret),
		Limiter:    middleware.NewRateLimiter(ctx),
		Realtime:   realtime.NewHandler(hub, cfg.CORSOrigin),
		CORSOrigin: cfg.CORSOrigin,
		Timeout:    cfg.OperationTimeout,
	})

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return handler, cleanup
}

func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.L().Warn("redis unavailable, running single-instance", zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}

type indexer interface {
	CreateIndexes(ctx context.Context) error
}

func connectMongo(ctx context.Context, cfg *config.Config) (*mongo.Database, report.Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mdb, err := report.ConnectMongoDB(connectCtx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, nil, err
	}
	store := report.NewMongoStore(mdb)
	if idx, ok := store.(indexer); ok {
		if err := idx.CreateIndexes(connectCtx); err != nil {
			logger.L().Warn("failed to create report indexes", zap.Error(err))
		}
	}
	return mdb, store, nil
}
