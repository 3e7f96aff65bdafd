package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/giftnest/storefront/configs"
	"github.com/giftnest/storefront/internal/adapter/cache"
	"github.com/giftnest/storefront/internal/adapter/http"
	"github.com/giftnest/storefront/internal/adapter/http/middleware"
	"github.com/giftnest/storefront/internal/adapter/kafka"
	"github.com/giftnest/storefront/internal/adapter/queue"
	"github.com/giftnest/storefront/internal/adapter/repo"
	"github.com/giftnest/storefront/internal/logging"
	"github.com/giftnest/storefront/internal/payment"
	"github.com/giftnest/storefront/internal/security"
	"github.com/giftnest/storefront/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logger := logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)

	// init database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("mysql ping: %w", err)
	}
	if err := repo.Migrate(db); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("storefront: starting up")

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	// init rabbitmq
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	// infra
	orderRepo := repo.NewMySQLOrderRepo(db)
	productRepo := repo.NewMySQLProductRepo(db)
	cartStore := cache.NewRedisCartStore(rdb, cfg.Cart.TTL)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	producer, err := queue.NewRabbitProducer(ch, cfg.Rabbit.Exchange, cfg.Rabbit.ConfirmQueue)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq producer: %w", err)
	}

	// payment providers, built from the enabled set only
	sigs := security.NewSignatureService(map[string]string{
		string(payment.KindRazorpay): cfg.Payment.Razorpay.WebhookSecret,
	})
	providers := buildRegistry(cfg.Payment, sigs)

	// usecases
	cartUC := usecase.NewCart(cartStore, productRepo)
	createUC := usecase.NewCreateOrder(cartStore, productRepo, orderRepo, idem)
	startUC := usecase.NewStartPayment(orderRepo, providers)
	reconcileUC := usecase.NewReconcilePayment(orderRepo, providers, producer, cfg.Payment.Currency)

	// register queue-handler
	if err := setupQueue(ch, cfg.Rabbit.ConfirmQueue); err != nil {
		return nil, nil, err
	}

	// register kafka-listener for back-office settlement feed
	if err := setupKafkaListener(cfg, reconcileUC); err != nil {
		return nil, nil, err
	}

	// init handlers + router + middleware
	cartH := http.NewCartHandler(cartUC)
	orderH := http.NewOrderHandler(createUC, orderRepo)
	paymentH := http.NewPaymentHandler(startUC, reconcileUC, providers)
	tokenH := http.NewTokenHandler(cfg)
	authz := middleware.NewAuthz(cfg)
	router := http.NewRouter(cartH, orderH, paymentH, tokenH, authz, logging.New("http"))

	cleanup := func() {
		_ = db.Close()
		_ = rdb.Close()
		_ = ch.Close()
		_ = conn.Close()
	}

	return &App{Router: router}, cleanup, nil
}

func buildRegistry(pc configs.PaymentConfig, sigs *security.SignatureService) *payment.Registry {
	var list []payment.Provider
	if pc.COD.Enabled {
		list = append(list, payment.NewCODProvider())
	}
	if pc.BankTransfer.Enabled {
		list = append(list, payment.NewBankTransferProvider(pc.BankTransfer.VPA, pc.BankTransfer.PayeeName))
	}
	if pc.Stripe.Enabled {
		list = append(list, payment.NewStripeProvider(payment.StripeConfig{
			SecretKey:      pc.Stripe.SecretKey,
			PublishableKey: pc.Stripe.PublishableKey,
			WebhookSecret:  pc.Stripe.WebhookSecret,
			Currency:       pc.Currency,
			SuccessURL:     pc.Stripe.SuccessURL,
			CancelURL:      pc.Stripe.CancelURL,
		}))
	}
	if pc.Razorpay.Enabled {
		list = append(list, payment.NewRazorpayProvider(payment.RazorpayConfig{
			KeyID:     pc.Razorpay.KeyID,
			KeySecret: pc.Razorpay.KeySecret,
			Currency:  pc.Currency,
		}, sigs))
	}
	return payment.NewRegistry(list...)
}

func setupQueue(ch *amqp091.Channel, confirmQueue string) error {
	h := queue.NewConfirmationHandler(queue.LogMailer{})

	router := queue.NewRouter(ch, queue.WithPrefetch(50))
	router.Register(confirmQueue, queue.JSONHandler[usecase.PaymentConfirmedMsg]{HandleFunc: h.HandleConfirmed})

	return router.Start()
}

func setupKafkaListener(cfg configs.Config, reconciler *usecase.ReconcilePayment) error {
	if len(cfg.Kafka.Brokers) == 0 {
		logging.New("kafka").Warn("no kafka brokers configured, settlement feed disabled")
		return nil
	}

	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return fmt.Errorf("kafka group: %w", err)
	}

	h := kafka.NewSettlementHandler(reconciler)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.SettlementTopic}, h.Handle)

	go func() {
		if err := consumer.Start(context.Background()); err != nil {
			logging.New("kafka").Error("settlement consumer stopped", "err", err)
		}
	}()
	return nil
}
