package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/shanon-tech/commerce-api/internal/accounts"
	"github.com/shanon-tech/commerce-api/internal/analytics"
	"github.com/shanon-tech/commerce-api/internal/catalog"
	"github.com/shanon-tech/commerce-api/internal/config"
	"github.com/shanon-tech/commerce-api/internal/httpx"
	kafkax "github.com/shanon-tech/commerce-api/internal/kafka"
	"github.com/shanon-tech/commerce-api/internal/notify"
	"github.com/shanon-tech/commerce-api/internal/orders"
	"github.com/shanon-tech/commerce-api/internal/payments"
	"github.com/shanon-tech/commerce-api/internal/postgres"
	"github.com/shanon-tech/commerce-api/internal/redisx"
	"github.com/shanon-tech/commerce-api/internal/shipping"
	"github.com/shanon-tech/commerce-api/internal/subscriptions"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	createdProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024, log)
	createdProd.Start(ctx)
	paidProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPaid, 1024, log)
	paidProd.Start(ctx)

	// Mail
	mailer := notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.FromEmail)
	dispatcher := &notify.Dispatcher{Mailer: mailer, TeamEmail: cfg.TeamEmail, Log: log}

	// Repos & services
	orderRepo := &orders.Repo{DB: db}
	productRepo := &catalog.Repo{DB: db}
	waitlistRepo := &catalog.NotificationRepo{DB: db}
	shippingRepo := &shipping.Repo{DB: db}
	accountRepo := &accounts.Repo{DB: db}
	subsRepo := &subscriptions.Repo{DB: db}
	analyticsRepo := &analytics.Repo{DB: db}

	catalogSvc := &catalog.Service{
		Products:  productRepo,
		Waitlist:  waitlistRepo,
		Mail:      dispatcher,
		Log:       log,
		UploadDir: cfg.UploadDir,
	}
	accountSvc := &accounts.Service{Accounts: accountRepo, Secret: []byte(cfg.JWTSecret), Log: log}
	subsSvc := &subscriptions.Service{Subs: subsRepo, Mail: dispatcher, Log: log}
	paymentSvc := &payments.Service{
		Gateway:         payments.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret),
		Orders:          orderRepo,
		Notify:          dispatcher,
		Dedup:           &payments.RedisDeduper{RDB: rdb},
		PaidProd:        paidProd,
		Log:             log,
		ServiceName:     cfg.ServiceName,
		DefaultCurrency: cfg.DefaultCurrency,
	}

	// Router & handlers
	router := httpx.NewRouter()
	auth := &httpx.Auth{Accounts: accountSvc}

	(&httpx.OrdersHandler{
		Repo:            orderRepo,
		Producer:        createdProd,
		Redis:           rdb,
		Notify:          dispatcher,
		Log:             log,
		Service:         cfg.ServiceName,
		DefaultCurrency: cfg.DefaultCurrency,
	}).Register(router, auth)
	(&httpx.PaymentsHandler{Svc: paymentSvc, Log: log}).Register(router)
	(&httpx.CatalogHandler{Repo: productRepo, Svc: catalogSvc}).Register(router, auth)
	(&httpx.StockNotifyHandler{Svc: catalogSvc, Waitlist: waitlistRepo}).Register(router, auth)
	(&httpx.ShippingHandler{Repo: shippingRepo, DefaultCurrency: cfg.DefaultCurrency}).Register(router, auth)
	(&httpx.AccountsHandler{Svc: accountSvc}).Register(router, auth)
	(&httpx.AnalyticsHandler{Repo: analyticsRepo}).Register(router, auth)
	(&httpx.SubscriptionsHandler{Svc: subsSvc, Repo: subsRepo}).Register(router, auth)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	createdProd.Close() // close inbox, flush and close writer
	paidProd.Close()
	cancel() // stop producer loops
	createdProd.WaitClosed()
	paidProd.WaitClosed()
}
