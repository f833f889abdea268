package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-settlement/cmd/settlement/config"
	"go-settlement/internal/settlement"
	"go-settlement/internal/settlement/compensation"
	"go-settlement/internal/settlement/data/database"
	"go-settlement/internal/settlement/data/dbrepository"
	"go-settlement/internal/settlement/expiry"
	"go-settlement/internal/settlement/fulfillmentmonitor"
	"go-settlement/internal/settlement/ledger"
	"go-settlement/internal/settlement/metrics"
	"go-settlement/internal/settlement/providers/paygate"
	"go-settlement/internal/settlement/providers/qrpay"
	"go-settlement/internal/settlement/providers/supplier"
	"go-settlement/internal/settlement/reconciler"
	"go-settlement/internal/settlement/service"
	"go-settlement/internal/settlement/statemachine"
	"go-settlement/pkg/delayqueue"
	"go-settlement/pkg/logging"
	"go-settlement/pkg/pgxstorage"
)

type worker interface {
	Run(ctx context.Context)
	Stop()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	logOpts := []logging.Option{logging.WithService("settlement")}
	if cfg.LogFormat == "console" {
		logOpts = append(logOpts, logging.WithConsoleEncoding())
	}
	logger, err := logging.NewZapLogger(level, logOpts...)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	dbFactory := database.NewPgxDatabaseFactory(cfg.DB)
	storage, err := pgxstorage.New(dbFactory)
	if err != nil {
		log.Fatal(err)
	}
	defer storage.Close()
	repository := dbrepository.New(storage, logger)
	transactionManager := pgxstorage.NewTransactionsManager(storage)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = redisClient.Close() }()
	queue := delayqueue.New(redisClient, cfg.Queue)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.New(registry)

	balanceLedger := ledger.New(transactionManager, repository, logger)
	compensator := compensation.New(transactionManager, repository, balanceLedger, recorder, logger)
	machine := statemachine.New(transactionManager, repository, balanceLedger, compensator, recorder, logger)

	callbackReconciler := reconciler.New(
		machine,
		machine,
		recorder,
		logger,
		paygate.New(cfg.PayGate),
		qrpay.New(cfg.QRPay),
		supplier.NewWebhook(cfg.SupplierWebhook),
	)

	expiryScheduler := expiry.NewScheduler(queue, logger)
	expiryConsumer := expiry.NewConsumer(cfg.Expiry, queue, expiry.NewHandler(machine, logger), recorder, logger)
	monitor := fulfillmentmonitor.New(
		cfg.Monitor,
		repository,
		supplier.NewClient(cfg.Supplier, logger),
		machine,
		logger,
	)

	deposits := service.NewDeposits(
		service.DepositsConfig{
			TTL:       cfg.DepositTTL,
			Providers: []string{paygate.Name, qrpay.Name},
		},
		repository,
		expiryScheduler,
		logger,
	)

	tokenAuth := jwtauth.New(cfg.JWTConfig.Algorithm, []byte(cfg.JWTConfig.Secret), nil)

	server := settlement.NewServer(
		cfg.Server,
		tokenAuth,
		settlement.Services{
			Reconciler: callbackReconciler,
			Ledger:     balanceLedger,
			Deposits:   deposits,
			Payer:      machine,
		},
		recorder,
		registry,
		logger,
	)

	rootCtx, cancelCtx := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGABRT,
	)
	defer cancelCtx()

	if err := run(rootCtx, cfg, server, []worker{expiryConsumer, monitor}, logger); err != nil {
		logger.ErrorCtx(rootCtx, "Server shutdown with error", zap.Error(err))
	} else {
		logger.InfoCtx(rootCtx, "Server shutdown gracefully")
	}
}

func run(
	rootCtx context.Context,
	cfg *config.Config,
	server *settlement.Server,
	workers []worker,
	logger *logging.ZapLogger,
) error {
	g, ctx := errgroup.WithContext(rootCtx)

	context.AfterFunc(ctx, func() {
		ctx, cancelCtx := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancelCtx()

		<-ctx.Done()
		log.Fatal("failed to gracefully shutdown the server")
	})

	g.Go(func() error {
		if err := server.Run(); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	for _, w := range workers {
		g.Go(func() error {
			w.Run(ctx)
			return nil
		})
	}

	g.Go(func() error {
		defer logger.InfoCtx(ctx, "Shutting down server")
		<-ctx.Done()
		for _, w := range workers {
			w.Stop()
		}
		if err := server.Shutdown(); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("goroutine error occured: %w", err)
	}

	return nil
}
