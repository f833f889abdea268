package settlement

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-settlement/internal/settlement/handlers"
	"go-settlement/internal/settlement/middleware"
	"go-settlement/pkg/logging"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration
}

// Services groups everything the HTTP surface delegates to.
type Services struct {
	Reconciler handlers.CallbackReconciler
	Ledger     handlers.LedgerService
	Deposits   handlers.DepositService
	Payer      handlers.BalancePayer
}

type Server struct {
	logger     *logging.ZapLogger
	httpServer *http.Server
	cfg        Config
}

func NewServer(
	cfg Config,
	tokenAuth *jwtauth.JWTAuth,
	services Services,
	observer middleware.RequestObserver,
	gatherer prometheus.Gatherer,
	logger *logging.ZapLogger,
) *Server {
	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: createMux(
			tokenAuth,
			services,
			observer,
			gatherer,
			logger,
		),
	}

	res := &Server{
		cfg:        cfg,
		logger:     logger,
		httpServer: srv,
	}

	return res
}

func (s *Server) Run() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server ListenAndServe failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func createMux(
	tokenAuth *jwtauth.JWTAuth,
	services Services,
	observer middleware.RequestObserver,
	gatherer prometheus.Gatherer,
	logger *logging.ZapLogger,
) *chi.Mux {
	paymentCallbackHandler := handlers.NewPaymentCallbackHandler(services.Reconciler, logger)
	fulfillmentCallbackHandler := handlers.NewFulfillmentCallbackHandler(services.Reconciler, logger)
	ledgerQueryHandler := handlers.NewLedgerQueryHandler(services.Ledger, logger)
	depositCreationHandler := handlers.NewDepositCreationHandler(services.Deposits, logger)
	orderPaymentHandler := handlers.NewOrderPaymentHandler(services.Payer, logger)

	router := chi.NewRouter()
	router.Use(
		middleware.NewLoggerContext().CreateHandler,
		middleware.NewRequestMetrics(observer).CreateHandler,
		middleware.NewPanicRecover(logger).CreateHandler,
	)

	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	router.Route("/api/callbacks", func(router chi.Router) {
		router.Post("/payment/{provider}", paymentCallbackHandler.ServeHTTP)
		router.Post("/fulfillment/{provider}", fulfillmentCallbackHandler.ServeHTTP)
	})

	router.Group(func(router chi.Router) {
		router.Use(jwtauth.Verifier(tokenAuth))
		router.Use(jwtauth.Authenticator(tokenAuth))

		router.Route("/api/ledger/users/{userID}", func(router chi.Router) {
			router.Get("/balance", ledgerQueryHandler.Balance)
			router.Get("/mutations", ledgerQueryHandler.Mutations)
			router.Get("/audit", ledgerQueryHandler.Audit)
		})

		router.Route("/api/user", func(router chi.Router) {
			router.Post("/deposits", depositCreationHandler.ServeHTTP)
			router.Post("/orders/{orderID}/pay", orderPaymentHandler.ServeHTTP)
		})
	})

	return router
}
