package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/kunalsingh7053/VyaparX/internal/platform/auth"
	"github.com/kunalsingh7053/VyaparX/internal/platform/config"
	"github.com/kunalsingh7053/VyaparX/internal/platform/dedup"
	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/internal/platform/httpserver"
	"github.com/kunalsingh7053/VyaparX/internal/platform/outbox"
	"github.com/kunalsingh7053/VyaparX/internal/platform/rabbitmq"
	platformspanner "github.com/kunalsingh7053/VyaparX/internal/platform/spanner"
	"github.com/kunalsingh7053/VyaparX/modules/notifications"
	"github.com/kunalsingh7053/VyaparX/modules/notifications/infrastructure/mailer"
	"github.com/kunalsingh7053/VyaparX/modules/orders"
	ordersdomain "github.com/kunalsingh7053/VyaparX/modules/orders/domain"
	orderspersistence "github.com/kunalsingh7053/VyaparX/modules/orders/infrastructure/persistence"
	"github.com/kunalsingh7053/VyaparX/modules/orders/infrastructure/upstream"
	"github.com/kunalsingh7053/VyaparX/modules/payments"
	paymentsdomain "github.com/kunalsingh7053/VyaparX/modules/payments/domain"
	"github.com/kunalsingh7053/VyaparX/modules/payments/infrastructure/ordergateway"
	paymentspersistence "github.com/kunalsingh7053/VyaparX/modules/payments/infrastructure/persistence"
	"github.com/kunalsingh7053/VyaparX/modules/payments/infrastructure/provider"
	"github.com/kunalsingh7053/VyaparX/modules/sellerdashboard"
	dashboardpersistence "github.com/kunalsingh7053/VyaparX/modules/sellerdashboard/infrastructure/persistence"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
	"github.com/kunalsingh7053/VyaparX/modules/shared/transaction"
)

// Bounded contexts selectable with --modules, and the queue-owning service
// name each one consumes as.
const (
	moduleOrders          = "orders"
	modulePayments        = "payments"
	moduleNotifications   = "notifications"
	moduleSellerDashboard = "sellerdashboard"
)

var consumerService = map[string]string{
	moduleOrders:          "order",
	moduleNotifications:   "notification",
	moduleSellerDashboard: "seller-dashboard",
}

func parseModules(names []string) (map[string]bool, error) {
	hosted := make(map[string]bool, len(names))
	for _, name := range names {
		switch name {
		case moduleOrders, modulePayments, moduleNotifications, moduleSellerDashboard:
			hosted[name] = true
		default:
			return nil, fmt.Errorf("unknown module %q", name)
		}
	}
	return hosted, nil
}

// app holds the process-wide infrastructure selected by STORE, BROKER and
// REDIS_ADDR. Modules are wired on top of it by wire.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	codec    *eventbus.Codec
	registry *eventbus.EventHandlerRegistry
	outbox   outbox.Store
	txScope  transaction.Scope

	orderRepo   ordersdomain.OrderRepository
	paymentRepo paymentsdomain.PaymentRepository

	bus       *eventbus.InMemoryEventBus
	amqp      *rabbitmq.Connection
	publisher events.Publisher
	consumers []*rabbitmq.Consumer

	dedup    dedup.Store
	verifier *auth.Verifier

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		codec:    eventbus.NewContractsCodec(),
		registry: eventbus.NewEventHandlerRegistry(logger),
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	switch cfg.Store {
	case "spanner":
		spannerCfg := platformspanner.Config{
			ProjectID:  cfg.SpannerProjectID,
			InstanceID: cfg.SpannerInstanceID,
			DatabaseID: cfg.SpannerDatabaseID,
		}
		client, err := platformspanner.NewClient(ctx, spannerCfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { client.Close(); return nil })
		logger.Info("connected to spanner", slog.String("dsn", spannerCfg.DSN()))

		a.txScope = platformspanner.NewReadWriteTransactionScope(client)
		a.orderRepo = orderspersistence.NewSpannerRepository(client)
		a.paymentRepo = paymentspersistence.NewSpannerRepository(client)
		a.outbox = outbox.NewSpannerStore(client)
	default:
		logger.Warn("using in-memory store; state is lost on exit")
		a.txScope = transaction.NewSerialScope()
		a.orderRepo = orderspersistence.NewInMemoryRepository()
		a.paymentRepo = paymentspersistence.NewInMemoryRepository()
		a.outbox = outbox.NewMemoryStore()
	}

	// Every event published inside a transaction lands in the outbox.
	if err := a.registry.SubscribeAll(outbox.NewRecorder(a.outbox, a.codec), a.codec.EventTypes()...); err != nil {
		return nil, err
	}

	var revocations auth.Revocations
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		a.dedup = dedup.NewRedisStore(rdb, dedup.DefaultTTL)
		revocations = auth.NewRedisRevocations(rdb)
	} else {
		logger.Warn("REDIS_ADDR not set; consumer dedup is per process and token revocation is disabled")
		a.dedup = dedup.NewMemoryStore()
	}
	a.verifier = auth.NewVerifier(cfg.JWTSecret, revocations)

	switch cfg.Broker {
	case "rabbitmq":
		conn, err := rabbitmq.Dial(cfg.RabbitMQURL, cfg.RabbitMQExchange, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, conn.Close)
		a.amqp = conn

		publisher, err := rabbitmq.NewPublisher(conn, a.codec)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, publisher.Close)
		a.publisher = publisher
	default:
		a.bus = eventbus.New(logger)
		a.publisher = a.bus
	}

	return a, nil
}

// subscriber returns the deduplicating subscriber a consuming module
// registers its handlers with.
func (a *app) subscriber(module string) events.Subscriber {
	service := consumerService[module]
	var source events.Subscriber = a.bus
	if a.amqp != nil {
		consumer := rabbitmq.NewConsumer(a.amqp, service, a.codec, a.logger)
		a.consumers = append(a.consumers, consumer)
		source = consumer
	}
	return dedup.NewSubscriber(source, a.dedup, service, a.logger)
}

func (a *app) paymentProvider() paymentsdomain.Provider {
	if a.cfg.PaymentProvider == "razorpay" {
		return provider.NewRazorpay(a.cfg.RazorpayURL, a.cfg.RazorpayKeyID, a.cfg.RazorpayKeySecret, a.cfg.UpstreamTimeout)
	}
	a.logger.Warn("using sandbox payment provider")
	return provider.NewSandbox(a.cfg.ProviderSecret())
}

// wire builds the hosted modules. Routes are registered on mux when it is
// non-nil. It returns the long-running loops the process must run.
func (a *app) wire(ctx context.Context, hosted map[string]bool, mux *http.ServeMux) ([]func(context.Context) error, error) {
	var runners []func(context.Context) error
	guard := auth.NewGuard(a.verifier, a.logger)

	if hosted[moduleOrders] || hosted[modulePayments] {
		client := upstream.NewHTTPClient(a.cfg.UpstreamTimeout)
		ordersCfg := orders.Config{
			Repository:      a.orderRepo,
			TxScope:         a.txScope,
			HandlerRegistry: a.registry,
			Cart:            upstream.NewCartClient(a.cfg.CartURL, client),
			Catalog:         upstream.NewCatalogClient(a.cfg.CatalogURL, client),
			Guard:           guard,
			Logger:          a.logger,
		}
		if hosted[moduleOrders] {
			ordersCfg.EventSubscriber = a.subscriber(moduleOrders)
		}
		ordersModule, err := orders.New(ordersCfg)
		if err != nil {
			return nil, err
		}
		if hosted[moduleOrders] && mux != nil {
			ordersModule.RegisterRoutes(mux)
		}

		if hosted[modulePayments] {
			paymentsModule := payments.New(payments.Config{
				Repository:       a.paymentRepo,
				TxScope:          a.txScope,
				HandlerRegistry:  a.registry,
				Orders:           ordergateway.New(ordersModule),
				Provider:         a.paymentProvider(),
				FailurePublisher: a.publisher,
				Guard:            guard,
				Logger:           a.logger,
			})
			if mux != nil {
				paymentsModule.RegisterRoutes(mux)
			}
		}

		relay := outbox.NewRelay(a.outbox, a.codec, a.publisher, a.cfg.OutboxPollInterval, a.logger)
		runners = append(runners, relay.Run)
	}

	if hosted[moduleNotifications] {
		if _, err := notifications.New(notifications.Config{
			EventSubscriber: a.subscriber(moduleNotifications),
			Mailer:          mailer.NewLogMailer(a.logger),
			Logger:          a.logger,
		}); err != nil {
			return nil, err
		}
	}

	if hosted[moduleSellerDashboard] {
		store, err := dashboardpersistence.Open(ctx, a.cfg.DashboardDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		if _, err := sellerdashboard.New(sellerdashboard.Config{
			Store:           store,
			EventSubscriber: a.subscriber(moduleSellerDashboard),
			Logger:          a.logger,
		}); err != nil {
			return nil, err
		}
	}

	for _, consumer := range a.consumers {
		runners = append(runners, consumer.Run)
	}
	return runners, nil
}

func (a *app) handler(mux *http.ServeMux) http.Handler {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpserver.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return httpserver.Chain(mux,
		httpserver.RequestID(),
		httpserver.Logging(a.logger),
		httpserver.Recovery(),
		httpserver.Tracing("vyaparx"),
		httpserver.CORS(a.cfg.CORSOrigins),
	)
}

// Close releases infrastructure in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", slog.Any("error", err))
		}
	}
	a.closers = nil
}
