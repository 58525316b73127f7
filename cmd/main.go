package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"restaurant-pos/internal/auth"
	"restaurant-pos/internal/config"
	"restaurant-pos/internal/database"
	"restaurant-pos/internal/httpx"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/memstore"
	"restaurant-pos/internal/messaging"
	"restaurant-pos/internal/services/cart"
	"restaurant-pos/internal/services/inventory"
	"restaurant-pos/internal/services/notification"
	"restaurant-pos/internal/services/order"
	"restaurant-pos/internal/services/receipt"
	"restaurant-pos/internal/services/sequence"
	"restaurant-pos/internal/services/tables"
)

func main() {
	var (
		mode       = flag.String("mode", "", "Service mode (order-service, receipt-printer, notification-subscriber)")
		configPath = flag.String("config", "config.yaml", "Path to the configuration file")
		port       = flag.Int("port", 0, "HTTP port, overrides server.port")
		store      = flag.String("store", "postgres", "Order service backend (postgres, memory)")
		prefetch   = flag.Int("prefetch", 1, "RabbitMQ prefetch count")
	)
	flag.Parse()

	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_starting", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode":     *mode,
		"port":     cfg.Server.Port,
		"store":    *store,
		"prefetch": *prefetch,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "order-service":
		err = runOrderService(ctx, cfg, log, *store)
	case "receipt-printer":
		err = runReceiptPrinter(ctx, cfg, log, *prefetch)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, log, *prefetch)
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}
	if err != nil {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// backend is everything the order service needs from its storage and broker
type backend struct {
	tx            order.TxRunner
	orders        order.Repository
	inventory     inventory.Store
	carts         cart.Store
	sequence      sequence.Store
	tables        tables.Store
	notifications notification.Store
	publisher     notification.Publisher
	receipts      receipt.Sender
	ping          func(ctx context.Context) error
	close         func()
}

func postgresBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	requestID := logger.GenerateRequestID()

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize messaging: %w", err)
	}
	log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)

	publisher := messaging.NewPublisher(conn, log)

	return &backend{
		tx:            db,
		orders:        order.NewPostgresRepository(db),
		inventory:     inventory.NewPostgresStore(db),
		carts:         cart.NewPostgresStore(db),
		sequence:      sequence.NewPostgresStore(db),
		tables:        tables.NewPostgresStore(db),
		notifications: notification.NewPostgresStore(db),
		publisher:     publisher,
		receipts:      publisher,
		ping:          db.Ping,
		close: func() {
			conn.Close()
			db.Close()
		},
	}, nil
}

func memoryBackend(cfg *config.Config, log *logger.Logger) (*backend, error) {
	device, closeDevice, err := openDevice(cfg.Printer.Device)
	if err != nil {
		return nil, err
	}
	printer := receipt.NewPrinter(
		receipt.NewFormatter(cfg.Printer.Width, cfg.Restaurant.Name),
		device, cfg.Printer.PassDelay, log,
	)

	return &backend{
		tx:            memstore.NewUnitOfWork(),
		orders:        order.NewMemoryRepository(),
		inventory:     inventory.NewMemoryStore(inventory.DefaultMenu()...),
		carts:         cart.NewMemoryStore(),
		sequence:      sequence.NewMemoryStore(),
		tables:        tables.NewMemoryStore(),
		notifications: notification.NewMemoryStore(),
		publisher:     notification.LogPublisher{Logger: log},
		receipts:      printer,
		ping:          func(ctx context.Context) error { return nil },
		close:         closeDevice,
	}, nil
}

// runOrderService serves the HTTP API until ctx is cancelled
func runOrderService(ctx context.Context, cfg *config.Config, log *logger.Logger, store string) error {
	requestID := logger.GenerateRequestID()

	var (
		b   *backend
		err error
	)
	switch store {
	case "postgres":
		b, err = postgresBackend(ctx, cfg, log)
	case "memory":
		b, err = memoryBackend(cfg, log)
	default:
		return fmt.Errorf("unknown store %q", store)
	}
	if err != nil {
		return err
	}
	defer b.close()

	registry := tables.NewRegistry(b.tables, cfg.Restaurant.Tables, log)
	if err := registry.EnsureTables(ctx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	ledger := inventory.NewLedger(b.inventory, log)
	carts := cart.NewService(b.carts, ledger, log)
	notifications := notification.NewService(b.notifications, b.publisher, log)
	dispatcher := receipt.NewDispatcher(b.receipts, cfg.Printer.RetryDelay, log)
	defer dispatcher.Wait()

	orders := order.NewService(order.Deps{
		Tx:            b.tx,
		Orders:        b.orders,
		Carts:         carts,
		Inventory:     ledger,
		Sequencer:     sequence.NewSequencer(b.sequence),
		Tables:        registry,
		Notifications: notifications,
		Printer:       dispatcher,
		Logger:        log,
	})

	router := mux.NewRouter()
	router.Use(httpx.Logging(log), httpx.Timeout(cfg.Server.RequestTimeout))
	router.HandleFunc("/health", healthHandler(b.ping)).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	api.Use(auth.NewAuthenticator(cfg.Auth.JWTSecret).Middleware)
	inventory.NewHandler(ledger, log).RegisterRoutes(api)
	cart.NewHandler(carts, log).RegisterRoutes(api)
	tables.NewHandler(registry, log).RegisterRoutes(api)
	order.NewHandler(orders, log).RegisterRoutes(api)
	notification.NewHandler(notifications, log).RegisterRoutes(api)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("service_started", fmt.Sprintf("Order service started on port %d", cfg.Server.Port), requestID, map[string]interface{}{
			"port":   cfg.Server.Port,
			"tables": registry.Count(),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("graceful_shutdown", "Stopping HTTP server", requestID, nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ping(r.Context()); err != nil {
			httpx.WriteError(w, http.StatusServiceUnavailable, "database unavailable", httpx.RequestID(r.Context()))
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// runReceiptPrinter prints jobs from the receipts queue
func runReceiptPrinter(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	device, closeDevice, err := openDevice(cfg.Printer.Device)
	if err != nil {
		return err
	}
	defer closeDevice()

	printer := receipt.NewPrinter(
		receipt.NewFormatter(cfg.Printer.Width, cfg.Restaurant.Name),
		device, cfg.Printer.PassDelay, log,
	)
	consumer := messaging.NewConsumer(conn, log, messaging.ReceiptsQueue, "receipt-printer", prefetch, cfg.Printer.PassDelay+30*time.Second)

	return printer.Start(ctx, consumer)
}

// runNotificationSubscriber prints customer notifications to stdout
func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notification-subscriber", prefetch, 30*time.Second)
	return notification.NewSubscriber(consumer, os.Stdout, log).Start(ctx)
}

// openDevice opens the printer output for appending; "-" is stdout
func openDevice(path string) (io.Writer, func(), error) {
	if path == "-" || path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open printer device: %w", err)
	}
	return f, func() { f.Close() }, nil
}
