package main

import (
	"context"
	"crypto/ed25519"
	"errors"
	"eventPass/internal/config"
	"eventPass/internal/http-server/handlers/event/createEvent"
	"eventPass/internal/http-server/handlers/event/getAllEvents"
	"eventPass/internal/http-server/handlers/event/getEventInfo"
	"eventPass/internal/http-server/handlers/health"
	"eventPass/internal/http-server/handlers/ticket/listTickets"
	"eventPass/internal/http-server/handlers/ticket/previewTicket"
	"eventPass/internal/http-server/handlers/ticket/purchaseTicket"
	"eventPass/internal/http-server/handlers/ticket/redeemTicket"
	"eventPass/internal/http-server/handlers/ticket/ticketQR"
	"eventPass/internal/http-server/middleware/identity"
	"eventPass/internal/http-server/middleware/mwlogger"
	"eventPass/internal/lib/clock"
	"eventPass/internal/lib/credential"
	"eventPass/internal/lib/logger/handlers/slogpretty"
	"eventPass/internal/lib/logger/sl"
	"eventPass/internal/notify"
	"eventPass/internal/services/audit"
	"eventPass/internal/services/issuance"
	"eventPass/internal/services/redemption"
	"eventPass/internal/storage"
	"eventPass/internal/storage/bolt"
	"eventPass/internal/storage/postgres"
	redisstore "eventPass/internal/storage/redis"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// ticketStore is the ledger: tickets, ownership and check-ins.
type ticketStore interface {
	issuance.Ledger
	redemption.Tickets
	audit.Ledger
	Close() error
}

// eventStore is the inventory: events and their available tickets.
type eventStore interface {
	issuance.Inventory
	audit.Events
	createEvent.EventCreator
}

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting event pass",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("inventory", cfg.Inventory.Driver),
	)
	log.Debug("Debug messages are enabled")

	var redisClient *redis.Client
	if cfg.Inventory.Driver == config.InventoryDriverRedis || cfg.Notify.Driver == config.NotifyDriverRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Error("failed to connect to redis", sl.Err(err))
			os.Exit(1)
		}
		log.Info("redis connected", slog.String("address", cfg.Redis.Address))
	}

	tickets, events, tx, err := setupStorage(cfg, log, redisClient)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	signingKey, err := setupSigningKey(cfg.Credential, log)
	if err != nil {
		log.Error("failed to load credential signing key", sl.Err(err))
		os.Exit(1)
	}

	clk := clock.NewSystem()
	codec := credential.NewCodec(signingKey,
		credential.WithTTL(cfg.Credential.TTL),
		credential.WithClock(clk),
	)

	notifier := notify.NewDispatcher(log, setupSender(cfg.Notify, log, redisClient), cfg.Notify.Timeout)

	issuer := issuance.New(log, events, tickets, tx, codec, notifier, clk)
	redeemer := redemption.New(log, codec, tickets, events, notifier, clk)
	auditor := audit.New(log, events, tickets)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Get("/health", health.New())
	router.Get("/events", getAllEvents.New(log, events))
	router.Get("/events/{id}", getEventInfo.New(log, events))

	router.Group(func(r chi.Router) {
		r.Use(identity.New(log))

		r.Post("/events/{id}/tickets", purchaseTicket.New(log, issuer))
		r.Get("/tickets", listTickets.New(log, issuer))
		r.Get("/tickets/{id}/qr", ticketQR.New(log, tickets))

		r.Group(func(r chi.Router) {
			r.Use(identity.RequireRole(identity.RoleAdmin))

			r.Post("/events", createEvent.New(log, events, clk))
			r.Post("/tickets/check-in", redeemTicket.New(log, redeemer))
			r.Post("/tickets/preview", previewTicket.New(log, redeemer))
		})
	})

	log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)

	auditCtx, stopAudit := context.WithCancel(context.Background())
	auditDone := make(chan struct{})

	go func() {
		defer close(auditDone)
		auditor.Run(auditCtx, cfg.Audit.Interval)
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			stop <- syscall.SIGTERM
		}
	}()

	sign := <-stop

	log.Info("application stopping", slog.String("signal", sign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server", sl.Err(err))
	}

	stopAudit()
	<-auditDone

	notifier.Close()
	log.Info("notifications drained")

	if err := tickets.Close(); err != nil {
		log.Error("failed to close storage", sl.Err(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("failed to close redis connection", sl.Err(err))
		}
	}

	log.Info("application stopped")
}

// setupStorage opens the ledger and picks the inventory. A store holding
// both shares one transaction; the redis inventory compensates.
func setupStorage(cfg *config.Config, log *slog.Logger, redisClient *redis.Client) (ticketStore, eventStore, issuance.Transactor, error) {
	var (
		tickets ticketStore
		events  eventStore
		tx      issuance.Transactor = storage.Independent{}
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pg, err := postgres.InitDB(&cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("postgres migrations applied")

		tickets, events, tx = pg, pg, pg
	case config.StorageDriverBolt:
		b, err := bolt.New(cfg.Bolt.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info("bolt storage opened", slog.String("path", cfg.Bolt.Path))

		tickets, events, tx = b, b, b
	}

	if cfg.Inventory.Driver == config.InventoryDriverRedis {
		events = redisstore.NewInventory(redisClient)
		tx = storage.Independent{}
	}

	return tickets, events, tx, nil
}

func setupSigningKey(cfg config.Credential, log *slog.Logger) (ed25519.PrivateKey, error) {
	if cfg.SigningSeed != "" {
		return credential.KeyFromSeed(cfg.SigningSeed)
	}

	key, created, err := credential.LoadOrGenerateKey(cfg.KeyDir)
	if err != nil {
		return nil, err
	}
	if created {
		log.Warn("generated new credential signing key", slog.String("dir", cfg.KeyDir))
	}

	return key, nil
}

func setupSender(cfg config.Notify, log *slog.Logger, redisClient *redis.Client) notify.Sender {
	if cfg.Driver == config.NotifyDriverRedis {
		return notify.NewStreamSender(redisClient, cfg.Stream)
	}

	return notify.NewLogSender(log)
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
