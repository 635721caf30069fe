package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"printshop-storefront/internal/cartstore"
	"printshop-storefront/internal/config"
	"printshop-storefront/internal/db"
	"printshop-storefront/internal/events"
	"printshop-storefront/internal/httpserver"
	"printshop-storefront/internal/logging"
	orderrepo "printshop-storefront/internal/repository/order"
	productrepo "printshop-storefront/internal/repository/product"
	"printshop-storefront/internal/repository/slot"
	tokenrepo "printshop-storefront/internal/repository/token"
	cartsvc "printshop-storefront/internal/service/cart"
	checkoutsvc "printshop-storefront/internal/service/checkout"
	productsvc "printshop-storefront/internal/service/product"
	sessionsvc "printshop-storefront/internal/service/session"
)

const sessionSweepInterval = 10 * time.Minute

func main() {
	cfg := config.FromEnv()
	logger := logging.New(cfg.LogLevel, cfg.LogPretty).With().Str("cmd", "api").Logger()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to db")
	}
	defer dbpool.Close()

	slots, closeSlots, err := openSlotBackend(ctx, cfg, dbpool, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.CartSlotBackend).Msg("open cart slot backend")
	}
	defer closeSlots()

	registry := cartstore.NewRegistry(slots, logger.With().Str("component", "cartstore").Logger())
	defer registry.Shutdown()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	productService := productsvc.New(productRepo)
	cartService := cartsvc.New(registry, productService, cfg.StoreCurrency)
	sessionService := sessionsvc.New(openTokenRepo(cfg, dbpool), cfg.SessionTTL)
	orderRepo := orderrepo.NewPostgres(dbpool)

	var checkoutService *checkoutsvc.Service
	if cfg.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.RabbitMQURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("dial rabbitmq")
		}
		defer conn.Close()
		publisher, err := events.NewPublisher(conn)
		if err != nil {
			logger.Fatal().Err(err).Msg("init event publisher")
		}
		defer publisher.Close()
		checkoutService = checkoutsvc.New(orderRepo, publisher, cfg.StoreCurrency, logger)
	} else {
		logger.Warn().Msg("RABBITMQ_URL not set, CartCheckedOut events are disabled")
		checkoutService = checkoutsvc.New(orderRepo, nil, cfg.StoreCurrency, logger)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		ProductSvc:  productService,
		CartSvc:     cartService,
		CheckoutSvc: checkoutService,
		SessionSvc:  sessionService,
		Sessions:    registry,
	}, httpserver.Options{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Currency:           cfg.StoreCurrency,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init server")
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepSessions(sweepCtx, sessionService, registry, cfg.CartIdleTimeout, logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Release event streams before waiting on in-flight requests.
	registry.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		logger.Info().Msg("server stopped")
	}
}

// openSlotBackend builds the persisted cart slot selected by configuration.
func openSlotBackend(ctx context.Context, cfg config.Config, pool slot.DBPool, logger zerolog.Logger) (slot.Repository, func(), error) {
	switch cfg.CartSlotBackend {
	case config.SlotBackendMemory:
		logger.Warn().Msg("cart slots are process-local and lost on restart")
		return slot.NewMemory(), func() {}, nil
	case config.SlotBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		logger.Info().Str("addr", cfg.RedisAddr).Msg("cart slots in redis")
		return slot.NewRedis(client), func() { client.Close() }, nil
	default:
		logger.Info().Msg("cart slots in postgres")
		return slot.NewPostgres(pool), func() {}, nil
	}
}

// openTokenRepo keeps session tokens next to the cart slots: in process memory
// for the memory backend, in postgres otherwise.
func openTokenRepo(cfg config.Config, pool tokenrepo.DBPool) tokenrepo.Repository {
	if cfg.CartSlotBackend == config.SlotBackendMemory {
		return tokenrepo.NewMemory()
	}
	return tokenrepo.NewPostgres(pool)
}

type sessionExpirer interface {
	Expired(ctx context.Context) ([]string, error)
}

// sweepSessions closes the cart stores of sessions whose token lapsed and of
// sessions that have gone quiet.
func sweepSessions(ctx context.Context, sessions sessionExpirer, registry *cartstore.Registry, idle time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := sessions.Expired(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("sweep expired sessions")
			}
			for _, id := range expired {
				registry.Close(id)
			}
			evicted := registry.EvictIdle(idle)
			if len(expired) > 0 || evicted > 0 {
				logger.Debug().Int("expired", len(expired)).Int("idle", evicted).Int("open", registry.Len()).Msg("cart stores swept")
			}
		}
	}
}
