// Command api runs the storefront session service.
//
// @title        Storefront Session API
// @version      1.0
// @description  Session, authorization and cart reconciliation for the marketplace storefront.
// @host         localhost:8080
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/afripulse/storefront-session/docs"
	"github.com/afripulse/storefront-session/internal/api"
	"github.com/afripulse/storefront-session/internal/api/handler"
	"github.com/afripulse/storefront-session/internal/api/metrics"
	"github.com/afripulse/storefront-session/internal/core/service"
	"github.com/afripulse/storefront-session/internal/infrastructure/backend"
	"github.com/afripulse/storefront-session/internal/infrastructure/config"
	"github.com/afripulse/storefront-session/internal/infrastructure/crypto"
	mongodb "github.com/afripulse/storefront-session/internal/infrastructure/db/mongo"
	redisdb "github.com/afripulse/storefront-session/internal/infrastructure/db/redis"
	"github.com/afripulse/storefront-session/internal/infrastructure/queue"
	"github.com/afripulse/storefront-session/pkg/logger"
)

const (
	serviceName     = "storefront-session"
	shutdownTimeout = 15 * time.Second

	devDeviceSecret = "dev-device-secret"
	devTokenSealKey = "dev-token-seal-key"
)

var version = "dev"

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
		Version: version,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("service stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deviceSecret, sealKey := cfg.DeviceSecret, cfg.TokenSealKey
	if deviceSecret == "" {
		log.Warn().Msg("DEVICE_SECRET not set, using development secret")
		deviceSecret = devDeviceSecret
	}
	if sealKey == "" {
		log.Warn().Msg("TOKEN_SEAL_KEY not set, using development key")
		sealKey = devTokenSealKey
	}

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	sealer, err := crypto.NewSealer(sealKey)
	if err != nil {
		return err
	}

	credentials := mongodb.NewCredentialStore(db, sealer)
	guestCarts := mongodb.NewGuestCartStore(db)
	if err := mongodb.EnsureIndexes(ctx, credentials, guestCarts); err != nil {
		return err
	}

	notices := redisdb.NewNoticeStore(rdb, cfg.Notices.TTL)
	attribution := redisdb.NewAttributionStore(rdb, cfg.Cart.AttributionTTL)
	dedup := redisdb.NewClickDedup(rdb)

	// --- Backend + background work ---
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger.Component("backend"))

	dispatcher := queue.NewDispatcher(cfg.Queue.Workers, logger.Component("dispatcher"))
	dispatcher.ObserveDepth(func(worker string, depth int) {
		metrics.BackgroundQueueDepth.WithLabelValues(worker).Set(float64(depth))
	})
	// Workers are stopped only after the listener has closed.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)

	// --- Core ---
	policy, err := service.ParseGuestCartPolicy(cfg.Cart.GuestPolicy)
	if err != nil {
		stopWorkers()
		return err
	}

	identity := service.NewIdentityResolver(credentials, client, notices, logger.Component("identity"))
	cart := service.NewCartEngine(client, guestCarts, attribution, notices, identity, policy, cfg.Cart.IdleTTL,
		logger.Component("cart"))
	sessions := service.NewSessionController(credentials, client, cart, dispatcher, notices,
		logger.Component("session"))
	tracker := service.NewAffiliateTracker(client, attribution, dedup, identity, logger.Component("affiliate"))

	go cart.Start(ctx)

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Identity:  identity,
		Sessions:  sessions,
		Cart:      cart,
		Affiliate: tracker,
		Notices:   notices,
		Guard:     service.NewGuard(cfg.Guard.EnforceCompleteness),
		Readiness: map[string]handler.Pinger{
			"mongodb": handler.PingFunc(func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }),
			"redis":   handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
	}, api.Options{
		DeviceSecret:  deviceSecret,
		SecureCookies: !cfg.IsDevelopment(),
	}, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("guest_policy", string(policy)).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			stopWorkers()
			dispatcher.Wait()
			return err
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = e.Shutdown(sctx)

	stopWorkers()
	dispatcher.Wait()
	return err
}
