package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/phermann/shopcore/internal/cart"
	"github.com/phermann/shopcore/internal/catalog"
	"github.com/phermann/shopcore/internal/checkout"
	"github.com/phermann/shopcore/internal/favorites"
	"github.com/phermann/shopcore/internal/orders"
	"github.com/phermann/shopcore/internal/telemetry"
	"github.com/phermann/shopcore/internal/users"
	"github.com/phermann/shopcore/pkg/config"
	"github.com/phermann/shopcore/pkg/docstore"
	"github.com/phermann/shopcore/pkg/logger"
	"github.com/phermann/shopcore/pkg/pubsub"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "shopcore"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "shopcore",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	store, err := docstore.New(ctx, cfg.GCP, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap document store", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logg.Error(ctx, "error closing document store", err)
		}
	}()

	sink := buildTelemetrySink(ctx, cfg, logg)

	catalogRepo, err := catalog.NewAPIRepository(cfg.Catalog)
	if err != nil {
		logg.Error(ctx, "failed to create catalog client", err)
		os.Exit(1)
	}
	catalogService := catalog.NewService(catalogRepo, sink)

	authClient, err := users.NewIdentityClient(cfg.Auth)
	if err != nil {
		logg.Error(ctx, "failed to create auth client", err)
		os.Exit(1)
	}

	adminAuth, err := users.NewAdminAuth(ctx, cfg.GCP)
	if err != nil {
		logg.Error(ctx, "failed to create admin auth client", err)
		os.Exit(1)
	}

	states := users.NewStatePublisher()
	userRepo := users.NewStoreRepository(authClient, adminAuth, store, states, logg)

	cartEngine := cart.NewEngine(cart.NewStoreRepository(store, logg), sink, logg)
	favoritesEngine := favorites.NewEngine(favorites.NewStoreRepository(store, logg), sink, logg)
	checkoutMachine := checkout.NewMachine(cartEngine, orders.NewStoreRepository(store, logg), sink, logg)

	stateChanges, cancelStates := states.Subscribe()
	defer cancelStates()

	go func() {
		for state := range stateChanges {
			seedCtx := logg.WithUserID(ctx, state.UserID)
			logg.Info(seedCtx, "auth state changed, reseeding engines")
			cartEngine.SetUser(seedCtx, state.UserID)
			favoritesEngine.SetUser(seedCtx, state.UserID)
			checkoutMachine.SetUser(seedCtx, state.UserID)
		}
	}()

	// Warm the category list; a failed background fetch is logged only.
	go func() {
		categories, err := catalogService.FetchCategories(ctx)
		if err != nil {
			logg.Error(ctx, "failed to prefetch categories", err)
			return
		}
		logg.Info(logg.WithField(ctx, "categories", len(categories)), "catalog reachable")
	}()

	logg.Info(logg.WithField(ctx, "env", cfg.App.Env), "shopcore engines ready")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	if states.Current().SignedIn() {
		if err := userRepo.SignOut(ctx); err != nil {
			logg.Error(ctx, "error signing out", err)
		}
	}
	logg.Info(ctx, "shutting down")
}

func buildTelemetrySink(ctx context.Context, cfg *config.Config, logg *logger.Logger) telemetry.Sink {
	if cfg.PubSub.TelemetryTopic == "" {
		if cfg.App.IsDev() {
			return telemetry.NewLogSink(logg)
		}
		return telemetry.NopSink{}
	}

	client, err := pubsub.New(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(ctx, "failed to create pubsub client, falling back to log sink", err)
		return telemetry.NewLogSink(logg)
	}

	sink, err := telemetry.NewPubSubSink(client, logg)
	if err != nil {
		logg.Error(ctx, "failed to create telemetry sink, falling back to log sink", err)
		return telemetry.NewLogSink(logg)
	}
	return sink
}
