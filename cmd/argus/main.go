package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/Argus/adapters/flashscore"
	"github.com/XavierBriggs/Argus/adapters/footballdata"
	"github.com/XavierBriggs/Argus/internal/api"
	"github.com/XavierBriggs/Argus/internal/cache"
	"github.com/XavierBriggs/Argus/internal/config"
	"github.com/XavierBriggs/Argus/internal/credentials"
	"github.com/XavierBriggs/Argus/internal/delta"
	"github.com/XavierBriggs/Argus/internal/fetcher"
	"github.com/XavierBriggs/Argus/internal/notifier"
	"github.com/XavierBriggs/Argus/internal/publisher"
	"github.com/XavierBriggs/Argus/internal/scheduler"
	"github.com/XavierBriggs/Argus/internal/store"
	"github.com/XavierBriggs/Argus/internal/ws"
	"github.com/XavierBriggs/Argus/pkg/contracts"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration (optional YAML file + environment overrides)
	cfg, err := config.Load(os.Getenv("ARGUS_CONFIG"))
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize Redis connection
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		fmt.Printf("❌ Failed to connect to Redis: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Connected to Redis")

	// Initialize bet store (Postgres when a DSN is configured, in-memory
	// otherwise)
	var betStore store.Store
	if cfg.Postgres.DSN != "" {
		pg, err := store.NewPostgres(cfg.Postgres.DSN)
		if err != nil {
			fmt.Printf("❌ Failed to connect to Postgres: %v\n", err)
			os.Exit(1)
		}
		betStore = pg
		fmt.Println("✓ Connected to Postgres bet store")
	} else {
		betStore = store.NewMemory()
		fmt.Println("⚠ No DATABASE_URL set - using in-memory bet store")
	}
	defer betStore.Close()

	// Initialize credential pools and providers in configured priority order
	fdPool := credentials.NewPool(cfg.Providers.FootballData.APIKeys)
	fsPool := credentials.NewPool(cfg.Providers.Flashscore.APIKeys)

	available := map[string]contracts.MatchProvider{
		"football-data": footballdata.NewClient(fdPool).
			WithBaseURL(cfg.Providers.FootballData.BaseURL),
		"flashscore": flashscore.NewClient(fsPool).
			WithBaseURL(cfg.Providers.Flashscore.BaseURL).
			WithActor(cfg.Providers.Flashscore.Actor),
	}

	var providers []contracts.MatchProvider
	for _, name := range cfg.Providers.Order {
		p, ok := available[name]
		if !ok {
			fmt.Printf("⚠ Unknown provider %q in config, skipping\n", name)
			continue
		}
		providers = append(providers, p)
	}
	if len(providers) == 0 {
		fmt.Println("❌ No providers configured")
		os.Exit(1)
	}

	fmt.Printf("✓ Initialized %d provider(s): %v\n", len(providers), cfg.Providers.Order)
	fmt.Printf("  football-data keys: %d, flashscore keys: %d\n", fdPool.Size(), fsPool.Size())

	// Initialize fetcher with its snapshot cache
	f := fetcher.New(providers, cache.NewStore(), fetcher.Options{
		LiveTTL:           cfg.Cache.LiveTTL,
		ScheduleTTL:       cfg.Cache.ScheduleTTL,
		RateLimitCooldown: cfg.Cache.RateLimitCooldown,
		ScheduleLookahead: cfg.Cache.ScheduleLookahead,
	})

	// Initialize notification dispatcher
	dispatcher := notifier.NewDispatcher()
	dispatcher.Register(notifier.ChannelWebhook, notifier.NewWebhookNotifier())
	if cfg.Telegram.BotToken != "" {
		tg, err := notifier.NewTelegramNotifier(cfg.Telegram.BotToken)
		if err != nil {
			fmt.Printf("❌ Failed to initialize Telegram notifier: %v\n", err)
			os.Exit(1)
		}
		dispatcher.Register(notifier.ChannelTelegram, tg)
		fmt.Println("✓ Telegram notifier enabled")
	} else {
		fmt.Println("⚠ No TELEGRAM_BOT_TOKEN set - telegram notifications disabled")
	}

	// Initialize pub/sub bus and change tracker
	bus := publisher.NewRedisBus(redisClient)
	tracker := delta.NewTracker(redisClient, 0)

	// Initialize and start the poll scheduler
	sched := scheduler.New(f, betStore, bus, dispatcher, tracker, cfg.Poller.Interval)
	sched.Start(ctx)
	fmt.Printf("✓ Argus started - polling live matches every %v\n", cfg.Poller.Interval)

	// Initialize WebSocket hub fed from Redis pub/sub
	hub := ws.NewHub(ctx)
	go hub.Run(ctx)
	go ws.NewSubscriber(redisClient, hub).Run(ctx)

	// Setup HTTP server
	handler := api.NewHandler(f, []api.ProviderPool{
		{Name: "football-data", Pool: fdPool},
		{Name: "flashscore", Pool: fsPool},
	})
	betHandler := api.NewBetHandler(betStore, f)
	router := api.NewRouter(api.RouterOptions{
		Handler:    handler,
		BetHandler: betHandler,
		WebSocket:  hub,
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		fmt.Printf("✓ HTTP server listening on %s\n", cfg.HTTP.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		fmt.Printf("❌ Server error: %v\n", err)
		os.Exit(1)

	case sig := <-shutdown:
		fmt.Printf("\n✓ Received signal %v, shutting down gracefully...\n", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("⚠ Graceful shutdown failed: %v\n", err)
			srv.Close()
		}

		sched.Stop()
		cancel()
	}

	fmt.Println("✓ Argus stopped")
}
