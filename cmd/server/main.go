package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"masterboxer.com/confessly/auth"
	"masterboxer.com/confessly/cache"
	"masterboxer.com/confessly/config"
	"masterboxer.com/confessly/database"
	"masterboxer.com/confessly/events"
	"masterboxer.com/confessly/gateway"
	"masterboxer.com/confessly/handlers"
	"masterboxer.com/confessly/preferences"
	"masterboxer.com/confessly/ratelimit"
	"masterboxer.com/confessly/routes"
	"masterboxer.com/confessly/services"
	"masterboxer.com/confessly/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Server: config load failed:", err)
	}

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatal("Server: tracing init failed:", err)
	}
	defer shutdownTracing(context.Background())

	var (
		gw     gateway.Gateway
		pinger handlers.Pinger
	)
	switch cfg.Storage.Type {
	case "memory":
		log.Println("[Gateway] Using in-memory storage")
		gw = gateway.NewMemory()
	case "postgres":
		db, err := database.ConnectDB(cfg.Storage.DatabaseURL)
		if err != nil {
			log.Fatal("Server: DB connection failed:", err)
		}
		defer db.Close()

		if cfg.Storage.AutoMigrate {
			if err := gateway.Migrate(db); err != nil {
				log.Fatal("Server: migration failed:", err)
			}
		}
		gw = gateway.NewPostgres(db)
		pinger = db
	default:
		log.Fatalf("Server: unknown storage type %q", cfg.Storage.Type)
	}

	rdb, err := database.OpenRedis(cfg.Redis)
	if err != nil {
		log.Fatal("Server: Redis connection failed:", err)
	}
	var kv preferences.KV = preferences.NewMemoryKV()
	if rdb != nil {
		defer rdb.Close()
		kv = preferences.NewRedisKV(rdb)
	} else {
		log.Println("[Preferences] No Redis configured, preferences kept in memory")
	}

	var alerts services.Alerter = services.NoopAlerter{}
	if cfg.Firebase.CredentialsPath != "" {
		if err := services.InitFirebase(cfg.Firebase.CredentialsPath); err != nil {
			log.Printf("Server: Firebase init failed, moderation alerts disabled: %v", err)
		} else if a, err := services.NewTopicAlerter(cfg.Firebase.Topic); err != nil {
			log.Printf("Server: moderation alerts disabled: %v", err)
		} else {
			alerts = a
		}
	}

	publisher := events.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer publisher.Close()

	queryCache := cache.New(cache.Options{StaleTime: cfg.Cache.StaleTime})
	prefs := preferences.NewStore(kv)
	svc := services.NewConfessionService(gw, queryCache, prefs, publisher, alerts)
	authn := auth.New(cfg.Admin)
	limiter := ratelimit.New(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window)

	router := mux.NewRouter()
	routes.CreateConfessionRoutes(svc, authn, limiter, router)
	routes.CreatePreferenceRoutes(svc, router)
	routes.CreateAdminRoutes(svc, authn, router)
	router.HandleFunc("/health", handlers.Health(pinger)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	go sweepCache(ctx, queryCache, cfg.Cache.SweepEvery, cfg.Cache.MaxAge)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           otelhttp.NewHandler(router, "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		log.Printf("🚀 Confessly listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server: listen failed:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server: shutdown error: %v", err)
	}
}

func sweepCache(ctx context.Context, c *cache.Cache, every, maxAge time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Sweep(maxAge); n > 0 {
				log.Printf("[Cache] Swept %d idle entries", n)
			}
		}
	}
}
