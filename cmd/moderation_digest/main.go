package main

import (
	"context"
	"log"
	"time"

	"masterboxer.com/confessly/cache"
	"masterboxer.com/confessly/config"
	"masterboxer.com/confessly/database"
	"masterboxer.com/confessly/events"
	"masterboxer.com/confessly/gateway"
	"masterboxer.com/confessly/preferences"
	"masterboxer.com/confessly/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("ModerationDigest: config load failed:", err)
	}
	if cfg.Firebase.CredentialsPath == "" {
		log.Fatal("FIREBASE_CREDENTIALS_PATH not set")
	}
	if cfg.Storage.Type != "postgres" {
		log.Fatal("ModerationDigest: requires postgres storage")
	}

	if err := services.InitFirebase(cfg.Firebase.CredentialsPath); err != nil {
		log.Printf("ModerationDigest: Firebase init failed: %v", err)
	}
	alerts, err := services.NewTopicAlerter(cfg.Firebase.Topic)
	if err != nil {
		log.Fatal("ModerationDigest: messaging unavailable:", err)
	}

	db, err := database.ConnectDB(cfg.Storage.DatabaseURL)
	if err != nil {
		log.Fatal("ModerationDigest: DB connection failed:", err)
	}
	defer db.Close()

	svc := services.NewConfessionService(
		gateway.NewPostgres(db),
		cache.New(cache.Options{}),
		preferences.NewStore(preferences.NewMemoryKV()),
		events.Noop{},
		alerts,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	log.Println("🛡️ Running moderation digest job")
	n, err := svc.SendModerationDigest(ctx)
	if err != nil {
		log.Fatal("ModerationDigest: failed:", err)
	}
	log.Printf("✅ Moderation digest job finished (%d flagged)", n)
}
