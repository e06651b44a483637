package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"masterboxer.com/confessly/config"
)

const (
	connectAttempts = 8
	connectBackoff  = 2 * time.Second
)

func ConnectDB(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(40)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	var last error
	for i := 1; i <= connectAttempts; i++ {
		if last = pingWithTimeout(db, 2*time.Second); last == nil {
			log.Println("[DB] Connected to Postgres")
			return db, nil
		}
		log.Printf("[DB] Ping attempt %d/%d failed: %v", i, connectAttempts, last)
		time.Sleep(connectBackoff)
	}

	db.Close()
	return nil, fmt.Errorf("postgres unreachable after %d attempts: %w", connectAttempts, last)
}

func pingWithTimeout(db *sql.DB, d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return db.PingContext(ctx)
}

// OpenRedis returns nil when no address is configured.
func OpenRedis(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	log.Printf("[Redis] Connected to %s", cfg.Addr)
	return rdb, nil
}
