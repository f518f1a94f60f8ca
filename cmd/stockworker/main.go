package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sudanchapagain/okhati-backend/internal/catalog"
	"github.com/sudanchapagain/okhati-backend/internal/config"
	kafkax "github.com/sudanchapagain/okhati-backend/internal/kafka"
	"github.com/sudanchapagain/okhati-backend/internal/orders"
	"github.com/sudanchapagain/okhati-backend/internal/postgres"
	"github.com/sudanchapagain/okhati-backend/internal/redisx"
	"github.com/sudanchapagain/okhati-backend/internal/stock"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &stock.Service{
		Catalog:     &catalog.Repo{DB: db},
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-stock",
	}

	group := getenv("STOCK_GROUP", "stock-worker")
	workers := mustAtoi(os.Getenv("STOCK_WORKERS"), "8")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderPlaced, workers)

	go func() {
		log.Printf("stock consumer started: group=%s topic=%s workers=%d", group, orders.TopicOrderPlaced, workers)
		if err := cons.Start(ctx, svc.HandleOrderPlaced); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
