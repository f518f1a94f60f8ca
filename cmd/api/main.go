package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sudanchapagain/okhati-backend/internal/auth"
	"github.com/sudanchapagain/okhati-backend/internal/catalog"
	"github.com/sudanchapagain/okhati-backend/internal/checkout"
	"github.com/sudanchapagain/okhati-backend/internal/config"
	"github.com/sudanchapagain/okhati-backend/internal/httpx"
	kafkax "github.com/sudanchapagain/okhati-backend/internal/kafka"
	"github.com/sudanchapagain/okhati-backend/internal/khalti"
	"github.com/sudanchapagain/okhati-backend/internal/orders"
	"github.com/sudanchapagain/okhati-backend/internal/postgres"
	"github.com/sudanchapagain/okhati-backend/internal/redisx"
	"github.com/sudanchapagain/okhati-backend/internal/supabase"
	"github.com/sudanchapagain/okhati-backend/internal/users"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	prod.Start(ctx)

	// Repos & services
	userRepo := &users.Repo{DB: db}
	catalogRepo := &catalog.Repo{DB: db}
	orderStore := &orders.Store{DB: db}

	tokens := auth.Tokens{Secret: []byte(cfg.JWTSecret)}
	authn := &httpx.Authenticator{Tokens: tokens, Users: userRepo}

	gateway := khalti.NewClient(khalti.Config{
		BaseURL:   cfg.KhaltiBaseURL,
		SecretKey: cfg.KhaltiSecretKey,
	})
	storage := supabase.NewClient(supabase.Config{
		URL:        cfg.SupabaseURL,
		ServiceKey: cfg.SupabaseServiceKey,
	})
	checkoutSvc := &checkout.Service{
		Gateway:       gateway,
		Store:         orderStore,
		Producer:      prod,
		PublicBaseURL: cfg.PublicBaseURL,
		ServiceName:   cfg.ServiceName,
	}

	// Router & handlers
	router := httpx.NewRouter(cfg.CORSOrigins)
	(&httpx.AuthHandler{Repo: userRepo, Tokens: tokens}).Register(router)
	(&httpx.UsersHandler{Repo: userRepo, Auth: authn}).Register(router)
	(&httpx.ProductsHandler{Repo: catalogRepo, Redis: rdb, Auth: authn}).Register(router)
	(&httpx.ReviewsHandler{Repo: catalogRepo, Auth: authn}).Register(router)
	(&httpx.OrdersHandler{Store: orderStore, Redis: rdb, Auth: authn}).Register(router)
	(&httpx.PaymentsHandler{Checkout: checkoutSvc, Gateway: gateway, Auth: authn}).Register(router)
	(&httpx.UploadsHandler{Storage: storage, Auth: authn}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox, flush and close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
