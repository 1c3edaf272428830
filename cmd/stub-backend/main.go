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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/KH-Co/Bari-Foods/internal/config"
	"github.com/KH-Co/Bari-Foods/internal/domain"
	"github.com/KH-Co/Bari-Foods/internal/stub"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	fees, err := cfg.Pricing()
	if err != nil {
		log.Fatalf("invalid fee config: %v", err)
	}

	store := stub.NewStore()
	store.SeedProducts(seedCatalog())
	server := stub.NewServer(store, fees, []byte(cfg.JWTKey))

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	r.Mount("/", server.Router())

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("stub backend starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

func seedCatalog() ([]domain.Product, []domain.FeaturedProduct) {
	price := decimal.RequireFromString
	products := []domain.Product{
		{ID: 1, Name: "Wild Honey", Description: "Raw honey from the Nilgiris", Price: price("349.00"), Weight: "500 g", Stock: 24, Tag: "bestseller", Rating: 4.6},
		{ID: 2, Name: "Cold Pressed Coconut Oil", Description: "Single origin, wood pressed", Price: price("250.00"), Weight: "1 l", Stock: 18, Rating: 4.4},
		{ID: 3, Name: "Turmeric Powder", Description: "Lakadong turmeric, high curcumin", Price: price("89.00"), Weight: "200 g", Stock: 60, Tag: "bestseller", Rating: 4.8},
		{ID: 4, Name: "Organic Jaggery", Description: "Chemical free cane jaggery", Price: price("120.00"), Weight: "1 kg", Stock: 40, Rating: 4.2},
		{ID: 5, Name: "Black Pepper", Description: "Tellicherry bold peppercorns", Price: price("210.00"), Weight: "250 g", Stock: 32, Rating: 4.5},
	}
	featured := []domain.FeaturedProduct{
		{ID: 1, Product: products[0], IsActive: true},
		{ID: 2, Product: products[2], IsActive: true},
	}
	return products, featured
}
