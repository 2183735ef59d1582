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

	"github.com/AyaOsaama/furniture-api/internal/config"
	"github.com/AyaOsaama/furniture-api/internal/handlers"
	"github.com/AyaOsaama/furniture-api/internal/relevance"
	"github.com/AyaOsaama/furniture-api/internal/repository"
	"github.com/AyaOsaama/furniture-api/internal/rollup"
	"github.com/AyaOsaama/furniture-api/internal/router"
	"github.com/AyaOsaama/furniture-api/internal/upload"
)

func main() {
	cfg := config.Load()

	mongoClient, err := repository.NewMongoConnection(repository.MongoConfig{
		URI:     cfg.MongoURI,
		DBName:  cfg.MongoDBName,
		Timeout: cfg.MongoTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB client...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Printf("Error disconnecting MongoDB client: %v", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDBName)

	productStore := repository.NewMongoProductStore(db)
	cartStore := repository.NewMongoCartStore(db)
	ratingStore := repository.NewMongoRatingStore(db)
	subcategoryStore := repository.NewMongoSubcategoryStore(db)
	wishlistStore := repository.NewMongoWishlistStore(db)
	orderStore := repository.NewMongoOrderStore(db)

	matcher := relevance.NewMatcher(productStore, subcategoryStore)
	recomputer := rollup.NewRecomputer(ratingStore, productStore)
	imageSaver := upload.NewSaver(cfg.UploadDir, cfg.UploadBaseURL)

	engine := router.New(router.Handlers{
		Cart:        handlers.NewCartHandler(cartStore, productStore),
		Product:     handlers.NewProductHandler(productStore, matcher, imageSaver),
		Rating:      handlers.NewRatingHandler(ratingStore, orderStore, recomputer),
		Wishlist:    handlers.NewWishlistHandler(wishlistStore, productStore),
		Subcategory: handlers.NewSubcategoryHandler(subcategoryStore),
		Order:       handlers.NewOrderHandler(orderStore, productStore),
	}, router.Options{
		JWTSecret:     cfg.JWTSecret,
		UploadDir:     cfg.UploadDir,
		UploadBaseURL: cfg.UploadBaseURL,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}

	go func() {
		log.Printf("Starting furniture API on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Server exiting")
}
