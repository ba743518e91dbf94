package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/bible-concord-api/internal/config"
	"github.com/bible-concord-api/internal/db"
	"github.com/bible-concord-api/internal/handlers"
	"github.com/bible-concord-api/internal/middleware"
	"github.com/bible-concord-api/internal/repository/sqlstore"
	"github.com/bible-concord-api/internal/services"
	"github.com/bible-concord-api/internal/textstore"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Get configuration
	cfg := config.GetConfig()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSMiddleware())

	// Initialize the database
	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	log.Println("Database initialization complete")

	// Flat-file store for raw book text
	texts, err := textstore.New(cfg.TextDir)
	if err != nil {
		log.Fatalf("Failed to initialize text store: %v", err)
	}

	// Create repositories
	d := db.Get()
	bookRepo := sqlstore.NewBookRepository(d)
	wordRepo := sqlstore.NewWordRepository(d)
	groupRepo := sqlstore.NewGroupRepository(d)
	phraseRepo := sqlstore.NewPhraseRepository(d)

	// Create services
	bookSvc := services.NewBookService(bookRepo, groupRepo, phraseRepo, texts)
	wordSvc := services.NewWordService(wordRepo, bookRepo, texts)
	groupSvc := services.NewGroupService(groupRepo, wordRepo)
	phraseSvc := services.NewPhraseService(phraseRepo)

	// Create API group with prefix
	api := e.Group(cfg.APIPrefix)

	// Register handlers
	handlers.NewHealthHandler().RegisterRoutes(api)
	handlers.NewBookHandler(bookSvc).RegisterRoutes(api)
	handlers.NewWordHandler(wordSvc).RegisterRoutes(api)
	handlers.NewGroupHandler(groupSvc).RegisterRoutes(api)
	handlers.NewPhraseHandler(phraseSvc).RegisterRoutes(api)

	// Root liveness and info endpoints
	e.GET("/ping", func(c echo.Context) error {
		return c.String(200, "pong")
	})
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"name":    cfg.APITitle,
			"version": cfg.APIVersion,
			"status":  "running",
		})
	})

	// Start server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Starting %s v%s on %s", cfg.APITitle, cfg.APIVersion, addr)
		if err := e.Start(addr); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	if err := db.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Println("Server stopped")
}
