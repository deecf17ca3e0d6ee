package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/handlers"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/repository"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/service"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/common/config"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/common/middleware"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Assembler Service
// ============================================================

func main() {
	cfg, err := config.LoadAll()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	opts, err := service.OptionsFromConfig(cfg)
	if err != nil {
		log.Fatalf("assembly options: %v", err)
	}

	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background()); err != nil {
		log.Fatalf("init db: %v", err)
	}

	library := service.NewLibrary(repo, opts.DefaultViewBox)
	sessionTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	sessions := service.NewSessionManager(opts,
		service.WithMaxSessions(cfg.MaxSessions),
		service.WithIdleTTL(sessionTTL),
	)
	defer sessions.Shutdown()

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sessions.RunSweeper(sweepCtx, time.Minute)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Assembler Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.AllowOrigins))

	// ============================================================
	// Routes
	// ============================================================

	handlers.Register(app, handlers.Deps{
		Sessions: sessions,
		Library:  library,
		DB:       repo,
	})

	// ============================================================
	// Server Start
	// ============================================================

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Printf("Shutting down Assembler Service")
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Assembler Service on %s (env: %s)", addr, cfg.Environment)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
