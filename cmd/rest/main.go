package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voice-intake-be/internal/bootstrap"
	"voice-intake-be/internal/config"
	"voice-intake-be/internal/server"
	"voice-intake-be/internal/tracer"
	"voice-intake-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.Init(cfg.Otel)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 5. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 6. Initialize Server
	srv := server.New(cfg, container)

	// 7. Run Server; shut down on SIGINT/SIGTERM after draining calls
	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received, draining in-flight calls...")

	drainCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Voice.DrainTimeoutSeconds)*time.Second)
	defer cancel()
	if err := container.VoiceHandler.Drain(drainCtx); err != nil {
		log.Printf("Drain incomplete: %v", err)
	}

	if err := srv.Shutdown(); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if container.NatsPub != nil {
		container.NatsPub.Close()
	}
	log.Println("Shutdown complete")
}
