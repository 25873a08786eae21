package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"onechart-be/internal/bootstrap"
	"onechart-be/internal/config"
	"onechart-be/internal/server"
	"onechart-be/internal/tracer"
	"onechart-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment != "production")
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if n, err := container.ProcessingService.RecoverInterrupted(ctx); err != nil {
		log.Printf("Startup: failed to settle interrupted sessions: %v", err)
	} else if n > 0 {
		log.Printf("Startup: settled %d interrupted sessions as drafts", n)
	}

	go container.WebSocketHub.Run(ctx)

	log.Println("Background: Starting Consumer Service...")
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	container.EventAuditService.Start(ctx)

	if cfg.Retention.Enabled {
		log.Printf("Background: Retention sweep every %s", cfg.Retention.Interval)
		go container.RetentionService.Run(ctx, cfg.Retention.Interval)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		_ = srv.Shutdown()
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	container.Close(shutdownCtx)
}
