package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hostelhub/hostel-service/internal/app"
	"github.com/hostelhub/hostel-service/internal/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	runErr := application.Run(ctx)
	application.Close()
	if runErr != nil {
		log.Fatalf("Server stopped with error: %v", runErr)
	}
}
