// Package main provides the main entry point for the NutriSmart planner API server
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/nutrismart/planner/internal/infrastructure/container"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	flag.Parse()

	app := fx.New(
		fx.NopLogger, // zap is provided by the container
		fx.Supply(container.ConfigPath(*configPath)),
		container.Module,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// fx.Shutdowner signals Done when the server fails
	select {
	case <-ctx.Done():
	case sig := <-app.Done():
		fmt.Printf("Received %s\n", sig)
	}

	fmt.Println("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		log.Fatalf("Failed to stop application gracefully: %v", err)
	}
}
