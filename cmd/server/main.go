package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nft-backend/internal/app"
	"nft-backend/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "", "Path to config yaml (default config.yaml)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunServer(ctx, cfg, logger, ""); err != nil {
		logger.Fatalf("❌ Server exited: %v", err)
	}
}
