package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"nft-backend/internal/config"
	"nft-backend/internal/handlers"
	"nft-backend/internal/utils"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "", "Path to config yaml")
	address := flag.String("address", "0x742d35Cc6634C0532925a3b0F26750C66d78EB66", "Wallet address to issue the token for")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Auth.JWTSecret == "" {
		fmt.Println("auth.jwtSecret is empty, mint routes are open and no token is needed")
		os.Exit(1)
	}

	userAddress, err := utils.NormalizeEvmAddress(*address)
	if err != nil {
		fmt.Printf("Invalid address: %v\n", err)
		os.Exit(1)
	}

	tokenString, err := handlers.GenerateJWTToken([]byte(cfg.Auth.JWTSecret), userAddress, cfg.Blockchain.ChainID, *ttl)
	if err != nil {
		fmt.Printf("Error generating token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("============================================================")
	fmt.Println("JWT Token Generated for Testing")
	fmt.Println("============================================================")
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(tokenString)
	fmt.Println()
	fmt.Println("Claims:")
	fmt.Printf("  Address: %s\n", userAddress)
	fmt.Printf("  Chain ID: %d\n", cfg.Blockchain.ChainID)
	fmt.Printf("  Expires: %s\n", time.Now().Add(*ttl).Format(time.RFC3339))
	fmt.Println()
	fmt.Println("============================================================")
	fmt.Println("Usage:")
	fmt.Println("============================================================")
	fmt.Println()
	fmt.Printf("curl -H 'Authorization: Bearer %s' -F files=@asset.png http://localhost:%d/api/mint\n", tokenString, cfg.Server.Port)
	fmt.Println()
}
