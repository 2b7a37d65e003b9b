package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config application configuration structure
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	NATS       NATSConfig       `yaml:"nats"`
	Blockchain BlockchainConfig `yaml:"blockchain"`
	Storage    StorageConfig    `yaml:"storage"`
	History    HistoryConfig    `yaml:"history"`
	Mint       MintConfig       `yaml:"mint"`
	Gallery    GalleryConfig    `yaml:"gallery"`
	Auth       AuthConfig       `yaml:"auth"`
	CORS       CORSConfig       `yaml:"cors"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LogConfig logrus level and formatter
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// DatabaseConfig Database configuration
type DatabaseConfig struct {
	DSN string `yaml:"dsn"` // empty = in-memory stores
}

// NATSConfig NATS message server configuration
type NATSConfig struct {
	URL           string `yaml:"url"`
	Timeout       int    `yaml:"timeout"` // seconds
	SubjectPrefix string `yaml:"subjectPrefix"`
}

// BlockchainConfig chain, contract and signer
type BlockchainConfig struct {
	ChainID              int64    `yaml:"chainId"`
	RPCEndpoints         []string `yaml:"rpcEndpoints"`
	ContractAddress      string   `yaml:"contractAddress"`
	PrivateKey           string   `yaml:"privateKey"` // hex, with or without 0x
	GasPrice             string   `yaml:"gasPrice"`   // wei, empty = suggested price
	GasMultiplierPercent uint64   `yaml:"gasMultiplierPercent"`
	ConfirmationTimeout  int      `yaml:"confirmationTimeout"` // seconds
	PollInterval         int      `yaml:"pollInterval"`        // milliseconds
	DeploymentBlock      uint64   `yaml:"deploymentBlock"`
}

// StorageConfig content-addressed storage backend
type StorageConfig struct {
	Backend string       `yaml:"backend"` // pinata, gcs, memory
	Pinata  PinataConfig `yaml:"pinata"`
	GCS     GCSConfig    `yaml:"gcs"`
}

// PinataConfig IPFS pinning service
type PinataConfig struct {
	JWT        string `yaml:"jwt"`
	APIURL     string `yaml:"apiUrl"`
	GatewayURL string `yaml:"gatewayUrl"`
	Timeout    int    `yaml:"timeout"` // seconds
}

// GCSConfig bucket used as a content-addressed store
type GCSConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// HistoryConfig transfer history source
type HistoryConfig struct {
	Source          string          `yaml:"source"` // etherscan or logs
	Etherscan       EtherscanConfig `yaml:"etherscan"`
	CacheTTLSeconds int             `yaml:"cacheTtlSeconds"`
}

// EtherscanConfig explorer API
type EtherscanConfig struct {
	APIURL  string `yaml:"apiUrl"`
	APIKey  string `yaml:"apiKey"`
	Timeout int    `yaml:"timeout"` // seconds
}

// MintConfig minting orchestrator
type MintConfig struct {
	RecordIDStrategy  string `yaml:"recordIdStrategy"` // ledger or uuid
	PacingIntervalMs  int    `yaml:"pacingIntervalMs"`
	PacingBurst       int    `yaml:"pacingBurst"` // 1 switches to a token bucket; 0 = fixed interval
	UploadConcurrency int    `yaml:"uploadConcurrency"`
}

// GalleryConfig gallery scan bounds
type GalleryConfig struct {
	MaxConsecutiveFailures int    `yaml:"maxConsecutiveFailures"`
	MaxAttempts            int    `yaml:"maxAttempts"`
	FastPathConcurrency    int    `yaml:"fastPathConcurrency"`
	StartID                uint64 `yaml:"startId"`
}

// AuthConfig API authentication
type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret"` // empty = mint routes are open
}

// CORSConfig CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowedOrigins"`
	AllowCredentials bool     `yaml:"allowCredentials"`
	MaxAge           int      `yaml:"maxAge"` // seconds
}

const (
	StorageBackendPinata = "pinata"
	StorageBackendGCS    = "gcs"
	StorageBackendMemory = "memory"

	HistorySourceEtherscan = "etherscan"
	HistorySourceLogs      = "logs"

	RecordIDStrategyLedger = "ledger"
	RecordIDStrategyUUID   = "uuid"
)

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig reads the yaml file, applies environment overrides and defaults.
// An empty path means config.yaml, or config.local.yaml when it exists.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
		if _, err := os.Stat("config.local.yaml"); err == nil {
			configPath = "config.local.yaml"
			log.Printf("🔧 Using local configuration file: config.local.yaml")
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Printf("📋 [Config] Loaded %s: chainId=%d, storage=%s, history=%s, recordIdStrategy=%s",
		configPath, cfg.Blockchain.ChainID, cfg.Storage.Backend, cfg.History.Source, cfg.Mint.RecordIDStrategy)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.NATS.Timeout == 0 {
		cfg.NATS.Timeout = 5
	}
	if cfg.NATS.SubjectPrefix == "" {
		cfg.NATS.SubjectPrefix = "nft"
	}
	if cfg.Blockchain.GasMultiplierPercent == 0 {
		cfg.Blockchain.GasMultiplierPercent = 120
	}
	if cfg.Blockchain.ConfirmationTimeout == 0 {
		cfg.Blockchain.ConfirmationTimeout = 300
	}
	if cfg.Blockchain.PollInterval == 0 {
		cfg.Blockchain.PollInterval = 2000
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = StorageBackendPinata
	}
	if cfg.Storage.Pinata.APIURL == "" {
		cfg.Storage.Pinata.APIURL = "https://api.pinata.cloud"
	}
	if cfg.Storage.Pinata.GatewayURL == "" {
		cfg.Storage.Pinata.GatewayURL = "https://ipfs.io"
	}
	if cfg.Storage.Pinata.Timeout == 0 {
		cfg.Storage.Pinata.Timeout = 60
	}
	if cfg.History.Source == "" {
		cfg.History.Source = HistorySourceEtherscan
	}
	if cfg.History.Etherscan.APIURL == "" {
		cfg.History.Etherscan.APIURL = "https://api.etherscan.io/api"
	}
	if cfg.History.Etherscan.Timeout == 0 {
		cfg.History.Etherscan.Timeout = 15
	}
	if cfg.History.CacheTTLSeconds == 0 {
		cfg.History.CacheTTLSeconds = 30
	}
	if cfg.Mint.RecordIDStrategy == "" {
		cfg.Mint.RecordIDStrategy = RecordIDStrategyLedger
	}
	if cfg.Mint.PacingIntervalMs == 0 {
		cfg.Mint.PacingIntervalMs = 2000
	}
	if cfg.Mint.UploadConcurrency == 0 {
		cfg.Mint.UploadConcurrency = 4
	}
	if cfg.Gallery.MaxConsecutiveFailures == 0 {
		cfg.Gallery.MaxConsecutiveFailures = 100
	}
	if cfg.Gallery.MaxAttempts == 0 {
		cfg.Gallery.MaxAttempts = 1000
	}
	if cfg.Gallery.FastPathConcurrency == 0 {
		cfg.Gallery.FastPathConcurrency = 8
	}
	if cfg.Gallery.StartID == 0 {
		cfg.Gallery.StartID = 1
	}
}

// Validate rejects values the services cannot run with
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageBackendPinata, StorageBackendGCS, StorageBackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == StorageBackendGCS && c.Storage.GCS.Bucket == "" {
		return fmt.Errorf("storage.gcs.bucket is required for the gcs backend")
	}
	switch c.History.Source {
	case HistorySourceEtherscan, HistorySourceLogs:
	default:
		return fmt.Errorf("unknown history source %q", c.History.Source)
	}
	switch c.Mint.RecordIDStrategy {
	case RecordIDStrategyLedger, RecordIDStrategyUUID:
	default:
		return fmt.Errorf("unknown record id strategy %q", c.Mint.RecordIDStrategy)
	}
	if c.Blockchain.GasMultiplierPercent < 100 {
		return fmt.Errorf("blockchain.gasMultiplierPercent must be >= 100, got %d", c.Blockchain.GasMultiplierPercent)
	}
	if c.Mint.PacingIntervalMs < 0 {
		return fmt.Errorf("mint.pacingIntervalMs must not be negative")
	}
	// a burst above 1 would let submissions go out back to back
	if c.Mint.PacingBurst < 0 || c.Mint.PacingBurst > 1 {
		return fmt.Errorf("mint.pacingBurst must be 0 or 1, got %d", c.Mint.PacingBurst)
	}
	return nil
}

// overrideFromEnv Override configuration from environment
func overrideFromEnv(config *Config) {
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}

	// server configuration
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Log.Format = format
	}

	// NATS
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		config.NATS.URL = natsURL
	}
	if natsTimeout := os.Getenv("NATS_TIMEOUT"); natsTimeout != "" {
		if t, err := strconv.Atoi(natsTimeout); err == nil {
			config.NATS.Timeout = t
		}
	}

	// Blockchain
	if chainID := os.Getenv("CHAIN_ID"); chainID != "" {
		if id, err := strconv.ParseInt(chainID, 10, 64); err == nil {
			config.Blockchain.ChainID = id
		}
	}
	if rpc := os.Getenv("RPC_ENDPOINTS"); rpc != "" {
		config.Blockchain.RPCEndpoints = splitList(rpc)
	}
	if contract := os.Getenv("CONTRACT_ADDRESS"); contract != "" {
		config.Blockchain.ContractAddress = contract
	}
	if key := os.Getenv("PRIVATE_KEY"); key != "" {
		config.Blockchain.PrivateKey = key
	}

	// Storage
	if backend := os.Getenv("STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}
	if jwt := os.Getenv("PINATA_JWT"); jwt != "" {
		config.Storage.Pinata.JWT = jwt
	}
	if gateway := os.Getenv("IPFS_GATEWAY_URL"); gateway != "" {
		config.Storage.Pinata.GatewayURL = gateway
	}
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		config.Storage.GCS.Bucket = bucket
	}

	// History
	if apiKey := os.Getenv("ETHERSCAN_API_KEY"); apiKey != "" {
		config.History.Etherscan.APIKey = apiKey
	}
	if apiURL := os.Getenv("ETHERSCAN_API_URL"); apiURL != "" {
		config.History.Etherscan.APIURL = apiURL
	}

	if strategy := os.Getenv("RECORD_ID_STRATEGY"); strategy != "" {
		config.Mint.RecordIDStrategy = strategy
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		config.CORS.AllowedOrigins = splitList(origins)
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Addr host:port for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *BlockchainConfig) ConfirmationTimeoutDuration() time.Duration {
	return time.Duration(c.ConfirmationTimeout) * time.Second
}

func (c *BlockchainConfig) PollIntervalDuration() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

func (c *MintConfig) PacingInterval() time.Duration {
	return time.Duration(c.PacingIntervalMs) * time.Millisecond
}

func (c *HistoryConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c *NATSConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
