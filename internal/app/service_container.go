package app

import (
	"context"
	"fmt"
	"math/big"

	"nft-backend/internal/clients"
	"nft-backend/internal/config"
	"nft-backend/internal/db"
	"nft-backend/internal/interfaces"
	"nft-backend/internal/models"
	"nft-backend/internal/repository"
	"nft-backend/internal/services"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// mappingStore recorder that can also list what it recorded
type mappingStore interface {
	services.MappingRecorder
	services.RecordIDSource
}

// ServiceContainer wires configuration into clients and services
type ServiceContainer struct {
	Config *config.Config

	// Database, nil when no DSN is configured
	DB               *gorm.DB
	TokenMappingRepo repository.TokenMappingRepository
	MintJobRepo      repository.MintJobRepository

	// Clients
	Contract     *clients.NFTContractClient
	ContentStore interfaces.ContentStore
	NATSClient   *clients.NATSClient

	// Services
	Publisher        *services.ContentPublisher
	Mappings         mappingStore
	BatchStore       services.BatchStore
	SubmissionWorker *services.SubmissionWorker
	MintService      *services.MintService
	History          *services.HistoryFetcher
	Gallery          *services.GalleryScanner
	JobUpdates       *services.JobUpdateHub

	closers []func()
}

// NewServiceContainer builds every component in dependency order
func NewServiceContainer(ctx context.Context, cfg *config.Config) (*ServiceContainer, error) {
	logrus.Info("🚀 Initializing Service Container...")
	c := &ServiceContainer{Config: cfg}

	// 1. Database
	if err := c.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 2. Clients
	if err := c.initClients(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize clients: %w", err)
	}

	// 3. Core services
	if err := c.initServices(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// 4. Event services (optional)
	c.initEventServices()

	logrus.Info("✅ Service Container initialized successfully")
	return c, nil
}

func (c *ServiceContainer) initDatabase() error {
	if c.Config.Database.DSN == "" {
		logrus.Warn("⚠️ database.dsn not set, mappings and batch reports are kept in memory")
		return nil
	}
	gormDB, err := db.InitDB(c.Config.Database)
	if err != nil {
		return err
	}
	c.DB = gormDB
	c.TokenMappingRepo = repository.NewTokenMappingRepository(gormDB)
	c.MintJobRepo = repository.NewMintJobRepository(gormDB)
	c.closers = append(c.closers, func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	logrus.Info("✅ Repositories initialized")
	return nil
}

func (c *ServiceContainer) initClients(ctx context.Context) error {
	contract, err := clients.NewNFTContractClient(ctx, c.Config.Blockchain)
	if err != nil {
		return err
	}
	c.Contract = contract

	switch c.Config.Storage.Backend {
	case config.StorageBackendPinata:
		c.ContentStore = clients.NewPinataClient(c.Config.Storage.Pinata)
	case config.StorageBackendGCS:
		store, err := clients.NewGCSContentStore(ctx, c.Config.Storage.GCS.Bucket, c.Config.Storage.GCS.Prefix)
		if err != nil {
			return err
		}
		c.ContentStore = store
		c.closers = append(c.closers, func() { _ = store.Close() })
	default:
		logrus.Warn("⚠️ Using in-memory content store, published content is lost on restart")
		c.ContentStore = clients.NewMemoryContentStore()
	}
	logrus.Infof("✅ Content store: %s", c.Config.Storage.Backend)
	return nil
}

func (c *ServiceContainer) initServices(ctx context.Context) error {
	cfg := c.Config

	chainID, err := c.chainID(ctx)
	if err != nil {
		return err
	}

	if c.DB != nil {
		c.Mappings = services.NewRepositoryMappingRecorder(c.TokenMappingRepo, chainID, c.Contract.Contract().Hex())
		c.BatchStore = services.NewRepositoryBatchStore(c.MintJobRepo)
	} else {
		c.Mappings = services.NewMemoryMappingRecorder()
		c.BatchStore = services.NewMemoryBatchStore()
	}

	allocator, err := services.NewRecordIDAllocator(cfg.Mint.RecordIDStrategy)
	if err != nil {
		return err
	}

	c.Publisher = services.NewContentPublisher(c.ContentStore)
	submitter := services.NewTransactionSubmitter(c.Contract, cfg.Blockchain.GasMultiplierPercent)
	c.SubmissionWorker = services.NewSubmissionWorker(submitter, newPacer(cfg.Mint))
	c.closers = append(c.closers, c.SubmissionWorker.Stop)

	opts := services.MintServiceOptions{UploadConcurrency: cfg.Mint.UploadConcurrency}
	if cfg.Blockchain.ChainID > 0 {
		opts.ExpectedChainID = big.NewInt(cfg.Blockchain.ChainID)
	}
	c.MintService = services.NewMintService(c.Contract, c.Publisher, c.SubmissionWorker, allocator, c.Mappings, c.BatchStore, opts)
	// mint service goes first so batches finish before the worker stops
	c.closers = append(c.closers, c.MintService.Close)

	c.JobUpdates = services.NewJobUpdateHub()
	c.MintService.AddObserver(c.JobUpdates)

	var source interfaces.TransferSource = c.Contract
	if cfg.History.Source == config.HistorySourceEtherscan {
		source = clients.NewEtherscanClient(cfg.History.Etherscan)
	}
	c.History = services.NewHistoryFetcher(source, c.Contract.Contract(), cfg.History.CacheTTL())

	// new mints change ownership history
	c.MintService.AddObserver(services.JobObserverFunc(func(update models.JobUpdate) {
		if update.Job.State == models.JobStateConfirmed {
			c.History.Invalidate()
		}
	}))

	c.Gallery = services.NewGalleryScanner(c.Contract, c.Publisher, c.History, services.GalleryOptions{
		MaxConsecutiveFailures: uint64(cfg.Gallery.MaxConsecutiveFailures),
		MaxAttempts:            uint64(cfg.Gallery.MaxAttempts),
		FastPathConcurrency:    cfg.Gallery.FastPathConcurrency,
		StartID:                cfg.Gallery.StartID,
	}).WithMappings(c.Mappings)
	if cfg.Mint.RecordIDStrategy == config.RecordIDStrategyUUID {
		c.Gallery.WithKnownIDs(c.Mappings)
	}

	logrus.Infof("✅ Core services initialized (chain %s, record ids %s, history %s)", chainID, cfg.Mint.RecordIDStrategy, cfg.History.Source)
	return nil
}

// initEventServices NATS is optional; a failed connection is logged and skipped
func (c *ServiceContainer) initEventServices() {
	if c.Config.NATS.URL == "" {
		logrus.Info("NATS not configured, skipping job update events")
		return
	}
	natsClient, err := clients.NewNATSClient(c.Config.NATS)
	if err != nil {
		logrus.Warnf("⚠️ Event services initialization skipped: %v", err)
		return
	}
	c.NATSClient = natsClient
	c.MintService.AddObserver(services.EventPublisherObserver{Publisher: natsClient})
	c.closers = append(c.closers, natsClient.Close)
	logrus.Info("✅ NATS job update events enabled")
}

func newPacer(cfg config.MintConfig) services.PacingPolicy {
	if cfg.PacingBurst > 0 {
		return services.NewRateLimitPacer(cfg.PacingInterval(), cfg.PacingBurst)
	}
	return services.NewIntervalPacer(cfg.PacingInterval())
}

func (c *ServiceContainer) chainID(ctx context.Context) (*big.Int, error) {
	if c.Config.Blockchain.ChainID > 0 {
		return big.NewInt(c.Config.Blockchain.ChainID), nil
	}
	return c.Contract.ChainID(ctx)
}

// Close releases resources in reverse construction order
func (c *ServiceContainer) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
