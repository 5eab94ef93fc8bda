package app

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/internal/bundle"
	"github.com/Ishita-02/The-DeFi-App/internal/chain"
	"github.com/Ishita-02/The-DeFi-App/internal/leverage"
	"github.com/Ishita-02/The-DeFi-App/internal/quote"
	"github.com/Ishita-02/The-DeFi-App/internal/simulator"
	"github.com/Ishita-02/The-DeFi-App/internal/storage"
	"github.com/Ishita-02/The-DeFi-App/internal/submitter"
	"github.com/Ishita-02/The-DeFi-App/internal/tokens"
	"github.com/Ishita-02/The-DeFi-App/pkg/cache"
	"github.com/Ishita-02/The-DeFi-App/pkg/config"
	"github.com/Ishita-02/The-DeFi-App/pkg/healthprobe"
	"github.com/Ishita-02/The-DeFi-App/pkg/httpserver"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New()

	ethClient, err := ethclient.Dial(cfg.NodeRPCURL)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("dial node: %w", err)
	}

	tokenCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	registry, err := setupTokenRegistry(ethClient, tokenCache, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup token registry: %w", err)
	}

	premiumSource, err := setupPremiumSource(cfg, ethClient, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup premium source: %w", err)
	}

	encoder, err := bundle.NewEncoder(&bundle.EncoderConfig{
		PoolRouter: common.HexToAddress(cfg.PoolRouterAddress),
		Receiver:   common.HexToAddress(cfg.ReceiverAddress),
		Logger:     logger,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup encoder: %w", err)
	}

	txSubmitter, err := setupSubmitter(cfg, ethClient, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup submitter: %w", err)
	}

	sink, err := setupStorage(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	orchestrator := leverage.New(&leverage.OrchestratorConfig{
		Mode:            cfg.ExecutionMode,
		Topology:        cfg.Topology,
		Receiver:        common.HexToAddress(cfg.ReceiverAddress),
		GasLimit:        cfg.GasLimit,
		MetaTimeout:     cfg.DecimalsTimeout,
		QuoteTimeout:    cfg.QuoteTimeout,
		SimulateTimeout: cfg.SimulateTimeout,
		SubmitTimeout:   cfg.SubmitTimeout,
		Tokens:          registry,
		Quotes: quote.NewClient(&quote.Config{
			BaseURL:       cfg.AggregatorURL,
			APIKey:        cfg.AggregatorAPIKey,
			IntegratorPID: cfg.AggregatorPID,
			ChainID:       cfg.AggregatorChainID,
			Timeout:       cfg.QuoteTimeout,
			Logger:        logger,
		}),
		Premium: premiumSource,
		Encoder: encoder,
		Simulator: simulator.NewClient(&simulator.Config{
			BaseURL:   cfg.TenderlyAPIURL,
			AccessKey: cfg.TenderlyAccessKey,
			NetworkID: cfg.NetworkID,
			Timeout:   cfg.SimulateTimeout,
			Logger:    logger,
		}),
		Submitter: txSubmitter,
		Sink:      sink,
		Logger:    logger,
	})

	httpServer := httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Opener:        orchestrator,
		Tracer:        simulator.NewTraceClient(ethClient, logger),
	})

	var headWatcher *chain.HeadWatcher
	if cfg.NodeWSURL != "" {
		headWatcher = chain.NewHeadWatcher(cfg.NodeWSURL, logger)
	}

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		ethClient:     ethClient,
		tokenCache:    tokenCache,
		orchestrator:  orchestrator,
		sink:          sink,
		headWatcher:   headWatcher,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000, // 10x expected max items
		MaxCost:     1000,  // plenty for token metadata
		BufferItems: 64,
		Logger:      logger,
	})
}

func setupTokenRegistry(client *ethclient.Client, c cache.Cache, logger *zap.Logger) (*tokens.Registry, error) {
	fetcher, err := tokens.NewEthFetcher(client)
	if err != nil {
		return nil, err
	}

	return tokens.NewRegistry(fetcher, c, logger), nil
}

func setupPremiumSource(cfg *config.Config, client *ethclient.Client, logger *zap.Logger) (bundle.PremiumSource, error) {
	if cfg.PremiumSource == config.PremiumSourcePool {
		return bundle.NewPremiumFetcher(client, common.HexToAddress(cfg.PoolAddress), logger)
	}

	return bundle.NewStaticPremium(bundle.PremiumRate{
		Num: cfg.PremiumNum,
		Den: cfg.PremiumDen,
	}), nil
}

// setupSubmitter returns nil in simulate mode; the orchestrator never
// reaches the submitter then.
func setupSubmitter(cfg *config.Config, client *ethclient.Client, logger *zap.Logger) (leverage.Submitter, error) {
	if cfg.ExecutionMode != config.ModeSubmit {
		return nil, nil
	}

	return submitter.New(&submitter.Config{
		Client:      client,
		OperatorKey: cfg.OperatorKey,
		ChainID:     cfg.ChainID,
		GasLimit:    cfg.GasLimit,
		Logger:      logger,
	})
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.StorageMode == "postgres" {
		return storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
	}

	return storage.NewConsoleStorage(logger), nil
}
