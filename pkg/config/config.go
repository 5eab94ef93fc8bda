package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Topology selects which execution topology the orchestrator builds for.
// The two modes carry different trust models and must never be merged
// silently; the mode is chosen once at startup.
const (
	// TopologyReceiver routes swap proceeds to the flash-loan receiver
	// contract, which executes the bundle itself. The user signs one call
	// to the receiver.
	TopologyReceiver = "receiver"
	// TopologyDirect routes swap proceeds straight to the user address
	// (self-custodied multicall variant).
	TopologyDirect = "direct"
)

// Execution modes.
const (
	ModeSimulate = "simulate"
	ModeSubmit   = "submit"
)

// Premium rate sources.
const (
	PremiumSourceConfig = "config"
	PremiumSourcePool   = "pool"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Chain access
	NodeRPCURL  string
	NodeWSURL   string
	ChainID     int64  // numeric chain id for signing
	NetworkID   string // network id the simulator expects ("1" for mainnet)
	GasLimit    uint64 // outer transaction gas budget
	OperatorKey string // hex private key, submit mode only

	// Contracts
	PoolRouterAddress string // lending pool router (supply/borrow)
	PoolAddress       string // lending pool (premium lookup)
	ReceiverAddress   string // flash-loan receiver contract

	// Swap aggregator
	AggregatorURL     string
	AggregatorAPIKey  string
	AggregatorPID     string // integrator id sent as uniquePID
	AggregatorChainID string // chain identifier the aggregator expects

	// Simulator
	TenderlyAPIURL    string
	TenderlyAccessKey string

	// Orchestration
	Topology      string
	ExecutionMode string
	PremiumSource string
	PremiumNum    uint64 // premium rate numerator
	PremiumDen    uint64 // premium rate denominator

	// Timeouts
	QuoteTimeout    time.Duration
	SimulateTimeout time.Duration
	SubmitTimeout   time.Duration
	DecimalsTimeout time.Duration

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "3000"),

		// Chain access
		NodeRPCURL:  os.Getenv("NODE_API"),
		NodeWSURL:   os.Getenv("NODE_WS_API"),
		ChainID:     getInt64OrDefault("CHAIN_ID", 1),
		NetworkID:   getEnvOrDefault("NETWORK_ID", "1"),
		GasLimit:    getUint64OrDefault("GAS_LIMIT", 8_000_000),
		OperatorKey: os.Getenv("OPERATOR_PRIVATE_KEY"),

		// Contracts
		PoolRouterAddress: os.Getenv("POOL_ROUTER_ADDRESS"),
		PoolAddress:       os.Getenv("POOL_ADDRESS"),
		ReceiverAddress:   os.Getenv("FLASHLOAN_RECEIVER_ADDRESS"),

		// Aggregator
		AggregatorURL:     os.Getenv("ROUTER_URL"),
		AggregatorAPIKey:  os.Getenv("ROUTER_API_KEY"),
		AggregatorPID:     os.Getenv("ROUTER_INTEGRATOR_PID"),
		AggregatorChainID: getEnvOrDefault("ROUTER_CHAIN_ID", "ethereum"),

		// Simulator
		TenderlyAPIURL:    os.Getenv("TENDERLY_API_URL"),
		TenderlyAccessKey: os.Getenv("TENDERLY_ACCESS_KEY"),

		// Orchestration defaults
		Topology:      getEnvOrDefault("TOPOLOGY", TopologyReceiver),
		ExecutionMode: getEnvOrDefault("EXECUTION_MODE", ModeSimulate),
		PremiumSource: getEnvOrDefault("PREMIUM_SOURCE", PremiumSourceConfig),
		PremiumNum:    getUint64OrDefault("PREMIUM_RATE_NUMERATOR", 5),
		PremiumDen:    getUint64OrDefault("PREMIUM_RATE_DENOMINATOR", 10_000),

		// Timeout defaults
		QuoteTimeout:    getDurationOrDefault("QUOTE_TIMEOUT", 15*time.Second),
		SimulateTimeout: getDurationOrDefault("SIMULATE_TIMEOUT", 30*time.Second),
		SubmitTimeout:   getDurationOrDefault("SUBMIT_TIMEOUT", 60*time.Second),
		DecimalsTimeout: getDurationOrDefault("DECIMALS_TIMEOUT", 10*time.Second),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "leverage"),
		PostgresPass: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "leverage"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.Topology != TopologyReceiver && c.Topology != TopologyDirect {
		return fmt.Errorf("TOPOLOGY must be %q or %q, got %q", TopologyReceiver, TopologyDirect, c.Topology)
	}

	if c.ExecutionMode != ModeSimulate && c.ExecutionMode != ModeSubmit {
		return fmt.Errorf("EXECUTION_MODE must be %q or %q, got %q", ModeSimulate, ModeSubmit, c.ExecutionMode)
	}

	if c.PremiumSource != PremiumSourceConfig && c.PremiumSource != PremiumSourcePool {
		return fmt.Errorf("PREMIUM_SOURCE must be %q or %q, got %q", PremiumSourceConfig, PremiumSourcePool, c.PremiumSource)
	}

	if c.PremiumDen == 0 {
		return fmt.Errorf("PREMIUM_RATE_DENOMINATOR must be non-zero")
	}

	if c.ExecutionMode == ModeSubmit && c.OperatorKey == "" {
		return fmt.Errorf("OPERATOR_PRIVATE_KEY is required in submit mode")
	}

	if c.StorageMode != "postgres" && c.StorageMode != "console" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'console', got %q", c.StorageMode)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getUint64OrDefault(key string, defaultValue uint64) uint64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	uintVal, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return defaultValue
	}

	return uintVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
