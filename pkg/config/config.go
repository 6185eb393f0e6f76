package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Relay authorization modes
const (
	RelayModeSponsored = "sponsored"
	RelayModeERC2771   = "erc2771"
)

const defaultService = "bridge-relayer"

// Queue backends
const (
	QueueBackendRedis  = "redis"
	QueueBackendMemory = "memory"
)

// Config represents the bridge relayer configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Networks   []NetworkConfig  `yaml:"networks" validate:"len=2,dive"`
	Relay      RelayConfig      `yaml:"relay"`
	Bridge     BridgeConfig     `yaml:"bridge"`
	Queue      QueueConfig      `yaml:"queue"`
	Watcher    WatcherConfig    `yaml:"watcher"`
	API        APIConfig        `yaml:"api"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" default:"60s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host         string        `yaml:"host" default:"localhost" validate:"required"`
	Port         int           `yaml:"port" default:"5432"`
	User         string        `yaml:"user" validate:"required"`
	Password     string        `yaml:"password"`
	Database     string        `yaml:"database" validate:"required"`
	SSLMode      string        `yaml:"ssl_mode" default:"disable"`
	DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
	QueryTimeout time.Duration `yaml:"query_timeout" default:"15s"`
	MaxOpenConns int           `yaml:"max_open_conns" default:"20"`
}

// RedisConfig contains the job queue and shared rate limiter store settings
type RedisConfig struct {
	URL         string        `yaml:"url" default:"redis://localhost:6379/0"`
	Password    string        `yaml:"password"`
	DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
}

// NetworkConfig describes one of the two bridged chains
type NetworkConfig struct {
	Name           string `yaml:"name" validate:"required"`
	ChainID        uint64 `yaml:"chain_id" validate:"required"`
	RPCURL         string `yaml:"rpc_url" validate:"required,url"`
	FallbackRPCURL string `yaml:"fallback_rpc_url" validate:"omitempty,url"`
	TokenContract  string `yaml:"token_contract" validate:"required,eth_addr"`
	TokenDecimals  int32  `yaml:"token_decimals" default:"18" validate:"min=0,max=36"`
	// RelayForwarder is the relay's ERC-2771 forwarder, read for user nonces.
	RelayForwarder string `yaml:"relay_forwarder" validate:"omitempty,eth_addr"`
	StartBlock     uint64 `yaml:"start_block"`
}

// RelayConfig contains the gas sponsorship relay settings
type RelayConfig struct {
	BaseURL            string        `yaml:"base_url" default:"https://api.gelato.digital" validate:"required,url"`
	APIKey             string        `yaml:"api_key"`
	Mode               string        `yaml:"mode" default:"sponsored" validate:"oneof=sponsored erc2771"`
	// OperatorPrivateKey is a hex key or a "sealed:" value opened with MasterKey.
	OperatorPrivateKey string        `yaml:"operator_private_key"`
	MasterKey          string        `yaml:"master_key"`
	UserDeadline       time.Duration `yaml:"user_deadline" default:"1h"`
	RequestTimeout     time.Duration `yaml:"request_timeout" default:"15s"`
	RateLimit          int           `yaml:"rate_limit" default:"60" validate:"min=1"`
	RateWindow         time.Duration `yaml:"rate_window" default:"60s"`
	// SharedRateLimit keeps the sliding window in redis so all workers share it.
	SharedRateLimit bool `yaml:"shared_rate_limit" default:"true"`
}

// BridgeConfig contains settlement workflow settings
type BridgeConfig struct {
	MaxRecoveryAttempts int           `yaml:"max_recovery_attempts" default:"3" validate:"min=0"`
	DispatchMaxRetries  int           `yaml:"dispatch_max_retries" default:"5" validate:"min=0"`
	RecoveryMaxRetries  int           `yaml:"recovery_max_retries" default:"30" validate:"min=0"`
	StatusBaseDelay     time.Duration `yaml:"status_base_delay" default:"10s"`
	StatusMaxDelay      time.Duration `yaml:"status_max_delay" default:"300s"`
	StatusGrowthFactor  float64       `yaml:"status_growth_factor" default:"1.5" validate:"gte=1"`
	RecoveryBaseDelay   time.Duration `yaml:"recovery_base_delay" default:"60s"`
	DeferBaseDelay      time.Duration `yaml:"defer_base_delay" default:"5s"`
	DeferMaxDelay       time.Duration `yaml:"defer_max_delay" default:"120s"`
	BurnIDStrategy      string        `yaml:"burn_id_strategy" default:"deterministic" validate:"oneof=deterministic random"`
	SweepInterval       time.Duration `yaml:"sweep_interval" default:"5m"`
	StaleAfter          time.Duration `yaml:"stale_after" default:"15m"`
	SweepBatchSize      int           `yaml:"sweep_batch_size" default:"100" validate:"min=1"`
}

// QueueConfig contains job queue and worker settings
type QueueConfig struct {
	Backend        string        `yaml:"backend" default:"redis" validate:"oneof=redis memory"`
	Prefix         string        `yaml:"prefix" default:"bridge:jobs"`
	Workers        int           `yaml:"workers" default:"8" validate:"min=1"`
	BatchSize      int           `yaml:"batch_size" default:"16" validate:"min=1"`
	PollInterval   time.Duration `yaml:"poll_interval" default:"1s"`
	Visibility     time.Duration `yaml:"visibility" default:"2m"`
	HandlerTimeout time.Duration `yaml:"handler_timeout" default:"60s"`
	MaxDeliveries  int           `yaml:"max_deliveries" default:"20" validate:"min=1"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" default:"2s"`
	RetryMaxDelay  time.Duration `yaml:"retry_max_delay" default:"5m"`
}

// WatcherConfig contains chain subscription and reconnection settings
type WatcherConfig struct {
	ReconnectBaseDelay   time.Duration `yaml:"reconnect_base_delay" default:"5s"`
	ReconnectMaxDelay    time.Duration `yaml:"reconnect_max_delay" default:"60s"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts" default:"10" validate:"min=1"`
	Cooldown             time.Duration `yaml:"cooldown" default:"60s"`
	FallbackAfter        int           `yaml:"fallback_after" default:"3" validate:"min=1"`
	PrimaryRetryChance   float64       `yaml:"primary_retry_chance" default:"0.2" validate:"gte=0,lte=1"`
	ScanChunkSize        uint64        `yaml:"scan_chunk_size" default:"10000" validate:"min=1"`
	HealthInterval       time.Duration `yaml:"health_interval" default:"60s"`
	PollInterval         time.Duration `yaml:"poll_interval" default:"12s"`
	RPCTimeout           time.Duration `yaml:"rpc_timeout" default:"15s"`
}

// APIConfig contains the HTTP API settings
type APIConfig struct {
	// JWTSecret enables HS256 bearer auth on the command endpoint when set.
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `yaml:"enabled" default:"true"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Service    string `yaml:"service" default:"bridge-relayer"`
	Level      string `yaml:"level" default:"info"`
	Format     string `yaml:"format" default:"json"`
	OutputPath string `yaml:"output_path"`
}

// Load reads the YAML configuration at path. ${VAR} references are expanded
// from the environment, after loading a .env file next to the process if present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse([]byte(os.ExpandEnv(string(raw))))
}

// Parse decodes, defaults and validates a YAML document.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	for i := range cfg.Networks {
		if err := defaults.Set(&cfg.Networks[i]); err != nil {
			return nil, fmt.Errorf("failed to apply network defaults: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks struct tags and the rules spanning several fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Networks))
	chains := make(map[uint64]bool, len(c.Networks))
	for _, n := range c.Networks {
		name := strings.ToLower(strings.TrimSpace(n.Name))
		if seen[name] {
			return fmt.Errorf("duplicate network name %q", n.Name)
		}
		if chains[n.ChainID] {
			return fmt.Errorf("duplicate chain id %d", n.ChainID)
		}
		seen[name] = true
		chains[n.ChainID] = true
	}

	if err := c.Relay.CheckCredentials(); err != nil {
		return err
	}
	if c.Relay.Mode == RelayModeERC2771 {
		for _, n := range c.Networks {
			if n.RelayForwarder == "" {
				return fmt.Errorf("network %s: relay_forwarder is required in %s mode", n.Name, RelayModeERC2771)
			}
		}
	}
	return nil
}

// CheckCredentials reports missing relay credentials for the configured mode.
func (r RelayConfig) CheckCredentials() error {
	if r.APIKey == "" {
		return errors.New("relay api_key is required")
	}
	if r.Mode == RelayModeERC2771 && r.OperatorPrivateKey == "" {
		return fmt.Errorf("relay operator_private_key is required in %s mode", RelayModeERC2771)
	}
	if strings.HasPrefix(r.OperatorPrivateKey, "sealed:") && r.MasterKey == "" {
		return errors.New("relay master_key is required for a sealed operator_private_key")
	}
	return nil
}
