package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application settings layer. Credentials and the token
// ledger live in the secure store, never here.
type Config struct {
	RPCURL         string  `mapstructure:"rpc_url"`
	IPFSEndpoint   string  `mapstructure:"ipfs_endpoint"`
	PlatformWallet string  `mapstructure:"platform_wallet"`
	DataDir        string  `mapstructure:"data_dir"`
	GrinderBinary  string  `mapstructure:"grinder_binary"`
	VanityTimeout  int     `mapstructure:"vanity_timeout"` // seconds
	PriorityFee    uint64  `mapstructure:"priority_fee"`   // microlamports per CU
	FeeReserveSOL  float64 `mapstructure:"fee_reserve_sol"`
	DebugLogging   bool    `mapstructure:"debug_logging"`
}

const (
	DefaultRPCURL        = "https://api.mainnet-beta.solana.com"
	DefaultIPFSEndpoint  = "https://pump.fun/api/ipfs"
	DefaultGrinderBinary = "solana-keygen"
	DefaultVanityTimeout = 120
	DefaultPriorityFee   = 100_000
	DefaultFeeReserveSOL = 0.02

	// DefaultPlatformWallet receives the platform's share of creator fees.
	DefaultPlatformWallet = "7Z9vCDFzwe2DsTq4zvmrurScehUYAgUifiycgD6ZYa6T"
)

// Load reads settings from an optional config file plus environment
// overrides. A missing file is fine; env vars and defaults still apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"rpc_url":         DefaultRPCURL,
		"ipfs_endpoint":   DefaultIPFSEndpoint,
		"platform_wallet": DefaultPlatformWallet,
		"grinder_binary":  DefaultGrinderBinary,
		"vanity_timeout":  DefaultVanityTimeout,
		"priority_fee":    DefaultPriorityFee,
		"fee_reserve_sol": DefaultFeeReserveSOL,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(&cfg)

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = filepath.Join(home, ".shipmytoken")
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if err := validateURL(cfg.RPCURL, "http"); err != nil {
		return errors.New("invalid RPC URL protocol")
	}
	if err := validateURL(cfg.IPFSEndpoint, "http"); err != nil {
		return errors.New("invalid IPFS endpoint protocol")
	}
	if cfg.PlatformWallet == "" {
		return errors.New("missing platform wallet in configuration")
	}
	if cfg.VanityTimeout <= 0 {
		return errors.New("invalid vanity_timeout")
	}
	if cfg.FeeReserveSOL <= 0 {
		return errors.New("invalid fee_reserve_sol")
	}
	return nil
}

func validateURL(rawURL, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	return nil
}

// loadEnvironmentVariables applies the documented env overrides. The RPC
// endpoint override keeps the name the rest of the Solana toolchain expects.
func loadEnvironmentVariables(cfg *Config) {
	if rpcURL := strings.TrimSpace(os.Getenv("SOLANA_RPC_URL")); rpcURL != "" {
		cfg.RPCURL = rpcURL
	}
	if dataDir := strings.TrimSpace(os.Getenv("SMT_DATA_DIR")); dataDir != "" {
		cfg.DataDir = dataDir
	}
}
