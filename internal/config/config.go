package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string
	LogJSON     bool

	// Indexer access. ProjectID is the Blockfrost API key and has no
	// fallback value; startup fails without it.
	BlockfrostProjectID string
	BlockfrostServer    string

	// Wallet identity. The signing key is a 32-byte ed25519 seed in hex,
	// the address the bech32 payment address whose credential authorizes
	// minting. Neither has a default; startup fails without them.
	WalletSigningKeyHex string
	WalletAddress       string

	// Ledger fee parameters used by the transaction assembler.
	MinFeeA      uint64
	MinFeeB      uint64
	MinUTxOValue uint64

	RequestTimeoutSeconds int

	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitMaxKeys       int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:               addr,
		PostgresDSN:            os.Getenv("POSTGRES_DSN"),
		LogLevel:               envDefault("LOG_LEVEL", "info"),
		LogJSON:                envBoolDefault("LOG_JSON", false),
		BlockfrostProjectID:    os.Getenv("BLOCKFROST_PROJECT_ID"),
		BlockfrostServer:       envDefault("BLOCKFROST_SERVER", "https://cardano-mainnet.blockfrost.io/api/v0"),
		WalletSigningKeyHex:    os.Getenv("WALLET_SIGNING_KEY"),
		WalletAddress:          os.Getenv("WALLET_ADDRESS"),
		MinFeeA:                envUintDefault("MIN_FEE_A", 44),
		MinFeeB:                envUintDefault("MIN_FEE_B", 155381),
		MinUTxOValue:           envUintDefault("MIN_UTXO_VALUE", 1_500_000),
		RequestTimeoutSeconds:  envIntDefault("REQUEST_TIMEOUT_SECONDS", 30),
		RateLimitRequests:      envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds: envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitMaxKeys:       envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                envIntDefault("REDIS_DB", 0),
	}
}

// Validate rejects configurations missing required credentials. There are
// deliberately no embedded fallback values for any of these.
func (c Config) Validate() error {
	if c.BlockfrostProjectID == "" {
		return errors.New("BLOCKFROST_PROJECT_ID is required")
	}
	if c.WalletSigningKeyHex == "" {
		return errors.New("WALLET_SIGNING_KEY is required")
	}
	if c.WalletAddress == "" {
		return errors.New("WALLET_ADDRESS is required")
	}
	return nil
}

func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func envUintDefault(key string, def uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}
