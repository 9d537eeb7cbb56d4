package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hetulpatel/pairwatch/internal/classifier"
	"github.com/hetulpatel/pairwatch/internal/kafka"
	"github.com/hetulpatel/pairwatch/internal/pairs"
)

// Config is everything the tracker process needs before the loop starts.
type Config struct {
	Interval     time.Duration
	Chain        pairs.Chain
	Thresholds   classifier.Thresholds
	FetchTimeout time.Duration

	DexScreenerBaseURL string
	RequestsPerMinute  int

	SQLitePath string

	KafkaBrokers []string
	KafkaTopic   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	MetricsAddr string
}

// Load reads .env (if present) and the process environment, falling back to
// defaults for anything unset.
func Load() Config {
	godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment without touching .env files.
func FromEnv() Config {
	th := classifier.DefaultThresholds()
	return Config{
		Interval: time.Duration(envInt("PAIRWATCH_INTERVAL_SECONDS", 30)) * time.Second,
		Chain:    pairs.Chain(strings.ToLower(envString("PAIRWATCH_CHAIN", string(pairs.ChainEthereum)))),
		Thresholds: classifier.Thresholds{
			MinLiquidityUSD: envFloat("PAIRWATCH_MIN_LIQUIDITY_USD", th.MinLiquidityUSD),
			MinTxnsM5:       envInt("PAIRWATCH_MIN_TXNS_M5", th.MinTxnsM5),
			MinBuySellRatio: envFloat("PAIRWATCH_MIN_BUY_SELL_RATIO", th.MinBuySellRatio),
			MaxBuySellRatio: envFloat("PAIRWATCH_MAX_BUY_SELL_RATIO", th.MaxBuySellRatio),
		},
		FetchTimeout: time.Duration(envInt("PAIRWATCH_FETCH_TIMEOUT_SECONDS", 10)) * time.Second,

		DexScreenerBaseURL: envString("DEXSCREENER_BASE_URL", ""),
		RequestsPerMinute:  envInt("DEXSCREENER_REQUESTS_PER_MINUTE", 60),

		SQLitePath: os.Getenv("SQLITE_PATH"),

		KafkaBrokers: kafka.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   envString("PAIRWATCH_KAFKA_TOPIC", kafka.DefaultVerdictTopic),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		RedisTTL:      time.Duration(envInt("PAIRWATCH_REDIS_TTL_HOURS", 24)) * time.Hour,

		MetricsAddr: os.Getenv("METRICS_ADDR"),
	}
}

// Validate rejects settings the loop cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %s", c.Interval))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout))
	}
	if strings.TrimSpace(string(c.Chain)) == "" {
		errs = append(errs, errors.New("chain is required"))
	}
	if err := c.Thresholds.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.RequestsPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("requests per minute must be positive, got %d", c.RequestsPerMinute))
	}
	return errors.Join(errs...)
}

func envString(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return def
}
