package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hetulpatel/pairwatch/internal/cache"
	"github.com/hetulpatel/pairwatch/internal/classifier"
	"github.com/hetulpatel/pairwatch/internal/config"
	"github.com/hetulpatel/pairwatch/internal/dexscreener"
	kafkautil "github.com/hetulpatel/pairwatch/internal/kafka"
	"github.com/hetulpatel/pairwatch/internal/logging"
	"github.com/hetulpatel/pairwatch/internal/observability"
	"github.com/hetulpatel/pairwatch/internal/pairs"
	"github.com/hetulpatel/pairwatch/internal/queue"
	"github.com/hetulpatel/pairwatch/internal/report"
	sqlstore "github.com/hetulpatel/pairwatch/internal/storage/sqlite"
	"github.com/hetulpatel/pairwatch/internal/tracker"
)

func main() {
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(config.Load()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	var (
		chain       = string(cfg.Chain)
		intervalSec = int(cfg.Interval / time.Second)
		timeoutSec  = int(cfg.FetchTimeout / time.Second)
	)

	cmd := &cobra.Command{
		Use:           "pair_tracker",
		Short:         "Watch DexScreener for new pairs and flag untrustworthy ones",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.Chain = pairs.Chain(chain)
			cfg.Interval = time.Duration(intervalSec) * time.Second
			cfg.FetchTimeout = time.Duration(timeoutSec) * time.Second
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&chain, "chain", chain, "chain to monitor (ethereum, solana, bsc, polygon, arbitrum, base, ...)")
	flags.IntVar(&intervalSec, "interval", intervalSec, "seconds between polls")
	flags.IntVar(&timeoutSec, "fetch-timeout", timeoutSec, "seconds before a provider fetch is abandoned")
	thresholdFlags(flags, &cfg.Thresholds)
	flags.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "journal verdicts to this SQLite file")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address")
	return cmd
}

func thresholdFlags(flags *pflag.FlagSet, th *classifier.Thresholds) {
	flags.Float64Var(&th.MinLiquidityUSD, "min-liquidity", th.MinLiquidityUSD, "minimum liquidity in USD")
	flags.IntVar(&th.MinTxnsM5, "min-txns", th.MinTxnsM5, "minimum buys+sells over the last 5 minutes")
	flags.Float64Var(&th.MinBuySellRatio, "min-ratio", th.MinBuySellRatio, "minimum acceptable buy/sell ratio")
	flags.Float64Var(&th.MaxBuySellRatio, "max-ratio", th.MaxBuySellRatio, "maximum acceptable buy/sell ratio")
}

func run(ctx context.Context, cfg config.Config) error {
	if !cfg.Chain.Known() {
		logging.Warnf("[pair-tracker] chain %q is not a commonly listed network; passing it through", cfg.Chain)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics("pairwatch", reg)

	sinks, closeSinks, err := buildSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := observability.Serve(ctx, cfg.MetricsAddr, reg); err != nil {
				logging.Errorf("[metrics] server error: %v", err)
			}
		}()
	}

	provider := dexscreener.NewClient(dexscreener.Config{
		BaseURL:           cfg.DexScreenerBaseURL,
		Timeout:           cfg.FetchTimeout,
		RequestsPerMinute: cfg.RequestsPerMinute,
	})
	tr := tracker.New(tracker.Config{
		Chain:        cfg.Chain,
		Thresholds:   cfg.Thresholds,
		FetchTimeout: cfg.FetchTimeout,
	}, provider, sinks, metrics)

	fmt.Printf("Starting DexScreener token tracker for the '%s' chain...\n", cfg.Chain)
	fmt.Printf("This tool will check for new tokens every %d seconds and analyze them.\n", int(cfg.Interval/time.Second))
	fmt.Println("Press Ctrl+C to stop.")

	tracker.RunLoop(ctx, cfg.Interval, func(ctx context.Context) {
		tr.Poll(ctx)
	})

	fmt.Println("\nToken tracker stopped.")
	return nil
}

// buildSinks wires the console plus every optional sink that is configured.
// SQLite is opt-in and must open cleanly; Kafka and Redis are skipped with a
// warning when unreachable.
func buildSinks(ctx context.Context, cfg config.Config) (report.Multi, func(), error) {
	sinks := report.Multi{report.NewConsole(os.Stdout)}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.SQLitePath != "" {
		store, err := sqlstore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, func() {}, fmt.Errorf("open sqlite: %w", err)
		}
		closers = append(closers, func() { store.Close() })
		if err := store.CreateTables(ctx); err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("create sqlite tables: %w", err)
		}
		logging.Infof("[pair-tracker] journaling verdicts to %s", store.Path())
		sinks = append(sinks, sqlstore.NewSink(store))
	}

	if cfg.RedisAddr != "" {
		vc, err := cache.NewRedisVerdictCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL, "")
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("redis verdict cache: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = vc.Ping(pingCtx)
		cancel()
		if err != nil {
			logging.Warnf("[pair-tracker] redis unavailable at %s: %v", cfg.RedisAddr, err)
			vc.Close()
		} else {
			closers = append(closers, func() { vc.Close() })
			sinks = append(sinks, cache.NewSink(vc))
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		if writer := setupWriter(ctx, cfg.KafkaBrokers, cfg.KafkaTopic); writer != nil {
			closers = append(closers, func() { writer.Close() })
			sinks = append(sinks, queue.NewSink(writer))
		}
	}

	return sinks, closeAll, nil
}

func setupWriter(ctx context.Context, brokers []string, topic string) *kafkago.Writer {
	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()
	if err := kafkautil.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Warnf("[pair-tracker] kafka unavailable: %v", err)
		return nil
	}
	ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
	if err := kafkautil.EnsureTopic(ensureCtx, brokers, topic); err != nil {
		logging.Warnf("[pair-tracker] ensure topic warning: %v", err)
	}
	cancelEnsure()
	return kafkautil.NewWriter(brokers, topic)
}
