package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"paepcke.de/sphincsplus"
	"paepcke.de/sphincsplus/bench"
)

func main() {
	defaults := bench.DefaultConfig()

	cli := defaults
	configPath := flag.String("config", "", "JSON config file; flags given on the command line override it")
	sets := flag.String("params", strings.Join(defaults.ParameterSets, ","), "parameter sets, comma-separated (names or aliases like 128s)")
	flag.IntVar(&cli.Iterations, "iterations", defaults.Iterations, "iterations per parameter set")
	flag.StringVar(&cli.Message, "message", defaults.Message, "message to sign")
	flag.StringVar(&cli.Backend, "backend", defaults.Backend, "backend: native|reference")
	flag.IntVar(&cli.Threads, "threads", defaults.Threads, "goroutines per tree build (0 = all cpus, native only)")
	flag.StringVar(&cli.LogLevel, "log-level", defaults.LogLevel, "log level: debug|info|warn|error")
	flag.StringVar(&cli.MetricsAddr, "metrics-addr", defaults.MetricsAddr, "serve prometheus metrics on host:port")
	flag.StringVar(&cli.HistoryPath, "history", defaults.HistoryPath, "bbolt file with earlier results")
	list := flag.Bool("list", false, "list parameter sets and exit")
	dryRun := flag.Bool("dry-run", false, "print effective config and exit")
	flag.Parse()

	if *list {
		for _, p := range sphincsplus.ParameterSets() {
			_, _ = fmt.Fprintf(os.Stdout, "%-22s n=%-2d h=%-2d d=%-2d a=%-2d k=%-2d sig=%d\n", p.Name, p.N, p.H, p.D, p.A, p.K, p.SignatureSize())
		}
		return
	}

	cfg := defaults
	if *configPath != "" {
		loaded, err := bench.LoadConfig(*configPath)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
			os.Exit(2)
		}
		cfg = loaded
	}
	cli.ParameterSets = bench.NormalizeSets(*sets)
	flag.Visit(func(f *flag.Flag) { override(&cfg, cli, f.Name) })
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if err := bench.ValidateConfig(cfg); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(2)
	}
	if *dryRun {
		if err := printConfig(cfg); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "config encode failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()
	sphincsplus.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("benchmark failed", zap.Error(err))
		stop()
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg bench.Config, log *zap.Logger) error {
	metrics := bench.NewMetrics()
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		if err := metrics.Register(reg); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped", zap.Error(err))
			}
		}()
		defer func() { _ = srv.Close() }()
		log.Info("serving metrics", zap.String("addr", cfg.MetricsAddr))
	}

	var history *bench.History
	if cfg.HistoryPath != "" {
		h, err := bench.OpenHistory(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer func() { _ = h.Close() }()
		history = h
	}

	backend, err := bench.NewBackend(cfg.Backend, cfg.Threads)
	if err != nil {
		return err
	}
	runner, err := bench.NewRunner(cfg, backend, metrics, log)
	if err != nil {
		return err
	}

	bench.WriteHeader(os.Stdout, bench.DetectHost(), cfg)
	var storeErr error
	_, err = runner.Run(ctx, func(r bench.Result) {
		var prev *bench.Result
		if history != nil {
			if prev, storeErr = history.Previous(r.Backend, r.Params); storeErr == nil {
				storeErr = history.Put(r)
			}
			if storeErr != nil {
				log.Warn("history update failed", zap.Error(storeErr))
			}
		}
		bench.WriteResult(os.Stdout, r, prev)
	})
	return err
}

func override(cfg *bench.Config, cli bench.Config, name string) {
	switch name {
	case "params":
		cfg.ParameterSets = cli.ParameterSets
	case "iterations":
		cfg.Iterations = cli.Iterations
	case "message":
		cfg.Message = cli.Message
	case "backend":
		cfg.Backend = cli.Backend
	case "threads":
		cfg.Threads = cli.Threads
	case "log-level":
		cfg.LogLevel = cli.LogLevel
	case "metrics-addr":
		cfg.MetricsAddr = cli.MetricsAddr
	case "history":
		cfg.HistoryPath = cli.HistoryPath
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = lvl
	zc.DisableStacktrace = true
	return zc.Build()
}

func printConfig(cfg bench.Config) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}
