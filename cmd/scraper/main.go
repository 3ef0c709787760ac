package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-scrape-parts/config"
	"github.com/aluiziolira/go-scrape-parts/models"
	"github.com/aluiziolira/go-scrape-parts/pipeline"
	"github.com/aluiziolira/go-scrape-parts/scraper"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	defaults, err := envDefaults()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}

	cpuURL := flag.String("cpu-url", defaults.CPUURL, "CPU listing page (empty skips the category)")
	gpuURL := flag.String("gpu-url", defaults.GPUURL, "GPU listing page")
	ramURL := flag.String("ram-url", defaults.RAMURL, "RAM listing page")
	psuURL := flag.String("psu-url", defaults.PSUURL, "PSU listing page")
	parallelism := flag.Int("parallel", defaults.Parallelism, "Number of concurrent requests")
	timeout := flag.Duration("timeout", defaults.Timeout, "Per-request timeout")
	rps := flag.Float64("rps", defaults.RequestsPerSecond, "Requests per second per host (0 disables pacing)")
	maxRetries := flag.Int("max-retries", defaults.MaxRetries, "Maximum retry attempts per URL")
	retryBackoff := flag.Duration("retry-backoff", defaults.RetryBackoff, "Initial retry backoff")
	retryBackoffMax := flag.Duration("retry-backoff-max", defaults.RetryBackoffMax, "Maximum retry backoff")
	cacheSize := flag.Int("cache-size", defaults.CacheSize, "Pages kept in the in-memory cache (0 disables)")
	respectRobots := flag.Bool("respect-robots", defaults.RespectRobotsTxt, "Respect robots.txt directives")
	outputFile := flag.String("output", defaults.OutputFile, "Output file path")
	outputFormat := flag.String("format", defaults.OutputFormat, "Output format: csv, json, dual, or postgres")
	databaseURL := flag.String("database-url", defaults.DatabaseURL, "PostgreSQL DSN for -format=postgres")
	metricsAddr := flag.String("metrics-addr", defaults.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", defaults.Verbose, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := defaults
	cfg.CPUURL = *cpuURL
	cfg.GPUURL = *gpuURL
	cfg.RAMURL = *ramURL
	cfg.PSUURL = *psuURL
	cfg.Parallelism = *parallelism
	cfg.Timeout = *timeout
	cfg.RequestsPerSecond = *rps
	cfg.MaxRetries = *maxRetries
	cfg.RetryBackoff = *retryBackoff
	cfg.RetryBackoffMax = *retryBackoffMax
	cfg.CacheSize = *cacheSize
	cfg.RespectRobotsTxt = *respectRobots
	cfg.OutputFile = *outputFile
	cfg.OutputFormat = strings.ToLower(*outputFormat)
	cfg.DatabaseURL = *databaseURL
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, waiting for in-flight work to finish")
	}()

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting scrape",
		slog.String("run_id", s.RunID()),
		slog.Int("categories", len(cfg.URLs())),
		slog.Int("workers", cfg.Parallelism),
		slog.String("format", cfg.OutputFormat),
	)

	writer, err := createWriter(ctx, cfg, s.RunID())
	if err != nil {
		slog.Error("creating writer", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			slog.Error("close writer", slog.Any("error", err))
		}
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && s.Metrics != nil {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	p := pipeline.NewPipeline(ctx, writer, cfg)
	p.Start(cfg.Parallelism)
	if cfg.Verbose {
		p.StartMetricsReporting(10 * time.Second)
	}

	startTime := time.Now()
	result, runErr := s.Run(ctx, p)
	if runErr != nil {
		slog.Error("scraping interrupted", slog.Any("error", runErr))
	}

	if err := p.Close(); err != nil {
		slog.Error("pipeline shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(result, time.Since(startTime), cfg, p.GetMetrics())

	if err := writer.Validate(); err != nil {
		slog.Error("output validation failed", slog.Any("error", err))
		os.Exit(1)
	}
	if runErr != nil {
		os.Exit(1)
	}
}

// envDefaults layers SCRAPER_* environment variables over the defaults.
func envDefaults() (*config.Config, error) {
	cfg := config.DefaultConfig()

	stringVars := map[string]*string{
		"SCRAPER_CPU_URL":      &cfg.CPUURL,
		"SCRAPER_GPU_URL":      &cfg.GPUURL,
		"SCRAPER_RAM_URL":      &cfg.RAMURL,
		"SCRAPER_PSU_URL":      &cfg.PSUURL,
		"SCRAPER_OUTPUT":       &cfg.OutputFile,
		"SCRAPER_FORMAT":       &cfg.OutputFormat,
		"SCRAPER_USER_AGENT":   &cfg.UserAgent,
		"SCRAPER_METRICS_ADDR": &cfg.MetricsAddr,
		"DATABASE_URL":         &cfg.DatabaseURL,
	}
	for key, dst := range stringVars {
		if value, ok := config.EnvString(key); ok {
			*dst = value
		}
	}

	intVars := map[string]*int{
		"SCRAPER_PARALLEL":    &cfg.Parallelism,
		"SCRAPER_MAX_RETRIES": &cfg.MaxRetries,
		"SCRAPER_CACHE_SIZE":  &cfg.CacheSize,
		"SCRAPER_BUFFER_SIZE": &cfg.PipelineBufferSize,
		"SCRAPER_BATCH_SIZE":  &cfg.BatchSize,
		"SCRAPER_DEDUPE_SIZE": &cfg.DedupeMaxSize,
	}
	for key, dst := range intVars {
		value, ok, err := config.EnvInt(key)
		if err != nil {
			return nil, err
		}
		if ok {
			*dst = value
		}
	}

	durationVars := map[string]*time.Duration{
		"SCRAPER_TIMEOUT":           &cfg.Timeout,
		"SCRAPER_RETRY_BACKOFF":     &cfg.RetryBackoff,
		"SCRAPER_RETRY_BACKOFF_MAX": &cfg.RetryBackoffMax,
	}
	for key, dst := range durationVars {
		value, ok, err := config.EnvDuration(key)
		if err != nil {
			return nil, err
		}
		if ok {
			*dst = value
		}
	}

	rps, ok, err := config.EnvFloat("SCRAPER_RPS")
	if err != nil {
		return nil, err
	}
	if ok {
		cfg.RequestsPerSecond = rps
	}

	boolVars := map[string]*bool{
		"SCRAPER_VERBOSE":        &cfg.Verbose,
		"SCRAPER_RESPECT_ROBOTS": &cfg.RespectRobotsTxt,
	}
	for key, dst := range boolVars {
		value, ok, err := config.EnvBool(key)
		if err != nil {
			return nil, err
		}
		if ok {
			*dst = value
		}
	}

	return cfg, nil
}

func createWriter(ctx context.Context, cfg *config.Config, runID string) (pipeline.OutputWriter, error) {
	switch cfg.OutputFormat {
	case "json":
		return pipeline.NewJSONWriter(cfg.OutputFile)
	case "csv":
		return pipeline.NewCSVWriter(cfg.OutputFile)
	case "dual":
		jsonFilename := strings.TrimSuffix(cfg.OutputFile, ".csv") + ".jsonl"
		return pipeline.NewDualWriter(cfg.OutputFile, jsonFilename)
	case "postgres":
		return pipeline.NewPostgresWriter(ctx, cfg.DatabaseURL, runID)
	default:
		return nil, fmt.Errorf("unsupported format: %s", cfg.OutputFormat)
	}
}

func printSummary(result *models.ScraperResult, duration time.Duration, cfg *config.Config, metrics map[string]interface{}) {
	if result == nil {
		return
	}
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Scrape complete")
	fmt.Printf("  Run ID:        %s\n", result.RunID)

	written := int64(0)
	if processed, ok := metrics["processed_products"].(int64); ok {
		written = processed
	}

	categories := make([]string, 0, len(result.Counts))
	for category, n := range result.Counts {
		categories = append(categories, fmt.Sprintf("%s=%d", category, n))
	}
	sort.Strings(categories)

	fmt.Printf("  Extracted:     %d (%s)\n", result.TotalCount, strings.Join(categories, " "))
	fmt.Printf("  Written:       %d\n", written)
	fmt.Printf("  Requests:      %d\n", result.RequestCount)
	fmt.Printf("  Cache hits:    %d\n", result.CacheHits)
	fmt.Printf("  Retries:       %d\n", result.RetryCount)
	fmt.Printf("  Failed URLs:   %d\n", len(result.FailedURLs))
	for _, u := range result.FailedURLs {
		fmt.Printf("    - %s\n", u)
	}
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
	}
	if valErrors, ok := metrics["validation_errors"].(map[string]int); ok && len(valErrors) > 0 {
		fmt.Printf("  Validation:    %v\n", valErrors)
	}
	fmt.Printf("  Duration:      %v\n", duration.Round(time.Millisecond))
	if cfg.OutputFormat == "postgres" {
		fmt.Println("  Output:        postgres")
	} else {
		fmt.Printf("  Output file:   %s\n", cfg.OutputFile)
	}
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
