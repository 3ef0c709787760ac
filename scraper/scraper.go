package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aluiziolira/go-scrape-parts/config"
	"github.com/aluiziolira/go-scrape-parts/extractor"
	"github.com/aluiziolira/go-scrape-parts/models"
	"github.com/aluiziolira/go-scrape-parts/pipeline"
)

// Scraper runs the category extractors for one configuration and streams
// accepted records into a pipeline.
type Scraper struct {
	cfg       *config.Config
	runID     string
	fetcher   *Fetcher
	extractor *extractor.Extractor
	Metrics   *Metrics

	mu           sync.Mutex
	counts       map[models.Category]int
	failedURLs   []string
	errorsByType map[string]int
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	metrics := NewMetrics()
	fetcher, err := NewFetcher(cfg, metrics)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		cfg:          cfg,
		runID:        uuid.NewString(),
		fetcher:      fetcher,
		extractor:    extractor.New(fetcher, extractor.WithObserver(metrics)),
		Metrics:      metrics,
		counts:       make(map[models.Category]int),
		errorsByType: make(map[string]int),
	}, nil
}

// RunID identifies this scraper's run in stored output.
func (s *Scraper) RunID() string {
	return s.runID
}

// Run extracts every configured category concurrently. A category whose page
// cannot be fetched is recorded in the result and does not stop the others.
// Run only returns an error when ctx ends before all categories finish.
func (s *Scraper) Run(ctx context.Context, p *pipeline.Pipeline) (*models.ScraperResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	urls := s.cfg.URLs()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Parallelism)
	for _, category := range models.Categories {
		target, ok := urls[category]
		if !ok {
			continue
		}
		g.Go(func() error {
			return s.runCategory(gctx, p, category, target)
		})
	}
	err := g.Wait()

	result := &models.ScraperResult{
		RunID:        s.runID,
		StartTime:    start,
		EndTime:      time.Now(),
		Counts:       s.snapshotCounts(),
		FailedURLs:   s.snapshotFailedURLs(),
		ErrorsByType: s.snapshotErrors(),
		RetryCount:   s.fetcher.RetryCount(),
		RequestCount: s.fetcher.RequestCount(),
		CacheHits:    s.fetcher.CacheHits(),
	}
	result.ErrorCount = len(result.FailedURLs)
	for _, n := range result.Counts {
		result.TotalCount += n
	}

	return result, err
}

func (s *Scraper) runCategory(ctx context.Context, p *pipeline.Pipeline, category models.Category, target string) error {
	products, err := s.extractor.Extract(ctx, category, target)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", category, ctx.Err())
		}
		s.recordFailure(category, target, err)
		return nil
	}

	s.mu.Lock()
	s.counts[category] = len(products)
	s.mu.Unlock()

	slog.Info("category extracted",
		slog.String("category", string(category)),
		slog.String("url", target),
		slog.Int("records", len(products)),
	)

	if err := p.Process(products...); err != nil && !errors.Is(err, pipeline.ErrPipelineClosed) {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", category, ctx.Err())
		}
		slog.Error("pipeline process error",
			slog.String("category", string(category)),
			slog.Any("error", err),
		)
	}
	return nil
}

func (s *Scraper) recordFailure(category models.Category, target string, err error) {
	label := "other"
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		label = errorTypeLabel(fetchErr.Err)
	}

	s.mu.Lock()
	s.errorsByType[label]++
	s.failedURLs = append(s.failedURLs, target)
	s.mu.Unlock()

	slog.Error("category fetch failed",
		slog.String("category", string(category)),
		slog.String("url", target),
		slog.String("error_type", label),
		slog.Any("error", err),
	)
}

func (s *Scraper) snapshotCounts() map[models.Category]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[models.Category]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

func (s *Scraper) snapshotFailedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.failedURLs))
	copy(out, s.failedURLs)
	return out
}

func (s *Scraper) snapshotErrors() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.errorsByType))
	for k, v := range s.errorsByType {
		out[k] = v
	}
	return out
}
