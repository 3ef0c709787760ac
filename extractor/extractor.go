// Package extractor turns category listing pages into typed product records.
//
// Each category follows the same steps: locate candidate nodes, derive raw
// fields, normalize them, drop duplicates by name as they arrive, and finally
// drop records missing a required field.
package extractor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-parts/models"
)

// Reasons reported to an Observer when a candidate does not become a record.
const (
	SkipBrandGate    = "brand_gate"
	SkipMissingTitle = "missing_title"
	SkipMissingPrice = "missing_price"
	SkipDuplicate    = "duplicate"
	SkipIncomplete   = "incomplete"
)

// Fetcher retrieves the markup of a page. A non-nil error means the page
// could not be retrieved successfully.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Observer receives extraction events. Implementations must be safe for
// concurrent use when one Extractor serves several categories at once.
type Observer interface {
	CandidateSkipped(category models.Category, reason string)
	RecordsExtracted(category models.Category, count int)
}

type nopObserver struct{}

func (nopObserver) CandidateSkipped(models.Category, string) {}
func (nopObserver) RecordsExtracted(models.Category, int)    {}

// Extractor fetches category pages and extracts their records.
type Extractor struct {
	fetcher  Fetcher
	observer Observer
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithObserver reports skipped candidates and accepted record counts to o.
func WithObserver(o Observer) Option {
	return func(e *Extractor) {
		if o != nil {
			e.observer = o
		}
	}
}

// New creates an Extractor that retrieves pages through fetcher.
func New(fetcher Fetcher, opts ...Option) *Extractor {
	e := &Extractor{
		fetcher:  fetcher,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CPUs fetches url and extracts processor records.
func (e *Extractor) CPUs(ctx context.Context, url string) ([]models.CPU, error) {
	return extract(ctx, e, models.CategoryCPU, url, parseCPUs)
}

// GPUs fetches url and extracts graphics card records.
func (e *Extractor) GPUs(ctx context.Context, url string) ([]models.GPU, error) {
	return extract(ctx, e, models.CategoryGPU, url, parseGPUs)
}

// RAM fetches url and extracts memory kit records.
func (e *Extractor) RAM(ctx context.Context, url string) ([]models.RAM, error) {
	return extract(ctx, e, models.CategoryRAM, url, parseRAM)
}

// PSUs fetches url and extracts power supply records.
func (e *Extractor) PSUs(ctx context.Context, url string) ([]models.PSU, error) {
	return extract(ctx, e, models.CategoryPSU, url, parsePSUs)
}

// Extract runs the extractor for category against url.
func (e *Extractor) Extract(ctx context.Context, category models.Category, url string) ([]models.Product, error) {
	switch category {
	case models.CategoryCPU:
		records, err := e.CPUs(ctx, url)
		return toProducts(records), err
	case models.CategoryGPU:
		records, err := e.GPUs(ctx, url)
		return toProducts(records), err
	case models.CategoryRAM:
		records, err := e.RAM(ctx, url)
		return toProducts(records), err
	case models.CategoryPSU:
		records, err := e.PSUs(ctx, url)
		return toProducts(records), err
	default:
		return []models.Product{}, fmt.Errorf("unknown category %q", category)
	}
}

// extract fetches the page and parses it. A failed fetch is not fatal: the
// caller gets an empty list together with the fetch error.
func extract[T models.Product](ctx context.Context, e *Extractor, category models.Category, url string, parse func(*goquery.Document, Observer) []T) ([]T, error) {
	markup, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		slog.Warn("failed to fetch category page",
			slog.String("category", string(category)),
			slog.String("url", url),
			slog.Any("error", err),
		)
		return []T{}, fmt.Errorf("fetch %s page: %w", category, err)
	}
	return parseMarkup(markup, e.observer, parse), nil
}

func parseMarkup[T any](markup string, obs Observer, parse func(*goquery.Document, Observer) []T) []T {
	doc, err := newDocument(markup)
	if err != nil {
		slog.Warn("unreadable markup", slog.Any("error", err))
		return []T{}
	}
	return parse(doc, obs)
}

func toProducts[T models.Product](records []T) []models.Product {
	out := make([]models.Product, 0, len(records))
	for _, r := range records {
		out = append(out, r)
	}
	return out
}
