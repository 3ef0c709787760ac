// Package models defines data structures for the scraper.
package models

import "time"

// Category identifies which product family a record belongs to.
type Category string

const (
	CategoryCPU Category = "cpu"
	CategoryGPU Category = "gpu"
	CategoryRAM Category = "ram"
	CategoryPSU Category = "psu"
)

// Categories lists every supported category in extraction order.
var Categories = []Category{CategoryCPU, CategoryGPU, CategoryRAM, CategoryPSU}

// ParseCategory maps a textual category onto a Category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Product is implemented by every category record.
type Product interface {
	// Key returns the identity key used for de-duplication.
	Key() string
	Kind() Category
	// Fields returns a flattened column view of the record.
	Fields() map[string]any
}

// CPU is a processor listing.
type CPU struct {
	Name      string  `csv:"name" json:"name"`
	Brand     string  `csv:"brand" json:"brand"`
	Price     float64 `csv:"price" json:"price"`
	Frequency int     `csv:"frequency" json:"frequency,omitempty"`
}

func (c CPU) Key() string    { return c.Name }
func (c CPU) Kind() Category { return CategoryCPU }

func (c CPU) Fields() map[string]any {
	return map[string]any{
		"name":      c.Name,
		"brand":     c.Brand,
		"price":     c.Price,
		"frequency": c.Frequency,
	}
}

// GPU is a graphics card listing. Memory is in GB.
type GPU struct {
	Name   string  `csv:"name" json:"name"`
	Brand  string  `csv:"brand" json:"brand"`
	Memory int     `csv:"memory" json:"memory"`
	Price  float64 `csv:"price" json:"price"`
}

func (g GPU) Key() string    { return g.Name }
func (g GPU) Kind() Category { return CategoryGPU }

func (g GPU) Fields() map[string]any {
	return map[string]any{
		"name":   g.Name,
		"brand":  g.Brand,
		"memory": g.Memory,
		"price":  g.Price,
	}
}

// RAM is a memory kit listing. Frequency is in MHz.
type RAM struct {
	Name      string  `csv:"name" json:"name"`
	Price     float64 `csv:"price" json:"price"`
	Frequency int     `csv:"frequency" json:"frequency"`
	Brand     string  `csv:"brand" json:"brand"`
	RAMType   string  `csv:"ram_type" json:"ram_type"`
}

func (r RAM) Key() string    { return r.Name }
func (r RAM) Kind() Category { return CategoryRAM }

func (r RAM) Fields() map[string]any {
	return map[string]any{
		"name":      r.Name,
		"price":     r.Price,
		"frequency": r.Frequency,
		"brand":     r.Brand,
		"ram_type":  r.RAMType,
	}
}

// PSU is a power supply listing. Power is in watts.
type PSU struct {
	Name  string  `csv:"name" json:"name"`
	Price float64 `csv:"price" json:"price"`
	Power int     `csv:"power" json:"power"`
}

func (p PSU) Key() string    { return p.Name }
func (p PSU) Kind() Category { return CategoryPSU }

func (p PSU) Fields() map[string]any {
	return map[string]any{
		"name":  p.Name,
		"price": p.Price,
		"power": p.Power,
	}
}

// ScraperResult holds the overall result of a scraping operation
type ScraperResult struct {
	RunID        string
	StartTime    time.Time
	EndTime      time.Time
	TotalCount   int
	Counts       map[Category]int
	ErrorCount   int
	FailedURLs   []string
	ErrorsByType map[string]int
	RetryCount   int
	RequestCount int
	CacheHits    int
}
