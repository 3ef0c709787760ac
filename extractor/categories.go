package extractor

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-parts/models"
	"github.com/aluiziolira/go-scrape-parts/parser"
)

// ParseCPUs extracts processor records from a listing page. Candidates whose
// first word is not AMD or Intel are skipped before any other field is read.
func ParseCPUs(markup string) []models.CPU {
	return parseMarkup(markup, nopObserver{}, parseCPUs)
}

// ParseGPUs extracts graphics card records from a product table.
func ParseGPUs(markup string) []models.GPU {
	return parseMarkup(markup, nopObserver{}, parseGPUs)
}

// ParseRAM extracts memory kit records. Prices are read with
// parser.ParsePriceMinorUnits.
func ParseRAM(markup string) []models.RAM {
	return parseMarkup(markup, nopObserver{}, parseRAM)
}

// ParsePSUs extracts power supply records.
func ParsePSUs(markup string) []models.PSU {
	return parseMarkup(markup, nopObserver{}, parsePSUs)
}

func parseCPUs(doc *goquery.Document, obs Observer) []models.CPU {
	acc := newAccumulator[models.CPU](models.CategoryCPU, obs)
	for _, c := range locateCPUs(doc) {
		brand, ok := parser.CPUBrand(c.title)
		if !ok {
			acc.skip(SkipBrandGate)
			continue
		}
		price, _ := parser.ParsePrice(c.price)
		frequency, _ := parser.ParseGHz(c.title)
		acc.add(models.CPU{
			Name:      c.title,
			Brand:     brand,
			Price:     price,
			Frequency: frequency,
		})
	}
	return acc.complete(parser.ValidateCPU)
}

func parseGPUs(doc *goquery.Document, obs Observer) []models.GPU {
	acc := newAccumulator[models.GPU](models.CategoryGPU, obs)
	for _, row := range locateGPURows(doc) {
		if !row.hasTitle {
			acc.skip(SkipMissingTitle)
			continue
		}
		if !row.hasPrice {
			acc.skip(SkipMissingPrice)
			continue
		}
		price, ok := parser.ParsePrice(row.price)
		if !ok {
			acc.skip(SkipMissingPrice)
			continue
		}
		memory, _ := parser.ParseMemoryGB(row.fragments)
		acc.add(models.GPU{
			Name:   row.title,
			Brand:  parser.GPUBrand(row.title),
			Memory: memory,
			Price:  price,
		})
	}
	return acc.complete(parser.ValidateGPU)
}

func parseRAM(doc *goquery.Document, obs Observer) []models.RAM {
	acc := newAccumulator[models.RAM](models.CategoryRAM, obs)
	for _, c := range locateRAM(doc) {
		price, ok := parser.ParsePriceMinorUnits(c.price)
		if !ok {
			acc.skip(SkipMissingPrice)
			continue
		}
		name := parser.CleanRAMName(c.title)
		frequency, _ := parser.ParseMHz(name)
		acc.add(models.RAM{
			Name:      name,
			Price:     price,
			Frequency: frequency,
			Brand:     parser.FirstToken(name),
			RAMType:   parser.RAMType(name),
		})
	}
	return acc.complete(parser.ValidateRAM)
}

func parsePSUs(doc *goquery.Document, obs Observer) []models.PSU {
	acc := newAccumulator[models.PSU](models.CategoryPSU, obs)
	for _, c := range locatePSUs(doc) {
		price, ok := parser.ParsePrice(c.price)
		if !ok {
			acc.skip(SkipMissingPrice)
			continue
		}
		power, _ := parser.ParseWattage(c.title)
		acc.add(models.PSU{
			Name:  c.title,
			Price: price,
			Power: power,
		})
	}
	return acc.complete(parser.ValidatePSU)
}
