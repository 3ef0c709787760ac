package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/aluiziolira/go-scrape-parts/parser"
)

const (
	// MaxCPUCandidates caps both the CPU name and price lists before pairing.
	MaxCPUCandidates = 24
	// MaxGPURows caps the number of GPU table rows considered.
	MaxGPURows = 60
)

var (
	cpuNameSel      = cascadia.MustCompile(".ProductName-sc-d3c4p4-6")
	priceLabelSel   = cascadia.MustCompile("span.PriceLabel-sc-lboeq9-0")
	gpuRowSel       = cascadia.MustCompile("tr.Tr-sc-1stvbsu-2.chMRiA")
	tableNameSel    = cascadia.MustCompile(".ProductNameTable-sc-1stvbsu-3.bbvppQ")
	gpuTitleSel     = cascadia.MustCompile("h3.ProductNameTable-sc-1stvbsu-3.bbvppQ")
	gpuPropertySel  = cascadia.MustCompile("div.PropertyContainer-sc-1stvbsu-11.TVmeo")
	psuTitleSel     = cascadia.MustCompile("h3")
	psuPriceTextSel = cascadia.MustCompile("span.Text--o69vef")
)

// pair is a title paired with the raw text of its price label.
type pair struct {
	title string
	price string
}

// gpuRow is one table row. hasTitle and hasPrice report whether the row
// carried the expected nodes at all.
type gpuRow struct {
	title     string
	price     string
	fragments []string
	hasTitle  bool
	hasPrice  bool
}

func newDocument(markup string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	return doc, nil
}

// locateCPUs pairs name and price nodes by position after capping each list.
func locateCPUs(doc *goquery.Document) []pair {
	names := limit(doc.FindMatcher(cpuNameSel), MaxCPUCandidates)
	prices := limit(doc.FindMatcher(priceLabelSel), MaxCPUCandidates)
	return zipText(names, prices)
}

// locateRAM pairs every name node with the price node at the same index.
func locateRAM(doc *goquery.Document) []pair {
	names := doc.FindMatcher(tableNameSel)
	prices := limit(doc.FindMatcher(priceLabelSel), names.Length())
	return zipText(names, prices)
}

func locateGPURows(doc *goquery.Document) []gpuRow {
	rows := limit(doc.FindMatcher(gpuRowSel), MaxGPURows)
	out := make([]gpuRow, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		title, hasTitle := childText(row, gpuTitleSel)
		price, hasPrice := childText(row, priceLabelSel)
		var fragments []string
		row.FindMatcher(gpuPropertySel).Each(func(_ int, prop *goquery.Selection) {
			fragments = append(fragments, textOf(prop))
		})
		out = append(out, gpuRow{
			title:     title,
			price:     price,
			fragments: fragments,
			hasTitle:  hasTitle,
			hasPrice:  hasPrice,
		})
	})
	return out
}

// locatePSUs treats every heading as a title and pairs it with the first
// price text that follows it in document order, descendants included.
// Several headings may share one price when nothing sits between them.
func locatePSUs(doc *goquery.Document) []pair {
	titles := make(map[*html.Node]string)
	doc.FindMatcher(psuTitleSel).Each(func(_ int, s *goquery.Selection) {
		titles[s.Get(0)] = textOf(s)
	})
	if len(titles) == 0 {
		return nil
	}
	prices := make(map[*html.Node]string)
	doc.FindMatcher(psuPriceTextSel).Each(func(_ int, s *goquery.Selection) {
		prices[s.Get(0)] = textOf(s)
	})

	out := make([]pair, 0, len(titles))
	var pending []int
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if price, ok := prices[n]; ok {
				for _, idx := range pending {
					out[idx].price = price
				}
				pending = pending[:0]
			}
			if title, ok := titles[n]; ok {
				out = append(out, pair{title: title})
				pending = append(pending, len(out)-1)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}
	return out
}

func zipText(names, prices *goquery.Selection) []pair {
	n := min(names.Length(), prices.Length())
	out := make([]pair, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, pair{
			title: textOf(names.Eq(i)),
			price: textOf(prices.Eq(i)),
		})
	}
	return out
}

func childText(s *goquery.Selection, m goquery.Matcher) (string, bool) {
	child := s.FindMatcher(m).First()
	if child.Length() == 0 {
		return "", false
	}
	return textOf(child), true
}

func limit(s *goquery.Selection, n int) *goquery.Selection {
	if s.Length() > n {
		return s.Slice(0, n)
	}
	return s
}

func textOf(s *goquery.Selection) string {
	return parser.NormalizeText(s.Text())
}
