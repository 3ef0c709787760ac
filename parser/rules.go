package parser

import "strings"

// Rule maps a case-insensitive keyword to the value it implies.
type Rule struct {
	Keyword string
	Value   string
}

// Rules are evaluated in order and the first keyword found wins.
type Rules []Rule

// Match returns the value of the first rule whose keyword occurs in text.
func (rs Rules) Match(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, r := range rs {
		if strings.Contains(lower, strings.ToLower(r.Keyword)) {
			return r.Value, true
		}
	}
	return "", false
}

// GPUBrandRules orders GPU vendor keywords by priority. A title naming both
// "GeForce" and "Intel" is a GeForce card.
var GPUBrandRules = Rules{
	{Keyword: "geforce", Value: "NVIDIA GeForce"},
	{Keyword: "radeon", Value: "AMD Radeon"},
	{Keyword: "intel", Value: "Intel ARC"},
}

// RAMTypeRules recognises the memory generation from a kit title.
// Matching is case-sensitive on the upper-case marker.
var RAMTypeRules = []string{"DDR4"}

// cpuBrands are the only first tokens accepted for processors.
var cpuBrands = []string{"amd", "intel"}

// CPUBrand returns the first token of the title and whether it names a
// supported processor vendor.
func CPUBrand(title string) (string, bool) {
	brand := FirstToken(title)
	for _, b := range cpuBrands {
		if strings.EqualFold(brand, b) {
			return brand, true
		}
	}
	return brand, false
}

// GPUBrand infers the vendor line from keywords in the title.
func GPUBrand(title string) string {
	brand, _ := GPUBrandRules.Match(title)
	return brand
}

// RAMType returns the first memory generation marker present in title.
func RAMType(title string) string {
	for _, marker := range RAMTypeRules {
		if strings.Contains(title, marker) {
			return marker
		}
	}
	return ""
}
