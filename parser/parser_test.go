package parser

import (
	"testing"

	"github.com/aluiziolira/go-scrape-parts/models"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{name: "grouped pounds", input: "£1,234.56", want: 1234.56, wantOK: true},
		{name: "surrounding text", input: "Now only £89.99 inc VAT", want: 89.99, wantOK: true},
		{name: "dollar sign", input: "$45", want: 45, wantOK: true},
		{name: "first amount wins", input: "£10.00 was £12.00", want: 10, wantOK: true},
		{name: "trailing dot", input: "£12.", want: 12, wantOK: true},
		{name: "no currency", input: "1234.56", wantOK: false},
		{name: "separators only", input: "£,", wantOK: false},
		{name: "malformed number", input: "£1.2.3", wantOK: false},
		{name: "empty string", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParsePrice(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParsePriceMinorUnits(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{name: "decimal label", input: "£12.34", want: 12.34, wantOK: true},
		{name: "grouped label", input: "£1,234.56", want: 1234.56, wantOK: true},
		{name: "whole pounds read as pence", input: "£45", want: 0.45, wantOK: true},
		{name: "zero segment skipped", input: "£0.00 £59.99", want: 59.99, wantOK: true},
		{name: "no pound sign", input: "$12.34", wantOK: false},
		{name: "no digits", input: "£ call", wantOK: false},
		{name: "empty string", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePriceMinorUnits(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParsePriceMinorUnits(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// CPU, GPU and PSU labels go through ParsePrice; RAM labels go through
// ParsePriceMinorUnits. The two disagree whenever a label has no pence.
func TestPriceStrategiesDiverge(t *testing.T) {
	inputs := []string{"£1,234", "£45"}
	for _, input := range inputs {
		standard, ok := ParsePrice(input)
		if !ok {
			t.Fatalf("ParsePrice(%q) failed", input)
		}
		minor, ok := ParsePriceMinorUnits(input)
		if !ok {
			t.Fatalf("ParsePriceMinorUnits(%q) failed", input)
		}
		if standard == minor {
			t.Fatalf("strategies agree on %q (%v); expected divergence", input, standard)
		}
		if standard/100 != minor {
			t.Fatalf("ParsePrice(%q)=%v, ParsePriceMinorUnits=%v; want factor 100", input, standard, minor)
		}
	}

	standard, _ := ParsePrice("£12.34")
	minor, _ := ParsePriceMinorUnits("£12.34")
	if standard != 12.34 || minor != 12.34 {
		t.Fatalf("labels with pence should agree, got %v and %v", standard, minor)
	}
}

func TestParseGHz(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{input: "3.5GHz", want: 3500, wantOK: true},
		{input: "Intel Core i5 3.5GHz", want: 3500, wantOK: true},
		{input: "AMD Ryzen 7 4.35ghz", want: 4350, wantOK: true},
		{input: "AMD Ryzen 5 4GHz", wantOK: false},
		{input: "AMD Ryzen 5 3.7 GHz", wantOK: false},
		{input: "", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := ParseGHz(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseGHz(%q) = %d, %v; want %d, %v", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseMHz(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{input: "Corsair Vengeance LPX 16GB DDR4 3200MHz", want: 3200, wantOK: true},
		{input: "Kingston Fury 3600 MHz", want: 3600, wantOK: true},
		{input: "Crucial DDR4-3200MHz", wantOK: false},
		{input: "MHz", wantOK: false},
		{input: "Corsair 16GB DDR4", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := ParseMHz(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseMHz(%q) = %d, %v; want %d, %v", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseMemoryGB(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		want      int
		wantOK    bool
	}{
		{name: "single fragment", fragments: []string{"8GB GDDR6"}, want: 8, wantOK: true},
		{name: "skips non memory fragments", fragments: []string{"PCIe 4.0", "12 GB GDDR6X"}, want: 12, wantOK: true},
		{name: "first gb fragment wins", fragments: []string{"16GB", "24GB"}, want: 16, wantOK: true},
		{name: "gb fragment without digits stops scan", fragments: []string{"GB memory", "8GB"}, wantOK: false},
		{name: "no gb fragment", fragments: []string{"PCIe 4.0", "Boost 2.5GHz"}, wantOK: false},
		{name: "no fragments", fragments: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseMemoryGB(tt.fragments)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseMemoryGB(%q) = %d, %v; want %d, %v", tt.fragments, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseWattage(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{input: "Corsair RM750x 750W 80 PLUS Gold", want: 750, wantOK: true},
		{input: "be quiet! Pure Power 12 M 850 W", want: 850, wantOK: true},
		{input: "Seasonic Focus GX", wantOK: false},
		{input: "", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := ParseWattage(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseWattage(%q) = %d, %v; want %d, %v", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCleanRAMName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "  Corsair Vengeance 16GB DDR4 3200MHz (2x8GB)  ", expected: "Corsair Vengeance 16GB DDR4 3200MHz"},
		{input: "Kingston Fury", expected: "Kingston Fury"},
		{input: "(bundle)", expected: ""},
	}

	for _, tt := range tests {
		if got := CleanRAMName(tt.input); got != tt.expected {
			t.Errorf("CleanRAMName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestCPUBrand(t *testing.T) {
	tests := []struct {
		input     string
		wantBrand string
		wantOK    bool
	}{
		{input: "Intel Core i5 3.5GHz", wantBrand: "Intel", wantOK: true},
		{input: "AMD Ryzen 5 5600X", wantBrand: "AMD", wantOK: true},
		{input: "amd Ryzen 9", wantBrand: "amd", wantOK: true},
		{input: "Apple M2", wantBrand: "Apple", wantOK: false},
		{input: "Intel-Core i3", wantBrand: "Intel-Core", wantOK: false},
		{input: "", wantBrand: "", wantOK: false},
	}

	for _, tt := range tests {
		brand, ok := CPUBrand(tt.input)
		if brand != tt.wantBrand || ok != tt.wantOK {
			t.Errorf("CPUBrand(%q) = %q, %v; want %q, %v", tt.input, brand, ok, tt.wantBrand, tt.wantOK)
		}
	}
}

func TestGPUBrand(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "MSI GeForce RTX 4070", expected: "NVIDIA GeForce"},
		{input: "Sapphire Radeon RX 7800 XT", expected: "AMD Radeon"},
		{input: "Intel Arc A770", expected: "Intel ARC"},
		{input: "GeForce card with Intel bundle", expected: "NVIDIA GeForce"},
		{input: "Radeon and Intel combo", expected: "AMD Radeon"},
		{input: "Matrox G200", expected: ""},
	}

	for _, tt := range tests {
		if got := GPUBrand(tt.input); got != tt.expected {
			t.Errorf("GPUBrand(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRulesMatchOrder(t *testing.T) {
	rules := Rules{
		{Keyword: "b", Value: "second"},
		{Keyword: "a", Value: "first"},
	}
	got, ok := rules.Match("a b")
	if !ok || got != "second" {
		t.Fatalf("Match = %q, %v; want rule order to win", got, ok)
	}
	if _, ok := rules.Match("zzz"); ok {
		t.Fatalf("Match should report no match")
	}
}

func TestRAMType(t *testing.T) {
	if got := RAMType("Corsair 16GB DDR4 3200MHz"); got != "DDR4" {
		t.Errorf("RAMType = %q, want DDR4", got)
	}
	if got := RAMType("Corsair 16GB ddr4 3200MHz"); got != "" {
		t.Errorf("RAMType lower case = %q, want empty", got)
	}
	if got := RAMType("Corsair 32GB DDR5 6000MHz"); got != "" {
		t.Errorf("RAMType DDR5 = %q, want empty", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		product models.Product
		wantErr bool
	}{
		{name: "valid cpu", product: models.CPU{Name: "Intel Core i5", Brand: "Intel", Price: 150}},
		{name: "cpu without price", product: models.CPU{Name: "Intel Core i5", Brand: "Intel"}, wantErr: true},
		{name: "cpu blank name", product: models.CPU{Name: "  ", Brand: "Intel", Price: 1}, wantErr: true},
		{name: "valid gpu", product: models.GPU{Name: "RTX 4070", Brand: "NVIDIA GeForce", Memory: 12, Price: 499}},
		{name: "gpu without memory", product: models.GPU{Name: "RTX 4070", Brand: "NVIDIA GeForce", Price: 499}, wantErr: true},
		{name: "gpu without brand", product: models.GPU{Name: "G200", Memory: 1, Price: 10}, wantErr: true},
		{name: "valid ram", product: models.RAM{Name: "Corsair", Price: 40, Frequency: 3200, Brand: "Corsair", RAMType: "DDR4"}},
		{name: "ram without type", product: models.RAM{Name: "Corsair", Price: 40, Frequency: 3200, Brand: "Corsair"}, wantErr: true},
		{name: "ram without frequency", product: models.RAM{Name: "Corsair", Price: 40, Brand: "Corsair", RAMType: "DDR4"}, wantErr: true},
		{name: "valid psu", product: models.PSU{Name: "RM750x", Price: 99, Power: 750}},
		{name: "psu without power", product: models.PSU{Name: "RM750x", Price: 99}, wantErr: true},
		{name: "nil product", product: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.product)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
