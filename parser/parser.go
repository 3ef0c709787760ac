package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// currencyPriceRegexp matches a currency sign followed by digits and separators.
	currencyPriceRegexp = regexp.MustCompile(`[£$€][\d,.]+`)
	ghzRegexp           = regexp.MustCompile(`(?i)(\d+\.\d+)GHz`)
	wattageRegexp       = regexp.MustCompile(`(\d+)\s*W`)
	digitsRegexp        = regexp.MustCompile(`\d+`)
)

// ParsePrice finds the first currency-prefixed amount in text, drops the
// grouping commas and parses the remainder. "£1,234.56" yields 1234.56.
func ParsePrice(text string) (float64, bool) {
	match := currencyPriceRegexp.FindString(text)
	if match == "" {
		return 0, false
	}
	_, size := utf8.DecodeRuneInString(match)
	number := strings.ReplaceAll(match[size:], ",", "")
	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ParsePriceMinorUnits reads a pound label by concatenating every digit after
// a "£" and treating the result as pence. Decimal and grouping separators are
// ignored, so "£1,234" yields 12.34 where ParsePrice yields 1234. The first
// non-zero segment wins.
func ParsePriceMinorUnits(text string) (float64, bool) {
	if !strings.Contains(text, "£") {
		return 0, false
	}
	for _, part := range strings.Split(text, "£") {
		if part == "" {
			continue
		}
		digits := keepDigits(part)
		if digits == "" {
			continue
		}
		minor, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			continue
		}
		if value := minor / 100; value != 0 {
			return value, true
		}
	}
	return 0, false
}

// ParseGHz extracts a decimal GHz figure from a title and returns it in MHz.
func ParseGHz(title string) (int, bool) {
	m := ghzRegexp.FindStringSubmatch(title)
	if len(m) < 2 {
		return 0, false
	}
	ghz, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return int(math.Round(ghz * 1000)), true
}

// ParseMHz returns the integer token directly in front of the first "MHz".
func ParseMHz(title string) (int, bool) {
	idx := strings.Index(title, "MHz")
	if idx < 0 {
		return 0, false
	}
	fields := strings.Fields(title[:idx])
	if len(fields) == 0 {
		return 0, false
	}
	token := fields[len(fields)-1]
	if !isDigits(token) {
		return 0, false
	}
	mhz, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return mhz, true
}

// ParseMemoryGB scans spec fragments for the first one mentioning "gb" and
// returns its leading integer. Later fragments are not consulted.
func ParseMemoryGB(fragments []string) (int, bool) {
	for _, fragment := range fragments {
		lower := strings.ToLower(strings.TrimSpace(fragment))
		if !strings.Contains(lower, "gb") {
			continue
		}
		match := digitsRegexp.FindString(lower)
		if match == "" {
			return 0, false
		}
		gb, err := strconv.Atoi(match)
		if err != nil {
			return 0, false
		}
		return gb, true
	}
	return 0, false
}

// ParseWattage extracts "<n>W" or "<n> W" from a title.
func ParseWattage(title string) (int, bool) {
	m := wattageRegexp.FindStringSubmatch(title)
	if len(m) < 2 {
		return 0, false
	}
	watts, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return watts, true
}

// FirstToken returns the first whitespace-delimited word of title.
func FirstToken(title string) string {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// CleanRAMName drops the parenthesised suffix that kit listings carry.
func CleanRAMName(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "("); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// NormalizeText trims the text and collapses internal whitespace runs.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
