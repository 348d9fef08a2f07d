package matching

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Regex to extract numeric values, thousands separators included
	numberRegex = regexp.MustCompile(`\d{1,3}(?:,\d{3})+|\d+[,.]?\d*`)
)

// VIN decoders report makes in registry spelling ("CHEVROLET", "MERCEDES-BENZ");
// the fuel economy menus expect the consumer spelling.
var makeAliases = map[string]string{
	"chevrolet":     "Chevrolet",
	"gmc":           "GMC",
	"ford":          "Ford",
	"ram":           "Ram",
	"dodge":         "Dodge",
	"mercedes-benz": "Mercedes-Benz",
	"freightliner":  "Freightliner",
	"hino":          "Hino",
	"isuzu":         "Isuzu",
	"international": "International",
	"kenworth":      "Kenworth",
	"mack":          "Mack",
	"peterbilt":     "Peterbilt",
	"nissan":        "Nissan",
	"toyota":        "Toyota",
	"volvo truck":   "Volvo",
}

// Normalize normalizes a string for comparison
func Normalize(s string) string {
	// Convert to lowercase
	s = strings.ToLower(s)

	// Remove accents
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, _ = transform.String(t, s)

	// Remove extra whitespace
	s = strings.Join(strings.Fields(s), " ")

	// Trim
	s = strings.TrimSpace(s)

	return s
}

// CanonicalMake maps a registry-spelled make to the spelling the fuel
// economy menus use. Unmapped makes are title-cased word by word.
func CanonicalMake(raw string) string {
	normalized := Normalize(raw)
	if alias, ok := makeAliases[normalized]; ok {
		return alias
	}

	words := strings.Fields(normalized)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ExtractNumbers extracts all numbers from a string
func ExtractNumbers(s string) []string {
	return numberRegex.FindAllString(s, -1)
}

// ParsePounds parses a weight figure out of a rating label. Plain integers
// parse directly; range labels like "Class 3: 10,001 - 14,000 lb" yield the
// upper bound of the range. Returns false when no number is present.
func ParsePounds(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}

	// Rating labels quote pound and kilogram figures; the pound upper
	// bound is always the largest number present.
	best := 0
	for _, n := range ExtractNumbers(s) {
		n = strings.ReplaceAll(n, ",", "")
		if i := strings.IndexByte(n, '.'); i >= 0 {
			n = n[:i]
		}
		if v, err := strconv.Atoi(n); err == nil && v > best {
			best = v
		}
	}
	if best == 0 {
		return 0, false
	}
	return best, true
}
