package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"CHEVROLET", "chevrolet"},
		{"  Mercedes-Benz  ", "mercedes-benz"},
		{"Citroën", "citroen"},
		{"FORD   F-350", "ford f-350"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.input), "input %q", tt.input)
	}
}

func TestCanonicalMake(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"CHEVROLET", "Chevrolet"},
		{"gmc", "GMC"},
		{"MERCEDES-BENZ", "Mercedes-Benz"},
		{"FREIGHTLINER", "Freightliner"},
		{"VOLVO TRUCK", "Volvo"},
		// Unmapped makes fall back to word-by-word title case
		{"BLUE BIRD", "Blue Bird"},
		{"rivian", "Rivian"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalMake(tt.input), "input %q", tt.input)
	}
}

func TestExtractNumbers(t *testing.T) {
	nums := ExtractNumbers("Class 3: 10,001 - 14,000 lb (4,536 - 6,350 kg)")
	assert.Equal(t, []string{"3", "10,001", "14,000", "4,536", "6,350"}, nums)

	assert.Nil(t, ExtractNumbers("no digits here"))
}

func TestParsePounds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
		ok    bool
	}{
		{"plain integer", "14000", 14000, true},
		{"class label with kg range", "Class 3: 10,001 - 14,000 lb (4,536 - 6,350 kg)", 14000, true},
		{"class label without kg", "Class 2E: 9,501 - 10,000 lb", 10000, true},
		{"single figure with unit", "19,500 lb", 19500, true},
		{"empty", "", 0, false},
		{"no numbers", "Not Applicable", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePounds(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
