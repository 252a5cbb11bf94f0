package util

import "testing"

func TestNormalizeDigits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"persian digits", "۱۲۳۴۵۶۷۸۹۰", "1234567890"},
		{"arabic indic digits", "١٢٣٤٥٦٧٨٩٠", "1234567890"},
		{"mixed with ascii", "card ۴۱۱۱-1111", "card 4111-1111"},
		{"ascii passthrough", "4111111111111111", "4111111111111111"},
		{"empty", "", ""},
		{"non digits untouched", "سلام", "سلام"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDigits(tt.input); got != tt.want {
				t.Errorf("NormalizeDigits(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
