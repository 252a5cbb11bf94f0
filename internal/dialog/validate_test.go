package dialog

import "testing"

func TestValidCardNumber(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"4111111111111111", true},
		{"5111111111111111", true},
		{"6111111111111111", true},
		{"3111111111111111", false}, // bad prefix
		{"411111111111111", false},  // 15 digits
		{"41111111111111111", false},
		{"4111 1111 1111 1111", false},
		{"", false},
		{"۵۱۱۱۱۱۱۱۱۱۱۱۱۱۱۱", true}, // Persian digits normalized first
		{"  4111111111111111  ", true},
	}
	for _, tt := range tests {
		if got := validCardNumber(tt.input); got != tt.want {
			t.Errorf("validCardNumber(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestValidShabaNumber(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"123456789012345678901234", true},
		{"12345678901234567890123", false},  // 23 digits
		{"1234567890123456789012345", false}, // 25 digits
		{"12345678901234567890123a", false},  // letter
		{"IR3456789012345678901234", false},  // country prefix not accepted
		{"", false},
		{"۱۲۳۴۵۶۷۸۹۰۱۲۳۴۵۶۷۸۹۰۱۲۳۴", true},
	}
	for _, tt := range tests {
		if got := validShabaNumber(tt.input); got != tt.want {
			t.Errorf("validShabaNumber(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseTrailingID(t *testing.T) {
	tests := []struct {
		label  string
		wantID int64
		wantOK bool
	}{
		{"Ali (12345)", 12345, true},
		{"Ali Reza (ok) (99)", 99, true},
		{"Ali", 0, false},
		{"Ali (abc)", 0, false},
		{"Ali (12345", 0, false},
		{"(7)", 7, true},
	}
	for _, tt := range tests {
		id, ok := parseTrailingID(tt.label)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("parseTrailingID(%q) = (%d, %v), want (%d, %v)", tt.label, id, ok, tt.wantID, tt.wantOK)
		}
	}
}
