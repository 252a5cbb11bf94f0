package dialog

import (
	"regexp"
	"strings"

	"github.com/daftarche/bankbook/internal/util"
)

var (
	// Exactly 16 digits, first digit 4, 5 or 6.
	cardNumberRe = regexp.MustCompile(`^[456]\d{15}$`)
	// Exactly 24 digits, the country-prefix letters are not entered.
	shabaNumberRe = regexp.MustCompile(`^\d{24}$`)
)

// normalizeInput trims whitespace and maps Persian/Arabic-Indic digits to
// ASCII. Every free-text handler runs input through this before validating.
func normalizeInput(s string) string {
	return util.NormalizeDigits(strings.TrimSpace(s))
}

func validCardNumber(s string) bool {
	return cardNumberRe.MatchString(normalizeInput(s))
}

func validShabaNumber(s string) bool {
	return shabaNumberRe.MatchString(normalizeInput(s))
}
