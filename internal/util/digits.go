package util

import "strings"

// digitMap folds Persian (۰-۹) and Arabic-Indic (٠-٩) digits onto ASCII.
var digitMap = map[rune]rune{
	'۰': '0', '۱': '1', '۲': '2', '۳': '3', '۴': '4',
	'۵': '5', '۶': '6', '۷': '7', '۸': '8', '۹': '9',
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
}

// NormalizeDigits replaces Persian and Arabic-Indic digits with their ASCII
// equivalents so that validators and copyable number displays always see
// Latin digits. Other runes pass through unchanged.
func NormalizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if d, ok := digitMap[r]; ok {
			return d
		}
		return r
	}, s)
}
