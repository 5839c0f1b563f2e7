package extract

import "strings"

// digitFolds maps Arabic-Indic and Eastern Arabic-Indic digits (and the
// Arabic decimal/thousands separators) to their Latin equivalents so amounts
// and timestamps parse identically regardless of script.
var digitFolds = map[rune]rune{
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
	'۰': '0', '۱': '1', '۲': '2', '۳': '3', '۴': '4',
	'۵': '5', '۶': '6', '۷': '7', '۸': '8', '۹': '9',
	'٫': '.', '٬': ',',
}

// foldDigits rewrites Arabic-Indic digits to ASCII. Non-digit text is left
// untouched.
func foldDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if folded, ok := digitFolds[r]; ok {
			return folded
		}
		return r
	}, s)
}
