// Package merchant canonicalizes free-text merchant names into stable cache
// keys and maintains the persisted merchant-to-category cache.
package merchant

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

const maxKeyLen = 50

var (
	parenRe      = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	refRe        = regexp.MustCompile(`\b(?:REF|TRX|TXN)[:#]?\s*[A-Z0-9]+\b`)
	posRe        = regexp.MustCompile(`\bPOS\s*\d+\b`)
	balanceRe    = regexp.MustCompile(`\b(?:AVAILABLE\s+BALANCE|BALANCE)\b.*$`)
	dateSuffixRe = regexp.MustCompile(`\s+ON\s+\d{1,2}[-/.].*$`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// aliases maps known transliteration and spelling variants to one canonical
// form. Keys and values are in normalized (uppercase, collapsed) shape.
var aliases = map[string]string{
	"TAMIMI":          "TAMIMI MARKETS",
	"TAMIMI MARKET":   "TAMIMI MARKETS",
	"AL TAMIMI":       "TAMIMI MARKETS",
	"AL BAIK":         "ALBAIK",
	"AL-BAIK":         "ALBAIK",
	"MC DONALDS":      "MCDONALDS",
	"MACDONALDS":      "MCDONALDS",
	"HUNGER STATION":  "HUNGERSTATION",
	"STC PAY":         "STCPAY",
	"AL OTHAIM":       "OTHAIM MARKETS",
	"ABDULLAH OTHAIM": "OTHAIM MARKETS",
}

// canonical is the sorted set of alias targets, used for near-miss folding.
// Sorted so the fold is deterministic.
var canonical, canonicalSet = func() ([]string, map[string]struct{}) {
	set := make(map[string]struct{})
	for _, v := range aliases {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, set
}()

// Normalize canonicalizes a raw merchant string into the cache key form:
// uppercase, collapsed whitespace, noise tokens stripped, known variants
// folded to one canonical spelling. Normalize is idempotent:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))

	s = parenRe.ReplaceAllString(s, " ")
	s = balanceRe.ReplaceAllString(s, "")
	s = dateSuffixRe.ReplaceAllString(s, "")
	s = refRe.ReplaceAllString(s, "")
	s = posRe.ReplaceAllString(s, "")

	s = spaceRe.ReplaceAllString(s, " ")
	s = fold(strings.Trim(s, " .,:;-*"))

	if r := []rune(s); len(r) > maxKeyLen {
		// Truncation can cut at a punctuation or space boundary, so the trim
		// and fold run again to keep Normalize idempotent on the capped key.
		s = fold(strings.Trim(string(r[:maxKeyLen]), " .,:;-*"))
	}
	return s
}

// fold maps known variants onto one canonical spelling: exact alias first,
// then one-edit distance (transliteration typos). Canonical names map to
// themselves, which keeps the fold idempotent.
func fold(s string) string {
	if target, ok := aliases[s]; ok {
		return target
	}
	if _, ok := canonicalSet[s]; ok || len(s) < 5 {
		return s
	}
	for _, c := range canonical {
		if levenshtein.ComputeDistance(s, c) <= 1 {
			return c
		}
	}
	return s
}
