// Package taxonomy holds the category taxonomy and the ordered keyword-rule
// table used for rule-based categorization. Rule order is a visible contract:
// the first listed category whose keyword set matches wins.
package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/yaldosari/sms-expense-tracker/internal/domain"
)

// Rule binds one category to the keyword set that claims it. Keywords are
// matched as case-insensitive substrings of the normalized merchant name.
type Rule struct {
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

// Taxonomy is the full category configuration: the allowed label set plus the
// ordered rule table.
type Taxonomy struct {
	categories []string
	rules      []Rule
	allowed    map[string]struct{}
}

type taxonomyFile struct {
	Categories []string `json:"categories"`
	Rules      []Rule   `json:"rules"`
}

// Load reads the taxonomy from a JSON file. A malformed taxonomy is a fatal
// configuration error: it invalidates every subsequent categorization, so the
// caller must abort before processing any message.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: read %s: %w", path, err)
	}
	var f taxonomyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("taxonomy: parse %s: %w", path, err)
	}
	return New(f.Categories, f.Rules)
}

// New validates and builds a taxonomy. The Other sentinel is always part of
// the allowed label set even when the configuration omits it.
func New(categories []string, rules []Rule) (*Taxonomy, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("taxonomy: no categories configured")
	}

	t := &Taxonomy{
		categories: categories,
		rules:      rules,
		allowed:    make(map[string]struct{}, len(categories)+1),
	}
	for _, c := range categories {
		if strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("taxonomy: empty category name")
		}
		t.allowed[c] = struct{}{}
	}
	if _, ok := t.allowed[domain.CategoryOther]; !ok {
		t.categories = append(t.categories, domain.CategoryOther)
		t.allowed[domain.CategoryOther] = struct{}{}
	}

	for i, r := range rules {
		if _, ok := t.allowed[r.Category]; !ok {
			return nil, fmt.Errorf("taxonomy: rule %d references unknown category %q", i, r.Category)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("taxonomy: rule %d (%s) has no keywords", i, r.Category)
		}
	}
	return t, nil
}

// Labels returns the allowed category labels in configuration order.
func (t *Taxonomy) Labels() []string {
	out := make([]string, len(t.categories))
	copy(out, t.categories)
	return out
}

// IsAllowed reports whether label is part of the configured taxonomy.
func (t *Taxonomy) IsAllowed(label string) bool {
	_, ok := t.allowed[label]
	return ok
}

// Match scans the rule table in order and returns the first category whose
// keyword set matches a substring of the merchant key. Ties between categories
// are broken by table position.
func (t *Taxonomy) Match(merchantKey string) (string, bool) {
	haystack := strings.ToUpper(merchantKey)
	for _, r := range t.rules {
		for _, kw := range r.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(haystack, strings.ToUpper(kw)) {
				return r.Category, true
			}
		}
	}
	return "", false
}
