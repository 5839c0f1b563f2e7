package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"time"

	"github.com/yaldosari/sms-expense-tracker/internal/domain"
)

// WildcardSender marks a template as applicable to any sender. Sender-specific
// templates always take priority over wildcard ones.
const WildcardSender = "*"

// TemplateSpec is the static configuration form of one extraction template.
// The pattern is a regular expression with named capture groups binding
// semantic fields: amount (required), merchant, currency and date. The named
// amount group is what designates the principal transaction amount when a
// message carries several monetary values.
type TemplateSpec struct {
	ID              string                 `json:"id"`
	Sender          string                 `json:"sender"` // exact sender or WildcardSender
	Pattern         string                 `json:"pattern"`
	DefaultMerchant string                 `json:"default_merchant,omitempty"` // used when the pattern has no merchant group
	CurrencyDefault string                 `json:"currency_default,omitempty"` // used when the body carries no currency token
	DateLayout      string                 `json:"date_layout,omitempty"`      // Go layout for the date group, if any
	Type            domain.TransactionType `json:"type,omitempty"`
	ThousandsSep    string                 `json:"thousands_sep,omitempty"` // defaults to ","
	DecimalSep      string                 `json:"decimal_sep,omitempty"`   // defaults to "."
}

// LoadTemplates reads additional template specs from a JSON file. They are
// appended after the built-ins, so built-in sender-specific templates keep
// their declaration priority within each tier.
func LoadTemplates(path string) ([]TemplateSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("templates: read %s: %w", path, err)
	}
	var specs []TemplateSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("templates: parse %s: %w", path, err)
	}
	return specs, nil
}

// Template is a compiled extraction template.
type Template struct {
	TemplateSpec
	re          *regexp.Regexp
	amountIdx   int
	merchantIdx int
	currencyIdx int
	dateIdx     int
}

func (t *Template) hasCurrencyGroup() bool { return t.currencyIdx > 0 }

// Library is the registry of compiled templates, bucketed by sender with
// priority ordering applied: within a sender, templates requiring a currency
// token come before looser ones, otherwise declaration order is preserved.
type Library struct {
	bySender map[string][]*Template
	generic  []*Template
}

// NewLibrary compiles and validates the template specs. Any malformed
// template is a fatal configuration error: it invalidates every subsequent
// extraction, so callers must abort before processing messages.
func NewLibrary(specs []TemplateSpec) (*Library, error) {
	lib := &Library{bySender: make(map[string][]*Template)}
	seen := make(map[string]struct{}, len(specs))

	for i, spec := range specs {
		t, err := compile(spec)
		if err != nil {
			return nil, fmt.Errorf("template %d (%s): %w", i, spec.ID, err)
		}
		if _, dup := seen[spec.ID]; dup {
			return nil, fmt.Errorf("template %d: duplicate id %q", i, spec.ID)
		}
		seen[spec.ID] = struct{}{}

		if spec.Sender == WildcardSender {
			lib.generic = append(lib.generic, t)
		} else {
			lib.bySender[spec.Sender] = append(lib.bySender[spec.Sender], t)
		}
	}

	for sender := range lib.bySender {
		orderByCurrencySpecificity(lib.bySender[sender])
	}
	orderByCurrencySpecificity(lib.generic)
	return lib, nil
}

func compile(spec TemplateSpec) (*Template, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("missing id")
	}
	if spec.Sender == "" {
		return nil, fmt.Errorf("missing sender")
	}
	re, err := regexp.Compile(spec.Pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern: %w", err)
	}

	t := &Template{TemplateSpec: spec, re: re}
	for i, name := range re.SubexpNames() {
		switch name {
		case "amount":
			t.amountIdx = i
		case "merchant":
			t.merchantIdx = i
		case "currency":
			t.currencyIdx = i
		case "date":
			t.dateIdx = i
		}
	}
	if t.amountIdx == 0 {
		return nil, fmt.Errorf("pattern has no (?P<amount>...) group")
	}
	if t.merchantIdx == 0 && spec.DefaultMerchant == "" {
		return nil, fmt.Errorf("pattern has neither a merchant group nor a default merchant")
	}
	if t.dateIdx > 0 {
		if spec.DateLayout == "" {
			return nil, fmt.Errorf("date group without a date layout")
		}
		if _, err := time.Parse(spec.DateLayout, spec.DateLayout); err != nil {
			// A layout must parse itself; anything else is malformed.
			return nil, fmt.Errorf("invalid date layout %q", spec.DateLayout)
		}
	}
	switch spec.Type {
	case "", domain.TypeDebit, domain.TypeCredit, domain.TypeRefund, domain.TypeTransfer:
	default:
		return nil, fmt.Errorf("unknown transaction type %q", spec.Type)
	}

	if t.ThousandsSep == "" {
		t.ThousandsSep = ","
	}
	if t.DecimalSep == "" {
		t.DecimalSep = "."
	}
	return t, nil
}

// orderByCurrencySpecificity stably moves templates with a currency group in
// front of those without, keeping declaration order inside each tier.
func orderByCurrencySpecificity(ts []*Template) {
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].hasCurrencyGroup() && !ts[j].hasCurrencyGroup()
	})
}

// Candidates returns the templates eligible for a sender in priority order:
// sender-specific templates first, then the generic wildcard set.
func (l *Library) Candidates(sender string) []*Template {
	specific := l.bySender[sender]
	out := make([]*Template, 0, len(specific)+len(l.generic))
	out = append(out, specific...)
	out = append(out, l.generic...)
	return out
}
