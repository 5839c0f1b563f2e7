// Package extract turns raw bank/payment SMS text into typed transactions by
// applying the template library in deterministic priority order.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yaldosari/sms-expense-tracker/internal/domain"
	"github.com/yaldosari/sms-expense-tracker/internal/merchant"
)

// Engine applies the pattern library to raw messages. Extraction is pure and
// deterministic: the same message with the same library always yields the
// same result, and every failure path returns a typed ExtractionFailure.
type Engine struct {
	lib             *Library
	defaultCurrency string
}

// NewEngine builds an extraction engine over a compiled library.
// defaultCurrency applies when neither the body nor the template carries a
// currency.
func NewEngine(lib *Library, defaultCurrency string) *Engine {
	if defaultCurrency == "" {
		defaultCurrency = "SAR"
	}
	return &Engine{lib: lib, defaultCurrency: defaultCurrency}
}

// Extract parses one message into a transaction, or a typed failure. It
// performs no I/O.
func (e *Engine) Extract(msg domain.RawMessage) (*domain.Transaction, *domain.ExtractionFailure) {
	ref := MessageRef(msg)

	candidates := e.lib.Candidates(msg.Sender)
	if len(candidates) == 0 {
		return nil, &domain.ExtractionFailure{
			Kind:       domain.FailureNoTemplateForSender,
			MessageRef: ref,
			Detail:     fmt.Sprintf("no templates for sender %q", msg.Sender),
		}
	}

	body := foldDigits(msg.Body)

	for _, tpl := range candidates {
		matches := tpl.re.FindAllStringSubmatch(body, -1)
		if len(matches) == 0 {
			continue
		}

		m := matches[0]
		if m[tpl.amountIdx] == "" {
			continue
		}
		if tpl.merchantIdx > 0 && strings.TrimSpace(m[tpl.merchantIdx]) == "" && tpl.DefaultMerchant == "" {
			// Not a full match for this template; try the next one.
			continue
		}

		// A template that matches the body at several places with different
		// principal amounts cannot be bound deterministically.
		for _, other := range matches[1:] {
			if other[tpl.amountIdx] != m[tpl.amountIdx] {
				return nil, &domain.ExtractionFailure{
					Kind:       domain.FailureAmbiguousMatch,
					MessageRef: ref,
					Detail:     fmt.Sprintf("template %s binds multiple amounts (%s, %s)", tpl.ID, m[tpl.amountIdx], other[tpl.amountIdx]),
				}
			}
		}

		return e.bind(tpl, m, msg, body, ref)
	}

	return nil, &domain.ExtractionFailure{
		Kind:       domain.FailureNoMatch,
		MessageRef: ref,
		Detail:     fmt.Sprintf("no template matched message from %q", msg.Sender),
	}
}

// bind normalizes the matched fields into a transaction.
func (e *Engine) bind(tpl *Template, m []string, msg domain.RawMessage, foldedBody, ref string) (*domain.Transaction, *domain.ExtractionFailure) {
	amount, err := parseAmount(m[tpl.amountIdx], tpl.ThousandsSep, tpl.DecimalSep)
	if err != nil {
		return nil, &domain.ExtractionFailure{
			Kind:       domain.FailureFieldParse,
			MessageRef: ref,
			Field:      "amount",
			Raw:        m[tpl.amountIdx],
			Detail:     err.Error(),
		}
	}

	currency := ""
	if tpl.currencyIdx > 0 {
		currency = resolveCurrency(m[tpl.currencyIdx])
	}
	if currency == "" {
		currency = tpl.CurrencyDefault
	}
	if currency == "" {
		currency = e.defaultCurrency
	}

	occurredAt := msg.ReceivedAt
	if tpl.dateIdx > 0 && m[tpl.dateIdx] != "" {
		parsed, err := time.Parse(tpl.DateLayout, m[tpl.dateIdx])
		if err != nil {
			return nil, &domain.ExtractionFailure{
				Kind:       domain.FailureFieldParse,
				MessageRef: ref,
				Field:      "date",
				Raw:        m[tpl.dateIdx],
				Detail:     err.Error(),
			}
		}
		occurredAt = parsed
	}

	merchantRaw := tpl.DefaultMerchant
	if tpl.merchantIdx > 0 && strings.TrimSpace(m[tpl.merchantIdx]) != "" {
		merchantRaw = cleanMerchant(m[tpl.merchantIdx])
	}
	if merchantRaw == "" {
		return nil, &domain.ExtractionFailure{
			Kind:       domain.FailureFieldParse,
			MessageRef: ref,
			Field:      "merchant",
			Raw:        m[tpl.merchantIdx],
			Detail:     "empty merchant after cleaning",
		}
	}

	txType := tpl.Type
	if txType == "" {
		txType = classifyType(foldedBody)
	}

	return &domain.Transaction{
		Amount:             amount,
		Currency:           currency,
		MerchantRaw:        merchantRaw,
		MerchantNormalized: merchant.Normalize(merchantRaw),
		Sender:             msg.Sender,
		OccurredAt:         occurredAt,
		Type:               txType,
		SourceMessageRef:   ref,
	}, nil
}

// MessageRef derives a deterministic reference for a raw message, linking the
// stored transaction back to its source without retaining the full body.
func MessageRef(msg domain.RawMessage) string {
	seed := msg.Sender + "\x00" + msg.Body + "\x00" + msg.ReceivedAt.UTC().Format(time.RFC3339Nano)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}

var (
	trailingJunkRe = regexp.MustCompile(`[\s.,:;*-]+$`)
	innerSpaceRe   = regexp.MustCompile(`\s+`)

	refundRe   = regexp.MustCompile(`(?i)\b(refund(ed)?|revers(al|ed))\b`)
	creditRe   = regexp.MustCompile(`(?i)\b(credited|deposit(ed)?)\b`)
	transferRe = regexp.MustCompile(`(?i)\btransfer(red)?\b`)
)

// cleanMerchant trims the matched merchant substring: surrounding whitespace
// and punctuation go, internal whitespace collapses. Canonicalization into a
// cache key happens later in the merchant package.
func cleanMerchant(s string) string {
	s = strings.TrimSpace(s)
	s = trailingJunkRe.ReplaceAllString(s, "")
	s = innerSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// classifyType infers the transaction direction from body keywords when the
// template does not pin it. Ambiguous spends default to debit, the dominant
// case for expense tracking.
func classifyType(body string) domain.TransactionType {
	switch {
	case refundRe.MatchString(body) || strings.Contains(body, "استرداد") || strings.Contains(body, "استرجاع"):
		return domain.TypeRefund
	case creditRe.MatchString(body) || strings.Contains(body, "ايداع") || strings.Contains(body, "إيداع"):
		return domain.TypeCredit
	case transferRe.MatchString(body) || strings.Contains(body, "حوالة") || strings.Contains(body, "تحويل"):
		return domain.TypeTransfer
	default:
		return domain.TypeDebit
	}
}
