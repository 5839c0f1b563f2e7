package extract

import "github.com/yaldosari/sms-expense-tracker/internal/domain"

// BuiltinTemplates returns the template set covering the documented Saudi
// bank and wallet message shapes, plus the generic English/Arabic fallbacks.
// Sender names must match message metadata verbatim.
func BuiltinTemplates() []TemplateSpec {
	return []TemplateSpec{
		// Al Rajhi card purchase, Arabic shape:
		// "شراء بطاقة:9206 مبلغ:SAR 114.38 لدى:SASCO في 01-06-2025"
		{
			ID:              "alrajhi_card_purchase_ar",
			Sender:          "AlRajhiBank",
			Pattern:         `شراء\s*بطاقة:?\s*\d+\s*مبلغ:?\s*(?P<currency>SAR|SR|ريال)\s*(?P<amount>[\d,]+\.?\d*)\s*(?:لدى|لدي):?\s*(?P<merchant>.+?)(?:\s+في\s+(?P<date>\d{2}-\d{2}-\d{4})|\n|$)`,
			CurrencyDefault: "SAR",
			DateLayout:      "02-01-2006",
			Type:            domain.TypeDebit,
		},
		// Al Rajhi POS purchase with an explicit fee line. The amount group
		// designates the principal amount; the fee is matched but not bound.
		{
			ID:              "alrajhi_pos_with_fee",
			Sender:          "AlRajhiBank",
			Pattern:         `(?i)POS\s+purchase\s+Amount:?\s*(?P<currency>SAR|SR)\s*(?P<amount>[\d,]+\.?\d*)(?:\s+Fee:?\s*(?:SAR|SR)\s*[\d,]+\.?\d*)?\s+At:?\s*(?P<merchant>.+?)(?:\n|$)`,
			CurrencyDefault: "SAR",
			Type:            domain.TypeDebit,
		},
		// Al Rajhi transfer, Arabic shape: "حوالة ... مبلغ:SAR 10000 الى:Name"
		{
			ID:              "alrajhi_transfer_ar",
			Sender:          "AlRajhiBank",
			Pattern:         `حوالة.*?(?:مبلغ|المبلغ):?\s*(?P<currency>SAR|SR|ريال)?\s*(?P<amount>[\d,]+\.?\d*)(?:.*?(?:الى|إلى):?\s*(?P<merchant>.+?))?(?:\n|$)`,
			DefaultMerchant: "Transfer",
			CurrencyDefault: "SAR",
			Type:            domain.TypeTransfer,
		},
		// SAIB mixed-script shape: "Amount:139.40 SAR ... At:Keeta A/C:1234"
		{
			ID:              "saib_amount_at",
			Sender:          "SAIB",
			Pattern:         `(?i)(?:Amount|مبلغ):?\s*(?P<amount>[\d,]+\.?\d*)\s*(?P<currency>SAR|SR|ريال)?.*?(?:At|لدى|لدي):?\s*(?P<merchant>.+?)(?:\s+A/C|\n|$)`,
			CurrencyDefault: "SAR",
			Type:            domain.TypeDebit,
		},
		// STC Pay wallet payment.
		{
			ID:              "stcpay_paid_to",
			Sender:          "STC Pay",
			Pattern:         `(?i)paid\s+(?P<currency>SAR|SR)\s*(?P<amount>[\d,]+\.?\d*)\s+to\s+(?P<merchant>.+?)(?:\s+via|\.|\n|$)`,
			CurrencyDefault: "SAR",
			Type:            domain.TypeDebit,
		},
		// urpay wallet purchase.
		{
			ID:              "urpay_purchase",
			Sender:          "urpay",
			Pattern:         `(?i)purchase\s+of\s+(?P<currency>SAR|SR)\s*(?P<amount>[\d,]+\.?\d*)\s+at\s+(?P<merchant>.+?)(?:\.|\n|$)`,
			CurrencyDefault: "SAR",
			Type:            domain.TypeDebit,
		},

		// Generic fallbacks, wildcard sender. Currency-bearing shapes are
		// ordered ahead of looser ones by the library.
		{
			ID:              "generic_spent_at",
			Sender:          WildcardSender,
			Pattern:         `(?i)(?:spent|paid|debited|charged)\s*(?P<currency>SAR|SR|USD|EUR|GBP|AED|INR|Rs\.?)?\s*[\$₹€£¥]?\s*(?P<amount>[\d,]+\.?\d*)\s*(?:at|on|to|for)\s+(?P<merchant>.+?)(?:\s+on\s|\.|\n|$)`,
			CurrencyDefault: "SAR",
		},
		{
			ID:              "generic_amount_debited_for",
			Sender:          WildcardSender,
			Pattern:         `(?i)(?:SAR|SR|USD|Rs\.?|INR)?\s*[\$₹€£¥]?\s*(?P<amount>[\d,]+\.?\d*)\s*(?:debited|withdrawn|paid|spent).*?(?:for|at|to)\s+(?P<merchant>.+?)(?:\s+on\s|\.|\n|$)`,
			CurrencyDefault: "SAR",
			Type:            domain.TypeDebit,
		},
		{
			ID:              "generic_card_used",
			Sender:          WildcardSender,
			Pattern:         `(?i)card.*?(?:used|charged|debited).*?(?:for|of)\s*(?P<currency>SAR|SR|USD|Rs\.?|INR)?\s*[\$₹€£¥]?\s*(?P<amount>[\d,]+\.?\d*)\s*(?:at|on|to|for)\s+(?P<merchant>.+?)(?:\s+on\s|\.|\n|$)`,
			CurrencyDefault: "SAR",
			Type:            domain.TypeDebit,
		},
		{
			ID:              "generic_transaction_of",
			Sender:          WildcardSender,
			Pattern:         `(?i)(?:transaction|purchase)\s+(?:of|for)\s*(?P<currency>SAR|SR|USD|Rs\.?|INR)?\s*[\$₹€£¥]?\s*(?P<amount>[\d,]+\.?\d*)\s*(?:at|on|to|for)\s+(?P<merchant>.+?)(?:\s+on\s|\.|\n|$)`,
			CurrencyDefault: "SAR",
			Type:            domain.TypeDebit,
		},
		{
			ID:              "generic_refund",
			Sender:          WildcardSender,
			Pattern:         `(?i)refund(?:ed)?\s*(?:of)?\s*(?P<currency>SAR|SR|USD)?\s*(?P<amount>[\d,]+\.?\d*)\s*(?:from|at|by)\s+(?P<merchant>.+?)(?:\.|\n|$)`,
			CurrencyDefault: "SAR",
			Type:            domain.TypeRefund,
		},
		{
			ID:              "generic_atm_withdrawal",
			Sender:          WildcardSender,
			Pattern:         `(?i)(?:atm|cash).*?(?:withdrawal|withdrawn)\s*(?:of)?\s*(?P<currency>SAR|SR|USD|Rs\.?|INR)?\s*[\$₹€£¥]?\s*(?P<amount>[\d,]+\.?\d*)`,
			DefaultMerchant: "ATM WITHDRAWAL",
			CurrencyDefault: "SAR",
			Type:            domain.TypeDebit,
		},
		{
			ID:              "generic_sent_via",
			Sender:          WildcardSender,
			Pattern:         `(?i)(?:sent|transferred)\s*(?P<currency>SAR|SR|USD|Rs\.?|INR)?\s*[\$₹€£¥]?\s*(?P<amount>[\d,]+\.?\d*)\s+to\s+(?P<merchant>.+?)\s+via`,
			CurrencyDefault: "SAR",
			Type:            domain.TypeTransfer,
		},
		{
			ID:              "generic_credited",
			Sender:          WildcardSender,
			Pattern:         `(?i)(?:credited|deposited|received)\s*(?:with)?\s*(?P<currency>SAR|SR|USD)?\s*(?P<amount>[\d,]+\.?\d*)`,
			DefaultMerchant: "Deposit",
			CurrencyDefault: "SAR",
			Type:            domain.TypeCredit,
		},
		{
			ID:              "generic_purchase_ar",
			Sender:          WildcardSender,
			Pattern:         `شراء.*?مبلغ:?\s*(?P<currency>SAR|SR|ريال)?\s*(?P<amount>[\d,]+\.?\d*)\s*(?:لدى|لدي):?\s*(?P<merchant>.+?)(?:\s+في|\n|$)`,
			CurrencyDefault: "SAR",
			Type:            domain.TypeDebit,
		},
		{
			ID:              "generic_transfer_ar",
			Sender:          WildcardSender,
			Pattern:         `حوالة.*?(?:مبلغ|المبلغ):?\s*(?P<currency>SAR|SR|ريال)?\s*(?P<amount>[\d,]+\.?\d*)`,
			DefaultMerchant: "Transfer",
			CurrencyDefault: "SAR",
			Type:            domain.TypeTransfer,
		},
	}
}
