package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType carries the direction of a transaction. Amounts are always
// non-negative; sign is never used to encode direction.
type TransactionType string

const (
	TypeDebit    TransactionType = "debit"
	TypeCredit   TransactionType = "credit"
	TypeRefund   TransactionType = "refund"
	TypeTransfer TransactionType = "transfer"
)

// Provenance records which resolution step produced a transaction's current
// category. It governs overwrite permission: manual assignments are sticky and
// never replaced by rule or AI results.
type Provenance string

const (
	ProvenanceCache  Provenance = "cache"
	ProvenanceRule   Provenance = "rule"
	ProvenanceAI     Provenance = "ai"
	ProvenanceManual Provenance = "manual"
)

// CategoryOther is the sentinel category assigned when no resolution step
// produces a recognized category.
const CategoryOther = "Other"

// RawMessage is one message as delivered by the message source. It is never
// mutated by the pipeline.
type RawMessage struct {
	Sender     string
	Body       string
	ReceivedAt time.Time
}

// Transaction is one normalized transaction extracted from a message.
// This is a domain struct, not a BigQuery row; the storage layer maps it into
// the expenses.transactions table schema.
type Transaction struct {
	ID                 string // assigned on persist
	Amount             decimal.Decimal
	Currency           string // ISO-4217 style code, e.g. "SAR"
	MerchantRaw        string
	MerchantNormalized string
	Category           string
	CategorySource     Provenance
	Sender             string
	OccurredAt         time.Time
	Type               TransactionType
	SourceMessageRef   string // deterministic reference to the originating message
}
