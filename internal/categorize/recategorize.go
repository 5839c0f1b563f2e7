package categorize

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yaldosari/sms-expense-tracker/internal/domain"
	"github.com/yaldosari/sms-expense-tracker/internal/merchant"
	"github.com/yaldosari/sms-expense-tracker/internal/taxonomy"
)

// Storage is the slice of the transaction store the recategorizer needs.
type Storage interface {
	ListByCategory(ctx context.Context, category string) ([]domain.Transaction, error)
	UpdateCategory(ctx context.Context, id, category string, prov domain.Provenance) error
}

// Change is one transaction whose category would change (preview) or did
// change (apply).
type Change struct {
	TransactionID string
	MerchantKey   string
	OldCategory   string
	NewCategory   string
	Provenance    domain.Provenance
}

// Recategorizer re-runs the categorization resolution over stored
// transactions. Preview computes the change list without touching storage or
// the persisted cache; Apply performs the identical computation and persists
// it, so applying twice in a row yields no changes on the second pass.
type Recategorizer struct {
	store         Storage
	cache         *merchant.Cache
	tax           *taxonomy.Taxonomy
	classifier    Classifier
	aiTimeout     time.Duration
	maxConcurrent int64
	log           zerolog.Logger
}

// NewRecategorizer wires a recategorizer. classifier may be nil for a
// rules-only run.
func NewRecategorizer(store Storage, cache *merchant.Cache, tax *taxonomy.Taxonomy, classifier Classifier, aiTimeout time.Duration, maxConcurrent int64, log zerolog.Logger) *Recategorizer {
	return &Recategorizer{
		store:         store,
		cache:         cache,
		tax:           tax,
		classifier:    classifier,
		aiTimeout:     aiTimeout,
		maxConcurrent: maxConcurrent,
		log:           log,
	}
}

// Preview computes what Apply would change for transactions currently in
// category, without mutating storage or the persisted cache. The resolution
// runs against a detached cache copy so learned entries from the dry run are
// discarded.
func (r *Recategorizer) Preview(ctx context.Context, category string) ([]Change, []Degradation, error) {
	return r.run(ctx, category, false)
}

// Apply recomputes categories for transactions currently in category and
// persists every change to storage and the merchant cache. Transactions with
// a manual category are skipped: manual overrides are sticky.
func (r *Recategorizer) Apply(ctx context.Context, category string) ([]Change, []Degradation, error) {
	return r.run(ctx, category, true)
}

func (r *Recategorizer) run(ctx context.Context, category string, apply bool) ([]Change, []Degradation, error) {
	cache := r.cache
	if !apply {
		cache = r.cache.Clone()
	}
	engine := NewEngine(cache, r.tax, r.classifier, r.aiTimeout, r.maxConcurrent, r.log)

	txs, err := r.store.ListByCategory(ctx, category)
	if err != nil {
		return nil, nil, fmt.Errorf("recategorize: list transactions: %w", err)
	}

	var changes []Change
	for _, tx := range txs {
		if tx.CategorySource == domain.ProvenanceManual {
			continue
		}
		if tx.MerchantNormalized == "" {
			continue
		}

		asn := engine.Categorize(ctx, tx.MerchantNormalized)
		if asn.Category == tx.Category {
			continue
		}

		if apply {
			if err := r.store.UpdateCategory(ctx, tx.ID, asn.Category, asn.Provenance); err != nil {
				return changes, engine.DrainDegradations(), fmt.Errorf("recategorize: update transaction %s: %w", tx.ID, err)
			}
			// Cache hits already hold the right entry; only rule and AI
			// results are written back.
			if asn.Provenance == domain.ProvenanceRule && asn.Category != domain.CategoryOther || asn.Provenance == domain.ProvenanceAI {
				cache.Set(tx.MerchantNormalized, asn.Category, asn.Provenance)
			}
		}

		changes = append(changes, Change{
			TransactionID: tx.ID,
			MerchantKey:   tx.MerchantNormalized,
			OldCategory:   tx.Category,
			NewCategory:   asn.Category,
			Provenance:    asn.Provenance,
		})
	}

	return changes, engine.DrainDegradations(), nil
}
