// Package pipeline orchestrates one batch run: filter senders, extract
// transactions, categorize merchants, persist results.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yaldosari/sms-expense-tracker/internal/categorize"
	"github.com/yaldosari/sms-expense-tracker/internal/domain"
	"github.com/yaldosari/sms-expense-tracker/internal/extract"
	"github.com/yaldosari/sms-expense-tracker/internal/merchant"
	"github.com/yaldosari/sms-expense-tracker/internal/report"
	"github.com/yaldosari/sms-expense-tracker/internal/senderfilter"
)

// Inserter is the slice of the transaction store the runner needs.
type Inserter interface {
	Insert(ctx context.Context, txs []domain.Transaction) error
}

// Runner wires the extraction and categorization engines into one batch run.
type Runner struct {
	filter      *senderfilter.Filter
	extractor   *extract.Engine
	categorizer *categorize.Engine
	cache       *merchant.Cache
	store       Inserter
	ownAccounts []string
	concurrency int
	log         zerolog.Logger
}

// NewRunner builds a runner. ownAccounts lists the user's own account
// identifiers; transfers to them are excluded from expense totals.
func NewRunner(filter *senderfilter.Filter, extractor *extract.Engine, categorizer *categorize.Engine, cache *merchant.Cache, store Inserter, ownAccounts []string, concurrency int, log zerolog.Logger) *Runner {
	if concurrency <= 0 {
		concurrency = 8
	}
	own := make([]string, 0, len(ownAccounts))
	for _, a := range ownAccounts {
		if s := strings.ToUpper(strings.TrimSpace(a)); s != "" {
			own = append(own, s)
		}
	}
	return &Runner{
		filter:      filter,
		extractor:   extractor,
		categorizer: categorizer,
		cache:       cache,
		store:       store,
		ownAccounts: own,
		concurrency: concurrency,
		log:         log,
	}
}

// Run processes one batch of messages. Per-message failures are counted in
// the manifest and never abort the batch; only storage and cache persistence
// errors are returned.
func (r *Runner) Run(ctx context.Context, msgs []domain.RawMessage) (*report.Manifest, error) {
	manifest := report.New(uuid.NewString())

	var mu sync.Mutex
	var extracted []domain.Transaction

	// Extraction is pure and stateless, so messages fan out freely.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, msg := range msgs {
		manifest.RecordMessage()

		if !r.filter.Allow(msg.Sender) {
			// Filtered senders are expected noise, not extraction failures.
			manifest.RecordFiltered()
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tx, fail := r.extractor.Extract(msg)
			if fail != nil {
				manifest.RecordFailure(fail.Kind)
				r.log.Debug().
					Str("sender", msg.Sender).
					Str("kind", string(fail.Kind)).
					Str("detail", fail.Detail).
					Msg("message skipped")
				return nil
			}
			mu.Lock()
			extracted = append(extracted, *tx)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return manifest, fmt.Errorf("pipeline: extraction: %w", err)
	}

	// Insert order is independent of extraction scheduling.
	sort.Slice(extracted, func(i, j int) bool {
		if !extracted[i].OccurredAt.Equal(extracted[j].OccurredAt) {
			return extracted[i].OccurredAt.Before(extracted[j].OccurredAt)
		}
		return extracted[i].SourceMessageRef < extracted[j].SourceMessageRef
	})

	var txs []domain.Transaction
	for _, tx := range extracted {
		if tx.Type == domain.TypeTransfer && r.isOwnAccount(tx) {
			manifest.RecordTransferExcluded()
			continue
		}

		asn := r.categorizer.Categorize(ctx, tx.MerchantNormalized)
		tx.Category = asn.Category
		tx.CategorySource = asn.Provenance
		manifest.RecordExtracted(asn.Provenance)
		txs = append(txs, tx)
	}
	manifest.RecordDegradations(r.categorizer.DrainDegradations())

	if err := r.store.Insert(ctx, txs); err != nil {
		return manifest, fmt.Errorf("pipeline: persist transactions: %w", err)
	}
	if err := r.cache.Flush(); err != nil {
		return manifest, fmt.Errorf("pipeline: flush merchant cache: %w", err)
	}
	return manifest, nil
}

func (r *Runner) isOwnAccount(tx domain.Transaction) bool {
	target := strings.ToUpper(tx.MerchantNormalized)
	for _, own := range r.ownAccounts {
		if strings.Contains(target, own) {
			return true
		}
	}
	return false
}
