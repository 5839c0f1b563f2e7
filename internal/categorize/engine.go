package categorize

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/yaldosari/sms-expense-tracker/internal/domain"
	"github.com/yaldosari/sms-expense-tracker/internal/merchant"
	"github.com/yaldosari/sms-expense-tracker/internal/taxonomy"
)

const (
	defaultAITimeout     = 15 * time.Second
	defaultMaxConcurrent = 4
)

// Assignment is the result of categorizing one merchant key.
type Assignment struct {
	Category   string
	Provenance domain.Provenance
}

// Degradation records a recoverable categorization fallback. The merchant
// resolved to the Other sentinel and the batch continued.
type Degradation struct {
	Kind        domain.DegradationKind
	MerchantKey string
	Detail      string
}

// Engine resolves merchant keys to categories: cache, then ordered keyword
// rules, then the AI fallback. Rule and AI hits are learned into the cache so
// each distinct merchant is resolved at most once per run, and concurrent
// requests for the same key are coalesced into a single resolution.
type Engine struct {
	cache      *merchant.Cache
	tax        *taxonomy.Taxonomy
	classifier Classifier
	aiTimeout  time.Duration
	sem        *semaphore.Weighted
	group      singleflight.Group
	log        zerolog.Logger

	mu           sync.Mutex
	degradations []Degradation
	unresolved   map[string]Assignment
}

// NewEngine builds a categorization engine. classifier may be nil, which
// disables the AI fallback. maxConcurrentAI bounds in-flight classifier calls
// across distinct merchant keys.
func NewEngine(cache *merchant.Cache, tax *taxonomy.Taxonomy, classifier Classifier, aiTimeout time.Duration, maxConcurrentAI int64, log zerolog.Logger) *Engine {
	if aiTimeout <= 0 {
		aiTimeout = defaultAITimeout
	}
	if maxConcurrentAI <= 0 {
		maxConcurrentAI = defaultMaxConcurrent
	}
	return &Engine{
		cache:      cache,
		tax:        tax,
		classifier: classifier,
		aiTimeout:  aiTimeout,
		sem:        semaphore.NewWeighted(maxConcurrentAI),
		log:        log,
		unresolved: make(map[string]Assignment),
	}
}

// Categorize resolves one merchant key. It never fails: every degradation
// resolves to the Other sentinel and is recorded for the run manifest.
// Calls for the same key made while a resolution is in flight share its
// result, so at most one rule evaluation or AI call happens per key.
func (e *Engine) Categorize(ctx context.Context, merchantKey string) Assignment {
	if merchantKey == "" {
		return Assignment{Category: domain.CategoryOther, Provenance: domain.ProvenanceRule}
	}
	v, _, _ := e.group.Do(merchantKey, func() (any, error) {
		return e.resolve(ctx, merchantKey), nil
	})
	return v.(Assignment)
}

func (e *Engine) resolve(ctx context.Context, key string) Assignment {
	if entry, ok := e.cache.Lookup(key); ok {
		return Assignment{Category: entry.Category, Provenance: domain.ProvenanceCache}
	}

	if category, ok := e.tax.Match(key); ok {
		e.cache.Learn(key, category, domain.ProvenanceRule)
		return Assignment{Category: category, Provenance: domain.ProvenanceRule}
	}

	if e.classifier == nil {
		// No cache write: a future rule or AI improvement can still claim it.
		return Assignment{Category: domain.CategoryOther, Provenance: domain.ProvenanceRule}
	}

	// A merchant that already failed or abstained this run is not re-sent to
	// the classifier for every later transaction carrying it. The memo is
	// in-memory only, so Other still never reaches the persisted cache.
	e.mu.Lock()
	asn, seen := e.unresolved[key]
	e.mu.Unlock()
	if seen {
		return asn
	}

	asn = e.classify(ctx, key)
	if asn.Category == domain.CategoryOther {
		e.mu.Lock()
		e.unresolved[key] = asn
		e.mu.Unlock()
	}
	return asn
}

func (e *Engine) classify(ctx context.Context, key string) Assignment {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return e.degrade(key, domain.DegradationServiceUnavailable, err.Error())
	}
	defer e.sem.Release(1)

	callCtx, cancel := context.WithTimeout(ctx, e.aiTimeout)
	defer cancel()

	label, err := e.classifier.Classify(callCtx, key, e.tax.Labels())
	if err != nil {
		return e.degrade(key, domain.DegradationServiceUnavailable, err.Error())
	}
	if !e.tax.IsAllowed(label) {
		return e.degrade(key, domain.DegradationUnknownLabel, "model returned "+label)
	}
	if label == domain.CategoryOther {
		// The model abstained; leave the key unclaimed.
		return Assignment{Category: domain.CategoryOther, Provenance: domain.ProvenanceRule}
	}

	e.cache.Learn(key, label, domain.ProvenanceAI)
	return Assignment{Category: label, Provenance: domain.ProvenanceAI}
}

func (e *Engine) degrade(key string, kind domain.DegradationKind, detail string) Assignment {
	e.log.Warn().
		Str("merchant", key).
		Str("kind", string(kind)).
		Str("detail", detail).
		Msg("categorization degraded to Other")

	e.mu.Lock()
	e.degradations = append(e.degradations, Degradation{Kind: kind, MerchantKey: key, Detail: detail})
	e.mu.Unlock()

	return Assignment{Category: domain.CategoryOther, Provenance: domain.ProvenanceRule}
}

// DrainDegradations returns the degradations recorded so far and resets the
// collector. Called once per run when building the manifest.
func (e *Engine) DrainDegradations() []Degradation {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.degradations
	e.degradations = nil
	return out
}
