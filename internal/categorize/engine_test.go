package categorize

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yaldosari/sms-expense-tracker/internal/domain"
	"github.com/yaldosari/sms-expense-tracker/internal/merchant"
	"github.com/yaldosari/sms-expense-tracker/internal/taxonomy"
)

type fakeClassifier struct {
	label string
	err   error
	delay time.Duration
	calls atomic.Int64
}

func (f *fakeClassifier) Classify(ctx context.Context, merchantKey string, labels []string) (string, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.label, nil
}

func testTaxonomy(t *testing.T) *taxonomy.Taxonomy {
	t.Helper()
	tax, err := taxonomy.New(
		[]string{"Groceries", "Dining", "Fuel"},
		[]taxonomy.Rule{
			{Category: "Groceries", Keywords: []string{"TAMIMI", "PANDA"}},
			{Category: "Fuel", Keywords: []string{"SASCO"}},
		},
	)
	if err != nil {
		t.Fatalf("taxonomy.New failed: %v", err)
	}
	return tax
}

func newTestEngine(t *testing.T, classifier Classifier) (*Engine, *merchant.Cache) {
	t.Helper()
	cache, err := merchant.LoadCache(t.TempDir() + "/cache.json")
	if err != nil {
		t.Fatalf("LoadCache failed: %v", err)
	}
	return NewEngine(cache, testTaxonomy(t), classifier, time.Second, 4, zerolog.Nop()), cache
}

func TestCategorize_RuleHitLearnsCache(t *testing.T) {
	fake := &fakeClassifier{label: "Dining"}
	e, cache := newTestEngine(t, fake)

	asn := e.Categorize(context.Background(), "TAMIMI MARKETS")
	if asn.Category != "Groceries" || asn.Provenance != domain.ProvenanceRule {
		t.Fatalf("first call = %+v, want Groceries/rule", asn)
	}
	if entry, ok := cache.Lookup("TAMIMI MARKETS"); !ok || entry.Category != "Groceries" {
		t.Fatalf("cache entry = %+v, %v; want learned Groceries", entry, ok)
	}

	asn = e.Categorize(context.Background(), "TAMIMI MARKETS")
	if asn.Category != "Groceries" || asn.Provenance != domain.ProvenanceCache {
		t.Errorf("second call = %+v, want Groceries/cache", asn)
	}
	if n := fake.calls.Load(); n != 0 {
		t.Errorf("classifier called %d times, want 0", n)
	}
}

func TestCategorize_AIFallbackLearnsCache(t *testing.T) {
	fake := &fakeClassifier{label: "Dining"}
	e, cache := newTestEngine(t, fake)

	asn := e.Categorize(context.Background(), "HIDDEN GEM CAFE")
	if asn.Category != "Dining" || asn.Provenance != domain.ProvenanceAI {
		t.Fatalf("first call = %+v, want Dining/ai", asn)
	}
	if entry, ok := cache.Lookup("HIDDEN GEM CAFE"); !ok || entry.Provenance != domain.ProvenanceAI {
		t.Fatalf("cache entry = %+v, %v; want learned with ai provenance", entry, ok)
	}

	asn = e.Categorize(context.Background(), "HIDDEN GEM CAFE")
	if asn.Category != "Dining" || asn.Provenance != domain.ProvenanceCache {
		t.Errorf("second call = %+v, want Dining/cache", asn)
	}
	if n := fake.calls.Load(); n != 1 {
		t.Errorf("classifier called %d times, want exactly 1", n)
	}
}

func TestCategorize_UnknownLabelDegrades(t *testing.T) {
	e, cache := newTestEngine(t, &fakeClassifier{label: "Spaceships"})

	asn := e.Categorize(context.Background(), "UNKNOWN SHOP 123")
	if asn.Category != domain.CategoryOther || asn.Provenance != domain.ProvenanceRule {
		t.Fatalf("asn = %+v, want Other/rule", asn)
	}
	if _, ok := cache.Lookup("UNKNOWN SHOP 123"); ok {
		t.Error("degraded merchant must not be cached")
	}

	degs := e.DrainDegradations()
	if len(degs) != 1 || degs[0].Kind != domain.DegradationUnknownLabel {
		t.Errorf("degradations = %+v, want one unknown_category_label", degs)
	}
	if len(e.DrainDegradations()) != 0 {
		t.Error("DrainDegradations must reset the collector")
	}
}

func TestCategorize_TimeoutDegrades(t *testing.T) {
	fake := &fakeClassifier{label: "Dining", delay: time.Second}
	cache, err := merchant.LoadCache(t.TempDir() + "/cache.json")
	if err != nil {
		t.Fatalf("LoadCache failed: %v", err)
	}
	e := NewEngine(cache, testTaxonomy(t), fake, 20*time.Millisecond, 4, zerolog.Nop())

	asn := e.Categorize(context.Background(), "SLOW MERCHANT")
	if asn.Category != domain.CategoryOther || asn.Provenance != domain.ProvenanceRule {
		t.Fatalf("asn = %+v, want Other/rule on timeout", asn)
	}
	if _, ok := cache.Lookup("SLOW MERCHANT"); ok {
		t.Error("timed-out merchant must not be cached")
	}

	degs := e.DrainDegradations()
	if len(degs) != 1 || degs[0].Kind != domain.DegradationServiceUnavailable {
		t.Errorf("degradations = %+v, want one external_service_unavailable", degs)
	}
}

func TestCategorize_CoalescesPerKey(t *testing.T) {
	fake := &fakeClassifier{label: "Dining", delay: 50 * time.Millisecond}
	e, _ := newTestEngine(t, fake)

	var wg sync.WaitGroup
	results := make([]Assignment, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Categorize(context.Background(), "HIDDEN GEM CAFE")
		}(i)
	}
	wg.Wait()

	if n := fake.calls.Load(); n != 1 {
		t.Errorf("classifier called %d times for one key, want 1", n)
	}
	for i, asn := range results {
		if asn.Category != "Dining" {
			t.Errorf("result %d = %+v, want shared Dining assignment", i, asn)
		}
	}
}

func TestCategorize_FailedKeyNotRetriedWithinRun(t *testing.T) {
	fake := &fakeClassifier{err: context.DeadlineExceeded}
	e, cache := newTestEngine(t, fake)

	first := e.Categorize(context.Background(), "UNKNOWN SHOP 123")
	second := e.Categorize(context.Background(), "UNKNOWN SHOP 123")
	if first.Category != domain.CategoryOther || second != first {
		t.Fatalf("assignments = %+v, %+v; want both Other/rule", first, second)
	}
	if n := fake.calls.Load(); n != 1 {
		t.Errorf("classifier called %d times for one distinct merchant, want 1", n)
	}
	if degs := e.DrainDegradations(); len(degs) != 1 {
		t.Errorf("degradations = %+v, want exactly one for the merchant", degs)
	}
	if _, ok := cache.Lookup("UNKNOWN SHOP 123"); ok {
		t.Error("unresolved merchant must not reach the persisted cache")
	}

	// A different key still gets its own classification attempt.
	e.Categorize(context.Background(), "ANOTHER SHOP")
	if n := fake.calls.Load(); n != 2 {
		t.Errorf("classifier called %d times across two distinct merchants, want 2", n)
	}
}

func TestCategorize_UnknownLabelNotRetriedWithinRun(t *testing.T) {
	fake := &fakeClassifier{label: "Spaceships"}
	e, _ := newTestEngine(t, fake)

	e.Categorize(context.Background(), "UNKNOWN SHOP 123")
	e.Categorize(context.Background(), "UNKNOWN SHOP 123")
	if n := fake.calls.Load(); n != 1 {
		t.Errorf("classifier called %d times for one distinct merchant, want 1", n)
	}
	if degs := e.DrainDegradations(); len(degs) != 1 {
		t.Errorf("degradations = %+v, want exactly one", degs)
	}
}

func TestCategorize_NilClassifier(t *testing.T) {
	e, cache := newTestEngine(t, nil)

	asn := e.Categorize(context.Background(), "UNKNOWN SHOP 123")
	if asn.Category != domain.CategoryOther || asn.Provenance != domain.ProvenanceRule {
		t.Fatalf("asn = %+v, want Other/rule with AI disabled", asn)
	}
	if _, ok := cache.Lookup("UNKNOWN SHOP 123"); ok {
		t.Error("unresolved merchant must not be cached")
	}
	if degs := e.DrainDegradations(); len(degs) != 0 {
		t.Errorf("degradations = %+v, want none", degs)
	}
}

func TestCategorize_EmptyKey(t *testing.T) {
	e, _ := newTestEngine(t, &fakeClassifier{label: "Dining"})
	asn := e.Categorize(context.Background(), "")
	if asn.Category != domain.CategoryOther {
		t.Errorf("asn = %+v, want Other", asn)
	}
}

func TestCategorize_ManualCacheEntryWins(t *testing.T) {
	e, cache := newTestEngine(t, &fakeClassifier{label: "Dining"})
	cache.Learn("TAMIMI MARKETS", "Fuel", domain.ProvenanceManual)

	asn := e.Categorize(context.Background(), "TAMIMI MARKETS")
	if asn.Category != "Fuel" || asn.Provenance != domain.ProvenanceCache {
		t.Errorf("asn = %+v, want the cached manual mapping to win over rules", asn)
	}
}
