package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yaldosari/sms-expense-tracker/internal/categorize"
	"github.com/yaldosari/sms-expense-tracker/internal/domain"
	"github.com/yaldosari/sms-expense-tracker/internal/extract"
	"github.com/yaldosari/sms-expense-tracker/internal/merchant"
	"github.com/yaldosari/sms-expense-tracker/internal/senderfilter"
	"github.com/yaldosari/sms-expense-tracker/internal/taxonomy"
)

type fakeInserter struct {
	inserted []domain.Transaction
}

func (f *fakeInserter) Insert(_ context.Context, txs []domain.Transaction) error {
	f.inserted = append(f.inserted, txs...)
	return nil
}

func newTestRunner(t *testing.T, ownAccounts []string) (*Runner, *fakeInserter, *merchant.Cache) {
	t.Helper()

	lib, err := extract.NewLibrary(extract.BuiltinTemplates())
	if err != nil {
		t.Fatalf("NewLibrary failed: %v", err)
	}
	cache, err := merchant.LoadCache(t.TempDir() + "/cache.json")
	if err != nil {
		t.Fatalf("LoadCache failed: %v", err)
	}
	cat := categorize.NewEngine(cache, taxonomy.Default(), nil, time.Second, 4, zerolog.Nop())
	filter := senderfilter.New([]string{"AlRajhiBank", "STC Pay"}, true, false, zerolog.Nop())
	store := &fakeInserter{}

	r := NewRunner(filter, extract.NewEngine(lib, "SAR"), cat, cache, store, ownAccounts, 4, zerolog.Nop())
	return r, store, cache
}

func rawMsg(sender, body string, day int) domain.RawMessage {
	return domain.RawMessage{
		Sender:     sender,
		Body:       body,
		ReceivedAt: time.Date(2025, 6, day, 12, 0, 0, 0, time.UTC),
	}
}

func TestRun_EndToEnd(t *testing.T) {
	r, store, cache := newTestRunner(t, []string{"ACC1234"})

	msgs := []domain.RawMessage{
		rawMsg("AlRajhiBank", "You spent SAR 45.50 at TAMIMI MARKETS", 1),
		rawMsg("SpamSender", "You spent SAR 9.99 at SCAM SHOP", 2),
		rawMsg("AlRajhiBank", "Your OTP code is 445566", 3),
		rawMsg("AlRajhiBank", "Sent SAR 500 to ACC1234 via bank transfer", 4),
	}

	manifest, err := r.Run(context.Background(), msgs)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if manifest.MessagesSeen != 4 {
		t.Errorf("MessagesSeen = %d, want 4", manifest.MessagesSeen)
	}
	// A filtered sender is dropped quietly, not recorded as a failure.
	if manifest.SendersFiltered != 1 || manifest.FailedTotal() != 1 {
		t.Errorf("SendersFiltered = %d, FailedTotal = %d; want 1 and 1", manifest.SendersFiltered, manifest.FailedTotal())
	}
	if manifest.Failed[domain.FailureNoMatch] != 1 {
		t.Errorf("Failed = %+v, want one no_matching_template", manifest.Failed)
	}
	if manifest.TransfersExcluded != 1 {
		t.Errorf("TransfersExcluded = %d, want 1", manifest.TransfersExcluded)
	}
	if manifest.Extracted != 1 {
		t.Errorf("Extracted = %d, want 1", manifest.Extracted)
	}

	if len(store.inserted) != 1 {
		t.Fatalf("inserted = %+v, want one transaction", store.inserted)
	}
	tx := store.inserted[0]
	if tx.MerchantNormalized != "TAMIMI MARKETS" || tx.Category != "Groceries" || tx.CategorySource != domain.ProvenanceRule {
		t.Errorf("tx = %+v, want TAMIMI MARKETS as Groceries/rule", tx)
	}

	if _, ok := cache.Lookup("TAMIMI MARKETS"); !ok {
		t.Error("rule hit must be learned into the cache")
	}
}

func TestRun_DeterministicInsertOrder(t *testing.T) {
	msgs := []domain.RawMessage{
		rawMsg("AlRajhiBank", "You spent SAR 30.00 at PANDA", 3),
		rawMsg("AlRajhiBank", "You spent SAR 10.00 at ALBAIK", 1),
		rawMsg("AlRajhiBank", "You spent SAR 20.00 at SACO", 2),
	}

	var want []string
	for i := range 3 {
		r, store, _ := newTestRunner(t, nil)
		if _, err := r.Run(context.Background(), msgs); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		var got []string
		for _, tx := range store.inserted {
			got = append(got, tx.SourceMessageRef)
		}
		if len(got) != 3 {
			t.Fatalf("inserted %d transactions, want 3", len(got))
		}
		if i == 0 {
			want = got
			if store.inserted[0].MerchantNormalized != "ALBAIK" {
				t.Errorf("first inserted = %+v, want oldest message first", store.inserted[0])
			}
			continue
		}
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("run %d insert order diverged: %v vs %v", i, got, want)
			}
		}
	}
}

func TestRun_FlushesCache(t *testing.T) {
	dir := t.TempDir()
	lib, err := extract.NewLibrary(extract.BuiltinTemplates())
	if err != nil {
		t.Fatalf("NewLibrary failed: %v", err)
	}
	cache, err := merchant.LoadCache(dir + "/cache.json")
	if err != nil {
		t.Fatalf("LoadCache failed: %v", err)
	}
	cat := categorize.NewEngine(cache, taxonomy.Default(), nil, time.Second, 4, zerolog.Nop())
	filter := senderfilter.New(nil, false, false, zerolog.Nop())
	r := NewRunner(filter, extract.NewEngine(lib, "SAR"), cat, cache, &fakeInserter{}, nil, 4, zerolog.Nop())

	if _, err := r.Run(context.Background(), []domain.RawMessage{
		rawMsg("AlRajhiBank", "You spent SAR 45.50 at TAMIMI MARKETS", 1),
	}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	reloaded, err := merchant.LoadCache(dir + "/cache.json")
	if err != nil {
		t.Fatalf("reload cache: %v", err)
	}
	if entry, ok := reloaded.Lookup("TAMIMI MARKETS"); !ok || entry.Category != "Groceries" {
		t.Errorf("reloaded entry = %+v, %v; want flushed Groceries mapping", entry, ok)
	}
}
