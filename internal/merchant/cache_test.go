package merchant

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yaldosari/sms-expense-tracker/internal/domain"
)

func TestCache_LearnAndLookup(t *testing.T) {
	c, err := LoadCache(filepath.Join(t.TempDir(), "cache.json"))
	if err != nil {
		t.Fatalf("LoadCache failed: %v", err)
	}

	if !c.Learn("TAMIMI MARKETS", "Groceries", domain.ProvenanceRule) {
		t.Fatal("expected first Learn to write")
	}
	e, ok := c.Lookup("TAMIMI MARKETS")
	if !ok || e.Category != "Groceries" || e.Provenance != domain.ProvenanceRule {
		t.Errorf("Lookup = %+v, %v", e, ok)
	}

	// Learning never overwrites, whatever the provenance.
	if c.Learn("TAMIMI MARKETS", "Shopping", domain.ProvenanceAI) {
		t.Error("Learn must not overwrite an existing entry")
	}
	e, _ = c.Lookup("TAMIMI MARKETS")
	if e.Category != "Groceries" {
		t.Errorf("entry overwritten by Learn: %+v", e)
	}
}

func TestCache_SetRespectsManual(t *testing.T) {
	c, _ := LoadCache(filepath.Join(t.TempDir(), "cache.json"))
	c.Learn("KEETA", "Shopping", domain.ProvenanceManual)

	if c.Set("KEETA", "Food & Dining", domain.ProvenanceRule) {
		t.Error("Set must refuse to replace a manual entry")
	}
	e, _ := c.Lookup("KEETA")
	if e.Category != "Shopping" {
		t.Errorf("manual entry changed: %+v", e)
	}

	c.Learn("SASCO", "Other", domain.ProvenanceRule)
	if !c.Set("SASCO", "Fuel", domain.ProvenanceRule) {
		t.Error("Set must replace a non-manual entry during apply")
	}
}

func TestCache_FlushAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c, _ := LoadCache(path)
	c.Learn("TAMIMI MARKETS", "Groceries", domain.ProvenanceRule)
	c.Learn("KEETA", "Food & Dining", domain.ProvenanceAI)

	if err := c.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	reloaded, err := LoadCache(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Errorf("reloaded %d entries, want 2", reloaded.Len())
	}
	e, ok := reloaded.Lookup("KEETA")
	if !ok || e.Category != "Food & Dining" || e.Provenance != domain.ProvenanceAI {
		t.Errorf("reloaded entry = %+v, %v", e, ok)
	}
}

func TestLoadCache_HandEditedEntryIsManual(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	content := `{"MY CORNER SHOP": {"category": "Groceries"}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCache(path)
	if err != nil {
		t.Fatalf("LoadCache failed: %v", err)
	}
	e, ok := c.Lookup("MY CORNER SHOP")
	if !ok || e.Provenance != domain.ProvenanceManual {
		t.Errorf("hand-edited entry = %+v, want manual provenance", e)
	}
}

func TestLoadCache_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	os.WriteFile(path, []byte("{broken"), 0o644)
	if _, err := LoadCache(path); err == nil {
		t.Error("expected error for malformed cache file")
	}
}

func TestCache_CloneIsDetached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c, _ := LoadCache(path)
	c.Learn("SASCO", "Fuel", domain.ProvenanceRule)

	clone := c.Clone()
	clone.Learn("KEETA", "Food & Dining", domain.ProvenanceRule)

	if _, ok := c.Lookup("KEETA"); ok {
		t.Error("clone write leaked into the original cache")
	}
	if err := clone.Flush(); err != nil {
		t.Errorf("clone Flush should be a no-op, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("clone Flush must not create the backing file")
	}
}
