// Package report accumulates per-run counts and emits the end-of-run summary.
package report

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/yaldosari/sms-expense-tracker/internal/categorize"
	"github.com/yaldosari/sms-expense-tracker/internal/domain"
)

// Manifest is the summary of one batch run. Per-message failures and
// per-merchant degradations are counted here instead of aborting the batch.
type Manifest struct {
	mu sync.Mutex

	RunID             string
	MessagesSeen      int
	SendersFiltered   int
	TransfersExcluded int
	Extracted         int
	Failed            map[domain.FailureKind]int
	ByProvenance      map[domain.Provenance]int
	Degraded          map[domain.DegradationKind]int
}

// New creates an empty manifest for one run.
func New(runID string) *Manifest {
	return &Manifest{
		RunID:        runID,
		Failed:       make(map[domain.FailureKind]int),
		ByProvenance: make(map[domain.Provenance]int),
		Degraded:     make(map[domain.DegradationKind]int),
	}
}

func (m *Manifest) RecordMessage() {
	m.mu.Lock()
	m.MessagesSeen++
	m.mu.Unlock()
}

func (m *Manifest) RecordFiltered() {
	m.mu.Lock()
	m.SendersFiltered++
	m.mu.Unlock()
}

func (m *Manifest) RecordTransferExcluded() {
	m.mu.Lock()
	m.TransfersExcluded++
	m.mu.Unlock()
}

func (m *Manifest) RecordExtracted(prov domain.Provenance) {
	m.mu.Lock()
	m.Extracted++
	m.ByProvenance[prov]++
	m.mu.Unlock()
}

func (m *Manifest) RecordFailure(kind domain.FailureKind) {
	m.mu.Lock()
	m.Failed[kind]++
	m.mu.Unlock()
}

// RecordDegradations folds the categorization engine's drained degradations
// into the manifest.
func (m *Manifest) RecordDegradations(degs []categorize.Degradation) {
	m.mu.Lock()
	for _, d := range degs {
		m.Degraded[d.Kind]++
	}
	m.mu.Unlock()
}

// FailedTotal returns the total extraction failure count.
func (m *Manifest) FailedTotal() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.Failed {
		total += n
	}
	return total
}

// Log writes the run summary.
func (m *Manifest) Log(log zerolog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()

	failed := zerolog.Dict()
	for kind, n := range m.Failed {
		failed.Int(string(kind), n)
	}
	byProv := zerolog.Dict()
	for prov, n := range m.ByProvenance {
		byProv.Int(string(prov), n)
	}
	degraded := zerolog.Dict()
	for kind, n := range m.Degraded {
		degraded.Int(string(kind), n)
	}

	log.Info().
		Str("run_id", m.RunID).
		Int("messages_seen", m.MessagesSeen).
		Int("senders_filtered", m.SendersFiltered).
		Int("transfers_excluded", m.TransfersExcluded).
		Int("extracted", m.Extracted).
		Dict("failed", failed).
		Dict("by_provenance", byProv).
		Dict("degraded", degraded).
		Msg("run complete")
}
