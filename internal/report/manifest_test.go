package report

import (
	"testing"

	"github.com/yaldosari/sms-expense-tracker/internal/categorize"
	"github.com/yaldosari/sms-expense-tracker/internal/domain"
)

func TestManifestCounts(t *testing.T) {
	m := New("run-1")

	for range 5 {
		m.RecordMessage()
	}
	m.RecordFiltered()
	m.RecordTransferExcluded()
	m.RecordExtracted(domain.ProvenanceRule)
	m.RecordExtracted(domain.ProvenanceCache)
	m.RecordFailure(domain.FailureNoMatch)
	m.RecordFailure(domain.FailureNoMatch)
	m.RecordFailure(domain.FailureFieldParse)
	m.RecordDegradations([]categorize.Degradation{
		{Kind: domain.DegradationServiceUnavailable},
		{Kind: domain.DegradationUnknownLabel},
		{Kind: domain.DegradationServiceUnavailable},
	})

	if m.MessagesSeen != 5 || m.SendersFiltered != 1 || m.TransfersExcluded != 1 || m.Extracted != 2 {
		t.Errorf("counts = %+v", m)
	}
	if m.Failed[domain.FailureNoMatch] != 2 || m.Failed[domain.FailureFieldParse] != 1 {
		t.Errorf("Failed = %+v", m.Failed)
	}
	if m.FailedTotal() != 3 {
		t.Errorf("FailedTotal = %d, want 3", m.FailedTotal())
	}
	if m.ByProvenance[domain.ProvenanceRule] != 1 || m.ByProvenance[domain.ProvenanceCache] != 1 {
		t.Errorf("ByProvenance = %+v", m.ByProvenance)
	}
	if m.Degraded[domain.DegradationServiceUnavailable] != 2 {
		t.Errorf("Degraded = %+v", m.Degraded)
	}
}
