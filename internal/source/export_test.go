package source

import (
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"# phone export 2025-06-15",
		"AlRajhiBank\t2025-06-01T10:30:00Z\tYou spent SAR 45.50 at TAMIMI MARKETS",
		"",
		"STC Pay\t2025-06-02 08:15:00\tPaid SAR 20.00 to ALBAIK via wallet",
		"SAIB\t2025-06-03\tAmount:139.40 SAR At:Keeta\tA/C:1234",
	}, "\n")

	msgs, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}

	if msgs[0].Sender != "AlRajhiBank" {
		t.Errorf("Sender = %q", msgs[0].Sender)
	}
	want := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	if !msgs[0].ReceivedAt.Equal(want) {
		t.Errorf("ReceivedAt = %s, want %s", msgs[0].ReceivedAt, want)
	}
	if msgs[0].Body != "You spent SAR 45.50 at TAMIMI MARKETS" {
		t.Errorf("Body = %q", msgs[0].Body)
	}

	// Tabs beyond the second separator belong to the body.
	if msgs[2].Body != "Amount:139.40 SAR At:Keeta\tA/C:1234" {
		t.Errorf("Body = %q, want embedded tab preserved", msgs[2].Body)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "missing body", input: "AlRajhiBank\t2025-06-01T10:30:00Z"},
		{name: "bad timestamp", input: "AlRajhiBank\tyesterday\tsome body"},
		{name: "empty sender", input: "\t2025-06-01T10:30:00Z\tsome body"},
		{name: "empty body", input: "AlRajhiBank\t2025-06-01T10:30:00Z\t  "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tc.input)); err == nil {
				t.Error("Parse succeeded, want error")
			}
			if _, err := Parse(strings.NewReader(tc.input)); err != nil && !strings.Contains(err.Error(), "line 1") {
				t.Errorf("error should carry the line number, got %v", err)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	msgs, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d messages, want 0", len(msgs))
	}
}
