// Package source loads raw SMS messages from phone export files, either on
// local disk or in Cloud Storage.
package source

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yaldosari/sms-expense-tracker/internal/domain"
)

// Export lines are tab-separated: sender, timestamp, body. Tabs inside the
// body are preserved. Lines starting with # and blank lines are skipped.
const fieldsPerLine = 3

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Parse reads an SMS export stream into raw messages. A malformed line is an
// error carrying its line number: a truncated export should be fixed, not
// silently half-ingested.
func Parse(r io.Reader) ([]domain.RawMessage, error) {
	var msgs []domain.RawMessage

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "\t", fieldsPerLine)
		if len(parts) != fieldsPerLine {
			return nil, fmt.Errorf("source: line %d: expected sender<TAB>timestamp<TAB>body, got %d fields", lineNo, len(parts))
		}

		sender := strings.TrimSpace(parts[0])
		if sender == "" {
			return nil, fmt.Errorf("source: line %d: empty sender", lineNo)
		}
		ts, err := parseTimestamp(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("source: line %d: %w", lineNo, err)
		}
		body := parts[2]
		if strings.TrimSpace(body) == "" {
			return nil, fmt.Errorf("source: line %d: empty body", lineNo)
		}

		msgs = append(msgs, domain.RawMessage{
			Sender:     sender,
			Body:       body,
			ReceivedAt: ts,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("source: read export: %w", err)
	}
	return msgs, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
