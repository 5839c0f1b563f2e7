package domain

import "fmt"

// FailureKind enumerates the recoverable extraction failure taxonomy. Every
// failure is logged and skipped; none halts a batch.
type FailureKind string

const (
	FailureNoTemplateForSender FailureKind = "no_template_for_sender"
	FailureNoMatch             FailureKind = "no_matching_template"
	FailureFieldParse          FailureKind = "field_parse_error"
	FailureAmbiguousMatch      FailureKind = "ambiguous_match"
)

// ExtractionFailure is the typed result of a message that could not be turned
// into a transaction.
type ExtractionFailure struct {
	Kind       FailureKind
	MessageRef string
	Field      string // set for FailureFieldParse
	Raw        string // the raw value that failed to parse
	Detail     string
}

func (f *ExtractionFailure) Error() string {
	if f.Kind == FailureFieldParse {
		return fmt.Sprintf("extraction failed (%s): field %q, raw %q: %s", f.Kind, f.Field, f.Raw, f.Detail)
	}
	return fmt.Sprintf("extraction failed (%s): %s", f.Kind, f.Detail)
}

// DegradationKind enumerates recoverable categorization degradations. A
// degradation resolves the transaction to the Other sentinel and the batch
// continues.
type DegradationKind string

const (
	DegradationUnknownLabel       DegradationKind = "unknown_category_label"
	DegradationServiceUnavailable DegradationKind = "external_service_unavailable"
)
