package library

import "fmt"

// Severity classifies a Diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic codes for recoverable conditions (W200-W209).
const (
	WarnPrimaryCodePathMissing = "W201"
	WarnConceptNarrowing       = "W202"
	WarnTerminologyResolution  = "W203"
	WarnConflictingDefinition  = "W204"
)

// Diagnostic is a recoverable condition recorded while building the
// library. The affected expression was still produced.
type Diagnostic struct {
	Code     string
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s", d.Severity, d.Code, d.Message)
}

// Record appends a diagnostic.
func (l *Library) Record(d Diagnostic) {
	if d.Severity == "" {
		d.Severity = SeverityWarning
	}
	l.diagnostics = append(l.diagnostics, d)
}

// Diagnostics returns recorded diagnostics in order.
func (l *Library) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), l.diagnostics...)
}
