package pipeline

import (
	"fmt"
	"strings"
)

// Report tallies per-record outcomes across a batch run.
type Report struct {
	// Processed is the number of records the batch attempted.
	Processed int

	// Resolved is how many records yielded a primary document URL.
	Resolved int

	// NoPrimaryDocument counts records whose index page listed no usable
	// document. A clean terminal state, not a failure.
	NoPrimaryDocument int

	// SectionFound and SectionMissing split the resolved records by whether
	// the target section was extracted.
	SectionFound   int
	SectionMissing int

	// FetchFailed counts records aborted by a transport or status error.
	FetchFailed int

	// Malformed counts records skipped for unparseable filenames or
	// unparseable fetched content.
	Malformed int

	// StoreFailed counts records aborted by an artifact write error.
	StoreFailed int
}

// Format renders the report for terminal output.
func (report *Report) Format() string {
	var builder strings.Builder

	builder.WriteString("\nItem 1C Extraction Report\n")
	builder.WriteString(strings.Repeat("═", 60) + "\n")
	builder.WriteString(fmt.Sprintf("Processed: %d | Resolved: %d | Section found: %d\n",
		report.Processed, report.Resolved, report.SectionFound))
	builder.WriteString(strings.Repeat("─", 60) + "\n")
	builder.WriteString(fmt.Sprintf("  No primary document: %d\n", report.NoPrimaryDocument))
	builder.WriteString(fmt.Sprintf("  Section not found:   %d\n", report.SectionMissing))
	builder.WriteString(fmt.Sprintf("  Fetch failures:      %d\n", report.FetchFailed))
	if report.Malformed > 0 {
		builder.WriteString(fmt.Sprintf("  Malformed records:   %d\n", report.Malformed))
	}
	if report.StoreFailed > 0 {
		builder.WriteString(fmt.Sprintf("  Store failures:      %d\n", report.StoreFailed))
	}

	return builder.String()
}
