package validation

import "strings"

// =============================================================================
// SEVERITY AND SCOPE
// =============================================================================

// Severity tells how confident a finding is.
type Severity int

const (
	// SeverityHard is a definite mismatch between a control record and the
	// records it summarises.
	SeverityHard Severity = iota

	// SeveritySoft is a possible error. Credit records legitimately change
	// expected counts, so these findings are worded "possibly incorrect".
	SeveritySoft
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	if s == SeveritySoft {
		return "soft"
	}
	return "hard"
}

// Scope is the hierarchy level a finding belongs to.
type Scope int

const (
	ScopeBundle Scope = iota
	ScopeCashLetter
	ScopeFile
)

// String returns the scope name as used in messages.
func (s Scope) String() string {
	switch s {
	case ScopeBundle:
		return "bundle"
	case ScopeCashLetter:
		return "cash letter"
	default:
		return "file"
	}
}

// =============================================================================
// FINDINGS AND RESULT
// =============================================================================

// Finding is one discrepancy between a declared control value and the value
// recomputed from the file's contents.
type Finding struct {
	// Scope is the level whose control record is wrong.
	Scope Scope

	// BundleID identifies the bundle for bundle-scoped findings.
	BundleID string

	// Severity separates definite mismatches from possible ones.
	Severity Severity

	// Message is the human-readable description.
	Message string
}

// ValidationResult is the outcome of validating one document. It is built
// once by Validate and not modified afterwards.
type ValidationResult struct {
	// Status is true when no findings were recorded.
	Status bool

	// Findings are ordered bundle level first (in bundle order), then cash
	// letter level, then file level.
	Findings []Finding
}

// Messages returns the finding messages in order.
func (r *ValidationResult) Messages() []string {
	messages := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		messages = append(messages, f.Message)
	}
	return messages
}

// Count returns the number of findings with the given severity.
func (r *ValidationResult) Count(severity Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == severity {
			n++
		}
	}
	return n
}

// String renders the messages one per line.
func (r *ValidationResult) String() string {
	return strings.Join(r.Messages(), "\n")
}

func newResult(findings []Finding) *ValidationResult {
	return &ValidationResult{
		Status:   len(findings) == 0,
		Findings: findings,
	}
}
