// Package diagnostics turns resolution outcomes into coded errors.
package diagnostics

import (
	"fmt"
	"strings"
)

type ErrorCode string

const (
	ErrR001 ErrorCode = "R001" // Unresolved reference
	ErrR002 ErrorCode = "R002" // No applicable candidate at the best group
	ErrR003 ErrorCode = "R003" // Ambiguous call
	ErrR004 ErrorCode = "R004" // Candidate applicability could not be decided

	ErrS001 ErrorCode = "S001" // Malformed scenario file
	ErrS002 ErrorCode = "S002" // Unknown declaration referenced by a scenario
	ErrS003 ErrorCode = "S003" // Scenario expectation not met
)

var codeTitles = map[ErrorCode]string{
	ErrR001: "unresolved reference",
	ErrR002: "none applicable",
	ErrR003: "ambiguity",
	ErrR004: "undecided applicability",
	ErrS001: "malformed scenario",
	ErrS002: "unknown declaration",
	ErrS003: "expectation failed",
}

// Title returns a short human readable name of the code.
func (c ErrorCode) Title() string {
	if t, ok := codeTitles[c]; ok {
		return t
	}
	return "error"
}

// DiagnosticError is one coded diagnostic.
type DiagnosticError struct {
	Code       ErrorCode
	Subject    string   // Call or file the diagnostic is about
	Message    string
	Candidates []string // Rendered candidates for R002-R004
}

// NewError creates a diagnostic about subject.
func NewError(code ErrorCode, subject string, format string, args ...any) *DiagnosticError {
	return &DiagnosticError{Code: code, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

func (e *DiagnosticError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	sb.WriteString(" ")
	sb.WriteString(e.Code.Title())
	if e.Subject != "" {
		sb.WriteString(" at ")
		sb.WriteString(e.Subject)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	for _, c := range e.Candidates {
		sb.WriteString("\n    ")
		sb.WriteString(c)
	}
	return sb.String()
}
