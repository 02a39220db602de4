// Package diag defines fictc's diagnostic model: the fatal/warning/internal
// three-way split from spec.md §7, generalized from the teacher's flat
// rules.Issue into a typed Diagnostic with a stable Code and Severity.
package diag

import "fmt"

// Severity classifies a Diagnostic per spec.md §7.
type Severity int

const (
	// Warning is recoverable: transformation continues, delivered to
	// Options.OnWarn or printed.
	Warning Severity = iota
	// Fatal aborts the current module: no AST/text is returned.
	Fatal
	// Internal marks a library-shape invariant violation — never
	// reachable from well-formed input. Always fatal to the caller, but
	// tagged separately so logging and reporting can flag it distinctly.
	Internal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Fatal:
		return "fatal"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Code is a stable diagnostic identifier (spec.md §6's partial code list).
type Code string

const (
	CodeCycle           Code = "EFICT-CYCLE"
	CodeStatePlacement  Code = "EFICT-STATE-PLACEMENT"
	CodeStateDestructure Code = "EFICT-STATE-DESTRUCTURE"
	CodeUnimported      Code = "EFICT-UNIMPORTED"
	CodeAssignNonIdent  Code = "EFICT-ASSIGN-TARGET"

	CodeDeepMutation    Code = "FICT-M"
	CodeDynamicAccess   Code = "FICT-H"
	CodePropsRest       Code = "FICT-P001"

	CodeInternalInvariant Code = "IFICT-INVARIANT"
)

// Diagnostic is one compiler message, generalizing the teacher's
// rules.Issue (Rule→Code, same FilePath/Line/Column/Message shape) to the
// three severities spec.md §7 names.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Message  string
	FilePath string
	Line     uint32 // 1-based
	Column   uint32 // 0-based, matching the teacher's convention
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s %s: %s", d.FilePath, d.Line, d.Column, d.Severity, d.Code, d.Message)
}

// FatalError wraps a fatal Diagnostic so stage functions can return it as a
// plain error while the orchestrator still recovers the structured detail.
type FatalError struct {
	Diagnostic Diagnostic
}

func (e *FatalError) Error() string {
	return e.Diagnostic.String()
}

// NewFatal builds a FatalError at the given position.
func NewFatal(code Code, file string, line, col uint32, format string, args ...any) *FatalError {
	return &FatalError{Diagnostic: Diagnostic{
		Code:     code,
		Severity: Fatal,
		Message:  fmt.Sprintf(format, args...),
		FilePath: file,
		Line:     line,
		Column:   col,
	}}
}

// NewInternal builds a FatalError tagged Internal — a compiler bug, never
// expected from well-formed input.
func NewInternal(file string, line, col uint32, format string, args ...any) *FatalError {
	return &FatalError{Diagnostic: Diagnostic{
		Code:     CodeInternalInvariant,
		Severity: Internal,
		Message:  fmt.Sprintf(format, args...),
		FilePath: file,
		Line:     line,
		Column:   col,
	}}
}

// NewWarning builds a non-fatal Diagnostic.
func NewWarning(code Code, file string, line, col uint32, format string, args ...any) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		FilePath: file,
		Line:     line,
		Column:   col,
	}
}
