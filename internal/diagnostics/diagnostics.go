// Package diagnostics defines the structured, span-carrying error type
// shared by every pipeline stage. Each stage reports failures through a
// DiagnosticError rather than a bare string so the orchestrator can map
// them into the unified transpiler.Error taxonomy without losing source
// position information.
package diagnostics

import (
	"fmt"

	"github.com/harmony-labs/highrust/internal/token"
)

// Stage-prefixed codes, one family per pipeline component.
const (
	ErrP000 = "P000" // parser: missing token stream
	ErrP001 = "P001" // parser: unexpected token
	ErrP002 = "P002" // parser: unterminated string literal
	ErrP003 = "P003" // parser: invalid numeric literal

	ErrL001 = "L001" // lowering: unsupported feature
	ErrL002 = "L002" // lowering: invalid AST shape

	ErrA000 = "A000" // inference: missing AST root
	ErrA001 = "A001" // inference: use after move
	ErrA002 = "A002" // inference: conflicting borrows
	ErrA003 = "A003" // inference: propagate outside fallible function
	ErrA004 = "A004" // inference: variable not found

	ErrE001 = "E001" // emission: unsupported feature
	ErrE002 = "E002" // emission: invalid IR
)

// DiagnosticError is a single reported problem, keyed by a stable code and
// a source span so editors/CLIs can point at the offending text.
type DiagnosticError struct {
	Code    string
	Span    token.Span
	Message string
	File    string
}

// NewError constructs a DiagnosticError anchored at span.
func NewError(code string, span token.Span, message string) *DiagnosticError {
	return &DiagnosticError{Code: code, Span: span, Message: message}
}

func (e *DiagnosticError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s (%s:%s)", e.Code, e.Message, e.File, e.Span)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Span)
}
