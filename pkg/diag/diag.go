// Package diag defines the diagnostic value shared by the parser, the
// analyzer, and the driver, so every stage of the pipeline reports failures
// through one uniform shape.
package diag

import (
	"errors"
	"fmt"

	"github.com/hinglish-lang/hpc/pkg/token"
)

// Sentinel errors let the driver classify a failure by pipeline phase with
// errors.Is, instead of matching on message text.
var (
	ErrParse    = errors.New("parse error")
	ErrAnalysis = errors.New("semantic analysis failed")
	ErrEmit     = errors.New("code generation error")
	ErrToolchain = errors.New("C toolchain error")
)

// Severity distinguishes a hard failure from an advisory note.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a single reportable condition, optionally anchored to a
// source position.
type Diagnostic struct {
	Severity Severity
	Message  string
	Pos      token.Position
	HasPos   bool
}

// New creates an error-severity diagnostic with no position.
func New(format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}

// At creates an error-severity diagnostic anchored to pos; String renders
// it as "[line L] Error: <message>".
func At(pos token.Position, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
		HasPos:   true,
	}
}

// String renders the diagnostic for CLI output.
func (d Diagnostic) String() string {
	if d.HasPos {
		return fmt.Sprintf("[line %d] Error: %s", d.Pos.Line, d.Message)
	}
	return d.Message
}

// Bag accumulates diagnostics across a single analysis pass.
type Bag struct {
	items []Diagnostic
}

// Add appends a diagnostic to the bag.
func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

// Errorf appends an error-severity diagnostic with no position.
func (b *Bag) Errorf(format string, args ...any) {
	b.Add(New(format, args...))
}

// HasErrors reports whether the bag contains any error-severity diagnostic.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// All returns the accumulated diagnostics in report order.
func (b *Bag) All() []Diagnostic {
	return b.items
}

// Join formats every diagnostic into a single wrapped error, or nil if the
// bag has no error-severity diagnostics.
func (b *Bag) Join(sentinel error) error {
	if !b.HasErrors() {
		return nil
	}
	msg := ""
	for i, d := range b.items {
		if i > 0 {
			msg += "\n"
		}
		msg += d.String()
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}
