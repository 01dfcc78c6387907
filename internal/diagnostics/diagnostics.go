// Package diagnostics is the shared error-reporting sink for every
// analysis pass in this module. It plays the role the teacher compiler's
// internal/errors package plays for its front end. Locations are the
// ir.Pos (file/line/column) the front end attached to each command or
// function; no source text is shown, since nothing downstream of the type
// checker carries it.
package diagnostics

import "vela/internal/ir"

// Kind distinguishes the two user-facing diagnostics the owning spec
// defines. Every other inconsistency detected inside a pass is a
// programmer error and must panic via Bug, never be reported as a Kind.
type Kind string

const (
	// UseBeforeInit: "variable 'name' is used before being initialized".
	UseBeforeInit Kind = "E1001"
	// MissingReturn: "control reaches end of function with non-empty
	// return type".
	MissingReturn Kind = "E1002"
)

// Diagnostic is one reported problem.
type Diagnostic struct {
	Kind    Kind
	Message string
	Loc     ir.Pos
}

// Sink accumulates diagnostics for a single module compilation. A
// non-empty Sink means the module must be rejected and no further passes
// run, per the owning spec's §4.2/§7 error-handling design.
type Sink struct {
	diags []Diagnostic
}

// Report appends d to the sink.
func (s *Sink) Report(d Diagnostic) {
	s.diags = append(s.diags, d)
}

// UseBeforeInitf reports a use-before-init diagnostic for varName at loc.
func (s *Sink) UseBeforeInitf(varName string, loc ir.Pos) {
	s.Report(Diagnostic{
		Kind:    UseBeforeInit,
		Message: "variable '" + varName + "' is used before being initialized",
		Loc:     loc,
	})
}

// MissingReturnf reports a missing-return diagnostic at loc.
func (s *Sink) MissingReturnf(loc ir.Pos) {
	s.Report(Diagnostic{
		Kind:    MissingReturn,
		Message: "control reaches end of function with non-empty return type",
		Loc:     loc,
	})
}

// Diagnostics returns every diagnostic reported so far, in report order.
func (s *Sink) Diagnostics() []Diagnostic { return s.diags }

// Empty reports whether no diagnostics have been reported.
func (s *Sink) Empty() bool { return len(s.diags) == 0 }

// Bug panics with an internal-error indication. Used for the "programmer
// error, not a user diagnostic" conditions §7 calls out: an unrecognized
// Cmd tag in the inliner, or a gen/kill invariant violation in the set
// framework. Block and var ids are not range-checked; an out-of-range id
// fails with Go's own index panic.
func Bug(message string) {
	panic("internal error: " + message)
}
