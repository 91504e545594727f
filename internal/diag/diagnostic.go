// Package diag defines the diagnostic model shared by the layout engine and
// the driver.
//
// Recoverable findings (a type that cannot be reconstructed, a destination
// that matches nothing) are Diagnostics. They are reported through a Reporter,
// collected in a Bag and rendered by the CLI; they never abort a run.
// Fatal conditions are ordinary Go errors.
package diag

import "fmt"

// Location points at a type node inside one input.
// Input is -1 when the diagnostic is not tied to an input.
type Location struct {
	Input  int
	Path   string
	Offset uint64
	Name   string
}

// NoLocation is used for run-level diagnostics.
var NoLocation = Location{Input: -1}

func (l Location) String() string {
	if l.Input < 0 {
		if l.Name != "" {
			return l.Name
		}
		return "<run>"
	}
	where := l.Path
	if where == "" {
		where = fmt.Sprintf("input#%d", l.Input)
	}
	s := fmt.Sprintf("%s@0x%x", where, l.Offset)
	if l.Name != "" {
		s += " (" + l.Name + ")"
	}
	return s
}

type Note struct {
	Loc Location
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Location
	Notes    []Note
}

func New(sev Severity, code Code, primary Location, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func (d Diagnostic) WithNote(loc Location, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Loc: loc, Msg: msg})
	return d
}
