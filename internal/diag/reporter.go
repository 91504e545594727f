package diag

import "fmt"

// Reporter receives diagnostics from the layout engine and the driver.
type Reporter interface {
	Report(code Code, sev Severity, primary Location, msg string, notes []Note)
}

// Warnf is a shortcut for SevWarning diagnostics with a formatted message.
func Warnf(r Reporter, code Code, primary Location, format string, args ...any) {
	if r == nil {
		return
	}
	r.Report(code, SevWarning, primary, fmt.Sprintf(format, args...), nil)
}

// Infof is a shortcut for SevInfo diagnostics with a formatted message.
func Infof(r Reporter, code Code, primary Location, format string, args ...any) {
	if r == nil {
		return
	}
	r.Report(code, SevInfo, primary, fmt.Sprintf(format, args...), nil)
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary Location, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Primary: primary, Notes: notes,
	})
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, Location, string, []Note) {}

// MultiReporter fans out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(code Code, sev Severity, primary Location, msg string, notes []Note) {
	for _, r := range m {
		if r != nil {
			r.Report(code, sev, primary, msg, notes)
		}
	}
}
