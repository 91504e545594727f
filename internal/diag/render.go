package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// RenderOpts controls Render.
type RenderOpts struct {
	Color bool
	// MinSeverity hides less severe diagnostics.
	MinSeverity Severity
}

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
	codeColor = color.New(color.Faint)
)

// Render prints one line per diagnostic:
//
//	WARNING LAY4002 lib.so@0x2d (ns::Foo): message
//
// Notes follow on indented lines. The bag should be sorted beforehand.
func Render(w io.Writer, bag *Bag, opts RenderOpts) error {
	if bag == nil {
		return nil
	}
	for _, d := range bag.Items() {
		if d.Severity < opts.MinSeverity {
			continue
		}
		sev := d.Severity.String()
		code := d.Code.ID()
		if opts.Color {
			sev = severityColor(d.Severity).Sprint(sev)
			code = codeColor.Sprint(code)
		}
		if _, err := fmt.Fprintf(w, "%s %s %s: %s\n", sev, code, d.Primary, oneLine(d.Message)); err != nil {
			return err
		}
		for _, n := range d.Notes {
			if _, err := fmt.Fprintf(w, "  note: %s: %s\n", n.Loc, oneLine(n.Msg)); err != nil {
				return err
			}
		}
	}
	if bag.Dropped() > 0 {
		if _, err := fmt.Fprintf(w, "... %d more diagnostics not shown\n", bag.Dropped()); err != nil {
			return err
		}
	}
	return nil
}

func severityColor(s Severity) *color.Color {
	switch s {
	case SevError:
		return errColor
	case SevWarning:
		return warnColor
	default:
		return infoColor
	}
}

func oneLine(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
