package diag

import "fmt"

// Severity orders diagnostics; Render and Bag.Sort put the most severe first.
type Severity uint8

const (
	SevInfo    Severity = iota // a note about the run
	SevWarning                 // a type was skipped and the run went on
	SevError                   // part of the output is missing
)

var severityLabels = [...]string{
	SevInfo:    "INFO",
	SevWarning: "WARNING",
	SevError:   "ERROR",
}

func (s Severity) String() string {
	if int(s) < len(severityLabels) {
		return severityLabels[s]
	}
	return fmt.Sprintf("Severity(%d)", uint8(s))
}
