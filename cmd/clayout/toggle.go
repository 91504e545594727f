package main

import (
	"fmt"
	"os"
	"strings"
)

// toggle is the value of an auto|on|off flag such as --ui or --color.
type toggle uint8

const (
	toggleAuto toggle = iota
	toggleOn
	toggleOff
)

var toggleValues = map[string]toggle{
	"":     toggleAuto,
	"auto": toggleAuto,
	"on":   toggleOn,
	"off":  toggleOff,
}

func errInvalidChoice(flag, value, choices string) error {
	return fmt.Errorf("invalid %s value %q (expected %s)", flag, value, choices)
}

func readToggle(flag, value string) (toggle, error) {
	t, ok := toggleValues[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return toggleAuto, errInvalidChoice(flag, value, "auto|on|off")
	}
	return t, nil
}

// enabled resolves auto with detect.
func (t toggle) enabled(detect func() bool) bool {
	if t == toggleAuto {
		return detect()
	}
	return t == toggleOn
}

// useProgressUI draws the progress display only on a terminal, and never for
// quiet runs in auto mode. The report that follows goes to stderr, so both
// streams must be terminals.
func useProgressUI(t toggle, quiet bool) bool {
	return t.enabled(func() bool {
		return !quiet && isTerminal(os.Stdout) && isTerminal(os.Stderr)
	})
}
