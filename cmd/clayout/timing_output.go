package main

import (
	"io"

	"clayout/internal/observ"
)

func printTimings(w io.Writer, timer *observ.Timer) error {
	if w == nil || timer == nil {
		return nil
	}
	_, err := io.WriteString(w, timer.Summary())
	return err
}
