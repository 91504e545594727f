// Package main implements the clayout CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"clayout/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clayout",
		Short: "Rebuild C type layouts from DWARF debug info",
		Long: `clayout reads the DWARF type information of compiled binaries and writes a
packed C header reproducing the memory layout of the requested types, plus a
C program that checks every field offset and size at run time.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to keep")
	pf.String("config", "", "path to clayout.toml (default: search upwards from the working directory)")

	pf.String("trace", "", "write a trace to this file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	pf.Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")

	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")

	root.AddCommand(newGenCmd(), newTypesCmd(), newVersionCmd(), newCleanCmd())
	return root
}

// main exits with status 1 when the command fails.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// setupColor resolves the --color flag for output written to f and
// applies it to every color.Color.
func setupColor(cmd *cobra.Command, f *os.File) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	mode, err := readToggle("--color", value)
	if err != nil {
		return false, err
	}
	on := mode.enabled(func() bool { return isTerminal(f) })
	color.NoColor = !on
	return on, nil
}
