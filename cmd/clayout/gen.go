package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"clayout/internal/diag"
	"clayout/internal/driver"
)

func newGenCmd() *cobra.Command {
	var f genFlags
	cmd := &cobra.Command{
		Use:   "gen [flags] <type>...",
		Short: "Generate a packed header and its layout checks",
		Long: `Generate <out>.h with packed definitions of every named type and everything
it references, and <out>.c, a program asserting every field offset and size.

Type names are qualified with "::" (or "."), e.g. ns::Foo or std::pair<int, int>.
A name matches every type whose qualified name ends with it, in every input.`,
		Example: "  clayout gen -i libfoo.so -o out/foo ns::Foo ns::Bar\n  clayout gen -I inputs.txt -o layout Config",
		RunE: func(cmd *cobra.Command, args []string) error {
			f.names = args
			return runGen(cmd, f)
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVarP(&f.inputs, "input", "i", nil, "input binary (repeatable)")
	flags.StringArrayVarP(&f.lists, "input-list", "I", nil, "file listing input binaries, one per line (repeatable)")
	flags.StringVarP(&f.stem, "output", "o", "", "output path without extension")
	flags.BoolVar(&f.canonical, "canonical-only", false, "process only the first definition of each matching name")
	flags.BoolVar(&f.noCache, "no-cache", false, "do not read or write the index cache")
	flags.StringVar(&f.cacheDir, "cache-dir", "", "index cache directory (default $XDG_CACHE_HOME/clayout)")
	flags.IntP("jobs", "j", 0, "inputs loaded in parallel (0 = GOMAXPROCS)")
	flags.String("ui", "auto", "progress display (auto|on|off)")
	return cmd
}

func runGen(cmd *cobra.Command, f genFlags) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readToggle("--ui", uiValue)
	if err != nil {
		return err
	}
	pf := cmd.Root().PersistentFlags()
	quiet, err := pf.GetBool("quiet")
	if err != nil {
		return err
	}
	timings, err := pf.GetBool("timings")
	if err != nil {
		return err
	}
	maxDiagnostics, err := pf.GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	colored, err := setupColor(cmd, os.Stderr)
	if err != nil {
		return err
	}

	manifest, err := loadManifest(cmd)
	if err != nil {
		return err
	}
	s, err := mergeSettings(manifest, f)
	if err != nil {
		return err
	}
	inputs, err := driver.CollectInputs(s.inputs, s.lists)
	if err != nil {
		return err
	}

	cleanup, err := instrument(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	req := &driver.Request{
		Inputs:         inputs,
		Destinations:   s.names,
		Stem:           s.stem,
		CanonicalOnly:  s.canonical,
		Jobs:           jobs,
		CacheDir:       s.cacheDir,
		MaxDiagnostics: maxDiagnostics,
	}
	var res *driver.Result
	if useProgressUI(mode, quiet) {
		res, err = runWithUI(cmd.Context(), "clayout gen "+s.stem, inputs, req)
	} else {
		res, err = driver.Run(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	minSev := diag.SevInfo
	if quiet {
		minSev = diag.SevWarning
	}
	if err := diag.Render(stderr, res.Bag, diag.RenderOpts{Color: colored, MinSeverity: minSev}); err != nil {
		return err
	}
	if !quiet {
		if err := printSummary(cmd.OutOrStdout(), res); err != nil {
			return err
		}
	}
	if timings {
		if err := printTimings(stderr, res.Timer); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(w io.Writer, res *driver.Result) error {
	gen := res.Generate
	_, err := fmt.Fprintf(w, "wrote %s and %s: %d definitions, %d checks, %d roots",
		res.HeaderPath, res.ProgramPath, res.Types, res.Asserts, len(gen.Roots))
	if err == nil && len(gen.Missing) > 0 {
		_, err = fmt.Fprintf(w, ", %d names not found", len(gen.Missing))
	}
	if err == nil && res.Cached > 0 {
		_, err = fmt.Fprintf(w, " (%d of %d inputs cached)", res.Cached, len(res.Inputs))
	}
	if err == nil {
		_, err = fmt.Fprintln(w)
	}
	return err
}
