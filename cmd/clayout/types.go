package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"clayout/internal/driver"
)

func newTypesCmd() *cobra.Command {
	var (
		lists   []string
		match   string
		format  string
		noCache bool
		dir     string
		jobs    int
	)
	cmd := &cobra.Command{
		Use:   "types [flags] <binary>...",
		Short: "List the named types of the inputs",
		Long:  "List the canonical definition of every named type, the names gen accepts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "text" && format != "json" {
				return errInvalidChoice("--format", format, "text|json")
			}
			cleanup, err := instrument(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			rows, err := driver.ListTypes(cmd.Context(), &driver.ListRequest{
				Inputs:   args,
				Lists:    lists,
				Match:    match,
				Jobs:     jobs,
				CacheDir: cacheDirFor(!noCache, dir),
			})
			if err != nil {
				return err
			}
			if format == "json" {
				return writeTypesJSON(cmd.OutOrStdout(), rows)
			}
			return writeTypesText(cmd.OutOrStdout(), rows)
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVarP(&lists, "input-list", "I", nil, "file listing input binaries, one per line (repeatable)")
	flags.StringVar(&match, "match", "", "only names ending with this qualified suffix")
	flags.StringVar(&format, "format", "text", "output format (text|json)")
	flags.BoolVar(&noCache, "no-cache", false, "do not read or write the index cache")
	flags.StringVar(&dir, "cache-dir", "", "index cache directory (default $XDG_CACHE_HOME/clayout)")
	flags.IntVarP(&jobs, "jobs", "j", 0, "inputs loaded in parallel (0 = GOMAXPROCS)")
	return cmd
}

func writeTypesText(w io.Writer, rows []driver.TypeRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tNAME\tINPUT\tOFFSET")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t0x%x\n", r.Kind, r.Name, r.Input, r.Offset)
	}
	return tw.Flush()
}

func writeTypesJSON(w io.Writer, rows []driver.TypeRow) error {
	if rows == nil {
		rows = []driver.TypeRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
