package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"clayout/internal/version"
)

func newVersionCmd() *cobra.Command {
	var (
		format string
		hash   bool
		date   bool
		full   bool
	)
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show clayout build metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Current(version.Fields{Hash: hash || full, Date: date || full})
			switch strings.ToLower(format) {
			case "json":
				return info.JSON(cmd.OutOrStdout())
			case "pretty":
				if _, err := setupColor(cmd, os.Stdout); err != nil {
					return err
				}
				return info.Pretty(cmd.OutOrStdout())
			default:
				return errInvalidChoice("--format", format, "pretty|json")
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	cmd.Flags().BoolVar(&hash, "hash", false, "include the git commit hash")
	cmd.Flags().BoolVar(&date, "date", false, "include the build date")
	cmd.Flags().BoolVar(&full, "full", false, "include all build metadata")
	return cmd
}
