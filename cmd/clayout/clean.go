package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"clayout/internal/dwarfsrc"
)

func newCleanCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the DWARF index cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				m, err := loadManifest(cmd)
				if err != nil {
					return err
				}
				if m != nil {
					dir = m.Config.Cache.Dir
				}
			}
			target := cacheDirFor(true, dir)
			if target == "" {
				return errors.New("cannot determine the cache directory; pass --cache-dir")
			}
			out := cmd.OutOrStdout()
			info, err := os.Stat(target)
			if errors.Is(err, os.ErrNotExist) {
				_, err = fmt.Fprintf(out, "no index cache at %s\n", target)
				return err
			}
			if err != nil {
				return fmt.Errorf("failed to stat %q: %w", target, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%q is not a directory", target)
			}
			cache, err := dwarfsrc.OpenIndexCache(target)
			if err != nil {
				return err
			}
			if err := cache.DropAll(); err != nil {
				return fmt.Errorf("failed to remove %q: %w", target, err)
			}
			_, err = fmt.Fprintf(out, "removed %s\n", target)
			return err
		},
	}
	cmd.Flags().StringVar(&dir, "cache-dir", "", "index cache directory (default $XDG_CACHE_HOME/clayout)")
	return cmd
}
