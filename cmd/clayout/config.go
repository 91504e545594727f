package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"clayout/internal/dwarfsrc"
	"clayout/internal/project"
)

const appName = "clayout"

var errNoStem = errors.New("no output path: pass -o or set [output].stem in " + project.ManifestName)

// genFlags are the command-line values of gen.
type genFlags struct {
	inputs    []string
	lists     []string
	names     []string
	stem      string
	canonical bool
	noCache   bool
	cacheDir  string
}

// genSettings is the effective configuration after merging the manifest.
type genSettings struct {
	inputs    []string
	lists     []string
	names     []string
	stem      string
	canonical bool
	cacheDir  string // empty: caching disabled
}

// loadManifest honours --config, otherwise searches upwards from the working
// directory. A nil manifest means none was found.
func loadManifest(cmd *cobra.Command) (*project.Manifest, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path != "" {
		return project.LoadManifest(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	m, _, err := project.FindAndLoad(wd)
	return m, err
}

// mergeSettings appends command-line inputs and names to the manifest's and
// lets the command line override scalars.
func mergeSettings(m *project.Manifest, f genFlags) (genSettings, error) {
	var s genSettings
	cacheOn := !f.noCache
	if m != nil {
		cfg := m.Config
		s.inputs = append(s.inputs, cfg.Inputs.Paths...)
		s.lists = append(s.lists, cfg.Inputs.Lists...)
		s.names = append(s.names, cfg.Types.Names...)
		s.stem = cfg.Output.Stem
		s.canonical = cfg.Types.CanonicalOnly
		s.cacheDir = cfg.Cache.Dir
		cacheOn = cacheOn && cfg.Cache.CacheEnabled()
	}
	s.inputs = append(s.inputs, f.inputs...)
	s.lists = append(s.lists, f.lists...)
	s.names = append(s.names, f.names...)
	if f.stem != "" {
		s.stem = f.stem
	}
	s.canonical = s.canonical || f.canonical
	if f.cacheDir != "" {
		s.cacheDir = f.cacheDir
	}
	if s.stem == "" {
		return genSettings{}, errNoStem
	}
	s.cacheDir = cacheDirFor(cacheOn, s.cacheDir)
	return s, nil
}

// cacheDirFor falls back to the per-user cache directory; without one the
// cache is off.
func cacheDirFor(enabled bool, dir string) string {
	if !enabled {
		return ""
	}
	if dir != "" {
		return dir
	}
	def, err := dwarfsrc.DefaultCacheDir(appName)
	if err != nil {
		return ""
	}
	return def
}
