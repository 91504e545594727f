// Package project loads the optional clayout.toml manifest.
package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is a loaded clayout.toml. Relative paths are already resolved
// against Root.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Inputs InputsConfig `toml:"inputs"`
	Output OutputConfig `toml:"output"`
	Types  TypesConfig  `toml:"types"`
	Cache  CacheConfig  `toml:"cache"`
}

type InputsConfig struct {
	Paths []string `toml:"paths"`
	Lists []string `toml:"lists"`
}

type OutputConfig struct {
	Stem string `toml:"stem"`
}

type TypesConfig struct {
	Names         []string `toml:"names"`
	CanonicalOnly bool     `toml:"canonical_only"`
}

type CacheConfig struct {
	Enabled *bool  `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// CacheEnabled defaults to true when [cache].enabled is absent.
func (c CacheConfig) CacheEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// LoadManifest parses path and resolves its relative paths.
func LoadManifest(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	for i, n := range cfg.Types.Names {
		if strings.TrimSpace(n) == "" {
			return nil, fmt.Errorf("%s: [types].names[%d] is empty", path, i)
		}
	}

	root := filepath.Dir(path)
	cfg.Inputs.Paths = resolveAll(root, cfg.Inputs.Paths)
	cfg.Inputs.Lists = resolveAll(root, cfg.Inputs.Lists)
	if cfg.Output.Stem != "" {
		cfg.Output.Stem = resolve(root, cfg.Output.Stem)
	}
	if cfg.Cache.Dir != "" {
		cfg.Cache.Dir = resolve(root, cfg.Cache.Dir)
	}
	return &Manifest{Path: path, Root: root, Config: cfg}, nil
}

// FindAndLoad locates the manifest above startDir; ok is false when none
// exists.
func FindAndLoad(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := LoadManifest(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

func resolve(root, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func resolveAll(root string, ps []string) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = resolve(root, p)
	}
	return out
}
