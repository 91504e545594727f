package driver

import (
	"context"
	"fmt"

	"clayout/internal/debuginfo"
	"clayout/internal/dwarfsrc"
	"clayout/internal/registry"
)

// ListRequest describes a types listing.
type ListRequest struct {
	Inputs   []string
	Lists    []string
	Match    string // optional destination-style suffix filter
	Jobs     int
	CacheDir string // empty disables the index cache
}

// TypeRow is one registered definition.
type TypeRow struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Input  string `json:"input"`
	Offset uint64 `json:"offset"`
}

// ListTypes returns the canonical definitions of every input in registry
// order, optionally filtered by a qualified-name suffix.
func ListTypes(ctx context.Context, req *ListRequest) ([]TypeRow, error) {
	var suffix []string
	if req.Match != "" {
		var err error
		suffix, err = debuginfo.ParseTypeName(req.Match)
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", req.Match, err)
		}
	}
	inputs, err := CollectInputs(req.Inputs, req.Lists)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	var cache *dwarfsrc.IndexCache
	if req.CacheDir != "" {
		// listing works without a cache
		cache, _ = dwarfsrc.OpenIndexCache(req.CacheDir)
	}
	loaded, err := LoadInputs(ctx, inputs, LoadOptions{Cache: cache, Jobs: req.Jobs})
	if err != nil {
		return nil, err
	}
	defer closeLoaded(loaded)

	sources := make([]debuginfo.Source, len(loaded))
	for i, l := range loaded {
		sources[i] = l.File
	}
	return typeRows(sources, suffix), nil
}

func typeRows(sources []debuginfo.Source, suffix []string) []TypeRow {
	reg := registry.Build(sources, registry.Hints{Names: namesHint(sources)})
	entries := reg.Entries()
	if suffix != nil {
		entries = reg.Match(suffix)
	}
	rows := make([]TypeRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, TypeRow{
			Name:   e.Name.String(),
			Kind:   e.Kind.String(),
			Input:  sources[e.Index.Input].Path(),
			Offset: uint64(e.Index.Offset),
		})
	}
	return rows
}
