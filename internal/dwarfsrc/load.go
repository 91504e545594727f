package dwarfsrc

import (
	"fmt"

	"clayout/internal/project"
)

// LoadInfo describes how an input was loaded.
type LoadInfo struct {
	Digest   project.Digest
	Cached   bool  // index came from the cache
	CacheErr error // cache read or write failed; the load itself succeeded
}

// Load opens path, taking its type index from cache when present and
// storing a freshly built one otherwise. A nil cache disables caching.
func Load(path string, cache *IndexCache) (*File, LoadInfo, error) {
	var info LoadInfo
	if cache == nil {
		f, err := Open(path)
		return f, info, err
	}

	digest, err := project.FileDigest(path)
	if err != nil {
		return nil, info, err
	}
	info.Digest = digest

	f, err := openContainer(path)
	if err != nil {
		return nil, info, err
	}
	var payload indexPayload
	hit, err := cache.get(digest, &payload)
	if err != nil {
		info.CacheErr = err
	}
	if hit {
		f.setIndex(fromPayload(&payload), int(payload.AddrSize))
		info.Cached = true
		return f, info, nil
	}

	if err := f.buildIndex(); err != nil {
		_ = f.Close()
		return nil, info, fmt.Errorf("%s: indexing DWARF: %w", path, err)
	}
	p, err := toPayload(f)
	if err == nil {
		err = cache.put(digest, p)
	}
	if err != nil && info.CacheErr == nil {
		info.CacheErr = err
	}
	return f, info, nil
}
