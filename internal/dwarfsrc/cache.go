package dwarfsrc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"clayout/internal/debuginfo"
	"clayout/internal/project"
)

// Current schema version - increment when indexPayload changes.
const indexSchemaVersion uint16 = 1

// IndexCache keeps type indexes on disk keyed by input content hash.
// Thread-safe for concurrent access.
type IndexCache struct {
	mu  sync.RWMutex
	dir string
}

type indexPayload struct {
	Schema   uint16
	Path     string
	AddrSize uint8
	Entries  []cachedEntry
}

type cachedEntry struct {
	Offset uint64
	Kind   uint8
	Decl   bool
	Scopes []string
	Name   string
}

// DefaultCacheDir is $XDG_CACHE_HOME/<app>, falling back to ~/.cache/<app>.
func DefaultCacheDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

// OpenIndexCache creates dir if needed.
func OpenIndexCache(dir string) (*IndexCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &IndexCache{dir: dir}, nil
}

func (c *IndexCache) Dir() string { return c.dir }

func (c *IndexCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "index", key.String()+".mp")
}

func (c *IndexCache) put(key project.Digest, payload *indexPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// atomic replace
	return os.Rename(f.Name(), p)
}

func (c *IndexCache) get(key project.Digest, out *indexPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == indexSchemaVersion, nil
}

// DropAll removes every cached index.
func (c *IndexCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

func toPayload(f *File) (*indexPayload, error) {
	addr, err := safecast.Conv[uint8](f.addrSize)
	if err != nil {
		return nil, fmt.Errorf("address size %d: %w", f.addrSize, err)
	}
	p := &indexPayload{
		Schema:   indexSchemaVersion,
		Path:     f.path,
		AddrSize: addr,
		Entries:  make([]cachedEntry, len(f.entries)),
	}
	for i, e := range f.entries {
		p.Entries[i] = cachedEntry{
			Offset: uint64(e.Offset),
			Kind:   uint8(e.Kind),
			Decl:   e.Declaration,
			Scopes: e.Name.Scopes,
			Name:   e.Name.Name,
		}
	}
	return p, nil
}

func fromPayload(p *indexPayload) []debuginfo.TypeEntry {
	out := make([]debuginfo.TypeEntry, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = debuginfo.TypeEntry{
			Offset:      debuginfo.Offset(e.Offset),
			Kind:        debuginfo.Kind(e.Kind),
			Declaration: e.Decl,
			Name:        debuginfo.TypeName{Scopes: e.Scopes, Name: e.Name},
		}
	}
	return out
}
