package ident

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"clayout/internal/debuginfo"
)

// Part truncates name at its first non-identifier character.
func Part(name string) string {
	name = norm.NFC.String(name)
	for i, r := range name {
		if !debuginfo.IsIdentRune(r) {
			return name[:i]
		}
	}
	return name
}

// Valid reports whether name is a non-empty identifier.
func Valid(name string) bool {
	return name != "" && Part(name) == name
}

// Allocator remembers every identifier it returned during a run.
// Not safe for concurrent use.
type Allocator struct {
	counter *Counter
	used    map[string]uint64
}

// NewAllocator binds an allocator to the run counter.
func NewAllocator(counter *Counter) *Allocator {
	if counter == nil {
		counter = NewCounter()
	}
	return &Allocator{
		counter: counter,
		used:    make(map[string]uint64, 256),
	}
}

// Alloc returns a fresh identifier for name.
//
// The shortest suffix of the sanitized path that is still free wins; when
// the whole path is taken a per-name numeric suffix is appended.
func (a *Allocator) Alloc(name debuginfo.TypeName) string {
	leaf := Part(name.Name)
	if leaf == "" {
		return a.fresh("AnonType")
	}

	// innermost first
	parts := []string{leaf}
	for i := len(name.Scopes) - 1; i >= 0; i-- {
		if p := Part(name.Scopes[i]); p != "" {
			parts = append(parts, p)
		}
	}

	for n := 1; n <= len(parts); n++ {
		candidate := joinReversed(parts[:n])
		if _, taken := a.used[candidate]; !taken {
			a.used[candidate] = 0
			return candidate
		}
	}
	full := joinReversed(parts)
	for {
		a.used[full]++
		candidate := fmt.Sprintf("%s_%d", full, a.used[full])
		if _, taken := a.used[candidate]; !taken {
			a.used[candidate] = 0
			return candidate
		}
	}
}

// AllocPlain allocates an identifier for a synthesized, unscoped name.
func (a *Allocator) AllocPlain(name string) string {
	return a.Alloc(debuginfo.TypeName{Name: name})
}

// Counter exposes the run counter for placeholder names.
func (a *Allocator) Counter() *Counter { return a.counter }

// Used reports whether id was handed out.
func (a *Allocator) Used(id string) bool {
	_, ok := a.used[id]
	return ok
}

// fresh draws counter names for prefix until one is free.
func (a *Allocator) fresh(prefix string) string {
	for {
		id := a.counter.Name(prefix)
		if _, taken := a.used[id]; !taken {
			a.used[id] = 0
			return id
		}
	}
}

func joinReversed(innerFirst []string) string {
	out := make([]string, len(innerFirst))
	for i, p := range innerFirst {
		out[len(innerFirst)-1-i] = p
	}
	return strings.Join(out, "_")
}
