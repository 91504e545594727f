// Package registry maps fully qualified type names to their canonical
// definition across all inputs. Struct, union and enum tags live in their
// own name spaces, apart from typedefs and base types.
package registry

import (
	"fmt"

	"fortio.org/safecast"

	"clayout/internal/debuginfo"
	"clayout/internal/layout"
)

// Hints provide optional capacity suggestions.
type Hints struct{ Names uint }

// Entry is one registered definition.
type Entry struct {
	Name  debuginfo.TypeName
	Kind  debuginfo.Kind
	Index layout.TypeIndex
}

// Registry holds the first non-anonymous definition of every qualified name,
// in input order then metadata order.
type Registry struct {
	sources  []debuginfo.Source
	entries  []Entry
	byKey    map[nameKey]int
	shadowed int
}

// nameKey is a qualified name within one name space. tag is zero for
// ordinary identifiers.
type nameKey struct {
	tag  debuginfo.Kind
	name string
}

func keyOf(name debuginfo.TypeName, kind debuginfo.Kind) nameKey {
	switch kind {
	case debuginfo.KindStruct, debuginfo.KindUnion, debuginfo.KindEnum:
		return nameKey{tag: kind, name: name.Key()}
	}
	return nameKey{name: name.Key()}
}

var _ layout.Names = (*Registry)(nil)

// Build scans every input. Declarations and anonymous types are skipped; on
// duplicate names within a name space the first definition wins.
func Build(sources []debuginfo.Source, h Hints) *Registry {
	capHint, err := safecast.Conv[int](h.Names)
	if err != nil {
		panic(fmt.Errorf("registry capacity overflow: %w", err))
	}
	r := &Registry{
		sources: sources,
		entries: make([]Entry, 0, capHint),
		byKey:   make(map[nameKey]int, capHint),
	}
	for input, src := range sources {
		for _, te := range src.Types() {
			if !registrable(te) {
				continue
			}
			key := keyOf(te.Name, te.Kind)
			if _, dup := r.byKey[key]; dup {
				r.shadowed++
				continue
			}
			r.byKey[key] = len(r.entries)
			r.entries = append(r.entries, Entry{
				Name:  te.Name,
				Kind:  te.Kind,
				Index: layout.TypeIndex{Input: input, Offset: te.Offset},
			})
		}
	}
	return r
}

func registrable(te debuginfo.TypeEntry) bool {
	if te.Declaration || te.Name.Anonymous() {
		return false
	}
	switch te.Kind {
	case debuginfo.KindUnspecified, debuginfo.KindSubrange, debuginfo.KindFunction:
		return false
	}
	return true
}

// Lookup returns the canonical definition of name in the name space of kind,
// so a struct declaration only resolves to a struct definition.
func (r *Registry) Lookup(name debuginfo.TypeName, kind debuginfo.Kind) (layout.TypeIndex, bool) {
	i, ok := r.byKey[keyOf(name, kind)]
	if !ok {
		return layout.TypeIndex{}, false
	}
	return r.entries[i].Index, true
}

// Entries lists registered definitions in registration order.
func (r *Registry) Entries() []Entry { return r.entries }

func (r *Registry) Len() int { return len(r.entries) }

// Shadowed counts definitions that lost to an earlier one of the same name.
func (r *Registry) Shadowed() int { return r.shadowed }

// Match returns every entry whose qualified name ends with suffix.
func (r *Registry) Match(suffix []string) []Entry {
	var out []Entry
	for _, e := range r.entries {
		if e.Name.EndsWith(suffix) {
			out = append(out, e)
		}
	}
	return out
}
