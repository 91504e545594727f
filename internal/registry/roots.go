package registry

import (
	"fmt"

	"clayout/internal/debuginfo"
	"clayout/internal/layout"
)

// Destination is a parsed destination type name.
type Destination struct {
	Raw  string
	Path []string
}

func (d Destination) String() string { return d.Raw }

// ParseDestinations parses every raw name; the first malformed one fails.
func ParseDestinations(raw []string) ([]Destination, error) {
	out := make([]Destination, 0, len(raw))
	for _, s := range raw {
		path, err := debuginfo.ParseTypeName(s)
		if err != nil {
			return nil, fmt.Errorf("destination %q: %w", s, err)
		}
		out = append(out, Destination{Raw: s, Path: path})
	}
	return out, nil
}

// Root is one type to process, attributed to the destination that chose it.
type Root struct {
	Dest  int
	Name  debuginfo.TypeName
	Index layout.TypeIndex
}

// Roots selects the types to process in destination order. A destination
// marks every non-declaration node whose qualified name ends with its path,
// in input then metadata order; with canonicalOnly set it yields only the
// registered definition of each matching name. A type chosen by an earlier
// destination is not repeated. Destinations that match nothing are returned
// in missing.
func (r *Registry) Roots(dests []Destination, canonicalOnly bool) (roots []Root, missing []Destination) {
	seen := make(map[layout.TypeIndex]struct{})
	for di, d := range dests {
		found := false
		add := func(name debuginfo.TypeName, idx layout.TypeIndex) {
			found = true
			if _, dup := seen[idx]; dup {
				return
			}
			seen[idx] = struct{}{}
			roots = append(roots, Root{Dest: di, Name: name, Index: idx})
		}
		if canonicalOnly {
			for _, e := range r.Match(d.Path) {
				add(e.Name, e.Index)
			}
		} else {
			for input, src := range r.sources {
				for _, te := range src.Types() {
					if registrable(te) && te.Name.EndsWith(d.Path) {
						add(te.Name, layout.TypeIndex{Input: input, Offset: te.Offset})
					}
				}
			}
		}
		if !found {
			missing = append(missing, d)
		}
	}
	return roots, missing
}
