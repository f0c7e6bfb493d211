// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// GroupRefPrefix marks a requirement that splices another extras group.
const GroupRefPrefix = "@"

var (
	// ErrUnknownExtrasGroup is returned for a reference to an undeclared group,
	// or to a group declared later in the list.
	ErrUnknownExtrasGroup = errors.New("unknown extras group")
	// ErrDuplicateExtrasGroup is returned when a group name is declared twice.
	ErrDuplicateExtrasGroup = errors.New("duplicate extras group")
)

type (
	// ExtrasGroup is a declared extras group; Requires may hold "@group" references.
	ExtrasGroup struct {
		Name     string   `json:"name"`
		Requires []string `json:"requires"`
	}

	// Extras is an ordered list of groups whose requirements are fully expanded.
	Extras []ExtrasGroup

	// UnknownExtrasGroupError reports an unresolvable "@group" reference.
	UnknownExtrasGroupError struct {
		Group     string
		Reference string
		Forward   bool
	}

	// DuplicateExtrasGroupError reports a group declared more than once.
	DuplicateExtrasGroupError struct {
		Group string
	}
)

// ResolveExtras expands "@group" references in declaration order. A
// reference splices the already-resolved requirements of an earlier group;
// duplicates are kept.
func ResolveExtras(groups []ExtrasGroup) (Extras, error) {
	declared := make(map[string]int, len(groups))
	for i, g := range groups {
		if _, dup := declared[g.Name]; dup {
			return nil, &DuplicateExtrasGroupError{Group: g.Name}
		}
		declared[g.Name] = i
	}

	resolved := make(Extras, 0, len(groups))
	index := make(map[string][]string, len(groups))
	for i, g := range groups {
		var reqs []string
		for _, req := range g.Requires {
			ref, isRef := strings.CutPrefix(req, GroupRefPrefix)
			if !isRef {
				reqs = append(reqs, req)
				continue
			}
			spliced, ok := index[ref]
			if !ok {
				pos, exists := declared[ref]
				return nil, &UnknownExtrasGroupError{Group: g.Name, Reference: ref, Forward: exists && pos >= i}
			}
			reqs = append(reqs, spliced...)
		}
		if reqs == nil {
			reqs = []string{}
		}
		index[g.Name] = reqs
		resolved = append(resolved, ExtrasGroup{Name: g.Name, Requires: reqs})
	}
	return resolved, nil
}

// Names returns the group names in declaration order.
func (e Extras) Names() []string {
	names := make([]string, len(e))
	for i, g := range e {
		names[i] = g.Name
	}
	return names
}

// Get returns the resolved requirements of the named group.
func (e Extras) Get(name string) ([]string, bool) {
	i := slices.IndexFunc(e, func(g ExtrasGroup) bool { return g.Name == name })
	if i < 0 {
		return nil, false
	}
	return slices.Clone(e[i].Requires), true
}

// Map returns the groups as a map, for encoders that need one.
func (e Extras) Map() map[string][]string {
	m := make(map[string][]string, len(e))
	for _, g := range e {
		m[g.Name] = slices.Clone(g.Requires)
	}
	return m
}

func (e Extras) clone() Extras {
	out := make(Extras, len(e))
	for i, g := range e {
		out[i] = ExtrasGroup{Name: g.Name, Requires: slices.Clone(g.Requires)}
	}
	return out
}

// Error implements the error interface.
func (e *UnknownExtrasGroupError) Error() string {
	if e.Forward {
		return fmt.Sprintf("extras group %q references %q before it is declared", e.Group, e.Reference)
	}
	return fmt.Sprintf("extras group %q references undeclared group %q", e.Group, e.Reference)
}

// Unwrap returns ErrUnknownExtrasGroup for errors.Is() compatibility.
func (e *UnknownExtrasGroupError) Unwrap() error { return ErrUnknownExtrasGroup }

// Error implements the error interface.
func (e *DuplicateExtrasGroupError) Error() string {
	return fmt.Sprintf("extras group %q is declared more than once", e.Group)
}

// Unwrap returns ErrDuplicateExtrasGroup for errors.Is() compatibility.
func (e *DuplicateExtrasGroupError) Unwrap() error { return ErrDuplicateExtrasGroup }
