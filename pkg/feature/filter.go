package feature

import (
	"fmt"

	"github.com/JaimeStill/route-lab/pkg/declare"
)

// Include reports whether a node guarded by cond survives filtering.
// Unconditional nodes never consult the resolver.
func Include(cond declare.Condition, r Resolver) (bool, error) {
	if cond.Unconditional() {
		return true, nil
	}
	enabled, err := r.Enabled(cond.Feature)
	if err != nil {
		return false, fmt.Errorf("resolve feature %q: %w", cond.Feature, err)
	}
	return cond.Holds(enabled), nil
}

// Filter returns the nodes of list whose conditions hold, in their original
// relative order. Surviving module references point at filtered copies of
// their modules; modules removed here are never visited. A nil resolver
// behaves as an empty, non-strict Set.
func Filter(list []declare.Node, r Resolver) ([]declare.Node, error) {
	if r == nil {
		r = NewSet(nil, false)
	}
	f := &filter{resolver: r, active: map[*declare.Module]bool{}}
	return f.list(list)
}

// FilterApplication filters every service list of app at every depth.
// The input declaration is left untouched.
func FilterApplication(app *declare.Application, r Resolver) (*declare.Application, error) {
	services, err := Filter(app.Services, r)
	if err != nil {
		return nil, err
	}
	return &declare.Application{
		Name:       app.Name,
		Middleware: app.Middleware,
		Services:   services,
	}, nil
}

type filter struct {
	resolver Resolver
	active   map[*declare.Module]bool
}

func (f *filter) list(list []declare.Node) ([]declare.Node, error) {
	out := make([]declare.Node, 0, len(list))
	for _, n := range list {
		keep, err := Include(n.Condition(), f.resolver)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}

		if ref, ok := n.(declare.ModuleRef); ok && ref.Module != nil {
			m, err := f.module(ref.Module)
			if err != nil {
				return nil, err
			}
			ref.Module = m
			n = ref
		}
		out = append(out, n)
	}
	return out, nil
}

// module filters a copy of m. A module already being filtered higher up the
// stack is returned as-is so that reference cycles reach the composer, which
// reports them.
func (f *filter) module(m *declare.Module) (*declare.Module, error) {
	if f.active[m] {
		return m, nil
	}
	f.active[m] = true
	defer delete(f.active, m)

	outer, err := f.list(m.Outer)
	if err != nil {
		return nil, fmt.Errorf("module %s outer: %w", moduleLabel(m), err)
	}
	inner, err := f.list(m.Inner)
	if err != nil {
		return nil, fmt.Errorf("module %s inner: %w", moduleLabel(m), err)
	}

	return &declare.Module{
		Name:       m.Name,
		Prefix:     m.Prefix,
		Middleware: m.Middleware,
		Outer:      outer,
		Inner:      inner,
	}, nil
}

func moduleLabel(m *declare.Module) string {
	if m.Name != "" {
		return m.Name
	}
	return m.Prefix
}
