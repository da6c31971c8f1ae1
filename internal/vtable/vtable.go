// Package vtable implements vtable layout and dynamic dispatch resolution:
// given a struct's trait implementations, it lays out one vtable per
// (struct, trait) pair with a stable method-slot order, and resolves a
// dyn-typed call site to the right slot at compile time.
//
// A type's method set is built by walking its declared methods in source
// order; since a type can implement many traits, layout produces one
// vtable per trait rather than a single flat method set per type.
package vtable

import (
	"fmt"

	"github.com/aria-lang/ariac/internal/diag"
	"github.com/aria-lang/ariac/internal/source"
	"github.com/aria-lang/ariac/internal/types"
)

// Slot is one entry in a vtable: a method name at a fixed index.
type Slot struct {
	Name  string
	Index int
	Sig   *types.Type // Function-category type
}

// Descriptor is the vtable for one (concrete type, trait) pair.
type Descriptor struct {
	TypeName  string
	TraitName string
	Slots     []Slot
}

// Registry owns every vtable descriptor built during sema/mono, keyed by
// "TypeName#TraitName".
type Registry struct {
	descs map[string]*Descriptor
}

func NewRegistry() *Registry { return &Registry{descs: map[string]*Descriptor{}} }

func key(typeName, traitName string) string { return typeName + "#" + traitName }

// Build lays out a vtable for typeName implementing traitName, given the
// trait's method signatures in declaration order and the type's actual
// method implementations (name -> signature). Every trait method must have
// a matching implementation or the
// vtable can't be built.
func (r *Registry) Build(bag *diag.Bag, pos source.Pos, typeName, traitName string, traitMethods []string, impls map[string]*types.Type) *Descriptor {
	d := &Descriptor{TypeName: typeName, TraitName: traitName}
	for i, m := range traitMethods {
		sig, ok := impls[m]
		if !ok {
			bag.Errorf(pos, diag.CodeMissingTraitImpl, "%s does not implement %s.%s required by trait %s", typeName, typeName, m, traitName)
			continue
		}
		d.Slots = append(d.Slots, Slot{Name: m, Index: i, Sig: sig})
	}
	r.descs[key(typeName, traitName)] = d
	return d
}

// Lookup returns the vtable for (typeName, traitName), if one was built.
func (r *Registry) Lookup(typeName, traitName string) (*Descriptor, bool) {
	d, ok := r.descs[key(typeName, traitName)]
	return d, ok
}

// SlotIndex resolves a dyn-typed call's method name to its fixed vtable
// slot index, the value IR emission loads a function pointer from at
// runtime.
func (d *Descriptor) SlotIndex(method string) (int, error) {
	for _, s := range d.Slots {
		if s.Name == method {
			return s.Index, nil
		}
	}
	return -1, fmt.Errorf("no vtable slot for method %q on %s#%s", method, d.TypeName, d.TraitName)
}
