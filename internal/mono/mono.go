// Package mono implements the generic resolver and monomorphization
// registry: given a generic function/struct and a
// concrete type-argument list, it produces (or reuses) one specialized
// instantiation, keyed by the mangled name the vtable/IR phases reference.
//
// The registry's backing store is github.com/dolthub/swiss, a fast generic
// hash map, and concurrent get-or-create calls for the same key are
// deduplicated with golang.org/x/sync/singleflight, the same module
// internal/resolve uses for its errgroup-backed fan-out.
package mono

import (
	"strings"
	"sync"

	"github.com/dolthub/swiss"
	"golang.org/x/sync/singleflight"

	"github.com/aria-lang/ariac/internal/types"
)

// Instantiation is one monomorphized specialization: the mangled name IR
// emission and vtable layout key off of, plus the substituted type.
type Instantiation struct {
	Key        string
	GenericName string
	TypeArgs   []*types.Type
	Resolved   *types.Type
}

// Registry deduplicates instantiations across the whole compilation
//.
type Registry struct {
	mu    sync.RWMutex
	store *swiss.Map[string, *Instantiation]
	group singleflight.Group
}

func NewRegistry() *Registry {
	return &Registry{store: swiss.NewMap[string, *Instantiation](64)}
}

// MangleKey builds the stable registry key for a generic name instantiated
// at the given type arguments.
func MangleKey(genericName string, args []*types.Type) string {
	var sb strings.Builder
	sb.WriteString(genericName)
	for _, a := range args {
		sb.WriteByte('$')
		sb.WriteString(a.String())
	}
	return sb.String()
}

// GetOrCreate returns the existing instantiation for (genericName, args) if
// one exists, or builds a new one with resolve and registers it. Concurrent
// callers racing on the same key block on a single in-flight resolve call
// via singleflight rather than duplicating work or racing the swiss map.
func (r *Registry) GetOrCreate(genericName string, args []*types.Type, resolve func() *types.Type) *Instantiation {
	key := MangleKey(genericName, args)

	r.mu.RLock()
	if inst, ok := r.store.Get(key); ok {
		r.mu.RUnlock()
		return inst
	}
	r.mu.RUnlock()

	v, _, _ := r.group.Do(key, func() (interface{}, error) {
		r.mu.RLock()
		if inst, ok := r.store.Get(key); ok {
			r.mu.RUnlock()
			return inst, nil
		}
		r.mu.RUnlock()

		inst := &Instantiation{Key: key, GenericName: genericName, TypeArgs: args, Resolved: resolve()}
		r.mu.Lock()
		r.store.Put(key, inst)
		r.mu.Unlock()
		return inst, nil
	})
	return v.(*Instantiation)
}

// All returns every registered instantiation in swiss.Map iteration order,
// which is unspecified; the result is not sorted.
func (r *Registry) All() []*Instantiation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Instantiation
	r.store.Iter(func(_ string, inst *Instantiation) bool {
		out = append(out, inst)
		return false
	})
	return out
}

// MangledTraitMethod is the external linkage name of a trait method
// specialized for a concrete implementing type: `<trait>_<type>_<method>`.
func MangledTraitMethod(trait, typeName, method string) string {
	return trait + "_" + typeName + "_" + method
}

// VtableGlobalName is the external name of the vtable instance global for
// one (trait, concrete type) pair: `vtable_<trait>_<type>`.
func VtableGlobalName(trait, typeName string) string {
	return "vtable_" + trait + "_" + typeName
}

// VtableStructName is the external name of a trait's vtable layout struct
// type, shared by every implementing type: `vtable_<trait>`.
func VtableStructName(trait string) string {
	return "vtable_" + trait
}

// TraitObjectStructName is the external name of a trait's fat-pointer
// `{data, vtable}` struct type: `trait_object_<trait>`.
func TraitObjectStructName(trait string) string {
	return "trait_object_" + trait
}

// Ambiguous reports whether the registry key for (genericName, args) is
// already held by an instantiation registered under a different generic
// name. Two declarations that share the unqualified name genericName (e.g.
// imported from two different modules) produce the same key and the same
// GenericName, so they are not reported as ambiguous.
func (r *Registry) Ambiguous(genericName string, args []*types.Type) bool {
	key := MangleKey(genericName, args)
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.store.Get(key)
	return ok && inst.GenericName != genericName
}
