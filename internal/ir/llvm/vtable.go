package llvm

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/aria-lang/ariac/internal/mono"
	"github.com/aria-lang/ariac/internal/vtable"
)

// vtableStructType returns the one named vtable-layout struct type per
// trait, created on first use and cached in em.structTypes (as
// traitObjectStructType does for the trait-object fat-pointer struct), so
// every implementing type's vtable global shares the same LLVM type rather
// than each minting its own anonymous struct.
func (em *Emitter) vtableStructType(traitName string, slots int) llvm.Type {
	name := mono.VtableStructName(traitName)
	if t, ok := em.structTypes[name]; ok {
		return t
	}
	i8ptr := llvm.PointerType(em.ctx.Int8Type(), 0)
	fields := make([]llvm.Type, slots)
	for i := range fields {
		fields[i] = i8ptr
	}
	t := em.ctx.StructCreateNamed(name)
	t.StructSetBody(fields, false)
	em.structTypes[name] = t
	return t
}

func (em *Emitter) traitObjectStructType(traitName string) llvm.Type {
	name := mono.TraitObjectStructName(traitName)
	if t, ok := em.structTypes[name]; ok {
		return t
	}
	i8ptr := llvm.PointerType(em.ctx.Int8Type(), 0)
	t := em.ctx.StructCreateNamed(name)
	t.StructSetBody([]llvm.Type{i8ptr, i8ptr}, false) // {data, vtable}
	em.structTypes[name] = t
	return t
}

// EmitVtable materializes desc as a global constant vtable instance: a
// struct of function pointers in slot order, typed by the trait's shared
// vtable layout struct and named by the (trait, type) mangling scheme, plus
// (once per trait) the trait's fat-pointer object struct type declaration.
// Each slot's function pointer is looked up by the trait-method mangled
// name EmitFuncHeader registered it under.
func (em *Emitter) EmitVtable(desc *vtable.Descriptor) error {
	i8ptr := llvm.PointerType(em.ctx.Int8Type(), 0)
	structTy := em.vtableStructType(desc.TraitName, len(desc.Slots))
	em.traitObjectStructType(desc.TraitName)

	ptrs := make([]llvm.Value, len(desc.Slots))
	for i, slot := range desc.Slots {
		name := mono.MangledTraitMethod(desc.TraitName, desc.TypeName, slot.Name)
		fn, ok := em.fns[name]
		if !ok {
			return fmt.Errorf("vtable %s#%s: no emitted function for slot %q (%s)", desc.TypeName, desc.TraitName, slot.Name, name)
		}
		ptrs[i] = llvm.ConstBitCast(fn, i8ptr)
	}

	globalName := mono.VtableGlobalName(desc.TraitName, desc.TypeName)
	global := llvm.AddGlobal(em.mod, structTy, globalName)
	global.SetInitializer(llvm.ConstNamedStruct(structTy, ptrs))
	global.SetGlobalConstant(true)
	em.vtables[globalName] = global
	return nil
}

// LookupVtable returns the emitted global for a (trait, type) vtable
// instance previously built by EmitVtable.
func (em *Emitter) LookupVtable(traitName, typeName string) (llvm.Value, bool) {
	v, ok := em.vtables[mono.VtableGlobalName(traitName, typeName)]
	return v, ok
}
