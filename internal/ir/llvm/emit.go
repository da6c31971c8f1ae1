// Package llvm emits LLVM IR for a type-checked, monomorphized program: the
// final pipeline phase, handing off to the external IR-builder/verifier
// toolchain.
//
// Uses llvm.NewContext()/ctx.NewModule/llvm.AddFunction/llvm.AddBasicBlock
// and a builder with CreateX calls throughout, walking the Stmt/Expr tree
// once per function body.
package llvm

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/aria-lang/ariac/internal/ast"
	"github.com/aria-lang/ariac/internal/types"
)

// Emitter owns one LLVM module's construction.
type Emitter struct {
	ctx     llvm.Context
	mod     llvm.Module
	builder llvm.Builder
	fns     map[string]llvm.Value
	vars    map[string]llvm.Value

	loopStack   []loopCtx             // innermost-last; break/continue target the top entry
	defers      []*ast.Stmt           // pending SDefer bodies for the function being emitted
	structTypes map[string]llvm.Type  // named struct types, keyed by their mangled name
	vtables     map[string]llvm.Value // emitted vtable globals, keyed by their mangled name
}

func New(moduleName string) *Emitter {
	ctx := llvm.NewContext()
	return &Emitter{
		ctx:         ctx,
		mod:         ctx.NewModule(moduleName),
		builder:     ctx.NewBuilder(),
		fns:         map[string]llvm.Value{},
		vars:        map[string]llvm.Value{},
		structTypes: map[string]llvm.Type{},
		vtables:     map[string]llvm.Value{},
	}
}

// Dispose releases the underlying LLVM context and builder.
func (em *Emitter) Dispose() {
	em.builder.Dispose()
	em.mod.Dispose()
	em.ctx.Dispose()
}

// llvmType maps one resolved Aria type to its LLVM representation
//.
func (em *Emitter) llvmType(t *types.Type) llvm.Type {
	if t == nil {
		return em.ctx.VoidType()
	}
	switch t.Cat {
	case types.Void:
		return em.ctx.VoidType()
	case types.Bool:
		return em.ctx.Int1Type()
	case types.SignedInt, types.UnsignedInt, types.TBB:
		return em.ctx.IntType(t.Bits)
	case types.Float:
		if t.Bits == 32 {
			return em.ctx.FloatType()
		}
		return em.ctx.DoubleType()
	case types.String:
		return llvm.PointerType(em.ctx.Int8Type(), 0)
	case types.Pointer:
		return llvm.PointerType(em.llvmType(t.Pointee), 0)
	case types.Array:
		n := t.ArraySize
		if n < 0 {
			n = 0
		}
		return llvm.ArrayType(em.llvmType(t.Elem), n)
	case types.Vector:
		return llvm.VectorType(em.llvmType(t.Elem), t.VecDim)
	case types.Struct:
		var fields []llvm.Type
		for _, f := range t.Fields {
			fields = append(fields, em.llvmType(f.Type))
		}
		return em.ctx.StructType(fields, t.Packed)
	case types.Function:
		var params []llvm.Type
		for _, p := range t.Params {
			params = append(params, em.llvmType(p))
		}
		return llvm.FunctionType(em.llvmType(t.Return), params, t.Variadic)
	default:
		return em.ctx.Int32Type()
	}
}

// EmitFuncHeader declares fn's signature in the module: builds the
// llvm.FunctionType from the already-resolved parameter/return types, then
// calls llvm.AddFunction.
func (em *Emitter) EmitFuncHeader(name string, sig *types.Type) (llvm.Value, error) {
	if _, exists := em.fns[name]; exists {
		return llvm.Value{}, fmt.Errorf("duplicate function declaration %q", name)
	}
	ft := em.llvmType(sig)
	fn := llvm.AddFunction(em.mod, name, ft)
	em.fns[name] = fn
	return fn, nil
}

// EmitFuncBody lowers d's statement body into fn's entry block: one entry
// basic block, builder positioned at its end, statements lowered in order.
func (em *Emitter) EmitFuncBody(fn llvm.Value, d *ast.Stmt) error {
	entry := em.ctx.AddBasicBlock(fn, "entry")
	em.builder.SetInsertPointAtEnd(entry)
	em.loopStack = nil
	em.defers = nil
	for i, p := range d.Params {
		em.vars[p.Name] = fn.Param(i)
	}
	for _, st := range d.FuncBody.Body {
		if err := em.emitStmt(st); err != nil {
			return err
		}
	}
	cur := em.builder.GetInsertBlock()
	if cur.LastInstruction().IsNil() || !isTerminator(cur.LastInstruction()) {
		if err := em.runDefers(); err != nil {
			return err
		}
		em.builder.CreateRetVoid()
	}
	return nil
}

// Verify runs the LLVM module verifier.
func (em *Emitter) Verify() error {
	return llvm.VerifyModule(em.mod, llvm.ReturnStatusAction)
}

func (em *Emitter) String() string { return em.mod.String() }
