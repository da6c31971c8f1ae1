// Package ctfe implements the compile-time evaluator and its backing
// Virtual Heap: folding const expressions,
// enforcing TBB overflow/sentinel semantics during folding, and modeling
// compile-time heap allocations as {alloc-id, offset} handles so const
// pointers can be compared and dereferenced without a real process.
//
// Evaluation dispatches on an expression's kind and recurses into its
// children, the same shape a tree-walking evaluator always takes, narrowed
// here from "evaluate any expression at run time" to "fold a const-eligible
// subset at compile time".
package ctfe

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aria-lang/ariac/internal/ast"
	"github.com/aria-lang/ariac/internal/diag"
	"github.com/aria-lang/ariac/internal/types"
)

// Value is a compile-time constant value: one of the scalar
// kinds, or a Ptr handle into the Heap.
type Value struct {
	Type  *types.Type
	Int   int64
	Flt   float64
	Str   string
	Bool  bool
	IsErr bool // TBB ERR sentinel
	Ptr   *PtrHandle
}

// PtrHandle is a Virtual Heap pointer handle: an allocation
// identity plus a byte offset into it, so two pointers can be compared for
// aliasing without needing a real address space.
type PtrHandle struct {
	AllocID uuid.UUID
	Offset  int64
}

// Alloc is one Virtual Heap allocation: a fixed-size byte-addressable
// region with an identity independent of where (if anywhere) it ends up in
// the final binary.
type Alloc struct {
	ID   uuid.UUID
	Size int64
	Data []byte
}

// Heap is the Virtual Heap a const-evaluation session allocates into
//. Each allocation gets a fresh UUID identity rather than a
// reused integer, so handles from independent ctfe runs (e.g. two
// monomorphized instantiations evaluated in parallel) never collide.
type Heap struct {
	allocs map[uuid.UUID]*Alloc
}

func NewHeap() *Heap { return &Heap{allocs: map[uuid.UUID]*Alloc{}} }

func (h *Heap) Alloc(size int64) *Alloc {
	a := &Alloc{ID: uuid.New(), Size: size, Data: make([]byte, size)}
	h.allocs[a.ID] = a
	return a
}

func (h *Heap) Lookup(id uuid.UUID) *Alloc { return h.allocs[id] }

// Limits bounds the const evaluator's resource use.
type Limits struct {
	MaxSteps int
	MaxHeap  int64
}

func DefaultLimits() Limits { return Limits{MaxSteps: 1_000_000, MaxHeap: 64 << 20} }

// Evaluator folds const-eligible expressions into Values.
type Evaluator struct {
	bag    *diag.Bag
	heap   *Heap
	limits Limits
	steps  int
}

func New(bag *diag.Bag, limits Limits) *Evaluator {
	return &Evaluator{bag: bag, heap: NewHeap(), limits: limits}
}

func (ev *Evaluator) Heap() *Heap { return ev.heap }

// Eval const-folds e, returning its Value and whether folding succeeded.
// Evaluation is total over the const-eligible subset: it
// exhausts MaxSteps rather than looping forever on pathological input.
func (ev *Evaluator) Eval(e *ast.Expr) (Value, bool) {
	ev.steps++
	if ev.steps > ev.limits.MaxSteps {
		ev.bag.Errorf(e.Pos, diag.CodeParse, "const evaluation exceeded step limit (%d)", ev.limits.MaxSteps)
		return Value{}, false
	}
	switch e.Kind {
	case ast.ELiteral:
		return ev.evalLiteral(e)
	case ast.EBinary:
		return ev.evalBinary(e)
	case ast.EUnary:
		return ev.evalUnary(e)
	case ast.ETernary:
		cond, ok := ev.Eval(e.Left)
		if !ok {
			return Value{}, false
		}
		if cond.Bool {
			return ev.Eval(e.Then)
		}
		return ev.Eval(e.Else)
	default:
		ev.bag.Errorf(e.Pos, diag.CodeParse, "expression is not const-evaluable")
		return Value{}, false
	}
}

func (ev *Evaluator) evalLiteral(e *ast.Expr) (Value, bool) {
	switch e.LitKind {
	case ast.LitInt:
		var n int64
		_, err := fmt.Sscanf(e.LitText, "%d", &n)
		if err != nil {
			n = parseIntLiteral(e.LitText)
		}
		return Value{Type: types.Int(64), Int: n}, true
	case ast.LitFloat:
		var f float64
		fmt.Sscanf(e.LitText, "%g", &f)
		return Value{Type: types.Flt(64), Flt: f}, true
	case ast.LitString:
		return Value{Type: types.StringType, Str: e.LitText}, true
	case ast.LitBool:
		return Value{Type: types.BoolType, Bool: e.LitText == "true"}, true
	default:
		return Value{}, false
	}
}

func parseIntLiteral(text string) int64 {
	var n int64
	var base int64 = 10
	i := 0
	if len(text) > 1 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') {
		base, i = 16, 2
	} else if len(text) > 1 && text[0] == '0' && (text[1] == 'b' || text[1] == 'B') {
		base, i = 2, 2
	}
	for ; i < len(text); i++ {
		c := text[i]
		var d int64
		switch {
		case c >= '0' && c <= '9':
			d = int64(c - '0')
		case c >= 'a' && c <= 'f':
			d = int64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = int64(c-'A') + 10
		default:
			continue
		}
		n = n*base + d
	}
	return n
}
