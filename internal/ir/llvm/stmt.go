package llvm

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/aria-lang/ariac/internal/ast"
)

// loopCtx is the break/continue target pair for one enclosing loop; emitStmt
// pushes one per SWhile/SLoop/STill/SForIn and pops it on exit, so SBreak/
// SContinue always branch to the innermost one (labeled break/continue
// targeting an outer loop is not yet resolved by label name).
type loopCtx struct {
	breakBB    llvm.BasicBlock
	continueBB llvm.BasicBlock
}

func (em *Emitter) emitStmt(s *ast.Stmt) error {
	if s == nil {
		return nil
	}
	switch s.Kind {
	case ast.SVarDecl:
		var init llvm.Value
		var err error
		ty := em.ctx.Int64Type()
		if s.Init != nil {
			init, err = em.emitExpr(s.Init)
			if err != nil {
				return err
			}
			ty = init.Type()
		}
		slot := em.builder.CreateAlloca(ty, s.Name)
		if s.Init != nil {
			em.builder.CreateStore(init, slot)
		}
		em.vars[s.Name] = slot
		return nil
	case ast.SExprStmt:
		_, err := em.emitExpr(s.Expr)
		return err
	case ast.SReturn:
		if err := em.runDefers(); err != nil {
			return err
		}
		if s.Expr == nil {
			em.builder.CreateRetVoid()
			return nil
		}
		v, err := em.emitExpr(s.Expr)
		if err != nil {
			return err
		}
		em.builder.CreateRet(v)
		return nil
	case ast.SBlock:
		for _, st := range s.Body {
			if err := em.emitStmt(st); err != nil {
				return err
			}
		}
		return nil
	case ast.SIf:
		return em.emitIf(s)
	case ast.SWhile:
		return em.emitWhile(s)
	case ast.SLoop:
		return em.emitCountedLoop(s, true)
	case ast.STill:
		return em.emitCountedLoop(s, false)
	case ast.SForIn:
		return em.emitForIn(s)
	case ast.SBreak:
		return em.emitLoopJump(true)
	case ast.SContinue:
		return em.emitLoopJump(false)
	case ast.SPick:
		return em.emitPick(s)
	case ast.SWhen:
		return em.emitWhen(s)
	case ast.SDefer:
		em.defers = append(em.defers, s.DeferBody)
		return nil
	default:
		return nil
	}
}

// emitLoopJump lowers an (unlabeled) break/continue to a branch into the
// innermost enclosing loop's break or continue block.
func (em *Emitter) emitLoopJump(isBreak bool) error {
	if len(em.loopStack) == 0 {
		return fmt.Errorf("break/continue with no enclosing loop")
	}
	top := em.loopStack[len(em.loopStack)-1]
	if isBreak {
		em.builder.CreateBr(top.breakBB)
	} else {
		em.builder.CreateBr(top.continueBB)
	}
	return nil
}

// runDefers lowers every SDefer body registered in the current function, in
// reverse (LIFO) declaration order, ahead of a return.
func (em *Emitter) runDefers() error {
	for i := len(em.defers) - 1; i >= 0; i-- {
		if err := em.emitStmt(em.defers[i]); err != nil {
			return err
		}
	}
	return nil
}

func (em *Emitter) emitIf(s *ast.Stmt) error {
	cond, err := em.emitExpr(s.Cond)
	if err != nil {
		return err
	}
	fn := em.builder.GetInsertBlock().Parent()
	thenBB := em.ctx.AddBasicBlock(fn, "if.then")
	elseBB := em.ctx.AddBasicBlock(fn, "if.else")
	endBB := em.ctx.AddBasicBlock(fn, "if.end")
	em.builder.CreateCondBr(cond, thenBB, elseBB)

	em.builder.SetInsertPointAtEnd(thenBB)
	for _, st := range s.Body {
		if err := em.emitStmt(st); err != nil {
			return err
		}
	}
	if thenBB.LastInstruction().IsNil() || !isTerminator(thenBB.LastInstruction()) {
		em.builder.CreateBr(endBB)
	}

	em.builder.SetInsertPointAtEnd(elseBB)
	if s.Else2 != nil {
		if err := em.emitStmt(s.Else2); err != nil {
			return err
		}
	}
	if elseBB.LastInstruction().IsNil() || !isTerminator(elseBB.LastInstruction()) {
		em.builder.CreateBr(endBB)
	}

	em.builder.SetInsertPointAtEnd(endBB)
	return nil
}

func (em *Emitter) emitWhile(s *ast.Stmt) error {
	fn := em.builder.GetInsertBlock().Parent()
	condBB := em.ctx.AddBasicBlock(fn, "while.cond")
	bodyBB := em.ctx.AddBasicBlock(fn, "while.body")
	endBB := em.ctx.AddBasicBlock(fn, "while.end")

	em.builder.CreateBr(condBB)
	em.builder.SetInsertPointAtEnd(condBB)
	cond, err := em.emitExpr(s.Cond)
	if err != nil {
		return err
	}
	em.builder.CreateCondBr(cond, bodyBB, endBB)

	em.builder.SetInsertPointAtEnd(bodyBB)
	em.loopStack = append(em.loopStack, loopCtx{breakBB: endBB, continueBB: condBB})
	for _, st := range s.Body {
		if err := em.emitStmt(st); err != nil {
			return err
		}
	}
	em.loopStack = em.loopStack[:len(em.loopStack)-1]
	if bodyBB.LastInstruction().IsNil() || !isTerminator(bodyBB.LastInstruction()) {
		em.builder.CreateBr(condBB)
	}

	em.builder.SetInsertPointAtEnd(endBB)
	return nil
}

// emitCountedLoop lowers SLoop (hasStart, explicit lower bound) and STill
// (bound starts implicitly at 0) to a manual induction-variable loop:
// init -> cond -> body -> step -> cond, with the step block doubling as
// the continue target so `continue` re-runs the increment rather than
// skipping it.
func (em *Emitter) emitCountedLoop(s *ast.Stmt, hasStart bool) error {
	fn := em.builder.GetInsertBlock().Parent()
	condBB := em.ctx.AddBasicBlock(fn, "loop.cond")
	bodyBB := em.ctx.AddBasicBlock(fn, "loop.body")
	stepBB := em.ctx.AddBasicBlock(fn, "loop.step")
	endBB := em.ctx.AddBasicBlock(fn, "loop.end")

	i64 := em.ctx.Int64Type()
	var start llvm.Value
	var err error
	if hasStart && s.Start != nil {
		start, err = em.emitExpr(s.Start)
		if err != nil {
			return err
		}
	} else {
		start = llvm.ConstInt(i64, 0, false)
	}
	limit, err := em.emitExpr(s.Limit)
	if err != nil {
		return err
	}
	var step llvm.Value
	if s.Step != nil {
		step, err = em.emitExpr(s.Step)
		if err != nil {
			return err
		}
	} else {
		step = llvm.ConstInt(i64, 1, false)
	}

	ivSlot := em.builder.CreateAlloca(i64, "loop.iv")
	em.builder.CreateStore(start, ivSlot)
	em.builder.CreateBr(condBB)

	em.builder.SetInsertPointAtEnd(condBB)
	cur := em.builder.CreateLoad(i64, ivSlot, "loop.iv.load")
	cond := em.builder.CreateICmp(llvm.IntSLT, cur, limit, "loop.cond.test")
	em.builder.CreateCondBr(cond, bodyBB, endBB)

	em.builder.SetInsertPointAtEnd(bodyBB)
	em.loopStack = append(em.loopStack, loopCtx{breakBB: endBB, continueBB: stepBB})
	for _, st := range s.Body {
		if err := em.emitStmt(st); err != nil {
			return err
		}
	}
	em.loopStack = em.loopStack[:len(em.loopStack)-1]
	if bodyBB.LastInstruction().IsNil() || !isTerminator(bodyBB.LastInstruction()) {
		em.builder.CreateBr(stepBB)
	}

	em.builder.SetInsertPointAtEnd(stepBB)
	reloaded := em.builder.CreateLoad(i64, ivSlot, "loop.iv.reload")
	next := em.builder.CreateAdd(reloaded, step, "loop.iv.next")
	em.builder.CreateStore(next, ivSlot)
	em.builder.CreateBr(condBB)

	em.builder.SetInsertPointAtEnd(endBB)
	return nil
}

// emitForIn lowers `for x in expr { ... }` over an array/vector value: the
// iterated expression is evaluated once, then indexed by an induction
// variable running from 0 to its element count.
func (em *Emitter) emitForIn(s *ast.Stmt) error {
	fn := em.builder.GetInsertBlock().Parent()
	condBB := em.ctx.AddBasicBlock(fn, "forin.cond")
	bodyBB := em.ctx.AddBasicBlock(fn, "forin.body")
	stepBB := em.ctx.AddBasicBlock(fn, "forin.step")
	endBB := em.ctx.AddBasicBlock(fn, "forin.end")

	iter, err := em.emitExpr(s.IterExpr)
	if err != nil {
		return err
	}
	i64 := em.ctx.Int64Type()
	count := iter.Type().ArrayLength()
	arrSlot := em.builder.CreateAlloca(iter.Type(), "forin.arr")
	em.builder.CreateStore(iter, arrSlot)
	ivSlot := em.builder.CreateAlloca(i64, "forin.iv")
	em.builder.CreateStore(llvm.ConstInt(i64, 0, false), ivSlot)
	em.builder.CreateBr(condBB)

	em.builder.SetInsertPointAtEnd(condBB)
	cur := em.builder.CreateLoad(i64, ivSlot, "forin.iv.load")
	cond := em.builder.CreateICmp(llvm.IntSLT, cur, llvm.ConstInt(i64, uint64(count), false), "forin.cond.test")
	em.builder.CreateCondBr(cond, bodyBB, endBB)

	em.builder.SetInsertPointAtEnd(bodyBB)
	elemSlot := em.builder.CreateAlloca(iter.Type().ElementType(), s.IterVar)
	elemPtr := em.builder.CreateInBoundsGEP(iter.Type(), arrSlot, []llvm.Value{llvm.ConstInt(i64, 0, false), cur}, "forin.elem.ptr")
	elem := em.builder.CreateLoad(iter.Type().ElementType(), elemPtr, s.IterVar)
	em.builder.CreateStore(elem, elemSlot)
	em.vars[s.IterVar] = elemSlot
	em.loopStack = append(em.loopStack, loopCtx{breakBB: endBB, continueBB: stepBB})
	for _, st := range s.Body {
		if err := em.emitStmt(st); err != nil {
			return err
		}
	}
	em.loopStack = em.loopStack[:len(em.loopStack)-1]
	if bodyBB.LastInstruction().IsNil() || !isTerminator(bodyBB.LastInstruction()) {
		em.builder.CreateBr(stepBB)
	}

	em.builder.SetInsertPointAtEnd(stepBB)
	reloaded := em.builder.CreateLoad(i64, ivSlot, "forin.iv.reload")
	next := em.builder.CreateAdd(reloaded, llvm.ConstInt(i64, 1, false), "forin.iv.next")
	em.builder.CreateStore(next, ivSlot)
	em.builder.CreateBr(condBB)

	em.builder.SetInsertPointAtEnd(endBB)
	return nil
}

// emitWhen lowers `when (cond) { body } then { thenBody } end { endBody }`:
// body runs when cond is true, thenBody when it's false, and endBody
// unconditionally after either.
func (em *Emitter) emitWhen(s *ast.Stmt) error {
	cond, err := em.emitExpr(s.Cond)
	if err != nil {
		return err
	}
	fn := em.builder.GetInsertBlock().Parent()
	bodyBB := em.ctx.AddBasicBlock(fn, "when.body")
	thenBB := em.ctx.AddBasicBlock(fn, "when.then")
	endBB := em.ctx.AddBasicBlock(fn, "when.end")
	em.builder.CreateCondBr(cond, bodyBB, thenBB)

	em.builder.SetInsertPointAtEnd(bodyBB)
	for _, st := range s.Body {
		if err := em.emitStmt(st); err != nil {
			return err
		}
	}
	if bodyBB.LastInstruction().IsNil() || !isTerminator(bodyBB.LastInstruction()) {
		em.builder.CreateBr(endBB)
	}

	em.builder.SetInsertPointAtEnd(thenBB)
	for _, st := range s.ThenBody {
		if err := em.emitStmt(st); err != nil {
			return err
		}
	}
	if thenBB.LastInstruction().IsNil() || !isTerminator(thenBB.LastInstruction()) {
		em.builder.CreateBr(endBB)
	}

	em.builder.SetInsertPointAtEnd(endBB)
	for _, st := range s.EndBody {
		if err := em.emitStmt(st); err != nil {
			return err
		}
	}
	return nil
}

// emitPick lowers a pick/case selector into a chain of conditional
// branches: one exact-match compare, one range double compare (upper bound
// inclusive for `...`, exclusive for `..`), one signed compare for a
// comparison case, or an unconditional match for a wildcard/unreachable
// case, tried in source order against a single evaluation of the selector.
func (em *Emitter) emitPick(s *ast.Stmt) error {
	selVal, err := em.emitExpr(s.Selector)
	if err != nil {
		return err
	}
	fn := em.builder.GetInsertBlock().Parent()
	endBB := em.ctx.AddBasicBlock(fn, "pick.end")
	cur := em.builder.GetInsertBlock()

	for i, cs := range s.Cases {
		bodyBB := em.ctx.AddBasicBlock(fn, fmt.Sprintf("pick.case%d", i))
		nextBB := endBB
		if i < len(s.Cases)-1 {
			nextBB = em.ctx.AddBasicBlock(fn, fmt.Sprintf("pick.next%d", i))
		}

		em.builder.SetInsertPointAtEnd(cur)
		switch {
		case cs.Unreachable, cs.Wildcard:
			em.builder.CreateBr(bodyBB)
		case cs.Exact != nil:
			ev, err := em.emitExpr(cs.Exact)
			if err != nil {
				return err
			}
			cond := em.builder.CreateICmp(llvm.IntEQ, selVal, ev, "pick.eq")
			em.builder.CreateCondBr(cond, bodyBB, nextBB)
		case cs.RangeLow != nil:
			lo, err := em.emitExpr(cs.RangeLow)
			if err != nil {
				return err
			}
			hi, err := em.emitExpr(cs.RangeHigh)
			if err != nil {
				return err
			}
			upperPred := llvm.IntSLT
			if cs.RangeIncl {
				upperPred = llvm.IntSLE
			}
			geLo := em.builder.CreateICmp(llvm.IntSGE, selVal, lo, "pick.ge")
			leHi := em.builder.CreateICmp(upperPred, selVal, hi, "pick.hi")
			cond := em.builder.CreateAnd(geLo, leHi, "pick.range")
			em.builder.CreateCondBr(cond, bodyBB, nextBB)
		case cs.CompareValue != nil:
			cv, err := em.emitExpr(cs.CompareValue)
			if err != nil {
				return err
			}
			pred, ok := comparePredicate(cs.CompareOp)
			if !ok {
				return fmt.Errorf("unknown pick compare operator %q", cs.CompareOp)
			}
			cond := em.builder.CreateICmp(pred, selVal, cv, "pick.cmp")
			em.builder.CreateCondBr(cond, bodyBB, nextBB)
		default:
			em.builder.CreateBr(nextBB)
		}

		em.builder.SetInsertPointAtEnd(bodyBB)
		if cs.Unreachable {
			em.builder.CreateUnreachable()
		} else {
			for _, st := range cs.Body {
				if err := em.emitStmt(st); err != nil {
					return err
				}
			}
			if bodyBB.LastInstruction().IsNil() || !isTerminator(bodyBB.LastInstruction()) {
				em.builder.CreateBr(endBB)
			}
		}
		cur = nextBB
	}
	if cur != endBB && cur.LastInstruction().IsNil() {
		em.builder.SetInsertPointAtEnd(cur)
		em.builder.CreateBr(endBB)
	}

	em.builder.SetInsertPointAtEnd(endBB)
	return nil
}

// comparePredicate maps a pick case's comparison operator to its signed
// integer icmp predicate.
func comparePredicate(op string) (llvm.IntPredicate, bool) {
	switch op {
	case "<":
		return llvm.IntSLT, true
	case ">":
		return llvm.IntSGT, true
	case "<=":
		return llvm.IntSLE, true
	case ">=":
		return llvm.IntSGE, true
	default:
		return 0, false
	}
}

func isTerminator(v llvm.Value) bool {
	switch v.InstructionOpcode() {
	case llvm.Ret, llvm.Br, llvm.Switch, llvm.Unreachable:
		return true
	default:
		return false
	}
}
