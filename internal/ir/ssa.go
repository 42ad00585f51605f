package ir

import "kasc/internal/ast"

// PromoteToSSA rewrites fn's scalar alloca/load/store triples into true
// SSA values via the classic Cytron et al. two-stage construction: place
// phis at the iterated dominance frontier of each variable's defining
// blocks, then rename in dominator-tree preorder with a per-variable
// value stack. Array allocas are left untouched on purpose — per the
// data model, an array is always addressed memory, never a renamed
// value, so mem2reg only ever looks at allocas with Count == 1.
// Only allocas in fn.Entry are promoted: a scalar alloca emitted in any
// other block (for example a let inside a loop body) keeps its
// alloca/load/store form.
//
// The teacher has no dedicated SSA-construction pass of its own — its
// internal/ir/builder.go carries variableStack/incompletePhis/
// sealedBlocks fields for a Braun-style sealed-block mem2reg it never
// finishes wiring up, since its EVM-storage domain doesn't need local-
// scalar renaming the way a stack machine does. This file is grounded
// on the classic Cytron et al. iterated-dominance-frontier construction
// instead, cross-checked against the golang-tools ssa package's own
// statement-to-SSA lowering (other_examples' golang-tools ssa-func.go
// reference file), the one pack example that builds full SSA the same
// two-stage way.
func PromoteToSSA(fn *Function) {
	p := newSSAPromoter(fn)
	if len(p.allocaVar) == 0 {
		return
	}
	p.placePhis()
	p.rename(fn.Entry)
	p.pruneAllocas()
}

type ssaPromoter struct {
	fn *Function
	dt *DominatorTree

	// allocaVar maps a promotable alloca's address Value to its variable
	// index; varName/varType are parallel, indexed the same way.
	allocaVar map[*Value]int
	varName   []string

	stacks []*stack
	phiVar map[*PhiInstruction]int

	// removedAllocas collects the Alloca instructions to drop from the
	// entry block once every use has been rewritten.
	removedAllocas map[*Value]bool
}

type stack struct{ values []*Value }

func (s *stack) push(v *Value) { s.values = append(s.values, v) }
func (s *stack) pop()          { s.values = s.values[:len(s.values)-1] }
func (s *stack) top() *Value   { return s.values[len(s.values)-1] }
func (s *stack) empty() bool   { return len(s.values) == 0 }

func newSSAPromoter(fn *Function) *ssaPromoter {
	p := &ssaPromoter{
		fn:             fn,
		dt:             fn.Dominators(),
		allocaVar:      make(map[*Value]int),
		phiVar:         make(map[*PhiInstruction]int),
		removedAllocas: make(map[*Value]bool),
	}
	for _, inst := range fn.Entry.Instructions {
		alloca, ok := inst.(*Alloca)
		if !ok || alloca.Count != 1 {
			continue
		}
		if escapes(alloca.result) {
			continue
		}
		idx := len(p.stacks)
		p.allocaVar[alloca.result] = idx
		p.varName = append(p.varName, alloca.result.Name)
		p.stacks = append(p.stacks, &stack{})
		p.removedAllocas[alloca.result] = true
	}
	return p
}

// escapes reports whether addr is ever used as something other than the
// Address operand of a Load or Store — the only shapes mem2reg
// understands. A scalar's address never legitimately escapes like this
// in code the builder emits, but the check keeps promotion correct if
// that ever changes.
func escapes(addr *Value) bool {
	for _, u := range addr.Uses {
		switch inst := u.User.(type) {
		case *Load:
			if inst.Address != addr {
				return true
			}
		case *Store:
			if inst.Address != addr {
				return true
			}
		default:
			return true
		}
	}
	return false
}

func (p *ssaPromoter) placePhis() {
	for addr, varIdx := range p.allocaVar {
		defBlocks := p.definingBlocks(addr)
		hasPhi := make(map[*BasicBlock]bool)
		worklist := make([]*BasicBlock, 0, len(defBlocks))
		worklist = append(worklist, defBlocks...)

		for len(worklist) > 0 {
			n := len(worklist) - 1
			block := worklist[n]
			worklist = worklist[:n]

			for _, frontierBlock := range p.dt.Frontier(block) {
				if hasPhi[frontierBlock] {
					continue
				}
				hasPhi[frontierBlock] = true
				phi := p.fn.emitPhi(frontierBlock, scalarType(addr))
				phi.Inputs = make([]*Value, len(frontierBlock.Predecessors))
				p.phiVar[phi] = varIdx
				worklist = append(worklist, frontierBlock)
			}
		}
	}
}

func scalarType(addr *Value) ast.Type {
	// The alloca's result Value carries the scalar's declared type.
	return addr.Type
}

func (p *ssaPromoter) definingBlocks(addr *Value) []*BasicBlock {
	seen := make(map[*BasicBlock]bool)
	var blocks []*BasicBlock
	for _, u := range addr.Uses {
		store, ok := u.User.(*Store)
		if !ok || store.Address != addr {
			continue
		}
		if !seen[u.Block] {
			seen[u.Block] = true
			blocks = append(blocks, u.Block)
		}
	}
	return blocks
}

func (p *ssaPromoter) rename(block *BasicBlock) {
	var pushedPhiVars []int
	var pushedStoreVars []int

	for _, inst := range block.Instructions {
		phi, ok := inst.(*PhiInstruction)
		if !ok {
			break
		}
		varIdx, ours := p.phiVar[phi]
		if !ours {
			continue
		}
		p.stacks[varIdx].push(phi.Result())
		pushedPhiVars = append(pushedPhiVars, varIdx)
	}

	kept := block.Instructions[:0:0]
	for _, inst := range block.Instructions {
		switch v := inst.(type) {
		case *PhiInstruction:
			kept = append(kept, inst)
			continue
		case *Load:
			if varIdx, ours := p.allocaVar[v.Address]; ours {
				replaceAllUses(v.Result(), p.stacks[varIdx].top())
				continue
			}
		case *Store:
			if varIdx, ours := p.allocaVar[v.Address]; ours {
				p.stacks[varIdx].push(v.Val)
				pushedStoreVars = append(pushedStoreVars, varIdx)
				continue
			}
		}
		kept = append(kept, inst)
	}
	block.Instructions = kept

	for _, succ := range block.Successors {
		predIdx := -1
		for i, pred := range succ.Predecessors {
			if pred == block {
				predIdx = i
				break
			}
		}
		if predIdx < 0 {
			continue
		}
		for _, inst := range succ.Instructions {
			phi, ok := inst.(*PhiInstruction)
			if !ok {
				break
			}
			varIdx, ours := p.phiVar[phi]
			if !ours {
				continue
			}
			if p.stacks[varIdx].empty() {
				continue
			}
			cur := p.stacks[varIdx].top()
			phi.Inputs[predIdx] = cur
			cur.AddUse(phi, succ)
		}
	}

	for _, child := range p.dt.Children(block) {
		p.rename(child)
	}

	for i := len(pushedStoreVars) - 1; i >= 0; i-- {
		p.stacks[pushedStoreVars[i]].pop()
	}
	for i := len(pushedPhiVars) - 1; i >= 0; i-- {
		p.stacks[pushedPhiVars[i]].pop()
	}
}

// pruneAllocas drops the now-dead alloca instructions for every promoted
// scalar; their address Values have no remaining uses once renaming has
// replaced every load and removed every store.
func (p *ssaPromoter) pruneAllocas() {
	kept := p.fn.Entry.Instructions[:0:0]
	for _, inst := range p.fn.Entry.Instructions {
		if alloca, ok := inst.(*Alloca); ok && p.removedAllocas[alloca.result] {
			continue
		}
		kept = append(kept, inst)
	}
	p.fn.Entry.Instructions = kept
}

// replaceAllUses rewrites every instruction that reads old to read newV
// instead, moving the def-use edges across.
func replaceAllUses(old, newV *Value) {
	uses := old.Uses
	old.Uses = nil
	for _, u := range uses {
		replaceOperand(u.User, old, newV)
		newV.AddUse(u.User, u.Block)
	}
}

func replaceOperand(inst Instruction, old, newV *Value) {
	switch v := inst.(type) {
	case *Load:
		if v.Address == old {
			v.Address = newV
		}
	case *Store:
		if v.Address == old {
			v.Address = newV
		}
		if v.Val == old {
			v.Val = newV
		}
	case *BinaryOp:
		if v.Left == old {
			v.Left = newV
		}
		if v.Right == old {
			v.Right = newV
		}
	case *UnaryOp:
		if v.Operand == old {
			v.Operand = newV
		}
	case *Call:
		for i, a := range v.Args {
			if a == old {
				v.Args[i] = newV
			}
		}
	case *GetElementAddr:
		if v.Base == old {
			v.Base = newV
		}
		for i, idx := range v.Indices {
			if idx == old {
				v.Indices[i] = newV
			}
		}
	case *PhiInstruction:
		for i, a := range v.Inputs {
			if a == old {
				v.Inputs[i] = newV
			}
		}
	case *Branch:
		if v.Cond == old {
			v.Cond = newV
		}
	case *Return:
		if v.Val == old {
			v.Val = newV
		}
	}
}
