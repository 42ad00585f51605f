package ir

import (
	"sort"

	"kasc/internal/ast"
)

// LICM hoists loop-invariant pure computations to a dedicated preheader,
// working innermost-loop-out until no further movement is possible.
// Grounded on the pack's open-policy-agent-eopa pkg/iropt/licm.go
// mark-and-lift shape, reworked against this package's dominator tree
// and Effect model instead of that file's register-liveness tracking.
func LICM(fn *Function) bool {
	changed := false
	for {
		dt := fn.Dominators()
		loops := findLoops(fn, dt)
		if len(loops) == 0 {
			break
		}
		roundChanged := false
		for _, loop := range loops {
			if hoistLoop(fn, loop) {
				roundChanged = true
			}
		}
		if !roundChanged {
			break
		}
		changed = true
	}
	return changed
}

// natLoop is the set of blocks reachable from a header along back-edges
// whose target is that header (§4.5's loop definition).
type natLoop struct {
	header  *BasicBlock
	blocks  map[*BasicBlock]bool
	latches []*BasicBlock
}

// findLoops locates every natural loop in fn, innermost first (by block
// count, a stable proxy for nesting depth), so LICM hoists out of inner
// loops before their enclosing loops are considered.
func findLoops(fn *Function, dt *DominatorTree) []*natLoop {
	headerOrder := make([]*BasicBlock, 0)
	latchesByHeader := make(map[*BasicBlock][]*BasicBlock)

	for _, b := range fn.Blocks {
		if !dt.Reachable(b) {
			continue
		}
		for _, succ := range b.Successors {
			if !dt.Reachable(succ) || !dt.Dominates(succ, b) {
				continue
			}
			if _, seen := latchesByHeader[succ]; !seen {
				headerOrder = append(headerOrder, succ)
			}
			latchesByHeader[succ] = append(latchesByHeader[succ], b)
		}
	}

	loops := make([]*natLoop, 0, len(headerOrder))
	for _, header := range headerOrder {
		latches := latchesByHeader[header]
		body := map[*BasicBlock]bool{header: true}
		stack := make([]*BasicBlock, 0, len(latches))
		for _, latch := range latches {
			if !body[latch] {
				body[latch] = true
				stack = append(stack, latch)
			}
		}
		for len(stack) > 0 {
			n := len(stack) - 1
			cur := stack[n]
			stack = stack[:n]
			for _, pred := range cur.Predecessors {
				if !body[pred] {
					body[pred] = true
					stack = append(stack, pred)
				}
			}
		}
		loops = append(loops, &natLoop{header: header, blocks: body, latches: latches})
	}

	sort.SliceStable(loops, func(i, j int) bool { return len(loops[i].blocks) < len(loops[j].blocks) })
	return loops
}

func loopExitBlocks(loop *natLoop) []*BasicBlock {
	seen := make(map[*BasicBlock]bool)
	var exits []*BasicBlock
	for b := range loop.blocks {
		for _, succ := range b.Successors {
			if !loop.blocks[succ] && !seen[succ] {
				seen[succ] = true
				exits = append(exits, succ)
			}
		}
	}
	return exits
}

// hoistLoop repeatedly sweeps loop's body for hoist candidates until a
// sweep moves nothing, so a value that only becomes invariant once an
// earlier value is hoisted out still gets hoisted in a later sweep.
func hoistLoop(fn *Function, loop *natLoop) bool {
	preheader := findOrCreatePreheader(fn, loop)
	if preheader == nil {
		return false
	}
	exits := loopExitBlocks(loop)
	dt := fn.Dominators() // fresh: findOrCreatePreheader may have added a block

	changed := false
	for {
		moved := false
		for _, b := range fn.Blocks {
			if b == preheader || !loop.blocks[b] {
				continue
			}
			kept := b.Instructions[:0:0]
			for _, inst := range b.Instructions {
				if isHoistCandidate(inst, b, loop, exits, dt) {
					if res := inst.Result(); res != nil {
						res.DefBlock = preheader
					}
					inst.SetBlock(preheader)
					preheader.Instructions = append(preheader.Instructions, inst)
					moved = true
					continue
				}
				kept = append(kept, inst)
			}
			b.Instructions = kept
		}
		if !moved {
			break
		}
		changed = true
	}
	return changed
}

// isHoistCandidate implements §4.5's three-part test: pure, operands
// loop-invariant, and (for instructions that could trap) defining block
// dominates every loop exit. A pure instruction that cannot trap is safe
// to speculate into the preheader unconditionally — it would either run
// with the same inputs on every iteration that reaches it or not be
// observed at all — so exit domination only gates div/mod, the one pure
// op this instruction set has that can fault (division/modulus by a
// runtime zero). Requiring exit domination for every pure op would make
// LICM a no-op for any top-tested loop, since a loop body never
// dominates the header→exit edge.
func isHoistCandidate(inst Instruction, b *BasicBlock, loop *natLoop, exits []*BasicBlock, dt *DominatorTree) bool {
	if !isPureForLICM(inst) {
		return false
	}
	for _, op := range inst.Operands() {
		if !operandLoopInvariant(op, loop) {
			return false
		}
	}
	if canTrap(inst) {
		for _, e := range exits {
			if !dt.Dominates(b, e) {
				return false
			}
		}
	}
	return true
}

func isPureForLICM(inst Instruction) bool {
	switch inst.(type) {
	case *PhiInstruction, *Load, *Alloca, *Store, *Call:
		return false
	}
	return inst.Effect() == EffectPure
}

// canTrap reports whether a pure instruction can still fault at runtime,
// per §9's "pure instruction" glossary entry ("trap-free (arithmetic
// not known to divide by zero)"): only a non-constant-folded div/mod
// qualifies, since a runtime zero divisor aborts instead of producing a
// value.
func canTrap(inst Instruction) bool {
	b, ok := inst.(*BinaryOp)
	return ok && (b.Op == ast.BDiv || b.Op == ast.BMod)
}

// operandLoopInvariant is true for a constant or any value defined
// outside the loop body — equivalently, dominated by the preheader
// once hoisting routes every external entry through it.
func operandLoopInvariant(v *Value, loop *natLoop) bool {
	if v == nil {
		return true
	}
	if _, ok := v.Def.(*Const); ok {
		return true
	}
	if v.Def == nil {
		return true // function parameter, live-in at entry.
	}
	return !loop.blocks[v.DefBlock]
}

func findOrCreatePreheader(fn *Function, loop *natLoop) *BasicBlock {
	header := loop.header
	var external, internal []*BasicBlock
	var externalOrigIdx, internalOrigIdx []int
	for i, p := range header.Predecessors {
		if loop.blocks[p] {
			internal = append(internal, p)
			internalOrigIdx = append(internalOrigIdx, i)
		} else {
			external = append(external, p)
			externalOrigIdx = append(externalOrigIdx, i)
		}
	}
	if len(external) == 0 {
		return nil
	}
	if len(external) == 1 && isJumpOnly(external[0], header) {
		return external[0]
	}

	ph := fn.NewBlock("loop.preheader")
	for _, p := range external {
		retargetTerminator(p, header, ph)
	}

	for _, inst := range header.Instructions {
		phi, ok := inst.(*PhiInstruction)
		if !ok {
			break
		}
		var routed *Value
		if len(external) == 1 {
			routed = phi.Inputs[externalOrigIdx[0]]
		} else {
			phPhi := fn.emitPhi(ph, phi.Result().Type)
			phPhi.Inputs = make([]*Value, len(external))
			for k, origIdx := range externalOrigIdx {
				v := phi.Inputs[origIdx]
				phPhi.Inputs[k] = v
				if v != nil {
					v.AddUse(phPhi, ph)
				}
			}
			routed = phPhi.Result()
		}
		for _, origIdx := range externalOrigIdx {
			v := phi.Inputs[origIdx]
			if v != nil && v != routed {
				v.RemoveUseBy(phi)
			}
		}
		newInputs := make([]*Value, len(internal)+1)
		newInputs[0] = routed
		if routed != nil {
			routed.AddUse(phi, header)
		}
		for k, origIdx := range internalOrigIdx {
			newInputs[k+1] = phi.Inputs[origIdx]
		}
		phi.Inputs = newInputs
	}

	header.Predecessors = append([]*BasicBlock{ph}, internal...)
	ph.Predecessors = external
	ph.Successors = []*BasicBlock{header}
	ph.setTerminator(&Jump{id: fn.nextInstID2(), Target: header})
	fn.bumpDomVersion()
	return ph
}

func isJumpOnly(p, target *BasicBlock) bool {
	j, ok := p.Terminator.(*Jump)
	return ok && j.Target == target && len(p.Successors) == 1
}

func retargetTerminator(p, oldTarget, newTarget *BasicBlock) {
	switch t := p.Terminator.(type) {
	case *Jump:
		if t.Target == oldTarget {
			t.Target = newTarget
		}
	case *Branch:
		if t.TrueTgt == oldTarget {
			t.TrueTgt = newTarget
		}
		if t.FalseTgt == oldTarget {
			t.FalseTgt = newTarget
		}
	}
	p.Successors = replaceBlockInSlice(p.Successors, oldTarget, newTarget)
}
