package ir

// BlockCleanup iterates three mutually reinforcing rewrites to a
// fixpoint: merging straight-line blocks, dropping blocks unreachable
// from entry, and collapsing single-input phis to their one value.
// Grounded on the teacher's eliminateDeadBlocks shape
// (internal/ir/optimizations.go) generalized with the merge and
// trivial-phi rewrites §4.7 additionally requires.
//
// Any pass relying on the dominator tree must recompute it after
// BlockCleanup runs, since block identities and edges may have changed;
// Function.Dominators() already does this automatically via its
// CFG-shape version check.
func BlockCleanup(fn *Function) bool {
	changed := false
	for {
		round := false
		if dropUnreachable(fn) {
			round = true
		}
		if mergeStraightLine(fn) {
			round = true
		}
		if CollapseTrivialPhis(fn) {
			round = true
		}
		if !round {
			break
		}
		changed = true
	}
	return changed
}

// dropUnreachable removes every block with no path from entry, matching
// the teacher's reachability-DFS shape in eliminateDeadBlocks.
func dropUnreachable(fn *Function) bool {
	if fn.Entry == nil {
		return false
	}
	reachable := make(map[*BasicBlock]bool)
	stack := []*BasicBlock{fn.Entry}
	reachable[fn.Entry] = true
	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]
		for _, succ := range cur.Successors {
			if !reachable[succ] {
				reachable[succ] = true
				stack = append(stack, succ)
			}
		}
	}

	changed := false
	survivors := fn.Blocks[:0:0]
	for _, b := range fn.Blocks {
		if reachable[b] {
			survivors = append(survivors, b)
			continue
		}
		changed = true
		unlinkBlockOperands(b)
		for _, succ := range b.Successors {
			succ.Predecessors = removeBlockFromSlice(succ.Predecessors, b)
		}
	}
	if changed {
		fn.Blocks = survivors
		fn.bumpDomVersion()
	}
	return changed
}

// mergeStraightLine folds S into B whenever B ends in a jump to S and S
// has no other predecessor and no phis to reconcile, so the pair becomes
// one straight-line block.
func mergeStraightLine(fn *Function) bool {
	changed := false
	for {
		merged := false
		for _, b := range fn.Blocks {
			if tryMerge(fn, b) {
				merged = true
				changed = true
				break // block set changed; restart the scan
			}
		}
		if !merged {
			break
		}
	}
	return changed
}

func tryMerge(fn *Function, b *BasicBlock) bool {
	jmp, ok := b.Terminator.(*Jump)
	if !ok {
		return false
	}
	s := jmp.Target
	if s == b || len(s.Predecessors) != 1 || s.Predecessors[0] != b {
		return false
	}
	if hasPhis(s) {
		return false
	}

	// b's terminator is a bare Jump (no operands), so nothing to unlink
	// before replacing it with s's instructions and terminator.
	b.Instructions = append(b.Instructions, s.Instructions...)
	for _, inst := range s.Instructions {
		inst.SetBlock(b)
	}
	b.Terminator = s.Terminator
	if b.Terminator != nil {
		b.Terminator.SetBlock(b)
	}
	b.Successors = s.Successors
	for _, succ := range s.Successors {
		succ.Predecessors = replaceBlockInSlice(succ.Predecessors, s, b)
	}

	fn.Blocks = removeBlockFromSlice(fn.Blocks, s)
	fn.bumpDomVersion()
	return true
}

func hasPhis(b *BasicBlock) bool {
	for _, inst := range b.Instructions {
		if _, ok := inst.(*PhiInstruction); ok {
			return true
		}
	}
	return false
}

func replaceBlockInSlice(list []*BasicBlock, old, newB *BasicBlock) []*BasicBlock {
	out := make([]*BasicBlock, len(list))
	for i, b := range list {
		if b == old {
			out[i] = newB
		} else {
			out[i] = b
		}
	}
	return out
}

// CollapseTrivialPhis replaces every phi with exactly one distinct
// incoming value (ignoring nil slots left by earlier edge pruning) with
// that value, everywhere it is used, then deletes the phi. Shared by
// SCCP's edge-pruning rewrite (§4.4) and BlockCleanup (§4.7).
func CollapseTrivialPhis(fn *Function) bool {
	changed := false
	for _, b := range fn.Blocks {
		kept := b.Instructions[:0:0]
		for _, inst := range b.Instructions {
			phi, ok := inst.(*PhiInstruction)
			if !ok {
				kept = append(kept, inst)
				continue
			}
			if sole, ok := soleValue(phi.Inputs); ok {
				replaceAllUses(phi.Result(), sole)
				changed = true
				continue
			}
			kept = append(kept, inst)
		}
		b.Instructions = kept
	}
	return changed
}

// soleValue reports the one distinct non-nil value in inputs, if there
// is exactly one.
func soleValue(inputs []*Value) (*Value, bool) {
	var sole *Value
	for _, v := range inputs {
		if v == nil {
			continue
		}
		if sole == nil {
			sole = v
			continue
		}
		if sole != v {
			return nil, false
		}
	}
	if sole == nil {
		return nil, false
	}
	return sole, true
}
