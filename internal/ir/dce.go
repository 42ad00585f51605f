package ir

// DCE removes instructions with no live effect: an instruction survives
// only if it is a terminator, a store-effect instruction, or the
// (transitive) source of a value used by a surviving instruction.
// Grounded on the teacher's DeadCodeElimination pass
// (internal/ir/optimizations.go) and the pack's Hassandahiru-Compiler-in-Go
// mark-and-sweep shape, rewritten against this package's use-list model
// instead of re-scanning every block to find a value's definition.
//
// DCE reports whether it changed anything so the pipeline can re-run
// earlier passes that might now expose further opportunities, and is
// idempotent: a second run over an unchanged function marks the same
// essential set and deletes nothing.
func DCE(fn *Function) bool {
	essential := markEssential(fn)
	return sweep(fn, essential)
}

func markEssential(fn *Function) map[Instruction]bool {
	essential := make(map[Instruction]bool)
	var worklist []Instruction

	mark := func(inst Instruction) {
		if inst == nil || essential[inst] {
			return
		}
		essential[inst] = true
		worklist = append(worklist, inst)
	}

	for _, b := range fn.Blocks {
		if b.Terminator != nil {
			mark(b.Terminator)
		}
		for _, inst := range b.Instructions {
			if inst.Effect() == EffectStore {
				mark(inst)
			}
		}
	}

	for len(worklist) > 0 {
		n := len(worklist) - 1
		inst := worklist[n]
		worklist = worklist[:n]
		for _, operand := range inst.Operands() {
			if operand.Def != nil {
				mark(operand.Def)
			}
		}
	}

	return essential
}

// sweep deletes every instruction markEssential didn't mark essential, fixing up
// the use lists of whatever those instructions referenced. A phi whose
// result is unused is dropped here too: PhiInstruction.Effect is Pure, so
// it only survives if some other essential instruction reads it.
func sweep(fn *Function, essential map[Instruction]bool) bool {
	changed := false
	for _, b := range fn.Blocks {
		kept := b.Instructions[:0:0]
		for _, inst := range b.Instructions {
			if essential[inst] {
				kept = append(kept, inst)
				continue
			}
			changed = true
			for _, operand := range inst.Operands() {
				operand.RemoveUseBy(inst)
			}
		}
		b.Instructions = kept
	}
	return changed
}
