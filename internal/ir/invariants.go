package ir

import "kasc/internal/errors"

// Verify checks fn against the data-model invariants of §3/§8: each
// value defined exactly once and every use dominated by its definition,
// phi arity matching predecessor count, exactly one terminator per
// block, and idom forming a proper-ancestor chain. It is run by tests
// after every pass, and by the CLI and the REPL once the pipeline has
// finished.
func Verify(fn *Function) error {
	if err := verifyTerminators(fn); err != nil {
		return err
	}
	if err := verifyPhiArity(fn); err != nil {
		return err
	}
	if err := verifyDefUse(fn); err != nil {
		return err
	}
	if err := verifyDominatorTree(fn); err != nil {
		return err
	}
	return nil
}

func verifyTerminators(fn *Function) error {
	for _, b := range fn.Blocks {
		if b.Terminator == nil {
			return &errors.IRError{Code: errors.IRMultiTerminator, Message: "block has no terminator", Function: fn.Name, BlockID: b.ID}
		}
		for _, succ := range b.Terminator.Successors() {
			if !fn.hasBlock(succ) {
				return &errors.IRError{Code: errors.IRDanglingSuccessor, Message: "terminator targets a block outside the function", Function: fn.Name, BlockID: b.ID}
			}
		}
	}
	return nil
}

func verifyPhiArity(fn *Function) error {
	for _, b := range fn.Blocks {
		for _, inst := range b.Instructions {
			phi, ok := inst.(*PhiInstruction)
			if !ok {
				continue
			}
			if len(phi.Inputs) != len(b.Predecessors) {
				return &errors.IRError{
					Code:     errors.IRPhiArityMismatch,
					Message:  "phi input count does not match predecessor count",
					Function: fn.Name,
					BlockID:  b.ID,
					InstID:   phi.ID(),
				}
			}
		}
	}
	return nil
}

// verifyDefUse confirms every SSA value has exactly one definition
// (trivially true by construction: each *Value is created by exactly one
// emit call) and that every use is dominated by its definition.
func verifyDefUse(fn *Function) error {
	dt := fn.Dominators()
	seenDef := make(map[*Value]Instruction)

	check := func(def Instruction, result *Value) error {
		if result == nil {
			return nil
		}
		if prior, ok := seenDef[result]; ok && prior != def {
			return &errors.IRError{Code: errors.IRMultipleDefs, Message: "value has more than one defining instruction", Function: fn.Name, BlockID: def.Block().ID, InstID: def.ID()}
		}
		seenDef[result] = def
		return nil
	}

	for _, b := range fn.Blocks {
		for _, inst := range b.Instructions {
			if err := check(inst, inst.Result()); err != nil {
				return err
			}
		}
		if b.Terminator != nil {
			if err := check(b.Terminator, b.Terminator.Result()); err != nil {
				return err
			}
		}
	}

	for _, b := range fn.Blocks {
		if !dt.Reachable(b) {
			continue
		}
		for _, inst := range b.Instructions {
			if err := checkDominance(fn, dt, b, inst); err != nil {
				return err
			}
		}
		if b.Terminator != nil {
			if err := checkDominance(fn, dt, b, b.Terminator); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkDominance(fn *Function, dt *DominatorTree, useBlock *BasicBlock, inst Instruction) error {
	phi, isPhi := inst.(*PhiInstruction)
	for i, operand := range inst.Operands() {
		if operand == nil || operand.Def == nil {
			continue // constants folded in place, and parameters, are live-in everywhere.
		}
		defBlock := operand.DefBlock
		if !dt.Reachable(defBlock) {
			continue
		}
		if isPhi {
			// A phi's i-th input only needs to be dominated by its
			// definition along the i-th predecessor edge, not by the
			// phi's own block.
			if i >= len(useBlock.Predecessors) {
				continue
			}
			pred := useBlock.Predecessors[i]
			if dt.Dominates(defBlock, pred) {
				continue
			}
			return &errors.IRError{Code: errors.IRUseNotDominated, Message: "phi input not dominated by its definition", Function: fn.Name, BlockID: useBlock.ID, InstID: phi.ID()}
		}
		if defBlock == useBlock || dt.Dominates(defBlock, useBlock) {
			continue
		}
		return &errors.IRError{Code: errors.IRUseNotDominated, Message: "use not dominated by its definition", Function: fn.Name, BlockID: useBlock.ID, InstID: inst.ID()}
	}
	return nil
}

func verifyDominatorTree(fn *Function) error {
	dt := fn.Dominators()
	if fn.Entry == nil {
		return nil
	}
	for _, b := range fn.Blocks {
		if b == fn.Entry || !dt.Reachable(b) {
			continue
		}
		idom := dt.IDom(b)
		if idom == nil {
			return &errors.IRError{Code: errors.IRIdomNotAncestor, Message: "reachable non-entry block has no immediate dominator", Function: fn.Name, BlockID: b.ID}
		}
		if !dt.Dominates(idom, b) {
			return &errors.IRError{Code: errors.IRIdomNotAncestor, Message: "computed immediate dominator does not dominate the block", Function: fn.Name, BlockID: b.ID}
		}
	}
	return nil
}

func (fn *Function) hasBlock(b *BasicBlock) bool {
	for _, existing := range fn.Blocks {
		if existing == b {
			return true
		}
	}
	return false
}
