package ir

import "kasc/internal/ast"

// SCCP is sparse conditional constant propagation: a joint lattice over
// SSA values ({undef, constant, overdef}) and CFG edges (reachable or
// not), solved to a fixpoint with two worklists, then used to rewrite
// the function — materializing proven constants and pruning edges
// proven unreachable. Grounded on the teacher's ConstantFolding pass
// (internal/ir/optimizations.go), generalized from straight-line
// constant folding to the full value/edge lattice this spec calls for.
//
// warn receives one message per unsupported-operation case (constant
// division/modulus by zero); it may be nil. SCCP reports whether it
// changed the function, for the pipeline's fixpoint driver.
func SCCP(fn *Function, warn func(string)) bool {
	s := &sccpSolver{
		fn:        fn,
		value:     make(map[*Value]lattice),
		blockExec: make(map[*BasicBlock]bool),
		edgeExec:  make(map[cfgEdge]bool),
		warn:      warn,
	}
	for _, p := range fn.Params {
		s.value[p.Value] = lattice{kind: latOverdef}
	}
	if fn.Entry == nil {
		return false
	}
	s.cfgWL = append(s.cfgWL, cfgEdge{nil, fn.Entry})
	s.run()

	changed := s.materializeConstants()
	if s.pruneUnreachable() {
		changed = true
	}
	if CollapseTrivialPhis(fn) {
		changed = true
	}
	return changed
}

type latticeKind int

const (
	latUndef latticeKind = iota
	latConst
	latOverdef
)

type lattice struct {
	kind latticeKind
	val  int64
}

func constLattice(v int64) lattice { return lattice{kind: latConst, val: v} }

func boolLattice(b bool) lattice {
	if b {
		return constLattice(1)
	}
	return constLattice(0)
}

// meetLattice implements ⊥ ⊓ x = x, c ⊓ c = c, c ⊓ c' = ⊤, ⊤ ⊓ x = ⊤.
func meetLattice(a, b lattice) lattice {
	if a.kind == latUndef {
		return b
	}
	if b.kind == latUndef {
		return a
	}
	if a.kind == latOverdef || b.kind == latOverdef {
		return lattice{kind: latOverdef}
	}
	if a.val == b.val {
		return a
	}
	return lattice{kind: latOverdef}
}

// cfgEdge is one terminator-to-successor edge; from is nil for the
// synthetic edge that makes the entry block executable.
type cfgEdge struct{ from, to *BasicBlock }

type sccpSolver struct {
	fn   *Function
	warn func(string)

	value     map[*Value]lattice
	blockExec map[*BasicBlock]bool
	edgeExec  map[cfgEdge]bool

	cfgWL []cfgEdge
	ssaWL []*Value
}

func (s *sccpSolver) get(v *Value) lattice {
	if v == nil {
		return lattice{kind: latOverdef}
	}
	if l, ok := s.value[v]; ok {
		return l
	}
	return lattice{kind: latUndef}
}

func (s *sccpSolver) run() {
	for len(s.cfgWL) > 0 || len(s.ssaWL) > 0 {
		for len(s.cfgWL) > 0 {
			n := len(s.cfgWL) - 1
			e := s.cfgWL[n]
			s.cfgWL = s.cfgWL[:n]
			if s.edgeExec[e] {
				continue
			}
			s.edgeExec[e] = true
			firstTime := !s.blockExec[e.to]
			s.blockExec[e.to] = true

			s.visitPhis(e.to)
			if firstTime {
				s.visitInstructions(e.to)
				s.visitTerminator(e.to)
			}
		}
		if len(s.ssaWL) > 0 {
			n := len(s.ssaWL) - 1
			v := s.ssaWL[n]
			s.ssaWL = s.ssaWL[:n]
			s.propagate(v)
		}
	}
}

// propagate re-evaluates every user of v that sits in an executable
// block, so a lattice change reaches phis, instructions and branches.
func (s *sccpSolver) propagate(v *Value) {
	for _, u := range v.Uses {
		blk := u.User.Block()
		if blk == nil || !s.blockExec[blk] {
			continue
		}
		if _, ok := u.User.(Terminator); ok {
			s.visitTerminator(blk)
			continue
		}
		s.evalInstr(u.User)
	}
}

func (s *sccpSolver) visitPhis(b *BasicBlock) {
	for _, inst := range b.Instructions {
		phi, ok := inst.(*PhiInstruction)
		if !ok {
			break
		}
		s.evalInstr(phi)
	}
}

func (s *sccpSolver) visitInstructions(b *BasicBlock) {
	for _, inst := range b.Instructions {
		if _, ok := inst.(*PhiInstruction); ok {
			continue
		}
		s.evalInstr(inst)
	}
}

func (s *sccpSolver) visitTerminator(b *BasicBlock) {
	switch t := b.Terminator.(type) {
	case *Jump:
		s.enqueueEdge(b, t.Target)
	case *Branch:
		switch c := s.get(t.Cond); c.kind {
		case latConst:
			if c.val != 0 {
				s.enqueueEdge(b, t.TrueTgt)
			} else {
				s.enqueueEdge(b, t.FalseTgt)
			}
		case latOverdef:
			s.enqueueEdge(b, t.TrueTgt)
			s.enqueueEdge(b, t.FalseTgt)
		case latUndef:
			// condition not yet known; wait for it to settle.
		}
	case *Return:
		// no successors.
	}
}

func (s *sccpSolver) enqueueEdge(from, to *BasicBlock) {
	s.cfgWL = append(s.cfgWL, cfgEdge{from, to})
}

// evalInstr recomputes inst's lattice value and, if it moved, records the
// new value and pushes it onto the SSA worklist so its users re-evaluate.
func (s *sccpSolver) evalInstr(inst Instruction) {
	res := inst.Result()
	if res == nil {
		return
	}
	newVal := meetLattice(s.get(res), s.evaluate(inst))
	if newVal != s.get(res) {
		s.value[res] = newVal
		s.ssaWL = append(s.ssaWL, res)
	}
}

func (s *sccpSolver) evaluate(inst Instruction) lattice {
	switch v := inst.(type) {
	case *Const:
		return constLattice(v.Value)
	case *BinaryOp:
		l, r := s.get(v.Left), s.get(v.Right)
		if l.kind == latOverdef || r.kind == latOverdef {
			return lattice{kind: latOverdef}
		}
		if l.kind == latUndef || r.kind == latUndef {
			return lattice{kind: latUndef}
		}
		return s.evalBinOp(v.Op, l.val, r.val)
	case *UnaryOp:
		o := s.get(v.Operand)
		if o.kind == latOverdef {
			return lattice{kind: latOverdef}
		}
		if o.kind == latUndef {
			return lattice{kind: latUndef}
		}
		return evalUnOp(v.Op, o.val)
	case *PhiInstruction:
		return s.meetPhi(v)
	default:
		// Load, Call, Alloca, GetElementAddr: unknown per §4.4.
		return lattice{kind: latOverdef}
	}
}

func (s *sccpSolver) meetPhi(p *PhiInstruction) lattice {
	block := p.block
	result := lattice{kind: latUndef}
	for i, in := range p.Inputs {
		if in == nil || i >= len(block.Predecessors) {
			continue
		}
		pred := block.Predecessors[i]
		if !s.edgeExec[cfgEdge{pred, block}] {
			continue
		}
		result = meetLattice(result, s.get(in))
	}
	return result
}

func (s *sccpSolver) evalBinOp(op BinOp, l, r int64) lattice {
	switch op {
	case ast.BAdd:
		return constLattice(l + r)
	case ast.BSub:
		return constLattice(l - r)
	case ast.BMul:
		return constLattice(l * r)
	case ast.BDiv:
		if r == 0 {
			s.warnf("sccp: division by constant zero left unfolded")
			return lattice{kind: latOverdef}
		}
		return constLattice(l / r)
	case ast.BMod:
		if r == 0 {
			s.warnf("sccp: modulus by constant zero left unfolded")
			return lattice{kind: latOverdef}
		}
		return constLattice(l % r)
	case ast.BEq:
		return boolLattice(l == r)
	case ast.BNe:
		return boolLattice(l != r)
	case ast.BLt:
		return boolLattice(l < r)
	case ast.BLe:
		return boolLattice(l <= r)
	case ast.BGt:
		return boolLattice(l > r)
	case ast.BGe:
		return boolLattice(l >= r)
	default:
		// BAnd/BOr never reach a BinaryOp: the builder always lowers them
		// to the short-circuit diamond instead (see builder_expr.go).
		return lattice{kind: latOverdef}
	}
}

func evalUnOp(op UnOp, v int64) lattice {
	switch op {
	case ast.UNeg:
		return constLattice(-v)
	case ast.UNot:
		return boolLattice(v == 0)
	default:
		return lattice{kind: latOverdef}
	}
}

func (s *sccpSolver) warnf(msg string) {
	if s.warn != nil {
		s.warn(msg)
	}
}

// materializeConstants replaces every pure, non-phi instruction proven
// constant with a Const in the same slot, rewiring uses and unlinking
// the old instruction's own operands. Phis are excluded even when
// proven constant: §3 requires phis to appear only at the start of a
// block, and splicing a Const into a block's phi prefix would leave a
// non-phi ahead of any later (still-varying) phi, breaking every walk
// that stops at the first non-phi instruction (phi visitation, SSA
// renaming, phi-input shrinking, preheader phi rerouting). A constant
// phi is instead left for CollapseTrivialPhis to fold once SCCP has
// pruned it down to a single distinct input.
func (s *sccpSolver) materializeConstants() bool {
	changed := false
	for _, b := range s.fn.Blocks {
		for i, inst := range b.Instructions {
			res := inst.Result()
			if res == nil || inst.Effect() != EffectPure {
				continue
			}
			if _, isPhi := inst.(*PhiInstruction); isPhi {
				continue
			}
			if _, already := inst.(*Const); already {
				continue
			}
			lat := s.get(res)
			if lat.kind != latConst {
				continue
			}

			newRes := &Value{ID: res.ID, Name: res.Name, Type: res.Type, DefBlock: b}
			newInst := &Const{id: inst.ID(), result: newRes, Value: lat.val, block: b}
			newRes.Def = newInst

			for _, operand := range inst.Operands() {
				operand.RemoveUseBy(inst)
			}
			b.Instructions[i] = newInst
			replaceAllUses(res, newRes)
			changed = true
		}
	}
	return changed
}

// pruneUnreachable drops predecessor edges SCCP proved unreachable
// (shrinking the surviving phis' input lists to match) and deletes
// blocks left with no path from entry.
func (s *sccpSolver) pruneUnreachable() bool {
	fn := s.fn
	changed := false

	for _, b := range fn.Blocks {
		if b == fn.Entry || len(b.Predecessors) == 0 {
			continue
		}
		var kept []*BasicBlock
		var keptIdx []int
		for i, pred := range b.Predecessors {
			if s.edgeExec[cfgEdge{pred, b}] {
				kept = append(kept, pred)
				keptIdx = append(keptIdx, i)
			} else {
				changed = true
				pred.Successors = removeBlockFromSlice(pred.Successors, b)
				if br, ok := pred.Terminator.(*Branch); ok {
					other := br.TrueTgt
					if other == b {
						other = br.FalseTgt
					}
					br.Cond.RemoveUseBy(br)
					pred.setTerminator(&Jump{id: fn.nextInstID2(), Target: other})
				}
				fn.bumpDomVersion()
			}
		}
		if len(kept) != len(b.Predecessors) {
			b.Predecessors = kept
			shrinkPhiInputs(b, keptIdx)
		}
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

	survivors := fn.Blocks[:0:0]
	for _, b := range fn.Blocks {
		if reachable[b] {
			survivors = append(survivors, b)
			continue
		}
		changed = true
		unlinkBlockOperands(b)
	}
	if len(survivors) != len(fn.Blocks) {
		fn.Blocks = survivors
		fn.bumpDomVersion()
	}
	return changed
}

func removeBlockFromSlice(list []*BasicBlock, target *BasicBlock) []*BasicBlock {
	out := list[:0:0]
	for _, b := range list {
		if b != target {
			out = append(out, b)
		}
	}
	return out
}

// shrinkPhiInputs rewrites every phi at the top of b to keep only the
// inputs named by keptIdx (indices into the old Predecessors slice,
// already reassigned to b.Predecessors by the caller).
func shrinkPhiInputs(b *BasicBlock, keptIdx []int) {
	for _, inst := range b.Instructions {
		phi, ok := inst.(*PhiInstruction)
		if !ok {
			break
		}
		old := phi.Inputs
		keptSet := make(map[int]bool, len(keptIdx))
		newInputs := make([]*Value, len(keptIdx))
		for j, oi := range keptIdx {
			newInputs[j] = old[oi]
			keptSet[oi] = true
		}
		for oi, v := range old {
			if !keptSet[oi] && v != nil {
				v.RemoveUseBy(phi)
			}
		}
		phi.Inputs = newInputs
	}
}

func unlinkBlockOperands(b *BasicBlock) {
	for _, inst := range b.Instructions {
		for _, op := range inst.Operands() {
			op.RemoveUseBy(inst)
		}
	}
	if b.Terminator != nil {
		for _, op := range b.Terminator.Operands() {
			op.RemoveUseBy(b.Terminator)
		}
	}
}
