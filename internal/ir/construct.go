package ir

import "kasc/internal/ast"

// NewFunction creates an empty function with no blocks; the caller
// (Builder) adds the entry block and parameters.
func NewFunction(name string, retType ast.Type) *Function {
	return &Function{Name: name, ReturnType: retType}
}

// newValue allocates a fresh SSA value id.
func (f *Function) newValue(name string, typ ast.Type) *Value {
	f.nextValueID++
	return &Value{ID: f.nextValueID, Name: name, Type: typ}
}

// NewBlock creates and registers a new basic block; its sealed flag
// starts false and no pass sets it.
func (f *Function) NewBlock(label string) *BasicBlock {
	f.nextBlockID++
	b := &BasicBlock{ID: f.nextBlockID, Label: label, incompletePhis: make(map[string]*PhiInstruction)}
	f.Blocks = append(f.Blocks, b)
	f.bumpDomVersion()
	return b
}

func (f *Function) bumpDomVersion() { f.domVersion++ }

func (f *Function) nextInstID2() int {
	f.nextInstID++
	return f.nextInstID
}

// addEdge links a predecessor to a successor block, grounded on the
// teacher's builder.go cursor style and the pack's golang-tools ssa
// addEdge helper.
func (f *Function) addEdge(from, to *BasicBlock) {
	from.Successors = append(from.Successors, to)
	to.Predecessors = append(to.Predecessors, from)
	f.bumpDomVersion()
}

// emit appends inst to block's instruction list and sets its back-link.
func (b *BasicBlock) emit(inst Instruction) {
	inst.SetBlock(b)
	b.Instructions = append(b.Instructions, inst)
}

// setTerminator installs block's terminator; a block must have exactly
// one (§ invariant enforced by internal/ir/invariants.go).
func (b *BasicBlock) setTerminator(term Terminator) {
	term.SetBlock(b)
	b.Terminator = term
}

// --- instruction constructors; each records def-use edges as it wires
// operands, so the use lists never need a separate recomputation pass.

func (f *Function) emitConst(b *BasicBlock, value int64) *Value {
	result := f.newValue("", &ast.IntType{})
	inst := &Const{id: f.nextInstID2(), result: result, Value: value}
	result.Def = inst
	result.DefBlock = b
	b.emit(inst)
	return result
}

func (f *Function) emitAlloca(b *BasicBlock, name string, elemTyp ast.Type, count int) *Value {
	result := f.newValue(name, elemTyp)
	inst := &Alloca{id: f.nextInstID2(), result: result, ElemTyp: elemTyp, Count: count}
	result.Def = inst
	result.DefBlock = b
	b.emit(inst)
	return result
}

func (f *Function) emitLoad(b *BasicBlock, addr *Value, typ ast.Type) *Value {
	result := f.newValue("", typ)
	inst := &Load{id: f.nextInstID2(), result: result, Address: addr}
	result.Def = inst
	result.DefBlock = b
	addr.AddUse(inst, b)
	b.emit(inst)
	return result
}

func (f *Function) emitStore(b *BasicBlock, addr, val *Value) {
	inst := &Store{id: f.nextInstID2(), Address: addr, Val: val}
	addr.AddUse(inst, b)
	val.AddUse(inst, b)
	b.emit(inst)
}

func (f *Function) emitBinary(b *BasicBlock, op BinOp, left, right *Value) *Value {
	result := f.newValue("", &ast.IntType{})
	inst := &BinaryOp{id: f.nextInstID2(), result: result, Op: op, Left: left, Right: right}
	result.Def = inst
	result.DefBlock = b
	left.AddUse(inst, b)
	right.AddUse(inst, b)
	b.emit(inst)
	return result
}

func (f *Function) emitUnary(b *BasicBlock, op UnOp, operand *Value) *Value {
	result := f.newValue("", &ast.IntType{})
	inst := &UnaryOp{id: f.nextInstID2(), result: result, Op: op, Operand: operand}
	result.Def = inst
	result.DefBlock = b
	operand.AddUse(inst, b)
	b.emit(inst)
	return result
}

func (f *Function) emitCall(b *BasicBlock, callee string, args []*Value, retType ast.Type) *Value {
	var result *Value
	inst := &Call{id: f.nextInstID2(), Callee: callee, Args: args}
	if retType != nil {
		result = f.newValue("", retType)
		result.Def = inst
		result.DefBlock = b
		inst.result = result
	}
	for _, a := range args {
		a.AddUse(inst, b)
	}
	b.emit(inst)
	return result
}

func (f *Function) emitGetElementAddr(b *BasicBlock, base *Value, indices []*Value, dims []int, elemTyp ast.Type) *Value {
	result := f.newValue("", elemTyp)
	inst := &GetElementAddr{id: f.nextInstID2(), result: result, Base: base, Indices: indices, Dims: dims}
	result.Def = inst
	result.DefBlock = b
	base.AddUse(inst, b)
	for _, idx := range indices {
		idx.AddUse(inst, b)
	}
	b.emit(inst)
	return result
}

func (f *Function) setJump(b *BasicBlock, target *BasicBlock) {
	inst := &Jump{id: f.nextInstID2(), Target: target}
	b.setTerminator(inst)
	f.addEdge(b, target)
}

func (f *Function) setBranch(b *BasicBlock, cond *Value, trueTgt, falseTgt *BasicBlock) {
	inst := &Branch{id: f.nextInstID2(), Cond: cond, TrueTgt: trueTgt, FalseTgt: falseTgt}
	cond.AddUse(inst, b)
	b.setTerminator(inst)
	f.addEdge(b, trueTgt)
	f.addEdge(b, falseTgt)
}

func (f *Function) setReturn(b *BasicBlock, val *Value) {
	inst := &Return{id: f.nextInstID2(), Val: val}
	if val != nil {
		val.AddUse(inst, b)
	}
	b.setTerminator(inst)
}

func (f *Function) emitPhi(b *BasicBlock, typ ast.Type) *PhiInstruction {
	result := f.newValue("", typ)
	inst := &PhiInstruction{id: f.nextInstID2(), result: result}
	result.Def = inst
	result.DefBlock = b
	inst.block = b
	// phis are prepended conceptually; builder keeps a separate list per
	// block during SSA construction, so here we just track via block.
	b.Instructions = append([]Instruction{inst}, b.Instructions...)
	return inst
}
