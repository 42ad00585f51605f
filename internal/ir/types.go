// Package ir implements the compiler's core: CFG construction, dominator
// and SSA analysis, and the SCCP/LICM/DCE/cleanup optimization passes,
// grounded on the teacher's internal/ir package (here narrowed from an
// EVM-contract IR to a scalar/array procedural-language IR).
package ir

import (
	"fmt"

	"kasc/internal/ast"
)

// Function is one compiled function: its basic blocks, in the order
// they were created, plus the SSA bookkeeping the builder and later
// passes share.
type Function struct {
	Name       string
	Params     []*Param
	ReturnType ast.Type
	Entry      *BasicBlock
	Blocks     []*BasicBlock

	nextValueID  int
	nextBlockID  int
	nextInstID   int
	domInfo      *DominatorTree // cached; invalidated on CFG-shape change
	domVersion   int            // bumped whenever Blocks' edges change
	domInfoBuilt int            // domVersion domInfo was computed for
}

// Param is one formal parameter, lowered to an SSA Value live on entry.
type Param struct {
	Name  string
	Type  ast.Type
	Value *Value
}

// BasicBlock is a maximal straight-line instruction sequence ending in
// exactly one Terminator.
type BasicBlock struct {
	ID           int
	Label        string
	Instructions []Instruction
	Terminator   Terminator
	Predecessors []*BasicBlock
	Successors   []*BasicBlock

	sealed bool // never set or read: PromoteToSSA needs no block sealing
	// incompletePhis is allocated by NewBlock but never filled or read;
	// PromoteToSSA places phis from dominance frontiers instead.
	incompletePhis map[string]*PhiInstruction
}

func (b *BasicBlock) String() string { return b.Label }

// Value is an SSA value: defined exactly once, used zero or more times.
// Arrays are not SSA-renamed (they live in alloca-addressed memory per
// the data model), so a Value representing an array is always the
// address produced by an Alloca instruction, never a "versioned array".
type Value struct {
	ID      int
	Name    string // empty for anonymous temporaries
	Type    ast.Type
	Def     Instruction // nil for parameters, which are live-in at Entry
	DefBlock *BasicBlock
	Uses    []*Use
}

func (v *Value) String() string {
	if v.Name != "" {
		return fmt.Sprintf("%%%s", v.Name)
	}
	return fmt.Sprintf("%%t%d", v.ID)
}

// AddUse records that inst uses v as an operand; the builder and every
// rewriting pass call this so def-use chains stay accurate without a
// separate recomputation step.
func (v *Value) AddUse(inst Instruction, block *BasicBlock) *Use {
	u := &Use{Value: v, User: inst, Block: block}
	v.Uses = append(v.Uses, u)
	return u
}

// RemoveUse deletes one specific use (by identity) from v's use list.
func (v *Value) RemoveUse(u *Use) {
	for i, existing := range v.Uses {
		if existing == u {
			v.Uses = append(v.Uses[:i], v.Uses[i+1:]...)
			return
		}
	}
}

// RemoveUseBy deletes every recorded use of v by inst; called when DCE or
// cleanup deletes inst entirely, so v's use list never points at a dead
// instruction.
func (v *Value) RemoveUseBy(inst Instruction) {
	kept := v.Uses[:0:0]
	for _, u := range v.Uses {
		if u.User != inst {
			kept = append(kept, u)
		}
	}
	v.Uses = kept
}

// Use is one edge in the def-use graph.
type Use struct {
	Value *Value
	User  Instruction
	Block *BasicBlock
}

// Effect classifies what an instruction does to the outside world. DCE
// treats only store-effect instructions (and terminators) as
// unconditionally essential; everything else is kept only if its result
// is (transitively) used. This narrows the teacher's richer
// storage/memory/event effect taxonomy to the two kinds this language's
// instruction set can produce.
type Effect int

const (
	EffectPure Effect = iota
	EffectStore
)

// Instruction is any non-terminating operation inside a basic block.
type Instruction interface {
	ID() int
	Result() *Value
	Operands() []*Value
	Block() *BasicBlock
	SetBlock(*BasicBlock)
	Effect() Effect
	String() string
}

// Terminator ends a basic block and names its successors.
type Terminator interface {
	Instruction
	Successors() []*BasicBlock
}

// BinOp mirrors ast.BinOp for IR binary instructions.
type BinOp = ast.BinOp

// UnOp mirrors ast.UnOp for IR unary instructions.
type UnOp = ast.UnOp

// --- Instructions ---

// Const materializes a compile-time integer constant.
type Const struct {
	id     int
	result *Value
	block  *BasicBlock
	Value  int64
}

// Alloca reserves storage for a local variable (scalar or array); the
// result Value is the address, never renamed by SSA construction.
type Alloca struct {
	id      int
	result  *Value
	block   *BasicBlock
	ElemTyp ast.Type // int for a scalar, the element type for an array
	Count   int      // 1 for a scalar, total element count for an array
}

// Load reads the current value at an address (emitted for array element
// accesses and for scalar allocas). PromoteToSSA replaces the loads and
// stores of scalar allocas in the entry block by phi/value renaming; a
// scalar alloca in any other block keeps its Load/Store.
type Load struct {
	id      int
	result  *Value
	block   *BasicBlock
	Address *Value
}

// Store writes a value to an address.
type Store struct {
	id      int
	block   *BasicBlock
	Address *Value
	Val     *Value
}

// BinaryOp applies a binary operator to two int operands.
type BinaryOp struct {
	id     int
	result *Value
	block  *BasicBlock
	Op     BinOp
	Left   *Value
	Right  *Value
}

// UnaryOp applies a unary operator to one int operand.
type UnaryOp struct {
	id      int
	result  *Value
	block   *BasicBlock
	Op      UnOp
	Operand *Value
}

// Call invokes another function by name.
type Call struct {
	id       int
	result   *Value // nil if the callee has no return type
	block    *BasicBlock
	Callee   string
	Args     []*Value
}

// GetElementAddr computes the address of an array element given a base
// address and one index per dimension (row-major layout).
type GetElementAddr struct {
	id      int
	result  *Value
	block   *BasicBlock
	Base    *Value
	Indices []*Value
	Dims    []int // the array's declared dimensions, for stride computation
}

// Phi joins values coming from distinct predecessors at a merge point.
type PhiInstruction struct {
	id     int
	result *Value
	block  *BasicBlock
	// Inputs is parallel to block.Predecessors at the time of SSA
	// finalization: Inputs[i] is the incoming value from Predecessors[i].
	Inputs []*Value
}

// --- Terminators ---

// Jump is an unconditional edge to a single successor.
type Jump struct {
	id     int
	block  *BasicBlock
	Target *BasicBlock
}

// Branch is a two-way conditional edge.
type Branch struct {
	id        int
	block     *BasicBlock
	Cond      *Value
	TrueTgt   *BasicBlock
	FalseTgt  *BasicBlock
}

// Return exits the function, optionally with a value.
type Return struct {
	id    int
	block *BasicBlock
	Val   *Value // nil for a void return
}

// --- Instruction interface implementations ---

func (c *Const) ID() int                { return c.id }
func (c *Const) Result() *Value         { return c.result }
func (c *Const) Operands() []*Value     { return nil }
func (c *Const) Block() *BasicBlock     { return c.block }
func (c *Const) SetBlock(b *BasicBlock) { c.block = b }
func (c *Const) Effect() Effect         { return EffectPure }
func (c *Const) String() string         { return fmt.Sprintf("%s = const %d", c.result, c.Value) }

func (a *Alloca) ID() int                { return a.id }
func (a *Alloca) Result() *Value         { return a.result }
func (a *Alloca) Operands() []*Value     { return nil }
func (a *Alloca) Block() *BasicBlock     { return a.block }
func (a *Alloca) SetBlock(b *BasicBlock) { a.block = b }
func (a *Alloca) Effect() Effect         { return EffectPure }
func (a *Alloca) String() string {
	return fmt.Sprintf("%s = alloca %s, count %d", a.result, a.ElemTyp, a.Count)
}

func (l *Load) ID() int                { return l.id }
func (l *Load) Result() *Value         { return l.result }
func (l *Load) Operands() []*Value     { return []*Value{l.Address} }
func (l *Load) Block() *BasicBlock     { return l.block }
func (l *Load) SetBlock(b *BasicBlock) { l.block = b }
func (l *Load) Effect() Effect         { return EffectPure }
func (l *Load) String() string         { return fmt.Sprintf("%s = load %s", l.result, l.Address) }

func (s *Store) ID() int                { return s.id }
func (s *Store) Result() *Value         { return nil }
func (s *Store) Operands() []*Value     { return []*Value{s.Address, s.Val} }
func (s *Store) Block() *BasicBlock     { return s.block }
func (s *Store) SetBlock(b *BasicBlock) { s.block = b }
func (s *Store) Effect() Effect         { return EffectStore }
func (s *Store) String() string         { return fmt.Sprintf("store %s, %s", s.Val, s.Address) }

func (b *BinaryOp) ID() int                { return b.id }
func (b *BinaryOp) Result() *Value         { return b.result }
func (b *BinaryOp) Operands() []*Value     { return []*Value{b.Left, b.Right} }
func (b *BinaryOp) Block() *BasicBlock     { return b.block }
func (b *BinaryOp) SetBlock(blk *BasicBlock) { b.block = blk }
func (b *BinaryOp) Effect() Effect         { return EffectPure }
func (b *BinaryOp) String() string {
	return fmt.Sprintf("%s = %s %s, %s", b.result, binOpName(b.Op), b.Left, b.Right)
}

func (u *UnaryOp) ID() int                { return u.id }
func (u *UnaryOp) Result() *Value         { return u.result }
func (u *UnaryOp) Operands() []*Value     { return []*Value{u.Operand} }
func (u *UnaryOp) Block() *BasicBlock     { return u.block }
func (u *UnaryOp) SetBlock(b *BasicBlock) { u.block = b }
func (u *UnaryOp) Effect() Effect         { return EffectPure }
func (u *UnaryOp) String() string {
	return fmt.Sprintf("%s = %s %s", u.result, unOpName(u.Op), u.Operand)
}

func (c *Call) ID() int                { return c.id }
func (c *Call) Result() *Value         { return c.result }
func (c *Call) Operands() []*Value     { return c.Args }
func (c *Call) Block() *BasicBlock     { return c.block }
func (c *Call) SetBlock(b *BasicBlock) { c.block = b }
// Calls are treated as store-effect (conservatively essential) since the
// callee's body may itself store through array parameters passed by
// address; the language has no purity annotations to refine this.
func (c *Call) Effect() Effect { return EffectStore }
func (c *Call) String() string {
	if c.result != nil {
		return fmt.Sprintf("%s = call %s(%s)", c.result, c.Callee, valueList(c.Args))
	}
	return fmt.Sprintf("call %s(%s)", c.Callee, valueList(c.Args))
}

func (g *GetElementAddr) ID() int                { return g.id }
func (g *GetElementAddr) Result() *Value         { return g.result }
func (g *GetElementAddr) Operands() []*Value     { return append([]*Value{g.Base}, g.Indices...) }
func (g *GetElementAddr) Block() *BasicBlock     { return g.block }
func (g *GetElementAddr) SetBlock(b *BasicBlock) { g.block = b }
func (g *GetElementAddr) Effect() Effect         { return EffectPure }
func (g *GetElementAddr) String() string {
	return fmt.Sprintf("%s = getelementaddr %s%s", g.result, g.Base, indexList(g.Indices))
}

func (p *PhiInstruction) ID() int                { return p.id }
func (p *PhiInstruction) Result() *Value         { return p.result }
func (p *PhiInstruction) Operands() []*Value     { return p.Inputs }
func (p *PhiInstruction) Block() *BasicBlock     { return p.block }
func (p *PhiInstruction) SetBlock(b *BasicBlock) { p.block = b }
func (p *PhiInstruction) Effect() Effect         { return EffectPure }
func (p *PhiInstruction) String() string {
	return fmt.Sprintf("%s = phi %s", p.result, valueList(p.Inputs))
}

func (j *Jump) ID() int                { return j.id }
func (j *Jump) Result() *Value         { return nil }
func (j *Jump) Operands() []*Value     { return nil }
func (j *Jump) Block() *BasicBlock     { return j.block }
func (j *Jump) SetBlock(b *BasicBlock) { j.block = b }
func (j *Jump) Effect() Effect         { return EffectPure }
func (j *Jump) String() string         { return fmt.Sprintf("jump %s", blockLabel(j.Target)) }
func (j *Jump) Successors() []*BasicBlock { return []*BasicBlock{j.Target} }

func (b *Branch) ID() int                  { return b.id }
func (b *Branch) Result() *Value           { return nil }
func (b *Branch) Operands() []*Value       { return []*Value{b.Cond} }
func (b *Branch) Block() *BasicBlock       { return b.block }
func (b *Branch) SetBlock(blk *BasicBlock) { b.block = blk }
func (b *Branch) Effect() Effect           { return EffectPure }
func (b *Branch) String() string {
	return fmt.Sprintf("branch %s, %s, %s", b.Cond, blockLabel(b.TrueTgt), blockLabel(b.FalseTgt))
}
func (b *Branch) Successors() []*BasicBlock { return []*BasicBlock{b.TrueTgt, b.FalseTgt} }

func (r *Return) ID() int                { return r.id }
func (r *Return) Result() *Value         { return nil }
func (r *Return) Operands() []*Value {
	if r.Val != nil {
		return []*Value{r.Val}
	}
	return nil
}
func (r *Return) Block() *BasicBlock     { return r.block }
func (r *Return) SetBlock(b *BasicBlock) { r.block = b }
func (r *Return) Effect() Effect         { return EffectStore } // a return is always essential
func (r *Return) String() string {
	if r.Val != nil {
		return fmt.Sprintf("return %s", r.Val)
	}
	return "return"
}
func (r *Return) Successors() []*BasicBlock { return nil }

func binOpName(op BinOp) string {
	names := [...]string{"or", "and", "eq", "ne", "lt", "le", "gt", "ge", "add", "sub", "mul", "div", "mod"}
	if int(op) < len(names) {
		return names[op]
	}
	return "binop?"
}

func unOpName(op UnOp) string {
	if op == ast.UNeg {
		return "neg"
	}
	return "not"
}

func valueList(vs []*Value) string {
	s := ""
	for i, v := range vs {
		if i > 0 {
			s += ", "
		}
		s += v.String()
	}
	return s
}

func indexList(vs []*Value) string {
	s := ""
	for _, v := range vs {
		s += fmt.Sprintf("[%s]", v)
	}
	return s
}
