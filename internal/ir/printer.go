package ir

import (
	"fmt"
	"strings"
)

// Print renders fn as textual IR: a header line "func name(params) ->
// rettype" followed by one section per block, headed "bN:" or, for a
// block with a descriptive label, "bN.label:", phis first, then
// instructions, then the terminator. Grounded on the teacher's
// Printer/printFunction/printBasicBlock shape (internal/ir/printer.go),
// narrowed to this package's Instruction.String() already producing
// each "%id = op args" line, so the printer itself only needs to supply
// structure (signature, block labels, grouping).
func Print(fn *Function) string {
	var b strings.Builder
	printFunction(&b, fn)
	return b.String()
}

func printFunction(b *strings.Builder, fn *Function) {
	fmt.Fprintf(b, "func %s(%s)", fn.Name, paramList(fn.Params))
	if fn.ReturnType != nil {
		fmt.Fprintf(b, " -> %s", fn.ReturnType.String())
	}
	b.WriteString(" {\n")
	for _, block := range fn.Blocks {
		printBlock(b, block)
	}
	b.WriteString("}\n")
}

func paramList(params []*Param) string {
	var s strings.Builder
	for i, p := range params {
		if i > 0 {
			s.WriteString(", ")
		}
		fmt.Fprintf(&s, "%s: %s", p.Name, p.Type.String())
	}
	return s.String()
}

func printBlock(b *strings.Builder, block *BasicBlock) {
	fmt.Fprintf(b, "%s:\n", blockLabel(block))

	var phis, rest []Instruction
	for _, inst := range block.Instructions {
		if _, ok := inst.(*PhiInstruction); ok {
			phis = append(phis, inst)
		} else {
			rest = append(rest, inst)
		}
	}
	for _, inst := range phis {
		fmt.Fprintf(b, "  %s\n", inst.String())
	}
	for _, inst := range rest {
		fmt.Fprintf(b, "  %s\n", inst.String())
	}
	if block.Terminator != nil {
		fmt.Fprintf(b, "  %s\n", block.Terminator.String())
	}
}

// blockLabel names a block bN using its ID, so the numbering stays
// stable across passes, and appends ".label" when the block carries a
// descriptive label (e.g. LICM's "loop.preheader").
func blockLabel(b *BasicBlock) string {
	if b.Label == "" {
		return fmt.Sprintf("b%d", b.ID)
	}
	return fmt.Sprintf("b%d.%s", b.ID, b.Label)
}
