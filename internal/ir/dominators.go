package ir

// DominatorTree holds the immediate-dominator relation and dominance
// frontiers for one function's CFG, computed by the Cooper/Harvey/Kennedy
// iterative algorithm. The teacher's EVM-contract IR has no dominator
// pass at all (its optimizations work straight-line, block-local), so
// this file is grounded instead on the golang-tools ssa package
// reference file (other_examples' golang-tools ssa-func.go), the pack
// example that computes the same reverse-postorder idom/frontier
// structures over its own basic-block graph.
type DominatorTree struct {
	fn *Function

	// postorder lists every reachable block in DFS postorder, so along
	// any non-back edge the predecessor has a higher index than its
	// successor and entry has the highest; blockIndex is the inverse
	// lookup.
	postorder  []*BasicBlock
	blockIndex map[*BasicBlock]int

	idom     map[*BasicBlock]*BasicBlock
	children map[*BasicBlock][]*BasicBlock
	frontier map[*BasicBlock][]*BasicBlock
}

// Dominators returns f's dominator tree, rebuilding it only if the CFG
// shape (edges, block set) has changed since the last call.
func (f *Function) Dominators() *DominatorTree {
	if f.domInfo != nil && f.domInfoBuilt == f.domVersion {
		return f.domInfo
	}
	dt := buildDominatorTree(f)
	f.domInfo = dt
	f.domInfoBuilt = f.domVersion
	return dt
}

func buildDominatorTree(f *Function) *DominatorTree {
	dt := &DominatorTree{
		fn:       f,
		idom:     make(map[*BasicBlock]*BasicBlock),
		children: make(map[*BasicBlock][]*BasicBlock),
		frontier: make(map[*BasicBlock][]*BasicBlock),
	}
	if f.Entry == nil {
		return dt
	}

	dt.postorder = postorderFrom(f.Entry)
	dt.blockIndex = make(map[*BasicBlock]int, len(dt.postorder))
	for i, b := range dt.postorder {
		dt.blockIndex[b] = i
	}

	dt.computeIdom(f.Entry)
	dt.computeChildren()
	dt.computeFrontiers()
	return dt
}

func postorderFrom(entry *BasicBlock) []*BasicBlock {
	var order []*BasicBlock
	visited := make(map[*BasicBlock]bool)
	var visit func(b *BasicBlock)
	visit = func(b *BasicBlock) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, succ := range b.Successors {
			visit(succ)
		}
		order = append(order, b)
	}
	visit(entry)
	return order
}

// computeIdom is the Cooper/Harvey/Kennedy "A Simple, Fast Dominance
// Algorithm" fixpoint iteration over reverse postorder.
func (dt *DominatorTree) computeIdom(entry *BasicBlock) {
	dt.idom[entry] = entry

	rpo := make([]*BasicBlock, len(dt.postorder))
	for i, b := range dt.postorder {
		rpo[len(dt.postorder)-1-i] = b
	}

	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == entry {
				continue
			}
			var newIdom *BasicBlock
			for _, pred := range b.Predecessors {
				if dt.idom[pred] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = pred
					continue
				}
				newIdom = dt.intersect(newIdom, pred)
			}
			if newIdom != nil && dt.idom[b] != newIdom {
				dt.idom[b] = newIdom
				changed = true
			}
		}
	}
}

func (dt *DominatorTree) intersect(a, b *BasicBlock) *BasicBlock {
	for a != b {
		for dt.blockIndex[a] < dt.blockIndex[b] {
			a = dt.idom[a]
		}
		for dt.blockIndex[b] < dt.blockIndex[a] {
			b = dt.idom[b]
		}
	}
	return a
}

func (dt *DominatorTree) computeChildren() {
	for b, idom := range dt.idom {
		if b == idom {
			continue
		}
		dt.children[idom] = append(dt.children[idom], b)
	}
}

// computeFrontiers follows the standard definition: b is in the
// dominance frontier of n if n dominates a predecessor of b but n does
// not strictly dominate b itself.
func (dt *DominatorTree) computeFrontiers() {
	for _, b := range dt.postorder {
		if len(b.Predecessors) < 2 {
			continue
		}
		for _, pred := range b.Predecessors {
			if dt.idom[pred] == nil {
				continue
			}
			runner := pred
			for runner != dt.idom[b] {
				dt.frontier[runner] = appendUnique(dt.frontier[runner], b)
				runner = dt.idom[runner]
			}
		}
	}
}

func appendUnique(list []*BasicBlock, b *BasicBlock) []*BasicBlock {
	for _, existing := range list {
		if existing == b {
			return list
		}
	}
	return append(list, b)
}

// IDom returns b's immediate dominator, or nil if b is unreachable or is
// the entry block.
func (dt *DominatorTree) IDom(b *BasicBlock) *BasicBlock {
	idom := dt.idom[b]
	if idom == b {
		return nil
	}
	return idom
}

// Dominates reports whether a dominates b (reflexively: a dominates a).
func (dt *DominatorTree) Dominates(a, b *BasicBlock) bool {
	for cur := b; ; {
		if cur == a {
			return true
		}
		next := dt.idom[cur]
		if next == nil || next == cur {
			return cur == a
		}
		cur = next
	}
}

// Frontier returns the dominance frontier of b.
func (dt *DominatorTree) Frontier(b *BasicBlock) []*BasicBlock {
	return dt.frontier[b]
}

// Children returns the immediate-dominator-tree children of b.
func (dt *DominatorTree) Children(b *BasicBlock) []*BasicBlock {
	return dt.children[b]
}

// Reachable reports whether b was reached from the entry block.
func (dt *DominatorTree) Reachable(b *BasicBlock) bool {
	_, ok := dt.blockIndex[b]
	return ok
}

// PreorderBlocks walks the dominator tree in preorder starting at the
// entry block, the traversal order SSA renaming relies on.
func (dt *DominatorTree) PreorderBlocks() []*BasicBlock {
	if dt.fn.Entry == nil {
		return nil
	}
	var order []*BasicBlock
	var visit func(b *BasicBlock)
	visit = func(b *BasicBlock) {
		order = append(order, b)
		for _, c := range dt.children[b] {
			visit(c)
		}
	}
	visit(dt.fn.Entry)
	return order
}
