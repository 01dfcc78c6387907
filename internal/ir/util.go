package ir

// Sources returns every Value read by cmd. Thin wrapper kept for symmetry
// with Destinations/Jumps; most callers use cmd.Sources() directly.
func Sources(cmd Cmd) []Value { return cmd.Sources() }

// Destinations returns every VarID written by cmd.
func Destinations(cmd Cmd) []VarID { return cmd.Destinations() }

// Jumps returns every BlockID cmd may transfer control to.
func Jumps(cmd Cmd) []BlockID { return cmd.JumpTargets() }

// Successors returns the blocks id can transfer control to directly: the
// jump targets of its terminator, or the next block in sequence if it
// falls through (every block but the last falls through to id+1 when it
// has no terminator).
func Successors(fn *Function, id BlockID) []BlockID {
	blk := fn.Block(id)
	if term := blk.Terminator(); term != nil {
		return term.JumpTargets()
	}
	if id == fn.LastBlockID() {
		return nil
	}
	return []BlockID{id + 1}
}

// Predecessors returns every block with id among its Successors. Computed
// once per function and cached; the cache is invalidated by InsertBlock,
// since splicing/hoisting change the CFG shape.
func Predecessors(fn *Function, id BlockID) []BlockID {
	if fn.predsCache == nil {
		buildPredsCache(fn)
	}
	return fn.predsCache[id]
}

func buildPredsCache(fn *Function) {
	fn.predsCache = make(map[BlockID][]BlockID, len(fn.Blocks))
	for i := 1; i < len(fn.Blocks); i++ {
		id := BlockID(i)
		for _, succ := range Successors(fn, id) {
			fn.predsCache[succ] = append(fn.predsCache[succ], id)
		}
	}
}

func invalidatePredsCache(fn *Function) {
	fn.predsCache = nil
}

// TopoForward returns a depth-first post-order-reversed traversal over
// Successors starting from the entry block, suitable as the worklist
// visiting order for a Forward dataflow framework. Unreachable blocks are
// appended afterward in id order so every block still gets a result.
func TopoForward(fn *Function) []BlockID {
	return topoOrder(fn, EntryBlockID, Successors)
}

// TopoBackward returns the analogous order over Predecessors starting
// from the last (exit) block, for a Backward dataflow framework.
func TopoBackward(fn *Function) []BlockID {
	return topoOrder(fn, fn.LastBlockID(), Predecessors)
}

func topoOrder(fn *Function, start BlockID, adj func(*Function, BlockID) []BlockID) []BlockID {
	visited := make(map[BlockID]bool, len(fn.Blocks))
	var postorder []BlockID

	var visit func(BlockID)
	visit = func(id BlockID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, next := range adj(fn, id) {
			visit(next)
		}
		postorder = append(postorder, id)
	}
	visit(start)

	order := make([]BlockID, len(postorder))
	for i, id := range postorder {
		order[len(postorder)-1-i] = id
	}

	for i := 1; i < len(fn.Blocks); i++ {
		id := BlockID(i)
		if !visited[id] {
			order = append(order, id)
		}
	}
	return order
}

// InsertBlock inserts blk at position at (1-based): blk becomes block id
// at, and every existing block whose id was >= at shifts up by one. Every
// Jmp/JmpIf target >= at in the function (including inside blk itself, if
// the caller pre-shifted them) is NOT touched by this function — callers
// that insert a block in the interior of existing control flow must shift
// jump targets themselves before or after calling InsertBlock, per the
// splicing/hoisting rules of the inline and renormalize packages.
func InsertBlock(fn *Function, at BlockID, blk *BasicBlock) {
	blk.ID = at
	fn.Blocks = append(fn.Blocks, nil)
	copy(fn.Blocks[at+1:], fn.Blocks[at:len(fn.Blocks)-1])
	fn.Blocks[at] = blk
	for i := int(at) + 1; i < len(fn.Blocks); i++ {
		fn.Blocks[i].ID = BlockID(i)
	}
	invalidatePredsCache(fn)
}

// ShiftJumpTargets rewrites every Jmp/JmpIf target t in blk such that
// t >= threshold into t+delta. Used by the inliner and renormalize passes
// after splicing/inserting blocks to keep jump targets consistent.
func ShiftJumpTargets(blk *BasicBlock, threshold BlockID, delta int) {
	for i, cmd := range blk.Cmds {
		switch c := cmd.(type) {
		case *Jmp:
			if c.Target >= threshold {
				c.Target += BlockID(delta)
			}
		case *JmpIf:
			if c.TargetTrue >= threshold {
				c.TargetTrue += BlockID(delta)
			}
			if c.TargetFalse >= threshold {
				c.TargetFalse += BlockID(delta)
			}
		}
		_ = i
	}
}
