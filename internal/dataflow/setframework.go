package dataflow

import (
	"vela/internal/diagnostics"
	"vela/internal/ir"
)

// SetOp selects the join operation for a SetFramework.
type SetOp int

const (
	// Union is set union, identity = empty set.
	Union SetOp = iota
	// Intersection is "restriction to both", identity = the universe.
	Intersection
)

// GenKill is the (gen, kill) summary a CmdTransfer contributes for one
// command. The framework asserts Gen and Kill never share an element,
// per the owning spec's "gen and kill do not contain the same element"
// requirement; a violation is a compiler bug (see diagnostics.Bug), not a
// user-facing error.
type GenKill struct {
	Gen  IntSet
	Kill IntSet
}

// BlockCmdResult is the per-command snapshot a SetFramework publishes for
// one block: Cmds[i] is the set as seen immediately before executing
// command i (in the framework's Direction order), and Finish is the set
// after the last command.
type BlockCmdResult struct {
	Cmds   []IntSet
	Finish IntSet
}

// SetFramework configures a Framework[IntSet, BlockCmdResult] from a
// gen/kill command transfer instead of a hand-written MakeTransfer.
type SetFramework struct {
	Direction Direction
	SetOp     SetOp
	// Universe is required when SetOp is Intersection; it is the full
	// set every block's identity element starts from.
	Universe IntSet
	// EntryConstantSet seeds the designated entry block's start value.
	EntryConstantSet IntSet
	// CmdTransfer summarizes command cmdIdx of blockID into gk. Called
	// once per command, in the framework's Direction order, each time the
	// block is (re)visited.
	CmdTransfer func(blockID ir.BlockID, cmdIdx int, gk *GenKill)
}

// Build returns the equivalent generic Framework. Run it with
// ir.TopoForward(fn) or ir.TopoBackward(fn) matching sf.Direction.
func (sf *SetFramework) Build(fn *ir.Function) *Framework[IntSet, BlockCmdResult] {
	prevFinish := make(map[ir.BlockID]IntSet, len(fn.Blocks))

	identity := func() IntSet {
		if sf.SetOp == Intersection {
			return sf.Universe.Clone()
		}
		return NewIntSet(8)
	}

	join := func(acc IntSet, elem IntSet) IntSet {
		if sf.SetOp == Intersection {
			return acc.IntersectInto(elem)
		}
		return acc.UnionInto(elem)
	}

	return &Framework[IntSet, BlockCmdResult]{
		Direction:  sf.Direction,
		Join:       join,
		Identity:   identity,
		EntryValue: func() IntSet { return sf.EntryConstantSet.Clone() },
		Copy:       CopyIntSet,
		MakeTransfer: func(blockID ir.BlockID) func(scratch *IntSet) bool {
			blk := fn.Block(blockID)
			n := len(blk.Cmds)
			indices := make([]int, n)
			for i := range indices {
				if sf.Direction == Backward {
					indices[i] = n - 1 - i
				} else {
					indices[i] = i
				}
			}
			return func(scratch *IntSet) bool {
				set := *scratch
				for _, idx := range indices {
					var gk GenKill
					gk.Gen = NewIntSet(4)
					gk.Kill = NewIntSet(4)
					sf.CmdTransfer(blockID, idx, &gk)
					assertDisjoint(gk.Gen, gk.Kill)
					set = set.SubtractInto(gk.Kill)
					set = set.UnionInto(gk.Gen)
				}
				prev, ok := prevFinish[blockID]
				changed := !ok || !set.Equal(prev)
				prevFinish[blockID] = set.Clone()
				*scratch = set
				return changed
			}
		},
		MakeResult: func(blockID ir.BlockID, start IntSet) BlockCmdResult {
			blk := fn.Block(blockID)
			n := len(blk.Cmds)
			cmds := make([]IntSet, n)
			set := start.Clone()
			if sf.Direction == Forward {
				for i := 0; i < n; i++ {
					cmds[i] = set.Clone()
					applyOne(sf, blockID, i, &set)
				}
			} else {
				for i := n - 1; i >= 0; i-- {
					cmds[i] = set.Clone()
					applyOne(sf, blockID, i, &set)
				}
			}
			return BlockCmdResult{Cmds: cmds, Finish: set}
		},
	}
}

func applyOne(sf *SetFramework, blockID ir.BlockID, idx int, set *IntSet) {
	var gk GenKill
	gk.Gen = NewIntSet(4)
	gk.Kill = NewIntSet(4)
	sf.CmdTransfer(blockID, idx, &gk)
	assertDisjoint(gk.Gen, gk.Kill)
	*set = set.SubtractInto(gk.Kill)
	*set = set.UnionInto(gk.Gen)
}

func assertDisjoint(gen, kill IntSet) {
	for _, v := range gen.ToSortedSlice() {
		if kill.Has(v) {
			diagnostics.Bug("dataflow: gen and kill sets contain the same element")
		}
	}
}
