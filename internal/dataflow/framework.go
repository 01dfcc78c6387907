// Package dataflow implements the generic worklist dataflow-analysis
// engine shared by every analysis/transform in this module: uninit,
// constprop, gcinfo, and renormalize each instantiate a Framework (or the
// SetFramework convenience built on top of it) rather than re-implementing
// the worklist loop.
package dataflow

import "vela/internal/ir"

// Direction selects which way a Framework propagates information through
// a function's CFG.
type Direction int

const (
	// Forward seeds the entry block and flows along Successors.
	Forward Direction = iota
	// Backward seeds the exit (last) block and flows along Predecessors.
	Backward
)

// Framework is a dataflow analysis over a single function, parameterized
// by the lattice element type T and the per-block result type R.
type Framework[T any, R any] struct {
	Direction Direction

	// Join merges an accumulator with one flow-predecessor's finish set,
	// returning the updated accumulator. Called once per flow predecessor
	// when computing a block's start value.
	Join func(acc T, elem T) T

	// Identity returns a fresh identity element for Join (the empty set
	// for Union, the universe for Intersection, Undef-everywhere for the
	// constant-propagation lattice, ...).
	Identity func() T

	// EntryValue returns the value seeded into the designated entry
	// block's start (block 1 for Forward, the last block for Backward).
	EntryValue func() T

	// MakeTransfer returns, for the given block, a function that merges
	// the freshly computed flow-predecessor join (held in scratch) across
	// the block's commands and reports whether the block's finish set
	// changed as a result.
	MakeTransfer func(blockID ir.BlockID) func(scratch *T) (changed bool)

	// MakeResult builds the block's published result from (blockID,
	// start value).
	MakeResult func(blockID ir.BlockID, start T) R

	// Copy assigns src into *dst. Kept explicit (instead of relying on Go
	// value-copy semantics) so T may itself hold a pointer-backed
	// structure (e.g. an IntSet) that must be deep-copied on assignment,
	// per the "deep-copy discipline" design note: aliasing a lattice
	// value between blocks would let one block's later in-place mutation
	// corrupt another's already-published result.
	Copy func(dst *T, src T)
}

// Run executes the worklist algorithm over fn's blocks in the given
// visiting order (ir.TopoForward(fn) or ir.TopoBackward(fn), matching
// f.Direction) and returns the per-block results.
func (f *Framework[T, R]) Run(fn *ir.Function, order []ir.BlockID) map[ir.BlockID]R {
	n := len(fn.Blocks)
	start := make(map[ir.BlockID]T, n)
	finish := make(map[ir.BlockID]T, n)
	dirty := make(map[ir.BlockID]bool, n)

	for i := 1; i < n; i++ {
		id := ir.BlockID(i)
		var s, fi T
		f.Copy(&s, f.Identity())
		f.Copy(&fi, f.Identity())
		start[id] = s
		finish[id] = fi
		dirty[id] = true
	}

	var entryID ir.BlockID
	if f.Direction == Forward {
		entryID = ir.EntryBlockID
	} else {
		entryID = fn.LastBlockID()
	}
	var seeded T
	f.Copy(&seeded, f.EntryValue())
	start[entryID] = seeded

	flowPreds := ir.Predecessors
	flowSuccs := ir.Successors
	if f.Direction == Backward {
		flowPreds = ir.Successors
		flowSuccs = ir.Predecessors
	}

	for {
		anyDirty := false
		for _, id := range order {
			if !dirty[id] {
				continue
			}
			anyDirty = true
			dirty[id] = false

			var scratch T
			if id == entryID {
				// The entry block's start is the seeded entry value, not
				// the join of its (by invariant, empty) predecessor set:
				// re-deriving it from flowPreds here would silently
				// replace entry_value with identity the moment this
				// block is (re)visited.
				f.Copy(&scratch, start[entryID])
			} else {
				f.Copy(&scratch, f.Identity())
				for _, p := range flowPreds(fn, id) {
					scratch = f.Join(scratch, finish[p])
				}
				f.Copy(&start[id], scratch)
			}

			step := f.MakeTransfer(id)
			if step(&scratch) {
				f.Copy(&finish[id], scratch)
				for _, s := range flowSuccs(fn, id) {
					dirty[s] = true
				}
			}
		}
		if !anyDirty {
			break
		}
	}

	results := make(map[ir.BlockID]R, n)
	for i := 1; i < n; i++ {
		id := ir.BlockID(i)
		results[id] = f.MakeResult(id, start[id])
	}
	return results
}
