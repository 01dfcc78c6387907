package gcinfo

import (
	"vela/internal/dataflow"
	"vela/internal/ir"
)

// computeLiveness runs backward set-union liveness over GC-typed
// variables: entry-constant set (seeded at the exit block) is the
// function's return vars; each command kills its GC-typed destinations
// then gens its GC-typed LocalVar sources.
func computeLiveness(fn *ir.Function) map[ir.BlockID]dataflow.BlockCmdResult {
	entry := dataflow.NewIntSet(len(fn.RetVars) + 1)
	for _, v := range fn.RetVars {
		if isGCVar(fn, v) {
			entry.Add(int(v))
		}
	}

	sf := &dataflow.SetFramework{
		Direction:        dataflow.Backward,
		SetOp:            dataflow.Union,
		EntryConstantSet: entry,
		CmdTransfer: func(blockID ir.BlockID, cmdIdx int, gk *dataflow.GenKill) {
			cmd := fn.Block(blockID).Cmds[cmdIdx]
			gk.Kill = intSetOf(fn, gcTypedDestinations(fn, cmd))
			gk.Gen = intSetOf(fn, gcTypedLocalSources(fn, cmd))
		},
	}
	fw := sf.Build(fn)
	return fw.Run(fn, ir.TopoBackward(fn))
}

// gcSafeLiveSets extracts, for every GC-safe command, the set of
// GC-typed vars live immediately after it. Because the SetFramework's
// per-command snapshot is taken "before executing that command in
// direction order", and a Backward analysis's direction order visits a
// block's commands from last to first, Cmds[i] for a Backward result is
// exactly the set as it stood right after command i finished in normal
// program order — i.e. "live after cmd i" — with no index shift needed.
func gcSafeLiveSets(fn *ir.Function, liveness map[ir.BlockID]dataflow.BlockCmdResult) map[CmdRef][]ir.VarID {
	out := make(map[CmdRef][]ir.VarID)
	for i := 1; i < len(fn.Blocks); i++ {
		blockID := ir.BlockID(i)
		blk := fn.Block(blockID)
		res := liveness[blockID]
		for cmdIdx, cmd := range blk.Cmds {
			if !ir.IsGCSafePoint(cmd) {
				continue
			}
			out[CmdRef{Block: blockID, Cmd: cmdIdx}] = varIDSlice(res.Cmds[cmdIdx])
		}
	}
	return out
}

func varIDSlice(s dataflow.IntSet) []ir.VarID {
	ints := s.ToSortedSlice()
	out := make([]ir.VarID, len(ints))
	for i, v := range ints {
		out[i] = ir.VarID(v)
	}
	return out
}
