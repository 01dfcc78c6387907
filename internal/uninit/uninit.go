// Package uninit implements the forward may-be-uninitialized analysis and
// its two user-facing diagnostics: use of a variable before any write
// reaches it, and falling off the end of a function with a non-empty
// return type without having written its first return variable.
package uninit

import (
	"vela/internal/dataflow"
	"vela/internal/diagnostics"
	"vela/internal/ir"
)

// Analyze runs the analysis over fn and reports every diagnostic into
// sink. Per the owning spec, diagnostics are accumulated rather than
// returned, so the caller can run uninit over every function in a module
// and reject the module only once, after seeing them all.
func Analyze(fn *ir.Function, sink *diagnostics.Sink) {
	entry := dataflow.NewIntSet(len(fn.Vars))
	numParams := fn.NumParams()
	for i := numParams + 1; i <= len(fn.Vars); i++ {
		entry.Add(int(i))
	}

	sf := &dataflow.SetFramework{
		Direction:        dataflow.Forward,
		SetOp:            dataflow.Union,
		EntryConstantSet: entry,
		CmdTransfer:      makeCmdTransfer(fn),
	}
	fw := sf.Build(fn)
	results := fw.Run(fn, ir.TopoForward(fn))

	reported := dataflow.NewIntSet(8)
	for i := 1; i < len(fn.Blocks); i++ {
		blockID := ir.BlockID(i)
		blk := fn.Block(blockID)
		res := results[blockID]
		for cmdIdx, cmd := range blk.Cmds {
			before := res.Cmds[cmdIdx]
			checkReads(fn, cmd, before, sink, reported)
		}
	}

	reportMissingReturn(fn, results, sink)
}

// makeCmdTransfer builds the gen/kill summary for each command: a write
// kills the destination var-id, except that allocating an upvalue box
// (NewRecord of an IsUpvalueBox record type) does not initialize the
// boxed variable — only the later SetField that stores into the box does.
func makeCmdTransfer(fn *ir.Function) func(ir.BlockID, int, *dataflow.GenKill) {
	return func(blockID ir.BlockID, cmdIdx int, gk *dataflow.GenKill) {
		cmd := fn.Block(blockID).Cmds[cmdIdx]

		if sf, ok := cmd.(*ir.SetField); ok {
			if varID, isInit := sf.IsUpvalueBoxInit(); isInit {
				gk.Kill.Add(int(varID))
				return
			}
		}

		if nr, ok := cmd.(*ir.NewRecord); ok && nr.RecTyp != nil && nr.RecTyp.IsUpvalueBox {
			// Allocating an upvalue box does not initialize it: the box
			// var-id stays in the may-be-uninitialized set until the
			// SetField above kills it. A non-box NewRecord still falls
			// through to the general kill below.
			return
		}

		for _, dst := range cmd.Destinations() {
			gk.Kill.Add(int(dst))
		}
	}
}

// checkReads reports a use-before-init diagnostic for every LocalVar
// source of cmd that is still in the pre-command uninitialized set,
// applying the upvalue-box carve-out: for the initializing SetField, the
// read to check is the stored value (SrcV), not the box being written
// (SrcRec).
func checkReads(fn *ir.Function, cmd ir.Cmd, before dataflow.IntSet, sink *diagnostics.Sink, reported dataflow.IntSet) {
	if sf, ok := cmd.(*ir.SetField); ok {
		if _, isInit := sf.IsUpvalueBoxInit(); isInit {
			reportIfUninit(fn, sf.SrcV, before, cmd.Location(), sink, reported)
			return
		}
	}

	for _, src := range cmd.Sources() {
		reportIfUninit(fn, src, before, cmd.Location(), sink, reported)
	}
}

func reportIfUninit(fn *ir.Function, v ir.Value, before dataflow.IntSet, loc ir.Pos, sink *diagnostics.Sink, reported dataflow.IntSet) {
	lv, ok := v.(ir.LocalVar)
	if !ok {
		return
	}
	if !before.Has(int(lv.ID)) {
		return
	}
	if reported.Has(int(lv.ID)) {
		return
	}
	reported.Add(int(lv.ID))
	sink.UseBeforeInitf(fn.Var(lv.ID).Name, loc)
}

// reportMissingReturn emits the exit-block diagnostic when the function
// promises a non-empty return type but its first return variable is still
// possibly-uninitialized in the exit block's finish set.
func reportMissingReturn(fn *ir.Function, results map[ir.BlockID]dataflow.BlockCmdResult, sink *diagnostics.Sink) {
	if len(fn.Typ.RetTypes) == 0 || len(fn.RetVars) == 0 {
		return
	}
	exit := fn.LastBlockID()
	finish := results[exit].Finish
	if finish.Has(int(fn.RetVars[0])) {
		sink.MissingReturnf(fn.Loc)
	}
}
