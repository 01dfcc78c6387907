package gcinfo

import (
	"vela/internal/dataflow"
	"vela/internal/ir"
)

// definition is one write to a GC-typed var, identified by where it
// happens. Every GC-typed destination of every command gets its own
// definition, numbered densely so it can live in an IntSet.
type definition struct {
	Block ir.BlockID
	Cmd   int
	Var   ir.VarID
}

// collectDefinitions enumerates every GC-typed write in fn and groups
// the resulting definition-ids by the variable they define, which the
// reaching-definitions transfer needs to compute its kill set (a write
// kills every earlier definition of the same variable).
func collectDefinitions(fn *ir.Function) (defs []definition, byVar map[ir.VarID][]int) {
	byVar = make(map[ir.VarID][]int)
	for i := 1; i < len(fn.Blocks); i++ {
		blockID := ir.BlockID(i)
		for cmdIdx, cmd := range fn.Block(blockID).Cmds {
			for _, v := range gcTypedDestinations(fn, cmd) {
				id := len(defs)
				defs = append(defs, definition{Block: blockID, Cmd: cmdIdx, Var: v})
				byVar[v] = append(byVar[v], id)
			}
		}
	}
	return defs, byVar
}

// computeReachingDefs runs forward set-union reaching-definitions over
// GC-typed writes: a command kills every other definition of a variable
// it redefines and gens the definition-ids it creates itself.
func computeReachingDefs(fn *ir.Function) (defs []definition, results map[ir.BlockID]dataflow.BlockCmdResult) {
	defs, byVar := collectDefinitions(fn)

	defIDAt := func(blockID ir.BlockID, cmdIdx int, v ir.VarID) (int, bool) {
		for _, id := range byVar[v] {
			d := defs[id]
			if d.Block == blockID && d.Cmd == cmdIdx {
				return id, true
			}
		}
		return 0, false
	}

	sf := &dataflow.SetFramework{
		Direction:        dataflow.Forward,
		SetOp:            dataflow.Union,
		EntryConstantSet: dataflow.NewIntSet(1),
		CmdTransfer: func(blockID ir.BlockID, cmdIdx int, gk *dataflow.GenKill) {
			cmd := fn.Block(blockID).Cmds[cmdIdx]
			gen := dataflow.NewIntSet(4)
			kill := dataflow.NewIntSet(4)
			for _, v := range gcTypedDestinations(fn, cmd) {
				for _, id := range byVar[v] {
					kill.Add(id)
				}
				if id, ok := defIDAt(blockID, cmdIdx, v); ok {
					gen.Add(id)
					kill.Remove(id)
				}
			}
			gk.Gen = gen
			gk.Kill = kill
		},
	}
	fw := sf.Build(fn)
	return defs, fw.Run(fn, ir.TopoForward(fn))
}

// gcSafeMirrorSets marks, for every GC-typed definition that reaches a
// downstream GC-safe command, that its own defining command must mirror
// the variable to the host stack: vars_to_mirror is indexed by the
// definition's own (block, cmd), not by the safepoint it reaches.
func gcSafeMirrorSets(fn *ir.Function, defs []definition, reaching map[ir.BlockID]dataflow.BlockCmdResult) map[CmdRef][]ir.VarID {
	marked := make(map[CmdRef]map[ir.VarID]bool)
	for i := 1; i < len(fn.Blocks); i++ {
		blockID := ir.BlockID(i)
		blk := fn.Block(blockID)
		res := reaching[blockID]
		for cmdIdx, cmd := range blk.Cmds {
			if !ir.IsGCSafePoint(cmd) {
				continue
			}
			for _, id := range res.Cmds[cmdIdx].ToSortedSlice() {
				d := defs[id]
				ref := CmdRef{Block: d.Block, Cmd: d.Cmd}
				if marked[ref] == nil {
					marked[ref] = make(map[ir.VarID]bool)
				}
				marked[ref][d.Var] = true
			}
		}
	}

	out := make(map[CmdRef][]ir.VarID, len(marked))
	for ref, vars := range marked {
		list := make([]ir.VarID, 0, len(vars))
		for v := range vars {
			list = append(list, v)
		}
		out[ref] = sortVarIDs(list)
	}
	return out
}
