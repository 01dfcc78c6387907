// Package renormalize hoists RenormArr preparation out of counted loops
// when the array is allocated outside the loop and never touched inside
// it, eliminating one redundant renormalization per iteration.
package renormalize

import (
	"sort"

	"vela/internal/dataflow"
	"vela/internal/ir"
)

// Optimize processes every counted loop recorded on fn and returns the
// number of RenormArr commands it hoisted to a pre-header, across all
// loops.
func Optimize(fn *ir.Function) int {
	count := 0
	for _, loop := range fn.ForLoops {
		count += optimizeLoop(fn, loop)
	}
	return count
}

func inBody(loop *ir.Loop, id ir.BlockID) bool {
	return id >= loop.BodyFirstBlock && id <= loop.BodyLastBlock
}

// trackedArrays runs the forward intersection dataflow of §4.5: a var is
// tracked at a point if it currently names an array allocated outside
// the loop that nothing has touched since.
func trackedArrays(fn *ir.Function, loop *ir.Loop) map[ir.BlockID]dataflow.BlockCmdResult {
	sf := &dataflow.SetFramework{
		Direction:        dataflow.Forward,
		SetOp:            dataflow.Intersection,
		Universe:         allVarIDs(fn),
		EntryConstantSet: dataflow.NewIntSet(1),
		CmdTransfer: func(blockID ir.BlockID, cmdIdx int, gk *dataflow.GenKill) {
			cmd := fn.Block(blockID).Cmds[cmdIdx]
			kill := dataflow.NewIntSet(4)

			if !preservesArrayTracking(cmd) {
				for _, src := range cmd.Sources() {
					if lv, ok := src.(ir.LocalVar); ok {
						kill.Add(int(lv.ID))
					}
				}
			}
			for _, d := range cmd.Destinations() {
				kill.Add(int(d))
			}

			gen := dataflow.NewIntSet(1)
			if !inBody(loop, blockID) {
				if na, ok := cmd.(*ir.NewArr); ok {
					gen.Add(int(na.Dst))
					kill.Remove(int(na.Dst))
				}
			}
			gk.Gen = gen
			gk.Kill = kill
		},
	}
	fw := sf.Build(fn)
	return fw.Run(fn, ir.TopoForward(fn))
}

// preservesArrayTracking reports whether cmd is one of the three array
// operations exempted from the generic "any LocalVar source disqualifies
// it" rule: reading or indexing an array does not disturb its identity.
func preservesArrayTracking(cmd ir.Cmd) bool {
	switch cmd.(type) {
	case *ir.RenormArr, *ir.GetArr, *ir.SetArr:
		return true
	default:
		return false
	}
}

func allVarIDs(fn *ir.Function) dataflow.IntSet {
	s := dataflow.NewIntSet(len(fn.Vars) + 1)
	for i := range fn.Vars {
		s.Add(i + 1)
	}
	return s
}

// optimizeLoop hoists every safely-hoistable RenormArr out of loop's body
// and returns how many it moved.
func optimizeLoop(fn *ir.Function, loop *ir.Loop) int {
	results := trackedArrays(fn, loop)

	cannotOptimize := make(map[ir.VarID]bool)
	iterVarWritten := false
	for id := loop.BodyFirstBlock; id <= loop.BodyLastBlock; id++ {
		blk := fn.Block(id)
		res := results[id]
		for cmdIdx, cmd := range blk.Cmds {
			for _, d := range cmd.Destinations() {
				if d == loop.IterVar {
					iterVarWritten = true
				}
			}
			renorm, ok := cmd.(*ir.RenormArr)
			if !ok {
				continue
			}
			arr, ok := renorm.SrcArr.(ir.LocalVar)
			if !ok {
				continue
			}
			notIterIndex := !isIterVar(renorm.SrcI, loop.IterVar)
			notTracked := !res.Cmds[cmdIdx].Has(int(arr.ID))
			if notIterIndex || notTracked {
				cannotOptimize[arr.ID] = true
			}
		}
	}

	arraysToOptimize := make(map[ir.VarID]bool)
	for id := loop.BodyFirstBlock; id <= loop.BodyLastBlock; id++ {
		blk := fn.Block(id)
		for cmdIdx, cmd := range blk.Cmds {
			renorm, ok := cmd.(*ir.RenormArr)
			if !ok {
				continue
			}
			arr, ok := renorm.SrcArr.(ir.LocalVar)
			if !ok {
				continue
			}
			if iterVarWritten || cannotOptimize[arr.ID] {
				continue
			}
			blk.Cmds[cmdIdx] = &ir.Nop{Loc: renorm.Loc}
			arraysToOptimize[arr.ID] = true
		}
	}

	if len(arraysToOptimize) == 0 {
		return 0
	}
	hoistPreheader(fn, loop, arraysToOptimize)
	return len(arraysToOptimize)
}

func isIterVar(v ir.Value, iterVar ir.VarID) bool {
	lv, ok := v.(ir.LocalVar)
	return ok && lv.ID == iterVar
}

// hoistPreheader inserts a new block right after loop.PrepBlock holding
// one RenormArr per hoisted array followed by a Jmp into the loop body,
// and retargets the prep block's true edge onto it.
func hoistPreheader(fn *ir.Function, loop *ir.Loop, arrays map[ir.VarID]bool) {
	ids := make([]ir.VarID, 0, len(arrays))
	for id := range arrays {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	newBlockID := loop.PrepBlock + 1

	for i := 1; i < len(fn.Blocks); i++ {
		ir.ShiftJumpTargets(fn.Block(ir.BlockID(i)), newBlockID, 1)
	}
	for _, l := range fn.ForLoops {
		if l.PrepBlock >= newBlockID {
			l.PrepBlock++
		}
		if l.BodyFirstBlock >= newBlockID {
			l.BodyFirstBlock++
		}
		if l.BodyLastBlock >= newBlockID {
			l.BodyLastBlock++
		}
	}

	cmds := make([]ir.Cmd, 0, len(ids)+1)
	for _, arr := range ids {
		cmds = append(cmds, &ir.RenormArr{
			Loc:    loop.Loc,
			SrcArr: ir.LocalVar{ID: arr},
			SrcI:   loop.Limit,
		})
	}
	cmds = append(cmds, &ir.Jmp{Loc: loop.Loc, Target: loop.BodyFirstBlock})

	ir.InsertBlock(fn, newBlockID, &ir.BasicBlock{Cmds: cmds})

	prep := fn.Block(loop.PrepBlock)
	if jmpIf, ok := prep.Terminator().(*ir.JmpIf); ok {
		jmpIf.TargetTrue = newBlockID
	}
}
