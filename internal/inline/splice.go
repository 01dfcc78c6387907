package inline

import (
	"vela/internal/diagnostics"
	"vela/internal/ir"
)

// splice replaces the CallStatic at (callBlockID, cmdIdx) in fn with
// callee's body: callee's vars and upvalues append to fn's, callee's
// blocks are inserted at callBlockID (the call block becomes the first
// spliced block), and every jump target in both caller and callee is
// renumbered to match. It returns where the caller's scan should resume.
func splice(fn *ir.Function, callBlockID ir.BlockID, cmdIdx int, call *ir.CallStatic, callee *ir.Function) (ir.BlockID, int) {
	varBase := len(fn.Vars)
	remapVar := func(id ir.VarID) ir.VarID { return ir.VarID(varBase) + id }
	for _, v := range callee.Vars {
		fn.Vars = append(fn.Vars, &ir.Var{Name: v.Name, Typ: v.Typ, Loc: v.Loc})
	}

	upvalBase := len(fn.CapturedVars)
	remapUpval := func(id ir.UpvalueID) ir.UpvalueID { return ir.UpvalueID(upvalBase) + id }
	for _, u := range callee.CapturedVars {
		fn.CapturedVars = append(fn.CapturedVars, &ir.Upvalue{Name: u.Name, Typ: u.Typ, Loc: u.Loc})
	}

	if len(callee.FIDOfLocal) > 0 {
		if fn.FIDOfLocal == nil {
			fn.FIDOfLocal = make(map[ir.VarID]ir.FuncID)
		}
		for oldID, target := range callee.FIDOfLocal {
			fn.FIDOfLocal[remapVar(oldID)] = target
		}
	}
	if len(callee.FIDOfUpvalue) > 0 {
		if fn.FIDOfUpvalue == nil {
			fn.FIDOfUpvalue = make(map[ir.UpvalueID]ir.FuncID)
		}
		for oldID, target := range callee.FIDOfUpvalue {
			fn.FIDOfUpvalue[remapUpval(oldID)] = target
		}
	}

	numCalleeBlocks := len(callee.Blocks) - 1
	remapBlock := func(id ir.BlockID) ir.BlockID { return id + (callBlockID - 1) }
	remapValue := func(v ir.Value) ir.Value { return remapValueImpl(v, remapVar, remapUpval) }

	clonedBlocks := make([][]ir.Cmd, numCalleeBlocks+1)
	for i := 1; i <= numCalleeBlocks; i++ {
		src := callee.Block(ir.BlockID(i))
		cmds := make([]ir.Cmd, len(src.Cmds))
		for j, cmd := range src.Cmds {
			cmds[j] = cloneCmd(cmd, remapVar, remapValue, remapBlock)
		}
		clonedBlocks[i] = cmds
	}

	for _, loop := range callee.ForLoops {
		fn.ForLoops = append(fn.ForLoops, &ir.Loop{
			PrepBlock:      remapBlock(loop.PrepBlock),
			BodyFirstBlock: remapBlock(loop.BodyFirstBlock),
			BodyLastBlock:  remapBlock(loop.BodyLastBlock),
			IterVar:        remapVar(loop.IterVar),
			Limit:          remapValue(loop.Limit),
			StepIsPositive: loop.StepIsPositive,
			Loc:            loop.Loc,
		})
	}

	for i := 1; i < len(fn.Blocks); i++ {
		ir.ShiftJumpTargets(fn.Block(ir.BlockID(i)), callBlockID+1, numCalleeBlocks-1)
	}

	for i := 2; i <= numCalleeBlocks; i++ {
		at := callBlockID + ir.BlockID(i-1)
		ir.InsertBlock(fn, at, &ir.BasicBlock{Cmds: clonedBlocks[i]})
	}

	argMoves := make([]ir.Cmd, len(call.Srcs))
	for i, src := range call.Srcs {
		argMoves[i] = &ir.Move{
			Loc: call.Loc,
			Dst: remapVar(ir.VarID(i + 1)),
			Src: src,
		}
	}
	retMoves := make([]ir.Cmd, len(call.Dsts))
	for k, dst := range call.Dsts {
		retMoves[k] = &ir.Move{
			Loc: call.Loc,
			Dst: dst,
			Src: ir.LocalVar{ID: remapVar(callee.RetVars[k])},
		}
	}

	callBlock := fn.Block(callBlockID)
	preCmds := append([]ir.Cmd{}, callBlock.Cmds[:cmdIdx]...)
	postCmds := append([]ir.Cmd{}, callBlock.Cmds[cmdIdx+1:]...)

	firstBody := clonedBlocks[1]

	var resumeBlockID ir.BlockID
	var resumeCmd int

	if numCalleeBlocks == 1 {
		final := make([]ir.Cmd, 0, len(preCmds)+len(argMoves)+len(firstBody)+len(retMoves)+len(postCmds))
		final = append(final, preCmds...)
		final = append(final, argMoves...)
		final = append(final, firstBody...)
		final = append(final, retMoves...)
		final = append(final, postCmds...)
		callBlock.Cmds = final
		resumeBlockID = callBlockID
		resumeCmd = len(preCmds) + len(argMoves) + len(firstBody)
	} else {
		firstFinal := make([]ir.Cmd, 0, len(preCmds)+len(argMoves)+len(firstBody))
		firstFinal = append(firstFinal, preCmds...)
		firstFinal = append(firstFinal, argMoves...)
		firstFinal = append(firstFinal, firstBody...)
		callBlock.Cmds = firstFinal

		lastBlockID := callBlockID + ir.BlockID(numCalleeBlocks-1)
		lastBlock := fn.Block(lastBlockID)
		lastFinal := make([]ir.Cmd, 0, len(lastBlock.Cmds)+len(retMoves)+len(postCmds))
		lastFinal = append(lastFinal, lastBlock.Cmds...)
		lastFinal = append(lastFinal, retMoves...)
		lastFinal = append(lastFinal, postCmds...)
		lastBlock.Cmds = lastFinal

		resumeBlockID = lastBlockID
		resumeCmd = len(lastBlock.Cmds) - len(postCmds)
	}

	return resumeBlockID, resumeCmd
}

func remapValueImpl(v ir.Value, remapVar func(ir.VarID) ir.VarID, remapUpval func(ir.UpvalueID) ir.UpvalueID) ir.Value {
	switch val := v.(type) {
	case ir.LocalVar:
		return ir.LocalVar{ID: remapVar(val.ID)}
	case ir.UpvalueRef:
		return ir.UpvalueRef{ID: remapUpval(val.ID)}
	default:
		return v
	}
}

// cloneCmd builds an independent copy of cmd with every var-id,
// upvalue-id and jump target renumbered through the given maps, so the
// same callee can be spliced into more than one call site without
// aliasing mutable state between the copies.
func cloneCmd(cmd ir.Cmd, rv func(ir.VarID) ir.VarID, rval func(ir.Value) ir.Value, rb func(ir.BlockID) ir.BlockID) ir.Cmd {
	switch c := cmd.(type) {
	case *ir.Move:
		return &ir.Move{Loc: c.Loc, Dst: rv(c.Dst), Src: rval(c.Src)}
	case *ir.CallStatic:
		dsts := make([]ir.VarID, len(c.Dsts))
		for i, d := range c.Dsts {
			dsts[i] = rv(d)
		}
		srcs := make([]ir.Value, len(c.Srcs))
		for i, s := range c.Srcs {
			srcs[i] = rval(s)
		}
		return &ir.CallStatic{Loc: c.Loc, Dsts: dsts, SrcF: rval(c.SrcF), Srcs: srcs}
	case *ir.CallDyn:
		dsts := make([]ir.VarID, len(c.Dsts))
		for i, d := range c.Dsts {
			dsts[i] = rv(d)
		}
		srcs := make([]ir.Value, len(c.Srcs))
		for i, s := range c.Srcs {
			srcs[i] = rval(s)
		}
		return &ir.CallDyn{Loc: c.Loc, Dsts: dsts, SrcF: rval(c.SrcF), Srcs: srcs}
	case *ir.NewArr:
		return &ir.NewArr{Loc: c.Loc, Dst: rv(c.Dst), SrcSize: rval(c.SrcSize), Elem: c.Elem}
	case *ir.GetArr:
		return &ir.GetArr{Loc: c.Loc, Dst: rv(c.Dst), SrcArr: rval(c.SrcArr), SrcI: rval(c.SrcI)}
	case *ir.SetArr:
		return &ir.SetArr{Loc: c.Loc, SrcArr: rval(c.SrcArr), SrcI: rval(c.SrcI), SrcV: rval(c.SrcV)}
	case *ir.RenormArr:
		return &ir.RenormArr{Loc: c.Loc, SrcArr: rval(c.SrcArr), SrcI: rval(c.SrcI)}
	case *ir.NewRecord:
		return &ir.NewRecord{Loc: c.Loc, Dst: rv(c.Dst), RecTyp: c.RecTyp}
	case *ir.SetField:
		return &ir.SetField{Loc: c.Loc, SrcRec: rval(c.SrcRec), SrcV: rval(c.SrcV), RecTyp: c.RecTyp, Field: c.Field}
	case *ir.InitUpvalues:
		srcs := make([]ir.Value, len(c.Srcs))
		for i, s := range c.Srcs {
			srcs[i] = rval(s)
		}
		return &ir.InitUpvalues{Loc: c.Loc, FID: c.FID, Srcs: srcs}
	case *ir.CheckGC:
		return &ir.CheckGC{Loc: c.Loc}
	case *ir.Jmp:
		return &ir.Jmp{Loc: c.Loc, Target: rb(c.Target)}
	case *ir.JmpIf:
		return &ir.JmpIf{Loc: c.Loc, Cond: rval(c.Cond), TargetTrue: rb(c.TargetTrue), TargetFalse: rb(c.TargetFalse)}
	case *ir.Nop:
		return &ir.Nop{Loc: c.Loc}
	default:
		diagnostics.Bug("inline: unrecognized command tag")
		return nil
	}
}
