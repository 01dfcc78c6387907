// Package inline splices statically-resolvable callees directly into
// their caller, eliminating the call.
package inline

import "vela/internal/ir"

// Inline inlines every resolvable, non-recursive CallStatic in every
// function of mod, in declaration order, and returns the total number of
// calls inlined.
func Inline(mod *ir.Module) int {
	total := 0
	for fid, fn := range mod.Functions {
		total += function(mod, ir.FuncID(fid), fn, map[ir.FuncID]bool{})
	}
	return total
}

// function fully inlines fn's resolvable calls, recursively inlining a
// callee into itself first so its body is already flat by the time it
// is spliced into fn. stack holds the function-ids currently being
// inlined on this call chain; a callee already on it is left as a call
// (inlining it would not terminate).
func function(mod *ir.Module, selfID ir.FuncID, fn *ir.Function, stack map[ir.FuncID]bool) int {
	stack[selfID] = true
	defer delete(stack, selfID)

	count := 0
	blockID := ir.EntryBlockID
	cmdIdx := 0
	for int(blockID) < len(fn.Blocks) {
		blk := fn.Block(blockID)
		if cmdIdx >= len(blk.Cmds) {
			blockID++
			cmdIdx = 0
			continue
		}
		call, ok := blk.Cmds[cmdIdx].(*ir.CallStatic)
		if !ok {
			cmdIdx++
			continue
		}
		calleeID, ok := resolveCallee(fn, call.SrcF)
		if !ok || stack[calleeID] || int(calleeID) < 0 || int(calleeID) >= len(mod.Functions) {
			cmdIdx++
			continue
		}

		callee := mod.Functions[calleeID]
		count += function(mod, calleeID, callee, stack)

		resumeBlock, resumeCmd := splice(fn, blockID, cmdIdx, call, callee)
		count++
		blockID, cmdIdx = resumeBlock, resumeCmd
	}
	return count
}

func resolveCallee(fn *ir.Function, srcF ir.Value) (ir.FuncID, bool) {
	switch v := srcF.(type) {
	case ir.UpvalueRef:
		fid, ok := fn.FIDOfUpvalue[v.ID]
		return fid, ok
	case ir.LocalVar:
		fid, ok := fn.FIDOfLocal[v.ID]
		return fid, ok
	default:
		return 0, false
	}
}
