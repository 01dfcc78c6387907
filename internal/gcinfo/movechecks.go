package gcinfo

import "vela/internal/ir"

// barrier reports whether cmd is a point CheckGC movement may anchor on:
// a call (already a safepoint on its own) or the block's terminator.
func barrier(cmd ir.Cmd) bool {
	switch cmd.(type) {
	case *ir.CallStatic, *ir.CallDyn, *ir.Jmp, *ir.JmpIf:
		return true
	default:
		return false
	}
}

// MoveChecks removes every CheckGC from every block and reinserts a
// single one immediately before the next barrier command, or at the
// block's end if the block has none. Calls are already GC-safe points,
// so coalescing every loose CheckGC onto the next one changes nothing
// observable while shrinking the safepoint count the code generator has
// to emit. removed totals every CheckGC instance deleted this way;
// moved counts the reinsertion itself, once per block that had at least
// one.
func MoveChecks(fn *ir.Function) (moved, removed int) {
	for i := 1; i < len(fn.Blocks); i++ {
		blockID := ir.BlockID(i)
		blk := fn.Block(blockID)

		var origCount int
		var loc ir.Pos
		kept := make([]ir.Cmd, 0, len(blk.Cmds))
		for _, cmd := range blk.Cmds {
			if c, ok := cmd.(*ir.CheckGC); ok {
				origCount++
				loc = c.Loc
				continue
			}
			kept = append(kept, cmd)
		}
		if origCount == 0 {
			continue
		}

		insertAt := len(kept)
		for idx, cmd := range kept {
			if barrier(cmd) {
				insertAt = idx
				break
			}
		}

		rebuilt := make([]ir.Cmd, 0, len(kept)+1)
		rebuilt = append(rebuilt, kept[:insertAt]...)
		rebuilt = append(rebuilt, &ir.CheckGC{Loc: loc})
		rebuilt = append(rebuilt, kept[insertAt:]...)

		blk.Cmds = rebuilt
		removed += origCount
		moved++
	}
	return moved, removed
}
