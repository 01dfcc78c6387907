// Package constprop implements constant propagation with constant
// folding of literal locals and constant upvalues across function
// boundaries.
package constprop

import (
	"vela/internal/dataflow"
	"vela/internal/ir"
)

// cmdConstants is the per-command snapshot constprop publishes: the
// pre-command lattice state restricted to the variables currently proven
// Constant, keyed by var-id.
type cmdConstants map[ir.VarID]ir.Value

// PropagateModule runs the cross-function constant-upvalue pre-pass and
// then constant propagation over every function, in declaration order, so
// that a caller's InitUpvalues populates its callees' constant-upvalue
// maps before the callees are analyzed (§4.3's ordering requirement).
func PropagateModule(mod *ir.Module) {
	constUpvalues := make(map[ir.FuncID]map[ir.UpvalueID]ir.Value)
	for fid, fn := range mod.Functions {
		collectConstantUpvalues(ir.FuncID(fid), fn, constUpvalues)
	}
	for _, fn := range mod.Functions {
		PropagateFunction(fn, constUpvalues[funcIDOf(mod, fn)])
	}
}

func funcIDOf(mod *ir.Module, target *ir.Function) ir.FuncID {
	for i, fn := range mod.Functions {
		if fn == target {
			return ir.FuncID(i)
		}
	}
	return -1
}

// collectConstantUpvalues walks fn's InitUpvalues commands, recording, for
// each target function and upvalue slot, any source that is an IR
// constant.
func collectConstantUpvalues(_ ir.FuncID, fn *ir.Function, out map[ir.FuncID]map[ir.UpvalueID]ir.Value) {
	for i := 1; i < len(fn.Blocks); i++ {
		for _, cmd := range fn.Block(ir.BlockID(i)).Cmds {
			iu, ok := cmd.(*ir.InitUpvalues)
			if !ok {
				continue
			}
			for slot, src := range iu.Srcs {
				if !src.IsConstant() {
					continue
				}
				if out[iu.FID] == nil {
					out[iu.FID] = make(map[ir.UpvalueID]ir.Value)
				}
				out[iu.FID][ir.UpvalueID(slot+1)] = src
			}
		}
	}
}

// PropagateFunction rewrites fn's constant upvalue references, then runs
// the forward lattice dataflow and rewrites every source proven constant
// on all paths reaching its command.
func PropagateFunction(fn *ir.Function, constUpvalues map[ir.UpvalueID]ir.Value) {
	rewriteConstantUpvalues(fn, constUpvalues)

	tracked := trackedVars(fn)
	if len(tracked) == 0 {
		return
	}

	results := run(fn, tracked)
	rewrite(fn, results)
}

// rewriteConstantUpvalues replaces every Value source that is an Upvalue
// whose slot is recorded in constUpvalues with the recorded literal.
func rewriteConstantUpvalues(fn *ir.Function, constUpvalues map[ir.UpvalueID]ir.Value) {
	if len(constUpvalues) == 0 {
		return
	}
	for i := 1; i < len(fn.Blocks); i++ {
		for _, cmd := range fn.Block(ir.BlockID(i)).Cmds {
			srcs := cmd.Sources()
			changed := false
			for i, s := range srcs {
				if uv, ok := s.(ir.UpvalueRef); ok {
					if lit, ok := constUpvalues[uv.ID]; ok {
						srcs[i] = lit
						changed = true
					}
				}
			}
			if changed {
				cmd.SetSources(srcs)
			}
		}
	}
}

// trackedVars returns the var-ids of scalar, non-reference-typed
// variables: only these participate in the lattice, per §4.3.
func trackedVars(fn *ir.Function) []ir.VarID {
	var out []ir.VarID
	for i, v := range fn.Vars {
		if ir.IsScalar(v.Typ) {
			out = append(out, ir.VarID(i+1))
		}
	}
	return out
}

// cmdRef identifies one command for the per-command constants map.
type cmdRef struct {
	block ir.BlockID
	cmd   int
}

func run(fn *ir.Function, tracked []ir.VarID) map[cmdRef]cmdConstants {
	numParams := fn.NumParams()
	isParam := func(id ir.VarID) bool { return int(id) <= numParams }

	identity := func() varMap {
		m := make(varMap, len(tracked))
		for _, id := range tracked {
			m[id] = lv{kind: undef}
		}
		return m
	}
	entryValue := func() varMap {
		m := identity()
		for _, id := range tracked {
			if isParam(id) {
				m[id] = lv{kind: nac}
			}
		}
		return m
	}

	prevFinish := make(map[ir.BlockID]varMap, len(fn.Blocks))
	perBlockSnapshots := make(map[ir.BlockID][]varMap, len(fn.Blocks))

	fw := &dataflow.Framework[varMap, cmdConstants]{
		Direction:  dataflow.Forward,
		Join:       joinVarMap,
		Identity:   identity,
		EntryValue: entryValue,
		Copy:       func(dst *varMap, src varMap) { *dst = cloneVarMap(src) },
		MakeTransfer: func(blockID ir.BlockID) func(scratch *varMap) bool {
			blk := fn.Block(blockID)
			return func(scratch *varMap) bool {
				state := *scratch
				snaps := make([]varMap, len(blk.Cmds))
				for i, cmd := range blk.Cmds {
					snaps[i] = cloneVarMap(state)
					applyCmd(cmd, state, isParam)
				}
				perBlockSnapshots[blockID] = snaps

				prev, ok := prevFinish[blockID]
				changed := !ok || !varMapsEqual(prev, state)
				prevFinish[blockID] = cloneVarMap(state)
				*scratch = state
				return changed
			}
		},
		MakeResult: func(blockID ir.BlockID, start varMap) cmdConstants {
			finish := cloneVarMap(start)
			for _, cmd := range fn.Block(blockID).Cmds {
				applyCmd(cmd, finish, isParam)
			}
			return constantsOf(finish)
		},
	}

	fw.Run(fn, dataflowOrder(fn))

	perCmd := make(map[cmdRef]cmdConstants)
	for i := 1; i < len(fn.Blocks); i++ {
		id := ir.BlockID(i)
		snaps, ok := perBlockSnapshots[id]
		if !ok {
			continue
		}
		for cmdIdx, snap := range snaps {
			perCmd[cmdRef{block: id, cmd: cmdIdx}] = constantsOf(snap)
		}
	}
	return perCmd
}

func dataflowOrder(fn *ir.Function) []ir.BlockID {
	return ir.TopoForward(fn)
}

func applyCmd(cmd ir.Cmd, state varMap, isParam func(ir.VarID) bool) {
	if mv, ok := cmd.(*ir.Move); ok {
		if _, tracked := state[mv.Dst]; tracked {
			state[mv.Dst] = lvOfMoveSource(mv.Src, state)
		}
		return
	}
	for _, dst := range cmd.Destinations() {
		if _, tracked := state[dst]; tracked {
			state[dst] = lv{kind: nac}
		}
	}
}

func lvOfMoveSource(src ir.Value, state varMap) lv {
	switch s := src.(type) {
	case ir.UpvalueRef:
		return lv{kind: nac}
	case ir.LocalVar:
		if v, ok := state[s.ID]; ok {
			return v
		}
		return lv{kind: nac}
	default:
		if src.IsConstant() {
			return lv{kind: constant, val: src}
		}
		return lv{kind: nac}
	}
}

func constantsOf(state varMap) cmdConstants {
	out := make(cmdConstants)
	for id, v := range state {
		if v.kind == constant {
			out[id] = v.val
		}
	}
	return out
}

func varMapsEqual(a, b varMap) bool {
	if len(a) != len(b) {
		return false
	}
	for id, av := range a {
		bv, ok := b[id]
		if !ok || av.kind != bv.kind {
			return false
		}
		if av.kind == constant && !literalsEqual(av.val, bv.val) {
			return false
		}
	}
	return true
}
