// Package gcinfo computes the tables the code generator needs to emit
// GC-aware C: which GC-typed locals are live at each GC-safe point, a
// stack-slot assignment for them via interference, and the set of writes
// whose value must be mirrored to the host runtime's value stack so the
// collector can see it.
package gcinfo

import (
	"sort"

	"vela/internal/dataflow"
	"vela/internal/ir"
)

// CmdRef identifies one command within a function by block and
// in-block index.
type CmdRef struct {
	Block ir.BlockID
	Cmd   int
}

// Info holds the three outputs of §4.4 for a single function.
type Info struct {
	// LiveGCVars is populated only for GC-safe commands: the GC-typed
	// var-ids live immediately after that command.
	LiveGCVars map[CmdRef][]ir.VarID

	// MaxFrameSize is one more than the largest stack slot any GC-typed
	// variable is assigned (0 if none are live at any GC-safe point).
	MaxFrameSize int
	// SlotOfVariable maps every GC-typed var-id that is ever live at a
	// GC-safe point to its assigned 0-based stack slot.
	SlotOfVariable map[ir.VarID]int

	// VarsToMirror is indexed by the defining command, not the safepoint
	// it reaches: VarsToMirror[block][cmd] holds the GC-typed var-ids
	// written by that command whose definition reaches some downstream
	// GC-safe point, and so must be mirrored to the host stack at
	// definition time.
	VarsToMirror map[CmdRef][]ir.VarID
}

// Compute runs liveness, slot packing, and reaching-definitions over fn
// and returns the combined Info. Callers should run MoveChecks first so
// liveness is computed against the canonical, coalesced CheckGC placement.
func Compute(fn *ir.Function) *Info {
	liveness := computeLiveness(fn)
	liveGCVars := gcSafeLiveSets(fn, liveness)

	interf := buildInterference(fn, liveGCVars)
	slotOf, maxFrame := colorSlots(fn, interf)

	defs, reaching := computeReachingDefs(fn)
	mirror := gcSafeMirrorSets(fn, defs, reaching)

	return &Info{
		LiveGCVars:     liveGCVars,
		MaxFrameSize:   maxFrame,
		SlotOfVariable: slotOf,
		VarsToMirror:   mirror,
	}
}

func isGCVar(fn *ir.Function, id ir.VarID) bool {
	return fn.Var(id).Typ.IsGC()
}

func gcTypedDestinations(fn *ir.Function, cmd ir.Cmd) []ir.VarID {
	var out []ir.VarID
	for _, d := range cmd.Destinations() {
		if isGCVar(fn, d) {
			out = append(out, d)
		}
	}
	return out
}

func gcTypedLocalSources(fn *ir.Function, cmd ir.Cmd) []ir.VarID {
	var out []ir.VarID
	for _, s := range cmd.Sources() {
		if lv, ok := s.(ir.LocalVar); ok && isGCVar(fn, lv.ID) {
			out = append(out, lv.ID)
		}
	}
	return out
}

func intSetOf(fn *ir.Function, ids []ir.VarID) dataflow.IntSet {
	s := dataflow.NewIntSet(len(ids) + 1)
	for _, id := range ids {
		s.Add(int(id))
	}
	return s
}

func sortVarIDs(ids []ir.VarID) []ir.VarID {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
