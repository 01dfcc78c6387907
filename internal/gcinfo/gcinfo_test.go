package gcinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vela/internal/ir"
)

// S3: two GC-typed locals written by literal, both read by a call, then
// both read again by a later call. At the first call both must be live
// (so it is rooted), and the two must be assigned different stack slots
// because liveness proves them simultaneously alive.
func TestLiveAcrossCallSiteGetsDistinctSlots(t *testing.T) {
	fn := &ir.Function{
		Name: "f",
		Typ:  ir.FuncType{},
		Vars: []*ir.Var{
			{Name: "x", Typ: ir.StringType{}},
			{Name: "y", Typ: ir.StringType{}},
		},
		Blocks: []*ir.BasicBlock{
			nil,
			{Cmds: []ir.Cmd{
				&ir.Move{Dst: 1, Src: ir.String{V: "a"}},
				&ir.Move{Dst: 2, Src: ir.String{V: "b"}},
				&ir.CallStatic{SrcF: ir.Nil{}, Srcs: []ir.Value{ir.LocalVar{ID: 1}, ir.LocalVar{ID: 2}}},
				&ir.CallStatic{SrcF: ir.Nil{}, Srcs: []ir.Value{ir.LocalVar{ID: 1}, ir.LocalVar{ID: 2}}},
			}},
		},
	}

	info := Compute(fn)

	firstCall := CmdRef{Block: 1, Cmd: 2}
	secondCall := CmdRef{Block: 1, Cmd: 3}

	require.Contains(t, info.LiveGCVars, firstCall)
	assert.ElementsMatch(t, []ir.VarID{1, 2}, info.LiveGCVars[firstCall])

	require.Contains(t, info.LiveGCVars, secondCall)
	assert.Empty(t, info.LiveGCVars[secondCall], "nothing reads x or y after the second call")

	require.Contains(t, info.SlotOfVariable, ir.VarID(1))
	require.Contains(t, info.SlotOfVariable, ir.VarID(2))
	assert.NotEqual(t, info.SlotOfVariable[1], info.SlotOfVariable[2], "x and y interfere and cannot share a slot")
	assert.Equal(t, 2, info.MaxFrameSize)
}

// A GC-typed var consumed by the call itself (its only use) is dead
// immediately after that call and must not appear in its LiveGCVars.
func TestVarConsumedByCallIsDeadAfterIt(t *testing.T) {
	fn := &ir.Function{
		Name: "f",
		Typ:  ir.FuncType{},
		Vars: []*ir.Var{
			{Name: "x", Typ: ir.StringType{}},
		},
		Blocks: []*ir.BasicBlock{
			nil,
			{Cmds: []ir.Cmd{
				&ir.Move{Dst: 1, Src: ir.String{V: "a"}},
				&ir.CallStatic{SrcF: ir.LocalVar{ID: 1}},
				&ir.CallStatic{SrcF: ir.Nil{}},
			}},
		},
	}

	info := Compute(fn)

	call := CmdRef{Block: 1, Cmd: 2}
	require.Contains(t, info.LiveGCVars, call)
	assert.Empty(t, info.LiveGCVars[call])
}

// MoveChecks coalesces every loose CheckGC onto the next barrier command
// (a call or a terminator), shrinking the safepoint count without
// changing which commands are GC-safe.
func TestMoveChecksCoalescesOntoNextBarrier(t *testing.T) {
	fn := &ir.Function{
		Name: "f",
		Typ:  ir.FuncType{},
		Vars: []*ir.Var{{Name: "x", Typ: ir.IntType{}}},
		Blocks: []*ir.BasicBlock{
			nil,
			{Cmds: []ir.Cmd{
				&ir.CheckGC{},
				&ir.Move{Dst: 1, Src: ir.Integer{V: 1}},
				&ir.CallStatic{SrcF: ir.Nil{}},
				&ir.Jmp{Target: 1},
			}},
		},
	}

	moved, removed := MoveChecks(fn)

	assert.Equal(t, 1, moved)
	assert.Equal(t, 1, removed)

	cmds := fn.Blocks[1].Cmds
	var checkIdx, callIdx int = -1, -1
	for i, c := range cmds {
		switch c.(type) {
		case *ir.CheckGC:
			checkIdx = i
		case *ir.CallStatic:
			callIdx = i
		}
	}
	require.NotEqual(t, -1, checkIdx)
	require.NotEqual(t, -1, callIdx)
	assert.Equal(t, callIdx, checkIdx+1, "the reinserted CheckGC sits immediately before the call barrier")
}
