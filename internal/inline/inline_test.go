package inline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vela/internal/ir"
)

// S5: a resolvable, non-recursive call to a trivial single-block callee
// is spliced into the caller: the CallStatic disappears, the callee's
// param is bound via a prepended Move, and its return value flows back
// via an appended Move to the call's destination.
func TestInlineSplicesSingleBlockCallee(t *testing.T) {
	callee := &ir.Function{
		Name:    "identity",
		Typ:     ir.FuncType{ArgTypes: []ir.Type{ir.IntType{}}, RetTypes: []ir.Type{ir.IntType{}}},
		Vars:    []*ir.Var{{Name: "a", Typ: ir.IntType{}}},
		RetVars: []ir.VarID{1},
		Blocks:  []*ir.BasicBlock{nil, {Cmds: nil}},
	}
	caller := &ir.Function{
		Name: "caller",
		Typ:  ir.FuncType{},
		Vars: []*ir.Var{
			{Name: "x", Typ: ir.IntType{}},
			{Name: "out", Typ: ir.IntType{}},
			{Name: "fref", Typ: &ir.FunctionType{}},
		},
		FIDOfLocal: map[ir.VarID]ir.FuncID{3: 0},
		Blocks: []*ir.BasicBlock{
			nil,
			{Cmds: []ir.Cmd{
				&ir.Move{Dst: 1, Src: ir.Integer{V: 5}},
				&ir.CallStatic{Dsts: []ir.VarID{2}, SrcF: ir.LocalVar{ID: 3}, Srcs: []ir.Value{ir.LocalVar{ID: 1}}},
			}},
		},
	}
	mod := &ir.Module{Functions: []*ir.Function{callee, caller}}

	count := Inline(mod)

	require.Equal(t, 1, count)
	require.Len(t, caller.Vars, 4, "the callee's one local is appended to the caller")
	assert.Equal(t, "a", caller.Vars[3].Name)

	cmds := caller.Blocks[1].Cmds
	require.Len(t, cmds, 3)

	for _, c := range cmds {
		_, isCall := c.(*ir.CallStatic)
		assert.False(t, isCall, "no CallStatic should remain after inlining")
	}

	bind := cmds[1].(*ir.Move)
	assert.Equal(t, ir.VarID(4), bind.Dst)
	assert.Equal(t, ir.LocalVar{ID: 1}, bind.Src)

	ret := cmds[2].(*ir.Move)
	assert.Equal(t, ir.VarID(2), ret.Dst)
	assert.Equal(t, ir.LocalVar{ID: 4}, ret.Src)
}

// A function that calls itself must not be inlined into itself: doing so
// would not terminate. The recursion guard must leave the self-call
// exactly as it was.
func TestInlineLeavesSelfRecursiveCallAlone(t *testing.T) {
	fn := &ir.Function{
		Name:       "loopy",
		Typ:        ir.FuncType{},
		Vars:       []*ir.Var{{Name: "fref", Typ: &ir.FunctionType{}}},
		FIDOfLocal: map[ir.VarID]ir.FuncID{1: 0},
		Blocks: []*ir.BasicBlock{
			nil,
			{Cmds: []ir.Cmd{
				&ir.CallStatic{SrcF: ir.LocalVar{ID: 1}},
				&ir.Nop{},
			}},
		},
	}
	mod := &ir.Module{Functions: []*ir.Function{fn}}

	count := Inline(mod)

	assert.Equal(t, 0, count)
	_, isCall := fn.Blocks[1].Cmds[0].(*ir.CallStatic)
	assert.True(t, isCall, "the self-call survives untouched")
}
