package constprop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vela/internal/ir"
)

// A literal Move'd through two variables must have its final downstream
// use rewritten to the original literal.
func TestPropagateFunctionRewritesDownstreamUses(t *testing.T) {
	fn := &ir.Function{
		Typ: ir.FuncType{},
		Vars: []*ir.Var{
			{Name: "x", Typ: ir.IntType{}},
			{Name: "y", Typ: ir.IntType{}},
		},
		Blocks: []*ir.BasicBlock{
			nil,
			{Cmds: []ir.Cmd{
				&ir.Move{Dst: 1, Src: ir.Integer{V: 5}},
				&ir.Move{Dst: 2, Src: ir.LocalVar{ID: 1}},
				&ir.CallStatic{SrcF: ir.Nil{}, Srcs: []ir.Value{ir.LocalVar{ID: 2}}},
			}},
		},
	}

	PropagateFunction(fn, nil)

	call := fn.Blocks[1].Cmds[2].(*ir.CallStatic)
	require.Len(t, call.Srcs, 1)
	assert.Equal(t, ir.Integer{V: 5}, call.Srcs[0])
}

// A parameter is Nac from entry, so a Move of a parameter never produces
// a rewritable constant downstream.
func TestParametersAreNeverConstant(t *testing.T) {
	fn := &ir.Function{
		Typ:  ir.FuncType{ArgTypes: []ir.Type{ir.IntType{}}},
		Vars: []*ir.Var{{Name: "a", Typ: ir.IntType{}}, {Name: "b", Typ: ir.IntType{}}},
		Blocks: []*ir.BasicBlock{
			nil,
			{Cmds: []ir.Cmd{
				&ir.Move{Dst: 2, Src: ir.LocalVar{ID: 1}},
				&ir.CallStatic{SrcF: ir.Nil{}, Srcs: []ir.Value{ir.LocalVar{ID: 2}}},
			}},
		},
	}

	PropagateFunction(fn, nil)

	call := fn.Blocks[1].Cmds[1].(*ir.CallStatic)
	assert.Equal(t, ir.LocalVar{ID: 2}, call.Srcs[0], "no literal to rewrite to: b stays Nac")
}

// PropagateModule's cross-function pre-pass must rewrite a callee's
// Upvalue reference with the literal an InitUpvalues call site provided,
// regardless of where the callee sits relative to its caller in the
// module's function list (the collection pass scans every function
// before any function is rewritten).
func TestConstantUpvaluePropagationAcrossFunctions(t *testing.T) {
	callee := &ir.Function{
		Typ:          ir.FuncType{RetTypes: []ir.Type{ir.IntType{}}},
		Vars:         []*ir.Var{{Name: "r", Typ: ir.IntType{}}},
		CapturedVars: []*ir.Upvalue{{Name: "k", Typ: ir.IntType{}}},
		RetVars:      []ir.VarID{1},
		Blocks: []*ir.BasicBlock{
			nil,
			{Cmds: []ir.Cmd{&ir.Move{Dst: 1, Src: ir.UpvalueRef{ID: 1}}}},
		},
	}
	caller := &ir.Function{
		Typ:  ir.FuncType{},
		Vars: []*ir.Var{},
		Blocks: []*ir.BasicBlock{
			nil,
			{Cmds: []ir.Cmd{&ir.InitUpvalues{FID: 0, Srcs: []ir.Value{ir.Integer{V: 42}}}}},
		},
	}
	mod := &ir.Module{Functions: []*ir.Function{callee, caller}}

	PropagateModule(mod)

	mv := callee.Blocks[1].Cmds[0].(*ir.Move)
	assert.Equal(t, ir.Integer{V: 42}, mv.Src)
}
