package pipeline

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vela/internal/ir"
)

func trivialModule() *ir.Module {
	fn := &ir.Function{
		Name:    "f",
		Typ:     ir.FuncType{RetTypes: []ir.Type{ir.IntType{}}},
		Vars:    []*ir.Var{{Name: "t", Typ: ir.IntType{}}},
		RetVars: []ir.VarID{1},
		Blocks: []*ir.BasicBlock{
			nil,
			{Cmds: []ir.Cmd{&ir.Move{Dst: 1, Src: ir.Integer{V: 7}}}},
		},
	}
	return &ir.Module{Functions: []*ir.Function{fn}}
}

// A clean module runs every stage and reports its counters.
func TestRunSucceedsAndReportsCounters(t *testing.T) {
	mod := trivialModule()
	var out bytes.Buffer
	p := New(Options{Sink: &out})

	result := p.Run(mod)

	assert.Empty(t, result.Diagnostics)
	require.NotNil(t, result.GCInfo)
	assert.Contains(t, result.GCInfo, mod.Functions[0])
	assert.Contains(t, out.String(), "moved checkgc:")
	assert.Contains(t, out.String(), "removed checkgc:")
	assert.Contains(t, out.String(), "renormalizes:")
}

// A module with a use-before-init is rejected at the uninit stage: no
// later stage runs, so no GC info is ever computed.
func TestRunRejectsOnUninitDiagnostic(t *testing.T) {
	fn := &ir.Function{
		Name: "f",
		Typ:  ir.FuncType{RetTypes: []ir.Type{ir.IntType{}}},
		Vars: []*ir.Var{
			{Name: "x", Typ: ir.IntType{}},
			{Name: "t", Typ: ir.IntType{}},
		},
		RetVars: []ir.VarID{2},
		Blocks: []*ir.BasicBlock{
			nil,
			{Cmds: []ir.Cmd{&ir.Move{Dst: 2, Src: ir.LocalVar{ID: 1}}}},
		},
	}
	mod := &ir.Module{Functions: []*ir.Function{fn}}
	var out bytes.Buffer
	p := New(Options{Sink: &out})

	result := p.Run(mod)

	require.Len(t, result.Diagnostics, 1)
	assert.Nil(t, result.GCInfo)
	assert.Empty(t, out.String(), "no stage after uninit should have run, so nothing was reported")
}
