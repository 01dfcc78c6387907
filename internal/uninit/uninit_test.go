package uninit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vela/internal/diagnostics"
	"vela/internal/ir"
)

// S1: a function returning x, where x is read (via a Move) before any
// write to it reaches that read. Expect exactly one UseBeforeInit
// diagnostic naming x, and no MissingReturn diagnostic (the later write
// to the return var makes the exit finish set clean).
func TestUseBeforeInit(t *testing.T) {
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
			{Cmds: []ir.Cmd{
				&ir.Move{Dst: 2, Src: ir.LocalVar{ID: 1}},
			}},
		},
	}

	sink := &diagnostics.Sink{}
	Analyze(fn, sink)

	require.Len(t, sink.Diagnostics(), 1)
	d := sink.Diagnostics()[0]
	assert.Equal(t, diagnostics.UseBeforeInit, d.Kind)
	assert.Contains(t, d.Message, "'x'")
}

// A function whose return variable is written on every path reports no
// diagnostics at all.
func TestNoDiagnosticsWhenInitialized(t *testing.T) {
	fn := &ir.Function{
		Name: "f",
		Typ:  ir.FuncType{RetTypes: []ir.Type{ir.IntType{}}},
		Vars: []*ir.Var{{Name: "t", Typ: ir.IntType{}}},
		RetVars: []ir.VarID{1},
		Blocks: []*ir.BasicBlock{
			nil,
			{Cmds: []ir.Cmd{
				&ir.Move{Dst: 1, Src: ir.Integer{V: 7}},
			}},
		},
	}

	sink := &diagnostics.Sink{}
	Analyze(fn, sink)

	assert.True(t, sink.Empty())
}

// A function that falls off the end without writing its return var gets
// exactly the MissingReturn diagnostic.
func TestMissingReturn(t *testing.T) {
	fn := &ir.Function{
		Name: "g",
		Typ:  ir.FuncType{RetTypes: []ir.Type{ir.IntType{}}},
		Vars: []*ir.Var{{Name: "t", Typ: ir.IntType{}}},
		RetVars: []ir.VarID{1},
		Blocks: []*ir.BasicBlock{
			nil,
			{Cmds: []ir.Cmd{&ir.Nop{}}},
		},
	}

	sink := &diagnostics.Sink{}
	Analyze(fn, sink)

	require.Len(t, sink.Diagnostics(), 1)
	assert.Equal(t, diagnostics.MissingReturn, sink.Diagnostics()[0].Kind)
}

// Allocating an upvalue box does not initialize the boxed variable; only
// the SetField that stores into the box does, and the read to check at
// that command is the stored value, not the box reference.
func TestUpvalueBoxInitializationCarveOut(t *testing.T) {
	boxType := &ir.RecordType{Name: "box", IsUpvalueBox: true, Fields: []ir.Field{{Name: "v", Typ: ir.IntType{}}}}

	fn := &ir.Function{
		Name: "h",
		Typ:  ir.FuncType{},
		Vars: []*ir.Var{
			{Name: "boxed", Typ: ir.IntType{}},  // var 1: the boxed variable
			{Name: "box", Typ: boxType},          // var 2: the box record
			{Name: "unset", Typ: ir.IntType{}},   // var 3: never written
		},
		Blocks: []*ir.BasicBlock{
			nil,
			{Cmds: []ir.Cmd{
				&ir.NewRecord{Dst: 2, RecTyp: boxType},
				// Storing the still-uninitialized var 1 into the box:
				// the read to flag is SrcV (var 1), not SrcRec (var 2,
				// which is being written here; allocating the box did
				// not initialize it).
				&ir.SetField{SrcRec: ir.LocalVar{ID: 2}, SrcV: ir.LocalVar{ID: 1}, RecTyp: boxType, Field: "v"},
			}},
		},
	}

	sink := &diagnostics.Sink{}
	Analyze(fn, sink)

	require.Len(t, sink.Diagnostics(), 1)
	assert.Contains(t, sink.Diagnostics()[0].Message, "'boxed'")
}

// Allocating an upvalue box must not itself count as initializing it:
// reading the box before the initializing SetField must still be flagged.
func TestUpvalueBoxStaysUninitializedUntilSetField(t *testing.T) {
	boxType := &ir.RecordType{Name: "box", IsUpvalueBox: true, Fields: []ir.Field{{Name: "v", Typ: ir.IntType{}}}}

	fn := &ir.Function{
		Name: "h",
		Typ:  ir.FuncType{},
		Vars: []*ir.Var{
			{Name: "boxed", Typ: ir.IntType{}},
			{Name: "box", Typ: boxType},
			{Name: "out", Typ: boxType},
		},
		Blocks: []*ir.BasicBlock{
			nil,
			{Cmds: []ir.Cmd{
				&ir.Move{Dst: 1, Src: ir.Integer{V: 1}},
				&ir.NewRecord{Dst: 2, RecTyp: boxType},
				// Reads the box itself before the initializing SetField.
				&ir.Move{Dst: 3, Src: ir.LocalVar{ID: 2}},
				&ir.SetField{SrcRec: ir.LocalVar{ID: 2}, SrcV: ir.LocalVar{ID: 1}, RecTyp: boxType, Field: "v"},
			}},
		},
	}

	sink := &diagnostics.Sink{}
	Analyze(fn, sink)

	require.Len(t, sink.Diagnostics(), 1)
	assert.Contains(t, sink.Diagnostics()[0].Message, "'box'")
}
