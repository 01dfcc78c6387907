package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixtureRoundTrip(t *testing.T) {
	mod := &Module{
		Functions: []*Function{
			{
				Name: "add_one",
				Typ:  FuncType{ArgTypes: []Type{IntType{}}, RetTypes: []Type{IntType{}}},
				Vars: []*Var{
					{Name: "x", Typ: IntType{}},
					{Name: "arr", Typ: &ArrayType{Elem: IntType{}}},
				},
				RetVars: []VarID{1},
				Blocks: []*BasicBlock{
					nil,
					{Cmds: []Cmd{
						&NewArr{Dst: 2, SrcSize: Integer{V: 4}, Elem: IntType{}},
						&RenormArr{SrcArr: LocalVar{ID: 2}, SrcI: LocalVar{ID: 1}},
						&Move{Dst: 1, Src: LocalVar{ID: 1}},
					}},
				},
				ForLoops: []*Loop{{
					PrepBlock: 1, BodyFirstBlock: 1, BodyLastBlock: 1,
					IterVar: 1, Limit: Integer{V: 4}, StepIsPositive: true,
				}},
			},
		},
	}

	data, err := MarshalFixture(mod)
	require.NoError(t, err)

	got, err := UnmarshalFixture(data)
	require.NoError(t, err)

	require.Len(t, got.Functions, 1)
	fn := got.Functions[0]
	require.Equal(t, "add_one", fn.Name)
	require.Len(t, fn.Vars, 2)
	require.IsType(t, &ArrayType{}, fn.Vars[1].Typ)
	require.Equal(t, []VarID{1}, fn.RetVars)
	require.Len(t, fn.ForLoops, 1)
	require.Equal(t, Integer{V: 4}, fn.ForLoops[0].Limit)

	require.Len(t, fn.Blocks, 2)
	cmds := fn.Blocks[1].Cmds
	require.IsType(t, &NewArr{}, cmds[0])
	require.IsType(t, &RenormArr{}, cmds[1])
	require.IsType(t, &Move{}, cmds[2])
}
