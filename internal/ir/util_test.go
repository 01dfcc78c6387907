package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamond builds a 4-block diamond CFG: 1 -> {2,3} -> 4, with 4 as the
// (terminator-free) exit block.
func diamond() *Function {
	fn := &Function{
		Vars: []*Var{{Name: "c", Typ: BoolType{}}},
		Blocks: []*BasicBlock{
			nil,
			{Cmds: []Cmd{&JmpIf{Cond: LocalVar{ID: 1}, TargetTrue: 2, TargetFalse: 3}}},
			{Cmds: []Cmd{&Jmp{Target: 4}}},
			{Cmds: []Cmd{&Jmp{Target: 4}}},
			{Cmds: nil},
		},
	}
	for i, b := range fn.Blocks {
		if b != nil {
			b.ID = BlockID(i)
		}
	}
	return fn
}

func TestSuccessorsAndPredecessors(t *testing.T) {
	fn := diamond()

	assert.ElementsMatch(t, []BlockID{2, 3}, Successors(fn, 1))
	assert.Equal(t, []BlockID{4}, Successors(fn, 2))
	assert.Equal(t, []BlockID{4}, Successors(fn, 3))
	assert.Nil(t, Successors(fn, 4))

	assert.Equal(t, []BlockID{1}, Predecessors(fn, 2))
	assert.Equal(t, []BlockID{1}, Predecessors(fn, 3))
	assert.ElementsMatch(t, []BlockID{2, 3}, Predecessors(fn, 4))
	assert.Empty(t, Predecessors(fn, 1))
}

func TestTopoForwardVisitsEveryBlockOnce(t *testing.T) {
	fn := diamond()
	order := TopoForward(fn)
	assert.ElementsMatch(t, []BlockID{1, 2, 3, 4}, order)
	assert.Equal(t, BlockID(1), order[0])
	assert.Equal(t, BlockID(4), order[len(order)-1])
}

func TestTopoBackwardStartsAtExit(t *testing.T) {
	fn := diamond()
	order := TopoBackward(fn)
	assert.ElementsMatch(t, []BlockID{1, 2, 3, 4}, order)
	assert.Equal(t, BlockID(4), order[0])
}

func TestInsertBlockShiftsSubsequentIDs(t *testing.T) {
	fn := diamond()
	InsertBlock(fn, 2, &BasicBlock{Cmds: []Cmd{&Nop{}}})

	require.Len(t, fn.Blocks, 6)
	assert.Equal(t, BlockID(2), fn.Blocks[2].ID)
	assert.Equal(t, BlockID(3), fn.Blocks[3].ID)
	assert.Equal(t, BlockID(4), fn.Blocks[4].ID)
	assert.Equal(t, BlockID(5), fn.Blocks[5].ID)

	// Predecessors are recomputed over the new layout. InsertBlock leaves
	// jump targets alone, so block 1's JmpIf still names id 2, which is now
	// the inserted Nop block.
	assert.Equal(t, []BlockID{1}, Predecessors(fn, 2))
}

func TestShiftJumpTargets(t *testing.T) {
	blk := &BasicBlock{Cmds: []Cmd{
		&Jmp{Target: 5},
		&JmpIf{Cond: Bool{V: true}, TargetTrue: 2, TargetFalse: 6},
	}}
	ShiftJumpTargets(blk, 5, 2)

	assert.Equal(t, BlockID(7), blk.Cmds[0].(*Jmp).Target)
	jif := blk.Cmds[1].(*JmpIf)
	assert.Equal(t, BlockID(2), jif.TargetTrue, "below threshold: untouched")
	assert.Equal(t, BlockID(8), jif.TargetFalse)
}

func TestIsConstantValue(t *testing.T) {
	assert.True(t, IsConstantValue(Integer{V: 3}))
	assert.True(t, IsConstantValue(Nil{}))
	assert.False(t, IsConstantValue(LocalVar{ID: 1}))
	assert.False(t, IsConstantValue(UpvalueRef{ID: 1}))
}
