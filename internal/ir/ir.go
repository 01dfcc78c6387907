// Package ir defines the control-flow-graph intermediate representation
// consumed and produced by the optimization passes in this module.
//
// A Module owns an ordered list of Functions. Each Function owns an ordered
// list of Vars (1-based id, parameters occupy the first len(ArgTypes) ids),
// an ordered list of Upvalue descriptors (1-based id), and an ordered list
// of BasicBlocks (1-based id; block 1 is the entry, the highest-indexed
// block is the unique exit and carries no terminator).
package ir

// BlockID identifies a basic block within its owning function. Valid ids
// are 1..len(Function.Blocks)-1 (Blocks[0] is unused).
type BlockID int

// VarID identifies a local variable within its owning function. Valid ids
// are 1..len(Function.Vars).
type VarID int

// UpvalueID identifies a captured-variable slot within its owning function.
type UpvalueID int

// FuncID identifies a function within its owning module.
type FuncID int

// Pos is a source location carried through from the front end for
// diagnostics. It has no meaning to any pass besides being echoed back.
type Pos struct {
	File string
	Line int
	Col  int
}

// Module is the top-level compilation unit: an ordered, densely-indexed
// sequence of functions.
type Module struct {
	Functions []*Function
}

// FuncType describes a function's parameter and return signature.
type FuncType struct {
	ArgTypes []Type
	RetTypes []Type
}

// Upvalue describes a variable captured from an enclosing function.
type Upvalue struct {
	Name string
	Typ  Type
	Loc  Pos
}

// Loop describes a counted for-loop as produced by the front end; it is
// consumed only by the renormalize optimizer.
type Loop struct {
	PrepBlock      BlockID
	BodyFirstBlock BlockID
	BodyLastBlock  BlockID
	IterVar        VarID
	Limit          Value
	StepIsPositive bool
	Loc            Pos
}

// Function is a single function's CFG plus its variable/upvalue tables.
type Function struct {
	Name string
	Typ  FuncType

	// Vars holds every local including parameters; Vars[0] is var-id 1.
	Vars []*Var
	// RetVars names the vars the exit block's Move commands read returns
	// from, in return-type order.
	RetVars []VarID

	// CapturedVars holds every upvalue descriptor; CapturedVars[0] is
	// upvalue-id 1.
	CapturedVars []*Upvalue

	// Blocks is 1-based: Blocks[0] is unused so that BlockID values index
	// directly. Blocks[1] is the entry block.
	Blocks []*BasicBlock

	// FIDOfUpvalue and FIDOfLocal resolve a function-valued upvalue or
	// local to a module function-id, for static-call resolution. Either
	// may be nil if the front end could not prove the binding static.
	FIDOfUpvalue map[UpvalueID]FuncID
	FIDOfLocal   map[VarID]FuncID

	ForLoops []*Loop

	Loc Pos

	predsCache map[BlockID][]BlockID
}

// Var is a local variable declaration.
type Var struct {
	Name string
	Typ  Type
	Loc  Pos
}

// BasicBlock is a maximal straight-line command sequence. At most the last
// Cmd is a terminator (Jmp or JmpIf).
type BasicBlock struct {
	ID   BlockID
	Cmds []Cmd
}

// Terminator returns the block's Jmp/JmpIf command, or nil if the block
// falls through (only valid for the function's last block).
func (b *BasicBlock) Terminator() Cmd {
	if len(b.Cmds) == 0 {
		return nil
	}
	last := b.Cmds[len(b.Cmds)-1]
	switch last.(type) {
	case *Jmp, *JmpIf:
		return last
	default:
		return nil
	}
}

// EntryBlockID is the fixed id of a function's entry block.
const EntryBlockID BlockID = 1

// LastBlockID returns the id of the function's terminal (exit) block.
func (fn *Function) LastBlockID() BlockID {
	return BlockID(len(fn.Blocks) - 1)
}

// Block returns the basic block with the given id.
func (fn *Function) Block(id BlockID) *BasicBlock {
	return fn.Blocks[id]
}

// Var returns the variable with the given id (1-based).
func (fn *Function) Var(id VarID) *Var {
	return fn.Vars[id-1]
}

// Upvalue returns the upvalue descriptor with the given id (1-based).
func (fn *Function) Upvalue(id UpvalueID) *Upvalue {
	return fn.CapturedVars[id-1]
}

// NumParams returns how many of fn.Vars are parameters.
func (fn *Function) NumParams() int {
	return len(fn.Typ.ArgTypes)
}
