package ir

// Cmd is a single instruction within a basic block. Implementations are
// the tagged variants named in the owning spec: Move, CallStatic, CallDyn,
// NewArr, GetArr, SetArr, RenormArr, NewRecord, SetField, InitUpvalues,
// CheckGC, Jmp, JmpIf, Nop.
//
// Sources returns every Value read by the command, Destinations every
// VarID written, JumpTargets every BlockID a terminator may transfer
// control to (empty for non-terminators), Location the command's source
// position.
type Cmd interface {
	Sources() []Value
	Destinations() []VarID
	JumpTargets() []BlockID
	Location() Pos

	// SetSources overwrites the command's Value operands in the same
	// order Sources returns them. Used by constprop to rewrite a source
	// in place with a freshly constructed literal.
	SetSources(vals []Value)
}

// Move copies Src into Dst.
type Move struct {
	Loc Pos
	Dst VarID
	Src Value
}

func (c *Move) Sources() []Value        { return []Value{c.Src} }
func (c *Move) Destinations() []VarID   { return []VarID{c.Dst} }
func (c *Move) JumpTargets() []BlockID  { return nil }
func (c *Move) Location() Pos           { return c.Loc }
func (c *Move) SetSources(vals []Value) { c.Src = vals[0] }

// CallStatic calls a function known at compile time (SrcF resolves via
// Function.FIDOfUpvalue/FIDOfLocal). It is a GC-safe point.
type CallStatic struct {
	Loc  Pos
	Dsts []VarID
	SrcF Value
	Srcs []Value
}

func (c *CallStatic) Sources() []Value       { return append([]Value{c.SrcF}, c.Srcs...) }
func (c *CallStatic) Destinations() []VarID  { return c.Dsts }
func (c *CallStatic) JumpTargets() []BlockID { return nil }
func (c *CallStatic) Location() Pos          { return c.Loc }
func (c *CallStatic) SetSources(vals []Value) { c.SrcF = vals[0]; c.Srcs = append([]Value{}, vals[1:]...) }

// CallDyn calls a function only known dynamically. It is a GC-safe point.
type CallDyn struct {
	Loc  Pos
	Dsts []VarID
	SrcF Value
	Srcs []Value
}

func (c *CallDyn) Sources() []Value       { return append([]Value{c.SrcF}, c.Srcs...) }
func (c *CallDyn) Destinations() []VarID  { return c.Dsts }
func (c *CallDyn) JumpTargets() []BlockID { return nil }
func (c *CallDyn) Location() Pos          { return c.Loc }
func (c *CallDyn) SetSources(vals []Value) { c.SrcF = vals[0]; c.Srcs = append([]Value{}, vals[1:]...) }

// NewArr allocates a fresh array of SrcSize elements.
type NewArr struct {
	Loc     Pos
	Dst     VarID
	SrcSize Value
	Elem    Type
}

func (c *NewArr) Sources() []Value       { return []Value{c.SrcSize} }
func (c *NewArr) Destinations() []VarID  { return []VarID{c.Dst} }
func (c *NewArr) JumpTargets() []BlockID { return nil }
func (c *NewArr) Location() Pos          { return c.Loc }
func (c *NewArr) SetSources(vals []Value) { c.SrcSize = vals[0] }

// GetArr reads SrcArr[SrcI] into Dst.
type GetArr struct {
	Loc     Pos
	Dst     VarID
	SrcArr  Value
	SrcI    Value
}

func (c *GetArr) Sources() []Value       { return []Value{c.SrcArr, c.SrcI} }
func (c *GetArr) Destinations() []VarID  { return []VarID{c.Dst} }
func (c *GetArr) JumpTargets() []BlockID { return nil }
func (c *GetArr) Location() Pos          { return c.Loc }
func (c *GetArr) SetSources(vals []Value) { c.SrcArr = vals[0]; c.SrcI = vals[1] }

// SetArr writes SrcV into SrcArr[SrcI].
type SetArr struct {
	Loc    Pos
	SrcArr Value
	SrcI   Value
	SrcV   Value
}

func (c *SetArr) Sources() []Value       { return []Value{c.SrcArr, c.SrcI, c.SrcV} }
func (c *SetArr) Destinations() []VarID  { return nil }
func (c *SetArr) JumpTargets() []BlockID { return nil }
func (c *SetArr) Location() Pos          { return c.Loc }
func (c *SetArr) SetSources(vals []Value) { c.SrcArr = vals[0]; c.SrcI = vals[1]; c.SrcV = vals[2] }

// RenormArr refreshes SrcArr's bounds/metadata for an access at index
// SrcI. Redundant across loop iterations when SrcArr and SrcI are
// loop-invariant; see the renormalize package.
type RenormArr struct {
	Loc    Pos
	SrcArr Value
	SrcI   Value
}

func (c *RenormArr) Sources() []Value       { return []Value{c.SrcArr, c.SrcI} }
func (c *RenormArr) Destinations() []VarID  { return nil }
func (c *RenormArr) JumpTargets() []BlockID { return nil }
func (c *RenormArr) Location() Pos          { return c.Loc }
func (c *RenormArr) SetSources(vals []Value) { c.SrcArr = vals[0]; c.SrcI = vals[1] }

// NewRecord allocates a fresh record of RecTyp. If RecTyp.IsUpvalueBox,
// the allocated box is not considered initialized until a later SetField
// writes into it (see uninit).
type NewRecord struct {
	Loc     Pos
	Dst     VarID
	RecTyp  *RecordType
}

func (c *NewRecord) Sources() []Value       { return nil }
func (c *NewRecord) Destinations() []VarID  { return []VarID{c.Dst} }
func (c *NewRecord) JumpTargets() []BlockID { return nil }
func (c *NewRecord) Location() Pos          { return c.Loc }
func (c *NewRecord) SetSources(vals []Value) {}

// SetField writes SrcV into SrcRec's Field.
type SetField struct {
	Loc     Pos
	SrcRec  Value
	SrcV    Value
	RecTyp  *RecordType
	Field   string
}

func (c *SetField) Sources() []Value       { return []Value{c.SrcRec, c.SrcV} }
func (c *SetField) Destinations() []VarID  { return nil }
func (c *SetField) JumpTargets() []BlockID { return nil }
func (c *SetField) Location() Pos          { return c.Loc }
func (c *SetField) SetSources(vals []Value) { c.SrcRec = vals[0]; c.SrcV = vals[1] }

// IsUpvalueBoxInit reports whether this SetField is the initializing
// write of an upvalue box: src_rec is a LocalVar and RecTyp.IsUpvalueBox.
// When true, the uninit analysis's read-check falls on SrcV, not SrcRec,
// and the write counts as an initializer of SrcRec's var-id.
func (c *SetField) IsUpvalueBoxInit() (VarID, bool) {
	if c.RecTyp == nil || !c.RecTyp.IsUpvalueBox {
		return 0, false
	}
	if lv, ok := c.SrcRec.(LocalVar); ok {
		return lv.ID, true
	}
	return 0, false
}

// InitUpvalues populates the upvalue slots of a to-be-created closure for
// function FID from Srcs, in slot order.
type InitUpvalues struct {
	Loc Pos
	FID FuncID
	Srcs []Value
}

func (c *InitUpvalues) Sources() []Value       { return c.Srcs }
func (c *InitUpvalues) Destinations() []VarID  { return nil }
func (c *InitUpvalues) JumpTargets() []BlockID { return nil }
func (c *InitUpvalues) Location() Pos          { return c.Loc }
func (c *InitUpvalues) SetSources(vals []Value) { c.Srcs = append([]Value{}, vals...) }

// CheckGC is an explicit GC-safe point with no other effect.
type CheckGC struct {
	Loc Pos
}

func (c *CheckGC) Sources() []Value       { return nil }
func (c *CheckGC) Destinations() []VarID  { return nil }
func (c *CheckGC) JumpTargets() []BlockID { return nil }
func (c *CheckGC) Location() Pos          { return c.Loc }
func (c *CheckGC) SetSources(vals []Value) {}

// Jmp unconditionally transfers control to Target. A terminator.
type Jmp struct {
	Loc    Pos
	Target BlockID
}

func (c *Jmp) Sources() []Value       { return nil }
func (c *Jmp) Destinations() []VarID  { return nil }
func (c *Jmp) JumpTargets() []BlockID { return []BlockID{c.Target} }
func (c *Jmp) Location() Pos          { return c.Loc }
func (c *Jmp) SetSources(vals []Value) {}

// JmpIf transfers control to TargetTrue if Cond is truthy, else
// TargetFalse. A terminator.
type JmpIf struct {
	Loc         Pos
	Cond        Value
	TargetTrue  BlockID
	TargetFalse BlockID
}

func (c *JmpIf) Sources() []Value       { return []Value{c.Cond} }
func (c *JmpIf) Destinations() []VarID  { return nil }
func (c *JmpIf) JumpTargets() []BlockID { return []BlockID{c.TargetTrue, c.TargetFalse} }
func (c *JmpIf) Location() Pos          { return c.Loc }
func (c *JmpIf) SetSources(vals []Value) { c.Cond = vals[0] }

// Nop has no effect. Used by passes (renormalize) to erase a command
// without disturbing cmd indices that other per-command analysis results
// reference.
type Nop struct {
	Loc Pos
}

func (c *Nop) Sources() []Value       { return nil }
func (c *Nop) Destinations() []VarID  { return nil }
func (c *Nop) JumpTargets() []BlockID { return nil }
func (c *Nop) Location() Pos          { return c.Loc }
func (c *Nop) SetSources(vals []Value) {}

// IsGCSafePoint reports whether cmd is a point at which the GC may run:
// any call or an explicit CheckGC.
func IsGCSafePoint(cmd Cmd) bool {
	switch cmd.(type) {
	case *CallStatic, *CallDyn, *CheckGC:
		return true
	default:
		return false
	}
}
