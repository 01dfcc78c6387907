package ir

import (
	"encoding/json"
	"strconv"
)

// The fixture format is the JSON-on-disk shape of a Module, used by cmd/velac and by
// tests that would rather write a literal fixture than construct structs
// by hand. It is ambient test/CLI tooling, not part of the IR's own
// contract with the passes — every tagged variant gets one flat JSON
// struct with a "tag" discriminator instead of a marshaler per Go type,
// which keeps the fixture format readable by hand.

type posJSON struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
}

func posToJSON(p Pos) posJSON { return posJSON{File: p.File, Line: p.Line, Col: p.Col} }
func posFromJSON(p posJSON) Pos {
	return Pos{File: p.File, Line: p.Line, Col: p.Col}
}

type valueJSON struct {
	Tag   string  `json:"tag"`
	Bool  bool    `json:"bool,omitempty"`
	Int   int64   `json:"int,omitempty"`
	Float float64 `json:"float,omitempty"`
	Str   string  `json:"str,omitempty"`
	ID    int     `json:"id,omitempty"`
}

func valueToJSON(v Value) valueJSON {
	switch val := v.(type) {
	case Nil:
		return valueJSON{Tag: "nil"}
	case Bool:
		return valueJSON{Tag: "bool", Bool: val.V}
	case Integer:
		return valueJSON{Tag: "int", Int: val.V}
	case Float:
		return valueJSON{Tag: "float", Float: val.V}
	case String:
		return valueJSON{Tag: "string", Str: val.V}
	case LocalVar:
		return valueJSON{Tag: "local", ID: int(val.ID)}
	case UpvalueRef:
		return valueJSON{Tag: "upvalue", ID: int(val.ID)}
	default:
		panic("ir: fixture cannot encode unrecognized Value tag")
	}
}

func valueFromJSON(v valueJSON) Value {
	switch v.Tag {
	case "nil":
		return Nil{}
	case "bool":
		return Bool{V: v.Bool}
	case "int":
		return Integer{V: v.Int}
	case "float":
		return Float{V: v.Float}
	case "string":
		return String{V: v.Str}
	case "local":
		return LocalVar{ID: VarID(v.ID)}
	case "upvalue":
		return UpvalueRef{ID: UpvalueID(v.ID)}
	default:
		panic("ir: fixture cannot decode unrecognized value tag " + v.Tag)
	}
}

func valuesToJSON(vs []Value) []valueJSON {
	if vs == nil {
		return nil
	}
	out := make([]valueJSON, len(vs))
	for i, v := range vs {
		out[i] = valueToJSON(v)
	}
	return out
}

func valuesFromJSON(vs []valueJSON) []Value {
	if vs == nil {
		return nil
	}
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = valueFromJSON(v)
	}
	return out
}

type typeJSON struct {
	Tag    string          `json:"tag"`
	Elem   *typeJSON       `json:"elem,omitempty"`
	Record *recordTypeJSON `json:"record,omitempty"`
	Func   *funcTypeJSONT  `json:"func,omitempty"`
}

type fieldJSON struct {
	Name string   `json:"name"`
	Typ  typeJSON `json:"typ"`
}

type recordTypeJSON struct {
	Name         string      `json:"name"`
	Fields       []fieldJSON `json:"fields,omitempty"`
	IsUpvalueBox bool        `json:"is_upvalue_box,omitempty"`
}

type funcTypeJSONT struct {
	ArgTypes []typeJSON `json:"arg_types,omitempty"`
	RetTypes []typeJSON `json:"ret_types,omitempty"`
}

func typeToJSON(t Type) typeJSON {
	switch typ := t.(type) {
	case NilType:
		return typeJSON{Tag: "nil"}
	case BoolType:
		return typeJSON{Tag: "bool"}
	case IntType:
		return typeJSON{Tag: "int"}
	case FloatType:
		return typeJSON{Tag: "float"}
	case StringType:
		return typeJSON{Tag: "string"}
	case *ArrayType:
		elem := typeToJSON(typ.Elem)
		return typeJSON{Tag: "array", Elem: &elem}
	case *RecordType:
		fields := make([]fieldJSON, len(typ.Fields))
		for i, f := range typ.Fields {
			fields[i] = fieldJSON{Name: f.Name, Typ: typeToJSON(f.Typ)}
		}
		return typeJSON{Tag: "record", Record: &recordTypeJSON{
			Name: typ.Name, Fields: fields, IsUpvalueBox: typ.IsUpvalueBox,
		}}
	case *FunctionType:
		args := make([]typeJSON, len(typ.Args))
		for i, a := range typ.Args {
			args[i] = typeToJSON(a)
		}
		rets := make([]typeJSON, len(typ.Rets))
		for i, r := range typ.Rets {
			rets[i] = typeToJSON(r)
		}
		return typeJSON{Tag: "function", Func: &funcTypeJSONT{ArgTypes: args, RetTypes: rets}}
	default:
		panic("ir: fixture cannot encode unrecognized Type tag")
	}
}

func typeFromJSON(t typeJSON) Type {
	switch t.Tag {
	case "nil":
		return NilType{}
	case "bool":
		return BoolType{}
	case "int":
		return IntType{}
	case "float":
		return FloatType{}
	case "string":
		return StringType{}
	case "array":
		return &ArrayType{Elem: typeFromJSON(*t.Elem)}
	case "record":
		fields := make([]Field, len(t.Record.Fields))
		for i, f := range t.Record.Fields {
			fields[i] = Field{Name: f.Name, Typ: typeFromJSON(f.Typ)}
		}
		return &RecordType{Name: t.Record.Name, Fields: fields, IsUpvalueBox: t.Record.IsUpvalueBox}
	case "function":
		args := make([]Type, len(t.Func.ArgTypes))
		for i, a := range t.Func.ArgTypes {
			args[i] = typeFromJSON(a)
		}
		rets := make([]Type, len(t.Func.RetTypes))
		for i, r := range t.Func.RetTypes {
			rets[i] = typeFromJSON(r)
		}
		return &FunctionType{Args: args, Rets: rets}
	default:
		panic("ir: fixture cannot decode unrecognized type tag " + t.Tag)
	}
}

type cmdJSON struct {
	Tag         string      `json:"tag"`
	Loc         posJSON     `json:"loc,omitempty"`
	Dst         int         `json:"dst,omitempty"`
	Dsts        []int       `json:"dsts,omitempty"`
	Src         *valueJSON  `json:"src,omitempty"`
	SrcF        *valueJSON  `json:"src_f,omitempty"`
	Srcs        []valueJSON `json:"srcs,omitempty"`
	SrcSize     *valueJSON  `json:"src_size,omitempty"`
	SrcArr      *valueJSON  `json:"src_arr,omitempty"`
	SrcI        *valueJSON  `json:"src_i,omitempty"`
	SrcV        *valueJSON  `json:"src_v,omitempty"`
	SrcRec      *valueJSON  `json:"src_rec,omitempty"`
	Cond        *valueJSON  `json:"cond,omitempty"`
	Elem        *typeJSON   `json:"elem,omitempty"`
	RecTyp      *recordTypeJSON `json:"rec_typ,omitempty"`
	Field       string      `json:"field,omitempty"`
	FID         int         `json:"fid,omitempty"`
	Target      int         `json:"target,omitempty"`
	TargetTrue  int         `json:"target_true,omitempty"`
	TargetFalse int         `json:"target_false,omitempty"`
}

func cmdToJSON(cmd Cmd) cmdJSON {
	loc := posToJSON(cmd.Location())
	switch c := cmd.(type) {
	case *Move:
		src := valueToJSON(c.Src)
		return cmdJSON{Tag: "move", Loc: loc, Dst: int(c.Dst), Src: &src}
	case *CallStatic:
		srcF := valueToJSON(c.SrcF)
		return cmdJSON{Tag: "call_static", Loc: loc, Dsts: varIDsToInts(c.Dsts), SrcF: &srcF, Srcs: valuesToJSON(c.Srcs)}
	case *CallDyn:
		srcF := valueToJSON(c.SrcF)
		return cmdJSON{Tag: "call_dyn", Loc: loc, Dsts: varIDsToInts(c.Dsts), SrcF: &srcF, Srcs: valuesToJSON(c.Srcs)}
	case *NewArr:
		size := valueToJSON(c.SrcSize)
		elem := typeToJSON(c.Elem)
		return cmdJSON{Tag: "new_arr", Loc: loc, Dst: int(c.Dst), SrcSize: &size, Elem: &elem}
	case *GetArr:
		arr, i := valueToJSON(c.SrcArr), valueToJSON(c.SrcI)
		return cmdJSON{Tag: "get_arr", Loc: loc, Dst: int(c.Dst), SrcArr: &arr, SrcI: &i}
	case *SetArr:
		arr, i, v := valueToJSON(c.SrcArr), valueToJSON(c.SrcI), valueToJSON(c.SrcV)
		return cmdJSON{Tag: "set_arr", Loc: loc, SrcArr: &arr, SrcI: &i, SrcV: &v}
	case *RenormArr:
		arr, i := valueToJSON(c.SrcArr), valueToJSON(c.SrcI)
		return cmdJSON{Tag: "renorm_arr", Loc: loc, SrcArr: &arr, SrcI: &i}
	case *NewRecord:
		rt := typeToRecordJSON(c.RecTyp)
		return cmdJSON{Tag: "new_record", Loc: loc, Dst: int(c.Dst), RecTyp: &rt}
	case *SetField:
		rec, v := valueToJSON(c.SrcRec), valueToJSON(c.SrcV)
		rt := typeToRecordJSON(c.RecTyp)
		return cmdJSON{Tag: "set_field", Loc: loc, SrcRec: &rec, SrcV: &v, RecTyp: &rt, Field: c.Field}
	case *InitUpvalues:
		return cmdJSON{Tag: "init_upvalues", Loc: loc, FID: int(c.FID), Srcs: valuesToJSON(c.Srcs)}
	case *CheckGC:
		return cmdJSON{Tag: "check_gc", Loc: loc}
	case *Jmp:
		return cmdJSON{Tag: "jmp", Loc: loc, Target: int(c.Target)}
	case *JmpIf:
		cond := valueToJSON(c.Cond)
		return cmdJSON{Tag: "jmp_if", Loc: loc, Cond: &cond, TargetTrue: int(c.TargetTrue), TargetFalse: int(c.TargetFalse)}
	case *Nop:
		return cmdJSON{Tag: "nop", Loc: loc}
	default:
		panic("ir: fixture cannot encode unrecognized Cmd tag")
	}
}

func cmdFromJSON(c cmdJSON) Cmd {
	loc := posFromJSON(c.Loc)
	switch c.Tag {
	case "move":
		return &Move{Loc: loc, Dst: VarID(c.Dst), Src: valueFromJSON(*c.Src)}
	case "call_static":
		return &CallStatic{Loc: loc, Dsts: intsToVarIDs(c.Dsts), SrcF: valueFromJSON(*c.SrcF), Srcs: valuesFromJSON(c.Srcs)}
	case "call_dyn":
		return &CallDyn{Loc: loc, Dsts: intsToVarIDs(c.Dsts), SrcF: valueFromJSON(*c.SrcF), Srcs: valuesFromJSON(c.Srcs)}
	case "new_arr":
		return &NewArr{Loc: loc, Dst: VarID(c.Dst), SrcSize: valueFromJSON(*c.SrcSize), Elem: typeFromJSON(*c.Elem)}
	case "get_arr":
		return &GetArr{Loc: loc, Dst: VarID(c.Dst), SrcArr: valueFromJSON(*c.SrcArr), SrcI: valueFromJSON(*c.SrcI)}
	case "set_arr":
		return &SetArr{Loc: loc, SrcArr: valueFromJSON(*c.SrcArr), SrcI: valueFromJSON(*c.SrcI), SrcV: valueFromJSON(*c.SrcV)}
	case "renorm_arr":
		return &RenormArr{Loc: loc, SrcArr: valueFromJSON(*c.SrcArr), SrcI: valueFromJSON(*c.SrcI)}
	case "new_record":
		rt := recordTypeFromJSON(*c.RecTyp)
		return &NewRecord{Loc: loc, Dst: VarID(c.Dst), RecTyp: &rt}
	case "set_field":
		rt := recordTypeFromJSON(*c.RecTyp)
		return &SetField{Loc: loc, SrcRec: valueFromJSON(*c.SrcRec), SrcV: valueFromJSON(*c.SrcV), RecTyp: &rt, Field: c.Field}
	case "init_upvalues":
		return &InitUpvalues{Loc: loc, FID: FuncID(c.FID), Srcs: valuesFromJSON(c.Srcs)}
	case "check_gc":
		return &CheckGC{Loc: loc}
	case "jmp":
		return &Jmp{Loc: loc, Target: BlockID(c.Target)}
	case "jmp_if":
		return &JmpIf{Loc: loc, Cond: valueFromJSON(*c.Cond), TargetTrue: BlockID(c.TargetTrue), TargetFalse: BlockID(c.TargetFalse)}
	case "nop":
		return &Nop{Loc: loc}
	default:
		panic("ir: fixture cannot decode unrecognized cmd tag " + c.Tag)
	}
}

func typeToRecordJSON(rt *RecordType) recordTypeJSON {
	fields := make([]fieldJSON, len(rt.Fields))
	for i, f := range rt.Fields {
		fields[i] = fieldJSON{Name: f.Name, Typ: typeToJSON(f.Typ)}
	}
	return recordTypeJSON{Name: rt.Name, Fields: fields, IsUpvalueBox: rt.IsUpvalueBox}
}

func recordTypeFromJSON(rt recordTypeJSON) RecordType {
	fields := make([]Field, len(rt.Fields))
	for i, f := range rt.Fields {
		fields[i] = Field{Name: f.Name, Typ: typeFromJSON(f.Typ)}
	}
	return RecordType{Name: rt.Name, Fields: fields, IsUpvalueBox: rt.IsUpvalueBox}
}

func itoa(n int) string { return strconv.Itoa(n) }
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func varIDsToInts(ids []VarID) []int {
	if ids == nil {
		return nil
	}
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

func intsToVarIDs(ids []int) []VarID {
	if ids == nil {
		return nil
	}
	out := make([]VarID, len(ids))
	for i, id := range ids {
		out[i] = VarID(id)
	}
	return out
}

type blockJSON struct {
	Cmds []cmdJSON `json:"cmds"`
}

type varJSON struct {
	Name string   `json:"name"`
	Typ  typeJSON `json:"typ"`
	Loc  posJSON  `json:"loc,omitempty"`
}

type upvalueJSON struct {
	Name string   `json:"name"`
	Typ  typeJSON `json:"typ"`
	Loc  posJSON  `json:"loc,omitempty"`
}

type loopJSON struct {
	PrepBlock      int       `json:"prep_block"`
	BodyFirstBlock int       `json:"body_first_block"`
	BodyLastBlock  int       `json:"body_last_block"`
	IterVar        int       `json:"iter_var"`
	Limit          valueJSON `json:"limit"`
	StepIsPositive bool      `json:"step_is_positive"`
	Loc            posJSON   `json:"loc,omitempty"`
}

type functionJSON struct {
	Name         string          `json:"name"`
	Typ          funcTypeJSONT   `json:"typ"`
	Vars         []varJSON       `json:"vars"`
	RetVars      []int           `json:"ret_vars,omitempty"`
	CapturedVars []upvalueJSON   `json:"captured_vars,omitempty"`
	Blocks       []blockJSON     `json:"blocks"`
	FIDOfUpvalue map[string]int  `json:"fid_of_upvalue,omitempty"`
	FIDOfLocal   map[string]int  `json:"fid_of_local,omitempty"`
	ForLoops     []loopJSON      `json:"for_loops,omitempty"`
	Loc          posJSON         `json:"loc,omitempty"`
}

type moduleJSON struct {
	Functions []functionJSON `json:"functions"`
}

// MarshalFixture encodes mod as the JSON fixture format.
func MarshalFixture(mod *Module) ([]byte, error) {
	mj := moduleJSON{Functions: make([]functionJSON, len(mod.Functions))}
	for i, fn := range mod.Functions {
		mj.Functions[i] = functionToJSON(fn)
	}
	return json.MarshalIndent(mj, "", "  ")
}

// UnmarshalFixture decodes the JSON fixture format into a Module.
func UnmarshalFixture(data []byte) (*Module, error) {
	var mj moduleJSON
	if err := json.Unmarshal(data, &mj); err != nil {
		return nil, err
	}
	mod := &Module{Functions: make([]*Function, len(mj.Functions))}
	for i, fj := range mj.Functions {
		mod.Functions[i] = functionFromJSON(fj)
	}
	return mod, nil
}

func functionToJSON(fn *Function) functionJSON {
	argTypes := make([]typeJSON, len(fn.Typ.ArgTypes))
	for i, t := range fn.Typ.ArgTypes {
		argTypes[i] = typeToJSON(t)
	}
	retTypes := make([]typeJSON, len(fn.Typ.RetTypes))
	for i, t := range fn.Typ.RetTypes {
		retTypes[i] = typeToJSON(t)
	}

	vars := make([]varJSON, len(fn.Vars))
	for i, v := range fn.Vars {
		vars[i] = varJSON{Name: v.Name, Typ: typeToJSON(v.Typ), Loc: posToJSON(v.Loc)}
	}

	upvals := make([]upvalueJSON, len(fn.CapturedVars))
	for i, u := range fn.CapturedVars {
		upvals[i] = upvalueJSON{Name: u.Name, Typ: typeToJSON(u.Typ), Loc: posToJSON(u.Loc)}
	}

	blocks := make([]blockJSON, len(fn.Blocks)-1)
	for i := 1; i < len(fn.Blocks); i++ {
		blk := fn.Blocks[i]
		cmds := make([]cmdJSON, len(blk.Cmds))
		for j, cmd := range blk.Cmds {
			cmds[j] = cmdToJSON(cmd)
		}
		blocks[i-1] = blockJSON{Cmds: cmds}
	}

	loops := make([]loopJSON, len(fn.ForLoops))
	for i, l := range fn.ForLoops {
		loops[i] = loopJSON{
			PrepBlock:      int(l.PrepBlock),
			BodyFirstBlock: int(l.BodyFirstBlock),
			BodyLastBlock:  int(l.BodyLastBlock),
			IterVar:        int(l.IterVar),
			Limit:          valueToJSON(l.Limit),
			StepIsPositive: l.StepIsPositive,
			Loc:            posToJSON(l.Loc),
		}
	}

	var fidUp map[string]int
	if len(fn.FIDOfUpvalue) > 0 {
		fidUp = make(map[string]int, len(fn.FIDOfUpvalue))
		for id, fid := range fn.FIDOfUpvalue {
			fidUp[itoa(int(id))] = int(fid)
		}
	}
	var fidLocal map[string]int
	if len(fn.FIDOfLocal) > 0 {
		fidLocal = make(map[string]int, len(fn.FIDOfLocal))
		for id, fid := range fn.FIDOfLocal {
			fidLocal[itoa(int(id))] = int(fid)
		}
	}

	return functionJSON{
		Name:         fn.Name,
		Typ:          funcTypeJSONT{ArgTypes: argTypes, RetTypes: retTypes},
		Vars:         vars,
		RetVars:      varIDsToInts(fn.RetVars),
		CapturedVars: upvals,
		Blocks:       blocks,
		FIDOfUpvalue: fidUp,
		FIDOfLocal:   fidLocal,
		ForLoops:     loops,
		Loc:          posToJSON(fn.Loc),
	}
}

func functionFromJSON(fj functionJSON) *Function {
	argTypes := make([]Type, len(fj.Typ.ArgTypes))
	for i, t := range fj.Typ.ArgTypes {
		argTypes[i] = typeFromJSON(t)
	}
	retTypes := make([]Type, len(fj.Typ.RetTypes))
	for i, t := range fj.Typ.RetTypes {
		retTypes[i] = typeFromJSON(t)
	}

	vars := make([]*Var, len(fj.Vars))
	for i, v := range fj.Vars {
		vars[i] = &Var{Name: v.Name, Typ: typeFromJSON(v.Typ), Loc: posFromJSON(v.Loc)}
	}

	upvals := make([]*Upvalue, len(fj.CapturedVars))
	for i, u := range fj.CapturedVars {
		upvals[i] = &Upvalue{Name: u.Name, Typ: typeFromJSON(u.Typ), Loc: posFromJSON(u.Loc)}
	}

	blocks := make([]*BasicBlock, len(fj.Blocks)+1)
	for i, bj := range fj.Blocks {
		cmds := make([]Cmd, len(bj.Cmds))
		for j, cj := range bj.Cmds {
			cmds[j] = cmdFromJSON(cj)
		}
		blocks[i+1] = &BasicBlock{ID: BlockID(i + 1), Cmds: cmds}
	}

	loops := make([]*Loop, len(fj.ForLoops))
	for i, lj := range fj.ForLoops {
		loops[i] = &Loop{
			PrepBlock:      BlockID(lj.PrepBlock),
			BodyFirstBlock: BlockID(lj.BodyFirstBlock),
			BodyLastBlock:  BlockID(lj.BodyLastBlock),
			IterVar:        VarID(lj.IterVar),
			Limit:          valueFromJSON(lj.Limit),
			StepIsPositive: lj.StepIsPositive,
			Loc:            posFromJSON(lj.Loc),
		}
	}

	var fidUp map[UpvalueID]FuncID
	if len(fj.FIDOfUpvalue) > 0 {
		fidUp = make(map[UpvalueID]FuncID, len(fj.FIDOfUpvalue))
		for idStr, fid := range fj.FIDOfUpvalue {
			fidUp[UpvalueID(atoi(idStr))] = FuncID(fid)
		}
	}
	var fidLocal map[VarID]FuncID
	if len(fj.FIDOfLocal) > 0 {
		fidLocal = make(map[VarID]FuncID, len(fj.FIDOfLocal))
		for idStr, fid := range fj.FIDOfLocal {
			fidLocal[VarID(atoi(idStr))] = FuncID(fid)
		}
	}

	return &Function{
		Name:         fj.Name,
		Typ:          FuncType{ArgTypes: argTypes, RetTypes: retTypes},
		Vars:         vars,
		RetVars:      intsToVarIDs(fj.RetVars),
		CapturedVars: upvals,
		Blocks:       blocks,
		FIDOfUpvalue: fidUp,
		FIDOfLocal:   fidLocal,
		ForLoops:     loops,
		Loc:          posFromJSON(fj.Loc),
	}
}
