package ir

// Value is a command operand: either a literal, a reference to a local
// variable, or a reference to a captured upvalue.
type Value interface {
	IsConstant() bool
	valueTag()
}

// Nil is the nil literal.
type Nil struct{}

func (Nil) IsConstant() bool { return true }
func (Nil) valueTag()        {}

// Bool is a boolean literal.
type Bool struct{ V bool }

func (Bool) IsConstant() bool { return true }
func (Bool) valueTag()        {}

// Integer is an integer literal.
type Integer struct{ V int64 }

func (Integer) IsConstant() bool { return true }
func (Integer) valueTag()        {}

// Float is a floating-point literal.
type Float struct{ V float64 }

func (Float) IsConstant() bool { return true }
func (Float) valueTag()        {}

// String is a string literal.
type String struct{ V string }

func (String) IsConstant() bool { return true }
func (String) valueTag()        {}

// LocalVar references a function-local variable by id.
type LocalVar struct{ ID VarID }

func (LocalVar) IsConstant() bool { return false }
func (LocalVar) valueTag()        {}

// UpvalueRef references a captured-variable slot by id.
type UpvalueRef struct{ ID UpvalueID }

func (UpvalueRef) IsConstant() bool { return false }
func (UpvalueRef) valueTag()        {}

// IsConstantValue reports whether v is a literal (as opposed to a
// reference to a local or upvalue). Exposed as a package-level function
// per the §4.1-item-1 "constant-value test" utility, in addition to the
// Value.IsConstant method, so callers working with bare ir.Value operands
// need not do a type switch themselves.
func IsConstantValue(v Value) bool {
	return v.IsConstant()
}

// AsLiteral builds the IR literal Value that holds the given Go value for
// the given scalar Type. Used by constprop when rewriting a source to a
// freshly constructed literal.
func AsLiteral(t Type, v interface{}) Value {
	switch t.(type) {
	case NilType:
		return Nil{}
	case BoolType:
		return Bool{V: v.(bool)}
	case IntType:
		return Integer{V: v.(int64)}
	case FloatType:
		return Float{V: v.(float64)}
	case StringType:
		return String{V: v.(string)}
	default:
		panic("ir: AsLiteral called with non-scalar type")
	}
}
