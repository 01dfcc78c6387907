package ir

import "fmt"

// Type is implemented by every value type a Var or Value can carry. IsGC
// reports whether values of this type are managed by the host runtime's
// garbage collector and must therefore be considered by the gcinfo passes.
type Type interface {
	String() string
	IsGC() bool
}

// NilType is the type of the Nil literal.
type NilType struct{}

func (NilType) String() string { return "Nil" }
func (NilType) IsGC() bool     { return false }

// BoolType is the type of Bool literals.
type BoolType struct{}

func (BoolType) String() string { return "Bool" }
func (BoolType) IsGC() bool     { return false }

// IntType is the type of Integer literals.
type IntType struct{}

func (IntType) String() string { return "Integer" }
func (IntType) IsGC() bool     { return false }

// FloatType is the type of Float literals.
type FloatType struct{}

func (FloatType) String() string { return "Float" }
func (FloatType) IsGC() bool     { return false }

// StringType is a GC-managed boxed string.
type StringType struct{}

func (StringType) String() string { return "String" }
func (StringType) IsGC() bool     { return true }

// ArrayType is a GC-managed flat array of Elem.
type ArrayType struct {
	Elem Type
}

func (a *ArrayType) String() string { return fmt.Sprintf("Array<%s>", a.Elem) }
func (a *ArrayType) IsGC() bool     { return true }

// RecordType is a GC-managed struct-of-fields. IsUpvalueBox marks the
// synthetic records the front end allocates to hold a captured mutable
// variable; such a record is considered uninitialized until the first
// SetField targeting it (see uninit package).
type RecordType struct {
	Name         string
	Fields       []Field
	IsUpvalueBox bool
}

// Field is one named, typed slot of a RecordType.
type Field struct {
	Name string
	Typ  Type
}

func (r *RecordType) String() string { return r.Name }
func (r *RecordType) IsGC() bool     { return true }

// FunctionType is the type of a function value (used for upvalues/locals
// holding a closure reference).
type FunctionType struct {
	Args []Type
	Rets []Type
}

func (f *FunctionType) String() string { return "Function" }
func (f *FunctionType) IsGC() bool     { return true }

// IsScalar reports whether t is one of the five literal-bearing scalar
// types constant propagation tracks (Nil, Bool, Integer, Float, String).
// Note String is GC-managed but still scalar/immutable, matching §4.3's
// "scalar non-reference types" wording in the owning spec.
func IsScalar(t Type) bool {
	switch t.(type) {
	case NilType, BoolType, IntType, FloatType, StringType:
		return true
	default:
		return false
	}
}
