// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package types is the type model of el.
//
// A Type is a closed variant selected by its Kind.
// Each Kind uses a subset of the Type fields;
// the others are zero.
//
// Record types (structs and unions) and aliases are nominal.
// When the parser sees the name of a record or alias
// it makes a reference type: a Type with the name set
// and with the fields (or alias target) nil.
// The checker populates references lazily, exactly once,
// from the type declaration found by scope lookup.
package types

// A Kind selects the variant of a Type.
type Kind int

// The type kinds.
const (
	// UnresolvedType is the kind of an expression that has no type yet:
	// a numeral or null literal waiting to be filled from context.
	UnresolvedType Kind = iota
	VoidType
	BoolType
	U8Type
	I8Type
	U16Type
	I16Type
	U32Type
	I32Type
	U64Type
	I64Type
	// NumType is an arbitrary-precision numeral.
	// It is never emitted.
	NumType
	PtrType
	ArrType
	FuncType
	StructType
	UnionType
	EnumType
	AliasType
	// ArgsType is the opaque variadic-argument cursor.
	ArgsType
)

// ErrorName is the name of the error record type.
const ErrorName = "!e"

// A Type is an el type.
type Type struct {
	Kind Kind

	// Const is whether the pointee of a PtrType is read-only.
	Const bool

	// Sub is the pointee of a PtrType,
	// the element of an ArrType,
	// or the target of an AliasType.
	// The target of an alias reference is nil until resolved.
	Sub *Type

	// Len is the length of an ArrType.
	// A zero length is inferred from the initializer.
	Len int

	// Name is the name of an AliasType.
	Name string

	Func *Func
	Rec  *Record
	Enum *Enum
}

// A Func is a function signature.
type Func struct {
	Ret      *Type
	Params   []Param
	Variadic bool

	// Check, if non-nil, is an additional validator
	// for the types of the arguments of a call.
	Check func(args []*Type) error
}

// A Param is a function parameter.
// The name is optional.
type Param struct {
	Name string
	Type *Type
}

// Find returns the index of the named parameter or -1.
func (f *Func) Find(name string) int {
	for i, p := range f.Params {
		if p.Name != "" && p.Name == name {
			return i
		}
	}
	return -1
}

// A Record is the field list of a struct or union.
type Record struct {
	Name   string
	Fields []Field

	// Populated is whether Fields holds the declared fields.
	// It never reverts to false.
	Populated bool
}

// A Field is a named member of a Record.
type Field struct {
	Name string
	Type *Type
}

// Find returns the index of the named field or -1.
func (r *Record) Find(name string) int {
	for i, f := range r.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// An Enum is an enumeration.
type Enum struct {
	Name   string
	Values []EnumValue
}

// An EnumValue is a symbol of an Enum.
type EnumValue struct {
	Name string
	Val  int64
}

// Find returns the named value or nil.
func (e *Enum) Find(name string) *EnumValue {
	for i := range e.Values {
		if e.Values[i].Name == name {
			return &e.Values[i]
		}
	}
	return nil
}

// New returns a new type of a kind with no other fields set.
// It is used for scalar kinds.
func New(k Kind) *Type { return &Type{Kind: k} }

// NewPtr returns a pointer type.
func NewPtr(sub *Type, cnst bool) *Type {
	return &Type{Kind: PtrType, Sub: sub, Const: cnst}
}

// NewArr returns an array type.
func NewArr(elem *Type, n int) *Type {
	return &Type{Kind: ArrType, Sub: elem, Len: n}
}

// NewFunc returns a function type.
func NewFunc(ret *Type, params ...Param) *Type {
	return &Type{Kind: FuncType, Func: &Func{Ret: ret, Params: params}}
}

// NewVariadic returns a variadic function type.
func NewVariadic(ret *Type, params ...Param) *Type {
	t := NewFunc(ret, params...)
	t.Func.Variadic = true
	return t
}

// NewStruct returns a populated struct type.
func NewStruct(name string, fields ...Field) *Type {
	return &Type{Kind: StructType, Rec: &Record{Name: name, Fields: fields, Populated: true}}
}

// NewUnion returns a populated union type.
func NewUnion(name string, fields ...Field) *Type {
	return &Type{Kind: UnionType, Rec: &Record{Name: name, Fields: fields, Populated: true}}
}

// StructRef returns an unpopulated reference to a named struct.
func StructRef(name string) *Type {
	return &Type{Kind: StructType, Rec: &Record{Name: name}}
}

// UnionRef returns an unpopulated reference to a named union.
func UnionRef(name string) *Type {
	return &Type{Kind: UnionType, Rec: &Record{Name: name}}
}

// NewEnum returns an enumeration type.
func NewEnum(name string, vals ...EnumValue) *Type {
	return &Type{Kind: EnumType, Enum: &Enum{Name: name, Values: vals}}
}

// NewAlias returns an alias with a known target.
func NewAlias(name string, target *Type) *Type {
	return &Type{Kind: AliasType, Name: name, Sub: target}
}

// AliasRef returns an unresolved reference to a named alias.
func AliasRef(name string) *Type {
	return &Type{Kind: AliasType, Name: name}
}

// NewError returns the error type with the given value and error types.
// The val field is omitted if val is nil or void.
func NewError(val, err *Type) *Type {
	var fields []Field
	if val != nil && val.Kind != VoidType {
		fields = append(fields, Field{Name: "val", Type: val})
	}
	fields = append(fields, Field{Name: "err", Type: err})
	return NewStruct(ErrorName, fields...)
}

// Root returns the non-alias type reached by following aliases.
// It returns nil if an alias is unresolved or the chain is a cycle.
func Root(t *Type) *Type {
	seen := 0
	for t != nil && t.Kind == AliasType {
		if seen++; seen > maxAliasDepth && aliasCycle(t) {
			return nil
		}
		t = t.Sub
	}
	return t
}

// maxAliasDepth is the chain length after which Root
// starts checking for cycles.
const maxAliasDepth = 64

func aliasCycle(t *Type) bool {
	seen := make(map[*Type]bool)
	for t != nil && t.Kind == AliasType {
		if seen[t] {
			return true
		}
		seen[t] = true
		t = t.Sub
	}
	return false
}

func kindOf(t *Type) Kind {
	if r := Root(t); r != nil {
		return r.Kind
	}
	return UnresolvedType
}

// IsUnresolved returns whether t is nil or has no type yet.
func IsUnresolved(t *Type) bool { return t == nil || t.Kind == UnresolvedType }

// IsVoid returns whether t is void.
func IsVoid(t *Type) bool { return t != nil && t.Kind == VoidType }

// IsBool returns whether the root of t is bool.
func IsBool(t *Type) bool { return kindOf(t) == BoolType }

// IsInt returns whether the root of t is an integer type.
// Bool is an integer type.
func IsInt(t *Type) bool {
	switch kindOf(t) {
	case BoolType, U8Type, I8Type, U16Type, I16Type, U32Type, I32Type, U64Type, I64Type:
		return true
	default:
		return false
	}
}

// IsSigned returns whether the root of t is a signed integer type.
func IsSigned(t *Type) bool {
	switch kindOf(t) {
	case I8Type, I16Type, I32Type, I64Type:
		return true
	default:
		return false
	}
}

// IsPtr returns whether t is a pointer.
func IsPtr(t *Type) bool { return t != nil && t.Kind == PtrType }

// IsArr returns whether t is an array.
func IsArr(t *Type) bool { return t != nil && t.Kind == ArrType }

// IsStruct returns whether the root of t is a struct.
func IsStruct(t *Type) bool { return kindOf(t) == StructType }

// IsRecord returns whether t is a struct or union.
func IsRecord(t *Type) bool {
	return t != nil && (t.Kind == StructType || t.Kind == UnionType)
}

// IsError returns whether t is the error type.
func IsError(t *Type) bool {
	return t != nil && t.Kind == StructType && t.Rec.Name == ErrorName
}

// ErrVal returns the val field type of an error type,
// or void if the error type has no val field.
func ErrVal(t *Type) *Type {
	if i := t.Rec.Find("val"); i >= 0 {
		return t.Rec.Fields[i].Type
	}
	return New(VoidType)
}

// ErrErr returns the err field type of an error type.
func ErrErr(t *Type) *Type {
	if i := t.Rec.Find("err"); i >= 0 {
		return t.Rec.Fields[i].Type
	}
	return nil
}

// Fields returns a copy of a field list.
func Fields(fs []Field) []Field {
	return append([]Field(nil), fs...)
}
