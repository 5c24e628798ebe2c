// Copyright © 2020 The Pea Authors under an MIT-style license.

package types

import (
	"strconv"
	"strings"
)

var kindNames = map[Kind]string{
	UnresolvedType: "unresolved",
	VoidType:       "void",
	BoolType:       "bool",
	U8Type:         "u8",
	I8Type:         "i8",
	U16Type:        "u16",
	I16Type:        "i16",
	U32Type:        "u32",
	I32Type:        "i32",
	U64Type:        "u64",
	I64Type:        "i64",
	NumType:        "num",
	ArgsType:       "args",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	switch k {
	case PtrType:
		return "pointer"
	case ArrType:
		return "array"
	case FuncType:
		return "function"
	case StructType:
		return "struct"
	case UnionType:
		return "union"
	case EnumType:
		return "enum"
	case AliasType:
		return "alias"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// String returns the type as spelled in diagnostics.
func (t *Type) String() string {
	var s strings.Builder
	buildString(&s, t, 0)
	return s.String()
}

// maxStringDepth bounds the rendering of self-referential types.
const maxStringDepth = 16

func buildString(s *strings.Builder, t *Type, depth int) {
	if t == nil {
		s.WriteString("unresolved")
		return
	}
	if depth > maxStringDepth {
		s.WriteString("...")
		return
	}
	depth++
	switch t.Kind {
	case PtrType:
		if t.Const {
			s.WriteString("cpt:")
		} else {
			s.WriteString("pt:")
		}
		buildString(s, t.Sub, depth)
	case ArrType:
		s.WriteString("arr[")
		s.WriteString(strconv.Itoa(t.Len))
		s.WriteString("]:")
		buildString(s, t.Sub, depth)
	case AliasType:
		s.WriteString("alias:")
		s.WriteString(t.Name)
		s.WriteRune(':')
		if t.Sub != nil {
			buildString(s, t.Sub, depth)
		}
	case FuncType:
		buildString(s, t.Func.Ret, depth)
		s.WriteRune('(')
		for i, p := range t.Func.Params {
			if i > 0 {
				s.WriteString(", ")
			}
			buildString(s, p.Type, depth)
			if p.Name != "" {
				s.WriteRune(' ')
				s.WriteString(p.Name)
			}
		}
		if t.Func.Variadic {
			if len(t.Func.Params) > 0 {
				s.WriteString(", ")
			}
			s.WriteString("...")
		}
		s.WriteRune(')')
	case StructType, UnionType:
		if t.Kind == StructType {
			s.WriteString("st:")
		} else {
			s.WriteString("un:")
		}
		s.WriteString(t.Rec.Name)
		s.WriteRune('{')
		for _, f := range t.Rec.Fields {
			buildString(s, f.Type, depth)
			s.WriteRune(';')
		}
		s.WriteRune('}')
	case EnumType:
		s.WriteString(t.Enum.Name)
	default:
		s.WriteString(t.Kind.String())
	}
}
