// Copyright © 2020 The Pea Authors under an MIT-style license.

package types

import "fortio.org/safecast"

// Size returns the size of a type in bits,
// or -1 if the type has no size.
// Records are packed.
func Size(t *Type) int {
	if t == nil {
		return -1
	}
	switch t.Kind {
	case BoolType, U8Type, I8Type:
		return 8
	case U16Type, I16Type:
		return 16
	case U32Type, I32Type, EnumType:
		return 32
	case U64Type, I64Type, PtrType:
		return 64
	case ArrType:
		elem := Size(t.Sub)
		if elem < 0 {
			return -1
		}
		n, err := safecast.Convert[int32](t.Len)
		if err != nil || n < 0 {
			return -1
		}
		size := int64(n) * int64(elem)
		if elem != 0 && size/int64(elem) != int64(n) {
			return -1
		}
		s, err := safecast.Convert[int](size)
		if err != nil {
			return -1
		}
		return s
	case AliasType:
		return Size(Root(t))
	case StructType:
		size := 0
		for _, f := range t.Rec.Fields {
			s := Size(f.Type)
			if s < 0 {
				return s
			}
			size += s
		}
		return size
	case UnionType:
		max := 0
		for _, f := range t.Rec.Fields {
			if s := Size(f.Type); s > max {
				max = s
			}
		}
		if max == 0 {
			return 1
		}
		return max
	default:
		return -1
	}
}

// Bytes returns the size of a type in bytes, rounded up.
func Bytes(t *Type) int { return (Size(t) + 7) / 8 }

// Offset returns the bit offset of field i of a record.
// Union fields are all at offset 0.
func Offset(t *Type, i int) int {
	if t.Kind == UnionType {
		return 0
	}
	off := 0
	for _, f := range t.Rec.Fields[:i] {
		off += Size(f.Type)
	}
	return off
}
