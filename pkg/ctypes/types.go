// Package ctypes defines the C type system for the 16-bit target.
// Integer widths are the target's, not the host's: char is 8 bits,
// short/int/_Bool are 16, long is 32, long long is 64, pointers are 16.
package ctypes

import "fmt"

// Type is the interface for all C types.
type Type interface {
	implType()
	String() string
}

// Signedness represents signed/unsigned for integer types.
type Signedness int

const (
	Signed Signedness = iota
	Unsigned
)

func (s Signedness) String() string {
	if s == Signed {
		return "signed"
	}
	return "unsigned"
}

// IntSize represents the storage size of integer types.
type IntSize int

const (
	I8 IntSize = iota
	I16
	I32
	I64
	IBool
)

func (s IntSize) String() string {
	names := []string{"i8", "i16", "i32", "i64", "ibool"}
	if int(s) < len(names) {
		return names[s]
	}
	return "?"
}

// Tvoid represents the void type.
type Tvoid struct{}

// Tint represents integer types (char, short, int, long, long long, _Bool).
type Tint struct {
	Size IntSize
	Sign Signedness
}

// Tvalist represents the va_list builtin type.
type Tvalist struct{}

// Tpointer represents pointer types. Elem is owned.
type Tpointer struct {
	Elem Type
}

// Tarray represents array types. Elem is owned. Size is -1 for an
// incomplete array. Index optionally records a declared index type
// (used for bounds diagnostics on enum-indexed arrays).
type Tarray struct {
	Elem  Type
	Size  int64
	Index Type
}

// Trecord references a struct or union definition. The definition is
// shared with the registry, never owned by the type value.
type Trecord struct {
	Def *Record
}

// Tenum references an enum definition, shared with the registry.
type Tenum struct {
	Def *Enum
}

// CallConv is the calling convention of a function type.
type CallConv int

// ConvDefault is the target's normal convention. The type system keeps
// a slot for alternatives so composed declarations preserve it.
const ConvDefault CallConv = 0

// Tfunction represents function types. Return and Params are owned.
type Tfunction struct {
	Return   Type
	Params   []Type
	Variadic bool
	Conv     CallConv
}

// Marker methods for Type interface.
func (Tvoid) implType()     {}
func (Tint) implType()      {}
func (Tvalist) implType()   {}
func (Tpointer) implType()  {}
func (Tarray) implType()    {}
func (Trecord) implType()   {}
func (Tenum) implType()     {}
func (Tfunction) implType() {}

// --- Constructor helpers ---

// Void returns the void type.
func Void() Type { return Tvoid{} }

// Char returns the char type (signed on this target).
func Char() Type { return Tint{Size: I8, Sign: Signed} }

// UChar returns the unsigned char type.
func UChar() Type { return Tint{Size: I8, Sign: Unsigned} }

// Short returns the short type.
func Short() Type { return Tint{Size: I16, Sign: Signed} }

// UShort returns the unsigned short type.
func UShort() Type { return Tint{Size: I16, Sign: Unsigned} }

// Int returns the int type.
func Int() Type { return Tint{Size: I16, Sign: Signed} }

// UInt returns the unsigned int type.
func UInt() Type { return Tint{Size: I16, Sign: Unsigned} }

// Long returns the long type.
func Long() Type { return Tint{Size: I32, Sign: Signed} }

// ULong returns the unsigned long type.
func ULong() Type { return Tint{Size: I32, Sign: Unsigned} }

// LongLong returns the long long type.
func LongLong() Type { return Tint{Size: I64, Sign: Signed} }

// ULongLong returns the unsigned long long type.
func ULongLong() Type { return Tint{Size: I64, Sign: Unsigned} }

// Bool returns the _Bool ("logic") type, 16 bits wide on this target.
func Bool() Type { return Tint{Size: IBool, Sign: Unsigned} }

// VaList returns the va_list builtin type.
func VaList() Type { return Tvalist{} }

// Pointer returns a pointer to elem.
func Pointer(elem Type) Type { return Tpointer{Elem: elem} }

// ArrayOf returns an array of size elements of elem. Size -1 means the
// array is incomplete.
func ArrayOf(elem Type, size int64) Type { return Tarray{Elem: elem, Size: size} }

// Function returns a function type.
func Function(ret Type, params []Type, variadic bool) Type {
	return Tfunction{Return: ret, Params: params, Variadic: variadic}
}

// RecordType returns a type referencing the record definition def.
func RecordType(def *Record) Type { return Trecord{Def: def} }

// EnumType returns a type referencing the enum definition def.
func EnumType(def *Enum) Type { return Tenum{Def: def} }

// --- String ---

func (Tvoid) String() string   { return "void" }
func (Tvalist) String() string { return "va_list" }

func (t Tint) String() string {
	var base string
	switch t.Size {
	case I8:
		base = "char"
	case I16:
		base = "int"
	case I32:
		base = "long"
	case I64:
		base = "long long"
	case IBool:
		return "_Bool"
	}
	if t.Sign == Unsigned {
		return "unsigned " + base
	}
	return base
}

func (t Tpointer) String() string { return t.Elem.String() + " *" }

func (t Tarray) String() string {
	if t.Size < 0 {
		return t.Elem.String() + "[]"
	}
	return fmt.Sprintf("%s[%d]", t.Elem, t.Size)
}

func (t Trecord) String() string {
	kind := "struct"
	if t.Def.Kind == Union {
		kind = "union"
	}
	if t.Def.Name == "" {
		return kind
	}
	return kind + " " + t.Def.Name
}

func (t Tenum) String() string {
	if t.Def.Name == "" {
		return "enum"
	}
	return "enum " + t.Def.Name
}

func (t Tfunction) String() string {
	s := t.Return.String() + " ("
	for i, p := range t.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	if t.Variadic {
		if len(t.Params) > 0 {
			s += ", "
		}
		s += "..."
	}
	return s + ")"
}

// --- Classification ---

// IsIntegral reports whether t is an integer or enum type.
func IsIntegral(t Type) bool {
	switch t.(type) {
	case Tint, Tenum:
		return true
	}
	return false
}

// IsArithmetic reports whether t participates in arithmetic. With no
// floating-point support this coincides with IsIntegral.
func IsArithmetic(t Type) bool { return IsIntegral(t) }

// IsScalar reports whether t is usable in a truth-value context.
func IsScalar(t Type) bool {
	switch t.(type) {
	case Tint, Tenum, Tpointer:
		return true
	}
	return false
}

// IsSigned reports whether values of t are signed. Enums count as
// signed int for arithmetic purposes.
func IsSigned(t Type) bool {
	switch typ := t.(type) {
	case Tint:
		return typ.Sign == Signed
	case Tenum:
		return true
	}
	return false
}

// IsBool reports whether t is the _Bool ("logic") type.
func IsBool(t Type) bool {
	i, ok := t.(Tint)
	return ok && i.Size == IBool
}

// Rank orders integer types for promotion decisions: _Bool < char <
// short/int < long < long long. Enums rank as int.
func Rank(t Type) int {
	switch typ := t.(type) {
	case Tint:
		switch typ.Size {
		case IBool:
			return 0
		case I8:
			return 1
		case I16:
			return 2
		case I32:
			return 3
		case I64:
			return 4
		}
	case Tenum:
		return 2
	}
	return -1
}

// IntOfRank returns the integer type of the given rank and signedness.
func IntOfRank(rank int, sign Signedness) Type {
	sizes := []IntSize{IBool, I8, I16, I32, I64}
	if rank < 0 || rank >= len(sizes) {
		rank = 2
	}
	return Tint{Size: sizes[rank], Sign: sign}
}

// BitWidth returns the width in bits of values of t, or 0 if t has no
// direct machine width (void, functions, aggregates).
func BitWidth(t Type) int {
	switch typ := t.(type) {
	case Tint:
		switch typ.Size {
		case I8:
			return 8
		case I16, IBool:
			return 16
		case I32:
			return 32
		case I64:
			return 64
		}
	case Tenum:
		return 16
	case Tpointer:
		return 16
	case Tarray:
		return 16 // decays to pointer
	}
	return 0
}

// Representative returns the plain integer type an enum stands in for
// during arithmetic, and t itself for everything else.
func Representative(t Type) Type {
	if _, ok := t.(Tenum); ok {
		return Int()
	}
	return t
}

// SizeOf returns the size of t in bytes on the target, or an error for
// incomplete and non-object types.
func SizeOf(t Type) (int64, error) {
	switch typ := t.(type) {
	case Tvoid:
		return 0, fmt.Errorf("sizeof void type")
	case Tint:
		switch typ.Size {
		case I8:
			return 1, nil
		case I16, IBool:
			return 2, nil
		case I32:
			return 4, nil
		case I64:
			return 8, nil
		}
	case Tvalist:
		return 2, nil
	case Tenum:
		return 2, nil
	case Tpointer:
		return 2, nil
	case Tarray:
		if typ.Size < 0 {
			return 0, fmt.Errorf("sizeof incomplete array type")
		}
		elem, err := SizeOf(typ.Elem)
		if err != nil {
			return 0, err
		}
		return typ.Size * elem, nil
	case Trecord:
		return typ.Def.Size()
	case Tfunction:
		return 0, fmt.Errorf("sizeof function type")
	}
	return 0, fmt.Errorf("sizeof unsupported type %s", t)
}

// Clone deep-copies t. Owned sub-types are copied; Record and Enum
// references stay pointed at the same shared definition.
func Clone(t Type) Type {
	switch typ := t.(type) {
	case Tpointer:
		return Tpointer{Elem: Clone(typ.Elem)}
	case Tarray:
		a := Tarray{Elem: Clone(typ.Elem), Size: typ.Size}
		if typ.Index != nil {
			a.Index = Clone(typ.Index)
		}
		return a
	case Tfunction:
		f := Tfunction{Return: Clone(typ.Return), Variadic: typ.Variadic, Conv: typ.Conv}
		for _, p := range typ.Params {
			f.Params = append(f.Params, Clone(p))
		}
		return f
	default:
		// Tvoid, Tint, Tvalist, Trecord, Tenum are value types; record
		// and enum references are shared on purpose.
		return t
	}
}

// Equal reports structural equality. Records and enums compare by
// definition identity, not by structure.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch at := a.(type) {
	case Tvoid:
		_, ok := b.(Tvoid)
		return ok
	case Tvalist:
		_, ok := b.(Tvalist)
		return ok
	case Tint:
		bt, ok := b.(Tint)
		return ok && at.Size == bt.Size && at.Sign == bt.Sign
	case Tpointer:
		bt, ok := b.(Tpointer)
		return ok && Equal(at.Elem, bt.Elem)
	case Tarray:
		bt, ok := b.(Tarray)
		return ok && at.Size == bt.Size && Equal(at.Elem, bt.Elem)
	case Trecord:
		bt, ok := b.(Trecord)
		return ok && at.Def == bt.Def
	case Tenum:
		bt, ok := b.(Tenum)
		return ok && at.Def == bt.Def
	case Tfunction:
		bt, ok := b.(Tfunction)
		if !ok || at.Variadic != bt.Variadic || at.Conv != bt.Conv {
			return false
		}
		if !Equal(at.Return, bt.Return) || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return true
	}
	return false
}
