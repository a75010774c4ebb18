package ctypes

import "fmt"

// Compose merges two declarations of the same symbol into their
// composite type, in the C sense: an incomplete array completes against
// a sized one, a parameterless function declaration completes against a
// prototyped one. Incompatible declarations return an error; the caller
// turns that into a diagnostic.
func Compose(old, new_ Type) (Type, error) {
	switch ot := old.(type) {
	case Tarray:
		nt, ok := new_.(Tarray)
		if !ok {
			return nil, fmt.Errorf("conflicting types %s and %s", old, new_)
		}
		elem, err := Compose(ot.Elem, nt.Elem)
		if err != nil {
			return nil, err
		}
		size := ot.Size
		switch {
		case ot.Size < 0:
			size = nt.Size
		case nt.Size < 0:
			// keep old size
		case ot.Size != nt.Size:
			return nil, fmt.Errorf("conflicting array sizes %d and %d", ot.Size, nt.Size)
		}
		return Tarray{Elem: elem, Size: size}, nil

	case Tpointer:
		nt, ok := new_.(Tpointer)
		if !ok {
			return nil, fmt.Errorf("conflicting types %s and %s", old, new_)
		}
		elem, err := Compose(ot.Elem, nt.Elem)
		if err != nil {
			return nil, err
		}
		return Tpointer{Elem: elem}, nil

	case Tfunction:
		nt, ok := new_.(Tfunction)
		if !ok {
			return nil, fmt.Errorf("conflicting types %s and %s", old, new_)
		}
		ret, err := Compose(ot.Return, nt.Return)
		if err != nil {
			return nil, err
		}
		// A declaration without a prototype composes with any
		// parameter list.
		switch {
		case ot.Params == nil && !ot.Variadic:
			return Tfunction{Return: ret, Params: nt.Params, Variadic: nt.Variadic, Conv: nt.Conv}, nil
		case nt.Params == nil && !nt.Variadic:
			return Tfunction{Return: ret, Params: ot.Params, Variadic: ot.Variadic, Conv: ot.Conv}, nil
		}
		if len(ot.Params) != len(nt.Params) || ot.Variadic != nt.Variadic {
			return nil, fmt.Errorf("conflicting function signatures %s and %s", old, new_)
		}
		f := Tfunction{Return: ret, Variadic: ot.Variadic, Conv: ot.Conv}
		for i := range ot.Params {
			p, err := Compose(ot.Params[i], nt.Params[i])
			if err != nil {
				return nil, err
			}
			f.Params = append(f.Params, p)
		}
		return f, nil

	default:
		if Equal(old, new_) {
			return Clone(old), nil
		}
		return nil, fmt.Errorf("conflicting types %s and %s", old, new_)
	}
}

// PointerCompatible reports whether two types may be compared or
// assigned through pointers without a diagnostic: structurally
// compatible base types, with void* compatible against any object
// pointer and enums loosely compatible with their representative int.
func PointerCompatible(a, b Type) bool {
	if Equal(a, b) {
		return true
	}
	// void is the wildcard pointee.
	if _, ok := a.(Tvoid); ok {
		return true
	}
	if _, ok := b.(Tvoid); ok {
		return true
	}
	switch at := a.(type) {
	case Tpointer:
		bt, ok := b.(Tpointer)
		if !ok {
			return false
		}
		if _, void := at.Elem.(Tvoid); void {
			return true
		}
		if _, void := bt.Elem.(Tvoid); void {
			return true
		}
		return PointerCompatible(at.Elem, bt.Elem)
	case Tarray:
		bt, ok := b.(Tarray)
		if !ok {
			return false
		}
		return PointerCompatible(at.Elem, bt.Elem)
	case Tenum:
		return Equal(Representative(a), Representative(b))
	case Tint:
		return Equal(a, Representative(b))
	}
	return false
}
