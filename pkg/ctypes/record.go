package ctypes

import "fmt"

// RecordKind distinguishes struct from union definitions.
type RecordKind int

const (
	Struct RecordKind = iota
	Union
)

func (k RecordKind) String() string {
	if k == Union {
		return "union"
	}
	return "struct"
}

// RecElem is one named element of a record, in declaration order.
// For structs, declaration order is memory layout order; union elements
// all sit at offset zero.
type RecElem struct {
	Name string
	Type Type
}

// Record is a struct or union definition. Many Trecord type values may
// reference one Record; the registry owns it.
type Record struct {
	Kind   RecordKind
	Name   string // C tag name, empty for anonymous records
	IRName string // unique name used in emitted IR
	Elems  []RecElem

	// Defining is set while the body is open, to reject a nested
	// redefinition of the same tag.
	Defining bool
	// Completed is set exactly when the body closes.
	Completed bool
}

// AddElem appends a named element. Duplicate element names are a
// conflict reported to the caller.
func (r *Record) AddElem(name string, t Type) error {
	for _, e := range r.Elems {
		if e.Name == name {
			return fmt.Errorf("duplicate %s member '%s'", r.Kind, name)
		}
	}
	r.Elems = append(r.Elems, RecElem{Name: name, Type: t})
	return nil
}

// Elem looks up an element by name.
func (r *Record) Elem(name string) (RecElem, bool) {
	for _, e := range r.Elems {
		if e.Name == name {
			return e, true
		}
	}
	return RecElem{}, false
}

// Offset returns the byte offset of the named element. Union elements
// are all at offset zero.
func (r *Record) Offset(name string) (int64, error) {
	if r.Kind == Union {
		if _, ok := r.Elem(name); !ok {
			return 0, fmt.Errorf("no member '%s' in %s", name, r)
		}
		return 0, nil
	}
	var off int64
	for _, e := range r.Elems {
		if e.Name == name {
			return off, nil
		}
		sz, err := SizeOf(e.Type)
		if err != nil {
			return 0, err
		}
		off += sz
	}
	return 0, fmt.Errorf("no member '%s' in %s", name, r)
}

// Size returns the record's size in bytes: sum of element sizes for
// structs, maximum for unions. Incomplete records have no size.
func (r *Record) Size() (int64, error) {
	if !r.Completed {
		return 0, fmt.Errorf("sizeof incomplete %s", r)
	}
	var size int64
	for _, e := range r.Elems {
		sz, err := SizeOf(e.Type)
		if err != nil {
			return 0, err
		}
		if r.Kind == Union {
			if sz > size {
				size = sz
			}
		} else {
			size += sz
		}
	}
	return size, nil
}

func (r *Record) String() string {
	if r.Name == "" {
		return r.Kind.String() + " " + r.IRName
	}
	return r.Kind.String() + " " + r.Name
}

// Records is the registry owning all record definitions of a
// translation unit. Scopes map tag names to entries in here.
type Records struct {
	defs []*Record
	next int
}

// NewRecords creates an empty registry.
func NewRecords() *Records { return &Records{} }

// New allocates a record definition with a unique IR name.
func (rs *Records) New(kind RecordKind, name string) *Record {
	irName := name
	if irName == "" {
		irName = "anon"
	}
	r := &Record{
		Kind:   kind,
		Name:   name,
		IRName: fmt.Sprintf("%s_%d_%s", kind, rs.next, irName),
	}
	rs.next++
	rs.defs = append(rs.defs, r)
	return r
}

// All returns every definition in creation order.
func (rs *Records) All() []*Record { return rs.defs }
