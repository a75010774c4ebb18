package ctypes

import "fmt"

// EnumElem is one enumerator in declaration order.
type EnumElem struct {
	Name  string
	Value int64
}

// Enum is an enum definition. Many Tenum type values may reference one
// Enum; the registry owns it.
type Enum struct {
	Name string
	// Named is set once the enum has been instantiated or typedef'd;
	// it suppresses the declared-but-unused warning.
	Named bool
	Elems []EnumElem
	// Next is the value the next enumerator without an explicit value
	// receives.
	Next    int64
	Defined bool
}

// Add appends an enumerator with an explicit value and advances the
// implicit counter past it. A duplicate name is a conflict.
func (e *Enum) Add(name string, value int64) error {
	for _, el := range e.Elems {
		if el.Name == name {
			return fmt.Errorf("duplicate enum element '%s'", name)
		}
	}
	e.Elems = append(e.Elems, EnumElem{Name: name, Value: value})
	e.Next = value + 1
	return nil
}

// AddNext appends an enumerator at the implicit next value.
func (e *Enum) AddNext(name string) (int64, error) {
	v := e.Next
	if err := e.Add(name, v); err != nil {
		return 0, err
	}
	return v, nil
}

// Lookup finds an enumerator's value by name.
func (e *Enum) Lookup(name string) (int64, bool) {
	for _, el := range e.Elems {
		if el.Name == name {
			return el.Value, true
		}
	}
	return 0, false
}

// Has reports whether some enumerator has the given value.
func (e *Enum) Has(value int64) bool {
	for _, el := range e.Elems {
		if el.Value == value {
			return true
		}
	}
	return false
}

func (e *Enum) String() string {
	if e.Name == "" {
		return "enum"
	}
	return "enum " + e.Name
}

// Enums is the registry owning all enum definitions of a translation
// unit.
type Enums struct {
	defs []*Enum
}

// NewEnums creates an empty registry.
func NewEnums() *Enums { return &Enums{} }

// New allocates an enum definition.
func (es *Enums) New(name string) *Enum {
	e := &Enum{Name: name}
	es.defs = append(es.defs, e)
	return e
}

// All returns every definition in creation order.
func (es *Enums) All() []*Enum { return es.defs }
