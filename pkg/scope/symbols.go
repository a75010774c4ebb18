package scope

import (
	"github.com/c16lang/c16cc/pkg/ctypes"
)

// SymKind classifies entries in the global symbol directory.
type SymKind int

const (
	SymFunc SymKind = iota
	SymVar
	SymType
)

func (k SymKind) String() string {
	switch k {
	case SymFunc:
		return "function"
	case SymVar:
		return "variable"
	case SymType:
		return "type"
	}
	return "?"
}

// Symbol is one distinct external identifier. The resolved type is
// filled in lazily as declarations are composed; Defined flips when a
// body or initializer is seen.
type Symbol struct {
	Ident   string
	IRName  string
	Kind    SymKind
	Defined bool
	Static  bool
	Extern  bool
	Type    ctypes.Type
}

// Mangle applies the fixed linkage-name prefix.
func Mangle(ident string) string { return "_" + ident }

// Symbols is the flat directory of global linkage names, shared across
// the whole translation unit and consulted again by the driver's
// extern post-pass.
type Symbols struct {
	list   []*Symbol
	byName map[string]*Symbol
}

// NewSymbols creates an empty directory.
func NewSymbols() *Symbols {
	return &Symbols{byName: make(map[string]*Symbol)}
}

// Lookup finds a symbol by C identifier.
func (t *Symbols) Lookup(ident string) *Symbol {
	return t.byName[ident]
}

// Declare finds or creates the symbol for ident. The second result is
// true when the symbol was newly created; callers use an existing
// symbol to detect conflicting redeclarations.
func (t *Symbols) Declare(ident string, kind SymKind) (*Symbol, bool) {
	if s, ok := t.byName[ident]; ok {
		return s, false
	}
	s := &Symbol{Ident: ident, IRName: Mangle(ident), Kind: kind}
	t.byName[ident] = s
	t.list = append(t.list, s)
	return s, true
}

// All returns every symbol in declaration order.
func (t *Symbols) All() []*Symbol { return t.list }
