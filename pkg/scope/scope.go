// Package scope implements nested lexical scopes and the flat global
// symbol directory used for linkage names.
package scope

import (
	"fmt"

	"github.com/c16lang/c16cc/pkg/ctypes"
	"github.com/c16lang/c16cc/pkg/diag"
)

// MemberKind tags the variants a scope member can take.
type MemberKind int

const (
	KGlobal MemberKind = iota // global symbol reference
	KArg                      // function argument
	KLocal                    // local variable
	KRecordTag                // struct/union tag
	KEnumTag                  // enum tag
	KTypedef                  // typedef name
	KEnumElem                 // enumerator
)

func (k MemberKind) String() string {
	switch k {
	case KGlobal:
		return "global"
	case KArg:
		return "argument"
	case KLocal:
		return "variable"
	case KRecordTag:
		return "struct/union tag"
	case KEnumTag:
		return "enum tag"
	case KTypedef:
		return "typedef"
	case KEnumElem:
		return "enum element"
	}
	return "?"
}

// Member is one named entry in a scope. Which fields are meaningful
// depends on Kind.
type Member struct {
	Kind    MemberKind
	Name    string
	Type    ctypes.Type    // KGlobal, KArg, KLocal, KTypedef
	Operand string         // KArg, KLocal: IR operand name
	Sym     *Symbol        // KGlobal
	Rec     *ctypes.Record // KRecordTag
	Enum    *ctypes.Enum   // KEnumTag, KEnumElem
	Value   int64          // KEnumElem
	Used    bool
	Pos     diag.Pos
}

// Tags and ordinary identifiers live in separate C namespaces.
func namespaceOf(k MemberKind) int {
	switch k {
	case KRecordTag, KEnumTag:
		return 1
	}
	return 0
}

// Scope is one level of the lexical scope tree. The parent link is
// borrowed; destroying a scope never touches its parent.
type Scope struct {
	parent  *Scope
	members []*Member
	what    string // "file", "function", "arguments", "block"
}

// NewFile creates the outermost (file) scope.
func NewFile() *Scope { return &Scope{what: "file"} }

// Enter creates a child scope.
func (s *Scope) Enter(what string) *Scope {
	return &Scope{parent: s, what: what}
}

// Parent returns the enclosing scope, nil at file level.
func (s *Scope) Parent() *Scope { return s.parent }

// What describes the scope's construct kind.
func (s *Scope) What() string { return s.what }

// IsFile reports whether this is the file scope.
func (s *Scope) IsFile() bool { return s.parent == nil }

// Insert adds a member. A name already present in this same scope and
// namespace is a conflict. If the name only shadows an ancestor scope,
// the shadowed member is returned so the caller can warn once.
func (s *Scope) Insert(m *Member) (shadowed *Member, err error) {
	if prev := s.lookupIn(m.Name, namespaceOf(m.Kind), false); prev != nil {
		return nil, fmt.Errorf("'%s' already declared in this scope as %s", m.Name, prev.Kind)
	}
	if s.parent != nil {
		shadowed = s.parent.lookupIn(m.Name, namespaceOf(m.Kind), true)
	}
	s.members = append(s.members, m)
	return shadowed, nil
}

// Lookup finds an ordinary identifier, walking outward through parents.
func (s *Scope) Lookup(name string) *Member {
	return s.lookupIn(name, 0, true)
}

// LookupLocal finds an ordinary identifier in this scope only.
func (s *Scope) LookupLocal(name string) *Member {
	return s.lookupIn(name, 0, false)
}

// LookupTag finds a struct/union/enum tag, walking outward.
func (s *Scope) LookupTag(name string) *Member {
	return s.lookupIn(name, 1, true)
}

// LookupTagLocal finds a tag in this scope only.
func (s *Scope) LookupTagLocal(name string) *Member {
	return s.lookupIn(name, 1, false)
}

func (s *Scope) lookupIn(name string, ns int, walk bool) *Member {
	for cur := s; cur != nil; cur = cur.parent {
		for _, m := range cur.members {
			if m.Name == name && namespaceOf(m.Kind) == ns {
				return m
			}
		}
		if !walk {
			return nil
		}
	}
	return nil
}

// Unused returns members never marked used, in declaration order.
// Called when the scope closes, for dead-identifier warnings.
func (s *Scope) Unused() []*Member {
	var out []*Member
	for _, m := range s.members {
		if !m.Used {
			out = append(out, m)
		}
	}
	return out
}

// Members returns all members in declaration order.
func (s *Scope) Members() []*Member { return s.members }
