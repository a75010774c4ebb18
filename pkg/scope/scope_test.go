package scope

import (
	"testing"

	"github.com/c16lang/c16cc/pkg/ctypes"
)

func TestScopeInsertConflict(t *testing.T) {
	s := NewFile()
	if _, err := s.Insert(&Member{Kind: KGlobal, Name: "x"}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := s.Insert(&Member{Kind: KTypedef, Name: "x"}); err == nil {
		t.Errorf("expected same-scope conflict for 'x'")
	}
}

func TestScopeShadowing(t *testing.T) {
	file := NewFile()
	outer := &Member{Kind: KGlobal, Name: "x"}
	file.Insert(outer)

	block := file.Enter("block")
	shadowed, err := block.Insert(&Member{Kind: KLocal, Name: "x"})
	if err != nil {
		t.Fatalf("insert in child scope: %v", err)
	}
	if shadowed != outer {
		t.Errorf("Insert returned %#v as shadowed, want the file-scope member", shadowed)
	}
	if got := block.Lookup("x").Kind; got != KLocal {
		t.Errorf("Lookup from block found %s, want the local", got)
	}
	if got := file.Lookup("x").Kind; got != KGlobal {
		t.Errorf("Lookup from file found %s, want the global", got)
	}
}

func TestTagNamespace(t *testing.T) {
	s := NewFile()
	if _, err := s.Insert(&Member{Kind: KGlobal, Name: "list"}); err != nil {
		t.Fatalf("insert ident: %v", err)
	}
	if _, err := s.Insert(&Member{Kind: KRecordTag, Name: "list"}); err != nil {
		t.Errorf("tag should not conflict with an ordinary identifier: %v", err)
	}
	if m := s.Lookup("list"); m == nil || m.Kind != KGlobal {
		t.Errorf("ordinary lookup crossed into the tag namespace")
	}
	if m := s.LookupTag("list"); m == nil || m.Kind != KRecordTag {
		t.Errorf("tag lookup crossed into the ordinary namespace")
	}
}

func TestLookupLocalStopsAtScope(t *testing.T) {
	file := NewFile()
	file.Insert(&Member{Kind: KGlobal, Name: "x"})
	block := file.Enter("block")
	if block.LookupLocal("x") != nil {
		t.Errorf("LookupLocal should not see the parent scope")
	}
	if block.Lookup("x") == nil {
		t.Errorf("Lookup should walk to the parent scope")
	}
}

func TestUnused(t *testing.T) {
	s := NewFile().Enter("block")
	used := &Member{Kind: KLocal, Name: "a", Used: true}
	dead := &Member{Kind: KLocal, Name: "b"}
	s.Insert(used)
	s.Insert(dead)
	got := s.Unused()
	if len(got) != 1 || got[0] != dead {
		t.Errorf("Unused() = %#v, want just 'b'", got)
	}
}

func TestSymbolsDeclare(t *testing.T) {
	syms := NewSymbols()
	a, created := syms.Declare("main", SymFunc)
	if !created {
		t.Fatalf("first Declare should create")
	}
	if a.IRName != "_main" {
		t.Errorf("IRName = %q, want %q", a.IRName, "_main")
	}
	b, created := syms.Declare("main", SymFunc)
	if created || b != a {
		t.Errorf("second Declare should return the existing symbol")
	}
	a.Type = ctypes.Function(ctypes.Int(), nil, false)
	if syms.Lookup("main").Type == nil {
		t.Errorf("Lookup should see the shared symbol's type")
	}
	if len(syms.All()) != 1 {
		t.Errorf("All() has %d entries, want 1", len(syms.All()))
	}
}
