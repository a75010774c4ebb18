package ctypes

import "testing"

func TestRecordLayout(t *testing.T) {
	r := &Record{Kind: Struct, Name: "point"}
	if err := r.AddElem("x", Int()); err != nil {
		t.Fatalf("AddElem: %v", err)
	}
	if err := r.AddElem("y", Int()); err != nil {
		t.Fatalf("AddElem: %v", err)
	}
	if err := r.AddElem("tag", Char()); err != nil {
		t.Fatalf("AddElem: %v", err)
	}
	r.Completed = true

	tests := []struct {
		name   string
		offset int64
	}{
		{"x", 0},
		{"y", 2},
		{"tag", 4},
	}
	for _, tt := range tests {
		off, err := r.Offset(tt.name)
		if err != nil {
			t.Fatalf("Offset(%s): %v", tt.name, err)
		}
		if off != tt.offset {
			t.Errorf("Offset(%s) = %d, want %d", tt.name, off, tt.offset)
		}
	}
	size, err := r.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 5 {
		t.Errorf("Size = %d, want 5", size)
	}
}

func TestUnionLayout(t *testing.T) {
	u := &Record{Kind: Union, Name: "v"}
	u.AddElem("i", Int())
	u.AddElem("l", Long())
	u.AddElem("c", Char())
	u.Completed = true

	for _, name := range []string{"i", "l", "c"} {
		off, err := u.Offset(name)
		if err != nil {
			t.Fatalf("Offset(%s): %v", name, err)
		}
		if off != 0 {
			t.Errorf("Offset(%s) = %d, want 0", name, off)
		}
	}
	size, err := u.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 4 {
		t.Errorf("Size = %d, want widest member 4", size)
	}
}

func TestRecordDuplicateMember(t *testing.T) {
	r := &Record{Kind: Struct, Name: "s"}
	r.AddElem("x", Int())
	if err := r.AddElem("x", Char()); err == nil {
		t.Errorf("expected duplicate member error")
	}
}

func TestRecordsRegistryNames(t *testing.T) {
	rs := NewRecords()
	a := rs.New(Struct, "s")
	b := rs.New(Struct, "s")
	if a.IRName == b.IRName {
		t.Errorf("distinct definitions got the same IR name %q", a.IRName)
	}
	if len(rs.All()) != 2 {
		t.Errorf("registry holds %d records, want 2", len(rs.All()))
	}
}

func TestEnumValues(t *testing.T) {
	e := &Enum{Name: "color"}
	if err := e.Add("red", 3); err != nil {
		t.Fatalf("Add: %v", err)
	}
	v, err := e.AddNext("green")
	if err != nil {
		t.Fatalf("AddNext: %v", err)
	}
	if v != 4 {
		t.Errorf("AddNext after explicit 3 = %d, want 4", v)
	}
	if err := e.Add("red", 9); err == nil {
		t.Errorf("expected duplicate enumerator error")
	}
	if got, ok := e.Lookup("green"); !ok || got != 4 {
		t.Errorf("Lookup(green) = (%d, %v), want (4, true)", got, ok)
	}
	if !e.Has(3) || e.Has(7) {
		t.Errorf("Has: want true for 3 and false for 7")
	}
}
