package cgen

import (
	"testing"

	"github.com/c16lang/c16cc/pkg/ctypes"
	"github.com/c16lang/c16cc/pkg/diag"
	"github.com/c16lang/c16cc/pkg/ir"
)

func TestUsualArith(t *testing.T) {
	tests := []struct {
		name   string
		a, b   ctypes.Type
		common ctypes.Type
		flags  uacFlags
	}{
		{"int int", ctypes.Int(), ctypes.Int(), ctypes.Int(), 0},
		{"chars promote to int", ctypes.Char(), ctypes.Char(), ctypes.Int(), 0},
		{"int long", ctypes.Int(), ctypes.Long(), ctypes.Long(), 0},
		{"unsigned wins at same rank", ctypes.UInt(), ctypes.Int(), ctypes.UInt(), uacMixedSign},
		{"higher signed rank wins", ctypes.Long(), ctypes.UInt(), ctypes.Long(), uacMixedSign},
		{"unsigned long vs long long", ctypes.ULong(), ctypes.LongLong(), ctypes.LongLong(), uacMixedSign},
		{"bool flagged", ctypes.Bool(), ctypes.Int(), ctypes.Int(), uacBool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGen()
			a := rvalOf(tt.a, ir.Var{Name: "t1"})
			b := rvalOf(tt.b, ir.Var{Name: "t2"})
			common, flags, err := g.usualArith(a, b, diag.Pos{})
			if err != nil {
				t.Fatalf("usualArith: %v", err)
			}
			if !ctypes.Equal(common, tt.common) {
				t.Errorf("common = %s, want %s", common, tt.common)
			}
			if flags != tt.flags {
				t.Errorf("flags = %b, want %b", flags, tt.flags)
			}
			if !ctypes.Equal(a.typ, common) || !ctypes.Equal(b.typ, common) {
				t.Errorf("operands ended at %s and %s, want both %s", a.typ, b.typ, common)
			}
		})
	}
}

func TestUsualArithSymmetry(t *testing.T) {
	pairs := [][2]ctypes.Type{
		{ctypes.Char(), ctypes.Long()},
		{ctypes.UInt(), ctypes.Long()},
		{ctypes.Short(), ctypes.ULongLong()},
	}
	for _, p := range pairs {
		g1 := newTestGen()
		c1, _, err := g1.usualArith(rvalOf(p[0], ir.Var{Name: "t1"}), rvalOf(p[1], ir.Var{Name: "t2"}), diag.Pos{})
		if err != nil {
			t.Fatalf("usualArith(%s, %s): %v", p[0], p[1], err)
		}
		g2 := newTestGen()
		c2, _, err := g2.usualArith(rvalOf(p[1], ir.Var{Name: "t1"}), rvalOf(p[0], ir.Var{Name: "t2"}), diag.Pos{})
		if err != nil {
			t.Fatalf("usualArith(%s, %s): %v", p[1], p[0], err)
		}
		if !ctypes.Equal(c1, c2) {
			t.Errorf("common type depends on operand order: %s vs %s", c1, c2)
		}
	}
}

func TestUsualArithEnums(t *testing.T) {
	e1 := &ctypes.Enum{Name: "a", Defined: true}
	e2 := &ctypes.Enum{Name: "b", Defined: true}

	g := newTestGen()
	common, flags, err := g.usualArith(
		rvalOf(ctypes.EnumType(e1), ir.Var{Name: "t1"}),
		rvalOf(ctypes.EnumType(e2), ir.Var{Name: "t2"}),
		diag.Pos{})
	if err != nil {
		t.Fatalf("usualArith: %v", err)
	}
	if !ctypes.Equal(common, ctypes.Int()) {
		t.Errorf("enums should compute as int, got %s", common)
	}
	if flags&uacEnumMismatch == 0 {
		t.Errorf("distinct enum definitions should set the mismatch flag")
	}

	g = newTestGen()
	_, flags, err = g.usualArith(
		rvalOf(ctypes.EnumType(e1), ir.Var{Name: "t1"}),
		rvalOf(ctypes.EnumType(e1), ir.Var{Name: "t2"}),
		diag.Pos{})
	if err != nil {
		t.Fatalf("usualArith: %v", err)
	}
	if flags&uacEnumMismatch != 0 {
		t.Errorf("same enum definition flagged as a mismatch")
	}
}

func TestUsualArithNegativeToUnsigned(t *testing.T) {
	g := newTestGen()
	a := constOf(ctypes.Int(), -1)
	b := rvalOf(ctypes.UInt(), ir.Var{Name: "t1"})
	common, flags, err := g.usualArith(a, b, diag.Pos{})
	if err != nil {
		t.Fatalf("usualArith: %v", err)
	}
	if !ctypes.Equal(common, ctypes.UInt()) {
		t.Errorf("common = %s, want unsigned int", common)
	}
	if flags&uacNegUnsigned == 0 {
		t.Errorf("negative constant against unsigned should be flagged")
	}
	if c, ok := a.constInt(); !ok || c != 0xffff {
		t.Errorf("constant = %d, want 0xffff after conversion", c)
	}
}

func TestUsualArithRejectsNonArithmetic(t *testing.T) {
	g := newTestGen()
	a := rvalOf(ctypes.Pointer(ctypes.Int()), ir.Var{Name: "t1"})
	b := rvalOf(ctypes.Int(), ir.Var{Name: "t2"})
	if _, _, err := g.usualArith(a, b, diag.Pos{}); err == nil {
		t.Errorf("pointer operand should be rejected")
	}
}
