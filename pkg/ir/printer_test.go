package ir

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintModule(t *testing.T) {
	body := NewBlock()
	body.Emit(Instr{Op: Read, Width: 16, Dest: "t1", A: Var{Name: "x"}})
	body.Emit(Instr{Op: Add, Width: 16, Dest: "t2", A: Var{Name: "t1"}, B: Imm{Value: 1}})
	body.Label("L1")
	body.Emit(Instr{Op: RetV, Width: 16, A: Var{Name: "t2"}})

	mod := &Module{
		Externs: []*Extern{
			{Name: "_put", Kind: SymFunc, ArgWidths: []int{16}, Variadic: true},
		},
		Globals: []*Global{
			{Name: "_g", Size: 2, Data: []byte{5, 0}},
			{Name: "_p", Size: 2, Relocs: []Reloc{{Offset: 0, Sym: "str_0", Width: 16}}},
		},
		Procs: []*Proc{
			{
				Name:     "_f",
				Args:     []Arg{{Name: "x", Width: 16}},
				RetWidth: 16,
				Locals:   []Local{{Name: "buf_0", Size: 6}},
				Body:     body,
			},
		},
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintModule(mod)
	out := buf.String()

	for _, want := range []string{
		"extern func _put(i16, ...)",
		"var _g[2] = {05 00}",
		"var _p[2] reloc(0: &str_0+0, i16)",
		"proc _f(x: i16) i16 {",
		"  local buf_0[6]",
		"  read.16 t1 = x",
		"  add.16 t2 = t1, 1",
		"L1:",
		"  retv.16 t2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestOperandStrings(t *testing.T) {
	tests := []struct {
		name     string
		op       Operand
		expected string
	}{
		{"var", Var{Name: "t3"}, "t3"},
		{"imm", Imm{Value: -7}, "-7"},
		{"sym", Sym{Name: "_g"}, "&_g"},
		{"sym with offset", Sym{Name: "_a", Off: 4}, "&_a+4"},
		{"list", List{Elems: []Operand{Imm{Value: 1}, Var{Name: "t1"}}}, "(1, t1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.String(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestBlockTruncate(t *testing.T) {
	b := NewBlock()
	b.Emit(Instr{Op: Nop})
	mark := b.Len()
	b.Emit(Instr{Op: Nop})
	b.Emit(Instr{Op: Nop})
	b.Truncate(mark)
	if b.Len() != 1 {
		t.Errorf("Len after Truncate = %d, want 1", b.Len())
	}

	side := NewBlock()
	side.Emit(Instr{Op: Ret})
	b.Splice(side)
	if b.Len() != 2 {
		t.Errorf("Len after Splice = %d, want 2", b.Len())
	}
}
