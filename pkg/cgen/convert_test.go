package cgen

import (
	"io"
	"testing"

	"github.com/c16lang/c16cc/pkg/ctypes"
	"github.com/c16lang/c16cc/pkg/diag"
	"github.com/c16lang/c16cc/pkg/ir"
	"github.com/c16lang/c16cc/pkg/scope"
)

// newTestGen builds a generator detached from any parser, with an
// emission block ready, for driving the value helpers directly.
func newTestGen() *Generator {
	g := New(nil, diag.NewReporter(io.Discard), scope.NewSymbols())
	g.blk = ir.NewBlock()
	return g
}

func rvalOf(t ctypes.Type, op ir.Operand) *value {
	return &value{op: op, kind: rval, typ: t}
}

func constOf(t ctypes.Type, c int64) *value {
	return &value{op: ir.Imm{Value: c}, kind: rval, typ: t, cv: &constVal{V: c}}
}

func TestConvertIdentityEmitsNothing(t *testing.T) {
	g := newTestGen()
	v := rvalOf(ctypes.Int(), ir.Var{Name: "t1"})
	if err := g.convert(v, ctypes.Int(), convImplicit, diag.Pos{}); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if g.blk.Len() != 0 {
		t.Errorf("identity conversion emitted %d instructions", g.blk.Len())
	}
	if !ctypes.Equal(v.typ, ctypes.Int()) {
		t.Errorf("type changed to %s", v.typ)
	}
}

func TestConvertWidening(t *testing.T) {
	g := newTestGen()
	v := rvalOf(ctypes.Int(), ir.Var{Name: "t1"})
	if err := g.convert(v, ctypes.Long(), convImplicit, diag.Pos{}); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if g.blk.Len() != 1 {
		t.Fatalf("widening emitted %d instructions, want 1", g.blk.Len())
	}
	ins := g.blk.Items[0].(ir.Instr)
	if ins.Width != 16 || ins.Width2 != 32 {
		t.Errorf("widths = %d>%d, want 16>32", ins.Width, ins.Width2)
	}
	if !ctypes.Equal(v.typ, ctypes.Long()) {
		t.Errorf("result type = %s, want long", v.typ)
	}
}

func TestConvertConstFolds(t *testing.T) {
	tests := []struct {
		name     string
		src      ctypes.Type
		c        int64
		dst      ctypes.Type
		expected int64
	}{
		{"widen keeps value", ctypes.Int(), -5, ctypes.Long(), -5},
		{"narrow wraps", ctypes.Long(), 0x12345, ctypes.Int(), 0x2345},
		{"to unsigned char", ctypes.Int(), -1, ctypes.UChar(), 0xff},
		{"to bool normalizes", ctypes.Int(), 42, ctypes.Bool(), 1},
		{"zero stays zero in bool", ctypes.Int(), 0, ctypes.Bool(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGen()
			v := constOf(tt.src, tt.c)
			if err := g.convert(v, tt.dst, convQuiet, diag.Pos{}); err != nil {
				t.Fatalf("convert: %v", err)
			}
			got, ok := v.constInt()
			if !ok {
				t.Fatalf("result is not a constant")
			}
			if got != tt.expected {
				t.Errorf("got %d, want %d", got, tt.expected)
			}
			if g.blk.Len() != 0 {
				t.Errorf("constant conversion emitted code")
			}
		})
	}
}

func TestConvertNarrowingWarns(t *testing.T) {
	rep := diag.NewReporter(io.Discard)
	g := New(nil, rep, scope.NewSymbols())
	g.blk = ir.NewBlock()
	v := rvalOf(ctypes.Long(), ir.Var{Name: "t1"})
	if err := g.convert(v, ctypes.Int(), convImplicit, diag.Pos{}); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if rep.Warnings() != 1 {
		t.Errorf("narrowing produced %d warnings, want 1", rep.Warnings())
	}
	if g.blk.Len() != 1 {
		t.Errorf("narrowing emitted %d instructions, want 1", g.blk.Len())
	}
}

func TestConvertEnumRoundTrip(t *testing.T) {
	g := newTestGen()
	def := &ctypes.Enum{Name: "e", Defined: true}
	def.Add("A", 0)
	et := ctypes.EnumType(def)

	v := rvalOf(et, ir.Var{Name: "t1"})
	if err := g.convert(v, ctypes.Int(), convQuiet, diag.Pos{}); err != nil {
		t.Fatalf("to int: %v", err)
	}
	if err := g.convert(v, et, convQuiet, diag.Pos{}); err != nil {
		t.Fatalf("back to enum: %v", err)
	}
	got, ok := v.typ.(ctypes.Tenum)
	if !ok || got.Def != def {
		t.Errorf("round trip lost the enum definition: %s", v.typ)
	}
	if g.blk.Len() != 0 {
		t.Errorf("enum round trip emitted code")
	}
}

func TestConvertArrayDecays(t *testing.T) {
	g := newTestGen()
	v := &value{op: ir.Sym{Name: "_a"}, kind: lval, typ: ctypes.ArrayOf(ctypes.Int(), 4)}
	if err := g.convert(v, ctypes.Pointer(ctypes.Int()), convImplicit, diag.Pos{}); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if g.blk.Len() != 0 {
		t.Errorf("decay emitted code; the operand is already the address")
	}
	if _, ok := v.typ.(ctypes.Tpointer); !ok {
		t.Errorf("result type = %s, want a pointer", v.typ)
	}
}

func TestConvertNullPointerConstant(t *testing.T) {
	rep := diag.NewReporter(io.Discard)
	g := New(nil, rep, scope.NewSymbols())
	g.blk = ir.NewBlock()
	v := constOf(ctypes.Int(), 0)
	if err := g.convert(v, ctypes.Pointer(ctypes.Char()), convImplicit, diag.Pos{}); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if rep.Warnings() != 0 {
		t.Errorf("null pointer constant warned %d times", rep.Warnings())
	}

	v = constOf(ctypes.Int(), 7)
	if err := g.convert(v, ctypes.Pointer(ctypes.Char()), convImplicit, diag.Pos{}); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if rep.Warnings() != 1 {
		t.Errorf("non-zero constant to pointer warned %d times, want 1", rep.Warnings())
	}
}
