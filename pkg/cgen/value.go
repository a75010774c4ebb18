package cgen

import (
	"github.com/c16lang/c16cc/pkg/ctypes"
	"github.com/c16lang/c16cc/pkg/diag"
	"github.com/c16lang/c16cc/pkg/ir"
)

// valueKind tags an expression result as a storage location or a
// computed value.
type valueKind int

const (
	lval valueKind = iota
	rval
)

// constVal is a compile-time known constant: a plain integer, or an
// address relative to a global symbol when Sym is non-empty.
type constVal struct {
	V   int64
	Sym string
}

// value is the transient result produced by lowering any expression:
// the IR operand holding it (nil for void), whether it is an lvalue
// (operand is the address) or rvalue, its C type, an optional known
// constant, and the source span for diagnostics.
type value struct {
	op   ir.Operand
	kind valueKind
	typ  ctypes.Type
	cv   *constVal
	pos  diag.Pos
}

// isVoid reports whether the value carries no operand.
func (v *value) isVoid() bool {
	_, ok := v.typ.(ctypes.Tvoid)
	return ok || v.op == nil
}

// constInt returns the plain integer constant if the value is one.
func (v *value) constInt() (int64, bool) {
	if v.cv != nil && v.cv.Sym == "" {
		return v.cv.V, true
	}
	return 0, false
}

// rvalue converts a value to rvalue form in place: for ordinary
// lvalues a read instruction is emitted; arrays and records stay
// address-valued even as rvalues, mirroring C's by-reference treatment
// of aggregates.
func (g *Generator) rvalue(v *value) {
	if v.kind == rval || v.isVoid() {
		return
	}
	switch v.typ.(type) {
	case ctypes.Tarray, ctypes.Trecord, ctypes.Tfunction:
		v.kind = rval
		return
	}
	dest := g.newVR()
	g.emit(ir.Instr{
		Op:    ir.Read,
		Width: ctypes.BitWidth(v.typ),
		Dest:  dest,
		A:     v.op,
	})
	v.op = ir.Var{Name: dest}
	v.kind = rval
}
