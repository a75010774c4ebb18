// Expression lowering. Every function takes the AST node and appends
// the instructions that compute it to the current block, producing a
// value (operand, lvalue/rvalue kind, type, optional known constant).
// Errors have already been reported when they surface here.
package cgen

import (
	"github.com/c16lang/c16cc/pkg/cabs"
	"github.com/c16lang/c16cc/pkg/ctypes"
	"github.com/c16lang/c16cc/pkg/diag"
	"github.com/c16lang/c16cc/pkg/ir"
	"github.com/c16lang/c16cc/pkg/scope"
)

// expr lowers one expression node.
func (g *Generator) expr(e cabs.Expr) (*value, error) {
	switch n := e.(type) {
	case cabs.Ident:
		return g.lowerIdent(n)
	case cabs.IntLit:
		return g.lowerIntLit(n), nil
	case cabs.CharLit:
		return &value{op: immOp(n.Value), kind: rval, typ: ctypes.Int(),
			cv: &constVal{V: n.Value}, pos: n.Pos}, nil
	case cabs.StrLit:
		return g.lowerStrLit(n)
	case cabs.Unary:
		return g.lowerUnary(n)
	case cabs.Binary:
		return g.lowerBinary(n)
	case cabs.Assign:
		return g.lowerAssign(n)
	case cabs.Cond:
		return g.lowerCond(n)
	case cabs.Comma:
		return g.lowerComma(n)
	case cabs.Call:
		return g.lowerCall(n)
	case cabs.Index:
		return g.lowerIndex(n)
	case cabs.Member:
		return g.lowerMember(n)
	case cabs.Cast:
		return g.lowerCast(n)
	case cabs.SizeofExpr:
		return g.lowerSizeofExpr(n)
	case cabs.SizeofType:
		return g.lowerSizeofType(n)
	}
	return nil, g.rep.Errorf(diag.Pos{}, "unsupported expression")
}

// exprRval lowers an expression and converts it to rvalue form.
func (g *Generator) exprRval(e cabs.Expr) (*value, error) {
	v, err := g.expr(e)
	if err != nil {
		return nil, err
	}
	g.rvalue(v)
	return v, nil
}

// condValue lowers a truth-value context expression: the result must
// be scalar.
func (g *Generator) condValue(e cabs.Expr) (*value, error) {
	v, err := g.exprRval(e)
	if err != nil {
		return nil, err
	}
	g.decay(v)
	if !ctypes.IsScalar(v.typ) {
		return nil, g.rep.Errorf(v.pos, "scalar type required, got %s", v.typ)
	}
	return v, nil
}

func (g *Generator) lowerIdent(n cabs.Ident) (*value, error) {
	m := g.scope.Lookup(n.Name)
	if m == nil {
		return nil, g.rep.Errorf(n.Pos, "'%s' undeclared", n.Name)
	}
	m.Used = true
	switch m.Kind {
	case scope.KLocal, scope.KArg:
		// The lvalue operand is the slot's address.
		dest := g.newVR()
		g.emit(ir.Instr{Op: ir.Addr, Width: 16, Dest: dest, A: varOp(m.Operand)})
		return &value{op: varOp(dest), kind: lval, typ: ctypes.Clone(m.Type), pos: n.Pos}, nil
	case scope.KGlobal:
		return &value{op: ir.Sym{Name: m.Sym.IRName}, kind: lval,
			typ: ctypes.Clone(m.Sym.Type), pos: n.Pos}, nil
	case scope.KEnumElem:
		return &value{op: immOp(m.Value), kind: rval,
			typ: ctypes.EnumType(m.Enum), cv: &constVal{V: m.Value}, pos: n.Pos}, nil
	case scope.KTypedef:
		return nil, g.rep.Errorf(n.Pos, "typedef name '%s' used as a value", n.Name)
	}
	return nil, g.rep.Errorf(n.Pos, "'%s' is not a value", n.Name)
}

// lowerIntLit types an integer constant: the smallest of int, long,
// long long that represents it, nudged by the literal's suffixes.
func (g *Generator) lowerIntLit(n cabs.IntLit) *value {
	v := n.Value
	var t ctypes.Type
	switch {
	case n.Unsigned && n.LongLong:
		t = ctypes.ULongLong()
	case n.LongLong:
		t = ctypes.LongLong()
	case n.Unsigned && n.Long:
		t = ctypes.ULong()
	case n.Long:
		if v >= -(1 << 31) && v < 1<<31 {
			t = ctypes.Long()
		} else {
			t = ctypes.LongLong()
		}
	case n.Unsigned:
		switch {
		case v >= 0 && v < 1<<16:
			t = ctypes.UInt()
		case v >= 0 && v < 1<<32:
			t = ctypes.ULong()
		default:
			t = ctypes.ULongLong()
		}
	default:
		switch {
		case v >= -(1 << 15) && v < 1<<15:
			t = ctypes.Int()
		case v >= -(1 << 31) && v < 1<<31:
			t = ctypes.Long()
		default:
			t = ctypes.LongLong()
		}
	}
	return &value{op: immOp(v), kind: rval, typ: t, cv: &constVal{V: v}, pos: n.Pos}
}

func (g *Generator) lowerUnary(n cabs.Unary) (*value, error) {
	switch n.Op {
	case cabs.UPlus, cabs.UNeg, cabs.UBitNot:
		return g.lowerSimpleUnary(n)
	case cabs.ULogNot:
		v, err := g.condValue(n.Arg)
		if err != nil {
			return nil, err
		}
		if c, ok := v.constInt(); ok {
			b := int64(0)
			if c == 0 {
				b = 1
			}
			g.setConst(v, b, ctypes.Bool())
			return v, nil
		}
		dest := g.newVR()
		g.emit(binInstr(ir.Eq, ctypes.BitWidth(v.typ), dest, v.op, immOp(0)))
		v.op = varOp(dest)
		v.typ = ctypes.Bool()
		v.cv = nil
		return v, nil

	case cabs.UDeref:
		v, err := g.exprRval(n.Arg)
		if err != nil {
			return nil, err
		}
		g.decay(v)
		p, ok := v.typ.(ctypes.Tpointer)
		if !ok {
			return nil, g.rep.Errorf(n.Pos, "cannot dereference %s", v.typ)
		}
		v.typ = ctypes.Clone(p.Elem)
		v.kind = lval
		v.cv = nil
		return v, nil

	case cabs.UAddrOf:
		v, err := g.expr(n.Arg)
		if err != nil {
			return nil, err
		}
		if v.kind != lval {
			return nil, g.rep.Errorf(n.Pos, "cannot take the address of an rvalue")
		}
		// The lvalue operand already is the address.
		v.kind = rval
		if s, ok := v.op.(ir.Sym); ok {
			v.cv = &constVal{V: s.Off, Sym: s.Name}
		} else {
			v.cv = nil
		}
		v.typ = ctypes.Pointer(v.typ)
		return v, nil

	case cabs.UPreInc, cabs.UPreDec, cabs.UPostInc, cabs.UPostDec:
		return g.lowerIncDec(n)
	}
	return nil, g.rep.Errorf(n.Pos, "unsupported unary operator")
}

func (g *Generator) lowerSimpleUnary(n cabs.Unary) (*value, error) {
	v, err := g.exprRval(n.Arg)
	if err != nil {
		return nil, err
	}
	if !ctypes.IsArithmetic(v.typ) {
		return nil, g.rep.Errorf(n.Pos, "invalid operand type %s", v.typ)
	}
	// Unary operators apply the integer promotion to their operand.
	if ctypes.Rank(v.typ) < ctypes.Rank(ctypes.Int()) || !isPlainInt(v.typ) {
		if err := g.convert(v, promoted(v.typ), convQuiet, n.Pos); err != nil {
			return nil, err
		}
	}
	width := ctypes.BitWidth(v.typ)
	signed := ctypes.IsSigned(v.typ)
	switch n.Op {
	case cabs.UPlus:
		return v, nil
	case cabs.UNeg:
		if c, ok := v.constInt(); ok {
			r, overflow := foldNeg(c, width, signed)
			if overflow {
				g.rep.Warnf(n.Pos, "integer overflow in constant negation")
			}
			g.setConst(v, r, v.typ)
			return v, nil
		}
		dest := g.newVR()
		g.emit(ir.Instr{Op: ir.Neg, Width: width, Dest: dest, A: v.op})
		v.op = varOp(dest)
		return v, nil
	case cabs.UBitNot:
		if c, ok := v.constInt(); ok {
			g.setConst(v, truncConst(^c, width, signed), v.typ)
			return v, nil
		}
		dest := g.newVR()
		g.emit(ir.Instr{Op: ir.Not, Width: width, Dest: dest, A: v.op})
		v.op = varOp(dest)
		return v, nil
	}
	return nil, g.rep.Errorf(n.Pos, "unsupported unary operator")
}

// isPlainInt reports whether t is a non-enum integer type.
func isPlainInt(t ctypes.Type) bool {
	_, ok := t.(ctypes.Tint)
	return ok
}

// promoted returns the integer promotion of an arithmetic type.
func promoted(t ctypes.Type) ctypes.Type {
	t = ctypes.Representative(t)
	if ctypes.Rank(t) < ctypes.Rank(ctypes.Int()) {
		return ctypes.Int()
	}
	return t
}

// lowerIncDec handles ++ and -- in both positions: evaluate the
// address once, read, step (scaled for pointers), write back.
func (g *Generator) lowerIncDec(n cabs.Unary) (*value, error) {
	lv, err := g.expr(n.Arg)
	if err != nil {
		return nil, err
	}
	if lv.kind != lval {
		return nil, g.rep.Errorf(n.Pos, "lvalue required")
	}
	addr := lv.op
	t := lv.typ
	width := ctypes.BitWidth(t)

	old := g.newVR()
	g.emit(ir.Instr{Op: ir.Read, Width: width, Dest: old, A: addr})

	step := int64(1)
	if n.Op == cabs.UPreDec || n.Op == cabs.UPostDec {
		step = -1
	}
	updated := g.newVR()
	switch typ := t.(type) {
	case ctypes.Tpointer:
		if _, err := ctypes.SizeOf(typ.Elem); err != nil {
			return nil, g.rep.Errorf(n.Pos, "pointer arithmetic on incomplete type %s", typ.Elem)
		}
		g.emit(ir.Instr{Op: ir.PtrIdx, Width: 16, Dest: updated,
			A: varOp(old), B: immOp(step), Type: typeExpr(typ.Elem)})
	default:
		if !ctypes.IsArithmetic(t) {
			return nil, g.rep.Errorf(n.Pos, "invalid operand type %s", t)
		}
		op := ir.Add
		if step < 0 {
			op = ir.Sub
		}
		g.emit(binInstr(op, width, updated, varOp(old), immOp(1)))
	}
	g.emit(ir.Instr{Op: ir.Write, Width: width, A: addr, B: varOp(updated)})

	result := old
	if n.Op == cabs.UPreInc || n.Op == cabs.UPreDec {
		result = updated
	}
	return &value{op: varOp(result), kind: rval, typ: ctypes.Clone(t), pos: n.Pos}, nil
}

func (g *Generator) lowerBinary(n cabs.Binary) (*value, error) {
	switch n.Op {
	case cabs.BLogAnd, cabs.BLogOr:
		return g.lowerLogical(n)
	}

	l, err := g.expr(n.L)
	if err != nil {
		return nil, err
	}
	r, err := g.expr(n.R)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case cabs.BAdd, cabs.BSub:
		return g.lowerAddSub(n.Op, l, r, n.Pos)
	case cabs.BMul, cabs.BDiv, cabs.BMod:
		return g.lowerMulDiv(n.Op, l, r, n.Pos)
	case cabs.BAnd, cabs.BOr, cabs.BXor:
		return g.lowerBitwise(n.Op, l, r, n.Pos)
	case cabs.BShl, cabs.BShr:
		return g.lowerShift(n.Op, l, r, n.Pos)
	case cabs.BEq, cabs.BNe, cabs.BLt, cabs.BLe, cabs.BGt, cabs.BGe:
		return g.lowerCompare(n.Op, l, r, n.Pos)
	}
	return nil, g.rep.Errorf(n.Pos, "unsupported binary operator")
}

// isPointerish reports whether a value is pointer- or array-typed.
func isPointerish(v *value) (ctypes.Type, bool) {
	switch t := v.typ.(type) {
	case ctypes.Tpointer:
		return t.Elem, true
	case ctypes.Tarray:
		return t.Elem, true
	}
	return nil, false
}

func (g *Generator) lowerAddSub(op cabs.BinaryOp, l, r *value, pos diag.Pos) (*value, error) {
	_, lp := isPointerish(l)
	_, rp := isPointerish(r)

	switch {
	case lp && !rp:
		return g.lowerPtrIndex(l, r, op == cabs.BSub, pos)
	case !lp && rp:
		if op == cabs.BSub {
			return nil, g.rep.Errorf(pos, "cannot subtract a pointer from an integer")
		}
		return g.lowerPtrIndex(r, l, false, pos)
	case lp && rp:
		if op != cabs.BSub {
			return nil, g.rep.Errorf(pos, "invalid operand types %s and %s", l.typ, r.typ)
		}
		return g.lowerPtrDiff(l, r, pos)
	}

	common, flags, err := g.usualArith(l, r, pos)
	if err != nil {
		return nil, err
	}
	g.warnUAC(flags, pos)
	width := ctypes.BitWidth(common)
	signed := ctypes.IsSigned(common)

	if lc, ok := l.constInt(); ok {
		if rc, ok := r.constInt(); ok {
			var res int64
			var overflow bool
			if op == cabs.BAdd {
				res, overflow = foldAdd(lc, rc, width, signed)
			} else {
				res, overflow = foldSub(lc, rc, width, signed)
			}
			if overflow {
				g.rep.Warnf(pos, "integer overflow in constant expression")
			}
			g.setConst(l, res, common)
			return l, nil
		}
	}

	irOp := ir.Add
	if op == cabs.BSub {
		irOp = ir.Sub
	}
	dest := g.newVR()
	g.emit(binInstr(irOp, width, dest, l.op, r.op))
	return &value{op: varOp(dest), kind: rval, typ: common, pos: pos}, nil
}

// lowerPtrIndex emits the pointer-index instruction for ptr +/- int.
// Arrays stay lvalues so their statically known bounds can be checked;
// pointers are read to rvalues first.
func (g *Generator) lowerPtrIndex(ptr, idx *value, negate bool, pos diag.Pos) (*value, error) {
	var elem ctypes.Type
	var arraySize int64 = -1
	switch t := ptr.typ.(type) {
	case ctypes.Tarray:
		elem = t.Elem
		arraySize = t.Size
	case ctypes.Tpointer:
		g.rvalue(ptr)
		elem = t.Elem
	}
	if _, err := ctypes.SizeOf(elem); err != nil {
		return nil, g.rep.Errorf(pos, "pointer arithmetic on incomplete type %s", elem)
	}

	g.rvalue(idx)
	if !ctypes.IsIntegral(idx.typ) {
		return nil, g.rep.Errorf(pos, "array index must have integral type, got %s", idx.typ)
	}
	if err := g.convert(idx, ctypes.Int(), convQuiet, pos); err != nil {
		return nil, err
	}

	if c, ok := idx.constInt(); ok {
		eff := c
		if negate {
			eff = -c
		}
		if eff < 0 && arraySize >= 0 {
			g.rep.Warnf(pos, "negative array index %d", eff)
		} else if arraySize >= 0 && eff >= arraySize {
			g.rep.Warnf(pos, "array index %d out of bounds (size %d)", eff, arraySize)
		}
	}

	idxOp := idx.op
	if negate {
		if c, ok := idx.constInt(); ok {
			idxOp = immOp(-c)
		} else {
			neg := g.newVR()
			g.emit(ir.Instr{Op: ir.Neg, Width: 16, Dest: neg, A: idx.op})
			idxOp = varOp(neg)
		}
	}

	dest := g.newVR()
	g.emit(ir.Instr{Op: ir.PtrIdx, Width: 16, Dest: dest,
		A: ptr.op, B: idxOp, Type: typeExpr(elem)})
	return &value{op: varOp(dest), kind: rval,
		typ: ctypes.Pointer(ctypes.Clone(elem)), pos: pos}, nil
}

// lowerPtrDiff lowers ptr - ptr: byte difference divided by the
// element size.
func (g *Generator) lowerPtrDiff(l, r *value, pos diag.Pos) (*value, error) {
	le, _ := isPointerish(l)
	re, _ := isPointerish(r)
	if !ctypes.PointerCompatible(le, re) {
		g.rep.Warnf(pos, "subtraction of incompatible pointer types %s and %s", l.typ, r.typ)
	}
	g.rvalue(l)
	g.decay(l)
	g.rvalue(r)
	g.decay(r)
	sz, err := ctypes.SizeOf(le)
	if err != nil {
		return nil, g.rep.Errorf(pos, "pointer arithmetic on incomplete type %s", le)
	}
	diffVR := g.newVR()
	g.emit(binInstr(ir.Sub, 16, diffVR, l.op, r.op))
	out := diffVR
	if sz > 1 {
		scaled := g.newVR()
		g.emit(binInstr(ir.Div, 16, scaled, varOp(diffVR), immOp(sz)))
		out = scaled
	}
	return &value{op: varOp(out), kind: rval, typ: ctypes.Int(), pos: pos}, nil
}

func (g *Generator) lowerMulDiv(op cabs.BinaryOp, l, r *value, pos diag.Pos) (*value, error) {
	common, flags, err := g.usualArith(l, r, pos)
	if err != nil {
		return nil, err
	}
	g.warnUAC(flags, pos)
	width := ctypes.BitWidth(common)
	signed := ctypes.IsSigned(common)

	if rc, rOK := r.constInt(); rOK {
		if rc == 0 && op != cabs.BMul {
			g.rep.Warnf(pos, "division by zero")
			g.setConst(l, 0, common)
			return l, nil
		}
		if lc, lOK := l.constInt(); lOK {
			var res int64
			var overflow bool
			switch op {
			case cabs.BMul:
				res, overflow = foldMul(lc, rc, width, signed)
			case cabs.BDiv:
				res, _ = foldDiv(lc, rc, width, signed)
			case cabs.BMod:
				res, _ = foldMod(lc, rc, width, signed)
			}
			if overflow {
				g.rep.Warnf(pos, "integer overflow in constant expression")
			}
			g.setConst(l, res, common)
			return l, nil
		}
	}

	var irOp ir.Op
	switch {
	case op == cabs.BMul:
		irOp = ir.Mul
	case op == cabs.BDiv && signed:
		irOp = ir.Div
	case op == cabs.BDiv:
		irOp = ir.UDiv
	case signed:
		irOp = ir.Mod
	default:
		irOp = ir.UMod
	}
	dest := g.newVR()
	g.emit(binInstr(irOp, width, dest, l.op, r.op))
	return &value{op: varOp(dest), kind: rval, typ: common, pos: pos}, nil
}

func (g *Generator) lowerBitwise(op cabs.BinaryOp, l, r *value, pos diag.Pos) (*value, error) {
	common, flags, err := g.usualArith(l, r, pos)
	if err != nil {
		return nil, err
	}
	g.warnUAC(flags&^uacMixedSign, pos)
	width := ctypes.BitWidth(common)
	signed := ctypes.IsSigned(common)

	var irOp ir.Op
	switch op {
	case cabs.BAnd:
		irOp = ir.And
	case cabs.BOr:
		irOp = ir.Or
	default:
		irOp = ir.Xor
	}
	if lc, ok := l.constInt(); ok {
		if rc, ok := r.constInt(); ok {
			var res int64
			switch op {
			case cabs.BAnd:
				res = lc & rc
			case cabs.BOr:
				res = lc | rc
			default:
				res = lc ^ rc
			}
			g.setConst(l, truncConst(res, width, signed), common)
			return l, nil
		}
	}
	dest := g.newVR()
	g.emit(binInstr(irOp, width, dest, l.op, r.op))
	return &value{op: varOp(dest), kind: rval, typ: common, pos: pos}, nil
}

// lowerShift promotes each operand separately; the result takes the
// promoted left operand's type, not a common type.
func (g *Generator) lowerShift(op cabs.BinaryOp, l, r *value, pos diag.Pos) (*value, error) {
	g.rvalue(l)
	g.rvalue(r)
	if !ctypes.IsIntegral(l.typ) || !ctypes.IsIntegral(r.typ) {
		return nil, g.rep.Errorf(pos, "invalid operand types %s and %s", l.typ, r.typ)
	}
	if err := g.convert(l, promoted(l.typ), convQuiet, pos); err != nil {
		return nil, err
	}
	if err := g.convert(r, promoted(r.typ), convQuiet, pos); err != nil {
		return nil, err
	}
	width := ctypes.BitWidth(l.typ)
	signed := ctypes.IsSigned(l.typ)

	if rc, ok := r.constInt(); ok {
		switch checkShift(rc, width) {
		case shiftNegative:
			g.rep.Warnf(pos, "shift by negative amount %d", rc)
		case shiftTooWide:
			g.rep.Warnf(pos, "shift amount %d is at least the width of the type (%d)", rc, width)
		}
		if lc, ok := l.constInt(); ok {
			var res int64
			if op == cabs.BShl {
				res = foldShl(lc, rc, width, signed)
			} else {
				res = foldShr(lc, rc, width, signed)
			}
			g.setConst(l, res, l.typ)
			return l, nil
		}
	}

	var irOp ir.Op
	switch {
	case op == cabs.BShl:
		irOp = ir.Shl
	case signed:
		irOp = ir.Sar
	default:
		irOp = ir.Shr
	}
	dest := g.newVR()
	g.emit(binInstr(irOp, width, dest, l.op, r.op))
	return &value{op: varOp(dest), kind: rval, typ: l.typ, pos: pos}, nil
}

var compareOps = map[cabs.BinaryOp][2]ir.Op{
	cabs.BEq: {ir.Eq, ir.Eq},
	cabs.BNe: {ir.Ne, ir.Ne},
	cabs.BLt: {ir.Lt, ir.ULt},
	cabs.BLe: {ir.Le, ir.ULe},
	cabs.BGt: {ir.Gt, ir.UGt},
	cabs.BGe: {ir.Ge, ir.UGe},
}

func (g *Generator) lowerCompare(op cabs.BinaryOp, l, r *value, pos diag.Pos) (*value, error) {
	g.rvalue(l)
	g.decay(l)
	g.rvalue(r)
	g.decay(r)

	_, lp := l.typ.(ctypes.Tpointer)
	_, rp := r.typ.(ctypes.Tpointer)

	var width int
	var signed bool
	switch {
	case lp && rp:
		le := l.typ.(ctypes.Tpointer).Elem
		re := r.typ.(ctypes.Tpointer).Elem
		if !ctypes.PointerCompatible(le, re) {
			g.rep.Warnf(pos, "comparison of incompatible pointer types %s and %s", l.typ, r.typ)
		}
		width, signed = 16, false
	case lp || rp:
		ptr, other := l, r
		if rp {
			ptr, other = r, l
		}
		if c, ok := other.constInt(); !ok || c != 0 {
			g.rep.Warnf(pos, "comparison between pointer and integer")
		}
		if err := g.convert(other, ptr.typ, convQuiet, pos); err != nil {
			return nil, err
		}
		width, signed = 16, false
	default:
		common, flags, err := g.usualArith(l, r, pos)
		if err != nil {
			return nil, err
		}
		if flags&uacMixedSign != 0 {
			g.rep.Warnf(pos, "comparison between signed and unsigned values")
		}
		g.warnUAC(flags&^(uacMixedSign|uacBool), pos)
		width = ctypes.BitWidth(common)
		signed = ctypes.IsSigned(common)
	}

	if lc, ok := l.constInt(); ok {
		if rc, ok := r.constInt(); ok {
			res := evalCompare(op, lc, rc, signed)
			v := &value{pos: pos}
			g.setConst(v, res, ctypes.Bool())
			return v, nil
		}
	}

	ops := compareOps[op]
	irOp := ops[0]
	if !signed {
		irOp = ops[1]
	}
	dest := g.newVR()
	g.emit(binInstr(irOp, width, dest, l.op, r.op))
	return &value{op: varOp(dest), kind: rval, typ: ctypes.Bool(), pos: pos}, nil
}

func evalCompare(op cabs.BinaryOp, a, b int64, signed bool) int64 {
	var res bool
	if signed {
		switch op {
		case cabs.BEq:
			res = a == b
		case cabs.BNe:
			res = a != b
		case cabs.BLt:
			res = a < b
		case cabs.BLe:
			res = a <= b
		case cabs.BGt:
			res = a > b
		case cabs.BGe:
			res = a >= b
		}
	} else {
		ua, ub := uint64(a), uint64(b)
		switch op {
		case cabs.BEq:
			res = ua == ub
		case cabs.BNe:
			res = ua != ub
		case cabs.BLt:
			res = ua < ub
		case cabs.BLe:
			res = ua <= ub
		case cabs.BGt:
			res = ua > ub
		case cabs.BGe:
			res = ua >= ub
		}
	}
	if res {
		return 1
	}
	return 0
}

// lowerLogical lowers && and || with explicit short-circuit control
// flow. Both branches write the same destination register, allocated
// once before the split.
func (g *Generator) lowerLogical(n cabs.Binary) (*value, error) {
	l, err := g.condValue(n.L)
	if err != nil {
		return nil, err
	}
	if lc, lOK := l.constInt(); lOK {
		// Left side already decides the result: the right side is
		// never evaluated, but it is still lowered for its diagnostics
		// and then rolled back.
		if (n.Op == cabs.BLogAnd && lc == 0) || (n.Op == cabs.BLogOr && lc != 0) {
			mark := g.blk.Len()
			_, err := g.condValue(n.R)
			g.blk.Truncate(mark)
			if err != nil {
				return nil, err
			}
			v := &value{pos: n.Pos}
			res := int64(0)
			if n.Op == cabs.BLogOr {
				res = 1
			}
			g.setConst(v, res, ctypes.Bool())
			return v, nil
		}
		// Left side passes through: the result is the right side's
		// truth value, effects kept.
		r, err := g.condValue(n.R)
		if err != nil {
			return nil, err
		}
		if err := g.toBool(r, n.Pos); err != nil {
			return nil, err
		}
		return r, nil
	}

	dest := g.newVR()
	short := g.newLabel()
	end := g.newLabel()

	width := ctypes.BitWidth(l.typ)
	if n.Op == cabs.BLogAnd {
		g.emit(jumpZInstr(width, l.op, short))
	} else {
		g.emit(jumpNZInstr(width, l.op, short))
	}

	r, err := g.condValue(n.R)
	if err != nil {
		return nil, err
	}
	if err := g.toBool(r, n.Pos); err != nil {
		return nil, err
	}
	g.emit(movInstr(16, dest, r.op))
	g.emit(jumpInstr(end))

	g.label(short)
	shortVal := int64(0)
	if n.Op == cabs.BLogOr {
		shortVal = 1
	}
	g.emit(movInstr(16, dest, immOp(shortVal)))
	g.label(end)

	return &value{op: varOp(dest), kind: rval, typ: ctypes.Bool(), pos: n.Pos}, nil
}

// lowerCond lowers the ternary operator. The false branch is generated
// speculatively into a side buffer, because the common result type
// depends on both branches; the buffer is spliced in afterwards.
func (g *Generator) lowerCond(n cabs.Cond) (*value, error) {
	c, err := g.condValue(n.C)
	if err != nil {
		return nil, err
	}

	falseL := g.newLabel()
	end := g.newLabel()
	g.emit(jumpZInstr(ctypes.BitWidth(c.typ), c.op, falseL))

	t, err := g.exprRval(n.T)
	if err != nil {
		return nil, err
	}
	g.decay(t)

	side := ir.NewBlock()
	restore := g.retarget(side)
	f, err := g.expr(n.F)
	if err != nil {
		restore()
		return nil, err
	}
	g.rvalue(f)
	g.decay(f)
	restore()

	common, err := g.condCommonType(t, f, n.Pos)
	if err != nil {
		return nil, err
	}

	if _, isVoid := common.(ctypes.Tvoid); isVoid {
		g.emit(jumpInstr(end))
		g.label(falseL)
		g.blk.Splice(side)
		g.label(end)
		return &value{kind: rval, typ: ctypes.Void(), pos: n.Pos}, nil
	}

	dest := g.newVR()
	width := ctypes.BitWidth(common)

	if err := g.convert(t, common, convQuiet, n.Pos); err != nil {
		return nil, err
	}
	g.emit(movInstr(width, dest, t.op))
	g.emit(jumpInstr(end))

	g.label(falseL)
	g.blk.Splice(side)
	if err := g.convert(f, common, convQuiet, n.Pos); err != nil {
		return nil, err
	}
	g.emit(movInstr(width, dest, f.op))
	g.label(end)

	return &value{op: varOp(dest), kind: rval, typ: common, pos: n.Pos}, nil
}

// condCommonType computes the ternary result type from the two branch
// types without emitting any conversion.
func (g *Generator) condCommonType(t, f *value, pos diag.Pos) (ctypes.Type, error) {
	_, tv := t.typ.(ctypes.Tvoid)
	_, fv := f.typ.(ctypes.Tvoid)
	if tv || fv {
		return ctypes.Void(), nil
	}
	if ctypes.Equal(t.typ, f.typ) {
		return ctypes.Clone(t.typ), nil
	}
	if ctypes.IsArithmetic(t.typ) && ctypes.IsArithmetic(f.typ) {
		at := promoted(t.typ)
		bt := promoted(f.typ)
		ar, br := ctypes.Rank(at), ctypes.Rank(bt)
		aSigned, bSigned := ctypes.IsSigned(at), ctypes.IsSigned(bt)
		if aSigned == bSigned {
			sign := ctypes.Unsigned
			if aSigned {
				sign = ctypes.Signed
			}
			return ctypes.IntOfRank(maxInt(ar, br), sign), nil
		}
		sr, ur := ar, br
		if bSigned {
			sr, ur = br, ar
		}
		if sr > ur {
			return ctypes.IntOfRank(sr, ctypes.Signed), nil
		}
		return ctypes.IntOfRank(ur, ctypes.Unsigned), nil
	}
	tp, tIsPtr := t.typ.(ctypes.Tpointer)
	fp, fIsPtr := f.typ.(ctypes.Tpointer)
	if tIsPtr && fIsPtr {
		if !ctypes.PointerCompatible(tp.Elem, fp.Elem) {
			g.rep.Warnf(pos, "pointer type mismatch in conditional: %s and %s", t.typ, f.typ)
		}
		return ctypes.Clone(t.typ), nil
	}
	if tIsPtr && ctypes.IsIntegral(f.typ) {
		if c, ok := f.constInt(); ok && c == 0 {
			return ctypes.Clone(t.typ), nil
		}
	}
	if fIsPtr && ctypes.IsIntegral(t.typ) {
		if c, ok := t.constInt(); ok && c == 0 {
			return ctypes.Clone(f.typ), nil
		}
	}
	return nil, g.rep.Errorf(pos, "incompatible branch types %s and %s in conditional", t.typ, f.typ)
}

func (g *Generator) lowerComma(n cabs.Comma) (*value, error) {
	l, err := g.expr(n.L)
	if err != nil {
		return nil, err
	}
	g.rvalue(l) // evaluated for effect, value discarded
	return g.expr(n.R)
}

func (g *Generator) lowerAssign(n cabs.Assign) (*value, error) {
	if n.Op != cabs.BNone {
		return g.lowerCompoundAssign(n)
	}
	lv, err := g.expr(n.L)
	if err != nil {
		return nil, err
	}
	if lv.kind != lval {
		return nil, g.rep.Errorf(n.Pos, "lvalue required in assignment")
	}
	if _, isArr := lv.typ.(ctypes.Tarray); isArr {
		return nil, g.rep.Errorf(n.Pos, "cannot assign to an array")
	}
	rv, err := g.expr(n.R)
	if err != nil {
		return nil, err
	}

	if rec, isRec := lv.typ.(ctypes.Trecord); isRec {
		g.rvalue(rv)
		if src, ok := rv.typ.(ctypes.Trecord); !ok || src.Def != rec.Def {
			return nil, g.rep.Errorf(n.Pos, "cannot assign %s to %s", rv.typ, lv.typ)
		}
		g.emit(ir.Instr{Op: ir.Copy, A: lv.op, B: rv.op, Type: typeExpr(lv.typ)})
		return &value{op: lv.op, kind: rval, typ: ctypes.Clone(lv.typ), pos: n.Pos}, nil
	}

	if err := g.convert(rv, lv.typ, convImplicit, n.Pos); err != nil {
		return nil, err
	}
	g.emit(ir.Instr{Op: ir.Write, Width: ctypes.BitWidth(lv.typ), A: lv.op, B: rv.op})
	rv.kind = rval
	return rv, nil
}

// lowerCompoundAssign evaluates the lvalue address exactly once, then
// read-modify-convert-write. The result is the stored value.
func (g *Generator) lowerCompoundAssign(n cabs.Assign) (*value, error) {
	lv, err := g.expr(n.L)
	if err != nil {
		return nil, err
	}
	if lv.kind != lval {
		return nil, g.rep.Errorf(n.Pos, "lvalue required in assignment")
	}
	addr := lv.op
	target := ctypes.Clone(lv.typ)
	width := ctypes.BitWidth(target)

	cur := g.newVR()
	g.emit(ir.Instr{Op: ir.Read, Width: width, Dest: cur, A: addr})
	curVal := &value{op: varOp(cur), kind: rval, typ: ctypes.Clone(target), pos: n.Pos}

	rv, err := g.expr(n.R)
	if err != nil {
		return nil, err
	}

	var res *value
	switch n.Op {
	case cabs.BAdd, cabs.BSub:
		res, err = g.lowerAddSub(n.Op, curVal, rv, n.Pos)
	case cabs.BMul, cabs.BDiv, cabs.BMod:
		res, err = g.lowerMulDiv(n.Op, curVal, rv, n.Pos)
	case cabs.BAnd, cabs.BOr, cabs.BXor:
		res, err = g.lowerBitwise(n.Op, curVal, rv, n.Pos)
	case cabs.BShl, cabs.BShr:
		res, err = g.lowerShift(n.Op, curVal, rv, n.Pos)
	default:
		return nil, g.rep.Errorf(n.Pos, "unsupported compound assignment")
	}
	if err != nil {
		return nil, err
	}

	if err := g.convert(res, target, convQuiet, n.Pos); err != nil {
		return nil, err
	}
	g.emit(ir.Instr{Op: ir.Write, Width: width, A: addr, B: res.op})
	return res, nil
}

func (g *Generator) lowerCall(n cabs.Call) (*value, error) {
	fn, err := g.expr(n.Fn)
	if err != nil {
		return nil, err
	}

	var ft ctypes.Tfunction
	var callee ir.Operand
	switch t := fn.typ.(type) {
	case ctypes.Tfunction:
		ft = t
		callee = fn.op
	case ctypes.Tpointer:
		inner, ok := t.Elem.(ctypes.Tfunction)
		if !ok {
			return nil, g.rep.Errorf(n.Pos, "called object is not a function")
		}
		g.rvalue(fn)
		ft = inner
		callee = fn.op
	default:
		return nil, g.rep.Errorf(n.Pos, "called object is not a function")
	}

	if !ft.Variadic && len(n.Args) != len(ft.Params) {
		return nil, g.rep.Errorf(n.Pos, "wrong number of arguments: expected %d, got %d",
			len(ft.Params), len(n.Args))
	}
	if ft.Variadic && len(n.Args) < len(ft.Params) {
		return nil, g.rep.Errorf(n.Pos, "too few arguments: expected at least %d, got %d",
			len(ft.Params), len(n.Args))
	}

	var args []ir.Operand
	for i, a := range n.Args {
		av, err := g.exprRval(a)
		if err != nil {
			return nil, err
		}
		if i < len(ft.Params) {
			if err := g.convert(av, paramValueType(ft.Params[i]), convImplicit, av.pos); err != nil {
				return nil, err
			}
		} else {
			// Default promotions for variadic extras.
			g.decay(av)
			if ctypes.IsArithmetic(av.typ) {
				if err := g.convert(av, promoted(av.typ), convQuiet, av.pos); err != nil {
					return nil, err
				}
			}
		}
		args = append(args, av.op)
	}

	ins := ir.Instr{Op: ir.Call, A: callee, B: ir.List{Elems: args}}
	retType := ctypes.Clone(ft.Return)
	if _, void := retType.(ctypes.Tvoid); !void {
		ins.Dest = g.newVR()
		ins.Width = ctypes.BitWidth(retType)
	}
	g.emit(ins)

	v := &value{kind: rval, typ: retType, pos: n.Pos}
	if ins.Dest != "" {
		v.op = varOp(ins.Dest)
	}
	return v, nil
}

// paramValueType is the type a parameter takes at a call site: arrays
// and functions pass as pointers.
func paramValueType(t ctypes.Type) ctypes.Type {
	switch typ := t.(type) {
	case ctypes.Tarray:
		return ctypes.Pointer(ctypes.Clone(typ.Elem))
	case ctypes.Tfunction:
		return ctypes.Pointer(ctypes.Clone(t))
	}
	return t
}

func (g *Generator) lowerIndex(n cabs.Index) (*value, error) {
	base, err := g.expr(n.Base)
	if err != nil {
		return nil, err
	}
	if _, ok := isPointerish(base); !ok {
		return nil, g.rep.Errorf(n.Pos, "subscripted value is not an array or pointer")
	}
	idx, err := g.expr(n.Idx)
	if err != nil {
		return nil, err
	}
	if arr, ok := base.typ.(ctypes.Tarray); ok && arr.Index != nil {
		g.rvalue(idx)
		if ie, isEnum := idx.typ.(ctypes.Tenum); isEnum {
			if want, isWant := arr.Index.(ctypes.Tenum); isWant && want.Def != ie.Def {
				g.rep.Warnf(n.Pos, "index of enum type %s into array indexed by %s", idx.typ, arr.Index)
			}
		}
	}
	ptr, err := g.lowerPtrIndex(base, idx, false, n.Pos)
	if err != nil {
		return nil, err
	}
	elem := ptr.typ.(ctypes.Tpointer).Elem
	return &value{op: ptr.op, kind: lval, typ: ctypes.Clone(elem), pos: n.Pos}, nil
}

func (g *Generator) lowerMember(n cabs.Member) (*value, error) {
	base, err := g.expr(n.Base)
	if err != nil {
		return nil, err
	}

	var rec *ctypes.Record
	var baseOp ir.Operand
	if n.Arrow {
		g.rvalue(base)
		g.decay(base)
		p, ok := base.typ.(ctypes.Tpointer)
		if !ok {
			return nil, g.rep.Errorf(n.Pos, "'->' applied to non-pointer type %s", base.typ)
		}
		r, ok := p.Elem.(ctypes.Trecord)
		if !ok {
			return nil, g.rep.Errorf(n.Pos, "'->' applied to pointer to non-record type %s", base.typ)
		}
		rec = r.Def
		baseOp = base.op
	} else {
		r, ok := base.typ.(ctypes.Trecord)
		if !ok {
			return nil, g.rep.Errorf(n.Pos, "member access on non-record type %s", base.typ)
		}
		rec = r.Def
		baseOp = base.op
	}

	if !rec.Completed {
		return nil, g.rep.Errorf(n.Pos, "use of incomplete %s", rec)
	}
	elem, ok := rec.Elem(n.Name)
	if !ok {
		return nil, g.rep.Errorf(n.Pos, "no member '%s' in %s", n.Name, rec)
	}

	dest := g.newVR()
	g.emit(ir.Instr{Op: ir.Member, Width: 16, Dest: dest, A: baseOp,
		Field: n.Name, Type: &ir.TypeExpr{Kind: ir.TRec, Rec: rec.IRName}})
	return &value{op: varOp(dest), kind: lval, typ: ctypes.Clone(elem.Type), pos: n.Pos}, nil
}

func (g *Generator) lowerCast(n cabs.Cast) (*value, error) {
	dst, err := g.typeFromTypeName(n.To)
	if err != nil {
		return nil, err
	}
	v, err := g.expr(n.Arg)
	if err != nil {
		return nil, err
	}
	if err := g.convert(v, dst, convExplicit, n.Pos); err != nil {
		return nil, err
	}
	return v, nil
}

// lowerSizeofExpr types the operand without keeping its code: the
// lowering happens into a throwaway buffer.
// lowerSizeofExpr types the operand without evaluating it: whatever the
// lowering emitted is rolled back, its diagnostics stay.
func (g *Generator) lowerSizeofExpr(n cabs.SizeofExpr) (*value, error) {
	mark := g.blk.Len()
	v, err := g.expr(n.Arg)
	g.blk.Truncate(mark)
	if err != nil {
		return nil, err
	}
	return g.sizeofValue(v.typ, n.Pos)
}

func (g *Generator) lowerSizeofType(n cabs.SizeofType) (*value, error) {
	t, err := g.typeFromTypeName(n.To)
	if err != nil {
		return nil, err
	}
	return g.sizeofValue(t, n.Pos)
}

func (g *Generator) sizeofValue(t ctypes.Type, pos diag.Pos) (*value, error) {
	if _, isFn := t.(ctypes.Tfunction); isFn {
		return nil, g.rep.Errorf(pos, "sizeof applied to a function type")
	}
	sz, err := ctypes.SizeOf(t)
	if err != nil {
		return nil, g.rep.Errorf(pos, "sizeof incomplete type %s", t)
	}
	v := &value{pos: pos}
	g.setConst(v, sz, ctypes.UInt())
	return v, nil
}

// constExpr lowers e into a throwaway buffer and requires a plain
// integer constant result.
func (g *Generator) constExpr(e cabs.Expr) (int64, error) {
	c, _, err := g.constExprTyped(e)
	return c, err
}

// constExprTyped is constExpr keeping the constant's type, which array
// declarators use to notice enum-typed extents.
func (g *Generator) constExprTyped(e cabs.Expr) (int64, ctypes.Type, error) {
	side := ir.NewBlock()
	restore := g.retarget(side)
	v, err := g.expr(e)
	if err != nil {
		restore()
		return 0, nil, err
	}
	g.rvalue(v)
	restore()
	c, ok := v.constInt()
	if !ok {
		return 0, nil, g.rep.Errorf(v.pos, "constant expression required")
	}
	return c, v.typ, nil
}

// constInitValue lowers e for a global initializer: a plain constant
// or a symbol-relative address constant.
func (g *Generator) constInitValue(e cabs.Expr) (*value, error) {
	side := ir.NewBlock()
	restore := g.retarget(side)
	v, err := g.expr(e)
	if err != nil {
		restore()
		return nil, err
	}
	g.rvalue(v)
	g.decay(v)
	restore()
	if v.cv == nil {
		if s, ok := v.op.(ir.Sym); ok {
			v.cv = &constVal{V: s.Off, Sym: s.Name}
			return v, nil
		}
		return nil, g.rep.Errorf(v.pos, "constant expression required in initializer")
	}
	return v, nil
}
