package cgen

import (
	"github.com/c16lang/c16cc/pkg/ctypes"
	"github.com/c16lang/c16cc/pkg/diag"
)

// convMode selects the warning policy of a conversion. Explicit casts
// suppress most information-loss warnings; the quiet mode is used
// internally when the caller reports conditions itself (usual
// arithmetic conversions, compound assignment write-back).
type convMode int

const (
	convImplicit convMode = iota
	convExplicit
	convQuiet
)

// convert coerces v to dst in place, emitting whatever IR the value
// path needs. Converting an rvalue to its own type is a no-op: the
// operand is reused, no instruction is emitted.
func (g *Generator) convert(v *value, dst ctypes.Type, mode convMode, pos diag.Pos) error {
	g.rvalue(v)

	// Converting to void discards the value.
	if _, ok := dst.(ctypes.Tvoid); ok {
		v.op = nil
		v.typ = ctypes.Void()
		v.cv = nil
		return nil
	}

	g.decay(v)

	if ctypes.Equal(v.typ, dst) {
		return nil
	}

	switch d := dst.(type) {
	case ctypes.Tint:
		return g.convertToInt(v, d, mode, pos)
	case ctypes.Tenum:
		return g.convertToEnum(v, d, mode, pos)
	case ctypes.Tpointer:
		return g.convertToPointer(v, d, mode, pos)
	case ctypes.Trecord:
		if src, ok := v.typ.(ctypes.Trecord); ok && src.Def == d.Def {
			return nil
		}
		return g.rep.Errorf(pos, "cannot convert %s to %s", v.typ, dst)
	case ctypes.Tvalist:
		return g.rep.Errorf(pos, "cannot convert %s to va_list", v.typ)
	}
	return g.rep.Errorf(pos, "cannot convert %s to %s", v.typ, dst)
}

// decay applies array-to-pointer and function-to-pointer decay. The
// operand is already the address in both cases; only the type changes.
func (g *Generator) decay(v *value) {
	switch t := v.typ.(type) {
	case ctypes.Tarray:
		v.typ = ctypes.Pointer(ctypes.Clone(t.Elem))
		v.kind = rval
	case ctypes.Tfunction:
		v.typ = ctypes.Pointer(ctypes.Clone(v.typ))
		v.kind = rval
	}
}

func (g *Generator) convertToInt(v *value, dst ctypes.Tint, mode convMode, pos diag.Pos) error {
	switch src := v.typ.(type) {
	case ctypes.Tenum:
		// Enums stand in for their representative int.
		v.typ = ctypes.Representative(v.typ)
		return g.convert(v, dst, mode, pos)

	case ctypes.Tint:
		// _Bool is a value-normalizing target, not a plain truncation.
		if dst.Size == ctypes.IBool {
			return g.toBool(v, pos)
		}
		sw, dw := ctypes.BitWidth(src), ctypes.BitWidth(dst)
		srcSigned := src.Sign == ctypes.Signed
		dstSigned := dst.Sign == ctypes.Signed
		if c, ok := v.constInt(); ok {
			folded := truncConst(c, dw, dstSigned)
			if mode == convImplicit && folded != c {
				g.rep.Warnf(pos, "constant %d changes value to %d when converted to %s", c, folded, dst)
			}
			g.setConst(v, folded, dst)
			return nil
		}
		switch {
		case sw < dw:
			op := zextOrSext(srcSigned)
			dest := g.newVR()
			g.emit(instrConv(op, sw, dw, dest, v.op))
			v.op = varOp(dest)
		case sw > dw:
			if mode == convImplicit {
				g.rep.Warnf(pos, "conversion from %s to %s may lose information", src, dst)
			}
			dest := g.newVR()
			g.emit(instrConv(truncOp(), sw, dw, dest, v.op))
			v.op = varOp(dest)
		default:
			if mode == convImplicit && srcSigned != dstSigned {
				g.rep.Warnf(pos, "conversion from %s to %s changes signedness", src, dst)
			}
		}
		v.typ = dst
		return nil

	case ctypes.Tpointer:
		if mode == convImplicit {
			g.rep.Warnf(pos, "conversion from %s to %s without a cast", src, dst)
		}
		pw, dw := 16, ctypes.BitWidth(dst)
		if pw != dw && mode != convQuiet {
			g.rep.Warnf(pos, "conversion between pointer and integer of different size")
		}
		if pw != dw {
			dest := g.newVR()
			if pw < dw {
				g.emit(instrConv(zextOrSext(false), pw, dw, dest, v.op))
			} else {
				g.emit(instrConv(truncOp(), pw, dw, dest, v.op))
			}
			v.op = varOp(dest)
		}
		v.typ = dst
		v.cv = nil
		return nil
	}
	return g.rep.Errorf(pos, "cannot convert %s to %s", v.typ, dst)
}

func (g *Generator) convertToEnum(v *value, dst ctypes.Tenum, mode convMode, pos diag.Pos) error {
	switch src := v.typ.(type) {
	case ctypes.Tenum:
		if src.Def == dst.Def {
			return nil
		}
		if mode == convImplicit {
			g.rep.Warnf(pos, "implicit conversion from %s to %s", src, dst)
		}
		v.typ = dst
		return nil
	case ctypes.Tint:
		// A value whose rank grew past plain int is first brought back
		// to int width; within int rank the operand passes unchanged,
		// which is what makes enum-to-int-and-back the identity.
		if ctypes.Rank(src) > ctypes.Rank(ctypes.Int()) {
			if err := g.convert(v, ctypes.Int(), mode, pos); err != nil {
				return err
			}
		}
		v.typ = dst
		return nil
	}
	return g.rep.Errorf(pos, "cannot convert %s to %s", v.typ, dst)
}

func (g *Generator) convertToPointer(v *value, dst ctypes.Tpointer, mode convMode, pos diag.Pos) error {
	switch src := v.typ.(type) {
	case ctypes.Tpointer:
		if mode == convImplicit && !ctypes.PointerCompatible(src.Elem, dst.Elem) {
			g.rep.Warnf(pos, "incompatible pointer types %s and %s", v.typ, dst)
		}
		v.typ = dst
		return nil
	case ctypes.Tint, ctypes.Tenum:
		if c, ok := v.constInt(); ok {
			if c != 0 && mode == convImplicit {
				g.rep.Warnf(pos, "pointer constructed from non-zero integer constant")
			}
		} else if mode == convImplicit {
			g.rep.Warnf(pos, "conversion from %s to %s without a cast", v.typ, dst)
		}
		sw := ctypes.BitWidth(v.typ)
		if sw != 16 {
			if mode != convQuiet {
				g.rep.Warnf(pos, "conversion between pointer and integer of different size")
			}
			if _, isConst := v.constInt(); !isConst {
				dest := g.newVR()
				if sw < 16 {
					g.emit(instrConv(zextOrSext(ctypes.IsSigned(v.typ)), sw, 16, dest, v.op))
				} else {
					g.emit(instrConv(truncOp(), sw, 16, dest, v.op))
				}
				v.op = varOp(dest)
			} else if c, _ := v.constInt(); true {
				g.setConst(v, truncConst(c, 16, false), dst)
				return nil
			}
		}
		v.typ = dst
		return nil
	}
	return g.rep.Errorf(pos, "cannot convert %s to %s", v.typ, dst)
}

// toBool normalizes any scalar to the logic type: 0 stays 0, anything
// else becomes 1.
func (g *Generator) toBool(v *value, pos diag.Pos) error {
	if !ctypes.IsScalar(v.typ) {
		return g.rep.Errorf(pos, "cannot convert %s to _Bool", v.typ)
	}
	if c, ok := v.constInt(); ok {
		b := int64(0)
		if c != 0 {
			b = 1
		}
		g.setConst(v, b, ctypes.Bool())
		return nil
	}
	dest := g.newVR()
	g.emit(neZeroInstr(ctypes.BitWidth(v.typ), dest, v.op))
	v.op = varOp(dest)
	v.typ = ctypes.Bool()
	v.cv = nil
	return nil
}

// setConst replaces v with a folded constant of type t.
func (g *Generator) setConst(v *value, c int64, t ctypes.Type) {
	v.op = immOp(c)
	v.cv = &constVal{V: c}
	v.typ = t
	v.kind = rval
}
