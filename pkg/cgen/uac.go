package cgen

import (
	"github.com/c16lang/c16cc/pkg/ctypes"
	"github.com/c16lang/c16cc/pkg/diag"
)

// uacFlags describe notable conditions met during the usual arithmetic
// conversions. They are reported back to the caller, which decides
// which style warnings to emit; none of them is an error.
type uacFlags uint

const (
	uacMixedSign uacFlags = 1 << iota
	uacNegUnsigned
	uacEnumMismatch
	uacBool
)

// usualArith applies the usual arithmetic conversions to two operand
// values in place and returns the common type plus the condition flags.
// Both operands must be arithmetic; both end up rvalues of the common
// type.
func (g *Generator) usualArith(a, b *value, pos diag.Pos) (ctypes.Type, uacFlags, error) {
	g.rvalue(a)
	g.rvalue(b)

	if !ctypes.IsArithmetic(a.typ) || !ctypes.IsArithmetic(b.typ) {
		return nil, 0, g.rep.Errorf(pos, "invalid operand types %s and %s", a.typ, b.typ)
	}

	var flags uacFlags
	if ctypes.IsBool(a.typ) || ctypes.IsBool(b.typ) {
		flags |= uacBool
	}
	ae, aIsEnum := a.typ.(ctypes.Tenum)
	be, bIsEnum := b.typ.(ctypes.Tenum)
	if aIsEnum && bIsEnum && ae.Def != be.Def {
		flags |= uacEnumMismatch
	}

	// Enums compute as their representative integer type.
	at := ctypes.Representative(a.typ)
	bt := ctypes.Representative(b.typ)

	// Integer promotion: everything below int rank becomes int.
	intRank := ctypes.Rank(ctypes.Int())
	ar, br := ctypes.Rank(at), ctypes.Rank(bt)
	aSigned, bSigned := ctypes.IsSigned(at), ctypes.IsSigned(bt)
	if ar < intRank {
		ar, aSigned = intRank, true
	}
	if br < intRank {
		br, bSigned = intRank, true
	}

	var common ctypes.Type
	switch {
	case aSigned == bSigned:
		sign := ctypes.Unsigned
		if aSigned {
			sign = ctypes.Signed
		}
		common = ctypes.IntOfRank(maxInt(ar, br), sign)
	default:
		flags |= uacMixedSign
		sr, ur := ar, br
		neg := a
		if bSigned {
			sr, ur = br, ar
			neg = b
		}
		if sr > ur {
			// The signed type can represent every value of the
			// lower-ranked unsigned type.
			common = ctypes.IntOfRank(sr, ctypes.Signed)
		} else {
			common = ctypes.IntOfRank(ur, ctypes.Unsigned)
			if c, ok := neg.constInt(); ok && c < 0 {
				flags |= uacNegUnsigned
			}
		}
	}

	if err := g.convert(a, common, convQuiet, pos); err != nil {
		return nil, flags, err
	}
	if err := g.convert(b, common, convQuiet, pos); err != nil {
		return nil, flags, err
	}
	return common, flags, nil
}

// warnUAC turns the flag bits into their style warnings. Callers that
// want different handling (comparisons, for instance) pick flags apart
// themselves.
func (g *Generator) warnUAC(flags uacFlags, pos diag.Pos) {
	if flags&uacEnumMismatch != 0 {
		g.rep.Warnf(pos, "arithmetic between different enum types")
	}
	if flags&uacNegUnsigned != 0 {
		g.rep.Warnf(pos, "negative constant converted to unsigned type")
	}
	if flags&uacBool != 0 {
		g.rep.Warnf(pos, "arithmetic on a truth value")
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
