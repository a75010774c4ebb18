package cgen

// Constant folding. All arithmetic is done in 64-bit unsigned form and
// then masked or sign-extended to the target type's exact bit width.
// Signed overflow is detected algebraically from the operand and result
// signs and reported by the caller as a warning, never an error.
// Division or modulo by a constant zero yields 0 by policy.

// truncConst masks v to width bits and, for signed types, sign-extends
// the result back to 64 bits.
func truncConst(v int64, width int, signed bool) int64 {
	if width >= 64 {
		return v
	}
	u := uint64(v) & (uint64(1)<<width - 1)
	if signed && u&(uint64(1)<<(width-1)) != 0 {
		u |= ^(uint64(1)<<width - 1)
	}
	return int64(u)
}

func signBit(v int64, width int) bool {
	return uint64(v)&(uint64(1)<<(width-1)) != 0
}

// foldAdd folds a+b at width bits. The second result reports signed
// overflow: both operands of one sign, the result of the other.
func foldAdd(a, b int64, width int, signed bool) (int64, bool) {
	r := truncConst(int64(uint64(a)+uint64(b)), width, signed)
	if !signed {
		return r, false
	}
	overflow := signBit(a, width) == signBit(b, width) &&
		signBit(r, width) != signBit(a, width)
	return r, overflow
}

// foldSub folds a-b at width bits with algebraic overflow detection.
func foldSub(a, b int64, width int, signed bool) (int64, bool) {
	r := truncConst(int64(uint64(a)-uint64(b)), width, signed)
	if !signed {
		return r, false
	}
	overflow := signBit(a, width) != signBit(b, width) &&
		signBit(r, width) != signBit(a, width)
	return r, overflow
}

// foldNeg folds -a at width bits. Negating the minimum value of a
// signed type overflows back onto itself.
func foldNeg(a int64, width int, signed bool) (int64, bool) {
	r := truncConst(int64(-uint64(a)), width, signed)
	if !signed {
		return r, false
	}
	minVal := truncConst(int64(uint64(1)<<(width-1)), width, true)
	return r, a == minVal
}

// foldMul folds a*b at width bits. Overflow is detected by dividing
// the truncated product back out.
func foldMul(a, b int64, width int, signed bool) (int64, bool) {
	r := truncConst(int64(uint64(a)*uint64(b)), width, signed)
	if !signed || a == 0 || b == 0 {
		return r, false
	}
	minVal := truncConst(int64(uint64(1)<<(width-1)), width, true)
	if b == -1 {
		return r, a == minVal
	}
	return r, r/b != a
}

// foldDiv folds a/b. Division by a constant zero yields 0; the second
// result tells the caller to warn.
func foldDiv(a, b int64, width int, signed bool) (res int64, divZero bool) {
	if b == 0 {
		return 0, true
	}
	if signed {
		if b == -1 {
			r, _ := foldNeg(a, width, true)
			return r, false
		}
		return truncConst(a/b, width, true), false
	}
	ua := uint64(truncConst(a, width, false))
	ub := uint64(truncConst(b, width, false))
	return truncConst(int64(ua/ub), width, false), false
}

// foldMod folds a%b with the same zero policy as foldDiv.
func foldMod(a, b int64, width int, signed bool) (res int64, divZero bool) {
	if b == 0 {
		return 0, true
	}
	if signed {
		if b == -1 {
			return 0, false
		}
		return truncConst(a%b, width, true), false
	}
	ua := uint64(truncConst(a, width, false))
	ub := uint64(truncConst(b, width, false))
	return truncConst(int64(ua%ub), width, false), false
}

// shiftFault classifies a constant shift amount.
type shiftFault int

const (
	shiftOK shiftFault = iota
	shiftNegative
	shiftTooWide
)

func checkShift(amount int64, width int) shiftFault {
	switch {
	case amount < 0:
		return shiftNegative
	case amount >= int64(width):
		return shiftTooWide
	}
	return shiftOK
}

// foldShl folds a<<b at width bits.
func foldShl(a, b int64, width int, signed bool) int64 {
	if checkShift(b, width) != shiftOK {
		return 0
	}
	return truncConst(int64(uint64(a)<<uint(b)), width, signed)
}

// foldShr folds a>>b: arithmetic for signed types, logical otherwise.
func foldShr(a, b int64, width int, signed bool) int64 {
	if checkShift(b, width) != shiftOK {
		return 0
	}
	if signed {
		return truncConst(truncConst(a, width, true)>>uint(b), width, true)
	}
	u := uint64(truncConst(a, width, false))
	return truncConst(int64(u>>uint(b)), width, false)
}
