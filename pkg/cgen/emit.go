package cgen

import (
	"github.com/c16lang/c16cc/pkg/ctypes"
	"github.com/c16lang/c16cc/pkg/ir"
)

// Small IR construction helpers shared across the lowering code.

func varOp(name string) ir.Operand { return ir.Var{Name: name} }
func immOp(v int64) ir.Operand     { return ir.Imm{Value: v} }

func zextOrSext(signed bool) ir.Op {
	if signed {
		return ir.Sext
	}
	return ir.Zext
}

func truncOp() ir.Op { return ir.Trunc }

func instrConv(op ir.Op, from, to int, dest string, a ir.Operand) ir.Instr {
	return ir.Instr{Op: op, Width: from, Width2: to, Dest: dest, A: a}
}

func neZeroInstr(width int, dest string, a ir.Operand) ir.Instr {
	return ir.Instr{Op: ir.Ne, Width: width, Dest: dest, A: a, B: ir.Imm{Value: 0}}
}

func binInstr(op ir.Op, width int, dest string, a, b ir.Operand) ir.Instr {
	return ir.Instr{Op: op, Width: width, Dest: dest, A: a, B: b}
}

func jumpInstr(target string) ir.Instr {
	return ir.Instr{Op: ir.Jump, Target: target}
}

func jumpZInstr(width int, a ir.Operand, target string) ir.Instr {
	return ir.Instr{Op: ir.JumpZ, Width: width, A: a, Target: target}
}

func jumpNZInstr(width int, a ir.Operand, target string) ir.Instr {
	return ir.Instr{Op: ir.JumpNZ, Width: width, A: a, Target: target}
}

func movInstr(width int, dest string, a ir.Operand) ir.Instr {
	return ir.Instr{Op: ir.Mov, Width: width, Dest: dest, A: a}
}

// typeExpr lowers a C type into the small IR-level type language
// attached to the polymorphic instructions.
func typeExpr(t ctypes.Type) *ir.TypeExpr {
	switch typ := t.(type) {
	case ctypes.Tpointer:
		return &ir.TypeExpr{Kind: ir.TPtr, Elem: typeExpr(typ.Elem)}
	case ctypes.Tarray:
		return &ir.TypeExpr{Kind: ir.TArr, Elem: typeExpr(typ.Elem), Count: typ.Size}
	case ctypes.Trecord:
		return &ir.TypeExpr{Kind: ir.TRec, Rec: typ.Def.IRName}
	default:
		return &ir.TypeExpr{Kind: ir.TInt, Width: ctypes.BitWidth(t)}
	}
}
