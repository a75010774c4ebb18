// Package ir defines the machine-independent intermediate representation
// emitted by the code generator: a register machine with an unbounded
// supply of virtual registers, labeled instruction blocks, and a handful
// of polymorphic instructions that carry an explicit type operand.
// A separate backend consumes this; nothing here knows about real
// registers or instruction encodings.
package ir

import "fmt"

// Module is one translation unit's worth of IR.
type Module struct {
	Records []*RecordDecl
	Globals []*Global
	Externs []*Extern
	Procs   []*Proc
}

// RecordDecl describes a struct or union layout for the backend.
type RecordDecl struct {
	Name   string
	Union  bool
	Fields []RecordField
}

// RecordField is one named field with its byte size and offset.
type RecordField struct {
	Name   string
	Offset int64
	Size   int64
}

// Global is a global variable with its byte-level initializer image.
// Relocs record symbol-relative words inside Data.
type Global struct {
	Name   string
	Size   int64
	Data   []byte
	Relocs []Reloc
	Static bool
}

// Reloc marks a symbol-relative constant inside a global's data image.
type Reloc struct {
	Offset int64
	Sym    string
	Addend int64
	Width  int
}

// SymKind classifies external symbols.
type SymKind int

const (
	SymFunc SymKind = iota
	SymVar
)

// Extern is a declared-but-undefined symbol, synthesized by the driver
// post-pass so the module is self-describing for the linker stage.
type Extern struct {
	Name      string
	Kind      SymKind
	Size      int64 // variables: object size in bytes
	ArgWidths []int // functions: argument widths in bits
	RetWidth  int   // functions: 0 for void
	Variadic  bool
}

// Arg is a procedure argument.
type Arg struct {
	Name  string
	Width int
}

// Local is a stack-allocated local (addressable) variable.
type Local struct {
	Name string
	Size int64
}

// Proc is one generated procedure: arguments, declared return width,
// addressable locals, and a single labeled instruction block.
type Proc struct {
	Name     string
	Args     []Arg
	RetWidth int // 0 for void
	Locals   []Local
	Body     *Block
}

// Block is an ordered sequence of labels and instructions.
type Block struct {
	Items []Item
}

// NewBlock creates an empty block.
func NewBlock() *Block { return &Block{} }

// Emit appends an instruction.
func (b *Block) Emit(ins Instr) { b.Items = append(b.Items, ins) }

// Label appends a label definition.
func (b *Block) Label(name string) { b.Items = append(b.Items, LabelDef{Name: name}) }

// Splice appends every item of other, in order. Used when code was
// speculatively generated into a side buffer.
func (b *Block) Splice(other *Block) { b.Items = append(b.Items, other.Items...) }

// Len returns the number of items, letting callers roll back
// speculative emission by truncating.
func (b *Block) Len() int { return len(b.Items) }

// Truncate drops every item at index n and beyond.
func (b *Block) Truncate(n int) { b.Items = b.Items[:n] }

// Item is either a LabelDef or an Instr.
type Item interface {
	implItem()
}

// LabelDef is a label definition inside a block.
type LabelDef struct {
	Name string
}

// Op is an instruction opcode.
type Op int

const (
	Nop Op = iota
	Mov     // dest = a
	Read    // dest = mem[a], Width bits
	Write   // mem[a] = b, Width bits
	Addr    // dest = address of named symbol/local (a is Sym or Var)
	Add     // dest = a + b
	Sub     // dest = a - b
	Mul     // dest = a * b
	Div     // dest = a / b, signed
	UDiv    // dest = a / b, unsigned
	Mod     // dest = a % b, signed
	UMod    // dest = a % b, unsigned
	Neg     // dest = -a
	And     // dest = a & b
	Or      // dest = a | b
	Xor     // dest = a ^ b
	Not     // dest = ^a
	Shl     // dest = a << b
	Shr     // dest = a >> b, logical
	Sar     // dest = a >> b, arithmetic
	Eq      // dest = a == b
	Ne      // dest = a != b
	Lt      // dest = a < b, signed
	Le      // dest = a <= b, signed
	Gt      // dest = a > b, signed
	Ge      // dest = a >= b, signed
	ULt     // unsigned compares
	ULe
	UGt
	UGe
	Sext   // dest = sign-extend a from Width to Width2
	Zext   // dest = zero-extend a from Width to Width2
	Trunc  // dest = truncate a from Width to Width2
	Jump   // goto Target
	JumpZ  // if a == 0 goto Target
	JumpNZ // if a != 0 goto Target
	Call   // dest = call a with args b (List); dest empty for void
	RetV   // return a
	Ret    // return
	PtrIdx // dest = a + b * sizeof(Type): pointer index, Type required
	Member // dest = a + offset of Field in Type
	Copy   // mem[a] = mem[b], Type gives the object shape
)

var opNames = map[Op]string{
	Nop: "nop", Mov: "mov", Read: "read", Write: "write", Addr: "addr",
	Add: "add", Sub: "sub", Mul: "mul", Div: "div", UDiv: "udiv",
	Mod: "mod", UMod: "umod", Neg: "neg", And: "and", Or: "or",
	Xor: "xor", Not: "not", Shl: "shl", Shr: "shr", Sar: "sar",
	Eq: "eq", Ne: "ne", Lt: "lt", Le: "le", Gt: "gt", Ge: "ge",
	ULt: "ult", ULe: "ule", UGt: "ugt", UGe: "uge",
	Sext: "sext", Zext: "zext", Trunc: "trunc",
	Jump: "jump", JumpZ: "jumpz", JumpNZ: "jumpnz",
	Call: "call", RetV: "retv", Ret: "ret",
	PtrIdx: "ptridx", Member: "member", Copy: "copy",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op%d", int(o))
}

// Instr is one IR instruction: opcode, bit width (where applicable),
// up to two source operands (or a List for call arguments), an optional
// destination virtual register, an optional jump target, and an
// optional attached type expression for the polymorphic opcodes.
type Instr struct {
	Op     Op
	Width  int
	Width2 int // conversion destination width
	Dest   string
	A, B   Operand
	Target string
	Field  string // Member: the accessed element's name
	Type   *TypeExpr
}

func (LabelDef) implItem() {}
func (Instr) implItem()    {}

// Operand is a variable reference, an immediate, a symbol address, or
// an argument list.
type Operand interface {
	implOperand()
	String() string
}

// Var references a virtual register, argument, or local by name.
type Var struct {
	Name string
}

// Imm is an immediate integer constant.
type Imm struct {
	Value int64
}

// Sym is the address of a global symbol plus a byte offset.
type Sym struct {
	Name string
	Off  int64
}

// List is a call-argument list.
type List struct {
	Elems []Operand
}

func (Var) implOperand()  {}
func (Imm) implOperand()  {}
func (Sym) implOperand()  {}
func (List) implOperand() {}

func (v Var) String() string { return v.Name }
func (i Imm) String() string { return fmt.Sprintf("%d", i.Value) }

func (s Sym) String() string {
	if s.Off != 0 {
		return fmt.Sprintf("&%s%+d", s.Name, s.Off)
	}
	return "&" + s.Name
}

func (l List) String() string {
	out := "("
	for i, e := range l.Elems {
		if i > 0 {
			out += ", "
		}
		out += e.String()
	}
	return out + ")"
}

// TypeKind discriminates TypeExpr nodes.
type TypeKind int

const (
	TInt TypeKind = iota
	TPtr
	TRec
	TArr
)

// TypeExpr is the small IR-level type language attached to the
// polymorphic instructions (ptridx, member). It mirrors just enough of
// the C type to compute element sizes and member offsets downstream.
type TypeExpr struct {
	Kind  TypeKind
	Width int       // TInt: bits
	Rec   string    // TRec: record IR name
	Elem  *TypeExpr // TPtr, TArr
	Count int64     // TArr
}

func (t *TypeExpr) String() string {
	switch t.Kind {
	case TInt:
		return fmt.Sprintf("i%d", t.Width)
	case TPtr:
		return t.Elem.String() + "*"
	case TRec:
		return t.Rec
	case TArr:
		return fmt.Sprintf("%s[%d]", t.Elem, t.Count)
	}
	return "?"
}
