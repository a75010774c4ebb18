// Package cabs defines the abstract C syntax the generator consumes.
// The tree is already built by a frontend; the generator only reads it
// through the typed accessors here, one construct at a time via the
// pull protocol in pkg/parser.
package cabs

import "github.com/c16lang/c16cc/pkg/diag"

// --- Expressions ---

// Expr is the interface for all expression nodes.
type Expr interface {
	implExpr()
	Span() diag.Pos
}

// UnaryOp enumerates unary operators.
type UnaryOp int

const (
	UPlus UnaryOp = iota
	UNeg
	UBitNot
	ULogNot
	UDeref
	UAddrOf
	UPreInc
	UPreDec
	UPostInc
	UPostDec
)

// BinaryOp enumerates binary operators. Assignment with Op == BNone is
// a plain assignment; otherwise Assign.Op names the compound operation.
type BinaryOp int

const (
	BNone BinaryOp = iota
	BAdd
	BSub
	BMul
	BDiv
	BMod
	BAnd
	BOr
	BXor
	BShl
	BShr
	BLogAnd
	BLogOr
	BEq
	BNe
	BLt
	BLe
	BGt
	BGe
)

// Ident references a declared identifier.
type Ident struct {
	Name string
	Pos  diag.Pos
}

// IntLit is an integer constant, already decoded by the lexer.
// Suffix flags select the literal's type.
type IntLit struct {
	Value    int64
	Unsigned bool
	Long     bool
	LongLong bool
	Pos      diag.Pos
}

// CharLit is a character constant, already decoded.
type CharLit struct {
	Value int64
	Pos   diag.Pos
}

// StrLit is a string literal. Raw still contains escape sequences;
// the generator decodes them when the literal is materialized.
type StrLit struct {
	Raw  string
	Wide bool
	Pos  diag.Pos
}

// Unary applies a unary operator.
type Unary struct {
	Op  UnaryOp
	Arg Expr
	Pos diag.Pos
}

// Binary applies a binary operator.
type Binary struct {
	Op   BinaryOp
	L, R Expr
	Pos  diag.Pos
}

// Assign is plain (Op == BNone) or compound assignment.
type Assign struct {
	Op   BinaryOp
	L, R Expr
	Pos  diag.Pos
}

// Cond is the ternary conditional operator.
type Cond struct {
	C, T, F Expr
	Pos     diag.Pos
}

// Comma is the comma operator.
type Comma struct {
	L, R Expr
	Pos  diag.Pos
}

// Call is a function call.
type Call struct {
	Fn   Expr
	Args []Expr
	Pos  diag.Pos
}

// Index is array subscripting.
type Index struct {
	Base, Idx Expr
	Pos       diag.Pos
}

// Member is struct/union member access; Arrow distinguishes p->f.
type Member struct {
	Base  Expr
	Name  string
	Arrow bool
	Pos   diag.Pos
}

// Cast is an explicit type cast.
type Cast struct {
	To  TypeName
	Arg Expr
	Pos diag.Pos
}

// SizeofExpr is sizeof applied to an expression.
type SizeofExpr struct {
	Arg Expr
	Pos diag.Pos
}

// SizeofType is sizeof applied to a type name.
type SizeofType struct {
	To  TypeName
	Pos diag.Pos
}

func (Ident) implExpr()      {}
func (IntLit) implExpr()     {}
func (CharLit) implExpr()    {}
func (StrLit) implExpr()     {}
func (Unary) implExpr()      {}
func (Binary) implExpr()     {}
func (Assign) implExpr()     {}
func (Cond) implExpr()       {}
func (Comma) implExpr()      {}
func (Call) implExpr()       {}
func (Index) implExpr()      {}
func (Member) implExpr()     {}
func (Cast) implExpr()       {}
func (SizeofExpr) implExpr() {}
func (SizeofType) implExpr() {}

func (e Ident) Span() diag.Pos      { return e.Pos }
func (e IntLit) Span() diag.Pos     { return e.Pos }
func (e CharLit) Span() diag.Pos    { return e.Pos }
func (e StrLit) Span() diag.Pos     { return e.Pos }
func (e Unary) Span() diag.Pos      { return e.Pos }
func (e Binary) Span() diag.Pos     { return e.Pos }
func (e Assign) Span() diag.Pos     { return e.Pos }
func (e Cond) Span() diag.Pos       { return e.Pos }
func (e Comma) Span() diag.Pos      { return e.Pos }
func (e Call) Span() diag.Pos       { return e.Pos }
func (e Index) Span() diag.Pos      { return e.Pos }
func (e Member) Span() diag.Pos     { return e.Pos }
func (e Cast) Span() diag.Pos       { return e.Pos }
func (e SizeofExpr) Span() diag.Pos { return e.Pos }
func (e SizeofType) Span() diag.Pos { return e.Pos }

// --- Declaration specifiers and declarators ---

// SpecKind enumerates declaration specifier atoms.
type SpecKind int

const (
	SpecVoid SpecKind = iota
	SpecChar
	SpecShort
	SpecInt
	SpecLong
	SpecSigned
	SpecUnsigned
	SpecBool
	SpecFloat
	SpecDouble
	SpecVaList
	SpecStruct // carries Rec
	SpecEnum   // carries Enum
	SpecName   // typedef name, carries Name
	SpecTypedef
	SpecExtern
	SpecStatic
	SpecAuto
	SpecRegister
	SpecConst
	SpecVolatile
)

var specNames = map[SpecKind]string{
	SpecVoid: "void", SpecChar: "char", SpecShort: "short", SpecInt: "int",
	SpecLong: "long", SpecSigned: "signed", SpecUnsigned: "unsigned",
	SpecBool: "_Bool", SpecFloat: "float", SpecDouble: "double",
	SpecVaList: "va_list", SpecStruct: "struct", SpecEnum: "enum",
	SpecName: "typedef-name", SpecTypedef: "typedef", SpecExtern: "extern",
	SpecStatic: "static", SpecAuto: "auto", SpecRegister: "register",
	SpecConst: "const", SpecVolatile: "volatile",
}

func (k SpecKind) String() string {
	if s, ok := specNames[k]; ok {
		return s
	}
	return "?"
}

// Spec is one declaration-specifier atom, in source order.
type Spec struct {
	Kind SpecKind
	Name string    // SpecName: the typedef name
	Rec  *RecSpec  // SpecStruct
	Enum *EnumSpec // SpecEnum
	Pos  diag.Pos
}

// RecSpec is a struct/union specifier: a bare tag reference or a
// definition with a body.
type RecSpec struct {
	Union   bool
	Tag     string // empty for anonymous
	HasBody bool
	Body    []RecField
	Pos     diag.Pos
}

// RecField is one member declaration inside a record body.
type RecField struct {
	Specs []Spec
	Decls []Declarator
	Pos   diag.Pos
}

// EnumSpec is an enum specifier: a bare tag reference or a definition.
type EnumSpec struct {
	Tag     string
	HasBody bool
	Items   []EnumItem
	Pos     diag.Pos
}

// EnumItem is one enumerator, with an optional explicit value.
type EnumItem struct {
	Name  string
	Value Expr
	Pos   diag.Pos
}

// DeclModKind enumerates declarator modifiers.
type DeclModKind int

const (
	ModPointer DeclModKind = iota
	ModArray
	ModFunc
)

// DeclMod is one declarator wrapper. Mods[0] binds closest to the
// identifier: `int *a[3]` has ModArray before ModPointer.
type DeclMod struct {
	Kind     DeclModKind
	Size     Expr // ModArray: nil for []
	Params   []ParamDecl
	Variadic bool
	Pos      diag.Pos
}

// ParamDecl is one function parameter declaration.
type ParamDecl struct {
	Specs []Spec
	Decl  Declarator
	Pos   diag.Pos
}

// Declarator is an identifier wrapped in pointer/array/function
// modifiers. Name may be empty in abstract declarators (casts,
// parameter lists).
type Declarator struct {
	Name string
	Mods []DeclMod
	Pos  diag.Pos
}

// TypeName is an abstract type, as in casts and sizeof.
type TypeName struct {
	Specs []Spec
	Decl  Declarator
	Pos   diag.Pos
}

// Designator is one `.field` or `[index]` selector in an initializer.
// Field is empty for an index designator.
type Designator struct {
	Field string
	Index Expr
	Pos   diag.Pos
}

// InitItem is a node in the initializer tree: either a scalar
// expression or a nested brace list, with optional leading designators.
type InitItem struct {
	Designators []Designator
	Expr        Expr
	List        []InitItem
	IsList      bool
	Pos         diag.Pos
}

// InitDecl is one init-declarator.
type InitDecl struct {
	Decl Declarator
	Init *InitItem
	Pos  diag.Pos
}

// Declaration is one full declaration: specifiers plus init-declarators.
type Declaration struct {
	Specs []Spec
	Decls []InitDecl
	Pos   diag.Pos
}

// --- Statements ---

// Stmt is the interface for all statement nodes.
type Stmt interface {
	implStmt()
	Span() diag.Pos
}

// ExprStmt is an expression statement; Expr nil is the empty statement.
type ExprStmt struct {
	Expr Expr
	Pos  diag.Pos
}

// Return is a return statement, Expr optional.
type Return struct {
	Expr Expr
	Pos  diag.Pos
}

// If is a conditional. Else may be another If, forming an else-if
// cascade that the pull parser delivers one clause at a time.
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt
	Pos  diag.Pos
}

// While is a pre-test loop.
type While struct {
	Cond Expr
	Body Stmt
	Pos  diag.Pos
}

// Do is a post-test loop.
type Do struct {
	Body Stmt
	Cond Expr
	Pos  diag.Pos
}

// For is a for loop; all three clauses optional.
type For struct {
	Init Expr
	Cond Expr
	Step Expr
	Body Stmt
	Pos  diag.Pos
}

// Switch is a switch statement; the body is a block whose items may
// include Case and Default labels.
type Switch struct {
	Expr Expr
	Body *Block
	Pos  diag.Pos
}

// Case is a case label inside a switch body.
type Case struct {
	Expr Expr
	Pos  diag.Pos
}

// Default is the default label inside a switch body.
type Default struct {
	Pos diag.Pos
}

// Break exits the nearest loop or switch.
type Break struct {
	Pos diag.Pos
}

// Continue restarts the nearest loop.
type Continue struct {
	Pos diag.Pos
}

// Goto jumps to a named label.
type Goto struct {
	Label string
	Pos   diag.Pos
}

// Labeled is a named label attached to a statement.
type Labeled struct {
	Name string
	Stmt Stmt
	Pos  diag.Pos
}

// DeclStmt is a declaration in block position.
type DeclStmt struct {
	Decl *Declaration
	Pos  diag.Pos
}

// Block is a braced statement sequence.
type Block struct {
	Items []Stmt
	Pos   diag.Pos
}

func (ExprStmt) implStmt() {}
func (Return) implStmt()   {}
func (If) implStmt()       {}
func (While) implStmt()    {}
func (Do) implStmt()       {}
func (For) implStmt()      {}
func (Switch) implStmt()   {}
func (Case) implStmt()     {}
func (Default) implStmt()  {}
func (Break) implStmt()    {}
func (Continue) implStmt() {}
func (Goto) implStmt()     {}
func (Labeled) implStmt()  {}
func (DeclStmt) implStmt() {}
func (*Block) implStmt()   {}

func (s ExprStmt) Span() diag.Pos { return s.Pos }
func (s Return) Span() diag.Pos   { return s.Pos }
func (s If) Span() diag.Pos       { return s.Pos }
func (s While) Span() diag.Pos    { return s.Pos }
func (s Do) Span() diag.Pos       { return s.Pos }
func (s For) Span() diag.Pos      { return s.Pos }
func (s Switch) Span() diag.Pos   { return s.Pos }
func (s Case) Span() diag.Pos     { return s.Pos }
func (s Default) Span() diag.Pos  { return s.Pos }
func (s Break) Span() diag.Pos    { return s.Pos }
func (s Continue) Span() diag.Pos { return s.Pos }
func (s Goto) Span() diag.Pos     { return s.Pos }
func (s Labeled) Span() diag.Pos  { return s.Pos }
func (s DeclStmt) Span() diag.Pos { return s.Pos }
func (s *Block) Span() diag.Pos   { return s.Pos }

// --- Top level ---

// External is one top-level construct: a declaration, or a function
// definition when Body is non-nil (Decl.Decls[0] is the function's
// declarator).
type External struct {
	Decl *Declaration
	Body *Block
	Pos  diag.Pos
}

// Program is a whole translation unit.
type Program struct {
	Items []External
}
