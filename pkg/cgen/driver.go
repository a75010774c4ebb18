// Package cgen implements the code-generation core: it lowers C
// abstract syntax into the register IR of pkg/ir, one construct at a
// time, interleaved with parsing through the pull protocol below.
package cgen

import (
	"github.com/c16lang/c16cc/pkg/cabs"
	"github.com/c16lang/c16cc/pkg/ctypes"
	"github.com/c16lang/c16cc/pkg/diag"
	"github.com/c16lang/c16cc/pkg/ir"
	"github.com/c16lang/c16cc/pkg/scope"
)

// Parser is the pull interface into the frontend. The parser drives
// top-level parsing and calls back into the Handler; composite
// statements re-enter the parser for exactly the sub-construct named,
// so parsing and generation stay interleaved on one call stack.
type Parser interface {
	// Top parses the whole translation unit, invoking the handler once
	// per global declaration or function-definition header.
	Top(h Handler) error
	// Stmt parses exactly one statement and dispatches it to h.
	Stmt(h Handler) error
	// Block parses the pending braced block, dispatching each item.
	Block(h Handler) error
	// Else parses the else continuation of the innermost if, if any.
	Else(h Handler) (ElseClause, error)
	// DoCond parses the while(...) condition closing a do statement.
	DoCond() (cabs.Expr, error)
}

// ElseKind discriminates the continuation of an if statement.
type ElseKind int

const (
	ElseNone ElseKind = iota
	ElseIf
	ElseBlock
)

// ElseClause is one pulled else continuation. Cond is set for ElseIf.
type ElseClause struct {
	Kind ElseKind
	Cond cabs.Expr
	Pos  diag.Pos
}

// Handler is the generator-side vtable the parser invokes while
// parsing. Composite statements arrive as headers; the handler
// re-enters the parser for their bodies.
type Handler interface {
	GlobalDecl(d *cabs.Declaration) error
	FunDef(d *cabs.Declaration) error
	Stmt(s cabs.Stmt) error
	If(pos diag.Pos, cond cabs.Expr) error
	While(pos diag.Pos, cond cabs.Expr) error
	Do(pos diag.Pos) error
	For(pos diag.Pos, init, cond, step cabs.Expr) error
	Switch(pos diag.Pos, expr cabs.Expr) error
	Block(pos diag.Pos) error
	Label(pos diag.Pos, name string) error
	// IdentIsType answers the parser's typedef-name-vs-identifier
	// disambiguation question mid-parse.
	IdentIsType(name string) bool
}

// GenerateModule runs the full generation pass: the parser drives, the
// generator lowers each construct as it arrives, and a post-pass
// synthesizes extern declarations for every symbol that was declared
// but never defined in this unit, so the module is self-describing.
func GenerateModule(p Parser, rep *diag.Reporter, syms *scope.Symbols) (*ir.Module, error) {
	g := New(p, rep, syms)
	if err := p.Top(g); err != nil {
		return nil, err
	}
	g.finishExterns()
	return g.mod, nil
}

// finishExterns walks the symbol directory and appends extern entries
// for declared-but-undefined functions and variables. Tentative object
// definitions become zero-filled globals instead.
func (g *Generator) finishExterns() {
	for _, s := range g.syms.All() {
		if s.Defined || s.Kind == scope.SymType || s.Type == nil {
			continue
		}
		if g.tentative[s] {
			sz, err := ctypes.SizeOf(s.Type)
			if err != nil {
				continue
			}
			g.mod.Globals = append(g.mod.Globals, &ir.Global{
				Name: s.IRName, Size: sz, Static: s.Static,
			})
			continue
		}
		ext := &ir.Extern{Name: s.IRName}
		switch t := s.Type.(type) {
		case ctypes.Tfunction:
			ext.Kind = ir.SymFunc
			ext.Variadic = t.Variadic
			for _, p := range t.Params {
				ext.ArgWidths = append(ext.ArgWidths, ctypes.BitWidth(paramValueType(p)))
			}
			if _, void := t.Return.(ctypes.Tvoid); !void {
				ext.RetWidth = ctypes.BitWidth(t.Return)
			}
		default:
			ext.Kind = ir.SymVar
			if sz, err := ctypes.SizeOf(s.Type); err == nil {
				ext.Size = sz
			}
		}
		g.mod.Externs = append(g.mod.Externs, ext)
	}
}
