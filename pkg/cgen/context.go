package cgen

import (
	"fmt"

	"github.com/c16lang/c16cc/pkg/ctypes"
	"github.com/c16lang/c16cc/pkg/diag"
	"github.com/c16lang/c16cc/pkg/ir"
	"github.com/c16lang/c16cc/pkg/scope"
)

// Generator is the explicit context object threaded through the whole
// lowering pass. There is no global state; re-entrant saves around the
// parser callbacks are push helpers returning pop funcs run via defer.
type Generator struct {
	parser Parser
	rep    *diag.Reporter
	mod    *ir.Module
	syms   *scope.Symbols

	records *ctypes.Records
	enums   *ctypes.Enums

	scope *scope.Scope

	// Current function under generation. blk is the emission target;
	// expression lowering may temporarily retarget it at a side buffer.
	proc    *ir.Proc
	blk     *ir.Block
	retType ctypes.Type

	nextVR    int
	nextLabel int
	nextStr   int

	// recDepth and paramDepth count enclosing record bodies and
	// parameter lists during specifier resolution; tag definitions in
	// either place get a visibility warning.
	recDepth   int
	paramDepth int

	loops  *loopFrame   // continue targets, loops only
	breaks *breakFrame  // break targets, nearest loop or switch
	sw     *switchFrame // innermost switch

	labels map[string]*gotoLabel

	// tentative marks object symbols declared without an initializer;
	// the driver's post-pass turns them into zero-filled globals unless
	// a real definition arrived later.
	tentative map[*scope.Symbol]bool
}

// loopFrame tracks the innermost loop's continue target.
type loopFrame struct {
	parent *loopFrame
	cont   string
}

// breakFrame tracks the nearest break target, loop or switch.
type breakFrame struct {
	parent *breakFrame
	target string
}

// caseEntry is one seen case value with its IR label.
type caseEntry struct {
	value int64
	label string
	pos   diag.Pos
}

// switchFrame tracks the innermost switch statement.
type switchFrame struct {
	parent   *switchFrame
	keep     ir.Operand  // the controlling value, lowered once
	typ      ctypes.Type // controlling expression's type
	cases    []caseEntry
	defLabel string
	endLabel string
	pos      diag.Pos
}

// gotoLabel tracks one function-local label for goto resolution.
type gotoLabel struct {
	irLabel string
	defined bool
	used    bool
	pos     diag.Pos
}

// New creates a generator. The parser is the frontend it re-enters for
// nested constructs; syms is the shared global symbol directory.
func New(p Parser, rep *diag.Reporter, syms *scope.Symbols) *Generator {
	return &Generator{
		parser:    p,
		rep:       rep,
		mod:       &ir.Module{},
		syms:      syms,
		records:   ctypes.NewRecords(),
		enums:     ctypes.NewEnums(),
		scope:     scope.NewFile(),
		tentative: make(map[*scope.Symbol]bool),
	}
}

// Module returns the IR built so far.
func (g *Generator) Module() *ir.Module { return g.mod }

// newVR allocates a fresh virtual register name.
func (g *Generator) newVR() string {
	g.nextVR++
	return fmt.Sprintf("t%d", g.nextVR)
}

// newLabel allocates a fresh numbered label.
func (g *Generator) newLabel() string {
	g.nextLabel++
	return fmt.Sprintf("L%d", g.nextLabel)
}

// emit appends an instruction to the current block.
func (g *Generator) emit(ins ir.Instr) {
	g.blk.Emit(ins)
}

// label places a label definition in the current block.
func (g *Generator) label(name string) {
	g.blk.Label(name)
}

// pushScope enters a child scope; the returned pop func restores the
// parent and reports unused members, and must run on every exit path.
func (g *Generator) pushScope(what string) func() {
	g.scope = g.scope.Enter(what)
	s := g.scope
	return func() {
		g.warnUnused(s)
		g.scope = s.Parent()
	}
}

func (g *Generator) warnUnused(s *scope.Scope) {
	for _, m := range s.Unused() {
		switch m.Kind {
		case scope.KLocal:
			g.rep.Warnf(m.Pos, "variable '%s' declared but not used", m.Name)
		case scope.KArg:
			g.rep.Warnf(m.Pos, "argument '%s' not used", m.Name)
		case scope.KTypedef:
			g.rep.Warnf(m.Pos, "typedef '%s' declared but not used", m.Name)
		case scope.KEnumTag:
			if m.Enum != nil && !m.Enum.Named {
				g.rep.Warnf(m.Pos, "enum '%s' declared but not used", m.Name)
			}
		}
	}
}

// pushLoop enters a loop: continue targets cont, break targets brk.
func (g *Generator) pushLoop(cont, brk string) func() {
	g.loops = &loopFrame{parent: g.loops, cont: cont}
	g.breaks = &breakFrame{parent: g.breaks, target: brk}
	return func() {
		g.loops = g.loops.parent
		g.breaks = g.breaks.parent
	}
}

// pushSwitch enters a switch: break targets its end label.
func (g *Generator) pushSwitch(f *switchFrame) func() {
	f.parent = g.sw
	g.sw = f
	g.breaks = &breakFrame{parent: g.breaks, target: f.endLabel}
	return func() {
		g.sw = f.parent
		g.breaks = g.breaks.parent
	}
}

// retarget redirects emission at blk; the returned func restores the
// previous target. Used for speculative side-buffer generation.
func (g *Generator) retarget(blk *ir.Block) func() {
	prev := g.blk
	g.blk = blk
	return func() { g.blk = prev }
}

// IdentIsType answers the parser's typedef disambiguation query with a
// scope lookup.
func (g *Generator) IdentIsType(name string) bool {
	m := g.scope.Lookup(name)
	return m != nil && m.Kind == scope.KTypedef
}
