// Statement lowering: the Handler side of the pull protocol. Composite
// statement headers arrive as calls; their bodies are pulled back out
// of the parser, so generation stays interleaved with parsing.
package cgen

import (
	"github.com/c16lang/c16cc/pkg/cabs"
	"github.com/c16lang/c16cc/pkg/ctypes"
	"github.com/c16lang/c16cc/pkg/diag"
	"github.com/c16lang/c16cc/pkg/ir"
	"github.com/c16lang/c16cc/pkg/scope"
)

// FunDef starts a function definition. The declaration carries the
// header; the body is pulled from the parser before FunDef returns.
func (g *Generator) FunDef(d *cabs.Declaration) error {
	if len(d.Decls) != 1 {
		return g.rep.Errorf(d.Pos, "malformed function definition")
	}
	base, st, err := g.typeFromSpecs(d.Specs)
	if err != nil {
		return err
	}
	if st.typedef {
		return g.rep.Errorf(d.Pos, "typedef in function definition")
	}
	decl := d.Decls[0].Decl
	t, err := g.applyDeclarator(base, decl)
	if err != nil {
		return err
	}
	ft, ok := t.(ctypes.Tfunction)
	if !ok {
		return g.rep.Errorf(d.Pos, "'%s' is not a function", decl.Name)
	}
	if len(decl.Mods) == 0 || decl.Mods[0].Kind != cabs.ModFunc {
		return g.rep.Errorf(d.Pos, "'%s' does not declare a function body position", decl.Name)
	}
	params := decl.Mods[0].Params

	sym, created := g.syms.Declare(decl.Name, scope.SymFunc)
	if !created {
		if sym.Kind != scope.SymFunc {
			return g.rep.Errorf(d.Pos, "'%s' redeclared as a function", decl.Name)
		}
		if sym.Defined {
			return g.rep.Errorf(d.Pos, "redefinition of '%s'", decl.Name)
		}
		composed, err := ctypes.Compose(sym.Type, ft)
		if err != nil {
			return g.rep.Errorf(d.Pos, "conflicting declarations for '%s': %v", decl.Name, err)
		}
		ft = composed.(ctypes.Tfunction)
	}
	sym.Kind = scope.SymFunc
	sym.Type = ft
	sym.Defined = true
	if st.static {
		sym.Static = true
	}
	if g.scope.LookupLocal(decl.Name) == nil {
		g.scope.Insert(&scope.Member{
			Kind: scope.KGlobal, Name: decl.Name, Type: ft, Sym: sym,
			Used: true, Pos: d.Pos,
		})
	}

	proc := &ir.Proc{Name: sym.IRName, Body: ir.NewBlock()}
	if _, void := ft.Return.(ctypes.Tvoid); !void {
		proc.RetWidth = ctypes.BitWidth(ft.Return)
	}

	g.proc = proc
	g.blk = proc.Body
	g.retType = ctypes.Clone(ft.Return)
	g.labels = make(map[string]*gotoLabel)
	pop := g.pushScope("arguments")

	ok = true
	for i, p := range params {
		if p.Decl.Name == "" {
			if len(params) == 1 && isVoidParam(p) {
				break
			}
			ok = false
			g.rep.Errorf(p.Pos, "parameter name omitted in function definition")
			continue
		}
		pt := paramValueType(ft.Params[i])
		m := &scope.Member{
			Kind: scope.KArg, Name: p.Decl.Name, Type: ctypes.Clone(pt),
			Operand: p.Decl.Name, Pos: p.Pos,
		}
		if _, err := g.scope.Insert(m); err != nil {
			ok = false
			g.rep.Errorf(p.Pos, "%v", err)
			continue
		}
		proc.Args = append(proc.Args, ir.Arg{Name: p.Decl.Name, Width: ctypes.BitWidth(pt)})
	}

	var bodyErr error
	if ok {
		bodyErr = g.parser.Block(g)
	}
	pop()

	if bodyErr == nil {
		bodyErr = g.checkLabels(d.Pos)
	}

	g.proc = nil
	g.blk = nil
	g.retType = nil
	g.labels = nil
	g.loops = nil
	g.breaks = nil
	g.sw = nil

	if bodyErr != nil || !ok {
		return bodyErr
	}

	if !endsInReturn(proc.Body) {
		if _, void := ft.Return.(ctypes.Tvoid); !void {
			g.rep.Warnf(d.Pos, "control reaches end of non-void function '%s'", decl.Name)
		}
		proc.Body.Emit(ir.Instr{Op: ir.Ret})
	}
	g.mod.Procs = append(g.mod.Procs, proc)
	return nil
}

func isVoidParam(p cabs.ParamDecl) bool {
	return len(p.Specs) == 1 && p.Specs[0].Kind == cabs.SpecVoid && len(p.Decl.Mods) == 0
}

func endsInReturn(b *ir.Block) bool {
	if b.Len() == 0 {
		return false
	}
	ins, ok := b.Items[b.Len()-1].(ir.Instr)
	return ok && (ins.Op == ir.Ret || ins.Op == ir.RetV)
}

// checkLabels validates the function's goto label table at the closing
// brace.
func (g *Generator) checkLabels(pos diag.Pos) error {
	var err error
	for name, l := range g.labels {
		if l.used && !l.defined {
			err = g.rep.Errorf(l.pos, "label '%s' used but not defined", name)
		}
		if l.defined && !l.used {
			g.rep.Warnf(l.pos, "label '%s' defined but not used", name)
		}
	}
	return err
}

// Stmt lowers one simple statement.
func (g *Generator) Stmt(s cabs.Stmt) error {
	switch n := s.(type) {
	case cabs.ExprStmt:
		if n.Expr == nil {
			return nil
		}
		_, err := g.expr(n.Expr)
		return err

	case cabs.Return:
		return g.lowerReturn(n)

	case cabs.Break:
		if g.breaks == nil {
			return g.rep.Errorf(n.Pos, "'break' outside a loop or switch")
		}
		g.emit(jumpInstr(g.breaks.target))
		return nil

	case cabs.Continue:
		if g.loops == nil {
			return g.rep.Errorf(n.Pos, "'continue' outside a loop")
		}
		g.emit(jumpInstr(g.loops.cont))
		return nil

	case cabs.Goto:
		l := g.gotoEntry(n.Label, n.Pos)
		l.used = true
		g.emit(jumpInstr(l.irLabel))
		return nil

	case cabs.Case:
		return g.lowerCase(n)

	case cabs.Default:
		return g.lowerDefault(n)

	case cabs.Labeled:
		if err := g.Label(n.Pos, n.Name); err != nil {
			return err
		}
		return g.Stmt(n.Stmt)

	case cabs.DeclStmt:
		return g.localDecl(n.Decl)
	}
	return g.rep.Errorf(s.Span(), "unsupported statement")
}

func (g *Generator) lowerReturn(n cabs.Return) error {
	_, void := g.retType.(ctypes.Tvoid)
	if n.Expr == nil {
		if !void {
			g.rep.Warnf(n.Pos, "return without a value in non-void function")
		}
		g.emit(ir.Instr{Op: ir.Ret})
		return nil
	}
	if void {
		g.rep.Warnf(n.Pos, "return with a value in void function")
		if _, err := g.expr(n.Expr); err != nil {
			return err
		}
		g.emit(ir.Instr{Op: ir.Ret})
		return nil
	}
	v, err := g.exprRval(n.Expr)
	if err != nil {
		return err
	}
	if err := g.convert(v, g.retType, convImplicit, n.Pos); err != nil {
		return err
	}
	g.emit(ir.Instr{Op: ir.RetV, Width: ctypes.BitWidth(g.retType), A: v.op})
	return nil
}

// gotoEntry finds or creates the forward-patchable entry for a label
// name.
func (g *Generator) gotoEntry(name string, pos diag.Pos) *gotoLabel {
	if l, ok := g.labels[name]; ok {
		return l
	}
	l := &gotoLabel{irLabel: g.newLabel(), pos: pos}
	g.labels[name] = l
	return l
}

// Label defines a named goto label at the current point.
func (g *Generator) Label(pos diag.Pos, name string) error {
	if g.proc == nil {
		return g.rep.Errorf(pos, "label outside a function")
	}
	l := g.gotoEntry(name, pos)
	if l.defined {
		return g.rep.Errorf(pos, "duplicate label '%s'", name)
	}
	l.defined = true
	l.pos = pos
	g.label(l.irLabel)
	return nil
}

// If lowers a conditional; the then arm and any else continuation are
// pulled from the parser, one clause at a time.
func (g *Generator) If(pos diag.Pos, cond cabs.Expr) error {
	return g.ifChain(pos, cond, "")
}

// ifChain handles one link of an if/else-if cascade. All links share
// one end label, created when the first else clause appears.
func (g *Generator) ifChain(pos diag.Pos, cond cabs.Expr, end string) error {
	c, err := g.condValue(cond)
	if err != nil {
		return err
	}
	elseL := g.newLabel()
	g.emit(jumpZInstr(ctypes.BitWidth(c.typ), c.op, elseL))

	if err := g.parser.Stmt(g); err != nil {
		return err
	}
	ec, err := g.parser.Else(g)
	if err != nil {
		return err
	}

	switch ec.Kind {
	case ElseNone:
		g.label(elseL)
		if end != "" {
			g.label(end)
		}
		return nil

	case ElseIf:
		if end == "" {
			end = g.newLabel()
		}
		g.emit(jumpInstr(end))
		g.label(elseL)
		return g.ifChain(ec.Pos, ec.Cond, end)

	default: // ElseBlock
		if end == "" {
			end = g.newLabel()
		}
		g.emit(jumpInstr(end))
		g.label(elseL)
		if err := g.parser.Stmt(g); err != nil {
			return err
		}
		g.label(end)
		return nil
	}
}

// While lowers a pre-test loop; the body is pulled from the parser.
func (g *Generator) While(pos diag.Pos, cond cabs.Expr) error {
	top := g.newLabel()
	end := g.newLabel()

	g.label(top)
	c, err := g.condValue(cond)
	if err != nil {
		return err
	}
	if cv, ok := c.constInt(); ok && cv == 0 {
		g.rep.Warnf(pos, "loop condition is always false")
	}
	g.emit(jumpZInstr(ctypes.BitWidth(c.typ), c.op, end))

	pop := g.pushLoop(top, end)
	err = g.parser.Stmt(g)
	pop()
	if err != nil {
		return err
	}
	g.emit(jumpInstr(top))
	g.label(end)
	return nil
}

// Do lowers a post-test loop. The condition closes the statement, so it
// is pulled only after the body has been generated.
func (g *Generator) Do(pos diag.Pos) error {
	top := g.newLabel()
	cont := g.newLabel()
	end := g.newLabel()

	g.label(top)
	pop := g.pushLoop(cont, end)
	err := g.parser.Stmt(g)
	pop()
	if err != nil {
		return err
	}

	g.label(cont)
	cond, err := g.parser.DoCond()
	if err != nil {
		return err
	}
	c, err := g.condValue(cond)
	if err != nil {
		return err
	}
	g.emit(jumpNZInstr(ctypes.BitWidth(c.typ), c.op, top))
	g.label(end)
	return nil
}

// For lowers a for loop. continue targets the step clause.
func (g *Generator) For(pos diag.Pos, init, cond, step cabs.Expr) error {
	if init != nil {
		if _, err := g.expr(init); err != nil {
			return err
		}
	}
	top := g.newLabel()
	cont := g.newLabel()
	end := g.newLabel()

	g.label(top)
	if cond != nil {
		c, err := g.condValue(cond)
		if err != nil {
			return err
		}
		g.emit(jumpZInstr(ctypes.BitWidth(c.typ), c.op, end))
	}

	pop := g.pushLoop(cont, end)
	err := g.parser.Stmt(g)
	pop()
	if err != nil {
		return err
	}

	g.label(cont)
	if step != nil {
		if _, err := g.expr(step); err != nil {
			return err
		}
	}
	g.emit(jumpInstr(top))
	g.label(end)
	return nil
}

// Block opens a braced block in statement position: a fresh scope, then
// the items are pulled from the parser.
func (g *Generator) Block(pos diag.Pos) error {
	pop := g.pushScope("block")
	defer pop()
	return g.parser.Block(g)
}

// lowerCase registers a case label with the innermost switch.
func (g *Generator) lowerCase(n cabs.Case) error {
	if g.sw == nil {
		return g.rep.Errorf(n.Pos, "case label outside a switch")
	}
	c, err := g.constExpr(n.Expr)
	if err != nil {
		return err
	}
	width := ctypes.BitWidth(g.sw.typ)
	signed := ctypes.IsSigned(g.sw.typ)
	v := truncConst(c, width, signed)
	if v != c {
		g.rep.Warnf(n.Pos, "case value %d changes to %d when converted to the switch type", c, v)
	}
	for _, e := range g.sw.cases {
		if e.value == v {
			return g.rep.Errorf(n.Pos, "duplicate case value %d", v)
		}
	}
	l := g.newLabel()
	g.sw.cases = append(g.sw.cases, caseEntry{value: v, label: l, pos: n.Pos})
	g.label(l)
	return nil
}

// lowerDefault registers the default label with the innermost switch.
func (g *Generator) lowerDefault(n cabs.Default) error {
	if g.sw == nil {
		return g.rep.Errorf(n.Pos, "default label outside a switch")
	}
	if g.sw.defLabel != "" {
		return g.rep.Errorf(n.Pos, "duplicate default label")
	}
	g.sw.defLabel = g.newLabel()
	g.label(g.sw.defLabel)
	return nil
}
