// Switch lowering. The body is generated in source order with the
// dispatch chain placed after it: the header jumps forward to the
// chain, the chain jumps back to the case labels recorded while the
// body was generated. One pass, no patching.
package cgen

import (
	"github.com/c16lang/c16cc/pkg/cabs"
	"github.com/c16lang/c16cc/pkg/ctypes"
	"github.com/c16lang/c16cc/pkg/diag"
	"github.com/c16lang/c16cc/pkg/ir"
)

// Switch lowers a switch statement; the body block is pulled from the
// parser while the frame collects case labels.
func (g *Generator) Switch(pos diag.Pos, expr cabs.Expr) error {
	v, err := g.exprRval(expr)
	if err != nil {
		return err
	}
	if !ctypes.IsIntegral(v.typ) {
		return g.rep.Errorf(pos, "switch expression must have integral type, got %s", v.typ)
	}

	// Pin the controlling value in its own register: the body may
	// clobber expression temporaries before the dispatch chain runs.
	keep := g.newVR()
	width := ctypes.BitWidth(v.typ)
	g.emit(movInstr(width, keep, v.op))

	dispatch := g.newLabel()
	end := g.newLabel()
	f := &switchFrame{keep: varOp(keep), typ: ctypes.Clone(v.typ), endLabel: end, pos: pos}

	g.emit(jumpInstr(dispatch))

	popScope := g.pushScope("block")
	popSwitch := g.pushSwitch(f)
	bodyErr := g.parser.Block(g)
	popSwitch()
	popScope()
	if bodyErr != nil {
		return bodyErr
	}

	// Falling off the last case skips the dispatch chain.
	g.emit(jumpInstr(end))
	g.label(dispatch)
	for _, c := range f.cases {
		t := g.newVR()
		g.emit(binInstr(ir.Eq, width, t, f.keep, immOp(c.value)))
		g.emit(jumpNZInstr(width, varOp(t), c.label))
	}
	if f.defLabel != "" {
		g.emit(jumpInstr(f.defLabel))
	} else {
		g.emit(jumpInstr(end))
	}
	g.label(end)

	if f.defLabel == "" {
		g.lintExhaustive(f)
	}
	return nil
}

// lintExhaustive warns about enumerators a default-less switch over an
// enum never handles.
func (g *Generator) lintExhaustive(f *switchFrame) {
	et, ok := f.typ.(ctypes.Tenum)
	if !ok {
		return
	}
	covered := make(map[int64]bool, len(f.cases))
	for _, c := range f.cases {
		covered[c.value] = true
	}
	for _, el := range et.Def.Elems {
		if !covered[el.Value] {
			g.rep.Warnf(f.pos, "enumeration value '%s' not handled in switch", el.Name)
		}
	}
}
