// Package parser adapts a pre-built syntax tree to the pull protocol
// the generator drives. Each composite construct is delivered as a
// header callback; its sub-constructs are parked on a pending stack
// and handed out one at a time as the handler pulls them, so the
// interleaving matches a single-pass parse.
package parser

import (
	"fmt"

	"github.com/c16lang/c16cc/pkg/cabs"
	"github.com/c16lang/c16cc/pkg/cgen"
	"github.com/c16lang/c16cc/pkg/diag"
)

// Replay walks one translation unit.
type Replay struct {
	prog    *cabs.Program
	pending []frame
}

type frameKind int

const (
	frameStmt frameKind = iota
	frameBlock
	frameElse
	frameDoCond
)

// frame is one parked sub-construct.
type frame struct {
	kind frameKind
	stmt cabs.Stmt   // frameStmt
	blk  *cabs.Block // frameBlock
	els  cabs.Stmt   // frameElse: nil when the if has no else
	cond cabs.Expr   // frameDoCond
	pos  diag.Pos
}

// New creates a replay parser over prog.
func New(prog *cabs.Program) *Replay {
	return &Replay{prog: prog}
}

func (p *Replay) push(f frame) {
	p.pending = append(p.pending, f)
}

func (p *Replay) pop(kind frameKind) (frame, error) {
	if len(p.pending) == 0 {
		return frame{}, fmt.Errorf("parser: nothing pending")
	}
	f := p.pending[len(p.pending)-1]
	if f.kind != kind {
		return frame{}, fmt.Errorf("parser: pending construct mismatch")
	}
	p.pending = p.pending[:len(p.pending)-1]
	return f, nil
}

// Top walks the translation unit's externals.
func (p *Replay) Top(h cgen.Handler) error {
	for _, ext := range p.prog.Items {
		if ext.Body != nil {
			p.push(frame{kind: frameBlock, blk: ext.Body, pos: ext.Pos})
			if err := h.FunDef(ext.Decl); err != nil {
				return err
			}
			continue
		}
		if err := h.GlobalDecl(ext.Decl); err != nil {
			return err
		}
	}
	return nil
}

// Stmt delivers the pending statement.
func (p *Replay) Stmt(h cgen.Handler) error {
	f, err := p.pop(frameStmt)
	if err != nil {
		return err
	}
	return p.dispatch(h, f.stmt)
}

// Block delivers the items of the pending braced block, in order.
func (p *Replay) Block(h cgen.Handler) error {
	f, err := p.pop(frameBlock)
	if err != nil {
		return err
	}
	for _, item := range f.blk.Items {
		if err := p.dispatch(h, item); err != nil {
			return err
		}
	}
	return nil
}

// Else delivers the else continuation of the innermost pending if.
func (p *Replay) Else(h cgen.Handler) (cgen.ElseClause, error) {
	f, err := p.pop(frameElse)
	if err != nil {
		return cgen.ElseClause{}, err
	}
	switch e := f.els.(type) {
	case nil:
		return cgen.ElseClause{Kind: cgen.ElseNone}, nil
	case cabs.If:
		p.push(frame{kind: frameElse, els: e.Else, pos: e.Pos})
		p.push(frame{kind: frameStmt, stmt: e.Then, pos: e.Pos})
		return cgen.ElseClause{Kind: cgen.ElseIf, Cond: e.Cond, Pos: e.Pos}, nil
	default:
		p.push(frame{kind: frameStmt, stmt: f.els, pos: f.pos})
		return cgen.ElseClause{Kind: cgen.ElseBlock, Pos: f.pos}, nil
	}
}

// DoCond delivers the condition closing the innermost pending do.
func (p *Replay) DoCond() (cabs.Expr, error) {
	f, err := p.pop(frameDoCond)
	if err != nil {
		return nil, err
	}
	return f.cond, nil
}

// dispatch routes one statement: composites become header callbacks
// with their parts parked, everything else goes through Stmt.
func (p *Replay) dispatch(h cgen.Handler, s cabs.Stmt) error {
	switch n := s.(type) {
	case *cabs.Block:
		p.push(frame{kind: frameBlock, blk: n, pos: n.Pos})
		return h.Block(n.Pos)

	case cabs.If:
		p.push(frame{kind: frameElse, els: n.Else, pos: n.Pos})
		p.push(frame{kind: frameStmt, stmt: n.Then, pos: n.Pos})
		return h.If(n.Pos, n.Cond)

	case cabs.While:
		p.push(frame{kind: frameStmt, stmt: n.Body, pos: n.Pos})
		return h.While(n.Pos, n.Cond)

	case cabs.Do:
		p.push(frame{kind: frameDoCond, cond: n.Cond, pos: n.Pos})
		p.push(frame{kind: frameStmt, stmt: n.Body, pos: n.Pos})
		return h.Do(n.Pos)

	case cabs.For:
		p.push(frame{kind: frameStmt, stmt: n.Body, pos: n.Pos})
		return h.For(n.Pos, n.Init, n.Cond, n.Step)

	case cabs.Switch:
		p.push(frame{kind: frameBlock, blk: n.Body, pos: n.Pos})
		return h.Switch(n.Pos, n.Expr)

	case cabs.Labeled:
		if err := h.Label(n.Pos, n.Name); err != nil {
			return err
		}
		return p.dispatch(h, n.Stmt)

	default:
		return h.Stmt(s)
	}
}
