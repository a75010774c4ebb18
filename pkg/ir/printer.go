// IR text dumping. The format is a debugging aid, not the backend
// interchange format; the backend consumes the in-memory structures.
package ir

import (
	"fmt"
	"io"
)

// Printer writes a readable rendition of the IR.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintModule prints a whole module.
func (p *Printer) PrintModule(m *Module) {
	for _, r := range m.Records {
		p.printRecord(r)
	}
	for _, e := range m.Externs {
		p.printExtern(e)
	}
	for _, g := range m.Globals {
		p.printGlobal(g)
	}
	for i, proc := range m.Procs {
		if i > 0 || len(m.Globals) > 0 || len(m.Externs) > 0 {
			fmt.Fprintln(p.w)
		}
		p.PrintProc(proc)
	}
}

func (p *Printer) printRecord(r *RecordDecl) {
	kind := "struct"
	if r.Union {
		kind = "union"
	}
	fmt.Fprintf(p.w, "%s %s {", kind, r.Name)
	for i, f := range r.Fields {
		if i > 0 {
			fmt.Fprint(p.w, ", ")
		}
		fmt.Fprintf(p.w, "%s@%d:%d", f.Name, f.Offset, f.Size)
	}
	fmt.Fprintln(p.w, "}")
}

func (p *Printer) printExtern(e *Extern) {
	if e.Kind == SymVar {
		fmt.Fprintf(p.w, "extern var %s[%d]\n", e.Name, e.Size)
		return
	}
	fmt.Fprintf(p.w, "extern func %s(", e.Name)
	for i, w := range e.ArgWidths {
		if i > 0 {
			fmt.Fprint(p.w, ", ")
		}
		fmt.Fprintf(p.w, "i%d", w)
	}
	if e.Variadic {
		if len(e.ArgWidths) > 0 {
			fmt.Fprint(p.w, ", ")
		}
		fmt.Fprint(p.w, "...")
	}
	fmt.Fprint(p.w, ")")
	if e.RetWidth > 0 {
		fmt.Fprintf(p.w, " i%d", e.RetWidth)
	}
	fmt.Fprintln(p.w)
}

func (p *Printer) printGlobal(g *Global) {
	fmt.Fprintf(p.w, "var %s[%d]", g.Name, g.Size)
	if len(g.Data) > 0 {
		fmt.Fprint(p.w, " = {")
		for i, b := range g.Data {
			if i > 0 {
				fmt.Fprint(p.w, " ")
			}
			fmt.Fprintf(p.w, "%02x", b)
		}
		fmt.Fprint(p.w, "}")
	}
	for _, r := range g.Relocs {
		fmt.Fprintf(p.w, " reloc(%d: &%s%+d, i%d)", r.Offset, r.Sym, r.Addend, r.Width)
	}
	fmt.Fprintln(p.w)
}

// PrintProc prints one procedure.
func (p *Printer) PrintProc(proc *Proc) {
	fmt.Fprintf(p.w, "proc %s(", proc.Name)
	for i, a := range proc.Args {
		if i > 0 {
			fmt.Fprint(p.w, ", ")
		}
		fmt.Fprintf(p.w, "%s: i%d", a.Name, a.Width)
	}
	fmt.Fprint(p.w, ")")
	if proc.RetWidth > 0 {
		fmt.Fprintf(p.w, " i%d", proc.RetWidth)
	}
	fmt.Fprintln(p.w, " {")
	for _, l := range proc.Locals {
		fmt.Fprintf(p.w, "  local %s[%d]\n", l.Name, l.Size)
	}
	for _, item := range proc.Body.Items {
		switch it := item.(type) {
		case LabelDef:
			fmt.Fprintf(p.w, "%s:\n", it.Name)
		case Instr:
			fmt.Fprint(p.w, "  ")
			p.printInstr(it)
			fmt.Fprintln(p.w)
		}
	}
	fmt.Fprintln(p.w, "}")
}

func (p *Printer) printInstr(ins Instr) {
	fmt.Fprint(p.w, ins.Op)
	if ins.Width > 0 {
		fmt.Fprintf(p.w, ".%d", ins.Width)
	}
	if ins.Width2 > 0 {
		fmt.Fprintf(p.w, ">%d", ins.Width2)
	}
	if ins.Dest != "" {
		fmt.Fprintf(p.w, " %s =", ins.Dest)
	}
	if ins.A != nil {
		fmt.Fprintf(p.w, " %s", ins.A)
	}
	if ins.B != nil {
		fmt.Fprintf(p.w, ", %s", ins.B)
	}
	if ins.Target != "" {
		fmt.Fprintf(p.w, " -> %s", ins.Target)
	}
	if ins.Field != "" {
		fmt.Fprintf(p.w, " .%s", ins.Field)
	}
	if ins.Type != nil {
		fmt.Fprintf(p.w, " [%s]", ins.Type)
	}
}
