package parser

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/c16lang/c16cc/pkg/cabs"
	"github.com/c16lang/c16cc/pkg/cgen"
	"github.com/c16lang/c16cc/pkg/diag"
)

// recorder is a Handler that logs the pull order it observes, pulling
// sub-constructs back out the way the generator does.
type recorder struct {
	p      *Replay
	events []string
}

func (r *recorder) log(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) GlobalDecl(d *cabs.Declaration) error {
	r.log("decl")
	return nil
}

func (r *recorder) FunDef(d *cabs.Declaration) error {
	r.log("fundef %s", d.Decls[0].Decl.Name)
	return r.p.Block(r)
}

func (r *recorder) Stmt(s cabs.Stmt) error {
	r.log("stmt %s", reflect.TypeOf(s).Name())
	return nil
}

func (r *recorder) If(pos diag.Pos, cond cabs.Expr) error {
	r.log("if")
	if err := r.p.Stmt(r); err != nil {
		return err
	}
	for {
		clause, err := r.p.Else(r)
		if err != nil {
			return err
		}
		switch clause.Kind {
		case cgen.ElseNone:
			r.log("no-else")
			return nil
		case cgen.ElseIf:
			r.log("else-if")
			if err := r.p.Stmt(r); err != nil {
				return err
			}
		case cgen.ElseBlock:
			r.log("else")
			return r.p.Stmt(r)
		}
	}
}

func (r *recorder) While(pos diag.Pos, cond cabs.Expr) error {
	r.log("while")
	return r.p.Stmt(r)
}

func (r *recorder) Do(pos diag.Pos) error {
	r.log("do")
	if err := r.p.Stmt(r); err != nil {
		return err
	}
	if _, err := r.p.DoCond(); err != nil {
		return err
	}
	r.log("do-cond")
	return nil
}

func (r *recorder) For(pos diag.Pos, init, cond, step cabs.Expr) error {
	r.log("for")
	return r.p.Stmt(r)
}

func (r *recorder) Switch(pos diag.Pos, expr cabs.Expr) error {
	r.log("switch")
	return r.p.Block(r)
}

func (r *recorder) Block(pos diag.Pos) error {
	r.log("block")
	return r.p.Block(r)
}

func (r *recorder) Label(pos diag.Pos, name string) error {
	r.log("label %s", name)
	return nil
}

func (r *recorder) IdentIsType(name string) bool { return false }

func record(t *testing.T, src string) []string {
	t.Helper()
	prog, err := cabs.NewDecoder("test.yaml").DecodeProgram([]byte(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	p := New(prog)
	r := &recorder{p: p}
	if err := p.Top(r); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(p.pending) != 0 {
		t.Fatalf("%d frames left pending after Top", len(p.pending))
	}
	return r.events
}

func TestReplayOrder(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected []string
	}{
		{
			"globals then fundef",
			`
items:
  - kind: decl
    type: {spec: int}
    name: x
  - kind: fundef
    type: {spec: void}
    name: f
    body:
      - kind: return
`,
			[]string{"decl", "fundef f", "stmt Return"},
		},
		{
			"dangling else binds to the inner if",
			`
items:
  - kind: fundef
    type: {spec: void}
    name: f
    body:
      - kind: if
        cond: {kind: int, value: 1}
        then:
          - kind: if
            cond: {kind: int, value: 2}
            then:
              - kind: return
            else:
              - kind: break
`,
			[]string{
				"fundef f",
				"if",
				"if", "stmt Return", "else", "stmt Break",
				"no-else",
			},
		},
		{
			"else-if chain",
			`
items:
  - kind: fundef
    type: {spec: void}
    name: f
    body:
      - kind: if
        cond: {kind: int, value: 1}
        then:
          - kind: return
        else:
          - kind: if
            cond: {kind: int, value: 2}
            then:
              - kind: break
`,
			[]string{
				"fundef f",
				"if", "stmt Return",
				"else-if", "stmt Break",
				"no-else",
			},
		},
		{
			"do condition arrives after the body",
			`
items:
  - kind: fundef
    type: {spec: void}
    name: f
    body:
      - kind: do
        cond: {kind: int, value: 1}
        body:
          - kind: continue
`,
			[]string{"fundef f", "do", "stmt Continue", "do-cond"},
		},
		{
			"switch body is a block",
			`
items:
  - kind: fundef
    type: {spec: void}
    name: f
    body:
      - kind: switch
        expr: {kind: int, value: 1}
        body:
          - {kind: case, value: 1}
          - kind: break
`,
			[]string{"fundef f", "switch", "stmt Case", "stmt Break"},
		},
		{
			"nested blocks and labels",
			`
items:
  - kind: fundef
    type: {spec: void}
    name: f
    body:
      - kind: block
        body:
          - kind: label
            name: top
            body:
              - kind: return
`,
			[]string{"fundef f", "block", "label top", "stmt Return"},
		},
		{
			"while wraps a single statement body",
			`
items:
  - kind: fundef
    type: {spec: void}
    name: f
    body:
      - kind: while
        cond: {kind: int, value: 1}
        body:
          - kind: break
`,
			[]string{"fundef f", "while", "stmt Break"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := record(t, tt.src)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("pull order = %#v, want %#v", got, tt.expected)
			}
		})
	}
}

func TestReplayMismatchedPull(t *testing.T) {
	p := New(&cabs.Program{})
	if err := p.Stmt(&recorder{p: p}); err == nil {
		t.Errorf("pulling with nothing pending should fail")
	}
	p.push(frame{kind: frameBlock})
	if _, err := p.pop(frameStmt); err == nil {
		t.Errorf("popping the wrong frame kind should fail")
	}
}
