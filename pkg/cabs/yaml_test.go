package cabs

import "testing"

func decode(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := NewDecoder("test.yaml").DecodeProgram([]byte(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return prog
}

func TestDecodeFundef(t *testing.T) {
	prog := decode(t, `
items:
  - kind: fundef
    type: {spec: int}
    name: f
    line: 3
    params: [{type: {spec: int}, name: x}]
    body:
      - kind: return
        expr: {kind: binop, op: "+", left: {kind: ident, name: x}, right: {kind: int, value: 1}}
`)
	if len(prog.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(prog.Items))
	}
	ext := prog.Items[0]
	if ext.Body == nil {
		t.Fatalf("fundef lost its body")
	}
	decl := ext.Decl.Decls[0].Decl
	if decl.Name != "f" {
		t.Errorf("name = %q, want %q", decl.Name, "f")
	}
	if len(decl.Mods) != 1 || decl.Mods[0].Kind != ModFunc {
		t.Fatalf("mods = %#v, want a single function modifier", decl.Mods)
	}
	params := decl.Mods[0].Params
	if len(params) != 1 || params[0].Decl.Name != "x" {
		t.Errorf("params = %#v, want one named x", params)
	}
	ret, ok := ext.Body.Items[0].(Return)
	if !ok {
		t.Fatalf("body starts with %#v, want a return", ext.Body.Items[0])
	}
	bin, ok := ret.Expr.(Binary)
	if !ok || bin.Op != BAdd {
		t.Errorf("return expr = %#v, want x + 1", ret.Expr)
	}
	if ext.Pos.Line != 3 {
		t.Errorf("position line = %d, want 3", ext.Pos.Line)
	}
}

func TestDecodeTypeSpecs(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, d *Declaration)
	}{
		{
			"pointer and array derivations",
			`
items:
  - kind: decl
    type: {spec: int, pointer: 1, array: [4]}
    name: a
`,
			func(t *testing.T, d *Declaration) {
				mods := d.Decls[0].Decl.Mods
				if len(mods) != 2 {
					t.Fatalf("mods = %#v, want array then pointer", mods)
				}
				if mods[0].Kind != ModArray || mods[1].Kind != ModPointer {
					t.Errorf("mod kinds = %v %v, want array, pointer", mods[0].Kind, mods[1].Kind)
				}
				if lit, ok := mods[0].Size.(IntLit); !ok || lit.Value != 4 {
					t.Errorf("array size = %#v, want 4", mods[0].Size)
				}
			},
		},
		{
			"multi-dimension array keeps source order",
			`
items:
  - kind: decl
    type: {spec: int, array: [2, 3]}
    name: a
`,
			func(t *testing.T, d *Declaration) {
				mods := d.Decls[0].Decl.Mods
				if len(mods) != 2 {
					t.Fatalf("mods = %#v, want two array mods", mods)
				}
				outer, ok1 := mods[0].Size.(IntLit)
				inner, ok2 := mods[1].Size.(IntLit)
				if !ok1 || !ok2 || outer.Value != 2 || inner.Value != 3 {
					t.Errorf("dims = %#v %#v, want outermost 2 then 3", mods[0].Size, mods[1].Size)
				}
			},
		},
		{
			"array extent as an expression",
			`
items:
  - kind: decl
    type: {spec: int, array-expr: [{kind: ident, name: NCOLOR}]}
    name: a
`,
			func(t *testing.T, d *Declaration) {
				mods := d.Decls[0].Decl.Mods
				if len(mods) != 1 || mods[0].Kind != ModArray {
					t.Fatalf("mods = %#v, want one array mod", mods)
				}
				if id, ok := mods[0].Size.(Ident); !ok || id.Name != "NCOLOR" {
					t.Errorf("extent = %#v, want the identifier NCOLOR", mods[0].Size)
				}
			},
		},
		{
			"unknown word becomes a typedef name",
			`
items:
  - kind: decl
    type: {spec: size_t}
    name: n
`,
			func(t *testing.T, d *Declaration) {
				if len(d.Specs) != 1 || d.Specs[0].Kind != SpecName || d.Specs[0].Name != "size_t" {
					t.Errorf("specs = %#v, want one typedef-name spec", d.Specs)
				}
			},
		},
		{
			"storage class prepends",
			`
items:
  - kind: decl
    type: {spec: int}
    name: n
    storage: static
`,
			func(t *testing.T, d *Declaration) {
				if d.Specs[0].Kind != SpecStatic {
					t.Errorf("first spec = %v, want static", d.Specs[0].Kind)
				}
			},
		},
		{
			"struct reference with tag",
			`
items:
  - kind: decl
    type: {spec: struct point, pointer: 1}
    name: p
`,
			func(t *testing.T, d *Declaration) {
				s := d.Specs[0]
				if s.Kind != SpecStruct || s.Rec == nil || s.Rec.Tag != "point" || s.Rec.HasBody {
					t.Errorf("specs = %#v, want a bodyless struct point reference", d.Specs)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := decode(t, tt.src)
			tt.check(t, prog.Items[0].Decl)
		})
	}
}

func TestDecodeInitList(t *testing.T) {
	prog := decode(t, `
items:
  - kind: decl
    type: {spec: int, array: [4]}
    name: a
    init:
      kind: init-list
      items:
        - {kind: int, value: 1}
        - {at: {kind: int, value: 2}, expr: {kind: int, value: 9}}
        - {field: x, expr: {kind: int, value: 5}}
`)
	init := prog.Items[0].Decl.Decls[0].Init
	if init == nil || !init.IsList || len(init.List) != 3 {
		t.Fatalf("init = %#v, want a three-item list", init)
	}
	if len(init.List[0].Designators) != 0 {
		t.Errorf("first item should have no designators")
	}
	at := init.List[1].Designators
	if len(at) != 1 || at[0].Index == nil {
		t.Fatalf("second item designators = %#v, want one index", at)
	}
	if lit, ok := at[0].Index.(IntLit); !ok || lit.Value != 2 {
		t.Errorf("index designator = %#v, want 2", at[0].Index)
	}
	fd := init.List[2].Designators
	if len(fd) != 1 || fd[0].Field != "x" {
		t.Errorf("third item designators = %#v, want field x", fd)
	}
}

func TestDecodeStatements(t *testing.T) {
	prog := decode(t, `
items:
  - kind: fundef
    type: {spec: void}
    name: f
    body:
      - kind: do
        cond: {kind: int, value: 1}
        body:
          - kind: break
      - kind: for
        init: {kind: assign, left: {kind: ident, name: i}, right: {kind: int, value: 0}}
        cond: {kind: binop, op: "<", left: {kind: ident, name: i}, right: {kind: int, value: 9}}
        step: {kind: unop, op: "++", arg: {kind: ident, name: i}}
        body:
          - kind: continue
      - kind: goto
        name: done
      - kind: label
        name: done
        body:
          - kind: return
`)
	items := prog.Items[0].Body.Items
	if len(items) != 4 {
		t.Fatalf("got %d statements, want 4", len(items))
	}
	if do, ok := items[0].(Do); !ok || do.Cond == nil {
		t.Errorf("items[0] = %#v, want a do statement", items[0])
	}
	fr, ok := items[1].(For)
	if !ok || fr.Init == nil || fr.Cond == nil || fr.Step == nil {
		t.Fatalf("items[1] = %#v, want a three-clause for", items[1])
	}
	if g, ok := items[2].(Goto); !ok || g.Label != "done" {
		t.Errorf("items[2] = %#v, want goto done", items[2])
	}
	lb, ok := items[3].(Labeled)
	if !ok || lb.Name != "done" {
		t.Fatalf("items[3] = %#v, want label done", items[3])
	}
	if _, ok := lb.Stmt.(Return); !ok {
		t.Errorf("labeled statement = %#v, want return", lb.Stmt)
	}
}

func TestDecodeIntSuffixes(t *testing.T) {
	tests := []struct {
		suffix   string
		unsigned bool
		long     bool
		longLong bool
	}{
		{"", false, false, false},
		{"u", true, false, false},
		{"l", false, true, false},
		{"ul", true, true, false},
		{"ll", false, false, true},
		{"ull", true, false, true},
	}
	for _, tt := range tests {
		t.Run("suffix "+tt.suffix, func(t *testing.T) {
			src := `
items:
  - kind: decl
    type: {spec: long long}
    name: n
    init: {kind: int, value: 1, suffix: ` + tt.suffix + `}
`
			if tt.suffix == "" {
				src = `
items:
  - kind: decl
    type: {spec: long long}
    name: n
    init: {kind: int, value: 1}
`
			}
			prog := decode(t, src)
			lit := prog.Items[0].Decl.Decls[0].Init.Expr.(IntLit)
			if lit.Unsigned != tt.unsigned || lit.Long != tt.long || lit.LongLong != tt.longLong {
				t.Errorf("suffix %q decoded as %#v", tt.suffix, lit)
			}
		})
	}
}

func TestDecodeUnknownKinds(t *testing.T) {
	if _, err := NewDecoder("t").DecodeProgram([]byte("items: [{kind: mystery}]")); err == nil {
		t.Errorf("unknown top-level kind should fail")
	}
	if _, err := NewDecoder("t").DecodeProgram([]byte(`
items:
  - kind: fundef
    type: {spec: void}
    name: f
    body:
      - kind: expr
        expr: {kind: binop, op: "@", left: {kind: int, value: 1}, right: {kind: int, value: 2}}
`)); err == nil {
		t.Errorf("unknown operator should fail")
	}
}
