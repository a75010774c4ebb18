// YAML decoding of AST programs. The node schema is kind-discriminated,
// one mapping per AST node, so programs and test fixtures read naturally:
//
//	items:
//	  - kind: fundef
//	    type: {spec: int}
//	    name: f
//	    params: [{type: {spec: int}, name: x}]
//	    body:
//	      - kind: return
//	        expr: {kind: binop, op: "+", left: {kind: ident, name: x}, right: {kind: int, value: 1}}
package cabs

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/c16lang/c16cc/pkg/diag"
)

// Node is the YAML representation of any AST node, discriminated by
// Kind. Only the fields relevant to a kind are set.
type Node struct {
	Kind  string `yaml:"kind"`
	Name  string `yaml:"name,omitempty"`
	Value *int64 `yaml:"value,omitempty"`
	Str   string `yaml:"str,omitempty"`
	Op    string `yaml:"op,omitempty"`
	Wide  bool   `yaml:"wide,omitempty"`
	// Integer literal suffix: "", "u", "l", "ul", "ll", "ull".
	Suffix string `yaml:"suffix,omitempty"`

	Type *TypeSpec `yaml:"type,omitempty"`

	Left  *Node  `yaml:"left,omitempty"`
	Right *Node  `yaml:"right,omitempty"`
	Cond  *Node  `yaml:"cond,omitempty"`
	Then  []Node `yaml:"then,omitempty"`
	Else  []Node `yaml:"else,omitempty"`
	Arg   *Node  `yaml:"arg,omitempty"`
	Base  *Node  `yaml:"base,omitempty"`
	Index *Node  `yaml:"index,omitempty"`
	Fn    *Node  `yaml:"fn,omitempty"`
	Expr  *Node  `yaml:"expr,omitempty"`
	Init  *Node  `yaml:"init,omitempty"`
	Step  *Node  `yaml:"step,omitempty"`
	Stmt  *Node  `yaml:"stmt,omitempty"`

	Args  []Node `yaml:"args,omitempty"`
	Body  []Node `yaml:"body,omitempty"`
	Items []Node `yaml:"items,omitempty"`

	Field string `yaml:"field,omitempty"`
	At    *Node  `yaml:"at,omitempty"`
	Arrow bool   `yaml:"arrow,omitempty"`

	Params   []ParamSpec `yaml:"params,omitempty"`
	Variadic bool        `yaml:"variadic,omitempty"`
	Storage  string      `yaml:"storage,omitempty"`
	Union    bool        `yaml:"union,omitempty"`
	Tag      string      `yaml:"tag,omitempty"`

	Line int `yaml:"line,omitempty"`
}

// TypeSpec is the YAML representation of a type: a specifier string in
// source order plus pointer and array derivations.
type TypeSpec struct {
	Spec      string  `yaml:"spec"`
	Pointer   int     `yaml:"pointer,omitempty"`
	Array     []int64 `yaml:"array,omitempty"`      // outermost dimension first, -1 for []
	ArrayExpr []Node  `yaml:"array-expr,omitempty"` // extents as expressions, for named constants
	Line      int     `yaml:"line,omitempty"`
}

// ParamSpec is the YAML representation of one function parameter.
type ParamSpec struct {
	Type TypeSpec `yaml:"type"`
	Name string   `yaml:"name,omitempty"`
}

type programFile struct {
	Items []Node `yaml:"items"`
}

// Decoder converts YAML nodes into cabs trees.
type Decoder struct {
	file string
}

// NewDecoder creates a decoder attributing positions to file.
func NewDecoder(file string) *Decoder { return &Decoder{file: file} }

// DecodeProgram parses a whole YAML program.
func (d *Decoder) DecodeProgram(data []byte) (*Program, error) {
	var pf programFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	prog := &Program{}
	for i := range pf.Items {
		ext, err := d.decodeExternal(&pf.Items[i])
		if err != nil {
			return nil, err
		}
		prog.Items = append(prog.Items, *ext)
	}
	return prog, nil
}

func (d *Decoder) pos(line int) diag.Pos {
	return diag.Pos{File: d.file, Line: line}
}

func (d *Decoder) decodeExternal(n *Node) (*External, error) {
	switch n.Kind {
	case "fundef":
		return d.decodeFundef(n)
	case "decl", "typedef", "record-def", "enum-def":
		decl, err := d.decodeDeclaration(n)
		if err != nil {
			return nil, err
		}
		return &External{Decl: decl, Pos: decl.Pos}, nil
	}
	return nil, fmt.Errorf("unknown top-level kind %q", n.Kind)
}

func (d *Decoder) decodeFundef(n *Node) (*External, error) {
	if n.Type == nil {
		return nil, fmt.Errorf("fundef %q: missing return type", n.Name)
	}
	specs, mods, err := d.decodeTypeSpec(n.Type)
	if err != nil {
		return nil, err
	}
	var params []ParamDecl
	for _, p := range n.Params {
		ps, pm, err := d.decodeTypeSpec(&p.Type)
		if err != nil {
			return nil, err
		}
		params = append(params, ParamDecl{
			Specs: ps,
			Decl:  Declarator{Name: p.Name, Mods: pm, Pos: d.pos(p.Type.Line)},
			Pos:   d.pos(p.Type.Line),
		})
	}
	fnMod := DeclMod{Kind: ModFunc, Params: params, Variadic: n.Variadic, Pos: d.pos(n.Line)}
	decl := Declarator{
		Name: n.Name,
		Mods: append([]DeclMod{fnMod}, mods...),
		Pos:  d.pos(n.Line),
	}
	body, err := d.decodeBlock(n.Body, n.Line)
	if err != nil {
		return nil, err
	}
	return &External{
		Decl: &Declaration{
			Specs: specs,
			Decls: []InitDecl{{Decl: decl, Pos: d.pos(n.Line)}},
			Pos:   d.pos(n.Line),
		},
		Body: body,
		Pos:  d.pos(n.Line),
	}, nil
}

func (d *Decoder) decodeDeclaration(n *Node) (*Declaration, error) {
	switch n.Kind {
	case "decl", "typedef":
		if n.Type == nil {
			return nil, fmt.Errorf("decl %q: missing type", n.Name)
		}
		specs, mods, err := d.decodeTypeSpec(n.Type)
		if err != nil {
			return nil, err
		}
		if err := d.applyStorage(&specs, n); err != nil {
			return nil, err
		}
		if n.Kind == "typedef" {
			specs = append([]Spec{{Kind: SpecTypedef, Pos: d.pos(n.Line)}}, specs...)
		}
		var init *InitItem
		if n.Init != nil {
			init, err = d.decodeInit(n.Init)
			if err != nil {
				return nil, err
			}
		}
		var params []DeclMod
		if n.Params != nil || n.Variadic {
			// function declaration without a body
			var ps []ParamDecl
			for _, p := range n.Params {
				sp, pm, err := d.decodeTypeSpec(&p.Type)
				if err != nil {
					return nil, err
				}
				ps = append(ps, ParamDecl{
					Specs: sp,
					Decl:  Declarator{Name: p.Name, Mods: pm, Pos: d.pos(p.Type.Line)},
					Pos:   d.pos(p.Type.Line),
				})
			}
			params = []DeclMod{{Kind: ModFunc, Params: ps, Variadic: n.Variadic, Pos: d.pos(n.Line)}}
		}
		return &Declaration{
			Specs: specs,
			Decls: []InitDecl{{
				Decl: Declarator{Name: n.Name, Mods: append(params, mods...), Pos: d.pos(n.Line)},
				Init: init,
				Pos:  d.pos(n.Line),
			}},
			Pos: d.pos(n.Line),
		}, nil

	case "record-def":
		var fields []RecField
		for i := range n.Items {
			f := &n.Items[i]
			if f.Type == nil {
				return nil, fmt.Errorf("record %q: field %q missing type", n.Tag, f.Name)
			}
			specs, mods, err := d.decodeTypeSpec(f.Type)
			if err != nil {
				return nil, err
			}
			fields = append(fields, RecField{
				Specs: specs,
				Decls: []Declarator{{Name: f.Name, Mods: mods, Pos: d.pos(f.Line)}},
				Pos:   d.pos(f.Line),
			})
		}
		spec := Spec{
			Kind: SpecStruct,
			Rec: &RecSpec{
				Union:   n.Union,
				Tag:     n.Tag,
				HasBody: true,
				Body:    fields,
				Pos:     d.pos(n.Line),
			},
			Pos: d.pos(n.Line),
		}
		return &Declaration{Specs: []Spec{spec}, Pos: d.pos(n.Line)}, nil

	case "enum-def":
		var items []EnumItem
		for i := range n.Items {
			it := &n.Items[i]
			item := EnumItem{Name: it.Name, Pos: d.pos(it.Line)}
			if it.Value != nil {
				item.Value = IntLit{Value: *it.Value, Pos: d.pos(it.Line)}
			} else if it.Expr != nil {
				v, err := d.decodeExpr(it.Expr)
				if err != nil {
					return nil, err
				}
				item.Value = v
			}
			items = append(items, item)
		}
		spec := Spec{
			Kind: SpecEnum,
			Enum: &EnumSpec{Tag: n.Tag, HasBody: true, Items: items, Pos: d.pos(n.Line)},
			Pos:  d.pos(n.Line),
		}
		return &Declaration{Specs: []Spec{spec}, Pos: d.pos(n.Line)}, nil
	}
	return nil, fmt.Errorf("unknown declaration kind %q", n.Kind)
}

func (d *Decoder) applyStorage(specs *[]Spec, n *Node) error {
	switch n.Storage {
	case "":
		return nil
	case "static":
		*specs = append([]Spec{{Kind: SpecStatic, Pos: d.pos(n.Line)}}, *specs...)
	case "extern":
		*specs = append([]Spec{{Kind: SpecExtern, Pos: d.pos(n.Line)}}, *specs...)
	case "auto":
		*specs = append([]Spec{{Kind: SpecAuto, Pos: d.pos(n.Line)}}, *specs...)
	case "register":
		*specs = append([]Spec{{Kind: SpecRegister, Pos: d.pos(n.Line)}}, *specs...)
	default:
		return fmt.Errorf("unknown storage class %q", n.Storage)
	}
	return nil
}

var wordSpecs = map[string]SpecKind{
	"void": SpecVoid, "char": SpecChar, "short": SpecShort, "int": SpecInt,
	"long": SpecLong, "signed": SpecSigned, "unsigned": SpecUnsigned,
	"_Bool": SpecBool, "bool": SpecBool, "float": SpecFloat,
	"double": SpecDouble, "va_list": SpecVaList,
	"const": SpecConst, "volatile": SpecVolatile,
}

// decodeTypeSpec turns a TypeSpec into ordered specifier atoms plus
// declarator modifiers. Array dims come before the pointer levels,
// matching `T *a[n]`; the YAML form only covers pointer-to-array-free
// combinations, which is all the fixtures use.
func (d *Decoder) decodeTypeSpec(ts *TypeSpec) ([]Spec, []DeclMod, error) {
	var specs []Spec
	words := strings.Fields(ts.Spec)
	for i := 0; i < len(words); i++ {
		w := words[i]
		switch w {
		case "struct", "union":
			tag := ""
			if i+1 < len(words) {
				i++
				tag = words[i]
			}
			specs = append(specs, Spec{
				Kind: SpecStruct,
				Rec:  &RecSpec{Union: w == "union", Tag: tag, Pos: d.pos(ts.Line)},
				Pos:  d.pos(ts.Line),
			})
		case "enum":
			tag := ""
			if i+1 < len(words) {
				i++
				tag = words[i]
			}
			specs = append(specs, Spec{
				Kind: SpecEnum,
				Enum: &EnumSpec{Tag: tag, Pos: d.pos(ts.Line)},
				Pos:  d.pos(ts.Line),
			})
		default:
			if k, ok := wordSpecs[w]; ok {
				specs = append(specs, Spec{Kind: k, Pos: d.pos(ts.Line)})
			} else {
				// Unknown word: a typedef name.
				specs = append(specs, Spec{Kind: SpecName, Name: w, Pos: d.pos(ts.Line)})
			}
		}
	}
	var mods []DeclMod
	for _, dim := range ts.Array {
		m := DeclMod{Kind: ModArray, Pos: d.pos(ts.Line)}
		if dim >= 0 {
			m.Size = IntLit{Value: dim, Pos: d.pos(ts.Line)}
		}
		mods = append(mods, m)
	}
	for i := range ts.ArrayExpr {
		e, err := d.decodeExpr(&ts.ArrayExpr[i])
		if err != nil {
			return nil, nil, err
		}
		mods = append(mods, DeclMod{Kind: ModArray, Size: e, Pos: d.pos(ts.Line)})
	}
	for i := 0; i < ts.Pointer; i++ {
		mods = append(mods, DeclMod{Kind: ModPointer, Pos: d.pos(ts.Line)})
	}
	return specs, mods, nil
}

func (d *Decoder) decodeInit(n *Node) (*InitItem, error) {
	if n.Kind == "init-list" {
		item := &InitItem{IsList: true, Pos: d.pos(n.Line)}
		for i := range n.Items {
			sub, err := d.decodeInit(&n.Items[i])
			if err != nil {
				return nil, err
			}
			item.List = append(item.List, *sub)
		}
		return item, nil
	}
	item := &InitItem{Pos: d.pos(n.Line)}
	if n.Field != "" {
		item.Designators = append(item.Designators, Designator{Field: n.Field, Pos: d.pos(n.Line)})
	}
	if n.At != nil {
		idx, err := d.decodeExpr(n.At)
		if err != nil {
			return nil, err
		}
		item.Designators = append(item.Designators, Designator{Index: idx, Pos: d.pos(n.Line)})
	}
	inner := n
	if n.Expr != nil {
		inner = n.Expr
	}
	if inner.Kind == "init-list" {
		item.IsList = true
		for i := range inner.Items {
			sub, err := d.decodeInit(&inner.Items[i])
			if err != nil {
				return nil, err
			}
			item.List = append(item.List, *sub)
		}
		return item, nil
	}
	e, err := d.decodeExpr(inner)
	if err != nil {
		return nil, err
	}
	item.Expr = e
	return item, nil
}

var unaryOps = map[string]UnaryOp{
	"+": UPlus, "-": UNeg, "~": UBitNot, "!": ULogNot,
	"*": UDeref, "&": UAddrOf,
	"++": UPreInc, "--": UPreDec, "p++": UPostInc, "p--": UPostDec,
}

var binaryOps = map[string]BinaryOp{
	"+": BAdd, "-": BSub, "*": BMul, "/": BDiv, "%": BMod,
	"&": BAnd, "|": BOr, "^": BXor, "<<": BShl, ">>": BShr,
	"&&": BLogAnd, "||": BLogOr,
	"==": BEq, "!=": BNe, "<": BLt, "<=": BLe, ">": BGt, ">=": BGe,
}

func (d *Decoder) decodeExpr(n *Node) (Expr, error) {
	if n == nil {
		return nil, nil
	}
	pos := d.pos(n.Line)
	switch n.Kind {
	case "int":
		if n.Value == nil {
			return nil, fmt.Errorf("int literal without value")
		}
		lit := IntLit{Value: *n.Value, Pos: pos}
		switch strings.ToLower(n.Suffix) {
		case "":
		case "u":
			lit.Unsigned = true
		case "l":
			lit.Long = true
		case "ul", "lu":
			lit.Unsigned, lit.Long = true, true
		case "ll":
			lit.LongLong = true
		case "ull", "llu":
			lit.Unsigned, lit.LongLong = true, true
		default:
			return nil, fmt.Errorf("bad integer suffix %q", n.Suffix)
		}
		return lit, nil
	case "char":
		if n.Value != nil {
			return CharLit{Value: *n.Value, Pos: pos}, nil
		}
		if len(n.Str) != 1 {
			return nil, fmt.Errorf("char literal needs value or single-character str")
		}
		return CharLit{Value: int64(n.Str[0]), Pos: pos}, nil
	case "string":
		return StrLit{Raw: n.Str, Wide: n.Wide, Pos: pos}, nil
	case "ident":
		return Ident{Name: n.Name, Pos: pos}, nil
	case "unop":
		op, ok := unaryOps[n.Op]
		if !ok {
			return nil, fmt.Errorf("unknown unary op %q", n.Op)
		}
		arg, err := d.decodeExpr(n.Arg)
		if err != nil {
			return nil, err
		}
		return Unary{Op: op, Arg: arg, Pos: pos}, nil
	case "binop":
		op, ok := binaryOps[n.Op]
		if !ok {
			return nil, fmt.Errorf("unknown binary op %q", n.Op)
		}
		l, err := d.decodeExpr(n.Left)
		if err != nil {
			return nil, err
		}
		r, err := d.decodeExpr(n.Right)
		if err != nil {
			return nil, err
		}
		return Binary{Op: op, L: l, R: r, Pos: pos}, nil
	case "assign":
		op := BNone
		if n.Op != "" && n.Op != "=" {
			base, ok := binaryOps[strings.TrimSuffix(n.Op, "=")]
			if !ok {
				return nil, fmt.Errorf("unknown assignment op %q", n.Op)
			}
			op = base
		}
		l, err := d.decodeExpr(n.Left)
		if err != nil {
			return nil, err
		}
		r, err := d.decodeExpr(n.Right)
		if err != nil {
			return nil, err
		}
		return Assign{Op: op, L: l, R: r, Pos: pos}, nil
	case "cond":
		c, err := d.decodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		t, err := d.decodeExpr(n.Left)
		if err != nil {
			return nil, err
		}
		f, err := d.decodeExpr(n.Right)
		if err != nil {
			return nil, err
		}
		return Cond{C: c, T: t, F: f, Pos: pos}, nil
	case "comma":
		l, err := d.decodeExpr(n.Left)
		if err != nil {
			return nil, err
		}
		r, err := d.decodeExpr(n.Right)
		if err != nil {
			return nil, err
		}
		return Comma{L: l, R: r, Pos: pos}, nil
	case "call":
		fn, err := d.decodeExpr(n.Fn)
		if err != nil {
			return nil, err
		}
		if fn == nil && n.Name != "" {
			fn = Ident{Name: n.Name, Pos: pos}
		}
		var args []Expr
		for i := range n.Args {
			a, err := d.decodeExpr(&n.Args[i])
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		return Call{Fn: fn, Args: args, Pos: pos}, nil
	case "index":
		b, err := d.decodeExpr(n.Base)
		if err != nil {
			return nil, err
		}
		i, err := d.decodeExpr(n.Index)
		if err != nil {
			return nil, err
		}
		return Index{Base: b, Idx: i, Pos: pos}, nil
	case "member":
		b, err := d.decodeExpr(n.Base)
		if err != nil {
			return nil, err
		}
		return Member{Base: b, Name: n.Name, Arrow: n.Arrow || n.Op == "->", Pos: pos}, nil
	case "cast":
		if n.Type == nil {
			return nil, fmt.Errorf("cast without type")
		}
		specs, mods, err := d.decodeTypeSpec(n.Type)
		if err != nil {
			return nil, err
		}
		arg, err := d.decodeExpr(n.Arg)
		if err != nil {
			return nil, err
		}
		return Cast{
			To:  TypeName{Specs: specs, Decl: Declarator{Mods: mods}, Pos: pos},
			Arg: arg,
			Pos: pos,
		}, nil
	case "sizeof-expr":
		arg, err := d.decodeExpr(n.Arg)
		if err != nil {
			return nil, err
		}
		return SizeofExpr{Arg: arg, Pos: pos}, nil
	case "sizeof-type":
		if n.Type == nil {
			return nil, fmt.Errorf("sizeof-type without type")
		}
		specs, mods, err := d.decodeTypeSpec(n.Type)
		if err != nil {
			return nil, err
		}
		return SizeofType{
			To:  TypeName{Specs: specs, Decl: Declarator{Mods: mods}, Pos: pos},
			Pos: pos,
		}, nil
	}
	return nil, fmt.Errorf("unknown expression kind %q", n.Kind)
}

func (d *Decoder) decodeBlock(items []Node, line int) (*Block, error) {
	blk := &Block{Pos: d.pos(line)}
	for i := range items {
		s, err := d.decodeStmt(&items[i])
		if err != nil {
			return nil, err
		}
		blk.Items = append(blk.Items, s)
	}
	return blk, nil
}

func (d *Decoder) decodeOneStmt(body []Node, line int) (Stmt, error) {
	if len(body) == 1 {
		return d.decodeStmt(&body[0])
	}
	return d.decodeBlock(body, line)
}

func (d *Decoder) decodeStmt(n *Node) (Stmt, error) {
	pos := d.pos(n.Line)
	switch n.Kind {
	case "expr":
		e, err := d.decodeExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		return ExprStmt{Expr: e, Pos: pos}, nil
	case "return":
		e, err := d.decodeExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		return Return{Expr: e, Pos: pos}, nil
	case "if":
		cond, err := d.decodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		then, err := d.decodeOneStmt(n.Then, n.Line)
		if err != nil {
			return nil, err
		}
		st := If{Cond: cond, Then: then, Pos: pos}
		if n.Else != nil {
			els, err := d.decodeOneStmt(n.Else, n.Line)
			if err != nil {
				return nil, err
			}
			st.Else = els
		}
		return st, nil
	case "while":
		cond, err := d.decodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		body, err := d.decodeOneStmt(n.Body, n.Line)
		if err != nil {
			return nil, err
		}
		return While{Cond: cond, Body: body, Pos: pos}, nil
	case "do":
		body, err := d.decodeOneStmt(n.Body, n.Line)
		if err != nil {
			return nil, err
		}
		cond, err := d.decodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		return Do{Body: body, Cond: cond, Pos: pos}, nil
	case "for":
		init, err := d.decodeExpr(n.Init)
		if err != nil {
			return nil, err
		}
		cond, err := d.decodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		step, err := d.decodeExpr(n.Step)
		if err != nil {
			return nil, err
		}
		body, err := d.decodeOneStmt(n.Body, n.Line)
		if err != nil {
			return nil, err
		}
		return For{Init: init, Cond: cond, Step: step, Body: body, Pos: pos}, nil
	case "switch":
		e, err := d.decodeExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		body, err := d.decodeBlock(n.Body, n.Line)
		if err != nil {
			return nil, err
		}
		return Switch{Expr: e, Body: body, Pos: pos}, nil
	case "case":
		e, err := d.decodeExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		if e == nil && n.Value != nil {
			e = IntLit{Value: *n.Value, Pos: pos}
		}
		return Case{Expr: e, Pos: pos}, nil
	case "default":
		return Default{Pos: pos}, nil
	case "break":
		return Break{Pos: pos}, nil
	case "continue":
		return Continue{Pos: pos}, nil
	case "goto":
		return Goto{Label: n.Name, Pos: pos}, nil
	case "label":
		inner, err := d.decodeOneStmt(n.Body, n.Line)
		if err != nil {
			return nil, err
		}
		return Labeled{Name: n.Name, Stmt: inner, Pos: pos}, nil
	case "block":
		return d.decodeBlock(n.Body, n.Line)
	case "decl", "typedef", "record-def", "enum-def":
		decl, err := d.decodeDeclaration(n)
		if err != nil {
			return nil, err
		}
		return DeclStmt{Decl: decl, Pos: pos}, nil
	}
	return nil, fmt.Errorf("unknown statement kind %q", n.Kind)
}
